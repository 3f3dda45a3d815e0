package mock

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type apiClient struct {
	t      *testing.T
	server *httptest.Server
}

func newAPI(t *testing.T, opts ...Option) *apiClient {
	t.Helper()
	server := httptest.NewServer(NewHandler(opts...))
	t.Cleanup(server.Close)
	return &apiClient{t: t, server: server}
}

func (c *apiClient) do(method, path, token string, body any) (int, gjson.Result) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	require.True(c.t, gjson.ValidBytes(raw), "body: %s", raw)
	return resp.StatusCode, gjson.ParseBytes(raw)
}

func (c *apiClient) login(username string) string {
	c.t.Helper()
	status, body := c.do("POST", "/v1/Account/login", "", map[string]string{"username": username, "password": "password"})
	require.Equal(c.t, http.StatusOK, status, body.Raw)
	return body.Get("data").String()
}

func TestLogin(t *testing.T) {
	api := newAPI(t)

	tests := []struct {
		name     string
		body     any
		status   int
		success  bool
		errorKey string
	}{
		{"guardian", map[string]string{"username": "Graatand", "password": "password"}, 200, true, NoError},
		{"department", map[string]string{"username": "Tobias", "password": "password"}, 200, true, NoError},
		{"wrong password", map[string]string{"username": "Graatand", "password": "wrongPassword"}, 401, false, InvalidCredentials},
		{"wrong username", map[string]string{"username": "WrongGraatand", "password": "password"}, 401, false, InvalidCredentials},
		{"missing password", map[string]string{"username": "Graatand"}, 400, false, MissingProperties},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := api.do("POST", "/v1/Account/login", "", tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.success, body.Get("success").Bool())
			assert.Equal(t, tt.errorKey, body.Get("errorKey").String())
			if tt.success {
				assert.NotEmpty(t, body.Get("data").String())
			} else {
				assert.Equal(t, gjson.Null, body.Get("data").Type)
			}
		})
	}
}

func TestCaseInsensitiveRoutes(t *testing.T) {
	api := newAPI(t)
	status, body := api.do("POST", "/v1/account/LOGIN", "", map[string]string{"username": "Graatand", "password": "password"})
	assert.Equal(t, 200, status)
	assert.True(t, body.Get("success").Bool())

	status, body = api.do("PATCH", "/v1/Account/login", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.False(t, body.Get("success").Bool())

	status, _ = api.do("GET", "/v1/Nothing", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUserEndpoints(t *testing.T) {
	api := newAPI(t)
	token := api.login("Graatand")

	_, body := api.do("GET", "/v1/User/username", "", nil)
	assert.False(t, body.Get("success").Bool())
	assert.Equal(t, NotFound, body.Get("errorKey").String())

	_, body = api.do("GET", "/v1/User", "", nil)
	assert.Equal(t, NotAuthorized, body.Get("errorKey").String())

	_, body = api.do("GET", "/v1/User", token, nil)
	assert.True(t, body.Get("success").Bool())
	assert.Equal(t, "Graatand", body.Get("data.username").String())
	assert.Equal(t, "Guardian", body.Get("data.roleName").String())

	_, body = api.do("GET", "/v1/User/3", token, nil)
	assert.Equal(t, "Kurt", body.Get("data.username").String())

	_, body = api.do("GET", "/v1/User/4", token, nil)
	assert.Equal(t, NotAuthorized, body.Get("errorKey").String())
}

func TestRegister(t *testing.T) {
	api := newAPI(t)
	guardian := api.login("Graatand")
	citizen := api.login("Kurt")
	newUser := map[string]any{"username": "Alice", "password": "password", "role": "Citizen", "departmentId": 1}

	_, body := api.do("POST", "/v1/Account/register", "", newUser)
	assert.False(t, body.Get("success").Bool())
	assert.Equal(t, NotAuthorized, body.Get("errorKey").String())

	_, body = api.do("POST", "/v1/Account/register", citizen, newUser)
	assert.Equal(t, NotAuthorized, body.Get("errorKey").String())

	status, body := api.do("POST", "/v1/Account/register", guardian, newUser)
	assert.Equal(t, http.StatusCreated, status)
	assert.True(t, body.Get("success").Bool())
	assert.Equal(t, "Alice", body.Get("data.username").String())

	_, body = api.do("POST", "/v1/Account/register", guardian, newUser)
	assert.Equal(t, UserAlreadyExists, body.Get("errorKey").String())

	_, body = api.do("POST", "/v1/Account/register", guardian, map[string]any{"username": "Bob", "password": "p", "role": "Wizard", "departmentId": 1})
	assert.Equal(t, RoleNotFound, body.Get("errorKey").String())

	_, body = api.do("POST", "/v1/Account/register", guardian, map[string]any{"username": "Bob", "password": "p", "role": "Citizen", "departmentId": 99})
	assert.Equal(t, DepartmentNotFound, body.Get("errorKey").String())

	_, body = api.do("POST", "/v1/Account/register", guardian, map[string]any{"username": "Bob", "role": "Citizen", "departmentId": 1})
	assert.Equal(t, MissingProperties, body.Get("errorKey").String())

	alice := api.login("Alice")
	_, body = api.do("GET", "/v1/User", alice, nil)
	assert.Equal(t, "Citizen", body.Get("data.roleName").String())
}

func TestWeekTemplates(t *testing.T) {
	api := newAPI(t)
	guardian := api.login("Graatand")
	citizen := api.login("Kurt")

	_, body := api.do("GET", "/v1/WeekTemplate", guardian, nil)
	require.True(t, body.Get("success").Bool())
	assert.Equal(t, "SkabelonUge", body.Get("data.0.name").String())
	assert.Equal(t, int64(1), body.Get("data.0.templateId").Int())
	assert.Equal(t, int64(1), body.Get("data.#").Int())

	_, body = api.do("GET", "/v1/WeekTemplate/1", guardian, nil)
	assert.Equal(t, int64(1), body.Get("data.thumbnail.id").Int())
	assert.Equal(t, int64(1), body.Get("data.days.0.day").Int())
	assert.Equal(t, int64(6), body.Get("data.days.5.day").Int())
	assert.Equal(t, int64(70), body.Get("data.days.4.activities.1.pictogram.id").Int())

	_, body = api.do("GET", "/v1/WeekTemplate/1", citizen, nil)
	assert.False(t, body.Get("success").Bool())
	assert.Equal(t, NotAuthorized, body.Get("errorKey").String())

	_, body = api.do("GET", "/v1/WeekTemplate/2", guardian, nil)
	assert.Equal(t, NotAuthorized, body.Get("errorKey").String())

	payload := map[string]any{
		"name":      "Template1",
		"thumbnail": map[string]any{"id": 28},
		"days": []any{
			map[string]any{"day": "Friday", "activities": []any{
				map[string]any{"pictogram": map[string]any{"id": 2}, "order": 0, "state": "Active"},
				map[string]any{"pictogram": map[string]any{"id": 7}, "order": 0, "state": "Active"},
			}},
			map[string]any{"day": "Monday", "activities": []any{
				map[string]any{"pictogram": map[string]any{"id": 1}, "order": 0, "state": "Active"},
				map[string]any{"pictogram": map[string]any{"id": 6}, "order": 0, "state": "Active"},
			}},
		},
	}
	status, body := api.do("POST", "/v1/WeekTemplate", guardian, payload)
	require.Equal(t, http.StatusCreated, status, body.Raw)
	id := body.Get("data.id").Int()
	assert.Greater(t, id, int64(2))

	path := "/v1/WeekTemplate/" + body.Get("data.id").String()
	_, body = api.do("GET", path, guardian, nil)
	assert.Equal(t, int64(28), body.Get("data.thumbnail.id").Int())
	assert.Equal(t, int64(1), body.Get("data.days.0.day").Int())
	assert.Equal(t, int64(6), body.Get("data.days.0.activities.1.pictogram.id").Int())
	assert.Equal(t, int64(7), body.Get("data.days.1.activities.1.pictogram.id").Int())

	payload["thumbnail"] = map[string]any{"id": 29}
	_, body = api.do("PUT", path, guardian, payload)
	assert.True(t, body.Get("success").Bool())
	_, body = api.do("GET", path, guardian, nil)
	assert.Equal(t, int64(29), body.Get("data.thumbnail.id").Int())
	assert.Equal(t, id, body.Get("data.id").Int())

	_, body = api.do("DELETE", path, guardian, nil)
	assert.True(t, body.Get("success").Bool())
	_, body = api.do("GET", path, guardian, nil)
	assert.False(t, body.Get("success").Bool())
	assert.Equal(t, NoWeekTemplateFound, body.Get("errorKey").String())
}

func TestCreateTemplateValidation(t *testing.T) {
	api := newAPI(t)
	guardian := api.login("Graatand")

	_, body := api.do("POST", "/v1/WeekTemplate", guardian, map[string]any{"thumbnail": map[string]any{"id": 1}})
	assert.Equal(t, MissingProperties, body.Get("errorKey").String())
	assert.Equal(t, "name", body.Get("errorProperties.0").String())

	_, body = api.do("POST", "/v1/WeekTemplate", guardian, map[string]any{
		"name": "x", "thumbnail": map[string]any{"id": 1},
		"days": []any{map[string]any{"day": "Someday"}},
	})
	assert.Equal(t, InvalidProperties, body.Get("errorKey").String())

	_, body = api.do("POST", "/v1/WeekTemplate", guardian, map[string]any{
		"name": "x", "thumbnail": map[string]any{"id": 1},
		"days": []any{map[string]any{"day": 1}, map[string]any{"day": "Monday"}},
	})
	assert.Equal(t, InvalidProperties, body.Get("errorKey").String())
}

func TestStoreReset(t *testing.T) {
	h := NewHandler()
	_, ok := h.Store().AddUser(User{Username: "Temp", Password: "x", Role: RoleCitizen, DepartmentID: 1})
	require.True(t, ok)
	h.Store().DeleteTemplate(1)

	h.Store().Reset()

	_, ok = h.Store().Login("Temp", "x")
	assert.False(t, ok)
	_, ok = h.Store().Template(1)
	assert.True(t, ok)
}

func TestWithAPIVersion(t *testing.T) {
	api := newAPI(t, WithAPIVersion("v2"))
	status, _ := api.do("POST", "/v2/Account/login", "", map[string]string{"username": "Graatand", "password": "password"})
	assert.Equal(t, 200, status)
	status, _ = api.do("POST", "/v1/Account/login", "", map[string]string{"username": "Graatand", "password": "password"})
	assert.Equal(t, 404, status)
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in      string
		want    Weekday
		wantErr bool
	}{
		{"Monday", 1, false},
		{"sunday", 7, false},
		{"6", 6, false},
		{"0", 0, true},
		{"Caturday", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekday(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "Friday", Weekday(5).String())
}

func TestParseSeed_Invalid(t *testing.T) {
	_, err := ParseSeed([]byte("departments: [{id: 1}]\nusers: [{id: 1, username: a, role: Wizard, departmentId: 1}]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")

	_, err = ParseSeed([]byte("users: [{id: 1, username: a, role: Citizen, departmentId: 9}]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown department")
}
