package giraf

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/giraftest/packages/core/runner"
	"github.com/abdul-hamid-achik/giraftest/packages/http"
)

// DefaultAPIVersion is the path prefix of every endpoint
const DefaultAPIVersion = "v1"

// RegisterRequest is the body of POST /Account/register
type RegisterRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	DisplayName  string `json:"displayName,omitempty"`
	Role         string `json:"role"`
	DepartmentID int64  `json:"departmentId"`
}

// API issues requests against the GIRAF endpoints and parses the envelope
type API struct {
	client  *http.Client
	baseURL string
	version string
}

func NewAPI(client *http.Client, baseURL, apiVersion string) *API {
	if client == nil {
		client = http.NewClient()
	}
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	return &API{
		client:  client,
		baseURL: baseURL,
		version: strings.Trim(apiVersion, "/"),
	}
}

func (a *API) BaseURL() string {
	return a.baseURL
}

// URL returns the absolute URL of an endpoint path such as "/WeekTemplate/1"
func (a *API) URL(path string) string {
	return http.JoinURL(http.JoinURL(a.baseURL, a.version), path)
}

// do sends one request. The returned exchange is never nil; err is set when
// the request could not be sent or the body is not an envelope.
func (a *API) do(ctx context.Context, method, route, path, token string, body any) (*runner.Exchange, error) {
	name := method + " /" + a.version + route
	req := http.NewRequest(method, a.URL(path)).
		SetName(name).
		SetHeader("Accept", "application/json").
		SetBearer(token)
	if body != nil {
		if err := req.SetJSON(body); err != nil {
			return &runner.Exchange{Request: req, Error: err}, err
		}
	}

	ex := &runner.Exchange{Request: req}
	start := time.Now()
	resp, err := a.client.Do(ctx, req)
	ex.Duration = time.Since(start)
	if err != nil {
		ex.Error = err
		return ex, fmt.Errorf("%s %s: %w", method, path, err)
	}
	ex.Response = resp

	env, err := resp.Envelope()
	if err != nil {
		ex.Error = err
		return ex, fmt.Errorf("%s %s: %w", method, path, err)
	}
	ex.Envelope = env
	return ex, nil
}

func (a *API) Login(ctx context.Context, username, password string) (*runner.Exchange, error) {
	body := map[string]string{"username": username, "password": password}
	return a.do(ctx, "POST", "/Account/login", "/Account/login", "", body)
}

func (a *API) Register(ctx context.Context, token string, req RegisterRequest) (*runner.Exchange, error) {
	return a.do(ctx, "POST", "/Account/register", "/Account/register", token, req)
}

// CurrentUser returns the user the token belongs to
func (a *API) CurrentUser(ctx context.Context, token string) (*runner.Exchange, error) {
	return a.do(ctx, "GET", "/User", "/User", token, nil)
}

// UserByID takes the id as a string so malformed ids can be sent on purpose
func (a *API) UserByID(ctx context.Context, token, id string) (*runner.Exchange, error) {
	return a.do(ctx, "GET", "/User/{id}", "/User/"+id, token, nil)
}

func (a *API) WeekTemplates(ctx context.Context, token string) (*runner.Exchange, error) {
	return a.do(ctx, "GET", "/WeekTemplate", "/WeekTemplate", token, nil)
}

func (a *API) WeekTemplate(ctx context.Context, token string, id int64) (*runner.Exchange, error) {
	return a.do(ctx, "GET", "/WeekTemplate/{id}", fmt.Sprintf("/WeekTemplate/%d", id), token, nil)
}

func (a *API) CreateWeekTemplate(ctx context.Context, token string, tpl WeekTemplate) (*runner.Exchange, error) {
	return a.do(ctx, "POST", "/WeekTemplate", "/WeekTemplate", token, tpl)
}

func (a *API) UpdateWeekTemplate(ctx context.Context, token string, id int64, tpl WeekTemplate) (*runner.Exchange, error) {
	return a.do(ctx, "PUT", "/WeekTemplate/{id}", fmt.Sprintf("/WeekTemplate/%d", id), token, tpl)
}

func (a *API) DeleteWeekTemplate(ctx context.Context, token string, id int64) (*runner.Exchange, error) {
	return a.do(ctx, "DELETE", "/WeekTemplate/{id}", fmt.Sprintf("/WeekTemplate/%d", id), token, nil)
}
