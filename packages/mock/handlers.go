package mock

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	DisplayName  string `json:"displayName"`
	Role         string `json:"role"`
	DepartmentID *int64 `json:"departmentId"`
}

type userDTO struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	ScreenName string `json:"screenName"`
	RoleName   string `json:"roleName"`
	Role       int    `json:"role"`
	Department int64  `json:"department"`
}

type idRef struct {
	ID int64 `json:"id"`
}

type activityDTO struct {
	ID        int64  `json:"id,omitempty"`
	Pictogram *idRef `json:"pictogram"`
	Order     int    `json:"order"`
	State     string `json:"state"`
}

type dayDTO struct {
	Day        Weekday       `json:"day"`
	Activities []activityDTO `json:"activities"`
}

type templateDTO struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Thumbnail     *idRef   `json:"thumbnail"`
	DepartmentKey int64    `json:"departmentKey"`
	Days          []dayDTO `json:"days"`
}

type templateNameDTO struct {
	Name       string `json:"name"`
	TemplateID int64  `json:"templateId"`
}

func toUserDTO(u *User) userDTO {
	return userDTO{
		ID:         u.ID,
		Username:   u.Username,
		ScreenName: u.ScreenName,
		RoleName:   string(u.Role),
		Role:       roleNumbers[u.Role],
		Department: u.DepartmentID,
	}
}

func toTemplateDTO(t *Template) templateDTO {
	dto := templateDTO{
		ID:            t.ID,
		Name:          t.Name,
		Thumbnail:     &idRef{ID: t.Thumbnail},
		DepartmentKey: t.DepartmentID,
		Days:          make([]dayDTO, 0, len(t.Days)),
	}
	for _, d := range t.Days {
		day := dayDTO{Day: d.Day, Activities: make([]activityDTO, 0, len(d.Activities))}
		for _, a := range d.Activities {
			day.Activities = append(day.Activities, activityDTO{
				ID:        a.ID,
				Pictogram: &idRef{ID: a.Pictogram},
				Order:     a.Order,
				State:     a.State,
			})
		}
		dto.Days = append(dto.Days, day)
	}
	return dto
}

// fromTemplateDTO validates a create/update body. It returns the error key
// and the offending properties when the body cannot be used.
func fromTemplateDTO(dto *templateDTO) (*Template, string, []string) {
	var missing []string
	if strings.TrimSpace(dto.Name) == "" {
		missing = append(missing, "name")
	}
	if dto.Thumbnail == nil {
		missing = append(missing, "thumbnail")
	}
	if len(missing) > 0 {
		return nil, MissingProperties, missing
	}

	t := &Template{Name: dto.Name, Thumbnail: dto.Thumbnail.ID}
	seen := make(map[Weekday]bool)
	for _, d := range dto.Days {
		if d.Day < 1 || d.Day > 7 || seen[d.Day] {
			return nil, InvalidProperties, []string{"days"}
		}
		seen[d.Day] = true
		day := Day{Day: d.Day}
		for _, a := range d.Activities {
			if a.Pictogram == nil {
				return nil, MissingProperties, []string{"pictogram"}
			}
			state := a.State
			if state == "" {
				state = "Active"
			}
			day.Activities = append(day.Activities, Activity{Pictogram: a.Pictogram.ID, Order: a.Order, State: state})
		}
		t.Days = append(t.Days, day)
	}
	return t, "", nil
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// currentUser resolves the bearer token, writing a NotAuthorized response when it fails
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*User, bool) {
	u, ok := h.store.Authenticate(bearerToken(r))
	if !ok {
		writeError(w, http.StatusUnauthorized, NotAuthorized, "No user authorized")
		return nil, false
	}
	return u, true
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, MissingProperties, "Missing model")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, MissingProperties, "Missing username or password", "username", "password")
		return
	}
	token, ok := h.store.Login(req.Username, req.Password)
	if !ok {
		writeError(w, http.StatusUnauthorized, InvalidCredentials, "Invalid credentials")
		return
	}
	writeData(w, http.StatusOK, token)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	caller, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if !caller.Role.CanManage() {
		writeError(w, http.StatusForbidden, NotAuthorized, "User does not have permission to register users")
		return
	}

	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, MissingProperties, "Missing model")
		return
	}
	if req.Username == "" || req.Password == "" || req.DepartmentID == nil {
		writeError(w, http.StatusBadRequest, MissingProperties, "Missing username, password or departmentId")
		return
	}
	role, ok := ParseRole(req.Role)
	if !ok {
		writeError(w, http.StatusBadRequest, RoleNotFound, "The role does not exist")
		return
	}
	if _, ok := h.store.Department(*req.DepartmentID); !ok {
		writeError(w, http.StatusBadRequest, DepartmentNotFound, "Department not found")
		return
	}

	u, ok := h.store.AddUser(User{
		Username:     req.Username,
		ScreenName:   req.DisplayName,
		Password:     req.Password,
		Role:         role,
		DepartmentID: *req.DepartmentID,
	})
	if !ok {
		writeError(w, http.StatusConflict, UserAlreadyExists, "A user with the given username already exists")
		return
	}
	writeData(w, http.StatusCreated, toUserDTO(u))
}

func (h *Handler) getCurrentUser(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	writeData(w, http.StatusOK, toUserDTO(u))
}

// getUser answers NotFound for unknown ids before checking authorization
func (h *Handler) getUser(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id, err := strconv.ParseInt(params["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, NotFound, "User not found")
		return
	}
	target, ok := h.store.User(id)
	if !ok {
		writeError(w, http.StatusNotFound, NotFound, "User not found")
		return
	}
	caller, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if caller.ID != target.ID && (!caller.Role.CanManage() || caller.DepartmentID != target.DepartmentID) {
		writeError(w, http.StatusForbidden, NotAuthorized, "User does not have permission")
		return
	}
	writeData(w, http.StatusOK, toUserDTO(target))
}

// templateManager authorizes the caller for week template endpoints
func (h *Handler) templateManager(w http.ResponseWriter, r *http.Request) (*User, bool) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return nil, false
	}
	if !u.Role.CanManage() {
		writeError(w, http.StatusForbidden, NotAuthorized, "User does not have permission")
		return nil, false
	}
	return u, true
}

// lookupTemplate loads the {id} template and checks it belongs to the caller's department
func (h *Handler) lookupTemplate(w http.ResponseWriter, caller *User, params map[string]string) (*Template, bool) {
	id, err := strconv.ParseInt(params["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, NoWeekTemplateFound, "Week template not found")
		return nil, false
	}
	t, ok := h.store.Template(id)
	if !ok {
		writeError(w, http.StatusNotFound, NoWeekTemplateFound, "Week template not found")
		return nil, false
	}
	if t.DepartmentID != caller.DepartmentID && caller.Role != RoleSuperUser {
		writeError(w, http.StatusForbidden, NotAuthorized, "User does not have permission")
		return nil, false
	}
	return t, true
}

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	caller, ok := h.templateManager(w, r)
	if !ok {
		return
	}
	names := make([]templateNameDTO, 0)
	for _, t := range h.store.Templates(caller.DepartmentID) {
		names = append(names, templateNameDTO{Name: t.Name, TemplateID: t.ID})
	}
	writeData(w, http.StatusOK, names)
}

func (h *Handler) getTemplate(w http.ResponseWriter, r *http.Request, params map[string]string) {
	caller, ok := h.templateManager(w, r)
	if !ok {
		return
	}
	t, ok := h.lookupTemplate(w, caller, params)
	if !ok {
		return
	}
	writeData(w, http.StatusOK, toTemplateDTO(t))
}

func (h *Handler) createTemplate(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	caller, ok := h.templateManager(w, r)
	if !ok {
		return
	}
	t, ok := h.decodeTemplate(w, r)
	if !ok {
		return
	}
	t.DepartmentID = caller.DepartmentID
	writeData(w, http.StatusCreated, toTemplateDTO(h.store.PutTemplate(t)))
}

func (h *Handler) updateTemplate(w http.ResponseWriter, r *http.Request, params map[string]string) {
	caller, ok := h.templateManager(w, r)
	if !ok {
		return
	}
	existing, ok := h.lookupTemplate(w, caller, params)
	if !ok {
		return
	}
	t, ok := h.decodeTemplate(w, r)
	if !ok {
		return
	}
	t.ID = existing.ID
	t.DepartmentID = existing.DepartmentID
	writeData(w, http.StatusOK, toTemplateDTO(h.store.PutTemplate(t)))
}

func (h *Handler) deleteTemplate(w http.ResponseWriter, r *http.Request, params map[string]string) {
	caller, ok := h.templateManager(w, r)
	if !ok {
		return
	}
	t, ok := h.lookupTemplate(w, caller, params)
	if !ok {
		return
	}
	h.store.DeleteTemplate(t.ID)
	writeData(w, http.StatusOK, nil)
}

func (h *Handler) decodeTemplate(w http.ResponseWriter, r *http.Request) (*Template, bool) {
	var dto templateDTO
	if err := decodeBody(r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, InvalidProperties, err.Error())
		return nil, false
	}
	t, key, props := fromTemplateDTO(&dto)
	if key != "" {
		writeError(w, http.StatusBadRequest, key, "Invalid week template", props...)
		return nil, false
	}
	return t, true
}
