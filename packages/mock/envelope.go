package mock

import (
	"encoding/json"
	"net/http"
)

// Error keys returned in the errorKey field
const (
	NoError             = "NoError"
	InvalidCredentials  = "InvalidCredentials"
	NotAuthorized       = "NotAuthorized"
	NotFound            = "NotFound"
	UserAlreadyExists   = "UserAlreadyExists"
	MissingProperties   = "MissingProperties"
	InvalidProperties   = "InvalidProperties"
	RoleNotFound        = "RoleNotFound"
	DepartmentNotFound  = "DepartmentNotFound"
	NoWeekTemplateFound = "NoWeekTemplateFound"
	MethodNotAllowed    = "MethodNotAllowed"
)

type envelope struct {
	Data            any      `json:"data"`
	Success         bool     `json:"success"`
	ErrorKey        string   `json:"errorKey"`
	ErrorProperties []string `json:"errorProperties"`
	Message         string   `json:"message,omitempty"`
	Details         string   `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	if body.ErrorProperties == nil {
		body.ErrorProperties = []string{}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Data: data, Success: true, ErrorKey: NoError})
}

func writeError(w http.ResponseWriter, status int, key, message string, properties ...string) {
	writeJSON(w, status, envelope{
		Success:         false,
		ErrorKey:        key,
		ErrorProperties: properties,
		Message:         message,
	})
}
