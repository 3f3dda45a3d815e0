package http

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Request struct {
	// Name identifies the route for metrics and logs, e.g. "GET /v1/WeekTemplate/{id}".
	Name    string
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:  method,
		URL:     requestURL,
		Headers: make(map[string]string),
	}
}

func (r *Request) SetName(name string) *Request {
	r.Name = name
	return r
}

func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

// SetBearer adds an "Authorization: Bearer <token>" header. An empty token is ignored.
func (r *Request) SetBearer(token string) *Request {
	if token == "" {
		return r
	}
	return r.SetHeader("Authorization", "Bearer "+token)
}

// SetJSON marshals v as the request body and sets the JSON content type
func (r *Request) SetJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding request body: %w", err)
	}
	r.Body = data
	r.SetHeader("Content-Type", "application/json")
	return nil
}

// DisplayName is the route name when set, otherwise "METHOD URL"
func (r *Request) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Method + " " + r.URL
}

// JoinURL joins a base URL and a path with exactly one slash between them
func JoinURL(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
