package http

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

type Response struct {
	StatusCode int
	Status     string
	Headers    map[string]string
	Body       []byte
	Duration   time.Duration
}

// Envelope is the {success, errorKey, data} wrapper every API response carries
type Envelope struct {
	Success  bool
	ErrorKey string
	Data     gjson.Result
	Raw      gjson.Result
}

// Get looks up a gjson path inside the full envelope, e.g. "data.days.0.day"
func (e *Envelope) Get(path string) gjson.Result {
	return e.Raw.Get(path)
}

// HasData reports whether data is present and not null
func (e *Envelope) HasData() bool {
	return e.Data.Exists() && e.Data.Type != gjson.Null
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

// Envelope parses the response body as an API envelope.
// The success field must be present; errorKey and data may be absent.
func (r *Response) Envelope() (*Envelope, error) {
	if !gjson.ValidBytes(r.Body) {
		return nil, fmt.Errorf("response body is not JSON (status %d): %s", r.StatusCode, truncate(r.BodyString(), 200))
	}
	raw := gjson.ParseBytes(r.Body)
	success := raw.Get("success")
	if !success.Exists() {
		return nil, fmt.Errorf("response envelope has no success field (status %d)", r.StatusCode)
	}
	return &Envelope{
		Success:  success.Bool(),
		ErrorKey: raw.Get("errorKey").String(),
		Data:     raw.Get("data"),
		Raw:      raw,
	}, nil
}

func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
