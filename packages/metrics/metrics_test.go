package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/giraftest/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Record(t *testing.T) {
	r := NewRecorder()

	r.Record("POST /v1/Account/login", 100*time.Millisecond, nil)
	r.Record("POST /v1/Account/login", 150*time.Millisecond, nil)
	r.Record("GET /v1/User", 200*time.Millisecond, nil)
	r.Record("GET /v1/User", 0, errors.New("connection refused"))

	s := r.Summary()
	assert.Equal(t, int64(4), s.Requests)
	assert.Equal(t, int64(1), s.Errors)
	assert.InDelta(t, float64(100*time.Millisecond), float64(s.Min), float64(time.Millisecond))
	assert.InDelta(t, float64(200*time.Millisecond), float64(s.Max), float64(time.Millisecond))

	require.Len(t, s.Endpoints, 2)
	assert.Equal(t, "GET /v1/User", s.Endpoints[0].Name)
	assert.Equal(t, "POST /v1/Account/login", s.Endpoints[1].Name)

	login, ok := s.Endpoint("POST /v1/Account/login")
	require.True(t, ok)
	assert.Equal(t, int64(2), login.Requests)
	assert.Equal(t, int64(0), login.Errors)
	assert.InDelta(t, float64(125*time.Millisecond), float64(login.Mean), float64(time.Millisecond))

	user, ok := s.Endpoint("GET /v1/User")
	require.True(t, ok)
	assert.Equal(t, int64(2), user.Requests)
	assert.Equal(t, int64(1), user.Errors)

	_, ok = s.Endpoint("DELETE /v1/WeekTemplate/{id}")
	assert.False(t, ok)
}

func TestRecorder_Percentiles(t *testing.T) {
	r := NewRecorder()
	for i := 0; i < 100; i++ {
		r.Record("GET /v1/WeekTemplate", time.Duration(i+1)*time.Millisecond, nil)
	}

	s := r.Summary()
	assert.Equal(t, int64(100), s.Requests)
	assert.InDelta(t, float64(50*time.Millisecond), float64(s.P50), float64(time.Millisecond))
	assert.InDelta(t, float64(95*time.Millisecond), float64(s.P95), float64(time.Millisecond))
	assert.InDelta(t, float64(99*time.Millisecond), float64(s.P99), float64(time.Millisecond))
	assert.True(t, s.P50 <= s.P95)
	assert.True(t, s.P95 <= s.P99)
	assert.True(t, s.P99 <= s.Max)
}

func TestRecorder_Empty(t *testing.T) {
	s := NewRecorder().Summary()
	assert.Zero(t, s.Requests)
	assert.Zero(t, s.P99)
	assert.Empty(t, s.Endpoints)
}

func TestRecorder_Observer(t *testing.T) {
	r := NewRecorder()
	obs := r.Observer()

	req := http.NewRequest("GET", "http://localhost:5000/v1/WeekTemplate/1").SetName("GET /v1/WeekTemplate/{id}")
	obs(req, &http.Response{StatusCode: 200, Duration: 20 * time.Millisecond}, nil)
	obs(req, &http.Response{StatusCode: 500, Duration: 40 * time.Millisecond}, nil)
	obs(req, nil, errors.New("timeout"))

	unnamed := http.NewRequest("GET", "http://localhost:5000/v1/User")
	obs(unnamed, &http.Response{StatusCode: 401, Duration: 5 * time.Millisecond}, nil)

	s := r.Summary()
	assert.Equal(t, int64(4), s.Requests)
	assert.Equal(t, int64(2), s.Errors)

	tmpl, ok := s.Endpoint("GET /v1/WeekTemplate/{id}")
	require.True(t, ok)
	assert.Equal(t, int64(3), tmpl.Requests)
	assert.Equal(t, int64(2), tmpl.Errors)
	assert.InDelta(t, float64(40*time.Millisecond), float64(tmpl.Max), float64(time.Millisecond))

	_, ok = s.Endpoint("GET http://localhost:5000/v1/User")
	assert.True(t, ok)
}

func TestRecorder_Reset(t *testing.T) {
	r := NewRecorder()
	r.Record("GET /v1/User", time.Millisecond, nil)
	r.Reset()

	s := r.Summary()
	assert.Zero(t, s.Requests)
	assert.Empty(t, s.Endpoints)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, int64(minLatencyUs), clamp(0))
	assert.Equal(t, int64(maxLatencyUs), clamp(maxLatencyUs*2))
	assert.Equal(t, int64(1500), clamp(1500))
}
