package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/test", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message": "hello"}`))
	}))
	defer server.Close()

	client := NewClient()
	resp, err := client.Get(context.Background(), server.URL+"/test", nil)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Contains(t, resp.BodyString(), "hello")
}

func TestClient_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"username": "Graatand", "password": "password"}`, string(body))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success": true, "errorKey": "NoError", "data": "tok"}`))
	}))
	defer server.Close()

	req := NewRequest("POST", server.URL+"/v1/Account/login")
	require.NoError(t, req.SetJSON(map[string]string{"username": "Graatand", "password": "password"}))

	resp, err := NewClient().Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.BodyString(), "tok")
}

func TestClient_DoWithJSONAndBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PUT", r.Method)
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"Template1"}`, string(body))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req := NewRequest("PUT", server.URL+"/v1/WeekTemplate/3").SetBearer("abc")
	require.NoError(t, req.SetJSON(map[string]string{"name": "Template1"}))

	resp, err := NewClient().Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestClient_NoBearerWhenTokenEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req := NewRequest("GET", server.URL).SetBearer("")
	_, err := NewClient().Do(context.Background(), req)
	require.NoError(t, err)
}

func TestClient_WithTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(WithTimeout(50 * time.Millisecond))
	_, err := client.Get(context.Background(), server.URL, nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "deadline exceeded")
}

func TestClient_WithDefaultHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "custom-agent", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(WithDefaultHeaders(map[string]string{
		"Authorization": "test-token",
		"User-Agent":    "custom-agent",
	}))
	resp, err := client.Get(context.Background(), server.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestClient_StopsAfterMaxRedirects(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer server.Close()

	resp, err := NewClient().Get(context.Background(), server.URL+"/redirect", nil)

	require.NoError(t, err)
	assert.Equal(t, 302, resp.StatusCode)
	// the first request plus nine followed redirects
	assert.Equal(t, int32(DefaultMaxRedirects), hits.Load())
}

func TestClient_Observer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	var mu sync.Mutex
	var seen []string
	var statuses []int
	client := NewClient(WithObserver(func(req *Request, resp *Response, err error) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, req.DisplayName())
		if resp != nil {
			statuses = append(statuses, resp.StatusCode)
		}
	}))

	_, err := client.Do(context.Background(), NewRequest("GET", server.URL+"/x").SetName("GET /x"))
	require.NoError(t, err)
	_, err = client.Get(context.Background(), "ftp://nowhere", nil)
	require.Error(t, err)

	assert.Equal(t, []string{"GET /x", "GET ftp://nowhere"}, seen)
	assert.Equal(t, []int{http.StatusTeapot}, statuses)
}

func TestClient_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(WithRateLimit(20))
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.Get(context.Background(), server.URL, nil)
		require.NoError(t, err)
	}
	// burst of 1 at 20 rps: the 2nd and 3rd requests wait ~50ms each
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient().Get(ctx, server.URL, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResponse_Envelope(t *testing.T) {
	t.Run("success with data", func(t *testing.T) {
		resp := &Response{StatusCode: 200, Body: []byte(`{"success":true,"errorKey":"NoError","data":{"id":7}}`)}
		env, err := resp.Envelope()
		require.NoError(t, err)
		assert.True(t, env.Success)
		assert.Equal(t, "NoError", env.ErrorKey)
		assert.True(t, env.HasData())
		assert.Equal(t, int64(7), env.Get("data.id").Int())
	})

	t.Run("failure with null data", func(t *testing.T) {
		resp := &Response{StatusCode: 401, Body: []byte(`{"success":false,"errorKey":"InvalidCredentials","data":null}`)}
		env, err := resp.Envelope()
		require.NoError(t, err)
		assert.False(t, env.Success)
		assert.Equal(t, "InvalidCredentials", env.ErrorKey)
		assert.False(t, env.HasData())
	})

	t.Run("not json", func(t *testing.T) {
		resp := &Response{StatusCode: 500, Body: []byte(`<html>oops</html>`)}
		_, err := resp.Envelope()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not JSON")
	})

	t.Run("missing success", func(t *testing.T) {
		resp := &Response{StatusCode: 200, Body: []byte(`{"data":1}`)}
		_, err := resp.Envelope()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no success field")
	})
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "http://host/v1/User", JoinURL("http://host/", "/v1/User"))
	assert.Equal(t, "http://host/v1/User", JoinURL("http://host", "v1/User"))
	assert.Equal(t, "http://host", JoinURL("http://host", ""))
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid http URL",
			url:     "http://example.com/path",
			wantErr: false,
		},
		{
			name:    "valid https URL",
			url:     "https://example.com/path",
			wantErr: false,
		},
		{
			name:    "invalid scheme",
			url:     "ftp://example.com",
			wantErr: true,
			errMsg:  "unsupported URL scheme",
		},
		{
			name:    "missing scheme",
			url:     "example.com/path",
			wantErr: true,
			errMsg:  "unsupported URL scheme",
		},
		{
			name:    "missing host",
			url:     "http:///path",
			wantErr: true,
			errMsg:  "URL must have a host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
