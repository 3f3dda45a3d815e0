package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/giraftest/packages/assertions"
	"github.com/abdul-hamid-achik/giraftest/packages/core/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	name      string
	summaries []*RunSummary
	err       error
}

func (r *recordingNotifier) Notify(_ context.Context, s *RunSummary) error {
	r.summaries = append(r.summaries, s)
	return r.err
}

func (r *recordingNotifier) Name() string { return r.name }

func TestParseNotifyOn(t *testing.T) {
	tests := []struct {
		in      string
		want    NotifyOn
		wantErr bool
	}{
		{in: "", want: NotifyFailure},
		{in: "always", want: NotifyAlways},
		{in: "FAILURE", want: NotifyFailure},
		{in: " success ", want: NotifySuccess},
		{in: "recovery", want: NotifyRecovery},
		{in: "sometimes", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNotifyOn(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestManager_Policy(t *testing.T) {
	passing := &RunSummary{TotalTests: 3, PassedTests: 3}
	failing := &RunSummary{TotalTests: 3, PassedTests: 2, FailedTests: 1}

	tests := []struct {
		policy NotifyOn
		run    []*RunSummary
		want   int
	}{
		{policy: NotifyAlways, run: []*RunSummary{passing, failing}, want: 2},
		{policy: NotifyFailure, run: []*RunSummary{passing, failing}, want: 1},
		{policy: NotifySuccess, run: []*RunSummary{passing, failing}, want: 1},
		{policy: NotifyRecovery, run: []*RunSummary{passing, passing}, want: 0},
		{policy: NotifyRecovery, run: []*RunSummary{failing, passing, passing}, want: 2},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			rec := &recordingNotifier{name: "rec"}
			m := NewManager(tt.policy, rec)
			for _, s := range tt.run {
				copied := *s
				require.NoError(t, m.Notify(context.Background(), &copied))
			}
			assert.Len(t, rec.summaries, tt.want)
		})
	}
}

func TestManager_RecoveryFlag(t *testing.T) {
	rec := &recordingNotifier{name: "rec"}
	m := NewManager(NotifyRecovery, rec)

	require.NoError(t, m.Notify(context.Background(), &RunSummary{FailedTests: 1}))
	require.NoError(t, m.Notify(context.Background(), &RunSummary{PassedTests: 2}))

	require.Len(t, rec.summaries, 2)
	assert.False(t, rec.summaries[0].IsRecovery)
	assert.True(t, rec.summaries[1].IsRecovery)
}

func TestManager_JoinsErrors(t *testing.T) {
	ok := &recordingNotifier{name: "ok"}
	bad := &recordingNotifier{name: "bad", err: errors.New("webhook down")}
	m := NewManager(NotifyAlways, bad, ok)

	err := m.Notify(context.Background(), &RunSummary{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad: webhook down")
	assert.Len(t, ok.summaries, 1)
}

func TestNewRunSummary(t *testing.T) {
	results := []*runner.RunResult{{
		Suite:    "account",
		Duration: time.Second,
		Passed:   1,
		Failed:   2,
		Skipped:  1,
		Results: []*runner.CaseResult{
			{Name: "loginGuardian", Status: runner.StatusPassed},
			{Name: "loginDepartment", Status: runner.StatusFailed, Error: errors.New("connection refused")},
			{Name: "getCurrentUser", Status: runner.StatusFailed, Assertions: []*assertions.Result{
				{Passed: false, Message: `expected "Graatand", got "Tobias"`},
			}},
			{Name: "registerCitizen", Status: runner.StatusSkipped},
		},
	}}

	s := NewRunSummary("http://localhost:5000", results)
	assert.Equal(t, 1, s.Suites)
	assert.Equal(t, 4, s.TotalTests)
	assert.Equal(t, 2, s.FailedTests)
	assert.Equal(t, 1, s.SkippedTests)
	assert.Equal(t, "http://localhost:5000", s.BaseURL)
	assert.Equal(t, []FailedCase{
		{Suite: "account", Name: "loginDepartment", Errors: []string{"connection refused"}},
		{Suite: "account", Name: "getCurrentUser", Errors: []string{`expected "Graatand", got "Tobias"`}},
	}, s.FailedResults)
}

func TestSlackNotifier(t *testing.T) {
	var got slackMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewSlackNotifier(server.URL, WithSlackChannel("#giraf-ci"))
	assert.Equal(t, "slack", n.Name())

	err := n.Notify(context.Background(), &RunSummary{
		TotalTests:    24,
		PassedTests:   23,
		FailedTests:   1,
		Duration:      1500 * time.Millisecond,
		BaseURL:       "http://localhost:5000",
		FailedResults: []FailedCase{{Suite: "weektemplate", Name: "createTemplate", Errors: []string{"status 500"}}},
	})
	require.NoError(t, err)

	assert.Equal(t, "#giraf-ci", got.Channel)
	assert.Equal(t, "giraftest", got.Username)
	require.Len(t, got.Attachments, 1)
	a := got.Attachments[0]
	assert.Equal(t, "danger", a.Color)
	assert.Contains(t, a.Title, "1 GIRAF API case(s) failed")
	assert.Contains(t, a.Text, "`weektemplate/createTemplate`")
	assert.Contains(t, a.Text, "status 500")
	assert.Contains(t, a.Fields, slackField{Title: "Server", Value: "http://localhost:5000", Short: true})
}

func TestSlackNotifier_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("invalid_token"))
	}))
	defer server.Close()

	err := NewSlackNotifier(server.URL).Notify(context.Background(), &RunSummary{PassedTests: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403: invalid_token")
}
