// Package notify sends run summaries to chat services.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/giraftest/packages/core/runner"
)

// NotifyOn specifies when to send notifications
type NotifyOn string

const (
	// NotifyAlways sends notifications for every run
	NotifyAlways NotifyOn = "always"
	// NotifyFailure sends notifications only when a case fails
	NotifyFailure NotifyOn = "failure"
	// NotifySuccess sends notifications only when every executed case passes
	NotifySuccess NotifyOn = "success"
	// NotifyRecovery sends notifications on failure and on the first passing run after one
	NotifyRecovery NotifyOn = "recovery"
)

// ParseNotifyOn validates a policy name. An empty name means failure.
func ParseNotifyOn(s string) (NotifyOn, error) {
	switch n := NotifyOn(strings.ToLower(strings.TrimSpace(s))); n {
	case "":
		return NotifyFailure, nil
	case NotifyAlways, NotifyFailure, NotifySuccess, NotifyRecovery:
		return n, nil
	default:
		return "", fmt.Errorf("invalid notify policy %q (use always, failure, success or recovery)", s)
	}
}

// RunSummary represents the summary of a run for notifications
type RunSummary struct {
	Suites        int           `json:"suites"`
	TotalTests    int           `json:"total_tests"`
	PassedTests   int           `json:"passed_tests"`
	FailedTests   int           `json:"failed_tests"`
	SkippedTests  int           `json:"skipped_tests"`
	Duration      time.Duration `json:"duration"`
	BaseURL       string        `json:"base_url,omitempty"`
	RunID         string        `json:"run_id,omitempty"`
	FailedResults []FailedCase  `json:"failed_results,omitempty"`
	IsRecovery    bool          `json:"is_recovery,omitempty"`
}

// FailedCase represents a failed case for notifications
type FailedCase struct {
	Suite  string   `json:"suite"`
	Name   string   `json:"name"`
	Errors []string `json:"errors,omitempty"`
}

// NewRunSummary builds a summary from suite results
func NewRunSummary(baseURL string, results []*runner.RunResult) *RunSummary {
	sum := runner.Summarize(results)
	s := &RunSummary{
		Suites:       sum.Suites,
		TotalTests:   sum.Total,
		PassedTests:  sum.Passed,
		FailedTests:  sum.Failed,
		SkippedTests: sum.Skipped,
		Duration:     sum.Duration,
		BaseURL:      baseURL,
	}
	for _, result := range results {
		for _, cr := range result.Results {
			if !cr.Failed() {
				continue
			}
			fc := FailedCase{Suite: result.Suite, Name: cr.Name}
			if cr.Error != nil {
				fc.Errors = append(fc.Errors, cr.Error.Error())
			}
			for _, a := range cr.FailedAssertions() {
				fc.Errors = append(fc.Errors, a.Message)
			}
			s.FailedResults = append(s.FailedResults, fc)
		}
	}
	return s
}

// Notifier is the interface for notification services
type Notifier interface {
	// Notify sends a notification about a run
	Notify(ctx context.Context, summary *RunSummary) error

	// Name returns the name of the notifier
	Name() string
}

// Manager applies the NotifyOn policy across notifiers. It remembers the
// previous outcome so watch mode can report recoveries.
type Manager struct {
	notifiers []Notifier
	notifyOn  NotifyOn
	lastState bool // true if last run was successful
}

func NewManager(notifyOn NotifyOn, notifiers ...Notifier) *Manager {
	return &Manager{
		notifiers: notifiers,
		notifyOn:  notifyOn,
		lastState: true,
	}
}

// ShouldNotify reports whether the policy selects this summary
func (m *Manager) ShouldNotify(summary *RunSummary) bool {
	success := summary.FailedTests == 0
	switch m.notifyOn {
	case NotifyAlways:
		return true
	case NotifyFailure:
		return !success
	case NotifySuccess:
		return success
	case NotifyRecovery:
		return !success || !m.lastState
	}
	return false
}

// Notify sends the summary to every notifier when the policy selects it.
// Errors from individual notifiers are joined.
func (m *Manager) Notify(ctx context.Context, summary *RunSummary) error {
	success := summary.FailedTests == 0
	shouldNotify := m.ShouldNotify(summary)
	if m.notifyOn == NotifyRecovery && success && !m.lastState {
		summary.IsRecovery = true
	}
	m.lastState = success

	if !shouldNotify {
		return nil
	}

	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, summary); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}
