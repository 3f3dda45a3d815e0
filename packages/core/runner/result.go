package runner

import (
	"time"

	"github.com/abdul-hamid-achik/giraftest/packages/assertions"
)

type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Skip reasons that are not tied to a particular prerequisite
const (
	SkipFiltered    = "filtered out"
	SkipBail        = "bail"
	SkipSetupFailed = "setup failed"
)

type CaseResult struct {
	Name        string
	Description string
	Tags        []string
	Status      Status
	SkipReason  string
	Duration    time.Duration
	Assertions  []*assertions.Result
	Error       error
	Exchanges   []*Exchange
	Logs        []string
}

func (r *CaseResult) Passed() bool  { return r.Status == StatusPassed }
func (r *CaseResult) Failed() bool  { return r.Status == StatusFailed }
func (r *CaseResult) Skipped() bool { return r.Status == StatusSkipped }

// FailedAssertions returns only the assertions that did not pass
func (r *CaseResult) FailedAssertions() []*assertions.Result {
	var out []*assertions.Result
	for _, a := range r.Assertions {
		if !a.Passed {
			out = append(out, a)
		}
	}
	return out
}

type RunResult struct {
	Suite       string
	Description string
	StartedAt   time.Time
	Results     []*CaseResult
	Duration    time.Duration
	Passed      int
	Failed      int
	Skipped     int
	// Warnings collects non-fatal problems such as unknown prerequisites or teardown errors
	Warnings []string
}

func (r *RunResult) add(cr *CaseResult) {
	r.Results = append(r.Results, cr)
	switch cr.Status {
	case StatusPassed:
		r.Passed++
	case StatusFailed:
		r.Failed++
	case StatusSkipped:
		r.Skipped++
	}
}

// Outcome returns the status recorded for a case name
func (r *RunResult) Outcome(name string) (Status, bool) {
	for _, cr := range r.Results {
		if cr.Name == name {
			return cr.Status, true
		}
	}
	return "", false
}

// Outcomes maps case name to status
func (r *RunResult) Outcomes() map[string]Status {
	out := make(map[string]Status, len(r.Results))
	for _, cr := range r.Results {
		out[cr.Name] = cr.Status
	}
	return out
}

func (r *RunResult) Total() int {
	return len(r.Results)
}

// Summary totals a set of suite results
type Summary struct {
	Suites   int
	Total    int
	Passed   int
	Failed   int
	Skipped  int
	Duration time.Duration
}

func Summarize(results []*RunResult) Summary {
	var s Summary
	for _, r := range results {
		s.Suites++
		s.Total += r.Total()
		s.Passed += r.Passed
		s.Failed += r.Failed
		s.Skipped += r.Skipped
		s.Duration += r.Duration
	}
	return s
}

// OK reports whether every executed case passed
func (s Summary) OK() bool {
	return s.Failed == 0
}
