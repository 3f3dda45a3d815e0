package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/giraftest/packages/assertions"
	"github.com/abdul-hamid-achik/giraftest/packages/fixture"
	"github.com/abdul-hamid-achik/giraftest/packages/http"
)

// Case is one named unit of behaviour verification. A case whose
// prerequisites did not all pass is skipped and its body never runs.
type Case struct {
	Name        string
	Description string
	Depends     []string
	Tags        []string
	Run         func(t *T) error
}

// Hook runs once per suite with the suite's fixture state
type Hook func(ctx context.Context, state *fixture.Store) error

type Suite struct {
	Name        string
	Description string
	Cases       []*Case
	// Setup runs before the first case with a fresh fixture store
	Setup    Hook
	Teardown Hook
}

// Case looks a case up by name
func (s *Suite) Case(name string) *Case {
	for _, c := range s.Cases {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Exchange is one request/response pair made by a case body
type Exchange struct {
	Request  *http.Request
	Response *http.Response
	Envelope *http.Envelope
	Error    error
	Duration time.Duration
}

// T is handed to a case body. It carries the run context, the suite's
// shared state and the case's assertion recorder.
type T struct {
	ctx       context.Context
	name      string
	state     *fixture.Store
	check     *assertions.Checker
	require   *assertions.Requirer
	exchanges []*Exchange
	logs      []string
	logf      func(format string, args ...any)
}

func newT(ctx context.Context, name string, state *fixture.Store, logf func(string, ...any)) *T {
	c := assertions.NewChecker()
	return &T{
		ctx:     ctx,
		name:    name,
		state:   state,
		check:   c,
		require: assertions.NewRequirer(c),
		logf:    logf,
	}
}

// NewT builds a T outside the runner, for exercising a single case body
func NewT(ctx context.Context, state *fixture.Store) *T {
	if state == nil {
		state = fixture.NewStore()
	}
	return newT(ctx, "", state, nil)
}

func (t *T) Context() context.Context { return t.ctx }

func (t *T) Name() string { return t.name }

func (t *T) State() *fixture.Store { return t.state }

// Check returns the soft assertion recorder; failures are recorded and the body continues
func (t *T) Check() *assertions.Checker { return t.check }

// Require returns the hard assertion recorder; the first failure stops the body
func (t *T) Require() *assertions.Requirer { return t.require }

func (t *T) Logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	t.logs = append(t.logs, msg)
	if t.logf != nil {
		t.logf("  [%s] %s", t.name, msg)
	}
}

// Record attaches an exchange to the case result
func (t *T) Record(ex *Exchange) {
	if ex != nil {
		t.exchanges = append(t.exchanges, ex)
	}
}

func (t *T) Exchanges() []*Exchange { return t.exchanges }

func (t *T) Logs() []string { return t.logs }
