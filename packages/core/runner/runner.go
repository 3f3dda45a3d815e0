package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/giraftest/packages/assertions"
	"github.com/abdul-hamid-achik/giraftest/packages/fixture"
)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

type Config struct {
	Verbose    bool
	Bail       bool
	NameFilter string
	TagsFilter []string
	// WarnFunc receives warnings; defaults to "warning: ..." on stderr
	WarnFunc WarnFunc
	// LogWriter receives case logs when Verbose is set; defaults to stderr
	LogWriter io.Writer
	// OnResult is called as soon as each case has an outcome
	OnResult func(suite string, result *CaseResult)
}

type Runner struct {
	config *Config
	bailed bool
}

func NewRunner(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.WarnFunc == nil {
		cfg.WarnFunc = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
		}
	}
	if cfg.LogWriter == nil {
		cfg.LogWriter = os.Stderr
	}
	return &Runner{config: cfg}
}

// Validate checks every suite for load errors without running anything
func Validate(suites ...*Suite) error {
	seen := make(map[string]bool)
	for _, s := range suites {
		if s.Name == "" {
			return errors.New("suite without a name")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate suite %q", s.Name)
		}
		seen[s.Name] = true
		if _, err := orderCases(s.Cases, nil); err != nil {
			return fmt.Errorf("suite %q: %w", s.Name, err)
		}
	}
	return nil
}

// Run executes suites one after another. Load errors in any suite are
// returned before the first case runs.
func (r *Runner) Run(ctx context.Context, suites ...*Suite) ([]*RunResult, error) {
	if err := Validate(suites...); err != nil {
		return nil, err
	}

	results := make([]*RunResult, 0, len(suites))
	for _, s := range suites {
		res, err := r.RunSuite(ctx, s)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// RunSuite executes one suite with a fresh fixture store
func (r *Runner) RunSuite(ctx context.Context, suite *Suite) (*RunResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result := &RunResult{
		Suite:       suite.Name,
		Description: suite.Description,
		StartedAt:   time.Now(),
	}
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		result.Warnings = append(result.Warnings, msg)
		r.config.WarnFunc("%s", msg)
	}

	ordered, err := orderCases(suite.Cases, warn)
	if err != nil {
		return nil, fmt.Errorf("suite %q: %w", suite.Name, err)
	}

	state := fixture.NewStore()

	setupFailed := false
	if suite.Setup != nil {
		if err := suite.Setup(ctx, state); err != nil {
			warn("suite %q setup: %v", suite.Name, err)
			setupFailed = true
		}
	}

	declared := make(map[string]bool, len(ordered))
	for _, c := range ordered {
		declared[c.Name] = true
	}

	passed := make(map[string]bool)
	outcome := make(map[string]Status)

	for _, c := range ordered {
		var cr *CaseResult
		switch {
		case setupFailed:
			cr = skipped(c, SkipSetupFailed)
		case r.bailed:
			cr = skipped(c, SkipBail)
		case !r.shouldRun(c):
			cr = skipped(c, SkipFiltered)
		default:
			if reason, ok := unmetDependency(c, declared, passed, outcome); ok {
				cr = skipped(c, reason)
			} else {
				cr = r.runCase(ctx, c, state)
			}
		}

		outcome[c.Name] = cr.Status
		if cr.Passed() {
			passed[c.Name] = true
		}
		if cr.Failed() && r.config.Bail {
			r.bailed = true
		}

		result.add(cr)
		if r.config.OnResult != nil {
			r.config.OnResult(suite.Name, cr)
		}
	}

	if suite.Teardown != nil {
		if err := suite.Teardown(ctx, state); err != nil {
			warn("suite %q teardown: %v", suite.Name, err)
		}
	}

	result.Duration = time.Since(result.StartedAt)
	return result, nil
}

func skipped(c *Case, reason string) *CaseResult {
	return &CaseResult{
		Name:        c.Name,
		Description: c.Description,
		Tags:        c.Tags,
		Status:      StatusSkipped,
		SkipReason:  reason,
	}
}

// unmetDependency returns the skip reason for the first prerequisite that is
// not in the passed set
func unmetDependency(c *Case, declared, passed map[string]bool, outcome map[string]Status) (string, bool) {
	for _, dep := range c.Depends {
		if passed[dep] {
			continue
		}
		if !declared[dep] {
			return fmt.Sprintf("unknown dependency %q", dep), true
		}
		status, ok := outcome[dep]
		if !ok {
			status = "not run"
		}
		return fmt.Sprintf("dependency %q %s", dep, status), true
	}
	return "", false
}

func (r *Runner) runCase(ctx context.Context, c *Case, state *fixture.Store) (cr *CaseResult) {
	var logf func(string, ...any)
	if r.config.Verbose {
		logf = func(format string, args ...any) {
			fmt.Fprintf(r.config.LogWriter, format+"\n", args...)
		}
	}
	t := newT(ctx, c.Name, state, logf)

	cr = &CaseResult{
		Name:        c.Name,
		Description: c.Description,
		Tags:        c.Tags,
	}

	start := time.Now()
	defer func() {
		if v := recover(); v != nil && !assertions.IsAbort(v) {
			cr.Error = fmt.Errorf("panic: %v", v)
		}
		cr.Duration = time.Since(start)
		cr.Assertions = t.check.Results()
		cr.Exchanges = t.exchanges
		cr.Logs = t.logs
		if cr.Error != nil || t.check.Failed() {
			cr.Status = StatusFailed
		} else {
			cr.Status = StatusPassed
		}
	}()

	if c.Run == nil {
		cr.Error = errors.New("case has no body")
		return cr
	}
	cr.Error = c.Run(t)
	return cr
}

func (r *Runner) shouldRun(c *Case) bool {
	if r.config.NameFilter != "" && !matchesPattern(c.Name, r.config.NameFilter) {
		return false
	}
	if len(r.config.TagsFilter) > 0 && !hasAnyTag(c.Tags, r.config.TagsFilter) {
		return false
	}
	return true
}
