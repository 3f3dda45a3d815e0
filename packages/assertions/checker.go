package assertions

import (
	"fmt"

	"github.com/abdul-hamid-achik/giraftest/packages/http"
	"github.com/tidwall/gjson"
)

type Result struct {
	Passed   bool
	Message  string
	Expected any
	Actual   any
	Subject  string
	Operator string
}

// Checker records soft checks for one case
type Checker struct {
	results []*Result
}

func NewChecker() *Checker {
	return &Checker{}
}

func (c *Checker) Results() []*Result {
	return c.results
}

// Failed reports whether any recorded check failed
func (c *Checker) Failed() bool {
	for _, r := range c.results {
		if !r.Passed {
			return true
		}
	}
	return false
}

// Failures returns only the failed checks
func (c *Checker) Failures() []*Result {
	var out []*Result
	for _, r := range c.results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

func (c *Checker) record(r *Result) *Result {
	c.results = append(c.results, r)
	return r
}

// That compares actual against expected with op. gjson results are unwrapped,
// a missing path becomes nil.
func (c *Checker) That(subject string, actual any, op Operator, expected any) bool {
	actual = normalize(actual)
	passed, msg := compare(actual, op, expected)
	r := &Result{
		Passed:   passed,
		Message:  msg,
		Expected: expected,
		Actual:   actual,
		Subject:  subject,
		Operator: op.String(),
	}
	if op == OpLength {
		r.Actual = computeLength(actual)
	}
	return c.record(r).Passed
}

func (c *Checker) Equal(subject string, expected, actual any) bool {
	return c.That(subject, actual, OpEquals, expected)
}

func (c *Checker) NotEqual(subject string, unexpected, actual any) bool {
	return c.That(subject, actual, OpNotEquals, unexpected)
}

func (c *Checker) IsTrue(subject string, actual any) bool {
	return c.boolean(subject, actual, true)
}

func (c *Checker) IsFalse(subject string, actual any) bool {
	return c.boolean(subject, actual, false)
}

func (c *Checker) boolean(subject string, actual any, want bool) bool {
	actual = normalize(actual)
	got, ok := actual.(bool)
	r := &Result{
		Passed:   ok && got == want,
		Expected: want,
		Actual:   actual,
		Subject:  subject,
		Operator: "is",
	}
	if !r.Passed {
		if !ok {
			r.Message = fmt.Sprintf("expected boolean %v, got %v (%s)", want, actual, jsonType(actual))
		} else {
			r.Message = fmt.Sprintf("expected %v, got %v", want, got)
		}
	}
	return c.record(r).Passed
}

// NotNil passes when the value exists and is not JSON null
func (c *Checker) NotNil(subject string, actual any) bool {
	return c.That(subject, actual, OpExists, nil)
}

// NotEmpty passes for strings, arrays and objects with a non-zero length.
// Values without a length, such as numbers, booleans and null, fail.
func (c *Checker) NotEmpty(subject string, actual any) bool {
	actual = normalize(actual)
	n := computeLength(actual)
	r := &Result{
		Passed:   n > 0,
		Expected: "non-empty",
		Actual:   actual,
		Subject:  subject,
		Operator: "notEmpty",
	}
	switch {
	case r.Passed:
	case actual != nil && n < 0:
		r.Message = fmt.Sprintf("expected %s to be a non-empty string, array or object, got %s", subject, jsonType(actual))
	default:
		r.Message = fmt.Sprintf("expected %s to be non-empty", subject)
	}
	return c.record(r).Passed
}

// Path looks up a gjson path in the envelope and compares it with op
func (c *Checker) Path(env *http.Envelope, path string, op Operator, expected any) bool {
	if env == nil {
		return c.record(&Result{
			Subject:  path,
			Operator: op.String(),
			Expected: expected,
			Message:  "no response envelope",
		}).Passed
	}
	return c.That(path, env.Get(path), op, expected)
}

// Fail records an unconditional failure
func (c *Checker) Fail(subject, message string) {
	c.record(&Result{Subject: subject, Operator: "fail", Message: message})
}

func normalize(v any) any {
	switch r := v.(type) {
	case gjson.Result:
		if !r.Exists() || r.Type == gjson.Null {
			return nil
		}
		return r.Value()
	case *gjson.Result:
		if r == nil {
			return nil
		}
		return normalize(*r)
	}
	return v
}
