package assertions

import (
	"github.com/abdul-hamid-achik/giraftest/packages/http"
)

// Abort is the panic value a Requirer raises after recording a failed check.
// The runner recovers it and marks the case failed without treating it as a crash.
type Abort struct {
	Result *Result
}

func (a Abort) Error() string {
	if a.Result == nil {
		return "requirement failed"
	}
	return "requirement failed: " + a.Result.Subject + ": " + a.Result.Message
}

// IsAbort reports whether a recovered panic value came from a Requirer
func IsAbort(v any) bool {
	_, ok := v.(Abort)
	return ok
}

// Requirer records checks on the underlying Checker and stops the case on failure
type Requirer struct {
	c *Checker
}

func NewRequirer(c *Checker) *Requirer {
	return &Requirer{c: c}
}

func (r *Requirer) stopUnless(passed bool) {
	if passed {
		return
	}
	results := r.c.Results()
	panic(Abort{Result: results[len(results)-1]})
}

func (r *Requirer) That(subject string, actual any, op Operator, expected any) {
	r.stopUnless(r.c.That(subject, actual, op, expected))
}

func (r *Requirer) Equal(subject string, expected, actual any) {
	r.stopUnless(r.c.Equal(subject, expected, actual))
}

func (r *Requirer) IsTrue(subject string, actual any) {
	r.stopUnless(r.c.IsTrue(subject, actual))
}

func (r *Requirer) IsFalse(subject string, actual any) {
	r.stopUnless(r.c.IsFalse(subject, actual))
}

func (r *Requirer) NotNil(subject string, actual any) {
	r.stopUnless(r.c.NotNil(subject, actual))
}

func (r *Requirer) NotEmpty(subject string, actual any) {
	r.stopUnless(r.c.NotEmpty(subject, actual))
}

func (r *Requirer) Path(env *http.Envelope, path string, op Operator, expected any) {
	r.stopUnless(r.c.Path(env, path, op, expected))
}

func (r *Requirer) Schema(subject string, value any, schema string) {
	r.stopUnless(r.c.Schema(subject, value, schema))
}

// NoError records err as a failed requirement and stops the case when it is non-nil
func (r *Requirer) NoError(subject string, err error) {
	if err == nil {
		return
	}
	r.c.Fail(subject, err.Error())
	r.stopUnless(false)
}
