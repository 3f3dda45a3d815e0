package giraf

import (
	"fmt"

	"github.com/abdul-hamid-achik/giraftest/packages/assertions"
	"github.com/abdul-hamid-achik/giraftest/packages/capture"
	"github.com/abdul-hamid-achik/giraftest/packages/core/config"
	"github.com/abdul-hamid-achik/giraftest/packages/core/runner"
	"github.com/abdul-hamid-achik/giraftest/packages/http"
)

// DefaultDepartmentID is the department new citizens are registered in
const DefaultDepartmentID = 1

// Env is what the suites need to talk to a GIRAF deployment
type Env struct {
	API          *API
	Accounts     config.Accounts
	DepartmentID int64
	Templates    []WeekTemplate
}

// NewEnv builds an Env from configuration and an HTTP client
func NewEnv(cfg *config.Config, client *http.Client) (*Env, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	return &Env{
		API:          NewAPI(client, cfg.BaseURL, cfg.APIVersion),
		Accounts:     cfg.Accounts,
		DepartmentID: DefaultDepartmentID,
		Templates:    templates,
	}, nil
}

// call records the exchange on t and checks the envelope against the shared
// schema. A transport or decoding failure becomes the case error.
func call(t *runner.T, what string, ex *runner.Exchange, err error) (*http.Envelope, error) {
	t.Record(ex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	t.Check().Schema(what+" envelope", ex.Response.Body, assertions.EnvelopeSchema)
	t.Logf("%s -> %d %s", ex.Request.DisplayName(), ex.Response.StatusCode, ex.Envelope.ErrorKey)
	return ex.Envelope, nil
}

// token reads a stored bearer token, failing the case when it is missing
func token(t *runner.T, key string) string {
	v := t.State().String(key)
	t.Require().NotEmpty(key, v)
	return v
}

// expectSuccess checks the success flag and the NoError key
func expectSuccess(t *runner.T, env *http.Envelope) bool {
	ok := t.Check().IsTrue("success", env.Success)
	return t.Check().Equal("errorKey", "NoError", env.ErrorKey) && ok
}

// expectFailure checks for success=false with the given error key
func expectFailure(t *runner.T, env *http.Envelope, errorKey string) {
	t.Check().IsFalse("success", env.Success)
	t.Check().Equal("errorKey", errorKey, env.ErrorKey)
}

// storeToken checks that data holds a non-empty token string and stores it under key
func storeToken(t *runner.T, env *http.Envelope, key string) error {
	c := t.Check()
	if !c.NotEmpty("data", env.Data) || !c.Path(env, "data", assertions.OpType, "string") {
		return nil
	}
	return capture.Apply(t.State(), env, capture.Body(key, "data"))
}
