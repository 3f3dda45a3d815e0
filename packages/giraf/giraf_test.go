package giraf

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/abdul-hamid-achik/giraftest/packages/core/config"
	"github.com/abdul-hamid-achik/giraftest/packages/core/runner"
	"github.com/abdul-hamid-achik/giraftest/packages/fixture"
	"github.com/abdul-hamid-achik/giraftest/packages/http"
	"github.com/abdul-hamid-achik/giraftest/packages/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnv(t *testing.T, override *config.Config) *Env {
	t.Helper()
	server := httptest.NewServer(mock.NewHandler())
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig().Merge(&config.Config{BaseURL: server.URL}).Merge(override)
	e, err := NewEnv(cfg, http.NewClient(http.WithTimeout(cfg.TimeoutDuration())))
	require.NoError(t, err)
	return e
}

func quietRunner(cfg *runner.Config) *runner.Runner {
	if cfg == nil {
		cfg = &runner.Config{}
	}
	cfg.WarnFunc = func(string, ...any) {}
	return runner.NewRunner(cfg)
}

func describeFailures(results []*runner.RunResult) string {
	var out string
	for _, res := range results {
		for _, cr := range res.Results {
			if cr.Failed() {
				out += fmt.Sprintf("%s/%s: err=%v", res.Suite, cr.Name, cr.Error)
				for _, a := range cr.FailedAssertions() {
					out += fmt.Sprintf(" [%s: %s]", a.Subject, a.Message)
				}
				out += "\n"
			}
		}
	}
	return out
}

func TestSuites_PassAgainstFreshServer(t *testing.T) {
	e := newTestEnv(t, nil)

	results, err := quietRunner(nil).Run(context.Background(), Suites(e)...)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, res := range results {
		assert.Equal(t, 12, res.Total(), res.Suite)
		assert.Equal(t, 12, res.Passed, "%s failures:\n%s", res.Suite, describeFailures(results))
		assert.Zero(t, res.Skipped, res.Suite)
		assert.Empty(t, res.Warnings, res.Suite)
	}
}

func TestSuites_EveryExchangeIsRecorded(t *testing.T) {
	e := newTestEnv(t, nil)

	res, err := quietRunner(nil).RunSuite(context.Background(), AccountSuite(e))
	require.NoError(t, err)

	for _, cr := range res.Results {
		require.NotEmpty(t, cr.Exchanges, cr.Name)
		for _, ex := range cr.Exchanges {
			assert.NotNil(t, ex.Envelope, cr.Name)
		}
	}
	register, _ := findCase(res, "registerCitizenAndLogin")
	assert.Len(t, register.Exchanges, 3)
	assert.Equal(t, "POST /v1/Account/register", register.Exchanges[0].Request.Name)
}

func TestAccountSuite_WrongPasswordSkipsDependents(t *testing.T) {
	e := newTestEnv(t, &config.Config{Accounts: config.Accounts{Guardian: config.Account{Password: "nope"}}})

	res, err := quietRunner(nil).RunSuite(context.Background(), AccountSuite(e))
	require.NoError(t, err)

	outcomes := res.Outcomes()
	assert.Equal(t, runner.StatusFailed, outcomes["loginAsGuardian"])
	for _, name := range []string{
		"registerCitizenAndLogin", "getUsernameWithAuth", "registerWithAuth",
		"loginAsRegistered", "registeredTokenIsValid", "registeredRoleIsCitizen",
	} {
		assert.Equal(t, runner.StatusSkipped, outcomes[name], name)
	}
	for _, name := range []string{
		"getUsernameNoAuth", "loginInvalidPassword", "loginInvalidUsername",
		"registerNoAuth", "loginAsDepartment",
	} {
		assert.Equal(t, runner.StatusPassed, outcomes[name], name)
	}
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 6, res.Skipped)
}

func TestWeekTemplateSuite_IdempotentPattern(t *testing.T) {
	e := newTestEnv(t, nil)
	r := quietRunner(nil)

	first, err := r.RunSuite(context.Background(), WeekTemplateSuite(e))
	require.NoError(t, err)
	second, err := r.RunSuite(context.Background(), WeekTemplateSuite(e))
	require.NoError(t, err)

	assert.Equal(t, first.Outcomes(), second.Outcomes())
	assert.Equal(t, 12, second.Passed)
}

func TestWeekTemplateSuite_FilteredLoginSkipsEverything(t *testing.T) {
	e := newTestEnv(t, nil)

	res, err := quietRunner(&runner.Config{TagsFilter: []string{"template"}}).RunSuite(context.Background(), WeekTemplateSuite(e))
	require.NoError(t, err)

	assert.Equal(t, 0, res.Passed)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 12, res.Skipped)
	cr, _ := findCase(res, "canAddTemplate")
	assert.Equal(t, `dependency "canLoginAsGuardian" skipped`, cr.SkipReason)
}

func TestRemoveCreatedTemplate(t *testing.T) {
	e := newTestEnv(t, nil)
	ctx := context.Background()

	ex, err := e.API.Login(ctx, "Graatand", "password")
	require.NoError(t, err)
	tok := ex.Envelope.Data.String()

	ex, err = e.API.CreateWeekTemplate(ctx, tok, e.Templates[0])
	require.NoError(t, err)
	id := ex.Envelope.Get("data.id").Int()

	state := fixture.NewStore()
	state.Set(KeyGuardianToken, tok)
	state.Set(KeyTemplateID, id)
	require.NoError(t, e.removeCreatedTemplate(ctx, state))

	ex, err = e.API.WeekTemplate(ctx, tok, id)
	require.NoError(t, err)
	assert.Equal(t, "NoWeekTemplateFound", ex.Envelope.ErrorKey)

	// already gone
	assert.Error(t, e.removeCreatedTemplate(ctx, state))
	state.Set(KeyTemplateDeleted, true)
	assert.NoError(t, e.removeCreatedTemplate(ctx, state))
}

func TestAPI_TransportFailure(t *testing.T) {
	api := NewAPI(http.NewClient(), "http://127.0.0.1:1", "")
	ex, err := api.Login(context.Background(), "a", "b")
	require.Error(t, err)
	require.NotNil(t, ex)
	assert.Nil(t, ex.Response)
	assert.Contains(t, err.Error(), "POST /Account/login")
}

func TestAPI_URL(t *testing.T) {
	api := NewAPI(nil, "http://giraf:5000/", "/v2/")
	assert.Equal(t, "http://giraf:5000/v2/WeekTemplate/3", api.URL("/WeekTemplate/3"))
}

func TestSelect(t *testing.T) {
	e := &Env{API: NewAPI(nil, "http://x", "")}
	all := Suites(e)

	got, err := Select(all, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = Select(all, []string{"WeekTemplate"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "weektemplate", got[0].Name)

	_, err = Select(all, []string{"account", "pictogram"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pictogram")

	assert.Equal(t, []string{"account", "weektemplate"}, SuiteNames(e))
}

func TestLoadTemplates(t *testing.T) {
	templates, err := LoadTemplates()
	require.NoError(t, err)
	require.Len(t, templates, 2)

	assert.Equal(t, "Template1", templates[0].Name)
	assert.Equal(t, int64(28), templates[0].Thumbnail.ID)
	assert.Equal(t, "Friday", templates[0].Days[1].Day)
	assert.Equal(t, int64(8), templates[1].Days[1].Activities[1].Pictogram.ID)
	assert.Equal(t, 2, templates[1].Days[1].Activities[1].Order)

	_, err = ParseTemplates([]byte("- name: only"))
	assert.Error(t, err)
}

func findCase(res *runner.RunResult, name string) (*runner.CaseResult, bool) {
	for _, cr := range res.Results {
		if cr.Name == name {
			return cr, true
		}
	}
	return nil, false
}
