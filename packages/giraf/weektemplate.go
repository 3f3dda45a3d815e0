package giraf

import (
	"context"
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/giraftest/packages/assertions"
	"github.com/abdul-hamid-achik/giraftest/packages/builtin"
	"github.com/abdul-hamid-achik/giraftest/packages/capture"
	"github.com/abdul-hamid-achik/giraftest/packages/core/runner"
	"github.com/abdul-hamid-achik/giraftest/packages/fixture"
)

// Fixture keys written by the week template suite
const (
	KeyTemplateID      = "templateId"
	KeyTemplateDeleted = "templateDeleted"
)

// Seeded template every deployment is expected to carry
const (
	seededTemplateID   = 1
	seededTemplateName = "SkabelonUge"
)

// WeekTemplateSuite covers listing, reading, creating, updating and deleting week templates
func WeekTemplateSuite(e *Env) *runner.Suite {
	return &runner.Suite{
		Name:        "weektemplate",
		Description: "WeekTemplate Controller",
		Setup: func(ctx context.Context, state *fixture.Store) error {
			if len(e.Templates) < 2 {
				return errors.New("week template payloads are not loaded")
			}
			state.Set(KeyCitizenUsername, builtin.UniqueName("Alice"))
			return nil
		},
		Teardown: e.removeCreatedTemplate,
		Cases: []*runner.Case{
			{
				Name:        "canLoginAsGuardian",
				Description: "Log in as guardian",
				Tags:        []string{"auth"},
				Run: func(t *runner.T) error {
					ex, err := e.API.Login(t.Context(), e.Accounts.Guardian.Username, e.Accounts.Guardian.Password)
					env, err := call(t, "login", ex, err)
					if err != nil {
						return err
					}
					expectSuccess(t, env)
					return storeToken(t, env, KeyGuardianToken)
				},
			},
			{
				Name:        "canRegisterCitizen",
				Description: "Register a citizen",
				Depends:     []string{"canLoginAsGuardian"},
				Tags:        []string{"register"},
				Run: func(t *runner.T) error {
					username, err := t.State().MustString(KeyCitizenUsername)
					if err != nil {
						return err
					}
					ex, err := e.API.Register(t.Context(), token(t, KeyGuardianToken), e.citizen(username))
					env, err := call(t, "register", ex, err)
					if err != nil {
						return err
					}
					expectSuccess(t, env)
					return nil
				},
			},
			{
				Name:        "canLoginAsCitizen",
				Description: "Log in as the registered citizen",
				Depends:     []string{"canRegisterCitizen"},
				Tags:        []string{"auth"},
				Run: func(t *runner.T) error {
					ex, err := e.API.Login(t.Context(), t.State().String(KeyCitizenUsername), e.Accounts.Guardian.Password)
					env, err := call(t, "login", ex, err)
					if err != nil {
						return err
					}
					expectSuccess(t, env)
					return storeToken(t, env, KeyCitizenToken)
				},
			},
			{
				Name:        "canGetAllTemplates",
				Description: "Get all templates",
				Depends:     []string{"canLoginAsGuardian"},
				Tags:        []string{"template"},
				Run: func(t *runner.T) error {
					ex, err := e.API.WeekTemplates(t.Context(), token(t, KeyGuardianToken))
					env, err := call(t, "list templates", ex, err)
					if err != nil {
						return err
					}
					expectSuccess(t, env)
					t.Require().Path(env, "data", assertions.OpType, "array")
					c := t.Check()
					c.Path(env, "data.#.templateId", assertions.OpIncludes, seededTemplateID)
					c.Path(env, "data.0.name", assertions.OpEquals, seededTemplateName)
					c.Path(env, "data.0.templateId", assertions.OpEquals, seededTemplateID)
					return nil
				},
			},
			{
				Name:        "canGetSpecificTemplate",
				Description: "Get a specific template",
				Depends:     []string{"canLoginAsGuardian"},
				Tags:        []string{"template"},
				Run: func(t *runner.T) error {
					ex, err := e.API.WeekTemplate(t.Context(), token(t, KeyGuardianToken), seededTemplateID)
					env, err := call(t, "get template", ex, err)
					if err != nil {
						return err
					}
					expectSuccess(t, env)
					t.Require().NotNil("data", env.Data)
					c := t.Check()
					c.Path(env, "data.name", assertions.OpEquals, seededTemplateName)
					c.Path(env, "data.days", assertions.OpLength, 7)
					c.Path(env, "data.thumbnail.id", assertions.OpEquals, 1)
					c.Path(env, "data.days.0.day", assertions.OpEquals, 1)
					c.Path(env, "data.days.5.day", assertions.OpEquals, 6)
					c.Path(env, "data.days.4.activities.1.pictogram.id", assertions.OpEquals, 70)
					return nil
				},
			},
			{
				Name:        "getTemplateOutsideDepartmentFails",
				Description: "A citizen cannot read department templates",
				Depends:     []string{"canLoginAsCitizen"},
				Tags:        []string{"template", "authorization"},
				Run: func(t *runner.T) error {
					ex, err := e.API.WeekTemplate(t.Context(), token(t, KeyCitizenToken), seededTemplateID)
					env, err := call(t, "get template", ex, err)
					if err != nil {
						return err
					}
					expectFailure(t, env, "NotAuthorized")
					return nil
				},
			},
			{
				Name:        "canAddTemplate",
				Description: "Add a new template",
				Depends:     []string{"canLoginAsGuardian"},
				Tags:        []string{"template"},
				Run: func(t *runner.T) error {
					ex, err := e.API.CreateWeekTemplate(t.Context(), token(t, KeyGuardianToken), e.Templates[0])
					env, err := call(t, "create template", ex, err)
					if err != nil {
						return err
					}
					expectSuccess(t, env)
					t.Require().NotNil("data", env.Data)
					c := t.Check()
					c.Path(env, "data.id", assertions.OpGreaterThan, 0)
					c.Path(env, "data.id", assertions.OpNotEquals, seededTemplateID)
					if err := capture.Apply(t.State(), env, capture.Body(KeyTemplateID, "data.id")); err != nil {
						c.Fail("data.id", err.Error())
					}
					return nil
				},
			},
			{
				Name:        "templateIsAdded",
				Description: "The new template can be read back",
				Depends:     []string{"canAddTemplate"},
				Tags:        []string{"template"},
				Run:         e.templateMatches(0),
			},
			{
				Name:        "canUpdateTemplate",
				Description: "Update the template",
				Depends:     []string{"canAddTemplate"},
				Tags:        []string{"template"},
				Run: func(t *runner.T) error {
					id, err := templateID(t)
					if err != nil {
						return err
					}
					ex, err := e.API.UpdateWeekTemplate(t.Context(), token(t, KeyGuardianToken), id, e.Templates[1])
					env, err := call(t, "update template", ex, err)
					if err != nil {
						return err
					}
					expectSuccess(t, env)
					return nil
				},
			},
			{
				Name:        "templateIsUpdated",
				Description: "The updated template can be read back",
				Depends:     []string{"canUpdateTemplate"},
				Tags:        []string{"template"},
				Run:         e.templateMatches(1),
			},
			{
				Name:        "canDeleteTemplate",
				Description: "Delete the template",
				Depends:     []string{"canAddTemplate"},
				Tags:        []string{"template"},
				Run: func(t *runner.T) error {
					id, err := templateID(t)
					if err != nil {
						return err
					}
					ex, err := e.API.DeleteWeekTemplate(t.Context(), token(t, KeyGuardianToken), id)
					env, err := call(t, "delete template", ex, err)
					if err != nil {
						return err
					}
					if expectSuccess(t, env) {
						t.State().Set(KeyTemplateDeleted, true)
					}
					return nil
				},
			},
			{
				Name:        "templateIsDeleted",
				Description: "The deleted template is gone",
				Depends:     []string{"canDeleteTemplate"},
				Tags:        []string{"template"},
				Run: func(t *runner.T) error {
					id, err := templateID(t)
					if err != nil {
						return err
					}
					ex, err := e.API.WeekTemplate(t.Context(), token(t, KeyGuardianToken), id)
					env, err := call(t, "get template", ex, err)
					if err != nil {
						return err
					}
					expectFailure(t, env, "NoWeekTemplateFound")
					t.Check().Path(env, "data", assertions.OpNotExists, nil)
					return nil
				},
			},
		},
	}
}

func templateID(t *runner.T) (int64, error) {
	id, ok := t.State().Int(KeyTemplateID)
	if !ok {
		return 0, fmt.Errorf("fixture %q is not set", KeyTemplateID)
	}
	return id, nil
}

// templateMatches reads the created template back and compares it with payload i.
// Days come back ordered by weekday, which is also the payload order.
func (e *Env) templateMatches(i int) func(t *runner.T) error {
	return func(t *runner.T) error {
		id, err := templateID(t)
		if err != nil {
			return err
		}
		ex, err := e.API.WeekTemplate(t.Context(), token(t, KeyGuardianToken), id)
		env, err := call(t, "get template", ex, err)
		if err != nil {
			return err
		}
		expectSuccess(t, env)
		t.Require().NotNil("data", env.Data)

		want := e.Templates[i]
		c := t.Check()
		c.Path(env, "data.thumbnail.id", assertions.OpEquals, want.Thumbnail.ID)
		for d, day := range want.Days {
			if len(day.Activities) < 2 {
				continue
			}
			path := fmt.Sprintf("data.days.%d.activities.1.pictogram.id", d)
			c.Path(env, path, assertions.OpEquals, day.Activities[1].Pictogram.ID)
		}
		return nil
	}
}

// removeCreatedTemplate deletes the template canAddTemplate created when the
// suite did not get to delete it itself
func (e *Env) removeCreatedTemplate(ctx context.Context, state *fixture.Store) error {
	id, ok := state.Int(KeyTemplateID)
	if !ok || state.Has(KeyTemplateDeleted) {
		return nil
	}
	tok := state.String(KeyGuardianToken)
	if tok == "" {
		return nil
	}
	ex, err := e.API.DeleteWeekTemplate(ctx, tok, id)
	if err != nil {
		return fmt.Errorf("removing week template %d: %w", id, err)
	}
	if !ex.Envelope.Success {
		return fmt.Errorf("removing week template %d: %s", id, ex.Envelope.ErrorKey)
	}
	return nil
}
