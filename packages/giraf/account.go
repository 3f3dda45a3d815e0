package giraf

import (
	"github.com/abdul-hamid-achik/giraftest/packages/assertions"
	"github.com/abdul-hamid-achik/giraftest/packages/builtin"
	"github.com/abdul-hamid-achik/giraftest/packages/core/runner"
)

// Fixture keys written by the account suite
const (
	KeyGuardianToken      = "guardianToken"
	KeyDepartmentToken    = "departmentToken"
	KeyRegisteredUsername = "registeredUsername"
	KeyRegisteredToken    = "registeredToken"
	KeyCitizenUsername    = "citizenUsername"
	KeyCitizenToken       = "citizenToken"
)

// AccountSuite covers login, registration and the current user endpoint
func AccountSuite(e *Env) *runner.Suite {
	return &runner.Suite{
		Name:        "account",
		Description: "Account Controller",
		Cases: []*runner.Case{
			{
				Name:        "getUsernameNoAuth",
				Description: "GETting username without authorization yields error",
				Tags:        []string{"user"},
				Run: func(t *runner.T) error {
					ex, err := e.API.UserByID(t.Context(), "", "username")
					env, err := call(t, "get user", ex, err)
					if err != nil {
						return err
					}
					expectFailure(t, env, "NotFound")
					return nil
				},
			},
			{
				Name:        "loginAsGuardian",
				Description: "Login as " + e.Accounts.Guardian.Username,
				Tags:        []string{"auth"},
				Run:         e.loginCase(e.Accounts.Guardian.Username, e.Accounts.Guardian.Password, KeyGuardianToken),
			},
			{
				Name:        "registerCitizenAndLogin",
				Description: "Register a citizen, log in as it and fetch its user",
				Depends:     []string{"loginAsGuardian"},
				Tags:        []string{"auth", "register"},
				Run: func(t *runner.T) error {
					username := builtin.UniqueName("grundenberger")
					ex, err := e.API.Register(t.Context(), token(t, KeyGuardianToken), e.citizen(username))
					env, err := call(t, "register", ex, err)
					if err != nil {
						return err
					}
					t.Require().IsTrue("register success", env.Success)

					ex, err = e.API.Login(t.Context(), username, e.Accounts.Guardian.Password)
					env, err = call(t, "login", ex, err)
					if err != nil {
						return err
					}
					t.Require().IsTrue("login success", env.Success)

					ex, err = e.API.CurrentUser(t.Context(), env.Data.String())
					env, err = call(t, "current user", ex, err)
					if err != nil {
						return err
					}
					expectSuccess(t, env)
					t.Check().Path(env, "data.username", assertions.OpEquals, username)
					return nil
				},
			},
			{
				Name:        "getUsernameWithAuth",
				Description: "GETting username with authorization",
				Depends:     []string{"loginAsGuardian"},
				Tags:        []string{"user"},
				Run: func(t *runner.T) error {
					ex, err := e.API.CurrentUser(t.Context(), token(t, KeyGuardianToken))
					env, err := call(t, "current user", ex, err)
					if err != nil {
						return err
					}
					t.Check().IsTrue("success", env.Success)
					t.Check().NotNil("data", env.Data)
					t.Check().Path(env, "data.username", assertions.OpEquals, e.Accounts.Guardian.Username)
					return nil
				},
			},
			{
				Name:        "loginInvalidPassword",
				Description: "Login with invalid password",
				Tags:        []string{"auth"},
				Run:         e.badLoginCase(e.Accounts.Guardian.Username, "wrongPassword"),
			},
			{
				Name:        "loginInvalidUsername",
				Description: "Login with invalid username",
				Tags:        []string{"auth"},
				Run:         e.badLoginCase("Wrong"+e.Accounts.Guardian.Username, e.Accounts.Guardian.Password),
			},
			{
				Name:        "registerNoAuth",
				Description: "Register a user without logging in",
				Tags:        []string{"register"},
				Run: func(t *runner.T) error {
					ex, err := e.API.Register(t.Context(), "", e.citizen(builtin.UniqueName("Gunnar")))
					env, err := call(t, "register", ex, err)
					if err != nil {
						return err
					}
					t.Check().IsFalse("success", env.Success)
					return nil
				},
			},
			{
				Name:        "registerWithAuth",
				Description: "Register a user as " + e.Accounts.Guardian.Username,
				Depends:     []string{"loginAsGuardian"},
				Tags:        []string{"register"},
				Run: func(t *runner.T) error {
					username := builtin.UniqueName("Gunnar")
					ex, err := e.API.Register(t.Context(), token(t, KeyGuardianToken), e.citizen(username))
					env, err := call(t, "register", ex, err)
					if err != nil {
						return err
					}
					if t.Check().IsTrue("success", env.Success) {
						t.State().Set(KeyRegisteredUsername, username)
					}
					return nil
				},
			},
			{
				Name:        "loginAsRegistered",
				Description: "Login as the new user",
				Depends:     []string{"registerWithAuth"},
				Tags:        []string{"auth"},
				Run: func(t *runner.T) error {
					username, err := t.State().MustString(KeyRegisteredUsername)
					if err != nil {
						return err
					}
					return e.loginCase(username, e.Accounts.Guardian.Password, KeyRegisteredToken)(t)
				},
			},
			{
				Name:        "registeredTokenIsValid",
				Description: "The new user's token is valid",
				Depends:     []string{"loginAsRegistered"},
				Tags:        []string{"auth", "user"},
				Run: func(t *runner.T) error {
					ex, err := e.API.CurrentUser(t.Context(), token(t, KeyRegisteredToken))
					env, err := call(t, "current user", ex, err)
					if err != nil {
						return err
					}
					t.Check().IsTrue("success", env.Success)
					t.Check().Path(env, "data.username", assertions.OpEquals, t.State().String(KeyRegisteredUsername))
					return nil
				},
			},
			{
				Name:        "registeredRoleIsCitizen",
				Description: "The new user is a citizen",
				Depends:     []string{"loginAsRegistered"},
				Tags:        []string{"user"},
				Run: func(t *runner.T) error {
					ex, err := e.API.CurrentUser(t.Context(), token(t, KeyRegisteredToken))
					env, err := call(t, "current user", ex, err)
					if err != nil {
						return err
					}
					t.Check().IsTrue("success", env.Success)
					t.Check().Path(env, "data.roleName", assertions.OpEquals, "Citizen")
					return nil
				},
			},
			{
				Name:        "loginAsDepartment",
				Description: "Login as department",
				Tags:        []string{"auth"},
				Run:         e.loginCase(e.Accounts.Department.Username, e.Accounts.Department.Password, KeyDepartmentToken),
			},
		},
	}
}

func (e *Env) citizen(username string) RegisterRequest {
	return RegisterRequest{
		Username:     username,
		Password:     e.Accounts.Guardian.Password,
		Role:         "Citizen",
		DepartmentID: e.DepartmentID,
	}
}

// loginCase logs in and stores the returned token under key
func (e *Env) loginCase(username, password, key string) func(t *runner.T) error {
	return func(t *runner.T) error {
		ex, err := e.API.Login(t.Context(), username, password)
		env, err := call(t, "login", ex, err)
		if err != nil {
			return err
		}
		t.Check().IsTrue("success", env.Success)
		return storeToken(t, env, key)
	}
}

func (e *Env) badLoginCase(username, password string) func(t *runner.T) error {
	return func(t *runner.T) error {
		ex, err := e.API.Login(t.Context(), username, password)
		env, err := call(t, "login", ex, err)
		if err != nil {
			return err
		}
		expectFailure(t, env, "InvalidCredentials")
		return nil
	}
}
