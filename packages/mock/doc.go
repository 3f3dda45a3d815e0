// Package mock provides an in-memory fake of the GIRAF REST API.
//
// It serves the account, user and week template endpoints with the
// {success, errorKey, data} envelope, seeded from an embedded YAML file, so
// the suites can run without a real deployment. It is a test double and
// does not persist anything.
package mock
