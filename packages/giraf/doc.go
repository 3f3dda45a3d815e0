// Package giraf holds the GIRAF API client and the integration suites that
// run against it.
//
// The account suite exercises login, registration and the current user
// endpoint; the week template suite exercises the template CRUD endpoints
// and their authorization. Cases hand bearer tokens, generated usernames
// and created ids to later cases through the suite's fixture store.
package giraf
