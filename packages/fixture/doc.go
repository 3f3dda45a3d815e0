// Package fixture holds the state shared between the cases of one suite run.
//
// A Store is created fresh when a suite starts and discarded when it ends.
// Cases write tokens, generated usernames and created ids into it and later
// cases read them back.
//
// Resolve expands {{key}}, {{$ENV_VAR}} and {{func(args)}} expressions; the
// CLI runs configured header values and account credentials through it.
package fixture
