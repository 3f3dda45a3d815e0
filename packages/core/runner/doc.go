// Package runner executes suites of ordered, dependency-aware test cases.
//
// Cases run one at a time in declaration order. A case that names
// prerequisites runs only when every prerequisite has already passed;
// otherwise it is recorded as skipped and its body never executes, so skips
// follow the prerequisite graph transitively. Cases share a fixture.Store
// that is created fresh for each suite run.
//
// A case body receives a *T with soft checks (Check) and hard requirements
// (Require). Failed checks, returned errors and panics fail only the case
// that raised them.
package runner
