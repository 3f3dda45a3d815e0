// Package assertions records the checks a case makes against API responses.
//
// A Checker is soft: a failed check is recorded and the case body keeps going,
// so one run reports every mismatch. A Requirer records the same way but stops
// the case body on the first failure, for checks later code depends on (for
// example, data must be present before it is indexed).
//
// Supported operators: ==, !=, >, exists, notExists, length, type, includes.
// Equality is strict about JSON types: numbers compare by value whatever their
// Go type, but "1" does not equal 1. JSON Schema validation is available
// through Schema.
package assertions
