// Package builtin provides generator functions for fixture templates and test data.
//
// Available functions:
//   - uuid(): Random UUID v4
//   - uniqueName(prefix): prefix followed by a short random suffix
//   - timestamp(): Current Unix timestamp
//   - now(): Current time in RFC 3339
//   - random(min, max): Random integer in range
//   - randomString(length): Random alphanumeric string
//
// Functions are invoked using the {{functionName(args)}} syntax in configured
// header values and account credentials, which fixture.Store.Resolve expands.
package builtin
