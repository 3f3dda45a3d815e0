// Package capture copies values out of API response envelopes into fixture
// state so later cases can use them, for example the bearer token from a
// login or the id of a created week template.
//
// Whole numbers are stored as int64, so ids read back with fixture.Store.Int.
package capture
