// Package http provides the HTTP client used by giraftest cases.
//
// It wraps the standard library's http package with additional features:
//   - Configurable timeouts, proxy and TLS verification
//   - Redirect handling
//   - Request rate limiting
//   - Observers for metrics and request tracing
//   - Parsing of the {success, errorKey, data} response envelope
package http
