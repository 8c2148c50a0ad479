// Package apikey gates API-namespace traffic behind a bearer credential
// check. The middleware extracts the raw Authorization header value and
// verifies it exists in a key registry before any session or business
// logic runs; requests without a known credential are rejected with a
// 403 and a server-side log line that never echoes the credential.
//
// The check is stateless and repeated on every request; revoking a key
// in the registry takes effect immediately. Requests outside the API
// namespace pass through untouched.
package apikey
