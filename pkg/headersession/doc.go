// Package headersession implements session propagation over the
// Session-Id request/response header for API clients that cannot or
// should not use cookies.
//
// The middleware intercepts requests inside the configured API path
// namespace, parses the Session-Id header (see pkg/sessionuri), checks
// the identifier's realm against the request domain, and creates or
// resumes the referenced session:
//
//   - ANON identifiers resume an existing session or transparently create
//     one under the client-assigned key.
//   - AUTH identifiers must reference a pre-existing session; a missing
//     session is rejected so authenticated sessions cannot be forged by
//     guessing identifiers.
//
// On success the session and the parsed reference are bound to the
// request context, the request is marked exempt from cookie CSRF checks
// (the identifier is client-assigned via header, not ambient), and the
// canonical reference is echoed back in the Session-Id response header.
//
// Requests outside the API namespace, or without a parseable header,
// are delegated to the configured fallback (typically a cookie-based
// session middleware) untouched.
//
// # Usage
//
//	store := headersession.NewMemoryStore(24*time.Hour, 5*time.Minute)
//	hs := headersession.New(
//	    headersession.WithStore(store),
//	    headersession.WithLogger(log),
//	)
//	mux.Handle("/", hs.Middleware(app))
package headersession
