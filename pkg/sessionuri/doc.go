// Package sessionuri parses and renders the wire form of header-carried
// session identifiers, following the session identification URI scheme
// (http://www.w3.org/TR/WD-session-id):
//
//	SID:<TYPE>:<REALM>:<SESSION_ID>
//
// TYPE is ANON or AUTH, REALM is the domain the identifier is bound to
// (possibly empty), and SESSION_ID is an opaque non-empty client-assigned
// identifier. Incoming values may additionally carry up to two trailing
// hex-digit segments (e.g. "-16EF" or ":100") appended by proxies or
// client libraries; Parse strips those, and References always render in
// suffix-free canonical form.
//
// Parsing is total: malformed input yields ok=false, never an error or a
// partially populated Reference.
package sessionuri
