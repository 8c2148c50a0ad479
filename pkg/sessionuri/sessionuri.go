package sessionuri

import "strings"

// Type distinguishes the two session lifecycle policies carried on the wire.
type Type string

const (
	// Anonymous sessions may be created transparently from a
	// client-assigned identifier.
	Anonymous Type = "ANON"
	// Authenticated sessions must already exist server-side; they are
	// never fabricated from an incoming identifier.
	Authenticated Type = "AUTH"
)

const prefix = "SID:"

// Reference is the structured form of a session identification URI.
// It is only ever produced by Parse; the zero value is not meaningful.
type Reference struct {
	Type      Type
	Realm     string
	SessionID string
}

// String renders the canonical, suffix-free wire form.
func (r Reference) String() string {
	return prefix + string(r.Type) + ":" + r.Realm + ":" + r.SessionID
}

// Parse parses a raw header value into a Reference. It reports ok=false
// for absent or non-conforming input: missing SID: prefix, unknown type,
// fewer than three colon-delimited segments, or an empty session id.
//
// The realm is everything between the second and third colon, so it is
// the shortest realm admitting a non-empty session id. Up to two trailing
// "<sep><hex>" segments (sep is '-' or ':') are stripped from the session
// id, rightmost first; a trailing segment that is not purely hexadecimal
// stops the scan and stays part of the id.
func Parse(raw string) (Reference, bool) {
	rest, ok := strings.CutPrefix(raw, prefix)
	if !ok {
		return Reference{}, false
	}

	var typ Type
	switch {
	case strings.HasPrefix(rest, string(Anonymous)+":"):
		typ = Anonymous
	case strings.HasPrefix(rest, string(Authenticated)+":"):
		typ = Authenticated
	default:
		return Reference{}, false
	}
	rest = rest[len(typ)+1:]

	realm, id, ok := strings.Cut(rest, ":")
	if !ok || id == "" {
		return Reference{}, false
	}

	return Reference{Type: typ, Realm: realm, SessionID: stripSuffixes(id)}, true
}

// stripSuffixes removes at most two trailing hex segments. Stripping is
// done with an explicit scan instead of a lazy regex so the result does
// not depend on any engine's backtracking order.
func stripSuffixes(id string) string {
	for range 2 {
		i := strings.LastIndexAny(id, "-:")
		// i == 0 would leave an empty id, i == len-1 is a bare separator.
		if i <= 0 || i == len(id)-1 || !isHex(id[i+1:]) {
			break
		}
		id = id[:i]
	}
	return id
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
