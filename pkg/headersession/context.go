package headersession

import (
	"context"

	"github.com/shopkit/sessiongate/pkg/sessionuri"
)

type sessionContextKey struct{}
type referenceContextKey struct{}
type csrfExemptContextKey struct{}

// WithSession adds a session to the context.
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// FromContext retrieves the session bound to the request, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(*Session)
	return session, ok
}

// MustFromContext retrieves the session from the context or panics.
func MustFromContext(ctx context.Context) *Session {
	session, ok := FromContext(ctx)
	if !ok {
		panic("headersession: session not found in context")
	}
	return session
}

// WithReference adds a parsed session reference to the context.
func WithReference(ctx context.Context, ref sessionuri.Reference) context.Context {
	return context.WithValue(ctx, referenceContextKey{}, ref)
}

// ReferenceFromContext retrieves the parsed session reference, if the
// request carried one.
func ReferenceFromContext(ctx context.Context) (sessionuri.Reference, bool) {
	ref, ok := ctx.Value(referenceContextKey{}).(sessionuri.Reference)
	return ref, ok
}

func withCSRFExempt(ctx context.Context) context.Context {
	return context.WithValue(ctx, csrfExemptContextKey{}, true)
}

// IsCSRFExempt reports whether the request's session identifier was
// client-assigned via header. Such requests carry no ambient credential,
// so cookie CSRF middleware should skip them. Cookie-bound sessions are
// never exempt.
func IsCSRFExempt(ctx context.Context) bool {
	exempt, _ := ctx.Value(csrfExemptContextKey{}).(bool)
	return exempt
}
