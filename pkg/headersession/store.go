package headersession

import "context"

// Store defines the interface for session persistence. Implementations
// must be safe for concurrent use; the middleware performs no locking.
type Store interface {
	// Get retrieves the session stored under key. When createIfAbsent is
	// true a missing (or expired) session is transparently replaced by a
	// fresh one under the same key, with IsNew set. When false, absence
	// is reported as ErrSessionNotFound and expiry as ErrSessionExpired.
	Get(ctx context.Context, key string, createIfAbsent bool) (*Session, error)

	// Save persists the session under its key.
	Save(ctx context.Context, session *Session) error

	// Delete removes the session stored under key.
	Delete(ctx context.Context, key string) error

	// DeleteExpired removes all expired sessions.
	DeleteExpired(ctx context.Context) error
}
