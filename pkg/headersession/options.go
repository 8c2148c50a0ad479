package headersession

import (
	"log/slog"
	"net/http"
)

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// WithStore sets a custom session store.
func WithStore(store Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithConfig sets custom configuration.
func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithDomainFunc overrides how the request domain is derived for realm
// validation. The returned value must be pre-normalized; realms are
// compared by exact string match.
func WithDomainFunc(fn DomainFunc) Option {
	return func(m *Manager) {
		m.domainFn = fn
	}
}

// WithFallback sets the middleware handling requests the header protocol
// does not apply to, typically a cookie-based session middleware. The
// default is a pass-through to the next handler.
func WithFallback(fallback func(http.Handler) http.Handler) Option {
	return func(m *Manager) {
		m.fallback = fallback
	}
}

// WithLogger sets the logger for boundary failures. Defaults to a
// discard logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}
