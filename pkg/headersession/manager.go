package headersession

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/shopkit/sessiongate/pkg/sessionuri"
)

// DomainFunc derives the domain a request was served on, used for realm
// validation.
type DomainFunc func(r *http.Request) string

// DomainFromRequest is the default DomainFunc: the request host with any
// port stripped. No case folding or scheme handling is applied.
func DomainFromRequest(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.Host); err == nil {
		return host
	}
	return r.Host
}

// Manager orchestrates header-carried sessions for API requests.
type Manager struct {
	store    Store
	config   Config
	domainFn DomainFunc
	fallback func(http.Handler) http.Handler
	log      *slog.Logger
}

// New creates a new header session manager with the given options.
func New(opts ...Option) *Manager {
	m := &Manager{
		config:   DefaultConfig(),
		domainFn: DomainFromRequest,
		log:      slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore(m.config.TTL, m.config.CleanupInterval)
	}

	return m
}

// Middleware intercepts API-namespace requests carrying a Session-Id
// header: parse, validate realm, resume or create the session, bind it
// to the request context, and echo the canonical reference on the
// response. Everything else is delegated to the fallback.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	fallback := next
	if m.fallback != nil {
		fallback = m.fallback(next)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.isAPIRequest(r) {
			fallback.ServeHTTP(w, r)
			return
		}

		ref, ok := sessionuri.Parse(r.Header.Get(m.config.HeaderName))
		if !ok {
			// Malformed or absent header is not an error; cookie
			// sessions still apply to API requests without one.
			fallback.ServeHTTP(w, r)
			return
		}

		domain := m.domainFn(r)
		if ref.Realm != domain {
			err := RealmMismatchError{Realm: ref.Realm, Domain: domain}
			m.log.InfoContext(r.Context(), "header session rejected",
				slog.String("reason", err.Error()),
				slog.String("path", r.URL.Path))
			writeReason(w, http.StatusNotAcceptable, err.Error())
			return
		}

		session, err := startOrResume(r.Context(), m.store, ref.SessionID, ref.Type)
		switch {
		case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSessionExpired):
			writeReason(w, http.StatusUnauthorized, "authenticated session not found")
			return
		case err != nil:
			m.log.ErrorContext(r.Context(), "session store failure",
				slog.String("error", err.Error()))
			writeReason(w, http.StatusInternalServerError, "session store unavailable")
			return
		}

		ctx := WithSession(r.Context(), session)
		ctx = WithReference(ctx, ref)
		ctx = withCSRFExempt(ctx)

		hw := &headerInjector{
			ResponseWriter: w,
			name:           m.config.HeaderName,
			ref:            ref,
			session:        session,
		}
		next.ServeHTTP(hw, r.WithContext(ctx))
		// Covers handlers that return without writing anything.
		hw.inject()
	})
}

func (m *Manager) isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.URL.Path), strings.ToLower(m.config.APIPrefix))
}

// headerInjector writes the canonical Session-Id response header right
// before the first byte of the response, after downstream handlers ran
// but while headers are still mutable.
type headerInjector struct {
	http.ResponseWriter
	name     string
	ref      sessionuri.Reference
	session  *Session
	injected bool
}

func (h *headerInjector) inject() {
	if h.injected {
		return
	}
	h.injected = true

	// The store must hand back the exact key it was asked for; anything
	// else is a bug in the store, not a client error.
	if h.session.Key != h.ref.SessionID {
		panic(fmt.Sprintf("headersession: store returned session key %q for requested id %q",
			h.session.Key, h.ref.SessionID))
	}

	h.Header().Set(h.name, h.ref.String())
}

func (h *headerInjector) WriteHeader(status int) {
	h.inject()
	h.ResponseWriter.WriteHeader(status)
}

func (h *headerInjector) Write(b []byte) (int, error) {
	h.inject()
	return h.ResponseWriter.Write(b)
}

// Unwrap supports http.ResponseController.
func (h *headerInjector) Unwrap() http.ResponseWriter {
	return h.ResponseWriter
}
