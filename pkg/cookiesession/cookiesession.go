// Package cookiesession provides the standard create-or-load-by-cookie
// session mechanism used for requests the header protocol does not
// apply to. Session keys are server-generated, unlike header sessions
// where the client assigns them, so cookie-bound requests still need
// CSRF protection.
package cookiesession

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopkit/sessiongate/pkg/headersession"
)

// Manager creates and loads sessions identified by a cookie.
type Manager struct {
	store      headersession.Store
	cookieName string
	ttl        time.Duration
	secure     bool
}

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// WithCookieName sets the session cookie name (default "sessionid").
func WithCookieName(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.cookieName = name
		}
	}
}

// WithTTL sets the session and cookie lifetime (default 24h).
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithSecureCookies enables the Secure flag on session cookies.
func WithSecureCookies(secure bool) Option {
	return func(m *Manager) {
		m.secure = secure
	}
}

// New creates a cookie session manager over the given store.
func New(store headersession.Store, opts ...Option) *Manager {
	if store == nil {
		panic("cookiesession: store is required")
	}

	m := &Manager{
		store:      store,
		cookieName: "sessionid",
		ttl:        24 * time.Hour,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Ensure loads the session named by the request cookie, creating a new
// one (and setting the cookie) when the request has none or it no
// longer resolves.
func (m *Manager) Ensure(ctx context.Context, w http.ResponseWriter, r *http.Request) (*headersession.Session, error) {
	if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		session, err := m.store.Get(ctx, cookie.Value, false)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, headersession.ErrSessionNotFound) && !errors.Is(err, headersession.ErrSessionExpired) {
			return nil, err
		}
	}

	key, err := generateKey()
	if err != nil {
		return nil, err
	}

	session := headersession.NewSession(key, m.ttl)
	if err := m.store.Save(ctx, session); err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    key,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return session, nil
}

// Middleware binds a cookie session to every request, creating one when
// needed. Sessions are exposed through the headersession context
// accessors so downstream code is transport-agnostic.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.Ensure(r.Context(), w, r)
		if err != nil {
			http.Error(w, "session error", http.StatusInternalServerError)
			return
		}

		ctx := headersession.WithSession(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func generateKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("cookiesession: generate key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
