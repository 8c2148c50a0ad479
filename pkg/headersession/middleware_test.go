package headersession_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopkit/sessiongate/pkg/headersession"
	"github.com/shopkit/sessiongate/pkg/sessionuri"
)

// countingStore wraps a real store and counts Get calls, so tests can
// assert that rejected requests never touch session state.
type countingStore struct {
	headersession.Store
	gets atomic.Int64
}

func (s *countingStore) Get(ctx context.Context, key string, createIfAbsent bool) (*headersession.Session, error) {
	s.gets.Add(1)
	return s.Store.Get(ctx, key, createIfAbsent)
}

// wrongKeyStore returns sessions under a different key than requested,
// simulating a misbehaving store.
type wrongKeyStore struct {
	headersession.Store
}

func (s *wrongKeyStore) Get(ctx context.Context, key string, createIfAbsent bool) (*headersession.Session, error) {
	return headersession.NewSession("not-"+key, time.Hour), nil
}

func setupManager(t *testing.T, opts ...headersession.Option) (*headersession.Manager, *countingStore) {
	t.Helper()

	store := &countingStore{Store: headersession.NewMemoryStore(time.Hour, 0)}
	opts = append([]headersession.Option{headersession.WithStore(store)}, opts...)
	return headersession.New(opts...), store
}

func TestMiddlewareDelegation(t *testing.T) {
	t.Parallel()

	t.Run("non-api path goes to fallback", func(t *testing.T) {
		t.Parallel()

		var viaFallback bool
		fallback := func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				viaFallback = true
				next.ServeHTTP(w, r)
			})
		}

		manager, store := setupManager(t, headersession.WithFallback(fallback))
		handler := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		r := httptest.NewRequest("GET", "/checkout", nil)
		r.Header.Set("Session-Id", "SID:ANON:example.com:987171879")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		assert.True(t, viaFallback)
		assert.Equal(t, int64(0), store.gets.Load())
		assert.Empty(t, w.Header().Get("Session-Id"))
	})

	t.Run("absent header falls back silently", func(t *testing.T) {
		t.Parallel()

		manager, store := setupManager(t)
		handler := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := headersession.FromContext(r.Context())
			assert.False(t, ok)
			w.WriteHeader(http.StatusOK)
		}))

		r := httptest.NewRequest("GET", "/api/v1/basket", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(0), store.gets.Load())
		assert.Empty(t, w.Header().Get("Session-Id"))
	})

	t.Run("malformed header falls back silently", func(t *testing.T) {
		t.Parallel()

		manager, store := setupManager(t)
		handler := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		r := httptest.NewRequest("GET", "/api/v1/basket", nil)
		r.Header.Set("Session-Id", "SID:BOGUS:example.com:987171879")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(0), store.gets.Load())
	})
}

func TestMiddlewareRealmValidation(t *testing.T) {
	t.Parallel()

	manager, store := setupManager(t)
	handler := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("downstream handler must not run on realm mismatch")
	}))

	r := httptest.NewRequest("GET", "http://example.com/api/v1/basket", nil)
	r.Header.Set("Session-Id", "SID:ANON:other.com:1")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNotAcceptable, w.Code)
	assert.Equal(t, int64(0), store.gets.Load(), "resumer must not be reached")
	assert.Empty(t, w.Header().Get("Session-Id"))

	var body struct {
		Reason string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "can not accept session with realm other.com on realm example.com", body.Reason)
}

func TestMiddlewareAnonymousSession(t *testing.T) {
	t.Parallel()

	manager, _ := setupManager(t)
	handler := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := headersession.MustFromContext(r.Context())
		assert.Equal(t, "987171879", sess.Key)
		assert.True(t, sess.IsNew)

		ref, ok := headersession.ReferenceFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, sessionuri.Anonymous, ref.Type)

		assert.True(t, headersession.IsCSRFExempt(r.Context()))

		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest("GET", "http://example.com/api/v1/basket", nil)
	r.Header.Set("Session-Id", "SID:ANON:example.com:987171879")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SID:ANON:example.com:987171879", w.Header().Get("Session-Id"))
}

func TestMiddlewareResponseHeader(t *testing.T) {
	t.Parallel()

	t.Run("suffixes never echoed back", func(t *testing.T) {
		t.Parallel()

		manager, _ := setupManager(t)
		handler := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		r := httptest.NewRequest("GET", "http://example.com/api/v1/basket", nil)
		r.Header.Set("Session-Id", "SID:ANON:example.com:987171879-16EF")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		assert.Equal(t, "SID:ANON:example.com:987171879", w.Header().Get("Session-Id"))
	})

	t.Run("written even when handler produces no output", func(t *testing.T) {
		t.Parallel()

		manager, _ := setupManager(t)
		handler := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		r := httptest.NewRequest("GET", "http://example.com/api/v1/basket", nil)
		r.Header.Set("Session-Id", "SID:ANON:example.com:987171879")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		assert.Equal(t, "SID:ANON:example.com:987171879", w.Header().Get("Session-Id"))
	})

	t.Run("panics when store dishonors the requested key", func(t *testing.T) {
		t.Parallel()

		manager := headersession.New(headersession.WithStore(&wrongKeyStore{}))
		handler := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		r := httptest.NewRequest("GET", "http://example.com/api/v1/basket", nil)
		r.Header.Set("Session-Id", "SID:ANON:example.com:987171879")
		w := httptest.NewRecorder()

		assert.Panics(t, func() { handler.ServeHTTP(w, r) })
	})
}

func TestMiddlewareAuthenticatedSession(t *testing.T) {
	t.Parallel()

	t.Run("missing authenticated session rejected", func(t *testing.T) {
		t.Parallel()

		manager, store := setupManager(t)
		handler := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("downstream handler must not run without a backing session")
		}))

		r := httptest.NewRequest("GET", "http://example.com/api/v1/basket", nil)
		r.Header.Set("Session-Id", "SID:AUTH:example.com:XYZ")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, int64(1), store.gets.Load())
		assert.Empty(t, w.Header().Get("Session-Id"))

		var body struct {
			Reason string `json:"reason"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.NotEmpty(t, body.Reason)
	})

	t.Run("pre-existing authenticated session resumed", func(t *testing.T) {
		t.Parallel()

		manager, store := setupManager(t)
		_, err := store.Store.Get(context.Background(), "XYZ", true)
		require.NoError(t, err)

		handler := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := headersession.MustFromContext(r.Context())
			assert.Equal(t, "XYZ", sess.Key)
			assert.False(t, sess.IsNew)
			w.WriteHeader(http.StatusOK)
		}))

		r := httptest.NewRequest("GET", "http://example.com/api/v1/basket", nil)
		r.Header.Set("Session-Id", "SID:AUTH:example.com:XYZ")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "SID:AUTH:example.com:XYZ", w.Header().Get("Session-Id"))
	})
}

func TestMiddlewareCustomDomain(t *testing.T) {
	t.Parallel()

	manager, _ := setupManager(t, headersession.WithDomainFunc(func(r *http.Request) string {
		return "api.internal"
	}))
	handler := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest("GET", "http://example.com/api/v1/basket", nil)
	r.Header.Set("Session-Id", "SID:ANON:api.internal:42")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDomainFromRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		want string
	}{
		{"example.com", "example.com"},
		{"example.com:8080", "example.com"},
		{"localhost:3000", "localhost"},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		r.Host = tt.host
		assert.Equal(t, tt.want, headersession.DomainFromRequest(r))
	}
}
