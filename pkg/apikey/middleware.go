package apikey

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// Gateway checks API-namespace requests for a registered credential.
type Gateway struct {
	registry Registry
	prefix   string
	log      *slog.Logger
}

// Option is a functional option for configuring the Gateway.
type Option func(*Gateway)

// WithPathPrefix sets the path namespace the gateway protects
// (default "/api/").
func WithPathPrefix(prefix string) Option {
	return func(g *Gateway) {
		if prefix != "" {
			g.prefix = prefix
		}
	}
}

// WithLogger sets the logger for denials and registry failures.
func WithLogger(log *slog.Logger) Option {
	return func(g *Gateway) {
		if log != nil {
			g.log = log
		}
	}
}

// NewGateway creates a gateway backed by the given registry.
func NewGateway(registry Registry, opts ...Option) *Gateway {
	if registry == nil {
		panic("apikey: registry is required")
	}

	g := &Gateway{
		registry: registry,
		prefix:   "/api/",
		log:      slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Middleware rejects API-namespace requests whose Authorization header
// is absent or not in the registry. It runs before any session handling
// and binds nothing to the request; the check is repeated per request.
func (g *Gateway) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(strings.ToLower(r.URL.Path), strings.ToLower(g.prefix)) {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get("Authorization")
		if key != "" {
			ok, err := g.registry.Exists(r.Context(), key)
			if err != nil {
				g.log.ErrorContext(r.Context(), "api key registry failure",
					slog.String("error", err.Error()))
				writeReason(w, http.StatusInternalServerError, "credential check unavailable")
				return
			}
			if ok {
				next.ServeHTTP(w, r)
				return
			}
		}

		// Same denial for absent and unknown credentials; detail here
		// would let callers probe the key space.
		g.log.ErrorContext(r.Context(), "no valid credentials provided",
			slog.String("path", r.URL.Path))
		writeReason(w, http.StatusForbidden, "permission denied")
	})
}

func writeReason(w http.ResponseWriter, status int, reason string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Reason string `json:"reason"`
	}{Reason: reason})
}
