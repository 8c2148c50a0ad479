// Command server runs a demo API protected by the gateway key check and
// the header session protocol, with cookie sessions as fallback.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/shopkit/sessiongate/pkg/apikey"
	"github.com/shopkit/sessiongate/pkg/cookiesession"
	"github.com/shopkit/sessiongate/pkg/headersession"
	"github.com/shopkit/sessiongate/pkg/httpserver"
	"github.com/shopkit/sessiongate/pkg/redisconn"
)

type config struct {
	Env      string   `env:"APP_ENV" envDefault:"development"`
	UseRedis bool     `env:"USE_REDIS" envDefault:"false"`
	APIKeys  []string `env:"API_KEYS" envSeparator:","`

	Redis   redisconn.Config
	Server  httpserver.Config
	Session headersession.Config
}

func main() {
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		slog.Error("parse config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("service", "sessiongate"),
		slog.String("env", cfg.Env),
	)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, log *slog.Logger) error {
	var (
		store    headersession.Store
		registry apikey.Registry
	)

	if cfg.UseRedis {
		client, err := redisconn.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()

		store = headersession.NewRedisStore(client, cfg.Session.TTL)
		redisRegistry := apikey.NewRedisRegistry(client, "apikeys")
		for _, key := range cfg.APIKeys {
			if err := redisRegistry.Add(ctx, key); err != nil {
				return err
			}
		}
		registry = redisRegistry
	} else {
		memStore := headersession.NewMemoryStore(cfg.Session.TTL, cfg.Session.CleanupInterval)
		defer func() { _ = memStore.Close() }()
		store = memStore

		memRegistry := apikey.NewMemoryRegistry(cfg.APIKeys...)
		if len(cfg.APIKeys) == 0 {
			key := uuid.NewString()
			memRegistry.Add(key)
			log.Warn("no API_KEYS configured, generated a development key",
				slog.String("key", key))
		}
		registry = memRegistry
	}

	gateway := apikey.NewGateway(registry,
		apikey.WithPathPrefix(cfg.Session.APIPrefix),
		apikey.WithLogger(log),
	)

	cookies := cookiesession.New(store, cookiesession.WithTTL(cfg.Session.TTL))

	sessions := headersession.NewFromConfig(cfg.Session,
		headersession.WithStore(store),
		headersession.WithFallback(cookies.Middleware),
		headersession.WithLogger(log),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(gateway.Middleware)
	r.Use(sessions.Middleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/session", showSession)
		r.Put("/session/{key}", setSessionValue(store))
	})

	return httpserver.New(cfg.Server, log).Run(ctx, r)
}

func showSession(w http.ResponseWriter, r *http.Request) {
	session, ok := headersession.FromContext(r.Context())
	if !ok {
		http.Error(w, "no session", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"key":  session.Key,
		"new":  session.IsNew,
		"data": session.Data,
	})
}

func setSessionValue(store headersession.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := headersession.FromContext(r.Context())
		if !ok {
			http.Error(w, "no session", http.StatusNotFound)
			return
		}

		var value any
		if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}

		session.Set(chi.URLParam(r, "key"), value)
		session.Touch()
		if err := store.Save(r.Context(), session); err != nil {
			http.Error(w, "session store unavailable", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
