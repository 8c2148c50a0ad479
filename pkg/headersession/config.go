package headersession

import "time"

// Config holds header session configuration.
type Config struct {
	// HeaderName carries the session identifier on requests and responses.
	HeaderName string `env:"SESSION_HEADER_NAME" envDefault:"Session-Id"`

	// APIPrefix is the path namespace the header protocol applies to.
	// Requests outside it are delegated to the fallback untouched.
	APIPrefix string `env:"SESSION_API_PREFIX" envDefault:"/api/"`

	// TTL is the lifetime of sessions created by the default store.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// CleanupInterval for expired sessions in the default store (0 to disable).
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`
}

// DefaultConfig returns default header session configuration.
func DefaultConfig() Config {
	return Config{
		HeaderName:      "Session-Id",
		APIPrefix:       "/api/",
		TTL:             24 * time.Hour,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewFromConfig creates a new Manager from the provided Config.
func NewFromConfig(cfg Config, opts ...Option) *Manager {
	configOpts := []Option{WithConfig(cfg)}
	configOpts = append(configOpts, opts...)
	return New(configOpts...)
}
