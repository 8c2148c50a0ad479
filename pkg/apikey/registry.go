package apikey

import (
	"context"
	"sync"
)

// Registry is the set of credentials allowed through the gateway.
// Implementations must be safe for concurrent use.
type Registry interface {
	// Exists reports whether key is a known credential.
	Exists(ctx context.Context, key string) (bool, error)
}

// MemoryRegistry implements Registry with an in-process set. Intended
// for development and tests.
type MemoryRegistry struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

// NewMemoryRegistry creates a registry seeded with the given keys.
func NewMemoryRegistry(keys ...string) *MemoryRegistry {
	r := &MemoryRegistry{keys: make(map[string]struct{}, len(keys))}
	for _, key := range keys {
		if key != "" {
			r.keys[key] = struct{}{}
		}
	}
	return r
}

// Exists reports whether key is registered.
func (r *MemoryRegistry) Exists(ctx context.Context, key string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.keys[key]
	return ok, nil
}

// Add registers a key. Empty keys are ignored.
func (r *MemoryRegistry) Add(key string) {
	if key == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[key] = struct{}{}
}

// Remove revokes a key.
func (r *MemoryRegistry) Remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.keys, key)
}
