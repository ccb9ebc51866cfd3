package store

import (
	"context"
	"sync"
	"time"
)

// MemoryTier is the short-lived tier: a process-scoped map that is gone
// when the process ends. TTLs are ignored; the process lifetime is the
// expiry.
type MemoryTier struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryTier() *MemoryTier {
	return &MemoryTier{entries: make(map[string]string)}
}

func (t *MemoryTier) Get(_ context.Context, key string) (string, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.entries[key]
	return v, ok, nil
}

func (t *MemoryTier) Set(_ context.Context, key, value string, _ time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[key] = value
	return nil
}

func (t *MemoryTier) Delete(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key)
	return nil
}

func (t *MemoryTier) Clear(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string]string)
	return nil
}
