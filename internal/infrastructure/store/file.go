package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type fileEntry struct {
	Value     string `json:"value"`
	ExpiresAt int64  `json:"expires_at,omitempty"` // Unix millis, 0 = no expiry
}

// FileTier is the default durable tier: a single JSON file of small
// entries with per-entry expiry. Entries are cookie-sized strings, so the
// whole file is rewritten on every mutation.
type FileTier struct {
	mu      sync.Mutex
	path    string
	loaded  bool
	entries map[string]fileEntry
}

func NewFileTier(path string) *FileTier {
	return &FileTier{path: path, entries: make(map[string]fileEntry)}
}

func (t *FileTier) Get(_ context.Context, key string) (string, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.load(); err != nil {
		return "", false, err
	}
	e, ok := t.entries[key]
	if !ok {
		return "", false, nil
	}
	if e.ExpiresAt != 0 && e.ExpiresAt <= time.Now().UnixMilli() {
		delete(t.entries, key)
		_ = t.flush()
		return "", false, nil
	}
	return e.Value, true, nil
}

func (t *FileTier) Set(_ context.Context, key, value string, ttl time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.load(); err != nil {
		return err
	}
	e := fileEntry{Value: value}
	if ttl > 0 {
		e.ExpiresAt = time.Now().Add(ttl).UnixMilli()
	}
	t.entries[key] = e
	return t.flush()
}

func (t *FileTier) Delete(_ context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.load(); err != nil {
		return err
	}
	delete(t.entries, key)
	return t.flush()
}

func (t *FileTier) Clear(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[string]fileEntry)
	t.loaded = true
	return t.flush()
}

// load reads the file once and prunes entries that expired while the
// process was down. Callers must hold t.mu.
func (t *FileTier) load() error {
	if t.loaded {
		return nil
	}
	t.loaded = true
	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read state file: %w", err)
	}
	if err := json.Unmarshal(data, &t.entries); err != nil {
		// A corrupt state file degrades to empty rather than wedging
		// every read.
		t.entries = make(map[string]fileEntry)
		return nil
	}
	now := time.Now().UnixMilli()
	for k, e := range t.entries {
		if e.ExpiresAt != 0 && e.ExpiresAt <= now {
			delete(t.entries, k)
		}
	}
	return nil
}

// flush rewrites the state file atomically. Callers must hold t.mu.
func (t *FileTier) flush() error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.Marshal(t.entries)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return os.Rename(tmp, t.path)
}
