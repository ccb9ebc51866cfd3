package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Store is the dual-tier persistence layer shared by the session
// authority and the collection caches. Writes go to both tiers; reads
// prefer the short-lived tier and fall back to the durable one.
//
// Every operation is total: serialization and tier failures degrade to
// "no value" or "write skipped" and are logged, never returned. Callers
// treat persistence as best-effort.
type Store struct {
	short     Tier
	long      Tier
	retention time.Duration
	log       *slog.Logger
}

// New builds a Store over a short-lived and a durable tier. retention is
// the expiry horizon applied to every durable write.
func New(short, long Tier, retention time.Duration, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{short: short, long: long, retention: retention, log: log}
}

// Set serializes v and writes it to both tiers: the short tier
// unconditionally, the durable tier with the retention horizon.
func (s *Store) Set(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("store: marshal failed, write skipped", "key", key, "err", err)
		return
	}
	s.SetRaw(ctx, key, string(data))
}

// SetRaw writes an already-serialized value to both tiers.
func (s *Store) SetRaw(ctx context.Context, key, value string) {
	if err := s.short.Set(ctx, key, value, 0); err != nil {
		s.log.Warn("store: short-tier write failed", "key", key, "err", err)
	}
	if err := s.long.Set(ctx, key, value, s.retention); err != nil {
		s.log.Warn("store: durable-tier write failed", "key", key, "err", err)
	}
}

// Resolve is the single two-tier read primitive: short tier first, then
// the durable tier. A durable hit re-seeds the short tier so later reads
// within this session stay on the fast path.
func (s *Store) Resolve(ctx context.Context, key string) (string, bool) {
	if v, ok, err := s.short.Get(ctx, key); err == nil && ok {
		return v, true
	} else if err != nil {
		s.log.Warn("store: short-tier read failed", "key", key, "err", err)
	}
	v, ok, err := s.long.Get(ctx, key)
	if err != nil {
		s.log.Warn("store: durable-tier read failed", "key", key, "err", err)
		return "", false
	}
	if !ok {
		return "", false
	}
	if err := s.short.Set(ctx, key, v, 0); err != nil {
		s.log.Warn("store: short-tier re-seed failed", "key", key, "err", err)
	}
	return v, true
}

// Get resolves the key and deserializes it into dst. Returns false when
// the key is absent or the stored value does not parse; callers that
// want the raw string on parse failure use Resolve directly.
func (s *Store) Get(ctx context.Context, key string, dst interface{}) bool {
	raw, ok := s.Resolve(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.log.Warn("store: unmarshal failed", "key", key, "err", err)
		return false
	}
	return true
}

// Has reports key existence with the same read order as Resolve, without
// deserializing or re-seeding.
func (s *Store) Has(ctx context.Context, key string) bool {
	if _, ok, err := s.short.Get(ctx, key); err == nil && ok {
		return true
	}
	_, ok, err := s.long.Get(ctx, key)
	if err != nil {
		s.log.Warn("store: durable-tier read failed", "key", key, "err", err)
		return false
	}
	return ok
}

// Remove deletes from the short tier only. The durable copy survives, so
// a later session can still restore it.
func (s *Store) Remove(ctx context.Context, key string) {
	if err := s.short.Delete(ctx, key); err != nil {
		s.log.Warn("store: short-tier delete failed", "key", key, "err", err)
	}
}

// DeleteDurable removes the durable copy of a key.
func (s *Store) DeleteDurable(ctx context.Context, key string) {
	if err := s.long.Delete(ctx, key); err != nil {
		s.log.Warn("store: durable-tier delete failed", "key", key, "err", err)
	}
}

// ClearAll wipes the short tier entirely and deletes each named durable
// key. Used only at full logout/reset; normal collection mutation never
// clears, so persisted carts and favorites survive a logout.
func (s *Store) ClearAll(ctx context.Context, durableKeys ...string) {
	if err := s.short.Clear(ctx); err != nil {
		s.log.Warn("store: short-tier clear failed", "err", err)
	}
	for _, key := range durableKeys {
		s.DeleteDurable(ctx, key)
	}
}
