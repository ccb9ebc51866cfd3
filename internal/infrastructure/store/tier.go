package store

import (
	"context"
	"time"
)

// Tier is a keyed string store with a lifetime policy. The short-lived
// tier dies with the process; durable tiers honor per-entry TTLs.
type Tier interface {
	// Get returns the value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes the value. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Clear removes every entry owned by this tier.
	Clear(ctx context.Context) error
}

// Well-known store keys. Collection keys are namespaced per user so that
// switching identity never touches another identity's persisted copy.
const (
	KeyCredential = "auth:credential"

	cartKeyPrefix     = "cart:"
	favoriteKeyPrefix = "favorites:"
)

// CartKey returns the namespaced persistence key for a user's cart.
func CartKey(userID string) string { return cartKeyPrefix + userID }

// FavoritesKey returns the namespaced persistence key for a user's favorites.
func FavoritesKey(userID string) string { return favoriteKeyPrefix + userID }
