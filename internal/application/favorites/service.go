package favorites

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-cinema-client/internal/application/session"
	"github.com/go-cinema-client/internal/domain"
	"github.com/go-cinema-client/internal/infrastructure/store"
	"github.com/go-cinema-client/internal/pkg/id"
	"github.com/go-cinema-client/internal/pkg/validate"
)

// FavoritesAPI is the slice of the remote authority the favorites cache
// depends on.
type FavoritesAPI interface {
	SyncFavorites(ctx context.Context, items []domain.FavoriteItem) ([]domain.FavoriteItem, error)
	FetchFavorites(ctx context.Context) ([]domain.FavoriteItem, error)
}

// Service is the in-memory favorites set for the currently active
// identity. Membership is boolean: adding an existing product is a
// no-op, AddedAt is immutable once created.
type Service interface {
	Bind(auth session.Service)

	Add(ctx context.Context, req domain.AddFavoriteRequest) error
	Remove(ctx context.Context, productID string) error
	Clear(ctx context.Context)

	// MergeOnLogin unions the local collection with the authority's
	// copy. On a productId conflict the copy with the earlier AddedAt
	// wins: both represent the same favorite and the original add time
	// is the meaningful signal.
	MergeOnLogin(ctx context.Context) []domain.FavoriteItem
	SyncWithBackend(ctx context.Context) []domain.FavoriteItem
	LoadFromBackend(ctx context.Context) []domain.FavoriteItem

	Items() []domain.FavoriteItem
	Has(productID string) bool
	Count() int
	FilterByPrice(min, max int64) []domain.FavoriteItem
	Search(query string) []domain.FavoriteItem
	SortedByRecency() []domain.FavoriteItem
}

type service struct {
	store  *store.Store
	client FavoritesAPI
	log    *slog.Logger

	mu     sync.RWMutex
	userID string
	items  []domain.FavoriteItem
}

func NewService(st *store.Store, client FavoritesAPI, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &service{store: st, client: client, log: log}
}

func (s *service) Bind(auth session.Service) {
	auth.OnLogin(s.handleLogin)
	auth.OnLogout(s.handleLogout)
}

func (s *service) handleLogin(userID string) {
	ctx := context.Background()
	var items []domain.FavoriteItem
	if !s.store.Get(ctx, store.FavoritesKey(userID), &items) {
		items = nil
	}
	s.mu.Lock()
	s.userID = userID
	s.items = items
	s.mu.Unlock()
}

func (s *service) handleLogout() {
	s.mu.Lock()
	s.userID = ""
	s.items = nil
	s.mu.Unlock()
}

// Add inserts the product unless it is already a favorite; duplicates
// are a silent no-op so the operation is idempotent.
func (s *service) Add(ctx context.Context, req domain.AddFavoriteRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ProductID == req.ProductID {
			s.mu.Unlock()
			return nil
		}
	}
	s.items = append(s.items, domain.FavoriteItem{
		ItemID:    id.New(),
		ProductID: req.ProductID,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		ImageRef:  req.ImageRef,
		AddedAt:   time.Now().UnixMilli(),
	})
	s.mu.Unlock()
	s.persist(ctx)
	return nil
}

func (s *service) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.mu.Unlock()
			s.persist(ctx)
			return nil
		}
	}
	s.mu.Unlock()
	return fmt.Errorf("product %s not in favorites: %w", productID, domain.ErrNotFound)
}

func (s *service) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
	s.persist(ctx)
}

func (s *service) MergeOnLogin(ctx context.Context) []domain.FavoriteItem {
	owner, local := s.snapshot()

	server, err := s.client.FetchFavorites(ctx)
	if err != nil {
		s.log.Warn("favorites: merge fetch failed, keeping local copy", "err", err)
		return local
	}

	merged := mergeFavorites(server, local)
	if !s.adopt(ctx, owner, merged) {
		return s.Items()
	}

	go func() {
		if _, err := s.client.SyncFavorites(context.Background(), merged); err != nil {
			s.log.Warn("favorites: merge push-back failed", "user_id", owner, "err", err)
		}
	}()
	return s.Items()
}

// mergeFavorites seeds from the server list; local entries are inserted
// when absent, and on conflict the earlier AddedAt wins.
func mergeFavorites(server, local []domain.FavoriteItem) []domain.FavoriteItem {
	merged := make([]domain.FavoriteItem, len(server))
	copy(merged, server)
	index := make(map[string]int, len(merged))
	for i := range merged {
		index[merged[i].ProductID] = i
	}
	for _, l := range local {
		if i, ok := index[l.ProductID]; ok {
			if l.AddedAt < merged[i].AddedAt {
				merged[i] = l
			}
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	return merged
}

func (s *service) SyncWithBackend(ctx context.Context) []domain.FavoriteItem {
	owner, prior := s.snapshot()
	server, err := s.client.SyncFavorites(ctx, prior)
	if err != nil {
		s.log.Warn("favorites: sync failed, keeping in-memory copy", "err", err)
		return prior
	}
	s.adopt(ctx, owner, server)
	return s.Items()
}

func (s *service) LoadFromBackend(ctx context.Context) []domain.FavoriteItem {
	owner, _ := s.snapshot()
	server, err := s.client.FetchFavorites(ctx)
	if err != nil {
		s.log.Warn("favorites: load failed", "err", err)
		return []domain.FavoriteItem{}
	}
	s.adopt(ctx, owner, server)
	return s.Items()
}

// snapshot returns the identity that owns the favorites right now
// together with a copy of its entries, captured before a network
// exchange so the completion can be matched against it.
func (s *service) snapshot() (string, []domain.FavoriteItem) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, append([]domain.FavoriteItem{}, s.items...)
}

// adopt installs the authority's copy and persists it under the identity
// that initiated the exchange; a result for a logged-out or replaced
// identity is discarded.
func (s *service) adopt(ctx context.Context, owner string, items []domain.FavoriteItem) bool {
	s.mu.Lock()
	if s.userID != owner {
		s.mu.Unlock()
		s.log.Info("favorites: dropping sync result for superseded identity", "user_id", owner)
		return false
	}
	s.items = items
	s.mu.Unlock()
	if owner != "" {
		s.store.Set(ctx, store.FavoritesKey(owner), items)
	}
	return true
}

func (s *service) persist(ctx context.Context) {
	s.mu.RLock()
	userID := s.userID
	items := append([]domain.FavoriteItem{}, s.items...)
	s.mu.RUnlock()
	if userID == "" {
		return
	}
	s.store.Set(ctx, store.FavoritesKey(userID), items)
}

func (s *service) Items() []domain.FavoriteItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.FavoriteItem{}, s.items...)
}

func (s *service) Has(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return true
		}
	}
	return false
}

func (s *service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *service) FilterByPrice(min, max int64) []domain.FavoriteItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.FavoriteItem
	for _, it := range s.items {
		if it.UnitPrice >= min && it.UnitPrice <= max {
			out = append(out, it)
		}
	}
	return out
}

func (s *service) Search(query string) []domain.FavoriteItem {
	q := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.FavoriteItem
	for _, it := range s.items {
		if strings.Contains(strings.ToLower(it.Name), q) {
			out = append(out, it)
		}
	}
	return out
}

func (s *service) SortedByRecency() []domain.FavoriteItem {
	out := s.Items()
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt > out[j].AddedAt })
	return out
}
