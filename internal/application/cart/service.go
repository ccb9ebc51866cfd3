package cart

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

// CartAPI is the slice of the remote authority the cart cache depends on.
type CartAPI interface {
	SyncCart(ctx context.Context, items []domain.CartItem) ([]domain.CartItem, error)
	FetchCart(ctx context.Context) ([]domain.CartItem, error)
	ValidateCart(ctx context.Context, items []domain.CartItem) (*domain.CartValidation, error)
}

// Service is the in-memory cart for the currently active identity,
// written through to both store tiers on every mutation. With no active
// identity the cart is memory-only (guest mode).
type Service interface {
	// Bind subscribes the cache to the session authority's identity
	// transitions. Call before the authority's Restore.
	Bind(auth session.Service)

	Add(ctx context.Context, req domain.AddCartItemRequest) error
	UpdateQuantity(ctx context.Context, productID string, quantity int) error
	Remove(ctx context.Context, productID string) error
	Clear(ctx context.Context)

	// MergeOnLogin reconciles the local collection against the
	// authority's copy after a fresh login: server list verbatim,
	// quantities summed and clamped on conflict, local-only lines
	// appended. The result is persisted and pushed back fire-and-forget.
	MergeOnLogin(ctx context.Context) []domain.CartItem
	// SyncWithBackend pushes the full cart; the authority's reply is
	// adopted on success. Never returns an error: on failure the prior
	// in-memory collection is returned unchanged.
	SyncWithBackend(ctx context.Context) []domain.CartItem
	// LoadFromBackend replaces the in-memory cart with the authority's
	// copy. On failure it returns an empty collection; best-effort
	// bootstrap, not a guaranteed hydrate.
	LoadFromBackend(ctx context.Context) []domain.CartItem
	Validate(ctx context.Context) (*domain.CartValidation, error)

	Items() []domain.CartItem
	Has(productID string) bool
	Quantity(productID string) int
	Count() int
	TotalQuantity() int
	Total() int64
	FilterByPrice(min, max int64) []domain.CartItem
	Search(query string) []domain.CartItem
	SortedByRecency() []domain.CartItem
}

type service struct {
	store  *store.Store
	client CartAPI
	log    *slog.Logger

	mu     sync.RWMutex
	userID string
	items  []domain.CartItem
}

func NewService(st *store.Store, client CartAPI, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &service{store: st, client: client, log: log}
}

func (s *service) Bind(auth session.Service) {
	auth.OnLogin(s.handleLogin)
	auth.OnLogout(s.handleLogout)
}

// handleLogin swaps in the new identity and loads its persisted cart:
// short tier first, durable fallback, else empty.
func (s *service) handleLogin(userID string) {
	ctx := context.Background()
	var items []domain.CartItem
	if !s.store.Get(ctx, store.CartKey(userID), &items) {
		items = nil
	}
	s.mu.Lock()
	s.userID = userID
	s.items = items
	s.mu.Unlock()
}

// handleLogout drops the in-memory cart and forgets the identity. The
// persisted copy is left untouched so the next login restores it.
func (s *service) handleLogout() {
	s.mu.Lock()
	s.userID = ""
	s.items = nil
	s.mu.Unlock()
}

func (s *service) Add(ctx context.Context, req domain.AddCartItemRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ProductID != req.ProductID {
			continue
		}
		// Existing line: accumulate, never duplicate. The whole add is
		// rejected when the sum would exceed the limit (no partial fill).
		line := &s.items[i]
		next := line.Quantity + req.Quantity
		if next > line.QuantityLimit() {
			limit := line.QuantityLimit()
			s.mu.Unlock()
			return fmt.Errorf("quantity %d exceeds limit %d for product %s: %w",
				next, limit, req.ProductID, domain.ErrCapacity)
		}
		line.Quantity = next
		s.mu.Unlock()
		s.persist(ctx)
		return nil
	}

	item := domain.CartItem{
		ItemID:    id.New(),
		ProductID: req.ProductID,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		Quantity:  req.Quantity,
		ImageRef:  req.ImageRef,
		MaxStock:  req.MaxStock,
		AddedAt:   time.Now().UnixMilli(),
	}
	if item.Quantity > item.QuantityLimit() {
		limit := item.QuantityLimit()
		s.mu.Unlock()
		return fmt.Errorf("quantity %d exceeds limit %d for product %s: %w",
			item.Quantity, limit, req.ProductID, domain.ErrCapacity)
	}
	s.items = append(s.items, item)
	s.mu.Unlock()
	s.persist(ctx)
	return nil
}

// UpdateQuantity sets a line's quantity. Zero or below removes the line.
func (s *service) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, productID)
	}
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ProductID != productID {
			continue
		}
		if quantity > s.items[i].QuantityLimit() {
			limit := s.items[i].QuantityLimit()
			s.mu.Unlock()
			return fmt.Errorf("quantity %d exceeds limit %d for product %s: %w",
				quantity, limit, productID, domain.ErrCapacity)
		}
		s.items[i].Quantity = quantity
		s.mu.Unlock()
		s.persist(ctx)
		return nil
	}
	s.mu.Unlock()
	return fmt.Errorf("product %s not in cart: %w", productID, domain.ErrNotFound)
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
	return fmt.Errorf("product %s not in cart: %w", productID, domain.ErrNotFound)
}

func (s *service) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
	s.persist(ctx)
}

func (s *service) MergeOnLogin(ctx context.Context) []domain.CartItem {
	owner, local := s.snapshot()

	server, err := s.client.FetchCart(ctx)
	if err != nil {
		s.log.Warn("cart: merge fetch failed, keeping local copy", "err", err)
		return local
	}

	merged := mergeCarts(server, local)
	if !s.adopt(ctx, owner, merged) {
		return s.Items()
	}

	// Push-back is fire-and-forget; nothing to re-check on completion
	// since the server copy already matches what was adopted.
	go func() {
		if _, err := s.client.SyncCart(context.Background(), merged); err != nil {
			s.log.Warn("cart: merge push-back failed", "user_id", owner, "err", err)
		}
	}()
	return s.Items()
}

// mergeCarts starts from the server list verbatim; local lines with a
// server-side counterpart sum quantities and re-clamp, the rest append.
func mergeCarts(server, local []domain.CartItem) []domain.CartItem {
	merged := make([]domain.CartItem, len(server))
	copy(merged, server)
	index := make(map[string]int, len(merged))
	for i := range merged {
		index[merged[i].ProductID] = i
	}
	for _, l := range local {
		if i, ok := index[l.ProductID]; ok {
			// The stock ceiling comes from whichever copy knows it;
			// the local one wins when both do.
			if l.MaxStock == 0 {
				l.MaxStock = merged[i].MaxStock
			}
			sum := merged[i].Quantity + l.Quantity
			if limit := l.QuantityLimit(); sum > limit {
				sum = limit
			}
			merged[i].Quantity = sum
			continue
		}
		index[l.ProductID] = len(merged)
		merged = append(merged, l)
	}
	return merged
}

func (s *service) SyncWithBackend(ctx context.Context) []domain.CartItem {
	owner, prior := s.snapshot()
	server, err := s.client.SyncCart(ctx, prior)
	if err != nil {
		s.log.Warn("cart: sync failed, keeping in-memory copy", "err", err)
		return prior
	}
	s.adopt(ctx, owner, server)
	return s.Items()
}

func (s *service) LoadFromBackend(ctx context.Context) []domain.CartItem {
	owner, _ := s.snapshot()
	server, err := s.client.FetchCart(ctx)
	if err != nil {
		s.log.Warn("cart: load failed", "err", err)
		return []domain.CartItem{}
	}
	s.adopt(ctx, owner, server)
	return s.Items()
}

// snapshot returns the identity that owns the cart right now together
// with a copy of its lines. Sync paths capture this before going to the
// network so a completion can be matched against the identity that
// started it.
func (s *service) snapshot() (string, []domain.CartItem) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, append([]domain.CartItem{}, s.items...)
}

// adopt installs the authority's copy and persists it under the identity
// that initiated the exchange. A result arriving after that identity was
// logged out or replaced is discarded: a sync must never leak one user's
// lines into another user's cart.
func (s *service) adopt(ctx context.Context, owner string, items []domain.CartItem) bool {
	s.mu.Lock()
	if s.userID != owner {
		s.mu.Unlock()
		s.log.Info("cart: dropping sync result for superseded identity", "user_id", owner)
		return false
	}
	s.items = items
	s.mu.Unlock()
	if owner != "" {
		s.store.Set(ctx, store.CartKey(owner), items)
	}
	return true
}

func (s *service) Validate(ctx context.Context) (*domain.CartValidation, error) {
	v, err := s.client.ValidateCart(ctx, s.Items())
	if err != nil {
		return nil, fmt.Errorf("validate cart: %w", err)
	}
	return v, nil
}

// persist writes the collection through to both tiers under the active
// identity's key. Guest carts are intentionally memory-only.
func (s *service) persist(ctx context.Context) {
	s.mu.RLock()
	userID := s.userID
	items := append([]domain.CartItem{}, s.items...)
	s.mu.RUnlock()
	if userID == "" {
		return
	}
	s.store.Set(ctx, store.CartKey(userID), items)
}

func (s *service) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CartItem{}, s.items...)
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

func (s *service) Quantity(productID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return s.items[i].Quantity
		}
	}
	return 0
}

// Count is the number of lines; TotalQuantity sums quantities.
func (s *service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *service) TotalQuantity() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for i := range s.items {
		n += s.items[i].Quantity
	}
	return n
}

// Total is the cart total in cents, recomputed on read.
func (s *service) Total() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for i := range s.items {
		total += s.items[i].Total()
	}
	return total
}

func (s *service) FilterByPrice(min, max int64) []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.CartItem
	for _, it := range s.items {
		if it.UnitPrice >= min && it.UnitPrice <= max {
			out = append(out, it)
		}
	}
	return out
}

func (s *service) Search(query string) []domain.CartItem {
	q := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.CartItem
	for _, it := range s.items {
		if strings.Contains(strings.ToLower(it.Name), q) {
			out = append(out, it)
		}
	}
	return out
}

func (s *service) SortedByRecency() []domain.CartItem {
	out := s.Items()
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt > out[j].AddedAt })
	return out
}
