package memdb

import (
	"sync"

	"github.com/go-cinema-client/internal/domain"
)

// DB is the reference backend's in-memory database: accounts and the
// per-user server-side copies of cart, favorites and bookings. It exists
// so the client engine can be exercised hermetically in tests and local
// dev; a real deployment talks to the production authority instead.
type DB struct {
	mu        sync.RWMutex
	byEmail   map[string]*domain.User
	byID      map[string]*domain.User
	carts     map[string][]domain.CartItem
	favorites map[string][]domain.FavoriteItem
	bookings  map[string][]domain.Booking
}

func New() *DB {
	return &DB{
		byEmail:   make(map[string]*domain.User),
		byID:      make(map[string]*domain.User),
		carts:     make(map[string][]domain.CartItem),
		favorites: make(map[string][]domain.FavoriteItem),
		bookings:  make(map[string][]domain.Booking),
	}
}

func (d *DB) UserByEmail(email string) (*domain.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.byEmail[email]
	return u, ok
}

func (d *DB) UserByID(userID string) (*domain.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.byID[userID]
	return u, ok
}

// PutUser inserts or replaces an account, reindexing on email change.
func (d *DB) PutUser(u *domain.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if old, ok := d.byID[u.UserID]; ok && old.Email != u.Email {
		delete(d.byEmail, old.Email)
	}
	d.byEmail[u.Email] = u
	d.byID[u.UserID] = u
}

func (d *DB) Cart(userID string) []domain.CartItem {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]domain.CartItem{}, d.carts[userID]...)
}

func (d *DB) SetCart(userID string, items []domain.CartItem) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.carts[userID] = items
}

func (d *DB) Favorites(userID string) []domain.FavoriteItem {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]domain.FavoriteItem{}, d.favorites[userID]...)
}

func (d *DB) SetFavorites(userID string, items []domain.FavoriteItem) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.favorites[userID] = items
}

func (d *DB) Bookings(userID string) []domain.Booking {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]domain.Booking{}, d.bookings[userID]...)
}

func (d *DB) AddBooking(userID string, b domain.Booking) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bookings[userID] = append(d.bookings[userID], b)
}
