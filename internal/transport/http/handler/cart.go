package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-cinema-client/internal/domain"
	"github.com/go-cinema-client/internal/infrastructure/memdb"
	"github.com/go-cinema-client/internal/transport/http/middleware"
)

// CartHandler implements the server-side cart endpoints.
type CartHandler struct {
	db *memdb.DB
}

func NewCartHandler(db *memdb.DB) *CartHandler {
	return &CartHandler{db: db}
}

// Sync replaces the server-side cart with the pushed items, clamping
// quantities the same way the client does, and echoes the stored copy.
func (h *CartHandler) Sync(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Items []domain.CartItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	items := clampCart(req.Items)
	h.db.SetCart(claims.UserID, items)
	writeJSON(w, http.StatusOK, struct {
		Success bool              `json:"success"`
		Cart    []domain.CartItem `json:"cart"`
	}{Success: true, Cart: items})
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, h.db.Cart(claims.UserID))
}

// Validate flags lines whose quantity exceeds the product limit.
func (h *CartHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.ClaimsFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Items []domain.CartItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var invalid []domain.CartItem
	for _, it := range req.Items {
		if it.Quantity < 1 || it.Quantity > it.QuantityLimit() {
			invalid = append(invalid, it)
		}
	}
	writeJSON(w, http.StatusOK, domain.CartValidation{
		Valid:        len(invalid) == 0,
		InvalidItems: invalid,
	})
}

func clampCart(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			continue
		}
		if limit := it.QuantityLimit(); it.Quantity > limit {
			it.Quantity = limit
		}
		out = append(out, it)
	}
	return out
}
