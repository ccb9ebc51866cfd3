package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-cinema-client/internal/domain"
	"github.com/go-cinema-client/internal/infrastructure/memdb"
	"github.com/go-cinema-client/internal/transport/http/middleware"
)

// FavoritesHandler implements the server-side favorites endpoints.
type FavoritesHandler struct {
	db *memdb.DB
}

func NewFavoritesHandler(db *memdb.DB) *FavoritesHandler {
	return &FavoritesHandler{db: db}
}

// Sync replaces the server-side favorites with the pushed items,
// dropping duplicate product ids (first occurrence wins), and echoes
// the stored copy.
func (h *FavoritesHandler) Sync(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Items []domain.FavoriteItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	seen := make(map[string]bool, len(req.Items))
	items := make([]domain.FavoriteItem, 0, len(req.Items))
	for _, it := range req.Items {
		if seen[it.ProductID] {
			continue
		}
		seen[it.ProductID] = true
		items = append(items, it)
	}
	h.db.SetFavorites(claims.UserID, items)
	writeJSON(w, http.StatusOK, struct {
		Success   bool                  `json:"success"`
		Favorites []domain.FavoriteItem `json:"favorites"`
	}{Success: true, Favorites: items})
}

func (h *FavoritesHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, h.db.Favorites(claims.UserID))
}
