package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-cinema-client/internal/domain"
	"github.com/go-cinema-client/internal/infrastructure/memdb"
	"github.com/go-cinema-client/internal/pkg/validate"
	"github.com/go-cinema-client/internal/transport/http/middleware"
)

// UserHandler implements the profile endpoints.
type UserHandler struct {
	db *memdb.DB
}

func NewUserHandler(db *memdb.DB) *UserHandler {
	return &UserHandler{db: db}
}

// UpdateMe applies a partial profile update to the signed-in user.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, ok := h.db.UserByID(claims.UserID)
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	updated := *u
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.Email != nil {
		if other, exists := h.db.UserByEmail(*req.Email); exists && other.UserID != u.UserID {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		updated.Email = *req.Email
	}
	updated.UpdatedAt = time.Now().UTC()
	h.db.PutUser(&updated)
	writeJSON(w, http.StatusOK, &updated)
}
