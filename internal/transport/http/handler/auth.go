package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-cinema-client/internal/domain"
	jwtinfra "github.com/go-cinema-client/internal/infrastructure/jwt"
	"github.com/go-cinema-client/internal/infrastructure/memdb"
	"github.com/go-cinema-client/internal/pkg/id"
	"github.com/go-cinema-client/internal/pkg/validate"
	"github.com/go-cinema-client/internal/transport/http/middleware"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler implements the credential-issuing endpoints.
type AuthHandler struct {
	db       *memdb.DB
	provider *jwtinfra.Provider
}

func NewAuthHandler(db *memdb.DB, provider *jwtinfra.Provider) *AuthHandler {
	return &AuthHandler{db: db, provider: provider}
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req domain.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, ok := h.db.UserByEmail(req.Email)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	h.issue(w, u)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, exists := h.db.UserByEmail(req.Email); exists {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not hash password")
		return
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		AuthProvider: "local",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	h.db.PutUser(u)
	h.issue(w, u)
}

// Google accepts the opaque federated token and fabricates a stable
// identity from it. Real token verification belongs to the production
// authority; faking it keeps this backend usable offline.
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, "token required")
		return
	}
	sum := sha256.Sum256([]byte(req.Token))
	sub := hex.EncodeToString(sum[:8])
	email := "google-" + sub + "@example.com"
	u, ok := h.db.UserByEmail(email)
	if !ok {
		now := time.Now().UTC()
		u = &domain.User{
			UserID:       id.New(),
			Name:         "Google User " + strings.ToUpper(sub[:4]),
			Email:        email,
			AuthProvider: "google",
			GoogleSub:    sub,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		h.db.PutUser(u)
	}
	h.issue(w, u)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, ok := h.db.UserByID(claims.UserID)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unknown user")
		return
	}
	h.issue(w, u)
}

// Verify reports bearer validity without requiring the auth middleware:
// a missing or bad token answers {valid:false} rather than 401.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	valid := false
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if _, err := h.provider.Verify(strings.TrimPrefix(auth, "Bearer ")); err == nil {
			valid = true
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

func (h *AuthHandler) issue(w http.ResponseWriter, u *domain.User) {
	token, err := h.provider.Sign(u.UserID, u.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not sign token")
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{
		User:      u,
		Token:     token,
		ExpiresIn: int64(h.provider.Expiry().Seconds()),
	})
}
