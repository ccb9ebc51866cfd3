package domain

import "time"

// Credential is the bearer credential issued by the remote authority,
// together with the identity it belongs to. The token is opaque to the
// client except for expiry extraction.
type Credential struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Token       string `json:"token"`
	// ExpiresAt is a Unix timestamp in milliseconds. A credential with
	// ExpiresAt in the past is logically deleted.
	ExpiresAt int64 `json:"expires_at"`
}

// Expired reports whether the credential's expiry is in the past.
func (c *Credential) Expired(now time.Time) bool {
	return c.ExpiresAt <= now.UnixMilli()
}

// ExpiresWithin reports whether the credential expires inside the given
// window. Used to decide whether a proactive refresh is worthwhile.
func (c *Credential) ExpiresWithin(now time.Time, window time.Duration) bool {
	return c.ExpiresAt <= now.Add(window).UnixMilli()
}

// SessionState is the session authority's lifecycle state.
type SessionState string

const (
	StateAnonymous      SessionState = "anonymous"
	StateAuthenticating SessionState = "authenticating"
	StateAuthenticated  SessionState = "authenticated"
	StateExpired        SessionState = "expired"
)

// SignInRequest carries local credentials to the remote authority.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a new account with the remote authority.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UpdateProfileRequest carries partial profile changes for PATCH /users/me.
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}
