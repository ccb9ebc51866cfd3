package api

import (
	"context"
	"net/http"

	"github.com/go-cinema-client/internal/domain"
)

// AuthResponse is the authority's answer to every credential-issuing
// endpoint. ExpiresIn is seconds until expiry and may be zero, in which
// case the expiry is extracted from the token itself.
type AuthResponse struct {
	User      domain.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expiresIn,omitempty"`
}

// SignIn exchanges local credentials for a bearer credential.
func (c *Client) SignIn(ctx context.Context, req domain.SignInRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signin", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and signs it in, in one exchange.
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignInWithGoogle forwards an opaque federated token. Obtaining that
// token is the caller's problem; the authority verifies it.
func (c *Client) SignInWithGoogle(ctx context.Context, googleToken string) (*AuthResponse, error) {
	body := struct {
		Token string `json:"token"`
	}{Token: googleToken}
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/google", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh re-issues the current credential with a new expiry.
func (c *Client) Refresh(ctx context.Context) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify asks the authority whether the current bearer is still valid.
func (c *Client) Verify(ctx context.Context) (bool, error) {
	var out struct {
		Valid bool `json:"valid"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/verify", nil, &out); err != nil {
		return false, err
	}
	return out.Valid, nil
}

// UpdateProfile patches the signed-in user's profile.
func (c *Client) UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, http.MethodPatch, "/users/me", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
