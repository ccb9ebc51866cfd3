package api

import (
	"context"
	"net/http"

	"github.com/go-cinema-client/internal/domain"
)

// SyncCart pushes the full cart to the authority and returns its
// authoritative copy.
func (c *Client) SyncCart(ctx context.Context, items []domain.CartItem) ([]domain.CartItem, error) {
	body := struct {
		Items []domain.CartItem `json:"items"`
	}{Items: items}
	var out struct {
		Success bool              `json:"success"`
		Cart    []domain.CartItem `json:"cart"`
	}
	if err := c.do(ctx, http.MethodPost, "/cart/sync", body, &out); err != nil {
		return nil, err
	}
	return out.Cart, nil
}

// FetchCart returns the authority's copy of the signed-in user's cart.
func (c *Client) FetchCart(ctx context.Context) ([]domain.CartItem, error) {
	var out []domain.CartItem
	if err := c.do(ctx, http.MethodGet, "/cart", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ValidateCart asks the authority to check stock and pricing for a
// proposed cart before checkout.
func (c *Client) ValidateCart(ctx context.Context, items []domain.CartItem) (*domain.CartValidation, error) {
	body := struct {
		Items []domain.CartItem `json:"items"`
	}{Items: items}
	var out domain.CartValidation
	if err := c.do(ctx, http.MethodPost, "/cart/validate", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
