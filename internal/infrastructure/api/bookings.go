package api

import (
	"context"
	"net/http"

	"github.com/go-cinema-client/internal/domain"
)

// CreateCheckoutSession opens a payment-gateway session for the given
// items. The gateway redirect itself happens outside this module.
func (c *Client) CreateCheckoutSession(ctx context.Context, items []domain.CartItem) (*domain.CheckoutSession, error) {
	body := struct {
		Items []domain.CartItem `json:"items"`
	}{Items: items}
	var out domain.CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/bookings/create-checkout-session", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyBookings lists the signed-in user's completed bookings.
func (c *Client) MyBookings(ctx context.Context) ([]domain.Booking, error) {
	var out struct {
		Status string           `json:"status"`
		Count  int              `json:"count"`
		Data   []domain.Booking `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/bookings/my-bookings", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
