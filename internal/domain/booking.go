package domain

import "time"

// Booking is a completed ticket purchase as reported by the authority.
type Booking struct {
	BookingID string     `json:"id"`
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	Total     int64      `json:"total"` // cents
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created"`
}

// CheckoutSession points the client at the payment gateway for a pending
// booking. The gateway interaction itself is outside this module.
type CheckoutSession struct {
	Status     string `json:"status"`
	SessionURL string `json:"session_url"`
}
