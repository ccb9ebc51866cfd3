package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-cinema-client/internal/domain"
	"github.com/go-cinema-client/internal/infrastructure/memdb"
	"github.com/go-cinema-client/internal/pkg/id"
	"github.com/go-cinema-client/internal/transport/http/middleware"
)

// BookingsHandler implements the checkout and bookings endpoints.
// Payments are stubbed: the checkout session URL points at a fake
// gateway and the booking is recorded immediately as pending.
type BookingsHandler struct {
	db *memdb.DB
}

func NewBookingsHandler(db *memdb.DB) *BookingsHandler {
	return &BookingsHandler{db: db}
}

func (h *BookingsHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Items []domain.CartItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items required")
		return
	}
	var total int64
	for i := range req.Items {
		total += req.Items[i].Total()
	}
	booking := domain.Booking{
		BookingID: id.New(),
		UserID:    claims.UserID,
		Items:     req.Items,
		Total:     total,
		Status:    "pending",
		CreatedAt: time.Now().UTC(),
	}
	h.db.AddBooking(claims.UserID, booking)
	writeJSON(w, http.StatusOK, domain.CheckoutSession{
		Status:     "success",
		SessionURL: "https://checkout.invalid/session/" + booking.BookingID,
	})
}

func (h *BookingsHandler) MyBookings(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	bookings := h.db.Bookings(claims.UserID)
	writeJSON(w, http.StatusOK, BookingsEnvelope{
		Status: "success",
		Count:  len(bookings),
		Data:   bookings,
	})
}
