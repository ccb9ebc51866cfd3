package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-cinema-client/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps every credential-issuing response.
type AuthEnvelope struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expiresIn,omitempty"`
}

// BookingsEnvelope wraps the bookings listing.
type BookingsEnvelope struct {
	Status string           `json:"status"`
	Count  int              `json:"count"`
	Data   []domain.Booking `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
