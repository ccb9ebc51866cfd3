package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so callers can branch on error class without
// inspecting message text.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
	// ErrExpired marks a credential whose expiry is in the past.
	ErrExpired = errors.New("credential expired")
	// ErrCapacity marks a cart mutation that would exceed the stock or
	// per-item quantity limit. The mutation is rejected whole.
	ErrCapacity = errors.New("capacity exceeded")
	// ErrRemote marks a failure talking to the remote authority on a
	// best-effort path (sync, load, merge push-back).
	ErrRemote = errors.New("remote authority unavailable")
)
