package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-cinema-client/internal/domain"
	"github.com/go-cinema-client/internal/infrastructure/store"
	"golang.org/x/time/rate"
)

// Client talks to the remote authority. Every outgoing request carries
// the current bearer credential when one is present in the store; an
// absent credential sends the request unauthenticated rather than
// blocking it.
type Client struct {
	baseURL string
	http    *http.Client
	store   *store.Store
	limiter *rate.Limiter
	log     *slog.Logger
}

// New builds a Client. The limiter throttles outbound requests so rapid
// cache mutations cannot stampede the authority.
func New(baseURL string, timeout time.Duration, st *store.Store, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		store:   st,
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		log:     log,
	}
}

// errorEnvelope mirrors the authority's error body shape.
type errorEnvelope struct {
	Error string `json:"error"`
}

// do performs a JSON request/response round trip. A non-2xx status maps
// to ErrUnauthorized (401/403) or ErrRemote, wrapped with the server's
// error message when it sent one.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer := c.bearer(ctx); bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrRemote)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		msg := envelope.Error
		if msg == "" {
			msg = resp.Status
		}
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%s: %w", msg, domain.ErrUnauthorized)
		default:
			return fmt.Errorf("%s: %w", msg, domain.ErrRemote)
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// bearer resolves the current credential token: short tier first, else
// durable tier. Empty when anonymous.
func (c *Client) bearer(ctx context.Context) string {
	var cred domain.Credential
	if !c.store.Get(ctx, store.KeyCredential, &cred) {
		return ""
	}
	return cred.Token
}
