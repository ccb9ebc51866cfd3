package api

import (
	"context"
	"net/http"

	"github.com/go-cinema-client/internal/domain"
)

// SyncFavorites pushes the full favorites list to the authority and
// returns its authoritative copy.
func (c *Client) SyncFavorites(ctx context.Context, items []domain.FavoriteItem) ([]domain.FavoriteItem, error) {
	body := struct {
		Items []domain.FavoriteItem `json:"items"`
	}{Items: items}
	var out struct {
		Success   bool                  `json:"success"`
		Favorites []domain.FavoriteItem `json:"favorites"`
	}
	if err := c.do(ctx, http.MethodPost, "/favorite/sync", body, &out); err != nil {
		return nil, err
	}
	return out.Favorites, nil
}

// FetchFavorites returns the authority's copy of the signed-in user's
// favorites.
func (c *Client) FetchFavorites(ctx context.Context) ([]domain.FavoriteItem, error) {
	var out []domain.FavoriteItem
	if err := c.do(ctx, http.MethodGet, "/favorite", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
