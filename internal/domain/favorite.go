package domain

// FavoriteItem is one entry in a user's favorites. Membership is boolean:
// ProductID is unique and there is no quantity. AddedAt is immutable once
// created and serves as the ordering and merge tie-break key.
type FavoriteItem struct {
	ItemID    string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"` // cents
	ImageRef  string `json:"image_ref,omitempty"`
	AddedAt   int64  `json:"added_at"` // Unix millis
}

// AddFavoriteRequest is the client-facing input for a favorites add.
type AddFavoriteRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	UnitPrice int64  `json:"unit_price" validate:"gte=0"`
	ImageRef  string `json:"image_ref"`
}
