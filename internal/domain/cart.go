package domain

// MaxQuantityPerItem is the global per-line quantity ceiling. A product's
// effective limit is min(MaxStock, MaxQuantityPerItem).
const MaxQuantityPerItem = 10

// CartItem is one line in a user's cart. ProductID is unique within a
// cart; adding an existing product accumulates quantity instead of
// creating a second line.
type CartItem struct {
	ItemID    string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"` // cents
	Quantity  int    `json:"quantity"`
	ImageRef  string `json:"image_ref,omitempty"`
	// MaxStock is the per-product stock ceiling; 0 means unknown, in
	// which case only MaxQuantityPerItem applies.
	MaxStock int   `json:"max_stock,omitempty"`
	AddedAt  int64 `json:"added_at"` // Unix millis, set on first add
}

// QuantityLimit returns the effective quantity ceiling for this line.
func (i *CartItem) QuantityLimit() int {
	if i.MaxStock > 0 && i.MaxStock < MaxQuantityPerItem {
		return i.MaxStock
	}
	return MaxQuantityPerItem
}

// Total returns the line total in cents.
func (i *CartItem) Total() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// AddCartItemRequest is the client-facing input for a cart add.
type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	UnitPrice int64  `json:"unit_price" validate:"gte=0"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
	ImageRef  string `json:"image_ref"`
	MaxStock  int    `json:"max_stock" validate:"gte=0"`
}

// CartValidation is the authority's verdict on a proposed cart.
type CartValidation struct {
	Valid        bool       `json:"valid"`
	InvalidItems []CartItem `json:"invalid_items,omitempty"`
}
