package validation

// AddItemRequest is the payload for POST /cart/items. Name and unit price
// are the add-time snapshot stored on the line.
type AddItemRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"` // snapshot; free products allowed
	Quantity  int     `json:"quantity,omitempty" validate:"omitempty,min=1"`
}

// ChangeQuantityRequest is the payload for POST /cart/items/:id/quantity.
// Delta may be negative; a line reaching 0 is removed.
type ChangeQuantityRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// SearchRequest is the payload for one live-search keystroke.
type SearchRequest struct {
	Query string `json:"query"`
}
