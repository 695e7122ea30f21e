package inventory

type CreateStockItemRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=120"`
	Unit         string `json:"unit" validate:"required,min=1,max=20"`
	Quantity     int64  `json:"quantity" validate:"gte=0"`
	ReorderLevel int64  `json:"reorder_level" validate:"gte=0"`
}

type UpdateStockItemRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Unit         *string `json:"unit,omitempty" validate:"omitempty,min=1,max=20"`
	ReorderLevel *int64  `json:"reorder_level,omitempty" validate:"omitempty,gte=0"`
}

// AdjustStockRequest moves quantity by a signed delta. Negative deltas are
// rejected when they would take the quantity below zero. The bounds keep
// -Delta representable, so negation in the service cannot overflow.
type AdjustStockRequest struct {
	Delta  int64  `json:"delta" validate:"required,gte=-1000000,lte=1000000"`
	Reason string `json:"reason" validate:"max=200"`
}
