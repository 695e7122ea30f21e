// Package inventory tracks stock items and their quantities. Quantity
// changes go through single-statement conditional updates so a decrement can
// never race past zero.
package inventory

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInsufficientStock indicates a decrement larger than the quantity on
// hand. The row is left untouched.
var ErrInsufficientStock = errors.New("inventory: insufficient stock")

// StockItem is a tracked ingredient or supply belonging to one restaurant.
type StockItem struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	Quantity     int64     `json:"quantity"`
	ReorderLevel int64     `json:"reorder_level"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BelowReorder reports whether the item has crossed its reorder threshold.
func (s StockItem) BelowReorder() bool {
	return s.ReorderLevel > 0 && s.Quantity <= s.ReorderLevel
}
