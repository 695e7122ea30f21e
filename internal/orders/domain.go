// Package orders manages dine-in and takeaway orders, their lines and the
// status lifecycle. Placement is the only point where inventory moves.
package orders

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the closed order lifecycle.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPlaced    Status = "placed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Type distinguishes how the order is fulfilled.
type Type string

const (
	TypeDineIn   Type = "dine_in"
	TypeTakeaway Type = "takeaway"
)

// ErrInvalidTransition indicates a status change outside the lifecycle.
var ErrInvalidTransition = errors.New("orders: invalid status transition")

var transitions = map[Status][]Status{
	StatusDraft:     {StatusPlaced, StatusCancelled},
	StatusPlaced:    {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether moving from one status to the next is legal.
// Completed and cancelled are terminal.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a member of the closed status set.
func ValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusPlaced, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Order is one customer order. Monetary fields are integer cents; the
// discount is already folded into TotalCents.
type Order struct {
	ID            uuid.UUID   `json:"id"`
	RestaurantID  uuid.UUID   `json:"restaurant_id"`
	TableID       *uuid.UUID  `json:"table_id,omitempty"`
	Type          Type        `json:"type"`
	Status        Status      `json:"status"`
	Note          string      `json:"note,omitempty"`
	PromoCode     *string     `json:"promo_code,omitempty"`
	SubtotalCents int64       `json:"subtotal_cents"`
	DiscountCents int64       `json:"discount_cents"`
	TotalCents    int64       `json:"total_cents"`
	Lines         []OrderLine `json:"lines"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// OrderLine snapshots the menu item at placement time so later menu edits
// do not rewrite order history.
type OrderLine struct {
	ID             uuid.UUID  `json:"id"`
	OrderID        uuid.UUID  `json:"order_id"`
	MenuItemID     uuid.UUID  `json:"menu_item_id"`
	StockItemID    *uuid.UUID `json:"stock_item_id,omitempty"`
	Name           string     `json:"name"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	Quantity       int64      `json:"quantity"`
}
