// Package menu manages categories and menu items, including the public
// digital menu surface.
package menu

import (
	"time"

	"github.com/google/uuid"
)

// Category groups menu items for display.
type Category struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Name         string    `json:"name"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Item is a single orderable menu entry. Prices are integer cents.
// StockItemID, when set, links the item to the stock record that is
// decremented each time the item is ordered.
type Item struct {
	ID           uuid.UUID  `json:"id"`
	RestaurantID uuid.UUID  `json:"restaurant_id"`
	CategoryID   *uuid.UUID `json:"category_id,omitempty"`
	StockItemID  *uuid.UUID `json:"stock_item_id,omitempty"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	PriceCents   int64      `json:"price_cents"`
	IsAvailable  bool       `json:"is_available"`
	SortOrder    int        `json:"sort_order"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PublicMenu is the unauthenticated menu view served by restaurant slug.
type PublicMenu struct {
	RestaurantName string          `json:"restaurant_name"`
	Currency       string          `json:"currency"`
	Sections       []PublicSection `json:"sections"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// PublicSection is one category with its available items.
type PublicSection struct {
	Name  string       `json:"name"`
	Items []PublicItem `json:"items"`
}

// PublicItem strips internal fields from an item for public display.
type PublicItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"price_cents"`
}
