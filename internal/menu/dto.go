package menu

import "github.com/google/uuid"

type CreateCategoryRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=80"`
	SortOrder int    `json:"sort_order" validate:"gte=0"`
}

type UpdateCategoryRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=80"`
	SortOrder *int    `json:"sort_order,omitempty" validate:"omitempty,gte=0"`
}

type CreateItemRequest struct {
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	StockItemID *uuid.UUID `json:"stock_item_id,omitempty"`
	Name        string     `json:"name" validate:"required,min=1,max=120"`
	Description string     `json:"description" validate:"max=1000"`
	PriceCents  int64      `json:"price_cents" validate:"required,gt=0"`
	IsAvailable bool       `json:"is_available"`
	SortOrder   int        `json:"sort_order" validate:"gte=0"`
}

type UpdateItemRequest struct {
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	StockItemID *uuid.UUID `json:"stock_item_id,omitempty"`
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=1000"`
	PriceCents  *int64     `json:"price_cents,omitempty" validate:"omitempty,gt=0"`
	IsAvailable *bool      `json:"is_available,omitempty"`
	SortOrder   *int       `json:"sort_order,omitempty" validate:"omitempty,gte=0"`
}
