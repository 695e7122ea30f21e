package orders

import "github.com/google/uuid"

type OrderLineInput struct {
	MenuItemID uuid.UUID `json:"menu_item_id" validate:"required"`
	Quantity   int64     `json:"quantity" validate:"required,gt=0,lte=100"`
}

type PlaceOrderRequest struct {
	TableID   *uuid.UUID       `json:"table_id,omitempty"`
	Type      Type             `json:"type" validate:"required,oneof=dine_in takeaway"`
	Note      string           `json:"note" validate:"max=500"`
	PromoCode *string          `json:"promo_code,omitempty" validate:"omitempty,min=1,max=40"`
	Lines     []OrderLineInput `json:"lines" validate:"required,min=1,max=50,dive"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

type ListFilters struct {
	Status Status
	Limit  int
	Offset int
}
