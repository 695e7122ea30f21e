package promotions

import "time"

type CreatePromoRequest struct {
	Code       string     `json:"code" validate:"required,min=2,max=40"`
	PercentOff int64      `json:"percent_off" validate:"required,gt=0,lte=100"`
	MaxUses    int64      `json:"max_uses" validate:"required,gt=0"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

type UpdatePromoRequest struct {
	IsActive  *bool      `json:"is_active,omitempty"`
	MaxUses   *int64     `json:"max_uses,omitempty" validate:"omitempty,gt=0"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type CreateGiftCardRequest struct {
	Code        string `json:"code" validate:"required,min=4,max=40"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
}

type RedeemGiftCardRequest struct {
	Code        string `json:"code" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
}
