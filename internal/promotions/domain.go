// Package promotions manages promo codes and gift cards. Both counters move
// through guarded single-statement updates: an exhausted code or a drained
// card is rejected whole, never partially applied.
package promotions

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrPromoExhausted indicates a code whose uses are spent.
	ErrPromoExhausted = errors.New("promotions: promo code exhausted")
	// ErrPromoExpired indicates a code past its expiry.
	ErrPromoExpired = errors.New("promotions: promo code expired")
	// ErrPromoInactive indicates a disabled code.
	ErrPromoInactive = errors.New("promotions: promo code inactive")
	// ErrInsufficientBalance indicates a gift card deduction larger than the
	// remaining balance.
	ErrInsufficientBalance = errors.New("promotions: insufficient gift card balance")
	// ErrCodeTaken indicates a duplicate code within the restaurant.
	ErrCodeTaken = errors.New("promotions: code already exists")
)

// PromoCode is a percent-off discount with a bounded number of uses.
type PromoCode struct {
	ID           uuid.UUID  `json:"id"`
	RestaurantID uuid.UUID  `json:"restaurant_id"`
	Code         string     `json:"code"`
	PercentOff   int64      `json:"percent_off"`
	MaxUses      int64      `json:"max_uses"`
	CurrentUses  int64      `json:"current_uses"`
	IsActive     bool       `json:"is_active"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// GiftCard holds a prepaid balance in integer cents.
type GiftCard struct {
	ID                   uuid.UUID `json:"id"`
	RestaurantID         uuid.UUID `json:"restaurant_id"`
	Code                 string    `json:"code"`
	InitialAmountCents   int64     `json:"initial_amount_cents"`
	RemainingAmountCents int64     `json:"remaining_amount_cents"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
