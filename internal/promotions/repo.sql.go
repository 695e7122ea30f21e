package promotions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mesa-hq/mesa/internal/shared"
)

const promoColumns = `id, restaurant_id, code, percent_off, max_uses, current_uses, is_active, expires_at, created_at, updated_at`
const giftCardColumns = `id, restaurant_id, code, initial_amount_cents, remaining_amount_cents, created_at, updated_at`

// Repository persists promo codes and gift cards in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListPromos(ctx context.Context, restaurantID uuid.UUID) ([]PromoCode, error) {
	const query = `
SELECT ` + promoColumns + `
FROM promo_codes
WHERE restaurant_id = $1
ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promos []PromoCode
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, err
		}
		promos = append(promos, p)
	}
	return promos, rows.Err()
}

func (r *Repository) GetPromo(ctx context.Context, restaurantID, id uuid.UUID) (PromoCode, error) {
	const query = `
SELECT ` + promoColumns + `
FROM promo_codes
WHERE id = $1 AND restaurant_id = $2`
	return scanPromo(r.pool.QueryRow(ctx, query, id, restaurantID))
}

func (r *Repository) GetPromoByCode(ctx context.Context, restaurantID uuid.UUID, code string) (PromoCode, error) {
	const query = `
SELECT ` + promoColumns + `
FROM promo_codes
WHERE restaurant_id = $1 AND code = $2`
	return scanPromo(r.pool.QueryRow(ctx, query, restaurantID, code))
}

func (r *Repository) CreatePromo(ctx context.Context, p PromoCode) (PromoCode, error) {
	const query = `
INSERT INTO promo_codes (id, restaurant_id, code, percent_off, max_uses, current_uses, is_active, expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 0, TRUE, $6, NOW(), NOW())
RETURNING ` + promoColumns
	created, err := scanPromo(r.pool.QueryRow(ctx, query, p.ID, p.RestaurantID, p.Code, p.PercentOff, p.MaxUses, p.ExpiresAt))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return PromoCode{}, ErrCodeTaken
		}
		return PromoCode{}, err
	}
	return created, nil
}

func (r *Repository) UpdatePromo(ctx context.Context, p PromoCode) (PromoCode, error) {
	const query = `
UPDATE promo_codes
SET is_active = $3, max_uses = $4, expires_at = $5, updated_at = NOW()
WHERE id = $1 AND restaurant_id = $2
RETURNING ` + promoColumns
	return scanPromo(r.pool.QueryRow(ctx, query, p.ID, p.RestaurantID, p.IsActive, p.MaxUses, p.ExpiresAt))
}

func (r *Repository) DeletePromo(ctx context.Context, restaurantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM promo_codes WHERE id = $1 AND restaurant_id = $2`, id, restaurantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// RedeemPromo consumes one use in a single guarded statement. When the guard
// fails the current row is read back to classify the rejection.
func (r *Repository) RedeemPromo(ctx context.Context, restaurantID uuid.UUID, code string) (PromoCode, error) {
	const query = `
UPDATE promo_codes
SET current_uses = current_uses + 1, updated_at = NOW()
WHERE restaurant_id = $1 AND code = $2
  AND is_active
  AND current_uses < max_uses
  AND (expires_at IS NULL OR expires_at > NOW())
RETURNING ` + promoColumns
	promo, err := scanPromo(r.pool.QueryRow(ctx, query, restaurantID, code))
	if err == nil {
		return promo, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return PromoCode{}, err
	}

	current, getErr := r.GetPromoByCode(ctx, restaurantID, code)
	if getErr != nil {
		return PromoCode{}, getErr
	}
	switch {
	case !current.IsActive:
		return PromoCode{}, ErrPromoInactive
	case current.ExpiresAt != nil && !current.ExpiresAt.After(time.Now()):
		return PromoCode{}, ErrPromoExpired
	default:
		return PromoCode{}, ErrPromoExhausted
	}
}

// ReleasePromo returns one use, guarded so the counter never goes negative.
func (r *Repository) ReleasePromo(ctx context.Context, restaurantID uuid.UUID, code string) error {
	const query = `
UPDATE promo_codes
SET current_uses = current_uses - 1, updated_at = NOW()
WHERE restaurant_id = $1 AND code = $2 AND current_uses > 0`
	_, err := r.pool.Exec(ctx, query, restaurantID, code)
	return err
}

func (r *Repository) ListGiftCards(ctx context.Context, restaurantID uuid.UUID) ([]GiftCard, error) {
	const query = `
SELECT ` + giftCardColumns + `
FROM gift_cards
WHERE restaurant_id = $1
ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []GiftCard
	for rows.Next() {
		c, err := scanGiftCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (r *Repository) CreateGiftCard(ctx context.Context, c GiftCard) (GiftCard, error) {
	const query = `
INSERT INTO gift_cards (id, restaurant_id, code, initial_amount_cents, remaining_amount_cents, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4, NOW(), NOW())
RETURNING ` + giftCardColumns
	created, err := scanGiftCard(r.pool.QueryRow(ctx, query, c.ID, c.RestaurantID, c.Code, c.InitialAmountCents))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return GiftCard{}, ErrCodeTaken
		}
		return GiftCard{}, err
	}
	return created, nil
}

func (r *Repository) GetGiftCardByCode(ctx context.Context, restaurantID uuid.UUID, code string) (GiftCard, error) {
	const query = `
SELECT ` + giftCardColumns + `
FROM gift_cards
WHERE restaurant_id = $1 AND code = $2`
	return scanGiftCard(r.pool.QueryRow(ctx, query, restaurantID, code))
}

// DeductGiftCard takes amount off the balance in a single guarded statement.
// An existing card that cannot cover the amount yields ErrInsufficientBalance
// with the row untouched.
func (r *Repository) DeductGiftCard(ctx context.Context, restaurantID uuid.UUID, code string, amount int64) (GiftCard, error) {
	const query = `
UPDATE gift_cards
SET remaining_amount_cents = remaining_amount_cents - $3, updated_at = NOW()
WHERE restaurant_id = $1 AND code = $2 AND remaining_amount_cents >= $3
RETURNING ` + giftCardColumns
	card, err := scanGiftCard(r.pool.QueryRow(ctx, query, restaurantID, code, amount))
	if err == nil {
		return card, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return GiftCard{}, err
	}
	if _, getErr := r.GetGiftCardByCode(ctx, restaurantID, code); getErr != nil {
		return GiftCard{}, getErr
	}
	return GiftCard{}, ErrInsufficientBalance
}

func scanPromo(row pgx.Row) (PromoCode, error) {
	var p PromoCode
	err := row.Scan(&p.ID, &p.RestaurantID, &p.Code, &p.PercentOff, &p.MaxUses, &p.CurrentUses,
		&p.IsActive, &p.ExpiresAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return PromoCode{}, shared.ErrNotFound
	}
	if err != nil {
		return PromoCode{}, err
	}
	return p, nil
}

func scanGiftCard(row pgx.Row) (GiftCard, error) {
	var c GiftCard
	err := row.Scan(&c.ID, &c.RestaurantID, &c.Code, &c.InitialAmountCents, &c.RemainingAmountCents, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return GiftCard{}, shared.ErrNotFound
	}
	if err != nil {
		return GiftCard{}, err
	}
	return c, nil
}
