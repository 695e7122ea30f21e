package tenant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ownedTables is the closed set of tables the validator may query. Table
// names never come from request input; an unknown name fails closed.
var ownedTables = map[string]struct{}{
	"menu_categories": {},
	"menu_items":      {},
	"orders":          {},
	"stock_items":     {},
	"dining_tables":   {},
	"reservations":    {},
	"promo_codes":     {},
	"gift_cards":      {},
	"staff_members":   {},
}

// Validator confirms a resource's tenant foreign key matches the caller's
// restaurant before any state-changing operation touches it.
type Validator struct {
	pool *pgxpool.Pool
}

// NewValidator constructs a Validator.
func NewValidator(pool *pgxpool.Pool) *Validator {
	return &Validator{pool: pool}
}

// ValidateOwnership returns true only when exactly one row matches both the
// primary key and the restaurant foreign key. Callers must surface a false
// result as not-found, never as forbidden.
func (v *Validator) ValidateOwnership(ctx context.Context, table string, resourceID, restaurantID uuid.UUID) (bool, error) {
	if v == nil || v.pool == nil {
		return false, fmt.Errorf("tenant: validator not initialised")
	}
	if _, ok := ownedTables[table]; !ok {
		return false, fmt.Errorf("tenant: table %q not registered for ownership checks", table)
	}
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE id = $1 AND restaurant_id = $2`, table)
	var count int
	if err := v.pool.QueryRow(ctx, query, resourceID, restaurantID).Scan(&count); err != nil {
		return false, err
	}
	return count == 1, nil
}
