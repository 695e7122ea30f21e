package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mesa-hq/mesa/internal/shared"
)

const stockColumns = `id, restaurant_id, name, unit, quantity, reorder_level, created_at, updated_at`

// Repository persists stock items in PostgreSQL. Every statement carries the
// restaurant_id predicate.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) List(ctx context.Context, restaurantID uuid.UUID) ([]StockItem, error) {
	const query = `
SELECT ` + stockColumns + `
FROM stock_items
WHERE restaurant_id = $1
ORDER BY name`
	rows, err := r.pool.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []StockItem
	for rows.Next() {
		var s StockItem
		if err := rows.Scan(&s.ID, &s.RestaurantID, &s.Name, &s.Unit, &s.Quantity, &s.ReorderLevel, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *Repository) Get(ctx context.Context, restaurantID, id uuid.UUID) (StockItem, error) {
	const query = `
SELECT ` + stockColumns + `
FROM stock_items
WHERE id = $1 AND restaurant_id = $2`
	return scanStockItem(r.pool.QueryRow(ctx, query, id, restaurantID))
}

func (r *Repository) Create(ctx context.Context, item StockItem) (StockItem, error) {
	const query = `
INSERT INTO stock_items (id, restaurant_id, name, unit, quantity, reorder_level, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
RETURNING ` + stockColumns
	return scanStockItem(r.pool.QueryRow(ctx, query, item.ID, item.RestaurantID, item.Name, item.Unit, item.Quantity, item.ReorderLevel))
}

func (r *Repository) Update(ctx context.Context, item StockItem) (StockItem, error) {
	const query = `
UPDATE stock_items
SET name = $3, unit = $4, reorder_level = $5, updated_at = NOW()
WHERE id = $1 AND restaurant_id = $2
RETURNING ` + stockColumns
	return scanStockItem(r.pool.QueryRow(ctx, query, item.ID, item.RestaurantID, item.Name, item.Unit, item.ReorderLevel))
}

func (r *Repository) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM stock_items WHERE id = $1 AND restaurant_id = $2`, id, restaurantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Increment adds quantity to an item.
func (r *Repository) Increment(ctx context.Context, restaurantID, id uuid.UUID, amount int64) (StockItem, error) {
	const query = `
UPDATE stock_items
SET quantity = quantity + $3, updated_at = NOW()
WHERE id = $1 AND restaurant_id = $2
RETURNING ` + stockColumns
	return scanStockItem(r.pool.QueryRow(ctx, query, id, restaurantID, amount))
}

// Decrement subtracts quantity in a single conditional statement. When the
// guard fails the row is untouched; the caller gets ErrInsufficientStock for
// an existing item and shared.ErrNotFound otherwise.
func (r *Repository) Decrement(ctx context.Context, restaurantID, id uuid.UUID, amount int64) (StockItem, error) {
	const query = `
UPDATE stock_items
SET quantity = quantity - $3, updated_at = NOW()
WHERE id = $1 AND restaurant_id = $2 AND quantity >= $3
RETURNING ` + stockColumns
	item, err := scanStockItem(r.pool.QueryRow(ctx, query, id, restaurantID, amount))
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return StockItem{}, err
	}
	if _, getErr := r.Get(ctx, restaurantID, id); getErr != nil {
		return StockItem{}, getErr
	}
	return StockItem{}, ErrInsufficientStock
}

func scanStockItem(row pgx.Row) (StockItem, error) {
	var s StockItem
	err := row.Scan(&s.ID, &s.RestaurantID, &s.Name, &s.Unit, &s.Quantity, &s.ReorderLevel, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return StockItem{}, shared.ErrNotFound
	}
	if err != nil {
		return StockItem{}, err
	}
	return s, nil
}
