package orders

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mesa-hq/mesa/internal/platform/db"
	"github.com/mesa-hq/mesa/internal/shared"
)

const orderColumns = `id, restaurant_id, table_id, type, status, note, promo_code, subtotal_cents, discount_cents, total_cents, created_at, updated_at`

// Repository persists orders in PostgreSQL. Every statement carries the
// restaurant_id predicate; status changes additionally carry the expected
// current status so concurrent transitions cannot double-apply.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts the order and its lines in one transaction.
func (r *Repository) Create(ctx context.Context, order Order) (Order, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const insertOrder = `
INSERT INTO orders (id, restaurant_id, table_id, type, status, note, promo_code, subtotal_cents, discount_cents, total_cents, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
RETURNING created_at, updated_at`
		if err := tx.QueryRow(ctx, insertOrder,
			order.ID, order.RestaurantID, order.TableID, order.Type, order.Status, order.Note,
			order.PromoCode, order.SubtotalCents, order.DiscountCents, order.TotalCents,
		).Scan(&order.CreatedAt, &order.UpdatedAt); err != nil {
			return err
		}

		const insertLine = `
INSERT INTO order_lines (id, order_id, menu_item_id, stock_item_id, name, unit_price_cents, quantity)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
		for _, line := range order.Lines {
			if _, err := tx.Exec(ctx, insertLine,
				line.ID, line.OrderID, line.MenuItemID, line.StockItemID, line.Name, line.UnitPriceCents, line.Quantity,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

func (r *Repository) Get(ctx context.Context, restaurantID, id uuid.UUID) (Order, error) {
	const query = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1 AND restaurant_id = $2`
	order, err := scanOrder(r.pool.QueryRow(ctx, query, id, restaurantID))
	if err != nil {
		return Order{}, err
	}
	lines, err := r.linesFor(ctx, order.ID)
	if err != nil {
		return Order{}, err
	}
	order.Lines = lines
	return order, nil
}

func (r *Repository) List(ctx context.Context, restaurantID uuid.UUID, filters ListFilters) ([]Order, error) {
	query := `
SELECT ` + orderColumns + `
FROM orders
WHERE restaurant_id = $1`
	args := []any{restaurantID}
	if filters.Status != "" {
		args = append(args, filters.Status)
		query += ` AND status = $2`
	}
	query += ` ORDER BY created_at DESC`
	args = append(args, filters.Limit, filters.Offset)
	query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// UpdateStatus applies a transition conditionally on the current status.
// Zero rows means the order is missing, foreign, or already moved on.
func (r *Repository) UpdateStatus(ctx context.Context, restaurantID, id uuid.UUID, from, to Status) (Order, error) {
	const query = `
UPDATE orders
SET status = $4, updated_at = NOW()
WHERE id = $1 AND restaurant_id = $2 AND status = $3
RETURNING ` + orderColumns
	order, err := scanOrder(r.pool.QueryRow(ctx, query, id, restaurantID, from, to))
	if err != nil {
		return Order{}, err
	}
	lines, err := r.linesFor(ctx, order.ID)
	if err != nil {
		return Order{}, err
	}
	order.Lines = lines
	return order, nil
}

// UpdateTotals applies the promo discount computed at placement.
func (r *Repository) UpdateTotals(ctx context.Context, restaurantID, id uuid.UUID, discountCents, totalCents int64) error {
	const query = `
UPDATE orders
SET discount_cents = $3, total_cents = $4, updated_at = NOW()
WHERE id = $1 AND restaurant_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, restaurantID, discountCents, totalCents)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *Repository) linesFor(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error) {
	const query = `
SELECT id, order_id, menu_item_id, stock_item_id, name, unit_price_cents, quantity
FROM order_lines
WHERE order_id = $1
ORDER BY name`
	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []OrderLine
	for rows.Next() {
		var line OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.MenuItemID, &line.StockItemID,
			&line.Name, &line.UnitPriceCents, &line.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.RestaurantID, &o.TableID, &o.Type, &o.Status, &o.Note, &o.PromoCode,
		&o.SubtotalCents, &o.DiscountCents, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, shared.ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	return o, nil
}
