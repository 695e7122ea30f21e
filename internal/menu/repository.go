package menu

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mesa-hq/mesa/internal/shared"
)

// Repository persists menu data in PostgreSQL. Every statement carries the
// restaurant_id predicate; a foreign id can never match.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListCategories(ctx context.Context, restaurantID uuid.UUID) ([]Category, error) {
	const query = `
SELECT id, restaurant_id, name, sort_order, created_at, updated_at
FROM menu_categories
WHERE restaurant_id = $1
ORDER BY sort_order, name`
	rows, err := r.pool.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.RestaurantID, &c.Name, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *Repository) CreateCategory(ctx context.Context, c Category) (Category, error) {
	const query = `
INSERT INTO menu_categories (id, restaurant_id, name, sort_order, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
RETURNING id, restaurant_id, name, sort_order, created_at, updated_at`
	return scanCategory(r.pool.QueryRow(ctx, query, c.ID, c.RestaurantID, c.Name, c.SortOrder))
}

func (r *Repository) UpdateCategory(ctx context.Context, restaurantID, id uuid.UUID, name string, sortOrder int) (Category, error) {
	const query = `
UPDATE menu_categories
SET name = $3, sort_order = $4, updated_at = NOW()
WHERE id = $1 AND restaurant_id = $2
RETURNING id, restaurant_id, name, sort_order, created_at, updated_at`
	return scanCategory(r.pool.QueryRow(ctx, query, id, restaurantID, name, sortOrder))
}

func (r *Repository) GetCategory(ctx context.Context, restaurantID, id uuid.UUID) (Category, error) {
	const query = `
SELECT id, restaurant_id, name, sort_order, created_at, updated_at
FROM menu_categories
WHERE id = $1 AND restaurant_id = $2`
	return scanCategory(r.pool.QueryRow(ctx, query, id, restaurantID))
}

func (r *Repository) DeleteCategory(ctx context.Context, restaurantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM menu_categories WHERE id = $1 AND restaurant_id = $2`, id, restaurantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *Repository) ListItems(ctx context.Context, restaurantID uuid.UUID) ([]Item, error) {
	const query = `
SELECT id, restaurant_id, category_id, stock_item_id, name, description, price_cents, is_available, sort_order, created_at, updated_at
FROM menu_items
WHERE restaurant_id = $1
ORDER BY sort_order, name`
	rows, err := r.pool.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.RestaurantID, &item.CategoryID, &item.StockItemID, &item.Name, &item.Description,
			&item.PriceCents, &item.IsAvailable, &item.SortOrder, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *Repository) GetItem(ctx context.Context, restaurantID, id uuid.UUID) (Item, error) {
	const query = `
SELECT id, restaurant_id, category_id, stock_item_id, name, description, price_cents, is_available, sort_order, created_at, updated_at
FROM menu_items
WHERE id = $1 AND restaurant_id = $2`
	return scanItem(r.pool.QueryRow(ctx, query, id, restaurantID))
}

func (r *Repository) CreateItem(ctx context.Context, item Item) (Item, error) {
	const query = `
INSERT INTO menu_items (id, restaurant_id, category_id, stock_item_id, name, description, price_cents, is_available, sort_order, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
RETURNING id, restaurant_id, category_id, stock_item_id, name, description, price_cents, is_available, sort_order, created_at, updated_at`
	return scanItem(r.pool.QueryRow(ctx, query, item.ID, item.RestaurantID, item.CategoryID, item.StockItemID,
		item.Name, item.Description, item.PriceCents, item.IsAvailable, item.SortOrder))
}

func (r *Repository) UpdateItem(ctx context.Context, item Item) (Item, error) {
	const query = `
UPDATE menu_items
SET category_id = $3, stock_item_id = $4, name = $5, description = $6, price_cents = $7, is_available = $8, sort_order = $9, updated_at = NOW()
WHERE id = $1 AND restaurant_id = $2
RETURNING id, restaurant_id, category_id, stock_item_id, name, description, price_cents, is_available, sort_order, created_at, updated_at`
	return scanItem(r.pool.QueryRow(ctx, query, item.ID, item.RestaurantID, item.CategoryID, item.StockItemID,
		item.Name, item.Description, item.PriceCents, item.IsAvailable, item.SortOrder))
}

func (r *Repository) DeleteItem(ctx context.Context, restaurantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1 AND restaurant_id = $2`, id, restaurantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanCategory(row pgx.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.RestaurantID, &c.Name, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, shared.ErrNotFound
		}
		return Category{}, err
	}
	return c, nil
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(&item.ID, &item.RestaurantID, &item.CategoryID, &item.StockItemID, &item.Name, &item.Description,
		&item.PriceCents, &item.IsAvailable, &item.SortOrder, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, shared.ErrNotFound
		}
		return Item{}, err
	}
	return item, nil
}
