package reservations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mesa-hq/mesa/internal/shared"
)

const tableColumns = `id, restaurant_id, name, seats, created_at, updated_at`
const reservationColumns = `id, restaurant_id, table_id, guest_name, guest_phone, party_size, status, starts_at, ends_at, note, created_at, updated_at`

// Repository persists tables and reservations in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListTables(ctx context.Context, restaurantID uuid.UUID) ([]DiningTable, error) {
	const query = `
SELECT ` + tableColumns + `
FROM dining_tables
WHERE restaurant_id = $1
ORDER BY name`
	rows, err := r.pool.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []DiningTable
	for rows.Next() {
		var t DiningTable
		if err := rows.Scan(&t.ID, &t.RestaurantID, &t.Name, &t.Seats, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (r *Repository) GetTable(ctx context.Context, restaurantID, id uuid.UUID) (DiningTable, error) {
	const query = `
SELECT ` + tableColumns + `
FROM dining_tables
WHERE id = $1 AND restaurant_id = $2`
	return scanTable(r.pool.QueryRow(ctx, query, id, restaurantID))
}

func (r *Repository) CreateTable(ctx context.Context, t DiningTable) (DiningTable, error) {
	const query = `
INSERT INTO dining_tables (id, restaurant_id, name, seats, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
RETURNING ` + tableColumns
	return scanTable(r.pool.QueryRow(ctx, query, t.ID, t.RestaurantID, t.Name, t.Seats))
}

func (r *Repository) UpdateTable(ctx context.Context, t DiningTable) (DiningTable, error) {
	const query = `
UPDATE dining_tables
SET name = $3, seats = $4, updated_at = NOW()
WHERE id = $1 AND restaurant_id = $2
RETURNING ` + tableColumns
	return scanTable(r.pool.QueryRow(ctx, query, t.ID, t.RestaurantID, t.Name, t.Seats))
}

func (r *Repository) DeleteTable(ctx context.Context, restaurantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM dining_tables WHERE id = $1 AND restaurant_id = $2`, id, restaurantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *Repository) ListReservations(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) ([]Reservation, error) {
	const query = `
SELECT ` + reservationColumns + `
FROM reservations
WHERE restaurant_id = $1 AND starts_at < $3 AND ends_at > $2
ORDER BY starts_at`
	rows, err := r.pool.Query(ctx, query, restaurantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func (r *Repository) GetReservation(ctx context.Context, restaurantID, id uuid.UUID) (Reservation, error) {
	const query = `
SELECT ` + reservationColumns + `
FROM reservations
WHERE id = $1 AND restaurant_id = $2`
	return scanReservation(r.pool.QueryRow(ctx, query, id, restaurantID))
}

// CountOverlapping counts active reservations on a table intersecting the
// half-open window.
func (r *Repository) CountOverlapping(ctx context.Context, restaurantID, tableID uuid.UUID, startsAt, endsAt time.Time) (int, error) {
	const query = `
SELECT COUNT(*)
FROM reservations
WHERE restaurant_id = $1 AND table_id = $2
  AND status IN ('pending', 'confirmed', 'seated')
  AND starts_at < $4 AND ends_at > $3`
	var count int
	err := r.pool.QueryRow(ctx, query, restaurantID, tableID, startsAt, endsAt).Scan(&count)
	return count, err
}

func (r *Repository) CreateReservation(ctx context.Context, res Reservation) (Reservation, error) {
	const query = `
INSERT INTO reservations (id, restaurant_id, table_id, guest_name, guest_phone, party_size, status, starts_at, ends_at, note, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
RETURNING ` + reservationColumns
	return scanReservation(r.pool.QueryRow(ctx, query,
		res.ID, res.RestaurantID, res.TableID, res.GuestName, res.GuestPhone, res.PartySize,
		res.Status, res.StartsAt, res.EndsAt, res.Note))
}

// UpdateReservationStatus applies a transition conditionally on the current
// status, mirroring the order lifecycle.
func (r *Repository) UpdateReservationStatus(ctx context.Context, restaurantID, id uuid.UUID, from, to Status) (Reservation, error) {
	const query = `
UPDATE reservations
SET status = $4, updated_at = NOW()
WHERE id = $1 AND restaurant_id = $2 AND status = $3
RETURNING ` + reservationColumns
	return scanReservation(r.pool.QueryRow(ctx, query, id, restaurantID, from, to))
}

// Upcoming lists confirmed reservations starting inside the window, across
// all restaurants. Used by the reminder job.
func (r *Repository) Upcoming(ctx context.Context, from, to time.Time) ([]Reservation, error) {
	const query = `
SELECT ` + reservationColumns + `
FROM reservations
WHERE status = 'confirmed' AND starts_at >= $1 AND starts_at < $2
ORDER BY starts_at`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func scanTable(row pgx.Row) (DiningTable, error) {
	var t DiningTable
	err := row.Scan(&t.ID, &t.RestaurantID, &t.Name, &t.Seats, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return DiningTable{}, shared.ErrNotFound
	}
	if err != nil {
		return DiningTable{}, err
	}
	return t, nil
}

func scanReservation(row pgx.Row) (Reservation, error) {
	var res Reservation
	err := row.Scan(&res.ID, &res.RestaurantID, &res.TableID, &res.GuestName, &res.GuestPhone,
		&res.PartySize, &res.Status, &res.StartsAt, &res.EndsAt, &res.Note, &res.CreatedAt, &res.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Reservation{}, shared.ErrNotFound
	}
	if err != nil {
		return Reservation{}, err
	}
	return res, nil
}
