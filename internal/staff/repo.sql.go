package staff

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mesa-hq/mesa/internal/permissions"
	"github.com/mesa-hq/mesa/internal/shared"
)

const memberColumns = `id, restaurant_id, user_id, email, full_name, role, permission_overrides, is_active, invited_at, created_at, updated_at`

// Repository persists staff members in PostgreSQL. Overrides are stored as
// JSONB.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) List(ctx context.Context, restaurantID uuid.UUID) ([]Member, error) {
	const query = `
SELECT ` + memberColumns + `
FROM staff_members
WHERE restaurant_id = $1
ORDER BY full_name`
	rows, err := r.pool.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *Repository) Get(ctx context.Context, restaurantID, id uuid.UUID) (Member, error) {
	const query = `
SELECT ` + memberColumns + `
FROM staff_members
WHERE id = $1 AND restaurant_id = $2`
	return scanMember(r.pool.QueryRow(ctx, query, id, restaurantID))
}

func (r *Repository) Create(ctx context.Context, m Member) (Member, error) {
	overrides, err := marshalOverrides(m.Overrides)
	if err != nil {
		return Member{}, err
	}
	const query = `
INSERT INTO staff_members (id, restaurant_id, user_id, email, full_name, role, permission_overrides, is_active, invited_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, NOW(), NOW(), NOW())
RETURNING ` + memberColumns
	created, err := scanMember(r.pool.QueryRow(ctx, query,
		m.ID, m.RestaurantID, m.UserID, m.Email, m.FullName, string(m.Role), overrides))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Member{}, ErrEmailTaken
		}
		return Member{}, err
	}
	return created, nil
}

func (r *Repository) Update(ctx context.Context, m Member) (Member, error) {
	overrides, err := marshalOverrides(m.Overrides)
	if err != nil {
		return Member{}, err
	}
	const query = `
UPDATE staff_members
SET full_name = $3, role = $4, permission_overrides = $5, is_active = $6, updated_at = NOW()
WHERE id = $1 AND restaurant_id = $2
RETURNING ` + memberColumns
	return scanMember(r.pool.QueryRow(ctx, query,
		m.ID, m.RestaurantID, m.FullName, string(m.Role), overrides, m.IsActive))
}

func (r *Repository) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM staff_members WHERE id = $1 AND restaurant_id = $2`, id, restaurantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// LinkUser attaches a signed-up user to pending invitations matching their
// email. Called from the signup path.
func (r *Repository) LinkUser(ctx context.Context, email string, userID int64) error {
	const query = `
UPDATE staff_members
SET user_id = $2, updated_at = NOW()
WHERE email = $1 AND user_id IS NULL`
	_, err := r.pool.Exec(ctx, query, email, userID)
	return err
}

func marshalOverrides(overrides permissions.StaffPermissions) ([]byte, error) {
	if len(overrides) == 0 {
		return nil, nil
	}
	return json.Marshal(overrides)
}

func scanMember(row pgx.Row) (Member, error) {
	var (
		m             Member
		role          string
		overridesJSON []byte
	)
	err := row.Scan(&m.ID, &m.RestaurantID, &m.UserID, &m.Email, &m.FullName, &role,
		&overridesJSON, &m.IsActive, &m.InvitedAt, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Member{}, shared.ErrNotFound
	}
	if err != nil {
		return Member{}, err
	}
	m.Role = permissions.ParseRole(role)
	if len(overridesJSON) > 0 {
		var overrides permissions.StaffPermissions
		if err := json.Unmarshal(overridesJSON, &overrides); err == nil {
			m.Overrides = overrides
		}
	}
	return m, nil
}
