package restaurant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mesa-hq/mesa/internal/permissions"
	"github.com/mesa-hq/mesa/internal/platform/db"
	"github.com/mesa-hq/mesa/internal/shared"
	"github.com/mesa-hq/mesa/internal/tenant"
)

// ErrSlugTaken indicates a duplicate restaurant slug.
var ErrSlugTaken = errors.New("restaurant: slug already taken")

// Repository persists restaurants and profiles in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const restaurantColumns = `id, owner_user_id, name, slug, currency, timezone, is_active, created_at, updated_at`

func scanRestaurant(row pgx.Row) (Restaurant, error) {
	var r Restaurant
	err := row.Scan(&r.ID, &r.OwnerUserID, &r.Name, &r.Slug, &r.Currency, &r.Timezone, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Restaurant{}, shared.ErrNotFound
		}
		return Restaurant{}, err
	}
	return r, nil
}

// Get fetches a restaurant owned context already validated by the tenant
// provider, so the id filter is sufficient here.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Restaurant, error) {
	query := fmt.Sprintf(`SELECT %s FROM restaurants WHERE id = $1`, restaurantColumns)
	return scanRestaurant(r.pool.QueryRow(ctx, query, id))
}

// GetBySlug fetches an active restaurant for the public menu surface.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (Restaurant, error) {
	query := fmt.Sprintf(`SELECT %s FROM restaurants WHERE slug = $1 AND is_active`, restaurantColumns)
	return scanRestaurant(r.pool.QueryRow(ctx, query, slug))
}

// Create inserts the restaurant and rebinds the owner's profile to it in one
// transaction so a half-created tenant never becomes the active binding.
func (r *Repository) Create(ctx context.Context, restaurant Restaurant) (Restaurant, error) {
	var created Restaurant
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`
INSERT INTO restaurants (id, owner_user_id, name, slug, currency, timezone, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW(), NOW())
RETURNING %s`, restaurantColumns)
		var err error
		created, err = scanRestaurant(tx.QueryRow(ctx, query,
			restaurant.ID, restaurant.OwnerUserID, restaurant.Name, restaurant.Slug,
			restaurant.Currency, restaurant.Timezone))
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return ErrSlugTaken
			}
			return err
		}
		_, err = tx.Exec(ctx, `
UPDATE profiles SET default_restaurant_id = $1, role = $2, updated_at = NOW() WHERE user_id = $3`,
			created.ID, string(permissions.RoleOwner), restaurant.OwnerUserID)
		return err
	})
	if err != nil {
		return Restaurant{}, err
	}
	return created, nil
}

// UpdateSettings mutates tenant settings. The restaurant_id predicate is
// part of the statement itself, not only of the preceding ownership check.
func (r *Repository) UpdateSettings(ctx context.Context, id uuid.UUID, name, currency, timezone string) (Restaurant, error) {
	query := fmt.Sprintf(`
UPDATE restaurants
SET name = $2, currency = $3, timezone = $4, updated_at = NOW()
WHERE id = $1 AND is_active
RETURNING %s`, restaurantColumns)
	return scanRestaurant(r.pool.QueryRow(ctx, query, id, name, currency, timezone))
}

// ListActiveSlugs returns the slugs of every active restaurant. Used by the
// public menu cache warmup job.
func (r *Repository) ListActiveSlugs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT slug FROM restaurants WHERE is_active ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

// CreateProfile inserts the identity to tenant binding row with no
// restaurant bound yet.
func (r *Repository) CreateProfile(ctx context.Context, userID int64, fullName string) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO profiles (user_id, full_name, role, default_restaurant_id, created_at, updated_at)
VALUES ($1, $2, $3, NULL, NOW(), NOW())`,
		userID, fullName, string(permissions.RoleStaff))
	return err
}

// FindProfile implements tenant.ProfileStore.
func (r *Repository) FindProfile(ctx context.Context, userID int64) (tenant.Profile, error) {
	const query = `SELECT user_id, full_name, role, default_restaurant_id FROM profiles WHERE user_id = $1`
	var p tenant.Profile
	err := r.pool.QueryRow(ctx, query, userID).Scan(&p.UserID, &p.FullName, &p.Role, &p.DefaultRestaurantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenant.Profile{}, shared.ErrNotFound
		}
		return tenant.Profile{}, err
	}
	return p, nil
}

// ResolveMembership implements tenant.MembershipStore. Ownership is asserted
// against the restaurant row itself; failing that, an active staff row for
// the pair. The profile binding alone is never sufficient.
func (r *Repository) ResolveMembership(ctx context.Context, restaurantID uuid.UUID, userID int64) (tenant.Membership, error) {
	const ownerQuery = `SELECT 1 FROM restaurants WHERE id = $1 AND owner_user_id = $2 AND is_active`
	var one int
	err := r.pool.QueryRow(ctx, ownerQuery, restaurantID, userID).Scan(&one)
	if err == nil {
		return tenant.Membership{Role: permissions.RoleOwner}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return tenant.Membership{}, err
	}

	const staffQuery = `
SELECT role, permission_overrides
FROM staff_members
WHERE restaurant_id = $1 AND user_id = $2 AND is_active`
	var role string
	var overridesJSON []byte
	err = r.pool.QueryRow(ctx, staffQuery, restaurantID, userID).Scan(&role, &overridesJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenant.Membership{}, shared.ErrNotFound
		}
		return tenant.Membership{}, err
	}

	membership := tenant.Membership{Role: permissions.ParseRole(role)}
	if len(overridesJSON) > 0 {
		var overrides permissions.StaffPermissions
		if err := json.Unmarshal(overridesJSON, &overrides); err == nil {
			membership.Overrides = overrides
		}
	}
	return membership, nil
}

var (
	_ tenant.ProfileStore    = (*Repository)(nil)
	_ tenant.MembershipStore = (*Repository)(nil)
)
