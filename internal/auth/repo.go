package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mesa-hq/mesa/internal/shared"
	"github.com/mesa-hq/mesa/internal/tenant"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, email, passwordHash string) (*User, error)
	CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
	FindActiveIdentity(ctx context.Context, userID int64) (tenant.Identity, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail fetches a user by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const query = `SELECT id, email, password_hash, is_active, created_at, updated_at FROM users WHERE lower(email) = lower($1)`
	var user User
	err := r.pool.QueryRow(ctx, query, strings.TrimSpace(email)).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new active account.
func (r *PGRepository) CreateUser(ctx context.Context, email, passwordHash string) (*User, error) {
	const query = `
INSERT INTO users (email, password_hash, is_active, created_at, updated_at)
VALUES ($1, $2, TRUE, NOW(), NOW())
RETURNING id, email, password_hash, is_active, created_at, updated_at`
	var user User
	err := r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email)), passwordHash).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &user, nil
}

// CreateSession persists a new login session in the database for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	const query = `
INSERT INTO sessions (id, user_id, created_at, expires_at, ip, ua)
VALUES ($1, $2, NOW(), $3, NULLIF($4, ''), NULLIF($5, ''))`
	_, err := r.pool.Exec(ctx, query, id, userID, expiresAt.UTC(), ip, ua)
	return err
}

// DeleteSession removes a session record from the database.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// SessionActive re-checks the session row against the database. Revoking the
// row invalidates the session even while its Redis copy is still live.
func (r *PGRepository) SessionActive(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1 AND expires_at > NOW())`
	var active bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&active); err != nil {
		return false, err
	}
	return active, nil
}

// FindActiveIdentity resolves the identity for tenant context construction.
// Inactive accounts are indistinguishable from absent ones.
func (r *PGRepository) FindActiveIdentity(ctx context.Context, userID int64) (tenant.Identity, error) {
	const query = `SELECT id, email FROM users WHERE id = $1 AND is_active`
	var identity tenant.Identity
	err := r.pool.QueryRow(ctx, query, userID).Scan(&identity.ID, &identity.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenant.Identity{}, shared.ErrNotFound
		}
		return tenant.Identity{}, err
	}
	return identity, nil
}

var _ Repository = (*PGRepository)(nil)
