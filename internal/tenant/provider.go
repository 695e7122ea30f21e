package tenant

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/mesa-hq/mesa/internal/permissions"
	"github.com/mesa-hq/mesa/internal/shared"
)

// Identity is the verified caller identity.
type Identity struct {
	ID    int64
	Email string
}

// Profile is the identity to tenant binding. DefaultRestaurantID is a hint,
// re-validated on every resolution; it is never trusted on its own.
type Profile struct {
	UserID              int64
	FullName            string
	Role                string
	DefaultRestaurantID *uuid.UUID
}

// Membership is the outcome of the ownership re-check against the
// source-of-truth restaurant and staff records.
type Membership struct {
	Role      permissions.Role
	Overrides permissions.StaffPermissions
}

// IdentityStore resolves active user accounts. Absence or an inactive account
// must return shared.ErrNotFound.
type IdentityStore interface {
	FindActiveIdentity(ctx context.Context, userID int64) (Identity, error)
}

// ProfileStore resolves profiles by user id. Absence must return
// shared.ErrNotFound.
type ProfileStore interface {
	FindProfile(ctx context.Context, userID int64) (Profile, error)
}

// MembershipStore re-verifies that the user actually belongs to the
// restaurant: either the restaurant row's owner field matches the user, or an
// active staff row exists for the pair. Absence of both must return
// shared.ErrNotFound.
type MembershipStore interface {
	ResolveMembership(ctx context.Context, restaurantID uuid.UUID, userID int64) (Membership, error)
}

// SessionVerifier confirms a session still exists server-side.
type SessionVerifier interface {
	Verify(ctx context.Context, sess *shared.Session) (bool, error)
}

// Provider composes identity resolution, profile lookup and the ownership
// re-check into a single tenant context. Pure read; no side effects.
type Provider struct {
	logger      *slog.Logger
	sessions    SessionVerifier
	identities  IdentityStore
	profiles    ProfileStore
	memberships MembershipStore
}

// NewProvider constructs a Provider.
func NewProvider(logger *slog.Logger, sessions SessionVerifier, identities IdentityStore, profiles ProfileStore, memberships MembershipStore) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		logger:      logger,
		sessions:    sessions,
		identities:  identities,
		profiles:    profiles,
		memberships: memberships,
	}
}

// Resolve builds the tenant context for the current request. The checks run
// in strict order and none is skipped: a stale or tampered profile binding
// must never grant access to a restaurant the user does not belong to.
func (p *Provider) Resolve(ctx context.Context) (Context, error) {
	sess := shared.SessionFromContext(ctx)
	if sess == nil || sess.User() == "" {
		return Context{}, ErrAuthRequired
	}

	// Server-side verification: the cookie value alone is never proof. The
	// session must still exist in the store and the account must be active.
	ok, err := p.sessions.Verify(ctx, sess)
	if err != nil {
		return Context{}, err
	}
	if !ok {
		return Context{}, ErrAuthRequired
	}

	userID, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		return Context{}, ErrAuthRequired
	}

	identity, err := p.identities.FindActiveIdentity(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Context{}, ErrAuthRequired
		}
		return Context{}, err
	}

	profile, err := p.profiles.FindProfile(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Context{}, ErrProfileNotFound
		}
		return Context{}, err
	}

	if profile.DefaultRestaurantID == nil {
		return Context{}, ErrNoRestaurant
	}
	restaurantID := *profile.DefaultRestaurantID

	membership, err := p.memberships.ResolveMembership(ctx, restaurantID, identity.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			p.logger.Warn("tenant ownership re-check failed",
				slog.Int64("user_id", identity.ID),
				slog.String("restaurant_id", restaurantID.String()))
			return Context{}, ErrUnauthorizedTenant
		}
		return Context{}, err
	}

	perms := permissions.Defaults(membership.Role)
	if len(membership.Overrides) > 0 {
		perms = permissions.Merge(perms, membership.Overrides)
	}

	return Context{
		UserID:       identity.ID,
		UserEmail:    identity.Email,
		RestaurantID: restaurantID,
		Role:         membership.Role,
		Permissions:  perms,
	}, nil
}
