// Package staff manages staff members of a restaurant: invitations, roles
// and per-member permission overrides.
package staff

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mesa-hq/mesa/internal/permissions"
)

var (
	// ErrUnknownRole indicates a role outside the closed set.
	ErrUnknownRole = errors.New("staff: unknown role")
	// ErrOwnerRole indicates an attempt to grant the owner role, which is
	// derived from restaurant ownership and never assigned.
	ErrOwnerRole = errors.New("staff: owner role cannot be assigned")
	// ErrEmailTaken indicates a member with the same email already exists in
	// the restaurant.
	ErrEmailTaken = errors.New("staff: email already invited")
)

// Member is one staff record. UserID is nil until the invited person signs
// up with the matching email. Overrides are merged over the role preset when
// the member's tenant context is resolved.
type Member struct {
	ID           uuid.UUID                    `json:"id"`
	RestaurantID uuid.UUID                    `json:"restaurant_id"`
	UserID       *int64                       `json:"user_id,omitempty"`
	Email        string                       `json:"email"`
	FullName     string                       `json:"full_name"`
	Role         permissions.Role             `json:"role"`
	Overrides    permissions.StaffPermissions `json:"permission_overrides,omitempty"`
	IsActive     bool                         `json:"is_active"`
	InvitedAt    time.Time                    `json:"invited_at"`
	CreatedAt    time.Time                    `json:"created_at"`
	UpdatedAt    time.Time                    `json:"updated_at"`
}

// EffectivePermissions is the member's role preset with overrides applied.
func (m Member) EffectivePermissions() permissions.StaffPermissions {
	perms := permissions.Defaults(m.Role)
	if len(m.Overrides) > 0 {
		perms = permissions.Merge(perms, m.Overrides)
	}
	return perms
}
