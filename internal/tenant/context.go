// Package tenant implements the request-scoped tenant context and the
// ownership checks every protected operation depends on.
package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mesa-hq/mesa/internal/permissions"
)

// Context is the validated, request-scoped binding of an identity to its
// active restaurant. It is constructed fresh per request and never cached
// or shared across requests.
type Context struct {
	UserID       int64
	UserEmail    string
	RestaurantID uuid.UUID
	Role         permissions.Role
	Permissions  permissions.StaffPermissions
}

// CanView reports whether the context may view the given module.
func (c Context) CanView(module permissions.Module) bool {
	return c.Permissions[module].View
}

// CanManage reports whether the context may manage the given module.
func (c Context) CanManage(module permissions.Module) bool {
	return c.Permissions[module].Manage
}

// Resolution failures, ordered by the step that produces them.
var (
	// ErrAuthRequired means no verified identity is present.
	ErrAuthRequired = errors.New("tenant: authentication required")
	// ErrProfileNotFound means the identity has no profile row.
	ErrProfileNotFound = errors.New("tenant: profile not found")
	// ErrNoRestaurant means the profile has no bound restaurant.
	ErrNoRestaurant = errors.New("tenant: no restaurant bound")
	// ErrUnauthorizedTenant means the ownership re-check failed.
	ErrUnauthorizedTenant = errors.New("tenant: unauthorized tenant")
)

type tenantContextKey struct{}

// WithContext stores the tenant context in ctx.
func WithContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, tenantContextKey{}, tc)
}

// FromContext extracts the tenant context. The second return is false when no
// protected middleware ran for this request.
func FromContext(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(tenantContextKey{}).(Context)
	return tc, ok
}
