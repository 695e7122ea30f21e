package tenant

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mesa-hq/mesa/internal/permissions"
	"github.com/mesa-hq/mesa/internal/platform/httpx"
)

// Middleware wires tenant resolution and permission guards for HTTP handlers.
type Middleware struct {
	Provider *Provider
	Logger   *slog.Logger
}

// RequireTenant resolves the tenant context and aborts the request when
// resolution fails. Handlers downstream read the context via FromContext.
func (m Middleware) RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc, err := m.Provider.Resolve(r.Context())
		if err != nil {
			m.respond(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), tc)))
	})
}

// RequireView gates a route group on the module's view bit.
func (m Middleware) RequireView(module permissions.Module) func(http.Handler) http.Handler {
	return m.requireBit(module, false)
}

// RequireManage gates a route group on the module's manage bit.
func (m Middleware) RequireManage(module permissions.Module) func(http.Handler) http.Handler {
	return m.requireBit(module, true)
}

func (m Middleware) requireBit(module permissions.Module, manage bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc, ok := FromContext(r.Context())
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			allowed := tc.CanView(module)
			if manage {
				allowed = tc.CanManage(module)
			}
			if !allowed {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// respond translates resolution failures at the edge. Auth failures and
// failed ownership re-checks collapse into one unauthorized shape so account
// state is not leaked; the missing-restaurant case is a flow hint, not a
// security failure.
func (m Middleware) respond(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoRestaurant):
		httpx.Problem(w, http.StatusConflict, "No Restaurant", "no restaurant is bound to this account; create one first")
	case errors.Is(err, ErrAuthRequired), errors.Is(err, ErrProfileNotFound), errors.Is(err, ErrUnauthorizedTenant):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
	default:
		if m.Logger != nil {
			m.Logger.Error("tenant resolution", slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
