package audithttp

import (
	"github.com/go-chi/chi/v5"

	"github.com/mesa-hq/mesa/internal/permissions"
	"github.com/mesa-hq/mesa/internal/tenant"
)

// MountRoutes registers audit routes. Callers mount this under an
// authenticated route group.
func (h *Handler) MountRoutes(r chi.Router, guard tenant.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireView(permissions.ModuleSettings))
		r.Get("/", h.handleTimeline)
		r.Get("/export.csv", h.handleExportCSV)
	})
}
