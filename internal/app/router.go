package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	audithttp "github.com/mesa-hq/mesa/internal/audit/http"
	auth "github.com/mesa-hq/mesa/internal/auth"
	"github.com/mesa-hq/mesa/internal/inventory"
	"github.com/mesa-hq/mesa/internal/menu"
	"github.com/mesa-hq/mesa/internal/observability"
	"github.com/mesa-hq/mesa/internal/orders"
	"github.com/mesa-hq/mesa/internal/promotions"
	"github.com/mesa-hq/mesa/internal/reservations"
	"github.com/mesa-hq/mesa/internal/restaurant"
	"github.com/mesa-hq/mesa/internal/shared"
	"github.com/mesa-hq/mesa/internal/staff"
	"github.com/mesa-hq/mesa/internal/tenant"
	"github.com/mesa-hq/mesa/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	TenantGuard    tenant.Middleware

	AuthHandler        *auth.Handler
	RestaurantHandler  *restaurant.Handler
	MenuHandler        *menu.Handler
	PublicMenuHandler  *menu.PublicHandler
	OrdersHandler      *orders.Handler
	InventoryHandler   *inventory.Handler
	ReservationHandler *reservations.Handler
	PromotionsHandler  *promotions.Handler
	StaffHandler       *staff.Handler
	AuditHandler       *audithttp.Handler
	JobHandler         *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Mesa defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Guest-facing menu lookup carries no session and no tenant guard.
	if params.PublicMenuHandler != nil {
		r.Route("/m", params.PublicMenuHandler.MountRoutes)
	}

	// Restaurant creation is the one authenticated write that runs without a
	// bound restaurant, so it sits outside the tenant guard.
	r.Route("/restaurants", func(r chi.Router) {
		params.RestaurantHandler.MountCreateRoute(r)
		r.Group(func(r chi.Router) {
			r.Use(params.TenantGuard.RequireTenant)
			params.RestaurantHandler.MountRoutes(r, params.TenantGuard)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(params.TenantGuard.RequireTenant)

		r.Route("/menu", func(r chi.Router) {
			params.MenuHandler.MountRoutes(r, params.TenantGuard)
		})
		r.Route("/orders", func(r chi.Router) {
			params.OrdersHandler.MountRoutes(r, params.TenantGuard)
		})
		r.Route("/inventory", func(r chi.Router) {
			params.InventoryHandler.MountRoutes(r, params.TenantGuard)
		})
		r.Route("/reservations", func(r chi.Router) {
			params.ReservationHandler.MountRoutes(r, params.TenantGuard)
		})
		r.Route("/promotions", func(r chi.Router) {
			params.PromotionsHandler.MountRoutes(r, params.TenantGuard)
		})
		r.Route("/staff", func(r chi.Router) {
			params.StaffHandler.MountRoutes(r, params.TenantGuard)
		})
		if params.AuditHandler != nil {
			r.Route("/audit", func(r chi.Router) {
				params.AuditHandler.MountRoutes(r, params.TenantGuard)
			})
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
