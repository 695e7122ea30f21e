package restaurant

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mesa-hq/mesa/internal/permissions"
	"github.com/mesa-hq/mesa/internal/platform/httpx"
	"github.com/mesa-hq/mesa/internal/shared"
	"github.com/mesa-hq/mesa/internal/tenant"
)

// Handler wires restaurant HTTP endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	identity  tenant.IdentityStore
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, identity tenant.IdentityStore) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		identity:  identity,
		validator: validator.New(),
	}
}

// MountCreateRoute registers restaurant creation. It sits outside the tenant
// guard: callers without a bound restaurant use it to create one.
func (h *Handler) MountCreateRoute(r chi.Router) {
	r.Post("/", h.handleCreate)
}

// MountRoutes registers tenant-scoped restaurant routes.
func (h *Handler) MountRoutes(r chi.Router, guard tenant.Middleware) {
	r.Get("/", h.handleCurrent)
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireManage(permissions.ModuleSettings))
		r.Put("/settings", h.handleUpdateSettings)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	userID, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	identity, err := h.identity.FindActiveIdentity(r.Context(), userID)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	var req CreateRestaurantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), identity.ID, identity.Email, req)
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			httpx.Problem(w, http.StatusConflict, "Duplicate", "a restaurant with this name already exists")
			return
		}
		h.logger.Error("create restaurant", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	current, err := h.service.Current(r.Context(), tc)
	if err != nil {
		h.logger.Error("current restaurant", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, current)
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	var req UpdateSettingsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	updated, err := h.service.UpdateSettings(r.Context(), tc, req)
	if err != nil {
		h.logger.Error("update settings", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func mapStoreError(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return httpx.ErrNotFound
	}
	return err
}
