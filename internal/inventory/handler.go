package inventory

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mesa-hq/mesa/internal/permissions"
	"github.com/mesa-hq/mesa/internal/platform/httpx"
	"github.com/mesa-hq/mesa/internal/shared"
	"github.com/mesa-hq/mesa/internal/tenant"
)

// Handler wires stock item HTTP endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers tenant-scoped inventory routes.
func (h *Handler) MountRoutes(r chi.Router, guard tenant.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireView(permissions.ModuleInventory))
		r.Get("/", h.handleList)
		r.Get("/low", h.handleLowStock)
		r.Get("/{id}", h.handleGet)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireManage(permissions.ModuleInventory))
		r.Post("/", h.handleCreate)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
		r.Post("/{id}/adjust", h.handleAdjust)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	items, err := h.service.List(r.Context(), tc)
	if err != nil {
		h.logger.Error("list stock items", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	items, err := h.service.LowStock(r.Context(), tc.RestaurantID)
	if err != nil {
		h.logger.Error("low stock", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	item, err := h.service.Get(r.Context(), tc, id)
	if err != nil {
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	var req CreateStockItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), tc, req)
	if err != nil {
		h.logger.Error("create stock item", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	var req UpdateStockItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	updated, err := h.service.Update(r.Context(), tc, id, req)
	if err != nil {
		h.logger.Error("update stock item", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	if err := h.service.Delete(r.Context(), tc, id); err != nil {
		h.logger.Error("delete stock item", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleAdjust(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	var req AdjustStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	item, err := h.service.Adjust(r.Context(), tc, id, req)
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			httpx.Problem(w, http.StatusConflict, "Insufficient Stock", "quantity on hand is lower than the requested decrement")
			return
		}
		h.logger.Error("adjust stock item", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func mapStoreError(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return httpx.ErrNotFound
	}
	return err
}
