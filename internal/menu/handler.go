package menu

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

// Handler wires the authenticated menu management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers tenant-scoped menu routes. Reads require menu view,
// mutations require menu manage.
func (h *Handler) MountRoutes(r chi.Router, guard tenant.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireView(permissions.ModuleMenu))
		r.Get("/categories", h.handleListCategories)
		r.Get("/items", h.handleListItems)
		r.Get("/items/{id}", h.handleGetItem)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireManage(permissions.ModuleMenu))
		r.Post("/categories", h.handleCreateCategory)
		r.Put("/categories/{id}", h.handleUpdateCategory)
		r.Delete("/categories/{id}", h.handleDeleteCategory)
		r.Post("/items", h.handleCreateItem)
		r.Put("/items/{id}", h.handleUpdateItem)
		r.Delete("/items/{id}", h.handleDeleteItem)
	})
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	categories, err := h.service.ListCategories(r.Context(), tc)
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, categories)
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	var req CreateCategoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	created, err := h.service.CreateCategory(r.Context(), tc, req)
	if err != nil {
		if errors.Is(err, ErrDuplicateCategory) {
			httpx.Problem(w, http.StatusConflict, "Duplicate", "a category with this name already exists")
			return
		}
		h.logger.Error("create category", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
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
	var req UpdateCategoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	updated, err := h.service.UpdateCategory(r.Context(), tc, id, req)
	if err != nil {
		h.logger.Error("update category", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
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
	if err := h.service.DeleteCategory(r.Context(), tc, id); err != nil {
		h.logger.Error("delete category", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	items, err := h.service.ListItems(r.Context(), tc)
	if err != nil {
		h.logger.Error("list items", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
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
	item, err := h.service.GetItem(r.Context(), tc, id)
	if err != nil {
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	var req CreateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	created, err := h.service.CreateItem(r.Context(), tc, req)
	if err != nil {
		h.logger.Error("create item", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
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
	var req UpdateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	updated, err := h.service.UpdateItem(r.Context(), tc, id, req)
	if err != nil {
		h.logger.Error("update item", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
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
	if err := h.service.DeleteItem(r.Context(), tc, id); err != nil {
		h.logger.Error("delete item", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.NoContent(w)
}

func mapStoreError(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return httpx.ErrNotFound
	}
	return err
}
