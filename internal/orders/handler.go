package orders

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mesa-hq/mesa/internal/inventory"
	"github.com/mesa-hq/mesa/internal/permissions"
	"github.com/mesa-hq/mesa/internal/platform/httpx"
	"github.com/mesa-hq/mesa/internal/promotions"
	"github.com/mesa-hq/mesa/internal/shared"
	"github.com/mesa-hq/mesa/internal/tenant"
)

const idempotencyHeader = "Idempotency-Key"

// Handler wires order HTTP endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers tenant-scoped order routes.
func (h *Handler) MountRoutes(r chi.Router, guard tenant.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireView(permissions.ModuleOrders))
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireManage(permissions.ModuleOrders))
		r.Post("/", h.handleCreate)
		r.Post("/{id}/status", h.handleUpdateStatus)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	filters := ListFilters{Status: Status(r.URL.Query().Get("status"))}
	if filters.Status != "" && !ValidStatus(filters.Status) {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown status filter")
		return
	}
	filters.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	filters.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	orders, err := h.service.List(r.Context(), tc, filters)
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
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
	order, err := h.service.Get(r.Context(), tc, id)
	if err != nil {
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	var req PlaceOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	created, err := h.service.Create(r.Context(), tc, req, r.Header.Get(idempotencyHeader))
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrIdempotencyConflict):
			httpx.Problem(w, http.StatusConflict, "Duplicate Request", "this order was already submitted")
		case errors.Is(err, ErrItemUnavailable):
			httpx.Problem(w, http.StatusConflict, "Item Unavailable", "an ordered menu item is not available")
		default:
			h.logger.Error("create order", slog.Any("error", err))
			httpx.RespondError(w, mapStoreError(err))
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
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
	var req UpdateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), tc, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTransition):
			httpx.Problem(w, http.StatusConflict, "Invalid Transition", "the order cannot move to the requested status")
		case errors.Is(err, inventory.ErrInsufficientStock):
			httpx.Problem(w, http.StatusConflict, "Insufficient Stock", "not enough stock to place this order")
		case errors.Is(err, promotions.ErrPromoExhausted),
			errors.Is(err, promotions.ErrPromoExpired),
			errors.Is(err, promotions.ErrPromoInactive):
			httpx.Problem(w, http.StatusConflict, "Promo Unavailable", "the promo code cannot be applied")
		default:
			h.logger.Error("update order status", slog.Any("error", err))
			httpx.RespondError(w, mapStoreError(err))
		}
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
