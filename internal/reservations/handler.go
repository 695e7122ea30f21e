package reservations

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mesa-hq/mesa/internal/permissions"
	"github.com/mesa-hq/mesa/internal/platform/httpx"
	"github.com/mesa-hq/mesa/internal/shared"
	"github.com/mesa-hq/mesa/internal/tenant"
)

// Handler wires table and reservation HTTP endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers tenant-scoped reservation routes.
func (h *Handler) MountRoutes(r chi.Router, guard tenant.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireView(permissions.ModuleReservations))
		r.Get("/tables", h.handleListTables)
		r.Get("/", h.handleListReservations)
		r.Get("/{id}", h.handleGetReservation)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireManage(permissions.ModuleReservations))
		r.Post("/tables", h.handleCreateTable)
		r.Put("/tables/{id}", h.handleUpdateTable)
		r.Delete("/tables/{id}", h.handleDeleteTable)
		r.Post("/", h.handleCreateReservation)
		r.Post("/{id}/status", h.handleUpdateStatus)
	})
}

func (h *Handler) handleListTables(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	tables, err := h.service.ListTables(r.Context(), tc)
	if err != nil {
		h.logger.Error("list tables", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, tables)
}

func (h *Handler) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	var req CreateTableRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	created, err := h.service.CreateTable(r.Context(), tc, req)
	if err != nil {
		h.logger.Error("create table", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdateTable(w http.ResponseWriter, r *http.Request) {
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
	var req UpdateTableRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	updated, err := h.service.UpdateTable(r.Context(), tc, id, req)
	if err != nil {
		h.logger.Error("update table", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteTable(w http.ResponseWriter, r *http.Request) {
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
	if err := h.service.DeleteTable(r.Context(), tc, id); err != nil {
		h.logger.Error("delete table", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleListReservations(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	var from, to time.Time
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "from must be RFC3339")
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "to must be RFC3339")
			return
		}
		to = parsed
	}

	reservations, err := h.service.ListReservations(r.Context(), tc, from, to)
	if err != nil {
		h.logger.Error("list reservations", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, reservations)
}

func (h *Handler) handleGetReservation(w http.ResponseWriter, r *http.Request) {
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
	res, err := h.service.GetReservation(r.Context(), tc, id)
	if err != nil {
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	var req CreateReservationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	created, err := h.service.CreateReservation(r.Context(), tc, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidWindow):
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "reservation window end must be after start")
		case errors.Is(err, ErrTableUnavailable):
			httpx.Problem(w, http.StatusConflict, "Table Unavailable", "the table already has a reservation in this window")
		default:
			h.logger.Error("create reservation", slog.Any("error", err))
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

	updated, err := h.service.UpdateStatus(r.Context(), tc, id, req.Status)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			httpx.Problem(w, http.StatusConflict, "Invalid Transition", "the reservation cannot move to the requested status")
			return
		}
		h.logger.Error("update reservation status", slog.Any("error", err))
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
