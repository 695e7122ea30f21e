package promotions

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

// Handler wires promo code and gift card HTTP endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers tenant-scoped promotion routes.
func (h *Handler) MountRoutes(r chi.Router, guard tenant.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireView(permissions.ModulePromotions))
		r.Get("/codes", h.handleListPromos)
		r.Get("/gift-cards", h.handleListGiftCards)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireManage(permissions.ModulePromotions))
		r.Post("/codes", h.handleCreatePromo)
		r.Put("/codes/{id}", h.handleUpdatePromo)
		r.Delete("/codes/{id}", h.handleDeletePromo)
		r.Post("/gift-cards", h.handleCreateGiftCard)
		r.Post("/gift-cards/redeem", h.handleRedeemGiftCard)
	})
}

func (h *Handler) handleListPromos(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	promos, err := h.service.ListPromos(r.Context(), tc)
	if err != nil {
		h.logger.Error("list promo codes", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, promos)
}

func (h *Handler) handleCreatePromo(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	var req CreatePromoRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	created, err := h.service.CreatePromo(r.Context(), tc, req)
	if err != nil {
		if errors.Is(err, ErrCodeTaken) {
			httpx.Problem(w, http.StatusConflict, "Duplicate", "a promotion with this code already exists")
			return
		}
		h.logger.Error("create promo code", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdatePromo(w http.ResponseWriter, r *http.Request) {
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
	var req UpdatePromoRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	updated, err := h.service.UpdatePromo(r.Context(), tc, id, req)
	if err != nil {
		h.logger.Error("update promo code", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeletePromo(w http.ResponseWriter, r *http.Request) {
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
	if err := h.service.DeletePromo(r.Context(), tc, id); err != nil {
		h.logger.Error("delete promo code", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleListGiftCards(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	cards, err := h.service.ListGiftCards(r.Context(), tc)
	if err != nil {
		h.logger.Error("list gift cards", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, cards)
}

func (h *Handler) handleCreateGiftCard(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	var req CreateGiftCardRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	created, err := h.service.CreateGiftCard(r.Context(), tc, req)
	if err != nil {
		if errors.Is(err, ErrCodeTaken) {
			httpx.Problem(w, http.StatusConflict, "Duplicate", "a gift card with this code already exists")
			return
		}
		h.logger.Error("create gift card", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleRedeemGiftCard(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	var req RedeemGiftCardRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	card, err := h.service.RedeemGiftCard(r.Context(), tc, req)
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			httpx.Problem(w, http.StatusConflict, "Insufficient Balance", "the gift card cannot cover the requested amount")
			return
		}
		h.logger.Error("redeem gift card", slog.Any("error", err))
		httpx.RespondError(w, mapStoreError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, card)
}

func mapStoreError(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return httpx.ErrNotFound
	}
	return err
}
