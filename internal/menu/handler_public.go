package menu

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mesa-hq/mesa/internal/platform/httpx"
	"github.com/mesa-hq/mesa/internal/shared"
)

// PublicHandler serves the unauthenticated menu surface.
type PublicHandler struct {
	logger  *slog.Logger
	service *PublicService
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(logger *slog.Logger, service *PublicService) *PublicHandler {
	return &PublicHandler{logger: logger, service: service}
}

// MountRoutes registers the public menu route. No session or tenant guard.
func (h *PublicHandler) MountRoutes(r chi.Router) {
	r.Get("/{slug}", h.handleMenu)
}

func (h *PublicHandler) handleMenu(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	menu, err := h.service.MenuBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("public menu", slog.String("slug", slug), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, menu)
}
