// Package audithttp exposes the audit timeline over HTTP.
package audithttp

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mesa-hq/mesa/internal/audit"
	"github.com/mesa-hq/mesa/internal/platform/httpx"
	"github.com/mesa-hq/mesa/internal/tenant"
)

const maxDateRange = 90 * 24 * time.Hour

// Handler serves audit timeline requests.
type Handler struct {
	logger  *slog.Logger
	service *audit.Service
	now     func() time.Time
}

// NewHandler constructs the audit HTTP handler.
func NewHandler(logger *slog.Logger, service *audit.Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, now: time.Now}
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	filters, err := h.parseFilters(r, tc)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("audit timeline", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	tc, ok := tenant.FromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	filters, err := h.parseFilters(r, tc)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	rows, err := h.service.Export(r.Context(), filters)
	if err != nil {
		h.logger.Error("audit export", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	data, err := audit.WriteCSV(rows)
	if err != nil {
		h.logger.Error("audit csv", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-timeline.csv"`)
	_, _ = w.Write(data)
}

// parseFilters reads the timeline query parameters. An absent date range
// defaults to the last 7 days; a range wider than maxDateRange keeps the
// caller's `to` and pulls `from` forward to fit the window.
func (h *Handler) parseFilters(r *http.Request, tc tenant.Context) (audit.Filters, error) {
	q := r.URL.Query()
	filters := audit.Filters{
		RestaurantID: tc.RestaurantID,
		Action:       q.Get("action"),
		EntityType:   q.Get("entity_type"),
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return audit.Filters{}, err
		}
		filters.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return audit.Filters{}, err
		}
		filters.To = t
	}
	if filters.From.IsZero() && filters.To.IsZero() {
		now := h.now()
		filters.From = now.Add(-7 * 24 * time.Hour)
		filters.To = now
	}
	if !filters.From.IsZero() && !filters.To.IsZero() && filters.To.Sub(filters.From) > maxDateRange {
		filters.From = filters.To.Add(-maxDateRange)
	}
	if raw := q.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			filters.Page = page
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filters.PageSize = limit
		}
	}
	return filters, nil
}
