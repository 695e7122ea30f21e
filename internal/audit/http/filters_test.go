package audithttp

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mesa-hq/mesa/internal/tenant"
)

func TestParseFiltersDateWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	h := &Handler{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    func() time.Time { return now },
	}
	tc := tenant.Context{RestaurantID: uuid.New()}

	// No range given: last 7 days.
	r := httptest.NewRequest(http.MethodGet, "/audit", nil)
	filters, err := h.parseFilters(r, tc)
	require.NoError(t, err)
	require.True(t, filters.To.Equal(now))
	require.True(t, filters.From.Equal(now.Add(-7*24*time.Hour)))

	// Oversized range: `to` is kept, `from` is pulled forward to the cap.
	from := now.Add(-200 * 24 * time.Hour)
	query := url.Values{
		"from": {from.Format(time.RFC3339)},
		"to":   {now.Format(time.RFC3339)},
	}
	r = httptest.NewRequest(http.MethodGet, "/audit?"+query.Encode(), nil)
	filters, err = h.parseFilters(r, tc)
	require.NoError(t, err)
	require.True(t, filters.To.Equal(now))
	require.True(t, filters.From.Equal(now.Add(-maxDateRange)))
}
