package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type stubRepo struct {
	rows       []Row
	lastLimit  int
	lastOffset int
	lastFilter Filters
}

func (s *stubRepo) TimelineWindow(ctx context.Context, filters Filters, limit, offset int) ([]Row, error) {
	s.lastFilter = filters
	s.lastLimit = limit
	s.lastOffset = offset
	if limit < len(s.rows) {
		return s.rows[:limit], nil
	}
	return s.rows, nil
}

func (s *stubRepo) TimelineAll(ctx context.Context, filters Filters) ([]Row, error) {
	s.lastFilter = filters
	return s.rows, nil
}

func makeRows(n int) []Row {
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, Row{
			UserID:     int64(i + 1),
			UserEmail:  "user@example.com",
			Action:     string(ActionUpdate),
			EntityType: string(EntityMenuItem),
			CreatedAt:  time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC).Add(-time.Duration(i) * time.Hour),
		})
	}
	return rows
}

func TestTimelinePaging(t *testing.T) {
	repo := &stubRepo{rows: makeRows(3)}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), Filters{
		RestaurantID: uuid.New(),
		Page:         1,
		PageSize:     2,
	})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
	if !result.Paging.HasNext {
		t.Fatalf("expected hasNext true")
	}
	if repo.lastLimit != 3 {
		t.Fatalf("expected limit 3, got %d", repo.lastLimit)
	}
	if repo.lastOffset != 0 {
		t.Fatalf("expected offset 0, got %d", repo.lastOffset)
	}
}

func TestTimelineClampsPageSize(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	if _, err := svc.Timeline(context.Background(), Filters{PageSize: 500}); err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if repo.lastLimit != 51 {
		t.Fatalf("expected clamped limit 51, got %d", repo.lastLimit)
	}
}

func TestTimelineSecondPageOffset(t *testing.T) {
	repo := &stubRepo{rows: makeRows(1)}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), Filters{Page: 3, PageSize: 10})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if repo.lastOffset != 20 {
		t.Fatalf("expected offset 20, got %d", repo.lastOffset)
	}
	if result.Paging.PrevPage != 2 {
		t.Fatalf("expected prevPage 2, got %d", result.Paging.PrevPage)
	}
	if result.Paging.HasNext {
		t.Fatalf("expected hasNext false")
	}
}
