package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Filters narrows the timeline query. Zero values mean "no filter".
type Filters struct {
	RestaurantID uuid.UUID
	Action       string
	EntityType   string
	From         time.Time
	To           time.Time
	Page         int
	PageSize     int
}

// Row is one timeline row as read back from storage.
type Row struct {
	UserID     int64          `json:"user_id"`
	UserEmail  string         `json:"user_email"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// PagingInfo carries simple next/prev paging metadata.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
	PrevPage int  `json:"prev_page,omitempty"`
	NextPage int  `json:"next_page,omitempty"`
}

// Result wraps timeline rows with paging information.
type Result struct {
	Rows   []Row      `json:"rows"`
	Paging PagingInfo `json:"paging"`
}

// Repository is the read-side storage contract.
type Repository interface {
	TimelineWindow(ctx context.Context, filters Filters, limit, offset int) ([]Row, error)
	TimelineAll(ctx context.Context, filters Filters) ([]Row, error)
}

// Service coordinates audit timeline reads.
type Service struct {
	repo Repository
}

// NewService constructs a timeline service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline returns entries newest-first with paging. The window is read one
// row past the page size to detect a next page without a count query.
func (s *Service) Timeline(ctx context.Context, filters Filters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	rows, err := s.repo.TimelineWindow(ctx, filters, pageSize+1, offset)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > pageSize
	if hasNext {
		rows = rows[:pageSize]
	}

	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows, Paging: paging}, nil
}

// Export returns the full filtered timeline without paging.
func (s *Service) Export(ctx context.Context, filters Filters) ([]Row, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("audit: repository not configured")
	}
	return s.repo.TimelineAll(ctx, filters)
}
