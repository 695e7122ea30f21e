package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/mesa-hq/mesa/internal/audit"
	"github.com/mesa-hq/mesa/internal/tenant"
)

// Store is the persistence contract used by the service.
type Store interface {
	List(ctx context.Context, restaurantID uuid.UUID) ([]StockItem, error)
	Get(ctx context.Context, restaurantID, id uuid.UUID) (StockItem, error)
	Create(ctx context.Context, item StockItem) (StockItem, error)
	Update(ctx context.Context, item StockItem) (StockItem, error)
	Delete(ctx context.Context, restaurantID, id uuid.UUID) error
	Increment(ctx context.Context, restaurantID, id uuid.UUID, amount int64) (StockItem, error)
	Decrement(ctx context.Context, restaurantID, id uuid.UUID, amount int64) (StockItem, error)
}

// Service orchestrates stock item operations.
type Service struct {
	store Store
	audit audit.Recorder
}

// NewService constructs a Service.
func NewService(store Store, recorder audit.Recorder) *Service {
	return &Service{store: store, audit: recorder}
}

func (s *Service) List(ctx context.Context, tc tenant.Context) ([]StockItem, error) {
	return s.store.List(ctx, tc.RestaurantID)
}

func (s *Service) Get(ctx context.Context, tc tenant.Context, id uuid.UUID) (StockItem, error) {
	return s.store.Get(ctx, tc.RestaurantID, id)
}

func (s *Service) Create(ctx context.Context, tc tenant.Context, req CreateStockItemRequest) (StockItem, error) {
	created, err := s.store.Create(ctx, StockItem{
		ID:           uuid.New(),
		RestaurantID: tc.RestaurantID,
		Name:         strings.TrimSpace(req.Name),
		Unit:         strings.TrimSpace(req.Unit),
		Quantity:     req.Quantity,
		ReorderLevel: req.ReorderLevel,
	})
	if err != nil {
		return StockItem{}, err
	}
	s.recordAudit(ctx, tc, audit.ActionCreate, created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, tc tenant.Context, id uuid.UUID, req UpdateStockItemRequest) (StockItem, error) {
	current, err := s.store.Get(ctx, tc.RestaurantID, id)
	if err != nil {
		return StockItem{}, err
	}
	if req.Name != nil {
		current.Name = strings.TrimSpace(*req.Name)
	}
	if req.Unit != nil {
		current.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.ReorderLevel != nil {
		current.ReorderLevel = *req.ReorderLevel
	}

	updated, err := s.store.Update(ctx, current)
	if err != nil {
		return StockItem{}, err
	}
	s.recordAudit(ctx, tc, audit.ActionUpdate, id)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, tc tenant.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, tc.RestaurantID, id); err != nil {
		return err
	}
	s.recordAudit(ctx, tc, audit.ActionDelete, id)
	return nil
}

// Adjust moves a stock quantity by a signed delta. Decrements that would
// underflow are rejected whole; there is no partial application.
func (s *Service) Adjust(ctx context.Context, tc tenant.Context, id uuid.UUID, req AdjustStockRequest) (StockItem, error) {
	var (
		item StockItem
		err  error
	)
	if req.Delta >= 0 {
		item, err = s.store.Increment(ctx, tc.RestaurantID, id, req.Delta)
	} else {
		item, err = s.store.Decrement(ctx, tc.RestaurantID, id, -req.Delta)
	}
	if err != nil {
		return StockItem{}, err
	}
	s.recordAudit(ctx, tc, audit.ActionAdjust, id)
	return item, nil
}

// LowStock lists items at or below their reorder threshold. Used by the
// daily low-stock report job as well as the dashboard.
func (s *Service) LowStock(ctx context.Context, restaurantID uuid.UUID) ([]StockItem, error) {
	items, err := s.store.List(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	var low []StockItem
	for _, item := range items {
		if item.BelowReorder() {
			low = append(low, item)
		}
	}
	return low, nil
}

func (s *Service) recordAudit(ctx context.Context, tc tenant.Context, action audit.Action, id uuid.UUID) {
	s.audit.Record(ctx, audit.Entry{
		RestaurantID: tc.RestaurantID,
		UserID:       tc.UserID,
		UserEmail:    tc.UserEmail,
		Action:       action,
		EntityType:   audit.EntityStockItem,
		EntityID:     id.String(),
	})
}
