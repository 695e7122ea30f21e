package menu

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/mesa-hq/mesa/internal/audit"
	"github.com/mesa-hq/mesa/internal/tenant"
)

// ErrDuplicateCategory indicates a category whose name already exists for the
// tenant, compared case-folded.
var ErrDuplicateCategory = errors.New("menu: category already exists")

// Store is the persistence contract used by the service.
type Store interface {
	ListCategories(ctx context.Context, restaurantID uuid.UUID) ([]Category, error)
	GetCategory(ctx context.Context, restaurantID, id uuid.UUID) (Category, error)
	CreateCategory(ctx context.Context, c Category) (Category, error)
	UpdateCategory(ctx context.Context, restaurantID, id uuid.UUID, name string, sortOrder int) (Category, error)
	DeleteCategory(ctx context.Context, restaurantID, id uuid.UUID) error
	ListItems(ctx context.Context, restaurantID uuid.UUID) ([]Item, error)
	GetItem(ctx context.Context, restaurantID, id uuid.UUID) (Item, error)
	CreateItem(ctx context.Context, item Item) (Item, error)
	UpdateItem(ctx context.Context, item Item) (Item, error)
	DeleteItem(ctx context.Context, restaurantID, id uuid.UUID) error
}

// Invalidator drops cached public menus after a mutation. May be nil.
type Invalidator interface {
	Invalidate(ctx context.Context, restaurantID uuid.UUID)
}

// Service orchestrates menu operations for the authenticated dashboard.
type Service struct {
	store Store
	audit audit.Recorder
	cache Invalidator
	fold  cases.Caser
}

// NewService constructs a Service.
func NewService(store Store, recorder audit.Recorder, cache Invalidator) *Service {
	return &Service{store: store, audit: recorder, cache: cache, fold: cases.Fold()}
}

func (s *Service) ListCategories(ctx context.Context, tc tenant.Context) ([]Category, error) {
	return s.store.ListCategories(ctx, tc.RestaurantID)
}

func (s *Service) CreateCategory(ctx context.Context, tc tenant.Context, req CreateCategoryRequest) (Category, error) {
	name := strings.TrimSpace(req.Name)
	existing, err := s.store.ListCategories(ctx, tc.RestaurantID)
	if err != nil {
		return Category{}, err
	}
	folded := s.fold.String(name)
	for _, c := range existing {
		if s.fold.String(c.Name) == folded {
			return Category{}, ErrDuplicateCategory
		}
	}

	created, err := s.store.CreateCategory(ctx, Category{
		ID:           uuid.New(),
		RestaurantID: tc.RestaurantID,
		Name:         name,
		SortOrder:    req.SortOrder,
	})
	if err != nil {
		return Category{}, err
	}
	s.recordAudit(ctx, tc, audit.ActionCreate, audit.EntityCategory, created.ID)
	s.invalidate(ctx, tc.RestaurantID)
	return created, nil
}

func (s *Service) UpdateCategory(ctx context.Context, tc tenant.Context, id uuid.UUID, req UpdateCategoryRequest) (Category, error) {
	current, err := s.store.GetCategory(ctx, tc.RestaurantID, id)
	if err != nil {
		return Category{}, err
	}
	name := current.Name
	sortOrder := current.SortOrder
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
	}
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}

	updated, err := s.store.UpdateCategory(ctx, tc.RestaurantID, id, name, sortOrder)
	if err != nil {
		return Category{}, err
	}
	s.recordAudit(ctx, tc, audit.ActionUpdate, audit.EntityCategory, id)
	s.invalidate(ctx, tc.RestaurantID)
	return updated, nil
}

func (s *Service) DeleteCategory(ctx context.Context, tc tenant.Context, id uuid.UUID) error {
	if err := s.store.DeleteCategory(ctx, tc.RestaurantID, id); err != nil {
		return err
	}
	s.recordAudit(ctx, tc, audit.ActionDelete, audit.EntityCategory, id)
	s.invalidate(ctx, tc.RestaurantID)
	return nil
}

func (s *Service) ListItems(ctx context.Context, tc tenant.Context) ([]Item, error) {
	return s.store.ListItems(ctx, tc.RestaurantID)
}

func (s *Service) GetItem(ctx context.Context, tc tenant.Context, id uuid.UUID) (Item, error) {
	return s.store.GetItem(ctx, tc.RestaurantID, id)
}

func (s *Service) CreateItem(ctx context.Context, tc tenant.Context, req CreateItemRequest) (Item, error) {
	if req.CategoryID != nil {
		// The category id comes from the client; confirm it belongs to the
		// caller's restaurant before attaching the item to it.
		if _, err := s.store.GetCategory(ctx, tc.RestaurantID, *req.CategoryID); err != nil {
			return Item{}, err
		}
	}
	created, err := s.store.CreateItem(ctx, Item{
		ID:           uuid.New(),
		RestaurantID: tc.RestaurantID,
		CategoryID:   req.CategoryID,
		StockItemID:  req.StockItemID,
		Name:         strings.TrimSpace(req.Name),
		Description:  strings.TrimSpace(req.Description),
		PriceCents:   req.PriceCents,
		IsAvailable:  req.IsAvailable,
		SortOrder:    req.SortOrder,
	})
	if err != nil {
		return Item{}, err
	}
	s.recordAudit(ctx, tc, audit.ActionCreate, audit.EntityMenuItem, created.ID)
	s.invalidate(ctx, tc.RestaurantID)
	return created, nil
}

func (s *Service) UpdateItem(ctx context.Context, tc tenant.Context, id uuid.UUID, req UpdateItemRequest) (Item, error) {
	current, err := s.store.GetItem(ctx, tc.RestaurantID, id)
	if err != nil {
		return Item{}, err
	}
	if req.CategoryID != nil {
		if _, err := s.store.GetCategory(ctx, tc.RestaurantID, *req.CategoryID); err != nil {
			return Item{}, err
		}
		current.CategoryID = req.CategoryID
	}
	if req.StockItemID != nil {
		current.StockItemID = req.StockItemID
	}
	if req.Name != nil {
		current.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		current.Description = strings.TrimSpace(*req.Description)
	}
	if req.PriceCents != nil {
		current.PriceCents = *req.PriceCents
	}
	if req.IsAvailable != nil {
		current.IsAvailable = *req.IsAvailable
	}
	if req.SortOrder != nil {
		current.SortOrder = *req.SortOrder
	}

	updated, err := s.store.UpdateItem(ctx, current)
	if err != nil {
		return Item{}, err
	}
	s.recordAudit(ctx, tc, audit.ActionUpdate, audit.EntityMenuItem, id)
	s.invalidate(ctx, tc.RestaurantID)
	return updated, nil
}

func (s *Service) DeleteItem(ctx context.Context, tc tenant.Context, id uuid.UUID) error {
	if err := s.store.DeleteItem(ctx, tc.RestaurantID, id); err != nil {
		return err
	}
	s.recordAudit(ctx, tc, audit.ActionDelete, audit.EntityMenuItem, id)
	s.invalidate(ctx, tc.RestaurantID)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, tc tenant.Context, action audit.Action, entity audit.Entity, id uuid.UUID) {
	s.audit.Record(ctx, audit.Entry{
		RestaurantID: tc.RestaurantID,
		UserID:       tc.UserID,
		UserEmail:    tc.UserEmail,
		Action:       action,
		EntityType:   entity,
		EntityID:     id.String(),
	})
}

func (s *Service) invalidate(ctx context.Context, restaurantID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, restaurantID)
	}
}
