package orders

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mesa-hq/mesa/internal/audit"
	"github.com/mesa-hq/mesa/internal/inventory"
	"github.com/mesa-hq/mesa/internal/menu"
	"github.com/mesa-hq/mesa/internal/shared"
	"github.com/mesa-hq/mesa/internal/tenant"
)

// ErrItemUnavailable indicates an order line referencing a menu item that is
// switched off.
var ErrItemUnavailable = errors.New("orders: menu item not available")

// Store is the order persistence contract.
type Store interface {
	Create(ctx context.Context, order Order) (Order, error)
	Get(ctx context.Context, restaurantID, id uuid.UUID) (Order, error)
	List(ctx context.Context, restaurantID uuid.UUID, filters ListFilters) ([]Order, error)
	UpdateStatus(ctx context.Context, restaurantID, id uuid.UUID, from, to Status) (Order, error)
	UpdateTotals(ctx context.Context, restaurantID, id uuid.UUID, discountCents, totalCents int64) error
}

// MenuStore resolves menu items for order lines.
type MenuStore interface {
	GetItem(ctx context.Context, restaurantID, id uuid.UUID) (menu.Item, error)
}

// StockStore moves inventory for placed and cancelled orders.
type StockStore interface {
	Decrement(ctx context.Context, restaurantID, id uuid.UUID, amount int64) (inventory.StockItem, error)
	Increment(ctx context.Context, restaurantID, id uuid.UUID, amount int64) (inventory.StockItem, error)
}

// PromoRedeemer consumes and releases promo code uses.
type PromoRedeemer interface {
	Redeem(ctx context.Context, restaurantID uuid.UUID, code string) (percentOff int64, err error)
	Release(ctx context.Context, restaurantID uuid.UUID, code string)
}

// Keyer guards against duplicate order submissions. Nil-safe.
type Keyer interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// OwnershipChecker confirms a referenced resource belongs to the tenant.
type OwnershipChecker interface {
	ValidateOwnership(ctx context.Context, table string, resourceID, restaurantID uuid.UUID) (bool, error)
}

// Service orchestrates the order lifecycle.
type Service struct {
	logger    *slog.Logger
	store     Store
	menus     MenuStore
	stock     StockStore
	promos    PromoRedeemer
	keys      Keyer
	ownership OwnershipChecker
	audit     audit.Recorder
}

// NewService constructs a Service. promos, keys and ownership may be nil.
func NewService(logger *slog.Logger, store Store, menus MenuStore, stock StockStore, promos PromoRedeemer, keys Keyer, ownership OwnershipChecker, recorder audit.Recorder) *Service {
	return &Service{logger: logger, store: store, menus: menus, stock: stock, promos: promos, keys: keys, ownership: ownership, audit: recorder}
}

// Create builds a draft order from menu items. Prices and names are
// snapshotted; no inventory moves until the order is placed.
func (s *Service) Create(ctx context.Context, tc tenant.Context, req PlaceOrderRequest, idempotencyKey string) (Order, error) {
	if idempotencyKey != "" && s.keys != nil {
		if err := s.keys.CheckAndInsert(ctx, idempotencyKey, "orders"); err != nil {
			return Order{}, err
		}
	}
	order, err := s.create(ctx, tc, req)
	if err != nil && idempotencyKey != "" && s.keys != nil {
		if delErr := s.keys.Delete(ctx, idempotencyKey); delErr != nil {
			s.logger.Warn("idempotency key rollback failed", "key", idempotencyKey, "error", delErr)
		}
	}
	return order, err
}

func (s *Service) create(ctx context.Context, tc tenant.Context, req PlaceOrderRequest) (Order, error) {
	if req.TableID != nil && s.ownership != nil {
		owned, err := s.ownership.ValidateOwnership(ctx, "dining_tables", *req.TableID, tc.RestaurantID)
		if err != nil {
			return Order{}, err
		}
		if !owned {
			// A table of another restaurant is indistinguishable from absent.
			return Order{}, shared.ErrNotFound
		}
	}

	orderID := uuid.New()
	var (
		lines    []OrderLine
		subtotal int64
	)
	for _, input := range req.Lines {
		item, err := s.menus.GetItem(ctx, tc.RestaurantID, input.MenuItemID)
		if err != nil {
			return Order{}, err
		}
		if !item.IsAvailable {
			return Order{}, ErrItemUnavailable
		}
		lines = append(lines, OrderLine{
			ID:             uuid.New(),
			OrderID:        orderID,
			MenuItemID:     item.ID,
			StockItemID:    item.StockItemID,
			Name:           item.Name,
			UnitPriceCents: item.PriceCents,
			Quantity:       input.Quantity,
		})
		subtotal += item.PriceCents * input.Quantity
	}

	order := Order{
		ID:            orderID,
		RestaurantID:  tc.RestaurantID,
		TableID:       req.TableID,
		Type:          req.Type,
		Status:        StatusDraft,
		Note:          strings.TrimSpace(req.Note),
		PromoCode:     req.PromoCode,
		SubtotalCents: subtotal,
		TotalCents:    subtotal,
		Lines:         lines,
	}
	created, err := s.store.Create(ctx, order)
	if err != nil {
		return Order{}, err
	}
	s.recordAudit(ctx, tc, audit.ActionCreate, created.ID)
	return created, nil
}

func (s *Service) Get(ctx context.Context, tc tenant.Context, id uuid.UUID) (Order, error) {
	return s.store.Get(ctx, tc.RestaurantID, id)
}

func (s *Service) List(ctx context.Context, tc tenant.Context, filters ListFilters) ([]Order, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 50
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	return s.store.List(ctx, tc.RestaurantID, filters)
}

// UpdateStatus applies one lifecycle transition. Placing decrements stock per
// line and consumes the promo; any failure along the way is compensated so a
// rejected placement leaves no partial effect. Cancelling a placed order puts
// the stock back.
func (s *Service) UpdateStatus(ctx context.Context, tc tenant.Context, id uuid.UUID, to Status) (Order, error) {
	if !ValidStatus(to) {
		return Order{}, ErrInvalidTransition
	}
	order, err := s.store.Get(ctx, tc.RestaurantID, id)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(order.Status, to) {
		return Order{}, ErrInvalidTransition
	}

	if to == StatusPlaced {
		if err := s.place(ctx, tc, order); err != nil {
			return Order{}, err
		}
	}

	updated, err := s.store.UpdateStatus(ctx, tc.RestaurantID, id, order.Status, to)
	if err != nil {
		if to == StatusPlaced {
			// Lost the race against a concurrent transition; undo.
			s.restock(ctx, tc.RestaurantID, order)
		}
		if errors.Is(err, shared.ErrNotFound) {
			return Order{}, ErrInvalidTransition
		}
		return Order{}, err
	}
	if to == StatusCancelled && order.Status != StatusDraft {
		// Restock only once the transition is committed; a lost race must
		// leave inventory and promo uses exactly as they were.
		s.restock(ctx, tc.RestaurantID, order)
	}
	s.recordAudit(ctx, tc, audit.ActionStatusChange, id)
	return updated, nil
}

// place moves inventory and consumes the promo code for an order leaving
// draft. Decrements already applied are reversed when a later line fails.
func (s *Service) place(ctx context.Context, tc tenant.Context, order Order) error {
	var applied []OrderLine
	for _, line := range order.Lines {
		if line.StockItemID == nil {
			continue
		}
		if _, err := s.stock.Decrement(ctx, tc.RestaurantID, *line.StockItemID, line.Quantity); err != nil {
			for _, prev := range applied {
				s.reincrement(ctx, tc.RestaurantID, prev)
			}
			return err
		}
		applied = append(applied, line)
	}

	if order.PromoCode != nil && s.promos != nil {
		percentOff, err := s.promos.Redeem(ctx, tc.RestaurantID, *order.PromoCode)
		if err != nil {
			for _, prev := range applied {
				s.reincrement(ctx, tc.RestaurantID, prev)
			}
			return err
		}
		discount := order.SubtotalCents * percentOff / 100
		if err := s.store.UpdateTotals(ctx, tc.RestaurantID, order.ID, discount, order.SubtotalCents-discount); err != nil {
			s.promos.Release(ctx, tc.RestaurantID, *order.PromoCode)
			for _, prev := range applied {
				s.reincrement(ctx, tc.RestaurantID, prev)
			}
			return err
		}
	}
	return nil
}

func (s *Service) restock(ctx context.Context, restaurantID uuid.UUID, order Order) {
	for _, line := range order.Lines {
		if line.StockItemID == nil {
			continue
		}
		s.reincrement(ctx, restaurantID, line)
	}
	if order.PromoCode != nil && s.promos != nil {
		s.promos.Release(ctx, restaurantID, *order.PromoCode)
	}
}

func (s *Service) reincrement(ctx context.Context, restaurantID uuid.UUID, line OrderLine) {
	if _, err := s.stock.Increment(ctx, restaurantID, *line.StockItemID, line.Quantity); err != nil {
		s.logger.Error("stock compensation failed",
			"stock_item_id", *line.StockItemID, "quantity", line.Quantity, "error", err)
	}
}

func (s *Service) recordAudit(ctx context.Context, tc tenant.Context, action audit.Action, id uuid.UUID) {
	s.audit.Record(ctx, audit.Entry{
		RestaurantID: tc.RestaurantID,
		UserID:       tc.UserID,
		UserEmail:    tc.UserEmail,
		Action:       action,
		EntityType:   audit.EntityOrder,
		EntityID:     id.String(),
	})
}
