package orders

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mesa-hq/mesa/internal/audit"
	"github.com/mesa-hq/mesa/internal/inventory"
	"github.com/mesa-hq/mesa/internal/menu"
	"github.com/mesa-hq/mesa/internal/promotions"
	"github.com/mesa-hq/mesa/internal/shared"
	"github.com/mesa-hq/mesa/internal/tenant"
)

type memoryStore struct {
	orders map[uuid.UUID]Order
}

func newMemoryStore() *memoryStore {
	return &memoryStore{orders: make(map[uuid.UUID]Order)}
}

func (m *memoryStore) Create(ctx context.Context, order Order) (Order, error) {
	m.orders[order.ID] = order
	return order, nil
}

func (m *memoryStore) Get(ctx context.Context, restaurantID, id uuid.UUID) (Order, error) {
	o, ok := m.orders[id]
	if !ok || o.RestaurantID != restaurantID {
		return Order{}, shared.ErrNotFound
	}
	return o, nil
}

func (m *memoryStore) List(ctx context.Context, restaurantID uuid.UUID, filters ListFilters) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if o.RestaurantID != restaurantID {
			continue
		}
		if filters.Status != "" && o.Status != filters.Status {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (m *memoryStore) UpdateStatus(ctx context.Context, restaurantID, id uuid.UUID, from, to Status) (Order, error) {
	o, ok := m.orders[id]
	if !ok || o.RestaurantID != restaurantID || o.Status != from {
		return Order{}, shared.ErrNotFound
	}
	o.Status = to
	m.orders[id] = o
	return o, nil
}

func (m *memoryStore) UpdateTotals(ctx context.Context, restaurantID, id uuid.UUID, discountCents, totalCents int64) error {
	o, ok := m.orders[id]
	if !ok || o.RestaurantID != restaurantID {
		return shared.ErrNotFound
	}
	o.DiscountCents = discountCents
	o.TotalCents = totalCents
	m.orders[id] = o
	return nil
}

type menuStub struct {
	items map[uuid.UUID]menu.Item
}

func (m *menuStub) GetItem(ctx context.Context, restaurantID, id uuid.UUID) (menu.Item, error) {
	item, ok := m.items[id]
	if !ok || item.RestaurantID != restaurantID {
		return menu.Item{}, shared.ErrNotFound
	}
	return item, nil
}

type stockStub struct {
	quantities map[uuid.UUID]int64
	restaurant uuid.UUID
}

func (s *stockStub) Decrement(ctx context.Context, restaurantID, id uuid.UUID, amount int64) (inventory.StockItem, error) {
	if restaurantID != s.restaurant {
		return inventory.StockItem{}, shared.ErrNotFound
	}
	q, ok := s.quantities[id]
	if !ok {
		return inventory.StockItem{}, shared.ErrNotFound
	}
	if q < amount {
		return inventory.StockItem{}, inventory.ErrInsufficientStock
	}
	s.quantities[id] = q - amount
	return inventory.StockItem{ID: id, Quantity: q - amount}, nil
}

func (s *stockStub) Increment(ctx context.Context, restaurantID, id uuid.UUID, amount int64) (inventory.StockItem, error) {
	s.quantities[id] += amount
	return inventory.StockItem{ID: id, Quantity: s.quantities[id]}, nil
}

type promoStub struct {
	percent  int64
	uses     int64
	maxUses  int64
	released int
}

func (p *promoStub) Redeem(ctx context.Context, restaurantID uuid.UUID, code string) (int64, error) {
	if p.uses >= p.maxUses {
		return 0, promotions.ErrPromoExhausted
	}
	p.uses++
	return p.percent, nil
}

func (p *promoStub) Release(ctx context.Context, restaurantID uuid.UUID, code string) {
	p.released++
	if p.uses > 0 {
		p.uses--
	}
}

type keyStub struct {
	seen map[string]bool
}

func (k *keyStub) CheckAndInsert(ctx context.Context, key, module string) error {
	if k.seen[key] {
		return shared.ErrIdempotencyConflict
	}
	k.seen[key] = true
	return nil
}

func (k *keyStub) Delete(ctx context.Context, key string) error {
	delete(k.seen, key)
	return nil
}

type recordingAudit struct {
	entries []audit.Entry
}

func (r *recordingAudit) Record(ctx context.Context, entry audit.Entry) {
	r.entries = append(r.entries, entry)
}

type ownershipStub struct {
	tables map[uuid.UUID]uuid.UUID // table id -> restaurant id
}

func (o *ownershipStub) ValidateOwnership(ctx context.Context, table string, resourceID, restaurantID uuid.UUID) (bool, error) {
	owner, ok := o.tables[resourceID]
	return ok && owner == restaurantID, nil
}

type fixture struct {
	svc       *Service
	store     *memoryStore
	menus     *menuStub
	stock     *stockStub
	promo     *promoStub
	keys      *keyStub
	ownership *ownershipStub
	tc        tenant.Context
	itemIDs   []uuid.UUID
	stockID   uuid.UUID
	tableID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	restID := uuid.New()
	stockID := uuid.New()
	tableID := uuid.New()

	itemWithStock := menu.Item{ID: uuid.New(), RestaurantID: restID, StockItemID: &stockID, Name: "Burger", PriceCents: 1000, IsAvailable: true}
	itemNoStock := menu.Item{ID: uuid.New(), RestaurantID: restID, Name: "Water", PriceCents: 200, IsAvailable: true}

	menus := &menuStub{items: map[uuid.UUID]menu.Item{itemWithStock.ID: itemWithStock, itemNoStock.ID: itemNoStock}}
	stock := &stockStub{quantities: map[uuid.UUID]int64{stockID: 5}, restaurant: restID}
	promo := &promoStub{percent: 10, maxUses: 1}
	keys := &keyStub{seen: make(map[string]bool)}
	ownership := &ownershipStub{tables: map[uuid.UUID]uuid.UUID{tableID: restID}}
	store := newMemoryStore()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(logger, store, menus, stock, promo, keys, ownership, &recordingAudit{})

	return &fixture{
		svc: svc, store: store, menus: menus, stock: stock, promo: promo, keys: keys,
		ownership: ownership,
		tc:      tenant.Context{UserID: 1, UserEmail: "owner@example.com", RestaurantID: restID, Role: "owner"},
		itemIDs: []uuid.UUID{itemWithStock.ID, itemNoStock.ID},
		stockID: stockID,
		tableID: tableID,
	}
}

func TestCreateSnapshotsPricesAndNames(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create(context.Background(), f.tc, PlaceOrderRequest{
		Type: TypeTakeaway,
		Lines: []OrderLineInput{
			{MenuItemID: f.itemIDs[0], Quantity: 2},
			{MenuItemID: f.itemIDs[1], Quantity: 1},
		},
	}, "")
	require.NoError(t, err)
	require.Equal(t, StatusDraft, order.Status)
	require.Equal(t, int64(2200), order.SubtotalCents)
	require.Equal(t, int64(2200), order.TotalCents)
	require.Len(t, order.Lines, 2)
	require.Equal(t, "Burger", order.Lines[0].Name)

	// Draft creation moves no stock.
	require.Equal(t, int64(5), f.stock.quantities[f.stockID])
}

func TestPlacingDecrementsStockPerLine(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create(context.Background(), f.tc, PlaceOrderRequest{
		Type:  TypeDineIn,
		Lines: []OrderLineInput{{MenuItemID: f.itemIDs[0], Quantity: 3}},
	}, "")
	require.NoError(t, err)

	placed, err := f.svc.UpdateStatus(context.Background(), f.tc, order.ID, StatusPlaced)
	require.NoError(t, err)
	require.Equal(t, StatusPlaced, placed.Status)
	require.Equal(t, int64(2), f.stock.quantities[f.stockID])
}

func TestPlacementInsufficientStockLeavesNoPartialEffect(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create(context.Background(), f.tc, PlaceOrderRequest{
		Type:  TypeDineIn,
		Lines: []OrderLineInput{{MenuItemID: f.itemIDs[0], Quantity: 9}},
	}, "")
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), f.tc, order.ID, StatusPlaced)
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	// Order stays draft, stock untouched.
	current, err := f.svc.Get(context.Background(), f.tc, order.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDraft, current.Status)
	require.Equal(t, int64(5), f.stock.quantities[f.stockID])
}

func TestPlacementPromoFailureRestocks(t *testing.T) {
	f := newFixture(t)
	f.promo.uses = f.promo.maxUses // exhausted before this order

	code := "SUMMER10"
	order, err := f.svc.Create(context.Background(), f.tc, PlaceOrderRequest{
		Type:      TypeDineIn,
		PromoCode: &code,
		Lines:     []OrderLineInput{{MenuItemID: f.itemIDs[0], Quantity: 2}},
	}, "")
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), f.tc, order.ID, StatusPlaced)
	require.Error(t, err)
	require.Equal(t, int64(5), f.stock.quantities[f.stockID], "decrement must be compensated")
}

func TestPlacementAppliesPromoDiscount(t *testing.T) {
	f := newFixture(t)

	code := "SUMMER10"
	order, err := f.svc.Create(context.Background(), f.tc, PlaceOrderRequest{
		Type:      TypeDineIn,
		PromoCode: &code,
		Lines:     []OrderLineInput{{MenuItemID: f.itemIDs[0], Quantity: 2}},
	}, "")
	require.NoError(t, err)

	placed, err := f.svc.UpdateStatus(context.Background(), f.tc, order.ID, StatusPlaced)
	require.NoError(t, err)
	require.Equal(t, int64(200), placed.DiscountCents)
	require.Equal(t, int64(1800), placed.TotalCents)
}

func TestCancelAfterPlacementRestocks(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create(context.Background(), f.tc, PlaceOrderRequest{
		Type:  TypeDineIn,
		Lines: []OrderLineInput{{MenuItemID: f.itemIDs[0], Quantity: 2}},
	}, "")
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), f.tc, order.ID, StatusPlaced)
	require.NoError(t, err)
	require.Equal(t, int64(3), f.stock.quantities[f.stockID])

	_, err = f.svc.UpdateStatus(context.Background(), f.tc, order.ID, StatusCancelled)
	require.NoError(t, err)
	require.Equal(t, int64(5), f.stock.quantities[f.stockID])
}

// staleReadStore hands out the order as read, then lets another transition win
// before the conditional update runs.
type staleReadStore struct {
	*memoryStore
	afterGet func(Order)
}

func (s *staleReadStore) Get(ctx context.Context, restaurantID, id uuid.UUID) (Order, error) {
	o, err := s.memoryStore.Get(ctx, restaurantID, id)
	if err == nil && s.afterGet != nil {
		s.afterGet(o)
	}
	return o, err
}

func TestCancelLostRaceLeavesStockUntouched(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create(context.Background(), f.tc, PlaceOrderRequest{
		Type:  TypeTakeaway,
		Lines: []OrderLineInput{{MenuItemID: f.itemIDs[0], Quantity: 2}},
	}, "")
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), f.tc, order.ID, StatusPlaced)
	require.NoError(t, err)
	require.Equal(t, int64(3), f.stock.quantities[f.stockID])

	// A concurrent request moves the order to preparing between the read
	// and the cancel's conditional update.
	store := &staleReadStore{memoryStore: f.store}
	store.afterGet = func(o Order) {
		stored := f.store.orders[o.ID]
		stored.Status = StatusPreparing
		f.store.orders[o.ID] = stored
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	racing := NewService(logger, store, f.menus, f.stock, f.promo, f.keys, f.ownership, &recordingAudit{})

	_, err = racing.UpdateStatus(context.Background(), f.tc, order.ID, StatusCancelled)
	require.ErrorIs(t, err, ErrInvalidTransition)

	// The cancel did not happen, so nothing may move back into stock.
	require.Equal(t, int64(3), f.stock.quantities[f.stockID])
	current, err := f.svc.Get(context.Background(), f.tc, order.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPreparing, current.Status)
}

func TestInvalidTransitionRejected(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Create(context.Background(), f.tc, PlaceOrderRequest{
		Type:  TypeDineIn,
		Lines: []OrderLineInput{{MenuItemID: f.itemIDs[1], Quantity: 1}},
	}, "")
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), f.tc, order.ID, StatusReady)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.UpdateStatus(context.Background(), f.tc, order.ID, Status("bogus"))
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDuplicateIdempotencyKeyRejected(t *testing.T) {
	f := newFixture(t)

	req := PlaceOrderRequest{Type: TypeTakeaway, Lines: []OrderLineInput{{MenuItemID: f.itemIDs[1], Quantity: 1}}}

	_, err := f.svc.Create(context.Background(), f.tc, req, "key-1")
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), f.tc, req, "key-1")
	require.ErrorIs(t, err, shared.ErrIdempotencyConflict)
}

func TestForeignTableIsNotFound(t *testing.T) {
	f := newFixture(t)
	foreignTable := uuid.New()

	_, err := f.svc.Create(context.Background(), f.tc, PlaceOrderRequest{
		Type:    TypeDineIn,
		TableID: &foreignTable,
		Lines:   []OrderLineInput{{MenuItemID: f.itemIDs[1], Quantity: 1}},
	}, "")
	require.ErrorIs(t, err, shared.ErrNotFound)

	order, err := f.svc.Create(context.Background(), f.tc, PlaceOrderRequest{
		Type:    TypeDineIn,
		TableID: &f.tableID,
		Lines:   []OrderLineInput{{MenuItemID: f.itemIDs[1], Quantity: 1}},
	}, "")
	require.NoError(t, err)
	require.Equal(t, f.tableID, *order.TableID)
}

func TestForeignMenuItemIsNotFound(t *testing.T) {
	f := newFixture(t)
	other := tenant.Context{UserID: 2, UserEmail: "other@example.com", RestaurantID: uuid.New(), Role: "owner"}

	_, err := f.svc.Create(context.Background(), other, PlaceOrderRequest{
		Type:  TypeDineIn,
		Lines: []OrderLineInput{{MenuItemID: f.itemIDs[0], Quantity: 1}},
	}, "")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestForeignOrderIsNotFound(t *testing.T) {
	f := newFixture(t)
	other := tenant.Context{UserID: 2, UserEmail: "other@example.com", RestaurantID: uuid.New(), Role: "owner"}

	order, err := f.svc.Create(context.Background(), f.tc, PlaceOrderRequest{
		Type:  TypeTakeaway,
		Lines: []OrderLineInput{{MenuItemID: f.itemIDs[1], Quantity: 1}},
	}, "")
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), other, order.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.svc.UpdateStatus(context.Background(), other, order.ID, StatusPlaced)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
