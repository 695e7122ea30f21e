package inventory

import (
	"context"
	"math"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mesa-hq/mesa/internal/audit"
	"github.com/mesa-hq/mesa/internal/shared"
	"github.com/mesa-hq/mesa/internal/tenant"
)

type memoryStore struct {
	items map[uuid.UUID]StockItem
}

func newMemoryStore() *memoryStore {
	return &memoryStore{items: make(map[uuid.UUID]StockItem)}
}

func (m *memoryStore) List(ctx context.Context, restaurantID uuid.UUID) ([]StockItem, error) {
	var out []StockItem
	for _, item := range m.items {
		if item.RestaurantID == restaurantID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memoryStore) Get(ctx context.Context, restaurantID, id uuid.UUID) (StockItem, error) {
	item, ok := m.items[id]
	if !ok || item.RestaurantID != restaurantID {
		return StockItem{}, shared.ErrNotFound
	}
	return item, nil
}

func (m *memoryStore) Create(ctx context.Context, item StockItem) (StockItem, error) {
	m.items[item.ID] = item
	return item, nil
}

func (m *memoryStore) Update(ctx context.Context, item StockItem) (StockItem, error) {
	existing, ok := m.items[item.ID]
	if !ok || existing.RestaurantID != item.RestaurantID {
		return StockItem{}, shared.ErrNotFound
	}
	item.Quantity = existing.Quantity
	m.items[item.ID] = item
	return item, nil
}

func (m *memoryStore) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	item, ok := m.items[id]
	if !ok || item.RestaurantID != restaurantID {
		return shared.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memoryStore) Increment(ctx context.Context, restaurantID, id uuid.UUID, amount int64) (StockItem, error) {
	item, err := m.Get(ctx, restaurantID, id)
	if err != nil {
		return StockItem{}, err
	}
	item.Quantity += amount
	m.items[id] = item
	return item, nil
}

func (m *memoryStore) Decrement(ctx context.Context, restaurantID, id uuid.UUID, amount int64) (StockItem, error) {
	item, err := m.Get(ctx, restaurantID, id)
	if err != nil {
		return StockItem{}, err
	}
	if item.Quantity < amount {
		return StockItem{}, ErrInsufficientStock
	}
	item.Quantity -= amount
	m.items[id] = item
	return item, nil
}

type recordingAudit struct {
	entries []audit.Entry
}

func (r *recordingAudit) Record(ctx context.Context, entry audit.Entry) {
	r.entries = append(r.entries, entry)
}

func testTenant() tenant.Context {
	return tenant.Context{UserID: 1, UserEmail: "owner@example.com", RestaurantID: uuid.New(), Role: "owner"}
}

func TestAdjustRejectsUnderflowWhole(t *testing.T) {
	store := newMemoryStore()
	recorder := &recordingAudit{}
	svc := NewService(store, recorder)
	tc := testTenant()

	created, err := svc.Create(context.Background(), tc, CreateStockItemRequest{
		Name: "Tomatoes", Unit: "kg", Quantity: 5,
	})
	require.NoError(t, err)

	_, err = svc.Adjust(context.Background(), tc, created.ID, AdjustStockRequest{Delta: -8})
	require.ErrorIs(t, err, ErrInsufficientStock)

	// Rejected decrement must leave the quantity untouched.
	after, err := svc.Get(context.Background(), tc, created.ID)
	require.NoError(t, err)
	require.Equal(t, int64(5), after.Quantity)

	// Only the create was audited.
	require.Len(t, recorder.entries, 1)
}

func TestAdjustIncrementAndDecrement(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, &recordingAudit{})
	tc := testTenant()

	created, err := svc.Create(context.Background(), tc, CreateStockItemRequest{Name: "Flour", Unit: "kg", Quantity: 10})
	require.NoError(t, err)

	item, err := svc.Adjust(context.Background(), tc, created.ID, AdjustStockRequest{Delta: 4})
	require.NoError(t, err)
	require.Equal(t, int64(14), item.Quantity)

	item, err = svc.Adjust(context.Background(), tc, created.ID, AdjustStockRequest{Delta: -14})
	require.NoError(t, err)
	require.Equal(t, int64(0), item.Quantity)
}

func TestAdjustDeltaBounds(t *testing.T) {
	v := validator.New()

	// math.MinInt64 survives negation unchanged; the bounds keep it out.
	require.Error(t, v.Struct(AdjustStockRequest{Delta: math.MinInt64}))
	require.Error(t, v.Struct(AdjustStockRequest{Delta: 1000001}))
	require.Error(t, v.Struct(AdjustStockRequest{Delta: -1000001}))
	require.NoError(t, v.Struct(AdjustStockRequest{Delta: -1000}))
	require.NoError(t, v.Struct(AdjustStockRequest{Delta: 1000}))
}

func TestAdjustForeignTenantIsNotFound(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, &recordingAudit{})
	tc := testTenant()
	other := testTenant()

	created, err := svc.Create(context.Background(), tc, CreateStockItemRequest{Name: "Salt", Unit: "kg", Quantity: 3})
	require.NoError(t, err)

	_, err = svc.Adjust(context.Background(), other, created.ID, AdjustStockRequest{Delta: -1})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestLowStock(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, &recordingAudit{})
	tc := testTenant()

	_, err := svc.Create(context.Background(), tc, CreateStockItemRequest{Name: "Olive oil", Unit: "l", Quantity: 2, ReorderLevel: 5})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), tc, CreateStockItemRequest{Name: "Rice", Unit: "kg", Quantity: 40, ReorderLevel: 10})
	require.NoError(t, err)

	low, err := svc.LowStock(context.Background(), tc.RestaurantID)
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, "Olive oil", low[0].Name)
}

func TestUpdateDoesNotTouchQuantity(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, &recordingAudit{})
	tc := testTenant()

	created, err := svc.Create(context.Background(), tc, CreateStockItemRequest{Name: "Butter", Unit: "kg", Quantity: 7})
	require.NoError(t, err)

	level := int64(3)
	updated, err := svc.Update(context.Background(), tc, created.ID, UpdateStockItemRequest{ReorderLevel: &level})
	require.NoError(t, err)
	require.Equal(t, int64(7), updated.Quantity)
	require.Equal(t, int64(3), updated.ReorderLevel)
}
