package restaurant

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mesa-hq/mesa/internal/audit"
	"github.com/mesa-hq/mesa/internal/shared"
	"github.com/mesa-hq/mesa/internal/tenant"
)

type memoryStore struct {
	byID map[uuid.UUID]Restaurant
}

func newMemoryStore() *memoryStore {
	return &memoryStore{byID: make(map[uuid.UUID]Restaurant)}
}

func (m *memoryStore) Get(ctx context.Context, id uuid.UUID) (Restaurant, error) {
	if r, ok := m.byID[id]; ok {
		return r, nil
	}
	return Restaurant{}, shared.ErrNotFound
}

func (m *memoryStore) GetBySlug(ctx context.Context, slug string) (Restaurant, error) {
	for _, r := range m.byID {
		if r.Slug == slug {
			return r, nil
		}
	}
	return Restaurant{}, shared.ErrNotFound
}

func (m *memoryStore) Create(ctx context.Context, restaurant Restaurant) (Restaurant, error) {
	for _, existing := range m.byID {
		if existing.Slug == restaurant.Slug {
			return Restaurant{}, ErrSlugTaken
		}
	}
	restaurant.IsActive = true
	m.byID[restaurant.ID] = restaurant
	return restaurant, nil
}

func (m *memoryStore) UpdateSettings(ctx context.Context, id uuid.UUID, name, currency, timezone string) (Restaurant, error) {
	r, ok := m.byID[id]
	if !ok {
		return Restaurant{}, shared.ErrNotFound
	}
	r.Name = name
	r.Currency = currency
	r.Timezone = timezone
	m.byID[id] = r
	return r, nil
}

type recordingAudit struct {
	entries []audit.Entry
}

func (r *recordingAudit) Record(ctx context.Context, entry audit.Entry) {
	r.entries = append(r.entries, entry)
}

func TestCreateRestaurant(t *testing.T) {
	store := newMemoryStore()
	recorder := &recordingAudit{}
	svc := NewService(store, recorder)

	created, err := svc.Create(context.Background(), 7, "owner@example.com", CreateRestaurantRequest{
		Name:     "Café Niko's",
		Currency: "eur",
		Timezone: "Europe/Amsterdam",
	})
	require.NoError(t, err)
	require.Equal(t, "caf-niko-s", created.Slug)
	require.Equal(t, "EUR", created.Currency)
	require.Equal(t, int64(7), created.OwnerUserID)
	require.Len(t, recorder.entries, 1)
	require.Equal(t, audit.ActionCreate, recorder.entries[0].Action)
	require.Equal(t, audit.EntityRestaurant, recorder.entries[0].EntityType)
}

func TestCreateRestaurantDuplicateSlug(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, &recordingAudit{})

	_, err := svc.Create(context.Background(), 7, "a@example.com", CreateRestaurantRequest{Name: "Bistro", Currency: "USD", Timezone: "UTC"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 8, "b@example.com", CreateRestaurantRequest{Name: "Bistro", Currency: "USD", Timezone: "UTC"})
	require.ErrorIs(t, err, ErrSlugTaken)
}

func TestUpdateSettingsPartial(t *testing.T) {
	store := newMemoryStore()
	recorder := &recordingAudit{}
	svc := NewService(store, recorder)

	created, err := svc.Create(context.Background(), 7, "owner@example.com", CreateRestaurantRequest{Name: "Bistro", Currency: "USD", Timezone: "UTC"})
	require.NoError(t, err)

	tc := tenant.Context{UserID: 7, UserEmail: "owner@example.com", RestaurantID: created.ID}
	newName := "Bistro Central"
	updated, err := svc.UpdateSettings(context.Background(), tc, UpdateSettingsRequest{Name: &newName})
	require.NoError(t, err)
	require.Equal(t, "Bistro Central", updated.Name)
	require.Equal(t, "USD", updated.Currency)
	require.Equal(t, "UTC", updated.Timezone)
	require.Len(t, recorder.entries, 2)
}

func TestSlugify(t *testing.T) {
	require.Equal(t, "la-piazza", Slugify("  La Piazza! "))
	require.Equal(t, "sushi-9", Slugify("Sushi #9"))
	require.Equal(t, "", Slugify("!!!"))
}
