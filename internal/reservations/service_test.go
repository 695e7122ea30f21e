package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mesa-hq/mesa/internal/audit"
	"github.com/mesa-hq/mesa/internal/shared"
	"github.com/mesa-hq/mesa/internal/tenant"
)

type memoryStore struct {
	tables       map[uuid.UUID]DiningTable
	reservations map[uuid.UUID]Reservation
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		tables:       make(map[uuid.UUID]DiningTable),
		reservations: make(map[uuid.UUID]Reservation),
	}
}

func (m *memoryStore) ListTables(ctx context.Context, restaurantID uuid.UUID) ([]DiningTable, error) {
	var out []DiningTable
	for _, t := range m.tables {
		if t.RestaurantID == restaurantID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memoryStore) GetTable(ctx context.Context, restaurantID, id uuid.UUID) (DiningTable, error) {
	t, ok := m.tables[id]
	if !ok || t.RestaurantID != restaurantID {
		return DiningTable{}, shared.ErrNotFound
	}
	return t, nil
}

func (m *memoryStore) CreateTable(ctx context.Context, t DiningTable) (DiningTable, error) {
	m.tables[t.ID] = t
	return t, nil
}

func (m *memoryStore) UpdateTable(ctx context.Context, t DiningTable) (DiningTable, error) {
	existing, ok := m.tables[t.ID]
	if !ok || existing.RestaurantID != t.RestaurantID {
		return DiningTable{}, shared.ErrNotFound
	}
	m.tables[t.ID] = t
	return t, nil
}

func (m *memoryStore) DeleteTable(ctx context.Context, restaurantID, id uuid.UUID) error {
	t, ok := m.tables[id]
	if !ok || t.RestaurantID != restaurantID {
		return shared.ErrNotFound
	}
	delete(m.tables, id)
	return nil
}

func (m *memoryStore) ListReservations(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) ([]Reservation, error) {
	var out []Reservation
	for _, res := range m.reservations {
		if res.RestaurantID == restaurantID && Overlaps(res.StartsAt, res.EndsAt, from, to) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (m *memoryStore) GetReservation(ctx context.Context, restaurantID, id uuid.UUID) (Reservation, error) {
	res, ok := m.reservations[id]
	if !ok || res.RestaurantID != restaurantID {
		return Reservation{}, shared.ErrNotFound
	}
	return res, nil
}

func (m *memoryStore) CountOverlapping(ctx context.Context, restaurantID, tableID uuid.UUID, startsAt, endsAt time.Time) (int, error) {
	count := 0
	for _, res := range m.reservations {
		if res.RestaurantID == restaurantID && res.TableID == tableID && res.Status.Active() &&
			Overlaps(res.StartsAt, res.EndsAt, startsAt, endsAt) {
			count++
		}
	}
	return count, nil
}

func (m *memoryStore) CreateReservation(ctx context.Context, res Reservation) (Reservation, error) {
	m.reservations[res.ID] = res
	return res, nil
}

func (m *memoryStore) UpdateReservationStatus(ctx context.Context, restaurantID, id uuid.UUID, from, to Status) (Reservation, error) {
	res, ok := m.reservations[id]
	if !ok || res.RestaurantID != restaurantID || res.Status != from {
		return Reservation{}, shared.ErrNotFound
	}
	res.Status = to
	m.reservations[id] = res
	return res, nil
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

func seedTable(t *testing.T, svc *Service, tc tenant.Context) DiningTable {
	t.Helper()
	table, err := svc.CreateTable(context.Background(), tc, CreateTableRequest{Name: "T1", Seats: 4})
	require.NoError(t, err)
	return table
}

func window(hoursFromNow, durationHours int) (time.Time, time.Time) {
	start := time.Now().Add(time.Duration(hoursFromNow) * time.Hour).Truncate(time.Minute)
	return start, start.Add(time.Duration(durationHours) * time.Hour)
}

func TestOverlappingReservationRejected(t *testing.T) {
	svc := NewService(newMemoryStore(), &recordingAudit{})
	tc := testTenant()
	table := seedTable(t, svc, tc)

	start, end := window(24, 2)
	_, err := svc.CreateReservation(context.Background(), tc, CreateReservationRequest{
		TableID: table.ID, GuestName: "Ada", PartySize: 2, StartsAt: start, EndsAt: end,
	})
	require.NoError(t, err)

	// Overlaps the middle of the existing window.
	_, err = svc.CreateReservation(context.Background(), tc, CreateReservationRequest{
		TableID: table.ID, GuestName: "Grace", PartySize: 4,
		StartsAt: start.Add(time.Hour), EndsAt: end.Add(time.Hour),
	})
	require.ErrorIs(t, err, ErrTableUnavailable)

	// Back-to-back is fine: the window is half-open.
	_, err = svc.CreateReservation(context.Background(), tc, CreateReservationRequest{
		TableID: table.ID, GuestName: "Grace", PartySize: 4,
		StartsAt: end, EndsAt: end.Add(2 * time.Hour),
	})
	require.NoError(t, err)
}

func TestCancelledReservationFreesTable(t *testing.T) {
	svc := NewService(newMemoryStore(), &recordingAudit{})
	tc := testTenant()
	table := seedTable(t, svc, tc)

	start, end := window(24, 2)
	first, err := svc.CreateReservation(context.Background(), tc, CreateReservationRequest{
		TableID: table.ID, GuestName: "Ada", PartySize: 2, StartsAt: start, EndsAt: end,
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), tc, first.ID, StatusCancelled)
	require.NoError(t, err)

	_, err = svc.CreateReservation(context.Background(), tc, CreateReservationRequest{
		TableID: table.ID, GuestName: "Grace", PartySize: 2, StartsAt: start, EndsAt: end,
	})
	require.NoError(t, err)
}

func TestStatusLifecycle(t *testing.T) {
	svc := NewService(newMemoryStore(), &recordingAudit{})
	tc := testTenant()
	table := seedTable(t, svc, tc)

	start, end := window(24, 2)
	res, err := svc.CreateReservation(context.Background(), tc, CreateReservationRequest{
		TableID: table.ID, GuestName: "Ada", PartySize: 2, StartsAt: start, EndsAt: end,
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, res.Status)

	for _, next := range []Status{StatusConfirmed, StatusSeated, StatusCompleted} {
		res, err = svc.UpdateStatus(context.Background(), tc, res.ID, next)
		require.NoError(t, err)
		require.Equal(t, next, res.Status)
	}

	// Completed is terminal.
	_, err = svc.UpdateStatus(context.Background(), tc, res.ID, StatusCancelled)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSkippingLifecycleStepsRejected(t *testing.T) {
	svc := NewService(newMemoryStore(), &recordingAudit{})
	tc := testTenant()
	table := seedTable(t, svc, tc)

	start, end := window(24, 2)
	res, err := svc.CreateReservation(context.Background(), tc, CreateReservationRequest{
		TableID: table.ID, GuestName: "Ada", PartySize: 2, StartsAt: start, EndsAt: end,
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), tc, res.ID, StatusSeated)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReservationWindowValidation(t *testing.T) {
	svc := NewService(newMemoryStore(), &recordingAudit{})
	tc := testTenant()
	table := seedTable(t, svc, tc)

	start, _ := window(24, 2)
	_, err := svc.CreateReservation(context.Background(), tc, CreateReservationRequest{
		TableID: table.ID, GuestName: "Ada", PartySize: 2, StartsAt: start, EndsAt: start,
	})
	require.ErrorIs(t, err, ErrInvalidWindow)
}

func TestForeignTableIsNotFound(t *testing.T) {
	svc := NewService(newMemoryStore(), &recordingAudit{})
	tc := testTenant()
	other := testTenant()
	table := seedTable(t, svc, tc)

	start, end := window(24, 2)
	_, err := svc.CreateReservation(context.Background(), other, CreateReservationRequest{
		TableID: table.ID, GuestName: "Mallory", PartySize: 2, StartsAt: start, EndsAt: end,
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}
