package reservations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesa-hq/mesa/internal/audit"
	"github.com/mesa-hq/mesa/internal/shared"
	"github.com/mesa-hq/mesa/internal/tenant"
)

// Store is the persistence contract used by the service.
type Store interface {
	ListTables(ctx context.Context, restaurantID uuid.UUID) ([]DiningTable, error)
	GetTable(ctx context.Context, restaurantID, id uuid.UUID) (DiningTable, error)
	CreateTable(ctx context.Context, t DiningTable) (DiningTable, error)
	UpdateTable(ctx context.Context, t DiningTable) (DiningTable, error)
	DeleteTable(ctx context.Context, restaurantID, id uuid.UUID) error
	ListReservations(ctx context.Context, restaurantID uuid.UUID, from, to time.Time) ([]Reservation, error)
	GetReservation(ctx context.Context, restaurantID, id uuid.UUID) (Reservation, error)
	CountOverlapping(ctx context.Context, restaurantID, tableID uuid.UUID, startsAt, endsAt time.Time) (int, error)
	CreateReservation(ctx context.Context, res Reservation) (Reservation, error)
	UpdateReservationStatus(ctx context.Context, restaurantID, id uuid.UUID, from, to Status) (Reservation, error)
}

// Service orchestrates table and reservation operations.
type Service struct {
	store Store
	audit audit.Recorder
}

// NewService constructs a Service.
func NewService(store Store, recorder audit.Recorder) *Service {
	return &Service{store: store, audit: recorder}
}

func (s *Service) ListTables(ctx context.Context, tc tenant.Context) ([]DiningTable, error) {
	return s.store.ListTables(ctx, tc.RestaurantID)
}

func (s *Service) CreateTable(ctx context.Context, tc tenant.Context, req CreateTableRequest) (DiningTable, error) {
	created, err := s.store.CreateTable(ctx, DiningTable{
		ID:           uuid.New(),
		RestaurantID: tc.RestaurantID,
		Name:         strings.TrimSpace(req.Name),
		Seats:        req.Seats,
	})
	if err != nil {
		return DiningTable{}, err
	}
	s.recordAudit(ctx, tc, audit.ActionCreate, audit.EntityTable, created.ID)
	return created, nil
}

func (s *Service) UpdateTable(ctx context.Context, tc tenant.Context, id uuid.UUID, req UpdateTableRequest) (DiningTable, error) {
	current, err := s.store.GetTable(ctx, tc.RestaurantID, id)
	if err != nil {
		return DiningTable{}, err
	}
	if req.Name != nil {
		current.Name = strings.TrimSpace(*req.Name)
	}
	if req.Seats != nil {
		current.Seats = *req.Seats
	}

	updated, err := s.store.UpdateTable(ctx, current)
	if err != nil {
		return DiningTable{}, err
	}
	s.recordAudit(ctx, tc, audit.ActionUpdate, audit.EntityTable, id)
	return updated, nil
}

func (s *Service) DeleteTable(ctx context.Context, tc tenant.Context, id uuid.UUID) error {
	if err := s.store.DeleteTable(ctx, tc.RestaurantID, id); err != nil {
		return err
	}
	s.recordAudit(ctx, tc, audit.ActionDelete, audit.EntityTable, id)
	return nil
}

// ListReservations returns reservations intersecting [from, to). A zero
// window defaults to the next seven days.
func (s *Service) ListReservations(ctx context.Context, tc tenant.Context, from, to time.Time) ([]Reservation, error) {
	if from.IsZero() {
		from = time.Now()
	}
	if to.IsZero() || !to.After(from) {
		to = from.Add(7 * 24 * time.Hour)
	}
	return s.store.ListReservations(ctx, tc.RestaurantID, from, to)
}

func (s *Service) GetReservation(ctx context.Context, tc tenant.Context, id uuid.UUID) (Reservation, error) {
	return s.store.GetReservation(ctx, tc.RestaurantID, id)
}

// CreateReservation books a table after checking the window and the table's
// existing active reservations.
func (s *Service) CreateReservation(ctx context.Context, tc tenant.Context, req CreateReservationRequest) (Reservation, error) {
	if !req.EndsAt.After(req.StartsAt) {
		return Reservation{}, ErrInvalidWindow
	}
	// Table id comes from the client; confirm it belongs to this restaurant.
	if _, err := s.store.GetTable(ctx, tc.RestaurantID, req.TableID); err != nil {
		return Reservation{}, err
	}
	overlapping, err := s.store.CountOverlapping(ctx, tc.RestaurantID, req.TableID, req.StartsAt, req.EndsAt)
	if err != nil {
		return Reservation{}, err
	}
	if overlapping > 0 {
		return Reservation{}, ErrTableUnavailable
	}

	created, err := s.store.CreateReservation(ctx, Reservation{
		ID:           uuid.New(),
		RestaurantID: tc.RestaurantID,
		TableID:      req.TableID,
		GuestName:    strings.TrimSpace(req.GuestName),
		GuestPhone:   strings.TrimSpace(req.GuestPhone),
		PartySize:    req.PartySize,
		Status:       StatusPending,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
		Note:         strings.TrimSpace(req.Note),
	})
	if err != nil {
		return Reservation{}, err
	}
	s.recordAudit(ctx, tc, audit.ActionCreate, audit.EntityReservation, created.ID)
	return created, nil
}

// UpdateStatus applies one lifecycle transition.
func (s *Service) UpdateStatus(ctx context.Context, tc tenant.Context, id uuid.UUID, to Status) (Reservation, error) {
	if !ValidStatus(to) {
		return Reservation{}, ErrInvalidTransition
	}
	current, err := s.store.GetReservation(ctx, tc.RestaurantID, id)
	if err != nil {
		return Reservation{}, err
	}
	if !CanTransition(current.Status, to) {
		return Reservation{}, ErrInvalidTransition
	}

	updated, err := s.store.UpdateReservationStatus(ctx, tc.RestaurantID, id, current.Status, to)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Reservation{}, ErrInvalidTransition
		}
		return Reservation{}, err
	}
	action := audit.ActionStatusChange
	if to == StatusCancelled {
		action = audit.ActionCancel
	}
	s.recordAudit(ctx, tc, action, audit.EntityReservation, id)
	return updated, nil
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
