// Package reservations manages dining tables and table reservations. A table
// can hold at most one active reservation for any time window.
package reservations

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrTableUnavailable indicates an overlapping active reservation.
var ErrTableUnavailable = errors.New("reservations: table unavailable for this window")

// ErrInvalidTransition indicates a status change outside the lifecycle.
var ErrInvalidTransition = errors.New("reservations: invalid status transition")

// ErrInvalidWindow indicates a reservation window that ends before it starts.
var ErrInvalidWindow = errors.New("reservations: window end must be after start")

// Status is the closed reservation lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusSeated    Status = "seated"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusSeated, StatusCancelled},
	StatusSeated:    {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether the lifecycle permits the move. Completed and
// cancelled are terminal.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStatus reports membership in the closed status set.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusSeated, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether the status still blocks the table.
func (s Status) Active() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusSeated:
		return true
	}
	return false
}

// DiningTable is a physical table in the restaurant.
type DiningTable struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Name         string    `json:"name"`
	Seats        int       `json:"seats"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Reservation books a table for a guest over a half-open window [StartsAt, EndsAt).
type Reservation struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	TableID      uuid.UUID `json:"table_id"`
	GuestName    string    `json:"guest_name"`
	GuestPhone   string    `json:"guest_phone,omitempty"`
	PartySize    int       `json:"party_size"`
	Status       Status    `json:"status"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	Note         string    `json:"note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Overlaps reports whether two half-open windows intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
