package reservations

import (
	"time"

	"github.com/google/uuid"
)

type CreateTableRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=40"`
	Seats int    `json:"seats" validate:"required,gt=0,lte=50"`
}

type UpdateTableRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=40"`
	Seats *int    `json:"seats,omitempty" validate:"omitempty,gt=0,lte=50"`
}

type CreateReservationRequest struct {
	TableID    uuid.UUID `json:"table_id" validate:"required"`
	GuestName  string    `json:"guest_name" validate:"required,min=1,max=120"`
	GuestPhone string    `json:"guest_phone" validate:"max=40"`
	PartySize  int       `json:"party_size" validate:"required,gt=0,lte=50"`
	StartsAt   time.Time `json:"starts_at" validate:"required"`
	EndsAt     time.Time `json:"ends_at" validate:"required"`
	Note       string    `json:"note" validate:"max=500"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required"`
}
