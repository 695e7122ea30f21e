// Package restaurant manages tenant records and the identity to tenant
// binding held in profiles.
package restaurant

import (
	"time"

	"github.com/google/uuid"
)

// Restaurant is one tenant: the unit of data isolation. OwnerUserID is the
// sole source of truth for ownership; the profile binding is a re-validated
// hint.
type Restaurant struct {
	ID          uuid.UUID `json:"id"`
	OwnerUserID int64     `json:"owner_user_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Currency    string    `json:"currency"`
	Timezone    string    `json:"timezone"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
