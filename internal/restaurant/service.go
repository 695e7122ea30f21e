package restaurant

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/mesa-hq/mesa/internal/audit"
	"github.com/mesa-hq/mesa/internal/tenant"
)

// Store is the persistence contract used by the service.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (Restaurant, error)
	GetBySlug(ctx context.Context, slug string) (Restaurant, error)
	Create(ctx context.Context, restaurant Restaurant) (Restaurant, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, name, currency, timezone string) (Restaurant, error)
}

// Service orchestrates restaurant operations.
type Service struct {
	store Store
	audit audit.Recorder
}

// NewService constructs a Service.
func NewService(store Store, recorder audit.Recorder) *Service {
	return &Service{store: store, audit: recorder}
}

// Create registers a new restaurant owned by the caller and binds the
// caller's profile to it.
func (s *Service) Create(ctx context.Context, ownerUserID int64, ownerEmail string, req CreateRestaurantRequest) (Restaurant, error) {
	restaurant := Restaurant{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(req.Name),
		Slug:        Slugify(req.Name),
		Currency:    strings.ToUpper(strings.TrimSpace(req.Currency)),
		Timezone:    strings.TrimSpace(req.Timezone),
	}
	created, err := s.store.Create(ctx, restaurant)
	if err != nil {
		return Restaurant{}, err
	}
	s.audit.Record(ctx, audit.Entry{
		RestaurantID: created.ID,
		UserID:       ownerUserID,
		UserEmail:    ownerEmail,
		Action:       audit.ActionCreate,
		EntityType:   audit.EntityRestaurant,
		EntityID:     created.ID.String(),
	})
	return created, nil
}

// Current returns the caller's active restaurant.
func (s *Service) Current(ctx context.Context, tc tenant.Context) (Restaurant, error) {
	return s.store.Get(ctx, tc.RestaurantID)
}

// UpdateSettings applies a partial settings update to the caller's
// restaurant.
func (s *Service) UpdateSettings(ctx context.Context, tc tenant.Context, req UpdateSettingsRequest) (Restaurant, error) {
	current, err := s.store.Get(ctx, tc.RestaurantID)
	if err != nil {
		return Restaurant{}, err
	}
	name := current.Name
	currency := current.Currency
	timezone := current.Timezone
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
	}
	if req.Currency != nil {
		currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
	}
	if req.Timezone != nil {
		timezone = strings.TrimSpace(*req.Timezone)
	}

	updated, err := s.store.UpdateSettings(ctx, tc.RestaurantID, name, currency, timezone)
	if err != nil {
		return Restaurant{}, err
	}
	s.audit.Record(ctx, audit.Entry{
		RestaurantID: tc.RestaurantID,
		UserID:       tc.UserID,
		UserEmail:    tc.UserEmail,
		Action:       audit.ActionUpdate,
		EntityType:   audit.EntitySettings,
		EntityID:     updated.ID.String(),
	})
	return updated, nil
}

// Slugify derives a URL-safe slug from a display name.
func Slugify(name string) string {
	var sb strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				sb.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
