package staff

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/mesa-hq/mesa/internal/audit"
	"github.com/mesa-hq/mesa/internal/permissions"
	"github.com/mesa-hq/mesa/internal/tenant"
)

// Store is the persistence contract used by the service.
type Store interface {
	List(ctx context.Context, restaurantID uuid.UUID) ([]Member, error)
	Get(ctx context.Context, restaurantID, id uuid.UUID) (Member, error)
	Create(ctx context.Context, m Member) (Member, error)
	Update(ctx context.Context, m Member) (Member, error)
	Delete(ctx context.Context, restaurantID, id uuid.UUID) error
}

// Service orchestrates staff membership operations.
type Service struct {
	store Store
	audit audit.Recorder
}

// NewService constructs a Service.
func NewService(store Store, recorder audit.Recorder) *Service {
	return &Service{store: store, audit: recorder}
}

func (s *Service) List(ctx context.Context, tc tenant.Context) ([]Member, error) {
	return s.store.List(ctx, tc.RestaurantID)
}

func (s *Service) Get(ctx context.Context, tc tenant.Context, id uuid.UUID) (Member, error) {
	return s.store.Get(ctx, tc.RestaurantID, id)
}

// Invite creates a staff record for an email address. The role must name a
// defined role exactly; owner is derived from restaurant ownership and is
// never assignable here.
func (s *Service) Invite(ctx context.Context, tc tenant.Context, req InviteMemberRequest) (Member, error) {
	role, err := assignableRole(req.Role)
	if err != nil {
		return Member{}, err
	}

	created, err := s.store.Create(ctx, Member{
		ID:           uuid.New(),
		RestaurantID: tc.RestaurantID,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:     strings.TrimSpace(req.FullName),
		Role:         role,
		Overrides:    req.Overrides,
	})
	if err != nil {
		return Member{}, err
	}
	s.recordAudit(ctx, tc, audit.ActionInvite, created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, tc tenant.Context, id uuid.UUID, req UpdateMemberRequest) (Member, error) {
	current, err := s.store.Get(ctx, tc.RestaurantID, id)
	if err != nil {
		return Member{}, err
	}
	if req.Role != nil {
		role, err := assignableRole(*req.Role)
		if err != nil {
			return Member{}, err
		}
		current.Role = role
	}
	if req.FullName != nil {
		current.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Overrides != nil {
		current.Overrides = req.Overrides
	}
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}

	updated, err := s.store.Update(ctx, current)
	if err != nil {
		return Member{}, err
	}
	s.recordAudit(ctx, tc, audit.ActionUpdate, id)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, tc tenant.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, tc.RestaurantID, id); err != nil {
		return err
	}
	s.recordAudit(ctx, tc, audit.ActionDelete, id)
	return nil
}

// assignableRole validates a client-supplied role. Unknown strings are
// rejected here rather than silently normalized: silent mapping to staff
// would mask typos in an operator's intent.
func assignableRole(raw string) (permissions.Role, error) {
	if !permissions.ValidRole(raw) {
		return "", ErrUnknownRole
	}
	role := permissions.ParseRole(raw)
	if role == permissions.RoleOwner {
		return "", ErrOwnerRole
	}
	return role, nil
}

func (s *Service) recordAudit(ctx context.Context, tc tenant.Context, action audit.Action, id uuid.UUID) {
	s.audit.Record(ctx, audit.Entry{
		RestaurantID: tc.RestaurantID,
		UserID:       tc.UserID,
		UserEmail:    tc.UserEmail,
		Action:       action,
		EntityType:   audit.EntityStaffMember,
		EntityID:     id.String(),
	})
}
