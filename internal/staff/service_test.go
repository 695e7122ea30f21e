package staff

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mesa-hq/mesa/internal/audit"
	"github.com/mesa-hq/mesa/internal/permissions"
	"github.com/mesa-hq/mesa/internal/shared"
	"github.com/mesa-hq/mesa/internal/tenant"
)

type memoryStore struct {
	members map[uuid.UUID]Member
}

func newMemoryStore() *memoryStore {
	return &memoryStore{members: make(map[uuid.UUID]Member)}
}

func (m *memoryStore) List(ctx context.Context, restaurantID uuid.UUID) ([]Member, error) {
	var out []Member
	for _, member := range m.members {
		if member.RestaurantID == restaurantID {
			out = append(out, member)
		}
	}
	return out, nil
}

func (m *memoryStore) Get(ctx context.Context, restaurantID, id uuid.UUID) (Member, error) {
	member, ok := m.members[id]
	if !ok || member.RestaurantID != restaurantID {
		return Member{}, shared.ErrNotFound
	}
	return member, nil
}

func (m *memoryStore) Create(ctx context.Context, member Member) (Member, error) {
	for _, existing := range m.members {
		if existing.RestaurantID == member.RestaurantID && existing.Email == member.Email {
			return Member{}, ErrEmailTaken
		}
	}
	member.IsActive = true
	m.members[member.ID] = member
	return member, nil
}

func (m *memoryStore) Update(ctx context.Context, member Member) (Member, error) {
	existing, ok := m.members[member.ID]
	if !ok || existing.RestaurantID != member.RestaurantID {
		return Member{}, shared.ErrNotFound
	}
	m.members[member.ID] = member
	return member, nil
}

func (m *memoryStore) Delete(ctx context.Context, restaurantID, id uuid.UUID) error {
	member, ok := m.members[id]
	if !ok || member.RestaurantID != restaurantID {
		return shared.ErrNotFound
	}
	delete(m.members, id)
	return nil
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

func TestInviteNormalizesEmailAndRole(t *testing.T) {
	recorder := &recordingAudit{}
	svc := NewService(newMemoryStore(), recorder)
	tc := testTenant()

	created, err := svc.Invite(context.Background(), tc, InviteMemberRequest{
		Email: " Chef@Example.COM ", FullName: "Niko", Role: "Manager",
	})
	require.NoError(t, err)
	require.Equal(t, "chef@example.com", created.Email)
	require.Equal(t, permissions.RoleManager, created.Role)

	require.Len(t, recorder.entries, 1)
	require.Equal(t, audit.ActionInvite, recorder.entries[0].Action)
	require.Equal(t, audit.EntityStaffMember, recorder.entries[0].EntityType)
}

func TestInviteRejectsUnknownRole(t *testing.T) {
	svc := NewService(newMemoryStore(), &recordingAudit{})
	tc := testTenant()

	_, err := svc.Invite(context.Background(), tc, InviteMemberRequest{
		Email: "chef@example.com", FullName: "Niko", Role: "admin",
	})
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestInviteRejectsOwnerRole(t *testing.T) {
	svc := NewService(newMemoryStore(), &recordingAudit{})
	tc := testTenant()

	_, err := svc.Invite(context.Background(), tc, InviteMemberRequest{
		Email: "chef@example.com", FullName: "Niko", Role: "owner",
	})
	require.ErrorIs(t, err, ErrOwnerRole)
}

func TestDuplicateEmailRejected(t *testing.T) {
	svc := NewService(newMemoryStore(), &recordingAudit{})
	tc := testTenant()

	_, err := svc.Invite(context.Background(), tc, InviteMemberRequest{
		Email: "chef@example.com", FullName: "Niko", Role: "staff",
	})
	require.NoError(t, err)

	_, err = svc.Invite(context.Background(), tc, InviteMemberRequest{
		Email: "CHEF@example.com", FullName: "Other", Role: "staff",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestEffectivePermissionsMergeOverrides(t *testing.T) {
	svc := NewService(newMemoryStore(), &recordingAudit{})
	tc := testTenant()

	created, err := svc.Invite(context.Background(), tc, InviteMemberRequest{
		Email: "chef@example.com", FullName: "Niko", Role: "staff",
		Overrides: permissions.StaffPermissions{
			permissions.ModuleInventory: {View: true, Manage: true},
			"bogus":                     {View: true, Manage: true},
		},
	})
	require.NoError(t, err)

	effective := created.EffectivePermissions()
	require.True(t, effective[permissions.ModuleInventory].Manage)
	_, hasBogus := effective["bogus"]
	require.False(t, hasBogus, "unknown override keys must be dropped")

	// Unoverridden modules keep the staff preset.
	require.False(t, effective[permissions.ModuleStaff].Manage)
}

func TestUpdateDeactivatesMember(t *testing.T) {
	svc := NewService(newMemoryStore(), &recordingAudit{})
	tc := testTenant()

	created, err := svc.Invite(context.Background(), tc, InviteMemberRequest{
		Email: "chef@example.com", FullName: "Niko", Role: "staff",
	})
	require.NoError(t, err)

	inactive := false
	updated, err := svc.Update(context.Background(), tc, created.ID, UpdateMemberRequest{IsActive: &inactive})
	require.NoError(t, err)
	require.False(t, updated.IsActive)
}

func TestForeignMemberIsNotFound(t *testing.T) {
	svc := NewService(newMemoryStore(), &recordingAudit{})
	tc := testTenant()
	other := testTenant()

	created, err := svc.Invite(context.Background(), tc, InviteMemberRequest{
		Email: "chef@example.com", FullName: "Niko", Role: "staff",
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), other, created.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	err = svc.Delete(context.Background(), other, created.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
