package permissions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultsIdempotent(t *testing.T) {
	first := Defaults(RoleManager)
	second := Defaults(RoleManager)
	require.Equal(t, first, second)

	// Mutating one copy must not leak into the preset table.
	first[ModuleBilling] = Capability{View: true, Manage: true}
	require.NotEqual(t, first, Defaults(RoleManager))
}

func TestUnknownRoleFallsBackToStaff(t *testing.T) {
	got := Defaults(Role("nonexistent-role"))
	require.Equal(t, Defaults(RoleStaff), got)
	require.NotEmpty(t, got)
	require.NotEqual(t, Defaults(RoleOwner), got)
}

func TestDefaultsCoverEveryModule(t *testing.T) {
	for _, role := range []Role{RoleOwner, RoleManager, RoleStaff} {
		caps := Defaults(role)
		for _, module := range Modules() {
			_, ok := caps[module]
			require.True(t, ok, "role %s missing module %s", role, module)
		}
	}
}

func TestParseRole(t *testing.T) {
	require.Equal(t, RoleOwner, ParseRole(" Owner "))
	require.Equal(t, RoleManager, ParseRole("manager"))
	require.Equal(t, RoleStaff, ParseRole("waiter"))
	require.Equal(t, RoleStaff, ParseRole(""))
}

func TestValidRole(t *testing.T) {
	require.True(t, ValidRole("owner"))
	require.True(t, ValidRole("STAFF"))
	require.False(t, ValidRole("superadmin"))
}

func TestMergeIgnoresUnknownModules(t *testing.T) {
	base := Defaults(RoleStaff)
	merged := Merge(base, StaffPermissions{
		ModulePromotions: {View: true, Manage: true},
		Module("ghost"):  {View: true, Manage: true},
	})
	require.True(t, merged[ModulePromotions].Manage)
	_, ok := merged[Module("ghost")]
	require.False(t, ok)
	// Base untouched.
	require.False(t, base[ModulePromotions].View)
}
