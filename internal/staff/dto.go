package staff

import "github.com/mesa-hq/mesa/internal/permissions"

type InviteMemberRequest struct {
	Email     string                       `json:"email" validate:"required,email"`
	FullName  string                       `json:"full_name" validate:"required,min=1,max=120"`
	Role      string                       `json:"role" validate:"required"`
	Overrides permissions.StaffPermissions `json:"permission_overrides,omitempty"`
}

type UpdateMemberRequest struct {
	FullName  *string                      `json:"full_name,omitempty" validate:"omitempty,min=1,max=120"`
	Role      *string                      `json:"role,omitempty"`
	Overrides permissions.StaffPermissions `json:"permission_overrides,omitempty"`
	IsActive  *bool                        `json:"is_active,omitempty"`
}
