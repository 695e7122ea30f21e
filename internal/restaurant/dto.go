package restaurant

// CreateRestaurantRequest registers a new tenant and binds it to the caller.
type CreateRestaurantRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Currency string `json:"currency" validate:"required,len=3,alpha"`
	Timezone string `json:"timezone" validate:"required,max=64"`
}

// UpdateSettingsRequest mutates tenant-level settings.
type UpdateSettingsRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Currency *string `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	Timezone *string `json:"timezone,omitempty" validate:"omitempty,max=64"`
}
