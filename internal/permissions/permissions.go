// Package permissions defines the static role to capability mapping consulted
// by operation guards. It is advisory metadata: each operation checks the
// relevant bit before acting, the package itself enforces nothing.
package permissions

import "strings"

// Role is the closed set of staff roles.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// Module enumerates the application areas a capability applies to.
type Module string

const (
	ModuleOrders       Module = "orders"
	ModuleKitchen      Module = "kitchen"
	ModuleMenu         Module = "menu"
	ModuleInventory    Module = "inventory"
	ModuleReservations Module = "reservations"
	ModuleCustomers    Module = "customers"
	ModuleReviews      Module = "reviews"
	ModulePromotions   Module = "promotions"
	ModuleAnalytics    Module = "analytics"
	ModuleStaff        Module = "staff"
	ModuleSettings     Module = "settings"
	ModuleBilling      Module = "billing"
)

// Modules lists every defined module in stable order.
func Modules() []Module {
	return []Module{
		ModuleOrders,
		ModuleKitchen,
		ModuleMenu,
		ModuleInventory,
		ModuleReservations,
		ModuleCustomers,
		ModuleReviews,
		ModulePromotions,
		ModuleAnalytics,
		ModuleStaff,
		ModuleSettings,
		ModuleBilling,
	}
}

// Capability carries the independent view/manage bits for one module.
// Manage does not imply view; both are modeled explicitly.
type Capability struct {
	View   bool `json:"view"`
	Manage bool `json:"manage"`
}

// StaffPermissions maps every module to its capability pair.
type StaffPermissions map[Module]Capability

// ParseRole normalizes a role string to the closed Role set. Unknown values
// map to RoleStaff, the most restrictive preset.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleOwner:
		return RoleOwner
	case RoleManager:
		return RoleManager
	default:
		return RoleStaff
	}
}

// ValidRole reports whether raw names a defined role exactly.
func ValidRole(raw string) bool {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleOwner, RoleManager, RoleStaff:
		return true
	}
	return false
}

// Defaults returns the preset capability table for a role. The result is a
// fresh copy on every call so callers may mutate it when applying overrides.
func Defaults(role Role) StaffPermissions {
	preset, ok := presets[role]
	if !ok {
		preset = presets[RoleStaff]
	}
	out := make(StaffPermissions, len(preset))
	for module, capability := range preset {
		out[module] = capability
	}
	return out
}

// Merge overlays per-staff overrides on top of a preset. Unknown module keys
// in the overrides are ignored.
func Merge(base StaffPermissions, overrides StaffPermissions) StaffPermissions {
	out := make(StaffPermissions, len(base))
	for module, capability := range base {
		out[module] = capability
	}
	for module, capability := range overrides {
		if _, defined := presets[RoleOwner][module]; !defined {
			continue
		}
		out[module] = capability
	}
	return out
}

var presets = map[Role]StaffPermissions{
	RoleOwner: {
		ModuleOrders:       {View: true, Manage: true},
		ModuleKitchen:      {View: true, Manage: true},
		ModuleMenu:         {View: true, Manage: true},
		ModuleInventory:    {View: true, Manage: true},
		ModuleReservations: {View: true, Manage: true},
		ModuleCustomers:    {View: true, Manage: true},
		ModuleReviews:      {View: true, Manage: true},
		ModulePromotions:   {View: true, Manage: true},
		ModuleAnalytics:    {View: true, Manage: true},
		ModuleStaff:        {View: true, Manage: true},
		ModuleSettings:     {View: true, Manage: true},
		ModuleBilling:      {View: true, Manage: true},
	},
	RoleManager: {
		ModuleOrders:       {View: true, Manage: true},
		ModuleKitchen:      {View: true, Manage: true},
		ModuleMenu:         {View: true, Manage: true},
		ModuleInventory:    {View: true, Manage: true},
		ModuleReservations: {View: true, Manage: true},
		ModuleCustomers:    {View: true, Manage: true},
		ModuleReviews:      {View: true, Manage: true},
		ModulePromotions:   {View: true, Manage: true},
		ModuleAnalytics:    {View: true, Manage: false},
		ModuleStaff:        {View: true, Manage: false},
		ModuleSettings:     {View: true, Manage: false},
		ModuleBilling:      {View: false, Manage: false},
	},
	RoleStaff: {
		ModuleOrders:       {View: true, Manage: true},
		ModuleKitchen:      {View: true, Manage: false},
		ModuleMenu:         {View: true, Manage: false},
		ModuleInventory:    {View: true, Manage: false},
		ModuleReservations: {View: true, Manage: true},
		ModuleCustomers:    {View: true, Manage: false},
		ModuleReviews:      {View: false, Manage: false},
		ModulePromotions:   {View: false, Manage: false},
		ModuleAnalytics:    {View: false, Manage: false},
		ModuleStaff:        {View: false, Manage: false},
		ModuleSettings:     {View: false, Manage: false},
		ModuleBilling:      {View: false, Manage: false},
	},
}
