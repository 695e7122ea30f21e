// Package audit records mutating actions per restaurant for later security
// and operational review. Entries are append-only.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action is the closed set of recordable actions.
type Action string

const (
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionStatusChange Action = "status_change"
	ActionAdjust       Action = "adjust"
	ActionRedeem       Action = "redeem"
	ActionInvite       Action = "invite"
	ActionCancel       Action = "cancel"
)

// Entity is the closed set of auditable entity types.
type Entity string

const (
	EntityRestaurant  Entity = "restaurant"
	EntityCategory    Entity = "category"
	EntityMenuItem    Entity = "menu_item"
	EntityOrder       Entity = "order"
	EntityStockItem   Entity = "stock_item"
	EntityTable       Entity = "table"
	EntityReservation Entity = "reservation"
	EntityPromoCode   Entity = "promo_code"
	EntityGiftCard    Entity = "gift_card"
	EntityStaffMember Entity = "staff_member"
	EntitySettings    Entity = "settings"
)

var validActions = map[Action]struct{}{
	ActionCreate: {}, ActionUpdate: {}, ActionDelete: {}, ActionStatusChange: {},
	ActionAdjust: {}, ActionRedeem: {}, ActionInvite: {}, ActionCancel: {},
}

var validEntities = map[Entity]struct{}{
	EntityRestaurant: {}, EntityCategory: {}, EntityMenuItem: {}, EntityOrder: {},
	EntityStockItem: {}, EntityTable: {}, EntityReservation: {}, EntityPromoCode: {},
	EntityGiftCard: {}, EntityStaffMember: {}, EntitySettings: {},
}

// Entry is one immutable audit record.
type Entry struct {
	RestaurantID uuid.UUID
	UserID       int64
	UserEmail    string
	Action       Action
	EntityType   Entity
	EntityID     string
	Details      map[string]any
	CreatedAt    time.Time
}

// Valid reports whether the entry carries the required closed-set tags.
func (e Entry) Valid() bool {
	if e.RestaurantID == uuid.Nil || e.UserID == 0 {
		return false
	}
	if _, ok := validActions[e.Action]; !ok {
		return false
	}
	_, ok := validEntities[e.EntityType]
	return ok
}
