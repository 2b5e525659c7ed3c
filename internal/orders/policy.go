package orders

import (
	"github.com/google/uuid"

	"github.com/gouravrajak985/project45/pkg/db/models"
	"github.com/gouravrajak985/project45/pkg/enums"
)

// Actor is the authenticated principal a policy decision is evaluated for.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
	Email  string
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// CanRead allows the order's buyer, a seller with at least one line item in
// the order, or an admin.
func CanRead(actor Actor, order *models.Order) bool {
	if order == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	if order.BuyerID == actor.UserID {
		return true
	}
	return sellsInOrder(actor.UserID, order)
}

// CanPay allows only the order's buyer on the interactive path. Webhook
// reconciliation bypasses this check entirely.
func CanPay(actor Actor, order *models.Order) bool {
	if order == nil {
		return false
	}
	return order.BuyerID == actor.UserID
}

// CanFulfill allows a seller with at least one line item in the order, or an
// admin, to mark delivery and advance shipping status.
func CanFulfill(actor Actor, order *models.Order) bool {
	if order == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return sellsInOrder(actor.UserID, order)
}

func sellsInOrder(userID uuid.UUID, order *models.Order) bool {
	for _, item := range order.Items {
		if item.SellerID == userID {
			return true
		}
	}
	return false
}
