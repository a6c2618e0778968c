// Package lifecycle holds the commission-order state machine and the single
// authorization policy every order mutation goes through.
package lifecycle

import "github.com/artvoid/artvoid-api/models"

// Actor is an authenticated caller. A nil *Actor is a guest.
type Actor struct {
	UserID uint
	Role   string
}

// IsAdmin reports whether the actor is an administrator
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == models.RoleAdmin
}

// IsEmblos reports whether the actor is an approved artist
func (a *Actor) IsEmblos() bool {
	return a != nil && a.Role == models.RoleEmblos
}

// Transition names an operation on an order
type Transition string

const (
	TransitionView            Transition = "view"
	TransitionClaim           Transition = "claim"
	TransitionSubmitPrice     Transition = "submit_price"
	TransitionApprove         Transition = "approve"
	TransitionAdvanceDelivery Transition = "advance_delivery"
	TransitionUnassign        Transition = "unassign"
	TransitionDelete          Transition = "delete"
)

// CanTransition decides whether actor may perform t on order. It only answers
// "who"; whether the order's current state allows t is checked by the Apply
// functions.
func CanTransition(actor *Actor, order *models.Order, t Transition) bool {
	if actor == nil || order == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}

	owns := isCreator(actor, order)
	switch t {
	case TransitionView:
		return owns || isCustomer(actor, order) || (actor.IsEmblos() && order.IsOpenTask())
	case TransitionClaim:
		return actor.IsEmblos() && (order.IsOpenTask() || owns)
	case TransitionSubmitPrice, TransitionAdvanceDelivery:
		return actor.IsEmblos() && owns
	case TransitionDelete:
		return isCustomer(actor, order)
	}
	return false
}

func isCreator(actor *Actor, order *models.Order) bool {
	return order.CreatorID != nil && *order.CreatorID == actor.UserID
}

func isCustomer(actor *Actor, order *models.Order) bool {
	return order.CustomerID != nil && *order.CustomerID == actor.UserID
}
