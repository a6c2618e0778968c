package lifecycle

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/artvoid/artvoid-api/models"
)

// Bounds on an artist's delivery commitment
const (
	MinEstimatedDays = 1
	MaxEstimatedDays = 30
)

// Quote is a proposed price and delivery estimate
type Quote struct {
	Price         float64
	EstimatedDays int
}

// ParseQuote parses raw price and day values as submitted by a client form
func ParseQuote(price, days string) (Quote, error) {
	p, err := strconv.ParseFloat(strings.TrimSpace(price), 64)
	if err != nil {
		return Quote{}, validationError("Price must be a positive number")
	}
	d, err := strconv.Atoi(strings.TrimSpace(days))
	if err != nil {
		return Quote{}, validationError(fmt.Sprintf("Estimated days must be a whole number between %d and %d", MinEstimatedDays, MaxEstimatedDays))
	}
	q := Quote{Price: p, EstimatedDays: d}
	if err := ValidateQuote(q); err != nil {
		return Quote{}, err
	}
	return q, nil
}

// ValidateQuote checks price > 0 and estimated days within bounds
func ValidateQuote(q Quote) error {
	if math.IsNaN(q.Price) || math.IsInf(q.Price, 0) || q.Price <= 0 {
		return validationError("Price must be a positive number")
	}
	if q.EstimatedDays < MinEstimatedDays || q.EstimatedDays > MaxEstimatedDays {
		return validationError(fmt.Sprintf("Estimated days must be a whole number between %d and %d", MinEstimatedDays, MaxEstimatedDays))
	}
	return nil
}

// SplitCommission divides price into the platform's share and the artist's
// share. The artist share absorbs rounding so the two always sum to price.
func SplitCommission(price, rate float64) (adminCommission, artistEarnings float64) {
	adminCommission = round2(price * rate / 100)
	artistEarnings = price - adminCommission
	return adminCommission, artistEarnings
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ApplyClaim assigns an open task to the caller, or to assigneeID when an
// admin force-assigns, and records the quote. An artist's claim waits for
// admin approval; an admin's claim is itself the approval. It returns
// false when the order already reflects the claim.
func ApplyClaim(order *models.Order, actor *Actor, q Quote, assigneeID *uint, rate float64) (bool, error) {
	if err := ValidateQuote(q); err != nil {
		return false, err
	}
	if actor == nil {
		return false, ErrForbidden
	}
	if order.IsShopOrder() {
		return false, ErrNotOpenTask
	}

	assignee := actor.UserID
	if assigneeID != nil {
		if !actor.IsAdmin() {
			return false, ErrForbidden
		}
		assignee = *assigneeID
	}

	status := models.StatusPriceSubmitted
	if actor.IsAdmin() {
		status = models.StatusApproved
	}

	// checked before the price lock: an admin's claim leaves the order approved
	if order.CreatorID != nil && *order.CreatorID == assignee && order.Status == status && sameQuote(order, q) {
		return false, nil
	}

	if order.Status == models.StatusApproved {
		return false, ErrPriceLocked
	}
	if !actor.IsAdmin() && order.CreatorID != nil && *order.CreatorID != actor.UserID {
		return false, ErrAlreadyClaimed
	}
	if !CanTransition(actor, order, TransitionClaim) {
		return false, ErrForbidden
	}

	order.CreatorID = &assignee
	order.Creator = nil
	setQuote(order, q, rate)
	order.Status = status
	return true, nil
}

// ApplyPriceSubmission records the owning artist's quote on an order that
// was addressed to them. Re-quoting is allowed until the admin approves.
func ApplyPriceSubmission(order *models.Order, actor *Actor, q Quote, rate float64) (bool, error) {
	if err := ValidateQuote(q); err != nil {
		return false, err
	}
	if order.Status == models.StatusApproved {
		return false, ErrPriceLocked
	}
	if !CanTransition(actor, order, TransitionSubmitPrice) {
		return false, ErrForbidden
	}
	if order.CreatorID == nil {
		return false, &Error{Code: CodeInvalidTransition, Message: "Open tasks must be claimed before a price is submitted"}
	}

	if order.Status == models.StatusPriceSubmitted && sameQuote(order, q) {
		return false, nil
	}

	setQuote(order, q, rate)
	order.Status = models.StatusPriceSubmitted
	return true, nil
}

// ApplyApproval moves a priced order to Approved, after which its price is
// immutable.
func ApplyApproval(order *models.Order, actor *Actor) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	if order.Status != models.StatusPriceSubmitted || order.Price == nil {
		return &Error{Code: CodeInvalidTransition, Message: fmt.Sprintf("Only orders with status %q can be approved", models.StatusPriceSubmitted)}
	}
	order.Status = models.StatusApproved
	return nil
}

var deliveryRank = map[string]int{
	models.DeliveryPending:   0,
	models.DeliveryShipped:   1,
	models.DeliveryCompleted: 2,
}

// ValidDeliveryStatus reports whether s is a known delivery status
func ValidDeliveryStatus(s string) bool {
	_, ok := deliveryRank[s]
	return ok
}

// ApplyDelivery advances the delivery status. Progress is forward only and
// requires an approved price; repeating the current status is a no-op.
func ApplyDelivery(order *models.Order, actor *Actor, next string) (bool, error) {
	nextRank, ok := deliveryRank[next]
	if !ok {
		return false, validationError("Delivery status must be one of Pending, Shipped, Completed")
	}
	if !CanTransition(actor, order, TransitionAdvanceDelivery) {
		return false, ErrForbidden
	}
	if order.Status != models.StatusApproved {
		return false, &Error{Code: CodeInvalidTransition, Message: "Delivery can only progress once the price is approved"}
	}

	current := deliveryRank[order.DeliveryStatus]
	if nextRank == current {
		return false, nil
	}
	if nextRank < current {
		return false, &Error{Code: CodeInvalidTransition, Message: fmt.Sprintf("Delivery status cannot go back from %s to %s", order.DeliveryStatus, next)}
	}

	order.DeliveryStatus = next
	return true, nil
}

// ApplyUnassign returns a claimed commission to the open-task pool, clearing
// the quote and commission snapshot with it.
func ApplyUnassign(order *models.Order, actor *Actor) (bool, error) {
	if !CanTransition(actor, order, TransitionUnassign) {
		return false, ErrForbidden
	}
	if order.IsShopOrder() {
		return false, ErrNotOpenTask
	}
	if order.Status == models.StatusApproved {
		return false, ErrPriceLocked
	}
	if order.CreatorID == nil {
		return false, nil
	}

	order.CreatorID = nil
	order.Creator = nil
	order.Price = nil
	order.EstimatedDays = nil
	order.CommissionRate = nil
	order.AdminCommission = nil
	order.ArtistEarnings = nil
	order.Status = models.StatusPending
	order.DeliveryStatus = models.DeliveryPending
	return true, nil
}

func sameQuote(order *models.Order, q Quote) bool {
	return order.Price != nil && *order.Price == q.Price &&
		order.EstimatedDays != nil && *order.EstimatedDays == q.EstimatedDays
}

func setQuote(order *models.Order, q Quote, rate float64) {
	price, days, r := q.Price, q.EstimatedDays, rate
	admin, artist := SplitCommission(price, rate)
	order.Price = &price
	order.EstimatedDays = &days
	order.CommissionRate = &r
	order.AdminCommission = &admin
	order.ArtistEarnings = &artist
}
