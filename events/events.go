// Package events broadcasts order changes to live subscribers and, when
// configured, to a Kafka topic.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/artvoid/artvoid-api/models"
)

// Event types
const (
	OrderCreated         = "order.created"
	OrderClaimed         = "order.claimed"
	OrderPriceSubmitted  = "order.price_submitted"
	OrderApproved        = "order.approved"
	OrderDeliveryUpdated = "order.delivery_updated"
	OrderUnassigned      = "order.unassigned"
	OrderDeleted         = "order.deleted"
)

// Event describes one change to an order. Order is the state after the
// change; for deletions it is the last stored state.
type Event struct {
	Type    string        `json:"type"`
	OrderID uint          `json:"order_id"`
	Order   *models.Order `json:"order,omitempty"`
	At      time.Time     `json:"at"`
}

// NewEvent stamps an event for the given order
func NewEvent(eventType string, orderID uint, order *models.Order) Event {
	return Event{Type: eventType, OrderID: orderID, Order: order, At: time.Now().UTC()}
}

// Publisher delivers events to interested parties
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Multi fans an event out to several publishers
type Multi []Publisher

// Publish delivers to every publisher and joins their errors
func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every event
type Discard struct{}

func (Discard) Publish(context.Context, Event) error { return nil }
