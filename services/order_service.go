package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/artvoid/artvoid-api/events"
	"github.com/artvoid/artvoid-api/lifecycle"
	"github.com/artvoid/artvoid-api/metrics"
	"github.com/artvoid/artvoid-api/models"
	"github.com/artvoid/artvoid-api/repository"
	"go.uber.org/zap"
)

// DefaultCommissionName is used for commission requests submitted without a title
const DefaultCommissionName = "Custom Commission"

// CreateOrderInput carries the fields a customer submits. ProductID selects a
// direct shop purchase; without it the order is a commission request.
type CreateOrderInput struct {
	ProductID     *uint
	GalleryItemID *uint
	ProductName   string
	Description   string
	Image         *string
	CustomerName  string
	Phone         string
	Email         string
	Address       string
}

// OrderService runs the commission lifecycle against storage and pushes
// every change to the event publisher.
type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	gallery   repository.GalleryRepository
	settings  repository.SettingsRepository
	users     repository.UserRepository
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderService wires the order lifecycle to its dependencies
func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	gallery repository.GalleryRepository,
	settings repository.SettingsRepository,
	users repository.UserRepository,
	publisher events.Publisher,
	logger *zap.Logger,
) *OrderService {
	if publisher == nil {
		publisher = events.Discard{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders:    orders,
		products:  products,
		gallery:   gallery,
		settings:  settings,
		users:     users,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateOrder places a shop purchase or a commission request. Guests (nil
// actor) may order; their orders carry no customer id.
func (s *OrderService) CreateOrder(ctx context.Context, actor *lifecycle.Actor, in CreateOrderInput) (*models.Order, error) {
	order := &models.Order{
		Description:    strings.TrimSpace(in.Description),
		Image:          in.Image,
		CustomerName:   strings.TrimSpace(in.CustomerName),
		Phone:          strings.TrimSpace(in.Phone),
		Email:          strings.TrimSpace(in.Email),
		Address:        strings.TrimSpace(in.Address),
		Status:         models.StatusPending,
		DeliveryStatus: models.DeliveryPending,
		Date:           s.now().Format("Jan 2, 2006"),
	}
	if err := validateContact(order); err != nil {
		return nil, err
	}
	if actor != nil {
		customerID := actor.UserID
		order.CustomerID = &customerID
	}

	kind := "commission"
	if in.ProductID != nil {
		kind = "shop"
		if err := s.fillFromProduct(ctx, order, *in.ProductID); err != nil {
			return nil, s.fail("create_order", err)
		}
	} else {
		order.ProductName = strings.TrimSpace(in.ProductName)
		if in.GalleryItemID != nil {
			if err := s.fillFromGallery(ctx, order, *in.GalleryItemID); err != nil {
				return nil, s.fail("create_order", err)
			}
		}
		if order.ProductName == "" {
			order.ProductName = DefaultCommissionName
		}
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, s.fail("create_order", err)
	}

	created, err := s.orders.Get(ctx, order.ID)
	if err != nil {
		return nil, s.fail("create_order", err)
	}

	metrics.OrdersCreatedTotal.WithLabelValues(kind).Inc()
	s.logger.Info("order created",
		zap.Uint("order_id", created.ID),
		zap.String("kind", kind),
		zap.Bool("guest", actor == nil),
	)
	s.publish(ctx, events.NewEvent(events.OrderCreated, created.ID, created))
	return created, nil
}

// fillFromProduct copies the catalog entry onto a shop order. The price is
// already agreed, so the order starts Approved with its commission split.
func (s *OrderService) fillFromProduct(ctx context.Context, order *models.Order, productID uint) error {
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &lifecycle.Error{Code: lifecycle.CodeValidation, Message: "Product not found"}
		}
		return err
	}

	rate, err := s.commissionRate(ctx)
	if err != nil {
		return err
	}

	price := product.Price
	admin, artist := lifecycle.SplitCommission(price, rate)
	order.ProductID = &product.ID
	order.ProductName = product.Name
	order.CreatorID = product.CreatorID
	order.Price = &price
	order.CommissionRate = &rate
	order.AdminCommission = &admin
	order.ArtistEarnings = &artist
	order.Status = models.StatusApproved
	if order.Image == nil {
		order.Image = product.ImageKey
	}
	return nil
}

// fillFromGallery addresses a "commission something like this" request to the
// artist who made the piece. The artist still has to quote a price.
func (s *OrderService) fillFromGallery(ctx context.Context, order *models.Order, itemID uint) error {
	item, err := s.gallery.Get(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &lifecycle.Error{Code: lifecycle.CodeValidation, Message: "Gallery item not found"}
		}
		return err
	}

	order.GalleryItemID = &item.ID
	order.CreatorID = item.CreatorID
	if order.ProductName == "" {
		order.ProductName = "Commission: " + item.Title
	}
	if order.Image == nil {
		order.Image = item.ImageKey
	}
	return nil
}

// ListOrders returns the orders visible on the actor's dashboard
func (s *OrderService) ListOrders(ctx context.Context, actor *lifecycle.Actor) ([]models.Order, error) {
	if actor == nil {
		return nil, lifecycle.ErrForbidden
	}

	// artists also place orders, so non-admins see both sides
	filter := repository.OrderFilter{}
	if !actor.IsAdmin() {
		filter.ParticipantID = &actor.UserID
	}

	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, s.fail("list_orders", err)
	}
	return orders, nil
}

// OpenTasks lists unclaimed commission requests
func (s *OrderService) OpenTasks(ctx context.Context, actor *lifecycle.Actor) ([]models.Order, error) {
	if !actor.IsAdmin() && !actor.IsEmblos() {
		return nil, lifecycle.ErrForbidden
	}

	orders, err := s.orders.List(ctx, repository.OrderFilter{OpenOnly: true})
	if err != nil {
		return nil, s.fail("open_tasks", err)
	}
	return orders, nil
}

// GetOrder returns one order the actor may see
func (s *OrderService) GetOrder(ctx context.Context, actor *lifecycle.Actor, id uint) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanTransition(actor, order, lifecycle.TransitionView) {
		return nil, lifecycle.ErrForbidden
	}
	return order, nil
}

// ClaimOrder assigns an open task with a quote. Admins may name another
// artist through assigneeID.
func (s *OrderService) ClaimOrder(ctx context.Context, actor *lifecycle.Actor, id uint, q lifecycle.Quote, assigneeID *uint) (*models.Order, error) {
	if assigneeID != nil && actor.IsAdmin() {
		assignee, err := s.users.FindByID(ctx, *assigneeID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, &lifecycle.Error{Code: lifecycle.CodeValidation, Message: "Assignee not found"}
			}
			return nil, s.fail("claim_order", err)
		}
		if assignee.Role != models.RoleEmblos && assignee.Role != models.RoleAdmin {
			return nil, &lifecycle.Error{Code: lifecycle.CodeValidation, Message: "Assignee must be an artist or an admin"}
		}
	}

	rate, err := s.commissionRate(ctx)
	if err != nil {
		return nil, s.fail("claim_order", err)
	}

	return s.mutate(ctx, actor, id, lifecycle.TransitionClaim, events.OrderClaimed, func(order *models.Order) (bool, error) {
		return lifecycle.ApplyClaim(order, actor, q, assigneeID, rate)
	})
}

// SubmitOrderPrice records the assigned artist's quote
func (s *OrderService) SubmitOrderPrice(ctx context.Context, actor *lifecycle.Actor, id uint, q lifecycle.Quote) (*models.Order, error) {
	rate, err := s.commissionRate(ctx)
	if err != nil {
		return nil, s.fail("submit_price", err)
	}

	return s.mutate(ctx, actor, id, lifecycle.TransitionSubmitPrice, events.OrderPriceSubmitted, func(order *models.Order) (bool, error) {
		return lifecycle.ApplyPriceSubmission(order, actor, q, rate)
	})
}

// ApproveOrderPrice locks the submitted price
func (s *OrderService) ApproveOrderPrice(ctx context.Context, actor *lifecycle.Actor, id uint) (*models.Order, error) {
	return s.mutate(ctx, actor, id, lifecycle.TransitionApprove, events.OrderApproved, func(order *models.Order) (bool, error) {
		if err := lifecycle.ApplyApproval(order, actor); err != nil {
			return false, err
		}
		return true, nil
	})
}

// UpdateDeliveryStatus advances delivery toward Completed
func (s *OrderService) UpdateDeliveryStatus(ctx context.Context, actor *lifecycle.Actor, id uint, next string) (*models.Order, error) {
	return s.mutate(ctx, actor, id, lifecycle.TransitionAdvanceDelivery, events.OrderDeliveryUpdated, func(order *models.Order) (bool, error) {
		return lifecycle.ApplyDelivery(order, actor, next)
	})
}

// UnassignOrder returns a claimed commission to the open-task pool
func (s *OrderService) UnassignOrder(ctx context.Context, actor *lifecycle.Actor, id uint) (*models.Order, error) {
	return s.mutate(ctx, actor, id, lifecycle.TransitionUnassign, events.OrderUnassigned, func(order *models.Order) (bool, error) {
		return lifecycle.ApplyUnassign(order, actor)
	})
}

// DeleteOrder removes an order from every view
func (s *OrderService) DeleteOrder(ctx context.Context, actor *lifecycle.Actor, id uint) error {
	order, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !lifecycle.CanTransition(actor, order, lifecycle.TransitionDelete) {
		return lifecycle.ErrForbidden
	}

	if err := s.orders.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return lifecycle.ErrNotFound
		}
		return s.fail("delete_order", err)
	}

	metrics.OrderTransitionsTotal.WithLabelValues(string(lifecycle.TransitionDelete)).Inc()
	s.logTransition(order.ID, actor, lifecycle.TransitionDelete)
	s.publish(ctx, events.NewEvent(events.OrderDeleted, order.ID, order))
	return nil
}

// mutate loads the order, applies one transition and writes it back under
// the version it was read at. Losing a concurrent race yields ErrConflict.
func (s *OrderService) mutate(
	ctx context.Context,
	actor *lifecycle.Actor,
	id uint,
	transition lifecycle.Transition,
	eventType string,
	apply func(*models.Order) (bool, error),
) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	version := order.Version
	changed, err := apply(order)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues(string(transition)).Inc()
		return nil, err
	}
	if !changed {
		return order, nil
	}

	if err := s.orders.Update(ctx, order, version); err != nil {
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			metrics.OperationErrorsTotal.WithLabelValues(string(transition)).Inc()
			s.logger.Warn("order changed concurrently",
				zap.Uint("order_id", id),
				zap.String("transition", string(transition)),
			)
			return nil, lifecycle.ErrConflict
		case errors.Is(err, repository.ErrNotFound):
			return nil, lifecycle.ErrNotFound
		}
		return nil, s.fail(string(transition), err)
	}

	updated, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, s.fail(string(transition), err)
	}

	metrics.OrderTransitionsTotal.WithLabelValues(string(transition)).Inc()
	s.logTransition(id, actor, transition)
	s.publish(ctx, events.NewEvent(eventType, id, updated))
	return updated, nil
}

func (s *OrderService) load(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, lifecycle.ErrNotFound
		}
		return nil, s.fail("load_order", err)
	}
	return order, nil
}

func (s *OrderService) commissionRate(ctx context.Context) (float64, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load commission rate: %w", err)
	}
	return settings.CommissionRate, nil
}

// publish never fails the caller; delivery problems are only logged
func (s *OrderService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("publish_event").Inc()
		s.logger.Error("failed to publish order event",
			zap.String("type", event.Type),
			zap.Uint("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}

func (s *OrderService) logTransition(orderID uint, actor *lifecycle.Actor, transition lifecycle.Transition) {
	fields := []zap.Field{
		zap.Uint("order_id", orderID),
		zap.String("transition", string(transition)),
	}
	if actor != nil {
		fields = append(fields, zap.Uint("actor_id", actor.UserID), zap.String("role", actor.Role))
	}
	s.logger.Info("order transition", fields...)
}

// fail counts and logs unexpected errors. Lifecycle errors pass through
// untouched.
func (s *OrderService) fail(operation string, err error) error {
	var lerr *lifecycle.Error
	if errors.As(err, &lerr) {
		return err
	}
	metrics.OperationErrorsTotal.WithLabelValues(operation).Inc()
	s.logger.Error("order operation failed", zap.String("operation", operation), zap.Error(err))
	return fmt.Errorf("%s: %w", operation, err)
}

func validateContact(order *models.Order) error {
	var missing []string
	if order.CustomerName == "" {
		missing = append(missing, "name")
	}
	if order.Phone == "" {
		missing = append(missing, "phone")
	}
	if order.Email == "" {
		missing = append(missing, "email")
	}
	if order.Address == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return &lifecycle.Error{
			Code:    lifecycle.CodeValidation,
			Message: "Missing required fields: " + strings.Join(missing, ", "),
		}
	}
	if !strings.Contains(order.Email, "@") {
		return &lifecycle.Error{Code: lifecycle.CodeValidation, Message: "Email address is invalid"}
	}
	return nil
}
