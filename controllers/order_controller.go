package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/artvoid/artvoid-api/events"
	"github.com/artvoid/artvoid-api/lifecycle"
	"github.com/artvoid/artvoid-api/middleware"
	"github.com/artvoid/artvoid-api/models"
	"github.com/artvoid/artvoid-api/services"
	"github.com/artvoid/artvoid-api/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HeartbeatInterval keeps idle event streams open through proxies
var HeartbeatInterval = 25 * time.Second

// CreateOrderRequest represents the request body for creating an order.
// Multipart requests may attach the reference image as the "image" file.
type CreateOrderRequest struct {
	ProductID     *uint   `json:"product_id" form:"product_id"`
	GalleryItemID *uint   `json:"gallery_item_id" form:"gallery_item_id"`
	ProductName   string  `json:"product_name" form:"product_name" binding:"max=200"`
	Description   string  `json:"description" form:"description" binding:"max=5000"`
	Image         *string `json:"image" form:"image_key"`
	Customer      string  `json:"customer" form:"customer" binding:"required,max=200"`
	Phone         string  `json:"phone" form:"phone" binding:"required,max=50"`
	Email         string  `json:"email" form:"email" binding:"required,email"`
	Address       string  `json:"address" form:"address" binding:"required,max=1000"`
}

// QuoteRequest carries a price and delivery estimate. Both accept JSON
// numbers or numeric strings.
type QuoteRequest struct {
	Price         json.Number `json:"price" binding:"required"`
	EstimatedDays json.Number `json:"estimated_days" binding:"required"`
	AssigneeID    *uint       `json:"assignee_id"`
}

// DeliveryRequest represents the request body for advancing delivery
type DeliveryRequest struct {
	DeliveryStatus string `json:"delivery_status" binding:"required,oneof=Pending Shipped Completed"`
}

// EventSource is where the order stream reads live changes from
type EventSource interface {
	Subscribe(ctx context.Context) <-chan events.Event
}

// OrderController exposes the order lifecycle over HTTP
type OrderController struct {
	orders *services.OrderService
	images services.ImageService
	events EventSource
	logger *zap.Logger
}

// NewOrderController creates an order controller
func NewOrderController(orders *services.OrderService, images services.ImageService, source EventSource, logger *zap.Logger) *OrderController {
	return &OrderController{orders: orders, images: images, events: source, logger: orNop(logger)}
}

// CreateOrder handles POST /api/v1/orders - shop purchase or commission request, guests allowed
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBind(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if fileHeader, err := c.FormFile("image"); err == nil {
		if err := utils.ValidateImageFile(fileHeader); err != nil {
			respondError(c, oc.logger, err)
			return
		}
		key, err := oc.images.UploadImage(c.Request.Context(), fileHeader)
		if err != nil {
			respondError(c, oc.logger, err)
			return
		}
		req.Image = &key
	}

	order, err := oc.orders.CreateOrder(c.Request.Context(), middleware.GetActor(c), services.CreateOrderInput{
		ProductID:     req.ProductID,
		GalleryItemID: req.GalleryItemID,
		ProductName:   req.ProductName,
		Description:   req.Description,
		Image:         req.Image,
		CustomerName:  req.Customer,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
	})
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, oc.withImage(c, order))
}

// ListOrders handles GET /api/v1/orders - the caller's dashboard
func (oc *OrderController) ListOrders(c *gin.Context) {
	orders, err := oc.orders.ListOrders(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	respondOK(c, http.StatusOK, oc.withImages(c, orders))
}

// OpenTasks handles GET /api/v1/orders/open - unclaimed commission requests
func (oc *OrderController) OpenTasks(c *gin.Context) {
	orders, err := oc.orders.OpenTasks(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	respondOK(c, http.StatusOK, oc.withImages(c, orders))
}

// GetOrder handles GET /api/v1/orders/:id
func (oc *OrderController) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := oc.orders.GetOrder(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	respondOK(c, http.StatusOK, oc.withImage(c, order))
}

// ClaimOrder handles POST /api/v1/orders/:id/claim
func (oc *OrderController) ClaimOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	quote, req, ok := oc.bindQuote(c)
	if !ok {
		return
	}

	order, err := oc.orders.ClaimOrder(c.Request.Context(), middleware.GetActor(c), id, quote, req.AssigneeID)
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	respondOK(c, http.StatusOK, oc.withImage(c, order))
}

// SubmitPrice handles POST /api/v1/orders/:id/price
func (oc *OrderController) SubmitPrice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	quote, _, ok := oc.bindQuote(c)
	if !ok {
		return
	}

	order, err := oc.orders.SubmitOrderPrice(c.Request.Context(), middleware.GetActor(c), id, quote)
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	respondOK(c, http.StatusOK, oc.withImage(c, order))
}

// ApprovePrice handles POST /api/v1/orders/:id/approve
func (oc *OrderController) ApprovePrice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := oc.orders.ApproveOrderPrice(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	respondOK(c, http.StatusOK, oc.withImage(c, order))
}

// UpdateDelivery handles PUT /api/v1/orders/:id/delivery
func (oc *OrderController) UpdateDelivery(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req DeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	order, err := oc.orders.UpdateDeliveryStatus(c.Request.Context(), middleware.GetActor(c), id, req.DeliveryStatus)
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	respondOK(c, http.StatusOK, oc.withImage(c, order))
}

// UnassignOrder handles POST /api/v1/orders/:id/unassign
func (oc *OrderController) UnassignOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := oc.orders.UnassignOrder(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	respondOK(c, http.StatusOK, oc.withImage(c, order))
}

// DeleteOrder handles DELETE /api/v1/orders/:id
func (oc *OrderController) DeleteOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := oc.orders.DeleteOrder(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, oc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order deleted",
	})
}

// Stream handles GET /api/v1/orders/stream - Server-Sent Events of the
// order changes the caller is allowed to see
func (oc *OrderController) Stream(c *gin.Context) {
	actor := middleware.GetActor(c)
	ctx := c.Request.Context()
	feed := oc.events.Subscribe(ctx)

	heartbeat := time.NewTicker(HeartbeatInterval)
	defer heartbeat.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"subscribed": true})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-heartbeat.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		case ev, ok := <-feed:
			if !ok {
				return false
			}
			if visible, ok := visibleEvent(actor, ev); ok {
				visible.Order = oc.withImage(c, visible.Order)
				c.SSEvent(visible.Type, visible)
			}
			return true
		}
	})
}

// visibleEvent decides what, if anything, of ev the actor may receive.
// Artists who can no longer see a claimed task still learn that it left the
// pool, without its details.
func visibleEvent(actor *lifecycle.Actor, ev events.Event) (events.Event, bool) {
	if ev.Order == nil {
		return ev, actor.IsAdmin()
	}
	if lifecycle.CanTransition(actor, ev.Order, lifecycle.TransitionView) {
		copied := *ev.Order
		ev.Order = &copied
		return ev, true
	}
	if actor.IsEmblos() && ev.Type == events.OrderClaimed {
		return events.Event{Type: ev.Type, OrderID: ev.OrderID, At: ev.At}, true
	}
	return events.Event{}, false
}

func (oc *OrderController) bindQuote(c *gin.Context) (lifecycle.Quote, QuoteRequest, bool) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return lifecycle.Quote{}, req, false
	}

	quote, err := lifecycle.ParseQuote(req.Price.String(), req.EstimatedDays.String())
	if err != nil {
		respondError(c, oc.logger, err)
		return lifecycle.Quote{}, req, false
	}
	return quote, req, true
}

func (oc *OrderController) withImage(c *gin.Context, order *models.Order) *models.Order {
	if order != nil {
		order.ImageURL = services.ResolveImageURL(c.Request.Context(), oc.images, order.Image)
	}
	return order
}

func (oc *OrderController) withImages(c *gin.Context, orders []models.Order) []models.Order {
	for i := range orders {
		oc.withImage(c, &orders[i])
	}
	return orders
}
