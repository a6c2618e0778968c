package controllers

import (
	"net/http"
	"strings"

	"github.com/artvoid/artvoid-api/middleware"
	"github.com/artvoid/artvoid-api/models"
	"github.com/artvoid/artvoid-api/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SendMessageRequest represents the request body for leaving a contact message
type SendMessageRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"max=50"`
	Text  string `json:"text" binding:"required,max=5000"`
}

// MessageController handles contact and inquiry messages
type MessageController struct {
	messages repository.MessageRepository
	logger   *zap.Logger
}

// NewMessageController creates a message controller
func NewMessageController(messages repository.MessageRepository, logger *zap.Logger) *MessageController {
	return &MessageController{messages: messages, logger: orNop(logger)}
}

// SendMessage handles POST /api/v1/messages - guests allowed
func (mc *MessageController) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	message := models.Message{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
		Phone: strings.TrimSpace(req.Phone),
		Text:  strings.TrimSpace(req.Text),
	}
	if message.Name == "" || message.Text == "" {
		respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", "Name and text are required")
		return
	}
	if actor := middleware.GetActor(c); actor != nil {
		message.UserID = &actor.UserID
	}

	if err := mc.messages.Create(c.Request.Context(), &message); err != nil {
		respondError(c, mc.logger, err)
		return
	}

	mc.logger.Info("message received", zap.Uint("message_id", message.ID))
	c.PureJSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    message,
	})
}

// GetMessages handles GET /api/v1/messages (admin only) - newest first
func (mc *MessageController) GetMessages(c *gin.Context) {
	messages, err := mc.messages.List(c.Request.Context())
	if err != nil {
		respondError(c, mc.logger, err)
		return
	}

	c.PureJSON(http.StatusOK, gin.H{
		"success": true,
		"data":    messages,
		"count":   len(messages),
	})
}

// DeleteMessage handles DELETE /api/v1/messages/:id (admin only)
func (mc *MessageController) DeleteMessage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := mc.messages.Delete(c.Request.Context(), id); err != nil {
		respondError(c, mc.logger, err)
		return
	}

	c.PureJSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Message deleted",
	})
}
