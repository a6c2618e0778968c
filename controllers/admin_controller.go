package controllers

import (
	"net/http"

	"github.com/artvoid/artvoid-api/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetPasswordRequest represents the request body for setting the admin password
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	Password        string `json:"password" binding:"required"`
}

// VerifyPasswordRequest represents the request body for checking the admin password
type VerifyPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// SettingsRequest represents the request body for updating settings
type SettingsRequest struct {
	CommissionRate *float64 `json:"commission_rate" binding:"required"`
}

// RoleRequest represents the request body for changing a user's role
type RoleRequest struct {
	Role string `json:"role" binding:"required,oneof=customer emblos admin"`
}

// AdminController handles the admin password gate, settings and user roles
type AdminController struct {
	admin  *services.AdminService
	logger *zap.Logger
}

// NewAdminController creates an admin controller
func NewAdminController(admin *services.AdminService, logger *zap.Logger) *AdminController {
	return &AdminController{admin: admin, logger: orNop(logger)}
}

// PasswordStatus handles GET /api/v1/admin/password
func (ac *AdminController) PasswordStatus(c *gin.Context) {
	configured, err := ac.admin.PasswordConfigured(c.Request.Context())
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"configured": configured})
}

// SetPassword handles POST /api/v1/admin/password. Once a password exists
// the current one must be supplied.
func (ac *AdminController) SetPassword(c *gin.Context) {
	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := ac.admin.SetPassword(c.Request.Context(), req.CurrentPassword, req.Password); err != nil {
		respondError(c, ac.logger, err)
		return
	}

	ac.logger.Info("admin password updated")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Admin password updated",
	})
}

// VerifyPassword handles POST /api/v1/admin/verify
func (ac *AdminController) VerifyPassword(c *gin.Context) {
	var req VerifyPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	ok, err := ac.admin.VerifyPassword(c.Request.Context(), req.Password)
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetSettings handles GET /api/v1/admin/settings
func (ac *AdminController) GetSettings(c *gin.Context) {
	settings, err := ac.admin.Settings(c.Request.Context())
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}
	respondOK(c, http.StatusOK, settings)
}

// UpdateSettings handles PUT /api/v1/admin/settings
func (ac *AdminController) UpdateSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	settings, err := ac.admin.UpdateCommissionRate(c.Request.Context(), *req.CommissionRate)
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}
	respondOK(c, http.StatusOK, settings)
}

// ListUsers handles GET /api/v1/admin/users
func (ac *AdminController) ListUsers(c *gin.Context) {
	users, err := ac.admin.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}
	respondOK(c, http.StatusOK, users)
}

// UpdateRole handles PUT /api/v1/admin/users/:id/role
func (ac *AdminController) UpdateRole(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := ac.admin.UpdateRole(c.Request.Context(), id, req.Role)
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}

	respondOK(c, http.StatusOK, user)
}
