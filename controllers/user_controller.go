package controllers

import (
	"net/http"

	"github.com/artvoid/artvoid-api/middleware"
	"github.com/artvoid/artvoid-api/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UpdateUserRequest represents the request body for updating a user profile
type UpdateUserRequest struct {
	Name  string `json:"name" binding:"omitempty,max=200"`
	Email string `json:"email" binding:"omitempty,email"`
}

// RegisterRequest represents the request body for creating a local account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=200"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents the request body for a local sign in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LikesRequest carries the full sets of liked product and gallery ids
type LikesRequest struct {
	LikedProducts []uint `json:"liked_products"`
	LikedGallery  []uint `json:"liked_gallery"`
}

// UserController handles sign in and profile endpoints
type UserController struct {
	accounts *services.AccountService
	userInfo services.UserInfoFetcher
	logger   *zap.Logger
}

// NewUserController creates a user controller
func NewUserController(accounts *services.AccountService, userInfo services.UserInfoFetcher, logger *zap.Logger) *UserController {
	return &UserController{accounts: accounts, userInfo: userInfo, logger: orNop(logger)}
}

// GoogleAuth handles POST /api/v1/users/google-auth - creates the profile
// from Auth0 userinfo on first sign in, returns it afterwards
func (uc *UserController) GoogleAuth(c *gin.Context) {
	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		respondFailure(c, http.StatusUnauthorized, "MISSING_TOKEN", "Access token not found")
		return
	}

	// Fetch user info from Auth0
	info, err := uc.userInfo.GetUserInfo(c.Request.Context(), accessToken)
	if err != nil {
		uc.logger.Warn("auth0 userinfo request failed", zap.Error(err))
		respondFailure(c, http.StatusBadGateway, "AUTH0_ERROR", "Failed to fetch user information from Auth0")
		return
	}

	user, created, err := uc.accounts.SyncProfile(c.Request.Context(), info, middleware.ClaimedRole(c))
	if err != nil {
		respondError(c, uc.logger, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondOK(c, status, user)
}

// Register handles POST /api/v1/auth/register. The response is the new
// profile; authenticated routes still need an Auth0 token for its email.
func (uc *UserController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := uc.accounts.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, uc.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, user)
}

// Login handles POST /api/v1/auth/login and returns the matching profile
// without a token
func (uc *UserController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := uc.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, uc.logger, err)
		return
	}
	respondOK(c, http.StatusOK, user)
}

// GetMyProfile handles GET /api/v1/users/me
func (uc *UserController) GetMyProfile(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondFailure(c, http.StatusNotFound, "USER_NOT_FOUND", "User profile not found. Please create a profile first.")
		return
	}
	respondOK(c, http.StatusOK, user)
}

// UpdateMyProfile handles PUT /api/v1/users/me
func (uc *UserController) UpdateMyProfile(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondFailure(c, http.StatusNotFound, "USER_NOT_FOUND", "User profile not found")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	updated, err := uc.accounts.UpdateProfile(c.Request.Context(), user, req.Name, req.Email)
	if err != nil {
		respondError(c, uc.logger, err)
		return
	}
	respondOK(c, http.StatusOK, updated)
}

// UpdateLikes handles PUT /api/v1/users/:id/likes - self or admin
func (uc *UserController) UpdateLikes(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondFailure(c, http.StatusNotFound, "USER_NOT_FOUND", "User profile not found")
		return
	}

	var req LikesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	updated, err := uc.accounts.UpdateLikes(c.Request.Context(), user, id, req.LikedProducts, req.LikedGallery)
	if err != nil {
		respondError(c, uc.logger, err)
		return
	}
	respondOK(c, http.StatusOK, updated)
}
