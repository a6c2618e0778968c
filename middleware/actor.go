package middleware

import (
	"errors"
	"net/http"

	"github.com/artvoid/artvoid-api/lifecycle"
	"github.com/artvoid/artvoid-api/models"
	"github.com/artvoid/artvoid-api/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextActor = "actor"
	ContextUser  = "current_user"
)

// ResolveActor loads the local profile for an authenticated subject and
// stores it, together with the lifecycle actor, in the context. Requests
// without a subject, or whose subject has no profile yet, continue as guests.
func ResolveActor(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth0ID, err := GetUserID(c)
		if err != nil {
			c.Next()
			return
		}

		user, err := users.FindByAuth0ID(c.Request.Context(), auth0ID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				zap.L().Error("failed to resolve actor", zap.String("subject", auth0ID), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "DATABASE_ERROR",
						"message": "Failed to load user profile",
					},
				})
				c.Abort()
				return
			}
			c.Next()
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextActor, &lifecycle.Actor{UserID: user.ID, Role: user.Role})
		c.Next()
	}
}

// GetActor returns the resolved actor, or nil for guests
func GetActor(c *gin.Context) *lifecycle.Actor {
	value, exists := c.Get(ContextActor)
	if !exists {
		return nil
	}
	actor, _ := value.(*lifecycle.Actor)
	return actor
}

// GetCurrentUser returns the resolved user profile
func GetCurrentUser(c *gin.Context) (*models.User, error) {
	value, exists := c.Get(ContextUser)
	if !exists {
		return nil, &AuthError{Code: "USER_NOT_FOUND", Message: "User profile not found"}
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil, &AuthError{Code: "INVALID_USER", Message: "User profile is not in the expected format"}
	}
	return user, nil
}

// RequireActor rejects requests that have no local profile behind them
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := GetUserID(c); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Authentication required",
				},
			})
			c.Abort()
			return
		}

		if GetActor(c) == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "USER_NOT_FOUND",
					"message": "User profile not found. Please create a profile first.",
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireRole allows the request through only for the listed roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Authentication required",
				},
			})
			c.Abort()
			return
		}

		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Insufficient permissions",
			},
		})
		c.Abort()
	}
}
