package testutil

import (
	"strings"

	"github.com/artvoid/artvoid-api/middleware"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, role string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  "https://test.auth0.com/",
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
			Role:  role,
		},
	}
}

// MockAuthMiddleware simulates a validated bearer token for auth0ID.
// An empty auth0ID simulates a guest request.
func MockAuthMiddleware(auth0ID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth0ID != "" {
			c.Set(middleware.ContextUserID, auth0ID)
			c.Set(middleware.ContextAccessToken, "mock-token")
			c.Set(middleware.ContextClaims, MockValidatedClaims(auth0ID, role, nil))
		}
		c.Next()
	}
}

// AuthHeader lets a single test router serve several identities: the
// middleware returned by HeaderAuthMiddleware reads the subject from it.
const AuthHeader = "X-Test-Subject"

// HeaderAuthMiddleware simulates authentication from the X-Test-Subject header
func HeaderAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sub := c.GetHeader(AuthHeader); sub != "" {
			c.Set(middleware.ContextUserID, sub)
			c.Set(middleware.ContextAccessToken, "mock-token")
			c.Set(middleware.ContextClaims, MockValidatedClaims(sub, "", nil))
		}
		c.Next()
	}
}
