package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/artvoid/artvoid-api/middleware"
	"github.com/artvoid/artvoid-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUserInfo returns a fixed Auth0 profile
type stubUserInfo struct {
	info *services.Auth0UserInfo
	err  error
}

func (s *stubUserInfo) GetUserInfo(_ context.Context, _ string) (*services.Auth0UserInfo, error) {
	return s.info, s.err
}

func newUserEnv(t *testing.T, userInfo services.UserInfoFetcher) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	uc := NewUserController(services.NewAccountService(env.users, nil), userInfo, nil)

	env.router.POST("/auth/register", uc.Register)
	env.router.POST("/auth/login", uc.Login)
	env.router.POST("/users/google-auth", uc.GoogleAuth)

	users := env.router.Group("/users", middleware.RequireActor())
	users.GET("/me", uc.GetMyProfile)
	users.PUT("/me", uc.UpdateMyProfile)
	users.PUT("/:id/likes", uc.UpdateLikes)
	return env
}

func TestGoogleAuth(t *testing.T) {
	tests := []struct {
		name           string
		subject        string
		userInfo       *stubUserInfo
		expectedStatus int
		expectedError  string
		expectedEmail  string
	}{
		{
			name:           "First sign in creates the profile",
			subject:        "google-oauth2|new",
			userInfo:       &stubUserInfo{info: &services.Auth0UserInfo{Sub: "google-oauth2|new", Email: "new@example.com", Name: "New User"}},
			expectedStatus: http.StatusCreated,
			expectedEmail:  "new@example.com",
		},
		{
			name:           "Returning user gets the existing profile",
			subject:        customerSub,
			userInfo:       &stubUserInfo{info: &services.Auth0UserInfo{Sub: customerSub, Email: "asha@example.com", Name: "Asha"}},
			expectedStatus: http.StatusOK,
			expectedEmail:  "asha@example.com",
		},
		{
			name:           "Email owned by another identity",
			subject:        "google-oauth2|dupe",
			userInfo:       &stubUserInfo{info: &services.Auth0UserInfo{Sub: "google-oauth2|dupe", Email: "asha@example.com", Name: "Imposter"}},
			expectedStatus: http.StatusConflict,
			expectedError:  "USER_EXISTS",
		},
		{
			name:           "Auth0 without an email",
			subject:        "google-oauth2|noemail",
			userInfo:       &stubUserInfo{info: &services.Auth0UserInfo{Sub: "google-oauth2|noemail", Name: "No Email"}},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "MISSING_EMAIL",
		},
		{
			name:           "Auth0 unavailable",
			subject:        "google-oauth2|down",
			userInfo:       &stubUserInfo{err: errors.New("connection refused")},
			expectedStatus: http.StatusBadGateway,
			expectedError:  "AUTH0_ERROR",
		},
		{
			name:           "No token",
			userInfo:       &stubUserInfo{},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "MISSING_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newUserEnv(t, tt.userInfo)

			w, response := env.do(t, http.MethodPost, "/users/google-auth", tt.subject, nil)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.expectedError, errorCode(response))
			if tt.expectedEmail != "" {
				assert.Equal(t, tt.expectedEmail, dataMap(t, response)["email"])
			}
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := newUserEnv(t, &stubUserInfo{})

	w, response := env.do(t, http.MethodPost, "/auth/register", "", map[string]interface{}{
		"name": "Kiran", "email": "Kiran@Example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := dataMap(t, response)
	assert.Equal(t, "kiran@example.com", data["email"])
	assert.NotContains(t, w.Body.String(), "password")

	tests := []struct {
		name           string
		path           string
		body           map[string]interface{}
		expectedStatus int
		expectedError  string
	}{
		{"Duplicate registration", "/auth/register", map[string]interface{}{"name": "Kiran", "email": "kiran@example.com", "password": "secret1"}, http.StatusConflict, "USER_EXISTS"},
		{"Short password", "/auth/register", map[string]interface{}{"name": "Short", "email": "short@example.com", "password": "abc"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"Login succeeds", "/auth/login", map[string]interface{}{"email": "kiran@example.com", "password": "secret1"}, http.StatusOK, ""},
		{"Wrong password", "/auth/login", map[string]interface{}{"email": "kiran@example.com", "password": "wrong!!"}, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"Unknown email", "/auth/login", map[string]interface{}{"email": "ghost@example.com", "password": "secret1"}, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"Missing password", "/auth/login", map[string]interface{}{"email": "kiran@example.com"}, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := env.do(t, http.MethodPost, tt.path, "", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.expectedError, errorCode(response))
		})
	}
}

func TestMyProfile(t *testing.T) {
	env := newUserEnv(t, &stubUserInfo{})

	w, response := env.do(t, http.MethodGet, "/users/me", customerSub, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Asha", dataMap(t, response)["name"])

	w, response = env.do(t, http.MethodGet, "/users/me", "auth0|unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "USER_NOT_FOUND", errorCode(response))

	w, _ = env.do(t, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tests := []struct {
		name           string
		body           map[string]interface{}
		expectedStatus int
		expectedError  string
		expectedName   string
	}{
		{"Update name", map[string]interface{}{"name": "Asha K"}, http.StatusOK, "", "Asha K"},
		{"Empty update keeps profile", map[string]interface{}{}, http.StatusOK, "", "Asha K"},
		{"Invalid email", map[string]interface{}{"email": "nope"}, http.StatusBadRequest, "VALIDATION_ERROR", ""},
		{"Email already taken", map[string]interface{}{"email": "meera@artvoid.in"}, http.StatusConflict, "USER_EXISTS", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := env.do(t, http.MethodPut, "/users/me", customerSub, tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.expectedError, errorCode(response))
			if tt.expectedName != "" {
				assert.Equal(t, tt.expectedName, dataMap(t, response)["name"])
			}
		})
	}
}

func TestUpdateLikes(t *testing.T) {
	env := newUserEnv(t, &stubUserInfo{})
	body := map[string]interface{}{"liked_products": []uint{3, 1, 3}, "liked_gallery": []uint{7}}

	w, response := env.do(t, http.MethodPut, fmt.Sprintf("/users/%d/likes", env.customer.ID), customerSub, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := dataMap(t, response)
	assert.Len(t, data["liked_products"], 2)
	assert.Equal(t, []interface{}{float64(7)}, data["liked_gallery"])

	w, response = env.do(t, http.MethodPut, fmt.Sprintf("/users/%d/likes", env.customer.ID), artistSub, body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(response))

	w, _ = env.do(t, http.MethodPut, fmt.Sprintf("/users/%d/likes", env.customer.ID), adminSub, body)
	assert.Equal(t, http.StatusOK, w.Code)

	w, response = env.do(t, http.MethodPut, "/users/9999/likes", adminSub, body)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "USER_NOT_FOUND", errorCode(response))
}
