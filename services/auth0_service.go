package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/artvoid/artvoid-api/config"
)

// Auth0UserInfo is the identity returned by the /userinfo endpoint
type Auth0UserInfo struct {
	Sub      string `json:"sub"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Picture  string `json:"picture"`
}

// DisplayName is the name to store on a new profile. Social connections
// sometimes only send a nickname, or the email again as the name.
func (u *Auth0UserInfo) DisplayName() string {
	name := strings.TrimSpace(u.Name)
	if name == "" || name == u.Email {
		if nick := strings.TrimSpace(u.Nickname); nick != "" {
			return nick
		}
	}
	return name
}

// UserInfoError is a non-200 answer from the identity provider
type UserInfoError struct {
	StatusCode int
	Body       string
}

func (e *UserInfoError) Error() string {
	return fmt.Sprintf("userinfo endpoint returned status %d: %s", e.StatusCode, e.Body)
}

// UserInfoFetcher resolves an access token into the caller's identity
type UserInfoFetcher interface {
	GetUserInfo(ctx context.Context, accessToken string) (*Auth0UserInfo, error)
}

// Auth0Service calls the tenant's authentication API
type Auth0Service struct {
	endpoint   string
	httpClient *http.Client
}

// NewAuth0Service creates an Auth0 client for cfg.Auth0Domain. A domain
// that already carries a scheme is used as-is.
func NewAuth0Service(cfg *config.Config) *Auth0Service {
	base := strings.TrimSuffix(cfg.Auth0Domain, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return &Auth0Service{
		endpoint:   base + "/userinfo",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetUserInfo exchanges an access token for the caller's profile
func (s *Auth0Service) GetUserInfo(ctx context.Context, accessToken string) (*Auth0UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call userinfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &UserInfoError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var info Auth0UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("userinfo response has no subject")
	}
	info.Name = info.DisplayName()
	return &info, nil
}
