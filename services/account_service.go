package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/artvoid/artvoid-api/models"
	"github.com/artvoid/artvoid-api/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength applies to local accounts and the admin password
const MinPasswordLength = 6

// AccountService manages user profiles, both identity-provider backed and
// local email/password accounts.
type AccountService struct {
	users  repository.UserRepository
	logger *zap.Logger
}

// NewAccountService creates an account service
func NewAccountService(users repository.UserRepository, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{users: users, logger: logger}
}

// SyncProfile returns the profile for an Auth0 identity, creating it on first
// sign-in. A local account with the same email is linked instead of
// duplicated. created reports whether a new profile was inserted.
func (s *AccountService) SyncProfile(ctx context.Context, info *Auth0UserInfo, role string) (user *models.User, created bool, err error) {
	if info.Email == "" {
		return nil, false, &ServiceError{Code: "MISSING_EMAIL", Message: "Email not provided by Auth0"}
	}
	if info.Name == "" {
		return nil, false, &ServiceError{Code: "MISSING_NAME", Message: "Name not provided by Auth0"}
	}

	user, err = s.users.FindByAuth0ID(ctx, info.Sub)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up profile: %w", err)
	}

	user, err = s.users.FindByEmail(ctx, info.Email)
	switch {
	case err == nil && user.Auth0ID == nil:
		if err := s.users.UpdateProfile(ctx, user, map[string]interface{}{"auth0_id": info.Sub}); err != nil {
			return nil, false, fmt.Errorf("failed to link profile: %w", err)
		}
		sub := info.Sub
		user.Auth0ID = &sub
		s.logger.Info("linked local account to identity provider", zap.Uint("user_id", user.ID))
		return user, false, nil
	case err == nil:
		return nil, false, ErrEmailTaken
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, fmt.Errorf("failed to look up profile: %w", err)
	}

	if !models.ValidRole(role) {
		role = models.RoleCustomer
	}
	sub := info.Sub
	user = &models.User{Auth0ID: &sub, Name: info.Name, Email: info.Email, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, false, ErrEmailTaken
		}
		return nil, false, fmt.Errorf("failed to create profile: %w", err)
	}

	s.logger.Info("created profile", zap.Uint("user_id", user.ID), zap.String("role", user.Role))
	return user, true, nil
}

// Register creates a local account. A local account is a profile only: the
// API authenticates callers by their Auth0 subject, so it can act on protected
// routes once the same email signs in through Auth0 and SyncProfile links it.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, invalid("Name and email are required")
	}
	if len(password) < MinPasswordLength {
		return nil, invalid(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Name: name, Email: email, Role: models.RoleCustomer, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return user, nil
}

// Login checks local credentials and returns the stored profile. It does not
// issue a session; see Register.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// UpdateProfile changes the caller's name and email
func (s *AccountService) UpdateProfile(ctx context.Context, user *models.User, name, email string) (*models.User, error) {
	updates := map[string]interface{}{}
	if name = strings.TrimSpace(name); name != "" {
		updates["name"] = name
	}
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
		updates["email"] = email
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.users.UpdateProfile(ctx, user, updates); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.users.FindByID(ctx, user.ID)
}

// UpdateLikes replaces a user's liked item sets. Only the user or an admin
// may do so.
func (s *AccountService) UpdateLikes(ctx context.Context, caller *models.User, targetID uint, products, gallery []uint) (*models.User, error) {
	if caller.ID != targetID && caller.Role != models.RoleAdmin {
		return nil, &ServiceError{Code: "FORBIDDEN", Message: "You can only update your own likes"}
	}

	if err := s.users.UpdateLikes(ctx, targetID, dedupe(products), dedupe(gallery)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.users.FindByID(ctx, targetID)
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
