package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/artvoid/artvoid-api/models"
	"github.com/artvoid/artvoid-api/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminService manages the shared admin password, platform settings and
// user roles.
type AdminService struct {
	settings repository.SettingsRepository
	users    repository.UserRepository
	logger   *zap.Logger
}

// NewAdminService creates an admin service
func NewAdminService(settings repository.SettingsRepository, users repository.UserRepository, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{settings: settings, users: users, logger: logger}
}

// PasswordConfigured reports whether an admin password has been set
func (s *AdminService) PasswordConfigured(ctx context.Context) (bool, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return false, err
	}
	return settings.AdminPasswordHash != "", nil
}

// BootstrapPassword sets the admin password only if none is stored yet
func (s *AdminService) BootstrapPassword(ctx context.Context, password string) error {
	if password == "" {
		return nil
	}
	configured, err := s.PasswordConfigured(ctx)
	if err != nil || configured {
		return err
	}
	if err := s.storePassword(ctx, password); err != nil {
		return err
	}
	s.logger.Info("admin password bootstrapped from environment")
	return nil
}

// SetPassword changes the admin password. Once a password exists the
// current one must be supplied.
func (s *AdminService) SetPassword(ctx context.Context, current, next string) error {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	if settings.AdminPasswordHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(settings.AdminPasswordHash), []byte(current)) != nil {
			return ErrWrongPassword
		}
	}
	if len(next) < MinPasswordLength {
		return invalid(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	return s.storePassword(ctx, next)
}

// VerifyPassword checks a candidate against the stored admin password
func (s *AdminService) VerifyPassword(ctx context.Context, password string) (bool, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return false, err
	}
	if settings.AdminPasswordHash == "" {
		return false, nil
	}
	return bcrypt.CompareHashAndPassword([]byte(settings.AdminPasswordHash), []byte(password)) == nil, nil
}

func (s *AdminService) storePassword(ctx context.Context, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	return s.settings.SetAdminPasswordHash(ctx, string(hash))
}

// Settings returns the platform settings
func (s *AdminService) Settings(ctx context.Context) (*models.Settings, error) {
	return s.settings.Get(ctx)
}

// UpdateCommissionRate changes the rate applied to future quotes. Existing
// orders keep the rate they were priced at.
func (s *AdminService) UpdateCommissionRate(ctx context.Context, rate float64) (*models.Settings, error) {
	if rate < 0 || rate > 100 {
		return nil, invalid("Commission rate must be between 0 and 100")
	}
	if err := s.settings.UpdateCommissionRate(ctx, rate); err != nil {
		return nil, err
	}
	s.logger.Info("commission rate updated", zap.Float64("rate", rate))
	return s.settings.Get(ctx)
}

// ListUsers returns every profile
func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

// UpdateRole changes a user's role, for example approving an artist
func (s *AdminService) UpdateRole(ctx context.Context, id uint, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, invalid("Role must be one of customer, emblos, admin")
	}
	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.logger.Info("user role updated", zap.Uint("user_id", id), zap.String("role", role))
	return s.users.FindByID(ctx, id)
}
