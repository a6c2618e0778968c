package services

import (
	"context"
	"testing"

	"github.com/artvoid/artvoid-api/models"
	"github.com/artvoid/artvoid-api/repository"
	"github.com/artvoid/artvoid-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdminService(t *testing.T) *AdminService {
	t.Helper()
	db := testutil.NewTestDB(t)
	testutil.CreateUser(t, db, "auth0|meera", "Meera", "meera@artvoid.in", models.RoleCustomer)
	return NewAdminService(repository.NewSettingsRepository(db, 10), repository.NewUserRepository(db), nil)
}

func TestAdminService_Password(t *testing.T) {
	svc := newAdminService(t)
	ctx := context.Background()

	configured, err := svc.PasswordConfigured(ctx)
	require.NoError(t, err)
	assert.False(t, configured)

	ok, err := svc.VerifyPassword(ctx, "anything")
	require.NoError(t, err)
	assert.False(t, ok, "nothing verifies before a password is set")

	require.NoError(t, svc.SetPassword(ctx, "", "artvoid1"))

	configured, err = svc.PasswordConfigured(ctx)
	require.NoError(t, err)
	assert.True(t, configured)

	ok, err = svc.VerifyPassword(ctx, "artvoid1")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.ErrorIs(t, svc.SetPassword(ctx, "wrong", "another1"), ErrWrongPassword)
	assert.Error(t, svc.SetPassword(ctx, "artvoid1", "abc"), "too short")
	require.NoError(t, svc.SetPassword(ctx, "artvoid1", "another1"))

	ok, err = svc.VerifyPassword(ctx, "artvoid1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdminService_BootstrapPassword(t *testing.T) {
	svc := newAdminService(t)
	ctx := context.Background()

	require.NoError(t, svc.BootstrapPassword(ctx, ""))
	configured, err := svc.PasswordConfigured(ctx)
	require.NoError(t, err)
	assert.False(t, configured)

	require.NoError(t, svc.BootstrapPassword(ctx, "fromenv1"))
	require.NoError(t, svc.BootstrapPassword(ctx, "ignored1"), "an existing password is kept")

	ok, err := svc.VerifyPassword(ctx, "fromenv1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAdminService_Settings(t *testing.T) {
	svc := newAdminService(t)
	ctx := context.Background()

	settings, err := svc.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10.0, settings.CommissionRate)

	settings, err = svc.UpdateCommissionRate(ctx, 15)
	require.NoError(t, err)
	assert.Equal(t, 15.0, settings.CommissionRate)

	_, err = svc.UpdateCommissionRate(ctx, 101)
	assert.Error(t, err)
	_, err = svc.UpdateCommissionRate(ctx, -1)
	assert.Error(t, err)
}

func TestAdminService_Users(t *testing.T) {
	svc := newAdminService(t)
	ctx := context.Background()

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	user, err := svc.UpdateRole(ctx, users[0].ID, models.RoleEmblos)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEmblos, user.Role)

	_, err = svc.UpdateRole(ctx, users[0].ID, "superuser")
	assert.Error(t, err)
	_, err = svc.UpdateRole(ctx, 999, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
