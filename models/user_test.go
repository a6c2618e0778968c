package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestValidRole(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{RoleCustomer, true},
		{RoleEmblos, true},
		{RoleAdmin, true},
		{"curator", false},
		{"Admin", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidRole(tt.role))
		})
	}
}

func TestUserPersistence(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}))

	sub := "google-oauth2|99"
	user := User{Auth0ID: &sub, Name: "Isha", Email: "isha@example.com", LikedProducts: []uint{3, 8}}
	require.NoError(t, db.Create(&user).Error)

	var loaded User
	require.NoError(t, db.First(&loaded, user.ID).Error)
	assert.Equal(t, RoleCustomer, loaded.Role, "role column defaults to customer")
	assert.Equal(t, []uint{3, 8}, loaded.LikedProducts)
	assert.Empty(t, loaded.LikedGallery)

	// local accounts have no identity provider subject
	local := User{Name: "Dev", Email: "dev@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&local).Error)
	var loadedLocal User
	require.NoError(t, db.First(&loadedLocal, local.ID).Error)
	assert.Nil(t, loadedLocal.Auth0ID)
}
