// Package testutil holds helpers shared by the package-level tests.
package testutil

import (
	"os"
	"testing"

	"github.com/artvoid/artvoid-api/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RequireTestEnvironment fails the test when it is about to run against a
// production environment.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	if env := os.Getenv("GO_ENV"); env == "production" {
		t.Fatalf("SAFETY CHECK FAILED: tests must not run with GO_ENV=%q", env)
	}
}

// NewTestDB opens a fresh in-memory sqlite database with every model migrated
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	RequireTestEnvironment(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// CreateUser inserts a user with the given role and returns it
func CreateUser(t *testing.T, db *gorm.DB, auth0ID, name, email, role string) models.User {
	t.Helper()

	user := models.User{Name: name, Email: email, Role: role}
	if auth0ID != "" {
		user.Auth0ID = &auth0ID
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return user
}
