// Package repository provides GORM-backed persistence for every entity, one
// interface per entity so the service layer never touches *gorm.DB directly.
package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when a conditional update matched no row
	ErrVersionConflict = errors.New("record was modified concurrently")
	// ErrDuplicate is returned when a unique constraint is violated
	ErrDuplicate = errors.New("record already exists")
)

// translate maps driver errors onto the package sentinels
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	// Works with both PostgreSQL and SQLite when TranslateError is off
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") {
		return ErrDuplicate
	}
	return err
}
