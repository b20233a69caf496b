package testutil

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kalilynx/embededticketautomation/internal/models"
)

// NewTestDB opens an isolated in-memory database migrated with the full
// schema. The pool is capped at a single connection so concurrent writers in
// tests serialize on the pool instead of tripping sqlite lock errors.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access test database pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&models.Role{}, &models.User{}, &models.Order{}, &models.Ticket{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
