// Package storetest provides an isolated in-memory database for tests.
package storetest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/tubeaccounts/backend/internal/config"
	"github.com/tubeaccounts/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := models.Open(&config.DatabaseConfig{Driver: "sqlite", DSN: dsn}, logger.Silent)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test db handle: %v", err)
	}
	// One connection keeps the shared-cache database alive and avoids table locks.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
