package database

import (
	"fmt"

	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/you/faceauthsvc/internal/infrastructure/directory"
	"github.com/you/faceauthsvc/internal/infrastructure/ledger"
)

// Open creates a new database connection with production-ready settings
func Open(dsn string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	return gorm.Open(postgres.Open(dsn), config)
}

// AutoMigrate performs database migration for all required tables.
// This includes the account tables, the face login attempt ledger and
// the Casbin policy tables for RBAC.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&directory.DBUser{}, &directory.DBAdmin{}); err != nil {
		return fmt.Errorf("failed to migrate account tables: %w", err)
	}

	if err := db.AutoMigrate(&ledger.DBFaceLoginAttempt{}); err != nil {
		return fmt.Errorf("failed to migrate face_login_attempts table: %w", err)
	}

	// The adapter creates the casbin_rules table on first use.
	if _, err := gormadapter.NewAdapterByDB(db); err != nil {
		return fmt.Errorf("failed to initialize Casbin GORM adapter: %w", err)
	}

	return nil
}
