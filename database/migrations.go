package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"stoic-notes/notes/models"
)

// RunMigrations creates or updates the notes table named table together with
// the composite indexes backing the user and notebook searches.
func RunMigrations(db *gorm.DB, table string, log *zap.Logger) error {
	log.Info("Running database migrations...", zap.String("table", table))

	if err := db.Table(table).AutoMigrate(&models.Note{}); err != nil {
		log.Error("Migration failed", zap.Error(err))
		return fmt.Errorf("failed to migrate table %s: %w", table, err)
	}

	log.Info("Database migrations completed successfully")
	return nil
}
