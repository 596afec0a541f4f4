package repository

import (
	"fmt"

	"github.com/mohammadpnp/csv-user-import/internal/infrastructure/db/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the import_jobs, users and waitlist tables.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("create uuid extension: %w", err)
	}
	if err := db.AutoMigrate(&models.ImportJob{}, &models.User{}, &models.WaitlistEntry{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
