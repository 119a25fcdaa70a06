package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/plateful/backend/internal/models"
)

// RunMigrations brings the schema up to date via GORM auto-migration. On
// postgres the pgvector extension is created first so the meal suggestion
// embedding column can exist; sqlite (used by tests) stores the vector as
// text and skips the extension.
func RunMigrations(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return fmt.Errorf("failed to create vector extension: %w", err)
		}
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.DietaryPreference{},
		&models.Allergen{},
		&models.NotificationPreference{},
		&models.Device{},
		&models.NotificationLog{},
		&models.MealSuggestion{},
	); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	log.Printf("Migrations applied")
	return nil
}
