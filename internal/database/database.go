package database

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/treatyourshelf/backend/config"
	"github.com/treatyourshelf/backend/internal/model"
)

// New opens the Postgres connection and ensures the schema is current.
func New(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode,
	)

	log.Printf("Connecting to database at %s:%s as user %s", cfg.DBHost, cfg.DBPort, cfg.DBUser)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Printf("Successfully connected to database")
	return db, nil
}

// Migrate applies the gorm schema for all persistent models.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.PreferenceRecord{},
		&model.FavoriteRecipe{},
		&model.ScanRecord{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
