package database

import (
	"log"

	"github.com/NBS282/themepark-api/internal/config"
	"github.com/NBS282/themepark-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto Migrate
	err = db.AutoMigrate(
		&models.User{},
		&models.Attraction{},
		&models.Event{},
		&models.Ticket{},
		&models.TicketUse{},
		&models.Visit{},
		&models.Incident{},
		&models.Maintenance{},
		&models.ScoringStrategy{},
		&models.APIKey{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	return db
}
