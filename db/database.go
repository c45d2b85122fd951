package db

import (
	"fmt"
	"log"
	"or_flow_app_go/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the shared connection used by services and handlers
var DB *gorm.DB

// trackerModels is every table the tracker persists
var trackerModels = []interface{}{
	&models.User{},
	&models.Session{},
	&models.SurgicalCase{},
	&models.Milestone{},
	&models.MilestoneRevision{},
	&models.CaseTimer{},
	&models.DelayRecord{},
	&models.CaseNote{},
	&models.AuditLog{},
}

// Initialize opens the tracker database. WAL mode keeps milestone taps and
// board reads from blocking each other during a busy OR day.
func Initialize(dbPath string, environment string) error {
	var err error

	logLevel := logger.Info
	if environment == "production" {
		logLevel = logger.Warn
	}

	dsn := dbPath + "?_journal_mode=WAL"

	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to open tracker database: %w", err)
	}

	log.Println("Tracker database ready (WAL mode)")
	return nil
}

// Migrate creates or updates the schema for every tracker model
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := DB.AutoMigrate(trackerModels...); err != nil {
		return fmt.Errorf("failed to migrate tracker schema: %w", err)
	}

	log.Println("Tracker schema migrated")
	return nil
}

// Close closes the underlying connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
