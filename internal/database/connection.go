package database

import (
	"fmt"
	"strings"

	"dealership/internal/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Initialize opens the record store. URLs starting with sqlite:// use the
// embedded driver, everything else is handed to Postgres.
func Initialize(databaseURL string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	path, embedded := strings.CutPrefix(databaseURL, "sqlite://")
	if embedded {
		dialector = sqlite.Open(path)
	} else {
		dialector = postgres.Open(databaseURL)
	}

	db, err := gorm.Open(dialector, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if embedded {
		// An in-memory sqlite database lives inside a single connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log := logger.WithComponent("database")
	log.Info().Str("dialect", db.Dialector.Name()).Msg("Database connected")
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
