package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

// Kept to types both postgres and sqlite accept.
var createTablesSQL = []string{
	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		store_id BIGINT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		ready_at BIGINT NOT NULL,
		payload TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_ready_at ON notifications (ready_at)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_store_id ON notifications (store_id)`,
}

func New(databaseURL string) (*Database, error) {
	var db *gorm.DB
	var err error

	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	if strings.HasPrefix(databaseURL, "sqlite://") {
		// SQLite for development
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), cfg)
	} else {
		// PostgreSQL for production
		db, err = gorm.Open(postgres.Open(databaseURL), cfg)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	for _, stmt := range createTablesSQL {
		if err := db.Exec(stmt).Error; err != nil {
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
