package storage

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormExecer runs statements on a gorm connection.
type GormExecer struct {
	db *gorm.DB
}

// NewGormExecer wraps db.
func NewGormExecer(db *gorm.DB) *GormExecer {
	return &GormExecer{db: db}
}

func (e *GormExecer) Exec(ctx context.Context, statement string) error {
	return e.db.WithContext(ctx).Exec(statement).Error
}

// OpenSQLite opens the SQLite database at path. debug turns on gorm's SQL
// logging.
func OpenSQLite(path string, debug bool) (*gorm.DB, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// sqliteTables lists the user tables present in db.
func sqliteTables(ctx context.Context, db *gorm.DB) ([]string, error) {
	var names []string
	err := db.WithContext(ctx).
		Raw("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name").
		Scan(&names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return names, nil
}
