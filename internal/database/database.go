// Package database opens the gorm connection backing the history log.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

const connectTimeout = 30 * time.Second

// Connect opens a database of the given type ("sqlite" or "postgres")
func Connect(ctx context.Context, dbType, dsn string, debug bool) (*gorm.DB, error) {
	var open gorm.Dialector
	switch dbType {
	case "postgres":
		open = postgres.Open(dsn)
	case "sqlite":
		open = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("database: unknown db type: %s", dbType)
	}

	l := gormlogger.Default.LogMode(gormlogger.Silent)
	if debug {
		l = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	// Open in a goroutine so a stuck server cannot hang startup
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	type result struct {
		db  *gorm.DB
		err error
	}
	resC := make(chan result, 1)
	go func() {
		db, err := gorm.Open(open, &gorm.Config{Logger: l})
		resC <- result{db: db, err: err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("database: timed out opening database: %w", ctx.Err())
		}
		return nil, ctx.Err()
	case res := <-resC:
		if res.err != nil {
			return nil, fmt.Errorf("database: failed to open database: %w", res.err)
		}
		return res.db, nil
	}
}

// Migrate creates or updates the history tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.HistoryRecord{}); err != nil {
		return fmt.Errorf("database: failed to migrate database: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
