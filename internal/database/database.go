// Package database opens the gorm handle shared by the link and click stores.
package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // libsql:// and wss:// driver
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/axellelanca/shorturls/internal/config"
	"github.com/axellelanca/shorturls/internal/models"
)

// localPragmas are applied to file-backed SQLite databases. busy_timeout lets
// concurrent writers wait instead of failing with SQLITE_BUSY, foreign_keys
// enables the ON DELETE CASCADE from clicks to links.
const localPragmas = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"

// IsRemote reports whether dsn targets a libsql server rather than a local file.
func IsRemote(dsn string) bool {
	return strings.HasPrefix(dsn, "libsql://") || strings.HasPrefix(dsn, "wss://") ||
		strings.HasPrefix(dsn, "https://") || strings.HasPrefix(dsn, "http://")
}

// dialector picks the driver behind the gorm sqlite dialect.
func dialector(dsn string) gorm.Dialector {
	if IsRemote(dsn) {
		return sqlite.Dialector{DriverName: "libsql", DSN: dsn}
	}
	if !strings.Contains(dsn, "_pragma=") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + localPragmas
	}
	return sqlite.Open(dsn)
}

// Open connects to the configured datastore. All timestamps are written in UTC.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(dialector(cfg.DSN), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		// SQLite allows a single writer at a time
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	log.Printf("[DB] Connected (remote=%t)", IsRemote(cfg.DSN))
	return db, nil
}

// Migrate creates or updates the links and clicks tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Link{}, &models.Click{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
