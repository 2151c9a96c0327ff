// Package db manages the snapshot cache database
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection with application-specific methods.
// It stores only the latest poll result per account; the sparkline
// history lives in memory and is deliberately not persisted.
type DB struct {
	*sql.DB
	path string
}

// New creates a new database connection and initializes the schema.
func New(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:   sqlDB,
		path: path,
	}

	if err := db.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := db.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// configure sets up database pragmas.
func (db *DB) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (db *DB) createSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS service_snapshots (
		key TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		windows_json TEXT NOT NULL DEFAULT '[]',
		fetched_at DATETIME NOT NULL
	);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

// Close closes the database connection gracefully.
func (db *DB) Close() error {
	// Checkpoint WAL before closing
	_, _ = db.ExecContext(context.Background(), "PRAGMA wal_checkpoint(TRUNCATE)")
	return db.DB.Close()
}
