package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/t-ishigaki/quota-monitor-tui/internal/logger"
	"github.com/t-ishigaki/quota-monitor-tui/internal/models"
)

// SaveSnapshot upserts the latest poll result for one account.
func (db *DB) SaveSnapshot(state models.ServiceState) error {
	windowsJSON, err := json.Marshal(state.Windows)
	if err != nil {
		return fmt.Errorf("failed to encode windows: %w", err)
	}

	query := `
		INSERT INTO service_snapshots (key, label, status, error, windows_json, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			label = excluded.label,
			status = excluded.status,
			error = excluded.error,
			windows_json = excluded.windows_json,
			fetched_at = excluded.fetched_at
	`

	fetchedAt := state.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	_, err = db.ExecContext(context.Background(), query,
		state.Key,
		state.Label,
		string(state.Status),
		nullString(state.Error),
		string(windowsJSON),
		fetchedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshots returns all cached poll results keyed by account.
func (db *DB) LoadSnapshots() (map[string]models.ServiceState, error) {
	query := `
		SELECT key, label, status, error, windows_json, fetched_at
		FROM service_snapshots
	`

	rows, err := db.QueryContext(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	states := make(map[string]models.ServiceState)
	for rows.Next() {
		var state models.ServiceState
		var status, windowsJSON, fetchedAt string
		var errStr sql.NullString

		if err := rows.Scan(&state.Key, &state.Label, &status, &errStr, &windowsJSON, &fetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		state.Status = models.Status(status)
		state.Error = errStr.String
		if err := json.Unmarshal([]byte(windowsJSON), &state.Windows); err != nil {
			// A corrupt row degrades to a windowless state rather than
			// failing the whole load.
			logger.Warn("discarding corrupt snapshot windows", "key", state.Key, "error", err)
			state.Windows = nil
		}
		if t, err := time.Parse(time.RFC3339, fetchedAt); err == nil {
			state.FetchedAt = t
		}

		states[state.Key] = state
	}

	return states, rows.Err()
}

// DeleteSnapshot removes the cached result for one account.
func (db *DB) DeleteSnapshot(key string) error {
	_, err := db.ExecContext(context.Background(), "DELETE FROM service_snapshots WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// nullString returns a sql.NullString from a string.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
