// Package store provides SQLite-backed persistence for completed
// documentation bundles.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/repodocai/repodoc/internal/assemble"
)

// ErrNotFound is returned when no bundle exists for a task id.
var ErrNotFound = errors.New("bundle not found")

// Store wraps a SQLite database holding generated bundles.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) a SQLite database at dbPath and ensures
// the bundles table exists. Use ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	stmt := `CREATE TABLE IF NOT EXISTS bundles (
		task_id    TEXT PRIMARY KEY,
		repo_name  TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		payload    TEXT NOT NULL
	)`
	if _, err := db.Exec(stmt); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists a bundle, replacing any previous bundle for the task.
func (s *Store) Save(ctx context.Context, b *assemble.Bundle) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encoding bundle: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO bundles (task_id, repo_name, created_at, payload) VALUES (?, ?, ?, ?)`,
		b.TaskID, b.RepoName, b.CreatedAt.UTC().Format(time.RFC3339Nano), string(payload),
	)
	if err != nil {
		return fmt.Errorf("saving bundle %s: %w", b.TaskID, err)
	}
	return nil
}

// Get loads the bundle for a task id.
func (s *Store) Get(ctx context.Context, taskID string) (*assemble.Bundle, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM bundles WHERE task_id = ?`, taskID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading bundle %s: %w", taskID, err)
	}

	var b assemble.Bundle
	if err := json.Unmarshal([]byte(payload), &b); err != nil {
		return nil, fmt.Errorf("decoding bundle %s: %w", taskID, err)
	}
	return &b, nil
}

// Delete removes the bundle for a task id. Deleting a missing bundle is
// not an error.
func (s *Store) Delete(ctx context.Context, taskID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bundles WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("deleting bundle %s: %w", taskID, err)
	}
	return nil
}
