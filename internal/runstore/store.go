// Package runstore provides SQLite storage for training runs and their
// per-epoch metrics, so past runs stay queryable after the process exits.
package runstore

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store represents a SQLite database connection for training-run records.
type Store struct {
	db   *sql.DB
	path string
}

// New creates a new Store with the given database path.
// It opens the database connection, enables foreign keys, and runs migrations.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Runs table - one row per training run
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			finished_at DATETIME,
			epochs INTEGER NOT NULL,
			batch_size INTEGER NOT NULL,
			learning_rate REAL NOT NULL,
			best_accuracy REAL NOT NULL DEFAULT 0,
			checkpoint_path TEXT NOT NULL DEFAULT ''
		)`,

		// Per-epoch metrics of a run
		`CREATE TABLE IF NOT EXISTS run_epochs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			epoch INTEGER NOT NULL,
			loss REAL NOT NULL,
			val_accuracy REAL NOT NULL,
			val_precision REAL NOT NULL,
			val_recall REAL NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_run_epochs_run_id ON run_epochs(run_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
