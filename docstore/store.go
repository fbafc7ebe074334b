// Package docstore persists shared-document snapshots in SQLite for the
// loupe CLI. It sits on the host-engine side of the boundary: the lens
// layer itself never persists anything, this package only saves and
// restores whole container trees between CLI invocations.
package docstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/loupelabs/loupe/shared"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// Store provides durable storage for document snapshots.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save writes the canonical snapshot of d under name, replacing any
// previous snapshot.
func (s *Store) Save(ctx context.Context, name string, d *shared.Doc) error {
	snap, err := shared.Snapshot(d)
	if err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (name, snapshot, updated_at)
		VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		ON CONFLICT(name) DO UPDATE SET
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at
	`, name, string(snap))
	if err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}
	return nil
}

// Load rebuilds the named snapshot into d. A missing name is reported as
// ErrNotFound.
func (s *Store) Load(ctx context.Context, name string, d *shared.Doc) error {
	var snap string
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot FROM documents WHERE name = ?`, name).Scan(&snap)
	if err == sql.ErrNoRows {
		return fmt.Errorf("document %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load %q: %w", name, err)
	}
	if err := shared.Apply(d, []byte(snap)); err != nil {
		return fmt.Errorf("load %q: %w", name, err)
	}
	return nil
}

// List returns the names of all stored documents in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM documents ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ErrNotFound reports a document name with no stored snapshot.
var ErrNotFound = errors.New("document not found")

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return nil
}
