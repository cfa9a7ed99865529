// Package catalog maintains a SQLite index of recorded sessions so that
// listing does not require walking and parsing every session directory.
// The index is derivative: steps.json stays the source of truth, and rows
// whose directory has vanished are pruned on read.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	project       TEXT NOT NULL DEFAULT '',
	dir           TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL,
	steps         INTEGER NOT NULL DEFAULT 0,
	exported_at   TIMESTAMP,
	export_format TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at DESC);
`

// Entry is one catalog row.
type Entry struct {
	ID           string
	Project      string
	Dir          string
	CreatedAt    time.Time
	Steps        int
	ExportedAt   *time.Time
	ExportFormat string
}

// Catalog manages session index persistence backed by SQLite.
type Catalog struct {
	db *sql.DB
}

// Open opens (creating if needed) the catalog database at path.
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	// Single-user tool: one connection avoids SQLITE_BUSY entirely.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(context.Background(), schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// DefaultPath returns the catalog location under the given data directory.
func DefaultPath(dataDir string) string {
	return filepath.Join(dataDir, "catalog.db")
}

// Close releases the database handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Upsert records or refreshes a session row, preserving export history.
func (c *Catalog) Upsert(ctx context.Context, e Entry) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO sessions (id, project, dir, created_at, steps)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project = excluded.project,
			dir     = excluded.dir,
			steps   = excluded.steps`,
		e.ID, e.Project, e.Dir, e.CreatedAt.UTC(), e.Steps)
	if err != nil {
		return fmt.Errorf("upserting session %s: %w", e.ID, err)
	}
	return nil
}

// RecordExport stamps a session row with its most recent export.
func (c *Catalog) RecordExport(ctx context.Context, id, format string, at time.Time) error {
	res, err := c.db.ExecContext(ctx,
		`UPDATE sessions SET exported_at = ?, export_format = ? WHERE id = ?`,
		at.UTC(), format, id)
	if err != nil {
		return fmt.Errorf("recording export for %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s not in catalog", id)
	}
	return nil
}

// List returns all sessions, newest first. Rows whose directory no longer
// exists are removed from the index and omitted.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, project, dir, created_at, steps, exported_at, export_format
		FROM sessions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	var stale []string
	for rows.Next() {
		var e Entry
		var exportedAt sql.NullTime
		if err := rows.Scan(&e.ID, &e.Project, &e.Dir, &e.CreatedAt, &e.Steps,
			&exportedAt, &e.ExportFormat); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		if exportedAt.Valid {
			t := exportedAt.Time
			e.ExportedAt = &t
		}
		if _, err := os.Stat(e.Dir); err != nil {
			stale = append(stale, e.ID)
			continue
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	for _, id := range stale {
		if _, err := c.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
			return nil, fmt.Errorf("pruning session %s: %w", id, err)
		}
	}
	return entries, nil
}

// Get returns a single row by session id.
func (c *Catalog) Get(ctx context.Context, id string) (*Entry, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, project, dir, created_at, steps, exported_at, export_format
		FROM sessions WHERE id = ?`, id)
	var e Entry
	var exportedAt sql.NullTime
	if err := row.Scan(&e.ID, &e.Project, &e.Dir, &e.CreatedAt, &e.Steps,
		&exportedAt, &e.ExportFormat); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session %s not in catalog", id)
		}
		return nil, fmt.Errorf("reading session %s: %w", id, err)
	}
	if exportedAt.Valid {
		t := exportedAt.Time
		e.ExportedAt = &t
	}
	return &e, nil
}
