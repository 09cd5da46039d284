// Package snapshot keeps the last fetched note collection in a local SQLite
// key/value table so the client can start with data while offline.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/notekeeper/internal/model"
)

// NotesKey is the key under which the note collection is stored.
const NotesKey = "@notes_app/notes"

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// Snapshot is a local key/value store of serialised notes.
type Snapshot struct {
	db *sqlx.DB
}

// Open opens or creates the snapshot database at path. ":memory:" gives a
// private in-memory database.
func Open(path string) (*Snapshot, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating snapshot directory: %w", err)
		}
		dsn = path + "?_pragma=busy_timeout(5000)"
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating snapshot table: %w", err)
	}
	return &Snapshot{db: db}, nil
}

// Close closes the underlying database.
func (s *Snapshot) Close() error {
	return s.db.Close()
}

// Save replaces the stored note collection.
func (s *Snapshot) Save(ctx context.Context, notes []model.Note) error {
	if notes == nil {
		notes = []model.Note{}
	}
	data, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("encoding notes: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		NotesKey, string(data),
	)
	if err != nil {
		return fmt.Errorf("saving notes: %w", err)
	}
	return nil
}

// Load returns the stored notes, or an empty slice when none were saved.
func (s *Snapshot) Load(ctx context.Context) ([]model.Note, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM kv WHERE key = ?`, NotesKey)
	if errors.Is(err, sql.ErrNoRows) {
		return []model.Note{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading notes: %w", err)
	}

	var notes []model.Note
	if err := json.Unmarshal([]byte(value), &notes); err != nil {
		return nil, fmt.Errorf("decoding notes: %w", err)
	}
	if notes == nil {
		notes = []model.Note{}
	}
	return notes, nil
}

// Clear removes the stored notes.
func (s *Snapshot) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, NotesKey); err != nil {
		return fmt.Errorf("clearing notes: %w", err)
	}
	return nil
}
