// Package storage keeps save slots and archived snapshots in a local SQLite
// file. Snapshot bytes are opaque here; the game package owns their format.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store is a SQLite-backed save store. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// ArchivedSnapshot describes one archived snapshot without its payload.
type ArchivedSnapshot struct {
	ID         string
	Slot       string
	Reason     string
	ArchivedAt time.Time
}

// Open opens or creates the database at dbPath and brings its schema up to
// date.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if err := applyMigrations(ctx, db, migrationFiles, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes data into slot, replacing what was there.
func (s *Store) Save(ctx context.Context, slot string, data []byte, version int, savedAt time.Time) error {
	if slot == "" {
		return fmt.Errorf("save: slot is required")
	}
	query := `
		INSERT INTO saves (slot, snapshot, version, saved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			snapshot = excluded.snapshot,
			version = excluded.version,
			saved_at = excluded.saved_at
	`
	if _, err := s.db.ExecContext(ctx, query, slot, data, version, savedAt.UTC().UnixMilli()); err != nil {
		return fmt.Errorf("save slot %s: %w", slot, err)
	}
	return nil
}

// Load returns the snapshot in slot. A slot that was never saved returns nil
// data and no error.
func (s *Store) Load(ctx context.Context, slot string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM saves WHERE slot = ?`, slot).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %s: %w", slot, err)
	}
	return data, nil
}

// Archive stores a copy of data under a new id, for example before a reset
// or an import overwrites the slot.
func (s *Store) Archive(ctx context.Context, slot string, data []byte, reason string, at time.Time) (string, error) {
	id := uuid.NewString()
	query := `INSERT INTO snapshots (id, slot, reason, snapshot, archived_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, id, slot, reason, data, at.UTC().UnixMilli()); err != nil {
		return "", fmt.Errorf("archive slot %s: %w", slot, err)
	}
	return id, nil
}

// Archived lists the archived snapshots of slot, newest first.
func (s *Store) Archived(ctx context.Context, slot string) ([]ArchivedSnapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, slot, reason, archived_at FROM snapshots WHERE slot = ? ORDER BY archived_at DESC, id ASC`, slot)
	if err != nil {
		return nil, fmt.Errorf("list archive for %s: %w", slot, err)
	}
	defer rows.Close()

	var out []ArchivedSnapshot
	for rows.Next() {
		var a ArchivedSnapshot
		var at int64
		if err := rows.Scan(&a.ID, &a.Slot, &a.Reason, &at); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}
		a.ArchivedAt = time.UnixMilli(at).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

// LoadArchived returns the payload of an archived snapshot.
func (s *Store) LoadArchived(ctx context.Context, id string) ([]byte, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("archive id %q: %w", id, err)
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM snapshots WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("archive id %s: %w", id, os.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("load archive %s: %w", id, err)
	}
	return data, nil
}
