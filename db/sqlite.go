package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store records completed dispatches in SQLite.
type Store struct {
	database *sql.DB
}

// ModelCount is how many rows one model flagged in a dispatch.
type ModelCount struct {
	ModelID   string `json:"model_id"`
	ModelName string `json:"model_name"`
	Positives int    `json:"positives"`
}

// Entry is one completed dispatch.
type Entry struct {
	DispatchID string        `json:"dispatch_id"`
	Source     string        `json:"source"`
	Rows       int           `json:"rows"`
	Elapsed    time.Duration `json:"elapsed"`
	CreatedAt  time.Time     `json:"created_at"`
	Models     []ModelCount  `json:"models"`
}

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	database, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database failed: %w", err)
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS dispatches (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            dispatch_id TEXT NOT NULL,
            source TEXT NOT NULL,
            row_count INTEGER NOT NULL,
            elapsed_ns INTEGER DEFAULT 0,
            created_at DATETIME NOT NULL,
            UNIQUE(dispatch_id)
        )`,
		`CREATE TABLE IF NOT EXISTS model_counts (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            dispatch_id TEXT NOT NULL,
            position INTEGER NOT NULL,
            model_id TEXT NOT NULL,
            model_name TEXT NOT NULL,
            positives INTEGER NOT NULL,
            UNIQUE(dispatch_id, model_id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_dispatches_created ON dispatches(created_at)`,
	}
	for _, query := range queries {
		if _, err := database.Exec(query); err != nil {
			database.Close()
			return nil, fmt.Errorf("exec query failed: %w", err)
		}
	}
	return &Store{database: database}, nil
}

// Save writes a dispatch and its per-model counts in one transaction.
func (s *Store) Save(ctx context.Context, entry Entry) error {
	if entry.DispatchID == "" {
		return errors.New("dispatch id required")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	tx, err := s.database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO dispatches (dispatch_id, source, row_count, elapsed_ns, created_at)
        VALUES (?, ?, ?, ?, ?)`,
		entry.DispatchID, entry.Source, entry.Rows, int64(entry.Elapsed), entry.CreatedAt)
	if err != nil {
		tx.Rollback()
		return err
	}

	for i, m := range entry.Models {
		_, err = tx.ExecContext(ctx, `
            INSERT INTO model_counts (dispatch_id, position, model_id, model_name, positives)
            VALUES (?, ?, ?, ?, ?)`,
			entry.DispatchID, i, m.ModelID, m.ModelName, m.Positives)
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// Recent returns up to limit dispatches, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.database.QueryContext(ctx, `
        SELECT dispatch_id, source, row_count, elapsed_ns, created_at
        FROM dispatches
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		var elapsed int64
		if err := rows.Scan(&e.DispatchID, &e.Source, &e.Rows, &elapsed, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Elapsed = time.Duration(elapsed)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		models, err := s.modelCounts(ctx, entries[i].DispatchID)
		if err != nil {
			return nil, err
		}
		entries[i].Models = models
	}
	return entries, nil
}

func (s *Store) modelCounts(ctx context.Context, dispatchID string) ([]ModelCount, error) {
	rows, err := s.database.QueryContext(ctx, `
        SELECT model_id, model_name, positives
        FROM model_counts
        WHERE dispatch_id = ?
        ORDER BY position ASC`, dispatchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []ModelCount
	for rows.Next() {
		var m ModelCount
		if err := rows.Scan(&m.ModelID, &m.ModelName, &m.Positives); err != nil {
			return nil, err
		}
		counts = append(counts, m)
	}
	return counts, rows.Err()
}

func (s *Store) Close() error {
	return s.database.Close()
}
