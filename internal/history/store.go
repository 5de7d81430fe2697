// SPDX-License-Identifier: EPL-2.0

// Package history keeps a SQLite ledger of streamed utterances.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

var ErrNotFound = errors.New("history: session not found")

// Entry is one streaming session.
type Entry struct {
	ID            string
	Text          string
	Status        string
	Frames        int
	Bytes         int
	AudioDuration time.Duration
	Error         string
	Started       time.Time
	Finished      time.Time
}

// Store wraps a SQLite backed session ledger. A Store opened with an empty
// path is disabled: writes are dropped and reads return nothing.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

func Open(ctx context.Context, path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if path == "" {
		return &Store{log: log}, nil
	}

	dsn := memoryPath
	if path != memoryPath {
		dir := filepath.Dir(path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == memoryPath {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, log: log}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug("history store opened", slog.String("path", path))
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    text TEXT NOT NULL,
    status TEXT NOT NULL,
    frames INTEGER NOT NULL,
    bytes INTEGER NOT NULL,
    audio_ms INTEGER NOT NULL,
    error TEXT,
    started_ms INTEGER NOT NULL,
    finished_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_ms);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Enabled reports whether the store persists anything.
func (s *Store) Enabled() bool { return s.db != nil }

// Close releases underlying resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts e, replacing any earlier entry with the same ID.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if s.db == nil {
		return nil
	}
	if e.ID == "" {
		return errors.New("history: entry without id")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions(id, text, status, frames, bytes, audio_ms, error, started_ms, finished_ms)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   text=excluded.text, status=excluded.status, frames=excluded.frames, bytes=excluded.bytes,
		   audio_ms=excluded.audio_ms, error=excluded.error,
		   started_ms=excluded.started_ms, finished_ms=excluded.finished_ms`,
		e.ID, e.Text, e.Status, e.Frames, e.Bytes, e.AudioDuration.Milliseconds(), e.Error,
		e.Started.UnixMilli(), e.Finished.UnixMilli())
	if err != nil {
		return fmt.Errorf("record session %s: %w", e.ID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	if s.db == nil {
		return Entry{}, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, text, status, frames, bytes, audio_ms, error, started_ms, finished_ms
		 FROM sessions WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

// List returns up to limit entries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, status, frames, bytes, audio_ms, error, started_ms, finished_ms
		 FROM sessions ORDER BY started_ms DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e                 Entry
		audioMS           int64
		errText           sql.NullString
		started, finished int64
	)
	if err := sc.Scan(&e.ID, &e.Text, &e.Status, &e.Frames, &e.Bytes, &audioMS, &errText, &started, &finished); err != nil {
		return Entry{}, err
	}
	e.AudioDuration = time.Duration(audioMS) * time.Millisecond
	e.Error = errText.String
	e.Started = time.UnixMilli(started)
	e.Finished = time.UnixMilli(finished)
	return e, nil
}
