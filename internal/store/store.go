package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sqlx.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection keeps :memory: databases alive and serialises writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.Get(&version, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

// Entries reference projects weakly: a dangling project_id is kept and
// rendered with the default colour.
func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS projects (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		color       TEXT NOT NULL DEFAULT '#9CA3AF',
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS entries (
		id           TEXT PRIMARY KEY,
		description  TEXT NOT NULL DEFAULT '',
		project_id   TEXT,
		start_ms     INTEGER NOT NULL,
		end_ms       INTEGER,
		duration     INTEGER NOT NULL DEFAULT 0,
		is_pomodoro  INTEGER NOT NULL DEFAULT 0,
		cycle        INTEGER NOT NULL DEFAULT 0,
		date         TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_date    ON entries(date);
	CREATE INDEX IF NOT EXISTS idx_entries_project ON entries(project_id);
	CREATE INDEX IF NOT EXISTS idx_entries_start   ON entries(start_ms);

	CREATE TABLE IF NOT EXISTS pomodoro_sessions (
		id               TEXT PRIMARY KEY,
		focus_sec        INTEGER NOT NULL,
		short_sec        INTEGER NOT NULL,
		long_sec         INTEGER NOT NULL,
		cycles_per_long  INTEGER NOT NULL,
		completed_count  INTEGER NOT NULL DEFAULT 0,
		status           TEXT NOT NULL DEFAULT 'running',
		started_at       TEXT NOT NULL,
		ended_at         TEXT
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('pomodoro_focus_min',   '25'),
		('pomodoro_short_min',   '5'),
		('pomodoro_long_min',    '15'),
		('pomodoro_cycles',      '4'),
		('daily_goal_hours',     '8'),
		('theme_selected',       'default-dark'),
		('theme_unlocked',       'default-light,default-dark'),
		('drive_backup_enabled', 'false'),
		('calendar_sync_enabled','false'),
		('calendar_id',          '');
	`
	_, err := s.db.Exec(ddl)
	return err
}
