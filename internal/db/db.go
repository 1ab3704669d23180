// Package db provides the local SQLite cache for the awqat daemon. It is
// the single authoritative store shared by the sync jobs and the admin API.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a cache lookup has no matching row. Callers
// treat it as "scheduling deferred", never as a failure.
var ErrNotFound = errors.New("not found")

// Store wraps the SQLite cache database.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// New opens (and if necessary creates) the cache database under dataDir.
func New(dataDir string, logger zerolog.Logger) (*Store, error) {
	dbPath := filepath.Join(dataDir, "awqat.db")

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger.With().Str("component", "cache_store").Logger(),
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	store.logger.Info().Str("path", dbPath).Msg("cache database initialized")

	return store, nil
}

// migrate creates the necessary tables.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS locations (
			id INTEGER PRIMARY KEY,
			code TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_locations_name ON locations(name);

		CREATE TABLE IF NOT EXISTS city_details (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			code TEXT,
			geographic_qibla_angle TEXT NOT NULL DEFAULT '',
			distance_to_kaaba TEXT NOT NULL DEFAULT '',
			qibla_angle TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			city_en TEXT,
			country TEXT NOT NULL DEFAULT '',
			country_en TEXT NOT NULL DEFAULT '',
			cached_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS prayer_times (
			city_id INTEGER NOT NULL,
			date_short TEXT NOT NULL,
			fajr TEXT NOT NULL,
			sunrise TEXT NOT NULL,
			dhuhr TEXT NOT NULL,
			asr TEXT NOT NULL,
			maghrib TEXT NOT NULL,
			isha TEXT NOT NULL,
			PRIMARY KEY (city_id, date_short)
		);

		CREATE TABLE IF NOT EXISTS city_eids (
			city_id INTEGER PRIMARY KEY,
			eid_al_adha_hijri TEXT NOT NULL DEFAULT '',
			eid_al_adha_date TEXT NOT NULL DEFAULT '',
			eid_al_adha_time TEXT NOT NULL DEFAULT '',
			eid_al_fitr_hijri TEXT NOT NULL DEFAULT '',
			eid_al_fitr_date TEXT NOT NULL DEFAULT '',
			eid_al_fitr_time TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS schedules (
			id TEXT PRIMARY KEY,
			ordinal INTEGER NOT NULL UNIQUE,
			enabled INTEGER NOT NULL DEFAULT 0,
			relative_minutes INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS daily_content (
			id INTEGER PRIMARY KEY,
			day_of_year INTEGER NOT NULL,
			verse TEXT NOT NULL DEFAULT '',
			verse_source TEXT NOT NULL DEFAULT '',
			hadith TEXT NOT NULL DEFAULT '',
			hadith_source TEXT NOT NULL DEFAULT '',
			prayer TEXT NOT NULL DEFAULT '',
			prayer_source TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS quran_verses (
			id INTEGER PRIMARY KEY,
			surah INTEGER NOT NULL,
			ayah INTEGER NOT NULL,
			text TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS topics (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			ordinal INTEGER NOT NULL,
			parent_id INTEGER,
			type TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS quizzes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			topic_id INTEGER NOT NULL,
			difficulty INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS degree (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			value REAL NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// nullString converts a string to sql.NullString.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
