package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Settings keys persisted in the settings table.
const (
	settingDBInitialized = "db_initialized"
	settingLastLocation  = "last_location"
)

// SetSetting stores a key-value pair in the settings table.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// GetSetting retrieves a value from the settings table. A missing key
// returns an empty string.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, nil
}

// IsInitialized reports whether the one-time database seed has completed.
func (s *Store) IsInitialized(ctx context.Context) (bool, error) {
	value, err := s.GetSetting(ctx, settingDBInitialized)
	if err != nil {
		return false, err
	}
	return value == "true", nil
}

// MarkInitialized sets the seed flag. It is set once and never cleared.
func (s *Store) MarkInitialized(ctx context.Context) error {
	return s.SetSetting(ctx, settingDBInitialized, "true")
}

// LastLocation returns the last known location name, empty if never resolved.
func (s *Store) LastLocation(ctx context.Context) (string, error) {
	return s.GetSetting(ctx, settingLastLocation)
}

// SetLastLocation persists the last known location name.
func (s *Store) SetLastLocation(ctx context.Context, name string) error {
	return s.SetSetting(ctx, settingLastLocation, name)
}
