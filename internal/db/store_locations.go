package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yanosDev/awqat/internal/models"
)

// InsertLocations bulk-replaces the location directory. The directory maps
// human location names to numeric city ids and is populated once by the
// remote location-list fetch.
func (s *Store) InsertLocations(ctx context.Context, locations []models.Location) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO locations (id, code, name)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET code = excluded.code, name = excluded.name
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, loc := range locations {
		if _, err := stmt.ExecContext(ctx, loc.ID, loc.Code, loc.Name); err != nil {
			return fmt.Errorf("insert location %d: %w", loc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit locations: %w", err)
	}

	s.logger.Debug().Int("count", len(locations)).Msg("location directory updated")
	return nil
}

// ResolveCityID maps a location name to its numeric city id. Returns
// ErrNotFound when the directory has no entry for the name, which callers
// must treat as "scheduling deferred" rather than a failure.
func (s *Store) ResolveCityID(ctx context.Context, locationName string) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM locations WHERE name = ? COLLATE NOCASE LIMIT 1
	`, locationName).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("resolve city id for %q: %w", locationName, err)
	}
	return id, nil
}

// CountLocations returns the number of entries in the location directory.
func (s *Store) CountLocations(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM locations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count locations: %w", err)
	}
	return count, nil
}
