package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yanosDev/awqat/internal/models"
)

// SeedSchedules inserts the given schedule rows if their ids do not exist
// yet. Existing rows, including user edits to enabled/offset state, are
// never touched, so re-running the seed is a no-op.
func (s *Store) SeedSchedules(ctx context.Context, schedules []models.Schedule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO schedules (id, ordinal, enabled, relative_minutes)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, sched := range schedules {
		if _, err := stmt.ExecContext(ctx, sched.ID, sched.Ordinal, sched.Enabled, sched.RelativeMinutes); err != nil {
			return fmt.Errorf("seed schedule %s: %w", sched.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schedules: %w", err)
	}
	return nil
}

// Schedules returns all six schedule rows ordered by ordinal.
func (s *Store) Schedules(ctx context.Context) ([]models.Schedule, error) {
	return s.querySchedules(ctx, `
		SELECT id, ordinal, enabled, relative_minutes
		FROM schedules
		ORDER BY ordinal
	`)
}

// EnabledSchedules returns the enabled schedule rows ordered by ordinal.
// The result is a snapshot; a concurrent user edit does not affect rows
// already returned.
func (s *Store) EnabledSchedules(ctx context.Context) ([]models.Schedule, error) {
	return s.querySchedules(ctx, `
		SELECT id, ordinal, enabled, relative_minutes
		FROM schedules
		WHERE enabled = 1
		ORDER BY ordinal
	`)
}

// GetSchedule returns a single schedule row by id.
func (s *Store) GetSchedule(ctx context.Context, id string) (models.Schedule, error) {
	var sched models.Schedule
	err := s.db.QueryRowContext(ctx, `
		SELECT id, ordinal, enabled, relative_minutes
		FROM schedules
		WHERE id = ?
	`, id).Scan(&sched.ID, &sched.Ordinal, &sched.Enabled, &sched.RelativeMinutes)
	if err == sql.ErrNoRows {
		return models.Schedule{}, ErrNotFound
	}
	if err != nil {
		return models.Schedule{}, fmt.Errorf("get schedule %s: %w", id, err)
	}
	return sched, nil
}

// UpdateSchedule sets the user-editable state of a schedule. The id and
// ordinal of a row are immutable.
func (s *Store) UpdateSchedule(ctx context.Context, id string, enabled bool, relativeMinutes int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE schedules
		SET enabled = ?, relative_minutes = ?
		WHERE id = ?
	`, enabled, relativeMinutes, id)
	if err != nil {
		return fmt.Errorf("update schedule %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) querySchedules(ctx context.Context, query string) ([]models.Schedule, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []models.Schedule
	for rows.Next() {
		var sched models.Schedule
		if err := rows.Scan(&sched.ID, &sched.Ordinal, &sched.Enabled, &sched.RelativeMinutes); err != nil {
			return nil, fmt.Errorf("scan schedule row: %w", err)
		}
		schedules = append(schedules, sched)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules: %w", err)
	}

	return schedules, nil
}
