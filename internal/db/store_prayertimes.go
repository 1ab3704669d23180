package db

import (
	"context"
	"fmt"
	"time"

	"github.com/yanosDev/awqat/internal/models"
)

// InsertPrayerTimes bulk-replaces a city's daily prayer time table. Rows are
// keyed by (city, date); a full re-sync simply overwrites them.
func (s *Store) InsertPrayerTimes(ctx context.Context, times []models.PrayerTime) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO prayer_times (city_id, date_short, fajr, sunrise, dhuhr, asr, maghrib, isha)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(city_id, date_short) DO UPDATE SET
			fajr = excluded.fajr,
			sunrise = excluded.sunrise,
			dhuhr = excluded.dhuhr,
			asr = excluded.asr,
			maghrib = excluded.maghrib,
			isha = excluded.isha
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range times {
		_, err := stmt.ExecContext(ctx,
			row.CityID, row.DateShort,
			row.Fajr, row.Sunrise, row.Dhuhr, row.Asr, row.Maghrib, row.Isha,
		)
		if err != nil {
			return fmt.Errorf("insert prayer time %d/%s: %w", row.CityID, row.DateShort, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit prayer times: %w", err)
	}

	s.logger.Debug().Int("count", len(times)).Msg("prayer time table updated")
	return nil
}

// LoadCityTimes returns all cached rows for a city ordered by date string.
func (s *Store) LoadCityTimes(ctx context.Context, cityID int) ([]models.PrayerTime, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT city_id, date_short, fajr, sunrise, dhuhr, asr, maghrib, isha
		FROM prayer_times
		WHERE city_id = ?
	`, cityID)
	if err != nil {
		return nil, fmt.Errorf("load city times %d: %w", cityID, err)
	}
	defer rows.Close()

	var times []models.PrayerTime
	for rows.Next() {
		var row models.PrayerTime
		err := rows.Scan(
			&row.CityID, &row.DateShort,
			&row.Fajr, &row.Sunrise, &row.Dhuhr, &row.Asr, &row.Maghrib, &row.Isha,
		)
		if err != nil {
			return nil, fmt.Errorf("scan prayer time row: %w", err)
		}
		times = append(times, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prayer times: %w", err)
	}

	return times, nil
}

// LoadRowForDay returns the city's row whose stored dd.MM.yyyy date falls on
// the same calendar day as day, compared by day-of-year and year. Returns
// ErrNotFound when no cached row matches, in which case the scheduling pass
// degrades to cancellation only.
func (s *Store) LoadRowForDay(ctx context.Context, cityID int, day time.Time) (models.PrayerTime, error) {
	times, err := s.LoadCityTimes(ctx, cityID)
	if err != nil {
		return models.PrayerTime{}, err
	}

	for _, row := range times {
		if row.MatchesDay(day) {
			return row, nil
		}
	}

	return models.PrayerTime{}, ErrNotFound
}

// LoadTodayRow returns the city's row for the current local calendar date.
func (s *Store) LoadTodayRow(ctx context.Context, cityID int) (models.PrayerTime, error) {
	return s.LoadRowForDay(ctx, cityID, time.Now())
}
