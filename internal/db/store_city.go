package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/yanosDev/awqat/internal/models"
)

// UpsertCityDetail replaces the cached record for a city. Concurrent writers
// for the same id race benignly: the row always holds exactly one complete
// record, last write wins.
func (s *Store) UpsertCityDetail(ctx context.Context, detail models.CityDetail) error {
	cachedAt := detail.CachedAt
	if cachedAt.IsZero() {
		cachedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO city_details (
			id, name, code, geographic_qibla_angle, distance_to_kaaba,
			qibla_angle, city, city_en, country, country_en, cached_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			code = excluded.code,
			geographic_qibla_angle = excluded.geographic_qibla_angle,
			distance_to_kaaba = excluded.distance_to_kaaba,
			qibla_angle = excluded.qibla_angle,
			city = excluded.city,
			city_en = excluded.city_en,
			country = excluded.country,
			country_en = excluded.country_en,
			cached_at = excluded.cached_at
	`,
		detail.ID,
		detail.Name,
		nullString(detail.Code),
		detail.GeographicQiblaAngle,
		detail.DistanceToKaaba,
		detail.QiblaAngle,
		detail.City,
		nullString(detail.CityEn),
		detail.Country,
		detail.CountryEn,
		cachedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert city detail %d: %w", detail.ID, err)
	}
	return nil
}

// GetCityDetail returns the cached record for a city id.
func (s *Store) GetCityDetail(ctx context.Context, cityID int) (models.CityDetail, error) {
	var (
		detail       models.CityDetail
		code, cityEn sql.NullString
		cachedAtStr  string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, code, geographic_qibla_angle, distance_to_kaaba,
		       qibla_angle, city, city_en, country, country_en, cached_at
		FROM city_details
		WHERE id = ?
	`, cityID).Scan(
		&detail.ID,
		&detail.Name,
		&code,
		&detail.GeographicQiblaAngle,
		&detail.DistanceToKaaba,
		&detail.QiblaAngle,
		&detail.City,
		&cityEn,
		&detail.Country,
		&detail.CountryEn,
		&cachedAtStr,
	)
	if err == sql.ErrNoRows {
		return models.CityDetail{}, ErrNotFound
	}
	if err != nil {
		return models.CityDetail{}, fmt.Errorf("get city detail %d: %w", cityID, err)
	}

	detail.Code = code.String
	detail.CityEn = cityEn.String
	if t, err := time.Parse(time.RFC3339, cachedAtStr); err == nil {
		detail.CachedAt = t
	}

	return detail, nil
}

// UpsertCityEid replaces a city's cached eid prayer times.
func (s *Store) UpsertCityEid(ctx context.Context, eid models.CityEid) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO city_eids (
			city_id, eid_al_adha_hijri, eid_al_adha_date, eid_al_adha_time,
			eid_al_fitr_hijri, eid_al_fitr_date, eid_al_fitr_time
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(city_id) DO UPDATE SET
			eid_al_adha_hijri = excluded.eid_al_adha_hijri,
			eid_al_adha_date = excluded.eid_al_adha_date,
			eid_al_adha_time = excluded.eid_al_adha_time,
			eid_al_fitr_hijri = excluded.eid_al_fitr_hijri,
			eid_al_fitr_date = excluded.eid_al_fitr_date,
			eid_al_fitr_time = excluded.eid_al_fitr_time
	`,
		eid.CityID,
		eid.EidAlAdhaHijri,
		eid.EidAlAdhaDate,
		eid.EidAlAdhaTime,
		eid.EidAlFitrHijri,
		eid.EidAlFitrDate,
		eid.EidAlFitrTime,
	)
	if err != nil {
		return fmt.Errorf("upsert city eid %d: %w", eid.CityID, err)
	}
	return nil
}

// UpdateDegree replaces the single last-known-bearing row.
func (s *Store) UpdateDegree(ctx context.Context, value float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO degree (id, value, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, value, time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("update degree: %w", err)
	}
	return nil
}

// Degree returns the last known device bearing.
func (s *Store) Degree(ctx context.Context) (models.Degree, error) {
	var (
		degree       models.Degree
		updatedAtStr string
	)
	err := s.db.QueryRowContext(ctx, `SELECT value, updated_at FROM degree WHERE id = 1`).
		Scan(&degree.Value, &updatedAtStr)
	if err == sql.ErrNoRows {
		return models.Degree{}, ErrNotFound
	}
	if err != nil {
		return models.Degree{}, fmt.Errorf("get degree: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, updatedAtStr); err == nil {
		degree.UpdatedAt = t
	}
	return degree, nil
}
