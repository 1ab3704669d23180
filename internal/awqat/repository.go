package awqat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/yanosDev/awqat/internal/db"
	"github.com/yanosDev/awqat/internal/metrics"
	"github.com/yanosDev/awqat/internal/models"
)

// Fetcher defines the remote provider operations the repository needs.
type Fetcher interface {
	FetchLocations(ctx context.Context) ([]models.Location, error)
	FetchCityDetail(ctx context.Context, cityID int) (models.CityDetail, error)
	FetchDailyTimes(ctx context.Context, cityID int) ([]models.PrayerTime, error)
	FetchCityEid(ctx context.Context, cityID int) (models.CityEid, error)
	FetchDailyContent(ctx context.Context) (models.DailyContent, error)
	FetchQuran(ctx context.Context) ([]models.QuranVerse, error)
}

// Cache defines the local store operations the repository needs.
type Cache interface {
	InsertLocations(ctx context.Context, locations []models.Location) error
	CountLocations(ctx context.Context) (int, error)
	ResolveCityID(ctx context.Context, locationName string) (int, error)
	UpsertCityDetail(ctx context.Context, detail models.CityDetail) error
	GetCityDetail(ctx context.Context, cityID int) (models.CityDetail, error)
	InsertPrayerTimes(ctx context.Context, times []models.PrayerTime) error
	UpsertCityEid(ctx context.Context, eid models.CityEid) error
	UpsertDailyContent(ctx context.Context, content models.DailyContent) error
	InsertQuranVerses(ctx context.Context, verses []models.QuranVerse) error
	CountQuranVerses(ctx context.Context) (int, error)
}

// cityRefreshTTL is how long a cached city record is considered fresh.
const cityRefreshTTL = 24 * time.Hour

// Repository glues the remote provider to the local cache. Writes are
// idempotent replacements keyed by city id, so concurrent refreshes race
// benignly (last write wins).
type Repository struct {
	fetcher Fetcher
	cache   Cache
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewRepository creates a new Repository.
func NewRepository(fetcher Fetcher, cache Cache, m *metrics.Metrics, logger zerolog.Logger) *Repository {
	return &Repository{
		fetcher: fetcher,
		cache:   cache,
		metrics: m,
		logger:  logger.With().Str("component", "awqat_repository").Logger(),
	}
}

// SyncLocations populates the location directory. The directory is fetched
// once; subsequent calls are no-ops while it is non-empty.
func (r *Repository) SyncLocations(ctx context.Context) error {
	count, err := r.cache.CountLocations(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.syncLocationsNow(ctx)
}

func (r *Repository) syncLocationsNow(ctx context.Context) error {
	locations, err := r.fetcher.FetchLocations(ctx)
	r.metrics.RemoteFetch("locations", err)
	if err != nil {
		return fmt.Errorf("sync locations: %w", err)
	}

	if err := r.cache.InsertLocations(ctx, locations); err != nil {
		return fmt.Errorf("store locations: %w", err)
	}

	r.logger.Info().Int("count", len(locations)).Msg("location directory synced")
	return nil
}

// RefreshCity resolves a location name to a city and refreshes the city's
// cached detail, eid and daily prayer-time table when the cached record is
// stale. Returns db.ErrNotFound when the name cannot be resolved even after
// a directory sync; callers treat that as "scheduling deferred".
func (r *Repository) RefreshCity(ctx context.Context, locationName string) error {
	cityID, err := r.cache.ResolveCityID(ctx, locationName)
	if errors.Is(err, db.ErrNotFound) {
		// First run: the directory may not exist yet.
		if syncErr := r.syncLocationsNow(ctx); syncErr != nil {
			return syncErr
		}
		cityID, err = r.cache.ResolveCityID(ctx, locationName)
	}
	if err != nil {
		return err
	}

	if detail, err := r.cache.GetCityDetail(ctx, cityID); err == nil {
		if time.Since(detail.CachedAt) < cityRefreshTTL {
			return nil
		}
	}

	detail, err := r.fetcher.FetchCityDetail(ctx, cityID)
	r.metrics.RemoteFetch("city_detail", err)
	if err != nil {
		return fmt.Errorf("refresh city %d: %w", cityID, err)
	}
	if err := r.cache.UpsertCityDetail(ctx, detail); err != nil {
		return err
	}

	times, err := r.fetcher.FetchDailyTimes(ctx, cityID)
	r.metrics.RemoteFetch("daily_times", err)
	if err != nil {
		return fmt.Errorf("refresh daily times %d: %w", cityID, err)
	}
	if err := r.cache.InsertPrayerTimes(ctx, times); err != nil {
		return err
	}

	// Eid times are informational; a failure does not fail the refresh.
	eid, err := r.fetcher.FetchCityEid(ctx, cityID)
	r.metrics.RemoteFetch("city_eid", err)
	if err != nil {
		r.logger.Warn().Err(err).Int("city_id", cityID).Msg("eid fetch failed")
	} else if err := r.cache.UpsertCityEid(ctx, eid); err != nil {
		return err
	}

	r.logger.Info().
		Int("city_id", cityID).
		Str("location", locationName).
		Int("days", len(times)).
		Msg("city data refreshed")
	return nil
}

// SyncDailyContent refreshes the location-independent daily reading.
func (r *Repository) SyncDailyContent(ctx context.Context) error {
	content, err := r.fetcher.FetchDailyContent(ctx)
	r.metrics.RemoteFetch("daily_content", err)
	if err != nil {
		return fmt.Errorf("sync daily content: %w", err)
	}
	return r.cache.UpsertDailyContent(ctx, content)
}

// SyncQuran populates the reference text corpus once.
func (r *Repository) SyncQuran(ctx context.Context) error {
	count, err := r.cache.CountQuranVerses(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	verses, err := r.fetcher.FetchQuran(ctx)
	r.metrics.RemoteFetch("quran", err)
	if err != nil {
		return fmt.Errorf("sync quran: %w", err)
	}

	if err := r.cache.InsertQuranVerses(ctx, verses); err != nil {
		return fmt.Errorf("store quran: %w", err)
	}

	r.logger.Info().Int("count", len(verses)).Msg("reference corpus synced")
	return nil
}
