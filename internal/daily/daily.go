// Package daily implements the once-a-day scheduling pass that turns cached
// prayer times into alarm registrations.
package daily

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

// Store is the subset of the local store the job reads.
type Store interface {
	LastLocation(ctx context.Context) (string, error)
	ResolveCityID(ctx context.Context, locationName string) (int, error)
	LoadRowForDay(ctx context.Context, cityID int, day time.Time) (models.PrayerTime, error)
	Schedules(ctx context.Context) ([]models.Schedule, error)
}

// Syncer refreshes remote-backed caches before the scheduling pass.
type Syncer interface {
	RefreshCity(ctx context.Context, locationName string) error
	SyncDailyContent(ctx context.Context) error
}

// Armer sweeps and registers prayer alarms.
type Armer interface {
	CancelAll()
	Arm(day time.Time, row models.PrayerTime, schedules []models.Schedule) int
}

// Job is the daily scheduling pass. Every run starts by cancelling all six
// alarm slots, so a degraded run leaves no stale registrations behind.
type Job struct {
	store   Store
	syncer  Syncer
	armer   Armer
	metrics *metrics.Metrics
	logger  zerolog.Logger

	// now is swapped in tests.
	now func() time.Time
}

// NewJob creates the daily scheduling job.
func NewJob(store Store, syncer Syncer, armer Armer, m *metrics.Metrics, logger zerolog.Logger) *Job {
	return &Job{
		store:   store,
		syncer:  syncer,
		armer:   armer,
		metrics: m,
		logger:  logger.With().Str("component", "daily_job").Logger(),
		now:     time.Now,
	}
}

// Run executes one scheduling pass. A missing location or missing day row
// degrades to the cancel-only sweep and returns nil; only transient failures
// (network, storage) return an error so the caller retries.
func (j *Job) Run(ctx context.Context) error {
	j.armer.CancelAll()

	location, err := j.store.LastLocation(ctx)
	if err != nil {
		j.metrics.SyncRun("error")
		return fmt.Errorf("read last location: %w", err)
	}
	if location == "" {
		j.logger.Warn().Msg("no known location, alarms stay cancelled")
		j.syncContent(ctx)
		j.metrics.SyncRun("degraded")
		return nil
	}

	if err := j.syncer.RefreshCity(ctx, location); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			j.logger.Warn().Str("location", location).Msg("location not in directory, alarms stay cancelled")
			j.syncContent(ctx)
			j.metrics.SyncRun("degraded")
			return nil
		}
		j.metrics.SyncRun("error")
		return fmt.Errorf("refresh city: %w", err)
	}

	cityID, err := j.store.ResolveCityID(ctx, location)
	if err != nil {
		j.metrics.SyncRun("error")
		return fmt.Errorf("resolve city: %w", err)
	}

	day := j.now()
	row, err := j.store.LoadRowForDay(ctx, cityID, day)
	if errors.Is(err, db.ErrNotFound) {
		j.logger.Warn().Int("city_id", cityID).Msg("no prayer time row for today, alarms stay cancelled")
		j.syncContent(ctx)
		j.metrics.SyncRun("degraded")
		return nil
	}
	if err != nil {
		j.metrics.SyncRun("error")
		return fmt.Errorf("load today's row: %w", err)
	}

	schedules, err := j.store.Schedules(ctx)
	if err != nil {
		j.metrics.SyncRun("error")
		return fmt.Errorf("load schedules: %w", err)
	}

	armed := j.armer.Arm(day, row, schedules)
	j.syncContent(ctx)

	j.metrics.SyncRun("ok")
	j.logger.Info().
		Str("location", location).
		Int("city_id", cityID).
		Int("armed", armed).
		Msg("daily scheduling pass complete")
	return nil
}

// syncContent refreshes the location-independent daily reading. Failures are
// logged only; content is never load-bearing for scheduling.
func (j *Job) syncContent(ctx context.Context) {
	if err := j.syncer.SyncDailyContent(ctx); err != nil {
		j.logger.Warn().Err(err).Msg("daily content sync failed")
	}
}
