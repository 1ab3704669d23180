package bootstrap

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yanosDev/awqat/internal/jobs"
)

// dailyJobName is the uniqueness key of the recurring scheduling pass.
const dailyJobName = "daily"

// Syncer covers the location-independent remote syncs of the init pass.
type Syncer interface {
	SyncQuran(ctx context.Context) error
	SyncDailyContent(ctx context.Context) error
}

// Scheduler enqueues the recurring daily pass.
type Scheduler interface {
	EnqueueUnique(name string, policy jobs.Policy, initialDelay, interval time.Duration, fn jobs.Func) error
}

// Orchestrator runs the initialization pass: seed the store, enqueue the
// daily scheduling job, and sync the location-independent remote data. The
// four tasks run concurrently; the pass is retried by its caller until all
// of them have succeeded once.
type Orchestrator struct {
	seeder    *Seeder
	syncer    Syncer
	scheduler Scheduler
	dailyRun  jobs.Func
	logger    zerolog.Logger

	now func() time.Time

	mu    sync.Mutex
	ready bool
}

// NewOrchestrator creates the initialization orchestrator. dailyRun is the
// scheduling pass enqueued under the daily recurrence.
func NewOrchestrator(seeder *Seeder, syncer Syncer, scheduler Scheduler, dailyRun jobs.Func, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		seeder:    seeder,
		syncer:    syncer,
		scheduler: scheduler,
		dailyRun:  dailyRun,
		logger:    logger.With().Str("component", "bootstrap").Logger(),
		now:       time.Now,
	}
}

// Ready reports whether a full pass has succeeded.
func (o *Orchestrator) Ready() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ready
}

// Run executes the initialization tasks concurrently. Once a run finishes
// with no failures, later calls are no-ops.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.mu.Lock()
	if o.ready {
		o.mu.Unlock()
		return nil
	}
	o.mu.Unlock()

	tasks := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{"seed", o.seeder.Run},
		{"daily_job", o.enqueueDaily},
		{"quran", o.syncer.SyncQuran},
		{"daily_content", o.syncer.SyncDailyContent},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(tasks))
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, name string, fn func(ctx context.Context) error) {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				o.logger.Error().Err(err).Str("task", name).Msg("init task failed")
				errs[i] = err
			}
		}(i, task.name, task.fn)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return err
	}

	o.mu.Lock()
	o.ready = true
	o.mu.Unlock()
	o.logger.Info().Msg("initialization complete")
	return nil
}

// enqueueDaily schedules the recurring pass so it lands shortly after the
// next midnight rollover. Re-running the init pass updates the entry.
func (o *Orchestrator) enqueueDaily(ctx context.Context) error {
	delay := FirstRunDelay(o.now())
	return o.scheduler.EnqueueUnique(dailyJobName, jobs.Replace, delay, DailyInterval, o.dailyRun)
}
