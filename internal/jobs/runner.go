// Package jobs runs named recurring background jobs with retry.
package jobs

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Policy decides what enqueueing a name that is already scheduled does.
type Policy int

const (
	// Replace cancels the existing entry and schedules the new one.
	Replace Policy = iota
	// Keep leaves the existing entry untouched.
	Keep
)

// Func is one job run. A returned error marks the run failed and triggers
// the retry ladder.
type Func func(ctx context.Context) error

// Runner schedules uniquely named recurring jobs. Each job runs once after
// its initial delay, then on its interval.
type Runner struct {
	cron       *cron.Cron
	logger     zerolog.Logger
	maxRetries int

	mu      sync.Mutex
	entries map[string]*entry
	running bool
}

type entry struct {
	cronID   cron.EntryID
	initial  *time.Timer
	interval time.Duration
}

// NewRunner creates a stopped runner.
func NewRunner(logger zerolog.Logger) *Runner {
	return &Runner{
		cron:       cron.New(),
		logger:     logger.With().Str("component", "job_runner").Logger(),
		maxRetries: 3,
		entries:    make(map[string]*entry),
	}
}

// Start begins executing scheduled entries.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true
	r.cron.Start()
	r.logger.Info().Msg("job runner started")
}

// Stop cancels all entries and waits for in-flight runs to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	for name, e := range r.entries {
		if e.initial != nil {
			e.initial.Stop()
		}
		if e.cronID != 0 {
			r.cron.Remove(e.cronID)
		}
		delete(r.entries, name)
	}
	r.mu.Unlock()

	<-r.cron.Stop().Done()
	r.logger.Info().Msg("job runner stopped")
}

// EnqueueUnique schedules fn under name: one run after initialDelay, then
// every interval. The name is the uniqueness key; policy decides whether an
// existing entry is replaced or kept.
func (r *Runner) EnqueueUnique(name string, policy Policy, initialDelay, interval time.Duration, fn Func) error {
	if interval <= 0 {
		return fmt.Errorf("enqueue %s: interval must be positive", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[name]; ok {
		if policy == Keep {
			r.logger.Debug().Str("job", name).Msg("entry exists, kept")
			return nil
		}
		if existing.initial != nil {
			existing.initial.Stop()
		}
		if existing.cronID != 0 {
			r.cron.Remove(existing.cronID)
		}
		delete(r.entries, name)
	}

	if initialDelay < 0 {
		initialDelay = 0
	}

	// The recurring entry is registered only after the first run so the
	// interval is anchored to it, not to enqueue time.
	e := &entry{interval: interval}
	e.initial = time.AfterFunc(initialDelay, func() {
		r.execute(name, fn)
		r.recur(name, e, fn)
	})
	r.entries[name] = e

	r.logger.Info().
		Str("job", name).
		Dur("initial_delay", initialDelay).
		Dur("interval", interval).
		Msg("job scheduled")
	return nil
}

// recur registers the recurring cron entry for e once its first run has
// completed. Skipped when the entry was replaced or removed in the meantime.
func (r *Runner) recur(name string, e *entry, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries[name] != e {
		return
	}
	cronID, err := r.cron.AddFunc(fmt.Sprintf("@every %s", e.interval), func() {
		r.execute(name, fn)
	})
	if err != nil {
		r.logger.Error().Err(err).Str("job", name).Msg("scheduling recurrence failed")
		delete(r.entries, name)
		return
	}
	e.cronID = cronID
}

// Remove drops the entry under name, if any.
func (r *Runner) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return
	}
	if e.initial != nil {
		e.initial.Stop()
	}
	if e.cronID != 0 {
		r.cron.Remove(e.cronID)
	}
	delete(r.entries, name)
	r.logger.Debug().Str("job", name).Msg("job removed")
}

// Scheduled reports whether name currently has an entry.
func (r *Runner) Scheduled(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[name]
	return ok
}

// execute runs fn once, retrying failed runs with exponential backoff.
func (r *Runner) execute(name string, fn Func) {
	runID := uuid.New()
	logger := r.logger.With().Str("job", name).Str("run_id", runID.String()).Logger()
	ctx := context.Background()

	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			logger.Warn().Err(lastErr).Int("attempt", attempt+1).Dur("backoff", backoff).Msg("retrying job")
			time.Sleep(backoff)
		}

		started := time.Now()
		lastErr = fn(ctx)
		if lastErr == nil {
			logger.Info().Dur("duration", time.Since(started)).Msg("job run complete")
			return
		}
	}

	logger.Error().Err(lastErr).Int("attempts", r.maxRetries+1).Msg("job run failed")
}
