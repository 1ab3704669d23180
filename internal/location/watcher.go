package location

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yanosDev/awqat/internal/metrics"
)

// DefaultPollInterval is how often the watcher samples the position.
const DefaultPollInterval = 60 * time.Second

// Store is the subset of the local store the watcher writes to.
type Store interface {
	LastLocation(ctx context.Context) (string, error)
	SetLastLocation(ctx context.Context, name string) error
	UpdateDegree(ctx context.Context, value float64) error
}

// Watcher polls the coordinate source and reports when the resolved city
// changes. It must be started explicitly and stopped when the daemon shuts
// down; it never runs as a side effect of construction.
type Watcher struct {
	provider Provider
	geocoder Geocoder
	store    Store
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	interval time.Duration
	onCity   func(ctx context.Context, name string)
	onDenied func(ctx context.Context)

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	started bool
}

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	Provider Provider
	Geocoder Geocoder
	Store    Store
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger

	// Interval between position samples (default: DefaultPollInterval).
	Interval time.Duration

	// OnCityChange runs when the resolved city differs from the stored one,
	// after the store has been updated.
	OnCityChange func(ctx context.Context, name string)

	// OnPermissionDenied runs once per denial streak, switching consumers to
	// the location-independent path.
	OnPermissionDenied func(ctx context.Context)
}

// NewWatcher creates a stopped watcher.
func NewWatcher(opts WatcherOptions) *Watcher {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Watcher{
		provider: opts.Provider,
		geocoder: opts.Geocoder,
		store:    opts.Store,
		metrics:  opts.Metrics,
		logger:   opts.Logger.With().Str("component", "location_watcher").Logger(),
		interval: interval,
		onCity:   opts.OnCityChange,
		onDenied: opts.OnPermissionDenied,
	}
}

// Start begins polling. It samples once immediately, then every interval.
// Calling Start on a running watcher is a no-op.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true
	w.stop = make(chan struct{})
	w.done = make(chan struct{})

	go w.run(ctx, w.stop, w.done)
	w.logger.Info().Dur("interval", w.interval).Msg("location watcher started")
}

// Stop halts polling and waits for the in-flight sample to finish.
// Calling Stop on a stopped watcher is a no-op.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	stop, done := w.stop, w.done
	w.mu.Unlock()

	close(stop)
	<-done
	w.logger.Info().Msg("location watcher stopped")
}

func (w *Watcher) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	denied := false
	w.sample(ctx, &denied)
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sample(ctx, &denied)
		}
	}
}

// sample takes one position fix and routes it. denied tracks the current
// denial streak so the fallback callback fires once per streak.
func (w *Watcher) sample(ctx context.Context, denied *bool) {
	pos, err := w.provider.Current(ctx)
	if errors.Is(err, ErrPermissionDenied) {
		w.metrics.LocationRefresh("denied")
		if !*denied {
			*denied = true
			w.logger.Warn().Msg("coordinate source denied, using location-independent path")
			if w.onDenied != nil {
				w.onDenied(ctx)
			}
		}
		return
	}
	if err != nil {
		w.metrics.LocationRefresh("error")
		w.logger.Warn().Err(err).Msg("position sample failed")
		return
	}
	*denied = false

	if err := w.store.UpdateDegree(ctx, pos.Bearing); err != nil {
		w.logger.Warn().Err(err).Msg("bearing update failed")
	}

	name, err := w.geocoder.ReverseCity(ctx, pos.Lat, pos.Lon)
	if err != nil {
		w.metrics.LocationRefresh("error")
		w.logger.Warn().Err(err).Msg("reverse geocode failed")
		return
	}

	last, err := w.store.LastLocation(ctx)
	if err != nil {
		w.metrics.LocationRefresh("error")
		w.logger.Warn().Err(err).Msg("last location read failed")
		return
	}
	if name == last {
		w.metrics.LocationRefresh("unchanged")
		return
	}

	if err := w.store.SetLastLocation(ctx, name); err != nil {
		w.metrics.LocationRefresh("error")
		w.logger.Error().Err(err).Str("city", name).Msg("last location write failed")
		return
	}

	w.metrics.LocationRefresh("changed")
	w.logger.Info().Str("from", last).Str("to", name).Msg("city changed")
	if w.onCity != nil {
		w.onCity(ctx, name)
	}
}
