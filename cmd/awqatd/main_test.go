package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/yanosDev/awqat/internal/bootstrap"
	"github.com/yanosDev/awqat/internal/db"
	"github.com/yanosDev/awqat/internal/jobs"
	"github.com/yanosDev/awqat/internal/location"
)

type noopSyncer struct{}

func (noopSyncer) SyncQuran(ctx context.Context) error        { return nil }
func (noopSyncer) SyncDailyContent(ctx context.Context) error { return nil }

type recordingScheduler struct {
	enqueued atomic.Int32
}

func (s *recordingScheduler) EnqueueUnique(name string, policy jobs.Policy, initialDelay, interval time.Duration, fn jobs.Func) error {
	s.enqueued.Add(1)
	return nil
}

type fixedGeocoder struct{ city string }

func (g fixedGeocoder) ReverseCity(ctx context.Context, lat, lon float64) (string, error) {
	return g.city, nil
}

// A restart where the position source resolves to the stored city keeps the
// watcher silent, so the initialization pass must run before watching starts.
func TestStartBackground_InitRunsWithUnchangedCity(t *testing.T) {
	store, err := db.New(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("db.New(): %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	if err := store.SetLastLocation(ctx, "Istanbul"); err != nil {
		t.Fatal(err)
	}

	scheduler := &recordingScheduler{}
	seeder := bootstrap.NewSeeder(store, zerolog.Nop())
	orchestrator := bootstrap.NewOrchestrator(seeder, noopSyncer{}, scheduler,
		func(ctx context.Context) error { return nil }, zerolog.Nop())

	var cityChanges atomic.Int32
	watcher := location.NewWatcher(location.WatcherOptions{
		Provider: location.StaticProvider{Position: location.Coordinates{Lat: 41.01, Lon: 28.97}},
		Geocoder: fixedGeocoder{city: "Istanbul"},
		Store:    store,
		Logger:   zerolog.Nop(),
		Interval: 10 * time.Millisecond,
		OnCityChange: func(ctx context.Context, name string) {
			cityChanges.Add(1)
		},
	})

	startBackground(ctx, orchestrator, watcher, zerolog.Nop())
	defer watcher.Stop()

	time.Sleep(100 * time.Millisecond)
	if !orchestrator.Ready() {
		t.Error("initialization pass never completed")
	}
	if scheduler.enqueued.Load() == 0 {
		t.Error("daily job never enqueued")
	}
	if cityChanges.Load() != 0 {
		t.Error("unchanged city reported as a change")
	}
}
