package location

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeStore struct {
	mu      sync.Mutex
	last    string
	bearing float64
	writes  int
}

func (s *fakeStore) LastLocation(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, nil
}

func (s *fakeStore) SetLastLocation(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = name
	s.writes++
	return nil
}

func (s *fakeStore) UpdateDegree(ctx context.Context, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bearing = value
	return nil
}

type fakeGeocoder struct {
	name string
}

func (g fakeGeocoder) ReverseCity(ctx context.Context, lat, lon float64) (string, error) {
	return g.name, nil
}

func TestWatcher_CityChange(t *testing.T) {
	store := &fakeStore{last: "Hamburg"}
	changed := make(chan string, 1)

	w := NewWatcher(WatcherOptions{
		Provider: StaticProvider{Position: Coordinates{Lat: 52.52, Lon: 13.405, Bearing: 180}},
		Geocoder: fakeGeocoder{name: "Berlin"},
		Store:    store,
		Logger:   zerolog.Nop(),
		Interval: time.Hour,
		OnCityChange: func(ctx context.Context, name string) {
			changed <- name
		},
	})

	w.Start(context.Background())
	defer w.Stop()

	select {
	case name := <-changed:
		if name != "Berlin" {
			t.Errorf("change callback got %q, want Berlin", name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("city change callback never fired")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.last != "Berlin" {
		t.Errorf("stored location = %q, want Berlin", store.last)
	}
	if store.bearing != 180 {
		t.Errorf("stored bearing = %v, want 180", store.bearing)
	}
}

func TestWatcher_UnchangedCity(t *testing.T) {
	store := &fakeStore{last: "Berlin"}
	w := NewWatcher(WatcherOptions{
		Provider: StaticProvider{Position: Coordinates{Lat: 52.52, Lon: 13.405}},
		Geocoder: fakeGeocoder{name: "Berlin"},
		Store:    store,
		Logger:   zerolog.Nop(),
		Interval: time.Hour,
		OnCityChange: func(ctx context.Context, name string) {
			t.Error("callback fired for unchanged city")
		},
	})

	w.Start(context.Background())
	w.Stop()

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.writes != 0 {
		t.Errorf("expected no location writes, got %d", store.writes)
	}
}

func TestWatcher_PermissionDenied(t *testing.T) {
	denied := make(chan struct{}, 1)
	w := NewWatcher(WatcherOptions{
		Provider: DeniedProvider{},
		Geocoder: fakeGeocoder{name: "Berlin"},
		Store:    &fakeStore{},
		Logger:   zerolog.Nop(),
		Interval: time.Hour,
		OnCityChange: func(ctx context.Context, name string) {
			t.Error("city callback fired despite denial")
		},
		OnPermissionDenied: func(ctx context.Context) {
			denied <- struct{}{}
		},
	})

	w.Start(context.Background())
	defer w.Stop()

	select {
	case <-denied:
	case <-time.After(2 * time.Second):
		t.Fatal("denial callback never fired")
	}
}

func TestWatcher_StartStopIdempotent(t *testing.T) {
	w := NewWatcher(WatcherOptions{
		Provider: DeniedProvider{},
		Geocoder: fakeGeocoder{},
		Store:    &fakeStore{},
		Logger:   zerolog.Nop(),
		Interval: time.Hour,
	})

	w.Stop() // stopped watcher: no-op
	w.Start(context.Background())
	w.Start(context.Background()) // running watcher: no-op
	w.Stop()
	w.Stop()
}
