package awqat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/yanosDev/awqat/internal/db"
	"github.com/yanosDev/awqat/internal/models"
)

type mockFetcher struct {
	locations []models.Location
	detail    models.CityDetail
	times     []models.PrayerTime
	eid       models.CityEid
	content   models.DailyContent
	verses    []models.QuranVerse

	locationCalls int
	detailCalls   int
	failLocations bool
}

func (m *mockFetcher) FetchLocations(ctx context.Context) ([]models.Location, error) {
	m.locationCalls++
	if m.failLocations {
		return nil, errors.New("network down")
	}
	return m.locations, nil
}

func (m *mockFetcher) FetchCityDetail(ctx context.Context, cityID int) (models.CityDetail, error) {
	m.detailCalls++
	return m.detail, nil
}

func (m *mockFetcher) FetchDailyTimes(ctx context.Context, cityID int) ([]models.PrayerTime, error) {
	return m.times, nil
}

func (m *mockFetcher) FetchCityEid(ctx context.Context, cityID int) (models.CityEid, error) {
	return m.eid, nil
}

func (m *mockFetcher) FetchDailyContent(ctx context.Context) (models.DailyContent, error) {
	return m.content, nil
}

func (m *mockFetcher) FetchQuran(ctx context.Context) ([]models.QuranVerse, error) {
	return m.verses, nil
}

func newTestRepository(t *testing.T, fetcher *mockFetcher) (*Repository, *db.Store) {
	t.Helper()
	store, err := db.New(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewRepository(fetcher, store, nil, zerolog.Nop()), store
}

func TestRepository_SyncLocations_Once(t *testing.T) {
	fetcher := &mockFetcher{locations: []models.Location{{ID: 1, Name: "Berlin"}}}
	repo, store := newTestRepository(t, fetcher)
	ctx := context.Background()

	if err := repo.SyncLocations(ctx); err != nil {
		t.Fatalf("SyncLocations(): %v", err)
	}
	if err := repo.SyncLocations(ctx); err != nil {
		t.Fatalf("second SyncLocations(): %v", err)
	}
	if fetcher.locationCalls != 1 {
		t.Errorf("expected 1 remote fetch, got %d", fetcher.locationCalls)
	}

	id, err := store.ResolveCityID(ctx, "Berlin")
	if err != nil || id != 1 {
		t.Errorf("ResolveCityID() = %d, %v", id, err)
	}
}

func TestRepository_RefreshCity(t *testing.T) {
	fetcher := &mockFetcher{
		locations: []models.Location{{ID: 9541, Name: "Berlin"}},
		detail:    models.CityDetail{ID: 9541, Name: "Berlin", CachedAt: time.Now()},
		times: []models.PrayerTime{
			{CityID: 9541, DateShort: "15.06.2024", Fajr: "03:00", Sunrise: "04:43", Dhuhr: "13:02", Asr: "17:11", Maghrib: "21:20", Isha: "23:06"},
		},
	}
	repo, store := newTestRepository(t, fetcher)
	ctx := context.Background()

	// First refresh seeds the directory on demand, then fetches city data.
	if err := repo.RefreshCity(ctx, "Berlin"); err != nil {
		t.Fatalf("RefreshCity(): %v", err)
	}
	if fetcher.locationCalls != 1 {
		t.Errorf("expected directory sync, got %d calls", fetcher.locationCalls)
	}

	times, err := store.LoadCityTimes(ctx, 9541)
	if err != nil || len(times) != 1 {
		t.Fatalf("LoadCityTimes() = %d rows, %v", len(times), err)
	}

	// While the cached detail is fresh the refresh is a no-op.
	if err := repo.RefreshCity(ctx, "Berlin"); err != nil {
		t.Fatalf("second RefreshCity(): %v", err)
	}
	if fetcher.detailCalls != 1 {
		t.Errorf("expected 1 detail fetch, got %d", fetcher.detailCalls)
	}
}

func TestRepository_RefreshCity_UnknownLocation(t *testing.T) {
	fetcher := &mockFetcher{locations: []models.Location{{ID: 1, Name: "Berlin"}}}
	repo, _ := newTestRepository(t, fetcher)

	err := repo.RefreshCity(context.Background(), "Atlantis")
	if !errors.Is(err, db.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_RefreshCity_FetchFailure(t *testing.T) {
	fetcher := &mockFetcher{failLocations: true}
	repo, _ := newTestRepository(t, fetcher)

	err := repo.RefreshCity(context.Background(), "Berlin")
	if err == nil || errors.Is(err, db.ErrNotFound) {
		t.Errorf("expected remote fetch failure, got %v", err)
	}
}

func TestRepository_SyncQuran_Once(t *testing.T) {
	fetcher := &mockFetcher{verses: []models.QuranVerse{{ID: 1, Surah: 1, Ayah: 1, Text: "..."}}}
	repo, store := newTestRepository(t, fetcher)
	ctx := context.Background()

	if err := repo.SyncQuran(ctx); err != nil {
		t.Fatalf("SyncQuran(): %v", err)
	}
	if err := repo.SyncQuran(ctx); err != nil {
		t.Fatalf("second SyncQuran(): %v", err)
	}

	count, err := store.CountQuranVerses(ctx)
	if err != nil || count != 1 {
		t.Errorf("CountQuranVerses() = %d, %v", count, err)
	}
}
