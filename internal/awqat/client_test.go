package awqat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newTestProvider(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var logins atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/Auth/Login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("login: expected POST, got %s", r.Method)
		}
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode login request: %v", err)
		}
		if req.Email != "user@example.com" {
			t.Errorf("login email = %q", req.Email)
		}
		logins.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"accessToken": "test-token"},
		})
	})
	requireToken := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer test-token"
	}
	mux.HandleFunc("/api/Place/Cities", func(w http.ResponseWriter, r *http.Request) {
		if !requireToken(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": 9541, "code": "BERLIN", "name": "Berlin"},
				{"id": 9620, "code": "HAMBURG", "name": "Hamburg"},
			},
		})
	})
	mux.HandleFunc("/api/Place/CityDetail/9541", func(w http.ResponseWriter, r *http.Request) {
		if !requireToken(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"id": 9541, "name": "Berlin", "qiblaAngle": "136.5",
				"city": "Berlin", "country": "Almanya", "countryEn": "Germany",
			},
		})
	})
	mux.HandleFunc("/api/PrayerTime/Daily/9541", func(w http.ResponseWriter, r *http.Request) {
		if !requireToken(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"gregorianDateShort": "15.06.2024", "fajr": "03:00", "sunrise": "04:43", "dhuhr": "13:02", "asr": "17:11", "maghrib": "21:20", "isha": "23:06"},
			},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &logins
}

func TestClient_FetchLocations(t *testing.T) {
	server, logins := newTestProvider(t)
	client := NewClient(server.URL, "user@example.com", "secret")

	locations, err := client.FetchLocations(context.Background())
	if err != nil {
		t.Fatalf("FetchLocations(): %v", err)
	}
	if len(locations) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(locations))
	}
	if locations[0].ID != 9541 || locations[0].Name != "Berlin" {
		t.Errorf("unexpected first location: %+v", locations[0])
	}

	// Second call reuses the cached token.
	if _, err := client.FetchLocations(context.Background()); err != nil {
		t.Fatalf("second FetchLocations(): %v", err)
	}
	if got := logins.Load(); got != 1 {
		t.Errorf("expected 1 login, got %d", got)
	}
}

func TestClient_FetchCityDetail(t *testing.T) {
	server, _ := newTestProvider(t)
	client := NewClient(server.URL, "user@example.com", "secret")

	detail, err := client.FetchCityDetail(context.Background(), 9541)
	if err != nil {
		t.Fatalf("FetchCityDetail(): %v", err)
	}
	if detail.ID != 9541 || detail.QiblaAngle != "136.5" || detail.CountryEn != "Germany" {
		t.Errorf("unexpected detail: %+v", detail)
	}
	if detail.CachedAt.IsZero() {
		t.Error("CachedAt not set")
	}
}

func TestClient_FetchDailyTimes(t *testing.T) {
	server, _ := newTestProvider(t)
	client := NewClient(server.URL, "user@example.com", "secret")

	times, err := client.FetchDailyTimes(context.Background(), 9541)
	if err != nil {
		t.Fatalf("FetchDailyTimes(): %v", err)
	}
	if len(times) != 1 {
		t.Fatalf("expected 1 row, got %d", len(times))
	}
	row := times[0]
	if row.CityID != 9541 || row.DateShort != "15.06.2024" || row.Maghrib != "21:20" {
		t.Errorf("unexpected row: %+v", row)
	}
}

func TestClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "user@example.com", "secret")
	if _, err := client.FetchLocations(context.Background()); err == nil {
		t.Error("expected error on 500")
	}
}
