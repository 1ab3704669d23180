package alarm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestWebhookSink_Deliver(t *testing.T) {
	received := make(chan webhookPayload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		var payload webhookPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		received <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	at := time.Date(2024, 6, 15, 5, 15, 0, 0, time.Local)
	sink := NewWebhookSink(srv.URL, zerolog.Nop())
	sink.Deliver(Event{Code: 101, ID: "sunrise", At: at, FiredAt: at})

	select {
	case payload := <-received:
		if payload.EventType != "prayer_alarm" {
			t.Errorf("event type = %s", payload.EventType)
		}
		if payload.Data.Code != 101 || payload.Data.ID != "sunrise" {
			t.Errorf("data = %+v", payload.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("webhook never received")
	}
}

func TestWebhookSink_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewWebhookSink(srv.URL, zerolog.Nop())
	sink.Deliver(Event{Code: 104, ID: "maghrib", At: time.Now(), FiredAt: time.Now()})

	if got := calls.Load(); got != 2 {
		t.Errorf("server saw %d calls, want 2", got)
	}
}
