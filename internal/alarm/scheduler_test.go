package alarm

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/yanosDev/awqat/internal/models"
)

func testRow(day time.Time) models.PrayerTime {
	return models.PrayerTime{
		CityID:    9541,
		DateShort: day.Format(models.DateShortLayout),
		Fajr:      "04:30",
		Sunrise:   "06:00",
		Dhuhr:     "12:10",
		Asr:       "16:45",
		Maghrib:   "20:15",
		Isha:      "22:00",
	}
}

func TestFireTime(t *testing.T) {
	day := time.Date(2024, 6, 15, 9, 30, 0, 0, time.Local)
	row := testRow(day)

	tests := []struct {
		name     string
		schedule models.Schedule
		want     time.Time
	}{
		{
			name:     "negative offset",
			schedule: models.Schedule{ID: "sunrise", Ordinal: 1, RelativeMinutes: -45},
			want:     time.Date(2024, 6, 15, 5, 15, 0, 0, time.Local),
		},
		{
			name:     "zero offset",
			schedule: models.Schedule{ID: "dhuhr", Ordinal: 2},
			want:     time.Date(2024, 6, 15, 12, 10, 0, 0, time.Local),
		},
		{
			name:     "positive offset",
			schedule: models.Schedule{ID: "isha", Ordinal: 5, RelativeMinutes: 30},
			want:     time.Date(2024, 6, 15, 22, 30, 0, 0, time.Local),
		},
		{
			name:     "offset crossing midnight backwards",
			schedule: models.Schedule{ID: "fajr", Ordinal: 0, RelativeMinutes: -300},
			want:     time.Date(2024, 6, 14, 23, 30, 0, 0, time.Local),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FireTime(day, row, tt.schedule)
			if err != nil {
				t.Fatalf("FireTime(): %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("FireTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFireTime_BadOrdinal(t *testing.T) {
	day := time.Now()
	if _, err := FireTime(day, testRow(day), models.Schedule{ID: "x", Ordinal: 9}); err == nil {
		t.Error("expected error for ordinal out of range")
	}
}

func TestScheduler_Arm(t *testing.T) {
	registrar := NewTimerRegistrar(newCaptureSink(), nil, zerolog.Nop())
	defer registrar.Close()
	scheduler := NewScheduler(registrar, zerolog.Nop())

	day := time.Now().Add(24 * time.Hour)
	armed := scheduler.Arm(day, testRow(day), models.DefaultSchedules())

	// Defaults enable sunrise and maghrib only.
	if armed != 2 {
		t.Errorf("Arm() = %d, want 2", armed)
	}
	snap := registrar.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("registered %d alarms, want 2", len(snap))
	}
	if _, ok := snap[101]; !ok {
		t.Error("sunrise alarm missing")
	}
	if _, ok := snap[104]; !ok {
		t.Error("maghrib alarm missing")
	}
}

func TestScheduler_Arm_AllDisabled(t *testing.T) {
	registrar := NewTimerRegistrar(newCaptureSink(), nil, zerolog.Nop())
	defer registrar.Close()
	scheduler := NewScheduler(registrar, zerolog.Nop())

	schedules := models.DefaultSchedules()
	for i := range schedules {
		schedules[i].Enabled = false
	}

	day := time.Now().Add(24 * time.Hour)
	if armed := scheduler.Arm(day, testRow(day), schedules); armed != 0 {
		t.Errorf("Arm() = %d, want 0", armed)
	}
	if len(registrar.Snapshot()) != 0 {
		t.Error("disabled schedules produced registrations")
	}
}

func TestScheduler_RearmIsIdempotent(t *testing.T) {
	registrar := NewTimerRegistrar(newCaptureSink(), nil, zerolog.Nop())
	defer registrar.Close()
	scheduler := NewScheduler(registrar, zerolog.Nop())

	day := time.Now().Add(24 * time.Hour)
	row := testRow(day)
	schedules := models.DefaultSchedules()

	scheduler.Arm(day, row, schedules)
	first := registrar.Snapshot()
	scheduler.CancelAll()
	scheduler.Arm(day, row, schedules)
	second := registrar.Snapshot()

	if len(first) != len(second) {
		t.Fatalf("registration count changed: %d then %d", len(first), len(second))
	}
	for code, reg := range first {
		again, ok := second[code]
		if !ok {
			t.Errorf("code %d missing after re-arm", code)
			continue
		}
		if !reg.At.Equal(again.At) || reg.ID != again.ID {
			t.Errorf("code %d changed: %+v then %+v", code, reg, again)
		}
	}
}

func TestScheduler_CancelAll(t *testing.T) {
	registrar := NewTimerRegistrar(newCaptureSink(), nil, zerolog.Nop())
	defer registrar.Close()
	scheduler := NewScheduler(registrar, zerolog.Nop())

	day := time.Now().Add(24 * time.Hour)
	scheduler.Arm(day, testRow(day), models.DefaultSchedules())
	scheduler.CancelAll()

	if got := len(registrar.Snapshot()); got != 0 {
		t.Errorf("%d registrations survive CancelAll()", got)
	}
	// A second sweep over empty slots is harmless.
	scheduler.CancelAll()
}
