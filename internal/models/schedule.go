package models

import "fmt"

// PrayerEvent identifies one of the six daily prayer events.
type PrayerEvent string

const (
	EventFajr    PrayerEvent = "fajr"
	EventSunrise PrayerEvent = "sunrise"
	EventDhuhr   PrayerEvent = "dhuhr"
	EventAsr     PrayerEvent = "asr"
	EventMaghrib PrayerEvent = "maghrib"
	EventIsha    PrayerEvent = "isha"
)

// Events returns the six prayer events in ordinal order.
func Events() []PrayerEvent {
	return []PrayerEvent{EventFajr, EventSunrise, EventDhuhr, EventAsr, EventMaghrib, EventIsha}
}

// alarmCodes maps each prayer event to a stable integer alarm key.
// The mapping is explicit rather than derived from a string hash so the
// registration key for a given event never changes across builds.
var alarmCodes = map[PrayerEvent]int{
	EventFajr:    100,
	EventSunrise: 101,
	EventDhuhr:   102,
	EventAsr:     103,
	EventMaghrib: 104,
	EventIsha:    105,
}

// AlarmCode returns the stable alarm registration key for the event.
func (e PrayerEvent) AlarmCode() (int, error) {
	code, ok := alarmCodes[e]
	if !ok {
		return 0, fmt.Errorf("unknown prayer event %q", e)
	}
	return code, nil
}

// Valid reports whether the event is one of the six known events.
func (e PrayerEvent) Valid() bool {
	_, ok := alarmCodes[e]
	return ok
}

// Schedule holds the user-editable alarm configuration for one prayer event.
// Exactly six rows exist, one per ordinal, created once at first run.
type Schedule struct {
	// ID is the stable string key, equal to the prayer event name.
	ID string `json:"id"`
	// Ordinal selects the matching field in a day's prayer time row (0-5).
	Ordinal int `json:"ordinal"`
	// Enabled controls whether an alarm is armed for this event.
	Enabled bool `json:"enabled"`
	// RelativeMinutes shifts the fire time relative to the canonical time.
	// Negative fires before the event, positive after.
	RelativeMinutes int `json:"relative_minutes"`
}

// Event returns the schedule's prayer event.
func (s Schedule) Event() PrayerEvent {
	return PrayerEvent(s.ID)
}

// AlarmCode returns the stable alarm registration key for the schedule.
func (s Schedule) AlarmCode() (int, error) {
	return s.Event().AlarmCode()
}

// DefaultSchedules returns the six schedule rows seeded at first run.
// Sunrise and maghrib default to enabled with negative offsets, the rest
// are disabled with no offset.
func DefaultSchedules() []Schedule {
	return []Schedule{
		{ID: string(EventFajr), Ordinal: 0},
		{ID: string(EventSunrise), Ordinal: 1, Enabled: true, RelativeMinutes: -45},
		{ID: string(EventDhuhr), Ordinal: 2},
		{ID: string(EventAsr), Ordinal: 3},
		{ID: string(EventMaghrib), Ordinal: 4, Enabled: true, RelativeMinutes: -5},
		{ID: string(EventIsha), Ordinal: 5},
	}
}
