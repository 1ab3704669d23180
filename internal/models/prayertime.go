package models

import (
	"fmt"
	"time"
)

// DateShortLayout is the textual date format used by the remote provider.
const DateShortLayout = "02.01.2006"

// TimeOfDayLayout is the 24-hour time format of the canonical event times.
const TimeOfDayLayout = "15:04"

// PrayerTime is one day's canonical prayer times for a city. Times are
// HH:mm strings already local to the city; no time zone conversion is
// applied to them anywhere.
type PrayerTime struct {
	CityID    int    `json:"city_id"`
	DateShort string `json:"gregorian_date_short"`
	Fajr      string `json:"fajr"`
	Sunrise   string `json:"sunrise"`
	Dhuhr     string `json:"dhuhr"`
	Asr       string `json:"asr"`
	Maghrib   string `json:"maghrib"`
	Isha      string `json:"isha"`
}

// Date parses the row's dd.MM.yyyy date.
func (p PrayerTime) Date() (time.Time, error) {
	d, err := time.ParseInLocation(DateShortLayout, p.DateShort, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse prayer time date %q: %w", p.DateShort, err)
	}
	return d, nil
}

// MatchesDay reports whether the row belongs to the same calendar day as t,
// compared by day-of-year and year.
func (p PrayerTime) MatchesDay(t time.Time) bool {
	d, err := p.Date()
	if err != nil {
		return false
	}
	return d.YearDay() == t.YearDay() && d.Year() == t.Year()
}

// TimeFor returns the canonical HH:mm string for the given schedule ordinal.
// Ordinal 0 is fajr, 5 is isha.
func (p PrayerTime) TimeFor(ordinal int) (string, error) {
	switch ordinal {
	case 0:
		return p.Fajr, nil
	case 1:
		return p.Sunrise, nil
	case 2:
		return p.Dhuhr, nil
	case 3:
		return p.Asr, nil
	case 4:
		return p.Maghrib, nil
	case 5:
		return p.Isha, nil
	default:
		return "", fmt.Errorf("prayer time ordinal out of range: %d", ordinal)
	}
}
