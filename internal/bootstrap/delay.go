// Package bootstrap seeds the local store on first run and drives the
// concurrent initialization pass.
package bootstrap

import "time"

// DailyInterval is the recurrence of the daily scheduling pass.
const DailyInterval = 24 * time.Hour

// firstRunMargin keeps the pass clear of the provider's own midnight rollover.
const firstRunMargin = 20 * time.Minute

// FirstRunDelay returns how long to wait before the first daily scheduling
// pass. Within the first hour of the day the pass runs after the margin
// alone; later it waits for the next midnight plus the margin, so the
// recurring pass always lands shortly after midnight.
func FirstRunDelay(now time.Time) time.Duration {
	if now.Hour() < 1 {
		return firstRunMargin
	}
	return time.Duration(24-now.Hour())*time.Hour + firstRunMargin
}
