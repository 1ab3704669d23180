package alarm

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/yanosDev/awqat/internal/models"
)

// FireTime computes the fire instant for one schedule against a day's prayer
// time row. The canonical HH:mm string is anchored to the calendar date of
// day in local time, then shifted by the schedule's relative minutes.
func FireTime(day time.Time, row models.PrayerTime, schedule models.Schedule) (time.Time, error) {
	raw, err := row.TimeFor(schedule.Ordinal)
	if err != nil {
		return time.Time{}, err
	}
	tod, err := time.ParseInLocation(models.TimeOfDayLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse event time %q for %s: %w", raw, schedule.ID, err)
	}

	at := time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, time.Local)
	return at.Add(time.Duration(schedule.RelativeMinutes) * time.Minute), nil
}

// Scheduler turns schedule rows into alarm registrations.
type Scheduler struct {
	registrar Registrar
	logger    zerolog.Logger
}

// NewScheduler creates a scheduler over the given registrar.
func NewScheduler(registrar Registrar, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		registrar: registrar,
		logger:    logger.With().Str("component", "alarm_scheduler").Logger(),
	}
}

// CancelAll cancels the registration of every prayer event. Individual
// cancel failures are logged and skipped so one bad slot never blocks the
// sweep.
func (s *Scheduler) CancelAll() {
	for _, event := range models.Events() {
		code, err := event.AlarmCode()
		if err != nil {
			s.logger.Error().Err(err).Msg("cancel sweep: bad event")
			continue
		}
		if err := s.registrar.Cancel(code); err != nil {
			s.logger.Warn().Err(err).Int("code", code).Msg("cancel failed")
		}
	}
}

// Arm registers one alarm per enabled schedule, anchored to day's row.
// Disabled schedules are skipped. A failure to arm one schedule is logged
// and does not block the remaining schedules. Returns the number of alarms
// actually registered.
func (s *Scheduler) Arm(day time.Time, row models.PrayerTime, schedules []models.Schedule) int {
	armed := 0
	for _, schedule := range schedules {
		if !schedule.Enabled {
			continue
		}

		code, err := schedule.AlarmCode()
		if err != nil {
			s.logger.Error().Err(err).Str("id", schedule.ID).Msg("arm: bad schedule")
			continue
		}
		at, err := FireTime(day, row, schedule)
		if err != nil {
			s.logger.Error().Err(err).Str("id", schedule.ID).Msg("arm: fire time")
			continue
		}
		if err := s.registrar.SetExact(code, schedule.ID, at); err != nil {
			s.logger.Error().Err(err).Str("id", schedule.ID).Msg("arm: registration")
			continue
		}
		armed++
	}
	return armed
}
