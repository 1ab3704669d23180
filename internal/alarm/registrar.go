// Package alarm manages exact one-shot alarm registrations keyed by stable
// integer codes.
package alarm

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yanosDev/awqat/internal/metrics"
)

// Event describes one fired alarm.
type Event struct {
	Code    int       `json:"code"`
	ID      string    `json:"id"`
	At      time.Time `json:"scheduled_at"`
	FiredAt time.Time `json:"fired_at"`
}

// Registration is the visible state of one armed alarm.
type Registration struct {
	ID string    `json:"id"`
	At time.Time `json:"at"`
}

// Registrar registers exact alarms. Registering a code that already holds
// an alarm replaces it; registration never merges.
type Registrar interface {
	SetExact(code int, id string, at time.Time) error
	Cancel(code int) error
}

// Sink receives fired alarm events.
type Sink interface {
	Deliver(event Event)
}

// TimerRegistrar is an in-process Registrar backed by timers. A registration
// at an instant already in the past fires immediately.
type TimerRegistrar struct {
	sink    Sink
	metrics *metrics.Metrics
	logger  zerolog.Logger

	mu     sync.Mutex
	armed  map[int]*registration
	closed bool
}

type registration struct {
	id    string
	at    time.Time
	timer *time.Timer
}

// NewTimerRegistrar creates a registrar delivering fired alarms to sink.
func NewTimerRegistrar(sink Sink, m *metrics.Metrics, logger zerolog.Logger) *TimerRegistrar {
	return &TimerRegistrar{
		sink:    sink,
		metrics: m,
		logger:  logger.With().Str("component", "alarm_registrar").Logger(),
		armed:   make(map[int]*registration),
	}
}

// SetExact arms an alarm for the given code, replacing any existing
// registration under that code.
func (r *TimerRegistrar) SetExact(code int, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}

	if prev, ok := r.armed[code]; ok {
		prev.timer.Stop()
		delete(r.armed, code)
	}

	reg := &registration{id: id, at: at}
	reg.timer = time.AfterFunc(time.Until(at), func() { r.fire(code) })
	r.armed[code] = reg

	r.metrics.AlarmArmed()
	r.logger.Debug().Int("code", code).Str("id", id).Time("at", at).Msg("alarm armed")
	return nil
}

// Cancel removes the registration under code. Cancelling an absent code is
// a no-op.
func (r *TimerRegistrar) Cancel(code int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.armed[code]
	if !ok {
		return nil
	}
	reg.timer.Stop()
	delete(r.armed, code)

	r.metrics.AlarmCancelled()
	r.logger.Debug().Int("code", code).Str("id", reg.id).Msg("alarm cancelled")
	return nil
}

// Snapshot returns the currently armed registrations by code.
func (r *TimerRegistrar) Snapshot() map[int]Registration {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[int]Registration, len(r.armed))
	for code, reg := range r.armed {
		out[code] = Registration{ID: reg.id, At: reg.at}
	}
	return out
}

// Close cancels all registrations and rejects further ones.
func (r *TimerRegistrar) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for code, reg := range r.armed {
		reg.timer.Stop()
		delete(r.armed, code)
	}
}

func (r *TimerRegistrar) fire(code int) {
	r.mu.Lock()
	reg, ok := r.armed[code]
	if ok {
		delete(r.armed, code)
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	event := Event{Code: code, ID: reg.id, At: reg.at, FiredAt: time.Now()}
	r.metrics.AlarmFired()
	r.logger.Info().Int("code", code).Str("id", reg.id).Time("at", reg.at).Msg("alarm fired")
	if r.sink != nil {
		r.sink.Deliver(event)
	}
}
