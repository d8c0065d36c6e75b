// Package state holds the last known accessory readings.
package state

import (
	"sync/atomic"
	"time"

	"codeberg.org/mutker/gpufanbridge/internal/telemetry"
	"github.com/jonboulle/clockwork"
)

// AccessoryState is the record served to the host framework.
type AccessoryState struct {
	RotationSpeed      float64
	TemperatureCelsius float64
	UpdatedAt          time.Time
}

// Powered is derived from the rotation speed rather than stored,
// so there is a single source of truth.
func (s AccessoryState) Powered() bool {
	return s.RotationSpeed >= 0
}

// Snapshot returns the reading pair without the timestamp
func (s AccessoryState) Snapshot() telemetry.Snapshot {
	return telemetry.Snapshot{
		RotationSpeed:      s.RotationSpeed,
		TemperatureCelsius: s.TemperatureCelsius,
	}
}

// Store owns one AccessoryState. Reads never block; writes replace the
// whole record in a single pointer swap.
type Store struct {
	current atomic.Pointer[AccessoryState]
	clock   clockwork.Clock
}

type Option func(*Store)

// WithClock sets the clock used to stamp writes
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(&AccessoryState{})

	return s
}

// Read returns the last committed state
func (s *Store) Read() AccessoryState {
	return *s.current.Load()
}

// Write commits a new reading pair
func (s *Store) Write(snap telemetry.Snapshot) {
	s.current.Store(&AccessoryState{
		RotationSpeed:      snap.RotationSpeed,
		TemperatureCelsius: snap.TemperatureCelsius,
		UpdatedAt:          s.clock.Now(),
	})
}
