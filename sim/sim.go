// sim/sim.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"log/slog"
	"time"

	"github.com/aloft-sim/aloft/log"
	"github.com/aloft-sim/aloft/util"
)

// TickDuration is the real-time length of one simulation tick at rate
// 1. The world itself only counts ticks; wallclock time exists solely
// in this wrapper.
const TickDuration = 40 * time.Millisecond

// Sim paces a World against wallclock time and serializes access to it
// for interactive callers. Batch runs skip Sim entirely and call
// World.Advance in a loop; determinism lives in the World, pacing
// lives here.
type Sim struct {
	mu util.LoggingMutex

	World *World

	Paused  bool
	SimRate float32

	// updateTimeSlop carries the fractional tick left over from the
	// previous Update so slow frames do not lose simulation time.
	updateTimeSlop time.Duration
	lastUpdateTime time.Time

	lg *log.Logger
}

func NewSim(w *World, lg *log.Logger) *Sim {
	return &Sim{
		World:          w,
		SimRate:        1,
		lastUpdateTime: time.Now(),
		lg:             lg,
	}
}

// Update advances the world by however much wallclock time has passed
// since the last call, scaled by the sim rate. Interactive frontends
// call this every frame.
func (s *Sim) Update() {
	s.mu.Lock(s.lg)
	defer s.mu.Unlock(s.lg)

	startUpdate := time.Now()
	defer func() {
		if d := time.Since(startUpdate); d > 200*time.Millisecond {
			s.lg.Warn("unexpectedly long Sim Update() call", slog.Duration("duration", d))
		}
	}()

	if s.Paused {
		return
	}

	// Wallclock time since the last update, scaled by the sim rate,
	// plus whatever the previous update left unaccounted for.
	elapsed := time.Since(s.lastUpdateTime)
	elapsed = time.Duration(s.SimRate * float32(elapsed))
	s.Step(elapsed)
	s.lastUpdateTime = time.Now()
}

// Step advances the simulation by the given amount of scaled time,
// running however many whole ticks fit and banking the remainder.
func (s *Sim) Step(elapsed time.Duration) bool {
	elapsed += s.updateTimeSlop

	ns := int(elapsed / TickDuration)
	if ns > 25 {
		s.lg.Warn("unexpected hitch in update rate", slog.Duration("elapsed", elapsed),
			slog.Int("ticks", ns), slog.Duration("slop", s.updateTimeSlop))
	}
	for range ns {
		s.World.Advance()
	}
	s.updateTimeSlop = elapsed - time.Duration(ns)*TickDuration

	return ns > 0
}

func (s *Sim) TogglePause() {
	s.mu.Lock(s.lg)
	defer s.mu.Unlock(s.lg)
	s.Paused = !s.Paused
	s.lastUpdateTime = time.Now() // ignore time passage while paused
	s.updateTimeSlop = 0
}

func (s *Sim) SetSimRate(rate float32) {
	s.mu.Lock(s.lg)
	defer s.mu.Unlock(s.lg)
	if rate < 0.25 {
		rate = 0.25
	} else if rate > 16 {
		rate = 16
	}
	s.SimRate = rate
	s.lg.Infof("sim rate set to %f", s.SimRate)
}

// SingleStep advances exactly one tick, pausing first if needed.
func (s *Sim) SingleStep() {
	s.mu.Lock(s.lg)
	defer s.mu.Unlock(s.lg)
	s.Paused = true
	s.World.Advance()
	s.lastUpdateTime = time.Now()
	s.updateTimeSlop = 0
}

// PostOrder forwards an order to the world under the lock.
func (s *Sim) PostOrder(o Order) {
	s.mu.Lock(s.lg)
	defer s.mu.Unlock(s.lg)
	s.World.PostOrder(o)
}

// Snapshot returns a detached copy of the world state for rendering.
func (s *Sim) Snapshot() *StateSnapshot {
	s.mu.Lock(s.lg)
	defer s.mu.Unlock(s.lg)
	return s.World.Snapshot()
}

// DumpActor renders one actor for interactive inspection.
func (s *Sim) DumpActor(id ActorID) string {
	s.mu.Lock(s.lg)
	defer s.mu.Unlock(s.lg)
	return s.World.DumpActor(id)
}

// Subscribe taps the world's event stream. The stream has its own
// lock, so reading events does not contend with Update.
func (s *Sim) Subscribe() *EventsSubscription {
	s.mu.Lock(s.lg)
	defer s.mu.Unlock(s.lg)
	return s.World.Events.Subscribe()
}
