// sim/sim_test.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"testing"
	"time"
)

func TestStepBanksFractionalTicks(t *testing.T) {
	w := newTestWorld(t)
	s := NewSim(w, nil)

	if !s.Step(100 * time.Millisecond) {
		t.Fatalf("step with over two ticks of time did nothing")
	}
	if w.TickCount != 2 {
		t.Errorf("tick count %d after 100ms, want 2", w.TickCount)
	}
	// The 20ms remainder carries into the next step.
	s.Step(20 * time.Millisecond)
	if w.TickCount != 3 {
		t.Errorf("tick count %d after the banked remainder, want 3", w.TickCount)
	}
	if s.Step(39 * time.Millisecond) {
		t.Errorf("step under one tick of time ran a tick")
	}
	if w.TickCount != 3 {
		t.Errorf("tick count %d, want 3", w.TickCount)
	}
}

func TestSingleStep(t *testing.T) {
	w := newTestWorld(t)
	s := NewSim(w, nil)

	s.SingleStep()
	if !s.Paused {
		t.Errorf("single step did not pause")
	}
	if w.TickCount != 1 {
		t.Errorf("tick count %d after single step", w.TickCount)
	}

	// Update while paused is a no-op.
	s.Update()
	if w.TickCount != 1 {
		t.Errorf("paused update advanced the world")
	}
}

func TestSetSimRateClamps(t *testing.T) {
	s := NewSim(newTestWorld(t), nil)
	s.SetSimRate(0.01)
	if s.SimRate != 0.25 {
		t.Errorf("rate %f, want the lower clamp", s.SimRate)
	}
	s.SetSimRate(100)
	if s.SimRate != 16 {
		t.Errorf("rate %f, want the upper clamp", s.SimRate)
	}
}

func TestTogglePauseResetsSlop(t *testing.T) {
	w := newTestWorld(t)
	s := NewSim(w, nil)
	s.Step(30 * time.Millisecond) // banked, no tick yet

	s.TogglePause()
	s.TogglePause()
	if s.Step(30 * time.Millisecond) {
		t.Errorf("slop survived the pause")
	}
	if w.TickCount != 0 {
		t.Errorf("tick count %d, want 0", w.TickCount)
	}
}
