// sim/aircraft_test.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"testing"

	"github.com/aloft-sim/aloft/math"
	"github.com/aloft-sim/aloft/terrain"
)

func eventCount(events []Event, ty EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == ty {
			n++
		}
	}
	return n
}

func TestTakeOffGrantsConditions(t *testing.T) {
	w := newTestWorld(t)
	a := mustSpawn(t, w, "transport", math.Cell{X: 5, Y: 5}, 0)
	sub := w.Events.Subscribe()

	if a.Aircraft.Airborne() || a.ConditionActive("airborne") {
		t.Errorf("grounded aircraft claims to be airborne")
	}

	a.QueueActivity(w, NewTakeOff(), false)
	advance(w, 35)

	if dat := w.Terrain.DistanceAboveTerrain(a.Pos); dat != 1280 {
		t.Errorf("expected cruise altitude 1280, got %d", dat)
	}
	if !a.Aircraft.Airborne() || !a.Aircraft.Cruising() {
		t.Errorf("aircraft at cruise altitude not airborne/cruising")
	}
	if !a.ConditionActive("airborne") || !a.ConditionActive("cruising") {
		t.Errorf("altitude conditions not granted")
	}
	if n := a.ConditionCount("airborne"); n != 1 {
		t.Errorf("airborne granted %d times, want 1", n)
	}

	events := sub.Get()
	if eventCount(events, TookOffEvent) != 1 {
		t.Errorf("expected exactly one takeoff event")
	}
	if eventCount(events, ReachedCruiseEvent) != 1 {
		t.Errorf("expected exactly one reached-cruise event")
	}

	a.QueueActivity(w, NewLand(), false)
	advance(w, 35)

	if dat := w.Terrain.DistanceAboveTerrain(a.Pos); dat != 0 {
		t.Errorf("expected to be on the ground, at %d", dat)
	}
	if a.Aircraft.Airborne() || a.Aircraft.Cruising() {
		t.Errorf("grounded aircraft still airborne/cruising")
	}
	if a.ConditionActive("airborne") || a.ConditionActive("cruising") {
		t.Errorf("altitude conditions not revoked after landing")
	}

	events = sub.Get()
	if eventCount(events, LeftCruiseEvent) != 1 || eventCount(events, LandedEvent) != 1 {
		t.Errorf("missing left-cruise or landed event")
	}
	checkClean(t, w)
}

func TestMoveToCellArrivesExactly(t *testing.T) {
	w := newTestWorld(t)
	a := mustSpawn(t, w, "transport", math.Cell{X: 2, Y: 2}, 0)

	dest := math.Cell{X: 10, Y: 2}
	a.Aircraft.MoveToCell(w, dest, false)
	advance(w, 150)

	want := w.Terrain.CenterOfCell(dest)
	if a.Pos.X != want.X || a.Pos.Y != want.Y {
		t.Errorf("arrived at (%d,%d), want (%d,%d)", a.Pos.X, a.Pos.Y, want.X, want.Y)
	}
	if !a.Aircraft.Cruising() {
		t.Errorf("aircraft not at cruise after move")
	}
	if !a.IdleActivity() {
		t.Errorf("activities still queued after arrival")
	}
}

func TestCanLand(t *testing.T) {
	w := newTestWorld(t)
	transport := mustSpawn(t, w, "transport", math.Cell{X: 1, Y: 1}, 1280)
	gunship := mustSpawn(t, w, "gunship", math.Cell{X: 1, Y: 3}, 1280)

	mustSpawn(t, w, "pad", math.Cell{X: 5, Y: 5}, 0)
	w.Terrain.SetTile(math.Cell{X: 5, Y: 5}, terrain.TileRock) // host overrides terrain
	w.Terrain.SetTile(math.Cell{X: 7, Y: 5}, terrain.TileWater)
	mustSpawn(t, w, "transport", math.Cell{X: 9, Y: 5}, 0)
	mustSpawn(t, w, "transport", math.Cell{X: 11, Y: 5}, 1280)
	mustSpawn(t, w, "infantry", math.Cell{X: 13, Y: 5}, 0)
	crate := mustSpawn(t, w, "crate", math.Cell{X: 15, Y: 5}, 0)
	advance(w, 1) // altitude trackers pick up spawn altitudes

	for _, test := range []struct {
		name string
		ac   *Aircraft
		cell math.Cell
		want bool
	}{
		{"empty clear cell", transport.Aircraft, math.Cell{X: 3, Y: 5}, true},
		{"own dock host on rock", transport.Aircraft, math.Cell{X: 5, Y: 5}, true},
		{"water", transport.Aircraft, math.Cell{X: 7, Y: 5}, false},
		{"grounded aircraft blocks", transport.Aircraft, math.Cell{X: 9, Y: 5}, false},
		{"airborne aircraft does not block", transport.Aircraft, math.Cell{X: 11, Y: 5}, true},
		{"mobile unit does not block", transport.Aircraft, math.Cell{X: 13, Y: 5}, true},
		{"crate blocks non-crusher", transport.Aircraft, math.Cell{X: 15, Y: 5}, false},
		{"crate crushed by gunship", gunship.Aircraft, math.Cell{X: 15, Y: 5}, true},
		{"outside map", transport.Aircraft, math.Cell{X: -1, Y: 5}, false},
	} {
		if got := test.ac.CanLand(w, test.cell, nil); got != test.want {
			t.Errorf("%s: CanLand = %v, want %v", test.name, got, test.want)
		}
	}

	if !transport.Aircraft.CanLand(w, math.Cell{X: 15, Y: 5}, crate) {
		t.Errorf("ignored occupant still blocks landing")
	}
}

func TestForcedLandingCycle(t *testing.T) {
	w := newTestWorld(t)
	a := mustSpawn(t, w, "gunship", math.Cell{X: 5, Y: 5}, 1280)
	a.Facing = 256
	sub := w.Events.Subscribe()
	advance(w, 1)

	tok := a.GrantCondition("emp")
	advance(w, 2)
	if !a.Aircraft.ForceLanding {
		t.Fatalf("land-on condition did not trigger a forced landing")
	}
	advance(w, 60)
	if dat := w.Terrain.DistanceAboveTerrain(a.Pos); dat != 0 {
		t.Errorf("forced landing never reached the ground, at %d", dat)
	}
	if eventCount(sub.Get(), ForceLandingEvent) != 1 {
		t.Errorf("expected exactly one force-landing event")
	}

	// Re-triggering while already down must not happen; the flag is
	// edge-triggered.
	advance(w, 5)
	if n := eventCount(sub.Get(), ForceLandingEvent); n != 0 {
		t.Errorf("forced landing re-triggered %d times while grounded", n)
	}

	a.RevokeCondition(tok)
	advance(w, 40)
	if a.Aircraft.ForceLanding {
		t.Errorf("force-landing flag not cleared on the falling edge")
	}
	if !a.Aircraft.Cruising() {
		t.Errorf("gunship did not take back off after the condition cleared")
	}
	checkClean(t, w)
}

func TestCrushOnLanding(t *testing.T) {
	w := newTestWorld(t)
	gunship := mustSpawn(t, w, "gunship", math.Cell{X: 5, Y: 5}, 1280)
	infantry := mustSpawn(t, w, "infantry", math.Cell{X: 5, Y: 5}, 0)
	crate := mustSpawn(t, w, "crate", math.Cell{X: 5, Y: 5}, 0)
	sub := w.Events.Subscribe()
	advance(w, 1)

	gunship.QueueActivity(w, NewLand(), false)
	advance(w, 40)

	if !infantry.Dead || !crate.Dead {
		t.Errorf("landing did not crush the cell's occupants")
	}
	if gunship.Dead {
		t.Errorf("crusher did not survive")
	}

	events := sub.Get()
	if n := eventCount(events, CrushWarningEvent); n != 2 {
		t.Errorf("expected 2 crush warnings, got %d", n)
	}
	if n := eventCount(events, CrushedEvent); n != 2 {
		t.Errorf("expected 2 crushed events, got %d", n)
	}
	warned, crushed := -1, -1
	for i, ev := range events {
		if ev.Type == CrushWarningEvent && warned < 0 {
			warned = i
		}
		if ev.Type == CrushedEvent && crushed < 0 {
			crushed = i
		}
	}
	if warned >= crushed {
		t.Errorf("warning (%d) did not precede the crush (%d)", warned, crushed)
	}
	checkClean(t, w)
}

func TestRepulsionSeparatesCruisers(t *testing.T) {
	w := newTestWorld(t)
	a := mustSpawn(t, w, "transport", math.Cell{X: 10, Y: 10}, 1280)
	b := mustSpawn(t, w, "transport", math.Cell{X: 11, Y: 10}, 1280)

	start := a.Pos.HorizDist(b.Pos)
	advance(w, 10)
	gap := a.Pos.HorizDist(b.Pos)
	if gap <= start {
		t.Errorf("cruising aircraft did not separate: %d -> %d", start, gap)
	}
	if gap <= a.Aircraft.def.IdealSeparation {
		t.Errorf("separation %d not past the ideal %d", gap, a.Aircraft.def.IdealSeparation)
	}

	// Steady state: once outside each other's separation radius the
	// force vanishes and nobody moves.
	pa, pb := a.Pos, b.Pos
	advance(w, 5)
	if a.Pos != pa || b.Pos != pb {
		t.Errorf("aircraft still moving after reaching separation")
	}

	// Repulsion is strictly horizontal.
	if dat := w.Terrain.DistanceAboveTerrain(a.Pos); dat != 1280 {
		t.Errorf("repulsion changed altitude: %d", dat)
	}
	if !a.Aircraft.Cruising() || !b.Aircraft.Cruising() {
		t.Errorf("aircraft left cruise while being repulsed")
	}
}

func TestRepulsionOnlyWhileCruising(t *testing.T) {
	w := newTestWorld(t)
	a := mustSpawn(t, w, "transport", math.Cell{X: 10, Y: 10}, 640)
	b := mustSpawn(t, w, "transport", math.Cell{X: 11, Y: 10}, 640)

	pa, pb := a.Pos, b.Pos
	advance(w, 3)
	if a.Pos != pa || b.Pos != pb {
		t.Errorf("airborne but non-cruising aircraft were repulsed")
	}
}

func TestRepulsionSuppressedNearReservedDock(t *testing.T) {
	w := newTestWorld(t)
	pad := mustSpawn(t, w, "pad", math.Cell{X: 10, Y: 10}, 0)
	a := mustSpawn(t, w, "transport", math.Cell{X: 11, Y: 10}, 1280)
	b := mustSpawn(t, w, "transport", math.Cell{X: 12, Y: 10}, 1280)
	advance(w, 1)

	if !a.Aircraft.MakeReservation(w, pad) {
		t.Fatalf("reservation against a free dock failed")
	}

	pa := a.Pos
	advance(w, 3)
	if a.Pos != pa {
		t.Errorf("aircraft waiting near its reserved dock was repulsed")
	}
	if b.Pos.X <= w.Terrain.CenterOfCell(math.Cell{X: 12, Y: 10}).X {
		t.Errorf("unreserved neighbor was not repulsed away")
	}
}

func TestMovementSpeedCarryModifier(t *testing.T) {
	w := newTestWorld(t)
	a := mustSpawn(t, w, "transport", math.Cell{X: 5, Y: 5}, 0)
	harv := mustSpawn(t, w, "harvester", math.Cell{X: 6, Y: 5}, 0)

	if got := a.Aircraft.MovementSpeed(); got != 112 {
		t.Errorf("unloaded speed %d, want 112", got)
	}
	if !a.Carryall.AttachCarryable(w, harv) {
		t.Fatalf("attach failed")
	}
	if got := a.Aircraft.MovementSpeed(); got != 89 {
		t.Errorf("loaded speed %d, want 89", got)
	}
}

func TestEstimatedMoveDuration(t *testing.T) {
	w := newTestWorld(t)
	a := mustSpawn(t, w, "transport", math.Cell{X: 5, Y: 5}, 0)
	from := w.Terrain.CenterOfCell(math.Cell{X: 0, Y: 0})
	to := w.Terrain.CenterOfCell(math.Cell{X: 10, Y: 0})
	// 10 cells horizontally at 112/tick.
	if got := a.Aircraft.EstimatedMoveDuration(from, to); got != 10240/112 {
		t.Errorf("estimated %d ticks, want %d", got, 10240/112)
	}
}

func TestLandWhenIdle(t *testing.T) {
	w := newTestWorld(t)
	w.Defs["transport"].Aircraft.LandWhenIdle = true
	a := mustSpawn(t, w, "transport", math.Cell{X: 5, Y: 5}, 0)

	dest := math.Cell{X: 9, Y: 5}
	a.Aircraft.MoveToCell(w, dest, false)
	advance(w, 160)

	if dat := w.Terrain.DistanceAboveTerrain(a.Pos); dat != 0 {
		t.Errorf("idle aircraft did not land, at %d", dat)
	}
	if got := w.Terrain.CellContaining(a.Pos); got != dest {
		t.Errorf("landed at %v, want %v", got, dest)
	}
}

func TestVisualRepositionIsNotMovement(t *testing.T) {
	w := newTestWorld(t)
	a := mustSpawn(t, w, "transport", math.Cell{X: 5, Y: 5}, 0)
	sub := w.Events.Subscribe()

	a.Aircraft.VisualReposition(w, w.Terrain.CenterOfCell(math.Cell{X: 20, Y: 20}))
	advance(w, 1)

	if n := eventCount(sub.Get(), MovementChangedEvent); n != 0 {
		t.Errorf("visual reposition produced %d movement events", n)
	}
	if got := w.ActorMap.ActorsAt(math.Cell{X: 20, Y: 20}); len(got) != 1 {
		t.Errorf("reposition did not update the actor map")
	}
}
