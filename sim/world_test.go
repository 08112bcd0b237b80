// sim/world_test.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"slices"
	"testing"

	"github.com/aloft-sim/aloft/math"
	"github.com/aloft-sim/aloft/terrain"
	"github.com/aloft-sim/aloft/util"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	defs := DefaultDefs()
	var e util.ErrorLogger
	defs.PostDeserialize(&e)
	if e.HaveErrors() {
		t.Fatalf("default defs: %s", e.String())
	}
	return NewWorld(terrain.NewFlatMap("test", 32, 32), defs, 1, nil)
}

func mustSpawn(t *testing.T, w *World, def string, cell math.Cell, altitude math.Dist) *Actor {
	t.Helper()
	a, err := w.Spawn(def, "", cell, altitude, 0)
	if err != nil {
		t.Fatalf("spawn %s at %v: %v", def, cell, err)
	}
	return a
}

func advance(w *World, ticks int) {
	for range ticks {
		w.Advance()
	}
}

func checkClean(t *testing.T, w *World) {
	t.Helper()
	for _, v := range w.CheckInvariants() {
		t.Errorf("invariant violated: %s", v)
	}
}

func TestSpawnErrors(t *testing.T) {
	w := newTestWorld(t)
	if _, err := w.Spawn("no-such-def", "", math.Cell{X: 1, Y: 1}, 0, 0); err == nil {
		t.Errorf("expected error for unknown def")
	}
	if _, err := w.Spawn("transport", "", math.Cell{X: 99, Y: 1}, 0, 0); err == nil {
		t.Errorf("expected error for out-of-map spawn")
	}
}

func TestSpawnAssignsSequentialIDs(t *testing.T) {
	w := newTestWorld(t)
	a := mustSpawn(t, w, "transport", math.Cell{X: 1, Y: 1}, 0)
	b := mustSpawn(t, w, "infantry", math.Cell{X: 2, Y: 1}, 0)
	if a.ID != 1 || b.ID != 2 {
		t.Errorf("expected IDs 1,2, got %d,%d", a.ID, b.ID)
	}
	if w.Actor(a.ID) != a || w.Actor(b.ID) != b {
		t.Errorf("ID lookup does not return the spawned actors")
	}
}

func TestDestroyDefersToFrameEnd(t *testing.T) {
	w := newTestWorld(t)
	a := mustSpawn(t, w, "infantry", math.Cell{X: 3, Y: 3}, 0)
	w.Destroy(a)
	if !a.Dead {
		t.Errorf("Destroy did not mark the actor dead")
	}
	if len(w.Actors) != 1 {
		t.Errorf("actor removed before frame end")
	}
	w.Advance()
	if len(w.Actors) != 0 {
		t.Errorf("dead actor still listed after Advance")
	}
	if w.Actor(a.ID) != nil {
		t.Errorf("disposed actor still resolvable by ID")
	}
	if got := w.ActorMap.ActorsAt(math.Cell{X: 3, Y: 3}); len(got) != 0 {
		t.Errorf("disposed actor still registered in the actor map")
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	w := newTestWorld(t)
	a := mustSpawn(t, w, "infantry", math.Cell{X: 3, Y: 3}, 0)
	w.Destroy(a)
	w.Destroy(a)
	w.Advance()
	if len(w.Actors) != 0 {
		t.Errorf("double Destroy left actor behind")
	}
}

func TestSetActorPositionTracksCells(t *testing.T) {
	w := newTestWorld(t)
	a := mustSpawn(t, w, "transport", math.Cell{X: 2, Y: 2}, 0)
	w.setActorPosition(a, w.Terrain.CenterOfCell(math.Cell{X: 5, Y: 2}))
	if got := w.ActorMap.ActorsAt(math.Cell{X: 2, Y: 2}); len(got) != 0 {
		t.Errorf("actor still registered at old cell")
	}
	if got := w.ActorMap.ActorsAt(math.Cell{X: 5, Y: 2}); len(got) != 1 || got[0] != a {
		t.Errorf("actor not registered at new cell")
	}
}

func TestCanEnterCell(t *testing.T) {
	w := newTestWorld(t)
	harv := mustSpawn(t, w, "harvester", math.Cell{X: 2, Y: 2}, 0)
	mustSpawn(t, w, "pad", math.Cell{X: 5, Y: 5}, 0)
	mustSpawn(t, w, "infantry", math.Cell{X: 7, Y: 5}, 0)
	w.Terrain.SetTile(math.Cell{X: 9, Y: 5}, terrain.TileWater)

	for _, test := range []struct {
		cell math.Cell
		want bool
	}{
		{math.Cell{X: 3, Y: 2}, true},  // empty clear ground
		{math.Cell{X: 5, Y: 5}, false}, // pad blocks ground units
		{math.Cell{X: 7, Y: 5}, true},  // mobile occupant moves aside
		{math.Cell{X: 9, Y: 5}, false}, // water
		{math.Cell{X: -1, Y: 5}, false},
	} {
		if got := w.canEnterCell(harv, test.cell); got != test.want {
			t.Errorf("canEnterCell(%v) = %v, want %v", test.cell, got, test.want)
		}
	}
}

func TestScriptedConditions(t *testing.T) {
	w := newTestWorld(t)
	a := mustSpawn(t, w, "gunship", math.Cell{X: 4, Y: 4}, 0)
	w.PostCondition(ScriptedCondition{Tick: 2, Actor: a.ID, Name: "emp"})
	w.PostCondition(ScriptedCondition{Tick: 4, Actor: a.ID, Name: "emp", Revoke: true})

	w.Advance()
	if a.ConditionActive("emp") {
		t.Errorf("condition active before its tick")
	}
	w.Advance()
	if !a.ConditionActive("emp") {
		t.Errorf("condition not granted on schedule")
	}
	advance(w, 2)
	if a.ConditionActive("emp") {
		t.Errorf("condition not revoked on schedule")
	}
}

///////////////////////////////////////////////////////////////////////////
// Determinism

func TestScenarioDeterminism(t *testing.T) {
	lib := terrain.DefaultLibrary()
	sc := DefaultScenario()

	r1, err := RunScenario(sc, lib, 0, nil)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	r2, err := RunScenario(sc, lib, 0, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(r1.Violations) > 0 {
		t.Errorf("invariant violations: %v", r1.Violations)
	}
	if r1.Fingerprint != r2.Fingerprint {
		t.Errorf("final fingerprints diverge: %s vs %s", r1.Fingerprint, r2.Fingerprint)
	}
	if !slices.Equal(r1.PerTick, r2.PerTick) {
		for i := range r1.PerTick {
			if r1.PerTick[i] != r2.PerTick[i] {
				t.Errorf("first divergence at tick %d: %x vs %x", i+1, r1.PerTick[i], r2.PerTick[i])
				break
			}
		}
	}
}

func TestScenarioLifecycleEvents(t *testing.T) {
	lib := terrain.DefaultLibrary()
	sc := DefaultScenario()
	w, err := sc.Build(lib, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	sub := w.Events.Subscribe()
	advance(w, sc.Ticks)

	counts := make(map[EventType]int)
	var attachedAt, detachedAt int
	for i, ev := range sub.Get() {
		counts[ev.Type]++
		if ev.Type == CargoAttachedEvent && attachedAt == 0 {
			attachedAt = i + 1
		}
		if ev.Type == CargoDetachedEvent && detachedAt == 0 {
			detachedAt = i + 1
		}
	}

	if counts[SpawnedEvent] != 0 {
		t.Errorf("spawn events posted before subscription should not be seen")
	}
	if counts[TookOffEvent] == 0 {
		t.Errorf("no takeoff events in scenario")
	}
	if counts[CargoAttachedEvent] == 0 {
		t.Errorf("pickup never attached cargo")
	}
	if counts[CargoDetachedEvent] == 0 {
		t.Errorf("delivery never detached cargo")
	}
	if attachedAt >= detachedAt {
		t.Errorf("detach (%d) not after attach (%d)", detachedAt, attachedAt)
	}
	if counts[DockReservedEvent] == 0 {
		t.Errorf("no dock reservations in scenario")
	}
	if counts[ForceLandingEvent] == 0 {
		t.Errorf("scripted emp never forced a landing")
	}
	checkClean(t, w)
}

func TestSnapshotIsDetached(t *testing.T) {
	w := newTestWorld(t)
	a := mustSpawn(t, w, "transport", math.Cell{X: 2, Y: 2}, 0)
	snap := w.Snapshot()
	if len(snap.Actors) != 1 {
		t.Fatalf("expected 1 actor in snapshot, got %d", len(snap.Actors))
	}

	// Mutating the snapshot's copy of the defs must not reach the live
	// world.
	snap.Actors[0].Def.Aircraft.Speed = 1
	if a.Aircraft.def.Speed == 1 {
		t.Errorf("snapshot aliases live definitions")
	}

	// Nor does the world moving on affect the snapshot.
	pos := snap.Actors[0].Pos
	a.Aircraft.MoveToCell(w, math.Cell{X: 9, Y: 9}, false)
	advance(w, 20)
	if snap.Actors[0].Pos != pos {
		t.Errorf("snapshot position changed after the world advanced")
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	w := newTestWorld(t)
	a := mustSpawn(t, w, "transport", math.Cell{X: 2, Y: 2}, 0)
	before := w.Fingerprint()
	if w.Fingerprint() != before {
		t.Errorf("fingerprint not stable without state changes")
	}
	w.setActorPosition(a, a.Pos.Add(math.Vec{X: 1}))
	if w.Fingerprint() == before {
		t.Errorf("fingerprint blind to position change")
	}
}
