// sim/world.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"

	"github.com/aloft-sim/aloft/log"
	"github.com/aloft-sim/aloft/math"
	"github.com/aloft-sim/aloft/rand"
	"github.com/aloft-sim/aloft/terrain"
	"github.com/aloft-sim/aloft/util"
)

// World holds the complete simulation state for one run. All mutation
// happens inside Advance or through PostOrder; given the same map,
// defs, seed, and order log, two Worlds step through identical states.
type World struct {
	Terrain  *terrain.Map
	Defs     DefTable
	ActorMap *ActorMap
	Events   *EventStream

	// Rand is the single shared generator. Every draw happens at a
	// deterministic point in the tick, so the stream is part of the
	// replay contract.
	Rand *rand.Rand

	// Actors in spawn order, which is also ID order. The per-tick loop
	// walks this slice, so simulation order is stable by construction.
	Actors []*Actor

	TickCount int

	orders     []Order
	conditions []ScriptedCondition

	// scriptedTokens remembers the token each scripted grant produced
	// so a later revoke can find it. Keyed lookups only; never
	// iterated.
	scriptedTokens map[ActorID]map[string]ConditionToken

	frameEnd []func(*World)

	nextID ActorID
	byID   map[ActorID]*Actor

	lg *log.Logger
}

func NewWorld(m *terrain.Map, defs DefTable, seed uint64, lg *log.Logger) *World {
	return &World{
		Terrain:        m,
		Defs:           defs,
		ActorMap:       NewActorMap(m.Width, m.Height),
		Events:         NewEventStream(lg),
		Rand:           rand.MakeSeeded(seed),
		scriptedTokens: make(map[ActorID]map[string]ConditionToken),
		byID:           make(map[ActorID]*Actor),
		lg:             lg,
	}
}

// Actor looks up a live or dying actor by ID; nil once it has been
// disposed (or never existed).
func (w *World) Actor(id ActorID) *Actor { return w.byID[id] }

///////////////////////////////////////////////////////////////////////////
// Lifecycle

// Spawn creates an actor from the named definition at cell, at the
// given height above the terrain.
func (w *World) Spawn(defName, owner string, cell math.Cell, altitude math.Dist, facing math.Angle) (*Actor, error) {
	def, ok := w.Defs[defName]
	if !ok {
		return nil, fmt.Errorf("%q: %w", defName, ErrNoSuchDef)
	}
	if !w.Terrain.Contains(cell) {
		return nil, fmt.Errorf("%v: %w", cell, ErrSpawnOutsideMap)
	}

	w.nextID++
	a := &Actor{
		ID:     w.nextID,
		Name:   def.Name,
		Def:    def,
		Owner:  owner,
		Facing: facing.Norm(),
	}
	a.Pos = w.Terrain.CenterOfCell(cell)
	a.Pos.Z += altitude

	if def.Aircraft != nil {
		a.Aircraft = newAircraft(a, def.Aircraft)
	}
	if def.Carryall != nil {
		a.Carryall = &Carryall{actor: a, def: def.Carryall}
	}
	if def.Carryable != nil {
		a.Carryable = &Carryable{actor: a, def: def.Carryable}
	}
	if def.Dock != nil {
		a.Dock = &Dock{actor: a, def: def.Dock}
	}
	if def.Crushable != nil {
		a.Crushable = &Crushable{actor: a, def: def.Crushable}
	}
	if def.Building != nil {
		a.Building = &Building{actor: a, def: def.Building}
	}

	w.Actors = append(w.Actors, a)
	w.byID[a.ID] = a
	w.enterWorld(a)
	if a.Aircraft != nil {
		a.Aircraft.movement.Reset(a.Pos, a.Facing)
	}

	w.lg.Debug("spawned", slog.Any("actor", a), slog.Any("cell", cell))
	w.Events.Post(Event{Type: SpawnedEvent, Actor: a.ID, Cell: cell, Pos: a.Pos})
	return a, nil
}

func (w *World) enterWorld(a *Actor) {
	a.InWorld = true
	base := w.Terrain.CellContaining(a.Pos)
	if a.Building != nil {
		a.occupied = a.Building.FootprintCells(base)
	} else {
		a.occupied = append(a.occupied[:0], base)
	}
	for _, c := range a.occupied {
		w.ActorMap.Add(a, c)
	}
}

// AddToWorld places an out-of-world actor (dropped cargo, typically)
// back on the map at pos.
func (w *World) AddToWorld(a *Actor, pos math.Point, facing math.Angle) {
	a.Pos, a.Facing = pos, facing.Norm()
	w.enterWorld(a)
	if a.Aircraft != nil {
		a.Aircraft.movement.Reset(pos, a.Facing)
	}
}

// RemoveFromWorld takes the actor off the map without destroying it.
// Slung cargo lives in this state for the duration of its flight.
func (w *World) RemoveFromWorld(a *Actor) {
	for _, c := range a.occupied {
		w.ActorMap.Remove(a, c)
	}
	a.occupied = a.occupied[:0]
	a.InWorld = false
}

// Destroy marks the actor dead immediately and schedules the teardown
// for the end of the tick, so code iterating actors never sees the
// world change under it.
func (w *World) Destroy(a *Actor) {
	if a == nil || a.Dead {
		return
	}
	a.Dead = true
	w.lg.Debug("destroyed", slog.Any("actor", a))
	w.Events.Post(Event{Type: DestroyedEvent, Actor: a.ID, Pos: a.Pos,
		Cell: w.Terrain.CellContaining(a.Pos)})
	w.AddFrameEndTask(func(w *World) { w.dispose(a) })
}

func (w *World) dispose(a *Actor) {
	if a.Carryall != nil {
		a.Carryall.disposing(w)
	}
	if a.Aircraft != nil {
		a.Aircraft.disposing(w)
	}
	if a.Dock != nil {
		a.Dock.evictOnDisposal(w)
	}
	if a.Carryable != nil && a.Carryable.Carrier != nil {
		// The carrier's own tick notices the death, but eviction here
		// keeps the flags coherent if the carrier is already gone.
		a.Carryable.UnReserve(w)
	}
	if a.InWorld {
		w.RemoveFromWorld(a)
	}
	a.CancelActivity(w)
	a.conditions = nil
	delete(w.byID, a.ID)
	delete(w.scriptedTokens, a.ID)
}

// AddFrameEndTask defers f to the end of the current Advance.
func (w *World) AddFrameEndTask(f func(*World)) {
	w.frameEnd = append(w.frameEnd, f)
}

///////////////////////////////////////////////////////////////////////////
// Position

// setActorPosition is the single way actors move: it keeps the spatial
// index in step and fires cell-entry crush warnings for grounded
// aircraft.
func (w *World) setActorPosition(a *Actor, p math.Point) {
	old := a.Pos
	a.Pos = p
	if !a.InWorld || a.Building != nil {
		return
	}
	oldCell := w.Terrain.CellContaining(old)
	newCell := w.Terrain.CellContaining(p)
	if oldCell == newCell {
		return
	}
	for _, c := range a.occupied {
		w.ActorMap.Remove(a, c)
	}
	a.occupied = append(a.occupied[:0], newCell)
	w.ActorMap.Add(a, newCell)
	if ac := a.Aircraft; ac != nil && !ac.Airborne() {
		ac.EnteringCell(w, newCell)
	}
}

// canEnterCell reports whether actor a could stand in cell: on the
// map, passable for its kind, and free of blocking occupants.
func (w *World) canEnterCell(a *Actor, cell math.Cell) bool {
	if !w.Terrain.Contains(cell) {
		return false
	}
	if ac := a.Aircraft; ac != nil {
		return ac.CanLand(w, cell, nil)
	}
	if !w.Terrain.TerrainTypeAt(cell).Passable {
		return false
	}
	for _, o := range w.ActorMap.ActorsAt(cell) {
		if o == a || o.Dead {
			continue
		}
		if oc := o.Aircraft; oc != nil && oc.Airborne() {
			continue
		}
		if o.Def.Mobile {
			continue
		}
		return false
	}
	return true
}

///////////////////////////////////////////////////////////////////////////
// Tick

// Advance steps the world one tick: scripted condition changes, then
// due orders, then every live actor in ID order (flight model, carry
// link, activities, movement bookkeeping), then deferred teardown.
func (w *World) Advance() {
	w.TickCount++

	w.applyScriptedConditions()
	w.drainOrders()

	for _, a := range w.Actors {
		if a.Dead || !a.InWorld {
			continue
		}
		if a.Aircraft != nil {
			a.Aircraft.Tick(w)
		}
		if a.Carryall != nil {
			a.Carryall.Tick(w)
		}
		if a.Dead {
			continue
		}
		a.tickActivities(w)
		if a.Aircraft != nil && !a.Dead {
			a.Aircraft.finishTick(w)
		}
	}

	w.runFrameEndTasks()
	w.Actors = util.FilterSliceInPlace(w.Actors, func(a *Actor) bool { return !a.Dead })
}

func (w *World) runFrameEndTasks() {
	// Tasks may schedule more tasks (a carrier's teardown destroys its
	// cargo, whose teardown runs in the next round).
	for len(w.frameEnd) > 0 {
		tasks := w.frameEnd
		w.frameEnd = nil
		for _, f := range tasks {
			f(w)
		}
	}
}

// PostCondition schedules a scripted condition change.
func (w *World) PostCondition(c ScriptedCondition) {
	w.conditions = append(w.conditions, c)
}

func (w *World) applyScriptedConditions() {
	remaining := w.conditions[:0]
	for _, c := range w.conditions {
		if c.Tick > w.TickCount {
			remaining = append(remaining, c)
			continue
		}
		a := w.Actor(c.Actor)
		if !a.Alive() {
			continue
		}
		if c.Revoke {
			if toks := w.scriptedTokens[a.ID]; toks != nil {
				a.RevokeCondition(toks[c.Name])
				delete(toks, c.Name)
			}
		} else {
			tok := a.GrantCondition(c.Name)
			if tok != InvalidConditionToken {
				if w.scriptedTokens[a.ID] == nil {
					w.scriptedTokens[a.ID] = make(map[string]ConditionToken)
				}
				w.scriptedTokens[a.ID][c.Name] = tok
			}
		}
		w.lg.Debug("scripted condition", slog.Any("actor", a),
			slog.String("name", c.Name), slog.Bool("revoke", c.Revoke))
	}
	w.conditions = remaining
}

///////////////////////////////////////////////////////////////////////////
// Consistency

// CheckInvariants audits the cross-actor links that the simulation
// depends on and returns a description of each violation found. A
// healthy world returns nil; tests and the batch runner call this
// after every scenario.
func (w *World) CheckInvariants() []string {
	var violations []string
	bad := func(format string, args ...interface{}) {
		violations = append(violations, fmt.Sprintf(format, args...))
	}

	for _, a := range w.Actors {
		if a.Dead {
			continue
		}
		if ac := a.Aircraft; ac != nil {
			if host := ac.reservedDock; host != nil {
				if !host.Alive() {
					bad("actor %d reserves dead dock host %d", a.ID, host.ID)
				} else if host.Dock == nil || host.Dock.occupant != a {
					bad("actor %d reserves dock host %d which does not list it", a.ID, host.ID)
				}
			} else if ac.mayYield {
				bad("actor %d may yield without holding a reservation", a.ID)
			}
		}
		if d := a.Dock; d != nil && d.occupant != nil {
			oc := d.occupant.Aircraft
			if !d.occupant.Alive() || oc == nil || oc.reservedDock != a {
				bad("dock host %d lists occupant %d which does not reserve it", a.ID, d.occupant.ID)
			}
		}
		if ca := a.Carryall; ca != nil {
			switch ca.State {
			case CarryIdle:
				if ca.Cargo != nil {
					bad("idle carryall %d still links cargo %d", a.ID, ca.Cargo.ID)
				}
				if ca.landingOffset != 0 {
					bad("idle carryall %d retains landing offset %d", a.ID, ca.landingOffset)
				}
			case CarryReserved:
				if ca.Cargo == nil {
					bad("reserved carryall %d has no cargo", a.ID)
				} else if cd := ca.Cargo.Carryable; cd == nil || !cd.Reserved || cd.Carrier != a {
					bad("reserved carryall %d not mirrored by cargo %d", a.ID, ca.Cargo.ID)
				}
			case CarryCarrying:
				if ca.Cargo == nil {
					bad("carrying carryall %d has no cargo", a.ID)
				} else {
					if ca.Cargo.InWorld {
						bad("carried cargo %d still registered in the world", ca.Cargo.ID)
					}
					if cd := ca.Cargo.Carryable; cd == nil || !cd.Carried || cd.Carrier != a {
						bad("carrying carryall %d not mirrored by cargo %d", a.ID, ca.Cargo.ID)
					}
				}
			}
		}
		if cd := a.Carryable; cd != nil && cd.Carried {
			if cd.Carrier == nil || cd.Carrier.Carryall == nil || cd.Carrier.Carryall.Cargo != a {
				bad("carried actor %d has no carrier linking back", a.ID)
			}
		}
		if a.InWorld && len(a.occupied) == 0 {
			bad("in-world actor %d occupies no cells", a.ID)
		}
	}

	for _, v := range violations {
		w.lg.Errorf("invariant violated: %s", v)
	}
	return violations
}
