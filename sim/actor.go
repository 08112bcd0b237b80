// sim/actor.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"log/slog"
	"slices"

	"github.com/aloft-sim/aloft/math"
	"github.com/aloft-sim/aloft/util"
)

// ActorID identifies an actor for its whole lifetime. IDs are assigned
// in spawn order, so iterating actors by ID is the deterministic
// iteration order replicas agree on.
type ActorID uint32

// Actor is one entity in the world. Which of the trait pointers are
// non-nil is fixed at spawn from the actor's definition. Position and
// facing live here, but only the owning trait's methods and the
// activities it queues may change them.
type Actor struct {
	ID    ActorID
	Name  string
	Def   *ActorDef
	Owner string

	Pos    math.Point
	Facing math.Angle

	Dead    bool
	InWorld bool

	Aircraft  *Aircraft
	Carryall  *Carryall
	Carryable *Carryable
	Dock      *Dock
	Crushable *Crushable
	Building  *Building

	activities []Activity
	conditions []grantedCondition
	nextToken  ConditionToken

	// Cells this actor is registered at in the world's actor map;
	// maintained by the world, not the actor.
	occupied []math.Cell
}

// Alive reports whether the actor still participates in the
// simulation. Carried cargo is alive but not in the world.
func (a *Actor) Alive() bool {
	return a != nil && !a.Dead
}

func (a *Actor) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Uint64("id", uint64(a.ID)),
		slog.String("name", a.Name),
		slog.Any("pos", a.Pos),
		slog.Int("facing", int(a.Facing)),
	}
	if a.Dead {
		attrs = append(attrs, slog.Bool("dead", true))
	}
	if !a.InWorld {
		attrs = append(attrs, slog.Bool("in_world", false))
	}
	if act := a.CurrentActivity(); act != nil {
		attrs = append(attrs, slog.String("activity", act.Kind().String()))
	}
	return slog.GroupValue(attrs...)
}

///////////////////////////////////////////////////////////////////////////
// Conditions
//
// Conditions are named boolean variables other parts of the simulation
// observe. Grants stack: a condition is active while at least one grant
// is outstanding, and each grant is paired with the token that revokes
// it.

type ConditionToken int

// InvalidConditionToken is the zero token; granting an empty condition
// name returns it and revoking it is a no-op.
const InvalidConditionToken ConditionToken = 0

type grantedCondition struct {
	token ConditionToken
	name  string
}

func (a *Actor) GrantCondition(name string) ConditionToken {
	if name == "" {
		return InvalidConditionToken
	}
	a.nextToken++
	a.conditions = append(a.conditions, grantedCondition{token: a.nextToken, name: name})
	return a.nextToken
}

func (a *Actor) RevokeCondition(token ConditionToken) {
	if token == InvalidConditionToken {
		return
	}
	a.conditions = util.FilterSliceInPlace(a.conditions,
		func(c grantedCondition) bool { return c.token != token })
}

func (a *Actor) ConditionActive(name string) bool {
	return slices.ContainsFunc(a.conditions,
		func(c grantedCondition) bool { return c.name == name })
}

func (a *Actor) ConditionCount(name string) int {
	n := 0
	for _, c := range a.conditions {
		if c.name == name {
			n++
		}
	}
	return n
}

///////////////////////////////////////////////////////////////////////////
// Activity queue
//
// Activities are multi-tick motion primitives. Exactly one runs at a
// time; the rest wait in queue order. There is no preemption beyond
// cancellation.

// QueueActivity adds act to the actor's queue. Unless queued is set,
// anything already underway is cancelled and discarded first.
func (a *Actor) QueueActivity(w *World, act Activity, queued bool) {
	if !queued {
		a.CancelActivity(w)
	}
	a.activities = append(a.activities, act)
}

// CancelActivity cancels the current activity and clears the queue.
// Safe to call redundantly.
func (a *Actor) CancelActivity(w *World) {
	if len(a.activities) > 0 {
		a.activities[0].Cancel(w, a)
	}
	a.activities = nil
}

func (a *Actor) CurrentActivity() Activity {
	if len(a.activities) == 0 {
		return nil
	}
	return a.activities[0]
}

func (a *Actor) IsActivityOfKind(k ActivityKind) bool {
	act := a.CurrentActivity()
	return act != nil && act.Kind() == k
}

func (a *Actor) IdleActivity() bool {
	return len(a.activities) == 0
}

func (a *Actor) tickActivities(w *World) {
	// An activity that completes immediately hands the tick to its
	// successor, bounded so a cycle of instant activities cannot wedge
	// the tick.
	for range 8 {
		if len(a.activities) == 0 {
			return
		}
		if !a.activities[0].Tick(w, a) {
			return
		}
		a.activities = a.activities[1:]
	}
}

///////////////////////////////////////////////////////////////////////////
// Crushable

// Crushable lets an actor be destroyed by aircraft landing on it. An
// aircraft crushes it when their crush classes intersect.
type Crushable struct {
	actor *Actor
	def   *CrushableDef
}

func (c *Crushable) CrushableBy(classes []string) bool {
	return slices.ContainsFunc(c.def.CrushClasses,
		func(cc string) bool { return slices.Contains(classes, cc) })
}

// WarnCrush is the pre-arrival notification issued when a crushing
// unit enters the cell during a multi-tick move.
func (c *Crushable) WarnCrush(w *World, by *Actor) {
	w.Events.Post(Event{Type: CrushWarningEvent, Actor: c.actor.ID, Other: by.ID,
		Cell: w.Terrain.CellContaining(c.actor.Pos)})
}

// OnCrush destroys the actor when a crushing unit finishes its move on
// top of it.
func (c *Crushable) OnCrush(w *World, by *Actor) {
	w.Events.Post(Event{Type: CrushedEvent, Actor: c.actor.ID, Other: by.ID,
		Cell: w.Terrain.CellContaining(c.actor.Pos)})
	w.Destroy(c.actor)
}

///////////////////////////////////////////////////////////////////////////
// Building

// Building pins an actor to a footprint of cells. Buildings never move;
// the world registers their occupancy once at spawn.
type Building struct {
	actor *Actor
	def   *BuildingDef
}

// FootprintCells returns the cells the building occupies when placed
// at c.
func (b *Building) FootprintCells(c math.Cell) []math.Cell {
	if len(b.def.Footprint) == 0 {
		return []math.Cell{c}
	}
	return util.MapSlice(b.def.Footprint,
		func(v math.CellVec) math.Cell { return c.Add(v) })
}
