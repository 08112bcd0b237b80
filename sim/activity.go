// sim/activity.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"github.com/aloft-sim/aloft/flight"
	"github.com/aloft-sim/aloft/math"
)

type ActivityKind int

const (
	KindFly ActivityKind = iota
	KindTurn
	KindTakeOff
	KindLand
	KindResupply
	KindPickup
	KindDeliver
	NumActivityKinds
)

func (k ActivityKind) String() string {
	return []string{"Fly", "Turn", "TakeOff", "Land", "Resupply", "Pickup", "Deliver"}[k]
}

// Activity is a multi-tick motion primitive queued on an actor.
// Tick runs once per simulation tick while the activity is current and
// returns true when it has completed. Cancel tears down partial state
// when the activity is discarded before completion.
type Activity interface {
	Kind() ActivityKind
	Tick(w *World, a *Actor) bool
	Cancel(w *World, a *Actor)
}

///////////////////////////////////////////////////////////////////////////
// Turn

type turnActivity struct {
	heading math.Angle
}

// NewTurn rotates the aircraft in place to the given heading.
func NewTurn(heading math.Angle) Activity {
	return &turnActivity{heading: heading.Norm()}
}

func (t *turnActivity) Kind() ActivityKind { return KindTurn }

func (t *turnActivity) Tick(w *World, a *Actor) bool {
	ac := a.Aircraft
	if ac == nil {
		return true
	}
	a.Facing = math.TurnToward(a.Facing, t.heading, ac.def.TurnSpeed)
	return a.Facing == t.heading
}

func (t *turnActivity) Cancel(w *World, a *Actor) {}

///////////////////////////////////////////////////////////////////////////
// TakeOff

type takeOffActivity struct{}

// NewTakeOff climbs straight up from wherever the aircraft is until it
// reaches cruise altitude.
func NewTakeOff() Activity {
	return &takeOffActivity{}
}

func (t *takeOffActivity) Kind() ActivityKind { return KindTakeOff }

func (t *takeOffActivity) Tick(w *World, a *Actor) bool {
	ac := a.Aircraft
	if ac == nil {
		return true
	}
	dat := w.Terrain.DistanceAboveTerrain(a.Pos)
	step := flight.ClimbStep(dat, ac.def.CruiseAltitude, ac.def.ClimbRate)
	if step == 0 {
		return true
	}
	w.setActorPosition(a, a.Pos.Add(math.Vec{Z: step}))
	return w.Terrain.DistanceAboveTerrain(a.Pos) == ac.def.CruiseAltitude
}

func (t *takeOffActivity) Cancel(w *World, a *Actor) {}

///////////////////////////////////////////////////////////////////////////
// Land

type landActivity struct {
	warned bool
}

// NewLand descends straight down over the current cell until the
// aircraft rests at its land altitude. The landing cell is validated
// by whoever queues this; arrival resolves crushing.
func NewLand() Activity {
	return &landActivity{}
}

func (l *landActivity) Kind() ActivityKind { return KindLand }

func (l *landActivity) Tick(w *World, a *Actor) bool {
	ac := a.Aircraft
	if ac == nil {
		return true
	}
	if !l.warned {
		l.warned = true
		ac.EnteringCell(w, w.Terrain.CellContaining(a.Pos))
	}
	dat := w.Terrain.DistanceAboveTerrain(a.Pos)
	step := flight.ClimbStep(dat, ac.LandAltitude, ac.def.ClimbRate)
	if step == 0 {
		ac.FinishedMoving(w)
		return true
	}
	w.setActorPosition(a, a.Pos.Add(math.Vec{Z: step}))
	if w.Terrain.DistanceAboveTerrain(a.Pos) == ac.LandAltitude {
		ac.FinishedMoving(w)
		return true
	}
	return false
}

func (l *landActivity) Cancel(w *World, a *Actor) {}

///////////////////////////////////////////////////////////////////////////
// Resupply

type resupplyActivity struct {
	host      *Actor
	remaining int
}

// NewResupply parks the aircraft for the host dock's service time.
// Once serviced, the aircraft either takes back off or stays parked
// with a yieldable reservation so a needier unit can displace it.
func NewResupply(host *Actor) Activity {
	ticks := 1
	if host.Dock != nil {
		ticks = host.Dock.ServiceTicks()
	}
	return &resupplyActivity{host: host, remaining: ticks}
}

func (r *resupplyActivity) Kind() ActivityKind { return KindResupply }

func (r *resupplyActivity) Tick(w *World, a *Actor) bool {
	ac := a.Aircraft
	if ac == nil || ac.ReservedHost() != r.host {
		// Displaced, or the host is gone. Nothing to finish.
		return true
	}
	if r.remaining--; r.remaining > 0 {
		return false
	}
	if ac.def.TakeOffOnResupply {
		// UnReserve queues the takeoff since we sit at or below land
		// altitude.
		ac.UnReserve(w)
	} else {
		ac.AllowYieldingReservation()
	}
	return true
}

func (r *resupplyActivity) Cancel(w *World, a *Actor) {}
