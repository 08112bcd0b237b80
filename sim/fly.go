// sim/fly.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"github.com/aloft-sim/aloft/flight"
	"github.com/aloft-sim/aloft/math"
)

// flyTickToward advances one tick of horizontal flight toward dest,
// climbing or descending toward cruise altitude along the way. It
// returns true once the aircraft is horizontally on top of dest.
//
// Hovering aircraft translate straight toward the destination while
// turning to face it; fixed-wing aircraft only ever move along their
// current facing, so they overshoot and come back around when asked to
// turn harder than their turn speed allows. Within one step of the
// destination the remaining fraction is snapped so that arrival is
// exact.
func flyTickToward(w *World, a *Actor, dest math.Point) bool {
	ac := a.Aircraft
	if ac == nil {
		return true
	}
	speed := ac.MovementSpeed()
	if speed <= 0 {
		return true
	}

	dat := w.Terrain.DistanceAboveTerrain(a.Pos)
	climb := flight.ClimbStep(dat, ac.def.CruiseAltitude, ac.def.ClimbRate)

	to := dest.Sub(a.Pos)
	to.Z = 0
	dist := to.HorizLength()
	if dist == 0 {
		if climb == 0 {
			return true
		}
		w.setActorPosition(a, a.Pos.Add(math.Vec{Z: climb}))
		return false
	}

	want := to.Yaw()
	a.Facing = math.TurnToward(a.Facing, want, ac.def.TurnSpeed)

	dir := a.Facing
	if ac.def.CanHover {
		dir = want
	}
	move := flight.StepVec(speed, dir)
	arrived := dist <= math.Dist(speed)
	if arrived {
		move = to
	}
	move.Z = climb
	w.setActorPosition(a, a.Pos.Add(move))
	return arrived
}

///////////////////////////////////////////////////////////////////////////
// Fly

type flyActivity struct {
	dest     math.Point
	follow   *Actor
	minRange math.Dist
	maxRange math.Dist
}

// NewFly moves the aircraft until it is horizontally over dest.
func NewFly(dest math.Point) Activity {
	return &flyActivity{dest: dest}
}

// NewFlyWithinRange moves the aircraft until its horizontal distance
// from the target actor is within [minRange, maxRange]. The
// destination is re-read from the target each tick, so a moving target
// is tracked.
func NewFlyWithinRange(target *Actor, minRange, maxRange math.Dist) Activity {
	return &flyActivity{follow: target, minRange: minRange, maxRange: maxRange}
}

func (f *flyActivity) Kind() ActivityKind { return KindFly }

func (f *flyActivity) Tick(w *World, a *Actor) bool {
	ac := a.Aircraft
	if ac == nil {
		return true
	}
	if f.follow != nil {
		if !f.follow.Alive() || !f.follow.InWorld {
			return true
		}
		f.dest = f.follow.Pos
	}

	if f.maxRange <= 0 {
		return flyTickToward(w, a, f.dest)
	}

	to := f.dest.Sub(a.Pos)
	to.Z = 0
	dist := to.HorizLength()
	if dist >= f.minRange && dist <= f.maxRange {
		return true
	}

	dest := f.dest
	if dist < f.minRange {
		// Too close: back off to the inner edge of the band.
		away := math.UnitVec(to.Yaw().Add(math.AngleHalf))
		dest = a.Pos.Add(away.Scale(int(f.minRange)).Div(int(math.CellSize)))
	}
	flyTickToward(w, a, dest)
	return false
}

func (f *flyActivity) Cancel(w *World, a *Actor) {}
