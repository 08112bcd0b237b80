// sim/transport.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"github.com/aloft-sim/aloft/flight"
	"github.com/aloft-sim/aloft/math"
)

// Pickup and delivery are phase machines rather than chains of queued
// activities: the climb-out after an attach or a drop has to run
// before whatever the player queued next, and appending it to the
// activity queue would put it after.

///////////////////////////////////////////////////////////////////////////
// Pickup

type pickupPhase int

const (
	pickupApproach pickupPhase = iota
	pickupDescend
	pickupWait
	pickupClimb
)

type pickupActivity struct {
	cargo *Actor
	phase pickupPhase
	wait  int
}

// NewPickup flies the carrier to the cargo, descends over it, waits
// out the load delay, attaches it, and climbs back to cruise.
func NewPickup(cargo *Actor) Activity {
	return &pickupActivity{cargo: cargo}
}

func (p *pickupActivity) Kind() ActivityKind { return KindPickup }

func (p *pickupActivity) Tick(w *World, a *Actor) bool {
	ca := a.Carryall
	if ca == nil {
		return true
	}
	cargo := p.cargo
	if p.phase != pickupClimb && (!cargo.Alive() || !cargo.InWorld) {
		// Died or got snatched before we attached.
		if ca.Cargo == cargo {
			ca.UnreserveCarryable(w)
		}
		return true
	}

	switch p.phase {
	case pickupApproach:
		if ca.Cargo != cargo && !ca.ReserveCarryable(w, cargo) {
			return true
		}
		if flyTickToward(w, a, cargo.Pos) {
			p.phase = pickupDescend
		}

	case pickupDescend:
		// Come down until the attachment points line up.
		offset := ca.def.LocalOffset.Sub(cargo.Carryable.def.LocalOffset)
		wantZ := cargo.Pos.Z - offset.Z
		step := flight.ClimbStep(a.Pos.Z, wantZ, a.Aircraft.def.ClimbRate)
		if step == 0 {
			p.phase = pickupWait
			p.wait = ca.def.BeforeLoadDelay
			break
		}
		w.setActorPosition(a, a.Pos.Add(math.Vec{Z: step}))

	case pickupWait:
		if p.wait > 0 {
			p.wait--
			break
		}
		if !ca.AttachCarryable(w, cargo) {
			return true
		}
		p.phase = pickupClimb

	case pickupClimb:
		dat := w.Terrain.DistanceAboveTerrain(a.Pos)
		step := flight.ClimbStep(dat, a.Aircraft.def.CruiseAltitude, a.Aircraft.def.ClimbRate)
		if step == 0 {
			return true
		}
		w.setActorPosition(a, a.Pos.Add(math.Vec{Z: step}))
		return w.Terrain.DistanceAboveTerrain(a.Pos) == a.Aircraft.def.CruiseAltitude
	}
	return false
}

// Cancel releases a pending reservation. Cargo already attached stays
// attached; canceling mid-carry leaves the carrier hovering with its
// load.
func (p *pickupActivity) Cancel(w *World, a *Actor) {
	if ca := a.Carryall; ca != nil && ca.State == CarryReserved && ca.Cargo == p.cargo {
		ca.UnreserveCarryable(w)
	}
}

///////////////////////////////////////////////////////////////////////////
// Deliver

type deliverPhase int

const (
	deliverApproach deliverPhase = iota
	deliverDescend
	deliverWait
	deliverClimb
)

type deliverActivity struct {
	dest      math.Cell
	atCurrent bool
	phase     deliverPhase
	wait      int
}

// NewDeliver flies the carrier to dest, descends, waits out the unload
// delay, sets the cargo down, and climbs back to cruise.
func NewDeliver(dest math.Cell) Activity {
	return &deliverActivity{dest: dest}
}

// NewUnload drops the cargo at the carrier's current cell.
func NewUnload() Activity {
	return &deliverActivity{atCurrent: true}
}

func (d *deliverActivity) Kind() ActivityKind { return KindDeliver }

func (d *deliverActivity) Tick(w *World, a *Actor) bool {
	ca := a.Carryall
	if ca == nil || (d.phase != deliverClimb && (ca.State != CarryCarrying || ca.Cargo == nil)) {
		return true
	}

	switch d.phase {
	case deliverApproach:
		if d.atCurrent {
			d.dest = w.Terrain.CellContaining(a.Pos)
		}
		if flyTickToward(w, a, w.Terrain.CenterOfCell(d.dest)) {
			d.phase = deliverDescend
		}

	case deliverDescend:
		// Low enough that the cargo touches the ground when released.
		dat := w.Terrain.DistanceAboveTerrain(a.Pos)
		wantDAT := -ca.CarryableOffset().Z
		step := flight.ClimbStep(dat, wantDAT, a.Aircraft.def.ClimbRate)
		if step == 0 {
			d.phase = deliverWait
			d.wait = ca.def.BeforeUnloadDelay
			break
		}
		w.setActorPosition(a, a.Pos.Add(math.Vec{Z: step}))

	case deliverWait:
		if d.wait > 0 {
			d.wait--
			break
		}
		drop := a.Pos.Add(ca.CarryableOffset().Rotate(a.Facing))
		cell := w.Terrain.CellContaining(drop)
		if !w.canEnterCell(ca.Cargo, cell) {
			// Blocked at the last moment. Keep the cargo and climb away.
			d.phase = deliverClimb
			break
		}
		cargo := ca.Cargo
		drop.Z = w.Terrain.HeightAt(drop)
		w.AddToWorld(cargo, drop, a.Facing)
		ca.DetachCarryable(w)
		d.phase = deliverClimb

	case deliverClimb:
		dat := w.Terrain.DistanceAboveTerrain(a.Pos)
		step := flight.ClimbStep(dat, a.Aircraft.def.CruiseAltitude, a.Aircraft.def.ClimbRate)
		if step == 0 {
			return true
		}
		w.setActorPosition(a, a.Pos.Add(math.Vec{Z: step}))
		return w.Terrain.DistanceAboveTerrain(a.Pos) == a.Aircraft.def.CruiseAltitude
	}
	return false
}

func (d *deliverActivity) Cancel(w *World, a *Actor) {}
