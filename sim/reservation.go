// sim/reservation.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"log/slog"

	"github.com/aloft-sim/aloft/math"
)

// Dock is the single reservable landing slot a ground host offers.
// At most one aircraft holds the slot at a time; all changes of
// ownership go through Reserve and release, from within the owning
// actor's tick.
type Dock struct {
	actor *Actor
	def   *DockDef

	occupant *Actor
}

// ReservedFor returns the aircraft actor holding the slot, nil when
// the slot is free.
func (d *Dock) ReservedFor() *Actor { return d.occupant }

// AvailableFor reports whether claimant could take the slot right now:
// it is free, already claimant's, or its holder has allowed yielding.
func (d *Dock) AvailableFor(claimant *Actor) bool {
	if d.occupant == nil || d.occupant == claimant {
		return true
	}
	ac := d.occupant.Aircraft
	return ac != nil && ac.MayYieldReservation()
}

// Reserve claims the slot for claimant. A holder that has allowed
// yielding is displaced first: its reservation is cancelled through
// the normal UnReserve path, which sends it back aloft if it had
// landed. Reserving a slot already held by claimant succeeds and
// changes nothing.
func (d *Dock) Reserve(w *World, claimant *Actor) bool {
	if d.occupant == claimant {
		return true
	}
	if d.occupant != nil {
		ac := d.occupant.Aircraft
		if ac == nil || !ac.MayYieldReservation() {
			return false
		}
		displaced := d.occupant
		ac.UnReserve(w)
		w.Events.Post(Event{Type: ReservationDisplacedEvent, Actor: displaced.ID,
			Other: claimant.ID, Cell: w.Terrain.CellContaining(d.actor.Pos)})
		w.lg.Debug("displaced yielding reservation", slog.Any("holder", displaced),
			slog.Any("claimant", claimant), slog.Any("host", d.actor))
	}
	d.occupant = claimant
	return true
}

// release frees the slot if holder owns it. Aircraft give up their
// reservation with Aircraft.UnReserve, which calls here.
func (d *Dock) release(holder *Actor) {
	if d.occupant == holder {
		d.occupant = nil
	}
}

// evictOnDisposal severs the holder's half of the reservation when the
// dock host dies. The holder gets no takeoff and no unreserved event;
// its pad simply stopped existing.
func (d *Dock) evictOnDisposal(w *World) {
	if d.occupant == nil {
		return
	}
	if ac := d.occupant.Aircraft; ac != nil && ac.reservedDock == d.actor {
		ac.reservedDock = nil
		ac.mayYield = false
	}
	d.occupant = nil
}

// ParkingPosition returns where a docked aircraft sits, at ground
// height under the dock offset.
func (d *Dock) ParkingPosition(w *World) math.Point {
	p := d.actor.Pos.Add(d.def.DockOffset)
	p.Z = w.Terrain.HeightAt(p)
	return p
}

func (d *Dock) ParkingFacing() math.Angle { return d.def.DockAngle }

func (d *Dock) ServiceTicks() int { return d.def.ServiceTicks }
