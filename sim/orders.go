// sim/orders.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"log/slog"

	"github.com/aloft-sim/aloft/math"
)

type OrderKind string

const (
	OrderMove         OrderKind = "move"
	OrderEnter        OrderKind = "enter"
	OrderStop         OrderKind = "stop"
	OrderReturnToBase OrderKind = "return"
	OrderScatter      OrderKind = "scatter"
	OrderPickupUnit   OrderKind = "pickup"
	OrderDeliverUnit  OrderKind = "deliver"
	OrderUnload       OrderKind = "unload"
)

// ValidOrderKind reports whether k names a known order.
func ValidOrderKind(k OrderKind) bool {
	switch k {
	case OrderMove, OrderEnter, OrderStop, OrderReturnToBase, OrderScatter,
		OrderPickupUnit, OrderDeliverUnit, OrderUnload:
		return true
	}
	return false
}

// Order is a player (or script) command addressed to one actor. Tick
// is the earliest tick it runs; orders posted mid-run usually leave it
// zero so they execute on the next Advance.
type Order struct {
	Tick   int       `json:"tick,omitempty"`
	Kind   OrderKind `json:"kind"`
	Actor  ActorID   `json:"actor"`
	Target ActorID   `json:"target,omitempty"`
	Cell   math.Cell `json:"cell"`
	Queued bool      `json:"queued,omitempty"`
}

// PostOrder adds an order to the pending queue. Orders run in posting
// order once their tick comes up; posting is the only way commands
// enter the simulation, so a replayed order log reproduces a run
// exactly.
func (w *World) PostOrder(o Order) {
	w.orders = append(w.orders, o)
}

func (w *World) drainOrders() {
	remaining := w.orders[:0]
	for _, o := range w.orders {
		if o.Tick > w.TickCount {
			remaining = append(remaining, o)
			continue
		}
		w.dispatchOrder(o)
	}
	w.orders = remaining
}

func (w *World) dispatchOrder(o Order) {
	a := w.Actor(o.Actor)
	if !a.Alive() || !a.InWorld {
		return
	}
	w.lg.Debug("order", slog.String("kind", string(o.Kind)), slog.Any("actor", a),
		slog.Bool("queued", o.Queued))

	switch o.Kind {
	case OrderMove:
		w.aircraftOrder(a, func(ac *Aircraft) {
			ac.MoveToCell(w, o.Cell, o.Queued)
		})

	case OrderEnter:
		w.aircraftOrder(a, func(ac *Aircraft) {
			host := w.Actor(o.Target)
			if !host.Alive() || !host.InWorld {
				return
			}
			// The answer and the reservation are one step; a positive
			// answer means the slot is already ours.
			if ac.CanEnterTargetNow(w, host) {
				ac.MoveIntoTarget(w, host, o.Queued)
			}
		})

	case OrderStop:
		w.aircraftOrder(a, func(ac *Aircraft) {
			a.CancelActivity(w)
			// On the ground at a pad, the reservation is what keeps the
			// spot; stopping only matters in the air.
			if w.Terrain.DistanceAboveTerrain(a.Pos) > ac.LandAltitude {
				ac.UnReserve(w)
			}
		})

	case OrderReturnToBase:
		w.aircraftOrder(a, func(ac *Aircraft) {
			host := w.nearestAvailableDock(a, ac)
			if host == nil {
				w.Events.Post(Event{Type: StatusMessageEvent, Actor: a.ID,
					Text: "no dock available"})
				return
			}
			if ac.MakeReservation(w, host) {
				ac.MoveIntoTarget(w, host, o.Queued)
			}
		})

	case OrderScatter:
		w.aircraftOrder(a, func(ac *Aircraft) {
			if !ac.Airborne() {
				a.QueueActivity(w, NewTakeOff(), o.Queued)
				return
			}
			// Short hop in a random direction; the shared generator
			// keeps replays identical.
			dir := math.Angle(w.Rand.Intn(int(math.AngleFull)))
			dest := a.Pos.Add(math.UnitVec(dir).Scale(2))
			ac.MoveToCell(w, w.Terrain.CellContaining(dest), o.Queued)
		})

	case OrderPickupUnit:
		ca := a.Carryall
		target := w.Actor(o.Target)
		if ca == nil || !target.Alive() || !target.InWorld || target.Carryable == nil {
			return
		}
		// Only unreserved cargo, or cargo this carrier already holds.
		if cd := target.Carryable; cd.Reserved && cd.Carrier != a {
			return
		}
		a.QueueActivity(w, NewPickup(target), o.Queued)

	case OrderDeliverUnit:
		if a.Carryall == nil {
			return
		}
		a.QueueActivity(w, NewDeliver(o.Cell), o.Queued)

	case OrderUnload:
		ca := a.Carryall
		if ca == nil {
			return
		}
		// An immediate unload that cannot succeed is refused up front
		// rather than queued to fail. A queued unload runs later under
		// different conditions, so it gets the benefit of the doubt.
		if !o.Queued && !ca.CanUnloadNow(w) {
			w.Events.Post(Event{Type: StatusMessageEvent, Actor: a.ID,
				Text: "cannot unload here"})
			return
		}
		a.QueueActivity(w, NewUnload(), o.Queued)

	default:
		// Unrecognized orders are dropped, not errors: an old order log
		// replayed against a newer build should not wedge the run.
		w.lg.Debug("ignoring unrecognized order", slog.String("kind", string(o.Kind)))
	}
}

func (w *World) aircraftOrder(a *Actor, cmd func(ac *Aircraft)) {
	if a.Aircraft == nil {
		w.lg.Debug("order for non-aircraft ignored", slog.Any("actor", a))
		return
	}
	cmd(a.Aircraft)
}

// nearestAvailableDock scans actors in ID order so distance ties break
// the same way every run.
func (w *World) nearestAvailableDock(a *Actor, ac *Aircraft) *Actor {
	var best *Actor
	var bestDist math.Dist
	for _, o := range w.Actors {
		if o.Dead || !o.InWorld || o.Dock == nil || !ac.def.CanDockAt(o) {
			continue
		}
		if !o.Dock.AvailableFor(a) {
			continue
		}
		d := a.Pos.HorizDist(o.Pos)
		if best == nil || d < bestDist {
			best, bestDist = o, d
		}
	}
	return best
}
