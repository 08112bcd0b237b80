// sim/carryall.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"log/slog"

	"github.com/aloft-sim/aloft/math"
)

type CarryState int

const (
	CarryIdle CarryState = iota
	CarryReserved
	CarryCarrying
)

func (s CarryState) String() string {
	return []string{"Idle", "Reserved", "Carrying"}[s]
}

// Carryall is the carrier half of the transport handshake. It owns the
// state machine; the Carryable on the cargo side only mirrors flags so
// third parties can tell claimed cargo from free cargo.
type Carryall struct {
	actor *Actor
	def   *CarryallDef

	State CarryState
	Cargo *Actor

	// carryableOffset is cached at attach time: the carrier's
	// attachment point minus the cargo's. It positions slung cargo and
	// later picks the drop cell, rotated by the carrier's facing.
	carryableOffset math.Vec

	// landingOffset is what AttachCarryable added to the carrier's land
	// altitude, kept so detach reverts exactly what attach applied.
	landingOffset math.Dist

	loadedToken ConditionToken

	// previewName is the cargo's definition name, cached for renderers
	// while the cargo itself is out of the world.
	previewName string
}

// PreviewName returns the slung cargo's definition name, or "".
func (ca *Carryall) PreviewName() string { return ca.previewName }

// CarryableOffset returns the cached attachment offset.
func (ca *Carryall) CarryableOffset() math.Vec { return ca.carryableOffset }

// Tick keeps the cargo link coherent. Cargo killed mid-flight is
// detached no matter which state the carrier is in; live slung cargo is
// kept positioned under the carrier.
func (ca *Carryall) Tick(w *World) {
	if ca.Cargo != nil && ca.Cargo.Dead {
		ca.DetachCarryable(w)
		return
	}
	if ca.State == CarryCarrying && ca.Cargo != nil {
		a := ca.actor
		ca.Cargo.Pos = a.Pos.Add(ca.carryableOffset.Rotate(a.Facing))
		ca.Cargo.Facing = a.Facing
	}
}

// ReserveCarryable claims target as this carrier's cargo. A leftover
// reservation is dropped first; a carrier already carrying, or a
// target already reserved by someone else, refuses.
func (ca *Carryall) ReserveCarryable(w *World, target *Actor) bool {
	if ca.State == CarryReserved {
		ca.UnreserveCarryable(w)
	}
	if ca.State != CarryIdle || target == nil || target.Carryable == nil {
		return false
	}
	if !target.Carryable.Reserve(w, ca.actor) {
		return false
	}
	ca.Cargo = target
	ca.State = CarryReserved
	w.lg.Debug("reserved cargo", slog.Any("carrier", ca.actor), slog.Any("cargo", target))
	w.Events.Post(Event{Type: CargoReservedEvent, Actor: ca.actor.ID, Other: target.ID})
	return true
}

// AttachCarryable hooks target under the carrier: the attachment
// offset is computed and cached, the carrier's land altitude rises by
// the cargo's vertical extent, and the cargo leaves the world for the
// duration of the flight. Refused while already carrying.
func (ca *Carryall) AttachCarryable(w *World, target *Actor) bool {
	if ca.State == CarryCarrying || target == nil || target.Carryable == nil {
		return false
	}
	ca.Cargo = target
	ca.State = CarryCarrying

	cd := target.Carryable
	ca.carryableOffset = ca.def.LocalOffset.Sub(cd.def.LocalOffset)
	ca.landingOffset = -ca.carryableOffset.Z
	ca.actor.Aircraft.AddLandingOffset(ca.landingOffset)
	cd.Reserve(w, ca.actor)
	cd.Attached(w)

	ca.previewName = target.Name
	ca.loadedToken = ca.actor.GrantCondition(ca.def.LoadedCondition)

	w.RemoveFromWorld(target)
	w.lg.Debug("attached cargo", slog.Any("carrier", ca.actor), slog.Any("cargo", target))
	w.Events.Post(Event{Type: CargoAttachedEvent, Actor: ca.actor.ID, Other: target.ID,
		Pos: ca.actor.Pos})
	return true
}

// DetachCarryable always runs the full teardown regardless of state:
// revert the landing altitude, drop the loaded condition, release the
// cargo-side reservation, clear the cached preview and offset, and go
// back to Idle. Running it from a state that never applied some of
// these is harmless; each step is a no-op when there is nothing to
// undo.
func (ca *Carryall) DetachCarryable(w *World) {
	if ca.landingOffset != 0 {
		ca.actor.Aircraft.RemoveLandingOffset(ca.landingOffset)
		ca.landingOffset = 0
	}
	ca.actor.RevokeCondition(ca.loadedToken)
	ca.loadedToken = InvalidConditionToken

	cargo := ca.Cargo
	ca.UnreserveCarryable(w)
	ca.previewName = ""
	ca.carryableOffset = math.Vec{}
	if cargo != nil {
		w.Events.Post(Event{Type: CargoDetachedEvent, Actor: ca.actor.ID, Other: cargo.ID,
			Pos: ca.actor.Pos})
	}
}

// UnreserveCarryable clears the cargo link and returns to Idle. The
// cargo's own flags are only touched while it is live and in the
// world; dead or slung cargo has nothing meaningful to release.
// Idempotent.
func (ca *Carryall) UnreserveCarryable(w *World) {
	if c := ca.Cargo; c != nil && c.Alive() && c.InWorld && c.Carryable != nil {
		c.Carryable.UnReserve(w)
	}
	ca.Cargo = nil
	ca.State = CarryIdle
}

// CanUnloadNow reports whether the slung cargo could be set down from
// the carrier's current position and facing: the attachment offset,
// rotated by the facing, must point at a cell the cargo can enter.
func (ca *Carryall) CanUnloadNow(w *World) bool {
	if ca.State != CarryCarrying || ca.Cargo == nil {
		return false
	}
	drop := ca.actor.Pos.Add(ca.carryableOffset.Rotate(ca.actor.Facing))
	return w.canEnterCell(ca.Cargo, w.Terrain.CellContaining(drop))
}

// disposing destroys still-slung cargo along with the carrier; cargo
// that is out of the world has nowhere to come back to.
func (ca *Carryall) disposing(w *World) {
	if ca.State == CarryCarrying && ca.Cargo != nil {
		w.Destroy(ca.Cargo)
	}
	ca.DetachCarryable(w)
}

func (ca *Carryall) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("state", ca.State.String())}
	if ca.Cargo != nil {
		attrs = append(attrs, slog.Any("cargo", ca.Cargo.ID))
	}
	return slog.GroupValue(attrs...)
}

///////////////////////////////////////////////////////////////////////////
// Carryable

// Carryable marks an actor that a carryall can pick up. Its flags
// mirror the carrier's state machine so third parties can check a
// cargo's availability without chasing the carrier pointer.
type Carryable struct {
	actor *Actor
	def   *CarryableDef

	Reserved bool
	Carried  bool
	Carrier  *Actor

	reservedToken ConditionToken
	carriedToken  ConditionToken
}

// Reserve marks the cargo claimed by carrier. Cargo already reserved
// refuses everyone but its current carrier.
func (c *Carryable) Reserve(w *World, carrier *Actor) bool {
	if c.Reserved && c.Carrier != carrier {
		return false
	}
	c.Reserved = true
	c.Carrier = carrier
	if c.reservedToken == InvalidConditionToken {
		c.reservedToken = c.actor.GrantCondition(c.def.ReservedCondition)
	}
	return true
}

// UnReserve releases the claim and, if the cargo was attached, marks
// it dropped as well.
func (c *Carryable) UnReserve(w *World) {
	c.Reserved = false
	c.Carrier = nil
	c.actor.RevokeCondition(c.reservedToken)
	c.reservedToken = InvalidConditionToken
	if c.Carried {
		c.Detached(w)
	}
}

// Attached marks the cargo picked up.
func (c *Carryable) Attached(w *World) {
	if c.Carried {
		return
	}
	c.Carried = true
	if c.carriedToken == InvalidConditionToken {
		c.carriedToken = c.actor.GrantCondition(c.def.CarriedCondition)
	}
}

// Detached marks the cargo dropped.
func (c *Carryable) Detached(w *World) {
	if !c.Carried {
		return
	}
	c.Carried = false
	c.actor.RevokeCondition(c.carriedToken)
	c.carriedToken = InvalidConditionToken
}

func (c *Carryable) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Bool("reserved", c.Reserved),
		slog.Bool("carried", c.Carried),
	}
	if c.Carrier != nil {
		attrs = append(attrs, slog.Any("carrier", c.Carrier.ID))
	}
	return slog.GroupValue(attrs...)
}
