// sim/aircraft.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"log/slog"
	"slices"

	"github.com/aloft-sim/aloft/flight"
	"github.com/aloft-sim/aloft/math"
)

// Aircraft is the flight trait: altitude state, dock reservations,
// repulsion, and the movement facade that orders and activities drive.
type Aircraft struct {
	actor *Actor
	def   *AircraftDef

	alt      flight.AltitudeTracker
	movement flight.MovementTracker

	// LandAltitude starts at the definition's value and moves only
	// through paired AddLandingOffset/RemoveLandingOffset calls while
	// cargo is slung underneath.
	LandAltitude math.Dist

	airborneToken ConditionToken
	cruisingToken ConditionToken

	reservedDock *Actor
	mayYield     bool

	// ForceLanding tracks the edge of the land-on condition so that the
	// landing is triggered once per activation, not every tick.
	ForceLanding bool

	// Scratch buffer for repulsion neighbor queries, reused across
	// ticks to avoid per-tick allocation.
	neighbors []math.Point
}

func newAircraft(a *Actor, def *AircraftDef) *Aircraft {
	return &Aircraft{
		actor:        a,
		def:          def,
		LandAltitude: def.LandAltitude,
		alt: flight.AltitudeTracker{
			MinAirborne: def.MinAirborneAltitude,
			Cruise:      def.CruiseAltitude,
		},
	}
}

func (ac *Aircraft) Airborne() bool { return ac.alt.Airborne }
func (ac *Aircraft) Cruising() bool { return ac.alt.Cruising }

// ReservedHost returns the dock host this aircraft holds a reservation
// against, or nil.
func (ac *Aircraft) ReservedHost() *Actor { return ac.reservedDock }

func (ac *Aircraft) MayYieldReservation() bool { return ac.mayYield }

// MovementTypes reports how the aircraft moved last tick.
func (ac *Aircraft) MovementTypes() flight.MovementTypes { return ac.movement.Current }

// MovementSpeed is recomputed at every call site rather than cached;
// modifiers like slung cargo apply the moment they change.
func (ac *Aircraft) MovementSpeed() int {
	speed := ac.def.Speed
	if ca := ac.actor.Carryall; ca != nil && ca.State == CarryCarrying {
		speed = speed * ca.def.CarriedSpeedModifier / 100
	}
	return speed
}

// AddLandingOffset raises (or with a negative d, lowers) the altitude
// at which the aircraft considers itself landed.
func (ac *Aircraft) AddLandingOffset(d math.Dist)    { ac.LandAltitude += d }
func (ac *Aircraft) RemoveLandingOffset(d math.Dist) { ac.LandAltitude -= d }

///////////////////////////////////////////////////////////////////////////
// Per-tick flight model

// Tick runs the altitude state machine, the forced-landing policy, and
// the repulsion model, in that order.
func (ac *Aircraft) Tick(w *World) {
	a := ac.actor
	dat := w.Terrain.DistanceAboveTerrain(a.Pos)
	if tr := ac.alt.Update(dat); tr != 0 {
		ac.applyTransitions(w, tr)
	}
	ac.landOnConditionPolicy(w)
	ac.applyRepulsion(w)
}

func (ac *Aircraft) applyTransitions(w *World, tr flight.Transitions) {
	a := ac.actor
	w.lg.Debug("altitude transition", slog.Any("actor", a), slog.String("transitions", tr.String()))
	if tr&flight.BecameAirborne != 0 {
		if ac.airborneToken == InvalidConditionToken {
			ac.airborneToken = a.GrantCondition(ac.def.AirborneCondition)
		}
		w.Events.Post(Event{Type: TookOffEvent, Actor: a.ID, Pos: a.Pos})
	}
	if tr&flight.LeftAirborne != 0 {
		a.RevokeCondition(ac.airborneToken)
		ac.airborneToken = InvalidConditionToken
		w.Events.Post(Event{Type: LandedEvent, Actor: a.ID, Pos: a.Pos,
			Cell: w.Terrain.CellContaining(a.Pos)})
	}
	if tr&flight.BecameCruising != 0 {
		if ac.cruisingToken == InvalidConditionToken {
			ac.cruisingToken = a.GrantCondition(ac.def.CruisingCondition)
		}
		w.Events.Post(Event{Type: ReachedCruiseEvent, Actor: a.ID, Pos: a.Pos})
	}
	if tr&flight.LeftCruising != 0 {
		a.RevokeCondition(ac.cruisingToken)
		ac.cruisingToken = InvalidConditionToken
		w.Events.Post(Event{Type: LeftCruiseEvent, Actor: a.ID, Pos: a.Pos})
	}
}

// landOnConditionPolicy forces airborne aircraft down while their
// configured condition is active and sends them back up when it clears.
func (ac *Aircraft) landOnConditionPolicy(w *World) {
	if ac.def.LandOnCondition == "" {
		return
	}
	a := ac.actor
	active := a.ConditionActive(ac.def.LandOnCondition)
	if active && !ac.ForceLanding {
		if ac.Airborne() && ac.CanLand(w, w.Terrain.CellContaining(a.Pos), nil) &&
			!a.IsActivityOfKind(KindLand) && !a.IsActivityOfKind(KindTurn) {
			a.CancelActivity(w)
			a.QueueActivity(w, NewTurn(ac.def.InitialFacing), true)
			a.QueueActivity(w, NewLand(), true)
			ac.ForceLanding = true
			w.Events.Post(Event{Type: ForceLandingEvent, Actor: a.ID, Pos: a.Pos})
		}
	} else if !active && ac.ForceLanding {
		if !ac.def.LandWhenIdle {
			if a.IsActivityOfKind(KindLand) {
				a.CancelActivity(w)
			}
			a.QueueActivity(w, NewTakeOff(), true)
		}
		ac.ForceLanding = false
	}
}

func (ac *Aircraft) applyRepulsion(w *World) {
	if !ac.def.Repulsable || !ac.Cruising() {
		return
	}
	a := ac.actor
	// Aircraft waiting near a reserved dock sit still so the pattern
	// around the pad stays stable.
	if ac.reservedDock != nil &&
		a.Pos.HorizDist(ac.reservedDock.Pos) < ac.def.WaitDistanceFromResupplyBase {
		return
	}

	ac.neighbors = ac.neighbors[:0]
	w.ActorMap.ActorsInCircle(a.Pos, ac.def.IdealSeparation, func(o *Actor) {
		if o == a || o.Dead {
			return
		}
		oc := o.Aircraft
		if oc == nil || !oc.def.Repulsable || oc.def.CruiseAltitude != ac.def.CruiseAltitude {
			return
		}
		ac.neighbors = append(ac.neighbors, o.Pos)
	})

	var bias math.Vec
	if !w.Terrain.Contains(w.Terrain.CellContaining(a.Pos)) {
		bias = flight.CenterBias(a.Pos, w.Terrain.Center())
	}

	rep := flight.Repulsor{Separation: ac.def.IdealSeparation, CanHover: ac.def.CanHover}
	step := flight.StepVec(ac.MovementSpeed(), a.Facing)
	force := rep.NetForce(a.Pos, ac.neighbors, bias, step, w.Rand)
	if force.IsZero() {
		return
	}
	// Only the force's direction matters; the displacement is a full
	// step along its yaw at repulsion speed.
	speed := ac.def.EffectiveRepulsionSpeed(ac.MovementSpeed())
	w.setActorPosition(a, a.Pos.Add(flight.StepVec(speed, force.Yaw())))
}

// finishTick runs after the actor's activities so the movement diff
// sees the tick's final position and facing.
func (ac *Aircraft) finishTick(w *World) {
	a := ac.actor
	if mv, changed := ac.movement.Update(a.Pos, a.Facing); changed {
		w.Events.Post(Event{Type: MovementChangedEvent, Actor: a.ID, Pos: a.Pos,
			Text: mv.String()})
	}
	if ac.def.LandWhenIdle && a.IdleActivity() && ac.Airborne() && !ac.ForceLanding &&
		ac.CanLand(w, w.Terrain.CellContaining(a.Pos), nil) {
		a.QueueActivity(w, NewLand(), true)
	}
}

///////////////////////////////////////////////////////////////////////////
// Dock reservations

// MakeReservation claims the host's dock slot, releasing any
// reservation held elsewhere first so an aircraft never holds two.
func (ac *Aircraft) MakeReservation(w *World, host *Actor) bool {
	ac.UnReserve(w)
	if host == nil || host.Dock == nil || !host.Dock.Reserve(w, ac.actor) {
		return false
	}
	ac.reservedDock = host
	ac.mayYield = false
	w.Events.Post(Event{Type: DockReservedEvent, Actor: ac.actor.ID, Other: host.ID})
	return true
}

// UnReserve releases the held reservation, if any. An aircraft sitting
// at or below its land altitude is sent back up so it does not squat on
// the freed pad.
func (ac *Aircraft) UnReserve(w *World) { ac.unReserve(w, true) }

func (ac *Aircraft) unReserve(w *World, takeOff bool) {
	host := ac.reservedDock
	if host == nil {
		return
	}
	ac.reservedDock = nil
	ac.mayYield = false
	if host.Dock != nil {
		host.Dock.release(ac.actor)
	}
	w.Events.Post(Event{Type: DockUnreservedEvent, Actor: ac.actor.ID, Other: host.ID})

	a := ac.actor
	if takeOff && w.Terrain.DistanceAboveTerrain(a.Pos) <= ac.LandAltitude {
		a.QueueActivity(w, NewTakeOff(), true)
	}
}

// AllowYieldingReservation marks the held reservation as yieldable so
// another claimant can displace this aircraft. Without a reservation
// there is nothing to yield and the call does nothing.
func (ac *Aircraft) AllowYieldingReservation() {
	if ac.reservedDock != nil {
		ac.mayYield = true
	}
}

///////////////////////////////////////////////////////////////////////////
// Landing and blocking

// CanLand reports whether the aircraft may land in cell. ignore, if
// non-nil, names an occupant to disregard (a cargo about to be picked
// up, for example).
//
// A cell holding a dock host this aircraft may dock at is landable
// regardless of terrain. Otherwise every occupant must be non-blocking
// and the terrain type must be one the aircraft can sit on.
func (ac *Aircraft) CanLand(w *World, cell math.Cell, ignore *Actor) bool {
	if !w.Terrain.Contains(cell) {
		return false
	}
	dockHost := false
	for _, o := range w.ActorMap.ActorsAt(cell) {
		if o == ac.actor || o == ignore || o.Dead {
			continue
		}
		if ac.def.CanDockAt(o) {
			dockHost = true
			continue
		}
		if ac.blockedBy(o) {
			return false
		}
	}
	if dockHost {
		return true
	}
	return slices.Contains(ac.def.LandableTerrainTypes, w.Terrain.TerrainTypeAt(cell).Name)
}

// blockedBy reports whether occupant o keeps this aircraft out of o's
// cell. Airborne aircraft pass overhead, mobile ground units are
// assumed to move aside, and anything this aircraft can crush is run
// over rather than avoided.
func (ac *Aircraft) blockedBy(o *Actor) bool {
	if oc := o.Aircraft; oc != nil && oc.Airborne() {
		return false
	}
	if o.Def.Mobile {
		return false
	}
	if o.Crushable != nil && o.Crushable.CrushableBy(ac.def.Crushes) {
		return false
	}
	return true
}

// EnteringCell warns crushable occupants that the aircraft is coming
// down on top of them.
func (ac *Aircraft) EnteringCell(w *World, cell math.Cell) {
	if len(ac.def.Crushes) == 0 {
		return
	}
	for _, o := range w.ActorMap.ActorsAt(cell) {
		if o == ac.actor || o.Dead || o.Crushable == nil {
			continue
		}
		if o.Crushable.CrushableBy(ac.def.Crushes) {
			o.Crushable.WarnCrush(w, ac.actor)
		}
	}
}

// FinishedMoving resolves crushing once the aircraft comes to rest:
// every crushable occupant of its cell is destroyed.
func (ac *Aircraft) FinishedMoving(w *World) {
	if len(ac.def.Crushes) == 0 {
		return
	}
	cell := w.Terrain.CellContaining(ac.actor.Pos)
	for _, o := range w.ActorMap.ActorsAt(cell) {
		if o == ac.actor || o.Dead || o.Crushable == nil {
			continue
		}
		if o.Crushable.CrushableBy(ac.def.Crushes) {
			o.Crushable.OnCrush(w, ac.actor)
		}
	}
}

///////////////////////////////////////////////////////////////////////////
// Movement facade

func (ac *Aircraft) queueMovement(w *World, queued bool, acts ...Activity) {
	a := ac.actor
	if !queued {
		a.CancelActivity(w)
	}
	if !ac.Airborne() && !a.IsActivityOfKind(KindTakeOff) {
		a.QueueActivity(w, NewTakeOff(), true)
	}
	for _, act := range acts {
		a.QueueActivity(w, act, true)
	}
}

// MoveToCell flies the aircraft to the center of cell, taking off
// first when grounded. The aircraft stays airborne on arrival.
func (ac *Aircraft) MoveToCell(w *World, cell math.Cell, queued bool) {
	ac.queueMovement(w, queued, NewFly(w.Terrain.CenterOfCell(cell)))
}

// MoveWithinRange flies the aircraft until it is within [minRange,
// maxRange] of target, tracking the target while it moves.
func (ac *Aircraft) MoveWithinRange(w *World, target *Actor, minRange, maxRange math.Dist, queued bool) {
	ac.queueMovement(w, queued, NewFlyWithinRange(target, minRange, maxRange))
}

// MoveIntoTarget flies to the host's parking position, lines up with
// the dock angle, lands, and gets serviced. The caller is expected to
// have made the reservation already.
func (ac *Aircraft) MoveIntoTarget(w *World, host *Actor, queued bool) {
	if host.Dock == nil {
		return
	}
	ac.queueMovement(w, queued,
		NewFly(host.Dock.ParkingPosition(w)),
		NewTurn(host.Dock.ParkingFacing()),
		NewLand(),
		NewResupply(host))
}

// CanEnterTargetNow reports whether the aircraft can head for the
// host's dock right now. A positive answer has already claimed the
// slot: the check and the reservation are a single step so the answer
// cannot go stale.
func (ac *Aircraft) CanEnterTargetNow(w *World, host *Actor) bool {
	if host == nil || host.Dock == nil || !ac.def.CanDockAt(host) {
		return false
	}
	return ac.MakeReservation(w, host)
}

// VisualReposition teleports the aircraft without registering
// movement. Scenario setup and map editing use this; the movement
// tracker is reset so the jump does not read as motion.
func (ac *Aircraft) VisualReposition(w *World, pos math.Point) {
	w.setActorPosition(ac.actor, pos)
	ac.movement.Reset(pos, ac.actor.Facing)
}

// EstimatedMoveDuration returns the tick count a move from..to would
// take at current speed.
func (ac *Aircraft) EstimatedMoveDuration(from, to math.Point) int {
	return flight.EstimateDuration(from, to, ac.MovementSpeed())
}

///////////////////////////////////////////////////////////////////////////

// disposing tears down the aircraft's external claims when the actor
// dies. No takeoff is queued from a wreck.
func (ac *Aircraft) disposing(w *World) {
	ac.unReserve(w, false)
}

func (ac *Aircraft) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Bool("airborne", ac.alt.Airborne),
		slog.Bool("cruising", ac.alt.Cruising),
		slog.Int("land_altitude", int(ac.LandAltitude)),
	}
	if ac.reservedDock != nil {
		attrs = append(attrs, slog.Any("reserved_dock", ac.reservedDock.ID),
			slog.Bool("may_yield", ac.mayYield))
	}
	if ac.ForceLanding {
		attrs = append(attrs, slog.Bool("force_landing", true))
	}
	return slog.GroupValue(attrs...)
}
