// flight/repulse.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flight

import (
	"github.com/aloft-sim/aloft/math"
	"github.com/aloft-sim/aloft/rand"
)

// Repulsor computes the per-tick force that keeps cruising aircraft
// from stacking. The caller owns neighbor discovery: it queries within
// Separation, filters to repulsable aircraft sharing the same cruise
// altitude, and presents them in a deterministic order.
type Repulsor struct {
	Separation math.Dist
	CanHover   bool
}

// PairForce returns the force a neighbor at other exerts on an
// aircraft at self. Neighbors below self exert nothing. Otherwise the
// force points away from the neighbor and falls off with horizontal
// distance squared. Exactly co-located aircraft draw a pseudo-random
// direction from r at full strength; r must be the simulation's shared
// source or replicas diverge.
func (rep Repulsor) PairForce(self, other math.Point, r *rand.Rand) math.Vec {
	if other.Z < self.Z {
		return math.Vec{}
	}

	d := self.Sub(other)
	d.Z = 0
	distSq := d.HorizLengthSq()
	if distSq == 0 {
		yaw := math.Angle(r.Intn(int(math.AngleFull)))
		return math.Vec{X: math.CellSize}.Rotate(yaw)
	}

	return d.Scale(int(math.CellSize) * 8).Div(int(distSq))
}

// CenterBias returns the extra nudge applied to an aircraft outside
// the playable map area: a CellSize-length vector from p toward
// center.
func CenterBias(p, center math.Point) math.Vec {
	return math.UnitVec(center.Sub(p).Yaw())
}

// NetForce accumulates the pair forces from neighbors in the order
// given, adds bias (the out-of-bounds center nudge, zero elsewhere),
// and resolves the sum against step, the aircraft's current forward
// step vector. Hovering aircraft take the sum as is. Non-hovering
// aircraft cannot stop or fly backwards, so a degenerate sum or step
// yields no force, and a sum opposing step is dropped whole rather
// than projected. The evaluation order here is fixed; changing it
// changes behavior across replicas.
func (rep Repulsor) NetForce(self math.Point, neighbors []math.Point, bias math.Vec, step math.Vec, r *rand.Rand) math.Vec {
	var force math.Vec
	for _, n := range neighbors {
		force = force.Add(rep.PairForce(self, n, r))
	}
	force = force.Add(bias)

	if rep.CanHover {
		return force
	}

	length := int64(step.HorizLength()) * int64(force.HorizLength())
	if length == 0 {
		return math.Vec{}
	}
	// Truncating division: a small opposing component, under one unit
	// of the normalized dot, still counts as forward.
	if dot := step.Dot(force) / length; dot < 0 {
		return math.Vec{}
	}
	return force
}
