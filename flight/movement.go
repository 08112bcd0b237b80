// flight/movement.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flight

import (
	"strings"

	"github.com/aloft-sim/aloft/math"
)

// MovementTypes is a bitset classifying how an aircraft moved over its
// last tick.
type MovementTypes int

const MoveNone MovementTypes = 0

const (
	MoveHorizontal MovementTypes = 1 << iota
	MoveVertical
	MoveTurn
)

func (m MovementTypes) String() string {
	if m == MoveNone {
		return "none"
	}
	var s []string
	if m&MoveHorizontal != 0 {
		s = append(s, "horizontal")
	}
	if m&MoveVertical != 0 {
		s = append(s, "vertical")
	}
	if m&MoveTurn != 0 {
		s = append(s, "turn")
	}
	return strings.Join(s, "|")
}

// MovementTracker classifies per-tick movement by diffing position and
// facing against the previous tick's values.
type MovementTracker struct {
	pos    math.Point
	facing math.Angle

	Current MovementTypes
}

// Reset primes the tracker at a new position without reporting
// movement, for spawns and cosmetic repositioning.
func (mt *MovementTracker) Reset(pos math.Point, facing math.Angle) {
	mt.pos, mt.facing = pos, facing
	mt.Current = MoveNone
}

// Update classifies movement since the previous call and reports
// whether the classification changed.
func (mt *MovementTracker) Update(pos math.Point, facing math.Angle) (MovementTypes, bool) {
	var mv MovementTypes
	if pos.X != mt.pos.X || pos.Y != mt.pos.Y {
		mv |= MoveHorizontal
	}
	if pos.Z != mt.pos.Z {
		mv |= MoveVertical
	}
	if facing != mt.facing {
		mv |= MoveTurn
	}

	mt.pos, mt.facing = pos, facing
	changed := mv != mt.Current
	mt.Current = mv
	return mv, changed
}

// StepVec returns the displacement covered in one tick of forward
// flight at the given speed and facing. Speed is in world units per
// tick.
func StepVec(speed int, facing math.Angle) math.Vec {
	return math.UnitVec(facing).Scale(speed).Div(int(math.CellSize))
}

// ClimbStep returns the altitude change for one tick of climbing or
// descending from cur toward want, clamped to rate.
func ClimbStep(cur, want, rate math.Dist) math.Dist {
	return math.Clamp(want-cur, -rate, rate)
}

// EstimateDuration returns the straight-line travel time in ticks
// between two points at the given per-tick speed. Distinct points
// always cost at least one tick; a zero or negative speed estimates
// zero.
func EstimateDuration(from, to math.Point, speed int) int {
	if speed <= 0 {
		return 0
	}
	d := int(from.Dist(to))
	if d == 0 {
		return 0
	}
	return max(1, d/speed)
}
