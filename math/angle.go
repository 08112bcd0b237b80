// math/angle.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
)

// Angle is a binary angle: 1024 units to a full circle, so wrapping is a
// mask away and a facing fits comfortably in serialized state. Angle 0
// points along +X with +Y a quarter turn counterclockwise.
type Angle int

const (
	AngleQuarter Angle = 256
	AngleHalf    Angle = 512
	AngleFull    Angle = 1024
)

// sinTable holds sin scaled by 1024 for each of the 1024 angle units.
// math.Sin is implemented in portable Go, so the table is identical on
// every platform that builds the simulation.
var sinTable [1024]int

func init() {
	for i := range sinTable {
		sinTable[i] = int(gomath.Round(1024 * gomath.Sin(2*gomath.Pi*float64(i)/1024)))
	}
}

// Norm wraps a into [0, 1024).
func (a Angle) Norm() Angle {
	a %= AngleFull
	if a < 0 {
		a += AngleFull
	}
	return a
}

func (a Angle) Add(b Angle) Angle {
	return (a + b).Norm()
}

// SignedDelta returns the shortest rotation taking a to b, in (-512, 512];
// an exact half-circle comes back positive.
func (a Angle) SignedDelta(b Angle) Angle {
	d := (b - a).Norm()
	if d > AngleHalf {
		d -= AngleFull
	}
	return d
}

// Sin returns sin(a) scaled by 1024.
func (a Angle) Sin() int {
	return sinTable[a.Norm()]
}

// Cos returns cos(a) scaled by 1024.
func (a Angle) Cos() int {
	return sinTable[(a + AngleQuarter).Norm()]
}

// ArcTan2 returns the angle of the vector (x, y), in [0, 1024). The
// inverse runs on the same table as the forward direction: after quadrant
// reduction, the cross product of (x, y) against the table direction
// changes sign exactly once, so a bisection recovers the angle to one
// unit without floating point.
func ArcTan2(y, x Dist) Angle {
	if x == 0 && y == 0 {
		return 0
	}

	var base Angle
	switch {
	case x > 0 && y >= 0:
		base = 0
	case x <= 0 && y > 0:
		base = AngleQuarter
	case x < 0 && y <= 0:
		base = AngleHalf
	default:
		base = AngleHalf + AngleQuarter
	}

	lo, hi := base, base+AngleQuarter
	for hi-lo > 1 {
		m := (lo + hi) / 2
		cross := int64(m.Cos())*int64(y) - int64(m.Sin())*int64(x)
		if cross >= 0 {
			lo = m
		} else {
			hi = m
		}
	}
	return lo.Norm()
}

// TurnToward rotates cur toward want by at most rate, taking the shorter
// way around; a dead-opposite heading turns positive.
func TurnToward(cur, want, rate Angle) Angle {
	d := cur.SignedDelta(want)
	if d > rate {
		d = rate
	} else if d < -rate {
		d = -rate
	}
	return cur.Add(d)
}
