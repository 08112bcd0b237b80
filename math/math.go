// math/math.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package math provides integer world-space geometry for the simulation.
// Multiplayer replicas must compute bit-identical positions every tick, so
// nothing here goes through floating point except the trig tables built at
// init time.
package math

import (
	"golang.org/x/exp/constraints"
)

// Dist is a world-space distance. Cells are CellSize units on a side, so
// sub-cell positions are exact integers.
type Dist int

const CellSize Dist = 1024

// Cell is a map cell coordinate.
type Cell struct {
	X, Y int
}

// CellVec is an offset between cells; building footprints and drop-cell
// searches are expressed with these.
type CellVec struct {
	X, Y int
}

func (c Cell) Add(v CellVec) Cell {
	return Cell{c.X + v.X, c.Y + v.Y}
}

func (c Cell) Sub(o Cell) CellVec {
	return CellVec{c.X - o.X, c.Y - o.Y}
}

func Abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	}
	if x > high {
		return high
	}
	return x
}

func Sign[T constraints.Signed](x T) T {
	if x < 0 {
		return -1
	}
	if x > 0 {
		return 1
	}
	return 0
}

// Sqrt returns the integer square root of n, rounding down. Newton's
// method with an integer seed converges in a few dozen iterations at most
// and never touches floating point.
func Sqrt(n int64) int64 {
	if n <= 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}
