// math/vec.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"encoding/json"
	"fmt"
)

// Vec is a world-space displacement; Z is height, positive up.
type Vec struct {
	X, Y, Z Dist
}

// Point is an absolute world-space position, same axes as Vec.
type Point struct {
	X, Y, Z Dist
}

func (v Vec) Add(o Vec) Vec {
	return Vec{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec) Sub(o Vec) Vec {
	return Vec{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec) Neg() Vec {
	return Vec{-v.X, -v.Y, -v.Z}
}

func (v Vec) Scale(s int) Vec {
	return Vec{v.X * Dist(s), v.Y * Dist(s), v.Z * Dist(s)}
}

// Div divides componentwise, truncating toward zero like Go itself.
func (v Vec) Div(s int) Vec {
	return Vec{v.X / Dist(s), v.Y / Dist(s), v.Z / Dist(s)}
}

func (v Vec) IsZero() bool {
	return v == Vec{}
}

func (v Vec) HorizLengthSq() int64 {
	return int64(v.X)*int64(v.X) + int64(v.Y)*int64(v.Y)
}

func (v Vec) HorizLength() Dist {
	return Dist(Sqrt(v.HorizLengthSq()))
}

func (v Vec) LengthSq() int64 {
	return v.HorizLengthSq() + int64(v.Z)*int64(v.Z)
}

func (v Vec) Length() Dist {
	return Dist(Sqrt(v.LengthSq()))
}

func (v Vec) Dot(o Vec) int64 {
	return int64(v.X)*int64(o.X) + int64(v.Y)*int64(o.Y) + int64(v.Z)*int64(o.Z)
}

// Yaw returns the horizontal direction of v; zero-length input yields
// angle zero.
func (v Vec) Yaw() Angle {
	return ArcTan2(v.Y, v.X)
}

// Rotate turns the horizontal components of v by a, leaving Z alone.
func (v Vec) Rotate(a Angle) Vec {
	sin, cos := int64(a.Sin()), int64(a.Cos())
	x := (int64(v.X)*cos - int64(v.Y)*sin) / 1024
	y := (int64(v.X)*sin + int64(v.Y)*cos) / 1024
	return Vec{Dist(x), Dist(y), v.Z}
}

// UnitVec returns the CellSize-length horizontal vector pointing along a.
func UnitVec(a Angle) Vec {
	return Vec{Dist(a.Cos()), Dist(a.Sin()), 0}
}

func (p Point) Add(v Vec) Point {
	return Point{p.X + v.X, p.Y + v.Y, p.Z + v.Z}
}

func (p Point) Sub(o Point) Vec {
	return Vec{p.X - o.X, p.Y - o.Y, p.Z - o.Z}
}

func (p Point) HorizDist(o Point) Dist {
	return p.Sub(o).HorizLength()
}

func (p Point) Dist(o Point) Dist {
	return p.Sub(o).Length()
}

///////////////////////////////////////////////////////////////////////////
// JSON
//
// Vectors and cells appear in scenario files as bare arrays, which keeps
// hand-written scenarios readable.

func (v Vec) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]Dist{v.X, v.Y, v.Z})
}

func (v *Vec) UnmarshalJSON(b []byte) error {
	var a [3]Dist
	if err := json.Unmarshal(b, &a); err != nil {
		return fmt.Errorf("vector must be a [x, y, z] array: %w", err)
	}
	v.X, v.Y, v.Z = a[0], a[1], a[2]
	return nil
}

func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.X, c.Y})
}

func (c *Cell) UnmarshalJSON(b []byte) error {
	var a [2]int
	if err := json.Unmarshal(b, &a); err != nil {
		return fmt.Errorf("cell must be a [x, y] array: %w", err)
	}
	c.X, c.Y = a[0], a[1]
	return nil
}

func (v CellVec) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{v.X, v.Y})
}

func (v *CellVec) UnmarshalJSON(b []byte) error {
	var a [2]int
	if err := json.Unmarshal(b, &a); err != nil {
		return fmt.Errorf("cell offset must be a [x, y] array: %w", err)
	}
	v.X, v.Y = a[0], a[1]
	return nil
}
