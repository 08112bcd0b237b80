// terrain/terrain.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package terrain holds the static world: per-cell terrain types and
// elevations, the playable bounds, and the compressed map library the
// commands load maps from. Everything here is immutable once a simulation
// starts; the sim package owns all mutable state.
package terrain

import (
	"github.com/aloft-sim/aloft/math"
)

// TerrainType describes one entry of a map's terrain table. Whether an
// aircraft may land on a given type is the aircraft's call (each type
// lists the terrain it tolerates); passability is a property of the
// ground itself.
type TerrainType struct {
	Name     string `json:"name" msgpack:"name"`
	Passable bool   `json:"passable" msgpack:"passable"`
}

// The default terrain table. Maps may carry their own, but every
// generated map uses these indices.
const (
	TileClear = iota
	TileRoad
	TileRough
	TileWater
	TileRock
)

func DefaultTypes() []TerrainType {
	return []TerrainType{
		{Name: "Clear", Passable: true},
		{Name: "Road", Passable: true},
		{Name: "Rough", Passable: true},
		{Name: "Water", Passable: false},
		{Name: "Rock", Passable: false},
	}
}

// CellBounds is the playable region of a map, inclusive of (X0, Y0) and
// exclusive of (X1, Y1). Cells outside it exist (aircraft get pushed out
// there and fly back) but nothing may land or be ordered there.
type CellBounds struct {
	X0, Y0, X1, Y1 int
}

func (b CellBounds) Contains(c math.Cell) bool {
	return c.X >= b.X0 && c.X < b.X1 && c.Y >= b.Y0 && c.Y < b.Y1
}

// Map is a rectangular cell grid with a terrain type and an elevation per
// cell.
type Map struct {
	Name          string        `json:"name" msgpack:"name"`
	Width, Height int           `json:"width" msgpack:"width"`
	Types         []TerrainType `json:"types" msgpack:"types"`
	Tiles         []uint8       `json:"tiles" msgpack:"tiles"`
	Elevations    []math.Dist   `json:"elevations" msgpack:"elevations"`
	Bounds        CellBounds    `json:"bounds" msgpack:"bounds"`
}

// NewFlatMap returns a w x h map of clear terrain at elevation zero with
// a one-cell unplayable border.
func NewFlatMap(name string, w, h int) *Map {
	return &Map{
		Name:       name,
		Width:      w,
		Height:     h,
		Types:      DefaultTypes(),
		Tiles:      make([]uint8, w*h),
		Elevations: make([]math.Dist, w*h),
		Bounds:     CellBounds{1, 1, w - 1, h - 1},
	}
}

// Contains reports whether c is inside the playable bounds.
func (m *Map) Contains(c math.Cell) bool {
	return m.Bounds.Contains(c)
}

// clampToGrid maps any cell to the nearest cell of the underlying grid so
// terrain queries are defined even for aircraft pushed outside the map.
func (m *Map) clampToGrid(c math.Cell) math.Cell {
	c.X = math.Clamp(c.X, 0, m.Width-1)
	c.Y = math.Clamp(c.Y, 0, m.Height-1)
	return c
}

func (m *Map) cellIndex(c math.Cell) int {
	c = m.clampToGrid(c)
	return c.Y*m.Width + c.X
}

func (m *Map) TerrainTypeAt(c math.Cell) TerrainType {
	return m.Types[m.Tiles[m.cellIndex(c)]]
}

func (m *Map) ElevationAt(c math.Cell) math.Dist {
	return m.Elevations[m.cellIndex(c)]
}

func (m *Map) SetTile(c math.Cell, tile uint8) {
	m.Tiles[m.cellIndex(c)] = tile
}

func (m *Map) SetElevation(c math.Cell, e math.Dist) {
	m.Elevations[m.cellIndex(c)] = e
}

// cellCoord is floor division by CellSize; plain integer division
// truncates toward zero and misplaces negative coordinates by one cell.
func cellCoord(x math.Dist) int {
	if x < 0 {
		x -= math.CellSize - 1
	}
	return int(x / math.CellSize)
}

// CellContaining returns the cell the horizontal components of p fall in.
func (m *Map) CellContaining(p math.Point) math.Cell {
	return math.Cell{X: cellCoord(p.X), Y: cellCoord(p.Y)}
}

// CenterOfCell returns the world position of the center of c, at terrain
// elevation.
func (m *Map) CenterOfCell(c math.Cell) math.Point {
	return math.Point{
		X: math.Dist(c.X)*math.CellSize + math.CellSize/2,
		Y: math.Dist(c.Y)*math.CellSize + math.CellSize/2,
		Z: m.ElevationAt(c),
	}
}

// HeightAt returns the terrain elevation under p.
func (m *Map) HeightAt(p math.Point) math.Dist {
	return m.ElevationAt(m.CellContaining(p))
}

// DistanceAboveTerrain is the altitude of p over the ground below it.
// Everything the altitude state machine does keys off this value.
func (m *Map) DistanceAboveTerrain(p math.Point) math.Dist {
	return p.Z - m.HeightAt(p)
}

// Center returns the horizontal center of the playable bounds; out-of-map
// aircraft are biased back toward this point.
func (m *Map) Center() math.Point {
	return math.Point{
		X: math.Dist(m.Bounds.X0+m.Bounds.X1) * math.CellSize / 2,
		Y: math.Dist(m.Bounds.Y0+m.Bounds.Y1) * math.CellSize / 2,
	}
}
