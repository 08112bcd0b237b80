// sim/actormap.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"cmp"
	"slices"

	"github.com/aloft-sim/aloft/math"
)

// ActorMap is the spatial index over in-world actors: a dense grid of
// per-cell buckets. Buckets hold actors in ID order and queries scan
// cells row-major, so every replica sees identical result order.
type ActorMap struct {
	width, height int
	cells         [][]*Actor
}

func NewActorMap(width, height int) *ActorMap {
	return &ActorMap{
		width:  width,
		height: height,
		cells:  make([][]*Actor, width*height),
	}
}

// bucket returns the index for c, or -1 when c is off the grid.
// Aircraft repulsed past the map edge are simply absent from the index
// until they come back; the out-of-bounds center bias guarantees they
// do.
func (am *ActorMap) bucket(c math.Cell) int {
	if c.X < 0 || c.X >= am.width || c.Y < 0 || c.Y >= am.height {
		return -1
	}
	return c.Y*am.width + c.X
}

func (am *ActorMap) Add(a *Actor, c math.Cell) {
	i := am.bucket(c)
	if i < 0 {
		return
	}
	at, _ := slices.BinarySearchFunc(am.cells[i], a.ID,
		func(b *Actor, id ActorID) int { return cmp.Compare(b.ID, id) })
	am.cells[i] = slices.Insert(am.cells[i], at, a)
}

func (am *ActorMap) Remove(a *Actor, c math.Cell) {
	i := am.bucket(c)
	if i < 0 {
		return
	}
	am.cells[i] = slices.DeleteFunc(am.cells[i],
		func(b *Actor) bool { return b == a })
}

// ActorsAt returns the actors registered at c, in ID order. The
// returned slice is the index's own storage; callers must not hold it
// across mutations.
func (am *ActorMap) ActorsAt(c math.Cell) []*Actor {
	i := am.bucket(c)
	if i < 0 {
		return nil
	}
	return am.cells[i]
}

// ActorsInCircle visits every actor whose position is within radius of
// p, in deterministic order: cells row-major over the circle's
// bounding box, actors by ID within each cell. An actor occupying
// several cells is visited once per registered cell inside the radius;
// callers that care deduplicate.
func (am *ActorMap) ActorsInCircle(p math.Point, radius math.Dist, visit func(*Actor)) {
	if radius < 0 {
		return
	}
	x0, y0 := cellFloor(p.X-radius), cellFloor(p.Y-radius)
	x1, y1 := cellFloor(p.X+radius), cellFloor(p.Y+radius)
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, am.width-1), min(y1, am.height-1)

	rSq := int64(radius) * int64(radius)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			for _, a := range am.cells[y*am.width+x] {
				d := a.Pos.Sub(p)
				if d.HorizLengthSq() <= rSq {
					visit(a)
				}
			}
		}
	}
}

// cellFloor is floor division of a world coordinate by the cell size.
func cellFloor(x math.Dist) int {
	if x < 0 {
		x -= math.CellSize - 1
	}
	return int(x / math.CellSize)
}
