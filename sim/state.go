// sim/state.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"github.com/aloft-sim/aloft/math"

	"github.com/brunoga/deep"
	"github.com/goforj/godump"
)

// ActorSnapshot is one actor's state flattened for display: no
// pointers back into the live world, so a renderer can hold one
// across ticks without racing the simulation.
type ActorSnapshot struct {
	ID       ActorID    `json:"id"`
	Name     string     `json:"name"`
	Owner    string     `json:"owner,omitempty"`
	Pos      math.Point `json:"pos"`
	Cell     math.Cell  `json:"cell"`
	Facing   math.Angle `json:"facing"`
	Altitude math.Dist  `json:"altitude"`
	InWorld  bool       `json:"in_world"`

	Airborne bool `json:"airborne,omitempty"`
	Cruising bool `json:"cruising,omitempty"`

	Activity string `json:"activity,omitempty"`

	CarryState   string  `json:"carry_state,omitempty"`
	CargoID      ActorID `json:"cargo,omitempty"`
	CargoPreview string  `json:"cargo_preview,omitempty"`

	Reserved bool `json:"reserved,omitempty"`
	Carried  bool `json:"carried,omitempty"`

	ReservedDockID ActorID `json:"reserved_dock,omitempty"`
	DockOccupantID ActorID `json:"dock_occupant,omitempty"`

	Conditions int `json:"conditions,omitempty"`

	Def *ActorDef `json:"-"`
}

// StateSnapshot is a full copy of the observable world at one tick.
type StateSnapshot struct {
	Tick        int             `json:"tick"`
	MapName     string          `json:"map"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Fingerprint uint64          `json:"fingerprint"`
	Actors      []ActorSnapshot `json:"actors"`
}

// Snapshot flattens the world for consumers outside the tick loop.
// The result is deep-copied so nothing aliases live simulation state,
// definitions included.
func (w *World) Snapshot() *StateSnapshot {
	snap := &StateSnapshot{
		Tick:        w.TickCount,
		MapName:     w.Terrain.Name,
		Width:       w.Terrain.Width,
		Height:      w.Terrain.Height,
		Fingerprint: w.Fingerprint(),
		Actors:      make([]ActorSnapshot, 0, len(w.Actors)),
	}
	for _, a := range w.Actors {
		if a.Dead {
			continue
		}
		as := ActorSnapshot{
			ID:         a.ID,
			Name:       a.Name,
			Owner:      a.Owner,
			Pos:        a.Pos,
			Cell:       w.Terrain.CellContaining(a.Pos),
			Facing:     a.Facing,
			Altitude:   w.Terrain.DistanceAboveTerrain(a.Pos),
			InWorld:    a.InWorld,
			Conditions: len(a.conditions),
			Def:        a.Def,
		}
		if act := a.CurrentActivity(); act != nil {
			as.Activity = act.Kind().String()
		}
		if ac := a.Aircraft; ac != nil {
			as.Airborne = ac.Airborne()
			as.Cruising = ac.Cruising()
			if ac.reservedDock != nil {
				as.ReservedDockID = ac.reservedDock.ID
			}
		}
		if ca := a.Carryall; ca != nil {
			as.CarryState = ca.State.String()
			if ca.Cargo != nil {
				as.CargoID = ca.Cargo.ID
			}
			as.CargoPreview = ca.PreviewName()
		}
		if cd := a.Carryable; cd != nil {
			as.Reserved = cd.Reserved
			as.Carried = cd.Carried
		}
		if d := a.Dock; d != nil && d.occupant != nil {
			as.DockOccupantID = d.occupant.ID
		}
		snap.Actors = append(snap.Actors, as)
	}
	return deep.MustCopy(snap)
}

// DumpActor renders one actor's full state as a debugging string.
func (w *World) DumpActor(id ActorID) string {
	a := w.Actor(id)
	if a == nil {
		return ""
	}
	return godump.DumpStr(a)
}
