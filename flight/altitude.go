// flight/altitude.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flight

import (
	"strings"

	"github.com/aloft-sim/aloft/math"
	"github.com/aloft-sim/aloft/util"
)

// Transitions is a bitset of the altitude state changes produced by a
// single AltitudeTracker.Update call.
type Transitions int

const (
	BecameAirborne Transitions = 1 << iota
	LeftAirborne
	BecameCruising
	LeftCruising
)

func (t Transitions) String() string {
	if t == 0 {
		return "none"
	}
	var s []string
	if t&BecameAirborne != 0 {
		s = append(s, "became_airborne")
	}
	if t&LeftAirborne != 0 {
		s = append(s, "left_airborne")
	}
	if t&BecameCruising != 0 {
		s = append(s, "became_cruising")
	}
	if t&LeftCruising != 0 {
		s = append(s, "left_cruising")
	}
	return strings.Join(s, "|")
}

// AltitudeTracker derives an aircraft's airborne and cruising states
// from its height above terrain. Both states are edge-triggered: each
// crossing is reported exactly once, and a stable altitude reports
// nothing.
type AltitudeTracker struct {
	MinAirborne math.Dist
	Cruise      math.Dist

	Airborne bool
	Cruising bool
}

// Update reevaluates both states for the given height above terrain
// and returns the transitions that fired. Airborne is a threshold at
// MinAirborne; cruising is an exact equality test against Cruise, so
// an aircraft one unit above or below its cruise altitude is not
// cruising. The two states are independent.
func (at *AltitudeTracker) Update(dat math.Dist) Transitions {
	var tr Transitions

	if airborne := dat >= at.MinAirborne; airborne != at.Airborne {
		at.Airborne = airborne
		tr |= util.Select(airborne, BecameAirborne, LeftAirborne)
	}
	if cruising := dat == at.Cruise; cruising != at.Cruising {
		at.Cruising = cruising
		tr |= util.Select(cruising, BecameCruising, LeftCruising)
	}

	return tr
}
