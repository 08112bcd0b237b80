// sim/defs.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"slices"

	"github.com/aloft-sim/aloft/math"
	"github.com/aloft-sim/aloft/terrain"
	"github.com/aloft-sim/aloft/util"
)

// ActorDef is the static, JSON-loaded configuration shared by every
// actor of one type. A def carries a sub-def per trait; a nil sub-def
// means the trait is absent.
type ActorDef struct {
	Name string `json:"-"` // filled from the table key

	// Mobile ground units can move out of the way and so never block an
	// aircraft's landing feasibility check.
	Mobile bool `json:"mobile,omitempty"`

	Aircraft  *AircraftDef  `json:"aircraft,omitempty"`
	Carryall  *CarryallDef  `json:"carryall,omitempty"`
	Carryable *CarryableDef `json:"carryable,omitempty"`
	Dock      *DockDef      `json:"dock,omitempty"`
	Crushable *CrushableDef `json:"crushable,omitempty"`
	Building  *BuildingDef  `json:"building,omitempty"`
}

type AircraftDef struct {
	Speed               int        `json:"speed"`                 // world units per tick
	TurnSpeed           math.Angle `json:"turn_speed"`            // angle units per tick
	InitialFacing       math.Angle `json:"initial_facing,omitempty"`
	CruiseAltitude      math.Dist  `json:"cruise_altitude"`       // exact level-flight height above terrain
	MinAirborneAltitude math.Dist  `json:"min_airborne_altitude"` // at or above this, the unit is airborne
	ClimbRate           math.Dist  `json:"climb_rate"`            // vertical units per tick
	LandAltitude        math.Dist  `json:"land_altitude"`         // resting height above terrain

	CanHover bool `json:"can_hover,omitempty"`
	VTOL     bool `json:"vtol,omitempty"`

	Repulsable      bool      `json:"repulsable,omitempty"`
	IdealSeparation math.Dist `json:"ideal_separation,omitempty"`
	// RepulsionSpeed zero or negative means repulsion displaces at the
	// unit's movement speed.
	RepulsionSpeed int `json:"repulsion_speed,omitempty"`

	LandableTerrainTypes []string `json:"landable_terrain,omitempty"`
	Crushes              []string `json:"crushes,omitempty"`

	AirborneCondition string `json:"airborne_condition,omitempty"`
	CruisingCondition string `json:"cruising_condition,omitempty"`

	DockActors                   []string  `json:"dock_actors,omitempty"`
	WaitDistanceFromResupplyBase math.Dist `json:"wait_distance_from_resupply_base,omitempty"`
	TakeOffOnResupply            bool      `json:"take_off_on_resupply,omitempty"`

	LandWhenIdle    bool   `json:"land_when_idle,omitempty"`
	LandOnCondition string `json:"land_on_condition,omitempty"`
}

type CarryallDef struct {
	// LocalOffset is the attachment point relative to the carrier's
	// center; cargo hangs below, so Z is negative.
	LocalOffset       math.Vec `json:"local_offset"`
	BeforeLoadDelay   int      `json:"before_load_delay,omitempty"`
	BeforeUnloadDelay int      `json:"before_unload_delay,omitempty"`
	// CarriedSpeedModifier scales the carrier's speed, in percent, while
	// it has cargo attached.
	CarriedSpeedModifier int    `json:"carried_speed_modifier,omitempty"`
	LoadedCondition      string `json:"loaded_condition,omitempty"`
}

type CarryableDef struct {
	LocalOffset       math.Vec `json:"local_offset"`
	ReservedCondition string   `json:"reserved_condition,omitempty"`
	CarriedCondition  string   `json:"carried_condition,omitempty"`
}

type DockDef struct {
	// DockOffset positions a docking aircraft relative to the host's
	// center; DockAngle is the facing it docks at.
	DockOffset   math.Vec   `json:"dock_offset"`
	DockAngle    math.Angle `json:"dock_angle"`
	ServiceTicks int        `json:"service_ticks,omitempty"`
}

type CrushableDef struct {
	CrushClasses []string `json:"crush_classes"`
}

type BuildingDef struct {
	// Footprint lists the occupied cells relative to the building's
	// location cell. An empty footprint occupies just the location.
	Footprint []math.CellVec `json:"footprint,omitempty"`
}

// CanDockAt reports whether host is one of the actor types this unit
// may resupply at.
func (d *AircraftDef) CanDockAt(host *Actor) bool {
	return host.Dock != nil && slices.Contains(d.DockActors, host.Name)
}

// EffectiveRepulsionSpeed resolves the configured repulsion speed
// against the unit's current movement speed.
func (d *AircraftDef) EffectiveRepulsionSpeed(movementSpeed int) int {
	if d.RepulsionSpeed > 0 {
		return d.RepulsionSpeed
	}
	return movementSpeed
}

func (d *ActorDef) PostDeserialize(name string, e *util.ErrorLogger) {
	defer e.CheckDepth(e.CurrentDepth())
	e.Push("actor " + name)
	defer e.Pop()

	d.Name = name

	if a := d.Aircraft; a != nil {
		if a.Speed <= 0 {
			e.ErrorString("aircraft speed must be positive: %d", a.Speed)
		}
		if a.TurnSpeed <= 0 {
			a.TurnSpeed = 16
		}
		if a.CruiseAltitude == 0 {
			a.CruiseAltitude = 1280
		}
		if a.MinAirborneAltitude == 0 {
			a.MinAirborneAltitude = 1
		}
		if a.ClimbRate == 0 {
			a.ClimbRate = 43
		}
		if a.Repulsable && a.IdealSeparation == 0 {
			a.IdealSeparation = 1706
		}
		if len(a.DockActors) > 0 && a.WaitDistanceFromResupplyBase == 0 {
			a.WaitDistanceFromResupplyBase = 3 * math.CellSize
		}
		if a.LandAltitude < 0 {
			e.ErrorString("land altitude must not be negative: %d", a.LandAltitude)
		}
		if a.CruiseAltitude < a.MinAirborneAltitude {
			e.ErrorString("cruise altitude %d below min airborne altitude %d",
				a.CruiseAltitude, a.MinAirborneAltitude)
		}
	}
	if c := d.Carryall; c != nil {
		if d.Aircraft == nil {
			e.ErrorString("carryall requires an aircraft sub-definition")
		}
		if c.CarriedSpeedModifier == 0 {
			c.CarriedSpeedModifier = 100
		}
		if c.BeforeLoadDelay < 0 || c.BeforeUnloadDelay < 0 {
			e.ErrorString("carryall load/unload delays must not be negative")
		}
	}
	if dk := d.Dock; dk != nil {
		if dk.ServiceTicks == 0 {
			dk.ServiceTicks = 25
		}
	}
	if cr := d.Crushable; cr != nil && len(cr.CrushClasses) == 0 {
		e.ErrorString("crushable actor declares no crush classes")
	}
}

// DefTable maps actor type names to their definitions. Iteration on
// simulation paths goes through sorted names.
type DefTable map[string]*ActorDef

func (dt DefTable) Names() []string {
	return util.SortedMapKeys(dt)
}

func (dt DefTable) PostDeserialize(e *util.ErrorLogger) {
	for _, name := range dt.Names() {
		dt[name].PostDeserialize(name, e)
	}
}

// DefaultDefs returns the built-in actor types: a hovering carryall
// transport, a fixed-wing gunship, a carryable harvester, crushable
// infantry, a resupply pad, and a static supply crate.
func DefaultDefs() DefTable {
	types := terrain.DefaultTypes()
	landable := []string{types[terrain.TileClear].Name, types[terrain.TileRoad].Name,
		types[terrain.TileRough].Name}

	return DefTable{
		"transport": &ActorDef{
			Name: "transport",
			Aircraft: &AircraftDef{
				Speed:                        112,
				TurnSpeed:                    20,
				CruiseAltitude:               1280,
				MinAirborneAltitude:          1,
				ClimbRate:                    43,
				CanHover:                     true,
				VTOL:                         true,
				Repulsable:                   true,
				IdealSeparation:              1706,
				LandableTerrainTypes:         landable,
				AirborneCondition:            "airborne",
				CruisingCondition:            "cruising",
				DockActors:                   []string{"pad"},
				WaitDistanceFromResupplyBase: 3 * math.CellSize,
				TakeOffOnResupply:            true,
			},
			Carryall: &CarryallDef{
				LocalOffset:          math.Vec{Z: -128},
				BeforeLoadDelay:      10,
				BeforeUnloadDelay:    10,
				CarriedSpeedModifier: 80,
				LoadedCondition:      "loaded",
			},
		},
		"gunship": &ActorDef{
			Name: "gunship",
			Aircraft: &AircraftDef{
				Speed:                        96,
				TurnSpeed:                    12,
				CruiseAltitude:               1280,
				MinAirborneAltitude:          1,
				ClimbRate:                    43,
				Repulsable:                   true,
				IdealSeparation:              1706,
				LandableTerrainTypes:         landable,
				Crushes:                      []string{"infantry", "crate"},
				AirborneCondition:            "airborne",
				CruisingCondition:            "cruising",
				DockActors:                   []string{"pad"},
				WaitDistanceFromResupplyBase: 3 * math.CellSize,
				TakeOffOnResupply:            true,
				LandOnCondition:              "emp",
			},
		},
		"harvester": &ActorDef{
			Name:   "harvester",
			Mobile: true,
			Carryable: &CarryableDef{
				ReservedCondition: "notmobile",
				CarriedCondition:  "notmobile",
			},
		},
		"infantry": &ActorDef{
			Name:      "infantry",
			Mobile:    true,
			Crushable: &CrushableDef{CrushClasses: []string{"infantry"}},
		},
		"pad": &ActorDef{
			Name:     "pad",
			Building: &BuildingDef{},
			Dock: &DockDef{
				DockAngle:    math.AngleQuarter,
				ServiceTicks: 25,
			},
		},
		"crate": &ActorDef{
			Name:      "crate",
			Crushable: &CrushableDef{CrushClasses: []string{"crate"}},
		},
	}
}
