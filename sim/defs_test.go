// sim/defs_test.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"strings"
	"testing"

	"github.com/aloft-sim/aloft/util"
)

func TestDefaultDefsValidate(t *testing.T) {
	var e util.ErrorLogger
	defs := DefaultDefs()
	defs.PostDeserialize(&e)
	if e.HaveErrors() {
		t.Fatalf("built-in definitions do not validate:\n%s", e.String())
	}
	for _, name := range []string{"transport", "gunship", "harvester", "infantry", "pad", "crate"} {
		if defs[name] == nil {
			t.Errorf("missing built-in definition %q", name)
		}
	}
}

func TestAircraftDefDefaults(t *testing.T) {
	def := &ActorDef{
		Aircraft: &AircraftDef{Speed: 50, Repulsable: true, DockActors: []string{"pad"}},
		Carryall: &CarryallDef{},
		Dock:     &DockDef{},
	}
	var e util.ErrorLogger
	def.PostDeserialize("test", &e)
	if e.HaveErrors() {
		t.Fatalf("unexpected errors:\n%s", e.String())
	}

	a := def.Aircraft
	if a.TurnSpeed != 16 {
		t.Errorf("turn speed default %d", a.TurnSpeed)
	}
	if a.CruiseAltitude != 1280 {
		t.Errorf("cruise altitude default %d", a.CruiseAltitude)
	}
	if a.MinAirborneAltitude != 1 {
		t.Errorf("min airborne default %d", a.MinAirborneAltitude)
	}
	if a.ClimbRate != 43 {
		t.Errorf("climb rate default %d", a.ClimbRate)
	}
	if a.IdealSeparation != 1706 {
		t.Errorf("ideal separation default %d", a.IdealSeparation)
	}
	if a.WaitDistanceFromResupplyBase != 3072 {
		t.Errorf("wait distance default %d", a.WaitDistanceFromResupplyBase)
	}
	if def.Carryall.CarriedSpeedModifier != 100 {
		t.Errorf("carried speed modifier default %d", def.Carryall.CarriedSpeedModifier)
	}
	if def.Dock.ServiceTicks != 25 {
		t.Errorf("service ticks default %d", def.Dock.ServiceTicks)
	}
	if def.Name != "test" {
		t.Errorf("name not filled from the table key: %q", def.Name)
	}
}

func TestDefValidationErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		def  *ActorDef
	}{
		{"zero speed", &ActorDef{Aircraft: &AircraftDef{}}},
		{"negative land altitude", &ActorDef{Aircraft: &AircraftDef{Speed: 10, LandAltitude: -1}}},
		{"cruise below airborne threshold",
			&ActorDef{Aircraft: &AircraftDef{Speed: 10, CruiseAltitude: 5, MinAirborneAltitude: 10}}},
		{"carryall without aircraft", &ActorDef{Carryall: &CarryallDef{}}},
		{"negative load delay",
			&ActorDef{Aircraft: &AircraftDef{Speed: 10}, Carryall: &CarryallDef{BeforeLoadDelay: -1}}},
		{"crushable without classes", &ActorDef{Crushable: &CrushableDef{}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var e util.ErrorLogger
			tc.def.PostDeserialize("bogus", &e)
			if !e.HaveErrors() {
				t.Errorf("validation accepted the definition")
			} else if !strings.Contains(e.String(), "bogus") {
				t.Errorf("error does not name the actor:\n%s", e.String())
			}
		})
	}
}

func TestEffectiveRepulsionSpeed(t *testing.T) {
	d := &AircraftDef{Speed: 100}
	if got := d.EffectiveRepulsionSpeed(89); got != 89 {
		t.Errorf("unset repulsion speed: got %d, want the movement speed", got)
	}
	d.RepulsionSpeed = 40
	if got := d.EffectiveRepulsionSpeed(89); got != 40 {
		t.Errorf("explicit repulsion speed: got %d", got)
	}
}

func TestCanDockAt(t *testing.T) {
	d := &AircraftDef{DockActors: []string{"pad"}}
	pad := &Actor{Name: "pad", Dock: &Dock{}}
	depot := &Actor{Name: "depot", Dock: &Dock{}}
	crate := &Actor{Name: "pad"} // right name, no dock trait

	if !d.CanDockAt(pad) {
		t.Errorf("listed dock type refused")
	}
	if d.CanDockAt(depot) {
		t.Errorf("unlisted dock type accepted")
	}
	if d.CanDockAt(crate) {
		t.Errorf("dockless actor accepted")
	}
}
