// sim/scenario_test.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/aloft-sim/aloft/math"
	"github.com/aloft-sim/aloft/terrain"
	"github.com/aloft-sim/aloft/util"
)

func TestScenarioValidation(t *testing.T) {
	for _, tc := range []struct {
		name string
		sc   Scenario
		want string
	}{
		{"no spawns", Scenario{Name: "empty"}, "spawns no actors"},
		{"unknown order kind", Scenario{
			Name:   "bad",
			Spawns: []Spawn{{Def: "transport", Cell: math.Cell{X: 5, Y: 5}}},
			Orders: []Order{{Kind: OrderKind("dance"), Actor: 1}},
		}, "unknown kind"},
		{"order actor out of range", Scenario{
			Name:   "bad",
			Spawns: []Spawn{{Def: "transport", Cell: math.Cell{X: 5, Y: 5}}},
			Orders: []Order{{Kind: OrderMove, Actor: 7}},
		}, "out of range"},
		{"condition actor out of range", Scenario{
			Name:       "bad",
			Spawns:     []Spawn{{Def: "transport", Cell: math.Cell{X: 5, Y: 5}}},
			Conditions: []ScriptedCondition{{Actor: 0, Name: "emp"}},
		}, "out of range"},
		{"empty condition name", Scenario{
			Name:       "bad",
			Spawns:     []Spawn{{Def: "transport", Cell: math.Cell{X: 5, Y: 5}}},
			Conditions: []ScriptedCondition{{Actor: 1}},
		}, "empty condition"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var e util.ErrorLogger
			tc.sc.PostDeserialize(&e)
			if !e.HaveErrors() {
				t.Fatalf("validation accepted the scenario")
			}
			if s := e.String(); !strings.Contains(s, tc.want) {
				t.Errorf("errors lack %q:\n%s", tc.want, s)
			}
		})
	}
}

func TestScenarioDefaults(t *testing.T) {
	sc := Scenario{Name: "d", Spawns: []Spawn{{Def: "transport", Cell: math.Cell{X: 5, Y: 5}}}}
	var e util.ErrorLogger
	sc.PostDeserialize(&e)
	if e.HaveErrors() {
		t.Fatalf("unexpected errors:\n%s", e.String())
	}
	if sc.Ticks != 500 {
		t.Errorf("ticks default %d", sc.Ticks)
	}
	if sc.Width != 64 || sc.Height != 64 {
		t.Errorf("map size default %dx%d", sc.Width, sc.Height)
	}
}

func TestScenarioFromJSON(t *testing.T) {
	blob := `{
		"name": "fromjson",
		"seed": 7,
		"width": 24, "height": 24,
		"ticks": 50,
		"spawns": [
			{"def": "transport", "cell": {"X": 4, "Y": 4}, "altitude": 1280},
			{"def": "harvester", "cell": {"X": 10, "Y": 4}}
		],
		"orders": [
			{"tick": 2, "kind": "pickup", "actor": 1, "target": 2}
		]
	}`
	var sc Scenario
	if err := json.Unmarshal([]byte(blob), &sc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var e util.ErrorLogger
	sc.PostDeserialize(&e)
	if e.HaveErrors() {
		t.Fatalf("validation:\n%s", e.String())
	}

	res, err := RunScenario(&sc, terrain.DefaultLibrary(), 0, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Ticks != 50 || len(res.PerTick) != 50 {
		t.Errorf("ran %d ticks, recorded %d", res.Ticks, len(res.PerTick))
	}
	if len(res.Violations) > 0 {
		t.Errorf("invariant violations: %v", res.Violations)
	}
	if res.Survivors != 2 {
		t.Errorf("survivors %d", res.Survivors)
	}
}

func TestScenarioBuildRejectsBadDefs(t *testing.T) {
	sc := &Scenario{
		Name:   "baddefs",
		Width:  16,
		Height: 16,
		Spawns: []Spawn{{Def: "transport", Cell: math.Cell{X: 5, Y: 5}}},
		Defs:   DefTable{"transport": {Aircraft: &AircraftDef{Speed: -3}}},
	}
	if _, err := sc.Build(nil, nil); err == nil {
		t.Errorf("build accepted an invalid definition override")
	}
}

func TestScenarioBuildUnknownMap(t *testing.T) {
	sc := &Scenario{
		Name:   "nomap",
		Map:    "atlantis",
		Spawns: []Spawn{{Def: "transport", Cell: math.Cell{X: 5, Y: 5}}},
	}
	if _, err := sc.Build(terrain.DefaultLibrary(), nil); err == nil {
		t.Errorf("build accepted a map the library does not have")
	}
}

func TestDefaultScenarioValidates(t *testing.T) {
	var e util.ErrorLogger
	DefaultScenario().PostDeserialize(&e)
	if e.HaveErrors() {
		t.Fatalf("built-in scenario does not validate:\n%s", e.String())
	}
}
