// sim/errors.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
)

var (
	ErrDuplicateDefName = errors.New("Duplicate actor definition name")
	ErrNoSuchActor      = errors.New("No actor with that id")
	ErrNoSuchDef        = errors.New("No actor definition with that name")
	ErrScenarioNoSpawns = errors.New("Scenario spawns no actors")
	ErrSpawnOutsideMap  = errors.New("Spawn cell outside the map")
	ErrUnknownOrderKind = errors.New("Unknown order kind")
)
