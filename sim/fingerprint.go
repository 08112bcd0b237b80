// sim/fingerprint.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"encoding/binary"
	"hash/fnv"
)

// Fingerprint hashes the simulation-relevant state of every actor, in
// ID order, into a single value. Two runs of the same scenario must
// produce identical fingerprints at every tick; a divergence is a
// determinism bug, and the first differing tick localizes it.
//
// Only state that feeds back into simulation decisions is hashed.
// Cosmetic state (cached previews, log text) stays out so a rendering
// change cannot masquerade as a desync.
func (w *World) Fingerprint() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	putBool := func(b bool) {
		if b {
			put(1)
		} else {
			put(0)
		}
	}

	put(uint64(w.TickCount))
	put(uint64(len(w.Actors)))

	for _, a := range w.Actors {
		put(uint64(a.ID))
		put(uint64(int64(a.Pos.X)))
		put(uint64(int64(a.Pos.Y)))
		put(uint64(int64(a.Pos.Z)))
		put(uint64(int64(a.Facing)))
		putBool(a.Dead)
		putBool(a.InWorld)
		put(uint64(len(a.activities)))
		if act := a.CurrentActivity(); act != nil {
			put(uint64(act.Kind()) + 1)
		} else {
			put(0)
		}
		put(uint64(len(a.conditions)))

		if ac := a.Aircraft; ac != nil {
			putBool(ac.alt.Airborne)
			putBool(ac.alt.Cruising)
			put(uint64(int64(ac.LandAltitude)))
			putBool(ac.mayYield)
			putBool(ac.ForceLanding)
			if ac.reservedDock != nil {
				put(uint64(ac.reservedDock.ID))
			} else {
				put(0)
			}
		}
		if ca := a.Carryall; ca != nil {
			put(uint64(ca.State))
			if ca.Cargo != nil {
				put(uint64(ca.Cargo.ID))
			} else {
				put(0)
			}
			put(uint64(int64(ca.landingOffset)))
		}
		if cd := a.Carryable; cd != nil {
			putBool(cd.Reserved)
			putBool(cd.Carried)
			if cd.Carrier != nil {
				put(uint64(cd.Carrier.ID))
			} else {
				put(0)
			}
		}
		if d := a.Dock; d != nil {
			if d.occupant != nil {
				put(uint64(d.occupant.ID))
			} else {
				put(0)
			}
		}
	}
	return h.Sum64()
}
