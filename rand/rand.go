// rand/rand.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package rand wraps a PCG32 generator. Simulation code must draw from the
// World's own instance, seeded identically on every replica.
package rand

import (
	"github.com/MichaelTJones/pcg"
)

type Rand struct {
	r *pcg.PCG32
}

const sequence = 0xda3e39cb94b95bdb

func Make() *Rand {
	return &Rand{r: pcg.NewPCG32()}
}

// MakeSeeded returns a generator with a fully determined state; two
// instances made with the same seed produce identical streams.
func MakeSeeded(seed uint64) *Rand {
	r := Make()
	r.Seed(seed)
	return r
}

func (r *Rand) Seed(s uint64) {
	r.r.Seed(s, sequence)
}

func (r *Rand) Uint32() uint32 {
	return r.r.Random()
}

func (r *Rand) Intn(n int) int {
	return int(r.r.Bounded(uint32(n)))
}

func (r *Rand) Float32() float32 {
	return float32(r.r.Random()) / (1<<32 - 1)
}

// ShuffleSlice permutes s in place with a Fisher-Yates shuffle driven by
// the provided generator.
func ShuffleSlice[T any](s []T, r *Rand) {
	for i := len(s) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// SampleFiltered uniformly randomly samples a slice, returning the index
// of the sampled item, using the provided predicate function to filter the
// items that may be sampled. An index of -1 is returned if the slice is
// empty or the predicate returns false for all items.
func SampleFiltered[T any](r *Rand, slice []T, pred func(T) bool) int {
	idx := -1
	candidates := 0
	for i, v := range slice {
		if pred(v) {
			candidates++
			if r.Intn(candidates) == 0 {
				idx = i
			}
		}
	}
	return idx
}

// PermutationElement returns the ith element of a random permutation of
// the set of integers [0...,n-1]. i/n, p is hash, via Andrew Kensler.
func PermutationElement(i int, n int, p uint32) int {
	ui, l := uint32(i), uint32(n)
	w := l - 1
	w |= w >> 1
	w |= w >> 2
	w |= w >> 4
	w |= w >> 8
	w |= w >> 16
	for {
		ui ^= p
		ui *= 0xe170893d
		ui ^= p >> 16
		ui ^= (ui & w) >> 4
		ui ^= p >> 8
		ui *= 0x0929eb3f
		ui ^= p >> 23
		ui ^= (ui & w) >> 1
		ui *= 1 | p>>27
		ui *= 0x6935fa69
		ui ^= (ui & w) >> 11
		ui *= 0x74dcb303
		ui ^= (ui & w) >> 2
		ui *= 0x9e501cc3
		ui ^= (ui & w) >> 2
		ui *= 0xc860a3df
		ui &= w
		ui ^= ui >> 5
		if ui < l {
			break
		}
	}
	return int((ui + p) % l)
}
