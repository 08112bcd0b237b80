// terrain/library.go
// Copyright(c) 2025-2026 aloft contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package terrain

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aloft-sim/aloft/math"
	"github.com/aloft-sim/aloft/rand"
	"github.com/aloft-sim/aloft/util"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

var ErrNoSuchMap = errors.New("no such map in library")

// LibraryFilename is the standard filename for compressed map libraries.
const LibraryFilename = "maps.msgpack.zst"

// RawLibrary is the underlying storage format for map libraries: each map
// is individually msgpack-encoded so that loading a library doesn't
// decode maps nobody asked for.
type RawLibrary map[string][]byte

// Library is a set of named maps. Decoded maps are cached so repeated
// scenario runs against the same map don't re-decode it each time.
type Library struct {
	data RawLibrary

	cache *expirable.LRU[string, *Map]
}

func NewLibrary() *Library {
	return &Library{
		data:  make(RawLibrary),
		cache: expirable.NewLRU[string, *Map](16, nil, time.Hour),
	}
}

// Add encodes m into the library under its name, replacing any previous
// map with that name.
func (l *Library) Add(m *Map) error {
	b, err := msgpack.Marshal(m)
	if err != nil {
		return fmt.Errorf("%s: encoding map: %w", m.Name, err)
	}
	l.data[m.Name] = b
	l.cache.Remove(m.Name)
	return nil
}

// MapNames returns the names of the stored maps, sorted.
func (l *Library) MapNames() []string {
	return util.SortedMapKeys(l.data)
}

// Map decodes and returns the named map. The returned map is shared with
// the cache; callers must treat it as immutable.
func (l *Library) Map(name string) (*Map, error) {
	if m, ok := l.cache.Get(name); ok {
		return m, nil
	}

	b, ok := l.data[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNoSuchMap)
	}

	var m Map
	if err := msgpack.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("%s: decoding map: %w", name, err)
	}

	l.cache.Add(name, &m)
	return &m, nil
}

// Load reads a library in the standard format: msgpack-encoded
// RawLibrary, compressed with zstd.
func Load(r io.Reader) (*Library, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var data RawLibrary
	if err := msgpack.NewDecoder(zr).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode map library: %w", err)
	}

	l := NewLibrary()
	l.data = data
	return l, nil
}

// Save writes the library to w in the standard format.
func (l *Library) Save(w io.Writer) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	defer zw.Close()

	if err := msgpack.NewEncoder(zw).Encode(l.data); err != nil {
		return fmt.Errorf("failed to encode map library: %w", err)
	}

	return zw.Close()
}

func LoadFile(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

func (l *Library) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return l.Save(f)
}

///////////////////////////////////////////////////////////////////////////
// Generated maps

// GenerateMap builds a deterministic map from the given seed: a river
// along one axis, rock outcrops, a road through the middle, and gentle
// elevation toward the edges. Identical seeds give identical maps on
// every platform, so generated maps are safe for lockstep play.
func GenerateMap(name string, w, h int, seed uint64) *Map {
	m := NewFlatMap(name, w, h)
	r := rand.MakeSeeded(seed)

	// A meandering river crossing the map vertically.
	x := w/4 + r.Intn(w/2)
	for y := 0; y < h; y++ {
		width := 1 + r.Intn(2)
		for dx := 0; dx < width; dx++ {
			m.SetTile(math.Cell{X: x + dx, Y: y}, TileWater)
		}
		x += r.Intn(3) - 1
		x = math.Clamp(x, 1, w-3)
	}

	// A road along the middle row; crossings pave over the river.
	for x := 0; x < w; x++ {
		m.SetTile(math.Cell{X: x, Y: h / 2}, TileRoad)
	}

	// Rock outcrops with raised terrain around them. A hashed permutation
	// of the cell indices gives distinct cells, so outcrops never stack.
	p := r.Uint32()
	for i := 0; i < w*h/64; i++ {
		ci := rand.PermutationElement(i, w*h, p)
		c := math.Cell{X: ci % w, Y: ci / w}
		if m.Tiles[m.cellIndex(c)] != TileClear {
			continue
		}
		m.SetTile(c, TileRock)
		m.SetElevation(c, math.Dist(128+r.Intn(4)*64))
	}

	// Rough ground scattered around.
	for i := 0; i < w*h/32; i++ {
		c := math.Cell{X: r.Intn(w), Y: r.Intn(h)}
		if m.Tiles[m.cellIndex(c)] == TileClear {
			m.SetTile(c, TileRough)
		}
	}

	return m
}

// DefaultLibrary returns the built-in maps: a featureless flat map for
// tests and two generated ones.
func DefaultLibrary() *Library {
	l := NewLibrary()
	for _, m := range []*Map{
		NewFlatMap("flat", 64, 64),
		GenerateMap("riverside", 64, 64, 0x1bad5eed),
		GenerateMap("badlands", 96, 96, 0x00c0ffee),
	} {
		if err := l.Add(m); err != nil {
			panic(err)
		}
	}
	return l
}
