package vox

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Size is the bounding box of a model. Z is the up axis.
type Size struct {
	X, Y, Z int
}

func (s Size) String() string { return fmt.Sprintf("%dx%dx%d", s.X, s.Y, s.Z) }

// ParseSize reads "N" for an N cube or "XxYxZ".
func ParseSize(str string) (Size, error) {
	parts := strings.Split(str, "x")
	if len(parts) == 1 {
		parts = []string{parts[0], parts[0], parts[0]}
	}
	if len(parts) != 3 {
		return Size{}, fmt.Errorf("size %q: want N or XxYxZ", str)
	}
	var dims [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Size{}, fmt.Errorf("size %q: %w", str, err)
		}
		dims[i] = n
	}
	s := Size{X: dims[0], Y: dims[1], Z: dims[2]}
	if err := s.Validate(); err != nil {
		return Size{}, err
	}
	return s, nil
}

func (s Size) contains(x, y, z int) bool {
	return x >= 0 && x < s.X && y >= 0 && y < s.Y && z >= 0 && z < s.Z
}

// Validate checks that every side is within 1..MaxDimension.
func (s Size) Validate() error {
	for _, d := range [3]int{s.X, s.Y, s.Z} {
		if d < 1 || d > MaxDimension {
			return fmt.Errorf("model size %s outside 1..%d", s, MaxDimension)
		}
	}
	return nil
}

// Voxel is a filled cell. Index is a palette index in 1..255.
type Voxel struct {
	X, Y, Z uint8
	Index   uint8
}

func (v Voxel) key() uint32 { return packKey(int(v.X), int(v.Y), int(v.Z)) }

// packKey orders like (x, y, z) lexicographic comparison.
func packKey(x, y, z int) uint32 { return uint32(x)<<16 | uint32(y)<<8 | uint32(z) }

// Model is an immutable sparse voxel grid. Voxels are kept in a flat slice
// sorted by (X, Y, Z) with a hash index from packed coordinate to slot.
type Model struct {
	size    Size
	voxels  []Voxel
	index   map[uint32]int32
	dropped int
}

// NewModel builds a model from raw entries. Later entries at the same
// coordinate replace earlier ones. Entries with index 0 or outside size are
// dropped and counted in Dropped.
func NewModel(size Size, entries []RawVoxel) (*Model, error) {
	if err := size.Validate(); err != nil {
		return nil, &DecodeError{Kind: ErrStructural, Offset: -1, Msg: err.Error()}
	}
	return buildModel(size, entries), nil
}

func buildModel(size Size, entries []RawVoxel) *Model {
	m := &Model{size: size, index: make(map[uint32]int32, len(entries))}
	for _, e := range entries {
		if e.Index == 0 || !size.contains(int(e.X), int(e.Y), int(e.Z)) {
			m.dropped++
			continue
		}
		v := Voxel{X: e.X, Y: e.Y, Z: e.Z, Index: e.Index}
		if slot, ok := m.index[v.key()]; ok {
			m.voxels[slot] = v
			m.dropped++
			continue
		}
		m.index[v.key()] = int32(len(m.voxels))
		m.voxels = append(m.voxels, v)
	}
	sort.Slice(m.voxels, func(i, j int) bool { return m.voxels[i].key() < m.voxels[j].key() })
	for i, v := range m.voxels {
		m.index[v.key()] = int32(i)
	}
	return m
}

// Size returns the model bounding box.
func (m *Model) Size() Size { return m.size }

// Len returns the number of filled voxels.
func (m *Model) Len() int { return len(m.voxels) }

// Voxels returns the filled voxels in (X, Y, Z) order. The slice is shared
// and must not be modified.
func (m *Model) Voxels() []Voxel { return m.voxels }

// Dropped counts raw entries that did not become voxels: zero color index,
// out of bounds, or overwritten by a later entry at the same coordinate.
func (m *Model) Dropped() int { return m.dropped }

// At returns the palette index at (x, y, z), or 0 when empty or out of bounds.
func (m *Model) At(x, y, z int) uint8 {
	if !m.size.contains(x, y, z) {
		return 0
	}
	slot, ok := m.index[packKey(x, y, z)]
	if !ok {
		return 0
	}
	return m.voxels[slot].Index
}

// Filled reports whether (x, y, z) holds a voxel.
func (m *Model) Filled(x, y, z int) bool { return m.At(x, y, z) != 0 }
