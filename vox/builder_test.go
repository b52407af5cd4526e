package vox_test

import (
	"errors"
	"image/color"
	"testing"

	"github.com/voxelsplace/voxsprite/vox"
)

func paletteChunk(n int, fill color.NRGBA) []byte {
	content := make([]byte, 0, 4*n)
	for i := 0; i < n; i++ {
		content = append(content, fill.R, fill.G, fill.B, fill.A)
	}
	return vox.AppendChunk(nil, vox.IDPalette, content, nil)
}

func TestBuild_OneModelPerPair(t *testing.T) {
	data := stream(
		vox.AppendChunk(nil, vox.IDPack, u32(3), nil),
		sizeChunk(2, 2, 2), xyziChunk(vox.RawVoxel{X: 0, Y: 0, Z: 0, Index: 1}, vox.RawVoxel{X: 1, Y: 1, Z: 1, Index: 2}),
		sizeChunk(1, 1, 1), xyziChunk(vox.RawVoxel{Index: 0}),
		sizeChunk(4, 3, 2), xyziChunk(vox.RawVoxel{X: 3, Y: 2, Z: 1, Index: 9}),
	)
	f, err := vox.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(f.Models) != 3 {
		t.Fatalf("models = %d, want 3", len(f.Models))
	}
	wantLen := []int{2, 0, 1}
	wantSize := []vox.Size{{2, 2, 2}, {1, 1, 1}, {4, 3, 2}}
	for i, m := range f.Models {
		if m.Len() != wantLen[i] {
			t.Fatalf("model %d len = %d, want %d", i, m.Len(), wantLen[i])
		}
		if m.Size() != wantSize[i] {
			t.Fatalf("model %d size = %v, want %v", i, m.Size(), wantSize[i])
		}
	}
	if got := f.Models[2].At(3, 2, 1); got != 9 {
		t.Fatalf("model 2 at (3,2,1) = %d, want 9", got)
	}
}

func TestBuild_DuplicateCoordinateLastWins(t *testing.T) {
	data := stream(
		sizeChunk(2, 2, 2),
		xyziChunk(
			vox.RawVoxel{X: 1, Y: 0, Z: 1, Index: 5},
			vox.RawVoxel{X: 0, Y: 0, Z: 0, Index: 2},
			vox.RawVoxel{X: 1, Y: 0, Z: 1, Index: 7},
		),
	)
	f, err := vox.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	m := f.Models[0]
	if m.Len() != 2 {
		t.Fatalf("len = %d, want 2", m.Len())
	}
	if got := m.At(1, 0, 1); got != 7 {
		t.Fatalf("at (1,0,1) = %d, want 7 (last write)", got)
	}
	if m.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", m.Dropped())
	}
}

func TestBuild_ZeroIndexAndOutOfBoundsDropped(t *testing.T) {
	data := stream(
		sizeChunk(2, 2, 2),
		xyziChunk(
			vox.RawVoxel{X: 0, Y: 0, Z: 0, Index: 0},
			vox.RawVoxel{X: 5, Y: 0, Z: 0, Index: 3},
			vox.RawVoxel{X: 1, Y: 1, Z: 1, Index: 4},
		),
	)
	f, err := vox.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	m := f.Models[0]
	if m.Len() != 1 || m.Dropped() != 2 {
		t.Fatalf("len = %d dropped = %d, want 1 and 2", m.Len(), m.Dropped())
	}
	if m.Filled(0, 0, 0) {
		t.Fatalf("zero index entry became a voxel")
	}
}

func TestBuild_VoxelsSortedLexicographically(t *testing.T) {
	data := stream(
		sizeChunk(3, 3, 3),
		xyziChunk(
			vox.RawVoxel{X: 2, Y: 0, Z: 0, Index: 1},
			vox.RawVoxel{X: 0, Y: 2, Z: 1, Index: 1},
			vox.RawVoxel{X: 0, Y: 2, Z: 0, Index: 1},
			vox.RawVoxel{X: 1, Y: 0, Z: 2, Index: 1},
		),
	)
	f, err := vox.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := [][3]uint8{{0, 2, 0}, {0, 2, 1}, {1, 0, 2}, {2, 0, 0}}
	got := f.Models[0].Voxels()
	for i, v := range got {
		if [3]uint8{v.X, v.Y, v.Z} != want[i] {
			t.Fatalf("voxel %d = (%d,%d,%d), want %v", i, v.X, v.Y, v.Z, want[i])
		}
	}
}

func TestBuild_StructuralErrors(t *testing.T) {
	cases := map[string][]byte{
		"xyzi without size":  stream(xyziChunk(vox.RawVoxel{Index: 1})),
		"size without xyzi":  stream(sizeChunk(1, 1, 1)),
		"two sizes":          stream(sizeChunk(1, 1, 1), sizeChunk(1, 1, 1), xyziChunk()),
		"zero dimension":     stream(sizeChunk(0, 1, 1), xyziChunk()),
		"oversized model":    stream(sizeChunk(257, 1, 1), xyziChunk()),
		"short palette":      stream(paletteChunk(255, color.NRGBA{A: 255})),
		"long palette":       stream(paletteChunk(257, color.NRGBA{A: 255})),
		"second xyzi orphan": stream(sizeChunk(1, 1, 1), xyziChunk(), xyziChunk()),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			f, err := vox.Decode(data)
			requireKind(t, err, vox.ErrStructural)
			if errors.Is(err, vox.ErrMalformedStream) {
				t.Fatalf("structural error also matched ErrMalformedStream: %v", err)
			}
			if f != nil {
				t.Fatalf("expected no file, got one")
			}
		})
	}
}

func TestBuild_PaletteChunk(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	data := stream(sizeChunk(1, 1, 1), xyziChunk(vox.RawVoxel{Index: 1}), paletteChunk(256, red))
	f, err := vox.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f.Palette[1] != red || f.Palette[255] != red {
		t.Fatalf("palette entries not mapped to 1..255: %v %v", f.Palette[1], f.Palette[255])
	}
	if f.Palette[0] != (color.NRGBA{}) {
		t.Fatalf("index 0 = %v, want transparent", f.Palette[0])
	}
}

func TestBuild_DefaultPaletteWhenAbsent(t *testing.T) {
	f, err := vox.Decode(stream(sizeChunk(1, 1, 1), xyziChunk(vox.RawVoxel{Index: 1})))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if *f.Palette != *vox.DefaultPalette() {
		t.Fatalf("expected default palette")
	}
}

func TestBuild_EmptyFile(t *testing.T) {
	f, err := vox.Decode(stream())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(f.Models) != 0 {
		t.Fatalf("models = %d, want 0", len(f.Models))
	}
}

func TestNewModel_RejectsBadSize(t *testing.T) {
	_, err := vox.NewModel(vox.Size{X: 1, Y: 0, Z: 1}, nil)
	requireKind(t, err, vox.ErrStructural)
}

func TestParseSize(t *testing.T) {
	for in, want := range map[string]vox.Size{
		"16":      {X: 16, Y: 16, Z: 16},
		"8x4x32":  {X: 8, Y: 4, Z: 32},
		"256":     {X: 256, Y: 256, Z: 256},
		"1x1x256": {X: 1, Y: 1, Z: 256},
	} {
		got, err := vox.ParseSize(in)
		if err != nil || got != want {
			t.Fatalf("ParseSize(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "0", "257", "8x8", "axbxc", "4x4x4x4", "-2"} {
		if _, err := vox.ParseSize(bad); err == nil {
			t.Fatalf("ParseSize(%q): expected error", bad)
		}
	}
}
