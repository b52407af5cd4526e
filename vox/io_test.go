package vox_test

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/voxelsplace/voxsprite/vox"
)

func testFile(t *testing.T) *vox.File {
	t.Helper()
	a, err := vox.NewModel(vox.Size{X: 3, Y: 2, Z: 4}, []vox.RawVoxel{
		{X: 0, Y: 0, Z: 0, Index: 1},
		{X: 2, Y: 1, Z: 3, Index: 200},
		{X: 1, Y: 0, Z: 2, Index: 17},
	})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	b, err := vox.NewModel(vox.Size{X: 1, Y: 1, Z: 1}, []vox.RawVoxel{{Index: 255}})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	pal := vox.DefaultPalette()
	pal[17] = color.NRGBA{R: 1, G: 2, B: 3, A: 255}
	return &vox.File{Palette: pal, Models: []*vox.Model{a, b}}
}

func requireSameFile(t *testing.T, got, want *vox.File) {
	t.Helper()
	if len(got.Models) != len(want.Models) {
		t.Fatalf("models = %d, want %d", len(got.Models), len(want.Models))
	}
	for i := range want.Models {
		g, w := got.Models[i], want.Models[i]
		if g.Size() != w.Size() || g.Len() != w.Len() {
			t.Fatalf("model %d: size %v len %d, want %v len %d", i, g.Size(), g.Len(), w.Size(), w.Len())
		}
		for j, v := range w.Voxels() {
			if g.Voxels()[j] != v {
				t.Fatalf("model %d voxel %d = %+v, want %+v", i, j, g.Voxels()[j], v)
			}
		}
	}
	if *got.Palette != *want.Palette {
		t.Fatalf("palette differs")
	}
}

func TestEncode_DecodeAgrees(t *testing.T) {
	want := testFile(t)
	got, err := vox.Decode(vox.Encode(want))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Version != vox.DefaultVersion {
		t.Fatalf("version = %d, want %d", got.Version, vox.DefaultVersion)
	}
	requireSameFile(t, got, want)
}

func TestLoadBytes_CompressedWrappers(t *testing.T) {
	want := testFile(t)
	for _, comp := range []vox.Compression{vox.CompNone, vox.CompZlib, vox.CompZstd} {
		data, err := vox.EncodeCompressed(want, comp)
		if err != nil {
			t.Fatalf("EncodeCompressed(%d): %v", comp, err)
		}
		got, err := vox.LoadBytes(data)
		if err != nil {
			t.Fatalf("LoadBytes(%d): %v", comp, err)
		}
		requireSameFile(t, got, want)
	}
}

func TestLoadBytes_CorruptZstd(t *testing.T) {
	data := []byte{0x28, 0xb5, 0x2f, 0xfd, 0x00, 0x01, 0x02}
	if _, err := vox.LoadBytes(data); err == nil {
		t.Fatalf("expected error for corrupt zstd input")
	}
}

func TestSaveLoad(t *testing.T) {
	want := testFile(t)
	path := filepath.Join(t.TempDir(), "model.vox")
	if err := vox.Save(want, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := vox.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	requireSameFile(t, got, want)
}

func TestDefaultPalette(t *testing.T) {
	p := vox.DefaultPalette()
	cases := map[int]color.NRGBA{
		0:   {},
		1:   {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		2:   {R: 0xff, G: 0xff, B: 0xcc, A: 0xff},
		7:   {R: 0xff, G: 0xcc, B: 0xff, A: 0xff},
		215: {R: 0x00, G: 0x00, B: 0x33, A: 0xff},
		216: {R: 0xee, A: 0xff},
		226: {G: 0xee, A: 0xff},
		236: {B: 0xee, A: 0xff},
		246: {R: 0xee, G: 0xee, B: 0xee, A: 0xff},
		255: {R: 0x11, G: 0x11, B: 0x11, A: 0xff},
	}
	for i, want := range cases {
		if p[i] != want {
			t.Fatalf("default[%d] = %v, want %v", i, p[i], want)
		}
	}

	p[1] = color.NRGBA{}
	if vox.DefaultPalette()[1] == p[1] {
		t.Fatalf("DefaultPalette returned shared state")
	}
}
