package utils

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/voxelsplace/voxsprite/render"
	"github.com/voxelsplace/voxsprite/spritepack"
	"github.com/voxelsplace/voxsprite/vox"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func writeTestVOX(t *testing.T, dir string) string {
	t.Helper()
	m, err := vox.NewModel(vox.Size{X: 2, Y: 2, Z: 1}, []vox.RawVoxel{
		{X: 0, Y: 0, Index: 1},
		{X: 1, Y: 1, Index: 2},
		{X: 5, Y: 5, Index: 3}, // out of bounds, dropped
	})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "in.vox")
	if err := vox.Save(&vox.File{Models: []*vox.Model{m}}, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return path
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestRunRender_PNGs(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	req := RenderRequest{
		Input:     writeTestVOX(t, dir),
		Selection: render.Selection{Views: []render.View{render.ViewFrontRight}, Sides: []render.Side{render.SideTop, render.SideFront}},
		OutDir:    out,
	}
	if err := RunRender(context.Background(), discard(), req); err != nil {
		t.Fatalf("RunRender: %v", err)
	}
	got := listDir(t, out)
	want := []string{"front-right_0.png", "front_0.png", "top_0.png"}
	if len(got) != len(want) {
		t.Fatalf("files = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("files = %v, want %v", got, want)
		}
	}
}

func TestRunRender_BadModel(t *testing.T) {
	dir := t.TempDir()
	req := RenderRequest{
		Input:     writeTestVOX(t, dir),
		Selection: render.Selection{Models: []int{0, 3}, Views: []render.View{}},
		OutDir:    filepath.Join(dir, "out"),
	}
	err := RunRender(context.Background(), discard(), req)
	if !errors.Is(err, render.ErrSelection) {
		t.Fatalf("err = %v, want ErrSelection", err)
	}
	if n := len(listDir(t, req.OutDir)); n != 6 {
		t.Fatalf("wrote %d files, want the 6 sides of model 0", n)
	}
}

func TestWritePNGs_Bounded(t *testing.T) {
	out := t.TempDir()
	// A directory squatting on top_0.png makes that one write fail.
	if err := os.Mkdir(filepath.Join(out, "top_0.png"), 0o755); err != nil {
		t.Fatal(err)
	}
	canvas := render.Canvas{Width: 1, Height: 1, Pix: []byte{1, 2, 3, 255}}
	results := []render.Result{
		{Job: render.Job{Model: 0, Target: render.SideFront}, Canvas: canvas},
		{Job: render.Job{Model: 0, Target: render.SideTop}, Canvas: canvas},
		{Job: render.Job{Model: 1, Target: render.SideTop}, Err: render.ErrSelection},
		{Job: render.Job{Model: 0, Target: render.SideBack}, Canvas: canvas},
	}
	written, err := writePNGs(out, results, 1)
	if err == nil {
		t.Fatal("expected the top_0.png write to fail")
	}
	if written != 2 {
		t.Fatalf("written = %d, want 2", written)
	}
	got := listDir(t, out)
	want := []string{"back_0.png", "front_0.png", "top_0.png"}
	if len(got) != len(want) {
		t.Fatalf("files = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("files = %v, want %v", got, want)
		}
	}
}

func TestRunRender_MalformedInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.vox")
	if err := os.WriteFile(path, []byte("VOX \x96\x00\x00\x00MAIN\xff\x00\x00\x00\x00\x00\x00\x00"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := RunRender(context.Background(), discard(), RenderRequest{Input: path, OutDir: t.TempDir()})
	if !errors.Is(err, vox.ErrMalformedStream) {
		t.Fatalf("err = %v, want ErrMalformedStream", err)
	}
}

func TestRunRender_PackThenUnpack(t *testing.T) {
	dir := t.TempDir()
	packPath := filepath.Join(dir, "sprites.vspack")
	req := RenderRequest{
		Input:           writeTestVOX(t, dir),
		PackPath:        packPath,
		PackCompression: spritepack.CompZstd,
	}
	if err := RunRender(context.Background(), discard(), req); err != nil {
		t.Fatalf("RunRender: %v", err)
	}
	out := filepath.Join(dir, "unpacked")
	if err := UnpackToDir(discard(), packPath, out); err != nil {
		t.Fatalf("UnpackToDir: %v", err)
	}
	files := listDir(t, out)
	if len(files) != 10 {
		t.Fatalf("unpacked %d files, want 10: %v", len(files), files)
	}

	var inputs []string
	for _, name := range files {
		inputs = append(inputs, filepath.Join(out, name))
	}
	repacked := filepath.Join(dir, "again.vspack")
	if err := CreatePack(discard(), inputs, repacked, spritepack.CompZlib); err != nil {
		t.Fatalf("CreatePack: %v", err)
	}
	data, err := os.ReadFile(repacked)
	if err != nil {
		t.Fatal(err)
	}
	p, comp, err := spritepack.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if comp != spritepack.CompZlib || len(p.Entries) != 10 || p.Entries[0].Name != "back-left_0" {
		t.Fatalf("repacked %d entries with %s, first %q", len(p.Entries), comp, p.Entries[0].Name)
	}
}

func TestCreatePack_NoInputs(t *testing.T) {
	if err := CreatePack(discard(), nil, filepath.Join(t.TempDir(), "x.vspack"), spritepack.CompNone); err == nil {
		t.Fatal("expected error for no inputs")
	}
}

func TestRunVOX2GLB(t *testing.T) {
	dir := t.TempDir()
	in := writeTestVOX(t, dir)
	out := filepath.Join(dir, "out.glb")
	if err := RunVOX2GLB(discard(), in, out, -1); err != nil {
		t.Fatalf("RunVOX2GLB: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("glTF")) {
		t.Fatal("output is not a binary glTF")
	}
	if err := RunVOX2GLB(discard(), in, out, 1); err == nil {
		t.Fatal("expected error for missing model 1")
	}
}

func TestNoiseModel(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	size := vox.Size{X: 8, Y: 4, Z: 2}
	for _, tc := range []struct {
		fill float64
		want int
	}{{0, 0}, {50, 32}, {100, 64}, {150, 64}, {-3, 0}} {
		m, err := noiseModel(size, tc.fill, r)
		if err != nil {
			t.Fatalf("noiseModel(%v): %v", tc.fill, err)
		}
		if m.Len() != tc.want || m.Dropped() != 0 || m.Size() != size {
			t.Fatalf("noiseModel(%v): %d voxels (%d dropped) in %s, want %d in %s", tc.fill, m.Len(), m.Dropped(), m.Size(), tc.want, size)
		}
	}
}

func TestRunGenerateNoise(t *testing.T) {
	out := t.TempDir()
	opts := NoiseOptions{MinFill: 20, MaxFill: 10, Amount: 3, OutDir: out, Seed: 7}
	if err := RunGenerateNoise(discard(), opts); err != nil {
		t.Fatalf("RunGenerateNoise: %v", err)
	}
	files := listDir(t, out)
	if len(files) != 3 || files[0] != "0.vox" {
		t.Fatalf("files = %v", files)
	}
	for _, name := range files {
		f, err := vox.Load(filepath.Join(out, name))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		m := f.Models[0]
		if m.Size() != DefaultNoiseSize {
			t.Fatalf("%s: size %s, want %s", name, m.Size(), DefaultNoiseSize)
		}
		if n := m.Len(); n < 409 || n > 819 {
			t.Fatalf("%s: %d voxels outside 10%%..20%% fill", name, n)
		}
	}

	// The same seed reproduces the batch byte for byte.
	again := t.TempDir()
	opts.OutDir = again
	if err := RunGenerateNoise(discard(), opts); err != nil {
		t.Fatal(err)
	}
	for _, name := range files {
		a, _ := os.ReadFile(filepath.Join(out, name))
		b, _ := os.ReadFile(filepath.Join(again, name))
		if !bytes.Equal(a, b) {
			t.Fatalf("%s differs between runs with the same seed", name)
		}
	}

	if err := RunGenerateNoise(discard(), NoiseOptions{Size: vox.Size{X: 300, Y: 1, Z: 1}, Amount: 1, OutDir: out}); err == nil {
		t.Fatal("expected error for a size above the limit")
	}
}
