package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/voxelsplace/voxsprite/render"
	"github.com/voxelsplace/voxsprite/spritepack"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.RenderShading() != render.DefaultShading() {
		t.Errorf("expected default shading, got %+v", cfg.RenderShading())
	}
	if comp, _ := cfg.PackCompression(); comp != spritepack.CompZstd {
		t.Errorf("expected zstd, got %s", comp)
	}
	if level, _ := cfg.LogLevel(); level != slog.LevelInfo {
		t.Errorf("expected info, got %s", level)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
output: sprites
scale: 4
workers: 2
shading:
  left: 0.5
pack:
  compression: zlib
log:
  level: debug
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Output != "sprites" || cfg.Scale != 4 || cfg.Workers != 2 {
		t.Errorf("unexpected values %+v", cfg)
	}
	want := render.Shading{Top: render.TopFactor, Left: 0.5, Right: render.RightFactor}
	if cfg.RenderShading() != want {
		t.Errorf("shading = %+v, want %+v", cfg.RenderShading(), want)
	}
	if comp, _ := cfg.PackCompression(); comp != spritepack.CompZlib {
		t.Errorf("compression = %s, want zlib", comp)
	}
	if level, _ := cfg.LogLevel(); level != slog.LevelDebug {
		t.Errorf("level = %s, want debug", level)
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("empty file should give defaults, got %+v", cfg)
	}
}

func TestParse_UnknownField(t *testing.T) {
	if _, err := Parse([]byte("outptu: x\n")); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Output = ""
	cfg.Scale = 0
	cfg.Workers = -1
	cfg.Shading.Right = 1.5
	cfg.Pack.Compression = "lz4"
	cfg.Log.Level = "loud"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, field := range []string{"output", "scale", "workers", "shading", "pack.compression", "log.level"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error does not mention %s: %v", field, err)
		}
	}
}

func TestValidate_ScaleLimit(t *testing.T) {
	if _, err := Parse([]byte("scale: 64\n")); err != nil {
		t.Fatalf("scale 64: %v", err)
	}
	_, err := Parse([]byte("scale: 1000\n"))
	if err == nil || !strings.Contains(err.Error(), "scale") {
		t.Fatalf("scale 1000: err = %v", err)
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("VOXSPRITE_TEST_ROOT", "/tmp/sprites")
	cfg, err := Parse([]byte("output: ${VOXSPRITE_TEST_ROOT}/out\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output != "/tmp/sprites/out" {
		t.Errorf("output = %s", cfg.Output)
	}
	cfg, err = Parse([]byte("output: ${VOXSPRITE_TEST_UNSET:-fallback}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output != "fallback" {
		t.Errorf("output = %s, want fallback", cfg.Output)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvVar, "")
	cfg, err := Load()
	if err != nil || *cfg != *Default() {
		t.Fatalf("Load without %s = %+v, %v", EnvVar, cfg, err)
	}

	path := filepath.Join(t.TempDir(), "voxsprite.yaml")
	if err := os.WriteFile(path, []byte("scale: 3\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv(EnvVar, path)
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scale != 3 {
		t.Errorf("scale = %d, want 3", cfg.Scale)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
