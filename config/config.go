// Package config loads voxsprite defaults from a YAML file.
//
// The file is named either by the --config flag ([LoadFile]) or by the
// VOXSPRITE_CONFIG environment variable ([Load]). There is no discovery of
// config files in home or working directories. Command line flags override
// whatever the file sets.
//
// ${HOME} and ${VAR:-default} patterns in the output path are expanded
// after loading.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/voxelsplace/voxsprite/render"
	"github.com/voxelsplace/voxsprite/spritepack"
)

// EnvVar names the environment variable read by Load.
const EnvVar = "VOXSPRITE_CONFIG"

// Config holds render and output defaults.
type Config struct {
	// Output is the directory PNG files are written to.
	// Default: out
	Output string `yaml:"output"`

	// Scale is the integer upscale applied to every canvas. 1 keeps the
	// native one pixel per voxel face.
	Scale int `yaml:"scale"`

	// Workers bounds the render pool. 0 uses GOMAXPROCS.
	Workers int `yaml:"workers"`

	Shading ShadingConfig `yaml:"shading"`
	Pack    PackConfig    `yaml:"pack"`
	Log     LogConfig     `yaml:"log"`
}

// ShadingConfig sets the brightness factor of each visible face, in [0, 1].
type ShadingConfig struct {
	Top   float64 `yaml:"top"`
	Left  float64 `yaml:"left"`
	Right float64 `yaml:"right"`
}

// PackConfig configures .vspack output.
type PackConfig struct {
	// Compression is one of none, zlib, zstd.
	// Default: zstd
	Compression string `yaml:"compression"`
}

// LogConfig configures the command line logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	s := render.DefaultShading()
	return &Config{
		Output:  "out",
		Scale:   1,
		Workers: 0,
		Shading: ShadingConfig{Top: s.Top, Left: s.Left, Right: s.Right},
		Pack:    PackConfig{Compression: "zstd"},
		Log:     LogConfig{Level: "info"},
	}
}

// Load loads the file named by VOXSPRITE_CONFIG, or returns Default when
// the variable is not set.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads and validates the file at path. Fields the file leaves out
// keep their default.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default. Unknown keys are errors.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	cfg.Output = expandVars(cfg.Output)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Output == "" {
		errs = append(errs, fmt.Errorf("output is required"))
	}
	if c.Scale < 1 || c.Scale > render.MaxScale {
		errs = append(errs, fmt.Errorf("scale must be within 1..%d, got %d", render.MaxScale, c.Scale))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if err := c.RenderShading().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("shading: %w", err))
	}
	if _, err := c.PackCompression(); err != nil {
		errs = append(errs, fmt.Errorf("pack.compression: %w", err))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// RenderShading converts the shading section for the renderer.
func (c *Config) RenderShading() render.Shading {
	return render.Shading{Top: c.Shading.Top, Left: c.Shading.Left, Right: c.Shading.Right}
}

// PackCompression parses pack.compression.
func (c *Config) PackCompression() (spritepack.Compression, error) {
	return spritepack.ParseCompression(c.Pack.Compression)
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}
