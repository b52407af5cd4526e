//go:build !(js && wasm)

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/voxelsplace/voxsprite/api"
	"github.com/voxelsplace/voxsprite/config"
	"github.com/voxelsplace/voxsprite/render"
	"github.com/voxelsplace/voxsprite/spritepack"
	"github.com/voxelsplace/voxsprite/utils"
	"github.com/voxelsplace/voxsprite/vox"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: voxsprite <command> [args]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  render input.vox [-m model] [-v view] [-s side] [-e extra] [-o dir] [--scale n] [--workers n] [--pack out.vspack]")
	fmt.Fprintln(os.Stderr, "                                           (render isometric views and flat sides to PNG)")
	fmt.Fprintln(os.Stderr, "  vox2glb input.vox output.glb [-m model]  (convert .vox -> .glb using greedy mesh)")
	fmt.Fprintln(os.Stderr, "  pack output.vspack input1.png [input2.png ...]  (pack PNG sprites into a .vspack)")
	fmt.Fprintln(os.Stderr, "  unpack input.vspack output_dir           (unpack a .vspack into a directory of PNG files)")
	fmt.Fprintln(os.Stderr, "  gennoise <percentage> <amount> <output_dir> [--size 16] [--seed n]  (generate N random .vox models with fixed fill %)")
	fmt.Fprintln(os.Stderr, "  gennoise <percentageMin> <percentageMax> <amount> <output_dir>      (generate with per-file random fill in [min,max])")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Views: front-right, right-back, back-left, left-front. Sides: top, front, left, right, back, bottom.")
	fmt.Fprintln(os.Stderr, "Extras: <front|left|right|back>-<45|22.5> and <view>-dimetric.")
	fmt.Fprintln(os.Stderr, "Every command accepts --config file.yaml (or VOXSPRITE_CONFIG) and --debug.")
}

func main() {
	if err := run(os.Args[1:]); err != nil && !errors.Is(err, pflag.ErrHelp) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("invalid usage")

func run(args []string) error {
	if len(args) < 1 {
		usage()
		return errUsage
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd, args := args[0], args[1:]
	switch cmd {
	case "render":
		return runRender(ctx, args)
	case "vox2glb":
		return runVOX2GLB(args)
	case "pack":
		return runPack(args)
	case "unpack":
		return runUnpack(args)
	case "gennoise":
		return runGenNoise(args)
	case "help", "-h", "--help":
		usage()
		return nil
	}
	usage()
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

// common holds the flags every subcommand takes.
type common struct {
	configPath string
	debug      bool
}

func newFlagSet(name string, c *common) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVar(&c.configPath, "config", "", "YAML config file (default: $"+config.EnvVar+")")
	fs.BoolVar(&c.debug, "debug", false, "log at debug level")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of voxsprite %s:\n", name)
		fs.PrintDefaults()
	}
	return fs
}

// setup loads the config and builds the stderr logger.
func (c *common) setup() (*config.Config, *slog.Logger, error) {
	var cfg *config.Config
	var err error
	if c.configPath != "" {
		cfg, err = config.LoadFile(c.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}
	level, _ := cfg.LogLevel()
	if c.debug || os.Getenv("VOXSPRITE_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}

func parseArgs(fs *pflag.FlagSet, args []string, want int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	rest := fs.Args()
	if want >= 0 && len(rest) != want {
		fs.Usage()
		return nil, fmt.Errorf("%w: expected %d arguments, got %d", errUsage, want, len(rest))
	}
	return rest, nil
}

func runRender(ctx context.Context, args []string) error {
	var c common
	var models string
	var views, sides, extras []string
	var out, packPath, compression string
	var scale, workers int
	fs := newFlagSet("render", &c)
	fs.StringVarP(&models, "model", "m", "all", "model index or all")
	fs.StringSliceVarP(&views, "view", "v", nil, "isometric views to render, or all")
	fs.StringSliceVarP(&sides, "side", "s", nil, "flat sides to render, or all")
	fs.StringSliceVarP(&extras, "extra", "e", nil, "oblique (front-45, back-22.5, ...) and dimetric (front-right-dimetric, ...) cameras, or all")
	fs.StringVarP(&out, "output", "o", "", "output directory (default from config)")
	fs.IntVar(&scale, "scale", 1, fmt.Sprintf("integer upscale of every sprite, at most %d", render.MaxScale))
	fs.IntVar(&workers, "workers", 0, "parallel renders (0 = GOMAXPROCS)")
	fs.StringVar(&packPath, "pack", "", "write a single .vspack instead of PNG files")
	fs.StringVar(&compression, "compression", "", "pack compression: none, zlib, zstd (default from config)")
	rest, err := parseArgs(fs, args, 1)
	if err != nil {
		return err
	}
	cfg, logger, err := c.setup()
	if err != nil {
		return err
	}

	sel, err := selection(models, kinds{
		views: views, sides: sides, extras: extras,
		viewsSet: fs.Changed("view"), sidesSet: fs.Changed("side"), extrasSet: fs.Changed("extra"),
	})
	if err != nil {
		return err
	}
	req := utils.RenderRequest{
		Input:     rest[0],
		Selection: sel,
		Options: api.RenderOptions{
			Options: render.Options{Shading: cfg.RenderShading(), Workers: cfg.Workers},
			Scale:   cfg.Scale,
		},
		OutDir:   cfg.Output,
		PackPath: packPath,
	}
	if fs.Changed("output") {
		req.OutDir = out
	}
	if fs.Changed("scale") {
		req.Options.Scale = scale
	}
	if fs.Changed("workers") {
		req.Options.Workers = workers
	}
	if err := req.Options.Validate(); err != nil {
		return fmt.Errorf("%w: --scale: %v", errUsage, err)
	}
	if req.PackCompression, err = cfg.PackCompression(); err != nil {
		return err
	}
	if compression != "" {
		if req.PackCompression, err = spritepack.ParseCompression(compression); err != nil {
			return err
		}
	}
	return utils.RunRender(ctx, logger, req)
}

// kinds holds the -v/-s/-e flag values and whether each was given.
type kinds struct {
	views, sides, extras          []string
	viewsSet, sidesSet, extrasSet bool
}

// selection turns the -m/-v/-s/-e flags into a render selection. With none
// of -v, -s or -e every view and side is rendered; otherwise only the kinds
// given are.
func selection(models string, k kinds) (render.Selection, error) {
	var sel render.Selection
	var err error
	if sel.Models, err = render.ParseModels(models); err != nil {
		return sel, err
	}
	if k.viewsSet || k.sidesSet || k.extrasSet {
		sel.Views, sel.Sides = []render.View{}, []render.Side{}
	}
	if k.viewsSet {
		if sel.Views, err = parseList(k.views, render.ParseView); err != nil {
			return sel, err
		}
	}
	if k.sidesSet {
		if sel.Sides, err = parseList(k.sides, render.ParseSide); err != nil {
			return sel, err
		}
	}
	if k.extrasSet {
		if sel.Extras, err = parseList(k.extras, render.ParseExtra); err != nil {
			return sel, err
		}
		if sel.Extras == nil {
			sel.Extras = render.AllExtras()
		}
	}
	return sel, nil
}

// parseList parses names, returning nil (everything) when one is "all".
func parseList[T any](names []string, parse func(string) (T, error)) ([]T, error) {
	out := make([]T, 0, len(names))
	for _, name := range names {
		if name == "all" {
			return nil, nil
		}
		v, err := parse(name)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func runVOX2GLB(args []string) error {
	var c common
	var model string
	fs := newFlagSet("vox2glb", &c)
	fs.StringVarP(&model, "model", "m", "all", "model index or all")
	rest, err := parseArgs(fs, args, 2)
	if err != nil {
		return err
	}
	_, logger, err := c.setup()
	if err != nil {
		return err
	}
	idx := -1
	if model != "all" {
		if idx, err = strconv.Atoi(model); err != nil || idx < 0 {
			return fmt.Errorf("%w: model %q", errUsage, model)
		}
	}
	return utils.RunVOX2GLB(logger, rest[0], rest[1], idx)
}

func runPack(args []string) error {
	var c common
	var compression string
	fs := newFlagSet("pack", &c)
	fs.StringVar(&compression, "compression", "", "none, zlib or zstd (default from config)")
	rest, err := parseArgs(fs, args, -1)
	if err != nil {
		return err
	}
	if len(rest) < 2 {
		fs.Usage()
		return fmt.Errorf("%w: pack needs an output and at least one input", errUsage)
	}
	cfg, logger, err := c.setup()
	if err != nil {
		return err
	}
	if compression == "" {
		compression = cfg.Pack.Compression
	}
	comp, err := spritepack.ParseCompression(compression)
	if err != nil {
		return err
	}
	return utils.CreatePack(logger, rest[1:], rest[0], comp)
}

func runUnpack(args []string) error {
	var c common
	fs := newFlagSet("unpack", &c)
	rest, err := parseArgs(fs, args, 2)
	if err != nil {
		return err
	}
	_, logger, err := c.setup()
	if err != nil {
		return err
	}
	return utils.UnpackToDir(logger, rest[0], rest[1])
}

func runGenNoise(args []string) error {
	var c common
	var size string
	var seed int64
	fs := newFlagSet("gennoise", &c)
	fs.StringVar(&size, "size", utils.DefaultNoiseSize.String(), "model size, N or XxYxZ")
	fs.Int64Var(&seed, "seed", 0, "random seed (0 = from the clock)")
	rest, err := parseArgs(fs, args, -1)
	if err != nil {
		return err
	}
	_, logger, err := c.setup()
	if err != nil {
		return err
	}
	opts := utils.NoiseOptions{Seed: seed}
	if opts.Size, err = vox.ParseSize(size); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	// gennoise <percentage> <amount> <output_dir>
	// gennoise <percentageMin> <percentageMax> <amount> <output_dir>
	if len(rest) != 3 && len(rest) != 4 {
		fs.Usage()
		return fmt.Errorf("%w: gennoise takes 3 or 4 arguments", errUsage)
	}
	fills := rest[:len(rest)-2]
	if opts.MinFill, err = strconv.ParseFloat(fills[0], 64); err != nil {
		return fmt.Errorf("%w: fill %q", errUsage, fills[0])
	}
	opts.MaxFill = opts.MinFill
	if len(fills) == 2 {
		if opts.MaxFill, err = strconv.ParseFloat(fills[1], 64); err != nil {
			return fmt.Errorf("%w: fill %q", errUsage, fills[1])
		}
	}
	if opts.Amount, err = strconv.Atoi(rest[len(rest)-2]); err != nil || opts.Amount < 0 {
		return fmt.Errorf("%w: amount %q", errUsage, rest[len(rest)-2])
	}
	opts.OutDir = rest[len(rest)-1]
	return utils.RunGenerateNoise(logger, opts)
}
