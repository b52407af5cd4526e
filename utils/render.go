package utils

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/voxelsplace/voxsprite/api"
	"github.com/voxelsplace/voxsprite/render"
	"github.com/voxelsplace/voxsprite/spritepack"
	"github.com/voxelsplace/voxsprite/vox"
)

// RenderRequest describes one render run over a .vox file.
type RenderRequest struct {
	Input     string
	Selection render.Selection
	Options   api.RenderOptions

	// OutDir receives one <label>.png per job. Ignored when PackPath is set.
	OutDir string

	// PackPath, when set, writes a single .vspack instead of PNG files.
	PackPath        string
	PackCompression spritepack.Compression
}

// RunRender renders the selected jobs of a .vox file and writes them out.
// Jobs that fail are logged and returned together; the others are still
// written.
func RunRender(ctx context.Context, logger *slog.Logger, req RenderRequest) error {
	data, err := os.ReadFile(req.Input)
	if err != nil {
		return err
	}
	start := time.Now()
	f, results, err := api.RenderVOX(ctx, data, req.Selection, req.Options)
	if err != nil {
		return fmt.Errorf("%s: %w", req.Input, err)
	}
	logDropped(logger, f)
	logger.Debug("rendered", "input", req.Input, "models", len(f.Models), "jobs", len(results), "duration", time.Since(start))

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			logger.Error("render failed", "job", r.Job.Label().String(), "error", r.Err)
			errs = append(errs, fmt.Errorf("%s: %w", r.Job.Label(), r.Err))
		}
	}

	if req.PackPath != "" {
		if len(errs) > 0 && len(errs) == len(results) {
			return errors.Join(errs...)
		}
		packed, err := api.PackResults(results, req.PackCompression)
		if err != nil {
			return err
		}
		if err := os.WriteFile(req.PackPath, packed, 0o644); err != nil {
			return err
		}
		logger.Info("wrote pack", "path", req.PackPath, "bytes", len(packed))
		return errors.Join(errs...)
	}

	written, err := writePNGs(req.OutDir, results, req.Options.Workers)
	if err != nil {
		errs = append(errs, err)
	}
	logger.Info("wrote sprites", "dir", req.OutDir, "count", written)
	return errors.Join(errs...)
}

// writePNGs writes every successful result as <label>.png, at most workers
// files at a time. It returns how many files were written.
func writePNGs(outDir string, results []render.Result, workers int) (int, error) {
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	errs := make([]error, len(results))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, r := range results {
		if r.Err != nil {
			continue
		}
		g.Go(func() error {
			b, err := api.EncodePNG(r.Canvas)
			if err == nil {
				err = os.WriteFile(filepath.Join(outDir, r.Job.Label().Filename()), b, 0o644)
			}
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", r.Job.Label(), err)
			}
			return nil
		})
	}
	_ = g.Wait()
	written := 0
	for i, r := range results {
		if r.Err == nil && errs[i] == nil {
			written++
		}
	}
	return written, errors.Join(errs...)
}

// LoadFile reads a .vox file and logs how many voxel entries were dropped.
func LoadFile(logger *slog.Logger, path string) (*vox.File, error) {
	f, err := vox.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logDropped(logger, f)
	return f, nil
}

func logDropped(logger *slog.Logger, f *vox.File) {
	for i, m := range f.Models {
		if m.Dropped() > 0 {
			logger.Debug("dropped voxel entries", "model", i, "size", m.Size().String(), "dropped", m.Dropped())
		}
	}
}
