package utils

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/voxelsplace/voxsprite/api"
	"github.com/voxelsplace/voxsprite/spritepack"
)

// CreatePack reads PNG files and writes a .vspack to outputFile. Entries
// are named after the files without their .png extension.
func CreatePack(logger *slog.Logger, inputFiles []string, outputFile string, comp spritepack.Compression) error {
	if len(inputFiles) == 0 {
		return fmt.Errorf("no .png files provided")
	}
	type item struct {
		name string
		data []byte
		err  error
	}
	items := make([]item, len(inputFiles))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range inputFiles {
		g.Go(func() error {
			b, err := os.ReadFile(path)
			if err != nil {
				items[i].err = err
				return nil
			}
			items[i] = item{name: strings.TrimSuffix(filepath.Base(path), ".png"), data: b}
			return nil
		})
	}
	_ = g.Wait()

	files := make(map[string][]byte, len(items))
	for i, it := range items {
		if it.err != nil {
			return it.err
		}
		if _, dup := files[it.name]; dup {
			return fmt.Errorf("duplicate entry name %q (%s)", it.name, inputFiles[i])
		}
		files[it.name] = it.data
	}

	start := time.Now()
	data, err := api.PackPNGs(files, comp)
	if err != nil {
		return err
	}
	logger.Debug("packed", "entries", len(files), "compression", comp.String(), "duration", time.Since(start))
	return os.WriteFile(outputFile, data, 0o644)
}

// UnpackToDir writes every entry of a .vspack into outputDir as <name>.png.
func UnpackToDir(logger *slog.Logger, packFile, outputDir string) error {
	data, err := os.ReadFile(packFile)
	if err != nil {
		return err
	}
	files, err := api.UnpackToPNG(data)
	if err != nil {
		return fmt.Errorf("%s: %w", packFile, err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for name, b := range files {
		g.Go(func() error {
			return os.WriteFile(filepath.Join(outputDir, filepath.Base(name)+".png"), b, 0o644)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("unpacked", "pack", packFile, "dir", outputDir, "count", len(files))
	return nil
}
