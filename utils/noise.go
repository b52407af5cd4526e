package utils

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/voxelsplace/voxsprite/vox"
)

// DefaultNoiseSize is the model size gennoise uses unless told otherwise.
var DefaultNoiseSize = vox.Size{X: 16, Y: 16, Z: 16}

// NoiseOptions describes a batch of random single-model .vox files. Each
// file fills a share of Size drawn uniformly from [MinFill, MaxFill]
// percent.
type NoiseOptions struct {
	Size             vox.Size
	MinFill, MaxFill float64
	Amount           int
	OutDir           string

	// Seed makes the batch reproducible. 0 seeds from the clock.
	Seed int64
}

// noiseModel fills fill percent of the cells of size, each with a random
// palette index.
func noiseModel(size vox.Size, fill float64, r *rand.Rand) (*vox.Model, error) {
	cells := size.X * size.Y * size.Z
	fill = min(max(fill, 0), 100)
	n := min(int(float64(cells)*fill/100+0.5), cells)

	voxels := make([]vox.RawVoxel, 0, n)
	for _, cell := range r.Perm(cells)[:n] {
		voxels = append(voxels, vox.RawVoxel{
			X:     uint8(cell % size.X),
			Y:     uint8(cell / size.X % size.Y),
			Z:     uint8(cell / (size.X * size.Y)),
			Index: uint8(1 + r.Intn(vox.PaletteSize-1)),
		})
	}
	return vox.NewModel(size, voxels)
}

// RunGenerateNoise writes opts.Amount files named 0.vox, 1.vox, ... into
// opts.OutDir.
func RunGenerateNoise(logger *slog.Logger, opts NoiseOptions) error {
	if opts.Size == (vox.Size{}) {
		opts.Size = DefaultNoiseSize
	}
	if err := opts.Size.Validate(); err != nil {
		return err
	}
	if opts.MaxFill < opts.MinFill {
		opts.MinFill, opts.MaxFill = opts.MaxFill, opts.MinFill
	}
	if opts.OutDir == "" {
		opts.OutDir = "."
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return err
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	seeds := rand.New(rand.NewSource(seed))
	logger.Debug("generating noise", "size", opts.Size.String(), "amount", opts.Amount, "seed", seed)

	for i := 0; i < opts.Amount; i++ {
		r := rand.New(rand.NewSource(seeds.Int63()))
		fill := opts.MinFill + r.Float64()*(opts.MaxFill-opts.MinFill)
		m, err := noiseModel(opts.Size, fill, r)
		if err != nil {
			return err
		}
		path := filepath.Join(opts.OutDir, fmt.Sprintf("%d.vox", i))
		if err := vox.Save(&vox.File{Models: []*vox.Model{m}}, path); err != nil {
			return fmt.Errorf("saving %s: %w", path, err)
		}
		logger.Debug("generated noise model", "path", path, "fill", fill, "voxels", m.Len())
	}
	return nil
}
