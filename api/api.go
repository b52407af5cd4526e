package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"sort"

	"github.com/voxelsplace/voxsprite/mesh"
	"github.com/voxelsplace/voxsprite/render"
	"github.com/voxelsplace/voxsprite/spritepack"
	"github.com/voxelsplace/voxsprite/vox"
)

// RenderOptions extends the renderer options with the output upscale.
type RenderOptions struct {
	render.Options
	Scale int
}

// Validate rejects a scale above render.MaxScale. Zero and one both mean
// native size.
func (o RenderOptions) Validate() error {
	if o.Scale < 0 || o.Scale > render.MaxScale {
		return fmt.Errorf("scale %d outside 1..%d", o.Scale, render.MaxScale)
	}
	return nil
}

// RenderVOX decodes a .vox blob and renders every job sel selects. Each
// result carries its own error; the returned error is only for input that
// could not be decoded.
func RenderVOX(ctx context.Context, voxBytes []byte, sel render.Selection, opts RenderOptions) (*vox.File, []render.Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	f, err := vox.LoadBytes(voxBytes)
	if err != nil {
		return nil, nil, err
	}
	results := render.RenderAll(ctx, f, render.Plan(sel, len(f.Models)), opts.Options)
	for i := range results {
		if results[i].Err == nil {
			results[i].Canvas = results[i].Canvas.Scale(opts.Scale)
		}
	}
	return f, results, nil
}

// EncodePNG encodes a canvas as a PNG image.
func EncodePNG(c render.Canvas) ([]byte, error) {
	var out bytes.Buffer
	if err := png.Encode(&out, c.Image()); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// DecodePNG reads a PNG image into a canvas.
func DecodePNG(data []byte) (render.Canvas, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return render.Canvas{}, err
	}
	return render.CanvasFromImage(img), nil
}

// RenderVOXToPNG renders a .vox blob and returns file name -> PNG bytes.
// Failed jobs are left out and reported together in the error.
func RenderVOXToPNG(ctx context.Context, voxBytes []byte, sel render.Selection, opts RenderOptions) (map[string][]byte, error) {
	_, results, err := RenderVOX(ctx, voxBytes, sel, opts)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(results))
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Job.Label(), r.Err))
			continue
		}
		b, err := EncodePNG(r.Canvas)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Job.Label(), err))
			continue
		}
		out[r.Job.Label().Filename()] = b
	}
	return out, errors.Join(errs...)
}

// VOXToGLB takes .vox bytes and returns .glb bytes using the greedy mesher.
// A negative model meshes every model of the file.
func VOXToGLB(voxBytes []byte, model int) ([]byte, error) {
	f, err := vox.LoadBytes(voxBytes)
	if err != nil {
		return nil, err
	}
	if model < 0 {
		return mesh.EncodeFileGLB(f)
	}
	return mesh.EncodeGLB(f, model)
}

// PackResults builds a .vspack from the successful render results, named
// by label.
func PackResults(results []render.Result, comp spritepack.Compression) ([]byte, error) {
	p := &spritepack.Pack{}
	for _, r := range results {
		if r.Err == nil {
			p.Add(r.Job.Label().String(), r.Canvas)
		}
	}
	if len(p.Entries) == 0 {
		return nil, fmt.Errorf("no canvases to pack")
	}
	return p.Marshal(comp)
}

// PackPNGs builds a .vspack from PNG blobs keyed by name. Entries are
// stored in name order.
func PackPNGs(files map[string][]byte, comp spritepack.Compression) ([]byte, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files")
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	p := &spritepack.Pack{}
	for _, name := range names {
		c, err := DecodePNG(files[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		p.Add(name, c)
	}
	return p.Marshal(comp)
}

// UnpackToPNG returns a map of entry name -> PNG bytes from a .vspack blob.
func UnpackToPNG(packBytes []byte) (map[string][]byte, error) {
	p, _, err := spritepack.Unmarshal(packBytes)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(p.Entries))
	for _, e := range p.Entries {
		b, err := EncodePNG(e.Canvas)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name, err)
		}
		out[e.Name] = b
	}
	return out, nil
}
