package render

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/nfnt/resize"
)

// Canvas is a cropped render: Width*Height pixels, 4 bytes each,
// non-premultiplied RGBA in row major order.
type Canvas struct {
	Width, Height int
	Pix           []byte
}

// Label names a render for the output stage.
type Label struct {
	Model  int
	Target Target
}

// String returns "<target>_<model>", e.g. "front-right_0".
func (l Label) String() string { return fmt.Sprintf("%s_%d", l.Target.Name(), l.Model) }

// Filename returns the PNG file name for the label.
func (l Label) Filename() string { return l.String() + ".png" }

// assemble crops pix (w x h) to the bounding box of non-transparent pixels.
// Nothing filled gives a 1x1 transparent canvas.
func assemble(w, h int, pix []byte) Canvas {
	minX, minY, maxX, maxY := w, h, -1, -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if pix[4*(x+y*w)+3] == 0 {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < 0 {
		return Canvas{Width: 1, Height: 1, Pix: make([]byte, 4)}
	}
	cw, ch := maxX-minX+1, maxY-minY+1
	out := make([]byte, 4*cw*ch)
	for y := 0; y < ch; y++ {
		src := 4 * (minX + (minY+y)*w)
		copy(out[4*y*cw:4*(y+1)*cw], pix[src:src+4*cw])
	}
	return Canvas{Width: cw, Height: ch, Pix: out}
}

// At returns the pixel at (x, y).
func (c Canvas) At(x, y int) color.NRGBA {
	p := c.Pix[4*(x+y*c.Width):]
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Image wraps the canvas pixels without copying.
func (c Canvas) Image() *image.NRGBA {
	return &image.NRGBA{Pix: c.Pix, Stride: 4 * c.Width, Rect: image.Rect(0, 0, c.Width, c.Height)}
}

// Sum64 hashes the dimensions and pixels. Equal canvases hash equal.
func (c Canvas) Sum64() uint64 {
	d := xxhash.New()
	var dims [8]byte
	binary.LittleEndian.PutUint32(dims[:4], uint32(c.Width))
	binary.LittleEndian.PutUint32(dims[4:], uint32(c.Height))
	_, _ = d.Write(dims[:])
	_, _ = d.Write(c.Pix)
	return d.Sum64()
}

// MaxScale is the largest upscale accepted by the command line and config.
// The widest possible canvas, an isometric view of a 256x256x256 model, is
// 1024 pixels, so scaled canvases stay within 65536 pixels per side.
const MaxScale = 64

// Scale enlarges the canvas n times with nearest neighbor sampling, keeping
// hard pixel edges. n <= 1 returns c unchanged.
func (c Canvas) Scale(n int) Canvas {
	if n <= 1 {
		return c
	}
	img := resize.Resize(uint(c.Width*n), uint(c.Height*n), c.Image(), resize.NearestNeighbor)
	return CanvasFromImage(img)
}

// CanvasFromImage copies any image into a canvas.
func CanvasFromImage(img image.Image) Canvas {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return Canvas{Width: b.Dx(), Height: b.Dy(), Pix: dst.Pix}
}
