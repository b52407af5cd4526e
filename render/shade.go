package render

import (
	"fmt"
	"math"

	"github.com/voxelsplace/voxsprite/vox"
)

// Brightness factors of the default shading. The left face is the darkest.
const (
	TopFactor   = 1.0
	LeftFactor  = 0.65
	RightFactor = 0.8
)

// Shading multiplies the RGB channels of a face by its factor. The zero
// value means DefaultShading.
type Shading struct {
	Top, Left, Right float64
}

func DefaultShading() Shading {
	return Shading{Top: TopFactor, Left: LeftFactor, Right: RightFactor}
}

// Validate checks that every factor is within [0, 1].
func (s Shading) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"top", s.Top}, {"left", s.Left}, {"right", s.Right}} {
		if math.IsNaN(f.v) || f.v < 0 || f.v > 1 {
			return fmt.Errorf("shading factor %s = %v outside [0, 1]", f.name, f.v)
		}
	}
	return nil
}

func (s Shading) orDefault() Shading {
	if s == (Shading{}) {
		return DefaultShading()
	}
	return s
}

func (s Shading) factor(f Face) float64 {
	switch f {
	case FaceLeft:
		return s.Left
	case FaceRight:
		return s.Right
	}
	return s.Top
}

func shadeChannel(c uint8, factor float64) uint8 {
	v := math.Round(float64(c) * factor)
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return uint8(v)
}

// rasterize turns a depth buffer into row major RGBA bytes. Filled cells are
// opaque, empty cells fully transparent.
func rasterize(buf *depthBuffer, pal *vox.Palette, s Shading) []byte {
	pix := make([]byte, 4*len(buf.cells))
	for i, c := range buf.cells {
		if c.index == 0 {
			continue
		}
		base := pal[c.index]
		f := s.factor(c.face)
		p := pix[4*i : 4*i+4]
		p[0] = shadeChannel(base.R, f)
		p[1] = shadeChannel(base.G, f)
		p[2] = shadeChannel(base.B, f)
		p[3] = 0xff
	}
	return pix
}
