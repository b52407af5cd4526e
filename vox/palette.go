package vox

import "image/color"

// Palette maps a voxel color index to a color. Index 0 means "no voxel" and
// is always transparent.
type Palette [PaletteSize]color.NRGBA

// defaultPalette is the palette MagicaVoxel assumes when a file carries no
// RGBA chunk: a 6x6x6 color cube without black at 1..215, then ten step
// ramps of red, green, blue and gray at 216..255.
var defaultPalette = buildDefaultPalette()

func buildDefaultPalette() Palette {
	var p Palette
	cube := [6]uint8{0xff, 0xcc, 0x99, 0x66, 0x33, 0x00}
	i := 1
	for _, r := range cube {
		for _, g := range cube {
			for _, b := range cube {
				if r == 0 && g == 0 && b == 0 {
					continue
				}
				p[i] = color.NRGBA{R: r, G: g, B: b, A: 0xff}
				i++
			}
		}
	}
	ramp := [10]uint8{0xee, 0xdd, 0xbb, 0xaa, 0x88, 0x77, 0x55, 0x44, 0x22, 0x11}
	for _, v := range ramp {
		p[i] = color.NRGBA{R: v, A: 0xff}
		p[i+10] = color.NRGBA{G: v, A: 0xff}
		p[i+20] = color.NRGBA{B: v, A: 0xff}
		p[i+30] = color.NRGBA{R: v, G: v, B: v, A: 0xff}
		i++
	}
	return p
}

// DefaultPalette returns a copy of the MagicaVoxel default palette.
func DefaultPalette() *Palette {
	p := defaultPalette
	return &p
}

// paletteFromRecord places RGBA entry i at index i+1. The last entry has no
// index and is ignored.
func paletteFromRecord(rec *PaletteRecord) *Palette {
	var p Palette
	for i := 0; i < PaletteSize-1 && i < len(rec.Colors); i++ {
		p[i+1] = rec.Colors[i]
	}
	return &p
}
