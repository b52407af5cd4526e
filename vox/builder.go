package vox

import (
	"errors"
	"io"
)

// File is a decoded .vox file. Models are numbered by order of appearance
// and all share Palette.
type File struct {
	Version int32
	Palette *Palette
	Models  []*Model
}

// Decode parses a complete .vox stream.
func Decode(data []byte) (*File, error) {
	d, err := NewDecoder(data)
	if err != nil {
		return nil, err
	}
	return Build(d)
}

// Build consumes d and assembles its models. Each SIZE chunk must be followed
// by an XYZI chunk before the next SIZE; other chunks may sit between them.
// Without an RGBA chunk the default palette is used. Any error discards the
// whole file.
func Build(d *Decoder) (*File, error) {
	f := &File{Version: d.Version()}
	var (
		pending    *SizeRecord
		pendingOff int64
	)
	for {
		c, err := d.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch rec := c.Record.(type) {
		case *SizeRecord:
			if pending != nil {
				return nil, structural(c.Offset, "SIZE chunk follows SIZE at offset %d with no XYZI between", pendingOff)
			}
			size := Size{X: int(rec.X), Y: int(rec.Y), Z: int(rec.Z)}
			if err := size.Validate(); err != nil {
				return nil, structural(c.Offset, "%v", err)
			}
			pending, pendingOff = rec, c.Offset
		case *VoxelsRecord:
			if pending == nil {
				return nil, structural(c.Offset, "XYZI chunk without a preceding SIZE")
			}
			size := Size{X: int(pending.X), Y: int(pending.Y), Z: int(pending.Z)}
			f.Models = append(f.Models, buildModel(size, rec.Voxels))
			pending = nil
		case *PaletteRecord:
			if len(rec.Colors) != PaletteSize {
				return nil, structural(c.Offset, "RGBA chunk has %d entries, want %d", len(rec.Colors), PaletteSize)
			}
			f.Palette = paletteFromRecord(rec)
		}
	}
	if pending != nil {
		return nil, structural(pendingOff, "SIZE chunk without a following XYZI")
	}
	if f.Palette == nil {
		f.Palette = DefaultPalette()
	}
	return f, nil
}
