package vox

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compression selects an optional wrapper around an encoded .vox stream.
type Compression uint8

const (
	CompNone Compression = 0
	CompZlib Compression = 1
	CompZstd Compression = 2
)

// AppendChunk appends one chunk with the given content and children bytes.
func AppendChunk(dst []byte, id ChunkID, content, children []byte) []byte {
	dst = append(dst, id[:]...)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(content)))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(children)))
	dst = append(dst, content...)
	return append(dst, children...)
}

// AppendHeader appends the magic and version that start every file.
func AppendHeader(dst []byte, version int32) []byte {
	dst = append(dst, magic...)
	return binary.LittleEndian.AppendUint32(dst, uint32(version))
}

// Encode writes f as a .vox stream: MAIN holding a PACK chunk when there is
// more than one model, a SIZE/XYZI pair per model, then the palette.
func Encode(f *File) []byte {
	var children []byte
	if len(f.Models) > 1 {
		children = AppendChunk(children, IDPack, binary.LittleEndian.AppendUint32(nil, uint32(len(f.Models))), nil)
	}
	for _, m := range f.Models {
		s := m.Size()
		size := make([]byte, 0, 12)
		size = binary.LittleEndian.AppendUint32(size, uint32(s.X))
		size = binary.LittleEndian.AppendUint32(size, uint32(s.Y))
		size = binary.LittleEndian.AppendUint32(size, uint32(s.Z))
		children = AppendChunk(children, IDSize, size, nil)

		xyzi := make([]byte, 0, 4+4*m.Len())
		xyzi = binary.LittleEndian.AppendUint32(xyzi, uint32(m.Len()))
		for _, v := range m.Voxels() {
			xyzi = append(xyzi, v.X, v.Y, v.Z, v.Index)
		}
		children = AppendChunk(children, IDXYZI, xyzi, nil)
	}
	pal := f.Palette
	if pal == nil {
		pal = DefaultPalette()
	}
	rgba := make([]byte, 0, 4*PaletteSize)
	for i := 1; i <= PaletteSize; i++ {
		c := pal[i%PaletteSize]
		if i == PaletteSize {
			c.A = 0
		}
		rgba = append(rgba, c.R, c.G, c.B, c.A)
	}
	children = AppendChunk(children, IDPalette, rgba, nil)

	version := f.Version
	if version == 0 {
		version = DefaultVersion
	}
	out := AppendHeader(make([]byte, 0, headerSize+chunkHeaderSize+len(children)), version)
	return AppendChunk(out, IDMain, nil, children)
}

// EncodeCompressed encodes f and wraps the result with the given codec.
// LoadBytes detects and removes the wrapper.
func EncodeCompressed(f *File, comp Compression) ([]byte, error) {
	raw := Encode(f)
	switch comp {
	case CompNone:
		return raw, nil
	case CompZlib:
		var buf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(raw); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(raw, nil), nil
	default:
		return nil, fmt.Errorf("unsupported compression: %d", comp)
	}
}
