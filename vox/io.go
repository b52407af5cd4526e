package vox

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// MaxFileSize caps the size of a .vox stream after removing a compression
// wrapper.
const MaxFileSize = 64 << 20

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Load reads and decodes a .vox file, optionally zstd or zlib wrapped.
func Load(filename string) (*File, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return LoadBytes(data)
}

// LoadBytes decodes a .vox stream from memory, removing a zstd or zlib
// wrapper first when one is present.
func LoadBytes(data []byte) (*File, error) {
	raw, err := unwrap(data)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}

// Save writes f to filename as an uncompressed .vox file.
func Save(f *File, filename string) error {
	return os.WriteFile(filename, Encode(f), 0o644)
}

func unwrap(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		b, err := zstdDecompress(data)
		if err != nil {
			return nil, fmt.Errorf("zstd wrapper: %w", err)
		}
		return b, nil
	case isZlib(data):
		b, err := zlibDecompress(data)
		if err != nil {
			return nil, fmt.Errorf("zlib wrapper: %w", err)
		}
		return b, nil
	}
	return data, nil
}

// isZlib checks the two byte zlib header: deflate method and a valid check sum.
func isZlib(b []byte) bool {
	if len(b) < 2 {
		return false
	}
	return b[0]&0x0f == 8 && (uint16(b[0])<<8|uint16(b[1]))%31 == 0
}

func zstdDecompress(b []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxFileSize))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	out, err := dec.DecodeAll(b, nil)
	if err != nil {
		return nil, err
	}
	if len(out) > MaxFileSize {
		return nil, fmt.Errorf("inflated size exceeds %d bytes", MaxFileSize)
	}
	return out, nil
}

func zlibDecompress(b []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	out, err := io.ReadAll(io.LimitReader(zr, MaxFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(out) > MaxFileSize {
		return nil, fmt.Errorf("inflated size exceeds %d bytes", MaxFileSize)
	}
	return out, nil
}
