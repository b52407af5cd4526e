// Package spritepack bundles rendered canvases into a single .vspack file.
// Identical canvases are stored once.
package spritepack

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/voxelsplace/voxsprite/render"
)

// Compression indicates the compression used for the pack content section.
type Compression uint8

const (
	CompNone Compression = 0
	CompZlib Compression = 1
	CompZstd Compression = 2
)

var compressionNames = map[Compression]string{CompNone: "none", CompZlib: "zlib", CompZstd: "zstd"}

func (c Compression) String() string {
	if s, ok := compressionNames[c]; ok {
		return s
	}
	return fmt.Sprintf("compression(%d)", uint8(c))
}

// ParseCompression resolves "none", "zlib" or "zstd".
func ParseCompression(s string) (Compression, error) {
	for c, name := range compressionNames {
		if s == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown pack compression %q (valid: none, zlib, zstd)", s)
}

const (
	packMagic   = "VOXSPACK"
	packVersion = 1

	// MaxContentSize caps the inflated content section.
	MaxContentSize = 256 << 20
	maxDimension   = 1 << 16
)

var ErrInvalidPack = errors.New("not a valid .vspack")

// Entry is one named canvas.
type Entry struct {
	Name   string
	Canvas render.Canvas
}

// Pack holds entries in insertion order.
type Pack struct {
	Entries []Entry
}

// Add appends a canvas under name.
func (p *Pack) Add(name string, c render.Canvas) {
	p.Entries = append(p.Entries, Entry{Name: name, Canvas: c})
}

// blockIndex stores each distinct canvas once, keyed by xxhash and
// confirmed byte for byte.
type blockIndex struct {
	blocks []render.Canvas
	byHash map[uint64][]int
}

func blockHash(c render.Canvas) uint64 {
	d := xxhash.New()
	var dims [4]byte
	binary.LittleEndian.PutUint16(dims[:2], uint16(c.Width-1))
	binary.LittleEndian.PutUint16(dims[2:], uint16(c.Height-1))
	_, _ = d.Write(dims[:])
	_, _ = d.Write(c.Pix)
	return d.Sum64()
}

func (bi *blockIndex) add(c render.Canvas) int {
	h := blockHash(c)
	for _, idx := range bi.byHash[h] {
		b := bi.blocks[idx]
		if b.Width == c.Width && b.Height == c.Height && bytes.Equal(b.Pix, c.Pix) {
			return idx
		}
	}
	idx := len(bi.blocks)
	bi.blocks = append(bi.blocks, c)
	bi.byHash[h] = append(bi.byHash[h], idx)
	return idx
}

// Blocks returns how many distinct canvases the pack stores.
func (p *Pack) Blocks() int {
	bi := blockIndex{byHash: make(map[uint64][]int)}
	for _, e := range p.Entries {
		bi.add(e.Canvas)
	}
	return len(bi.blocks)
}

// Marshal encodes the pack: magic, version, compression, then the content
// section (block table followed by named entries) compressed with comp.
func (p *Pack) Marshal(comp Compression) ([]byte, error) {
	bi := blockIndex{byHash: make(map[uint64][]int)}
	refs := make([]int, len(p.Entries))
	for i, e := range p.Entries {
		c := e.Canvas
		if c.Width <= 0 || c.Height <= 0 || c.Width > maxDimension || c.Height > maxDimension || len(c.Pix) != 4*c.Width*c.Height {
			return nil, fmt.Errorf("entry %q: bad canvas %dx%d with %d bytes", e.Name, c.Width, c.Height, len(c.Pix))
		}
		refs[i] = bi.add(c)
	}

	var content bytes.Buffer
	_ = binary.Write(&content, binary.LittleEndian, uint32(len(bi.blocks)))
	for _, b := range bi.blocks {
		_ = binary.Write(&content, binary.LittleEndian, uint16(b.Width-1))
		_ = binary.Write(&content, binary.LittleEndian, uint16(b.Height-1))
		_, _ = content.Write(b.Pix)
	}
	_ = binary.Write(&content, binary.LittleEndian, uint32(len(p.Entries)))
	for i, e := range p.Entries {
		nb := []byte(e.Name)
		if len(nb) > 0xFFFF {
			return nil, fmt.Errorf("name too long: %s", e.Name)
		}
		_ = binary.Write(&content, binary.LittleEndian, uint16(len(nb)))
		_, _ = content.Write(nb)
		_ = binary.Write(&content, binary.LittleEndian, uint32(refs[i]))
	}

	var finalContent []byte
	switch comp {
	case CompNone:
		finalContent = content.Bytes()
	case CompZlib:
		var buf bytes.Buffer
		zw, _ := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if _, err := zw.Write(content.Bytes()); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		finalContent = buf.Bytes()
	case CompZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		finalContent = enc.EncodeAll(content.Bytes(), nil)
	default:
		return nil, fmt.Errorf("unsupported compression: %d", comp)
	}

	var out bytes.Buffer
	out.WriteString(packMagic)
	_ = binary.Write(&out, binary.LittleEndian, uint8(packVersion))
	_ = binary.Write(&out, binary.LittleEndian, uint8(comp))
	_, _ = out.Write(finalContent)
	return out.Bytes(), nil
}

func inflate(comp Compression, data []byte) ([]byte, error) {
	switch comp {
	case CompNone:
		return data, nil
	case CompZlib:
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		b, err := io.ReadAll(io.LimitReader(zr, MaxContentSize+1))
		if err != nil {
			return nil, err
		}
		if len(b) > MaxContentSize {
			return nil, fmt.Errorf("content exceeds %d bytes", MaxContentSize)
		}
		return b, nil
	case CompZstd:
		dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxContentSize))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	}
	return nil, fmt.Errorf("%w: unsupported compression %d", ErrInvalidPack, comp)
}

// Unmarshal parses a .vspack and returns the pack and the compression used.
func Unmarshal(data []byte) (*Pack, Compression, error) {
	if len(data) < len(packMagic)+2 || string(data[:len(packMagic)]) != packMagic {
		return nil, 0, ErrInvalidPack
	}
	version := data[len(packMagic)]
	comp := Compression(data[len(packMagic)+1])
	if version != packVersion {
		return nil, 0, fmt.Errorf("%w: unsupported version %d", ErrInvalidPack, version)
	}
	content, err := inflate(comp, data[len(packMagic)+2:])
	if err != nil {
		if errors.Is(err, ErrInvalidPack) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("%w: %s content: %v", ErrInvalidPack, comp, err)
	}

	r := bytes.NewReader(content)
	truncated := func(err error) error { return fmt.Errorf("%w: truncated content: %v", ErrInvalidPack, err) }

	var nBlocks uint32
	if err := binary.Read(r, binary.LittleEndian, &nBlocks); err != nil {
		return nil, 0, truncated(err)
	}
	var blocks []render.Canvas
	for i := uint32(0); i < nBlocks; i++ {
		var w, h uint16
		if err := binary.Read(r, binary.LittleEndian, &w); err != nil {
			return nil, 0, truncated(err)
		}
		if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
			return nil, 0, truncated(err)
		}
		width, height := int(w)+1, int(h)+1
		n := 4 * width * height
		if n > r.Len() {
			return nil, 0, fmt.Errorf("%w: block %d needs %d bytes, %d left", ErrInvalidPack, i, n, r.Len())
		}
		pix := make([]byte, n)
		if _, err := io.ReadFull(r, pix); err != nil {
			return nil, 0, truncated(err)
		}
		blocks = append(blocks, render.Canvas{Width: width, Height: height, Pix: pix})
	}

	var nEntries uint32
	if err := binary.Read(r, binary.LittleEndian, &nEntries); err != nil {
		return nil, 0, truncated(err)
	}
	pack := &Pack{}
	for i := uint32(0); i < nEntries; i++ {
		var nameLen uint16
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, 0, truncated(err)
		}
		nameBytes := make([]byte, nameLen)
		if _, err := io.ReadFull(r, nameBytes); err != nil {
			return nil, 0, truncated(err)
		}
		var ref uint32
		if err := binary.Read(r, binary.LittleEndian, &ref); err != nil {
			return nil, 0, truncated(err)
		}
		if ref >= nBlocks {
			return nil, 0, fmt.Errorf("%w: entry %q references block %d of %d", ErrInvalidPack, nameBytes, ref, nBlocks)
		}
		pack.Entries = append(pack.Entries, Entry{Name: string(nameBytes), Canvas: blocks[ref]})
	}
	return pack, comp, nil
}
