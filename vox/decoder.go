package vox

import (
	"encoding/binary"
	"image/color"
	"io"
)

// RawVoxel is one XYZI entry as stored in the file.
type RawVoxel struct {
	X, Y, Z uint8
	Index   uint8
}

// Record is the typed content of a chunk the decoder understands.
type Record interface {
	chunkID() ChunkID
}

// SizeRecord is the content of a SIZE chunk.
type SizeRecord struct {
	X, Y, Z int32
}

// VoxelsRecord is the content of an XYZI chunk, entries in file order.
type VoxelsRecord struct {
	Voxels []RawVoxel
}

// PaletteRecord is the content of an RGBA chunk. Colors[i] is palette index i+1.
type PaletteRecord struct {
	Colors []color.NRGBA
}

// PackRecord is the content of a PACK chunk. It is informational only.
type PackRecord struct {
	Models int32
}

func (*SizeRecord) chunkID() ChunkID    { return IDSize }
func (*VoxelsRecord) chunkID() ChunkID  { return IDXYZI }
func (*PaletteRecord) chunkID() ChunkID { return IDPalette }
func (*PackRecord) chunkID() ChunkID    { return IDPack }

// Chunk is one record of the stream. Record is nil for chunks the decoder
// does not interpret (MAIN, scene graph, materials, layers, ...). Content
// aliases the decoder input.
type Chunk struct {
	ID      ChunkID
	Offset  int64
	Content []byte
	Record  Record
}

// Decoder walks a .vox byte stream one chunk at a time. The first chunk must
// be MAIN; its children are returned in order. Children of any other chunk
// are skipped. Once Next returns an error, it keeps returning it.
type Decoder struct {
	data    []byte
	pos     int
	end     int
	version int32
	started bool
	err     error
}

// NewDecoder checks the file header and returns a decoder positioned at the
// root chunk.
func NewDecoder(data []byte) (*Decoder, error) {
	if len(data) < headerSize {
		return nil, malformed(0, "input is %d bytes, shorter than the %d byte header", len(data), headerSize)
	}
	if string(data[:4]) != magic {
		return nil, malformed(0, "bad magic %q", data[:4])
	}
	return &Decoder{
		data:    data,
		pos:     headerSize,
		end:     len(data),
		version: int32(binary.LittleEndian.Uint32(data[4:8])),
	}, nil
}

// Version returns the version field of the file header.
func (d *Decoder) Version() int32 { return d.version }

// Next returns the next chunk, or io.EOF after the last child of MAIN.
func (d *Decoder) Next() (Chunk, error) {
	if d.err != nil {
		return Chunk{}, d.err
	}
	c, err := d.next()
	if err != nil {
		d.err = err
	}
	return c, err
}

type chunkHeader struct {
	id       ChunkID
	offset   int
	content  int
	children int
}

func (d *Decoder) next() (Chunk, error) {
	if !d.started {
		d.started = true
		h, err := d.readHeader()
		if err != nil {
			return Chunk{}, err
		}
		if h.id != IDMain {
			return Chunk{}, malformed(int64(h.offset), "root chunk is %s, want MAIN", h.id)
		}
		contentStart := h.offset + chunkHeaderSize
		d.pos = contentStart + h.content
		d.end = d.pos + h.children
		return Chunk{ID: h.id, Offset: int64(h.offset), Content: d.data[contentStart:d.pos]}, nil
	}
	if d.pos >= d.end {
		return Chunk{}, io.EOF
	}
	h, err := d.readHeader()
	if err != nil {
		return Chunk{}, err
	}
	contentStart := h.offset + chunkHeaderSize
	content := d.data[contentStart : contentStart+h.content]
	d.pos = contentStart + h.content + h.children

	rec, err := decodeRecord(h.id, content, int64(h.offset))
	if err != nil {
		return Chunk{}, err
	}
	return Chunk{ID: h.id, Offset: int64(h.offset), Content: content, Record: rec}, nil
}

// readHeader reads the chunk header at d.pos and checks that the declared
// content and children fit in the current region.
func (d *Decoder) readHeader() (chunkHeader, error) {
	off := d.pos
	if d.end-off < chunkHeaderSize {
		return chunkHeader{}, malformed(int64(off), "truncated chunk header: %d bytes left", d.end-off)
	}
	var h chunkHeader
	copy(h.id[:], d.data[off:off+4])
	h.offset = off
	content := int32(binary.LittleEndian.Uint32(d.data[off+4 : off+8]))
	children := int32(binary.LittleEndian.Uint32(d.data[off+8 : off+12]))
	if content < 0 || children < 0 {
		return chunkHeader{}, malformed(int64(off), "chunk %s declares negative length (content %d, children %d)", h.id, content, children)
	}
	remaining := int64(d.end - off - chunkHeaderSize)
	if int64(content)+int64(children) > remaining {
		return chunkHeader{}, malformed(int64(off), "chunk %s declares %d content and %d children bytes, %d remain",
			h.id, content, children, remaining)
	}
	h.content = int(content)
	h.children = int(children)
	return h, nil
}

func decodeRecord(id ChunkID, content []byte, offset int64) (Record, error) {
	le := binary.LittleEndian
	switch id {
	case IDSize:
		if len(content) < 12 {
			return nil, malformed(offset, "SIZE content is %d bytes, want 12", len(content))
		}
		return &SizeRecord{
			X: int32(le.Uint32(content[0:4])),
			Y: int32(le.Uint32(content[4:8])),
			Z: int32(le.Uint32(content[8:12])),
		}, nil
	case IDXYZI:
		if len(content) < 4 {
			return nil, malformed(offset, "XYZI content is %d bytes, missing voxel count", len(content))
		}
		n := le.Uint32(content[0:4])
		if uint64(n) > uint64(len(content)-4)/4 {
			return nil, malformed(offset, "XYZI declares %d voxels, content holds %d", n, (len(content)-4)/4)
		}
		voxels := make([]RawVoxel, n)
		for i := range voxels {
			p := 4 + 4*i
			voxels[i] = RawVoxel{X: content[p], Y: content[p+1], Z: content[p+2], Index: content[p+3]}
		}
		return &VoxelsRecord{Voxels: voxels}, nil
	case IDPalette:
		if len(content)%4 != 0 {
			return nil, malformed(offset, "RGBA content is %d bytes, not a whole number of entries", len(content))
		}
		colors := make([]color.NRGBA, len(content)/4)
		for i := range colors {
			p := 4 * i
			colors[i] = color.NRGBA{R: content[p], G: content[p+1], B: content[p+2], A: content[p+3]}
		}
		return &PaletteRecord{Colors: colors}, nil
	case IDPack:
		if len(content) < 4 {
			return nil, malformed(offset, "PACK content is %d bytes, want 4", len(content))
		}
		return &PackRecord{Models: int32(le.Uint32(content[0:4]))}, nil
	}
	return nil, nil
}
