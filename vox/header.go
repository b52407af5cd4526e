package vox

// File layout: "VOX " magic, int32 version, then a MAIN chunk whose children
// hold SIZE/XYZI pairs, an optional RGBA palette and scene-graph chunks.
// All integers are little endian.

const (
	magic = "VOX "

	// DefaultVersion is written by Encode. Decoding accepts any version.
	DefaultVersion int32 = 150

	headerSize      = 8
	chunkHeaderSize = 12

	// MaxDimension bounds each side of a model.
	MaxDimension = 256

	// PaletteSize is the number of entries in an RGBA chunk and in a Palette.
	PaletteSize = 256
)

// ChunkID is the four byte tag at the start of every chunk.
type ChunkID [4]byte

func (id ChunkID) String() string { return string(id[:]) }

var (
	IDMain    = ChunkID{'M', 'A', 'I', 'N'}
	IDPack    = ChunkID{'P', 'A', 'C', 'K'}
	IDSize    = ChunkID{'S', 'I', 'Z', 'E'}
	IDXYZI    = ChunkID{'X', 'Y', 'Z', 'I'}
	IDPalette = ChunkID{'R', 'G', 'B', 'A'}
)
