package render

// cell is one pixel of a projection before shading. index 0 means empty.
type cell struct {
	index   uint8
	face    Face
	depth   int
	x, y, z uint8
}

// beats reports whether c should replace cur: nearer wins, and at equal
// depth the lexicographically smaller source coordinate wins, so the result
// does not depend on insertion order.
func (c cell) beats(cur cell) bool {
	if cur.index == 0 {
		return true
	}
	if c.depth != cur.depth {
		return c.depth > cur.depth
	}
	if c.x != cur.x {
		return c.x < cur.x
	}
	if c.y != cur.y {
		return c.y < cur.y
	}
	return c.z < cur.z
}

type depthBuffer struct {
	width, height int
	cells         []cell
}

func newDepthBuffer(width, height int) *depthBuffer {
	return &depthBuffer{width: width, height: height, cells: make([]cell, width*height)}
}

func (b *depthBuffer) add(x, y int, c cell) {
	i := x + y*b.width
	if c.beats(b.cells[i]) {
		b.cells[i] = c
	}
}

func (b *depthBuffer) at(x, y int) cell { return b.cells[x+y*b.width] }
