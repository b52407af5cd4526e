package render

import (
	"fmt"
	"strings"

	"github.com/voxelsplace/voxsprite/vox"
)

// project resolves which voxel is visible at every pixel of t.
func project(m *vox.Model, t Target) (*depthBuffer, error) {
	switch t := t.(type) {
	case Side:
		if t >= numSides {
			return nil, &SelectionError{What: "side", Value: t.Name(), Valid: strings.Join(sideNames[:], ", ")}
		}
		return projectSide(m, t), nil
	case View:
		if t >= numViews {
			return nil, &SelectionError{What: "view", Value: t.Name(), Valid: strings.Join(viewNames[:], ", ")}
		}
		return projectView(m, t), nil
	case Dimetric:
		if View(t) >= numViews {
			return nil, &SelectionError{What: "dimetric view", Value: t.Name(), Valid: strings.Join(viewNames[:], ", ")}
		}
		return projectIso(m, corners[t], tallSprite), nil
	case Oblique:
		if !t.valid() {
			return nil, &SelectionError{What: "oblique", Value: t.Name(), Valid: "front, left, right or back at 45 or 22.5"}
		}
		return projectOblique(m, t), nil
	}
	return nil, &SelectionError{What: "target", Value: fmt.Sprintf("%T", t), Valid: "View or Side"}
}

// sideLayout returns the grid size for s and the placement of a voxel: its
// in-plane (u, v) and how near it is to the viewer (larger is nearer).
// Z is up; front looks along +y, right along -x.
func sideLayout(s Side, size vox.Size) (w, h int, place func(x, y, z int) (u, v, near int)) {
	X, Y, Z := size.X, size.Y, size.Z
	switch s {
	case SideTop:
		return X, Y, func(x, y, z int) (int, int, int) { return x, Y - 1 - y, z }
	case SideBottom:
		return X, Y, func(x, y, z int) (int, int, int) { return x, y, Z - 1 - z }
	case SideFront:
		return X, Z, func(x, y, z int) (int, int, int) { return x, Z - 1 - z, Y - 1 - y }
	case SideBack:
		return X, Z, func(x, y, z int) (int, int, int) { return X - 1 - x, Z - 1 - z, y }
	case SideLeft:
		return Y, Z, func(x, y, z int) (int, int, int) { return Y - 1 - y, Z - 1 - z, X - 1 - x }
	default:
		return Y, Z, func(x, y, z int) (int, int, int) { return y, Z - 1 - z, x }
	}
}

// Side projections look at the face head on, so every cell is lit as a top face.
func projectSide(m *vox.Model, s Side) *depthBuffer {
	w, h, place := sideLayout(s, m.Size())
	buf := newDepthBuffer(w, h)
	for _, v := range m.Voxels() {
		u, row, near := place(int(v.X), int(v.Y), int(v.Z))
		buf.add(u, row, cell{index: v.Index, face: FaceTop, depth: near, x: v.X, y: v.Y, z: v.Z})
	}
	return buf
}

// corner gives, in model (x, y) steps, the outward directions of the two
// vertical faces a view shows: a on the screen left, b on the screen right.
// The viewer sits at the (+a, +b, +z) corner.
type corner struct {
	a, b [2]int
}

var corners = [numViews]corner{
	ViewFrontRight: {a: [2]int{0, -1}, b: [2]int{1, 0}},
	ViewRightBack:  {a: [2]int{1, 0}, b: [2]int{0, 1}},
	ViewBackLeft:   {a: [2]int{0, 1}, b: [2]int{-1, 0}},
	ViewLeftFront:  {a: [2]int{-1, 0}, b: [2]int{0, -1}},
}

func axisCoord(dir [2]int, x, y int, size vox.Size) int {
	switch {
	case dir[0] > 0:
		return x
	case dir[0] < 0:
		return size.X - 1 - x
	case dir[1] > 0:
		return y
	default:
		return size.Y - 1 - y
	}
}

func axisLen(dir [2]int, size vox.Size) int {
	if dir[0] != 0 {
		return size.X
	}
	return size.Y
}

// isoSprite is how a corner camera draws one voxel: rows of faces, 4
// pixels wide, top first. One step along a or b moves the sprite 2 across
// and 1 down; one step up moves it rise rows up.
type isoSprite struct {
	faces [][4]Face
	rise  int
}

const spriteWidth = 4

var (
	cubeSprite = isoSprite{
		faces: [][4]Face{
			{FaceTop, FaceTop, FaceTop, FaceTop},
			{FaceLeft, FaceLeft, FaceRight, FaceRight},
		},
		rise: 1,
	}
	tallSprite = isoSprite{
		faces: [][4]Face{
			{FaceTop, FaceTop, FaceTop, FaceTop},
			{FaceLeft, FaceLeft, FaceRight, FaceRight},
			{FaceLeft, FaceLeft, FaceRight, FaceRight},
			{FaceLeft, FaceLeft, FaceRight, FaceRight},
		},
		rise: 3,
	}
)

func projectView(m *vox.Model, v View) *depthBuffer {
	return projectIso(m, corners[v], cubeSprite)
}

func projectIso(m *vox.Model, c corner, sp isoSprite) *depthBuffer {
	size := m.Size()
	A, B := axisLen(c.a, size), axisLen(c.b, size)
	span := A + B - 2
	buf := newDepthBuffer(2*span+spriteWidth, span+sp.rise*(size.Z-1)+len(sp.faces))

	for _, vx := range m.Voxels() {
		x, y, z := int(vx.X), int(vx.Y), int(vx.Z)
		a, b := axisCoord(c.a, x, y, size), axisCoord(c.b, x, y, size)
		sx := 2*(b-a) + 2*(A-1)
		sy := a + b + sp.rise*(size.Z-1-z)
		exposed := [3]bool{
			FaceTop:   !m.Filled(x, y, z+1),
			FaceLeft:  !m.Filled(x+c.a[0], y+c.a[1], z),
			FaceRight: !m.Filled(x+c.b[0], y+c.b[1], z),
		}
		for py, row := range sp.faces {
			for px, face := range row {
				buf.add(sx+px, sy+py, cell{
					index: vx.Index,
					face:  classifyFace(face, exposed),
					depth: a + b + z,
					x:     vx.X, y: vx.Y, z: vx.Z,
				})
			}
		}
	}
	return buf
}

// Oblique sprites: width pixels per in-plane step, a top row, then the side
// face. The side face is shaded as FaceLeft.
var obliqueSprites = [numPitches]struct{ width, sideRows int }{
	Pitch45: {width: 1, sideRows: 1},
	Pitch22: {width: 2, sideRows: 2},
}

// facing is the (x, y) step from a vertical side toward its viewer.
var facing = map[Side][2]int{
	SideFront: {0, -1},
	SideBack:  {0, 1},
	SideLeft:  {-1, 0},
	SideRight: {1, 0},
}

// projectOblique places voxels like projectSide, then pushes each one down
// by its nearness so nearer rows overlap the tops of the rows behind them.
// One step up moves a sprite sideRows rows up.
func projectOblique(m *vox.Model, o Oblique) *depthBuffer {
	size := m.Size()
	sp := obliqueSprites[o.Pitch]
	w, _, place := sideLayout(o.Side, size)
	depthLen := size.Y
	if o.Side == SideLeft || o.Side == SideRight {
		depthLen = size.X
	}
	rows := 1 + sp.sideRows
	buf := newDepthBuffer(w*sp.width, sp.sideRows*(size.Z-1)+depthLen-1+rows)
	step := facing[o.Side]

	for _, vx := range m.Voxels() {
		x, y, z := int(vx.X), int(vx.Y), int(vx.Z)
		u, _, near := place(x, y, z)
		sx := u * sp.width
		sy := sp.sideRows*(size.Z-1-z) + near
		exposed := [3]bool{
			FaceTop:  !m.Filled(x, y, z+1),
			FaceLeft: !m.Filled(x+step[0], y+step[1], z),
		}
		for py := 0; py < rows; py++ {
			face := FaceLeft
			if py == 0 {
				face = FaceTop
			}
			for px := 0; px < sp.width; px++ {
				buf.add(sx+px, sy+py, cell{
					index: vx.Index,
					face:  classifyFace(face, exposed),
					depth: near + z,
					x:     vx.X, y: vx.Y, z: vx.Z,
				})
			}
		}
	}
	return buf
}

// classifyFace keeps the sprite face when it is exposed. Otherwise the only
// exposed face is used, and top when zero or several are exposed.
func classifyFace(nominal Face, exposed [3]bool) Face {
	if exposed[nominal] {
		return nominal
	}
	n := 0
	only := FaceTop
	for f, ok := range exposed {
		if ok {
			n++
			only = Face(f)
		}
	}
	if n == 1 {
		return only
	}
	return FaceTop
}
