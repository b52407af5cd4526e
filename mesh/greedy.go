// Package mesh turns voxel models into triangle meshes and glTF binaries.
package mesh

import "github.com/voxelsplace/voxsprite/vox"

// Vertex positions are in model units, z up. Index is the palette index of
// the face the vertex belongs to.
type Vertex struct {
	Position [3]float32
	Index    uint8
}

// Mesh is an indexed triangle list, two triangles per quad.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// Quads returns the number of merged faces.
func (m *Mesh) Quads() int { return len(m.Indices) / 6 }

type dirSpec struct {
	normal [3]int
	u, v   int
}

var directions = []dirSpec{
	{[3]int{1, 0, 0}, 1, 2},
	{[3]int{-1, 0, 0}, 1, 2},
	{[3]int{0, 1, 0}, 0, 2},
	{[3]int{0, -1, 0}, 0, 2},
	{[3]int{0, 0, 1}, 0, 1},
	{[3]int{0, 0, -1}, 0, 1},
}

func cross(a, b [3]int) [3]int {
	return [3]int{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
}

// addQuad emits one merged face: h cells along the u axis, w along v,
// wound counter clockwise when seen from outside.
func addQuad(mesh *Mesh, dir dirSpec, perp int, start [3]int, w, h int, index uint8) {
	var base, du, dv [3]float32
	base[perp] = float32(start[0])
	if dir.normal[perp] > 0 {
		base[perp]++
	}
	base[dir.u] = float32(start[1])
	base[dir.v] = float32(start[2])
	du[dir.u] = float32(h)
	dv[dir.v] = float32(w)

	add := func(a, b [3]float32) [3]float32 { return [3]float32{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
	verts := [4]Vertex{
		{Position: base, Index: index},
		{Position: add(base, du), Index: index},
		{Position: add(add(base, du), dv), Index: index},
		{Position: add(base, dv), Index: index},
	}

	var eu, ev [3]int
	eu[dir.u], ev[dir.v] = 1, 1
	c := cross(eu, ev)
	if c[0]*dir.normal[0]+c[1]*dir.normal[1]+c[2]*dir.normal[2] < 0 {
		verts[1], verts[3] = verts[3], verts[1]
	}

	baseIdx := uint32(len(mesh.Vertices))
	mesh.Vertices = append(mesh.Vertices, verts[:]...)
	mesh.Indices = append(mesh.Indices, baseIdx, baseIdx+1, baseIdx+2, baseIdx, baseIdx+2, baseIdx+3)
}

// Greedy builds a mesh of the exposed faces of m, merging coplanar
// neighbours of the same palette index into rectangles.
func Greedy(m *vox.Model) *Mesh {
	mesh := &Mesh{}
	size := m.Size()
	dims := [3]int{size.X, size.Y, size.Z}
	at := func(p [3]int) uint8 { return m.At(p[0], p[1], p[2]) }

	for _, dir := range directions {
		perp := 3 - dir.u - dir.v
		nu, nv := dims[dir.u], dims[dir.v]
		mask := make([]uint8, nu*nv)
		visited := make([]bool, nu*nv)

		for p := 0; p < dims[perp]; p++ {
			clear(mask)
			clear(visited)
			for u := 0; u < nu; u++ {
				for v := 0; v < nv; v++ {
					var pos [3]int
					pos[dir.u], pos[dir.v], pos[perp] = u, v, p
					index := at(pos)
					if index == 0 {
						continue
					}
					adj := pos
					adj[perp] += dir.normal[perp]
					if at(adj) == 0 {
						mask[u*nv+v] = index
					}
				}
			}

			for u := 0; u < nu; u++ {
				for v := 0; v < nv; {
					index := mask[u*nv+v]
					if index == 0 || visited[u*nv+v] {
						v++
						continue
					}
					width := 1
					for w := v + 1; w < nv && mask[u*nv+w] == index && !visited[u*nv+w]; w++ {
						width++
					}
					height := 1
				grow:
					for h := u + 1; h < nu; h++ {
						for w := v; w < v+width; w++ {
							if mask[h*nv+w] != index || visited[h*nv+w] {
								break grow
							}
						}
						height++
					}
					for hu := u; hu < u+height; hu++ {
						for hv := v; hv < v+width; hv++ {
							visited[hu*nv+hv] = true
						}
					}
					addQuad(mesh, dir, perp, [3]int{p, u, v}, width, height, index)
					v += width
				}
			}
		}
	}
	return mesh
}
