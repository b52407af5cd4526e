package mesh

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/voxelsplace/voxsprite/vox"
)

// toGLTF maps a z up model position to the y up glTF frame.
func toGLTF(p [3]float32) [3]float32 { return [3]float32{p[0], p[2], -p[1]} }

// flatNormals gives every triangle vertex the face normal of its triangle.
func flatNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	normals := make([][3]float32, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		v0, v1, v2 := indices[i], indices[i+1], indices[i+2]
		p0, p1, p2 := positions[v0], positions[v1], positions[v2]
		e1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		e2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		n := [3]float32{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		if l := float32(math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2]))); l > 0 {
			n[0], n[1], n[2] = n[0]/l, n[1]/l, n[2]/l
		}
		normals[v0], normals[v1], normals[v2] = n, n, n
	}
	return normals
}

// writePrimitive stores the mesh buffers in doc and returns a primitive
// using material 0. translucent reports whether any face color has alpha.
func writePrimitive(doc *gltf.Document, mesh *Mesh, pal *vox.Palette) (prim *gltf.Primitive, translucent bool) {
	positions := make([][3]float32, len(mesh.Vertices))
	colors := make([][4]float32, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		positions[i] = toGLTF(v.Position)
		c := pal[v.Index]
		colors[i] = [4]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
		if c.A < 0xff {
			translucent = true
		}
	}
	normals := flatNormals(positions, mesh.Indices)

	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	colorAccessor := modeler.WriteColor(doc, colors)
	indicesAccessor := modeler.WriteIndices(doc, mesh.Indices)
	prim = &gltf.Primitive{
		Attributes: map[string]int{
			gltf.POSITION: posAccessor,
			gltf.NORMAL:   normalAccessor,
			gltf.COLOR_0:  colorAccessor,
		},
		Indices:  gltf.Index(indicesAccessor),
		Material: gltf.Index(0),
	}
	return prim, translucent
}

// EncodeFileGLB meshes every model of f and returns a binary glTF with one
// node per model, laid out side by side along x.
func EncodeFileGLB(f *vox.File) ([]byte, error) {
	return encodeGLB(f, nil)
}

// EncodeGLB meshes model i of f only.
func EncodeGLB(f *vox.File, i int) ([]byte, error) {
	if i < 0 || i >= len(f.Models) {
		return nil, fmt.Errorf("model %d out of range (file has %d)", i, len(f.Models))
	}
	return encodeGLB(f, []int{i})
}

func encodeGLB(f *vox.File, models []int) ([]byte, error) {
	if models == nil {
		models = make([]int, len(f.Models))
		for i := range models {
			models[i] = i
		}
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("no models to mesh")
	}
	pal := f.Palette
	if pal == nil {
		pal = vox.DefaultPalette()
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "voxsprite"
	pbr := &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float64{1, 1, 1, 1}, MetallicFactor: gltf.Float(0), RoughnessFactor: gltf.Float(1)}
	material := &gltf.Material{PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque}
	doc.Materials = []*gltf.Material{material}

	var offset float64
	for _, i := range models {
		m := f.Models[i]
		mesh := Greedy(m)
		if len(mesh.Indices) == 0 {
			offset += float64(m.Size().X)
			continue
		}
		prim, translucent := writePrimitive(doc, mesh, pal)
		if translucent {
			material.AlphaMode = gltf.AlphaBlend
		}
		name := fmt.Sprintf("model_%d", i)
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}})
		node := &gltf.Node{Name: name, Mesh: gltf.Index(len(doc.Meshes) - 1)}
		node.Translation = [3]float64{offset, 0, 0}
		doc.Nodes = append(doc.Nodes, node)
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
		offset += float64(m.Size().X)
	}

	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// SaveGLB writes the binary glTF of every model in f to filename.
func SaveGLB(f *vox.File, filename string) error {
	data, err := EncodeFileGLB(f)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}
