// Package glb writes meshes as binary glTF (GLB) documents.
package glb

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/voxmill/quarry/pkg/mesh"
)

// Exporter writes GLB files. BaseColor is the RGBA factor of the single
// PBR material applied to the whole mesh.
type Exporter struct {
	BaseColor [4]float32
}

// New returns a GLB exporter with a neutral light-gray material.
func New() *Exporter {
	return &Exporter{BaseColor: [4]float32{0.78, 0.78, 0.78, 1}}
}

// Format returns "glb".
func (e *Exporter) Format() string {
	return "glb"
}

// Export writes m to path as a single-mesh GLB document. Vertices are
// not shared between triangles; every triangle carries its face normal
// on all three vertices, so the surface renders flat-shaded. Empty
// meshes are refused.
func (e *Exporter) Export(m *mesh.Mesh, path string) error {
	if m == nil || m.IsEmpty() {
		return fmt.Errorf("glb: refusing to write empty mesh to %s", path)
	}

	n := m.TriangleCount()
	positions := make([][3]float32, 0, n*3)
	normals := make([][3]float32, 0, n*3)
	indices := make([]uint32, 0, n*3)

	for i, tri := range m.Triangles {
		fn := tri.Normal()
		flat := [3]float32{float32(fn.X), float32(fn.Y), float32(fn.Z)}
		for j := 0; j < 3; j++ {
			positions = append(positions, [3]float32{
				float32(tri[j].X), float32(tri[j].Y), float32(tri[j].Z),
			})
			normals = append(normals, flat)
			indices = append(indices, uint32(i*3+j))
		}
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "quarry"

	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	indicesAccessor := modeler.WriteIndices(doc, indices)

	prim := &gltf.Primitive{
		Attributes: map[string]uint32{
			gltf.POSITION: uint32(posAccessor),
			gltf.NORMAL:   uint32(normalAccessor),
		},
		Indices:  gltf.Index(uint32(indicesAccessor)),
		Material: gltf.Index(0),
	}

	doc.Materials = []*gltf.Material{{
		Name: "carved",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &e.BaseColor,
			MetallicFactor:  gltf.Float(0),
			RoughnessFactor: gltf.Float(1),
		},
		AlphaMode: gltf.AlphaOpaque,
	}}
	doc.Meshes = []*gltf.Mesh{{Name: "carved", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(0))

	return gltf.SaveBinary(doc, path)
}
