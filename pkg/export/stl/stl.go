// Package stl writes meshes as binary STL via the sdfx renderer.
package stl

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/voxmill/quarry/pkg/mesh"
)

// Exporter writes binary STL files. The zero value is ready to use.
type Exporter struct{}

// New returns an STL exporter.
func New() *Exporter {
	return &Exporter{}
}

// Format returns "stl".
func (e *Exporter) Format() string {
	return "stl"
}

// Export writes m to path as binary STL. Facet normals are recomputed
// by the writer from the vertex winding, so they match the triangle
// orientation exactly. Empty meshes are refused.
func (e *Exporter) Export(m *mesh.Mesh, path string) error {
	if m == nil || m.IsEmpty() {
		return fmt.Errorf("stl: refusing to write empty mesh to %s", path)
	}
	tris := make([]render.Triangle3, m.TriangleCount())
	for i, tri := range m.Triangles {
		for j := 0; j < 3; j++ {
			tris[i][j] = v3.Vec{X: tri[j].X, Y: tri[j].Y, Z: tri[j].Z}
		}
	}
	return render.SaveSTL(path, tris)
}
