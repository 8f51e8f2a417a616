package grid

import (
	"github.com/voxmill/quarry/pkg/geom"
	"github.com/voxmill/quarry/pkg/mesh"
)

// ToMesh collects the exterior faces of every present prism into a
// mesh. Traversal order is x outer, y middle, z inner, ascending, and
// faces within a cell follow the canonical direction order, so repeated
// extractions of the same state yield identical meshes.
//
// Each cell suppresses exactly the faces whose direction still has a
// link: a link survives only while the neighbor across it is present,
// so a face is emitted iff it borders the grid boundary or a hole.
func (g *Graph) ToMesh() *mesh.Mesh {
	m := &mesh.Mesh{}
	suppressed := make(map[geom.Direction]bool, 6)
	for x := 0; x < g.nx; x++ {
		for y := 0; y < g.ny; y++ {
			for z := 0; z < g.nz; z++ {
				n := &g.nodes[g.index(x, y, z)]
				if n.prism == nil {
					continue
				}
				clear(suppressed)
				for d := range n.links {
					suppressed[d] = true
				}
				m.Append(n.prism.Faces(suppressed)...)
			}
		}
	}
	return m
}
