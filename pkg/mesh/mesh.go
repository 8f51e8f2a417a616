// Package mesh holds the triangle mesh produced by grid extraction.
// It is the sole artifact handed to the export backends.
package mesh

import "github.com/voxmill/quarry/pkg/geom"

// Mesh is an ordered collection of triangles. Triangle order follows
// the extraction traversal, so two extractions of the same grid state
// produce identical meshes.
type Mesh struct {
	Triangles []geom.Triangle
}

// Append adds triangles to the mesh.
func (m *Mesh) Append(tris ...geom.Triangle) {
	m.Triangles = append(m.Triangles, tris...)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Triangles) == 0
}

// BoundingBox returns the axis-aligned bounds of the mesh. An empty
// mesh returns two zero vectors.
func (m *Mesh) BoundingBox() (min, max geom.Vec3) {
	if m.IsEmpty() {
		return geom.Vec3{}, geom.Vec3{}
	}
	min = m.Triangles[0][0]
	max = min
	for _, tri := range m.Triangles {
		for _, v := range tri {
			if v.X < min.X {
				min.X = v.X
			}
			if v.Y < min.Y {
				min.Y = v.Y
			}
			if v.Z < min.Z {
				min.Z = v.Z
			}
			if v.X > max.X {
				max.X = v.X
			}
			if v.Y > max.Y {
				max.Y = v.Y
			}
			if v.Z > max.Z {
				max.Z = v.Z
			}
		}
	}
	return min, max
}

// SurfaceArea returns the summed area of all triangles.
func (m *Mesh) SurfaceArea() float64 {
	var area float64
	for _, tri := range m.Triangles {
		cross := tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0]))
		area += cross.Length() / 2
	}
	return area
}
