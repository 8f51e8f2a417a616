package geom

import "fmt"

// Triangle is a single mesh triangle. Vertex order is significant: the
// facing follows the right-hand rule around the listed vertices.
type Triangle [3]Vec3

// Normal returns the unit normal of the triangle, or the zero vector
// for a degenerate triangle.
func (t Triangle) Normal() Vec3 {
	n := t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
	l := n.Length()
	if l == 0 {
		return Vec3{}
	}
	return n.Scale(1 / l)
}

// Centroid returns the average of the three vertices.
func (t Triangle) Centroid() Vec3 {
	return t[0].Add(t[1]).Add(t[2]).Scale(1.0 / 3.0)
}

// Prism is an axis-aligned rectangular box. Corners holds the eight
// corner points indexed by the bit code x<<2|y<<1|z, where a set bit
// selects the high coordinate on that axis: Corners[0] is the low
// corner and Corners[7] the high corner.
type Prism struct {
	Corners [8]Vec3
}

// NewPrism builds the prism spanning lo to hi. Every axis extent must
// be strictly positive.
func NewPrism(lo, hi Vec3) (Prism, error) {
	if hi.X <= lo.X || hi.Y <= lo.Y || hi.Z <= lo.Z {
		return Prism{}, fmt.Errorf("geom: degenerate prism: lo %v, hi %v", lo, hi)
	}
	var p Prism
	for c := 0; c < 8; c++ {
		v := lo
		if c&4 != 0 {
			v.X = hi.X
		}
		if c&2 != 0 {
			v.Y = hi.Y
		}
		if c&1 != 0 {
			v.Z = hi.Z
		}
		p.Corners[c] = v
	}
	return p, nil
}

// Volume returns the product of the three axis extents.
func (p Prism) Volume() float64 {
	d := p.Corners[7].Sub(p.Corners[0])
	return d.X * d.Y * d.Z
}

// Centroid returns the center point of the prism.
func (p Prism) Centroid() Vec3 {
	return p.Corners[0].Add(p.Corners[7]).Scale(0.5)
}

// faceCorners maps each direction to the corner bit codes of its face in
// (low-left, low-right, top-left, top-right) order. For a face whose
// normal lies on axis i, "left to right" varies axis (i+1)%3 and "low to
// top" varies axis (i+2)%3.
var faceCorners = [6][4]int{
	Down:  {0, 1, 4, 5},
	Up:    {2, 3, 6, 7},
	Left:  {0, 2, 1, 3},
	Right: {4, 6, 5, 7},
	Into:  {1, 5, 3, 7},
	OutOf: {0, 4, 2, 6},
}

// Faces emits two triangles per face whose direction is not in
// suppressed, in canonical direction order. Positive directions (up,
// right, into) use the counterclockwise corner order low-left,
// top-right, top-left then low-left, low-right, top-right; negative
// directions use the mirrored clockwise order. Every emitted triangle's
// normal points out of the prism. A nil suppressed map emits all six
// faces.
func (p Prism) Faces(suppressed map[Direction]bool) []Triangle {
	tris := make([]Triangle, 0, 12)
	for _, d := range Directions {
		if suppressed[d] {
			continue
		}
		c := faceCorners[d]
		ll, lr, tl, tr := p.Corners[c[0]], p.Corners[c[1]], p.Corners[c[2]], p.Corners[c[3]]
		if d.positive() {
			tris = append(tris, Triangle{ll, tr, tl}, Triangle{ll, lr, tr})
		} else {
			tris = append(tris, Triangle{ll, tl, tr}, Triangle{ll, tr, lr})
		}
	}
	return tris
}
