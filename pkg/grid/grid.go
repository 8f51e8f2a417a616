package grid

import (
	"fmt"

	"github.com/voxmill/quarry/pkg/geom"
)

// node is one cell of the graph. Its grid position is implied by its
// index in the flat node array. links maps each direction to the flat
// index of the neighbor that is live in that direction; an entry is
// absent when the cell borders the grid boundary or the neighbor across
// it has been deleted.
type node struct {
	prism *geom.Prism
	links map[geom.Direction]int
}

// Graph is a voxel adjacency graph over a rectilinear grid. It is built
// once from three breakpoint slices, mutated only through Delete, and
// read through ToMesh and the accessors. A Graph is not safe for
// concurrent mutation; each graph belongs to a single driver from
// construction through extraction.
type Graph struct {
	xs, ys, zs []float64 // grid line coordinates per axis
	nx, ny, nz int       // cell counts per axis (len-1)
	nodes      []node
}

// New builds a fully linked graph from three strictly increasing
// breakpoint slices of length at least 2. Cell (x, y, z) spans
// xs[x]..xs[x+1], ys[y]..ys[y+1], zs[z]..zs[z+1], so the grid holds
// (len(xs)-1)*(len(ys)-1)*(len(zs)-1) prisms.
func New(xs, ys, zs []float64) (*Graph, error) {
	for _, axis := range []struct {
		name string
		pts  []float64
	}{{"x", xs}, {"y", ys}, {"z", zs}} {
		if err := checkBreakpoints(axis.name, axis.pts); err != nil {
			return nil, err
		}
	}

	g := &Graph{
		xs: append([]float64(nil), xs...),
		ys: append([]float64(nil), ys...),
		zs: append([]float64(nil), zs...),
		nx: len(xs) - 1,
		ny: len(ys) - 1,
		nz: len(zs) - 1,
	}
	g.nodes = make([]node, g.nx*g.ny*g.nz)

	for x := 0; x < g.nx; x++ {
		for y := 0; y < g.ny; y++ {
			for z := 0; z < g.nz; z++ {
				lo := geom.Vec3{X: g.xs[x], Y: g.ys[y], Z: g.zs[z]}
				hi := geom.Vec3{X: g.xs[x+1], Y: g.ys[y+1], Z: g.zs[z+1]}
				p, err := geom.NewPrism(lo, hi)
				if err != nil {
					return nil, fmt.Errorf("grid: cell (%d, %d, %d): %w", x, y, z, err)
				}
				n := &g.nodes[g.index(x, y, z)]
				n.prism = &p
				n.links = make(map[geom.Direction]int, 6)
			}
		}
	}

	// Link every cell to each geometric neighbor. Boundary directions
	// get no entry; that is the only way a link is absent initially.
	for x := 0; x < g.nx; x++ {
		for y := 0; y < g.ny; y++ {
			for z := 0; z < g.nz; z++ {
				n := &g.nodes[g.index(x, y, z)]
				for _, d := range geom.Directions {
					if j, ok := g.NeighborOf(x, y, z, d); ok {
						n.links[d] = j
					}
				}
			}
		}
	}
	return g, nil
}

// checkBreakpoints rejects axis slices that would produce zero or
// negative volume prisms.
func checkBreakpoints(axis string, pts []float64) error {
	if len(pts) < 2 {
		return fmt.Errorf("grid: %s axis needs at least 2 breakpoints, got %d", axis, len(pts))
	}
	for i := 1; i < len(pts); i++ {
		if pts[i] <= pts[i-1] {
			return fmt.Errorf("grid: %s axis breakpoints must be strictly increasing: %g then %g at index %d",
				axis, pts[i-1], pts[i], i)
		}
	}
	return nil
}

// index returns the flat node index of cell (x, y, z): x outer, y
// middle, z inner.
func (g *Graph) index(x, y, z int) int {
	return (x*g.ny+y)*g.nz + z
}

func (g *Graph) inRange(x, y, z int) bool {
	return x >= 0 && x < g.nx && y >= 0 && y < g.ny && z >= 0 && z < g.nz
}

// NeighborOf returns the flat node index of the cell adjacent to
// (x, y, z) in direction d, or false when that cell would fall outside
// the grid. It is pure index arithmetic over the immutable dimensions,
// never cached link state, so it stays correct after any sequence of
// deletions.
func (g *Graph) NeighborOf(x, y, z int, d geom.Direction) (int, bool) {
	dx, dy, dz := d.Offset()
	x, y, z = x+dx, y+dy, z+dz
	if !g.inRange(x, y, z) {
		return 0, false
	}
	return g.index(x, y, z), true
}

// Dims returns the cell counts along x, y, z.
func (g *Graph) Dims() (nx, ny, nz int) {
	return g.nx, g.ny, g.nz
}

// CellCount returns the total number of cells, present or deleted.
func (g *Graph) CellCount() int {
	return len(g.nodes)
}

// Present reports whether the cell at (x, y, z) still holds its prism.
// Out-of-range coordinates report false.
func (g *Graph) Present(x, y, z int) bool {
	if !g.inRange(x, y, z) {
		return false
	}
	return g.nodes[g.index(x, y, z)].prism != nil
}

// PresentCount returns the number of cells whose prism is present.
func (g *Graph) PresentCount() int {
	count := 0
	for i := range g.nodes {
		if g.nodes[i].prism != nil {
			count++
		}
	}
	return count
}

// Linked reports whether the cell at (x, y, z) currently has a live
// link in direction d.
func (g *Graph) Linked(x, y, z int, d geom.Direction) bool {
	if !g.inRange(x, y, z) {
		return false
	}
	_, ok := g.nodes[g.index(x, y, z)].links[d]
	return ok
}

// TotalVolume returns the summed volume of all present prisms.
func (g *Graph) TotalVolume() float64 {
	var total float64
	for i := range g.nodes {
		if p := g.nodes[i].prism; p != nil {
			total += p.Volume()
		}
	}
	return total
}

// Breakpoints returns copies of the grid line coordinates per axis.
func (g *Graph) Breakpoints() (xs, ys, zs []float64) {
	return append([]float64(nil), g.xs...),
		append([]float64(nil), g.ys...),
		append([]float64(nil), g.zs...)
}
