package grid

import (
	"fmt"

	"github.com/voxmill/quarry/pkg/geom"
)

// OutOfRangeError reports a request whose cell indices fall outside the
// grid dimensions. It distinguishes an invalid coordinate (programmer
// error) from the valid no-op of deleting an already absent cell.
type OutOfRangeError struct {
	X, Y, Z    int
	NX, NY, NZ int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("grid: cell (%d, %d, %d) outside %dx%dx%d grid",
		e.X, e.Y, e.Z, e.NX, e.NY, e.NZ)
}

// Delete removes the prism at (x, y, z) and returns its volume. Deleting
// an already absent cell is a no-op returning 0, so re-deletion is safe.
//
// For every direction in which the cell still holds a link, the linked
// neighbor's entry pointing back here is removed. The deleted cell keeps
// its own stale outgoing links; extraction reads links only from cells
// that are still present.
func (g *Graph) Delete(x, y, z int) (float64, error) {
	if !g.inRange(x, y, z) {
		return 0, &OutOfRangeError{X: x, Y: y, Z: z, NX: g.nx, NY: g.ny, NZ: g.nz}
	}
	n := &g.nodes[g.index(x, y, z)]
	if n.prism == nil {
		return 0, nil
	}
	freed := n.prism.Volume()
	n.prism = nil
	for _, d := range geom.Directions {
		j, ok := n.links[d]
		if !ok {
			continue
		}
		delete(g.nodes[j].links, d.Reverse())
	}
	return freed, nil
}
