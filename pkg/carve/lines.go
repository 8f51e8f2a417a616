// Package carve removes material from a grid: single cells, full
// axis-aligned lines, boxes, and the random line-carving policy used
// by the carved-cube driver. Plans loaded from YAML replay the same
// operations declaratively.
package carve

import (
	"fmt"
	"math/rand"

	"github.com/voxmill/quarry/pkg/grid"
)

// Axis names a grid axis.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
)

// Line deletes every cell along axis through the fixed transverse
// coordinates a and b and returns the freed volume. For axis x the
// line runs through (y=a, z=b), for y through (x=a, z=b), for z
// through (x=a, y=b). Out-of-range a or b fails on the first cell.
func Line(g *grid.Graph, axis Axis, a, b int) (float64, error) {
	nx, ny, nz := g.Dims()
	var freed float64
	switch axis {
	case AxisX:
		for x := 0; x < nx; x++ {
			f, err := g.Delete(x, a, b)
			if err != nil {
				return freed, err
			}
			freed += f
		}
	case AxisY:
		for y := 0; y < ny; y++ {
			f, err := g.Delete(a, y, b)
			if err != nil {
				return freed, err
			}
			freed += f
		}
	case AxisZ:
		for z := 0; z < nz; z++ {
			f, err := g.Delete(a, b, z)
			if err != nil {
				return freed, err
			}
			freed += f
		}
	default:
		return 0, fmt.Errorf("carve: unknown axis %q", axis)
	}
	return freed, nil
}

// Lines carves rounds of three orthogonal full-length lines through
// randomly chosen coordinates until the remaining volume is at most
// target. Each round draws a from [1, min(nx,ny)-2] and b from
// [1, min(ny,nz)-3], then carves the x line through (y=a, z=b), the
// y line through (x=a, z=b) and the z line through (x=a, y=b).
// Returns the number of rounds and the total volume freed.
//
// Rounds may repeat an (a, b) pair and free nothing. Once every
// drawable pair has been carved and the volume still exceeds target,
// Lines reports an error rather than drawing forever.
func Lines(g *grid.Graph, rng *rand.Rand, target float64) (rounds int, freed float64, err error) {
	nx, ny, nz := g.Dims()
	mA := min(nx, ny)
	mB := min(ny, nz)
	if mA < 3 || mB < 4 {
		return 0, 0, fmt.Errorf("carve: grid %dx%dx%d too small for line carving", nx, ny, nz)
	}

	carved := make(map[[2]int]bool)
	pairs := (mA - 2) * (mB - 3)
	for g.TotalVolume() > target {
		if len(carved) == pairs {
			return rounds, freed, fmt.Errorf("carve: volume %g still above target %g after carving all %d line pairs",
				g.TotalVolume(), target, pairs)
		}
		a := 1 + rng.Intn(mA-2)
		b := 1 + rng.Intn(mB-3)
		carved[[2]int{a, b}] = true
		for _, axis := range []Axis{AxisX, AxisY, AxisZ} {
			f, lineErr := Line(g, axis, a, b)
			freed += f
			if lineErr != nil {
				return rounds, freed, lineErr
			}
		}
		rounds++
	}
	return rounds, freed, nil
}
