package grid

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/voxmill/quarry/pkg/geom"
)

// checkLinkInvariant asserts that every present cell is linked in a
// direction iff its geometric neighbor in that direction exists and is
// itself present. Deleted cells are exempt: they keep stale outgoing
// links that nothing consults.
func checkLinkInvariant(t *testing.T, g *Graph) {
	t.Helper()
	nx, ny, nz := g.Dims()
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			for z := 0; z < nz; z++ {
				if !g.Present(x, y, z) {
					continue
				}
				for _, d := range geom.Directions {
					dx, dy, dz := d.Offset()
					want := g.Present(x+dx, y+dy, z+dz)
					if got := g.Linked(x, y, z, d); got != want {
						t.Errorf("cell (%d,%d,%d) linked %s = %v, want %v",
							x, y, z, d, got, want)
					}
				}
			}
		}
	}
}

func TestDeleteOutOfRange(t *testing.T) {
	g := unitGrid(t, 2)
	cases := [][3]int{
		{-1, 0, 0}, {0, -1, 0}, {0, 0, -1},
		{2, 0, 0}, {0, 2, 0}, {0, 0, 2},
	}
	for _, c := range cases {
		freed, err := g.Delete(c[0], c[1], c[2])
		if err == nil {
			t.Errorf("Delete(%d, %d, %d) succeeded, want out of range error", c[0], c[1], c[2])
			continue
		}
		var oor *OutOfRangeError
		if !errors.As(err, &oor) {
			t.Errorf("Delete(%d, %d, %d) error type %T, want *OutOfRangeError", c[0], c[1], c[2], err)
		}
		if freed != 0 {
			t.Errorf("Delete(%d, %d, %d) freed %g, want 0", c[0], c[1], c[2], freed)
		}
	}
	if g.PresentCount() != 8 {
		t.Errorf("rejected deletions mutated the grid: PresentCount = %d, want 8", g.PresentCount())
	}
}

func TestDeleteReturnsPrismVolume(t *testing.T) {
	g := mustGrid(t, []float64{0, 0.5, 2}, []float64{0, 2}, []float64{0, 1, 4})

	freed, err := g.Delete(0, 0, 0)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if freed != 1 { // 0.5 * 2 * 1
		t.Errorf("freed = %g, want 1", freed)
	}

	freed, err = g.Delete(1, 0, 1)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if freed != 9 { // 1.5 * 2 * 3
		t.Errorf("freed = %g, want 9", freed)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	g := unitGrid(t, 2)

	first, err := g.Delete(1, 1, 1)
	if err != nil {
		t.Fatalf("first Delete: %v", err)
	}
	if first != 1 {
		t.Errorf("first Delete freed %g, want 1", first)
	}

	for i := 0; i < 2; i++ {
		freed, err := g.Delete(1, 1, 1)
		if err != nil {
			t.Fatalf("repeat Delete: %v", err)
		}
		if freed != 0 {
			t.Errorf("repeat Delete freed %g, want 0", freed)
		}
	}
	if g.PresentCount() != 7 {
		t.Errorf("PresentCount = %d, want 7", g.PresentCount())
	}
	checkLinkInvariant(t, g)
}

func TestDeleteUnlinksNeighborsAsymmetrically(t *testing.T) {
	g := unitGrid(t, 2)
	if _, err := g.Delete(0, 0, 0); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// The three neighbors of the hole no longer link toward it.
	if g.Linked(1, 0, 0, geom.Left) {
		t.Error("(1,0,0) still links left toward the deleted cell")
	}
	if g.Linked(0, 1, 0, geom.Down) {
		t.Error("(0,1,0) still links down toward the deleted cell")
	}
	if g.Linked(0, 0, 1, geom.OutOf) {
		t.Error("(0,0,1) still links out-of toward the deleted cell")
	}

	// The deleted cell keeps its own stale outgoing links.
	dead := &g.nodes[g.index(0, 0, 0)]
	if len(dead.links) != 3 {
		t.Errorf("deleted cell has %d outgoing links, want 3 stale links", len(dead.links))
	}
	for _, d := range []geom.Direction{geom.Right, geom.Up, geom.Into} {
		if _, ok := dead.links[d]; !ok {
			t.Errorf("deleted cell lost its stale %s link", d)
		}
	}

	// Links among the remaining cells are untouched.
	if !g.Linked(1, 1, 0, geom.Left) {
		t.Error("(1,1,0) lost its left link to a present neighbor")
	}
	if !g.Linked(1, 0, 0, geom.Up) {
		t.Error("(1,0,0) lost its up link to a present neighbor")
	}
	checkLinkInvariant(t, g)
}

func TestLinkInvariantUnderDeletionSequence(t *testing.T) {
	g := unitGrid(t, 3)
	checkLinkInvariant(t, g)

	seq := [][3]int{{1, 1, 1}, {0, 0, 0}, {2, 2, 2}, {1, 1, 0}, {1, 1, 1}, {0, 1, 1}}
	for _, c := range seq {
		if _, err := g.Delete(c[0], c[1], c[2]); err != nil {
			t.Fatalf("Delete(%v): %v", c, err)
		}
		checkLinkInvariant(t, g)
	}
}

func TestVolumeConservation(t *testing.T) {
	// Dyadic breakpoints keep every volume exactly representable, so
	// conservation must hold with no tolerance at all.
	xs := []float64{0, 0.5, 1, 2}
	ys := []float64{0, 0.25, 1, 4}
	zs := []float64{0, 1, 1.5, 2}
	g := mustGrid(t, xs, ys, zs)

	initial := g.TotalVolume()
	if initial != 16 { // 2 * 4 * 2 bounding box, tiled exactly
		t.Fatalf("initial volume = %g, want 16", initial)
	}

	rng := rand.New(rand.NewSource(11))
	var freedSum float64
	for i := 0; i < 40; i++ {
		x, y, z := rng.Intn(3), rng.Intn(3), rng.Intn(3)
		freed, err := g.Delete(x, y, z)
		if err != nil {
			t.Fatalf("Delete(%d,%d,%d): %v", x, y, z, err)
		}
		freedSum += freed

		if initial-freedSum != g.TotalVolume() {
			t.Fatalf("after %d deletions: initial %g - freed %g = %g, but TotalVolume = %g",
				i+1, initial, freedSum, initial-freedSum, g.TotalVolume())
		}
	}
}

func TestDeleteOrderIndependence(t *testing.T) {
	cells := [][3]int{{0, 0, 0}, {1, 0, 1}, {1, 1, 1}, {0, 1, 0}, {1, 1, 0}}

	a := unitGrid(t, 2)
	for _, c := range cells {
		if _, err := a.Delete(c[0], c[1], c[2]); err != nil {
			t.Fatalf("Delete(%v): %v", c, err)
		}
	}

	b := unitGrid(t, 2)
	for i := len(cells) - 1; i >= 0; i-- {
		c := cells[i]
		if _, err := b.Delete(c[0], c[1], c[2]); err != nil {
			t.Fatalf("Delete(%v): %v", c, err)
		}
	}

	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			for z := 0; z < 2; z++ {
				if a.Present(x, y, z) != b.Present(x, y, z) {
					t.Errorf("presence at (%d,%d,%d) differs by deletion order", x, y, z)
				}
				for _, d := range geom.Directions {
					if a.Present(x, y, z) && a.Linked(x, y, z, d) != b.Linked(x, y, z, d) {
						t.Errorf("link %s at (%d,%d,%d) differs by deletion order", d, x, y, z)
					}
				}
			}
		}
	}

	am, bm := a.ToMesh(), b.ToMesh()
	if am.TriangleCount() != bm.TriangleCount() {
		t.Errorf("mesh sizes differ by deletion order: %d vs %d",
			am.TriangleCount(), bm.TriangleCount())
	}
}
