package grid

import "fmt"

// Linspace returns n evenly spaced breakpoints from lo to hi inclusive,
// suitable for passing to New. The endpoints are exact; interior points
// are computed by linear interpolation so the sequence is strictly
// increasing whenever hi > lo.
func Linspace(lo, hi float64, n int) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("grid: linspace needs at least 2 points, got %d", n)
	}
	if hi <= lo {
		return nil, fmt.Errorf("grid: linspace needs hi > lo, got %g..%g", lo, hi)
	}
	pts := make([]float64, n)
	span := hi - lo
	for i := range pts {
		pts[i] = lo + span*float64(i)/float64(n-1)
	}
	pts[n-1] = hi
	return pts, nil
}
