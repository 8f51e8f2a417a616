package geom

// Direction is one of the six axis-aligned adjacency directions of the
// voxel grid. Up and Down run along y, Left and Right along x, Into and
// OutOf along z.
type Direction int

const (
	Down  Direction = iota // -y
	Up                     // +y
	Left                   // -x
	Right                  // +x
	Into                   // +z
	OutOf                  // -z
)

// Directions lists all six directions in canonical order. Face emission
// and link traversal both follow this order so output is deterministic.
var Directions = [6]Direction{Down, Up, Left, Right, Into, OutOf}

func (d Direction) String() string {
	switch d {
	case Down:
		return "down"
	case Up:
		return "up"
	case Left:
		return "left"
	case Right:
		return "right"
	case Into:
		return "into"
	case OutOf:
		return "out-of"
	default:
		return "unknown"
	}
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	switch d {
	case Down:
		return Up
	case Up:
		return Down
	case Left:
		return Right
	case Right:
		return Left
	case Into:
		return OutOf
	case OutOf:
		return Into
	}
	return d
}

// Offset returns the grid index delta (dx, dy, dz) of the neighboring
// cell in direction d.
func (d Direction) Offset() (dx, dy, dz int) {
	switch d {
	case Down:
		return 0, -1, 0
	case Up:
		return 0, 1, 0
	case Left:
		return -1, 0, 0
	case Right:
		return 1, 0, 0
	case Into:
		return 0, 0, 1
	case OutOf:
		return 0, 0, -1
	}
	return 0, 0, 0
}

// positive reports whether d points toward increasing coordinates on its
// axis. Faces on positive directions wind counterclockwise.
func (d Direction) positive() bool {
	return d == Up || d == Right || d == Into
}
