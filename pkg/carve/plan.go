package carve

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/voxmill/quarry/pkg/grid"
)

// Plan is a declarative carving recipe loaded from YAML. Ops run in
// order; when Target is set, random line carving runs afterwards until
// the remaining volume drops to Target times the full grid volume.
type Plan struct {
	Version int      `yaml:"version"`
	Seed    int64    `yaml:"seed"`
	Grid    GridSpec `yaml:"grid"`
	Target  float64  `yaml:"target"`
	Ops     []Op     `yaml:"ops"`
	Output  string   `yaml:"output"`
}

// GridSpec describes the grid to build: either explicit breakpoint
// slices on all three axes, or the cells+size shorthand for a uniform
// cube with the given edge length.
type GridSpec struct {
	X     []float64 `yaml:"x"`
	Y     []float64 `yaml:"y"`
	Z     []float64 `yaml:"z"`
	Cells int       `yaml:"cells"`
	Size  float64   `yaml:"size"`
}

func (s GridSpec) explicit() bool {
	return len(s.X) > 0 || len(s.Y) > 0 || len(s.Z) > 0
}

// Op is one carving operation. Op selects the kind; the remaining
// fields are kind-specific.
//
//	op: cell    at: [x, y, z]
//	op: line    axis: x|y|z, a, b (transverse coordinates, see Line)
//	op: box     from: [x, y, z], to: [x, y, z] (inclusive bounds)
type Op struct {
	Op   string `yaml:"op"`
	At   []int  `yaml:"at,omitempty"`
	Axis Axis   `yaml:"axis,omitempty"`
	A    int    `yaml:"a,omitempty"`
	B    int    `yaml:"b,omitempty"`
	From []int  `yaml:"from,omitempty"`
	To   []int  `yaml:"to,omitempty"`
}

// ValidationError reports one problem found in a plan.
type ValidationError struct {
	Code    string
	Message string
	Field   string
}

func (e ValidationError) Error() string {
	context := ""
	if e.Field != "" {
		context = fmt.Sprintf(" (%s)", e.Field)
	}
	return fmt.Sprintf("%s: %s%s", e.Code, e.Message, context)
}

// Parse decodes a YAML plan and applies defaults: version 1 and, for
// the cells shorthand, size 1.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("carve: parsing plan: %w", err)
	}
	if p.Version == 0 {
		p.Version = 1
	}
	if p.Grid.Cells > 0 && p.Grid.Size == 0 {
		p.Grid.Size = 1
	}
	return &p, nil
}

// Load reads and parses a YAML plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Validate checks the whole plan and returns every problem found.
func (p *Plan) Validate() []ValidationError {
	var errors []ValidationError
	errors = append(errors, p.validateHeader()...)
	errors = append(errors, p.validateGrid()...)
	errors = append(errors, p.validateOps()...)
	return errors
}

func (p *Plan) validateHeader() []ValidationError {
	var errors []ValidationError
	if p.Version != 1 {
		errors = append(errors, ValidationError{
			Code:    "UNSUPPORTED_VERSION",
			Message: fmt.Sprintf("Plan version %d is not supported (want 1)", p.Version),
		})
	}
	if p.Target < 0 || p.Target > 1 {
		errors = append(errors, ValidationError{
			Code:    "BAD_TARGET",
			Message: fmt.Sprintf("Target %g must be a remaining-volume fraction in [0, 1]", p.Target),
			Field:   "target",
		})
	}
	return errors
}

func (p *Plan) validateGrid() []ValidationError {
	var errors []ValidationError

	switch {
	case p.Grid.explicit() && p.Grid.Cells > 0:
		errors = append(errors, ValidationError{
			Code:    "MIXED_GRID_SPEC",
			Message: "Grid must use either x/y/z breakpoints or the cells shorthand, not both",
			Field:   "grid",
		})
	case !p.Grid.explicit() && p.Grid.Cells <= 0:
		errors = append(errors, ValidationError{
			Code:    "MISSING_GRID",
			Message: "Grid needs x/y/z breakpoints or a positive cell count",
			Field:   "grid",
		})
	}

	if p.Grid.explicit() {
		for name, pts := range map[string][]float64{"grid.x": p.Grid.X, "grid.y": p.Grid.Y, "grid.z": p.Grid.Z} {
			if len(pts) < 2 {
				errors = append(errors, ValidationError{
					Code:    "BAD_BREAKPOINTS",
					Message: fmt.Sprintf("Axis needs at least 2 breakpoints, got %d", len(pts)),
					Field:   name,
				})
				continue
			}
			for i := 1; i < len(pts); i++ {
				if pts[i] <= pts[i-1] {
					errors = append(errors, ValidationError{
						Code:    "BAD_BREAKPOINTS",
						Message: fmt.Sprintf("Breakpoints must be strictly increasing, got %g after %g", pts[i], pts[i-1]),
						Field:   name,
					})
					break
				}
			}
		}
	}

	if p.Grid.Cells > 0 && p.Grid.Size <= 0 {
		errors = append(errors, ValidationError{
			Code:    "BAD_SIZE",
			Message: fmt.Sprintf("Cube size %g must be positive", p.Grid.Size),
			Field:   "grid.size",
		})
	}
	return errors
}

func (p *Plan) validateOps() []ValidationError {
	var errors []ValidationError
	for i, op := range p.Ops {
		field := fmt.Sprintf("ops[%d]", i)
		switch op.Op {
		case "cell":
			if len(op.At) != 3 {
				errors = append(errors, ValidationError{
					Code:    "BAD_CELL_OP",
					Message: fmt.Sprintf("Cell op wants at: [x, y, z], got %v", op.At),
					Field:   field,
				})
			}
		case "line":
			if op.Axis != AxisX && op.Axis != AxisY && op.Axis != AxisZ {
				errors = append(errors, ValidationError{
					Code:    "BAD_LINE_OP",
					Message: fmt.Sprintf("Line op axis must be x, y or z, got %q", op.Axis),
					Field:   field,
				})
			}
			if op.A < 0 || op.B < 0 {
				errors = append(errors, ValidationError{
					Code:    "BAD_LINE_OP",
					Message: fmt.Sprintf("Line op coordinates must be non-negative, got a=%d b=%d", op.A, op.B),
					Field:   field,
				})
			}
		case "box":
			if len(op.From) != 3 || len(op.To) != 3 {
				errors = append(errors, ValidationError{
					Code:    "BAD_BOX_OP",
					Message: "Box op wants from and to triples",
					Field:   field,
				})
				continue
			}
			for axis := 0; axis < 3; axis++ {
				if op.From[axis] > op.To[axis] {
					errors = append(errors, ValidationError{
						Code:    "BAD_BOX_OP",
						Message: fmt.Sprintf("Box bounds inverted on axis %d: %d > %d", axis, op.From[axis], op.To[axis]),
						Field:   field,
					})
				}
			}
		default:
			errors = append(errors, ValidationError{
				Code:    "UNKNOWN_OP",
				Message: fmt.Sprintf("Unknown op %q (want cell, line or box)", op.Op),
				Field:   field,
			})
		}
	}
	return errors
}

// Build constructs the grid described by the plan.
func (p *Plan) Build() (*grid.Graph, error) {
	if p.Grid.Cells > 0 {
		size := p.Grid.Size
		if size <= 0 {
			size = 1
		}
		pts, err := grid.Linspace(0, size, p.Grid.Cells+1)
		if err != nil {
			return nil, err
		}
		return grid.New(pts, pts, pts)
	}
	return grid.New(p.Grid.X, p.Grid.Y, p.Grid.Z)
}

// Apply runs the plan's ops in order, then random line carving when
// Target is set. A nil rng derives one from the plan seed. Returns the
// total volume freed.
func (p *Plan) Apply(g *grid.Graph, rng *rand.Rand) (float64, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(p.Seed))
	}
	var freed float64
	for i, op := range p.Ops {
		f, err := applyOp(g, op)
		freed += f
		if err != nil {
			return freed, fmt.Errorf("carve: ops[%d] %s: %w", i, op.Op, err)
		}
	}
	if p.Target > 0 {
		xs, ys, zs := g.Breakpoints()
		full := (xs[len(xs)-1] - xs[0]) * (ys[len(ys)-1] - ys[0]) * (zs[len(zs)-1] - zs[0])
		_, f, err := Lines(g, rng, p.Target*full)
		freed += f
		if err != nil {
			return freed, err
		}
	}
	return freed, nil
}

func applyOp(g *grid.Graph, op Op) (float64, error) {
	switch op.Op {
	case "cell":
		if len(op.At) != 3 {
			return 0, fmt.Errorf("cell op wants at: [x, y, z], got %v", op.At)
		}
		return g.Delete(op.At[0], op.At[1], op.At[2])
	case "line":
		return Line(g, op.Axis, op.A, op.B)
	case "box":
		if len(op.From) != 3 || len(op.To) != 3 {
			return 0, fmt.Errorf("box op wants from and to triples")
		}
		var freed float64
		for x := op.From[0]; x <= op.To[0]; x++ {
			for y := op.From[1]; y <= op.To[1]; y++ {
				for z := op.From[2]; z <= op.To[2]; z++ {
					f, err := g.Delete(x, y, z)
					freed += f
					if err != nil {
						return freed, err
					}
				}
			}
		}
		return freed, nil
	}
	return 0, fmt.Errorf("unknown op %q", op.Op)
}
