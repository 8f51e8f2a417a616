package engine

import (
	"fmt"
	"math"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/voxmill/quarry/pkg/carve"
	"github.com/voxmill/quarry/pkg/grid"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms carve script source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: carve-line -> carve_line
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpGrid wraps a grid.Graph so scripts can hold a handle to the grid
// returned by the `grid` builtin.
type sexpGrid struct {
	g *grid.Graph
}

func (s *sexpGrid) SexpString(ps *zygo.PrintState) string {
	nx, ny, nz := s.g.Dims()
	return fmt.Sprintf("(grid %dx%dx%d)", nx, ny, nz)
}
func (s *sexpGrid) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a Sexp. Floats are accepted when integral,
// so that (carve 1 2.0 3) works the way a script author expects.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) {
			return int(v.Val), nil
		}
		return 0, fmt.Errorf("expected integer, got %v", v.Val)
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toAxis converts a keyword or string to a carve.Axis.
func toAxis(s zygo.Sexp) (carve.Axis, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return "", fmt.Errorf("expected axis keyword (:x, :y, :z): %w", err)
	}
	switch name {
	case "x":
		return carve.AxisX, nil
	case "y":
		return carve.AxisY, nil
	case "z":
		return carve.AxisZ, nil
	}
	return "", fmt.Errorf("invalid axis %q, expected x, y, or z", name)
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toFloatSlice converts a Lisp list or array of numbers to a []float64.
func toFloatSlice(s zygo.Sexp) ([]float64, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(items))
	for i, item := range items {
		f, err := toFloat64(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Evaluation state
// ---------------------------------------------------------------------------

// evalState carries the grid under construction across builtin calls.
// A script constructs exactly one grid and all later builtins operate on it.
type evalState struct {
	graph *grid.Graph
}

func (st *evalState) require() (*grid.Graph, error) {
	if st.graph == nil {
		return nil, fmt.Errorf("no grid constructed yet: call (grid ...) first")
	}
	return st.graph, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all carve DSL builtins into a zygomys environment.
// The builtins populate and mutate the grid held in st during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, st *evalState) {

	// -----------------------------------------------------------------------
	// (grid :x (linspace 0 1 27) :y (linspace 0 1 27) :z (linspace 0 1 27))
	// (grid :cells 26 :size 1.0)
	// -----------------------------------------------------------------------
	env.AddFunction("grid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if st.graph != nil {
			return zygo.SexpNull, fmt.Errorf("grid: a grid was already constructed")
		}
		pa := parseArgs(args)

		// Cube shorthand: :cells N divides a cube of edge :size into N^3 cells.
		if v, ok := pa.kw["cells"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("grid: cells: %w", err)
			}
			size := 1.0
			if sv, ok := pa.kw["size"]; ok {
				size, err = toFloat64(sv)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("grid: size: %w", err)
				}
			}
			pts, err := grid.Linspace(0, size, n+1)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("grid: %w", err)
			}
			g, err := grid.New(pts, pts, pts)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("grid: %w", err)
			}
			st.graph = g
			return &sexpGrid{g: g}, nil
		}

		var axes [3][]float64
		for i, axis := range []string{"x", "y", "z"} {
			v, ok := pa.kw[axis]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("grid: missing :%s breakpoints (or use :cells)", axis)
			}
			pts, err := toFloatSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("grid: %s: %w", axis, err)
			}
			axes[i] = pts
		}
		g, err := grid.New(axes[0], axes[1], axes[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("grid: %w", err)
		}
		st.graph = g
		return &sexpGrid{g: g}, nil
	})

	// -----------------------------------------------------------------------
	// (linspace 0 1 27) -> list of 27 evenly spaced breakpoints
	// -----------------------------------------------------------------------
	env.AddFunction("linspace", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("linspace requires lo, hi and count, got %d arguments", len(args))
		}
		lo, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("linspace: lo: %w", err)
		}
		hi, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("linspace: hi: %w", err)
		}
		n, err := toInt(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("linspace: count: %w", err)
		}
		pts, err := grid.Linspace(lo, hi, n)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("linspace: %w", err)
		}
		items := make([]zygo.Sexp, len(pts))
		for i, p := range pts {
			items[i] = &zygo.SexpFloat{Val: p}
		}
		return zygo.MakeList(items), nil
	})

	// -----------------------------------------------------------------------
	// (carve x y z) -> freed volume of the deleted cell
	// -----------------------------------------------------------------------
	env.AddFunction("carve", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		g, err := st.require()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("carve: %w", err)
		}
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("carve requires x, y and z, got %d arguments", len(args))
		}
		var c [3]int
		for i, arg := range args {
			v, err := toInt(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("carve: coordinate %d: %w", i, err)
			}
			c[i] = v
		}
		freed, err := g.Delete(c[0], c[1], c[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("carve: %w", err)
		}
		return &zygo.SexpFloat{Val: freed}, nil
	})

	// -----------------------------------------------------------------------
	// (carve-line :axis :x :a 3 :b 4) -> freed volume of the whole line
	//
	// Note: registered as "carve_line" because zygomys does not support
	// hyphens in identifiers. The preprocessor converts carve-line to
	// carve_line in the source.
	// -----------------------------------------------------------------------
	env.AddFunction("carve_line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		g, err := st.require()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("carve-line: %w", err)
		}
		pa := parseArgs(args)

		v, ok := pa.kw["axis"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("carve-line: missing :axis")
		}
		axis, err := toAxis(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("carve-line: axis: %w", err)
		}
		var a, b int
		if v, ok := pa.kw["a"]; ok {
			if a, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("carve-line: a: %w", err)
			}
		}
		if v, ok := pa.kw["b"]; ok {
			if b, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("carve-line: b: %w", err)
			}
		}
		freed, err := carve.Line(g, axis, a, b)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("carve-line: %w", err)
		}
		return &zygo.SexpFloat{Val: freed}, nil
	})

	// -----------------------------------------------------------------------
	// (remaining) -> total volume of all present cells
	// -----------------------------------------------------------------------
	env.AddFunction("remaining", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		g, err := st.require()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("remaining: %w", err)
		}
		return &zygo.SexpFloat{Val: g.TotalVolume()}, nil
	})

	// -----------------------------------------------------------------------
	// (cells) -> count of cells still holding a prism
	// -----------------------------------------------------------------------
	env.AddFunction("cells", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		g, err := st.require()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cells: %w", err)
		}
		return &zygo.SexpInt{Val: int64(g.PresentCount())}, nil
	})

	// -----------------------------------------------------------------------
	// (present 0 0 0) -> whether the cell still holds its prism
	//
	// Also registered as present? for a more Lisp-flavored spelling.
	// -----------------------------------------------------------------------
	presentFn := func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		g, err := st.require()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("present: %w", err)
		}
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("present requires x, y and z, got %d arguments", len(args))
		}
		var c [3]int
		for i, arg := range args {
			v, err := toInt(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("present: coordinate %d: %w", i, err)
			}
			c[i] = v
		}
		return &zygo.SexpBool{Val: g.Present(c[0], c[1], c[2])}, nil
	}
	env.AddFunction("present", presentFn)
	env.AddFunction("present?", presentFn)
}
