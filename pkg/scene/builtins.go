package scene

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/chartparam/pkg/atlas"
	"github.com/chazu/chartparam/pkg/mesh"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites scene source for zygomys:
//
//  1. :keyword becomes the string literal "__kw_keyword", which parseArgs
//     recognizes without registering keyword symbols as globals.
//  2. ; line comments become // comments.
//  3. kebab-case identifiers become snake_case, since zygomys reads a
//     hyphen between identifiers as subtraction.
//
// String literals pass through untouched.
func preprocessSource(source string) string {
	b := []byte(source)
	out := make([]byte, 0, len(b)+len(b)/4)
	for i := 0; i < len(b); {
		switch c := b[i]; {
		case c == '"' || c == '`':
			j := skipString(b, i)
			out = append(out, b[i:j]...)
			i = j
		case c == ';':
			out = append(out, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out = append(out, b[i])
				i++
			}
		case c == ':' && i+1 < len(b) && b[i+1] == '=':
			out = append(out, ':', '=')
			i += 2
		case c == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, b[i+1:j]...)
			out = append(out, '"')
			i = j
		case c == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			out = append(out, '_')
			i++
		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

// skipString returns the index just past the string literal opening at i.
func skipString(b []byte, i int) int {
	quote := b[i]
	j := i + 1
	for j < len(b) && b[j] != quote {
		if quote == '"' && b[j] == '\\' && j+1 < len(b) {
			j++
		}
		j++
	}
	if j < len(b) {
		j++
	}
	return j
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

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
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

func toInts(s zygo.Sexp) ([]int, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(items))
	for i, item := range items {
		if out[i], err = toInt(item); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return out, nil
}

func toFloats(s zygo.Sexp, want int) ([]float64, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	if want > 0 && len(items) != want {
		return nil, fmt.Errorf("expected %d numbers, got %d", want, len(items))
	}
	out := make([]float64, len(items))
	for i, item := range items {
		if out[i], err = toFloat64(item); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return out, nil
}

func toCoords(s zygo.Sexp) ([]atlas.ParamCoord, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]atlas.ParamCoord, len(items))
	for i, item := range items {
		st, err := toFloats(item, 2)
		if err != nil {
			return nil, fmt.Errorf("coordinate %d: %w", i, err)
		}
		out[i] = atlas.ParamCoord{S: st[0], T: st[1]}
	}
	return out, nil
}

func sexpID(id int) zygo.Sexp {
	return &zygo.SexpInt{Val: int64(id)}
}

// ---------------------------------------------------------------------------
// Scene state
// ---------------------------------------------------------------------------

// sceneState accumulates what the builtins declare during one evaluation.
type sceneState struct {
	positions []mgl64.Vec3
	faces     [][3]int
	atlas     *atlas.Builder
	grid      *Scene
	explicit  bool // an explicit mesh or topology form was used
}

func newSceneState() *sceneState {
	return &sceneState{atlas: atlas.NewBuilder()}
}

func (st *sceneState) requireExplicit(form string) error {
	if st.grid != nil {
		return fmt.Errorf("%s: the scene is already defined by grid", form)
	}
	st.explicit = true
	return nil
}

// finish builds the mesh. A script that declares no geometry yields an
// empty scene.
func (st *sceneState) finish() (*Scene, error) {
	if st.grid != nil {
		return st.grid, nil
	}
	if len(st.positions) == 0 && len(st.faces) == 0 {
		return &Scene{Atlas: st.atlas}, nil
	}
	m, err := mesh.New(st.positions, st.faces)
	if err != nil {
		return nil, err
	}
	return &Scene{Mesh: m, Atlas: st.atlas}, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene forms into a zygomys environment.
// Every declaring form returns the id of what it declared.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, st *sceneState) {

	// (vertex x y z)
	env.AddFunction("vertex", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := st.requireExplicit("vertex"); err != nil {
			return zygo.SexpNull, err
		}
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vertex requires exactly 3 arguments, got %d", len(args))
		}
		var p mgl64.Vec3
		for k := range p {
			f, err := toFloat64(args[k])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vertex: %c: %w", "xyz"[k], err)
			}
			p[k] = f
		}
		st.positions = append(st.positions, p)
		return sexpID(len(st.positions) - 1), nil
	})

	// (face a b c)
	env.AddFunction("face", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := st.requireExplicit("face"); err != nil {
			return zygo.SexpNull, err
		}
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("face requires exactly 3 vertex ids, got %d", len(args))
		}
		var f [3]int
		for k := range f {
			v, err := toInt(args[k])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("face: vertex %d: %w", k, err)
			}
			f[k] = v
		}
		st.faces = append(st.faces, f)
		return sexpID(len(st.faces) - 1), nil
	})

	// (corner v)
	env.AddFunction("corner", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := st.requireExplicit("corner"); err != nil {
			return zygo.SexpNull, err
		}
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("corner requires a vertex id")
		}
		v, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("corner: %w", err)
		}
		return sexpID(st.atlas.AddCorner(v)), nil
	})

	// (chart :corners [[0 0] [1 0] [1 1] [0 1]] :range [0 1] :polygon false)
	env.AddFunction("chart", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := st.requireExplicit("chart"); err != nil {
			return zygo.SexpNull, err
		}
		pa := parseArgs(args)
		var spec atlas.ChartSpec

		v, ok := pa.kw["corners"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("chart requires :corners")
		}
		corners, err := toCoords(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("chart: corners: %w", err)
		}
		spec.Corners = corners

		if v, ok := pa.kw["range"]; ok {
			r, err := toFloats(v, 2)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("chart: range: %w", err)
			}
			spec.Range = atlas.Range{Lo: r[0], Hi: r[1]}
		}
		if v, ok := pa.kw["polygon"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("chart: polygon: %w", err)
			}
			spec.Polygon = b
		}
		return sexpID(st.atlas.AddChart(spec)), nil
	})

	// (patch :faces [...] :corners [...] :edges [...] :neighbors [...])
	env.AddFunction("patch", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := st.requireExplicit("patch"); err != nil {
			return zygo.SexpNull, err
		}
		pa := parseArgs(args)
		lists := make(map[string][]int, 4)
		for _, key := range []string{"faces", "corners", "edges", "neighbors"} {
			v, ok := pa.kw[key]
			if !ok {
				continue
			}
			ids, err := toInts(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("patch: %s: %w", key, err)
			}
			lists[key] = ids
		}
		id := st.atlas.AddPatch(lists["faces"], lists["corners"], lists["edges"], lists["neighbors"])
		return sexpID(id), nil
	})

	// (edge :corners [c0 c1] :path [...] :patches [...])
	env.AddFunction("edge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := st.requireExplicit("edge"); err != nil {
			return zygo.SexpNull, err
		}
		pa := parseArgs(args)
		get := func(key string) ([]int, error) {
			v, ok := pa.kw[key]
			if !ok {
				return nil, fmt.Errorf("edge requires :%s", key)
			}
			ids, err := toInts(v)
			if err != nil {
				return nil, fmt.Errorf("edge: %s: %w", key, err)
			}
			return ids, nil
		}
		corners, err := get("corners")
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(corners) != 2 {
			return zygo.SexpNull, fmt.Errorf("edge: corners: expected 2 ids, got %d", len(corners))
		}
		path, err := get("path")
		if err != nil {
			return zygo.SexpNull, err
		}
		patches, err := get("patches")
		if err != nil {
			return zygo.SexpNull, err
		}
		return sexpID(st.atlas.AddEdge([2]int{corners[0], corners[1]}, path, patches)), nil
	})

	// (transition from to [a b c d e f])
	env.AddFunction("transition", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("transition requires from, to and 6 coefficients")
		}
		from, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("transition: from: %w", err)
		}
		to, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("transition: to: %w", err)
		}
		c, err := toFloats(args[2], 6)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("transition: coefficients: %w", err)
		}
		st.atlas.SetTransition(from, to, atlas.NewAffine2D(c[0], c[1], c[2], c[3], c[4], c[5]))
		return zygo.SexpNull, nil
	})

	// (grid :nx 8 :ny 8 :charts-x 2 :charts-y 2 :width 1 :height 1 :bump 0)
	env.AddFunction("grid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if st.explicit || st.grid != nil {
			return zygo.SexpNull, fmt.Errorf("grid must be the only mesh definition in a scene")
		}
		pa := parseArgs(args)
		spec := GridSpec{NX: 1, NY: 1, ChartsX: 1, ChartsY: 1, Width: 1, Height: 1}
		for key, dst := range map[string]*int{"nx": &spec.NX, "ny": &spec.NY, "charts-x": &spec.ChartsX, "charts-y": &spec.ChartsY} {
			if v, ok := pa.kw[key]; ok {
				n, err := toInt(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("grid: %s: %w", key, err)
				}
				*dst = n
			}
		}
		for key, dst := range map[string]*float64{"width": &spec.Width, "height": &spec.Height, "bump": &spec.Bump} {
			if v, ok := pa.kw[key]; ok {
				f, err := toFloat64(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("grid: %s: %w", key, err)
				}
				*dst = f
			}
		}
		sc, err := Grid(spec)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("grid: %w", err)
		}
		// Transitions declared before grid still apply.
		sc.Atlas.MergeTransitions(st.atlas)
		st.atlas = sc.Atlas
		st.grid = sc
		return sexpID(spec.ChartsX * spec.ChartsY), nil
	})
}
