package atlas

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// ChartSpec describes a chart to add to a Builder.
type ChartSpec struct {
	Corners []ParamCoord
	// Range is the valid interval on both axes. The zero value means
	// DefaultRange.
	Range Range
	// Polygon makes the valid domain the polygon spanned by Corners
	// instead of the Range square.
	Polygon bool
}

func (s ChartSpec) rangeOrDefault() Range {
	if s.Range == (Range{}) {
		return DefaultRange
	}
	return s.Range
}

// Builder accumulates atlas topology. Ids are assigned in insertion order
// starting at 0, so chart i and patch i must be added in the same position.
type Builder struct {
	charts   []ChartSpec
	patches  []*Patch
	edges    []*PatchEdge
	corners  []*PatchCorner
	explicit map[[2]int]Affine2D
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{explicit: make(map[[2]int]Affine2D)}
}

// AddCorner registers a mesh vertex as a patch corner and returns its id.
func (b *Builder) AddCorner(vertex int) int {
	id := len(b.corners)
	b.corners = append(b.corners, &PatchCorner{ID: id, Vertex: vertex})
	return id
}

// AddChart registers a chart and returns its id.
func (b *Builder) AddChart(spec ChartSpec) int {
	spec.Corners = append([]ParamCoord(nil), spec.Corners...)
	b.charts = append(b.charts, spec)
	return len(b.charts) - 1
}

// AddPatch registers a patch and returns its id. A nil neighbors slice is
// filled in from the shared edges at Build time.
func (b *Builder) AddPatch(faces, corners, edges, neighbors []int) int {
	id := len(b.patches)
	b.patches = append(b.patches, &Patch{
		ID:        id,
		Faces:     append([]int(nil), faces...),
		Corners:   append([]int(nil), corners...),
		Edges:     append([]int(nil), edges...),
		Neighbors: append([]int(nil), neighbors...),
	})
	return id
}

// AddEdge registers a patch edge and returns its id.
func (b *Builder) AddEdge(corners [2]int, path, patches []int) int {
	id := len(b.edges)
	b.edges = append(b.edges, &PatchEdge{
		ID:      id,
		Corners: corners,
		Path:    append([]int(nil), path...),
		Patches: append([]int(nil), patches...),
	})
	return id
}

// SetTransition records an explicit transition. Its inverse is registered
// automatically unless set explicitly as well. Explicit transitions take
// precedence over ones derived from shared edges.
func (b *Builder) SetTransition(from, to int, t Affine2D) {
	b.explicit[[2]int{from, to}] = t
}

// MergeTransitions copies the explicit transitions of other into b,
// replacing any b already holds for the same chart pair.
func (b *Builder) MergeTransitions(other *Builder) {
	for key, t := range other.explicit {
		b.explicit[key] = t
	}
}

func (b *Builder) hasExplicit(p, q int) bool {
	_, a := b.explicit[[2]int{p, q}]
	_, c := b.explicit[[2]int{q, p}]
	return a || c
}

// Build validates the topology and returns the immutable atlas.
func (b *Builder) Build() (*Atlas, error) {
	result := b.ValidateAll()
	if !result.OK() {
		return nil, &BuildError{Errors: result.Errors}
	}

	a := &Atlas{
		vertexCorner: make(map[int]int, len(b.corners)),
		ambiguous:    make(map[[2]int]bool),
		warnings:     result.Warnings,
	}

	for id, spec := range b.charts {
		c := &Chart{ID: id, Corners: spec.Corners, Range: spec.rangeOrDefault()}
		if spec.Polygon {
			d, err := NewPolygonDomain(spec.Corners)
			if err != nil {
				return nil, &BuildError{Errors: []ValidationError{
					chartError(id, "INVALID_POLYGON", "%v", err),
				}}
			}
			c.Domain = d
		} else {
			c.Domain = RectDomain{Range: c.Range}
		}
		a.charts = append(a.charts, c)
	}

	for _, c := range b.corners {
		cc := *c
		cc.Patches = nil
		a.corners = append(a.corners, &cc)
		a.vertexCorner[c.Vertex] = c.ID
	}
	for _, p := range b.patches {
		for _, c := range p.Corners {
			a.corners[c].Patches = append(a.corners[c].Patches, p.ID)
		}
	}
	for _, c := range a.corners {
		c.Patches = lo.Uniq(c.Patches)
	}

	seams := b.seamNeighbors()
	for _, p := range b.patches {
		pp := *p
		if len(pp.Neighbors) == 0 {
			pp.Neighbors = seams[p.ID]
		}
		pp.Neighbors = lo.Uniq(pp.Neighbors)
		a.patches = append(a.patches, &pp)
	}
	for _, e := range b.edges {
		ee := *e
		a.edges = append(a.edges, &ee)
	}
	for _, pair := range b.ambiguousPairs() {
		a.ambiguous[pair] = true
	}

	a.transitions = newTransitionGraph(len(a.charts), b.directTransitions())
	return a, nil
}

// seamNeighbors lists, per patch, the patches across its two-sided edges.
func (b *Builder) seamNeighbors() map[int][]int {
	out := make(map[int][]int)
	for _, e := range b.edges {
		if len(e.Patches) != 2 {
			continue
		}
		p, q := e.Patches[0], e.Patches[1]
		out[p] = append(out[p], q)
		out[q] = append(out[q], p)
	}
	for id := range out {
		sort.Ints(out[id])
	}
	return out
}

// ambiguousPairs returns the sorted patch pairs sharing more than one edge.
func (b *Builder) ambiguousPairs() [][2]int {
	counts := make(map[[2]int]int)
	for _, e := range b.edges {
		if len(e.Patches) == 2 {
			counts[sortPair(e.Patches[0], e.Patches[1])]++
		}
	}
	pairs := lo.Filter(lo.Keys(counts), func(k [2]int, _ int) bool {
		return counts[k] > 1
	})
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}

// directTransitions collects explicit transitions, their inverses, and the
// similarities derived from the first shared edge of every other adjacent
// pair.
func (b *Builder) directTransitions() map[[2]int]Affine2D {
	direct := make(map[[2]int]Affine2D)
	for key, t := range b.explicit {
		direct[key] = t
	}
	for key, t := range b.explicit {
		back := [2]int{key[1], key[0]}
		if _, ok := direct[back]; ok {
			continue
		}
		inv, _ := t.Inverse()
		direct[back] = inv
	}

	for _, e := range b.edges {
		if len(e.Patches) != 2 {
			continue
		}
		p, q := e.Patches[0], e.Patches[1]
		if _, ok := direct[[2]int{p, q}]; ok {
			continue
		}
		t, err := b.deriveTransition(e)
		if err != nil {
			continue
		}
		inv, ok := t.Inverse()
		if !ok {
			continue
		}
		direct[[2]int{p, q}] = t
		direct[[2]int{q, p}] = inv
	}
	return direct
}

// deriveTransition maps the edge's corner coordinates in the first patch's
// chart onto the same corners in the second patch's chart.
func (b *Builder) deriveTransition(e *PatchEdge) (Affine2D, error) {
	p, q := e.Patches[0], e.Patches[1]
	pc0, err := b.cornerCoord(p, e.Corners[0])
	if err != nil {
		return Affine2D{}, err
	}
	pc1, err := b.cornerCoord(p, e.Corners[1])
	if err != nil {
		return Affine2D{}, err
	}
	qc0, err := b.cornerCoord(q, e.Corners[0])
	if err != nil {
		return Affine2D{}, err
	}
	qc1, err := b.cornerCoord(q, e.Corners[1])
	if err != nil {
		return Affine2D{}, err
	}
	t, ok := SimilarityFromSegments(pc0, pc1, qc0, qc1)
	if !ok {
		return Affine2D{}, fmt.Errorf("corners of the shared edge coincide in chart %d", p)
	}
	return t, nil
}

// cornerCoord returns the coordinate chart patch assigns to a corner.
func (b *Builder) cornerCoord(patch, corner int) (ParamCoord, error) {
	if patch < 0 || patch >= len(b.patches) || patch >= len(b.charts) {
		return ParamCoord{}, fmt.Errorf("patch %d does not exist", patch)
	}
	for i, c := range b.patches[patch].Corners {
		if c == corner && i < len(b.charts[patch].Corners) {
			return b.charts[patch].Corners[i], nil
		}
	}
	return ParamCoord{}, fmt.Errorf("corner %d is not a corner of patch %d", corner, patch)
}
