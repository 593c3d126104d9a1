// Package atlas describes a chart atlas over a triangle mesh: the charts
// (2-D parameter frames with a valid domain), the patches of mesh faces they
// parameterize, the corner and edge topology between patches, and the affine
// transition maps between adjacent charts.
//
// An Atlas is immutable once built. Construct one with a Builder.
package atlas

// Chart is a 2-D parameter frame. Chart i parameterizes patch i.
type Chart struct {
	ID int
	// Corners lists the corner coordinates in the ring order of the
	// matching patch's Corners.
	Corners []ParamCoord
	Range   Range
	Domain  Domain
}

// InRange reports whether p lies in the chart's valid domain within eps.
func (c *Chart) InRange(p ParamCoord, eps float64) bool {
	return c.Domain.Contains(p, eps)
}

// OutRangeError measures how far p lies outside the valid domain.
func (c *Chart) OutRangeError(p ParamCoord) float64 {
	return c.Domain.OutRangeError(p)
}

// Patch is the group of mesh faces parameterized by the chart of the same id.
type Patch struct {
	ID        int
	Faces     []int
	Corners   []int // PatchCorner ids, ring order
	Edges     []int // PatchEdge ids
	Neighbors []int // neighboring patch ids
}

// PatchEdge is a boundary between one or two patches.
type PatchEdge struct {
	ID      int
	Corners [2]int // bounding PatchCorner ids
	Path    []int  // mesh vertices from Corners[0] to Corners[1]
	Patches []int
}

// IsBoundary reports whether the edge lies on the outer mesh boundary.
func (e *PatchEdge) IsBoundary() bool {
	return len(e.Patches) == 1
}

// PatchCorner is a mesh vertex acting as a corner of one or more patches.
type PatchCorner struct {
	ID      int
	Vertex  int
	Patches []int
}

// Atlas is a validated, immutable chart atlas.
type Atlas struct {
	charts  []*Chart
	patches []*Patch
	edges   []*PatchEdge
	corners []*PatchCorner

	transitions  *TransitionGraph
	vertexCorner map[int]int
	ambiguous    map[[2]int]bool
	warnings     []ValidationError
}

func (a *Atlas) Charts() []*Chart { return a.charts }
func (a *Atlas) Patches() []*Patch { return a.patches }
func (a *Atlas) Edges() []*PatchEdge { return a.edges }
func (a *Atlas) Corners() []*PatchCorner { return a.corners }
func (a *Atlas) ChartCount() int { return len(a.charts) }
func (a *Atlas) Warnings() []ValidationError { return a.warnings }

// Chart returns the chart with the given id, or nil.
func (a *Atlas) Chart(id int) *Chart {
	if id < 0 || id >= len(a.charts) {
		return nil
	}
	return a.charts[id]
}

// Patch returns the patch with the given id, or nil.
func (a *Atlas) Patch(id int) *Patch {
	if id < 0 || id >= len(a.patches) {
		return nil
	}
	return a.patches[id]
}

// Transition returns the map from one chart's frame into another's. ok is
// false when the charts lie in different components of the adjacency graph.
func (a *Atlas) Transition(from, to int) (Affine2D, bool) {
	return a.transitions.Lookup(from, to)
}

// Transform maps p from chart from into chart to.
func (a *Atlas) Transform(from, to int, p ParamCoord) (ParamCoord, bool) {
	if from == to {
		return p, true
	}
	t, ok := a.transitions.Lookup(from, to)
	if !ok {
		return ParamCoord{}, false
	}
	return t.Apply(p), true
}

// HasDirectTransition reports whether two charts share an explicit or
// edge-derived transition.
func (a *Atlas) HasDirectTransition(from, to int) bool {
	return from == to || a.transitions.Direct(from, to)
}

// CornerOfVertex returns the corner id located at a mesh vertex.
func (a *Atlas) CornerOfVertex(v int) (int, bool) {
	c, ok := a.vertexCorner[v]
	return c, ok
}

// IsCornerVertex reports whether v is a patch corner.
func (a *Atlas) IsCornerVertex(v int) bool {
	_, ok := a.vertexCorner[v]
	return ok
}

// CornerIndexInPatch returns the ring index of a corner within a patch, or -1.
func (a *Atlas) CornerIndexInPatch(corner, patch int) int {
	p := a.Patch(patch)
	if p == nil {
		return -1
	}
	for i, c := range p.Corners {
		if c == corner {
			return i
		}
	}
	return -1
}

// IsAmbiguousPair reports whether two patches share more than one edge, in
// which case a single transition cannot be valid along all of them.
func (a *Atlas) IsAmbiguousPair(p, q int) bool {
	return a.ambiguous[sortPair(p, q)]
}

// Neighbors returns the charts adjacent to a chart.
func (a *Atlas) Neighbors(chart int) []int {
	p := a.Patch(chart)
	if p == nil {
		return nil
	}
	return p.Neighbors
}

func sortPair(a, b int) [2]int {
	if a > b {
		return [2]int{b, a}
	}
	return [2]int{a, b}
}
