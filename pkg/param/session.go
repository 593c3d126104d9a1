// Package param computes chart-based surface parameterizations. Given a
// triangle mesh and a chart atlas over it, a Session assigns every vertex a
// chart and a coordinate in that chart's frame, repairs vertices that land
// outside their chart's valid domain, resolves one chart per face for
// texture-coordinate output, and maps chart coordinates back to the surface.
//
// Compute runs the whole pipeline. The stage methods on Session are exported
// so callers and tests can drive the pipeline step by step.
package param

import (
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/chazu/chartparam/pkg/atlas"
	"github.com/chazu/chartparam/pkg/mesh"
)

// Session owns the mutable per-vertex and per-face state of one
// parameterization. It is not safe for concurrent use.
type Session struct {
	ID string

	mesh  *mesh.Mesh
	atlas *atlas.Atlas
	opts  Options
	log   *log.Logger

	// Indexed by vertex id.
	vertChart []int
	vertCoord []atlas.ParamCoord
	varIndex  []int // dense variable index, -1 for fixed vertices

	// Indexed by face id.
	faceChart []int

	// Indexed by chart id; nil until SetChartVertices.
	chartVerts [][]int

	freeCount int
	round     int
}

// NewSession validates the inputs and allocates a session. Every vertex
// starts unassigned (chart -1) until AssignInitialLayout.
func NewSession(m *mesh.Mesh, a *atlas.Atlas, opts Options) (*Session, error) {
	if m == nil || m.IsEmpty() {
		return nil, inputErrorf("mesh is absent or empty")
	}
	if a == nil || a.ChartCount() == 0 {
		return nil, inputErrorf("chart atlas is absent or empty")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := checkInput(m, a); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	out := io.Discard
	flags := 0
	if opts.Logger != nil {
		out = opts.Logger.Writer()
		flags = opts.Logger.Flags()
	}

	s := &Session{
		ID:        id,
		mesh:      m,
		atlas:     a,
		opts:      opts,
		log:       log.New(out, fmt.Sprintf("[param %s] ", id[:8]), flags),
		vertChart: make([]int, m.VertexCount()),
		vertCoord: make([]atlas.ParamCoord, m.VertexCount()),
		varIndex:  make([]int, m.VertexCount()),
		faceChart: make([]int, m.FaceCount()),
	}
	for v := range s.vertChart {
		s.vertChart[v] = -1
	}
	for f := range s.faceChart {
		s.faceChart[f] = -1
	}

	// A vertex is a free variable iff it is neither on the mesh boundary
	// nor a chart corner.
	for v := range s.varIndex {
		if m.IsBoundaryVertex(v) || a.IsCornerVertex(v) {
			s.varIndex[v] = -1
			continue
		}
		s.varIndex[v] = s.freeCount
		s.freeCount++
	}
	return s, nil
}

// checkInput verifies that the atlas fits the mesh.
func checkInput(m *mesh.Mesh, a *atlas.Atlas) error {
	nv, nf := m.VertexCount(), m.FaceCount()

	owner := make([]int, nf)
	for f := range owner {
		owner[f] = -1
	}
	for _, p := range a.Patches() {
		for _, f := range p.Faces {
			if f < 0 || f >= nf {
				return inputErrorf("patch %d references face %d, mesh has %d faces", p.ID, f, nf)
			}
			if owner[f] >= 0 {
				return inputErrorf("face %d belongs to patches %d and %d", f, owner[f], p.ID)
			}
			owner[f] = p.ID
		}
	}
	for f, p := range owner {
		if p < 0 {
			return inputErrorf("face %d belongs to no patch", f)
		}
	}

	for _, c := range a.Corners() {
		if c.Vertex >= nv {
			return inputErrorf("corner %d references vertex %d, mesh has %d vertices", c.ID, c.Vertex, nv)
		}
	}

	onBoundaryEdge := make([]bool, nv)
	for _, e := range a.Edges() {
		for k, v := range e.Path {
			if v < 0 || v >= nv {
				return inputErrorf("edge %d path references vertex %d", e.ID, v)
			}
			if k > 0 && !lo.Contains(m.AdjVertices(v), e.Path[k-1]) {
				return inputErrorf("edge %d path steps between non-adjacent vertices %d and %d", e.ID, e.Path[k-1], v)
			}
			if e.IsBoundary() {
				onBoundaryEdge[v] = true
			}
		}
		for _, p := range e.Patches {
			for _, c := range e.Corners {
				if a.CornerIndexInPatch(c, p) < 0 {
					return inputErrorf("edge %d corner %d is not a corner of patch %d", e.ID, c, p)
				}
			}
		}
	}

	for v := 0; v < nv; v++ {
		faces := m.AdjFaces(v)
		if len(faces) == 0 {
			return inputErrorf("vertex %d belongs to no face", v)
		}
		if m.IsBoundaryVertex(v) && !onBoundaryEdge[v] && !a.IsCornerVertex(v) {
			return inputErrorf("boundary vertex %d lies on no boundary patch edge", v)
		}
		charts := lo.Uniq(lo.Map(faces, func(f int, _ int) int { return owner[f] }))
		for i := range charts {
			for j := i + 1; j < len(charts); j++ {
				if _, ok := a.Transition(charts[i], charts[j]); !ok {
					return inputErrorf("charts %d and %d meet at vertex %d without a transition", charts[i], charts[j], v)
				}
			}
		}
	}
	return nil
}

// Mesh returns the mesh being parameterized.
func (s *Session) Mesh() *mesh.Mesh { return s.mesh }

// Atlas returns the chart atlas.
func (s *Session) Atlas() *atlas.Atlas { return s.atlas }

// FreeVertexCount returns the number of vertices solved for.
func (s *Session) FreeVertexCount() int { return s.freeCount }

// IsFree reports whether v is a free variable.
func (s *Session) IsFree(v int) bool { return s.varIndex[v] >= 0 }

// VertexChart returns the chart currently owning vertex v.
func (s *Session) VertexChart(v int) int { return s.vertChart[v] }

// VertexCoord returns v's coordinate in the frame of VertexChart(v).
func (s *Session) VertexCoord(v int) atlas.ParamCoord { return s.vertCoord[v] }

// VertexChartCoord returns v's chart and coordinate together.
func (s *Session) VertexChartCoord(v int) atlas.ChartParamCoord {
	return atlas.ChartParamCoord{Chart: s.vertChart[v], Coord: s.vertCoord[v]}
}

// FaceChart returns the chart resolved for face f.
func (s *Session) FaceChart(f int) int { return s.faceChart[f] }

// SetVertex assigns v a chart and a coordinate in that chart's frame.
func (s *Session) SetVertex(v, chart int, p atlas.ParamCoord) {
	s.vertChart[v] = chart
	s.vertCoord[v] = p
}

// transform maps p between charts. A missing transition leaves p unchanged
// and is logged; NewSession rejects atlases where adjacent charts lack one.
func (s *Session) transform(from, to int, p atlas.ParamCoord) atlas.ParamCoord {
	q, ok := s.atlas.Transform(from, to, p)
	if !ok {
		s.log.Printf("no transition from chart %d to chart %d", from, to)
		return p
	}
	return q
}

// coordIn returns vertex v's coordinate in chart's frame.
func (s *Session) coordIn(v, chart int) atlas.ParamCoord {
	return s.transform(s.vertChart[v], chart, s.vertCoord[v])
}

func (s *Session) inRange(chart int, p atlas.ParamCoord) bool {
	return s.atlas.Chart(chart).InRange(p, s.opts.RangeEpsilon)
}
