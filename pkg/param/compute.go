package param

import (
	"sort"

	"github.com/samber/lo"

	"github.com/chazu/chartparam/pkg/atlas"
	"github.com/chazu/chartparam/pkg/mesh"
)

// Report collects the diagnostics of a Compute run. None of them stop the
// computation.
type Report struct {
	SessionID    string `json:"session_id"`
	Rounds       int    `json:"rounds"`
	FreeVertices int    `json:"free_vertices"`
	Unknowns     int    `json:"unknowns"`
	// AdjustedPerRound counts the vertices relaxation moved after each
	// round but the last.
	AdjustedPerRound       []int                   `json:"adjusted_per_round"`
	ForcedBoundaryVertices []int                   `json:"forced_boundary_vertices"`
	OutRangeVertices       []int                   `json:"out_range_vertices"`
	UnsetLayoutFaces       []int                   `json:"unset_layout_faces"`
	FlippedFaces           []int                   `json:"flipped_faces"`
	Distortion             Distortion              `json:"distortion"`
	Warnings               []atlas.ValidationError `json:"warnings,omitempty"`
}

// Compute parameterizes m over a: initial layout, then Rounds rounds of
// boundary fixing and solving with relaxation in between, then face layout
// and texture-coordinate emission into m.
func Compute(m *mesh.Mesh, a *atlas.Atlas, opts Options) (*Session, *Report, error) {
	s, err := NewSession(m, a, opts)
	if err != nil {
		return nil, nil, err
	}
	lap, err := m.Laplacian(opts.Laplacian)
	if err != nil {
		return nil, nil, &InputError{Reason: "laplacian", Err: err}
	}

	rep := &Report{
		SessionID:    s.ID,
		Rounds:       opts.Rounds,
		FreeVertices: s.freeCount,
		Unknowns:     2 * s.freeCount,
		Warnings:     a.Warnings(),
	}

	s.AssignInitialLayout()
	for round := 0; round < opts.Rounds; round++ {
		s.round = round
		rep.ForcedBoundaryVertices = append(rep.ForcedBoundaryVertices, s.FixBoundaryValues()...)
		if err := s.Solve(lap); err != nil {
			return nil, nil, err
		}
		if round < opts.Rounds-1 {
			rep.AdjustedPerRound = append(rep.AdjustedPerRound, s.AdjustPatchBoundary().Reassigned())
		}
	}
	rep.ForcedBoundaryVertices = lo.Uniq(rep.ForcedBoundaryVertices)
	sort.Ints(rep.ForcedBoundaryVertices)

	rep.UnsetLayoutFaces = s.ResetFaceChartLayout()
	s.SetMeshFaceTextureCoord()
	rep.OutRangeVertices = s.OutRangeVertices()
	s.SetChartVertices()
	rep.FlippedFaces = s.CheckFlippedTriangles()
	rep.Distortion = s.AngleDistortion()

	s.log.Printf("done: %d free vertices, %d out of range, %d unset faces, %d flipped faces",
		rep.FreeVertices, len(rep.OutRangeVertices), len(rep.UnsetLayoutFaces), len(rep.FlippedFaces))
	return s, rep, nil
}

// BuildAndCompute builds the atlas and runs Compute. A rejected atlas is
// reported as an InputError carrying the validation findings.
func BuildAndCompute(m *mesh.Mesh, b *atlas.Builder, opts Options) (*Session, *Report, error) {
	if b == nil {
		return nil, nil, inputErrorf("chart atlas is absent")
	}
	a, err := b.Build()
	if err != nil {
		return nil, nil, atlasInputError(err)
	}
	return Compute(m, a, opts)
}

// OutRangeVertices returns the vertices lying outside their chart's domain.
func (s *Session) OutRangeVertices() []int {
	var out []int
	for v, c := range s.vertChart {
		if c >= 0 && !s.inRange(c, s.vertCoord[v]) {
			out = append(out, v)
		}
	}
	return out
}
