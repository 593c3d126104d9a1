package bake_test

import (
	"math"
	"testing"

	"github.com/chazu/chartparam/pkg/atlas"
	"github.com/chazu/chartparam/pkg/bake"
	"github.com/chazu/chartparam/pkg/mesh"
	"github.com/chazu/chartparam/pkg/param"
	"github.com/chazu/chartparam/pkg/scene"
)

// computeGrid parameterizes a flat 2x2-cell grid cut into two charts.
func computeGrid(t *testing.T) *param.Session {
	t.Helper()
	sc, err := scene.Grid(scene.GridSpec{NX: 2, NY: 2, ChartsX: 2, ChartsY: 1, Width: 2, Height: 1})
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	opts := param.DefaultOptions()
	opts.FaceRule = param.FaceRulePlurality
	s, _, err := param.BuildAndCompute(sc.Mesh, sc.Atlas, opts)
	if err != nil {
		t.Fatalf("BuildAndCompute: %v", err)
	}
	return s
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) <= 1e-6
}

func checkParts(t *testing.T, s *param.Session, parts []*bake.Part) {
	t.Helper()
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}
	total := 0
	for i, p := range parts {
		if p.Chart != i {
			t.Errorf("part %d has chart %d", i, p.Chart)
		}
		if len(p.Faces) != p.TriangleCount() {
			t.Errorf("part %d: %d faces for %d triangles", i, len(p.Faces), p.TriangleCount())
		}
		if len(p.Normals) != len(p.Positions) || len(p.UVs)/2 != p.VertexCount() {
			t.Errorf("part %d: buffer lengths disagree", i)
		}
		for tri, f := range p.Faces {
			if s.FaceChart(f) != p.Chart {
				t.Errorf("face %d in part %d has chart %d", f, p.Chart, s.FaceChart(f))
			}
			want := s.FaceVertexCoords(f)
			for k := 0; k < 3; k++ {
				idx := p.Indices[3*tri+k]
				if !near(p.UVs[2*idx], float32(want[k].S)) || !near(p.UVs[2*idx+1], float32(want[k].T)) {
					t.Errorf("face %d corner %d: uv (%v, %v), want %v",
						f, k, p.UVs[2*idx], p.UVs[2*idx+1], want[k])
				}
			}
		}
		for v := 0; v < p.VertexCount(); v++ {
			if !near(p.Normals[3*v], 0) || !near(p.Normals[3*v+1], 0) || !near(p.Normals[3*v+2], 1) {
				t.Errorf("part %d vertex %d normal = %v", i, v, p.Normals[3*v:3*v+3])
			}
		}
		total += p.TriangleCount()
	}
	if total != s.Mesh().FaceCount() {
		t.Errorf("%d triangles baked, mesh has %d faces", total, s.Mesh().FaceCount())
	}
}

func TestBakeFlat(t *testing.T) {
	s := computeGrid(t)
	parts, err := bake.Bake(s, bake.NormalsFlat)
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	checkParts(t, s, parts)
	for _, p := range parts {
		if p.VertexCount() != 3*p.TriangleCount() {
			t.Errorf("chart %d: %d vertices for %d flat triangles", p.Chart, p.VertexCount(), p.TriangleCount())
		}
	}
}

func TestBakeSmooth(t *testing.T) {
	s := computeGrid(t)
	parts, err := bake.Bake(s, bake.NormalsSmooth)
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	checkParts(t, s, parts)
	for _, p := range parts {
		if p.VertexCount() >= 3*p.TriangleCount() {
			t.Errorf("chart %d: %d vertices for %d triangles, want shared vertices",
				p.Chart, p.VertexCount(), p.TriangleCount())
		}
	}
}

func TestBakeUnknownMode(t *testing.T) {
	s := computeGrid(t)
	if _, err := bake.Bake(s, "gouraud"); err == nil {
		t.Error("expected error for unknown normal mode")
	}
}

// unresolved is a Source whose faces have no chart.
type unresolved struct{ m *mesh.Mesh }

func (u unresolved) Mesh() *mesh.Mesh { return u.m }
func (u unresolved) FaceChart(int) int { return -1 }
func (u unresolved) FaceVertexCoords(int) [3]atlas.ParamCoord { return [3]atlas.ParamCoord{} }

func TestBakeRejectsUnresolvedFaces(t *testing.T) {
	s := computeGrid(t)
	if _, err := bake.Bake(unresolved{s.Mesh()}, bake.NormalsFlat); err == nil {
		t.Error("expected error for faces without a chart")
	}
}
