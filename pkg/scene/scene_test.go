package scene

import (
	"math"
	"testing"

	"github.com/chazu/chartparam/pkg/atlas"
)

func TestGridSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    GridSpec
		wantErr bool
	}{
		{"ok", GridSpec{NX: 4, NY: 2, ChartsX: 2, ChartsY: 1, Width: 1, Height: 1}, false},
		{"no cells", GridSpec{NX: 0, NY: 2, ChartsX: 1, ChartsY: 1, Width: 1, Height: 1}, true},
		{"no charts", GridSpec{NX: 2, NY: 2, ChartsX: 0, ChartsY: 1, Width: 1, Height: 1}, true},
		{"uneven", GridSpec{NX: 3, NY: 2, ChartsX: 2, ChartsY: 1, Width: 1, Height: 1}, true},
		{"flat", GridSpec{NX: 2, NY: 2, ChartsX: 1, ChartsY: 1, Width: 1, Height: 0}, true},
		{"nan extent", GridSpec{NX: 2, NY: 2, ChartsX: 1, ChartsY: 1, Width: math.NaN(), Height: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGridTopology(t *testing.T) {
	spec := GridSpec{NX: 4, NY: 2, ChartsX: 2, ChartsY: 1, Width: 4, Height: 2}
	sc, err := Grid(spec)
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	if sc.Mesh.VertexCount() != 15 || sc.Mesh.FaceCount() != 16 {
		t.Fatalf("got %d vertices, %d faces", sc.Mesh.VertexCount(), sc.Mesh.FaceCount())
	}
	if p := sc.Mesh.Coord(spec.VertexIndex(3, 1)); p.X() != 3 || p.Y() != 1 || p.Z() != 0 {
		t.Errorf("vertex (3,1) at %v", p)
	}

	a, err := sc.Atlas.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if a.ChartCount() != 2 {
		t.Fatalf("charts = %d, want 2", a.ChartCount())
	}
	// 3 corners per row, 2 rows.
	if len(a.Corners()) != 6 {
		t.Errorf("corners = %d, want 6", len(a.Corners()))
	}
	// 2 bottom + 2 top + 3 vertical.
	if len(a.Edges()) != 7 {
		t.Errorf("edges = %d, want 7", len(a.Edges()))
	}
	seams := 0
	for _, e := range a.Edges() {
		if !e.IsBoundary() {
			seams++
			if len(e.Path) != 3 {
				t.Errorf("seam path = %v, want 3 vertices", e.Path)
			}
		}
	}
	if seams != 1 {
		t.Errorf("seams = %d, want 1", seams)
	}
	if got := a.Neighbors(0); len(got) != 1 || got[0] != 1 {
		t.Errorf("Neighbors(0) = %v, want [1]", got)
	}
	if n := len(a.Patch(0).Faces); n != 8 {
		t.Errorf("patch 0 has %d faces, want 8", n)
	}

	// The shared edge's corners are (1,0) and (1,1) in chart 0, (0,0) and
	// (0,1) in chart 1.
	p, ok := a.Transform(0, 1, atlas.ParamCoord{S: 0.75, T: 0.25})
	if !ok {
		t.Fatal("no transition 0 -> 1")
	}
	if math.Abs(p.S+0.25) > 1e-12 || math.Abs(p.T-0.25) > 1e-12 {
		t.Errorf("Transform = %v, want (-0.25, 0.25)", p)
	}
}

func TestGridBump(t *testing.T) {
	spec := GridSpec{NX: 2, NY: 2, ChartsX: 1, ChartsY: 1, Width: 1, Height: 1, Bump: 0.5}
	sc, err := Grid(spec)
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	center := sc.Mesh.Coord(spec.VertexIndex(1, 1))
	if math.Abs(center.Z()-0.5) > 1e-12 {
		t.Errorf("center z = %v, want 0.5", center.Z())
	}
	corner := sc.Mesh.Coord(spec.VertexIndex(0, 0))
	if math.Abs(corner.Z()) > 1e-12 {
		t.Errorf("corner z = %v, want 0", corner.Z())
	}
}
