package main

import (
	"math"
	"os"
	"strings"
	"testing"

	"github.com/chazu/chartparam/pkg/atlas"
	"github.com/chazu/chartparam/pkg/param"
)

func readExample(t *testing.T, name string) string {
	t.Helper()
	source, err := os.ReadFile("../../examples/" + name)
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(source)
}

func requireNoErrors(t *testing.T, result Result) {
	t.Helper()
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
}

// TestE2EGridExample exercises the full pipeline: scene script -> engine
// -> atlas -> parameterization -> baked parts.
func TestE2EGridExample(t *testing.T) {
	app := NewApp(param.DefaultOptions())
	result := app.Evaluate(readExample(t, "grid.zy"), nil)
	requireNoErrors(t, result)

	if result.Report == nil {
		t.Fatal("expected a report")
	}
	if len(result.Parts) != 4 {
		t.Fatalf("expected 4 parts, got %d", len(result.Parts))
	}
	triangles := 0
	for _, p := range result.Parts {
		if len(p.Positions) == 0 || len(p.Normals) == 0 || len(p.UVs) == 0 || len(p.Indices) == 0 {
			t.Errorf("chart %d: empty buffers", p.Chart)
		}
		if p.Color == "" {
			t.Errorf("chart %d: no color assigned", p.Chart)
		}
		triangles += p.TriangleCount()
	}
	if triangles != 2*8*8 {
		t.Errorf("baked %d triangles, want %d", triangles, 2*8*8)
	}
	if len(result.Vertices) != 9*9 {
		t.Errorf("got %d vertices, want 81", len(result.Vertices))
	}
	for _, v := range result.Vertices {
		if v.Chart < 0 || v.Chart > 3 {
			t.Errorf("vertex %d has chart %d", v.Vertex, v.Chart)
		}
	}
}

func TestE2EFanExample(t *testing.T) {
	app := NewApp(param.DefaultOptions())
	result := app.Evaluate(readExample(t, "fan.zy"), []atlas.ChartParamCoord{
		{Chart: 0, Coord: atlas.ParamCoord{S: 0.5, T: 0.5}},
	})
	requireNoErrors(t, result)

	center := result.Vertices[4]
	if math.Abs(center.Coord.S-0.5) > 1e-9 || math.Abs(center.Coord.T-0.5) > 1e-9 {
		t.Errorf("center = %v, want (0.5, 0.5)", center.Coord)
	}

	if len(result.Locations) != 1 {
		t.Fatalf("expected 1 location, got %d", len(result.Locations))
	}
	loc := result.Locations[0]
	if loc.Status != "found" {
		t.Fatalf("status = %s, want found", loc.Status)
	}
	want := [3]float64{0.5, 0.5, 0.2}
	for k := range want {
		if math.Abs(loc.Point[k]-want[k]) > 1e-9 {
			t.Errorf("point = %v, want %v", loc.Point, want)
			break
		}
	}
}

func TestE2ETriangleExample(t *testing.T) {
	app := NewApp(param.DefaultOptions())
	result := app.Evaluate(readExample(t, "triangle.zy"), nil)
	requireNoErrors(t, result)

	center := result.Vertices[6]
	if math.Abs(center.Coord.S-1.0/3) > 1e-9 || math.Abs(center.Coord.T-1.0/3) > 1e-9 {
		t.Errorf("center = %v, want (1/3, 1/3)", center.Coord)
	}
	if n := len(result.Report.OutRangeVertices); n != 0 {
		t.Errorf("%d vertices out of range", n)
	}
}

func TestE2EEmptySource(t *testing.T) {
	app := NewApp(param.DefaultOptions())
	result := app.Evaluate("", nil)
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Message, "no mesh") {
		t.Errorf("errors = %v, want a single no-mesh error", result.Errors)
	}
}

func TestE2ESyntaxError(t *testing.T) {
	app := NewApp(param.DefaultOptions())
	result := app.Evaluate("(grid :nx 2", nil)
	if len(result.Errors) == 0 {
		t.Fatal("expected errors for syntax error")
	}
	if result.Report != nil || len(result.Parts) != 0 {
		t.Error("expected no output on syntax error")
	}
}

func TestE2ERejectedAtlas(t *testing.T) {
	source := readExample(t, "fan.zy") + "\n(chart :corners [[0 0] [1 0] [1 1]])\n"
	app := NewApp(param.DefaultOptions())
	result := app.Evaluate(source, nil)
	found := false
	for _, e := range result.Errors {
		if e.Code == "CHART_PATCH_MISMATCH" {
			found = true
		}
	}
	if !found {
		t.Errorf("errors = %v, want CHART_PATCH_MISMATCH", result.Errors)
	}
}

func TestE2ESmoothNormalsNoBake(t *testing.T) {
	app := NewApp(param.DefaultOptions())
	app.bake = false
	result := app.Evaluate(readExample(t, "grid.zy"), nil)
	requireNoErrors(t, result)
	if len(result.Parts) != 0 {
		t.Errorf("expected no parts, got %d", len(result.Parts))
	}

	app = NewApp(param.DefaultOptions())
	app.normals = "smooth"
	result = app.Evaluate(readExample(t, "grid.zy"), nil)
	requireNoErrors(t, result)
	if len(result.Parts) != 4 {
		t.Errorf("expected 4 parts, got %d", len(result.Parts))
	}
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		in      string
		want    atlas.ChartParamCoord
		wantErr bool
	}{
		{"0:0.5,0.5", atlas.ChartParamCoord{Chart: 0, Coord: atlas.ParamCoord{S: 0.5, T: 0.5}}, false},
		{"3: 1 , -2", atlas.ChartParamCoord{Chart: 3, Coord: atlas.ParamCoord{S: 1, T: -2}}, false},
		{"0.5,0.5", atlas.ChartParamCoord{}, true},
		{"0:0.5", atlas.ChartParamCoord{}, true},
		{"x:0,0", atlas.ChartParamCoord{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseQuery(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseQuery(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseQuery(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
