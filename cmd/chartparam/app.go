package main

import (
	"errors"
	"log"

	"github.com/chazu/chartparam/pkg/atlas"
	"github.com/chazu/chartparam/pkg/bake"
	"github.com/chazu/chartparam/pkg/param"
	"github.com/chazu/chartparam/pkg/scene"
)

// colorPalette is a default palette used to assign distinct colors to charts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App runs scene scripts through the parameterization pipeline.
type App struct {
	engine  *scene.Engine
	opts    param.Options
	normals bake.Normals
	bake    bool
}

// PartData is the JSON form of one baked chart.
type PartData struct {
	bake.Part
	Color string `json:"color"`
}

// ErrorData is a JSON-serializable script or pipeline error.
type ErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// LocationData answers one point-location query.
type LocationData struct {
	Query  atlas.ChartParamCoord `json:"query"`
	Status string                `json:"status"`
	Face   int                   `json:"face"`
	Bary   [3]float64            `json:"bary"`
	Point  [3]float64            `json:"point"`
}

// Result is the full output of one run.
type Result struct {
	Report    *param.Report  `json:"report,omitempty"`
	Vertices  []VertexData   `json:"vertices,omitempty"`
	Parts     []PartData     `json:"parts,omitempty"`
	Locations []LocationData `json:"locations,omitempty"`
	Errors    []ErrorData    `json:"errors"`
}

// VertexData is one vertex's chart coordinate.
type VertexData struct {
	Vertex int `json:"vertex"`
	atlas.ChartParamCoord
}

// NewApp creates an App with the given engine options.
func NewApp(opts param.Options) *App {
	return &App{
		engine:  scene.NewEngine(),
		opts:    opts,
		normals: bake.NormalsFlat,
		bake:    true,
	}
}

// Evaluate takes scene source, parameterizes it, and answers the location
// queries against the result.
func (a *App) Evaluate(source string, queries []atlas.ChartParamCoord) Result {
	result := Result{Errors: []ErrorData{}}

	// Step 1: Evaluate the scene script.
	sc, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, ErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, ErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}
	if sc.Mesh == nil {
		result.Errors = append(result.Errors, ErrorData{Message: "scene defines no mesh"})
		return result
	}

	// Step 2: Parameterize.
	s, rep, err := param.BuildAndCompute(sc.Mesh, sc.Atlas, a.opts)
	if err != nil {
		log.Printf("Compute error: %v", err)
		var ie *param.InputError
		if errors.As(err, &ie) && len(ie.Problems) > 0 {
			for _, p := range ie.Problems {
				result.Errors = append(result.Errors, ErrorData{Code: p.Code, Message: p.Error()})
			}
			return result
		}
		result.Errors = append(result.Errors, ErrorData{Message: err.Error()})
		return result
	}
	result.Report = rep
	for v := 0; v < s.Mesh().VertexCount(); v++ {
		result.Vertices = append(result.Vertices, VertexData{Vertex: v, ChartParamCoord: s.VertexChartCoord(v)})
	}

	// Step 3: Bake render buffers per chart.
	if a.bake {
		parts, err := bake.Bake(s, a.normals)
		if err != nil {
			log.Printf("Bake error: %v", err)
			result.Errors = append(result.Errors, ErrorData{Message: "bake failed: " + err.Error()})
			return result
		}
		for _, p := range parts {
			result.Parts = append(result.Parts, PartData{
				Part:  *p,
				Color: colorPalette[p.Chart%len(colorPalette)],
			})
		}
	}

	// Step 4: Point location.
	for _, q := range queries {
		loc := LocationData{Query: q, Face: -1}
		sc, status := s.FindCorrespondingOnSurface(q)
		loc.Status = status.String()
		if status != param.LocateMiss {
			p := s.SurfacePoint(sc)
			loc.Face, loc.Bary, loc.Point = sc.Face, sc.Bary, [3]float64{p.X(), p.Y(), p.Z()}
		}
		result.Locations = append(result.Locations, loc)
	}
	return result
}
