package atlas

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Compile-time interface checks.
var _ Domain = RectDomain{}
var _ Domain = (*PolygonDomain)(nil)

// Domain is the valid region of a chart's parameter frame.
type Domain interface {
	// Contains reports whether p lies in the domain, widened by eps.
	Contains(p ParamCoord, eps float64) bool
	// OutRangeError is zero inside the domain and grows with the distance
	// of p from it.
	OutRangeError(p ParamCoord) float64
}

// Range is the closed interval a rectangular chart accepts on both axes.
type Range struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// DefaultRange is the unit interval.
var DefaultRange = Range{Lo: 0, Hi: 1}

// RectDomain accepts [Lo,Hi] x [Lo,Hi].
type RectDomain struct {
	Range Range
}

// Contains tests both axes with a non-strict, eps-widened comparison.
func (d RectDomain) Contains(p ParamCoord, eps float64) bool {
	return p.S >= d.Range.Lo-eps && p.S <= d.Range.Hi+eps &&
		p.T >= d.Range.Lo-eps && p.T <= d.Range.Hi+eps
}

// OutRangeError sums, per axis, the squared excess beyond the range and
// returns the square root. An axis inside the range contributes nothing.
func (d RectDomain) OutRangeError(p ParamCoord) float64 {
	var e float64
	for _, v := range [2]float64{p.S, p.T} {
		if v >= d.Range.Hi {
			e += (v - d.Range.Hi) * (v - d.Range.Hi)
		} else if v <= d.Range.Lo {
			e += (v - d.Range.Lo) * (v - d.Range.Lo)
		}
	}
	return math.Sqrt(e)
}

// PolygonDomain accepts the interior of a simple polygon. It is backed by
// an sdfx signed distance field, so the out-of-range error is the exact
// distance to the polygon.
type PolygonDomain struct {
	vertices []ParamCoord
	field    sdf.SDF2
}

// NewPolygonDomain builds a domain from at least three polygon vertices.
func NewPolygonDomain(vertices []ParamCoord) (*PolygonDomain, error) {
	if len(vertices) < 3 {
		return nil, fmt.Errorf("atlas: polygon domain needs 3 or more vertices, got %d", len(vertices))
	}
	pts := make([]v2.Vec, len(vertices))
	for i, p := range vertices {
		pts[i] = v2.Vec{X: p.S, Y: p.T}
	}
	field, err := sdf.Polygon2D(pts)
	if err != nil {
		return nil, fmt.Errorf("atlas: polygon domain: %w", err)
	}
	return &PolygonDomain{
		vertices: append([]ParamCoord(nil), vertices...),
		field:    field,
	}, nil
}

// Vertices returns the polygon outline.
func (d *PolygonDomain) Vertices() []ParamCoord {
	return d.vertices
}

// Contains reports whether the signed distance of p is at most eps.
func (d *PolygonDomain) Contains(p ParamCoord, eps float64) bool {
	return d.field.Evaluate(v2.Vec{X: p.S, Y: p.T}) <= eps
}

// OutRangeError is the positive part of the signed distance.
func (d *PolygonDomain) OutRangeError(p ParamCoord) float64 {
	return math.Max(0, d.field.Evaluate(v2.Vec{X: p.S, Y: p.T}))
}
