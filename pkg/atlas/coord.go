package atlas

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// ParamCoord is a point (s, t) in some chart's parameter frame. It carries
// no chart id; pair it with one through ChartParamCoord.
type ParamCoord struct {
	S float64 `json:"s"`
	T float64 `json:"t"`
}

// Vec returns the coordinate as a planar vector.
func (p ParamCoord) Vec() mgl64.Vec2 {
	return mgl64.Vec2{p.S, p.T}
}

// Axis returns S for st == 0 and T otherwise.
func (p ParamCoord) Axis(st int) float64 {
	if st == 0 {
		return p.S
	}
	return p.T
}

// Lerp interpolates between p and q by lambda.
func (p ParamCoord) Lerp(q ParamCoord, lambda float64) ParamCoord {
	return ParamCoord{
		S: (1-lambda)*p.S + lambda*q.S,
		T: (1-lambda)*p.T + lambda*q.T,
	}
}

func (p ParamCoord) String() string {
	return fmt.Sprintf("(%.6g, %.6g)", p.S, p.T)
}

// FromVec converts a planar vector into a ParamCoord.
func FromVec(v mgl64.Vec2) ParamCoord {
	return ParamCoord{S: v[0], T: v[1]}
}

// ChartParamCoord is a parameter position disambiguated by its chart.
type ChartParamCoord struct {
	Chart int        `json:"chart"`
	Coord ParamCoord `json:"coord"`
}
