// Package geom holds the small planar and spatial helpers shared by the
// mesh, atlas and parameterization packages.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// degenerateArea is the smallest doubled triangle area treated as non-zero.
const degenerateArea = 1e-14

// Cross2 returns the scalar 2-D cross product a.x*b.y - a.y*b.x.
func Cross2(a, b mgl64.Vec2) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// SignedArea returns the signed area of triangle (a, b, c).
// Counter-clockwise triangles have positive area.
func SignedArea(a, b, c mgl64.Vec2) float64 {
	return 0.5 * Cross2(b.Sub(a), c.Sub(a))
}

// Barycentric returns the weights (wa, wb, wc) of p against triangle (a, b, c)
// such that p = wa*a + wb*b + wc*c and wa + wb + wc = 1. Weights outside
// [0,1] mean p lies outside the triangle. ok is false for a degenerate
// triangle.
func Barycentric(a, b, c, p mgl64.Vec2) (w [3]float64, ok bool) {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)

	denom := Cross2(v0, v1)
	if math.Abs(denom) < degenerateArea {
		return w, false
	}
	w[1] = Cross2(v2, v1) / denom
	w[2] = Cross2(v0, v2) / denom
	w[0] = 1 - w[1] - w[2]
	return w, true
}

// BarycentricDeviation measures how far weights lie outside [0,1]: the sum of
// each weight's distance to that interval. Zero means the point is inside.
func BarycentricDeviation(w [3]float64) float64 {
	var d float64
	for _, x := range w {
		if x < 0 {
			d -= x
		} else if x > 1 {
			d += x - 1
		}
	}
	return d
}

// InTriangle reports whether all weights lie in [0,1] within tol.
func InTriangle(w [3]float64, tol float64) bool {
	for _, x := range w {
		if x < -tol || x > 1+tol {
			return false
		}
	}
	return true
}

// Angle2 returns the angle in radians between two planar vectors.
// A zero-length vector yields 0.
func Angle2(a, b mgl64.Vec2) float64 {
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return 0
	}
	return math.Acos(clamp(a.Dot(b)/(la*lb), -1, 1))
}

// Angle3 returns the angle in radians between two spatial vectors.
// A zero-length vector yields 0.
func Angle3(a, b mgl64.Vec3) float64 {
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return 0
	}
	return math.Acos(clamp(a.Dot(b)/(la*lb), -1, 1))
}

// CornerAngles2 returns the interior angle at each corner of a planar triangle.
func CornerAngles2(p [3]mgl64.Vec2) [3]float64 {
	var out [3]float64
	for k := 0; k < 3; k++ {
		out[k] = Angle2(p[(k+1)%3].Sub(p[k]), p[(k+2)%3].Sub(p[k]))
	}
	return out
}

// CornerAngles3 returns the interior angle at each corner of a spatial triangle.
func CornerAngles3(p [3]mgl64.Vec3) [3]float64 {
	var out [3]float64
	for k := 0; k < 3; k++ {
		out[k] = Angle3(p[(k+1)%3].Sub(p[k]), p[(k+2)%3].Sub(p[k]))
	}
	return out
}

// AngleDistortion is the root of the summed squared differences between a
// triangle's spatial corner angles and its planar corner angles.
func AngleDistortion(spatial [3]mgl64.Vec3, planar [3]mgl64.Vec2) float64 {
	a3 := CornerAngles3(spatial)
	a2 := CornerAngles2(planar)
	var sum float64
	for k := 0; k < 3; k++ {
		d := a3[k] - a2[k]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
