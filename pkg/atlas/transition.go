package atlas

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Affine2D maps a parameter coordinate from one chart's frame to another's:
//
//	s' = a*s + b*t + c
//	t' = d*s + e*t + f
//
// It is stored as a homogeneous 3x3 matrix.
type Affine2D struct {
	m mgl64.Mat3
}

// Identity is the transition of a chart to itself.
var Identity = Affine2D{m: mgl64.Ident3()}

// NewAffine2D builds a map from its two rows.
func NewAffine2D(a, b, c, d, e, f float64) Affine2D {
	return Affine2D{m: mgl64.Mat3FromRows(
		mgl64.Vec3{a, b, c},
		mgl64.Vec3{d, e, f},
		mgl64.Vec3{0, 0, 1},
	)}
}

// Translation returns the map p -> p + (ds, dt).
func Translation(ds, dt float64) Affine2D {
	return NewAffine2D(1, 0, ds, 0, 1, dt)
}

// Row returns the coefficients (a, b, c) producing axis st (0 = s, 1 = t).
func (t Affine2D) Row(st int) (a, b, c float64) {
	return t.m.At(st, 0), t.m.At(st, 1), t.m.At(st, 2)
}

// Coefficients returns the six coefficients in row order.
func (t Affine2D) Coefficients() [6]float64 {
	return [6]float64{
		t.m.At(0, 0), t.m.At(0, 1), t.m.At(0, 2),
		t.m.At(1, 0), t.m.At(1, 1), t.m.At(1, 2),
	}
}

// Apply maps p through the transition.
func (t Affine2D) Apply(p ParamCoord) ParamCoord {
	r := t.m.Mul3x1(mgl64.Vec3{p.S, p.T, 1})
	return ParamCoord{S: r[0], T: r[1]}
}

// Then returns the map that applies t first and next afterwards.
func (t Affine2D) Then(next Affine2D) Affine2D {
	return Affine2D{m: next.m.Mul3(t.m)}
}

// Inverse returns the inverse map. ok is false for a singular linear part.
func (t Affine2D) Inverse() (inv Affine2D, ok bool) {
	if math.Abs(t.m.Det()) < 1e-14 {
		return Affine2D{}, false
	}
	return Affine2D{m: t.m.Inv()}, true
}

// ApproxEqual compares all coefficients within eps.
func (t Affine2D) ApproxEqual(o Affine2D, eps float64) bool {
	a, b := t.Coefficients(), o.Coefficients()
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func (t Affine2D) String() string {
	c := t.Coefficients()
	return fmt.Sprintf("[%.6g %.6g %.6g; %.6g %.6g %.6g]", c[0], c[1], c[2], c[3], c[4], c[5])
}

// SimilarityFromSegments returns the orientation-preserving similarity that
// sends p0 to q0 and p1 to q1. ok is false when p0 and p1 coincide.
func SimilarityFromSegments(p0, p1, q0, q1 ParamCoord) (Affine2D, bool) {
	zp0, zp1 := complex(p0.S, p0.T), complex(p1.S, p1.T)
	zq0, zq1 := complex(q0.S, q0.T), complex(q1.S, q1.T)
	if cmplx.Abs(zp1-zp0) < 1e-14 {
		return Affine2D{}, false
	}
	alpha := (zq1 - zq0) / (zp1 - zp0)
	beta := zq0 - alpha*zp0
	return NewAffine2D(
		real(alpha), -imag(alpha), real(beta),
		imag(alpha), real(alpha), imag(beta),
	), true
}

// TransitionGraph stores a transition for every ordered pair of charts in
// the same connected component of the chart adjacency graph.
type TransitionGraph struct {
	direct map[[2]int]Affine2D
	all    map[[2]int]Affine2D
}

// newTransitionGraph closes the direct edges over composition: from every
// chart a breadth-first walk composes the maps along the walk.
func newTransitionGraph(chartCount int, direct map[[2]int]Affine2D) *TransitionGraph {
	adj := make([][]int, chartCount)
	for key := range direct {
		adj[key[0]] = append(adj[key[0]], key[1])
	}
	for c := range adj {
		sort.Ints(adj[c])
	}

	all := make(map[[2]int]Affine2D, len(direct))
	for src := 0; src < chartCount; src++ {
		all[[2]int{src, src}] = Identity
		queue := []int{src}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			toCur := all[[2]int{src, cur}]
			for _, nb := range adj[cur] {
				key := [2]int{src, nb}
				if _, seen := all[key]; seen {
					continue
				}
				all[key] = toCur.Then(direct[[2]int{cur, nb}])
				queue = append(queue, nb)
			}
		}
	}
	// The walks from two charts may take different paths between them, and
	// those paths only agree when every cycle composes to the identity.
	// Pin each descending pair to the inverse of its ascending partner.
	for key := range all {
		if key[0] <= key[1] {
			continue
		}
		if inv, ok := all[[2]int{key[1], key[0]}].Inverse(); ok {
			all[key] = inv
		}
	}
	return &TransitionGraph{direct: direct, all: all}
}

// Lookup returns the transition from one chart to another.
func (g *TransitionGraph) Lookup(from, to int) (Affine2D, bool) {
	if from == to {
		return Identity, true
	}
	t, ok := g.all[[2]int{from, to}]
	return t, ok
}

// Direct reports whether a transition between two charts was given or
// derived from a shared edge rather than composed.
func (g *TransitionGraph) Direct(from, to int) bool {
	_, ok := g.direct[[2]int{from, to}]
	return ok
}
