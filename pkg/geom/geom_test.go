package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const float64EqualityThreshold = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= float64EqualityThreshold
}

func TestBarycentric(t *testing.T) {
	a := mgl64.Vec2{0, 0}
	b := mgl64.Vec2{1, 0}
	c := mgl64.Vec2{0, 1}

	tests := []struct {
		name   string
		p      mgl64.Vec2
		want   [3]float64
		inside bool
	}{
		{"vertex a", mgl64.Vec2{0, 0}, [3]float64{1, 0, 0}, true},
		{"vertex b", mgl64.Vec2{1, 0}, [3]float64{0, 1, 0}, true},
		{"centroid", mgl64.Vec2{1.0 / 3, 1.0 / 3}, [3]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, true},
		{"edge midpoint", mgl64.Vec2{0.5, 0.5}, [3]float64{0, 0.5, 0.5}, true},
		{"outside", mgl64.Vec2{1, 1}, [3]float64{-1, 1, 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, ok := Barycentric(a, b, c, tt.p)
			if !ok {
				t.Fatal("Barycentric reported degenerate triangle")
			}
			for k := range w {
				if !almostEqual(w[k], tt.want[k]) {
					t.Errorf("w[%d] = %f, want %f", k, w[k], tt.want[k])
				}
			}
			if !almostEqual(w[0]+w[1]+w[2], 1) {
				t.Errorf("weights sum to %f, want 1", w[0]+w[1]+w[2])
			}
			if got := InTriangle(w, 1e-9); got != tt.inside {
				t.Errorf("InTriangle = %v, want %v", got, tt.inside)
			}
		})
	}
}

func TestBarycentricDegenerate(t *testing.T) {
	_, ok := Barycentric(mgl64.Vec2{0, 0}, mgl64.Vec2{1, 1}, mgl64.Vec2{2, 2}, mgl64.Vec2{0.5, 0.5})
	if ok {
		t.Error("collinear triangle should be degenerate")
	}
}

func TestBarycentricDeviation(t *testing.T) {
	if d := BarycentricDeviation([3]float64{0.2, 0.3, 0.5}); d != 0 {
		t.Errorf("inside deviation = %f, want 0", d)
	}
	if d := BarycentricDeviation([3]float64{-0.25, 1.5, -0.25}); !almostEqual(d, 1.0) {
		t.Errorf("outside deviation = %f, want 1", d)
	}
}

func TestSignedArea(t *testing.T) {
	ccw := SignedArea(mgl64.Vec2{0, 0}, mgl64.Vec2{1, 0}, mgl64.Vec2{0, 1})
	cw := SignedArea(mgl64.Vec2{0, 0}, mgl64.Vec2{0, 1}, mgl64.Vec2{1, 0})
	if !almostEqual(ccw, 0.5) || !almostEqual(cw, -0.5) {
		t.Errorf("SignedArea ccw=%f cw=%f, want 0.5 and -0.5", ccw, cw)
	}
}

func TestAngleDistortion(t *testing.T) {
	spatial := [3]mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}

	same := [3]mgl64.Vec2{{0, 0}, {2, 0}, {0, 2}}
	if d := AngleDistortion(spatial, same); !almostEqual(d, 0) {
		t.Errorf("similar triangle distortion = %f, want 0", d)
	}

	skewed := [3]mgl64.Vec2{{0, 0}, {1, 0}, {1, 1}}
	if d := AngleDistortion(spatial, skewed); d <= 0.1 {
		t.Errorf("skewed triangle distortion = %f, want clearly positive", d)
	}
}

func TestAngleZeroVector(t *testing.T) {
	if a := Angle3(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}); a != 0 {
		t.Errorf("Angle3 with zero vector = %f, want 0", a)
	}
	if a := Angle2(mgl64.Vec2{1, 0}, mgl64.Vec2{0, 1}); !almostEqual(a, math.Pi/2) {
		t.Errorf("Angle2 = %f, want pi/2", a)
	}
}
