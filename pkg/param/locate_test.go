package param

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/chartparam/pkg/atlas"
	"github.com/chazu/chartparam/pkg/scene"
)

// locateSession parameterizes a 3x1.5 strip cut into two square charts.
func locateSession(t *testing.T) *Session {
	t.Helper()
	spec := scene.GridSpec{NX: 4, NY: 2, ChartsX: 2, ChartsY: 1, Width: 3, Height: 1.5}
	sc, err := scene.Grid(spec)
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	s, _, err := BuildAndCompute(sc.Mesh, sc.Atlas, DefaultOptions())
	if err != nil {
		t.Fatalf("BuildAndCompute: %v", err)
	}
	return s
}

func vecEqual(a, b mgl64.Vec3) bool {
	return almostEqual(a.X(), b.X()) && almostEqual(a.Y(), b.Y()) && almostEqual(a.Z(), b.Z())
}

func TestFindCorrespondingOnSurface(t *testing.T) {
	s := locateSession(t)

	tests := []struct {
		name   string
		query  atlas.ChartParamCoord
		target int
		status LocateStatus
		point  mgl64.Vec3
	}{
		{
			name:   "inside own chart",
			query:  atlas.ChartParamCoord{Chart: 0, Coord: atlas.ParamCoord{S: 0.5, T: 0.5}},
			target: 0,
			status: LocateFound,
			point:  mgl64.Vec3{0.75, 0.75, 0},
		},
		{
			name:   "into neighboring chart",
			query:  atlas.ChartParamCoord{Chart: 0, Coord: atlas.ParamCoord{S: 1.5, T: 0.5}},
			target: 1,
			status: LocateFound,
			point:  mgl64.Vec3{2.25, 0.75, 0},
		},
		{
			name:   "on the seam",
			query:  atlas.ChartParamCoord{Chart: 1, Coord: atlas.ParamCoord{S: 0, T: 1}},
			target: 1,
			status: LocateFound,
			point:  mgl64.Vec3{1.5, 1.5, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, status := s.FindCorrespondingInChart(tt.query, tt.target)
			if status != tt.status {
				t.Fatalf("status = %s, want %s", status, tt.status)
			}
			if got := s.SurfacePoint(sc); !vecEqual(got, tt.point) {
				t.Errorf("SurfacePoint = %v, want %v", got, tt.point)
			}
		})
	}
}

func TestFindCorrespondingNearestAndMiss(t *testing.T) {
	s := locateSession(t)

	sc, status := s.FindCorrespondingOnSurface(atlas.ChartParamCoord{Chart: 0, Coord: atlas.ParamCoord{S: 5, T: 5}})
	if status != LocateNearest {
		t.Errorf("status = %s, want nearest", status)
	}
	if sc.Face < 0 || sc.Face >= s.Mesh().FaceCount() {
		t.Errorf("nearest face = %d", sc.Face)
	}

	if _, status := s.FindCorrespondingInChart(atlas.ChartParamCoord{Chart: 0}, 7); status != LocateMiss {
		t.Errorf("status = %s, want miss", status)
	}
}

func TestLocateVertexRoundTrip(t *testing.T) {
	s := locateSession(t)
	m := s.Mesh()
	for v := 0; v < m.VertexCount(); v++ {
		sc, status := s.FindCorrespondingOnSurface(s.VertexChartCoord(v))
		if status != LocateFound {
			t.Errorf("vertex %d: status = %s", v, status)
			continue
		}
		if got := s.SurfacePoint(sc); !vecEqual(got, m.Coord(v)) {
			t.Errorf("vertex %d: SurfacePoint = %v, want %v", v, got, m.Coord(v))
		}
	}
}

func TestChartVertices(t *testing.T) {
	s := locateSession(t)
	total := 0
	for c := 0; c < s.Atlas().ChartCount(); c++ {
		for _, v := range s.ChartVertices(c) {
			if s.VertexChart(v) != c {
				t.Errorf("vertex %d listed under chart %d, owned by %d", v, c, s.VertexChart(v))
			}
			total++
		}
	}
	if total != s.Mesh().VertexCount() {
		t.Errorf("%d vertices listed, want %d", total, s.Mesh().VertexCount())
	}
	if s.ChartVertices(-1) != nil {
		t.Error("ChartVertices(-1) should be nil")
	}
}

func TestLocateStatusString(t *testing.T) {
	for status, want := range map[LocateStatus]string{
		LocateMiss:       "miss",
		LocateFound:      "found",
		LocateNearest:    "nearest",
		LocateStatus(42): "LocateStatus(42)",
	} {
		if got := status.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(status), got, want)
		}
	}
}
