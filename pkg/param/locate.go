package param

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/chartparam/pkg/atlas"
	"github.com/chazu/chartparam/pkg/geom"
)

// SurfaceCoord is a point on the mesh: a face and barycentric weights over
// its three vertices.
type SurfaceCoord struct {
	Face int        `json:"face"`
	Bary [3]float64 `json:"bary"`
}

// LocateStatus tells an authoritative hit apart from a best-effort answer.
type LocateStatus int

const (
	LocateMiss    LocateStatus = iota // no face could be evaluated
	LocateFound                       // a face contains the point
	LocateNearest                     // closest face; the point lies outside it
)

func (s LocateStatus) String() string {
	switch s {
	case LocateMiss:
		return "miss"
	case LocateFound:
		return "found"
	case LocateNearest:
		return "nearest"
	default:
		return fmt.Sprintf("LocateStatus(%d)", int(s))
	}
}

// SetChartVertices rebuilds the per-chart vertex membership lists that seed
// point location.
func (s *Session) SetChartVertices() {
	s.chartVerts = make([][]int, s.atlas.ChartCount())
	for v, c := range s.vertChart {
		if c >= 0 {
			s.chartVerts[c] = append(s.chartVerts[c], v)
		}
	}
}

// ChartVertices returns the vertices currently owned by a chart.
func (s *Session) ChartVertices(chart int) []int {
	if s.chartVerts == nil {
		s.SetChartVertices()
	}
	if chart < 0 || chart >= len(s.chartVerts) {
		return nil
	}
	return s.chartVerts[chart]
}

// FindCorrespondingOnSurface locates q in its own chart.
func (s *Session) FindCorrespondingOnSurface(q atlas.ChartParamCoord) (SurfaceCoord, LocateStatus) {
	return s.FindCorrespondingInChart(q, q.Chart)
}

// FindCorrespondingInChart maps q into target's frame and searches the
// faces around target's member vertices for one containing it. The first
// containing face is returned with LocateFound. Without one, the face whose
// barycentric weights deviate least from [0,1] is returned with
// LocateNearest.
func (s *Session) FindCorrespondingInChart(q atlas.ChartParamCoord, target int) (SurfaceCoord, LocateStatus) {
	if s.atlas.Chart(target) == nil {
		return SurfaceCoord{}, LocateMiss
	}
	p, ok := s.atlas.Transform(q.Chart, target, q.Coord)
	if !ok {
		s.log.Printf("locate: no transition from chart %d to chart %d", q.Chart, target)
		return SurfaceCoord{}, LocateMiss
	}
	pv := p.Vec()

	visited := make([]bool, s.mesh.FaceCount())
	best := SurfaceCoord{Face: -1}
	bestDev := math.Inf(1)
	for _, v := range s.ChartVertices(target) {
		for _, f := range s.mesh.AdjFaces(v) {
			if visited[f] {
				continue
			}
			visited[f] = true
			tri, ok := s.planarTriangle(s.mesh.Face(f), target)
			if !ok {
				continue
			}
			w, ok := geom.Barycentric(tri[0], tri[1], tri[2], pv)
			if !ok {
				continue
			}
			if geom.InTriangle(w, s.opts.LocateTolerance) {
				return SurfaceCoord{Face: f, Bary: w}, LocateFound
			}
			if dev := geom.BarycentricDeviation(w); dev < bestDev {
				best, bestDev = SurfaceCoord{Face: f, Bary: w}, dev
			}
		}
	}
	if best.Face < 0 {
		s.log.Printf("locate: chart %d has no usable face for %v", target, p)
		return SurfaceCoord{}, LocateMiss
	}
	s.log.Printf("locate: %v lies outside chart %d, nearest face %d", p, target, best.Face)
	return best, LocateNearest
}

// SurfacePoint interpolates the 3-D position of a surface coordinate.
func (s *Session) SurfacePoint(sc SurfaceCoord) mgl64.Vec3 {
	pts := s.mesh.FaceCoords(sc.Face)
	return pts[0].Mul(sc.Bary[0]).Add(pts[1].Mul(sc.Bary[1])).Add(pts[2].Mul(sc.Bary[2]))
}
