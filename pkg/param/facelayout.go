package param

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"

	"github.com/chazu/chartparam/pkg/atlas"
	"github.com/chazu/chartparam/pkg/geom"
)

// ResetFaceChartLayout picks a common chart per face. Each vertex's chart
// is tried in vertex order and the first one whose domain holds all three
// transformed vertex coordinates wins. Otherwise the face takes the chart
// held by most of its vertices and is reported in the returned list.
func (s *Session) ResetFaceChartLayout() []int {
	var unset []int
	for f := 0; f < s.mesh.FaceCount(); f++ {
		verts := s.mesh.Face(f)
		chosen := -1
		for _, c := range s.vertexCharts(verts) {
			if s.faceInChart(verts, c) {
				chosen = c
				break
			}
		}
		if chosen < 0 {
			chosen = plurality(3, func(i int) int { return s.vertChart[verts[i]] })
			unset = append(unset, f)
		}
		s.faceChart[f] = chosen
	}
	if len(unset) > 0 {
		s.log.Printf("%d faces have no chart holding all their vertices", len(unset))
	}
	return unset
}

// vertexCharts returns the distinct charts of a face's vertices in vertex
// order.
func (s *Session) vertexCharts(verts [3]int) []int {
	return lo.Uniq([]int{s.vertChart[verts[0]], s.vertChart[verts[1]], s.vertChart[verts[2]]})
}

func (s *Session) faceInChart(verts [3]int, chart int) bool {
	for _, v := range verts {
		q, ok := s.atlas.Transform(s.vertChart[v], chart, s.vertCoord[v])
		if !ok || !s.inRange(chart, q) {
			return false
		}
	}
	return true
}

// FindBestChartIDForTriShape returns the chart in which face f's triangle
// keeps its 3-D corner angles best. Candidates are the charts of the face's
// vertices and of their mesh neighbors; the smallest root-summed-square
// angle difference wins, lower chart id on ties. A face whose vertices
// share one chart keeps it.
func (s *Session) FindBestChartIDForTriShape(f int) int {
	verts := s.mesh.Face(f)
	own := s.vertexCharts(verts)
	if len(own) == 1 {
		return own[0]
	}

	var candidates []int
	for _, v := range verts {
		candidates = append(candidates, s.vertChart[v])
		for _, nb := range s.mesh.AdjVertices(v) {
			candidates = append(candidates, s.vertChart[nb])
		}
	}
	candidates = lo.Uniq(candidates)
	sort.Ints(candidates)

	spatial := s.mesh.FaceCoords(f)
	best, bestErr := -1, math.Inf(1)
	for _, c := range candidates {
		planar, ok := s.planarTriangle(verts, c)
		if !ok {
			continue
		}
		if e := geom.AngleDistortion(spatial, planar); e < bestErr {
			best, bestErr = c, e
		}
	}
	if best < 0 {
		return s.faceChart[f]
	}
	return best
}

func (s *Session) planarTriangle(verts [3]int, chart int) ([3]mgl64.Vec2, bool) {
	var out [3]mgl64.Vec2
	for k, v := range verts {
		q, ok := s.atlas.Transform(s.vertChart[v], chart, s.vertCoord[v])
		if !ok {
			return out, false
		}
		out[k] = q.Vec()
	}
	return out, true
}

// SetMeshFaceTextureCoord writes every face's texture coordinates into the
// mesh, all three in the face's chart. Under FaceRuleShape a face whose
// vertices disagree on chart is first moved to FindBestChartIDForTriShape.
func (s *Session) SetMeshFaceTextureCoord() {
	s.mesh.ResetTexCoords()
	for f := 0; f < s.mesh.FaceCount(); f++ {
		if s.opts.FaceRule == FaceRuleShape {
			s.faceChart[f] = s.FindBestChartIDForTriShape(f)
		}
		s.mesh.SetFaceTexCoords(f, s.faceUVs(f))
	}
}

func (s *Session) faceUVs(f int) [3]mgl64.Vec2 {
	var uv [3]mgl64.Vec2
	for k, c := range s.FaceVertexCoords(f) {
		uv[k] = c.Vec()
	}
	return uv
}

// FaceVertexCoords returns face f's three vertex coordinates in the face's
// chart.
func (s *Session) FaceVertexCoords(f int) [3]atlas.ParamCoord {
	var out [3]atlas.ParamCoord
	chart := s.faceChart[f]
	for k, v := range s.mesh.Face(f) {
		out[k] = s.coordIn(v, chart)
	}
	return out
}

// CheckFlippedTriangles returns the faces whose texture-space orientation
// opposes the orientation of most faces.
func (s *Session) CheckFlippedTriangles() []int {
	signs := make([]int, s.mesh.FaceCount())
	var pos, neg int
	for f := range signs {
		uv := s.faceUVs(f)
		a := geom.SignedArea(uv[0], uv[1], uv[2])
		switch {
		case a > 1e-14:
			signs[f] = 1
			pos++
		case a < -1e-14:
			signs[f] = -1
			neg++
		}
	}
	dominant := 1
	if neg > pos {
		dominant = -1
	}
	var flipped []int
	for f, sg := range signs {
		if sg == -dominant {
			flipped = append(flipped, f)
		}
	}
	return flipped
}

// Distortion summarizes per-face angle distortion.
type Distortion struct {
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
}

// AngleDistortion measures how far each face's texture-space corner angles
// stray from its 3-D corner angles.
func (s *Session) AngleDistortion() Distortion {
	var d Distortion
	n := s.mesh.FaceCount()
	for f := 0; f < n; f++ {
		e := geom.AngleDistortion(s.mesh.FaceCoords(f), s.faceUVs(f))
		d.Mean += e
		d.Max = math.Max(d.Max, e)
	}
	if n > 0 {
		d.Mean /= float64(n)
	}
	return d
}
