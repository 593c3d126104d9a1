package param

import (
	"math"

	"github.com/chazu/chartparam/pkg/atlas"
)

// RelaxStats summarizes one AdjustPatchBoundary pass.
type RelaxStats struct {
	OutOfRange int // free vertices found outside their chart
	Adopted    int // moved to a neighbor's chart that admits them
	Fallback   int // moved to the least-bad neighbor chart
	Searched   int // moved to a chart found by FindValidChartForOutRangeVertex
}

// Reassigned returns the number of vertices that changed chart.
func (r RelaxStats) Reassigned() int {
	return r.Adopted + r.Fallback + r.Searched
}

// AdjustPatchBoundary moves free vertices that lie outside their chart's
// valid domain into a better chart. The mesh neighbors are scanned in
// adjacency order and the first neighbor chart (itself holding that
// neighbor in range) that admits the vertex wins. Failing that, the
// neighbor chart with the smallest out-of-range error is taken, and failing
// an improvement there, the chart adjacency graph is searched. A vertex only
// moves when its out-of-range error strictly decreases.
func (s *Session) AdjustPatchBoundary() RelaxStats {
	var stats RelaxStats
	for v, idx := range s.varIndex {
		if idx < 0 {
			continue
		}
		cur := s.vertChart[v]
		p := s.vertCoord[v]
		if s.inRange(cur, p) {
			continue
		}
		stats.OutOfRange++
		curErr := s.atlas.Chart(cur).OutRangeError(p)

		bestChart, bestErr := -1, math.Inf(1)
		var bestCoord atlas.ParamCoord
		adopted := false
		for _, nb := range s.mesh.AdjVertices(v) {
			c := s.vertChart[nb]
			if c == cur || !s.inRange(c, s.vertCoord[nb]) {
				continue
			}
			q, ok := s.atlas.Transform(cur, c, p)
			if !ok {
				continue
			}
			if s.inRange(c, q) {
				s.SetVertex(v, c, q)
				stats.Adopted++
				adopted = true
				break
			}
			if e := s.atlas.Chart(c).OutRangeError(q); e < bestErr {
				bestChart, bestErr, bestCoord = c, e, q
			}
		}
		if adopted {
			continue
		}
		if bestChart >= 0 && bestErr < curErr {
			s.SetVertex(v, bestChart, bestCoord)
			stats.Fallback++
			continue
		}
		if c, q, _ := s.FindValidChartForOutRangeVertex(v); c != cur {
			s.SetVertex(v, c, q)
			stats.Searched++
		}
	}
	s.log.Printf("round %d: %d vertices out of range, %d reassigned", s.round, stats.OutOfRange, stats.Reassigned())
	return stats
}

// FindValidChartForOutRangeVertex searches the chart adjacency graph
// breadth first from v's chart, at most MaxChartHops away, for a chart whose
// domain contains v's coordinate. It returns the first such chart, or the
// visited chart with the smallest out-of-range error and found == false.
// The current chart is returned when nothing beats its error.
func (s *Session) FindValidChartForOutRangeVertex(v int) (chart int, coord atlas.ParamCoord, found bool) {
	type hop struct{ chart, depth int }

	start := s.vertChart[v]
	p := s.vertCoord[v]
	if s.inRange(start, p) {
		return start, p, true
	}
	bestChart, bestCoord := start, p
	bestErr := s.atlas.Chart(start).OutRangeError(p)

	visited := map[int]bool{start: true}
	queue := []hop{{start, 0}}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if h.depth > 0 {
			if q, ok := s.atlas.Transform(start, h.chart, p); ok {
				if s.inRange(h.chart, q) {
					return h.chart, q, true
				}
				if e := s.atlas.Chart(h.chart).OutRangeError(q); e < bestErr {
					bestChart, bestCoord, bestErr = h.chart, q, e
				}
			}
		}
		if h.depth >= s.opts.MaxChartHops {
			continue
		}
		for _, nb := range s.atlas.Neighbors(h.chart) {
			if !visited[nb] {
				visited[nb] = true
				queue = append(queue, hop{nb, h.depth + 1})
			}
		}
	}
	return bestChart, bestCoord, false
}
