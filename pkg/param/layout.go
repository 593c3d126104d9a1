package param

import "github.com/chazu/chartparam/pkg/atlas"

// AssignInitialLayout gives every face its patch's chart and every vertex
// the chart held by most of its incident faces. Ties go to the chart seen
// first in the vertex's face order. Vertex coordinates are reset.
func (s *Session) AssignInitialLayout() {
	for _, p := range s.atlas.Patches() {
		for _, f := range p.Faces {
			s.faceChart[f] = p.ID
		}
	}
	for v := range s.vertChart {
		s.vertChart[v] = s.majorityChart(s.mesh.AdjFaces(v))
		s.vertCoord[v] = atlas.ParamCoord{}
	}
}

// majorityChart returns the most frequent face chart, first-seen on ties.
func (s *Session) majorityChart(faces []int) int {
	return plurality(len(faces), func(i int) int { return s.faceChart[faces[i]] })
}

// plurality returns the most frequent of n values, first-seen on ties.
func plurality(n int, value func(i int) int) int {
	var order []int
	counts := make(map[int]int, n)
	for i := 0; i < n; i++ {
		c := value(i)
		if _, seen := counts[c]; !seen {
			order = append(order, c)
		}
		counts[c]++
	}
	best, bestCount := -1, 0
	for _, c := range order {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}
