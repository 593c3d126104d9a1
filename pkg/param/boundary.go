package param

// FixBoundaryValues pins the coordinates every solve treats as constants.
// Corner vertices take their chart's recorded corner coordinate. Interior
// vertices of outer-boundary patch edges are interpolated by arc length
// between the edge's corner coordinates, in the owning chart's frame; a
// vertex held by another chart is moved to the owning chart first. It
// returns the vertices whose chart was forcibly changed.
func (s *Session) FixBoundaryValues() []int {
	var forced []int

	pinned := make(map[int]bool)
	for _, p := range s.atlas.Patches() {
		chart := s.atlas.Chart(p.ID)
		for k, cid := range p.Corners {
			v := s.atlas.Corners()[cid].Vertex
			if s.vertChart[v] != p.ID {
				continue
			}
			s.vertCoord[v] = chart.Corners[k]
			pinned[v] = true
		}
	}

	// A corner whose chart does not list it (a T-junction on a neighboring
	// patch's side) moves to the first patch that does.
	for _, c := range s.atlas.Corners() {
		if pinned[c.Vertex] || len(c.Patches) == 0 {
			continue
		}
		p := c.Patches[0]
		k := s.atlas.CornerIndexInPatch(c.ID, p)
		s.log.Printf("adjust corner vertex %d from chart %d to chart %d", c.Vertex, s.vertChart[c.Vertex], p)
		s.SetVertex(c.Vertex, p, s.atlas.Chart(p).Corners[k])
		pinned[c.Vertex] = true
		forced = append(forced, c.Vertex)
	}

	for _, e := range s.atlas.Edges() {
		if !e.IsBoundary() {
			continue
		}
		owner := e.Patches[0]
		chart := s.atlas.Chart(owner)
		start := chart.Corners[s.atlas.CornerIndexInPatch(e.Corners[0], owner)]
		end := chart.Corners[s.atlas.CornerIndexInPatch(e.Corners[1], owner)]

		n := len(e.Path)
		total := s.mesh.PathLength(e.Path, 0, n)
		for j := 1; j < n-1; j++ {
			v := e.Path[j]
			if pinned[v] {
				continue
			}
			lambda := float64(j) / float64(n-1)
			if total > 0 {
				lambda = s.mesh.PathLength(e.Path, 0, j+1) / total
			}
			if s.vertChart[v] != owner {
				s.log.Printf("adjust boundary vertex %d from chart %d to chart %d", v, s.vertChart[v], owner)
				forced = append(forced, v)
			}
			s.SetVertex(v, owner, start.Lerp(end, lambda))
		}
	}
	return forced
}
