package param

import (
	"math"

	"github.com/chazu/chartparam/pkg/mesh"
	"github.com/chazu/chartparam/pkg/solver"
)

// VariableIndex returns the dense variable index of vertex v, or -1 when v
// is fixed. Variable 2*i holds s and 2*i+1 holds t.
func (s *Session) VariableIndex(v int) int { return s.varIndex[v] }

// AssembleSystem builds two equations (s and t) per free vertex from its
// Laplacian row. Neighbors in another chart enter through the transition
// into the free vertex's chart: fixed neighbors as constants, free ones as
// coefficients on both of their variables. It returns the assembled system
// and the vertex-to-variable mapping.
func (s *Session) AssembleSystem(lap *mesh.SparseMatrix) (*solver.System, []int) {
	sys := solver.NewSystem(2*s.freeCount, s.opts.Solver)
	eps := s.opts.CoefficientEpsilon

	sys.BeginEquation()
	for v, idx := range s.varIndex {
		if idx < 0 {
			continue
		}
		to := s.vertChart[v]
		for st := 0; st < 2; st++ {
			sys.BeginRow()
			var rhs float64
			for k, col := range lap.RowIndex[v] {
				w := lap.RowData[v][k]
				from := s.vertChart[col]
				colIdx := s.varIndex[col]

				switch {
				case from == to && colIdx >= 0:
					sys.AddCoefficient(2*colIdx+st, w)
				case from == to:
					rhs -= w * s.vertCoord[col].Axis(st)
				case colIdx < 0:
					rhs -= w * s.transform(from, to, s.vertCoord[col]).Axis(st)
				default:
					t, ok := s.atlas.Transition(from, to)
					if !ok {
						s.log.Printf("no transition from chart %d to chart %d, treating vertex %d as same-chart", from, to, col)
						sys.AddCoefficient(2*colIdx+st, w)
						continue
					}
					a, b, c := t.Row(st)
					if math.Abs(w*a) >= eps {
						sys.AddCoefficient(2*colIdx, w*a)
					}
					if math.Abs(w*b) >= eps {
						sys.AddCoefficient(2*colIdx+1, w*b)
					}
					rhs -= w * c
				}
			}
			sys.SetRightHandSide(rhs)
			sys.EndRow()
		}
	}
	sys.EndEquation()
	return sys, s.varIndex
}

// Solve assembles and solves one round and writes the solution back into
// the free vertices' coordinates, each in its current chart's frame.
func (s *Session) Solve(lap *mesh.SparseMatrix) error {
	if lap.Rows() != s.mesh.VertexCount() {
		return inputErrorf("laplacian has %d rows, mesh has %d vertices", lap.Rows(), s.mesh.VertexCount())
	}
	sys, varIndex := s.AssembleSystem(lap)
	if err := sys.Solve(); err != nil {
		return &SingularSystemError{Round: s.round, Unknowns: sys.Vars(), Err: err}
	}
	for v, idx := range varIndex {
		if idx < 0 {
			continue
		}
		s.vertCoord[v].S = sys.Value(2 * idx)
		s.vertCoord[v].T = sys.Value(2*idx + 1)
	}
	return nil
}
