package solver

import (
	"fmt"
	"math"
	"sort"
)

type equationRow struct {
	cols []int
	vals []float64
	rhs  float64
}

// System is a square sparse linear system over a fixed number of variables.
// It is not safe for concurrent use.
type System struct {
	n      int
	method Method

	rows       []equationRow
	cur        *equationRow
	inEquation bool
	assembled  bool

	x      []float64
	solved bool
}

// NewSystem returns an empty system over n variables.
func NewSystem(n int, method Method) *System {
	return &System{n: n, method: method}
}

// Vars returns the number of variables.
func (s *System) Vars() int { return s.n }

// Rows returns the number of completed rows.
func (s *System) Rows() int { return len(s.rows) }

// NonZeros returns the number of stored coefficients.
func (s *System) NonZeros() int {
	var nnz int
	for _, r := range s.rows {
		nnz += len(r.cols)
	}
	return nnz
}

// Row returns the merged coefficients and right-hand side of row i.
func (s *System) Row(i int) (cols []int, vals []float64, rhs float64) {
	r := s.rows[i]
	return r.cols, r.vals, r.rhs
}

// BeginEquation starts assembly, discarding earlier rows and solutions.
func (s *System) BeginEquation() {
	if s.inEquation {
		panic("solver: BeginEquation called twice")
	}
	s.rows = s.rows[:0]
	s.inEquation = true
	s.assembled = false
	s.solved = false
}

// BeginRow starts a new row.
func (s *System) BeginRow() {
	if !s.inEquation || s.cur != nil {
		panic("solver: BeginRow outside equation or inside a row")
	}
	s.cur = &equationRow{}
}

// AddCoefficient adds v to the coefficient of variable col in the current
// row. Repeated columns accumulate.
func (s *System) AddCoefficient(col int, v float64) {
	if s.cur == nil {
		panic("solver: AddCoefficient outside a row")
	}
	if col < 0 || col >= s.n {
		panic(fmt.Sprintf("solver: variable %d out of range [0,%d)", col, s.n))
	}
	s.cur.cols = append(s.cur.cols, col)
	s.cur.vals = append(s.cur.vals, v)
}

// SetRightHandSide sets the constant term of the current row.
func (s *System) SetRightHandSide(v float64) {
	if s.cur == nil {
		panic("solver: SetRightHandSide outside a row")
	}
	s.cur.rhs = v
}

// EndRow completes the current row.
func (s *System) EndRow() {
	if s.cur == nil {
		panic("solver: EndRow without BeginRow")
	}
	s.rows = append(s.rows, mergeRow(*s.cur))
	s.cur = nil
}

// EndEquation completes assembly.
func (s *System) EndEquation() {
	if !s.inEquation || s.cur != nil {
		panic("solver: EndEquation outside equation or inside a row")
	}
	s.inEquation = false
	s.assembled = true
}

// Solve solves the assembled system. The number of rows must equal the
// number of variables.
func (s *System) Solve() error {
	if !s.assembled {
		return fmt.Errorf("solver: solve before EndEquation")
	}
	if len(s.rows) != s.n {
		return fmt.Errorf("solver: %d rows for %d variables", len(s.rows), s.n)
	}
	if s.n == 0 {
		s.x = nil
		s.solved = true
		return nil
	}

	backend, err := NewBackend(s.method, s.n)
	if err != nil {
		return err
	}
	m, b := s.compress()
	x, err := backend.Solve(m, b)
	if err != nil {
		return fmt.Errorf("solver: %s: %w", backend.Name(), err)
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("solver: %s: variable %d is %v: %w", backend.Name(), i, v, ErrSingular)
		}
	}
	s.x = x
	s.solved = true
	return nil
}

// Value returns the solved value of variable i.
func (s *System) Value(i int) float64 {
	if !s.solved {
		panic("solver: Value before a successful Solve")
	}
	return s.x[i]
}

func (s *System) compress() (*Matrix, []float64) {
	m := &Matrix{N: s.n, RowPtr: make([]int, s.n+1)}
	b := make([]float64, s.n)
	for i, r := range s.rows {
		m.Col = append(m.Col, r.cols...)
		m.Val = append(m.Val, r.vals...)
		m.RowPtr[i+1] = len(m.Col)
		b[i] = r.rhs
	}
	return m, b
}

// mergeRow sorts a row by column and sums duplicate columns.
func mergeRow(r equationRow) equationRow {
	idx := make([]int, len(r.cols))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return r.cols[idx[a]] < r.cols[idx[b]] })

	out := equationRow{rhs: r.rhs}
	for _, i := range idx {
		c, v := r.cols[i], r.vals[i]
		if n := len(out.cols); n > 0 && out.cols[n-1] == c {
			out.vals[n-1] += v
			continue
		}
		out.cols = append(out.cols, c)
		out.vals = append(out.vals, v)
	}
	return out
}
