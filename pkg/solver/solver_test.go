package solver

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

const float64EqualityThreshold = 1e-8

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= float64EqualityThreshold
}

// poisson assembles the 1-D system 2x_i - x_{i-1} - x_{i+1} = 1 with zero
// ends, whose solution is x_i = (i+1)(n-i)/2.
func poisson(n int, method Method) *System {
	s := NewSystem(n, method)
	s.BeginEquation()
	for i := 0; i < n; i++ {
		s.BeginRow()
		if i > 0 {
			s.AddCoefficient(i-1, -1)
		}
		s.AddCoefficient(i, 2)
		if i < n-1 {
			s.AddCoefficient(i+1, -1)
		}
		s.SetRightHandSide(1)
		s.EndRow()
	}
	s.EndEquation()
	return s
}

func TestSolveMethods(t *testing.T) {
	for _, method := range []Method{MethodAuto, MethodDense, MethodBiCGSTAB} {
		t.Run(string(method), func(t *testing.T) {
			const n = 40
			s := poisson(n, method)
			if err := s.Solve(); err != nil {
				t.Fatalf("Solve() error = %v", err)
			}
			for i := 0; i < n; i++ {
				want := float64((i+1)*(n-i)) / 2
				if got := s.Value(i); math.Abs(got-want) > 1e-6 {
					t.Errorf("x[%d] = %g, want %g", i, got, want)
				}
			}
		})
	}
}

func TestDuplicateCoefficientsAccumulate(t *testing.T) {
	s := NewSystem(2, MethodDense)
	s.BeginEquation()
	s.BeginRow()
	s.AddCoefficient(1, 1)
	s.AddCoefficient(0, 1)
	s.AddCoefficient(0, 2)
	s.SetRightHandSide(5)
	s.EndRow()
	s.BeginRow()
	s.AddCoefficient(1, 1)
	s.SetRightHandSide(2)
	s.EndRow()
	s.EndEquation()

	cols, vals, rhs := s.Row(0)
	if len(cols) != 2 || cols[0] != 0 || cols[1] != 1 {
		t.Fatalf("row 0 columns = %v, want [0 1]", cols)
	}
	if vals[0] != 3 || vals[1] != 1 || rhs != 5 {
		t.Errorf("row 0 = %v | %v, want [3 1] | 5", vals, rhs)
	}
	if s.NonZeros() != 3 {
		t.Errorf("NonZeros() = %d, want 3", s.NonZeros())
	}
	if err := s.Solve(); err != nil {
		t.Fatal(err)
	}
	if !almostEqual(s.Value(0), 1) || !almostEqual(s.Value(1), 2) {
		t.Errorf("solution = (%g, %g), want (1, 2)", s.Value(0), s.Value(1))
	}
}

func TestSolveSingular(t *testing.T) {
	for _, method := range []Method{MethodDense, MethodBiCGSTAB} {
		t.Run(string(method), func(t *testing.T) {
			s := NewSystem(2, method)
			s.BeginEquation()
			for i := 0; i < 2; i++ {
				s.BeginRow()
				s.AddCoefficient(0, 1)
				s.AddCoefficient(1, 1)
				s.SetRightHandSide(float64(i + 1))
				s.EndRow()
			}
			s.EndEquation()
			err := s.Solve()
			if err == nil {
				t.Fatal("Solve() of singular system succeeded")
			}
			if !errors.Is(err, ErrSingular) && !errors.Is(err, ErrNoConvergence) {
				t.Errorf("error = %v, want ErrSingular or ErrNoConvergence", err)
			}
		})
	}
}

func TestSolveRowCountMismatch(t *testing.T) {
	s := NewSystem(2, MethodDense)
	s.BeginEquation()
	s.BeginRow()
	s.AddCoefficient(0, 1)
	s.EndRow()
	s.EndEquation()
	if err := s.Solve(); err == nil {
		t.Error("Solve() with 1 row for 2 variables succeeded")
	}
}

func TestSolveEmpty(t *testing.T) {
	s := NewSystem(0, MethodAuto)
	s.BeginEquation()
	s.EndEquation()
	if err := s.Solve(); err != nil {
		t.Errorf("Solve() of empty system error = %v", err)
	}
}

func TestNewBackend(t *testing.T) {
	tests := []struct {
		method Method
		n      int
		want   string
	}{
		{MethodAuto, 10, "dense"},
		{MethodAuto, denseLimit + 1, "bicgstab"},
		{MethodDense, denseLimit + 1, "dense"},
		{MethodBiCGSTAB, 4, "bicgstab"},
	}
	for _, tt := range tests {
		b, err := NewBackend(tt.method, tt.n)
		if err != nil {
			t.Fatalf("NewBackend(%s) error = %v", tt.method, err)
		}
		if b.Name() != tt.want {
			t.Errorf("NewBackend(%s, %d) = %s, want %s", tt.method, tt.n, b.Name(), tt.want)
		}
	}
	if _, err := NewBackend("gauss", 3); err == nil {
		t.Error("unknown method accepted")
	}
}

func TestMatrixMulVecTo(t *testing.T) {
	// [1 2 0]
	// [0 3 4]
	// [5 0 6]
	m := &Matrix{
		N:      3,
		RowPtr: []int{0, 2, 4, 6},
		Col:    []int{0, 1, 1, 2, 0, 2},
		Val:    []float64{1, 2, 3, 4, 5, 6},
	}
	x := mat.NewVecDense(3, []float64{1, 2, 3})
	tests := []struct {
		name  string
		trans bool
		want  []float64
	}{
		{"plain", false, []float64{5, 18, 23}},
		{"transpose", true, []float64{16, 8, 26}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := mat.NewVecDense(3, []float64{9, 9, 9})
			m.MulVecTo(dst, tt.trans, x)
			for i, w := range tt.want {
				if !almostEqual(dst.AtVec(i), w) {
					t.Errorf("dst[%d] = %g, want %g", i, dst.AtVec(i), w)
				}
			}
		})
	}
}

func TestBiCGSTABIterationLimit(t *testing.T) {
	s := poisson(40, MethodBiCGSTAB)
	m, b := s.compress()
	_, err := bicgstab{tolerance: 1e-12, maxIter: 1}.Solve(m, b)
	if !errors.Is(err, ErrNoConvergence) {
		t.Errorf("Solve() error = %v, want ErrNoConvergence", err)
	}
}
