package solver

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Compile-time interface check.
var _ Backend = denseLU{}

// denseLU factorizes the full matrix. Suitable for a few thousand unknowns.
type denseLU struct{}

func (denseLU) Name() string { return "dense" }

func (denseLU) Solve(m *Matrix, b []float64) ([]float64, error) {
	a := mat.NewDense(m.N, m.N, nil)
	for i := 0; i < m.N; i++ {
		for k := m.RowPtr[i]; k < m.RowPtr[i+1]; k++ {
			a.Set(i, m.Col[k], a.At(i, m.Col[k])+m.Val[k])
		}
	}

	var lu mat.LU
	lu.Factorize(a)
	if c := lu.Cond(); math.IsInf(c, 1) || math.IsNaN(c) {
		return nil, fmt.Errorf("condition number %v: %w", c, ErrSingular)
	}

	x := mat.NewVecDense(m.N, nil)
	if err := lu.SolveVecTo(x, false, mat.NewVecDense(m.N, b)); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return nil, fmt.Errorf("condition number %g: %w", float64(cond), ErrSingular)
		}
		return nil, err
	}
	return x.RawVector().Data, nil
}
