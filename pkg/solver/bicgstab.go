package solver

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/exp/linsolve"
	"gonum.org/v1/gonum/mat"
)

// Compile-time interface checks.
var (
	_ Backend             = bicgstab{}
	_ linsolve.MulVecToer = (*Matrix)(nil)
)

// bicgstab runs linsolve's stabilized biconjugate gradient method with a
// Jacobi preconditioner. It handles the non-symmetric systems that
// transition coefficients produce without forming a dense matrix.
type bicgstab struct {
	tolerance float64
	maxIter   int
}

func (bicgstab) Name() string { return "bicgstab" }

func (it bicgstab) Solve(m *Matrix, b []float64) ([]float64, error) {
	inv := m.Diagonal()
	for i, d := range inv {
		if math.Abs(d) < 1e-300 {
			inv[i] = 1
		} else {
			inv[i] = 1 / d
		}
	}
	jacobi := func(dst *mat.VecDense, _ bool, rhs mat.Vector) error {
		for i, w := range inv {
			dst.SetVec(i, w*rhs.AtVec(i))
		}
		return nil
	}

	res, err := linsolve.Iterative(m, mat.NewVecDense(m.N, b), &linsolve.BiCGStab{}, &linsolve.Settings{
		Tolerance:     it.tolerance,
		MaxIterations: it.maxIter,
		PreconSolve:   jacobi,
	})
	if err != nil {
		var breakdown *linsolve.BreakdownError
		switch {
		case errors.Is(err, linsolve.ErrIterationLimit):
			return nil, fmt.Errorf("residual %g after %d iterations: %w", res.ResidualNorm, it.maxIter, ErrNoConvergence)
		case errors.As(err, &breakdown):
			return nil, fmt.Errorf("%v: %w", err, ErrNoConvergence)
		}
		return nil, err
	}
	return res.X.RawVector().Data, nil
}
