// Package solver provides a row-by-row sparse linear system builder with
// interchangeable numeric back ends. Equations are assembled with
// BeginEquation/BeginRow/AddCoefficient/SetRightHandSide/EndRow/EndEquation,
// solved with Solve, and read back with Value.
package solver

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrSingular is returned when the system has no unique solution.
	ErrSingular = errors.New("solver: singular system")
	// ErrNoConvergence is returned when an iterative back end gives up.
	ErrNoConvergence = errors.New("solver: iteration did not converge")
)

// Method selects the numeric back end.
type Method string

const (
	MethodAuto     Method = "auto"     // dense up to denseLimit unknowns, iterative beyond
	MethodDense    Method = "dense"    // LU factorization
	MethodBiCGSTAB Method = "bicgstab" // Jacobi-preconditioned BiCGSTAB
)

// denseLimit is the largest system MethodAuto factorizes densely.
const denseLimit = 2000

// Valid reports whether m names a known method.
func (m Method) Valid() bool {
	switch m {
	case MethodAuto, MethodDense, MethodBiCGSTAB:
		return true
	}
	return false
}

// Matrix is a square matrix in compressed sparse row form.
type Matrix struct {
	N      int
	RowPtr []int
	Col    []int
	Val    []float64
}

// MulVecTo computes dst = M*x, or Mᵀ*x when trans is set. dst must have
// length N and must not share storage with x.
func (m *Matrix) MulVecTo(dst *mat.VecDense, trans bool, x mat.Vector) {
	if trans {
		dst.Zero()
	}
	for i := 0; i < m.N; i++ {
		if trans {
			xi := x.AtVec(i)
			for k := m.RowPtr[i]; k < m.RowPtr[i+1]; k++ {
				dst.SetVec(m.Col[k], dst.AtVec(m.Col[k])+m.Val[k]*xi)
			}
			continue
		}
		var sum float64
		for k := m.RowPtr[i]; k < m.RowPtr[i+1]; k++ {
			sum += m.Val[k] * x.AtVec(m.Col[k])
		}
		dst.SetVec(i, sum)
	}
}

// Diagonal returns the diagonal entries of M.
func (m *Matrix) Diagonal() []float64 {
	d := make([]float64, m.N)
	for i := 0; i < m.N; i++ {
		for k := m.RowPtr[i]; k < m.RowPtr[i+1]; k++ {
			if m.Col[k] == i {
				d[i] = m.Val[k]
			}
		}
	}
	return d
}

// Backend solves M*x = b.
type Backend interface {
	Name() string
	Solve(m *Matrix, b []float64) ([]float64, error)
}

// NewBackend returns the back end for a method and system size.
func NewBackend(method Method, n int) (Backend, error) {
	switch method {
	case MethodDense:
		return denseLU{}, nil
	case MethodBiCGSTAB:
		return bicgstab{tolerance: 1e-10, maxIter: maxIterations(n)}, nil
	case MethodAuto, "":
		if n <= denseLimit {
			return denseLU{}, nil
		}
		return bicgstab{tolerance: 1e-10, maxIter: maxIterations(n)}, nil
	}
	return nil, fmt.Errorf("solver: unknown method %q", method)
}

func maxIterations(n int) int {
	if n*10 > 1000 {
		return n * 10
	}
	return 1000
}
