package mesh

import (
	"fmt"
	"math"

	"github.com/chazu/chartparam/pkg/geom"
)

// LaplacianKind selects the edge weights of the discrete Laplacian.
type LaplacianKind string

const (
	LaplacianUniform   LaplacianKind = "uniform"    // every neighbor weighs 1
	LaplacianCotangent LaplacianKind = "cotangent"  // (cot a + cot b) / 2
	LaplacianMeanValue LaplacianKind = "mean-value" // Floater's tan(theta/2) weights
)

// Valid reports whether k names a known weighting.
func (k LaplacianKind) Valid() bool {
	switch k {
	case LaplacianUniform, LaplacianCotangent, LaplacianMeanValue:
		return true
	}
	return false
}

// SparseMatrix is a row-compressed square matrix: row v holds the column
// indices and values of its non-zero entries.
type SparseMatrix struct {
	RowIndex [][]int
	RowData  [][]float64
}

// Rows returns the number of rows.
func (s *SparseMatrix) Rows() int {
	return len(s.RowIndex)
}

// Laplacian builds the discrete Laplacian of the mesh. Row v has one entry
// per adjacent vertex, in AdjVertices order, followed by the diagonal entry
// -sum(w). Rows whose weights do not sum to a positive value fall back to
// uniform weights so every row stays usable as a smoothing equation.
func (m *Mesh) Laplacian(kind LaplacianKind) (*SparseMatrix, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("mesh: unknown laplacian kind %q", kind)
	}

	n := m.VertexCount()
	weights := make([]map[int]float64, n)
	for v := range weights {
		weights[v] = make(map[int]float64)
	}

	switch kind {
	case LaplacianCotangent:
		m.accumulateCotangent(weights)
	case LaplacianMeanValue:
		m.accumulateMeanValue(weights)
	}

	lap := &SparseMatrix{
		RowIndex: make([][]int, n),
		RowData:  make([][]float64, n),
	}
	for v := 0; v < n; v++ {
		adj := m.adjVerts[v]
		row := make([]float64, len(adj))
		var sum float64
		for i, u := range adj {
			w := 1.0
			if kind != LaplacianUniform {
				w = weights[v][u]
			}
			row[i] = w
			sum += w
		}
		if kind != LaplacianUniform && !(sum > 1e-12) {
			for i := range row {
				row[i] = 1
			}
			sum = float64(len(row))
		}
		lap.RowIndex[v] = append(append([]int{}, adj...), v)
		lap.RowData[v] = append(row, -sum)
	}
	return lap, nil
}

// accumulateCotangent adds cot(angle)/2 to the edge opposite each corner.
func (m *Mesh) accumulateCotangent(weights []map[int]float64) {
	for fid := range m.faces {
		f := m.faces[fid]
		angles := geom.CornerAngles3(m.FaceCoords(fid))
		for k := 0; k < 3; k++ {
			s := math.Sin(angles[k])
			if s < 1e-12 {
				continue
			}
			half := 0.5 * math.Cos(angles[k]) / s
			i, j := f[(k+1)%3], f[(k+2)%3]
			weights[i][j] += half
			weights[j][i] += half
		}
	}
}

// accumulateMeanValue adds tan(theta/2)/|e| for both edges leaving each corner.
func (m *Mesh) accumulateMeanValue(weights []map[int]float64) {
	for fid := range m.faces {
		f := m.faces[fid]
		angles := geom.CornerAngles3(m.FaceCoords(fid))
		for k := 0; k < 3; k++ {
			v := f[k]
			t := math.Tan(angles[k] / 2)
			for _, u := range []int{f[(k+1)%3], f[(k+2)%3]} {
				l := m.positions[u].Sub(m.positions[v]).Len()
				if l < 1e-12 {
					continue
				}
				weights[v][u] += t / l
			}
		}
	}
}
