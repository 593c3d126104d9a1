// Package scene builds parameterization inputs: a triangle mesh plus the
// chart atlas over it. Scenes come from the Lisp scene language evaluated
// by Engine, or directly from Grid.
package scene

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/chartparam/pkg/atlas"
	"github.com/chazu/chartparam/pkg/mesh"
)

// Scene is a mesh with an unbuilt atlas. Callers may still add explicit
// transitions to Atlas before building it.
type Scene struct {
	Mesh  *mesh.Mesh
	Atlas *atlas.Builder
}

// GridSpec describes a rectangular height-field mesh cut into a regular
// grid of square-parameterized charts.
type GridSpec struct {
	NX, NY           int     // cells along x and y
	ChartsX, ChartsY int     // charts along x and y; must divide NX and NY
	Width, Height    float64 // extent in x and y
	Bump             float64 // amplitude of a sin*sin bump in z
}

// Validate checks the grid dimensions.
func (g GridSpec) Validate() error {
	switch {
	case g.NX < 1 || g.NY < 1:
		return fmt.Errorf("grid needs at least one cell per axis, got %dx%d", g.NX, g.NY)
	case g.ChartsX < 1 || g.ChartsY < 1:
		return fmt.Errorf("grid needs at least one chart per axis, got %dx%d", g.ChartsX, g.ChartsY)
	case g.NX%g.ChartsX != 0 || g.NY%g.ChartsY != 0:
		return fmt.Errorf("%dx%d charts do not divide %dx%d cells", g.ChartsX, g.ChartsY, g.NX, g.NY)
	case !(g.Width > 0) || !(g.Height > 0):
		return fmt.Errorf("grid extent must be positive, got %gx%g", g.Width, g.Height)
	}
	return nil
}

// VertexIndex returns the id of the grid vertex in column i, row j.
func (g GridSpec) VertexIndex(i, j int) int {
	return j*(g.NX+1) + i
}

// ChartIndex returns the id of the chart in chart column a, chart row b.
func (g GridSpec) ChartIndex(a, b int) int {
	return b*g.ChartsX + a
}

// Grid builds the mesh and atlas described by spec. Vertex (i, j) lies at
// (i*Width/NX, j*Height/NY); each cell is split along its rising diagonal.
// Every chart maps its block of cells onto the unit square and adjacent
// charts are related by translations derived from their shared edges.
func Grid(spec GridSpec) (*Scene, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	positions, faces := gridMesh(spec)
	m, err := mesh.New(positions, faces)
	if err != nil {
		return nil, fmt.Errorf("scene: grid mesh: %w", err)
	}
	b := atlas.NewBuilder()
	gridAtlas(spec, b)
	return &Scene{Mesh: m, Atlas: b}, nil
}

func gridMesh(spec GridSpec) ([]mgl64.Vec3, [][3]int) {
	positions := make([]mgl64.Vec3, 0, (spec.NX+1)*(spec.NY+1))
	for j := 0; j <= spec.NY; j++ {
		for i := 0; i <= spec.NX; i++ {
			u, v := float64(i)/float64(spec.NX), float64(j)/float64(spec.NY)
			positions = append(positions, mgl64.Vec3{
				u * spec.Width,
				v * spec.Height,
				spec.Bump * math.Sin(math.Pi*u) * math.Sin(math.Pi*v),
			})
		}
	}
	faces := make([][3]int, 0, 2*spec.NX*spec.NY)
	for j := 0; j < spec.NY; j++ {
		for i := 0; i < spec.NX; i++ {
			v00, v10 := spec.VertexIndex(i, j), spec.VertexIndex(i+1, j)
			v01, v11 := spec.VertexIndex(i, j+1), spec.VertexIndex(i+1, j+1)
			faces = append(faces, [3]int{v00, v10, v11}, [3]int{v00, v11, v01})
		}
	}
	return positions, faces
}

func gridAtlas(spec GridSpec, b *atlas.Builder) {
	cx, cy := spec.ChartsX, spec.ChartsY
	bx, by := spec.NX/cx, spec.NY/cy
	corner := func(a, c int) int { return c*(cx+1) + a }

	for c := 0; c <= cy; c++ {
		for a := 0; a <= cx; a++ {
			b.AddCorner(spec.VertexIndex(a*bx, c*by))
		}
	}

	// Horizontal edges run along chart rows, vertical ones along columns.
	hEdge := make(map[[2]int]int)
	for c := 0; c <= cy; c++ {
		for a := 0; a < cx; a++ {
			path := make([]int, 0, bx+1)
			for k := 0; k <= bx; k++ {
				path = append(path, spec.VertexIndex(a*bx+k, c*by))
			}
			var patches []int
			if c > 0 {
				patches = append(patches, spec.ChartIndex(a, c-1))
			}
			if c < cy {
				patches = append(patches, spec.ChartIndex(a, c))
			}
			hEdge[[2]int{a, c}] = b.AddEdge([2]int{corner(a, c), corner(a+1, c)}, path, patches)
		}
	}
	vEdge := make(map[[2]int]int)
	for a := 0; a <= cx; a++ {
		for c := 0; c < cy; c++ {
			path := make([]int, 0, by+1)
			for k := 0; k <= by; k++ {
				path = append(path, spec.VertexIndex(a*bx, c*by+k))
			}
			var patches []int
			if a > 0 {
				patches = append(patches, spec.ChartIndex(a-1, c))
			}
			if a < cx {
				patches = append(patches, spec.ChartIndex(a, c))
			}
			vEdge[[2]int{a, c}] = b.AddEdge([2]int{corner(a, c), corner(a, c+1)}, path, patches)
		}
	}

	unit := []atlas.ParamCoord{{S: 0, T: 0}, {S: 1, T: 0}, {S: 1, T: 1}, {S: 0, T: 1}}
	for c := 0; c < cy; c++ {
		for a := 0; a < cx; a++ {
			var faces []int
			for j := c * by; j < (c+1)*by; j++ {
				for i := a * bx; i < (a+1)*bx; i++ {
					cell := j*spec.NX + i
					faces = append(faces, 2*cell, 2*cell+1)
				}
			}
			b.AddChart(atlas.ChartSpec{Corners: unit})
			b.AddPatch(
				faces,
				[]int{corner(a, c), corner(a+1, c), corner(a+1, c+1), corner(a, c+1)},
				[]int{hEdge[[2]int{a, c}], vEdge[[2]int{a + 1, c}], hEdge[[2]int{a, c + 1}], vEdge[[2]int{a, c}]},
				nil,
			)
		}
	}
}
