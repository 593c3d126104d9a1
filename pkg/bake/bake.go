// Package bake turns a parameterized mesh into flat render buffers, one
// part per resolved face chart.
package bake

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/chartparam/pkg/atlas"
	"github.com/chazu/chartparam/pkg/mesh"
)

// Part is a triangle mesh suitable for rendering. All arrays are flat:
// positions and normals hold 3 floats per vertex, uvs 2, and indices 3
// uint32s per triangle.
type Part struct {
	Chart     int       `json:"chart"`
	Positions []float32 `json:"positions"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals   []float32 `json:"normals"`   // [nx0,ny0,nz0, ...]
	UVs       []float32 `json:"uvs"`       // [s0,t0, s1,t1, ...]
	Indices   []uint32  `json:"indices"`   // [i0,i1,i2, ...] triangles
	Faces     []int     `json:"faces"`     // source face per triangle
}

// VertexCount returns the number of vertices.
func (p *Part) VertexCount() int {
	return len(p.Positions) / 3
}

// TriangleCount returns the number of triangles.
func (p *Part) TriangleCount() int {
	return len(p.Indices) / 3
}

// Normals selects how vertex normals are produced.
type Normals string

const (
	// NormalsFlat gives each triangle its own three vertices carrying the
	// face normal.
	NormalsFlat Normals = "flat"
	// NormalsSmooth shares vertices within a part and averages the
	// area-weighted normals of every mesh face around each vertex, so
	// shading stays continuous across chart seams.
	NormalsSmooth Normals = "smooth"
)

// Source is what Bake reads. *param.Session satisfies it.
type Source interface {
	Mesh() *mesh.Mesh
	FaceChart(f int) int
	FaceVertexCoords(f int) [3]atlas.ParamCoord
}

// Bake groups the faces of src by resolved chart and emits one Part per
// chart, ordered by chart id. Every face must have a chart.
func Bake(src Source, mode Normals) ([]*Part, error) {
	m := src.Mesh()
	if m == nil {
		return nil, fmt.Errorf("bake: source has no mesh")
	}
	if mode != NormalsFlat && mode != NormalsSmooth {
		return nil, fmt.Errorf("bake: unknown normal mode %q", mode)
	}

	byChart := make(map[int][]int)
	for f := 0; f < m.FaceCount(); f++ {
		c := src.FaceChart(f)
		if c < 0 {
			return nil, fmt.Errorf("bake: face %d has no chart", f)
		}
		byChart[c] = append(byChart[c], f)
	}
	charts := make([]int, 0, len(byChart))
	for c := range byChart {
		charts = append(charts, c)
	}
	sort.Ints(charts)

	var vertexNormals []mgl64.Vec3
	if mode == NormalsSmooth {
		vertexNormals = smoothNormals(m)
	}

	parts := make([]*Part, 0, len(charts))
	for _, c := range charts {
		p := &Part{Chart: c}
		shared := make(map[int]uint32)
		for _, f := range byChart[c] {
			uv := src.FaceVertexCoords(f)
			face := m.Face(f)
			flat := m.FaceNormal(f)
			for k, v := range face {
				if mode == NormalsSmooth {
					if idx, ok := shared[v]; ok {
						p.Indices = append(p.Indices, idx)
						continue
					}
					shared[v] = uint32(p.VertexCount())
					p.Indices = append(p.Indices, uint32(p.VertexCount()))
					p.appendVertex(m.Coord(v), vertexNormals[v], uv[k])
					continue
				}
				p.Indices = append(p.Indices, uint32(p.VertexCount()))
				p.appendVertex(m.Coord(v), flat, uv[k])
			}
			p.Faces = append(p.Faces, f)
		}
		parts = append(parts, p)
	}
	return parts, nil
}

func (p *Part) appendVertex(pos, n mgl64.Vec3, uv atlas.ParamCoord) {
	p.Positions = append(p.Positions, float32(pos.X()), float32(pos.Y()), float32(pos.Z()))
	p.Normals = append(p.Normals, float32(n.X()), float32(n.Y()), float32(n.Z()))
	p.UVs = append(p.UVs, float32(uv.S), float32(uv.T))
}

// smoothNormals accumulates the unnormalized face normals (twice the face
// area in length) at each vertex and normalizes the sums.
func smoothNormals(m *mesh.Mesh) []mgl64.Vec3 {
	normals := make([]mgl64.Vec3, m.VertexCount())
	for f := 0; f < m.FaceCount(); f++ {
		p := m.FaceCoords(f)
		n := p[1].Sub(p[0]).Cross(p[2].Sub(p[0]))
		for _, v := range m.Face(f) {
			normals[v] = normals[v].Add(n)
		}
	}
	for v, n := range normals {
		if l := n.Len(); l > 1e-12 {
			normals[v] = n.Mul(1 / l)
		}
	}
	return normals
}
