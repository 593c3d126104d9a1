// Package mesh is the triangle mesh consumed by the parameterization engine.
// A Mesh is built once from positions and face index triples; adjacency and
// the boundary flags are derived at construction and never change. The only
// mutable state is the per-face texture-coordinate slot written by the
// engine after parameterization.
package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is an indexed triangle mesh with vertex connectivity.
type Mesh struct {
	positions []mgl64.Vec3
	faces     [][3]int

	adjFaces [][]int
	adjVerts [][]int
	boundary []bool

	texCoords [][3]mgl64.Vec2
}

// New builds a mesh and its connectivity. It rejects faces that reference
// missing vertices, repeat a vertex, or share an edge with more than one
// other face.
func New(positions []mgl64.Vec3, faces [][3]int) (*Mesh, error) {
	m := &Mesh{
		positions: positions,
		faces:     faces,
		adjFaces:  make([][]int, len(positions)),
		adjVerts:  make([][]int, len(positions)),
		boundary:  make([]bool, len(positions)),
	}

	// Edge map: key = (minVertex, maxVertex), value = number of faces.
	edgeCount := make(map[[2]int]int)

	for fid, f := range faces {
		for k := 0; k < 3; k++ {
			if f[k] < 0 || f[k] >= len(positions) {
				return nil, fmt.Errorf("mesh: face %d references vertex %d, have %d vertices", fid, f[k], len(positions))
			}
		}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			return nil, fmt.Errorf("mesh: face %d repeats a vertex: %v", fid, f)
		}
		for k := 0; k < 3; k++ {
			v := f[k]
			m.adjFaces[v] = append(m.adjFaces[v], fid)
			edge := sortPair(f[k], f[(k+1)%3])
			edgeCount[edge]++
			if edgeCount[edge] > 2 {
				return nil, fmt.Errorf("mesh: edge %v is shared by more than two faces", edge)
			}
		}
	}

	// Vertex neighbors in order of first appearance around each vertex's faces.
	for v := range positions {
		seen := make(map[int]bool)
		for _, fid := range m.adjFaces[v] {
			f := faces[fid]
			for k := 0; k < 3; k++ {
				u := f[k]
				if u == v || seen[u] {
					continue
				}
				seen[u] = true
				m.adjVerts[v] = append(m.adjVerts[v], u)
			}
		}
	}

	for edge, n := range edgeCount {
		if n == 1 {
			m.boundary[edge[0]] = true
			m.boundary[edge[1]] = true
		}
	}

	return m, nil
}

func sortPair(a, b int) [2]int {
	if a < b {
		return [2]int{a, b}
	}
	return [2]int{b, a}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.positions)
}

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int {
	return len(m.faces)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.faces) == 0
}

// Coord returns the position of vertex v.
func (m *Mesh) Coord(v int) mgl64.Vec3 {
	return m.positions[v]
}

// Face returns the vertex index triple of face f.
func (m *Mesh) Face(f int) [3]int {
	return m.faces[f]
}

// FaceCoords returns the three corner positions of face f.
func (m *Mesh) FaceCoords(f int) [3]mgl64.Vec3 {
	t := m.faces[f]
	return [3]mgl64.Vec3{m.positions[t[0]], m.positions[t[1]], m.positions[t[2]]}
}

// FaceNormal returns the unit normal of face f, or the zero vector for a
// degenerate face.
func (m *Mesh) FaceNormal(f int) mgl64.Vec3 {
	p := m.FaceCoords(f)
	n := p[1].Sub(p[0]).Cross(p[2].Sub(p[0]))
	if n.Len() < 1e-12 {
		return mgl64.Vec3{}
	}
	return n.Normalize()
}

// AdjFaces returns the faces incident to vertex v.
func (m *Mesh) AdjFaces(v int) []int {
	return m.adjFaces[v]
}

// AdjVertices returns the vertices sharing an edge with vertex v.
func (m *Mesh) AdjVertices(v int) []int {
	return m.adjVerts[v]
}

// IsBoundaryVertex reports whether v lies on an edge used by a single face.
func (m *Mesh) IsBoundaryVertex(v int) bool {
	return m.boundary[v]
}

// PathLength returns the summed edge length along path[start:end].
func (m *Mesh) PathLength(path []int, start, end int) float64 {
	var l float64
	for k := start + 1; k < end; k++ {
		l += m.positions[path[k]].Sub(m.positions[path[k-1]]).Len()
	}
	return l
}

// ResetTexCoords clears the per-face texture-coordinate slot.
func (m *Mesh) ResetTexCoords() {
	m.texCoords = make([][3]mgl64.Vec2, len(m.faces))
}

// SetFaceTexCoords writes the texture coordinates of face f's three corners.
func (m *Mesh) SetFaceTexCoords(f int, uv [3]mgl64.Vec2) {
	if m.texCoords == nil {
		m.ResetTexCoords()
	}
	m.texCoords[f] = uv
}

// FaceTexCoords returns the texture coordinates of face f.
func (m *Mesh) FaceTexCoords(f int) [3]mgl64.Vec2 {
	if m.texCoords == nil {
		return [3]mgl64.Vec2{}
	}
	return m.texCoords[f]
}

// HasTexCoords reports whether texture coordinates have been written.
func (m *Mesh) HasTexCoords() bool {
	return m.texCoords != nil
}
