package meshindex

import (
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/Faultbox/meshquery/pkg/math"
)

// Mesh is a borrowed view of triangle geometry: vertex positions plus
// triangles given as three indices into Vertices. An Index built over a Mesh
// keeps referencing these slices, so they must not be modified while the
// index is in use.
type Mesh struct {
	Vertices  []math.Vec3
	Triangles [][3]uint32
}

// VertexCount returns the number of vertices.
func (m Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// IsEmpty returns true if the mesh has no triangles.
func (m Mesh) IsEmpty() bool {
	return len(m.Triangles) == 0
}

// Validate checks that every triangle references existing vertices.
func (m Mesh) Validate() error {
	n := len(m.Vertices)
	for face, tri := range m.Triangles {
		for _, v := range tri {
			if int(v) >= n {
				return fmt.Errorf("face %d references vertex %d of %d: %w", face, v, n, ErrVertexIndexOutOfRange)
			}
		}
	}
	return nil
}

// corners returns the triangle's vertices promoted to double precision.
func (m Mesh) corners(face int) (a, b, c r3.Vector) {
	tri := m.Triangles[face]
	return m.Vertices[tri[0]].R3(), m.Vertices[tri[1]].R3(), m.Vertices[tri[2]].R3()
}

// Bounds returns the box enclosing all referenced vertices.
func (m Mesh) Bounds() AABB {
	box := EmptyAABB()
	for face := range m.Triangles {
		a, b, c := m.corners(face)
		box = box.Extend(a).Extend(b).Extend(c)
	}
	return box
}

// AverageEdgeLength returns the mean length of all triangle edges, counting
// shared edges once per triangle. Returns 0 for an empty mesh.
func (m Mesh) AverageEdgeLength() float64 {
	if len(m.Triangles) == 0 {
		return 0
	}
	var sum float64
	for face := range m.Triangles {
		a, b, c := m.corners(face)
		sum += a.Distance(b) + b.Distance(c) + c.Distance(a)
	}
	return sum / float64(3*len(m.Triangles))
}
