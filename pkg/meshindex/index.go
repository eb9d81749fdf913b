// Package meshindex provides spatial queries over a triangle mesh: first-hit
// and all-hits ray casting and closest-point search, accelerated by a
// bounding-volume hierarchy built once per mesh, plus vertex-to-face and
// face-to-face adjacency lookups.
//
// An Index is immutable after New and safe for concurrent queries.
package meshindex

import (
	"time"

	"github.com/golang/geo/r3"
	"go.uber.org/zap"

	"github.com/Faultbox/meshquery/pkg/math"
)

// Index answers spatial and topological queries over a borrowed Mesh.
type Index struct {
	mesh          Mesh
	nodes         []node
	depth         int
	epsilon       float64
	vertexFaces   [][]int
	faceNeighbors [][3]int32
}

// New builds the BVH and both adjacency tables over mesh. The mesh slices are
// referenced, not copied. A mesh without triangles yields a valid empty index.
func New(mesh Mesh, opts ...Option) (*Index, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := mesh.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	idx := &Index{
		mesh:    mesh,
		epsilon: o.epsilon,
	}
	if o.adaptiveEpsilon {
		if l := mesh.AverageEdgeLength(); l > 0 {
			idx.epsilon = DefaultEpsilon * l * l
		}
	}

	idx.nodes, idx.depth = buildBVH(mesh, o.parallelism)
	idx.vertexFaces = buildVertexFaces(mesh)
	idx.faceNeighbors = buildFaceNeighbors(mesh)

	o.logger.Debug("mesh index built",
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Int("nodes", len(idx.nodes)),
		zap.Int("depth", idx.depth),
		zap.Float64("epsilon", idx.epsilon),
		zap.Duration("elapsed", time.Since(start)),
	)
	return idx, nil
}

// Clone returns a deep copy of the index. The copy shares the mesh view but
// owns its own tree and adjacency tables.
func (idx *Index) Clone() *Index {
	c := &Index{
		mesh:          idx.mesh,
		depth:         idx.depth,
		epsilon:       idx.epsilon,
		nodes:         append([]node(nil), idx.nodes...),
		faceNeighbors: append([][3]int32(nil), idx.faceNeighbors...),
	}
	if idx.vertexFaces != nil {
		c.vertexFaces = make([][]int, len(idx.vertexFaces))
		for v, faces := range idx.vertexFaces {
			c.vertexFaces[v] = append([]int(nil), faces...)
		}
	}
	return c
}

// Move transfers the contents of idx to a new Index without copying and
// leaves idx empty: it keeps answering queries as an index over no triangles.
func (idx *Index) Move() *Index {
	moved := &Index{}
	*moved = *idx
	*idx = Index{epsilon: DefaultEpsilon}
	return moved
}

// Vertices returns the indexed vertex positions.
func (idx *Index) Vertices() []math.Vec3 {
	return idx.mesh.Vertices
}

// Triangles returns the indexed triangles.
func (idx *Index) Triangles() [][3]uint32 {
	return idx.mesh.Triangles
}

// Vertex returns vertex i.
func (idx *Index) Vertex(i int) math.Vec3 {
	return idx.mesh.Vertices[i]
}

// Triangle returns the vertex indices of face i.
func (idx *Index) Triangle(i int) [3]uint32 {
	return idx.mesh.Triangles[i]
}

// TriangleCount returns the number of indexed triangles.
func (idx *Index) TriangleCount() int {
	return len(idx.mesh.Triangles)
}

// VertexCount returns the number of vertices.
func (idx *Index) VertexCount() int {
	return len(idx.mesh.Vertices)
}

// NormalOf returns the unit normal of face following its winding. For a
// degenerate triangle the result is the zero vector.
func (idx *Index) NormalOf(face int) r3.Vector {
	a, b, c := idx.mesh.corners(face)
	return triangleNormal(a, b, c)
}

// Epsilon returns the triangle-ray epsilon in use.
func (idx *Index) Epsilon() float64 {
	return idx.epsilon
}

// Bounds returns the box enclosing the mesh, empty for an empty index.
func (idx *Index) Bounds() AABB {
	if len(idx.nodes) == 0 {
		return EmptyAABB()
	}
	return idx.nodes[0].box
}

// NodeCount returns the number of BVH nodes.
func (idx *Index) NodeCount() int {
	return len(idx.nodes)
}

// Depth returns the number of BVH levels.
func (idx *Index) Depth() int {
	return idx.depth
}

// FacesOf returns the triangles referencing vertex v. The slice is owned by
// the index and must not be modified. Returns nil for an unknown vertex.
func (idx *Index) FacesOf(v int) []int {
	if v < 0 || v >= len(idx.vertexFaces) {
		return nil
	}
	return idx.vertexFaces[v]
}

// NeighborsOf returns the triangle across each edge of face, edge i joining
// vertices i and (i+1)%3, or NoNeighbor where there is no unique one.
func (idx *Index) NeighborsOf(face int) [3]int {
	out := [3]int{NoNeighbor, NoNeighbor, NoNeighbor}
	if face < 0 || face >= len(idx.faceNeighbors) {
		return out
	}
	for i, n := range idx.faceNeighbors[face] {
		out[i] = int(n)
	}
	return out
}
