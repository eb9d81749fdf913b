// Package formats loads triangle meshes from STL and Wavefront OBJ files.
package formats

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/meshquery/pkg/math"
	"github.com/Faultbox/meshquery/pkg/meshindex"
)

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported mesh format")

// TriMesh is an indexed triangle mesh as read from disk.
type TriMesh struct {
	Vertices  []math.Vec3
	Triangles [][3]uint32
}

// Mesh returns a view of m suitable for meshindex.New. The slices are shared.
func (m *TriMesh) Mesh() meshindex.Mesh {
	return meshindex.Mesh{Vertices: m.Vertices, Triangles: m.Triangles}
}

// Load reads a mesh file, picking the parser by extension (.stl or .obj).
func Load(path string) (*TriMesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mesh file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".stl":
		return ParseSTL(data)
	case ".obj":
		return ParseOBJ(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// welder merges vertices with bit-identical coordinates.
type welder struct {
	mesh  *TriMesh
	index map[math.Vec3]uint32
}

func newWelder() *welder {
	return &welder{mesh: &TriMesh{}, index: make(map[math.Vec3]uint32)}
}

func (w *welder) vertex(v math.Vec3) uint32 {
	if i, ok := w.index[v]; ok {
		return i
	}
	i := uint32(len(w.mesh.Vertices))
	w.mesh.Vertices = append(w.mesh.Vertices, v)
	w.index[v] = i
	return i
}

func (w *welder) triangle(a, b, c math.Vec3) {
	w.mesh.Triangles = append(w.mesh.Triangles, [3]uint32{w.vertex(a), w.vertex(b), w.vertex(c)})
}
