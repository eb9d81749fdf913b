package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// OBJ format errors.
var (
	ErrInvalidOBJVertex = errors.New("invalid OBJ vertex")
	ErrInvalidOBJFace   = errors.New("invalid OBJ face")
)

// ParseOBJ parses the geometry of a Wavefront OBJ file. Only "v" and "f"
// statements are used; polygons are fan-triangulated around their first
// corner and negative indices count back from the latest vertex. Texture and
// normal references in "v/vt/vn" corners are ignored.
func ParseOBJ(data []byte) (*TriMesh, error) {
	mesh := &TriMesh{}
	var poly []uint32

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: need 3 coordinates", ErrInvalidOBJVertex, line)
			}
			v, err := parseVec3(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJVertex, line, err)
			}
			mesh.Vertices = append(mesh.Vertices, v)

		case "f":
			poly = poly[:0]
			for _, corner := range fields[1:] {
				idx, err := resolveOBJIndex(corner, len(mesh.Vertices))
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJFace, line, err)
				}
				poly = append(poly, idx)
			}
			if len(poly) < 3 {
				return nil, fmt.Errorf("%w: line %d: %d corners", ErrInvalidOBJFace, line, len(poly))
			}
			for i := 1; i+1 < len(poly); i++ {
				mesh.Triangles = append(mesh.Triangles, [3]uint32{poly[0], poly[i], poly[i+1]})
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return mesh, nil
}

// resolveOBJIndex turns a face corner ("7", "7/2", "7//3", "-1/2/3") into a
// zero-based vertex index.
func resolveOBJIndex(corner string, vertexCount int) (uint32, error) {
	if i := strings.IndexByte(corner, '/'); i >= 0 {
		corner = corner[:i]
	}
	n, err := strconv.Atoi(corner)
	if err != nil {
		return 0, fmt.Errorf("corner %q: %v", corner, err)
	}

	switch {
	case n > 0 && n <= vertexCount:
		return uint32(n - 1), nil
	case n < 0 && -n <= vertexCount:
		return uint32(vertexCount + n), nil
	default:
		return 0, fmt.Errorf("vertex %d out of range (%d defined)", n, vertexCount)
	}
}
