package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	gomath "math"
	"strconv"
	"strings"

	"github.com/Faultbox/meshquery/pkg/math"
)

// STL format errors.
var (
	ErrTruncatedSTLData = errors.New("truncated STL data")
	ErrInvalidSTLSyntax = errors.New("invalid ASCII STL")
)

const (
	stlHeaderSize = 80
	stlFacetSize  = 50 // normal + 3 vertices (12 float32) + attribute word
)

// ParseSTL parses binary or ASCII STL. Facet normals are ignored; vertices
// with identical coordinates are merged so adjacency survives.
func ParseSTL(data []byte) (*TriMesh, error) {
	if isBinarySTL(data) {
		return parseBinarySTL(data)
	}
	return parseASCIISTL(data)
}

// isBinarySTL reports whether data is binary STL. Some exporters write
// "solid" into the binary header and pad the facet block, so a file that
// holds at least the declared facets is binary. Text bytes in the count
// field decode to a facet count far beyond any ASCII file's size.
func isBinarySTL(data []byte) bool {
	if len(data) >= stlHeaderSize+4 {
		n := binary.LittleEndian.Uint32(data[stlHeaderSize:])
		if uint64(len(data)) >= stlHeaderSize+4+uint64(n)*stlFacetSize {
			return true
		}
	}
	return !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid"))
}

func parseBinarySTL(data []byte) (*TriMesh, error) {
	if len(data) < stlHeaderSize+4 {
		return nil, fmt.Errorf("%w: header", ErrTruncatedSTLData)
	}
	count := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	body := data[stlHeaderSize+4:]
	if uint64(len(body)) < uint64(count)*stlFacetSize {
		return nil, fmt.Errorf("%w: %d facets declared, %d bytes present", ErrTruncatedSTLData, count, len(body))
	}

	w := newWelder()
	w.mesh.Triangles = make([][3]uint32, 0, count)
	for i := uint32(0); i < count; i++ {
		facet := body[i*stlFacetSize:]
		// Skip the 12-byte facet normal.
		a := readVec3(facet[12:])
		b := readVec3(facet[24:])
		c := readVec3(facet[36:])
		w.triangle(a, b, c)
	}
	return w.mesh, nil
}

func readVec3(b []byte) math.Vec3 {
	return math.Vec3{
		X: gomath.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		Y: gomath.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: gomath.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}

func parseASCIISTL(data []byte) (*TriMesh, error) {
	w := newWelder()
	var corners []math.Vec3

	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	structured := false
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "facet", "endsolid":
			structured = true
			continue
		case "vertex":
		default:
			continue
		}
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: line %d: vertex needs 3 coordinates", ErrInvalidSTLSyntax, line)
		}
		v, err := parseVec3(fields[1:])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidSTLSyntax, line, err)
		}
		corners = append(corners, v)
		if len(corners) == 3 {
			w.triangle(corners[0], corners[1], corners[2])
			corners = corners[:0]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(corners) != 0 {
		return nil, fmt.Errorf("%w: facet with %d vertices", ErrTruncatedSTLData, len(corners))
	}
	if !structured {
		return nil, fmt.Errorf("%w: no facet or endsolid found", ErrInvalidSTLSyntax)
	}
	return w.mesh, nil
}

func parseVec3(fields []string) (math.Vec3, error) {
	var xyz [3]float32
	for i := range xyz {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return math.Vec3{}, err
		}
		xyz[i] = float32(f)
	}
	return math.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}
