package meshindex

import (
	gomath "math"
	"testing"

	"github.com/golang/geo/r3"

	"github.com/Faultbox/meshquery/pkg/math"
)

// cubeMesh returns the cube [-0.5, 0.5]^3 with outward-facing triangles.
// Faces: 0-1 bottom, 2-3 top, 4-5 front (-Y), 6-7 back (+Y), 8-9 left, 10-11 right.
func cubeMesh() Mesh {
	const h = 0.5
	return Mesh{
		Vertices: []math.Vec3{
			{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h}, {X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h},
			{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h}, {X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h},
		},
		Triangles: [][3]uint32{
			{0, 2, 1}, {0, 3, 2},
			{4, 5, 6}, {4, 6, 7},
			{0, 1, 5}, {0, 5, 4},
			{3, 7, 6}, {3, 6, 2},
			{0, 4, 7}, {0, 7, 3},
			{1, 2, 6}, {1, 6, 5},
		},
	}
}

// squareMesh returns the unit square in the z=0 plane split along its diagonal.
func squareMesh() Mesh {
	return Mesh{
		Vertices:  []math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0}},
		Triangles: [][3]uint32{{0, 1, 2}, {0, 2, 3}},
	}
}

// gridMesh returns an n x n quad heightfield over [0, n]^2 with a gentle wave,
// two triangles per quad.
func gridMesh(n int) Mesh {
	var m Mesh
	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			z := 0.25 * gomath.Sin(float64(x)*0.7) * gomath.Cos(float64(y)*0.5)
			m.Vertices = append(m.Vertices, math.Vec3{X: float32(x), Y: float32(y), Z: float32(z)})
		}
	}
	row := uint32(n + 1)
	for y := uint32(0); y < uint32(n); y++ {
		for x := uint32(0); x < uint32(n); x++ {
			a := y*row + x
			b := a + 1
			c := a + row
			d := c + 1
			m.Triangles = append(m.Triangles, [3]uint32{a, b, d}, [3]uint32{a, d, c})
		}
	}
	return m
}

// sphereMesh returns a closed UV sphere of radius r centered at the origin.
func sphereMesh(stacks, slices int, r float64) Mesh {
	var m Mesh
	m.Vertices = append(m.Vertices, math.Vec3{Z: float32(r)})
	for i := 1; i < stacks; i++ {
		theta := gomath.Pi * float64(i) / float64(stacks)
		for j := 0; j < slices; j++ {
			phi := 2 * gomath.Pi * float64(j) / float64(slices)
			m.Vertices = append(m.Vertices, math.Vec3{
				X: float32(r * gomath.Sin(theta) * gomath.Cos(phi)),
				Y: float32(r * gomath.Sin(theta) * gomath.Sin(phi)),
				Z: float32(r * gomath.Cos(theta)),
			})
		}
	}
	south := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, math.Vec3{Z: float32(-r)})

	ring := func(i, j int) uint32 {
		return uint32(1 + (i-1)*slices + j%slices)
	}
	for j := 0; j < slices; j++ {
		m.Triangles = append(m.Triangles, [3]uint32{0, ring(1, j), ring(1, j+1)})
	}
	for i := 1; i < stacks-1; i++ {
		for j := 0; j < slices; j++ {
			a, b := ring(i, j), ring(i, j+1)
			c, d := ring(i+1, j), ring(i+1, j+1)
			m.Triangles = append(m.Triangles, [3]uint32{a, c, b}, [3]uint32{b, c, d})
		}
	}
	for j := 0; j < slices; j++ {
		m.Triangles = append(m.Triangles, [3]uint32{south, ring(stacks-1, j+1), ring(stacks-1, j)})
	}
	return m
}

func mustIndex(t *testing.T, m Mesh, opts ...Option) *Index {
	t.Helper()
	idx, err := New(m, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return idx
}

func vec(x, y, z float64) r3.Vector {
	return r3.Vector{X: x, Y: y, Z: z}
}

func approxEqual(a, b, tol float64) bool {
	return gomath.Abs(a-b) <= tol
}

func approxVec(a, b r3.Vector, tol float64) bool {
	return approxEqual(a.X, b.X, tol) && approxEqual(a.Y, b.Y, tol) && approxEqual(a.Z, b.Z, tol)
}
