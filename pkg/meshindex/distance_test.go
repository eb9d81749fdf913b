package meshindex

import (
	gomath "math"
	"math/rand/v2"
	"testing"

	"github.com/golang/geo/r3"
)

func TestClosestPointOnTriangle(t *testing.T) {
	a, b, c := vec(0, 0, 0), vec(2, 0, 0), vec(0, 2, 0)

	tests := []struct {
		name string
		p    r3.Vector
		want r3.Vector
	}{
		{"interior above", vec(0.5, 0.5, 3), vec(0.5, 0.5, 0)},
		{"vertex A", vec(-1, -1, 1), a},
		{"vertex B", vec(4, -1, 0), b},
		{"vertex C", vec(-1, 5, 0), c},
		{"edge AB", vec(1, -3, 0), vec(1, 0, 0)},
		{"edge AC", vec(-2, 1, 0), vec(0, 1, 0)},
		{"edge BC", vec(2, 2, 1), vec(1, 1, 0)},
		{"on surface", vec(0.25, 0.75, 0), vec(0.25, 0.75, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := closestPointOnTriangle(tt.p, a, b, c)
			if !approxVec(got, tt.want, 1e-12) {
				t.Errorf("closestPointOnTriangle(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestSquaredDistanceOnSurface(t *testing.T) {
	m := sphereMesh(10, 20, 2)
	idx := mustIndex(t, m)

	for face := range m.Triangles {
		a, b, c := m.corners(face)
		p := a.Mul(0.25).Add(b.Mul(0.35)).Add(c.Mul(0.4))

		got := idx.SquaredDistance(p)
		if got.SquaredDistance > 1e-20 {
			t.Errorf("face %d: SquaredDistance = %v, want 0", face, got.SquaredDistance)
		}
		if !approxVec(got.Point, p, 1e-12) {
			t.Errorf("face %d: closest point %v, want %v", face, got.Point, p)
		}
	}
}

func TestSquaredDistanceSingleTriangle(t *testing.T) {
	m := squareMesh()
	m.Triangles = m.Triangles[:1]
	idx := mustIndex(t, m)

	got := idx.SquaredDistance(vec(2, 0, 0))
	if got.Face != 0 || got.SquaredDistance != 1 || got.Point != vec(1, 0, 0) {
		t.Errorf("SquaredDistance() = %+v, want face 0 at (1, 0, 0), d2 = 1", got)
	}
}

func TestSquaredDistanceMatchesBruteForce(t *testing.T) {
	m := gridMesh(20)
	idx := mustIndex(t, m)
	rng := rand.New(rand.NewPCG(13, 17))

	for i := 0; i < 300; i++ {
		p := vec(rng.Float64()*26-3, rng.Float64()*26-3, rng.Float64()*8-4)
		got := idx.SquaredDistance(p)

		want := gomath.Inf(1)
		for face := range m.Triangles {
			a, b, c := m.corners(face)
			if d2 := p.Sub(closestPointOnTriangle(p, a, b, c)).Norm2(); d2 < want {
				want = d2
			}
		}
		if got.SquaredDistance != want {
			t.Errorf("point %v: SquaredDistance = %v, brute force %v", p, got.SquaredDistance, want)
		}
		if d2 := p.Sub(got.Point).Norm2(); d2 != got.SquaredDistance {
			t.Errorf("point %v: |p - Point|^2 = %v, reported %v", p, d2, got.SquaredDistance)
		}
	}
}

func TestSquaredDistancePrefersFacingTriangle(t *testing.T) {
	idx := mustIndex(t, cubeMesh())

	// Closest to the corner shared by the top, right and back faces; only the
	// top face looks at the query point.
	got := idx.SquaredDistance(vec(0.5, 0.5, 3))
	if got.Face != 2 && got.Face != 3 {
		t.Errorf("Face = %d, want a top face (2 or 3)", got.Face)
	}
}

func TestSquaredDistanceEmptyIndexPanics(t *testing.T) {
	idx := mustIndex(t, Mesh{})

	defer func() {
		if recover() == nil {
			t.Error("SquaredDistance on an empty index did not panic")
		}
	}()
	idx.SquaredDistance(vec(0, 0, 0))
}
