package meshindex

import (
	"math"

	"github.com/golang/geo/r3"
)

// Nearest is the result of a closest-point query.
type Nearest struct {
	SquaredDistance float64
	Face            int
	Point           r3.Vector // closest point on Face
}

// SquaredDistance returns the point of the mesh surface closest to p, the
// triangle it lies on and its squared distance to p. When several triangles
// are equally close, the one whose front side faces p is preferred.
//
// It panics if the index has no triangles: there is no closest point, and
// asking for one is a logic error in the caller.
func (idx *Index) SquaredDistance(p r3.Vector) Nearest {
	if len(idx.nodes) == 0 {
		panic("meshindex: SquaredDistance on an empty index")
	}
	s := nearestSearch{
		idx:  idx,
		p:    p,
		best: Nearest{SquaredDistance: math.Inf(1), Face: -1},
	}
	s.visit(0)
	return s.best
}

type nearestSearch struct {
	idx    *Index
	p      r3.Vector
	best   Nearest
	facing float64 // normal·(p - point) of the current best
}

// visit descends nearer child first and skips any subtree whose box is
// already farther than the best candidate.
func (s *nearestSearch) visit(ni int32) {
	n := &s.idx.nodes[ni]
	if n.isLeaf() {
		s.consider(int(n.tri))
		return
	}

	near, far := n.left, n.right
	dNear := s.idx.nodes[near].box.SquaredDistance(s.p)
	dFar := s.idx.nodes[far].box.SquaredDistance(s.p)
	if dFar < dNear {
		near, far = far, near
		dNear, dFar = dFar, dNear
	}
	if dNear <= s.best.SquaredDistance {
		s.visit(near)
	}
	if dFar <= s.best.SquaredDistance {
		s.visit(far)
	}
}

func (s *nearestSearch) consider(face int) {
	a, b, c := s.idx.mesh.corners(face)
	q := closestPointOnTriangle(s.p, a, b, c)
	d2 := s.p.Sub(q).Norm2()
	if !(d2 <= s.best.SquaredDistance) {
		return
	}

	facing := triangleNormal(a, b, c).Dot(s.p.Sub(q))
	if d2 == s.best.SquaredDistance && facing <= s.facing {
		return
	}
	s.best = Nearest{SquaredDistance: d2, Face: face, Point: q}
	s.facing = facing
}
