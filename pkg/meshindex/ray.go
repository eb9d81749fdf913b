package meshindex

import (
	"fmt"
	"math"
	"slices"

	"github.com/golang/geo/r3"
)

// unitTolerance bounds | |dir|^2 - 1 | for a direction to count as unit length.
const unitTolerance = 1e-6

func checkDirection(dir r3.Vector) error {
	n2 := dir.Norm2()
	if !(math.Abs(n2-1) <= unitTolerance) {
		return fmt.Errorf("%w: length %g", ErrNonUnitDirection, math.Sqrt(n2))
	}
	return nil
}

// stackEntry is a pending subtree together with the ray parameter at which
// the ray enters its box.
type stackEntry struct {
	node   int32
	tEnter float64
}

// QueryRayHit returns the closest intersection of the ray origin + t*dir
// (t >= 0) with the mesh. When nothing is hit the result has T = +Inf and
// Face = -1. dir must be a unit vector.
func (idx *Index) QueryRayHit(origin, dir r3.Vector) (Hit, error) {
	hit := noHit(origin, dir)
	if err := checkDirection(dir); err != nil {
		return hit, err
	}
	if len(idx.nodes) == 0 {
		return hit, nil
	}

	rr := newRayRecips(dir)
	tRoot, ok := idx.nodes[0].box.intersectRay(origin, rr)
	if !ok {
		return hit, nil
	}

	bestT := math.Inf(1)
	bestFace := int32(-1)
	stack := make([]stackEntry, 0, 2*idx.depth+2)
	stack = append(stack, stackEntry{node: 0, tEnter: tRoot})

	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if e.tEnter > bestT {
			continue
		}

		n := &idx.nodes[e.node]
		if n.isLeaf() {
			a, b, c := idx.mesh.corners(int(n.tri))
			if t, ok := intersectTriangle(origin, dir, a, b, c, idx.epsilon); ok && t >= 0 && t < bestT {
				bestT = t
				bestFace = n.tri
			}
			continue
		}

		// Push the farther child first so the nearer one is explored next.
		lT, lOK := idx.nodes[n.left].box.intersectRay(origin, rr)
		rT, rOK := idx.nodes[n.right].box.intersectRay(origin, rr)
		lOK = lOK && lT <= bestT
		rOK = rOK && rT <= bestT
		switch {
		case lOK && rOK:
			if lT < rT {
				stack = append(stack, stackEntry{n.right, rT}, stackEntry{n.left, lT})
			} else {
				stack = append(stack, stackEntry{n.left, lT}, stackEntry{n.right, rT})
			}
		case lOK:
			stack = append(stack, stackEntry{n.left, lT})
		case rOK:
			stack = append(stack, stackEntry{n.right, rT})
		}
	}

	if bestFace < 0 {
		return hit, nil
	}
	hit.T = bestT
	hit.Face = int(bestFace)
	hit.Normal = idx.NormalOf(int(bestFace))
	return hit, nil
}

// QueryRayHits returns every intersection of the ray origin + t*dir (t >= 0)
// with the mesh, sorted by ascending T. Hits whose T is exactly equal to the
// previous one are dropped, which collapses the duplicates reported when the
// ray passes through an edge or vertex shared by several triangles. The
// result is empty, not nil, when nothing is hit. dir must be a unit vector.
func (idx *Index) QueryRayHits(origin, dir r3.Vector) ([]Hit, error) {
	if err := checkDirection(dir); err != nil {
		return nil, err
	}
	hits := []Hit{}
	if len(idx.nodes) == 0 {
		return hits, nil
	}

	rr := newRayRecips(dir)
	if _, ok := idx.nodes[0].box.intersectRay(origin, rr); !ok {
		return hits, nil
	}

	stack := make([]int32, 0, 2*idx.depth+2)
	stack = append(stack, 0)
	for len(stack) > 0 {
		ni := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &idx.nodes[ni]
		if n.isLeaf() {
			a, b, c := idx.mesh.corners(int(n.tri))
			if t, ok := intersectTriangle(origin, dir, a, b, c, idx.epsilon); ok && t >= 0 {
				h := noHit(origin, dir)
				h.T = t
				h.Face = int(n.tri)
				h.Normal = idx.NormalOf(h.Face)
				hits = append(hits, h)
			}
			continue
		}

		if _, ok := idx.nodes[n.right].box.intersectRay(origin, rr); ok {
			stack = append(stack, n.right)
		}
		if _, ok := idx.nodes[n.left].box.intersectRay(origin, rr); ok {
			stack = append(stack, n.left)
		}
	}

	slices.SortStableFunc(hits, func(a, b Hit) int {
		switch {
		case a.T < b.T:
			return -1
		case a.T > b.T:
			return 1
		}
		return 0
	})
	return slices.CompactFunc(hits, func(a, b Hit) bool {
		return a.T == b.T
	}), nil
}
