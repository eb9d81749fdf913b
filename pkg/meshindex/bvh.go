package meshindex

import (
	"sort"

	"github.com/golang/geo/r3"
	"golang.org/x/sync/errgroup"
)

// node is one entry of the flat BVH arena. Children are referenced by their
// position in the arena. A leaf holds exactly one triangle.
type node struct {
	box   AABB
	left  int32
	right int32
	tri   int32 // triangle id for leaves, -1 for internal nodes
}

func (n *node) isLeaf() bool {
	return n.tri >= 0
}

// primitive caches per-triangle bounds for the builder.
type primitive struct {
	box      AABB
	centroid r3.Vector
	id       int32
}

// parallelThreshold is the triangle count above which bounds are prepared
// concurrently.
const parallelThreshold = 1 << 14

// buildBVH returns the node arena (root at index 0) and the number of tree
// levels. An empty mesh yields an empty arena.
func buildBVH(mesh Mesh, parallelism int) ([]node, int) {
	n := len(mesh.Triangles)
	if n == 0 {
		return nil, 0
	}

	prims := make([]primitive, n)
	computePrimitives(mesh, prims, parallelism)

	b := &builder{nodes: make([]node, 0, 2*n-1)}
	b.build(prims, 1)
	return b.nodes, b.depth
}

func computePrimitives(mesh Mesh, prims []primitive, parallelism int) {
	fill := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			a, b, c := mesh.corners(i)
			prims[i] = primitive{
				box:      EmptyAABB().Extend(a).Extend(b).Extend(c),
				centroid: a.Add(b).Add(c).Mul(1.0 / 3.0),
				id:       int32(i),
			}
		}
	}

	n := len(prims)
	if parallelism < 2 || n < parallelThreshold {
		fill(0, n)
		return
	}

	chunk := (n + parallelism - 1) / parallelism
	var g errgroup.Group
	g.SetLimit(parallelism)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			fill(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}

type builder struct {
	nodes []node
	depth int
}

// build appends the subtree over prims and returns its root index. The node's
// box is the union of its triangles' boxes, so every parent encloses its
// children.
func (b *builder) build(prims []primitive, depth int) int32 {
	idx := int32(len(b.nodes))
	b.nodes = append(b.nodes, node{left: -1, right: -1, tri: -1})
	if depth > b.depth {
		b.depth = depth
	}

	box := EmptyAABB()
	for i := range prims {
		box = box.Union(prims[i].box)
	}
	b.nodes[idx].box = box

	if len(prims) == 1 {
		b.nodes[idx].tri = prims[0].id
		return idx
	}

	// Median split along the widest axis; ties keep triangle order so the
	// layout is deterministic.
	axis := box.LongestAxis()
	sort.Slice(prims, func(i, j int) bool {
		ci := component(prims[i].centroid, axis)
		cj := component(prims[j].centroid, axis)
		if ci == cj {
			return prims[i].id < prims[j].id
		}
		return ci < cj
	})

	mid := len(prims) / 2
	left := b.build(prims[:mid], depth+1)
	right := b.build(prims[mid:], depth+1)
	b.nodes[idx].left = left
	b.nodes[idx].right = right
	return idx
}
