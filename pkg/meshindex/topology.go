package meshindex

// NoNeighbor marks an edge without a unique adjacent triangle: a boundary
// edge, a degenerate edge, or an edge shared by more than two triangles.
const NoNeighbor = -1

// buildVertexFaces maps every vertex to the triangles referencing it, in
// triangle order. A triangle that repeats a vertex is listed once.
func buildVertexFaces(mesh Mesh) [][]int {
	out := make([][]int, len(mesh.Vertices))
	for face, tri := range mesh.Triangles {
		for _, v := range tri {
			list := out[v]
			if n := len(list); n > 0 && list[n-1] == face {
				continue
			}
			out[v] = append(list, face)
		}
	}
	return out
}

type edgeKey struct {
	lo, hi uint32
}

func makeEdgeKey(a, b uint32) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}

// edgeUse records the first two triangles seen on an undirected edge.
type edgeUse struct {
	faces [2]int32
	sides [2]int8
	count int
}

// buildFaceNeighbors returns, for every triangle, the triangle across each of
// its edges. Edge i joins vertices i and (i+1)%3.
func buildFaceNeighbors(mesh Mesh) [][3]int32 {
	out := make([][3]int32, len(mesh.Triangles))
	uses := make(map[edgeKey]*edgeUse, len(mesh.Triangles)*3/2)

	for face, tri := range mesh.Triangles {
		out[face] = [3]int32{NoNeighbor, NoNeighbor, NoNeighbor}
		for side := 0; side < 3; side++ {
			a, b := tri[side], tri[(side+1)%3]
			if a == b {
				continue
			}
			key := makeEdgeKey(a, b)
			u, ok := uses[key]
			if !ok {
				u = &edgeUse{}
				uses[key] = u
			}
			if u.count < 2 {
				u.faces[u.count] = int32(face)
				u.sides[u.count] = int8(side)
			}
			u.count++
		}
	}

	for _, u := range uses {
		if u.count != 2 || u.faces[0] == u.faces[1] {
			continue
		}
		out[u.faces[0]][u.sides[0]] = u.faces[1]
		out[u.faces[1]][u.sides[1]] = u.faces[0]
	}
	return out
}
