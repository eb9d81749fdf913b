package meshindex

import (
	"errors"
	gomath "math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/golang/geo/r3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/meshquery/pkg/math"
)

func TestNewRejectsBadVertexIndex(t *testing.T) {
	m := Mesh{
		Vertices:  []math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}},
		Triangles: [][3]uint32{{0, 1, 2}, {0, 2, 3}},
	}

	_, err := New(m)
	if !errors.Is(err, ErrVertexIndexOutOfRange) {
		t.Errorf("New() error = %v, want ErrVertexIndexOutOfRange", err)
	}
}

func TestEmptyIndex(t *testing.T) {
	if !(Mesh{}).IsEmpty() || cubeMesh().IsEmpty() {
		t.Error("IsEmpty() disagrees with triangle count")
	}
	idx := mustIndex(t, Mesh{})

	if idx.NodeCount() != 0 || idx.Depth() != 0 || idx.TriangleCount() != 0 {
		t.Errorf("empty index: nodes=%d depth=%d triangles=%d", idx.NodeCount(), idx.Depth(), idx.TriangleCount())
	}
	if !idx.Bounds().IsEmpty() {
		t.Errorf("Bounds() = %+v, want empty", idx.Bounds())
	}

	hit, err := idx.QueryRayHit(vec(0, 0, 0), vec(1, 0, 0))
	if err != nil {
		t.Fatalf("QueryRayHit() error = %v", err)
	}
	if hit.IsHit() || hit.Face != -1 || !gomath.IsInf(hit.T, 1) {
		t.Errorf("QueryRayHit() = %+v, want no hit", hit)
	}

	hits, err := idx.QueryRayHits(vec(0, 0, 0), vec(1, 0, 0))
	if err != nil {
		t.Fatalf("QueryRayHits() error = %v", err)
	}
	if hits == nil || len(hits) != 0 {
		t.Errorf("QueryRayHits() = %#v, want empty non-nil slice", hits)
	}
}

func TestIndexAccessors(t *testing.T) {
	m := cubeMesh()
	idx := mustIndex(t, m)

	if idx.TriangleCount() != 12 || idx.VertexCount() != 8 {
		t.Errorf("counts = %d triangles, %d vertices", idx.TriangleCount(), idx.VertexCount())
	}
	if idx.NodeCount() != 2*12-1 {
		t.Errorf("NodeCount() = %d, want 23", idx.NodeCount())
	}
	if idx.Triangle(2) != [3]uint32{4, 5, 6} {
		t.Errorf("Triangle(2) = %v", idx.Triangle(2))
	}
	if idx.Vertex(6) != (math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}) {
		t.Errorf("Vertex(6) = %v", idx.Vertex(6))
	}
	if &idx.Vertices()[0] != &m.Vertices[0] || &idx.Triangles()[0] != &m.Triangles[0] {
		t.Error("index copied the mesh instead of borrowing it")
	}

	want := AABB{Min: vec(-0.5, -0.5, -0.5), Max: vec(0.5, 0.5, 0.5)}
	if idx.Bounds() != want {
		t.Errorf("Bounds() = %+v, want %+v", idx.Bounds(), want)
	}

	normals := map[int]r3.Vector{
		0: vec(0, 0, -1), 2: vec(0, 0, 1),
		4: vec(0, -1, 0), 6: vec(0, 1, 0),
		8: vec(-1, 0, 0), 10: vec(1, 0, 0),
	}
	for face, n := range normals {
		if got := idx.NormalOf(face); !approxVec(got, n, 1e-15) {
			t.Errorf("NormalOf(%d) = %v, want %v", face, got, n)
		}
	}
}

func TestEpsilonOptions(t *testing.T) {
	m := cubeMesh()

	if got := mustIndex(t, m).Epsilon(); got != DefaultEpsilon {
		t.Errorf("default Epsilon() = %v, want %v", got, DefaultEpsilon)
	}
	if got := mustIndex(t, m, WithEpsilon(1e-9)).Epsilon(); got != 1e-9 {
		t.Errorf("WithEpsilon(1e-9) Epsilon() = %v", got)
	}
	if got := mustIndex(t, m, WithEpsilon(-1)).Epsilon(); got != DefaultEpsilon {
		t.Errorf("WithEpsilon(-1) Epsilon() = %v, want default", got)
	}

	// Every cube triangle has two unit edges and one diagonal.
	l := (2 + gomath.Sqrt2) / 3
	got := mustIndex(t, m, WithAdaptiveEpsilon(true)).Epsilon()
	if !approxEqual(got, DefaultEpsilon*l*l, 1e-18) {
		t.Errorf("adaptive Epsilon() = %v, want %v", got, DefaultEpsilon*l*l)
	}

	if got := mustIndex(t, Mesh{}, WithAdaptiveEpsilon(true)).Epsilon(); got != DefaultEpsilon {
		t.Errorf("adaptive Epsilon() on empty mesh = %v, want default", got)
	}
}

func TestWithLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mustIndex(t, cubeMesh(), WithLogger(zap.New(core)))

	entries := logs.FilterMessage("mesh index built").All()
	if len(entries) != 1 {
		t.Fatalf("got %d build log entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["triangles"] != int64(12) || fields["nodes"] != int64(23) {
		t.Errorf("log fields = %v", fields)
	}

	// nil is ignored rather than installed.
	mustIndex(t, cubeMesh(), WithLogger(nil))
}

func TestClone(t *testing.T) {
	idx := mustIndex(t, sphereMesh(8, 16, 1))
	c := idx.Clone()

	rng := rand.New(rand.NewPCG(21, 23))
	for i := 0; i < 100; i++ {
		origin := vec(rng.Float64()*4-2, rng.Float64()*4-2, rng.Float64()*4-2)
		dir := vec(rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()).Normalize()

		h1, _ := idx.QueryRayHit(origin, dir)
		h2, _ := c.QueryRayHit(origin, dir)
		if h1 != h2 {
			t.Fatalf("ray %v %v: original %+v, clone %+v", origin, dir, h1, h2)
		}
		hs1, _ := idx.QueryRayHits(origin, dir)
		hs2, _ := c.QueryRayHits(origin, dir)
		if !slices.Equal(hs1, hs2) {
			t.Fatalf("ray %v %v: hits differ", origin, dir)
		}
		if idx.SquaredDistance(origin) != c.SquaredDistance(origin) {
			t.Fatalf("point %v: nearest differs", origin)
		}
	}

	for v := 0; v < idx.VertexCount(); v++ {
		if !slices.Equal(idx.FacesOf(v), c.FacesOf(v)) {
			t.Errorf("FacesOf(%d) differs after Clone", v)
		}
	}

	// The clone owns its tables.
	want := idx.FacesOf(0)[0]
	c.vertexFaces[0][0] = -7
	c.faceNeighbors[0][0] = -7
	c.nodes[0].box = AABB{}
	if idx.FacesOf(0)[0] != want || idx.NeighborsOf(0)[0] == -7 || idx.Bounds() == (AABB{}) {
		t.Error("modifying the clone changed the original")
	}
}

func TestMove(t *testing.T) {
	idx := mustIndex(t, cubeMesh(), WithEpsilon(1e-8))
	before, _ := idx.QueryRayHit(vec(0, 0, 5), vec(0, 0, -1))

	moved := idx.Move()

	after, err := moved.QueryRayHit(vec(0, 0, 5), vec(0, 0, -1))
	if err != nil || after != before {
		t.Errorf("moved QueryRayHit() = %+v, %v; want %+v", after, err, before)
	}
	if moved.Epsilon() != 1e-8 || moved.TriangleCount() != 12 {
		t.Errorf("moved index lost state: eps=%v triangles=%d", moved.Epsilon(), moved.TriangleCount())
	}

	if idx.TriangleCount() != 0 || idx.NodeCount() != 0 || idx.Epsilon() != DefaultEpsilon {
		t.Errorf("source not empty after Move: triangles=%d nodes=%d eps=%v",
			idx.TriangleCount(), idx.NodeCount(), idx.Epsilon())
	}
	hit, err := idx.QueryRayHit(vec(0, 0, 5), vec(0, 0, -1))
	if err != nil || hit.IsHit() {
		t.Errorf("moved-from QueryRayHit() = %+v, %v; want no hit", hit, err)
	}
	if idx.FacesOf(0) != nil {
		t.Error("moved-from FacesOf(0) is not nil")
	}
}

func TestConcurrentQueries(t *testing.T) {
	idx := mustIndex(t, sphereMesh(16, 32, 1))

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		seed := uint64(w)
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(seed, 99))
			for i := 0; i < 200; i++ {
				dir := vec(rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()).Normalize()
				hit, err := idx.QueryRayHit(vec(0, 0, 0), dir)
				if err != nil {
					return err
				}
				if !hit.IsHit() || !hit.IsInside() {
					t.Errorf("ray from center along %v: %+v", dir, hit)
				}
				if n := idx.SquaredDistance(dir.Mul(3)); n.SquaredDistance < 3 {
					t.Errorf("point %v: SquaredDistance %v too small", dir.Mul(3), n.SquaredDistance)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}
