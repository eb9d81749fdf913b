package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/golang/geo/r3"
	"go.uber.org/zap"

	"github.com/Faultbox/meshquery/internal/config"
	"github.com/Faultbox/meshquery/internal/depthmap"
	"github.com/Faultbox/meshquery/internal/logger"
	"github.com/Faultbox/meshquery/pkg/formats"
	"github.com/Faultbox/meshquery/pkg/meshindex"
)

// openIndex loads a mesh file and builds its index with the configured options.
func openIndex(path string, cfg *config.Config) (*meshindex.Index, error) {
	start := time.Now()
	mesh, err := formats.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("mesh loaded",
		zap.String("path", path),
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int("triangles", len(mesh.Triangles)),
		zap.Duration("elapsed", time.Since(start)),
	)

	m := mesh.Mesh()
	if m.IsEmpty() {
		logger.Warn("mesh has no triangles", zap.String("path", path))
	}

	opts := []meshindex.Option{
		meshindex.WithEpsilon(cfg.Index.Epsilon),
		meshindex.WithAdaptiveEpsilon(cfg.Index.AdaptiveEpsilon),
		meshindex.WithLogger(logger.Named("meshindex")),
	}
	if cfg.Index.Parallelism > 0 {
		opts = append(opts, meshindex.WithParallelism(cfg.Index.Parallelism))
	}

	idx, err := meshindex.New(m, opts...)
	if err != nil {
		return nil, fmt.Errorf("indexing %s: %w", path, err)
	}
	return idx, nil
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// parseRay reads "ox oy oz dx dy dz" and normalizes the direction.
func parseRay(args []string) (origin, dir r3.Vector, err error) {
	if len(args) != 6 {
		return origin, dir, fmt.Errorf("need ox oy oz dx dy dz: %w", errUsage)
	}
	v, err := parseFloats(args)
	if err != nil {
		return origin, dir, err
	}
	origin = r3.Vector{X: v[0], Y: v[1], Z: v[2]}
	dir = r3.Vector{X: v[3], Y: v[4], Z: v[5]}
	if dir.Norm2() == 0 {
		return origin, dir, fmt.Errorf("ray direction is zero")
	}
	return origin, dir.Normalize(), nil
}

func cmdInfo(args []string, cfg *config.Config, w io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("info <mesh>: %w", errUsage)
	}
	start := time.Now()
	idx, err := openIndex(args[0], cfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	var boundary int
	for face := 0; face < idx.TriangleCount(); face++ {
		for _, n := range idx.NeighborsOf(face) {
			if n == meshindex.NoNeighbor {
				boundary++
			}
		}
	}
	if boundary > 0 {
		logger.Info("mesh is not closed", zap.String("path", args[0]), zap.Int("open_edges", boundary))
	}
	mesh := meshindex.Mesh{Vertices: idx.Vertices(), Triangles: idx.Triangles()}
	b := idx.Bounds()

	fmt.Fprintf(w, "Mesh:       %s\n", args[0])
	fmt.Fprintf(w, "Vertices:   %d\n", idx.VertexCount())
	fmt.Fprintf(w, "Triangles:  %d\n", idx.TriangleCount())
	if !b.IsEmpty() {
		fmt.Fprintf(w, "Bounds:     %v - %v\n", b.Min, b.Max)
	}
	fmt.Fprintf(w, "Avg edge:   %.6g\n", mesh.AverageEdgeLength())
	fmt.Fprintf(w, "Open edges: %d\n", boundary)
	fmt.Fprintf(w, "BVH:        %d nodes, depth %d\n", idx.NodeCount(), idx.Depth())
	fmt.Fprintf(w, "Epsilon:    %g\n", idx.Epsilon())
	fmt.Fprintf(w, "Load+build: %v\n", elapsed.Round(time.Microsecond))
	return nil
}

func printHit(w io.Writer, h meshindex.Hit) {
	p := h.Position()
	fmt.Fprintf(w, "face %d  t %.9g  at (%.9g, %.9g, %.9g)  normal (%.6g, %.6g, %.6g)  inside %v\n",
		h.Face, h.Distance(), p.X, p.Y, p.Z, h.Normal.X, h.Normal.Y, h.Normal.Z, h.IsInside())
}

func cmdHit(args []string, cfg *config.Config, w io.Writer) error {
	if len(args) != 7 {
		return fmt.Errorf("hit <mesh> ox oy oz dx dy dz: %w", errUsage)
	}
	origin, dir, err := parseRay(args[1:])
	if err != nil {
		return err
	}
	idx, err := openIndex(args[0], cfg)
	if err != nil {
		return err
	}

	hit, err := idx.QueryRayHit(origin, dir)
	if err != nil {
		return err
	}
	if !hit.IsHit() {
		fmt.Fprintln(w, "no hit")
		return nil
	}
	printHit(w, hit)
	return nil
}

func cmdHits(args []string, cfg *config.Config, w io.Writer) error {
	if len(args) != 7 {
		return fmt.Errorf("hits <mesh> ox oy oz dx dy dz: %w", errUsage)
	}
	origin, dir, err := parseRay(args[1:])
	if err != nil {
		return err
	}
	idx, err := openIndex(args[0], cfg)
	if err != nil {
		return err
	}

	hits, err := idx.QueryRayHits(origin, dir)
	if err != nil {
		return err
	}
	for _, h := range hits {
		printHit(w, h)
	}
	fmt.Fprintf(w, "%d hits\n", len(hits))
	return nil
}

func cmdDist(args []string, cfg *config.Config, w io.Writer) error {
	if len(args) != 4 {
		return fmt.Errorf("dist <mesh> x y z: %w", errUsage)
	}
	v, err := parseFloats(args[1:])
	if err != nil {
		return err
	}
	idx, err := openIndex(args[0], cfg)
	if err != nil {
		return err
	}
	if idx.TriangleCount() == 0 {
		return fmt.Errorf("%s has no triangles", args[0])
	}

	n := idx.SquaredDistance(r3.Vector{X: v[0], Y: v[1], Z: v[2]})
	fmt.Fprintf(w, "face %d  point (%.9g, %.9g, %.9g)  squared distance %.9g\n",
		n.Face, n.Point.X, n.Point.Y, n.Point.Z, n.SquaredDistance)
	return nil
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%q is not an index: %w", arg, err)
	}
	return id, nil
}

func cmdFaces(args []string, cfg *config.Config, w io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("faces <mesh> <vertex>: %w", errUsage)
	}
	v, err := parseID(args[1])
	if err != nil {
		return err
	}
	idx, err := openIndex(args[0], cfg)
	if err != nil {
		return err
	}
	if v < 0 || v >= idx.VertexCount() {
		return fmt.Errorf("vertex %d out of range (%d vertices)", v, idx.VertexCount())
	}

	fmt.Fprintln(w, idx.FacesOf(v))
	return nil
}

func cmdNeighbors(args []string, cfg *config.Config, w io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("neighbors <mesh> <face>: %w", errUsage)
	}
	f, err := parseID(args[1])
	if err != nil {
		return err
	}
	idx, err := openIndex(args[0], cfg)
	if err != nil {
		return err
	}
	if f < 0 || f >= idx.TriangleCount() {
		return fmt.Errorf("face %d out of range (%d triangles)", f, idx.TriangleCount())
	}

	fmt.Fprintln(w, idx.NeighborsOf(f))
	return nil
}

func cmdDepthmap(args []string, cfg *config.Config, w io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("depthmap <mesh>: %w", errUsage)
	}
	idx, err := openIndex(args[0], cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	img, err := depthmap.Render(ctx, idx, depthmap.Options{
		Width:       cfg.Depthmap.Width,
		Height:      cfg.Depthmap.Height,
		Supersample: cfg.Depthmap.Supersample,
		View:        cfg.Depthmap.View,
		Logger:      logger.Named("depthmap"),
	})
	if err != nil {
		return err
	}
	if err := depthmap.Save(cfg.Depthmap.Output, img); err != nil {
		return err
	}

	fmt.Fprintf(w, "Wrote %s (%dx%d, view %s)\n", cfg.Depthmap.Output, cfg.Depthmap.Width, cfg.Depthmap.Height, cfg.Depthmap.View)
	return nil
}

func cmdConfig(args []string, cfg *config.Config, w io.Writer) error {
	if len(args) > 1 {
		return fmt.Errorf("config [path]: %w", errUsage)
	}
	if len(args) == 1 {
		if err := cfg.SaveTo(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(w, "Wrote %s\n", args[0])
		return nil
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
