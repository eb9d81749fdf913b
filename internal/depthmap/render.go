package depthmap

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/golang/geo/r3"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/meshquery/pkg/meshindex"
)

// Render errors.
var (
	ErrInvalidSize = errors.New("invalid depth map size")
	ErrEmptyScene  = errors.New("nothing to render")
)

// Scene is what a depth map is rendered from. *meshindex.Index satisfies it.
type Scene interface {
	Bounds() meshindex.AABB
	QueryRayHit(origin, dir r3.Vector) (meshindex.Hit, error)
}

// Options controls rendering.
type Options struct {
	Width       int
	Height      int
	Supersample int    // rays per pixel along each axis, 1 disables
	View        string // viewing direction: +x, -x, +y, -y, +z or -z
	Logger      *zap.Logger
}

// Background is the value of pixels whose ray misses the mesh.
const Background = 0

// Render casts one ray per (sub)pixel and returns an 8-bit depth image:
// the nearest surface is brightest and misses are Background. Rows are
// rendered concurrently; ctx cancellation aborts the render.
func Render(ctx context.Context, scene Scene, opts Options) (*image.Gray, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, opts.Width, opts.Height)
	}
	ss := max(opts.Supersample, 1)
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	bounds := scene.Bounds()
	if bounds.IsEmpty() {
		return nil, ErrEmptyScene
	}
	cam, err := NewCamera(opts.View, bounds, float32(opts.Width)/float32(opts.Height))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	w, h := opts.Width*ss, opts.Height*ss
	img := image.NewGray(image.Rect(0, 0, w, h))
	var hits atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for y := 0; y < h; y++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := img.Pix[y*img.Stride : y*img.Stride+w]
			n, err := renderRow(scene, cam, row, y, w, h)
			hits.Add(int64(n))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := img
	if ss > 1 {
		out = image.NewGray(image.Rect(0, 0, opts.Width, opts.Height))
		draw.CatmullRom.Scale(out, out.Bounds(), img, img.Bounds(), draw.Src, nil)
	}

	log.Debug("depth map rendered",
		zap.String("view", opts.View),
		zap.Int("width", opts.Width),
		zap.Int("height", opts.Height),
		zap.Int("supersample", ss),
		zap.Int64("hits", hits.Load()),
		zap.Int("rays", w*h),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

func renderRow(scene Scene, cam *Camera, row []uint8, y, w, h int) (int, error) {
	hits := 0
	for x := 0; x < w; x++ {
		ray := cam.Ray(x, y, w, h)
		hit, err := scene.QueryRayHit(ray.Origin, ray.Direction)
		if err != nil {
			return hits, fmt.Errorf("pixel (%d, %d): %w", x, y, err)
		}
		if !hit.IsHit() {
			row[x] = Background
			continue
		}
		row[x] = Shade(hit.T, cam.DepthNear, cam.DepthFar)
		hits++
	}
	return hits, nil
}

// Shade maps a ray parameter within [near, far] to a gray level in [32, 255],
// nearer being brighter. The offset keeps the farthest surface distinct from
// Background.
func Shade(t, near, far float64) uint8 {
	frac := 0.0
	if far > near {
		frac = (t - near) / (far - near)
	}
	frac = min(max(frac, 0), 1)
	return uint8(32 + 223*(1-frac) + 0.5)
}
