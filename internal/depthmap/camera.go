// Package depthmap renders orthographic depth images of a mesh by casting one
// ray per pixel through a mesh index.
package depthmap

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/golang/geo/r3"

	"github.com/Faultbox/meshquery/pkg/math"
	"github.com/Faultbox/meshquery/pkg/meshindex"
)

// ErrUnknownView is returned for a view name other than +x, -x, +y, -y, +z, -z.
var ErrUnknownView = errors.New("unknown view axis")

// Ray is a world-space ray with a unit direction.
type Ray struct {
	Origin    r3.Vector
	Direction r3.Vector
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates, viewportW/H are viewport dimensions.
// invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj math.Mat4) Ray {
	ndcX := 2.0*screenX/viewportW - 1.0
	ndcY := 1.0 - 2.0*screenY/viewportH // image rows grow downward

	nearWorld := unproject(invViewProj, math.Vec4{ndcX, ndcY, -1, 1})
	farWorld := unproject(invViewProj, math.Vec4{ndcX, ndcY, 1, 1})

	// Normalized in double precision; the index requires |dir| = 1 to ~1e-6.
	return Ray{
		Origin:    nearWorld,
		Direction: farWorld.Sub(nearWorld).Normalize(),
	}
}

func unproject(inv math.Mat4, ndc math.Vec4) r3.Vector {
	p := inv.MulVec4(ndc)
	if p[3] != 0 {
		p[0] /= p[3]
		p[1] /= p[3]
		p[2] /= p[3]
	}
	return r3.Vector{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
}

// ParseView returns the unit viewing direction named by view.
func ParseView(view string) (math.Vec3, error) {
	switch view {
	case "+x":
		return math.Vec3{X: 1}, nil
	case "-x":
		return math.Vec3{X: -1}, nil
	case "+y":
		return math.Vec3{Y: 1}, nil
	case "-y":
		return math.Vec3{Y: -1}, nil
	case "+z":
		return math.Vec3{Z: 1}, nil
	case "-z":
		return math.Vec3{Z: -1}, nil
	default:
		return math.Vec3{}, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
}

// Camera is an orthographic camera framing a bounding box.
type Camera struct {
	Forward math.Vec3
	Up      math.Vec3
	Eye     math.Vec3

	// Ray parameters at which the framed box starts and ends.
	DepthNear float64
	DepthFar  float64

	invViewProj math.Mat4
}

// NewCamera frames bounds as seen along view for an image of the given
// aspect ratio (width / height). The box is padded slightly so silhouettes
// do not touch the border.
func NewCamera(view string, bounds meshindex.AABB, aspect float32) (*Camera, error) {
	forward, err := ParseView(view)
	if err != nil {
		return nil, err
	}
	up := math.Vec3{Z: 1}
	if forward.Z != 0 {
		up = math.Vec3{Y: 1}
	}
	right := forward.Cross(up)

	size := math.FromR3(bounds.Size())
	center := math.FromR3(bounds.Center())
	hw := 0.525 * abs32(size.Dot(right))
	hh := 0.525 * abs32(size.Dot(up))
	hd := 0.5 * abs32(size.Dot(forward))

	if hw <= 0 && hh <= 0 {
		hw, hh = 0.5, 0.5
	}
	if hw < hh*aspect {
		hw = hh * aspect
	} else {
		hh = hw / aspect
	}

	margin := max(1e-3, 0.1*(hw+hh+hd))
	dist := hd + margin
	eye := center.Sub(forward.Scale(dist))

	proj := math.Ortho(-hw, hw, -hh, hh, 0, 2*dist)
	viewMat := math.LookAt(eye, center, up)

	return &Camera{
		Forward:     forward,
		Up:          up,
		Eye:         eye,
		DepthNear:   float64(dist - hd),
		DepthFar:    float64(dist + hd),
		invViewProj: proj.Mul(viewMat).Inverse(),
	}, nil
}

// Ray returns the ray through the center of pixel (px, py) of a w x h image.
func (c *Camera) Ray(px, py, w, h int) Ray {
	return ScreenToRay(float32(px)+0.5, float32(py)+0.5, float32(w), float32(h), c.invViewProj)
}

func abs32(v float32) float32 {
	return float32(gomath.Abs(float64(v)))
}
