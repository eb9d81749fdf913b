package meshindex

import (
	"math"

	"github.com/golang/geo/r3"
)

// Hit is the result of a ray query. It is a plain value and stays valid after
// the index that produced it is gone.
type Hit struct {
	Source    r3.Vector // ray origin
	Direction r3.Vector // unit ray direction
	T         float64   // distance along the ray, +Inf when nothing was hit
	Face      int       // hit triangle, -1 when nothing was hit
	Normal    r3.Vector // unit normal of the hit triangle, zero when nothing was hit
}

func noHit(source, dir r3.Vector) Hit {
	return Hit{
		Source:    source,
		Direction: dir,
		T:         math.Inf(1),
		Face:      -1,
	}
}

// IsHit returns true if the ray intersected a triangle.
func (h Hit) IsHit() bool {
	return h.Face >= 0 && !math.IsInf(h.T, 1)
}

// Distance returns the distance from the source to the hit point.
func (h Hit) Distance() float64 {
	return h.T
}

// Position returns source + t*direction. Only meaningful when IsHit.
func (h Hit) Position() r3.Vector {
	return h.Source.Add(h.Direction.Mul(h.T))
}

// IsInside returns true if the ray hit the back side of a triangle, which
// for a closed, outward-oriented mesh means the source is inside the volume.
func (h Hit) IsInside() bool {
	return h.IsHit() && h.Normal.Dot(h.Direction) > 0
}
