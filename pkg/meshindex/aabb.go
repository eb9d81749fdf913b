package meshindex

import (
	"math"

	"github.com/golang/geo/r3"
)

// AABB is an axis-aligned bounding box in double precision.
type AABB struct {
	Min r3.Vector
	Max r3.Vector
}

// EmptyAABB returns a box that contains nothing; extending it with a point
// yields the degenerate box at that point.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: r3.Vector{X: inf, Y: inf, Z: inf},
		Max: r3.Vector{X: -inf, Y: -inf, Z: -inf},
	}
}

// IsEmpty returns true if the box contains no point.
func (b AABB) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend returns the smallest box containing b and p.
func (b AABB) Extend(p r3.Vector) AABB {
	return AABB{
		Min: r3.Vector{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)},
		Max: r3.Vector{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)},
	}
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(other AABB) AABB {
	return AABB{
		Min: r3.Vector{X: math.Min(b.Min.X, other.Min.X), Y: math.Min(b.Min.Y, other.Min.Y), Z: math.Min(b.Min.Z, other.Min.Z)},
		Max: r3.Vector{X: math.Max(b.Max.X, other.Max.X), Y: math.Max(b.Max.Y, other.Max.Y), Z: math.Max(b.Max.Z, other.Max.Z)},
	}
}

// Contains reports whether other lies inside b (boundaries inclusive).
func (b AABB) Contains(other AABB) bool {
	return b.Min.X <= other.Min.X && b.Min.Y <= other.Min.Y && b.Min.Z <= other.Min.Z &&
		b.Max.X >= other.Max.X && b.Max.Y >= other.Max.Y && b.Max.Z >= other.Max.Z
}

// Size returns the box extent along each axis.
func (b AABB) Size() r3.Vector {
	return b.Max.Sub(b.Min)
}

// Center returns the box midpoint.
func (b AABB) Center() r3.Vector {
	return b.Min.Add(b.Max).Mul(0.5)
}

// LongestAxis returns 0, 1 or 2 for the axis of greatest extent.
func (b AABB) LongestAxis() int {
	s := b.Size()
	axis := 0
	if s.Y > s.X {
		axis = 1
	}
	if s.Z > component(s, axis) {
		axis = 2
	}
	return axis
}

// SquaredDistance returns the squared distance from p to the closest point of
// the box, 0 if p is inside.
func (b AABB) SquaredDistance(p r3.Vector) float64 {
	dx := math.Max(0, math.Max(b.Min.X-p.X, p.X-b.Max.X))
	dy := math.Max(0, math.Max(b.Min.Y-p.Y, p.Y-b.Max.Y))
	dz := math.Max(0, math.Max(b.Min.Z-p.Z, p.Z-b.Max.Z))
	return dx*dx + dy*dy + dz*dz
}

// slabSlack widens the slab interval relative to its magnitude so rays that
// touch a box exactly on a face or edge are not lost to rounding.
const slabSlack = 1e-12

// rayRecips caches the reciprocal direction of a ray for repeated slab tests.
type rayRecips struct {
	inv [3]float64
	par [3]bool // direction component is zero
}

func newRayRecips(d r3.Vector) rayRecips {
	var rr rayRecips
	for axis := 0; axis < 3; axis++ {
		if c := component(d, axis); c != 0 {
			rr.inv[axis] = 1 / c
		} else {
			rr.par[axis] = true
		}
	}
	return rr
}

// intersectRay clips the ray origin + t*dir against the box and returns the
// entry parameter clamped to t >= 0. ok is false when the ray misses the box or
// the box lies entirely behind the origin.
func (b AABB) intersectRay(origin r3.Vector, rr rayRecips) (tEnter float64, ok bool) {
	tmin := math.Inf(-1)
	tmax := math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		o := component(origin, axis)
		lo := component(b.Min, axis)
		hi := component(b.Max, axis)
		if rr.par[axis] {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - o) * rr.inv[axis]
		t2 := (hi - o) * rr.inv[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
	}

	tmin -= slabSlack * (math.Abs(tmin) + 1)
	tmax += slabSlack * (math.Abs(tmax) + 1)
	if tmax < 0 || tmin > tmax {
		return 0, false
	}
	if tmin < 0 {
		return 0, true
	}
	return tmin, true
}

func component(v r3.Vector, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
