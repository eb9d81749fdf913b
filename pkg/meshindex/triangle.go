package meshindex

import "github.com/golang/geo/r3"

// intersectTriangle tests the ray origin + t*dir against triangle (v0, v1, v2)
// using Möller–Trumbore. The determinant is compared against eps, so rays
// (nearly) parallel to the triangle plane are rejected; barycentric bounds are
// inclusive, so a ray through a shared edge or vertex hits every triangle
// around it. t may be negative; callers filter by range.
func intersectTriangle(origin, dir, v0, v1, v2 r3.Vector, eps float64) (t float64, ok bool) {
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	p := dir.Cross(e2)
	det := e1.Dot(p)
	s := origin.Sub(v0)

	var q r3.Vector
	switch {
	case det > eps:
		u := s.Dot(p)
		if u < 0 || u > det {
			return 0, false
		}
		q = s.Cross(e1)
		v := dir.Dot(q)
		if v < 0 || u+v > det {
			return 0, false
		}
	case det < -eps:
		u := s.Dot(p)
		if u > 0 || u < det {
			return 0, false
		}
		q = s.Cross(e1)
		v := dir.Dot(q)
		if v > 0 || u+v < det {
			return 0, false
		}
	default:
		// Ray lies in (or grazes) the triangle plane.
		return 0, false
	}

	return e2.Dot(q) / det, true
}

// closestPointOnTriangle returns the point of triangle (a, b, c) nearest to p,
// classifying p against the vertex, edge and face Voronoi regions.
func closestPointOnTriangle(p, a, b, c r3.Vector) r3.Vector {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	// Vertex region outside A
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	// Vertex region outside B
	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	// Edge region AB
	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Mul(v))
	}

	// Vertex region outside C
	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	// Edge region AC
	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Mul(w))
	}

	// Edge region BC
	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w))
	}

	// Face interior
	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w))
}

// triangleNormal returns the unit normal following the right-hand rule over
// (a, b, c). A degenerate triangle yields the zero vector.
func triangleNormal(a, b, c r3.Vector) r3.Vector {
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}
