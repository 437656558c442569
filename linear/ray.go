// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package linear

// Ray is a parametric ray, r(t) = Origin + t*Direction.
// InvDirection caches the component-wise reciprocal of Direction
// and is recomputed whenever Direction changes via Set.
type Ray struct {
	Origin       V3
	Direction    V3
	InvDirection V3
}

// Set initializes r with the given origin and direction, deriving
// InvDirection. direction need not be normalized, but callers that
// rely on t being a Euclidean distance along the ray must normalize
// it themselves.
func (r *Ray) Set(origin, direction *V3) {
	r.Origin = *origin
	r.Direction = *direction
	for i := range r.InvDirection {
		r.InvDirection[i] = 1 / r.Direction[i]
	}
}

// At sets v to the point on r at parameter t.
func (r *Ray) At(v *V3, t float32) {
	var d V3
	d.Scale(t, &r.Direction)
	v.Add(&r.Origin, &d)
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min V3
	Max V3
}

// EmptyAABB returns a box whose extents are inverted so that the
// first Join call establishes real bounds.
func EmptyAABB() AABB {
	const inf = float32(1) / 0
	return AABB{Min: V3{inf, inf, inf}, Max: V3{-inf, -inf, -inf}}
}

// Join extends b to contain pt.
func (b *AABB) Join(pt *V3) {
	for i := range b.Min {
		if pt[i] < b.Min[i] {
			b.Min[i] = pt[i]
		}
		if pt[i] > b.Max[i] {
			b.Max[i] = pt[i]
		}
	}
}

// JoinBox extends b to contain o.
func (b *AABB) JoinBox(o *AABB) {
	b.Join(&o.Min)
	b.Join(&o.Max)
}

// Center returns the midpoint of b.
func (b *AABB) Center() V3 {
	var c, ext V3
	ext.Sub(&b.Max, &b.Min)
	ext.Scale(0.5, &ext)
	c.Add(&b.Min, &ext)
	return c
}

// SurfaceArea returns the surface area of b.
func (b *AABB) SurfaceArea() float32 {
	var ext V3
	ext.Sub(&b.Max, &b.Min)
	return 2 * (ext[0]*ext[1] + ext[0]*ext[2] + ext[1]*ext[2])
}

// Contains reports whether pt lies within b, inclusive of the
// boundary.
func (b *AABB) Contains(pt *V3) bool {
	for i := range b.Min {
		if pt[i] < b.Min[i] || pt[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Overlaps reports whether b and o overlap along axis (0, 1 or 2).
func (b *AABB) Overlaps(o *AABB, axis int) bool {
	return !(b.Max[axis] < o.Min[axis] || b.Min[axis] > o.Max[axis])
}

// Split divides b at dist along axis (0, 1 or 2), writing the
// "left" (below dist) and "right" (above dist) halves to left and
// right.
func (b *AABB) Split(dist float32, axis int, left, right *AABB) {
	*left = *b
	*right = *b
	left.Max[axis] = dist
	right.Min[axis] = dist
}

// Intersects tests r against b, per-axis slab test unrolled so
// that no branch depends on the axis index. On a hit, tminOut and
// tmaxOut receive the entry and exit distances along r.
func (b *AABB) Intersects(r *Ray, tminOut, tmaxOut *float32) bool {
	tx1 := (b.Min[0] - r.Origin[0]) * r.InvDirection[0]
	tx2 := (b.Max[0] - r.Origin[0]) * r.InvDirection[0]
	if tx1 > tx2 {
		tx1, tx2 = tx2, tx1
	}

	ty1 := (b.Min[1] - r.Origin[1]) * r.InvDirection[1]
	ty2 := (b.Max[1] - r.Origin[1]) * r.InvDirection[1]
	if ty1 > ty2 {
		ty1, ty2 = ty2, ty1
	}

	if tx1 > ty2 || ty1 > tx2 {
		return false
	}

	tmin := fmax32(tx1, ty1)
	tmax := fmin32(tx2, ty2)

	tz1 := (b.Min[2] - r.Origin[2]) * r.InvDirection[2]
	tz2 := (b.Max[2] - r.Origin[2]) * r.InvDirection[2]
	if tz1 > tz2 {
		tz1, tz2 = tz2, tz1
	}

	if tmin > tz2 || tz1 > tmax {
		return false
	}

	*tminOut = fmax32(tmin, tz1)
	*tmaxOut = fmin32(tmax, tz2)
	return true
}

func fmax32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func fmin32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
