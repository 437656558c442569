// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package linear implements math for 3D graphics: vectors, matrices,
// quaternions, rays, bounding boxes and sampling helpers used by the
// tracing core.
package linear

import (
	"github.com/chewxy/math32"
)

// V2 is a 2-component vector of float32.
type V2 [2]float32

// Add sets v to contain l + r.
func (v *V2) Add(l, r *V2) {
	for i := range v {
		v[i] = l[i] + r[i]
	}
}

// Sub sets v to contain l - r.
func (v *V2) Sub(l, r *V2) {
	for i := range v {
		v[i] = l[i] - r[i]
	}
}

// Scale sets v to contain s ⋅ w.
func (v *V2) Scale(s float32, w *V2) {
	for i := range v {
		v[i] = s * w[i]
	}
}

// Dot returns v ⋅ w.
func (v *V2) Dot(w *V2) (d float32) {
	for i := range v {
		d += v[i] * w[i]
	}
	return
}

// Len returns the length of v.
func (v *V2) Len() float32 { return math32.Sqrt(v.Dot(v)) }

// Norm sets v to contain w normalized.
// w must not be the zero vector.
func (v *V2) Norm(w *V2) { v.Scale(1/w.Len(), w) }

// V3 is a 3-component vector of float32.
type V3 [3]float32

// Add sets v to contain l + r.
func (v *V3) Add(l, r *V3) {
	for i := range v {
		v[i] = l[i] + r[i]
	}
}

// Sub sets v to contain l - r.
func (v *V3) Sub(l, r *V3) {
	for i := range v {
		v[i] = l[i] - r[i]
	}
}

// Scale sets v to contain s ⋅ w.
func (v *V3) Scale(s float32, w *V3) {
	for i := range v {
		v[i] = s * w[i]
	}
}

// Dot returns v ⋅ w.
func (v *V3) Dot(w *V3) (d float32) {
	for i := range v {
		d += v[i] * w[i]
	}
	return
}

// Len returns the length of v.
func (v *V3) Len() float32 { return math32.Sqrt(v.Dot(v)) }

// Norm sets v to contain w normalized.
// w must not be the zero vector; the result of normalizing a
// zero vector is undefined and callers must not invoke it.
func (v *V3) Norm(w *V3) { v.Scale(1/w.Len(), w) }

// Cross sets v to contain l × r.
func (v *V3) Cross(l, r *V3) {
	x := l[1]*r[2] - l[2]*r[1]
	y := l[2]*r[0] - l[0]*r[2]
	z := l[0]*r[1] - l[1]*r[0]
	v[0], v[1], v[2] = x, y, z
}

// Mul sets v to contain m ⋅ w.
func (v *V3) Mul(m *M3, w *V3) {
	*v = V3{}
	for i := range v {
		for j := range v {
			v[i] += m[j][i] * w[j]
		}
	}
}

// Neg sets v to contain -w.
func (v *V3) Neg(w *V3) { v.Scale(-1, w) }

// Lerp sets v to contain the linear interpolation of l and r by t.
func (v *V3) Lerp(l, r *V3, t float32) {
	for i := range v {
		v[i] = l[i] + (r[i]-l[i])*t
	}
}

// Reflect sets v to contain the reflection of d about normal n.
// n must be unit length. Uses the convention that d points
// towards the surface (e.g., an incoming ray direction).
func (v *V3) Reflect(d, n *V3) {
	dn := d.Dot(n)
	var t V3
	t.Scale(2*dn, n)
	v.Sub(d, &t)
}

// Refract sets v to contain the refraction of d through a surface
// with normal n, given the ratio of refractive indices eta1 (incident
// side) over eta2 (transmitted side). d must point towards the
// surface and n must be unit length and oriented against d (i.e.,
// n.Dot(d) <= 0). Returns false and leaves v as the zero vector in
// the case of total internal reflection.
func (v *V3) Refract(d, n *V3, eta1, eta2 float32) bool {
	eta := eta1 / eta2
	cosi := -n.Dot(d)
	sin2t := eta * eta * (1 - cosi*cosi)
	if sin2t > 1 {
		*v = V3{}
		return false
	}
	cost := math32.Sqrt(1 - sin2t)
	var a, b V3
	a.Scale(eta, d)
	b.Scale(eta*cosi-cost, n)
	v.Add(&a, &b)
	return true
}

// Schlick returns the Schlick approximation of the Fresnel
// reflectance for a surface with normal n, viewer direction v
// (pointing away from the surface) and refractive indices eta1
// (viewer side) over eta2 (other side).
func Schlick(n, vdir *V3, eta1, eta2 float32) float32 {
	r0 := (eta1 - eta2) / (eta1 + eta2)
	r0 *= r0
	cosi := n.Dot(vdir)
	if cosi < 0 {
		cosi = -cosi
	}
	x := 1 - cosi
	return r0 + (1-r0)*x*x*x*x*x
}

// V4 is a 4-component vector of float32.
type V4 [4]float32

// Add sets v to contain l + r.
func (v *V4) Add(l, r *V4) {
	for i := range v {
		v[i] = l[i] + r[i]
	}
}

// Sub sets v to contain l - r.
func (v *V4) Sub(l, r *V4) {
	for i := range v {
		v[i] = l[i] - r[i]
	}
}

// Scale sets v to contain s ⋅ w.
func (v *V4) Scale(s float32, w *V4) {
	for i := range v {
		v[i] = s * w[i]
	}
}

// Dot returns v ⋅ w.
func (v *V4) Dot(w *V4) (d float32) {
	for i := range v {
		d += v[i] * w[i]
	}
	return
}

// Len returns the length of v.
func (v *V4) Len() float32 { return math32.Sqrt(v.Dot(v)) }

// Norm sets v to contain w normalized.
func (v *V4) Norm(w *V4) { v.Scale(1/w.Len(), w) }

// Mul sets v to contain m ⋅ w.
func (v *V4) Mul(m *M4, w *V4) {
	*v = V4{}
	for i := range v {
		for j := range v {
			v[i] += m[j][i] * w[j]
		}
	}
}

// V3FromV4 sets v to the first three components of w.
func (v *V3) V3FromV4(w *V4) { v[0], v[1], v[2] = w[0], w[1], w[2] }
