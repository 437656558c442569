// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package linear

import (
	"github.com/chewxy/math32"
)

// Q is a quaternion of float32.
type Q struct {
	V V3
	R float32
}

// Mul sets q to contain l ⋅ r.
func (q *Q) Mul(l, r *Q) {
	var v, w V3
	v.Scale(r.R, &l.V)
	w.Scale(l.R, &r.V)
	v.Add(&v, &w)
	w.Cross(&l.V, &r.V)
	d := l.V.Dot(&r.V)
	q.V.Add(&v, &w)
	q.R = l.R*r.R - d
}

// Rotate makes q the unit quaternion representing a rotation of
// angle radians about axis. axis need not be normalized; it must
// not be the zero vector.
func (q *Q) Rotate(angle float32, axis *V3) {
	var u V3
	u.Norm(axis)
	s, c := math32.Sincos(angle / 2)
	q.V.Scale(s, &u)
	q.R = c
}

// Norm sets q to contain p normalized.
// p must not have zero length.
func (q *Q) Norm(p *Q) {
	il := 1 / math32.Sqrt(p.V.Dot(&p.V)+p.R*p.R)
	q.V.Scale(il, &p.V)
	q.R = p.R * il
}

// Conj sets q to contain the conjugate of p.
func (q *Q) Conj(p *Q) {
	q.V.Neg(&p.V)
	q.R = p.R
}
