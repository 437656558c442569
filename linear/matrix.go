// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package linear

import (
	"github.com/chewxy/math32"
)

// M3 is a column-major 3x3 matrix of float32.
type M3 [3]V3

// I makes m an identity matrix.
func (m *M3) I() { *m = M3{{1}, {0, 1}, {0, 0, 1}} }

// Mul sets m to contain l ⋅ r.
func (m *M3) Mul(l, r *M3) {
	var res M3
	for i := range res {
		for j := range res {
			for k := range res {
				res[i][j] += l[k][j] * r[i][k]
			}
		}
	}
	*m = res
}

// Transpose sets m to contain the transpose of n.
func (m *M3) Transpose(n *M3) {
	var res M3
	for i := range res {
		for j := range res {
			res[i][j] = n[j][i]
		}
	}
	*m = res
}

// Invert sets m to contain the inverse of n.
// n must be non-singular.
func (m *M3) Invert(n *M3) {
	s0 := n[1][1]*n[2][2] - n[1][2]*n[2][1]
	s1 := n[1][0]*n[2][2] - n[1][2]*n[2][0]
	s2 := n[1][0]*n[2][1] - n[1][1]*n[2][0]
	idet := 1 / (n[0][0]*s0 - n[0][1]*s1 + n[0][2]*s2)
	m[0][0] = s0 * idet
	m[0][1] = -(n[0][1]*n[2][2] - n[0][2]*n[2][1]) * idet
	m[0][2] = (n[0][1]*n[1][2] - n[0][2]*n[1][1]) * idet
	m[1][0] = -s1 * idet
	m[1][1] = (n[0][0]*n[2][2] - n[0][2]*n[2][0]) * idet
	m[1][2] = -(n[0][0]*n[1][2] - n[0][2]*n[1][0]) * idet
	m[2][0] = s2 * idet
	m[2][1] = -(n[0][0]*n[2][1] - n[0][1]*n[2][0]) * idet
	m[2][2] = (n[0][0]*n[1][1] - n[0][1]*n[1][0]) * idet
}

// Scale makes m a scaling matrix for factors sx, sy, sz.
func (m *M3) Scale(sx, sy, sz float32) { *m = M3{{sx}, {0, sy}, {0, 0, sz}} }

// RotateX makes m a rotation matrix of angle radians about the x axis.
func (m *M3) RotateX(angle float32) {
	s, c := math32.Sincos(angle)
	*m = M3{{1}, {0, c, s}, {0, -s, c}}
}

// RotateY makes m a rotation matrix of angle radians about the y axis.
func (m *M3) RotateY(angle float32) {
	s, c := math32.Sincos(angle)
	*m = M3{{c, 0, -s}, {0, 1}, {s, 0, c}}
}

// RotateZ makes m a rotation matrix of angle radians about the z axis.
func (m *M3) RotateZ(angle float32) {
	s, c := math32.Sincos(angle)
	*m = M3{{c, s}, {-s, c}, {0, 0, 1}}
}

// Rotate makes m a rotation matrix of angle radians about axis.
// axis need not be normalized; it must not be the zero vector.
func (m *M3) Rotate(angle float32, axis *V3) {
	var u V3
	u.Norm(axis)
	s, c := math32.Sincos(angle)
	t := 1 - c
	x, y, z := u[0], u[1], u[2]
	*m = M3{
		{t*x*x + c, t*x*y + s*z, t*x*z - s*y},
		{t*x*y - s*z, t*y*y + c, t*y*z + s*x},
		{t*x*z + s*y, t*y*z - s*x, t*z*z + c},
	}
}

// RotateQ makes m the rotation matrix equivalent to q.
// q must be a unit quaternion.
func (m *M3) RotateQ(q *Q) {
	x, y, z, w := q.V[0], q.V[1], q.V[2], q.R
	x2, y2, z2 := x+x, y+y, z+z
	xx, yy, zz := x*x2, y*y2, z*z2
	xy, xz, yz := x*y2, x*z2, y*z2
	wx, wy, wz := w*x2, w*y2, w*z2
	*m = M3{
		{1 - (yy + zz), xy + wz, xz - wy},
		{xy - wz, 1 - (xx + zz), yz + wx},
		{xz + wy, yz - wx, 1 - (xx + yy)},
	}
}

// YawPitchRoll makes m a rotation matrix from yaw (y axis), pitch
// (x axis) and roll (z axis) angles, in radians, applied in that
// order: roll, then pitch, then yaw.
func (m *M3) YawPitchRoll(yaw, pitch, roll float32) {
	var y, p, r, t M3
	y.RotateY(yaw)
	p.RotateX(pitch)
	r.RotateZ(roll)
	t.Mul(&p, &r)
	m.Mul(&y, &t)
}

// M4 is a column-major 4x4 matrix of float32.
type M4 [4]V4

// I makes m an identity matrix.
func (m *M4) I() { *m = M4{{1}, {0, 1}, {0, 0, 1}, {0, 0, 0, 1}} }

// Mul sets m to contain l ⋅ r.
func (m *M4) Mul(l, r *M4) {
	var res M4
	for i := range res {
		for j := range res {
			for k := range res {
				res[i][j] += l[k][j] * r[i][k]
			}
		}
	}
	*m = res
}

// Transpose sets m to contain the transpose of n.
func (m *M4) Transpose(n *M4) {
	var res M4
	for i := range res {
		for j := range res {
			res[i][j] = n[j][i]
		}
	}
	*m = res
}

// Invert sets m to contain the inverse of n.
// n must be non-singular.
func (m *M4) Invert(n *M4) {
	s0 := n[0][0]*n[1][1] - n[0][1]*n[1][0]
	s1 := n[0][0]*n[1][2] - n[0][2]*n[1][0]
	s2 := n[0][0]*n[1][3] - n[0][3]*n[1][0]
	s3 := n[0][1]*n[1][2] - n[0][2]*n[1][1]
	s4 := n[0][1]*n[1][3] - n[0][3]*n[1][1]
	s5 := n[0][2]*n[1][3] - n[0][3]*n[1][2]
	c0 := n[2][0]*n[3][1] - n[2][1]*n[3][0]
	c1 := n[2][0]*n[3][2] - n[2][2]*n[3][0]
	c2 := n[2][0]*n[3][3] - n[2][3]*n[3][0]
	c3 := n[2][1]*n[3][2] - n[2][2]*n[3][1]
	c4 := n[2][1]*n[3][3] - n[2][3]*n[3][1]
	c5 := n[2][2]*n[3][3] - n[2][3]*n[3][2]
	idet := 1 / (s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0)
	m[0][0] = (c5*n[1][1] - c4*n[1][2] + c3*n[1][3]) * idet
	m[0][1] = (-c5*n[0][1] + c4*n[0][2] - c3*n[0][3]) * idet
	m[0][2] = (s5*n[3][1] - s4*n[3][2] + s3*n[3][3]) * idet
	m[0][3] = (-s5*n[2][1] + s4*n[2][2] - s3*n[2][3]) * idet
	m[1][0] = (-c5*n[1][0] + c2*n[1][2] - c1*n[1][3]) * idet
	m[1][1] = (c5*n[0][0] - c2*n[0][2] + c1*n[0][3]) * idet
	m[1][2] = (-s5*n[3][0] + s2*n[3][2] - s1*n[3][3]) * idet
	m[1][3] = (s5*n[2][0] - s2*n[2][2] + s1*n[2][3]) * idet
	m[2][0] = (c4*n[1][0] - c2*n[1][1] + c0*n[1][3]) * idet
	m[2][1] = (-c4*n[0][0] + c2*n[0][1] - c0*n[0][3]) * idet
	m[2][2] = (s4*n[3][0] - s2*n[3][1] + s0*n[3][3]) * idet
	m[2][3] = (-s4*n[2][0] + s2*n[2][1] - s0*n[2][3]) * idet
	m[3][0] = (-c3*n[1][0] + c1*n[1][1] - c0*n[1][2]) * idet
	m[3][1] = (c3*n[0][0] - c1*n[0][1] + c0*n[0][2]) * idet
	m[3][2] = (-s3*n[3][0] + s1*n[3][1] - s0*n[3][2]) * idet
	m[3][3] = (s3*n[2][0] - s1*n[2][1] + s0*n[2][2]) * idet
}

// Translation makes m a translation matrix by t.
func (m *M4) Translation(t *V3) {
	*m = M4{{1}, {0, 1}, {0, 0, 1}, {t[0], t[1], t[2], 1}}
}

// Scale makes m a scaling matrix for factors sx, sy, sz.
func (m *M4) Scale(sx, sy, sz float32) {
	*m = M4{{sx}, {0, sy}, {0, 0, sz}, {0, 0, 0, 1}}
}

// RotateX makes m a rotation matrix of angle radians about the x axis.
func (m *M4) RotateX(angle float32) {
	s, c := math32.Sincos(angle)
	*m = M4{{1}, {0, c, s, 0}, {0, -s, c, 0}, {0, 0, 0, 1}}
}

// RotateY makes m a rotation matrix of angle radians about the y axis.
func (m *M4) RotateY(angle float32) {
	s, c := math32.Sincos(angle)
	*m = M4{{c, 0, -s, 0}, {0, 1}, {s, 0, c, 0}, {0, 0, 0, 1}}
}

// RotateZ makes m a rotation matrix of angle radians about the z axis.
func (m *M4) RotateZ(angle float32) {
	s, c := math32.Sincos(angle)
	*m = M4{{c, s, 0, 0}, {-s, c, 0, 0}, {0, 0, 1}, {0, 0, 0, 1}}
}

// Rotate makes m a rotation matrix of angle radians about axis.
// axis need not be normalized; it must not be the zero vector.
func (m *M4) Rotate(angle float32, axis *V3) {
	var r3 M3
	r3.Rotate(angle, axis)
	m.from3(&r3)
}

// RotateQ makes m the rotation matrix equivalent to q.
// q must be a unit quaternion.
func (m *M4) RotateQ(q *Q) {
	var r3 M3
	r3.RotateQ(q)
	m.from3(&r3)
}

// YawPitchRoll makes m a rotation matrix from yaw, pitch and roll
// angles, in radians (see M3.YawPitchRoll).
func (m *M4) YawPitchRoll(yaw, pitch, roll float32) {
	var r3 M3
	r3.YawPitchRoll(yaw, pitch, roll)
	m.from3(&r3)
}

// from3 embeds a 3x3 rotation/scale matrix into m, clearing
// translation and setting the homogeneous diagonal entry.
func (m *M4) from3(r *M3) {
	*m = M4{}
	for i := range r {
		for j := range r[i] {
			m[i][j] = r[i][j]
		}
	}
	m[3][3] = 1
}

// LookAtLH makes m a left-handed view matrix for an eye positioned
// at eye, looking towards target, with the given up direction.
func (m *M4) LookAtLH(eye, target, up *V3) { m.lookAt(eye, target, up, 1) }

// LookAtRH makes m a right-handed view matrix for an eye positioned
// at eye, looking towards target, with the given up direction.
func (m *M4) LookAtRH(eye, target, up *V3) { m.lookAt(eye, target, up, -1) }

// lookAt builds a view matrix. handed is 1 for left-handed
// (forward points from eye to target) or -1 for right-handed
// (forward points from target to eye).
func (m *M4) lookAt(eye, target, up *V3, handed float32) {
	var fwd, right, u V3
	fwd.Sub(target, eye)
	fwd.Scale(handed, &fwd)
	fwd.Norm(&fwd)
	right.Cross(up, &fwd)
	right.Norm(&right)
	u.Cross(&fwd, &right)
	*m = M4{
		{right[0], u[0], fwd[0], 0},
		{right[1], u[1], fwd[1], 0},
		{right[2], u[2], fwd[2], 0},
		{-right.Dot(eye), -u.Dot(eye), -fwd.Dot(eye), 1},
	}
}

// PerspectiveLH makes m a left-handed perspective projection matrix
// with vertical field of view fovy (radians), aspect ratio aspect
// (width/height), and near/far clip distances, mapping depth to
// [0, 1].
func (m *M4) PerspectiveLH(fovy, aspect, near, far float32) {
	h := 1 / math32.Tan(fovy/2)
	w := h / aspect
	r := far / (far - near)
	*m = M4{
		{w, 0, 0, 0},
		{0, h, 0, 0},
		{0, 0, r, 1},
		{0, 0, -r * near, 0},
	}
}

// PerspectiveRH makes m a right-handed perspective projection matrix.
func (m *M4) PerspectiveRH(fovy, aspect, near, far float32) {
	h := 1 / math32.Tan(fovy/2)
	w := h / aspect
	r := far / (near - far)
	*m = M4{
		{w, 0, 0, 0},
		{0, h, 0, 0},
		{0, 0, r, -1},
		{0, 0, r * near, 0},
	}
}

// OrthoLH makes m a left-handed orthographic projection matrix for
// the given box extents and near/far clip distances.
func (m *M4) OrthoLH(left, right, bottom, top, near, far float32) {
	rl := right - left
	tb := top - bottom
	fn := far - near
	*m = M4{
		{2 / rl, 0, 0, 0},
		{0, 2 / tb, 0, 0},
		{0, 0, 1 / fn, 0},
		{-(right + left) / rl, -(top + bottom) / tb, -near / fn, 1},
	}
}

// OrthoRH makes m a right-handed orthographic projection matrix.
func (m *M4) OrthoRH(left, right, bottom, top, near, far float32) {
	rl := right - left
	tb := top - bottom
	fn := far - near
	*m = M4{
		{2 / rl, 0, 0, 0},
		{0, 2 / tb, 0, 0},
		{0, 0, -1 / fn, 0},
		{-(right + left) / rl, -(top + bottom) / tb, -near / fn, 1},
	}
}
