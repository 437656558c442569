// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package linear

import (
	"math/rand"

	"github.com/chewxy/math32"
)

// Jittered1D fills samples with count values in [0, 1), stratified
// into count equal bins and jittered within each bin to reduce
// variance relative to plain uniform sampling.
func Jittered1D(rng *rand.Rand, samples []float32) {
	n := len(samples)
	step := float32(1) / float32(n)
	for i := range samples {
		u := rng.Float32()
		lo := float32(i) * step
		samples[i] = lo + step*u
	}
}

// Jittered2D fills samples, a count*count grid flattened in
// row-major order, with stratified jittered 2D samples in
// [0,1)x[0,1).
func Jittered2D(rng *rand.Rand, samples []V2, count int) {
	step := float32(1) / float32(count)
	for i := 0; i < count; i++ {
		for j := 0; j < count; j++ {
			u1 := rng.Float32()
			u2 := rng.Float32()
			loU := float32(i) * step
			loV := float32(j) * step
			samples[i*count+j] = V2{loU + step*u1, loV + step*u2}
		}
	}
}

// SampleDisk maps a uniform 2D sample u in [0,1)x[0,1) to a point
// on the unit disk using the polar mapping r = sqrt(u[0]),
// theta = 2*pi*u[1] (area-preserving).
func SampleDisk(u V2) V2 {
	r := math32.Sqrt(u[0])
	theta := 2 * math32.Pi * u[1]
	s, c := math32.Sincos(theta)
	return V2{r * c, r * s}
}

// SampleCosineHemisphere maps a uniform 2D sample u to a direction
// on the unit hemisphere about the +Y axis, with density
// proportional to cos(theta).
func SampleCosineHemisphere(u V2) V3 {
	phi := 2 * math32.Pi * u[0]
	sinPhi, cosPhi := math32.Sincos(phi)
	cosTheta := math32.Sqrt(1 - u[1])
	sinTheta := math32.Sqrt(1 - cosTheta*cosTheta)
	return V3{sinTheta * cosPhi, cosTheta, sinTheta * sinPhi}
}

// SampleUniformHemisphere maps a uniform 2D sample u to a direction
// on the unit hemisphere about the +Y axis with uniform density.
func SampleUniformHemisphere(u V2) V3 {
	phi := 2 * math32.Pi * u[0]
	sinPhi, cosPhi := math32.Sincos(phi)
	cosTheta := 1 - u[1]
	sinTheta := math32.Sqrt(1 - cosTheta*cosTheta)
	return V3{sinTheta * cosPhi, cosTheta, sinTheta * sinPhi}
}

// Basis is an orthonormal frame (tangent, normal, bitangent) used
// to align hemisphere samples, generated about normal, with the
// world-space normal.
type Basis struct {
	U, V, W V3
}

// AlignedTo builds a basis whose V axis is normal. U and W are
// derived from an arbitrary up vector slightly offset from the
// coordinate axes, so the construction remains stable even when
// normal is itself close to that axis.
func AlignedTo(normal *V3) Basis {
	up := V3{0.0072, 1, 0.0034}
	var u, w V3
	u.Cross(normal, &up)
	u.Norm(&u)
	w.Cross(&u, normal)
	return Basis{U: u, V: *normal, W: w}
}

// Align transforms dir, expressed in the local frame of b (x along
// U, y along V, z along W), into world space.
func (b *Basis) Align(dir *V3) V3 {
	var u, v, w, sum V3
	u.Scale(dir[0], &b.U)
	v.Scale(dir[1], &b.V)
	w.Scale(dir[2], &b.W)
	sum.Add(&u, &v)
	sum.Add(&sum, &w)
	return sum
}
