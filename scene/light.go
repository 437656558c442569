package scene

import (
	"math/rand"

	"github.com/chewxy/math32"

	"github.com/seanjames777/raytracer-sub000/linear"
)

// DirectionalLight and PointLight below implement shader.Light's
// capability set (SampleDirection, Radiance, CastsShadows,
// SampleShadowRays) structurally; Scene.AddLight accepts any
// shader.Light.

// DirectionalLight is a constant-direction light (e.g. sunlight),
// with optional angular jitter for soft shadows.
type DirectionalLight struct {
	Direction linear.V3 // points from the scene toward the light
	Color     linear.V3
	Shadow    bool
	// SoftAngle is the half-angle (radians) of the jitter cone used
	// by SampleShadowRays; 0 disables jitter (hard shadows).
	SoftAngle float32
}

// SampleDirection returns the (constant) direction toward the light.
func (l *DirectionalLight) SampleDirection(point *linear.V3) linear.V3 { return l.Direction }

// Radiance returns the (constant) light color.
func (l *DirectionalLight) Radiance(point *linear.V3) linear.V3 { return l.Color }

// CastsShadows reports whether this light is occluded by geometry.
func (l *DirectionalLight) CastsShadows() bool { return l.Shadow }

// SampleShadowRays appends n*n directions, jittered over an n×n
// stratified grid, within SoftAngle of Direction (or exactly one
// unjittered sample if SoftAngle is 0 or n <= 1).
func (l *DirectionalLight) SampleShadowRays(point *linear.V3, n int, rng *rand.Rand, out []linear.V3) []linear.V3 {
	if l.SoftAngle == 0 || n <= 1 {
		return append(out, l.Direction)
	}

	basis := linear.AlignedTo(&l.Direction)
	samples := make([]linear.V2, n*n)
	linear.Jittered2D(rng, samples, n)

	for _, u := range samples {
		// Map the unit-square jitter sample to a small cone around
		// Direction by scaling a disk sample by SoftAngle.
		disk := linear.SampleDisk(u)
		var dir linear.V3
		// AlignedTo maps local +Y onto Direction.
		dir[0] = disk[0] * l.SoftAngle
		dir[1] = 1
		dir[2] = disk[1] * l.SoftAngle
		jittered := basis.Align(&dir)
		out = append(out, jittered)
	}
	return out
}

// PointLight is an omnidirectional light with position, radius,
// falloff range, and falloff exponent. A radius of 0 is a true
// point light (exactly one shadow sample); radius > 0 models an
// area light sampled over its sphere.
type PointLight struct {
	Position linear.V3
	Color    linear.V3
	Radius   float32
	Range    float32
	Power    float32
	Shadow   bool
}

// SampleDirection returns the normalized direction from point toward
// the light's position.
func (l *PointLight) SampleDirection(point *linear.V3) linear.V3 {
	var d linear.V3
	d.Sub(&l.Position, point)
	d.Norm(&d)
	return d
}

// Radiance returns the light color attenuated by the distance-based
// falloff curve (Power exponent, clamped at Range).
func (l *PointLight) Radiance(point *linear.V3) linear.V3 {
	var d linear.V3
	d.Sub(&l.Position, point)
	dist := d.Len()
	if dist >= l.Range {
		return linear.V3{}
	}
	atten := math32.Pow(1-dist/l.Range, l.Power)
	var c linear.V3
	c.Scale(atten, &l.Color)
	return c
}

// CastsShadows reports whether this light is occluded by geometry.
func (l *PointLight) CastsShadows() bool { return l.Shadow }

// SampleShadowRays appends n*n directions, stratified over an n×n
// grid, toward points on the light's sphere (or exactly one direction
// toward Position if Radius is 0 or n <= 1).
func (l *PointLight) SampleShadowRays(point *linear.V3, n int, rng *rand.Rand, out []linear.V3) []linear.V3 {
	if l.Radius == 0 || n <= 1 {
		return append(out, l.SampleDirection(point))
	}

	samples := make([]linear.V2, n*n)
	linear.Jittered2D(rng, samples, n)

	// Sample only the hemisphere of the light's sphere facing point,
	// so every sample is potentially visible.
	var outward linear.V3
	outward.Sub(point, &l.Position)
	outward.Norm(&outward)
	basis := linear.AlignedTo(&outward)

	for _, u := range samples {
		local := linear.SampleUniformHemisphere(u)
		offset := basis.Align(&local)
		var scaled, sample, dir linear.V3
		scaled.Scale(l.Radius, &offset)
		sample.Add(&l.Position, &scaled)
		dir.Sub(&sample, point)
		dir.Norm(&dir)
		out = append(out, dir)
	}
	return out
}
