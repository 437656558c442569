// Package shader implements the material/shading capability contract
// invoked by the renderer on each ray/triangle hit, plus a Phong and
// a physically-based reference implementation.
package shader

import (
	"math/rand"

	"github.com/seanjames777/raytracer-sub000/linear"
	"github.com/seanjames777/raytracer-sub000/raybuffer"
	"github.com/seanjames777/raytracer-sub000/triangle"
)

// Light is the read-only capability set a Material needs from any
// light variant. scene.DirectionalLight and scene.PointLight satisfy
// this interface structurally; this package never imports scene.
type Light interface {
	SampleDirection(point *linear.V3) linear.V3
	Radiance(point *linear.V3) linear.V3
	CastsShadows() bool
	SampleShadowRays(point *linear.V3, n int, rng *rand.Rand, out []linear.V3) []linear.V3
}

// SceneView is the read-only scene surface a Material's Shade method
// may query. scene.Scene satisfies this interface.
type SceneView interface {
	TriangleAt(id uint32) *triangle.Triangle
	Lights() []Light
	EnvironmentRadiance(dir *linear.V3) linear.V3
	EnvironmentReflection(dir, normal *linear.V3) linear.V3
	EnvironmentRefraction(dir, normal *linear.V3, ior float32) linear.V3
}

// RendererView is the renderer surface a Material's Shade method may
// invoke for shadow tracing and ambient occlusion.
type RendererView interface {
	// TraceShadow performs one any_hit traversal from origin toward
	// dir, up to maxDist, and reports whether the ray is occluded.
	TraceShadow(origin, dir *linear.V3, maxDist float32) bool
	// AmbientOcclusion estimates the unoccluded hemisphere fraction
	// above point/normal by tracing occlusionSamples any_hit rays.
	AmbientOcclusion(point, normal *linear.V3) float32
}

// Context carries everything a Material's Shade method needs.
type Context struct {
	Ray       *linear.Ray
	Collision triangle.Collision
	Scene     SceneView
	Renderer  RendererView
	RayBuffer *raybuffer.Buffer
	Depth     int
	Weight    linear.V3
	Pixel     int
	RNG       *rand.Rand

	// ShadowSamples is n, the side of the n×n grid of shadow rays a
	// Material averages per light via Light.SampleShadowRays when the
	// light casts soft shadows. Values < 1 are treated as 1 (hard
	// shadow).
	ShadowSamples int
}

// MaxShadowSamples bounds the n a Material passes to
// Light.SampleShadowRays per light per shading call, so the fan-out
// is at most MaxShadowSamples*MaxShadowSamples directions and
// implementations can size a stack array instead of allocating.
const MaxShadowSamples = 16

// Material is the opaque shading capability the renderer invokes on
// a hit. Implementations must not block, retain references past
// return, or mutate scene state.
type Material interface {
	Shade(ctx *Context) linear.V3
}

func saturate(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
