package shader

import (
	"errors"

	"github.com/chewxy/math32"

	"github.com/seanjames777/raytracer-sub000/linear"
	"github.com/seanjames777/raytracer-sub000/raybuffer"
)

// PBRParams configures a physically-based material using a
// metalness/roughness Cook-Torrance microfacet BRDF (GGX
// distribution, Smith-GGX visibility, Schlick Fresnel), following the
// punctual-light rendering equation described alongside the original
// implementation's PBR shader stub.
type PBRParams struct {
	BaseColor linear.V3
	Emissive  linear.V3
	Metalness float32
	Roughness float32
}

func (p *PBRParams) validate() error {
	if p.Metalness < 0 || p.Metalness > 1 {
		return errors.New("shader: PBRParams.Metalness out of [0, 1]")
	}
	if p.Roughness < 0 || p.Roughness > 1 {
		return errors.New("shader: PBRParams.Roughness out of [0, 1]")
	}
	return nil
}

// PBR is the physically-based reference material. Unlike Phong, its
// specular term is traced recursively: it pushes a mirror-reflection
// ray into the thread-local ray buffer at reduced weight rather than
// sampling the environment directly, exercising the secondary-ray
// shading contract (spec §4.8/§4.9).
type PBR struct{ p PBRParams }

// NewPBR validates prop and returns a PBR material built from a
// defensive copy of it.
func NewPBR(prop *PBRParams) (*PBR, error) {
	if err := prop.validate(); err != nil {
		return nil, err
	}
	return &PBR{p: *prop}, nil
}

const minRoughness = 0.04

func (m *PBR) Shade(ctx *Context) linear.V3 {
	p := &m.p
	tri := ctx.Scene.TriangleAt(ctx.Collision.TriangleID)
	interp := tri.Interpolate(ctx.Collision.Beta, ctx.Collision.Gamma)

	n := interp.Normal
	var v linear.V3
	v.Neg(&ctx.Ray.Direction)

	roughness := p.Roughness
	if roughness < minRoughness {
		roughness = minRoughness
	}

	f0 := lerp3(linear.V3{0.04, 0.04, 0.04}, p.BaseColor, p.Metalness)

	var offsetOrigin, offset linear.V3
	offset.Scale(1e-3, &n)
	offsetOrigin.Add(&interp.Position, &offset)

	color := p.Emissive

	for _, light := range ctx.Scene.Lights() {
		l := light.SampleDirection(&interp.Position)
		ndotl := saturate(n.Dot(&l))
		if ndotl <= 0 {
			continue
		}

		visibility := float32(1)
		if light.CastsShadows() {
			var dirBuf [MaxShadowSamples * MaxShadowSamples]linear.V3
			ns := ctx.ShadowSamples
			if ns < 1 {
				ns = 1
			}
			if ns > MaxShadowSamples {
				ns = MaxShadowSamples
			}
			dirs := light.SampleShadowRays(&interp.Position, ns, ctx.RNG, dirBuf[:0])
			occluded := 0
			for _, d := range dirs {
				if ctx.Renderer.TraceShadow(&offsetOrigin, &d, 1e30) {
					occluded++
				}
			}
			visibility = float32(len(dirs)-occluded) / float32(len(dirs))
			if visibility <= 0 {
				continue
			}
		}

		var h linear.V3
		h.Add(&l, &v)
		h.Norm(&h)

		ndoth := saturate(n.Dot(&h))
		ndotv := saturate(n.Dot(&v))
		vdoth := saturate(v.Dot(&h))

		alpha := roughness * roughness
		alpha2 := alpha * alpha
		denom := ndoth*ndoth*(alpha2-1) + 1
		d := alpha2 / (math32.Pi * denom * denom)

		k := (roughness + 1) * (roughness + 1) / 8
		gv := ndotv / (ndotv*(1-k) + k)
		gl := ndotl / (ndotl*(1-k) + k)
		g := gv * gl

		fres := fresnelSchlick(f0, vdoth)

		var specular linear.V3
		specular.Scale(d*g/(4*ndotv*ndotl+1e-4), &fres)

		oneMinusF := linear.V3{1 - fres[0], 1 - fres[1], 1 - fres[2]}
		kd := 1 - p.Metalness
		var diffuse linear.V3
		diffuse[0] = p.BaseColor[0] / math32.Pi * kd * oneMinusF[0]
		diffuse[1] = p.BaseColor[1] / math32.Pi * kd * oneMinusF[1]
		diffuse[2] = p.BaseColor[2] / math32.Pi * kd * oneMinusF[2]

		radiance := light.Radiance(&interp.Position)
		var brdf, contribution linear.V3
		brdf.Add(&diffuse, &specular)
		contribution[0] = brdf[0] * radiance[0] * ndotl * visibility
		contribution[1] = brdf[1] * radiance[1] * ndotl * visibility
		contribution[2] = brdf[2] * radiance[2] * ndotl * visibility
		color.Add(&color, &contribution)
	}

	if ctx.RayBuffer != nil {
		mirrorWeight := fresnelSchlick(f0, saturate(n.Dot(&v)))
		mirrorWeight.Scale(1-roughness, &mirrorWeight)
		mirrorWeight[0] *= ctx.Weight[0]
		mirrorWeight[1] *= ctx.Weight[1]
		mirrorWeight[2] *= ctx.Weight[2]

		if mirrorWeight.Dot(&mirrorWeight) > 1e-6 {
			var reflDir linear.V3
			reflDir.Reflect(&ctx.Ray.Direction, &n)
			var ray linear.Ray
			ray.Set(&offsetOrigin, &reflDir)
			ctx.RayBuffer.Push(raybuffer.DeferredRay{
				Ray:    ray,
				Weight: mirrorWeight,
				Mode:   raybuffer.Shade,
				Depth:  ctx.Depth + 1,
				Pixel:  ctx.Pixel,
			})
		}
	}

	return color
}

func lerp3(a, b linear.V3, t float32) linear.V3 {
	var out linear.V3
	out.Lerp(&a, &b, t)
	return out
}

func fresnelSchlick(f0 linear.V3, cosTheta float32) linear.V3 {
	m := 1 - cosTheta
	m2 := m * m
	m5 := m2 * m2 * m
	return linear.V3{
		f0[0] + (1-f0[0])*m5,
		f0[1] + (1-f0[1])*m5,
		f0[2] + (1-f0[2])*m5,
	}
}
