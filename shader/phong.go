package shader

import (
	"errors"

	"github.com/chewxy/math32"

	"github.com/seanjames777/raytracer-sub000/image"
	"github.com/seanjames777/raytracer-sub000/linear"
)

// PhongParams configures a Phong material. Reflection/Refraction
// sample the scene's environment directly (no recursive ray
// tracing), matching the original implementation's reference shader.
type PhongParams struct {
	Ambient       linear.V3
	Diffuse       linear.V3
	Specular      linear.V3
	SpecularPower float32
	Reflection    float32
	Refraction    float32
	IOR           float32

	// DiffuseTexture and DiffuseSampler are both nil for an
	// untextured material.
	DiffuseTexture *image.Image[float32]
	DiffuseSampler *image.Sampler
}

func (p *PhongParams) validate() error {
	if p.SpecularPower < 0 {
		return errors.New("shader: negative PhongParams.SpecularPower")
	}
	if p.Reflection < 0 || p.Reflection > 1 {
		return errors.New("shader: PhongParams.Reflection out of [0, 1]")
	}
	if p.Refraction < 0 || p.Refraction > 1 {
		return errors.New("shader: PhongParams.Refraction out of [0, 1]")
	}
	if p.Refraction > 0 && p.IOR <= 0 {
		return errors.New("shader: PhongParams.IOR must be positive when Refraction > 0")
	}
	if (p.DiffuseTexture == nil) != (p.DiffuseSampler == nil) {
		return errors.New("shader: PhongParams.DiffuseTexture and DiffuseSampler must be set together")
	}
	return nil
}

// Phong is the reference Phong/Blinn-style material: ambient term,
// N·L-weighted diffuse with an optional texture, specular highlight,
// and Fresnel-mixed reflection/refraction sampled directly from the
// scene's environment map.
type Phong struct{ p PhongParams }

// NewPhong validates prop and returns a Phong material built from a
// defensive copy of it.
func NewPhong(prop *PhongParams) (*Phong, error) {
	if err := prop.validate(); err != nil {
		return nil, err
	}
	return &Phong{p: *prop}, nil
}

// Shade implements Material.
func (m *Phong) Shade(ctx *Context) linear.V3 {
	p := &m.p
	tri := ctx.Scene.TriangleAt(ctx.Collision.TriangleID)
	interp := tri.Interpolate(ctx.Collision.Beta, ctx.Collision.Gamma)

	color := p.Ambient

	var reflCol, refrCol linear.V3
	if p.Reflection > 0 {
		reflCol = ctx.Scene.EnvironmentReflection(&ctx.Ray.Direction, &interp.Normal)
	}
	if p.Refraction > 0 {
		refrCol = ctx.Scene.EnvironmentRefraction(&ctx.Ray.Direction, &interp.Normal, p.IOR)
	}

	schlickAmt := float32(1)
	if p.Reflection > 0 && p.Refraction > 0 {
		var view linear.V3
		view.Neg(&ctx.Ray.Direction)
		schlickAmt = linear.Schlick(&interp.Normal, &view, 1, p.IOR)
	}

	var reflW, refrW linear.V3
	reflW.Scale(schlickAmt*p.Reflection, &reflCol)
	refrW.Scale((1-schlickAmt)*p.Refraction, &refrCol)
	color.Add(&color, &reflW)
	color.Add(&color, &refrW)

	texDiffuse := linear.V3{1, 1, 1}
	if p.DiffuseTexture != nil {
		var out [3]float32
		p.DiffuseSampler.Sample(p.DiffuseTexture, [2]float32{interp.UV[0], interp.UV[1]}, out[:])
		texDiffuse = linear.V3{out[0], out[1], out[2]}
	}

	var offsetOrigin linear.V3
	var offset linear.V3
	offset.Scale(1e-3, &tri.FaceNormal)
	offsetOrigin.Add(&interp.Position, &offset)

	for _, light := range ctx.Scene.Lights() {
		shadow := float32(1)
		if light.CastsShadows() {
			var dirBuf [MaxShadowSamples * MaxShadowSamples]linear.V3
			n := ctx.ShadowSamples
			if n < 1 {
				n = 1
			}
			if n > MaxShadowSamples {
				n = MaxShadowSamples
			}
			dirs := light.SampleShadowRays(&interp.Position, n, ctx.RNG, dirBuf[:0])
			occluded := 0
			for _, d := range dirs {
				if ctx.Renderer.TraceShadow(&offsetOrigin, &d, 1e30) {
					occluded++
				}
			}
			visible := float32(len(dirs)-occluded) / float32(len(dirs))
			shadow = 0.2 + 0.8*visible
		}

		lcolor := light.Radiance(&interp.Position)
		ldir := light.SampleDirection(&interp.Position)
		ndotl := saturate(interp.Normal.Dot(&ldir))

		var incoming, ref, view linear.V3
		incoming.Neg(&ldir)
		ref.Reflect(&incoming, &interp.Normal)
		view.Neg(&ctx.Ray.Direction)

		rdotv := saturate(ref.Dot(&view))
		specf := math32.Pow(rdotv, p.SpecularPower)

		var spec, diff, litColor linear.V3
		spec.Scale(specf, &p.Specular)
		diff[0] = p.Diffuse[0] * texDiffuse[0] * ndotl
		diff[1] = p.Diffuse[1] * texDiffuse[1] * ndotl
		diff[2] = p.Diffuse[2] * texDiffuse[2] * ndotl
		litColor[0] = lcolor[0]*diff[0] + spec[0]
		litColor[1] = lcolor[1]*diff[1] + spec[1]
		litColor[2] = lcolor[2]*diff[2] + spec[2]
		litColor.Scale(shadow, &litColor)

		color.Add(&color, &litColor)
	}

	occlusion := ctx.Renderer.AmbientOcclusion(&offsetOrigin, &tri.FaceNormal)
	color.Scale(occlusion, &color)

	return color
}
