package shader

import (
	"testing"

	"github.com/seanjames777/raytracer-sub000/linear"
	"github.com/seanjames777/raytracer-sub000/raybuffer"
	"github.com/seanjames777/raytracer-sub000/triangle"
)

func TestPBRShadeProducesPositiveRadiance(t *testing.T) {
	prop := PBRParams{BaseColor: linear.V3{1, 1, 1}, Metalness: 0, Roughness: 1}
	mat, err := NewPBR(&prop)
	if err != nil {
		t.Fatalf("NewPBR: unexpected error: %v", err)
	}

	tri := flatTriangle()
	light := &fakeLight{dir: linear.V3{0, 1, 0}, color: linear.V3{1, 1, 1}}
	sc := &fakeScene{tri: tri, lights: []Light{light}}
	rend := &fakeRenderer{occlusion: 1}

	origin := linear.V3{0, 5, 0}
	dir := linear.V3{0, -1, 0}
	var ray linear.Ray
	ray.Set(&origin, &dir)

	ctx := &Context{
		Ray:       &ray,
		Collision: triangle.Collision{Distance: 5, Beta: 0.25, Gamma: 0.25, TriangleID: 0},
		Scene:     sc,
		Renderer:  rend,
		Weight:    linear.V3{1, 1, 1},
		RayBuffer: raybuffer.New(),
	}

	color := mat.Shade(ctx)
	for i, c := range color {
		if c <= 0 {
			t.Fatalf("Shade()[%d]\nhave %v\nwant > 0", i, c)
		}
	}
}

func TestPBRShadeOccludedLightContributesNothing(t *testing.T) {
	prop := PBRParams{BaseColor: linear.V3{1, 1, 1}, Metalness: 0, Roughness: 1}
	mat, _ := NewPBR(&prop)

	tri := flatTriangle()
	light := &fakeLight{dir: linear.V3{0, 1, 0}, color: linear.V3{1, 1, 1}, shadow: true}
	sc := &fakeScene{tri: tri, lights: []Light{light}}
	rend := &fakeRenderer{occluded: true, occlusion: 1}

	origin := linear.V3{0, 5, 0}
	dir := linear.V3{0, -1, 0}
	var ray linear.Ray
	ray.Set(&origin, &dir)

	ctx := &Context{
		Ray:       &ray,
		Collision: triangle.Collision{Distance: 5, Beta: 0.25, Gamma: 0.25, TriangleID: 0},
		Scene:     sc,
		Renderer:  rend,
	}

	color := mat.Shade(ctx)
	if color != (linear.V3{}) {
		t.Fatalf("Shade() with fully occluded light\nhave %v\nwant zero vector (emissive defaults to zero)", color)
	}
}

func TestPBRPushesMirrorRayWhenSmooth(t *testing.T) {
	prop := PBRParams{BaseColor: linear.V3{1, 1, 1}, Metalness: 1, Roughness: 0}
	mat, _ := NewPBR(&prop)

	tri := flatTriangle()
	sc := &fakeScene{tri: tri}
	rend := &fakeRenderer{occlusion: 1}

	origin := linear.V3{0, 5, 0}
	dir := linear.V3{0, -1, 0}
	var ray linear.Ray
	ray.Set(&origin, &dir)

	buf := raybuffer.New()
	ctx := &Context{
		Ray:       &ray,
		Collision: triangle.Collision{Distance: 5, Beta: 0.25, Gamma: 0.25, TriangleID: 0},
		Scene:     sc,
		Renderer:  rend,
		Weight:    linear.V3{1, 1, 1},
		RayBuffer: buf,
		Depth:     2,
		Pixel:     7,
	}

	mat.Shade(ctx)
	if buf.Empty() {
		t.Fatalf("Shade() with Metalness=1, Roughness=0\nhave no pushed ray\nwant a mirror reflection ray")
	}
	r := buf.Pop()
	if r.Depth != 3 || r.Pixel != 7 {
		t.Fatalf("pushed ray bookkeeping\nhave Depth=%d Pixel=%d\nwant Depth=3 Pixel=7", r.Depth, r.Pixel)
	}
}
