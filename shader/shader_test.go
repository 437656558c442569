package shader

import (
	"math/rand"

	"github.com/seanjames777/raytracer-sub000/linear"
	"github.com/seanjames777/raytracer-sub000/triangle"
)

type fakeLight struct {
	dir     linear.V3
	color   linear.V3
	shadow  bool
	rngSeed int
}

func (l *fakeLight) SampleDirection(point *linear.V3) linear.V3 { return l.dir }
func (l *fakeLight) Radiance(point *linear.V3) linear.V3        { return l.color }
func (l *fakeLight) CastsShadows() bool                         { return l.shadow }
func (l *fakeLight) SampleShadowRays(point *linear.V3, n int, rng *rand.Rand, out []linear.V3) []linear.V3 {
	return append(out, l.dir)
}

type fakeScene struct {
	tri    *triangle.Triangle
	lights []Light
}

func (s *fakeScene) TriangleAt(id uint32) *triangle.Triangle          { return s.tri }
func (s *fakeScene) Lights() []Light                                  { return s.lights }
func (s *fakeScene) EnvironmentRadiance(dir *linear.V3) linear.V3      { return linear.V3{} }
func (s *fakeScene) EnvironmentReflection(dir, n *linear.V3) linear.V3 { return linear.V3{} }
func (s *fakeScene) EnvironmentRefraction(dir, n *linear.V3, ior float32) linear.V3 {
	return linear.V3{}
}

type fakeRenderer struct {
	occluded  bool
	occlusion float32
}

func (r *fakeRenderer) TraceShadow(origin, dir *linear.V3, maxDist float32) bool { return r.occluded }
func (r *fakeRenderer) AmbientOcclusion(point, normal *linear.V3) float32        { return r.occlusion }

func flatTriangle() *triangle.Triangle {
	v0 := triangle.Vertex{Position: linear.V3{-1, 0, -1}, Normal: linear.V3{0, 1, 0}, UV: linear.V2{0, 0}}
	v1 := triangle.Vertex{Position: linear.V3{1, 0, -1}, Normal: linear.V3{0, 1, 0}, UV: linear.V2{1, 0}}
	v2 := triangle.Vertex{Position: linear.V3{-1, 0, 1}, Normal: linear.V3{0, 1, 0}, UV: linear.V2{0, 1}}
	tri, err := triangle.New(v0, v1, v2, 0, 0)
	if err != nil {
		panic(err)
	}
	return &tri
}
