package scene

import (
	"errors"

	"github.com/seanjames777/raytracer-sub000/image"
	"github.com/seanjames777/raytracer-sub000/linear"
	"github.com/seanjames777/raytracer-sub000/shader"
	"github.com/seanjames777/raytracer-sub000/triangle"
)

func newErr(reason string) error { return errors.New("scene: " + reason) }

// ErrEmptyScene is returned by Validate when the scene has no
// triangles, matching the InvalidScene build-time invariant.
var ErrEmptyScene = newErr("scene has no triangles")

// Scene is the immutable-during-render input to a render: the
// triangle/material/light lists, a camera, the output image, and an
// optional environment map, matching the original implementation's
// flat (non-hierarchical) model.
type Scene struct {
	// Triangles holds the scene's geometry; TriangleAt indexes it by
	// a triangle's TriangleID, which AddTriangle assigns in order.
	Triangles []*triangle.Triangle
	// MaterialIDs[i] is the index into Materials used by Triangles[i].
	MaterialIDs []uint32
	Materials   []shader.Material

	Camera *Camera
	Output *image.Image[float32]

	// Environment and EnvSampler are both nil for a scene with no
	// environment map; misses then resolve to Background.
	Environment *image.Image[float32]
	EnvSampler  *image.Sampler
	Background  linear.V3

	lights []shader.Light
}

// New builds an empty Scene around the given camera and output
// image; triangles, materials and lights are added afterward.
func New(camera *Camera, output *image.Image[float32]) *Scene {
	return &Scene{Camera: camera, Output: output}
}

// AddTriangle appends tri to the scene, assigning its TriangleID to
// its position in Triangles, and records materialID as the triangle's
// material index.
func (s *Scene) AddTriangle(tri *triangle.Triangle, materialID uint32) {
	tri.TriangleID = uint32(len(s.Triangles))
	s.Triangles = append(s.Triangles, tri)
	s.MaterialIDs = append(s.MaterialIDs, materialID)
}

// AddLight appends l to the scene's light list.
func (s *Scene) AddLight(l shader.Light) { s.lights = append(s.lights, l) }

// Lights returns the scene's lights.
func (s *Scene) Lights() []shader.Light { return s.lights }

// Validate reports the InvalidScene build-time invariants: an empty
// triangle list, or a material_ids entry with no corresponding
// Materials entry.
func (s *Scene) Validate() error {
	if len(s.Triangles) == 0 {
		return ErrEmptyScene
	}
	for _, id := range s.MaterialIDs {
		if int(id) >= len(s.Materials) {
			return newErr("material_ids references an undefined material")
		}
	}
	return nil
}

// TriangleAt returns the triangle with the given id.
func (s *Scene) TriangleAt(id uint32) *triangle.Triangle { return s.Triangles[id] }

// MaterialAt returns the material at the given index (as found via
// MaterialIDs[triangleID]).
func (s *Scene) MaterialAt(materialID uint32) shader.Material { return s.Materials[materialID] }

// EnvironmentRadiance samples the environment map along dir, or
// returns Background if the scene has no environment.
func (s *Scene) EnvironmentRadiance(dir *linear.V3) linear.V3 {
	if s.Environment == nil || s.EnvSampler == nil {
		return s.Background
	}
	uv := image.DirectionToUV([3]float32{dir[0], dir[1], dir[2]})
	var out [3]float32
	s.EnvSampler.Sample(s.Environment, uv, out[:])
	return linear.V3{out[0], out[1], out[2]}
}

// EnvironmentReflection reflects dir about normal and samples the
// environment along the resulting direction.
func (s *Scene) EnvironmentReflection(dir, normal *linear.V3) linear.V3 {
	var r linear.V3
	r.Reflect(dir, normal)
	return s.EnvironmentRadiance(&r)
}

// EnvironmentRefraction refracts dir through a surface with the given
// normal and index of refraction ior of the medium on the side the
// normal points away from (linear.V3.Refract receives eta1=1,
// eta2=ior for a ray entering against the normal, and the two swapped
// for a ray leaving along it), and samples the environment along the
// resulting direction. Returns Background on total internal
// reflection.
func (s *Scene) EnvironmentRefraction(dir, normal *linear.V3, ior float32) linear.V3 {
	n := *normal
	eta1, eta2 := float32(1), ior
	if n.Dot(dir) > 0 {
		// Ray is exiting the surface; flip the normal and swap the
		// relative indices of refraction.
		n.Neg(&n)
		eta1, eta2 = eta2, eta1
	}
	var r linear.V3
	if !r.Refract(dir, &n, eta1, eta2) {
		return s.Background
	}
	return s.EnvironmentRadiance(&r)
}
