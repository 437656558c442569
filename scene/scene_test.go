package scene

import (
	"errors"
	"testing"

	"github.com/seanjames777/raytracer-sub000/image"
	"github.com/seanjames777/raytracer-sub000/linear"
	"github.com/seanjames777/raytracer-sub000/triangle"
)

func newCameraAndOutput() (*Camera, *image.Image[float32]) {
	cam := NewCamera(linear.V3{0, 0, -5}, linear.V3{0, 0, 0}, 1.2, 1, 1, 0)
	out := image.New[float32](4, 4, 4)
	return cam, out
}

func TestSceneValidateRejectsEmptyScene(t *testing.T) {
	cam, out := newCameraAndOutput()
	sc := New(cam, out)

	if err := sc.Validate(); !errors.Is(err, ErrEmptyScene) {
		t.Fatalf("Validate() on empty scene\nhave %v\nwant %v", err, ErrEmptyScene)
	}
}

func TestSceneValidateRejectsUndefinedMaterial(t *testing.T) {
	cam, out := newCameraAndOutput()
	sc := New(cam, out)

	v0 := triangle.Vertex{Position: linear.V3{0, 0, 0}}
	v1 := triangle.Vertex{Position: linear.V3{1, 0, 0}}
	v2 := triangle.Vertex{Position: linear.V3{0, 1, 0}}
	tri, err := triangle.New(v0, v1, v2, 0, 0)
	if err != nil {
		t.Fatalf("triangle.New: unexpected error: %v", err)
	}
	sc.AddTriangle(&tri, 0) // material 0 is never appended to sc.Materials

	if err := sc.Validate(); err == nil {
		t.Fatalf("Validate() with dangling material id\nhave nil error\nwant error")
	}
}

func TestSceneAddTriangleAssignsSequentialIDs(t *testing.T) {
	cam, out := newCameraAndOutput()
	sc := New(cam, out)

	v0 := triangle.Vertex{Position: linear.V3{0, 0, 0}}
	v1 := triangle.Vertex{Position: linear.V3{1, 0, 0}}
	v2 := triangle.Vertex{Position: linear.V3{0, 1, 0}}

	for i := 0; i < 3; i++ {
		tri, err := triangle.New(v0, v1, v2, 0, 0)
		if err != nil {
			t.Fatalf("triangle.New: unexpected error: %v", err)
		}
		sc.AddTriangle(&tri, 0)
	}

	for i, tri := range sc.Triangles {
		if tri.TriangleID != uint32(i) {
			t.Fatalf("Triangles[%d].TriangleID\nhave %d\nwant %d", i, tri.TriangleID, i)
		}
		if got := sc.TriangleAt(uint32(i)); got != tri {
			t.Fatalf("TriangleAt(%d)\nhave %v\nwant %v", i, got, tri)
		}
	}
}

func TestSceneAddLightAccumulates(t *testing.T) {
	cam, out := newCameraAndOutput()
	sc := New(cam, out)

	if len(sc.Lights()) != 0 {
		t.Fatalf("Lights() on new scene\nhave %d entries\nwant 0", len(sc.Lights()))
	}

	sc.AddLight(&DirectionalLight{Direction: linear.V3{0, 1, 0}, Color: linear.V3{1, 1, 1}})
	sc.AddLight(&PointLight{Position: linear.V3{0, 5, 0}, Color: linear.V3{1, 0, 0}, Range: 10, Power: 1})

	if len(sc.Lights()) != 2 {
		t.Fatalf("Lights() after two AddLight calls\nhave %d entries\nwant 2", len(sc.Lights()))
	}
}

func TestEnvironmentRadianceFallsBackToBackground(t *testing.T) {
	cam, out := newCameraAndOutput()
	sc := New(cam, out)
	sc.Background = linear.V3{0.1, 0.2, 0.3}

	dir := linear.V3{0, 0, 1}
	got := sc.EnvironmentRadiance(&dir)
	if got != sc.Background {
		t.Fatalf("EnvironmentRadiance() with no environment map\nhave %v\nwant %v", got, sc.Background)
	}
}

func TestEnvironmentReflectionFallsBackToBackground(t *testing.T) {
	cam, out := newCameraAndOutput()
	sc := New(cam, out)
	sc.Background = linear.V3{0.4, 0.5, 0.6}

	dir := linear.V3{0, -1, 0}
	normal := linear.V3{0, 1, 0}
	got := sc.EnvironmentReflection(&dir, &normal)
	if got != sc.Background {
		t.Fatalf("EnvironmentReflection() with no environment map\nhave %v\nwant %v", got, sc.Background)
	}
}

func TestEnvironmentRefractionTotalInternalReflectionFallsBackToBackground(t *testing.T) {
	cam, out := newCameraAndOutput()
	sc := New(cam, out)
	sc.Background = linear.V3{0.7, 0.8, 0.9}

	// A grazing ray leaving the denser medium (dir·normal > 0, so
	// eta1=1.5, eta2=1) nearly parallel to the surface plane triggers
	// total internal reflection.
	dir := linear.V3{0.999, 0.0447, 0}
	normal := linear.V3{0, 1, 0}
	got := sc.EnvironmentRefraction(&dir, &normal, 1.5)
	if got != sc.Background {
		t.Fatalf("EnvironmentRefraction() under total internal reflection\nhave %v\nwant %v", got, sc.Background)
	}
}
