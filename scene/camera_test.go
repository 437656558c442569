package scene

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/seanjames777/raytracer-sub000/linear"
)

func approxV3(t *testing.T, name string, have, want linear.V3, eps float32) {
	t.Helper()
	for i := 0; i < 3; i++ {
		if math32.Abs(have[i]-want[i]) > eps {
			t.Fatalf("%s\nhave %v\nwant %v", name, have, want)
		}
	}
}

func TestCameraPinholeProjection(t *testing.T) {
	const fov = math32.Pi / 2
	cam := NewCamera(linear.V3{0, 0, -5}, linear.V3{0, 0, 0}, fov, 1, 1, 0)

	center := cam.GetViewRay(linear.V2{0.5, 0.5}, linear.V2{})
	approxV3(t, "GetViewRay(0.5,0.5).Origin", center.Origin, linear.V3{0, 0, -5}, 1e-5)
	approxV3(t, "GetViewRay(0.5,0.5).Direction", center.Direction, linear.V3{0, 0, 1}, 1e-5)

	edge := cam.GetViewRay(linear.V2{1.0, 0.5}, linear.V2{})
	wantRatio := math32.Tan(fov / 2)
	haveRatio := edge.Direction[0] / edge.Direction[2]
	if math32.Abs(haveRatio-wantRatio) > 1e-4 {
		t.Fatalf("GetViewRay(1.0,0.5).Direction x/z\nhave %v\nwant %v", haveRatio, wantRatio)
	}
}

func TestCameraApertureZeroIsPinhole(t *testing.T) {
	cam := NewCamera(linear.V3{0, 0, -5}, linear.V3{0, 0, 0}, math32.Pi/2, 1, 1, 0)

	r1 := cam.GetViewRay(linear.V2{0.3, 0.7}, linear.V2{0.1, 0.9})
	r2 := cam.GetViewRay(linear.V2{0.3, 0.7}, linear.V2{0.9, 0.1})
	// With a zero aperture every lens sample must collapse to the same
	// pinhole origin, regardless of lensUV.
	approxV3(t, "zero-aperture origin", r1.Origin, r2.Origin, 1e-6)
	approxV3(t, "zero-aperture origin", r1.Origin, linear.V3{0, 0, -5}, 1e-6)
}

func TestCameraSettersRecomputeBasis(t *testing.T) {
	cam := NewCamera(linear.V3{0, 0, -5}, linear.V3{0, 0, 0}, math32.Pi/2, 1, 1, 0)
	before := cam.Forward()

	cam.SetTarget(linear.V3{1, 0, 0})
	after := cam.Forward()

	if before == after {
		t.Fatalf("Forward() after SetTarget\nhave %v (unchanged)\nwant a different direction", after)
	}

	cam.SetPosition(linear.V3{0, 0, -5})
	if cam.Position() != (linear.V3{0, 0, -5}) {
		t.Fatalf("Position()\nhave %v\nwant %v", cam.Position(), linear.V3{0, 0, -5})
	}
}
