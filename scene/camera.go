// Package scene assembles the immutable input to a render: the
// triangle/material/light lists, the camera, the output image, and
// an optional environment map.
package scene

import (
	"github.com/chewxy/math32"

	"github.com/seanjames777/raytracer-sub000/linear"
)

// Camera is a look-at perspective camera with an optional thin-lens
// aperture for depth of field. Position/target/fov/aspect/focal
// length/aperture are the stored state; forward/right/up/halfWidth/
// halfHeight are derived and recomputed by refresh() whenever the
// stored state changes.
type Camera struct {
	position linear.V3
	target   linear.V3
	fov      float32
	aspect   float32
	focal    float32
	aperture float32

	forward, right, up linear.V3
	halfWidth          float32
	halfHeight         float32
}

// NewCamera builds a Camera from its stored parameters, deriving its
// basis immediately.
func NewCamera(position, target linear.V3, fov, aspect, focal, aperture float32) *Camera {
	c := &Camera{
		position: position,
		target:   target,
		fov:      fov,
		aspect:   aspect,
		focal:    focal,
		aperture: aperture,
	}
	c.refresh()
	return c
}

func (c *Camera) refresh() {
	c.forward.Sub(&c.target, &c.position)
	c.forward.Norm(&c.forward)

	worldUp := linear.V3{0, 1, 0}
	c.right.Cross(&c.forward, &worldUp)
	c.right.Neg(&c.right)
	c.right.Norm(&c.right)

	c.up.Cross(&c.right, &c.forward)
	c.up.Norm(&c.up)

	c.halfWidth = math32.Tan(c.fov/2) * c.focal
	c.halfHeight = c.halfWidth / c.aspect
}

// SetPosition moves the camera and recomputes its derived basis.
func (c *Camera) SetPosition(position linear.V3) {
	c.position = position
	c.refresh()
}

// SetTarget re-aims the camera and recomputes its derived basis.
func (c *Camera) SetTarget(target linear.V3) {
	c.target = target
	c.refresh()
}

// SetFOV changes the field of view and recomputes its derived basis.
func (c *Camera) SetFOV(fov float32) {
	c.fov = fov
	c.refresh()
}

// SetAspect changes the aspect ratio and recomputes its derived basis.
func (c *Camera) SetAspect(aspect float32) {
	c.aspect = aspect
	c.refresh()
}

// Position returns the camera's stored position.
func (c *Camera) Position() linear.V3 { return c.position }

// Forward returns the camera's derived forward direction.
func (c *Camera) Forward() linear.V3 { return c.forward }

// GetViewRay emits a primary ray through the image plane at uv
// (sampling the sensor) and, if the camera has a non-zero aperture,
// through a disk sample at lensUV (sampling depth of field).
func (c *Camera) GetViewRay(uv, lensUV linear.V2) linear.Ray {
	x := uv[0]*2 - 1
	y := uv[1]*2 - 1

	var rightAmt, upAmt, target linear.V3
	rightAmt.Scale(c.halfWidth*x, &c.right)
	upAmt.Scale(c.halfHeight*y, &c.up)

	var forwardAmt linear.V3
	forwardAmt.Scale(c.focal, &c.forward)

	target.Add(&c.position, &forwardAmt)
	target.Add(&target, &rightAmt)
	target.Add(&target, &upAmt)

	origin := c.position
	if c.aperture > 0 {
		disk := linear.SampleDisk(lensUV)
		var dx, dy linear.V3
		dx.Scale(disk[0]*c.aperture, &c.right)
		dy.Scale(disk[1]*c.aperture, &c.up)
		origin.Add(&origin, &dx)
		origin.Add(&origin, &dy)
	}

	var direction linear.V3
	direction.Sub(&target, &origin)
	direction.Norm(&direction)

	var ray linear.Ray
	ray.Set(&origin, &direction)
	return ray
}
