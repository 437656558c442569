package image

import "github.com/chewxy/math32"

// Filter selects how Sampler.Sample reconstructs a value between
// pixel centers.
type Filter int

const (
	Nearest Filter = iota
	Bilinear
)

// Border selects how Sampler.Sample handles coordinates outside
// [0, width) / [0, height).
type Border int

const (
	Clamp Border = iota
	Wrap
	Mirror
)

// Sampler reconstructs continuous-coordinate values from an Image.
type Sampler struct {
	Filter Filter
	Border Border
}

func (s *Sampler) resolve(coord, size int) int {
	if size <= 0 {
		return 0
	}
	switch s.Border {
	case Wrap:
		coord %= size
		if coord < 0 {
			coord += size
		}
		return coord
	case Mirror:
		period := 2 * size
		coord %= period
		if coord < 0 {
			coord += period
		}
		if coord >= size {
			coord = period - 1 - coord
		}
		return coord
	default: // Clamp
		if coord < 0 {
			return 0
		}
		if coord >= size {
			return size - 1
		}
		return coord
	}
}

// Sample reconstructs the pixel value at continuous coordinate uv
// in [0,1]^2, writing Comps() components to out.
func (s *Sampler) Sample(im *Image[float32], uv [2]float32, out []float32) {
	x := uv[0] * float32(im.width-1)
	y := uv[1] * float32(im.height-1)

	switch s.Filter {
	case Bilinear:
		x0 := math32.Floor(x)
		y0 := math32.Floor(y)
		du := x - x0
		dv := y - y0
		ix0, iy0 := int(x0), int(y0)

		comps := im.comps
		var p00, p10, p01, p11 [8]float32 // supports up to 8 comps without alloc
		im.GetPixel(s.resolve(ix0, im.width), s.resolve(iy0, im.height), p00[:comps])
		im.GetPixel(s.resolve(ix0+1, im.width), s.resolve(iy0, im.height), p10[:comps])
		im.GetPixel(s.resolve(ix0, im.width), s.resolve(iy0+1, im.height), p01[:comps])
		im.GetPixel(s.resolve(ix0+1, im.width), s.resolve(iy0+1, im.height), p11[:comps])

		w00 := (1 - du) * (1 - dv)
		w10 := du * (1 - dv)
		w01 := (1 - du) * dv
		w11 := du * dv
		for i := 0; i < comps; i++ {
			out[i] = p00[i]*w00 + p10[i]*w10 + p01[i]*w01 + p11[i]*w11
		}
	default: // Nearest
		ix := int(math32.Floor(x))
		iy := int(math32.Floor(y))
		im.GetPixel(s.resolve(ix, im.width), s.resolve(iy, im.height), out)
	}
}

// DirectionToUV maps a unit direction to equirectangular texture
// coordinates for environment-map sampling.
func DirectionToUV(dir [3]float32) [2]float32 {
	u := (math32.Atan2(dir[2], dir[0]) + math32.Pi) / (2 * math32.Pi)
	v := math32.Acos(clamp(dir[1], -1, 1)) / math32.Pi
	return [2]float32{u, v}
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
