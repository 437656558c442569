// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package image

import (
	"math/rand"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	w, h, c := 47, 33, 4
	im := New[float32](w, h, c)

	rng := rand.New(rand.NewSource(1))
	data := make([]float32, w*h*c)
	for i := range data {
		data[i] = rng.Float32()
	}

	im.SetPixels(data)
	out := make([]float32, w*h*c)
	im.GetPixels(out)

	for i := range data {
		if out[i] != data[i] {
			t.Fatalf("round trip mismatch at %d\nhave %v\nwant %v", i, out[i], data[i])
		}
	}
}

func TestGetSetPixel(t *testing.T) {
	im := New[float32](5, 5, 3)
	px := []float32{1, 2, 3}
	im.SetPixel(4, 4, px)

	out := make([]float32, 3)
	im.GetPixel(4, 4, out)
	if out[0] != 1 || out[1] != 2 || out[2] != 3 {
		t.Fatalf("GetPixel\nhave %v\nwant [1 2 3]", out)
	}
}

func TestLastPixelByUV(t *testing.T) {
	im := New[float32](4, 4, 1)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			im.SetPixel(x, y, []float32{float32(y*4 + x)})
		}
	}

	s := Sampler{Filter: Nearest, Border: Clamp}
	out := make([]float32, 1)
	s.Sample(im, [2]float32{1, 1}, out)
	if out[0] != 15 {
		t.Fatalf("Sample(1,1)\nhave %v\nwant 15 (pixel at width-1,height-1)", out[0])
	}
}

func TestSamplerConstantImage(t *testing.T) {
	im := New[float32](8, 8, 3)
	c := []float32{0.5, 0.25, 0.75}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			im.SetPixel(x, y, c)
		}
	}

	out := make([]float32, 3)
	for _, filt := range []Filter{Nearest, Bilinear} {
		for _, bord := range []Border{Clamp, Wrap, Mirror} {
			s := Sampler{Filter: filt, Border: bord}
			for _, uv := range [][2]float32{{0, 0}, {0.5, 0.5}, {1, 1}, {0.1, 0.9}} {
				s.Sample(im, uv, out)
				if out[0] != c[0] || out[1] != c[1] || out[2] != c[2] {
					t.Fatalf("Sample constant image filt=%v border=%v uv=%v\nhave %v\nwant %v",
						filt, bord, uv, out, c)
				}
			}
		}
	}
}
