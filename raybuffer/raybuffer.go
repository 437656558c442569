// Package raybuffer implements the per-worker deferred-ray FIFO that
// decouples KD-tree traversal (producer) from shading (consumer).
package raybuffer

import "github.com/seanjames777/raytracer-sub000/linear"

// Mode distinguishes a shading ray from a shadow ray at shading
// time; shadow rays are traced any-hit.
type Mode int

const (
	// Shade rays are traced closest-hit and invoke the hit
	// material's shader.
	Shade Mode = iota
	// Shadow rays are traced any-hit; a hit means occluded.
	Shadow
)

// DeferredRay is a ray queued by a shader for later tracing,
// carrying the bookkeeping needed to apply its result once traced.
type DeferredRay struct {
	Ray    linear.Ray
	Weight linear.V3
	Mode   Mode
	Depth  int
	Pixel  int // flat index into the owning worker's block
}

// defaultCapacity matches the original implementation's starting
// capacity before the first doubling.
const defaultCapacity = 128

// Buffer is an unbounded, single-owner FIFO of DeferredRay. It is
// not safe for concurrent use; each render worker owns exactly one.
type Buffer struct {
	rays  []DeferredRay
	head  int
	count int
}

// New returns an empty Buffer with its initial capacity preallocated.
func New() *Buffer {
	return &Buffer{rays: make([]DeferredRay, defaultCapacity)}
}

// Len returns the number of queued rays.
func (b *Buffer) Len() int { return b.count }

// Cap returns the buffer's current backing capacity.
func (b *Buffer) Cap() int { return len(b.rays) }

// Empty reports whether the buffer holds no rays.
func (b *Buffer) Empty() bool { return b.count == 0 }

// Push enqueues r at the back of the FIFO, doubling the backing
// array first if it is full.
func (b *Buffer) Push(r DeferredRay) {
	if b.count == len(b.rays) {
		b.grow()
	}
	tail := (b.head + b.count) % len(b.rays)
	b.rays[tail] = r
	b.count++
}

// Pop removes and returns the ray at the front of the FIFO. The
// caller must ensure the buffer is non-empty.
func (b *Buffer) Pop() DeferredRay {
	r := b.rays[b.head]
	b.head = (b.head + 1) % len(b.rays)
	b.count--
	return r
}

func (b *Buffer) grow() {
	newCap := len(b.rays) * 2
	if newCap == 0 {
		newCap = defaultCapacity
	}
	next := make([]DeferredRay, newCap)
	for i := 0; i < b.count; i++ {
		next[i] = b.rays[(b.head+i)%len(b.rays)]
	}
	b.rays = next
	b.head = 0
}
