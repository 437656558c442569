// Package render implements the block-scheduled, worker-pooled
// render loop: it builds a KD-tree accelerator for a scene, then
// drives a pool of workers that each claim image blocks from a
// shared atomic counter, emit jittered primary rays into a
// thread-local ray buffer, and drain it to completion before moving
// on to the next block.
package render

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rs/zerolog"

	"github.com/seanjames777/raytracer-sub000/internal/bitset"
	"github.com/seanjames777/raytracer-sub000/kdtree"
	"github.com/seanjames777/raytracer-sub000/linear"
	"github.com/seanjames777/raytracer-sub000/raybuffer"
	"github.com/seanjames777/raytracer-sub000/scene"
	"github.com/seanjames777/raytracer-sub000/shader"
)

func newErr(reason string) error { return errors.New("render: " + reason) }

// Error kinds surfaced by Start, matching the build()/render()
// invariant taxonomy: all are reported before any worker starts.
var (
	ErrInvalidScene      = newErr("invalid scene")
	ErrInvalidSettings   = newErr("invalid settings")
	ErrResourceExhausted = newErr("resource exhausted")
)

// MaxPixelSamples and MaxRecursionDepth are hard ceilings on
// Config.PixelSamples/Config.MaxDepth; Start rejects configurations
// that exceed them rather than silently clamping.
const (
	MaxPixelSamples   = 16
	MaxRecursionDepth = 20
)

// Config controls block scheduling, sampling, and secondary-ray
// behavior. The KD-tree build itself is configured separately via
// Build (a kdtree.BuildConfig).
type Config struct {
	// BlockSize is the side length of a scheduling tile. Default is 16.
	BlockSize int
	// PixelSamples is S, the side of the SxS stratified sample grid
	// per pixel. Default is 2 (4 samples/pixel).
	PixelSamples int
	// NumWorkers is the render worker-pool size; 0 selects hardware
	// concurrency. Default is 0.
	NumWorkers int
	// MaxDepth hard-caps ray-buffer recursion; a dequeued ray at or
	// beyond this depth is not shaded (its contribution, and any
	// further rays it would have pushed, are silently dropped).
	// Default is 20.
	MaxDepth int
	// ShadowSamples is n, the side of the n×n grid of shadow rays a
	// material averages per light for soft shadows. Default is 1 (hard
	// shadow).
	ShadowSamples int
	// OcclusionSamples is the number of cosine-hemisphere rays traced
	// per AmbientOcclusion call. 0 disables ambient occlusion
	// (AmbientOcclusion always returns 1). Default is 0.
	OcclusionSamples int
	// OcclusionDistance caps how far an ambient-occlusion ray may
	// travel before counting as unoccluded. Default is 1e30.
	OcclusionDistance float32
	// Build configures the KD-tree accelerator built at Start.
	Build kdtree.BuildConfig
	// Logger receives start/shutdown summaries and worker panics.
	// Default is a disabled logger.
	Logger zerolog.Logger
}

// DefaultConfig returns the suggested-default render configuration.
func DefaultConfig() Config {
	return Config{
		BlockSize:         16,
		PixelSamples:      2,
		MaxDepth:          MaxRecursionDepth,
		ShadowSamples:     1,
		OcclusionSamples:  0,
		OcclusionDistance: 1e30,
		Build:             kdtree.DefaultBuildConfig(),
		Logger:            zerolog.Nop(),
	}
}

func (c *Config) validate() error {
	if c.BlockSize <= 0 {
		return newErr("BlockSize must be positive")
	}
	if c.PixelSamples <= 0 || c.PixelSamples > MaxPixelSamples {
		return newErr(fmt.Sprintf("PixelSamples must be in [1, %d]", MaxPixelSamples))
	}
	if c.MaxDepth <= 0 || c.MaxDepth > MaxRecursionDepth {
		return newErr(fmt.Sprintf("MaxDepth must be in [1, %d]", MaxRecursionDepth))
	}
	return nil
}

// RenderStats reports per-worker cycle counters, summed across the
// pool at Shutdown, named after the original implementation's
// RaytracerStat taxonomy. UnaccountedCycles is TotalCycles minus the
// sum of all other fields. SecondaryEmitCycles and SecondaryPackCycles
// stay zero: secondary rays are emitted and pushed from inside opaque
// Material.Shade calls, whose cost is attributed to ShadingCycles
// instead (see DESIGN.md). ShadingSortCycles stays zero: the ray
// buffer is drained strictly FIFO, with no ray-reordering pass.
type RenderStats struct {
	TotalCycles             time.Duration
	PrimaryEmitCycles       time.Duration
	PrimaryPackCycles       time.Duration
	PrimaryTraceCycles      time.Duration
	SecondaryEmitCycles     time.Duration
	SecondaryPackCycles     time.Duration
	SecondaryTraceCycles    time.Duration
	ShadowPackCycles        time.Duration
	ShadingPackCycles       time.Duration
	ShadingSortCycles       time.Duration
	ShadingCycles           time.Duration
	ShadowTraceCycles       time.Duration
	UpdateFramebufferCycles time.Duration
	UnaccountedCycles       time.Duration
}

func (s *RenderStats) merge(o *RenderStats) {
	s.PrimaryEmitCycles += o.PrimaryEmitCycles
	s.PrimaryPackCycles += o.PrimaryPackCycles
	s.PrimaryTraceCycles += o.PrimaryTraceCycles
	s.SecondaryEmitCycles += o.SecondaryEmitCycles
	s.SecondaryPackCycles += o.SecondaryPackCycles
	s.SecondaryTraceCycles += o.SecondaryTraceCycles
	s.ShadowPackCycles += o.ShadowPackCycles
	s.ShadingPackCycles += o.ShadingPackCycles
	s.ShadingSortCycles += o.ShadingSortCycles
	s.ShadingCycles += o.ShadingCycles
	s.ShadowTraceCycles += o.ShadowTraceCycles
	s.UpdateFramebufferCycles += o.UpdateFramebufferCycles
}

// Renderer owns one render's accelerator, block scheduler, and
// worker pool. A Renderer is used for exactly one Start/Shutdown
// cycle; construct a new one to render again.
type Renderer struct {
	cfg Config
	sc  *scene.Scene

	tree      *kdtree.Tree
	treeStats kdtree.Stats

	numBlocksW, numBlocksH, numBlocks int
	nextBlock                         uint64
	cancel                            int32

	group     *errgroup.Group
	startedAt time.Time

	// statsMu also guards liveWorkers: workers only ever mark their
	// own slot done, but MarkDone on a shared bitset.Set word is not
	// itself atomic, so every access goes through the same lock as
	// stats.
	statsMu     sync.Mutex
	stats       RenderStats
	liveWorkers bitset.Set
}

// New returns a Renderer configured by cfg. Start must be called
// before the renderer does any work.
func New(cfg Config) *Renderer {
	return &Renderer{cfg: cfg}
}

// TreeStats returns the KD-tree build statistics recorded at Start.
// Only valid after Start has returned successfully.
func (r *Renderer) TreeStats() kdtree.Stats { return r.treeStats }

// Start validates sc and r's configuration, builds the KD-tree
// accelerator, and launches the worker pool. It returns once the
// pool has been launched; it does not wait for rendering to finish
// (call Shutdown for that).
func (r *Renderer) Start(ctx context.Context, sc *scene.Scene) error {
	if err := sc.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	if err := r.cfg.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	width, height := sc.Output.Width(), sc.Output.Height()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: output image has non-positive dimensions", ErrInvalidSettings)
	}

	tree, stats, err := kdtree.Build(ctx, sc.Triangles, r.cfg.Build)
	if err != nil {
		if errors.Is(err, kdtree.ErrNoTriangles) {
			return fmt.Errorf("%w: %v", ErrInvalidScene, err)
		}
		return fmt.Errorf("%w: %v", ErrResourceExhausted, err)
	}

	r.sc = sc
	r.tree = tree
	r.treeStats = stats

	r.numBlocksW = (width + r.cfg.BlockSize - 1) / r.cfg.BlockSize
	r.numBlocksH = (height + r.cfg.BlockSize - 1) / r.cfg.BlockSize
	r.numBlocks = r.numBlocksW * r.numBlocksH
	atomic.StoreUint64(&r.nextBlock, 0)
	atomic.StoreInt32(&r.cancel, 0)
	r.stats = RenderStats{}

	numWorkers := r.cfg.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	r.liveWorkers = bitset.Set{}
	r.liveWorkers.Grow((numWorkers + 63) / 64)
	for i := 0; i < numWorkers; i++ {
		r.liveWorkers.MarkLive(i)
	}

	g := new(errgroup.Group)
	r.group = g
	r.startedAt = time.Now()

	for i := 0; i < numWorkers; i++ {
		id := i
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					r.cfg.Logger.Error().
						Interface("panic", p).
						Int("worker", id).
						Msg("render: worker panicked, exiting")
				}
				r.statsMu.Lock()
				r.liveWorkers.MarkDone(id)
				r.statsMu.Unlock()
			}()
			r.workerLoop(id)
			return nil
		})
	}

	r.cfg.Logger.Info().
		Int("workers", numWorkers).
		Int("blocks", r.numBlocks).
		Int("kd_nodes", stats.NumNodes).
		Int("kd_max_depth", stats.MaxDepth).
		Msg("render: started")
	return nil
}

// Finished reports whether every worker has exited: every slot in
// liveWorkers has been MarkDone.
func (r *Renderer) Finished() bool {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()
	return r.liveWorkers.Done() == r.liveWorkers.Len()
}

// Shutdown stops the render. If wait is true, it blocks until the
// block counter has drained naturally. If wait is false, it sets a
// cooperative cancel flag workers check at block boundaries, then
// waits for them to exit; in-flight blocks still complete. Either
// way, Shutdown returns only after every worker has exited, with
// their per-worker stats merged into the result.
func (r *Renderer) Shutdown(wait bool) RenderStats {
	if !wait {
		atomic.StoreInt32(&r.cancel, 1)
	}
	if err := r.group.Wait(); err != nil {
		r.cfg.Logger.Error().Err(err).Msg("render: worker pool returned an error")
	}

	r.statsMu.Lock()
	r.stats.TotalCycles = time.Since(r.startedAt)
	sum := r.stats.PrimaryEmitCycles + r.stats.PrimaryPackCycles + r.stats.PrimaryTraceCycles +
		r.stats.SecondaryEmitCycles + r.stats.SecondaryPackCycles + r.stats.SecondaryTraceCycles +
		r.stats.ShadowPackCycles + r.stats.ShadingPackCycles + r.stats.ShadingSortCycles +
		r.stats.ShadingCycles + r.stats.ShadowTraceCycles + r.stats.UpdateFramebufferCycles
	r.stats.UnaccountedCycles = r.stats.TotalCycles - sum
	out := r.stats
	r.statsMu.Unlock()

	r.cfg.Logger.Info().
		Dur("total", out.TotalCycles).
		Dur("shading", out.ShadingCycles).
		Dur("unaccounted", out.UnaccountedCycles).
		Msg("render: shutdown complete")
	return out
}

// workerContext adapts one render worker's owned KD-tree stack and
// RNG into the shader.RendererView a Material's Shade call invokes.
type workerContext struct {
	r     *Renderer
	stack *kdtree.Stack
	rng   *rand.Rand
}

const shadowRayBias = 1e-3

func (w *workerContext) TraceShadow(origin, dir *linear.V3, maxDist float32) bool {
	var ray linear.Ray
	ray.Set(origin, dir)
	_, hit := w.r.tree.Traverse(w.stack, &ray, true, shadowRayBias, maxDist)
	return hit
}

func (w *workerContext) AmbientOcclusion(point, normal *linear.V3) float32 {
	n := w.r.cfg.OcclusionSamples
	if n <= 0 {
		return 1
	}
	basis := linear.AlignedTo(normal)
	var origin, offset linear.V3
	offset.Scale(shadowRayBias*10, normal)
	origin.Add(point, &offset)

	unoccluded := 0
	for i := 0; i < n; i++ {
		u := linear.V2{w.rng.Float32(), w.rng.Float32()}
		local := linear.SampleCosineHemisphere(u)
		dir := basis.Align(&local)
		if !w.TraceShadow(&origin, &dir, w.r.cfg.OcclusionDistance) {
			unoccluded++
		}
	}
	return float32(unoccluded) / float32(n)
}

// workerLoop claims blocks from the shared counter until the image
// is exhausted or the cancel flag is observed, accumulating stats
// locally before merging them into the renderer's totals once.
func (r *Renderer) workerLoop(id int) {
	stack := kdtree.NewStack(r.treeStats.MaxDepth)
	buf := raybuffer.New()
	seed := time.Now().UnixNano() ^ int64(id)*2654435761
	wctx := &workerContext{r: r, stack: stack, rng: rand.New(rand.NewSource(seed))}

	width, height := r.sc.Output.Width(), r.sc.Output.Height()
	S := r.cfg.PixelSamples
	samples := make([]linear.V2, S*S)
	var local RenderStats

	for {
		if atomic.LoadInt32(&r.cancel) != 0 {
			break
		}
		blockID := atomic.AddUint64(&r.nextBlock, 1) - 1
		if blockID >= uint64(r.numBlocks) {
			break
		}
		r.renderBlock(int(blockID), width, height, S, samples, buf, stack, wctx, &local)
	}

	r.statsMu.Lock()
	r.stats.merge(&local)
	r.statsMu.Unlock()
}

func (r *Renderer) renderBlock(
	blockID, width, height, S int,
	samples []linear.V2,
	buf *raybuffer.Buffer,
	stack *kdtree.Stack,
	wctx *workerContext,
	local *RenderStats,
) {
	by := blockID / r.numBlocksW
	bx := blockID % r.numBlocksW
	x0, y0 := bx*r.cfg.BlockSize, by*r.cfg.BlockSize
	x1, y1 := min(x0+r.cfg.BlockSize, width), min(y0+r.cfg.BlockSize, height)

	invW, invH := 1/float32(width), 1/float32(height)
	sampleContrib := 1 / float32(S*S)
	contribWeight := linear.V3{sampleContrib, sampleContrib, sampleContrib}

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			r.sc.Output.SetPixel(x, y, []float32{0, 0, 0, 1})

			linear.Jittered2D(wctx.rng, samples, S)
			pixel := y*width + x

			for p := 0; p < S; p++ {
				for q := 0; q < S; q++ {
					s := samples[p*S+q]
					uv := linear.V2{(float32(x) + s[0]) * invW, (float32(y) + s[1]) * invH}
					lensUV := linear.V2{wctx.rng.Float32(), wctx.rng.Float32()}

					t0 := time.Now()
					ray := r.sc.Camera.GetViewRay(uv, lensUV)
					local.PrimaryEmitCycles += time.Since(t0)

					t1 := time.Now()
					buf.Push(raybuffer.DeferredRay{
						Ray:    ray,
						Weight: contribWeight,
						Mode:   raybuffer.Shade,
						Depth:  0,
						Pixel:  pixel,
					})
					local.PrimaryPackCycles += time.Since(t1)
				}
			}
		}
	}

	r.drainRayBuffer(buf, stack, wctx, width, local)
}

// drainRayBuffer processes every ray a block's primary emission (and
// any shading it triggers) produced, before the worker claims its
// next block, so the KD nodes and textures touched by this block
// stay warm in cache across the whole sample set.
func (r *Renderer) drainRayBuffer(buf *raybuffer.Buffer, stack *kdtree.Stack, wctx *workerContext, width int, local *RenderStats) {
	for !buf.Empty() {
		dr := buf.Pop()
		x, y := dr.Pixel%width, dr.Pixel/width

		switch dr.Mode {
		case raybuffer.Shadow:
			t0 := time.Now()
			_, hit := r.tree.Traverse(stack, &dr.Ray, true, shadowRayBias, 1e30)
			local.ShadowTraceCycles += time.Since(t0)
			if !hit {
				r.accumulate(x, y, dr.Weight, local)
			}

		default: // Shade
			t0 := time.Now()
			col, hit := r.tree.Traverse(stack, &dr.Ray, false, 1e-4, 1e30)
			if dr.Depth == 0 {
				local.PrimaryTraceCycles += time.Since(t0)
			} else {
				local.SecondaryTraceCycles += time.Since(t0)
			}

			var sampleColor linear.V3
			switch {
			case !hit:
				sampleColor = r.sc.EnvironmentRadiance(&dr.Ray.Direction)
			case dr.Depth >= r.cfg.MaxDepth:
				// Recursion cap reached: the ray contributes nothing
				// further and its material is never invoked, so it
				// cannot push a deeper ray either.
			default:
				t1 := time.Now()
				mat := r.sc.MaterialAt(r.sc.MaterialIDs[col.TriangleID])
				shadeCtx := &shader.Context{
					Ray:           &dr.Ray,
					Collision:     col,
					Scene:         r.sc,
					Renderer:      wctx,
					RayBuffer:     buf,
					Depth:         dr.Depth,
					Weight:        dr.Weight,
					Pixel:         dr.Pixel,
					RNG:           wctx.rng,
					ShadowSamples: r.cfg.ShadowSamples,
				}
				sampleColor = mat.Shade(shadeCtx)
				local.ShadingCycles += time.Since(t1)
			}

			var contribution linear.V3
			contribution[0] = sampleColor[0] * dr.Weight[0]
			contribution[1] = sampleColor[1] * dr.Weight[1]
			contribution[2] = sampleColor[2] * dr.Weight[2]
			r.accumulate(x, y, contribution, local)
		}
	}
}

func (r *Renderer) accumulate(x, y int, contribution linear.V3, local *RenderStats) {
	t0 := time.Now()
	var px [4]float32
	r.sc.Output.GetPixel(x, y, px[:])
	px[0] += contribution[0]
	px[1] += contribution[1]
	px[2] += contribution[2]
	px[3] = 1
	r.sc.Output.SetPixel(x, y, px[:])
	local.UpdateFramebufferCycles += time.Since(t0)
}
