// Package kdtree implements the SAH-built KD-tree accelerator:
// a mutable builder arena constructed top-down in parallel by a
// worker pool over a mutex-guarded work queue, finalized by a single
// depth-first pass into a flat, read-only node array plus a packed
// triangle buffer, and queried by a stack-based traversal.
package kdtree

import (
	"context"
	"errors"
	"math"
	"runtime"
	"sync"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/rs/zerolog"

	"github.com/seanjames777/raytracer-sub000/linear"
	"github.com/seanjames777/raytracer-sub000/triangle"
)

func workerCount() int {
	if n := runtime.GOMAXPROCS(0); n > 0 {
		return n
	}
	return 1
}

func newErr(reason string) error { return errors.New("kdtree: " + reason) }

// ErrNoTriangles is returned by Build when given an empty triangle list.
var ErrNoTriangles = newErr("no triangles to build tree from")

// PlanarMode selects which child a triangle lying exactly in the
// split plane is assigned to.
type PlanarMode int

const (
	// PlanarAuto chooses, per split, whichever side the SAH cost
	// formula favors (matching the original cost-driven heuristic).
	PlanarAuto PlanarMode = iota
	PlanarLeft
	PlanarRight
	PlanarBoth
)

// BuildConfig controls the SAH cost model and recursion limits.
type BuildConfig struct {
	// KTraversal is the SAH traversal-step cost constant. Default is 1.
	KTraversal float32
	// KIntersect is the SAH triangle-intersection cost constant. Default is 1.5.
	KIntersect float32
	// MaxDepth caps recursion regardless of cost. Default is 23.
	MaxDepth int
	// MinTriangles stops recursion once a node holds this few or fewer. Default is 4.
	MinTriangles int
	// PlanarMode overrides the per-split planar-triangle placement. Default is PlanarAuto.
	PlanarMode PlanarMode
	// NumWorkers is the build worker-pool size; 0 selects GOMAXPROCS. Default is 0.
	NumWorkers int
	// Logger receives build progress and warnings. Default is a disabled logger.
	Logger zerolog.Logger
}

// DefaultBuildConfig returns the suggested-default SAH configuration.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		KTraversal:   1,
		KIntersect:   1.5,
		MaxDepth:     23,
		MinTriangles: 4,
		PlanarMode:   PlanarAuto,
		Logger:       zerolog.Nop(),
	}
}

// Stats reports build-time tree statistics, named after the
// original implementation's KDBuilderTreeStatistics fields.
type Stats struct {
	NumNodes      int
	NumLeaves     int
	NumInternal   int
	NumTriangles  int
	MaxDepth      int
	MinDepth      int
	SumDepth      int
	NumZeroLeaves int
	TreeMem       int
}

// arenaNode is a mutable builder-tree node. left/right are arena
// indices, -1 for a leaf.
type arenaNode struct {
	left, right int
	axis        int
	split       float32
	bounds      linear.AABB
	depth       int
	triangles   []*triangle.Triangle
}

type arena struct {
	mu    sync.Mutex
	nodes []arenaNode
}

func (a *arena) alloc(n arenaNode) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	idx := len(a.nodes)
	a.nodes = append(a.nodes, n)
	return idx
}

func (a *arena) set(idx int, n arenaNode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nodes[idx] = n
}

func (a *arena) get(idx int) arenaNode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nodes[idx]
}

// workItem is a pending node in the build's work queue.
type workItem struct{ arenaIdx int }

// buildState is the shared, mutex-guarded state of one Build call's
// fork-join work queue, matching spec §5's "build work queue and an
// outstanding-node counter, both guarded by a mutex".
type buildState struct {
	cfg BuildConfig

	mu          sync.Mutex
	cond        *sync.Cond
	queue       []workItem
	outstanding int

	arena *arena
}

func (s *buildState) push(idx int) {
	s.mu.Lock()
	s.queue = append(s.queue, workItem{idx})
	s.outstanding++
	s.cond.Broadcast()
	s.mu.Unlock()
}

// pop blocks until a work item is available or the build has no
// remaining outstanding nodes, in which case ok is false.
func (s *buildState) pop() (item workItem, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.queue) == 0 && s.outstanding > 0 {
		s.cond.Wait()
	}
	if len(s.queue) == 0 {
		return workItem{}, false
	}
	n := len(s.queue)
	item = s.queue[n-1]
	s.queue = s.queue[:n-1]
	return item, true
}

func (s *buildState) finishOne() {
	s.mu.Lock()
	s.outstanding--
	s.cond.Broadcast()
	s.mu.Unlock()
}

// Build constructs a KD tree over tris using a top-down SAH split
// policy, with independent subtrees built in parallel by a worker
// pool drawing from a shared work queue.
func Build(ctx context.Context, tris []*triangle.Triangle, cfg BuildConfig) (*Tree, Stats, error) {
	if len(tris) == 0 {
		return nil, Stats{}, ErrNoTriangles
	}

	rootBounds := boundsOf(tris)
	a := &arena{}
	st := &buildState{cfg: cfg, arena: a}
	st.cond = sync.NewCond(&st.mu)

	rootIdx := a.alloc(arenaNode{left: -1, right: -1, bounds: rootBounds, depth: 0, triangles: tris})
	st.push(rootIdx)

	workers := cfg.NumWorkers
	if workers <= 0 {
		workers = workerCount()
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error { return buildWorker(gctx, st) })
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}

	cfg.Logger.Info().Int("nodes", len(a.nodes)).Msg("kdtree: build arena complete")

	tree, stats, err := finalize(a, rootIdx, rootBounds)
	if err != nil {
		return nil, Stats{}, err
	}
	cfg.Logger.Info().
		Int("num_nodes", stats.NumNodes).
		Int("num_leaves", stats.NumLeaves).
		Int("max_depth", stats.MaxDepth).
		Msg("kdtree: build finalized")
	return tree, stats, nil
}

func buildWorker(ctx context.Context, st *buildState) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		item, ok := st.pop()
		if !ok {
			return nil
		}
		processNode(st, item.arenaIdx)
		st.finishOne()
	}
}

func processNode(st *buildState, idx int) {
	n := st.arena.get(idx)
	axis, dist, mode, split := splitNode(n.bounds, n.triangles, n.depth, st.cfg)
	if !split {
		st.arena.set(idx, n) // already a leaf in shape; triangles/bounds unchanged
		return
	}

	left, right := partition(dist, axis, mode, n.triangles)

	var boundsL, boundsR linear.AABB
	n.bounds.Split(dist, axis, &boundsL, &boundsR)

	leftIdx := st.arena.alloc(arenaNode{left: -1, right: -1, bounds: boundsL, depth: n.depth + 1, triangles: left})
	rightIdx := st.arena.alloc(arenaNode{left: -1, right: -1, bounds: boundsR, depth: n.depth + 1, triangles: right})

	n.left, n.right, n.axis, n.split = leftIdx, rightIdx, axis, dist
	n.triangles = nil // inner nodes hold no triangles directly
	st.arena.set(idx, n)

	st.push(leftIdx)
	st.push(rightIdx)
}

func boundsOf(tris []*triangle.Triangle) linear.AABB {
	b := linear.EmptyAABB()
	for _, t := range tris {
		b.Join(&t.V0.Position)
		b.Join(&t.V1.Position)
		b.Join(&t.V2.Position)
	}
	return b
}

// sahEvent is one triangle-edge event along a single sweep axis.
type sahEvent struct {
	dist float32
	flag int8 // 0=END, 1=PLANAR, 2=BEGIN; spec tie-break order END < PLANAR < BEGIN
}

const (
	evEnd    int8 = 0
	evPlanar int8 = 1
	evBegin  int8 = 2
)

// splitNode decides whether to split triangles, per the SAH event
// sweep in spec §4.3 (grounded on kdsahbuilder.cpp). Returns
// ok=false to signal the caller should create a leaf.
func splitNode(bounds linear.AABB, triangles []*triangle.Triangle, depth int, cfg BuildConfig) (axis int, dist float32, mode PlanarMode, ok bool) {
	if len(triangles) <= cfg.MinTriangles || depth >= cfg.MaxDepth {
		return 0, 0, PlanarAuto, false
	}

	saV := bounds.SurfaceArea()
	minCost := float32(math.Inf(1))
	minAxis := -1
	var minDist float32
	var minMode PlanarMode

	events := make([]sahEvent, 0, len(triangles)*2)

	for testAxis := 0; testAxis < 3; testAxis++ {
		events = events[:0]
		lo, hi := bounds.Min[testAxis], bounds.Max[testAxis]

		for _, t := range triangles {
			triMin := fmin3(t.V0.Position[testAxis], t.V1.Position[testAxis], t.V2.Position[testAxis])
			triMax := fmax3(t.V0.Position[testAxis], t.V1.Position[testAxis], t.V2.Position[testAxis])
			triMin = fmax32k(lo, triMin)
			triMax = fmin32k(hi, triMax)

			if triMin == triMax {
				events = append(events, sahEvent{triMin, evPlanar})
			} else {
				events = append(events, sahEvent{triMin, evBegin}, sahEvent{triMax, evEnd})
			}
		}

		slices.SortFunc(events, func(a, b sahEvent) int {
			if a.dist < b.dist {
				return -1
			}
			if a.dist > b.dist {
				return 1
			}
			return int(a.flag) - int(b.flag)
		})

		countLeft, countRight := 0, len(triangles)

		i := 0
		for i < len(events) {
			dist := events[i].dist
			countStart, countEnd, countPlanar := 0, 0, 0
			for i < len(events) && events[i].dist == dist {
				switch events[i].flag {
				case evEnd:
					countEnd++
				case evPlanar:
					countPlanar++
				case evBegin:
					countStart++
				}
				i++
			}

			countRight -= countPlanar
			countRight -= countEnd

			var boundsL, boundsR linear.AABB
			bounds.Split(dist, testAxis, &boundsL, &boundsR)
			saL, saR := boundsL.SurfaceArea(), boundsR.SurfaceArea()

			cost, planarSide := sahCost(cfg, countLeft, countRight, countPlanar, saL, saR, saV)
			if cost < minCost {
				minCost = cost
				minDist = dist
				minAxis = testAxis
				minMode = planarSide
			}

			countLeft += countStart
			countLeft += countPlanar
		}
	}

	if minAxis == -1 {
		return 0, 0, PlanarAuto, false
	}
	if minCost > cfg.KIntersect*float32(len(triangles)) {
		return 0, 0, PlanarAuto, false
	}
	return minAxis, minDist, minMode, true
}

func sahCost(cfg BuildConfig, countLeft, countRight, countPlanar int, saL, saR, saV float32) (float32, PlanarMode) {
	if saL == 0 || saR == 0 {
		return float32(math.Inf(1)), PlanarAuto
	}
	costL := cfg.KTraversal + cfg.KIntersect*(saL/saV*float32(countLeft+countPlanar)+saR/saV*float32(countRight))
	costR := cfg.KTraversal + cfg.KIntersect*(saL/saV*float32(countLeft)+saR/saV*float32(countRight+countPlanar))

	switch cfg.PlanarMode {
	case PlanarLeft:
		return costL, PlanarLeft
	case PlanarRight:
		return costR, PlanarRight
	case PlanarBoth:
		costB := cfg.KTraversal + cfg.KIntersect*(saL/saV*float32(countLeft+countPlanar)+saR/saV*float32(countRight+countPlanar))
		return costB, PlanarBoth
	default:
		if costL < costR {
			return costL, PlanarLeft
		}
		return costR, PlanarRight
	}
}

// partition assigns each triangle to the left child, the right
// child, or both, based on its clipped extent against the split
// plane, per spec §4.3.
func partition(dist float32, axis int, mode PlanarMode, triangles []*triangle.Triangle) (left, right []*triangle.Triangle) {
	for _, t := range triangles {
		triMin := fmin3(t.V0.Position[axis], t.V1.Position[axis], t.V2.Position[axis])
		triMax := fmax3(t.V0.Position[axis], t.V1.Position[axis], t.V2.Position[axis])

		switch {
		case triMax <= dist && triMin < dist:
			left = append(left, t)
		case triMin >= dist && triMax > dist:
			right = append(right, t)
		case triMin == triMax: // planar
			switch mode {
			case PlanarLeft:
				left = append(left, t)
			case PlanarRight:
				right = append(right, t)
			default: // Both
				left = append(left, t)
				right = append(right, t)
			}
		default: // straddles the plane
			left = append(left, t)
			right = append(right, t)
		}
	}
	return
}

func fmin3(a, b, c float32) float32 { return fmin32k(fmin32k(a, b), c) }
func fmax3(a, b, c float32) float32 { return fmax32k(fmax32k(a, b), c) }

func fmin32k(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func fmax32k(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
