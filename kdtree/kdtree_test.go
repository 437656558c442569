package kdtree

import (
	"context"
	"math/rand"
	"testing"

	"github.com/seanjames777/raytracer-sub000/linear"
	"github.com/seanjames777/raytracer-sub000/triangle"
)

func mustTri(t *testing.T, v0, v1, v2 linear.V3, id uint32) *triangle.Triangle {
	t.Helper()
	tri, err := triangle.New(
		triangle.Vertex{Position: v0},
		triangle.Vertex{Position: v1},
		triangle.Vertex{Position: v2},
		id, 0,
	)
	if err != nil {
		t.Fatalf("mustTri: unexpected error: %v", err)
	}
	return &tri
}

// randomTriangle produces a small, well-formed triangle with a
// center uniformly distributed in [-bound, bound]^3.
func randomTriangle(t *testing.T, rng *rand.Rand, bound float32, id uint32) *triangle.Triangle {
	cx := (rng.Float32()*2 - 1) * bound
	cy := (rng.Float32()*2 - 1) * bound
	cz := (rng.Float32()*2 - 1) * bound
	v0 := linear.V3{cx, cy, cz}
	v1 := linear.V3{cx + 1 + rng.Float32(), cy, cz}
	v2 := linear.V3{cx, cy + 1 + rng.Float32(), cz}
	return mustTri(t, v0, v1, v2, id)
}

func bruteForce(ray *linear.Ray, tris []*triangle.Triangle, anyHit bool, tMin, tMax float32) (triangle.Collision, bool) {
	data, err := triangle.Pack(tris)
	if err != nil {
		panic(err)
	}
	return triangle.Intersect(ray, data, anyHit, tMin, tMax)
}

func TestBuildMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	n := 200
	tris := make([]*triangle.Triangle, n)
	for i := range tris {
		tris[i] = randomTriangle(t, rng, 20, uint32(i))
	}

	cfg := DefaultBuildConfig()
	tree, _, err := Build(context.Background(), tris, cfg)
	if err != nil {
		t.Fatalf("Build: unexpected error: %v", err)
	}

	stack := NewStack(tree.maxDepth)
	for i := 0; i < 500; i++ {
		origin := linear.V3{
			(rng.Float32()*2 - 1) * 30,
			(rng.Float32()*2 - 1) * 30,
			(rng.Float32()*2 - 1) * 30,
		}
		dir := linear.V3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1}
		if dir.Dot(&dir) == 0 {
			continue
		}
		dir.Norm(&dir)

		var ray linear.Ray
		ray.Set(&origin, &dir)

		got, gotOK := tree.Traverse(stack, &ray, false, 0, 1e30)
		want, wantOK := bruteForce(&ray, tris, false, 0, 1e30)

		if gotOK != wantOK {
			t.Fatalf("ray %d: hit mismatch\nhave %v\nwant %v", i, gotOK, wantOK)
		}
		if !gotOK {
			continue
		}
		const eps = 1e-2
		if abs32(got.Distance-want.Distance) > eps {
			t.Fatalf("ray %d: distance mismatch\nhave %v (tri %d)\nwant %v (tri %d)",
				i, got.Distance, got.TriangleID, want.Distance, want.TriangleID)
		}
	}
}

func TestBuildLeafCoverage(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	n := 64
	tris := make([]*triangle.Triangle, n)
	for i := range tris {
		tris[i] = randomTriangle(t, rng, 10, uint32(i))
	}

	tree, _, err := Build(context.Background(), tris, DefaultBuildConfig())
	if err != nil {
		t.Fatalf("Build: unexpected error: %v", err)
	}

	seen := make(map[uint32]bool)
	for i := range tree.nodes {
		n := &tree.nodes[i]
		if !n.isLeaf() {
			continue
		}
		first := int(n.triangleOffset())
		count := int(n.triangleCount())
		if first+count > len(tree.triangles) {
			t.Fatalf("leaf range [%d,%d) exceeds triangle buffer of length %d", first, first+count, len(tree.triangles))
		}
		for _, st := range tree.triangles[first : first+count] {
			seen[st.TriangleID] = true
		}
	}

	for _, tri := range tris {
		if !seen[tri.TriangleID] {
			t.Fatalf("triangle %d not reachable from any leaf", tri.TriangleID)
		}
	}
}

func TestBuildSplitsClusteredTriangles(t *testing.T) {
	var tris []*triangle.Triangle
	id := uint32(0)
	for i := 0; i < 10; i++ {
		y := float32(i) * 2
		v0 := linear.V3{-5, y, 0}
		v1 := linear.V3{-4, y, 0}
		v2 := linear.V3{-5, y + 1, 0}
		tris = append(tris, mustTri(t, v0, v1, v2, id))
		id++
	}
	for i := 0; i < 10; i++ {
		y := float32(i) * 2
		v0 := linear.V3{5, y, 0}
		v1 := linear.V3{6, y, 0}
		v2 := linear.V3{5, y + 1, 0}
		tris = append(tris, mustTri(t, v0, v1, v2, id))
		id++
	}

	cfg := DefaultBuildConfig()
	cfg.MinTriangles = 1
	tree, _, err := Build(context.Background(), tris, cfg)
	if err != nil {
		t.Fatalf("Build: unexpected error: %v", err)
	}

	root := &tree.nodes[0]
	if root.isLeaf() {
		t.Fatalf("root\nhave leaf\nwant split on axis X")
	}
	if root.axis() != 0 {
		t.Fatalf("root axis\nhave %d\nwant 0 (X)", root.axis())
	}
	// The SAH sweep only ever proposes splits at a triangle's own
	// clipped extent, so the chosen plane lands at the boundary of
	// one cluster (x=-4 or x=5) rather than exactly between them.
	if dist := root.splitDist(); dist < -4 || dist > 5 {
		t.Fatalf("root split distance\nhave %v\nwant in [-4, 5], between the two clusters", dist)
	}

	left := countLeafTriangles(tree, 1)
	right := countLeafTriangles(tree, int(root.rightChild()))
	if left != 10 || right != 10 {
		t.Fatalf("child triangle counts\nhave left=%d right=%d\nwant left=10 right=10", left, right)
	}
}

func countLeafTriangles(tree *Tree, idx int) int {
	n := &tree.nodes[idx]
	if n.isLeaf() {
		return int(n.triangleCount())
	}
	return countLeafTriangles(tree, idx+1) + countLeafTriangles(tree, int(n.rightChild()))
}

func TestBuildNoTriangles(t *testing.T) {
	_, _, err := Build(context.Background(), nil, DefaultBuildConfig())
	if err != ErrNoTriangles {
		t.Fatalf("Build(nil)\nhave %v\nwant %v", err, ErrNoTriangles)
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
