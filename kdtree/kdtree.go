package kdtree

import (
	"unsafe"

	"github.com/seanjames777/raytracer-sub000/linear"
	"github.com/seanjames777/raytracer-sub000/triangle"
)

// Tree is a finalized, read-only KD-tree accelerator: a flat node
// array and a packed triangle buffer, both indexed rather than
// pointer-linked (see DESIGN.md for why indices replace the original
// implementation's byte offsets).
type Tree struct {
	nodes     []node
	triangles []triangle.SetupTriangle
	bounds    linear.AABB
	maxDepth  int
}

// Bounds returns the tree's root bounding box.
func (t *Tree) Bounds() linear.AABB { return t.bounds }

// NumNodes returns the number of nodes in the finalized tree.
func (t *Tree) NumNodes() int { return len(t.nodes) }

// finalize serializes the builder arena, rooted at rootIdx, into a
// flat node array plus a packed triangle buffer, by a depth-first
// walk that writes each node's left child immediately after itself
// (so only the right child needs an explicit index).
func finalize(a *arena, rootIdx int, rootBounds linear.AABB) (*Tree, Stats, error) {
	var nodes []node
	var allTriangles []*triangle.Triangle
	stats := Stats{MinDepth: -1}

	var serialize func(arenaIdx, depth int) int
	serialize = func(arenaIdx, depth int) int {
		an := a.get(arenaIdx)
		myIdx := len(nodes)
		nodes = append(nodes, node{})
		stats.NumNodes++

		if an.left < 0 {
			stats.NumLeaves++
			if depth > stats.MaxDepth {
				stats.MaxDepth = depth
			}
			if stats.MinDepth < 0 || depth < stats.MinDepth {
				stats.MinDepth = depth
			}
			stats.SumDepth += depth
			if len(an.triangles) == 0 {
				stats.NumZeroLeaves++
			}

			first := len(allTriangles)
			allTriangles = append(allTriangles, an.triangles...)
			stats.NumTriangles += len(an.triangles)

			nodes[myIdx] = leafNode(uint32(first), uint32(len(an.triangles)))
			return myIdx
		}

		stats.NumInternal++
		serialize(an.left, depth+1)
		rightIdx := serialize(an.right, depth+1)
		nodes[myIdx] = innerNode(uint32(rightIdx), an.axis, an.split)
		return myIdx
	}

	serialize(rootIdx, 0)

	packed, err := triangle.Pack(allTriangles)
	if err != nil {
		return nil, Stats{}, err
	}

	stats.TreeMem = len(nodes)*int(unsafe.Sizeof(node{})) + len(packed)*int(unsafe.Sizeof(triangle.SetupTriangle{}))

	tree := &Tree{
		nodes:     nodes,
		triangles: packed,
		bounds:    rootBounds,
		maxDepth:  stats.MaxDepth,
	}
	return tree, stats, nil
}
