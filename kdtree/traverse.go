package kdtree

import (
	"github.com/seanjames777/raytracer-sub000/linear"
	"github.com/seanjames777/raytracer-sub000/triangle"
)

type stackFrame struct {
	nodeIdx    int
	tMin, tMax float32
}

// Stack is a reusable traversal work-stack, sized for one tree's
// maximum depth and owned by a single render worker; it is not safe
// for concurrent use.
type Stack struct {
	frames []stackFrame
}

// NewStack allocates a traversal stack sized for a tree with the
// given maximum depth.
func NewStack(maxDepth int) *Stack {
	return &Stack{frames: make([]stackFrame, 0, maxDepth+1)}
}

// Reset empties s for reuse on the next ray.
func (s *Stack) Reset() { s.frames = s.frames[:0] }

func (s *Stack) push(idx int, tMin, tMax float32) {
	s.frames = append(s.frames, stackFrame{idx, tMin, tMax})
}

func (s *Stack) pop() (stackFrame, bool) {
	n := len(s.frames)
	if n == 0 {
		return stackFrame{}, false
	}
	f := s.frames[n-1]
	s.frames = s.frames[:n-1]
	return f, true
}

// Traverse finds the nearest ray/triangle hit in [tMin, tMax] (or, if
// anyHit is true, any hit at all, returned as soon as found). stack
// must be Reset (or fresh from NewStack) before each call.
func (t *Tree) Traverse(stack *Stack, ray *linear.Ray, anyHit bool, tMin, tMax float32) (triangle.Collision, bool) {
	var rootMin, rootMax float32
	if !t.bounds.Intersects(ray, &rootMin, &rootMax) {
		return triangle.Collision{}, false
	}
	if rootMin > tMin {
		tMin = rootMin
	}
	if rootMax < tMax {
		tMax = rootMax
	}
	if tMin > tMax {
		return triangle.Collision{}, false
	}

	stack.Reset()
	nodeIdx := 0
	var best triangle.Collision
	found := false

	for {
		n := &t.nodes[nodeIdx]

		if !n.isLeaf() {
			axis := n.axis()
			splitDist := n.splitDist()
			splitT := (splitDist - ray.Origin[axis]) * ray.InvDirection[axis]

			left := nodeIdx + 1
			right := int(n.rightChild())

			var near, far int
			if splitDist < ray.Origin[axis] {
				near, far = right, left
			} else {
				near, far = left, right
			}

			switch {
			case splitT >= tMax || splitT < 0:
				nodeIdx = near
			case splitT <= tMin:
				nodeIdx = far
			default:
				stack.push(far, splitT, tMax)
				nodeIdx = near
				tMax = splitT
			}
			continue
		}

		first := int(n.triangleOffset())
		count := int(n.triangleCount())
		data := t.triangles[first : first+count]

		if c, ok := triangle.Intersect(ray, data, anyHit, tMin, tMax); ok {
			if anyHit {
				return c, true
			}
			if !found || c.Distance < best.Distance {
				best = c
				found = true
			}
		}

		frame, ok := stack.pop()
		if !ok {
			break
		}
		if found && best.Distance <= frame.tMin {
			break
		}
		nodeIdx = frame.nodeIdx
		tMin = frame.tMin
		tMax = frame.tMax
	}

	return best, found
}
