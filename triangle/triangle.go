// Package triangle implements the logical and packed ("setup")
// triangle representations and the ray/triangle intersection kernel
// that the KD-tree traversal drives.
package triangle

import (
	"errors"
	"fmt"

	"github.com/seanjames777/raytracer-sub000/linear"
)

func newErr(reason string) error { return errors.New("triangle: " + reason) }

// ErrDegenerate reports a triangle with zero area: its face normal
// cannot be computed and it cannot be packed into a SetupTriangle
// under any projection axis.
var ErrDegenerate = newErr("degenerate (zero-area) triangle")

// Vertex is a single interleaved vertex attribute set.
type Vertex struct {
	Position linear.V3
	Normal   linear.V3
	Tangent  linear.V3
	UV       linear.V2
}

// lerpVertex returns the barycentric combination alpha*a + beta*b +
// gamma*c of three vertices, where alpha = 1 - beta - gamma.
func lerpVertex(a, b, c *Vertex, beta, gamma float32) Vertex {
	alpha := 1 - beta - gamma
	var out Vertex
	weighted3(&out.Position, &a.Position, &b.Position, &c.Position, alpha, beta, gamma)
	weighted3(&out.Normal, &a.Normal, &b.Normal, &c.Normal, alpha, beta, gamma)
	weighted3(&out.Tangent, &a.Tangent, &b.Tangent, &c.Tangent, alpha, beta, gamma)
	weighted2(&out.UV, &a.UV, &b.UV, &c.UV, alpha, beta, gamma)
	return out
}

func weighted3(out, a, b, c *linear.V3, alpha, beta, gamma float32) {
	var ta, tb, tc linear.V3
	ta.Scale(alpha, a)
	tb.Scale(beta, b)
	tc.Scale(gamma, c)
	out.Add(&ta, &tb)
	out.Add(out, &tc)
}

func weighted2(out, a, b, c *linear.V2, alpha, beta, gamma float32) {
	for i := range out {
		out[i] = alpha*a[i] + beta*b[i] + gamma*c[i]
	}
}

// Triangle is the logical, shading-time triangle representation.
type Triangle struct {
	V0, V1, V2 Vertex
	FaceNormal linear.V3
	TriangleID uint32
	MaterialID uint32
}

// New builds a Triangle from three vertices, deriving FaceNormal as
// normalize(cross(v1-v0, v2-v0)). Returns ErrDegenerate if the
// vertices are collinear (zero face-normal length).
func New(v0, v1, v2 Vertex, triangleID, materialID uint32) (Triangle, error) {
	var b, c, n linear.V3
	b.Sub(&v2.Position, &v0.Position)
	c.Sub(&v1.Position, &v0.Position)
	n.Cross(&c, &b)
	if n.Dot(&n) == 0 {
		return Triangle{}, ErrDegenerate
	}
	n.Norm(&n)
	return Triangle{
		V0: v0, V1: v1, V2: v2,
		FaceNormal: n,
		TriangleID: triangleID,
		MaterialID: materialID,
	}, nil
}

// Interpolate returns the vertex obtained by barycentric
// interpolation of the triangle's three vertices at (beta, gamma).
func (t *Triangle) Interpolate(beta, gamma float32) Vertex {
	return lerpVertex(&t.V0, &t.V1, &t.V2, beta, gamma)
}

// Collision describes a ray/triangle hit. Only valid when returned
// alongside a true "hit" result.
type Collision struct {
	Distance   float32
	Beta       float32
	Gamma      float32
	TriangleID uint32
}

// axisOrder returns the three axis indices for n, the (unnormalized)
// face-crossing vector, ordered from most to least suitable for the
// Wald projection (i.e., by decreasing |n[axis]|).
func axisOrder(n *linear.V3) [3]int {
	ax := [3]int{0, 1, 2}
	abs := func(x float32) float32 {
		if x < 0 {
			return -x
		}
		return x
	}
	// Insertion sort descending by |n[axis]|; only 3 elements.
	for i := 1; i < 3; i++ {
		j := i
		for j > 0 && abs(n[ax[j]]) > abs(n[ax[j-1]]) {
			ax[j], ax[j-1] = ax[j-1], ax[j]
			j--
		}
	}
	return ax
}

var uvTable = [3][2]int{0: {1, 2}, 1: {2, 0}, 2: {0, 1}}

// SetupTriangle is the packed, cache-friendly Wald-encoding
// representation of a Triangle used by the intersection kernel.
// Grounded on the "http://www.sci.utah.edu/~wald/PhD/wald_phd.pdf"
// precomputed-plane-equation scheme.
type SetupTriangle struct {
	NU, NV, ND float32
	K          int32

	BNU, BNV, BD float32
	CNU, CNV, CD float32

	TriangleID uint32
}

// Pack converts tris into their packed SetupTriangle form, choosing
// for each triangle the projection axis with the largest normal
// component and falling back to the next-largest axis if that
// produces a zero edge-function denominator (degenerate projection).
// Returns ErrDegenerate if no axis works (the triangle has zero
// area).
func Pack(tris []*Triangle) ([]SetupTriangle, error) {
	out := make([]SetupTriangle, len(tris))
	for i, tri := range tris {
		s, err := packOne(tri)
		if err != nil {
			return nil, fmt.Errorf("triangle %d: %w", tri.TriangleID, err)
		}
		out[i] = s
	}
	return out, nil
}

func packOne(tri *Triangle) (SetupTriangle, error) {
	v0, v1, v2 := tri.V0.Position, tri.V1.Position, tri.V2.Position

	var b, c, n linear.V3
	b.Sub(&v2, &v0)
	c.Sub(&v1, &v0)
	n.Cross(&c, &b)

	for _, k := range axisOrder(&n) {
		u, v := uvTable[k][0], uvTable[k][1]
		denom := b[u]*c[v] - b[v]*c[u]
		if denom == 0 {
			continue
		}
		if n[k] == 0 {
			continue
		}

		nk := n[k]
		var setup SetupTriangle
		setup.K = int32(k)
		setup.NU = n[u] / nk
		setup.NV = n[v] / nk
		var np linear.V3
		np.Scale(1/nk, &n)
		setup.ND = v0.Dot(&np)

		setup.BNU = -b[v] / denom
		setup.BNV = b[u] / denom
		setup.BD = (b[v]*v0[u] - b[u]*v0[v]) / denom

		setup.CNU = c[v] / denom
		setup.CNV = -c[u] / denom
		setup.CD = (c[u]*v0[v] - c[v]*v0[u]) / denom

		setup.TriangleID = tri.TriangleID
		return setup, nil
	}
	return SetupTriangle{}, ErrDegenerate
}

// Intersect tests ray against the packed triangle range data,
// recording the closest hit at distance in [tMin, tMax] unless
// anyHit is true, in which case the first valid hit within range is
// returned immediately (shadow-ray mode). Ties in distance resolve
// to the first triangle encountered in data.
func Intersect(ray *linear.Ray, data []SetupTriangle, anyHit bool, tMin, tMax float32) (Collision, bool) {
	var best Collision
	found := false

	for i := range data {
		tri := &data[i]
		u, v := uvTable[tri.K][0], uvTable[tri.K][1]

		dot := ray.Direction[tri.K] + tri.NU*ray.Direction[u] + tri.NV*ray.Direction[v]
		if dot == 0 {
			continue
		}
		nd := 1 / dot

		tPlane := (tri.ND - ray.Origin[tri.K] - tri.NU*ray.Origin[u] - tri.NV*ray.Origin[v]) * nd
		if tPlane <= 0 || (found && tPlane >= best.Distance) || tPlane < tMin || tPlane > tMax {
			continue
		}

		hu := ray.Origin[u] + tPlane*ray.Direction[u]
		hv := ray.Origin[v] + tPlane*ray.Direction[v]

		beta := hu*tri.BNU + hv*tri.BNV + tri.BD
		if beta < 0 {
			continue
		}
		gamma := hu*tri.CNU + hv*tri.CNV + tri.CD
		if gamma < 0 {
			continue
		}
		if beta+gamma > 1 {
			continue
		}

		best.Distance = tPlane
		best.Beta = beta
		best.Gamma = gamma
		best.TriangleID = tri.TriangleID
		found = true

		if anyHit {
			return best, true
		}
	}

	return best, found
}
