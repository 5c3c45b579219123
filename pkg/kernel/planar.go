package kernel

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// planarEpsilon is the tolerance of the planar predicates below.
const planarEpsilon = 1e-9

// Orient returns twice the signed area of triangle abc: positive when the
// turn a, b, c is counter-clockwise.
func Orient(a, b, c v2.Vec) float64 {
	u, v := b.Sub(a), c.Sub(a)
	return u.X*v.Y - u.Y*v.X
}

// SegmentsTouch reports whether segments ab and cd share any point.
func SegmentsTouch(a, b, c, d v2.Vec) bool {
	d1, d2 := Orient(c, d, a), Orient(c, d, b)
	d3, d4 := Orient(a, b, c), Orient(a, b, d)
	if ((d1 > planarEpsilon && d2 < -planarEpsilon) || (d1 < -planarEpsilon && d2 > planarEpsilon)) &&
		((d3 > planarEpsilon && d4 < -planarEpsilon) || (d3 < -planarEpsilon && d4 > planarEpsilon)) {
		return true
	}
	return (math.Abs(d1) <= planarEpsilon && onSegment(c, d, a)) ||
		(math.Abs(d2) <= planarEpsilon && onSegment(c, d, b)) ||
		(math.Abs(d3) <= planarEpsilon && onSegment(a, b, c)) ||
		(math.Abs(d4) <= planarEpsilon && onSegment(a, b, d))
}

func onSegment(a, b, p v2.Vec) bool {
	return p.X <= math.Max(a.X, b.X)+planarEpsilon && p.X >= math.Min(a.X, b.X)-planarEpsilon &&
		p.Y <= math.Max(a.Y, b.Y)+planarEpsilon && p.Y >= math.Min(a.Y, b.Y)-planarEpsilon
}

// Simple reports whether the closed polygon ps has no zero-length edge and
// no two non-adjacent edges that touch.
func Simple(ps []v2.Vec) bool {
	n := len(ps)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a, b := ps[i], ps[(i+1)%n]
		if b.Sub(a).Length() <= planarEpsilon {
			return false
		}
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			if SegmentsTouch(a, b, ps[j], ps[(j+1)%n]) {
				return false
			}
		}
	}
	return true
}
