package editmesh

import (
	"math"
	"slices"

	"github.com/chazu/greeble/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// epsilon is the planar tolerance for containment and intersection tests.
const epsilon = 1e-9

func project(f kernel.Frame, ps []v3.Vec) []v2.Vec {
	out := make([]v2.Vec, len(ps))
	for i, p := range ps {
		out[i] = f.Project(p)
	}
	return out
}

func cross2(a, b v2.Vec) float64 { return a.X*b.Y - a.Y*b.X }

// signedArea is positive for counter-clockwise polygons.
func signedArea(ps []v2.Vec) float64 {
	var a float64
	for i, p := range ps {
		a += cross2(p, ps[(i+1)%len(ps)])
	}
	return a / 2
}

func pointSegmentDistance(p, a, b v2.Vec) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Sub(a).Length()
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l2))
	return p.Sub(a.Add(ab.MulScalar(t))).Length()
}

// strictlyInside reports whether p lies inside poly and off its boundary.
func strictlyInside(p v2.Vec, poly []v2.Vec) bool {
	in := false
	n := len(poly)
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[(i+1)%n]
		if pointSegmentDistance(p, a, b) <= epsilon {
			return false
		}
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// offsetPolygon moves every vertex of the counter-clockwise polygon ps by d
// along its inward mitred bisector.
func offsetPolygon(ps []v2.Vec, d float64) []v2.Vec {
	n := len(ps)
	out := make([]v2.Vec, n)
	for i, p := range ps {
		m := miter(ps[(i+n-1)%n], p, ps[(i+1)%n])
		out[i] = p.Add(m.MulScalar(d))
	}
	return out
}

// miter returns the left-hand mitre vector at b for the path a, b, c,
// scaled so that offsetting by it keeps both edges at unit distance.
func miter(a, b, c v2.Vec) v2.Vec {
	l1 := leftNormal(b.Sub(a))
	l2 := leftNormal(c.Sub(b))
	den := 1 + l1.Dot(l2)
	if den <= epsilon {
		return l1
	}
	m := l1.Add(l2).MulScalar(1 / den)
	if l := m.Length(); l > miterLimit {
		m = m.MulScalar(miterLimit / l)
	}
	return m
}

func leftNormal(d v2.Vec) v2.Vec {
	l := d.Length()
	if l == 0 {
		return v2.Vec{}
	}
	return v2.Vec{X: -d.Y / l, Y: d.X / l}
}

func meanEdgeLength(ps []v2.Vec) float64 {
	var sum float64
	for i, p := range ps {
		sum += ps[(i+1)%len(ps)].Sub(p).Length()
	}
	return sum / float64(len(ps))
}

func reversed[T any](s []T) []T {
	out := slices.Clone(s)
	slices.Reverse(out)
	return out
}
