package kernel

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Frame is an orthonormal tangent/bitangent/normal frame anchored at Origin.
// Local X runs along T, local Y along B and local Z along N.
type Frame struct {
	Origin  v3.Vec
	T, B, N v3.Vec
}

// FaceFrame builds the frame of face i: origin at its first vertex, normal
// from Newell's method, tangent along the first edge with any normal
// component removed, bitangent = N x T.
func FaceFrame(m *Mesh, i int) Frame {
	ps := m.FacePositions(i)
	n := newell(ps)
	t := ps[1].Sub(ps[0])
	t = t.Sub(n.MulScalar(t.Dot(n)))
	if l := t.Length(); l > 0 {
		t = t.MulScalar(1 / l)
	} else {
		t = v3.Vec{X: 1}
	}
	return Frame{Origin: ps[0], T: t, B: n.Cross(t), N: n}
}

// ToLocal expresses the world point p in frame coordinates.
func (f Frame) ToLocal(p v3.Vec) v3.Vec {
	d := p.Sub(f.Origin)
	return v3.Vec{X: d.Dot(f.T), Y: d.Dot(f.B), Z: d.Dot(f.N)}
}

// ToWorld maps frame coordinates back to world space.
func (f Frame) ToWorld(p v3.Vec) v3.Vec {
	return f.Origin.Add(f.T.MulScalar(p.X)).Add(f.B.MulScalar(p.Y)).Add(f.N.MulScalar(p.Z))
}

// Project returns the in-plane coordinates of p.
func (f Frame) Project(p v3.Vec) v2.Vec {
	l := f.ToLocal(p)
	return v2.Vec{X: l.X, Y: l.Y}
}

// Bounds returns the in-plane bounding box of ps.
func (f Frame) Bounds(ps []v3.Vec) sdf.Box2 {
	lo := v2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	hi := v2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, p := range ps {
		q := f.Project(p)
		lo = v2.Vec{X: math.Min(lo.X, q.X), Y: math.Min(lo.Y, q.Y)}
		hi = v2.Vec{X: math.Max(hi.X, q.X), Y: math.Max(hi.Y, q.Y)}
	}
	return sdf.Box2{Min: lo, Max: hi}
}
