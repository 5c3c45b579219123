package editmesh

import (
	"fmt"
	"math"
	"slices"

	"github.com/chazu/greeble/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// maxBevelFraction caps the bevel offset relative to the shortest loop edge.
const maxBevelFraction = 0.45

// BevelEdges bevels a closed edge loop lying between faces. It builds
// segments+1 parallel loops spread over [-offset, +offset] across the
// original loop and fills them with quad strips. Faces on the inner side of
// the loop are rewired to the innermost loop, faces on the outer side to the
// outermost. With an even segment count the middle loop reuses the original
// vertices.
func (k *Kernel) BevelEdges(m *kernel.Mesh, edges []kernel.EdgeKey, offset float64, segments int) (*kernel.Bevel, error) {
	if segments < 1 {
		return nil, fmt.Errorf("editmesh: bevel: %d segments: %w", segments, kernel.ErrDegenerate)
	}
	for _, e := range edges {
		if !m.HasEdge(e) {
			return nil, fmt.Errorf("editmesh: bevel: edge %v: %w", e, kernel.ErrNotLoop)
		}
	}
	loop, err := kernel.OrderLoop(edges)
	if err != nil {
		return nil, fmt.Errorf("editmesh: bevel: %w", err)
	}
	n := len(loop)

	ref := -1
	for _, e := range kernel.LoopEdges(loop) {
		if fs := m.FacesWithEdge(e); len(fs) > 0 {
			ref = fs[0]
			break
		}
	}
	if ref < 0 {
		return nil, fmt.Errorf("editmesh: bevel: loop has no faces: %w", kernel.ErrPrecondition)
	}
	normal := m.Normal(ref)
	ps := make([]v3.Vec, n)
	for i, v := range loop {
		ps[i] = m.Vertex(v)
	}
	if loopNormal(ps).Dot(normal) < 0 {
		slices.Reverse(loop)
		slices.Reverse(ps)
	}

	minEdge := math.Inf(1)
	for i := range ps {
		minEdge = math.Min(minEdge, ps[(i+1)%n].Sub(ps[i]).Length())
	}
	offset = math.Min(offset, maxBevelFraction*minEdge)

	// Left-hand mitres point into the region the loop winds around.
	mit := make([]v3.Vec, n)
	for i := range ps {
		mit[i] = miter3(ps[(i+n-1)%n], ps[i], ps[(i+1)%n], normal)
	}

	mid := -1
	if segments%2 == 0 {
		mid = segments / 2
	}
	loops := make([][]kernel.VertexID, segments+1)
	for j := range loops {
		if j == mid {
			loops[j] = slices.Clone(loop)
			continue
		}
		s := offset * (2*float64(j)/float64(segments) - 1)
		loops[j] = make([]kernel.VertexID, n)
		for i, p := range ps {
			loops[j][i] = m.AddVertex(p.Add(mit[i].MulScalar(s)))
		}
	}

	index := make(map[kernel.VertexID]int, n)
	for i, v := range loop {
		index[v] = i
	}
	onLoop := make(map[kernel.EdgeKey]bool, n)
	for _, e := range kernel.LoopEdges(loop) {
		onLoop[e] = true
	}

	type rewire struct {
		face int
		to   []kernel.VertexID
	}
	var rewires []rewire
	for fi := 0; fi < m.FaceCount(); fi++ {
		f := m.Face(fi)
		touches, inner := false, false
		for j, v := range f {
			i, ok := index[v]
			if !ok {
				continue
			}
			touches = true
			if w := f[(j+1)%len(f)]; w == loop[(i+1)%n] {
				inner = true
			}
		}
		if !touches {
			continue
		}
		to := loops[0]
		if inner {
			to = loops[segments]
		}
		rewires = append(rewires, rewire{face: fi, to: to})
	}

	type moved struct {
		old   kernel.EdgeKey
		a, b  kernel.VertexID
		sharp bool
	}
	var moves []moved
	for _, r := range rewires {
		f := m.Face(r.face)
		nf := make([]kernel.VertexID, len(f))
		for j, v := range f {
			nf[j] = v
			if i, ok := index[v]; ok {
				nf[j] = r.to[i]
			}
		}
		for j, v := range f {
			w := f[(j+1)%len(f)]
			e := kernel.Key(v, w)
			if onLoop[e] {
				continue
			}
			if _, ok := index[v]; !ok {
				if _, ok := index[w]; !ok {
					continue
				}
			}
			moves = append(moves, moved{old: e, a: nf[j], b: nf[(j+1)%len(f)], sharp: m.Sharp(e)})
		}
		m.SetFace(r.face, nf)
	}
	for _, mv := range moves {
		m.RemoveEdge(mv.old)
	}
	for _, mv := range moves {
		if mv.sharp {
			m.SetSharp(m.AddEdge(mv.a, mv.b), true)
		}
	}

	bv := &kernel.Bevel{Loops: loops}
	for j := 0; j < segments; j++ {
		lo, hi := loops[j], loops[j+1]
		for i := 0; i < n; i++ {
			i1 := (i + 1) % n
			bv.Faces = append(bv.Faces, m.AddFace([]kernel.VertexID{lo[i], lo[i1], hi[i1], hi[i]}))
		}
	}
	if mid >= 0 {
		bv.Middle = loops[mid]
	} else {
		for _, v := range loop {
			m.RemoveVertex(v)
		}
	}
	return bv, nil
}

func loopNormal(ps []v3.Vec) v3.Vec {
	var nrm v3.Vec
	for i, p := range ps {
		q := ps[(i+1)%len(ps)]
		nrm.X += (p.Y - q.Y) * (p.Z + q.Z)
		nrm.Y += (p.Z - q.Z) * (p.X + q.X)
		nrm.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	return nrm
}

// miter3 is the left-hand mitre at b for the path a, b, c in the plane
// with normal n.
func miter3(a, b, c, n v3.Vec) v3.Vec {
	l1 := unit(n.Cross(b.Sub(a)))
	l2 := unit(n.Cross(c.Sub(b)))
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

func unit(v v3.Vec) v3.Vec {
	if l := v.Length(); l > 0 {
		return v.MulScalar(1 / l)
	}
	return v3.Vec{}
}

// BevelVertices rounds each vertex of a wire chain into a superellipse arc
// of segments edges. Every vertex must have exactly two neighbours and no
// faces. All arcs are computed from the positions before rounding; an arc
// never consumes more than half of an adjacent edge. profile 0.5 gives a
// circular arc, smaller values pull the arc toward the opposite corner.
// It returns the vertices created.
func (k *Kernel) BevelVertices(m *kernel.Mesh, verts []kernel.VertexID, offset float64, segments int, profile float64) ([]kernel.VertexID, error) {
	if segments < 1 || profile <= 0 {
		return nil, fmt.Errorf("editmesh: bevel vertices: segments %d profile %g: %w", segments, profile, kernel.ErrDegenerate)
	}
	vs := slices.Clone(verts)
	slices.Sort(vs)
	vs = slices.Compact(vs)

	inFace := make(map[kernel.VertexID]bool)
	for fi := 0; fi < m.FaceCount(); fi++ {
		for _, v := range m.Face(fi) {
			inFace[v] = true
		}
	}

	type corner struct {
		a, b kernel.VertexID
		arc  []v3.Vec
		ids  []kernel.VertexID
	}
	corners := make(map[kernel.VertexID]*corner, len(vs))
	e := 4 * profile
	for _, v := range vs {
		ns := m.Neighbors(v)
		if !m.Alive(v) || len(ns) != 2 || inFace[v] {
			return nil, fmt.Errorf("editmesh: bevel vertices: vertex %d: %w", v, kernel.ErrNotWireChain)
		}
		p, pa, pb := m.Vertex(v), m.Vertex(ns[0]), m.Vertex(ns[1])
		la, lb := pa.Sub(p).Length(), pb.Sub(p).Length()
		r := math.Min(offset, math.Min(la, lb)/2)
		if r <= 0 {
			continue
		}
		a := p.Add(pa.Sub(p).MulScalar(r / la))
		b := p.Add(pb.Sub(p).MulScalar(r / lb))
		o := a.Add(b).Sub(p)
		arc := make([]v3.Vec, segments+1)
		for s := range arc {
			th := math.Pi / 2 * float64(s) / float64(segments)
			x := math.Pow(math.Max(0, math.Cos(th)), 2/e)
			y := math.Pow(math.Max(0, math.Sin(th)), 2/e)
			arc[s] = o.Add(a.Sub(o).MulScalar(x)).Add(b.Sub(o).MulScalar(y))
		}
		corners[v] = &corner{a: ns[0], b: ns[1], arc: arc}
	}

	end := func(v, toward kernel.VertexID) kernel.VertexID {
		c, ok := corners[v]
		if !ok {
			return v
		}
		if toward == c.a {
			return c.ids[0]
		}
		return c.ids[len(c.ids)-1]
	}

	var created []kernel.VertexID
	for _, v := range vs {
		c, ok := corners[v]
		if !ok {
			continue
		}
		c.ids = make([]kernel.VertexID, len(c.arc))
		c.ids[0] = v
		for s := 1; s < len(c.arc); s++ {
			c.ids[s] = m.AddVertex(c.arc[s])
			created = append(created, c.ids[s])
		}
	}

	type link struct {
		old   kernel.EdgeKey
		a, b  kernel.VertexID
		sharp bool
	}
	var links []link
	for _, ek := range m.Edges() {
		_, ca := corners[ek.A]
		_, cb := corners[ek.B]
		if !ca && !cb {
			continue
		}
		links = append(links, link{old: ek, a: end(ek.A, ek.B), b: end(ek.B, ek.A), sharp: m.Sharp(ek)})
	}
	for _, l := range links {
		m.RemoveEdge(l.old)
	}
	for _, l := range links {
		m.SetSharp(m.AddEdge(l.a, l.b), l.sharp)
	}
	for _, v := range vs {
		c, ok := corners[v]
		if !ok {
			continue
		}
		m.SetVertex(v, c.arc[0])
		for s := 0; s+1 < len(c.ids); s++ {
			m.AddEdge(c.ids[s], c.ids[s+1])
		}
	}
	return created, nil
}
