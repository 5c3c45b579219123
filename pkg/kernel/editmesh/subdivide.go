package editmesh

import (
	"fmt"
	"slices"

	"github.com/chazu/greeble/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// SubdivideEdgePair splits the quad face into cuts+1 strips by placing cuts
// evenly spaced points on the opposite edges a and b and joining them.
// The first strip keeps the face index; the rest are appended and all are
// returned in order from a's first vertex. Faces sharing a or b get the new
// points inserted so the mesh stays conforming.
func (k *Kernel) SubdivideEdgePair(m *kernel.Mesh, face int, a, b kernel.EdgeKey, cuts int) ([]int, error) {
	if !m.HasFace(face) {
		return nil, fmt.Errorf("editmesh: subdivide: face %d: %w", face, kernel.ErrNoSuchFace)
	}
	fv := slices.Clone(m.Face(face))
	if len(fv) != 4 {
		return nil, fmt.Errorf("editmesh: subdivide: %d-gon: %w", len(fv), kernel.ErrNotQuad)
	}
	if cuts < 1 {
		return nil, fmt.Errorf("editmesh: subdivide: %d cuts: %w", cuts, kernel.ErrDegenerate)
	}
	edges := m.FaceEdges(face)
	ia, ib := slices.Index(edges, a), slices.Index(edges, b)
	if ia < 0 || ib < 0 || (ia+2)%4 != ib {
		return nil, fmt.Errorf("editmesh: subdivide: %v and %v: %w", a, b, kernel.ErrNotOpposite)
	}

	q0, q1, q2, q3 := fv[ia], fv[(ia+1)%4], fv[(ia+2)%4], fv[(ia+3)%4]
	as := splitPoints(m, q0, q1, cuts)
	bs := splitPoints(m, q3, q2, cuts)

	for fi := 0; fi < m.FaceCount(); fi++ {
		if fi == face {
			continue
		}
		insertChain(m, fi, as)
		insertChain(m, fi, bs)
	}

	for _, chain := range [][]kernel.VertexID{as, bs} {
		old := kernel.Key(chain[0], chain[len(chain)-1])
		sharp := m.Sharp(old)
		m.RemoveEdge(old)
		for j := 0; j+1 < len(chain); j++ {
			m.SetSharp(m.AddEdge(chain[j], chain[j+1]), sharp)
		}
	}

	out := []int{face}
	m.SetFace(face, []kernel.VertexID{as[0], as[1], bs[1], bs[0]})
	for j := 1; j <= cuts; j++ {
		out = append(out, m.AddFace([]kernel.VertexID{as[j], as[j+1], bs[j+1], bs[j]}))
	}
	return out, nil
}

// splitPoints returns from, cuts evenly spaced new vertices, then to.
func splitPoints(m *kernel.Mesh, from, to kernel.VertexID, cuts int) []kernel.VertexID {
	p, q := m.Vertex(from), m.Vertex(to)
	out := make([]kernel.VertexID, 0, cuts+2)
	out = append(out, from)
	for j := 1; j <= cuts; j++ {
		t := float64(j) / float64(cuts+1)
		out = append(out, m.AddVertex(lerp(p, q, t)))
	}
	return append(out, to)
}

// insertChain inserts the interior of chain into face fi wherever the face
// uses the chain's end-to-end edge, in either direction.
func insertChain(m *kernel.Mesh, fi int, chain []kernel.VertexID) {
	u, w := chain[0], chain[len(chain)-1]
	mid := chain[1 : len(chain)-1]
	f := m.Face(fi)
	n := len(f)
	var out []kernel.VertexID
	changed := false
	for j, v := range f {
		out = append(out, v)
		next := f[(j+1)%n]
		switch {
		case v == u && next == w:
			out = append(out, mid...)
			changed = true
		case v == w && next == u:
			out = append(out, reversed(mid)...)
			changed = true
		}
	}
	if changed {
		m.SetFace(fi, out)
	}
}

func lerp(p, q v3.Vec, t float64) v3.Vec {
	return p.Add(q.Sub(p).MulScalar(t))
}
