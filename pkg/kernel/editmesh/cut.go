package editmesh

import (
	"fmt"
	"math"

	"github.com/chazu/greeble/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ProjectCut projects the closed wire loop of cutter orthographically onto
// face and cuts it in. The loop must be simple and lie strictly inside the
// face. The face keeps its index and becomes the ring around the cut,
// joined to it by one bridge edge; the region inside the loop is appended
// as a new face and returned.
func (k *Kernel) ProjectCut(m *kernel.Mesh, face int, cutter *kernel.Mesh) ([]int, error) {
	if !m.HasFace(face) {
		return nil, fmt.Errorf("editmesh: project cut: face %d: %w", face, kernel.ErrNoSuchFace)
	}
	loop, err := cutter.WireLoop()
	if err != nil {
		return nil, fmt.Errorf("editmesh: project cut: %w", err)
	}

	fr := kernel.FaceFrame(m, face)
	outer := project(fr, m.FacePositions(face))
	inner := make([]v2.Vec, len(loop))
	for i, v := range loop {
		inner[i] = fr.Project(cutter.Vertex(v))
	}

	area := signedArea(inner)
	if math.Abs(area) <= epsilon {
		return nil, fmt.Errorf("editmesh: project cut: zero-area loop: %w", kernel.ErrDegenerate)
	}
	if area < 0 {
		inner = reversed(inner)
	}
	if !kernel.Simple(inner) {
		return nil, fmt.Errorf("editmesh: project cut: %w", kernel.ErrNotSimple)
	}
	for _, p := range inner {
		if !strictlyInside(p, outer) {
			return nil, fmt.Errorf("editmesh: project cut: point %v: %w", p, kernel.ErrOutsideFace)
		}
	}
	for i := range inner {
		a, b := inner[i], inner[(i+1)%len(inner)]
		for j := range outer {
			if kernel.SegmentsTouch(a, b, outer[j], outer[(j+1)%len(outer)]) {
				return nil, fmt.Errorf("editmesh: project cut: crosses face edge %d: %w", j, kernel.ErrOutsideFace)
			}
		}
	}

	ob, ib, ok := bridge(outer, inner)
	if !ok {
		return nil, fmt.Errorf("editmesh: project cut: no bridge between loops: %w", kernel.ErrDegenerate)
	}

	ids := make([]kernel.VertexID, len(inner))
	for i, p := range inner {
		ids[i] = m.AddVertex(fr.ToWorld(v3.Vec{X: p.X, Y: p.Y}))
	}

	fv := m.Face(face)
	no, ni := len(fv), len(ids)
	ring := make([]kernel.VertexID, 0, no+ni+2)
	for j := 0; j <= no; j++ {
		ring = append(ring, fv[(ob+j)%no])
	}
	for j := 0; j <= ni; j++ {
		ring = append(ring, ids[(ib-j+ni)%ni])
	}
	m.SetFace(face, ring)
	return []int{m.AddFace(ids)}, nil
}

// bridge picks the shortest segment joining a vertex of outer to a vertex
// of inner that crosses neither polygon.
func bridge(outer, inner []v2.Vec) (int, int, bool) {
	best := math.Inf(1)
	bo, bi := -1, -1
	for i, o := range outer {
		for j, p := range inner {
			d := p.Sub(o).Length()
			if d >= best || !bridgeClear(o, p, i, j, outer, inner) {
				continue
			}
			best, bo, bi = d, i, j
		}
	}
	return bo, bi, bo >= 0
}

func bridgeClear(o, p v2.Vec, oi, pi int, outer, inner []v2.Vec) bool {
	for _, poly := range []struct {
		ps   []v2.Vec
		skip int
	}{{outer, oi}, {inner, pi}} {
		n := len(poly.ps)
		for j := 0; j < n; j++ {
			if j == poly.skip || (j+1)%n == poly.skip {
				continue
			}
			if kernel.SegmentsTouch(o, p, poly.ps[j], poly.ps[(j+1)%n]) {
				return false
			}
		}
	}
	return true
}
