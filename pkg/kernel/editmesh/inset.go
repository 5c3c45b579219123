package editmesh

import (
	"fmt"
	"slices"

	"github.com/chazu/greeble/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// InsetFace shrinks face by thickness and lifts it by depth along its
// normal. The inset face keeps the original index; the border quads are
// appended. With relative set, thickness is scaled by the face's mean edge
// length.
func (k *Kernel) InsetFace(m *kernel.Mesh, face int, thickness, depth float64, relative bool) (int, error) {
	if !m.HasFace(face) {
		return 0, fmt.Errorf("editmesh: inset: face %d: %w", face, kernel.ErrNoSuchFace)
	}
	fv := slices.Clone(m.Face(face))
	n := len(fv)
	if n < 3 {
		return 0, fmt.Errorf("editmesh: inset: %d-gon: %w", n, kernel.ErrDegenerate)
	}

	fr := kernel.FaceFrame(m, face)
	pts := project(fr, m.FacePositions(face))
	if signedArea(pts) <= epsilon {
		return 0, fmt.Errorf("editmesh: inset: zero-area face: %w", kernel.ErrDegenerate)
	}
	if relative {
		thickness *= meanEdgeLength(pts)
	}
	in := offsetPolygon(pts, thickness)
	for i := range in {
		j := (i + 1) % n
		if in[j].Sub(in[i]).Dot(pts[j].Sub(pts[i])) <= 0 {
			return 0, fmt.Errorf("editmesh: inset: thickness %g collapses edge %d: %w", thickness, i, kernel.ErrDegenerate)
		}
	}
	if signedArea(in) <= epsilon {
		return 0, fmt.Errorf("editmesh: inset: thickness %g collapses face: %w", thickness, kernel.ErrDegenerate)
	}

	ids := make([]kernel.VertexID, n)
	for i, p := range in {
		ids[i] = m.AddVertex(fr.ToWorld(v3.Vec{X: p.X, Y: p.Y, Z: depth}))
	}
	m.SetFace(face, ids)
	for i := range fv {
		j := (i + 1) % n
		m.AddFace([]kernel.VertexID{fv[i], fv[j], ids[j], ids[i]})
	}
	return face, nil
}
