package editmesh

import (
	"fmt"

	"github.com/chazu/greeble/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Triangulate splits face i into len(face)-2 triangles by ear clipping in
// the face plane. Triangles keep the face winding. Collinear vertices, such
// as those left by edge subdivision, are allowed.
func Triangulate(m *kernel.Mesh, i int) ([][3]kernel.VertexID, error) {
	if !m.HasFace(i) {
		return nil, fmt.Errorf("editmesh: triangulate: face %d: %w", i, kernel.ErrNoSuchFace)
	}
	fv := m.Face(i)
	if len(fv) < 3 {
		return nil, fmt.Errorf("editmesh: triangulate: %d-gon: %w", len(fv), kernel.ErrDegenerate)
	}
	pts := project(kernel.FaceFrame(m, i), m.FacePositions(i))
	if signedArea(pts) <= epsilon {
		return nil, fmt.Errorf("editmesh: triangulate: zero-area face: %w", kernel.ErrDegenerate)
	}

	idx := make([]int, len(fv))
	for j := range idx {
		idx[j] = j
	}
	tris := make([][3]kernel.VertexID, 0, len(fv)-2)
	for len(idx) > 3 {
		k := findEar(pts, idx)
		if k < 0 {
			return nil, fmt.Errorf("editmesh: triangulate: no ear among %d vertices: %w", len(idx), kernel.ErrNotSimple)
		}
		a, b, c := idx[(k+len(idx)-1)%len(idx)], idx[k], idx[(k+1)%len(idx)]
		tris = append(tris, [3]kernel.VertexID{fv[a], fv[b], fv[c]})
		idx = append(idx[:k], idx[k+1:]...)
	}
	return append(tris, [3]kernel.VertexID{fv[idx[0]], fv[idx[1]], fv[idx[2]]}), nil
}

// findEar returns the position in idx of a strictly convex vertex whose
// triangle holds no other remaining vertex, or -1.
func findEar(pts []v2.Vec, idx []int) int {
	n := len(idx)
	for k := range idx {
		a, b, c := pts[idx[(k+n-1)%n]], pts[idx[k]], pts[idx[(k+1)%n]]
		if kernel.Orient(a, b, c) <= epsilon {
			continue
		}
		ear := true
		for j, o := range idx {
			if j == k || j == (k+n-1)%n || j == (k+1)%n {
				continue
			}
			p := pts[o]
			if p == a || p == b || p == c {
				continue
			}
			if kernel.Orient(a, b, p) >= -epsilon && kernel.Orient(b, c, p) >= -epsilon && kernel.Orient(c, a, p) >= -epsilon {
				ear = false
				break
			}
		}
		if ear {
			return k
		}
	}
	return -1
}
