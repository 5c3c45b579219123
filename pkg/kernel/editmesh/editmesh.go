// Package editmesh implements the kernel.Kernel interface on the in-memory
// polygon mesh defined by package kernel. It works on planar faces and wire
// loops, which is all the panel generators need.
package editmesh

import (
	"fmt"
	"math"

	"github.com/chazu/greeble/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// miterLimit caps how far an offset vertex may travel, in multiples of the
// offset distance.
const miterLimit = 4.0

// Kernel is the in-memory mesh kernel. It is stateless.
type Kernel struct{}

// New returns a new Kernel.
func New() *Kernel {
	return &Kernel{}
}

// Plane returns a square face of the given edge length centered at the
// origin in the XY plane. Its edges run left, bottom, right, top.
func (k *Kernel) Plane(size float64) *kernel.Mesh {
	h := size / 2
	m := kernel.NewMesh()
	m.AddFace([]kernel.VertexID{
		m.AddVertex(v3.Vec{X: -h, Y: h}),
		m.AddVertex(v3.Vec{X: -h, Y: -h}),
		m.AddVertex(v3.Vec{X: h, Y: -h}),
		m.AddVertex(v3.Vec{X: h, Y: h}),
	})
	return m
}

// Circle returns a filled regular polygon in the XY plane with its first
// vertex on +X.
func (k *Kernel) Circle(radius float64, segments int) *kernel.Mesh {
	m := kernel.NewMesh()
	loop := make([]kernel.VertexID, segments)
	for i := range loop {
		a := 2 * math.Pi * float64(i) / float64(segments)
		loop[i] = m.AddVertex(v3.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)})
	}
	m.AddFace(loop)
	return m
}

// Transform applies t to every live vertex.
func (k *Kernel) Transform(m *kernel.Mesh, t sdf.M44) {
	for _, v := range m.Vertices() {
		m.SetVertex(v, t.MulPosition(m.Vertex(v)))
	}
}

// Place maps every vertex from frame-local coordinates into world space.
func (k *Kernel) Place(m *kernel.Mesh, f kernel.Frame) {
	for _, v := range m.Vertices() {
		m.SetVertex(v, f.ToWorld(m.Vertex(v)))
	}
}

// TranslateVertices moves verts by d.
func (k *Kernel) TranslateVertices(m *kernel.Mesh, verts []kernel.VertexID, d v3.Vec) {
	for _, v := range verts {
		m.SetVertex(v, m.Vertex(v).Add(d))
	}
}

// MarkSharp flags the existing edges among edges as sharp.
func (k *Kernel) MarkSharp(m *kernel.Mesh, edges []kernel.EdgeKey) {
	for _, e := range edges {
		m.SetSharp(e, true)
	}
}

// DeleteFace removes a face. With keepEdges its boundary stays behind as
// wire edges; otherwise edges no other face uses are removed too.
func (k *Kernel) DeleteFace(m *kernel.Mesh, face int, keepEdges bool) error {
	if !m.HasFace(face) {
		return fmt.Errorf("editmesh: delete face %d: %w", face, kernel.ErrNoSuchFace)
	}
	edges := m.FaceEdges(face)
	m.RemoveFace(face)
	if keepEdges {
		return nil
	}
	for _, e := range edges {
		if len(m.FacesWithEdge(e)) == 0 {
			m.RemoveEdge(e)
		}
	}
	return nil
}

// weldPoint is a vertex in the RemoveDoubles search tree.
type weldPoint struct {
	p  v3.Vec
	id kernel.VertexID
}

func (a weldPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	b := c.(weldPoint)
	switch d {
	case 0:
		return a.p.X - b.p.X
	case 1:
		return a.p.Y - b.p.Y
	case 2:
		return a.p.Z - b.p.Z
	}
	panic("unreachable")
}

func (a weldPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance.
func (a weldPoint) Distance(c kdtree.Comparable) float64 {
	d := a.p.Sub(c.(weldPoint).p)
	return d.Dot(d)
}

// RemoveDoubles merges every vertex lying within dist of an earlier one
// into it and returns the number merged. Survivors keep their positions.
func (k *Kernel) RemoveDoubles(m *kernel.Mesh, dist float64) int {
	var tree kdtree.Tree
	merged := 0
	for _, v := range m.Vertices() {
		q := weldPoint{p: m.Vertex(v), id: v}
		if tree.Len() > 0 {
			c, d2 := tree.Nearest(q)
			if c != nil && d2 <= dist*dist {
				m.MergeVertex(v, c.(weldPoint).id)
				merged++
				continue
			}
		}
		tree.Insert(q, false)
	}
	return merged
}
