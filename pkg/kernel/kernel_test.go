package kernel

import (
	"errors"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func square(m *Mesh, size float64) []VertexID {
	h := size / 2
	return []VertexID{
		m.AddVertex(v3.Vec{X: -h, Y: h}),
		m.AddVertex(v3.Vec{X: -h, Y: -h}),
		m.AddVertex(v3.Vec{X: h, Y: -h}),
		m.AddVertex(v3.Vec{X: h, Y: h}),
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// --- Mesh helper method tests ---

func TestKey(t *testing.T) {
	if Key(3, 1) != Key(1, 3) {
		t.Error("Key is not order independent")
	}
	k := Key(5, 2)
	if k.A != 2 || k.B != 5 {
		t.Errorf("Key(5,2) = %+v", k)
	}
	if k.Other(2) != 5 || k.Other(5) != 2 {
		t.Error("Other returned the wrong endpoint")
	}
}

func TestAddFaceCreatesEdges(t *testing.T) {
	m := NewMesh()
	f := m.AddFace(square(m, 1))
	if f != 0 {
		t.Fatalf("first face index = %d", f)
	}
	if m.EdgeCount() != 4 {
		t.Errorf("EdgeCount() = %d, want 4", m.EdgeCount())
	}
	for _, v := range m.Face(0) {
		if d := m.Degree(v); d != 2 {
			t.Errorf("Degree(%d) = %d, want 2", v, d)
		}
	}
}

func TestRemoveFaceShiftsIndices(t *testing.T) {
	m := NewMesh()
	m.AddFace(square(m, 1))
	b := m.AddFace(square(m, 2))
	want := m.FacePositions(b)
	m.RemoveFace(0)
	if m.FaceCount() != 1 {
		t.Fatalf("FaceCount() = %d", m.FaceCount())
	}
	got := m.FacePositions(0)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("face 0 after removal = %v, want %v", got, want)
		}
	}
}

func TestRevisionChanges(t *testing.T) {
	m := NewMesh()
	r0 := m.Revision()
	v := m.AddVertex(v3.Vec{})
	r1 := m.Revision()
	if r1 == r0 {
		t.Error("AddVertex did not bump revision")
	}
	m.SetVertex(v, v3.Vec{X: 1})
	if m.Revision() == r1 {
		t.Error("SetVertex did not bump revision")
	}
}

func TestNormalNewell(t *testing.T) {
	m := NewMesh()
	f := m.AddFace(square(m, 2))
	n := m.Normal(f)
	if !near(n.Z, 1) || !near(n.X, 0) || !near(n.Y, 0) {
		t.Errorf("Normal() = %v, want +Z", n)
	}
}

func TestMergeVertex(t *testing.T) {
	m := NewMesh()
	vs := square(m, 1)
	m.AddFace(vs)
	dup := m.AddVertex(m.Vertex(vs[0]))
	m.AddEdge(dup, vs[1])
	m.SetSharp(Key(dup, vs[1]), true)
	m.MergeVertex(dup, vs[0])
	if m.Alive(dup) {
		t.Error("merged vertex still alive")
	}
	if !m.Sharp(Key(vs[0], vs[1])) {
		t.Error("sharp flag lost in merge")
	}
	if m.EdgeCount() != 4 {
		t.Errorf("EdgeCount() = %d, want 4", m.EdgeCount())
	}
}

func TestClone(t *testing.T) {
	m := NewMesh()
	m.AddFace(square(m, 1))
	c := m.Clone()
	c.SetVertex(0, v3.Vec{X: 9})
	c.RemoveFace(0)
	if m.Vertex(0).X == 9 || m.FaceCount() != 1 {
		t.Error("Clone shares state with the original")
	}
}

// --- wire loop tests ---

func TestWireLoop(t *testing.T) {
	m := NewMesh()
	vs := square(m, 1)
	for i := range vs {
		m.AddEdge(vs[i], vs[(i+1)%4])
	}
	loop, err := m.WireLoop()
	if err != nil {
		t.Fatalf("WireLoop: %v", err)
	}
	if len(loop) != 4 {
		t.Fatalf("loop length %d, want 4", len(loop))
	}
	for i := range loop {
		if !m.HasEdge(Key(loop[i], loop[(i+1)%4])) {
			t.Errorf("loop step %d is not an edge", i)
		}
	}
}

func TestWireLoopRejects(t *testing.T) {
	tests := []struct {
		name  string
		build func(m *Mesh)
	}{
		{"open chain", func(m *Mesh) {
			vs := square(m, 1)
			m.AddEdge(vs[0], vs[1])
			m.AddEdge(vs[1], vs[2])
			m.AddEdge(vs[2], vs[3])
		}},
		{"two loops", func(m *Mesh) {
			for _, s := range []float64{1, 2} {
				vs := square(m, s)
				for i := range vs {
					m.AddEdge(vs[i], vs[(i+1)%4])
				}
			}
		}},
		{"empty", func(m *Mesh) {}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMesh()
			tt.build(m)
			if _, err := m.WireLoop(); !errors.Is(err, ErrNotLoop) {
				t.Errorf("WireLoop() error = %v, want ErrNotLoop", err)
			}
			if _, err := m.WireLoop(); !errors.Is(err, ErrPrecondition) {
				t.Errorf("error does not wrap ErrPrecondition")
			}
		})
	}
}

// --- frame tests ---

func TestFaceFrameRoundTrip(t *testing.T) {
	m := NewMesh()
	vs := []VertexID{
		m.AddVertex(v3.Vec{X: 0, Y: 0, Z: 1}),
		m.AddVertex(v3.Vec{X: 2, Y: 0, Z: 1}),
		m.AddVertex(v3.Vec{X: 2, Y: 0, Z: 3}),
		m.AddVertex(v3.Vec{X: 0, Y: 0, Z: 3}),
	}
	f := m.AddFace(vs)
	fr := FaceFrame(m, f)
	if !near(fr.T.Dot(fr.N), 0) || !near(fr.B.Dot(fr.N), 0) || !near(fr.T.Dot(fr.B), 0) {
		t.Fatalf("frame not orthogonal: %+v", fr)
	}
	p := v3.Vec{X: 1.5, Y: 0, Z: 2.25}
	q := fr.ToWorld(fr.ToLocal(p))
	if !near(p.X, q.X) || !near(p.Y, q.Y) || !near(p.Z, q.Z) {
		t.Errorf("round trip %v -> %v", p, q)
	}
	b := fr.Bounds(m.FacePositions(f))
	size := b.Size()
	if !near(size.X, 2) || !near(size.Y, 2) {
		t.Errorf("Bounds size = %v, want (2, 2)", size)
	}
	for _, v := range vs {
		if l := fr.ToLocal(m.Vertex(v)); !near(l.Z, 0) {
			t.Errorf("vertex %d off the face plane: %v", v, l)
		}
	}
}

func TestOrderLoop(t *testing.T) {
	edges := []EdgeKey{Key(2, 3), Key(0, 1), Key(3, 0), Key(1, 2)}
	loop, err := OrderLoop(edges)
	if err != nil {
		t.Fatalf("OrderLoop: %v", err)
	}
	if len(loop) != 4 || loop[0] != 0 {
		t.Errorf("OrderLoop = %v", loop)
	}
	if got := LoopEdges(loop); len(got) != 4 {
		t.Errorf("LoopEdges = %v", got)
	}
}
