package identity

import (
	"testing"

	"github.com/chazu/greeble/pkg/kernel"
	"github.com/chazu/greeble/pkg/kernel/editmesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestResolveFastPath(t *testing.T) {
	m := editmesh.New().Plane(1)
	id := Capture(m, 0)
	got, ok := NewTracker().Resolve(m, id)
	if !ok || got != 0 {
		t.Fatalf("Resolve = (%d, %v), want (0, true)", got, ok)
	}
}

func TestResolveAfterRenumbering(t *testing.T) {
	k := editmesh.New()
	m := k.Plane(2)
	cut := k.Plane(1)
	if err := k.DeleteFace(cut, 0, true); err != nil {
		t.Fatal(err)
	}
	faces, err := k.ProjectCut(m, 0, cut)
	if err != nil {
		t.Fatalf("ProjectCut: %v", err)
	}
	id := Capture(m, faces[0])

	m.RemoveFace(0)
	tr := NewTracker()
	got, ok := tr.Resolve(m, id)
	if !ok || got != 0 {
		t.Fatalf("Resolve after shift = (%d, %v), want (0, true)", got, ok)
	}
}

func TestResolveRejects(t *testing.T) {
	k := editmesh.New()
	tests := []struct {
		name string
		run  func() (*kernel.Mesh, Identity)
	}{
		{"zero identity", func() (*kernel.Mesh, Identity) { return k.Plane(1), Identity{} }},
		{"nil mesh", func() (*kernel.Mesh, Identity) { return nil, Capture(k.Plane(1), 0) }},
		{"moved vertex", func() (*kernel.Mesh, Identity) {
			m := k.Plane(1)
			id := Capture(m, 0)
			m.SetVertex(0, m.Vertex(0).Add(v3.Vec{X: 1e-12}))
			return m, id
		}},
		{"deleted face", func() (*kernel.Mesh, Identity) {
			m := k.Plane(1)
			id := Capture(m, 0)
			m.RemoveFace(0)
			return m, id
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, id := tt.run()
			if _, ok := NewTracker().Resolve(m, id); ok {
				t.Error("Resolve succeeded, want dead branch")
			}
		})
	}
}

func TestResolvePicksHighestDuplicate(t *testing.T) {
	m := kernel.NewMesh()
	quad := func() []kernel.VertexID {
		return []kernel.VertexID{
			m.AddVertex(v3.Vec{X: 0, Y: 0}),
			m.AddVertex(v3.Vec{X: 1, Y: 0}),
			m.AddVertex(v3.Vec{X: 1, Y: 1}),
			m.AddVertex(v3.Vec{X: 0, Y: 1}),
		}
	}
	m.AddFace(quad())
	m.AddFace(quad())
	m.AddFace(quad())
	id := Identity{Index: 7, Positions: m.FacePositions(0)}
	got, ok := NewTracker().Resolve(m, id)
	if !ok || got != 2 {
		t.Errorf("Resolve = (%d, %v), want (2, true)", got, ok)
	}
}

func TestTrackerRefreshesOnRevision(t *testing.T) {
	k := editmesh.New()
	m := k.Plane(1)
	tr := NewTracker()
	stale := Identity{Index: 5, Positions: m.FacePositions(0)}
	if got, ok := tr.Resolve(m, stale); !ok || got != 0 {
		t.Fatalf("Resolve = (%d, %v)", got, ok)
	}
	if _, err := k.InsetFace(m, 0, 0.1, 0, false); err != nil {
		t.Fatal(err)
	}
	// The original corners now belong to no face of four: the old face
	// must not resolve from a stale cache.
	if _, ok := tr.Resolve(m, stale); ok {
		t.Error("stale cache resolved a face that no longer exists")
	}
	inner := Identity{Index: 9, Positions: m.FacePositions(0)}
	if got, ok := tr.Resolve(m, inner); !ok || got != 0 {
		t.Errorf("Resolve(inset) = (%d, %v), want (0, true)", got, ok)
	}
}

func TestCaptureIsDeepCopy(t *testing.T) {
	m := editmesh.New().Plane(1)
	id := Capture(m, 0)
	m.SetVertex(0, v3.Vec{X: 42})
	if id.Positions[0].X == 42 {
		t.Error("Capture shares storage with the mesh")
	}
}
