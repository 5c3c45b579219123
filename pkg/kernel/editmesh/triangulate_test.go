package editmesh

import (
	"errors"
	"testing"

	"github.com/chazu/greeble/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func polygonFace(pts ...[2]float64) *kernel.Mesh {
	m := kernel.NewMesh()
	loop := make([]kernel.VertexID, len(pts))
	for i, p := range pts {
		loop[i] = m.AddVertex(v3.Vec{X: p[0], Y: p[1]})
	}
	m.AddFace(loop)
	return m
}

// triArea is the signed XY area of a triangle.
func triArea(m *kernel.Mesh, t [3]kernel.VertexID) float64 {
	a, b, c := m.Vertex(t[0]), m.Vertex(t[1]), m.Vertex(t[2])
	return ((b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)) / 2
}

func TestTriangulate(t *testing.T) {
	tests := []struct {
		name string
		m    *kernel.Mesh
		area float64
	}{
		{"square", New().Plane(2), 4},
		{"L shape", polygonFace([2]float64{0, 0}, [2]float64{2, 0}, [2]float64{2, 1}, [2]float64{1, 1}, [2]float64{1, 2}, [2]float64{0, 2}), 3},
		{"collinear midpoints", polygonFace([2]float64{0, 0}, [2]float64{1, 0}, [2]float64{2, 0}, [2]float64{2, 1}, [2]float64{1, 1}, [2]float64{0, 1}), 2},
		{"notched", polygonFace([2]float64{0, 0}, [2]float64{1, 0}, [2]float64{1.5, 0.5}, [2]float64{2, 0}, [2]float64{2, 2}, [2]float64{0, 2}), 3.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tris, err := Triangulate(tt.m, 0)
			if err != nil {
				t.Fatal(err)
			}
			if want := len(tt.m.Face(0)) - 2; len(tris) != want {
				t.Errorf("%d triangles, want %d", len(tris), want)
			}
			var sum float64
			for _, tri := range tris {
				a := triArea(tt.m, tri)
				if a < 0 {
					t.Errorf("triangle %v is clockwise", tri)
				}
				sum += a
			}
			if !near(sum, tt.area) {
				t.Errorf("area = %v, want %v", sum, tt.area)
			}
		})
	}
}

func TestTriangulateCutMesh(t *testing.T) {
	k := New()
	m, _ := cutSquare(t, k)
	var sum float64
	for f := 0; f < m.FaceCount(); f++ {
		tris, err := Triangulate(m, f)
		if err != nil {
			t.Fatalf("face %d: %v", f, err)
		}
		for _, tri := range tris {
			sum += triArea(m, tri)
		}
	}
	if !near(sum, 4) {
		t.Errorf("triangles cover %v, want 4", sum)
	}
}

func TestTriangulateRejects(t *testing.T) {
	if _, err := Triangulate(New().Plane(1), 3); !errors.Is(err, kernel.ErrNoSuchFace) {
		t.Errorf("missing face: error = %v", err)
	}
	flat := polygonFace([2]float64{0, 0}, [2]float64{1, 0}, [2]float64{2, 0})
	if _, err := Triangulate(flat, 0); !errors.Is(err, kernel.ErrDegenerate) {
		t.Errorf("zero area: error = %v", err)
	}
}
