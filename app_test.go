package main

import (
	"context"
	"os"
	"testing"

	"github.com/chazu/greeble/pkg/config"
)

// TestE2EPanelExample exercises the full pipeline: recipe source → engine →
// config → batch → meshes.
func TestE2EPanelExample(t *testing.T) {
	app := NewApp()

	source, err := os.ReadFile("examples/panel.greeble")
	if err != nil {
		t.Fatalf("failed to read panel.greeble: %v", err)
	}

	result := app.Evaluate(context.Background(), string(source))

	// No errors expected.
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	if result.Config.Batch.FaceSize != 2 || result.Config.Recursion.Depth != 1 {
		t.Errorf("recipe settings not applied: %+v", result.Config.Batch)
	}

	// Radius 1 is a 2x2 grid.
	if len(result.Cells) != 4 {
		t.Fatalf("expected 4 cells, got %d", len(result.Cells))
	}
	for _, c := range result.Cells {
		if c.Err != nil {
			t.Errorf("cell (%d, %d): %v", c.X, c.Y, c.Err)
		}
		if c.Mesh.FaceCount() == 0 {
			t.Errorf("cell (%d, %d): no faces", c.X, c.Y)
		}
		if c.Report.Dispatches == 0 {
			t.Errorf("cell (%d, %d): nothing dispatched", c.X, c.Y)
		}
	}
	if got := len(result.Meshes()); got != 4 {
		t.Errorf("Meshes() = %d, want 4", got)
	}
	if result.Failed() != 0 {
		t.Errorf("Failed() = %d", result.Failed())
	}
}

// TestE2EShapesExample runs a shape array recipe.
func TestE2EShapesExample(t *testing.T) {
	source, err := os.ReadFile("examples/shapes.greeble")
	if err != nil {
		t.Fatalf("failed to read shapes.greeble: %v", err)
	}
	result := NewApp().Evaluate(context.Background(), string(source))
	if len(result.Errors) > 0 {
		t.Fatalf("errors: %v", result.Errors)
	}
	if len(result.Cells) != 0 {
		t.Errorf("shape mode produced %d cells", len(result.Cells))
	}
	if len(result.Shapes) != 36 {
		t.Fatalf("expected 36 shapes, got %d", len(result.Shapes))
	}
	for i, s := range result.Shapes {
		if _, err := s.Loop(); err != nil {
			t.Errorf("shape %d: outline is not a closed loop: %v", i, err)
		}
	}
}

// TestE2EEmptySource ensures the pipeline runs the stock settings.
func TestE2EEmptySource(t *testing.T) {
	app := NewApp()
	small := func(c *config.Config) { c.Batch.Radius = 1 }
	result := app.Evaluate(context.Background(), "", small)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	want := config.Default()
	want.Batch.Radius = 1
	if result.Config != want {
		t.Errorf("config = %+v, want defaults with radius 1", result.Config)
	}
	if len(result.Cells) != 4 {
		t.Errorf("expected 4 cells, got %d", len(result.Cells))
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(context.Background(), "(batch :radius 1")

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Meshes()) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes()))
	}
}

// TestE2EReproducible ensures a seed fully determines the output.
func TestE2EReproducible(t *testing.T) {
	src := `(batch :seed 11 :radius 1) (recursion :depth 2)`
	a := NewApp().Evaluate(context.Background(), src)
	b := NewApp().Evaluate(context.Background(), src)
	if len(a.Errors)+len(b.Errors) > 0 {
		t.Fatalf("errors: %v %v", a.Errors, b.Errors)
	}
	if a.Report != b.Report {
		t.Errorf("reports differ: %+v vs %+v", a.Report, b.Report)
	}
	for i := range a.Cells {
		ma, mb := a.Cells[i].Mesh, b.Cells[i].Mesh
		if ma.FaceCount() != mb.FaceCount() || ma.VertexCount() != mb.VertexCount() {
			t.Errorf("cell %d: %d/%d faces, %d/%d vertices", i,
				ma.FaceCount(), mb.FaceCount(), ma.VertexCount(), mb.VertexCount())
		}
	}
}
