package main

import (
	"context"
	"log/slog"

	"github.com/chazu/greeble/pkg/config"
	"github.com/chazu/greeble/pkg/decompose"
	"github.com/chazu/greeble/pkg/kernel"
	"github.com/chazu/greeble/pkg/kernel/editmesh"
	"github.com/chazu/greeble/pkg/recipe"
	"github.com/chazu/greeble/pkg/shape"
)

// App evaluates recipes and runs the generation they describe.
type App struct {
	engine *recipe.Engine
	kernel kernel.Kernel
}

// Override changes a setting after the recipe has run. The result is
// validated again.
type Override func(*config.Config)

// Result is everything one evaluation produced. When Errors is non-empty
// the generation either never ran or stopped early; Cells then holds the
// cells finished before the stop.
type Result struct {
	Config config.Config
	Cells  []decompose.Cell
	Shapes []*shape.Shape
	Report decompose.Report
	Errors []recipe.EvalError
}

// NewApp creates a new App with a recipe engine and the editmesh kernel.
func NewApp() *App {
	return &App{
		engine: recipe.NewEngine(),
		kernel: editmesh.New(),
	}
}

// Evaluate runs source, applies overrides and generates the batch or shape
// array the resulting configuration asks for.
func (a *App) Evaluate(ctx context.Context, source string, overrides ...Override) Result {
	var result Result

	// Step 1: Evaluate the recipe into a configuration.
	r, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		result.Errors = append(result.Errors, recipe.EvalError{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		result.Errors = evalErrs
		return result
	}

	// Step 2: Command line settings win over the recipe.
	cfg := r.Config
	for _, o := range overrides {
		o(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		result.Errors = recipe.ValidationErrors(err)
		return result
	}
	result.Config = cfg

	// Step 3: Generate.
	switch cfg.Batch.Mode {
	case config.ModeShapes:
		shapes, err := shape.NewGenerator(cfg.Shape, a.kernel).Array(cfg.Batch.Seed, cfg.Batch.Radius)
		if err != nil {
			result.Errors = append(result.Errors, recipe.EvalError{Message: err.Error()})
			return result
		}
		result.Shapes = shapes
	default:
		g := decompose.New(cfg, a.kernel)
		cells, rep, err := g.Batch(ctx, cfg.Batch.Seed, cfg.Batch.Radius, cfg.Batch.FaceSize, cfg.Recursion.Depth)
		result.Cells, result.Report = cells, rep
		if err != nil {
			result.Errors = append(result.Errors, recipe.EvalError{Message: "generation stopped: " + err.Error()})
		}
	}
	return result
}

// Meshes returns the meshes of every generated cell or shape.
func (r Result) Meshes() []*kernel.Mesh {
	var out []*kernel.Mesh
	for _, c := range r.Cells {
		out = append(out, c.Mesh)
	}
	for _, s := range r.Shapes {
		out = append(out, s.Mesh)
	}
	return out
}

// Failed counts the cells that ended with an error.
func (r Result) Failed() int {
	n := 0
	for _, c := range r.Cells {
		if c.Err != nil {
			n++
		}
	}
	return n
}

// Log writes one line per cell or shape and a summary.
func (r Result) Log(log *slog.Logger) {
	for _, c := range r.Cells {
		attrs := []any{
			"x", c.X, "y", c.Y, "seed", c.Seed,
			"faces", c.Mesh.FaceCount(),
			"dispatches", c.Report.Dispatches,
			"dead_ends", c.Report.DeadEnds,
		}
		if c.Err != nil {
			log.Error("cell failed", append(attrs, "err", c.Err)...)
			continue
		}
		log.Info("cell", attrs...)
	}
	for _, s := range r.Shapes {
		log.Info("shape",
			"kind", s.Kind.String(),
			"x", s.Position.X, "y", s.Position.Y,
			"vertices", s.Mesh.VertexCount(),
			"edges", s.Mesh.EdgeCount(),
		)
	}

	rep := r.Report
	log.Info("done",
		"mode", string(r.Config.Batch.Mode),
		"cells", len(r.Cells),
		"shapes", len(r.Shapes),
		"levels", rep.Levels,
		"cuts", rep.Cuts,
		"subdivisions", rep.Subdivisions,
		"insets", rep.Insets,
		"dead_ends", rep.DeadEnds,
		"failed", r.Failed(),
	)
}
