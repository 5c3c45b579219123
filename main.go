// Command greeble fills square faces with procedurally cut, subdivided and
// inset hard-surface panels.
//
// Usage:
//
//	greeble [-recipe file] [-seed n] [-radius r] [-depth d] [-mode panels|shapes]
//	        [-preview wire.png] [-shaded shaded.png] [-v]
//
// Without a recipe the stock settings are used. Flags override the recipe.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/chazu/greeble/pkg/config"
	"github.com/chazu/greeble/pkg/logging"
	"github.com/chazu/greeble/pkg/preview"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command and returns its exit status: 0 on success, 1 when
// the recipe or generation fails, 2 on bad usage.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("greeble", flag.ContinueOnError)
	fs.SetOutput(stderr)
	recipePath := fs.String("recipe", "", "recipe file; stock settings when empty")
	seed := fs.Uint64("seed", 0, "batch seed")
	radius := fs.Int("radius", 0, "batch radius; the grid is 2r x 2r cells")
	depth := fs.Int("depth", 0, "recursion depth")
	mode := fs.String("mode", "", "panels or shapes")
	previewPath := fs.String("preview", "", "write a PNG wireframe to this file")
	shadedPath := fs.String("shaded", "", "write a shaded PNG of the panel faces to this file")
	verbose := fs.Bool("v", false, "log per-face decisions")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
	defer logging.SetLogger(nil)
	log := logging.Logger()

	var source string
	if *recipePath != "" {
		b, err := os.ReadFile(*recipePath)
		if err != nil {
			log.Error("read recipe", "err", err)
			return 1
		}
		source = string(b)
	}

	// Only flags given on the command line override the recipe.
	var overrides []Override
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			overrides = append(overrides, func(c *config.Config) { c.Batch.Seed = *seed })
		case "radius":
			overrides = append(overrides, func(c *config.Config) { c.Batch.Radius = *radius })
		case "depth":
			overrides = append(overrides, func(c *config.Config) { c.Recursion.Depth = *depth })
		case "mode":
			overrides = append(overrides, func(c *config.Config) { c.Batch.Mode = config.Mode(*mode) })
		}
	})

	result := NewApp().Evaluate(ctx, source, overrides...)
	for _, e := range result.Errors {
		log.Error("recipe", "line", e.Line, "col", e.Col, "msg", e.Message)
	}
	if len(result.Errors) > 0 {
		return 1
	}
	result.Log(log)

	meshes := result.Meshes()
	if *previewPath != "" {
		err := writeImage(*previewPath, func(w io.Writer) error {
			return preview.WritePNG(w, meshes, preview.DefaultOptions())
		})
		if err != nil {
			log.Error("preview", "err", err)
			return 1
		}
		log.Info("preview written", "path", *previewPath)
	}
	if *shadedPath != "" {
		err := writeImage(*shadedPath, func(w io.Writer) error {
			return preview.WriteShadedPNG(w, meshes, preview.DefaultShadedOptions())
		})
		switch {
		case errors.Is(err, preview.ErrEmpty):
			// Shape outlines are wires; there is nothing to shade.
			log.Warn("shaded preview skipped", "err", err)
		case err != nil:
			log.Error("shaded preview", "err", err)
			return 1
		default:
			log.Info("shaded preview written", "path", *shadedPath)
		}
	}
	return 0
}

func writeImage(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
