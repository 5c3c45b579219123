// Package decompose drives recursive panel generation.
//
// Each round takes a worklist of face identities, dispatches every face to
// either the plate cutter or the subdivider (optionally followed by an
// inset), and collects the faces those return into the next worklist.
// Rounds continue until the depth runs out or nothing is left to work on.
//
// Faces are dispatched in descending index order. A face that cannot be
// worked on any further is a dead end, not an error.
package decompose

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/chazu/greeble/pkg/config"
	"github.com/chazu/greeble/pkg/identity"
	"github.com/chazu/greeble/pkg/kernel"
	"github.com/chazu/greeble/pkg/logging"
	"github.com/chazu/greeble/pkg/plate"
	"github.com/chazu/greeble/pkg/rng"
	"github.com/chazu/greeble/pkg/subdivide"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Report counts what a generation pass did.
type Report struct {
	Levels       int // rounds that dispatched at least one face
	Dispatches   int
	Cuts         int // plates cut successfully
	Subdivisions int // faces split successfully
	Insets       int
	DeadEnds     int
}

func (r *Report) add(o Report) {
	r.Levels += o.Levels
	r.Dispatches += o.Dispatches
	r.Cuts += o.Cuts
	r.Subdivisions += o.Subdivisions
	r.Insets += o.Insets
	r.DeadEnds += o.DeadEnds
}

// Generator runs generation passes over meshes.
type Generator struct {
	cfg        config.Config
	kernel     kernel.Kernel
	cutter     *plate.Cutter
	subdivider *subdivide.Subdivider
}

// New returns a generator for cfg using kernel k.
func New(cfg config.Config, k kernel.Kernel) *Generator {
	return &Generator{
		cfg:        cfg,
		kernel:     k,
		cutter:     plate.NewCutter(cfg, k),
		subdivider: subdivide.NewSubdivider(cfg, k),
	}
}

// Recursive decomposes the faces ids names. With depth 0 every face is
// dispatched once; each further level of depth works on the faces the
// previous round produced. The mesh must not be touched by anything else
// while this runs.
func (g *Generator) Recursive(seed uint64, m *kernel.Mesh, ids []identity.Identity, depth int) (Report, error) {
	var rep Report
	if m == nil {
		logging.Logger().Warn("decompose: nil mesh")
		return rep, nil
	}
	s := rng.New(seed)
	work := slices.Clone(ids)
	for len(work) > 0 {
		next, err := g.round(s, m, work, &rep)
		if err != nil {
			return rep, err
		}
		logging.Logger().Debug("decompose: round done",
			"level", rep.Levels, "depth", depth, "in", len(work), "out", len(next))
		if depth <= 0 {
			break
		}
		work = next
		depth--
	}
	return rep, nil
}

func (g *Generator) round(s *rng.Stream, m *kernel.Mesh, work []identity.Identity, rep *Report) ([]identity.Identity, error) {
	rep.Levels++
	slices.SortStableFunc(work, func(a, b identity.Identity) int {
		return cmp.Compare(b.Index, a.Index)
	})
	var next []identity.Identity
	for _, id := range work {
		rep.Dispatches++
		out, err := g.dispatch(s, m, id, rep)
		if err != nil {
			return nil, fmt.Errorf("decompose: face %d: %w", id.Index, err)
		}
		if len(out) == 0 {
			rep.DeadEnds++
			continue
		}
		next = append(next, out...)
	}
	return next, nil
}

func (g *Generator) dispatch(s *rng.Stream, m *kernel.Mesh, id identity.Identity, rep *Report) ([]identity.Identity, error) {
	symmetric := g.cfg.Shape.Symmetry
	if !s.Chance(g.cfg.Recursion.SubdivisionOverCutProbability) {
		clean, ok, err := g.cutter.CutPlate(s.Branch(symmetric), m, id)
		if err != nil || !ok {
			return nil, err
		}
		rep.Cuts++
		return []identity.Identity{clean}, nil
	}

	strips, err := g.subdivider.Subdivide(s.Branch(symmetric), m, id)
	if err != nil || strips == nil {
		return nil, err
	}
	rep.Subdivisions++
	out := make([]identity.Identity, 0, len(strips))
	for _, strip := range strips {
		if !s.Chance(g.cfg.Recursion.InsetProbability) {
			out = append(out, strip)
			continue
		}
		inner, err := g.subdivider.Inset(s.Branch(symmetric), m, strip)
		if err != nil {
			return nil, err
		}
		if inner == nil {
			out = append(out, strip)
			continue
		}
		rep.Insets++
		out = append(out, inner...)
	}
	return out, nil
}

// Cell is one independently generated square of a batch.
type Cell struct {
	X, Y   int
	Seed   uint64
	Mesh   *kernel.Mesh
	Report Report
	Err    error
}

// Batch generates one square face per cell of the grid [-radius, radius)^2,
// faceSize on a side, and decomposes each to depth. Every cell has its own
// mesh and a seed derived from seed and its coordinates, so any cell can be
// reproduced alone. A failing cell records its error and the batch goes on.
// Batch stops early only when ctx is done.
func (g *Generator) Batch(ctx context.Context, seed uint64, radius int, faceSize float64, depth int) ([]Cell, Report, error) {
	var (
		cells []Cell
		total Report
	)
	if faceSize <= 0 {
		return nil, total, fmt.Errorf("decompose: face size %g must be positive", faceSize)
	}
	for y := -radius; y < radius; y++ {
		for x := -radius; x < radius; x++ {
			if err := ctx.Err(); err != nil {
				return cells, total, err
			}
			c := Cell{X: x, Y: y, Seed: rng.Derive(seed, int64(x), int64(y))}
			c.Mesh = g.kernel.Plane(faceSize)
			g.kernel.Transform(c.Mesh, sdf.Translate3d(v3.Vec{
				X: (float64(x) + 0.5) * faceSize,
				Y: (float64(y) + 0.5) * faceSize,
			}))
			c.Report, c.Err = g.Recursive(c.Seed, c.Mesh, []identity.Identity{identity.Capture(c.Mesh, 0)}, depth)
			if c.Err != nil {
				logging.Logger().Error("decompose: cell failed", "x", x, "y", y, "seed", c.Seed, "err", c.Err)
			}
			total.add(c.Report)
			cells = append(cells, c)
		}
	}
	return cells, total, nil
}
