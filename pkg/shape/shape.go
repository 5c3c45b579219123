// Package shape generates cutting shapes: closed wire polygons whose sides
// carry random notches, optionally rounded, used as knife outlines for
// panel plates.
//
// A shape starts as a rectangle or regular polygon. Each side is replaced by
// a five-edge notch (square or chamfered, pointing in or out), and each new
// edge may be notched again down to a recursion depth. All randomness comes
// from a seed, so the same seed and configuration always give the same
// outline.
package shape

import (
	"fmt"
	"math"
	"slices"

	"github.com/chazu/greeble/pkg/config"
	"github.com/chazu/greeble/pkg/kernel"
	"github.com/chazu/greeble/pkg/logging"
	"github.com/chazu/greeble/pkg/rng"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Kind is the base polygon of a shape.
type Kind int

const (
	Rectangle Kind = iota
	Circle
)

func (k Kind) String() string {
	switch k {
	case Rectangle:
		return "rectangle"
	case Circle:
		return "circle"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Side indexes the sides of a rectangle shape, in loop order.
type Side int

const (
	Left Side = iota
	Bottom
	Right
	Top
)

// Span is the signed perpendicular excursion range of one side's outline
// from the original side line. Outward is positive; Min <= 0 <= Max.
type Span struct {
	Min, Max float64
}

// Dominant returns whichever of Min and Max has the larger magnitude.
func (s Span) Dominant() float64 {
	if -s.Min > s.Max {
		return s.Min
	}
	return s.Max
}

// Shape is a generated cutting outline.
type Shape struct {
	Mesh      *kernel.Mesh
	Kind      Kind
	Position  v3.Vec
	Dimension v2.Vec

	// Corners are the vertices of the base polygon, in loop order. Side i
	// runs from Corners[i] to Corners[i+1].
	Corners []kernel.VertexID

	// Extents and EdgesDepth hold one entry per side. EdgesDepth is the
	// dominant excursion, in world units.
	Extents    []Span
	EdgesDepth []float64
}

// Loop returns the outline as an ordered closed vertex loop.
func (s *Shape) Loop() ([]kernel.VertexID, error) {
	return s.Mesh.WireLoop()
}

// Simple reports whether the outline, projected onto the XY plane, is a
// simple polygon.
func (s *Shape) Simple() bool {
	loop, err := s.Loop()
	if err != nil {
		return false
	}
	ps := make([]v2.Vec, len(loop))
	for i, v := range loop {
		p := s.Mesh.Vertex(v)
		ps[i] = v2.Vec{X: p.X, Y: p.Y}
	}
	return kernel.Simple(ps)
}

// Bounds returns the XY bounding box of the outline.
func (s *Shape) Bounds() sdf.Box2 {
	lo := v2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	hi := v2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, v := range s.Mesh.Vertices() {
		if s.Mesh.Degree(v) == 0 {
			continue
		}
		p := s.Mesh.Vertex(v)
		lo = v2.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y)}
		hi = v2.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y)}
	}
	return sdf.Box2{Min: lo, Max: hi}
}

// InnerBounds returns the largest axis-aligned box of a rectangle shape
// that no side's inward notches reach into.
func (s *Shape) InnerBounds() sdf.Box2 {
	lo := v2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	hi := v2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, v := range s.Corners {
		p := s.Mesh.Vertex(v)
		lo = v2.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y)}
		hi = v2.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y)}
	}
	if s.Kind != Rectangle || len(s.Extents) != 4 {
		return sdf.Box2{Min: lo, Max: hi}
	}
	return sdf.Box2{
		Min: v2.Vec{X: lo.X - s.Extents[Left].Min, Y: lo.Y - s.Extents[Bottom].Min},
		Max: v2.Vec{X: hi.X + s.Extents[Right].Min, Y: hi.Y + s.Extents[Top].Min},
	}
}

// genericSize is the base size of shapes built by Generic and Array,
// leaving room inside a unit cell for outward notches.
const genericSize = 0.5

// Generator builds cutting shapes.
type Generator struct {
	cfg    config.Shape
	kernel kernel.Kernel
}

// NewGenerator returns a generator using cfg and k.
func NewGenerator(cfg config.Shape, k kernel.Kernel) *Generator {
	return &Generator{cfg: cfg, kernel: k}
}

// Rectangle builds a notched rectangle of the given dimension centered at
// position.
func (g *Generator) Rectangle(seed uint64, position v3.Vec, dimension v2.Vec, depth int) (*Shape, error) {
	return g.generate(Rectangle, seed, g.kernel.Plane(1), position, dimension, depth)
}

// Circle builds a notched regular polygon with edges sides, scaled by
// dimension and centered at position.
func (g *Generator) Circle(seed uint64, position v3.Vec, dimension v2.Vec, edges, depth int) (*Shape, error) {
	if edges < 3 {
		return nil, fmt.Errorf("shape: circle with %d edges", edges)
	}
	return g.generate(Circle, seed, g.kernel.Circle(g.cfg.CircleRadius, edges), position, dimension, depth)
}

// Generic picks a rectangle of random aspect, horizontal or vertical, or a
// circle of random edge count.
func (g *Generator) Generic(seed uint64, position v3.Vec) (*Shape, error) {
	s := rng.New(seed)
	if s.Chance(g.cfg.RectangleProbability) {
		ratio := s.Uniform(g.cfg.MaximumRatioDifference, 1)
		dim := v2.Vec{X: genericSize, Y: genericSize * ratio}
		if s.Chance(g.cfg.VerticalShapeProbability) {
			dim = v2.Vec{X: genericSize * ratio, Y: genericSize}
		}
		return g.Rectangle(s.Fork(), position, dim, g.cfg.RecursionDepth)
	}
	edges := s.IntRange(g.cfg.MinCircleEdges, g.cfg.MaxCircleEdges)
	return g.Circle(s.Fork(), position, v2.Vec{X: genericSize, Y: genericSize}, edges, g.cfg.RecursionDepth)
}

// Array builds one generic shape per unit cell of the grid [-radius,
// radius)^2. Each cell's seed is derived from seed and the cell
// coordinates.
func (g *Generator) Array(seed uint64, radius int) ([]*Shape, error) {
	var out []*Shape
	for y := -radius; y < radius; y++ {
		for x := -radius; x < radius; x++ {
			pos := v3.Vec{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			s, err := g.Generic(rng.Derive(seed, int64(x), int64(y)), pos)
			if err != nil {
				return nil, fmt.Errorf("shape: array cell (%d, %d): %w", x, y, err)
			}
			out = append(out, s)
		}
	}
	return out, nil
}

// drawAttempts bounds how many notch draws generate tries before it falls
// back to the bare polygon.
const drawAttempts = 16

// generate notches every side of the polygon face of base. A draw whose
// outline crosses itself is discarded and redrawn from a seed derived from
// seed and the attempt number, so the result is always a simple loop.
func (g *Generator) generate(kind Kind, seed uint64, base *kernel.Mesh, position v3.Vec, dimension v2.Vec, depth int) (*Shape, error) {
	if dimension.X <= 0 || dimension.Y <= 0 {
		return nil, fmt.Errorf("shape: dimension %v must be positive", dimension)
	}
	g.kernel.Transform(base, sdf.Translate3d(position).Mul(sdf.Scale3d(v3.Vec{X: dimension.X, Y: dimension.Y, Z: 1})))
	corners := slices.Clone(base.Face(0))
	if err := g.kernel.DeleteFace(base, 0, true); err != nil {
		return nil, fmt.Errorf("shape: %w", err)
	}

	log := logging.Logger()
	for attempt := 0; attempt < drawAttempts; attempt++ {
		draw := seed
		if attempt > 0 {
			draw = rng.Derive(seed, int64(attempt))
		}
		m := base.Clone()
		s := rng.New(draw)
		for i, a := range corners {
			b := corners[(i+1)%len(corners)]
			if err := g.transformEdge(m, a, b, s.Branch(g.cfg.Symmetry), depth); err != nil {
				return nil, fmt.Errorf("shape: side %d: %w", i, err)
			}
		}
		merged := g.kernel.RemoveDoubles(m, g.cfg.MergeDistance)

		sh := &Shape{Mesh: m, Kind: kind, Position: position, Dimension: dimension, Corners: corners}
		if err := sh.measure(); err != nil || !sh.Simple() {
			log.Debug("shape: redrawing", "kind", kind, "seed", draw, "attempt", attempt, "err", err)
			continue
		}
		log.Debug("shape generated",
			"kind", kind, "seed", draw, "depth", depth, "attempt", attempt,
			"edges", m.EdgeCount(), "merged", merged)
		return sh, nil
	}

	sh := &Shape{Mesh: base, Kind: kind, Position: position, Dimension: dimension, Corners: corners}
	if err := sh.measure(); err != nil {
		return nil, fmt.Errorf("shape: %w", err)
	}
	log.Warn("shape: no simple outline drawn, using the bare polygon", "kind", kind, "seed", seed, "attempts", drawAttempts)
	return sh, nil
}

// measure fills Extents and EdgesDepth by walking the outline between
// consecutive corners.
func (s *Shape) measure() error {
	loop, err := s.Mesh.WireLoop()
	if err != nil {
		return err
	}
	n := len(s.Corners)
	start := slices.Index(loop, s.Corners[0])
	if start < 0 {
		return fmt.Errorf("corner %d not on outline", s.Corners[0])
	}
	loop = append(loop[start:], loop[:start]...)
	if n > 2 && slices.Index(loop, s.Corners[n-1]) < slices.Index(loop, s.Corners[1]) {
		slices.Reverse(loop[1:])
	}
	loop = append(loop, loop[0])

	s.Extents = make([]Span, n)
	s.EdgesDepth = make([]float64, n)
	side := 0
	for i, v := range loop {
		if i > 0 && v == s.Corners[(side+1)%n] {
			s.EdgesDepth[side] = s.Extents[side].Dominant()
			side++
			if side == n {
				break
			}
		}
		a := s.Mesh.Vertex(s.Corners[side])
		b := s.Mesh.Vertex(s.Corners[(side+1)%n])
		u := b.Sub(a)
		out := v3.Vec{X: u.Y, Y: -u.X}.MulScalar(1 / u.Length())
		e := s.Mesh.Vertex(v).Sub(a).Dot(out)
		s.Extents[side].Min = math.Min(s.Extents[side].Min, e)
		s.Extents[side].Max = math.Max(s.Extents[side].Max, e)
	}
	if side != n {
		return fmt.Errorf("outline visits %d of %d corners in order", side, n)
	}
	return nil
}
