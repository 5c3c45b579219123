package shape

import (
	"fmt"

	"github.com/chazu/greeble/pkg/kernel"
	"github.com/chazu/greeble/pkg/rng"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// NotchKind selects the notch profile.
type NotchKind int

const (
	// RightAngle notches have walls perpendicular to the edge.
	RightAngle NotchKind = iota
	// Chamfer notches have 45 degree walls.
	Chamfer
)

func (k NotchKind) String() string {
	if k == Chamfer {
		return "chamfer"
	}
	return "right-angle"
}

// Notch describes one edge transformation. Width, offset and depth are
// fractions of the edge length.
type Notch struct {
	Kind          NotchKind
	RelativeWidth float64
	WidthOffset   float64
	RelativeDepth float64
	Outer         bool
}

// Points returns the four new vertices C, D, E, F of a notch on the edge
// from a to b. The outline then runs a, C, D, E, F, b. Outward is to the
// right of the edge direction, which is outside for counter-clockwise
// outlines.
func (n Notch) Points(a, b v3.Vec) [4]v3.Vec {
	u := b.Sub(a)
	v := v3.Vec{X: u.Y, Y: -u.X}
	if !n.Outer {
		v = v.MulScalar(-1)
	}
	off, w, d := n.WidthOffset, n.RelativeWidth, n.RelativeDepth
	c := a.Add(u.MulScalar(off))
	f := a.Add(u.MulScalar(off + w))
	if n.Kind == Chamfer {
		return [4]v3.Vec{
			c,
			a.Add(u.MulScalar(off + d)).Add(v.MulScalar(d)),
			a.Add(u.MulScalar(off + w - d)).Add(v.MulScalar(d)),
			f,
		}
	}
	return [4]v3.Vec{c, c.Add(v.MulScalar(d)), f.Add(v.MulScalar(d)), f}
}

// draw samples a notch from s. The draw order is fixed: width, offset,
// depth, direction, profile.
func (g *Generator) draw(s *rng.Stream) Notch {
	c := g.cfg
	w := s.Uniform(c.RelativeWidthMin, c.RelativeWidthMax)
	off := s.Uniform(c.ThinnestOffset, 1-c.ThinnestOffset-w)
	d := s.Uniform(c.RelativeDepthMin, w*c.RelativeDepthWidthRatioMax)
	n := Notch{RelativeWidth: w, WidthOffset: off, RelativeDepth: d, Outer: s.Chance(c.OuterProbability)}
	if s.Chance(c.Notch45Probability) {
		n.Kind = Chamfer
	}
	return n
}

// transformEdge replaces the edge a-b with a notch, recurses into the five
// new edges while depth remains, then rounds the chosen notch corners.
func (g *Generator) transformEdge(m *kernel.Mesh, a, b kernel.VertexID, seed uint64, depth int) error {
	s := rng.New(seed)
	if !s.Chance(g.cfg.EdgeTransformProbability) {
		return nil
	}
	k := kernel.Key(a, b)
	if !m.HasEdge(k) {
		return fmt.Errorf("edge %v missing", k)
	}
	n := g.draw(s)

	var round [4]bool
	outerRound := false
	if n.Kind == RightAngle {
		for i := range round {
			round[i] = s.Chance(g.cfg.RoundProbability)
		}
		outerRound = s.Chance(g.cfg.OuterRoundProbability)
	}

	pts := n.Points(m.Vertex(a), m.Vertex(b))
	sharp := m.Sharp(k)
	m.RemoveEdge(k)
	chain := []kernel.VertexID{a, 0, 0, 0, 0, b}
	for i, p := range pts {
		chain[i+1] = m.AddVertex(p)
	}
	for i := 0; i+1 < len(chain); i++ {
		m.SetSharp(m.AddEdge(chain[i], chain[i+1]), sharp)
	}

	if depth > 0 {
		for i := 0; i+1 < len(chain); i++ {
			if err := g.transformEdge(m, chain[i], chain[i+1], s.Branch(g.cfg.Symmetry), depth-1); err != nil {
				return err
			}
		}
	}

	var verts []kernel.VertexID
	for i, r := range round {
		if r {
			verts = append(verts, chain[i+1])
		}
	}
	if len(verts) == 0 {
		return nil
	}
	profile := g.cfg.InnerRoundProfile
	if outerRound {
		profile = g.cfg.OuterRoundProfile
	}
	if _, err := g.kernel.BevelVertices(m, verts, g.cfg.RoundOffset, g.cfg.RoundSegments, profile); err != nil {
		return fmt.Errorf("rounding: %w", err)
	}
	return nil
}
