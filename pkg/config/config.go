// Package config holds the generation parameters for greeble.
//
// A Config is a plain value: every generator takes one at construction time
// and never mutates it. Start from Default and override fields, then call
// Validate before use.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("config: invalid")

// Config is the complete set of generation knobs.
type Config struct {
	Shape     Shape
	Plate     Plate
	Subdivide Subdivide
	Inset     Inset
	Recursion Recursion
	Batch     Batch
}

// Shape controls the cutting-shape generator.
type Shape struct {
	EdgeTransformProbability float64 // chance an edge is notched at all
	Notch45Probability       float64 // chance a notch is chamfered rather than square
	OuterProbability         float64 // chance a notch points outward

	RelativeWidthMin           float64
	RelativeWidthMax           float64
	RelativeDepthMin           float64
	RelativeDepthWidthRatioMax float64 // depth upper bound as a fraction of width
	ThinnestOffset             float64 // minimum distance of a notch from an edge end

	RoundProbability      float64
	OuterRoundProbability float64
	RoundSegments         int
	RoundOffset           float64
	OuterRoundProfile     float64
	InnerRoundProfile     float64

	RectangleProbability     float64
	MaximumRatioDifference   float64
	VerticalShapeProbability float64
	MinCircleEdges           int
	MaxCircleEdges           int
	CircleRadius             float64

	RecursionDepth int
	Symmetry       bool
	MergeDistance  float64
}

// Plate controls the plate cutter.
type Plate struct {
	ShapeRatio         float64 // cutting shape size relative to the face half-extent
	CuttingShapeMargin float64
	CleanFaceMargin    float64
	BevelOffset        float64
	BevelSegments      int
	CreaseDepth        float64
}

// Subdivide controls the face subdivider.
type Subdivide struct {
	MinCuts             int
	MaxCuts             int
	VerticalProbability float64
	MinimumLength       float64
	SplitInsetThickness float64
}

// Inset controls the inset utility.
type Inset struct {
	Thickness         float64
	Depth             float64
	Relative          bool
	InwardProbability float64
}

// Recursion controls the decomposition orchestrator.
type Recursion struct {
	Depth                         int
	SubdivisionOverCutProbability float64
	InsetProbability              float64
}

// Mode selects what a batch produces.
type Mode string

const (
	ModePanels Mode = "panels"
	ModeShapes Mode = "shapes"
)

// Batch controls the grid batch driver.
type Batch struct {
	Seed     uint64
	Radius   int
	FaceSize float64
	Mode     Mode
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Shape: Shape{
			EdgeTransformProbability:   1.0,
			Notch45Probability:         0.5,
			OuterProbability:           0.5,
			RelativeWidthMin:           0.1,
			RelativeWidthMax:           0.9,
			RelativeDepthMin:           0.01,
			RelativeDepthWidthRatioMax: 0.3,
			ThinnestOffset:             0.05,
			RoundProbability:           0.0,
			OuterRoundProbability:      0.5,
			RoundSegments:              5,
			RoundOffset:                1.05,
			OuterRoundProfile:          0.125,
			InnerRoundProfile:          0.5,
			RectangleProbability:       0.5,
			MaximumRatioDifference:     0.2,
			VerticalShapeProbability:   0.5,
			MinCircleEdges:             3,
			MaxCircleEdges:             6,
			CircleRadius:               0.4,
			RecursionDepth:             0,
			Symmetry:                   false,
			MergeDistance:              1e-6,
		},
		Plate: Plate{
			ShapeRatio:         0.5,
			CuttingShapeMargin: 0.9,
			CleanFaceMargin:    0.9,
			BevelOffset:        0.01,
			BevelSegments:      2,
			CreaseDepth:        0.02,
		},
		Subdivide: Subdivide{
			MinCuts:             1,
			MaxCuts:             2,
			VerticalProbability: 0.5,
			MinimumLength:       0.05,
			SplitInsetThickness: 1e-4,
		},
		Inset: Inset{
			Thickness:         0.01,
			Depth:             0.01,
			Relative:          true,
			InwardProbability: 0.5,
		},
		Recursion: Recursion{
			Depth:                         2,
			SubdivisionOverCutProbability: 0.5,
			InsetProbability:              0.3,
		},
		Batch: Batch{
			Seed:     0,
			Radius:   5,
			FaceSize: 1,
			Mode:     ModePanels,
		},
	}
}

// Validate reports every violated constraint, joined into one error.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}
	prob := func(name string, p float64) {
		if p < 0 || p > 1 {
			bad("%s = %g, want [0, 1]", name, p)
		}
	}

	s := c.Shape
	prob("shape.edge-transform", s.EdgeTransformProbability)
	prob("shape.notch45", s.Notch45Probability)
	prob("shape.outer", s.OuterProbability)
	prob("shape.round", s.RoundProbability)
	prob("shape.outer-round", s.OuterRoundProbability)
	prob("shape.rectangle", s.RectangleProbability)
	prob("shape.vertical", s.VerticalShapeProbability)
	if s.ThinnestOffset < 0 || s.ThinnestOffset >= 0.5 {
		bad("shape.thinnest-offset = %g, want [0, 0.5)", s.ThinnestOffset)
	}
	if s.RelativeWidthMin <= 0 || s.RelativeWidthMin > s.RelativeWidthMax {
		bad("shape.width = [%g, %g], want 0 < min <= max", s.RelativeWidthMin, s.RelativeWidthMax)
	}
	if s.RelativeWidthMax > 1-2*s.ThinnestOffset {
		bad("shape.width-max = %g exceeds 1 - 2*thinnest-offset = %g", s.RelativeWidthMax, 1-2*s.ThinnestOffset)
	}
	if s.RelativeDepthMin < 0 {
		bad("shape.depth-min = %g, want >= 0", s.RelativeDepthMin)
	}
	if s.RelativeDepthWidthRatioMax <= 0 || s.RelativeDepthWidthRatioMax >= 0.5 {
		bad("shape.depth-ratio = %g, want (0, 0.5)", s.RelativeDepthWidthRatioMax)
	}
	if s.RoundSegments < 1 {
		bad("shape.round-segments = %d, want >= 1", s.RoundSegments)
	}
	if s.RoundOffset <= 0 {
		bad("shape.round-offset = %g, want > 0", s.RoundOffset)
	}
	if s.OuterRoundProfile <= 0 || s.InnerRoundProfile <= 0 {
		bad("shape round profiles must be positive")
	}
	if s.MaximumRatioDifference <= 0 || s.MaximumRatioDifference > 1 {
		bad("shape.ratio-diff = %g, want (0, 1]", s.MaximumRatioDifference)
	}
	if s.MinCircleEdges < 3 || s.MinCircleEdges > s.MaxCircleEdges {
		bad("shape.circle-edges = [%d, %d], want 3 <= min <= max", s.MinCircleEdges, s.MaxCircleEdges)
	}
	if s.CircleRadius <= 0 {
		bad("shape.circle-radius = %g, want > 0", s.CircleRadius)
	}
	if s.RecursionDepth < 0 {
		bad("shape.recursion = %d, want >= 0", s.RecursionDepth)
	}
	if s.MergeDistance < 0 {
		bad("shape.merge-distance = %g, want >= 0", s.MergeDistance)
	}

	p := c.Plate
	if p.ShapeRatio <= 0 || p.ShapeRatio > 1 {
		bad("plate.shape-ratio = %g, want (0, 1]", p.ShapeRatio)
	}
	if p.CuttingShapeMargin <= 0 || p.CuttingShapeMargin >= 1 {
		bad("plate.margin = %g, want (0, 1)", p.CuttingShapeMargin)
	}
	if p.CleanFaceMargin <= 0 || p.CleanFaceMargin > 1 {
		bad("plate.clean-margin = %g, want (0, 1]", p.CleanFaceMargin)
	}
	if p.BevelOffset < 0 || p.BevelSegments < 1 {
		bad("plate bevel = (%g, %d), want offset >= 0 and segments >= 1", p.BevelOffset, p.BevelSegments)
	}

	d := c.Subdivide
	prob("subdivide.vertical", d.VerticalProbability)
	if d.MinCuts < 1 || d.MinCuts > d.MaxCuts {
		bad("subdivide.cuts = [%d, %d], want 1 <= min <= max", d.MinCuts, d.MaxCuts)
	}
	if d.MinimumLength < 0 {
		bad("subdivide.minimum-length = %g, want >= 0", d.MinimumLength)
	}
	if d.SplitInsetThickness < 0 {
		bad("subdivide.split-inset = %g, want >= 0", d.SplitInsetThickness)
	}

	in := c.Inset
	prob("inset.inward", in.InwardProbability)
	if in.Thickness < 0 {
		bad("inset.thickness = %g, want >= 0", in.Thickness)
	}

	r := c.Recursion
	prob("recursion.subdivide-over-cut", r.SubdivisionOverCutProbability)
	prob("recursion.inset", r.InsetProbability)
	if r.Depth < 0 {
		bad("recursion.depth = %d, want >= 0", r.Depth)
	}

	b := c.Batch
	if b.Radius < 0 {
		bad("batch.radius = %d, want >= 0", b.Radius)
	}
	if b.FaceSize <= 0 {
		bad("batch.face-size = %g, want > 0", b.FaceSize)
	}
	if b.Mode != ModePanels && b.Mode != ModeShapes {
		bad("batch.mode = %q, want %q or %q", b.Mode, ModePanels, ModeShapes)
	}

	return errors.Join(errs...)
}
