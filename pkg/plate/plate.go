// Package plate cuts armor plates into faces.
//
// A plate is a notched rectangle outline projected into the middle of a
// face, creased along its border with a sharp bevel groove, and then
// re-cut with a plain rectangle kept clear of every notch. The plain
// rectangle is returned so later passes can keep decomposing it.
package plate

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/greeble/pkg/config"
	"github.com/chazu/greeble/pkg/identity"
	"github.com/chazu/greeble/pkg/kernel"
	"github.com/chazu/greeble/pkg/logging"
	"github.com/chazu/greeble/pkg/shape"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// bevelClearance is how many bevel offsets the clean rectangle keeps from
// the creased outline. A square corner pushes the inner bevel loop in by
// sqrt(2) offsets.
const bevelClearance = 2

// Placement is where a cutting shape goes on a face, in face frame
// coordinates: scale uniformly by Scale, then translate by Translation.
// Inner is the clean rectangle re-cut inside the plate.
type Placement struct {
	Scale       float64
	Translation v2.Vec
	Inner       sdf.Box2
}

// Layout fits a cutting shape with bounds outer and notch-free box inner
// into face, all boxes in the same frame. It reports false when the clean
// rectangle would be empty.
func Layout(face, outer, inner sdf.Box2, cfg config.Plate) (Placement, bool) {
	fs, os := face.Size(), outer.Size()
	if os.X <= 0 || os.Y <= 0 || fs.X <= 0 || fs.Y <= 0 {
		return Placement{}, false
	}
	s := cfg.CuttingShapeMargin * math.Min(fs.X/os.X, fs.Y/os.Y)
	t := face.Center().Sub(outer.Center().MulScalar(s))

	lo := inner.Min.MulScalar(s).Add(t)
	hi := inner.Max.MulScalar(s).Add(t)
	c := lo.Add(hi).MulScalar(0.5)
	half := hi.Sub(lo).MulScalar(0.5 * cfg.CleanFaceMargin)
	shrink := bevelClearance * cfg.BevelOffset
	half = v2.Vec{X: half.X - shrink, Y: half.Y - shrink}

	p := Placement{
		Scale:       s,
		Translation: t,
		Inner:       sdf.Box2{Min: c.Sub(half), Max: c.Add(half)},
	}
	return p, half.X > 0 && half.Y > 0
}

// Cutter cuts plates into mesh faces.
type Cutter struct {
	cfg     config.Plate
	depth   int
	kernel  kernel.Kernel
	shapes  *shape.Generator
	tracker *identity.Tracker
}

// NewCutter returns a cutter using the plate and shape sections of cfg.
func NewCutter(cfg config.Config, k kernel.Kernel) *Cutter {
	return &Cutter{
		cfg:     cfg.Plate,
		depth:   cfg.Shape.RecursionDepth,
		kernel:  k,
		shapes:  shape.NewGenerator(cfg.Shape, k),
		tracker: identity.NewTracker(),
	}
}

// CutPlate cuts one plate into the face id names and returns the clean
// rectangle inside it. A false result with a nil error is a dead branch:
// the face could not be found or the geometry did not allow a plate.
func (c *Cutter) CutPlate(seed uint64, m *kernel.Mesh, id identity.Identity) (identity.Identity, bool, error) {
	log := logging.Logger()
	if m == nil || id.IsZero() {
		log.Debug("plate: nothing to cut", "nilMesh", m == nil)
		return identity.Identity{}, false, nil
	}
	face, ok := c.tracker.Resolve(m, id)
	if !ok {
		log.Debug("plate: face not found", "index", id.Index)
		return identity.Identity{}, false, nil
	}

	fr := kernel.FaceFrame(m, face)
	fb := fr.Bounds(m.FacePositions(face))
	size := fb.Size()
	sh, err := c.shapes.Rectangle(seed, v3.Vec{}, size.MulScalar(0.5), c.depth)
	if err != nil {
		return identity.Identity{}, false, fmt.Errorf("plate: cutting shape: %w", err)
	}
	p, ok := Layout(fb, sh.Bounds(), sh.InnerBounds(), c.cfg)
	if !ok {
		log.Debug("plate: no room for a clean face", "face", face, "seed", seed)
		return identity.Identity{}, false, nil
	}

	c.kernel.Transform(sh.Mesh, sdf.Translate3d(v3.Vec{X: p.Translation.X, Y: p.Translation.Y}).
		Mul(sdf.Scale3d(v3.Vec{X: p.Scale, Y: p.Scale, Z: 1})))
	c.kernel.Place(sh.Mesh, fr)
	faces, err := c.kernel.ProjectCut(m, face, sh.Mesh)
	if err != nil {
		return c.deadOr(err, "cut", face, seed)
	}
	inner := faces[0]

	if err := c.crease(m, inner, fr.N); err != nil {
		return c.deadOr(err, "crease", face, seed)
	}

	clean := c.kernel.Plane(1)
	ctr, sz := p.Inner.Center(), p.Inner.Size()
	c.kernel.Transform(clean, sdf.Translate3d(v3.Vec{X: ctr.X, Y: ctr.Y}).
		Mul(sdf.Scale3d(v3.Vec{X: sz.X, Y: sz.Y, Z: 1})))
	if err := c.kernel.DeleteFace(clean, 0, true); err != nil {
		return identity.Identity{}, false, fmt.Errorf("plate: clean outline: %w", err)
	}
	c.kernel.Place(clean, fr)
	faces, err = c.kernel.ProjectCut(m, inner, clean)
	if err != nil {
		return c.deadOr(err, "clean cut", face, seed)
	}
	log.Debug("plate: cut", "face", face, "seed", seed, "clean", faces[0])
	return identity.Capture(m, faces[0]), true, nil
}

// crease grooves the border of face: the border is bevelled, every bevel
// loop is marked sharp and the middle loop is pushed below the surface.
func (c *Cutter) crease(m *kernel.Mesh, face int, normal v3.Vec) error {
	border := m.FaceEdges(face)
	c.kernel.MarkSharp(m, border)
	bv, err := c.kernel.BevelEdges(m, border, c.cfg.BevelOffset, c.cfg.BevelSegments)
	if err != nil {
		return err
	}
	c.kernel.MarkSharp(m, kernel.LoopEdges(bv.Loops[0]))
	c.kernel.MarkSharp(m, kernel.LoopEdges(bv.Loops[len(bv.Loops)-1]))
	if bv.Middle != nil {
		c.kernel.TranslateVertices(m, bv.Middle, normal.MulScalar(-c.cfg.CreaseDepth))
		c.kernel.MarkSharp(m, kernel.LoopEdges(bv.Middle))
	}
	return nil
}

func (c *Cutter) deadOr(err error, step string, face int, seed uint64) (identity.Identity, bool, error) {
	if errors.Is(err, kernel.ErrPrecondition) {
		logging.Logger().Warn("plate: dead branch", "step", step, "face", face, "seed", seed, "err", err)
		return identity.Identity{}, false, nil
	}
	return identity.Identity{}, false, fmt.Errorf("plate: %s: %w", step, err)
}
