// Package subdivide splits quad faces into strips and insets faces.
package subdivide

import (
	"errors"
	"fmt"

	"github.com/chazu/greeble/pkg/config"
	"github.com/chazu/greeble/pkg/identity"
	"github.com/chazu/greeble/pkg/kernel"
	"github.com/chazu/greeble/pkg/logging"
	"github.com/chazu/greeble/pkg/rng"
)

// Subdivider splits and insets faces of a mesh.
type Subdivider struct {
	cfg     config.Subdivide
	inset   config.Inset
	kernel  kernel.Kernel
	tracker *identity.Tracker
}

// NewSubdivider returns a subdivider using the subdivide and inset sections
// of cfg.
func NewSubdivider(cfg config.Config, k kernel.Kernel) *Subdivider {
	return &Subdivider{
		cfg:     cfg.Subdivide,
		inset:   cfg.Inset,
		kernel:  k,
		tracker: identity.NewTracker(),
	}
}

// Subdivide splits the quad id names into strips between one pair of
// opposite edges. The quad is first inset by a hair so the split never
// touches edges shared with neighbours. A nil result with a nil error means
// the face cannot be split: it is gone, not a quad, or too short along the
// chosen axis. In that case the mesh is left untouched.
func (s *Subdivider) Subdivide(seed uint64, m *kernel.Mesh, id identity.Identity) ([]identity.Identity, error) {
	log := logging.Logger()
	face, ok := s.resolve(m, id)
	if !ok {
		return nil, nil
	}
	edges := m.FaceEdges(face)
	if len(edges) != 4 {
		log.Debug("subdivide: not a quad", "face", face, "edges", len(edges))
		return nil, nil
	}

	r := rng.New(seed)
	first := 1
	if r.Chance(s.cfg.VerticalProbability) {
		first = 0
	}
	if l := m.EdgeLength(edges[first]); l < s.cfg.MinimumLength {
		log.Debug("subdivide: too short", "face", face, "length", l, "minimum", s.cfg.MinimumLength)
		return nil, nil
	}
	cuts := r.IntRange(s.cfg.MinCuts, s.cfg.MaxCuts)

	inner, err := s.kernel.InsetFace(m, face, s.cfg.SplitInsetThickness, 0, true)
	if err != nil {
		return nil, deadOr(err, "split inset", face)
	}
	edges = m.FaceEdges(inner)
	faces, err := s.kernel.SubdivideEdgePair(m, inner, edges[first], edges[first+2], cuts)
	if err != nil {
		return nil, deadOr(err, "split", face)
	}
	log.Debug("subdivide: split", "face", face, "seed", seed, "axis", first, "cuts", cuts)
	return identity.CaptureAll(m, faces), nil
}

// Inset shrinks the face id names and pushes it in or out along its normal.
// It returns the inset face, or nil when the face is gone or collapses.
func (s *Subdivider) Inset(seed uint64, m *kernel.Mesh, id identity.Identity) ([]identity.Identity, error) {
	face, ok := s.resolve(m, id)
	if !ok {
		return nil, nil
	}
	depth := s.inset.Depth
	if rng.New(seed).Chance(s.inset.InwardProbability) {
		depth = -depth
	}
	inner, err := s.kernel.InsetFace(m, face, s.inset.Thickness, depth, s.inset.Relative)
	if err != nil {
		return nil, deadOr(err, "inset", face)
	}
	logging.Logger().Debug("subdivide: inset", "face", face, "seed", seed, "depth", depth)
	return []identity.Identity{identity.Capture(m, inner)}, nil
}

func (s *Subdivider) resolve(m *kernel.Mesh, id identity.Identity) (int, bool) {
	if m == nil || id.IsZero() {
		logging.Logger().Debug("subdivide: nothing to do", "nilMesh", m == nil)
		return 0, false
	}
	face, ok := s.tracker.Resolve(m, id)
	if !ok {
		logging.Logger().Debug("subdivide: face not found", "index", id.Index)
	}
	return face, ok
}

// deadOr swallows kernel precondition failures, which end the branch, and
// wraps anything else.
func deadOr(err error, step string, face int) error {
	if errors.Is(err, kernel.ErrPrecondition) {
		logging.Logger().Warn("subdivide: dead branch", "step", step, "face", face, "err", err)
		return nil
	}
	return fmt.Errorf("subdivide: %s: %w", step, err)
}
