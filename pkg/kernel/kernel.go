// Package kernel defines the abstract geometry kernel interface.
// Implementations provide the polygon mesh editing operations the
// generators are written against. The kernel abstraction allows swapping
// backends without changing the rest of the system.
package kernel

import (
	"errors"
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrPrecondition is wrapped by every error reporting that an operation's
// topological or geometric precondition does not hold. Callers treat it as
// a dead branch rather than a failure.
var ErrPrecondition = errors.New("kernel: precondition failed")

var (
	ErrNoSuchFace   = fmt.Errorf("%w: no such face", ErrPrecondition)
	ErrNotQuad      = fmt.Errorf("%w: face is not a quad", ErrPrecondition)
	ErrNotOpposite  = fmt.Errorf("%w: edges are not opposite sides of the face", ErrPrecondition)
	ErrNotLoop      = fmt.Errorf("%w: edges do not form a single closed loop", ErrPrecondition)
	ErrNotSimple    = fmt.Errorf("%w: loop intersects itself", ErrPrecondition)
	ErrOutsideFace  = fmt.Errorf("%w: loop is not strictly inside the face", ErrPrecondition)
	ErrDegenerate   = fmt.Errorf("%w: degenerate geometry", ErrPrecondition)
	ErrNotWireChain = fmt.Errorf("%w: vertex is not on a wire chain", ErrPrecondition)
)

// Bevel describes the loops and faces produced by BevelEdges.
// Loops run from the outer side (index 0) to the inner side.
type Bevel struct {
	Loops  [][]VertexID
	Faces  []int
	Middle []VertexID
}

// Kernel is the abstract geometry kernel interface.
// All operations act in place on the given mesh. Face indices passed in are
// only valid for the mesh revision they were read from.
type Kernel interface {
	// Primitives
	Plane(size float64) *Mesh
	Circle(radius float64, segments int) *Mesh

	// Transforms
	Transform(m *Mesh, t sdf.M44)
	Place(m *Mesh, f Frame)
	TranslateVertices(m *Mesh, verts []VertexID, d v3.Vec)

	// Topology edits
	DeleteFace(m *Mesh, face int, keepEdges bool) error
	ProjectCut(m *Mesh, face int, cutter *Mesh) ([]int, error)
	InsetFace(m *Mesh, face int, thickness, depth float64, relative bool) (int, error)
	SubdivideEdgePair(m *Mesh, face int, a, b EdgeKey, cuts int) ([]int, error)
	BevelEdges(m *Mesh, edges []EdgeKey, offset float64, segments int) (*Bevel, error)
	BevelVertices(m *Mesh, verts []VertexID, offset float64, segments int, profile float64) ([]VertexID, error)
	RemoveDoubles(m *Mesh, dist float64) int

	// Attributes
	MarkSharp(m *Mesh, edges []EdgeKey)
}
