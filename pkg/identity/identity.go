// Package identity tracks faces across mesh edits that renumber them.
//
// A face is remembered by its last known index together with a snapshot of
// its vertex positions. Resolving an identity first checks the remembered
// index and falls back to a position lookup over the whole mesh.
// Matching uses exact float equality, so a face whose vertices moved at
// all is treated as gone.
package identity

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/chazu/greeble/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Identity is a face snapshot. The zero value names no face.
type Identity struct {
	Index     int
	Positions []v3.Vec
}

// IsZero reports whether id names no face.
func (id Identity) IsZero() bool { return len(id.Positions) == 0 }

// Capture snapshots face index of m.
func Capture(m *kernel.Mesh, index int) Identity {
	return Identity{Index: index, Positions: m.FacePositions(index)}
}

// CaptureAll snapshots each of indices.
func CaptureAll(m *kernel.Mesh, indices []int) []Identity {
	out := make([]Identity, len(indices))
	for i, f := range indices {
		out[i] = Capture(m, f)
	}
	return out
}

// Tracker resolves identities against a mesh. It caches a position index
// keyed by mesh revision and must not be shared between goroutines.
type Tracker struct {
	mesh  *kernel.Mesh
	rev   uint64
	index map[string][]int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Resolve returns the current index of the face id names. When several
// faces match, the highest index wins.
func (t *Tracker) Resolve(m *kernel.Mesh, id Identity) (int, bool) {
	if m == nil || id.IsZero() {
		return 0, false
	}
	want := key(id.Positions)
	if m.HasFace(id.Index) && len(m.Face(id.Index)) == len(id.Positions) &&
		key(m.FacePositions(id.Index)) == want {
		return id.Index, true
	}
	t.refresh(m)
	matches := t.index[want]
	if len(matches) == 0 {
		return 0, false
	}
	return matches[len(matches)-1], true
}

func (t *Tracker) refresh(m *kernel.Mesh) {
	if t.mesh == m && t.index != nil && t.rev == m.Revision() {
		return
	}
	t.mesh, t.rev = m, m.Revision()
	t.index = make(map[string][]int, m.FaceCount())
	for f := 0; f < m.FaceCount(); f++ {
		k := key(m.FacePositions(f))
		t.index[k] = append(t.index[k], f)
	}
}

// key is an order-independent encoding of the exact bits of ps.
func key(ps []v3.Vec) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = strconv.FormatUint(math.Float64bits(p.X), 16) + "," +
			strconv.FormatUint(math.Float64bits(p.Y), 16) + "," +
			strconv.FormatUint(math.Float64bits(p.Z), 16)
	}
	slices.Sort(parts)
	return strings.Join(parts, ";")
}
