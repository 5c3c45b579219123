package kernel

import (
	"cmp"
	"fmt"
	"slices"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// VertexID addresses a vertex. IDs are never reused; removed vertices are
// tombstoned.
type VertexID int

// EdgeKey identifies an undirected edge by its sorted vertex pair.
type EdgeKey struct {
	A, B VertexID
}

// Key returns the edge key for the pair (a, b) in either order.
func Key(a, b VertexID) EdgeKey {
	if a > b {
		a, b = b, a
	}
	return EdgeKey{A: a, B: b}
}

// Other returns the endpoint of k that is not v.
func (k EdgeKey) Other(v VertexID) VertexID {
	if k.A == v {
		return k.B
	}
	return k.A
}

// Has reports whether v is an endpoint of k.
func (k EdgeKey) Has(v VertexID) bool { return k.A == v || k.B == v }

// Edge holds per-edge attributes.
type Edge struct {
	Sharp bool
}

// Mesh is a polygon mesh with ordered face loops, counter-clockwise around
// the face normal. Edges may exist without faces (wire edges).
//
// Face indices are positional: removing a face shifts every later face
// down by one. Revision changes on every mutation so callers can tell when
// cached lookups are stale.
type Mesh struct {
	pos   []v3.Vec
	alive []bool
	edges map[EdgeKey]Edge
	faces [][]VertexID
	rev   uint64
}

// NewMesh returns an empty mesh.
func NewMesh() *Mesh {
	return &Mesh{edges: make(map[EdgeKey]Edge)}
}

// Revision returns the mutation counter.
func (m *Mesh) Revision() uint64 { return m.rev }

func (m *Mesh) touch() { m.rev++ }

// Clone returns a deep copy of m, including its revision.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		pos:   slices.Clone(m.pos),
		alive: slices.Clone(m.alive),
		edges: make(map[EdgeKey]Edge, len(m.edges)),
		faces: make([][]VertexID, len(m.faces)),
		rev:   m.rev,
	}
	for k, e := range m.edges {
		c.edges[k] = e
	}
	for i, f := range m.faces {
		c.faces[i] = slices.Clone(f)
	}
	return c
}

// --- vertices ---

// AddVertex appends a vertex and returns its ID.
func (m *Mesh) AddVertex(p v3.Vec) VertexID {
	m.pos = append(m.pos, p)
	m.alive = append(m.alive, true)
	m.touch()
	return VertexID(len(m.pos) - 1)
}

// Vertex returns the position of v.
func (m *Mesh) Vertex(v VertexID) v3.Vec { return m.pos[v] }

// SetVertex moves v to p.
func (m *Mesh) SetVertex(v VertexID, p v3.Vec) {
	m.pos[v] = p
	m.touch()
}

// Alive reports whether v exists and has not been removed.
func (m *Mesh) Alive(v VertexID) bool {
	return v >= 0 && int(v) < len(m.alive) && m.alive[v]
}

// Vertices returns the live vertex IDs in ascending order.
func (m *Mesh) Vertices() []VertexID {
	out := make([]VertexID, 0, len(m.pos))
	for i, ok := range m.alive {
		if ok {
			out = append(out, VertexID(i))
		}
	}
	return out
}

// VertexCount returns the number of live vertices.
func (m *Mesh) VertexCount() int {
	n := 0
	for _, ok := range m.alive {
		if ok {
			n++
		}
	}
	return n
}

// RemoveVertex tombstones v and drops its edges. Faces referencing v are
// left to the caller.
func (m *Mesh) RemoveVertex(v VertexID) {
	for k := range m.edges {
		if k.Has(v) {
			delete(m.edges, k)
		}
	}
	m.alive[v] = false
	m.touch()
}

// MergeVertex rewires every edge and face use of from onto into and removes
// from. Edges collapsing to a point are dropped; a merged edge is sharp if
// either source edge was.
func (m *Mesh) MergeVertex(from, into VertexID) {
	for k, e := range m.edges {
		if !k.Has(from) {
			continue
		}
		delete(m.edges, k)
		o := k.Other(from)
		if o == into || o == from {
			continue
		}
		nk := Key(o, into)
		prev := m.edges[nk]
		m.edges[nk] = Edge{Sharp: prev.Sharp || e.Sharp}
	}
	for i, f := range m.faces {
		if !slices.Contains(f, from) {
			continue
		}
		out := f[:0:0]
		for _, v := range f {
			if v == from {
				v = into
			}
			if len(out) > 0 && out[len(out)-1] == v {
				continue
			}
			out = append(out, v)
		}
		for len(out) > 1 && out[0] == out[len(out)-1] {
			out = out[:len(out)-1]
		}
		m.faces[i] = out
	}
	m.alive[from] = false
	m.touch()
}

// Degree returns the number of edges incident to v.
func (m *Mesh) Degree(v VertexID) int {
	n := 0
	for k := range m.edges {
		if k.Has(v) {
			n++
		}
	}
	return n
}

// Neighbors returns the vertices sharing an edge with v, in ascending order.
func (m *Mesh) Neighbors(v VertexID) []VertexID {
	var out []VertexID
	for k := range m.edges {
		if k.Has(v) {
			out = append(out, k.Other(v))
		}
	}
	slices.Sort(out)
	return out
}

// --- edges ---

// AddEdge adds the edge (a, b) if it does not exist and returns its key.
func (m *Mesh) AddEdge(a, b VertexID) EdgeKey {
	k := Key(a, b)
	if _, ok := m.edges[k]; !ok {
		m.edges[k] = Edge{}
		m.touch()
	}
	return k
}

// HasEdge reports whether k exists.
func (m *Mesh) HasEdge(k EdgeKey) bool {
	_, ok := m.edges[k]
	return ok
}

// RemoveEdge deletes k.
func (m *Mesh) RemoveEdge(k EdgeKey) {
	if _, ok := m.edges[k]; ok {
		delete(m.edges, k)
		m.touch()
	}
}

// Sharp reports whether k is marked sharp.
func (m *Mesh) Sharp(k EdgeKey) bool { return m.edges[k].Sharp }

// SetSharp sets the sharp flag of an existing edge.
func (m *Mesh) SetSharp(k EdgeKey, sharp bool) {
	if e, ok := m.edges[k]; ok && e.Sharp != sharp {
		m.edges[k] = Edge{Sharp: sharp}
		m.touch()
	}
}

// Edges returns every edge key sorted by (A, B).
func (m *Mesh) Edges() []EdgeKey {
	out := make([]EdgeKey, 0, len(m.edges))
	for k := range m.edges {
		out = append(out, k)
	}
	slices.SortFunc(out, func(x, y EdgeKey) int {
		if c := cmp.Compare(x.A, y.A); c != 0 {
			return c
		}
		return cmp.Compare(x.B, y.B)
	})
	return out
}

// EdgeCount returns the number of edges.
func (m *Mesh) EdgeCount() int { return len(m.edges) }

// EdgeLength returns the length of k.
func (m *Mesh) EdgeLength(k EdgeKey) float64 {
	return m.pos[k.B].Sub(m.pos[k.A]).Length()
}

// --- faces ---

// AddFace appends a face with the given loop, creating any missing edges,
// and returns its index.
func (m *Mesh) AddFace(loop []VertexID) int {
	m.faces = append(m.faces, slices.Clone(loop))
	m.addLoopEdges(loop)
	m.touch()
	return len(m.faces) - 1
}

// SetFace replaces the loop of face i, creating any missing edges.
// Edges only used by the old loop are kept.
func (m *Mesh) SetFace(i int, loop []VertexID) {
	m.faces[i] = slices.Clone(loop)
	m.addLoopEdges(loop)
	m.touch()
}

func (m *Mesh) addLoopEdges(loop []VertexID) {
	for i, v := range loop {
		w := loop[(i+1)%len(loop)]
		if v != w {
			k := Key(v, w)
			if _, ok := m.edges[k]; !ok {
				m.edges[k] = Edge{}
			}
		}
	}
}

// RemoveFace deletes face i. Faces after i move down by one.
func (m *Mesh) RemoveFace(i int) {
	m.faces = slices.Delete(m.faces, i, i+1)
	m.touch()
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int { return len(m.faces) }

// HasFace reports whether i is a valid face index.
func (m *Mesh) HasFace(i int) bool { return i >= 0 && i < len(m.faces) }

// Face returns the loop of face i. The slice must not be modified.
func (m *Mesh) Face(i int) []VertexID { return m.faces[i] }

// FacePositions returns a copy of the vertex positions of face i in loop order.
func (m *Mesh) FacePositions(i int) []v3.Vec {
	f := m.faces[i]
	out := make([]v3.Vec, len(f))
	for j, v := range f {
		out[j] = m.pos[v]
	}
	return out
}

// FaceEdges returns the edges of face i in loop order: edge j runs from
// vertex j to vertex j+1.
func (m *Mesh) FaceEdges(i int) []EdgeKey {
	f := m.faces[i]
	out := make([]EdgeKey, len(f))
	for j, v := range f {
		out[j] = Key(v, f[(j+1)%len(f)])
	}
	return out
}

// FacesWithEdge returns the indices of faces whose loop contains k.
func (m *Mesh) FacesWithEdge(k EdgeKey) []int {
	var out []int
	for i, f := range m.faces {
		for j, v := range f {
			if Key(v, f[(j+1)%len(f)]) == k {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// Normal returns the unit Newell normal of face i, or the zero vector for a
// degenerate face.
func (m *Mesh) Normal(i int) v3.Vec {
	return newell(m.FacePositions(i))
}

func newell(ps []v3.Vec) v3.Vec {
	var n v3.Vec
	for i, p := range ps {
		q := ps[(i+1)%len(ps)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	if l := n.Length(); l > 0 {
		return n.MulScalar(1 / l)
	}
	return v3.Vec{}
}

// --- wire loops ---

// WireLoop returns the vertices of m's edges as one ordered closed loop.
// It fails unless every live vertex with edges has degree two and all such
// vertices are connected.
func (m *Mesh) WireLoop() ([]VertexID, error) {
	adj := make(map[VertexID][]VertexID)
	for _, k := range m.Edges() {
		adj[k.A] = append(adj[k.A], k.B)
		adj[k.B] = append(adj[k.B], k.A)
	}
	if len(adj) < 3 {
		return nil, fmt.Errorf("kernel: wire loop of %d vertices: %w", len(adj), ErrNotLoop)
	}
	start := VertexID(-1)
	for v, ns := range adj {
		if len(ns) != 2 {
			return nil, fmt.Errorf("kernel: vertex %d has degree %d: %w", v, len(ns), ErrNotLoop)
		}
		if start < 0 || v < start {
			start = v
		}
	}
	loop := []VertexID{start}
	prev, cur := start, adj[start][0]
	for cur != start {
		loop = append(loop, cur)
		ns := adj[cur]
		next := ns[0]
		if next == prev {
			next = ns[1]
		}
		prev, cur = cur, next
		if len(loop) > len(adj) {
			return nil, fmt.Errorf("kernel: wire walk did not close: %w", ErrNotLoop)
		}
	}
	if len(loop) != len(adj) {
		return nil, fmt.Errorf("kernel: wire edges form %d vertices in loop, %d total: %w", len(loop), len(adj), ErrNotLoop)
	}
	return loop, nil
}

// OrderLoop orders a set of edges into a closed vertex loop.
func OrderLoop(edges []EdgeKey) ([]VertexID, error) {
	m := &Mesh{edges: make(map[EdgeKey]Edge, len(edges))}
	for _, k := range edges {
		m.edges[k] = Edge{}
	}
	return m.WireLoop()
}

// LoopEdges returns the edge keys of a closed vertex loop.
func LoopEdges(loop []VertexID) []EdgeKey {
	out := make([]EdgeKey, len(loop))
	for i, v := range loop {
		out[i] = Key(v, loop[(i+1)%len(loop)])
	}
	return out
}
