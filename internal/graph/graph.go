package graph

import (
	"errors"
	"fmt"
	"slices"
)

// Sentinel errors.
var (
	// ErrVertexNotFound indicates a handle that was never issued or was removed.
	ErrVertexNotFound = errors.New("graph: vertex not found")

	// ErrEdgeNotFound indicates an edge handle that was never issued or was removed.
	ErrEdgeNotFound = errors.New("graph: edge not found")

	// ErrLoopNotAllowed indicates an attempt to join a vertex to itself.
	ErrLoopNotAllowed = errors.New("graph: self-loop not allowed")

	// ErrMultiEdgeNotAllowed indicates a second edge between the same pair.
	ErrMultiEdgeNotAllowed = errors.New("graph: multi-edges not allowed")
)

// VertexID is a stable vertex handle.
type VertexID int

// EdgeID is a stable edge handle.
type EdgeID int

// Edge is a snapshot of one edge. From and To keep the order given to
// AddEdge; the graph itself treats the edge as undirected.
type Edge[E any] struct {
	ID   EdgeID
	From VertexID
	To   VertexID
	Data E
}

// Other returns the endpoint opposite v.
func (e Edge[E]) Other(v VertexID) VertexID {
	if e.From == v {
		return e.To
	}
	return e.From
}

type vertexSlot[V any] struct {
	data     V
	alive    bool
	incident []EdgeID
}

type edgeSlot[E any] struct {
	edge  Edge[E]
	alive bool
}

type pairKey struct{ lo, hi VertexID }

func keyOf(a, b VertexID) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// Graph is an undirected arena graph with vertex payload V and edge payload E.
// The zero value is not usable; call New.
type Graph[V, E any] struct {
	vertices []vertexSlot[V]
	edges    []edgeSlot[E]
	pairs    map[pairKey]EdgeID

	liveVertices int
	liveEdges    int
}

// New returns an empty graph.
func New[V, E any]() *Graph[V, E] {
	return &Graph[V, E]{pairs: make(map[pairKey]EdgeID)}
}

// AddVertex inserts a vertex and returns its handle.
func (g *Graph[V, E]) AddVertex(data V) VertexID {
	id := VertexID(len(g.vertices))
	g.vertices = append(g.vertices, vertexSlot[V]{data: data, alive: true})
	g.liveVertices++
	return id
}

// HasVertex reports whether id refers to a live vertex.
func (g *Graph[V, E]) HasVertex(id VertexID) bool {
	return id >= 0 && int(id) < len(g.vertices) && g.vertices[id].alive
}

// Vertex returns the payload of a live vertex.
func (g *Graph[V, E]) Vertex(id VertexID) (V, bool) {
	if !g.HasVertex(id) {
		var zero V
		return zero, false
	}
	return g.vertices[id].data, true
}

// MustVertex is like Vertex but panics on an unknown handle.
func (g *Graph[V, E]) MustVertex(id VertexID) V {
	v, ok := g.Vertex(id)
	if !ok {
		panic(fmt.Errorf("%w: %d", ErrVertexNotFound, id))
	}
	return v
}

// RemoveVertex deletes a vertex and every edge incident to it.
func (g *Graph[V, E]) RemoveVertex(id VertexID) error {
	if !g.HasVertex(id) {
		return fmt.Errorf("%w: %d", ErrVertexNotFound, id)
	}
	for _, eid := range slices.Clone(g.vertices[id].incident) {
		if err := g.RemoveEdge(eid); err != nil {
			return err
		}
	}
	var zero V
	g.vertices[id] = vertexSlot[V]{data: zero}
	g.liveVertices--
	return nil
}

// AddEdge joins from and to. Loops and parallel edges are rejected.
func (g *Graph[V, E]) AddEdge(from, to VertexID, data E) (EdgeID, error) {
	if !g.HasVertex(from) {
		return -1, fmt.Errorf("%w: %d", ErrVertexNotFound, from)
	}
	if !g.HasVertex(to) {
		return -1, fmt.Errorf("%w: %d", ErrVertexNotFound, to)
	}
	if from == to {
		return -1, fmt.Errorf("%w: %d", ErrLoopNotAllowed, from)
	}
	key := keyOf(from, to)
	if existing, ok := g.pairs[key]; ok {
		return existing, fmt.Errorf("%w: %d-%d", ErrMultiEdgeNotAllowed, from, to)
	}

	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, edgeSlot[E]{
		edge:  Edge[E]{ID: id, From: from, To: to, Data: data},
		alive: true,
	})
	g.pairs[key] = id
	g.vertices[from].incident = append(g.vertices[from].incident, id)
	g.vertices[to].incident = append(g.vertices[to].incident, id)
	g.liveEdges++
	return id, nil
}

// Edge returns a snapshot of a live edge.
func (g *Graph[V, E]) Edge(id EdgeID) (Edge[E], bool) {
	if id < 0 || int(id) >= len(g.edges) || !g.edges[id].alive {
		return Edge[E]{}, false
	}
	return g.edges[id].edge, true
}

// EdgeBetween returns the edge joining a and b in either direction.
func (g *Graph[V, E]) EdgeBetween(a, b VertexID) (Edge[E], bool) {
	id, ok := g.pairs[keyOf(a, b)]
	if !ok {
		return Edge[E]{}, false
	}
	return g.Edge(id)
}

// RemoveEdge deletes an edge.
func (g *Graph[V, E]) RemoveEdge(id EdgeID) error {
	e, ok := g.Edge(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrEdgeNotFound, id)
	}
	delete(g.pairs, keyOf(e.From, e.To))
	for _, v := range []VertexID{e.From, e.To} {
		slot := &g.vertices[v]
		slot.incident = slices.DeleteFunc(slot.incident, func(x EdgeID) bool { return x == id })
	}
	g.edges[id] = edgeSlot[E]{}
	g.liveEdges--
	return nil
}

// Incident returns the live edges touching v in insertion order.
func (g *Graph[V, E]) Incident(v VertexID) []Edge[E] {
	if !g.HasVertex(v) {
		return nil
	}
	out := make([]Edge[E], 0, len(g.vertices[v].incident))
	for _, id := range g.vertices[v].incident {
		out = append(out, g.edges[id].edge)
	}
	return out
}

// Vertices returns every live vertex handle in ascending order.
func (g *Graph[V, E]) Vertices() []VertexID {
	out := make([]VertexID, 0, g.liveVertices)
	for i := range g.vertices {
		if g.vertices[i].alive {
			out = append(out, VertexID(i))
		}
	}
	return out
}

// Edges returns every live edge in ascending handle order.
func (g *Graph[V, E]) Edges() []Edge[E] {
	out := make([]Edge[E], 0, g.liveEdges)
	for i := range g.edges {
		if g.edges[i].alive {
			out = append(out, g.edges[i].edge)
		}
	}
	return out
}

// VertexCount returns the number of live vertices.
func (g *Graph[V, E]) VertexCount() int { return g.liveVertices }

// EdgeCount returns the number of live edges.
func (g *Graph[V, E]) EdgeCount() int { return g.liveEdges }
