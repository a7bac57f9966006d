package graph

import "slices"

// Components labels the connected components of the whole graph, following
// only edges for which keep returns true. A nil keep follows every edge.
//
// Components are ordered by their smallest vertex handle and each component
// lists its vertices in ascending order, so the result is deterministic.
//
// Time:   O(V + E).
// Memory: O(V) for visited flags and the BFS queue.
func (g *Graph[V, E]) Components(keep func(Edge[E]) bool) [][]VertexID {
	return g.ComponentsOf(g.Vertices(), keep)
}

// ComponentsOf is Components restricted to the induced subgraph on subset.
// Edges leaving the subset are ignored. Unknown handles are skipped.
func (g *Graph[V, E]) ComponentsOf(subset []VertexID, keep func(Edge[E]) bool) [][]VertexID {
	in := make(map[VertexID]bool, len(subset))
	for _, v := range subset {
		if g.HasVertex(v) {
			in[v] = true
		}
	}

	roots := make([]VertexID, 0, len(in))
	for v := range in {
		roots = append(roots, v)
	}
	slices.Sort(roots)

	seen := make(map[VertexID]bool, len(in))
	var comps [][]VertexID
	for _, root := range roots {
		if seen[root] {
			continue
		}
		queue := []VertexID{root}
		seen[root] = true

		for qi := 0; qi < len(queue); qi++ {
			u := queue[qi]
			for _, id := range g.vertices[u].incident {
				e := g.edges[id].edge
				if keep != nil && !keep(e) {
					continue
				}
				w := e.Other(u)
				if in[w] && !seen[w] {
					seen[w] = true
					queue = append(queue, w)
				}
			}
		}
		slices.Sort(queue)
		comps = append(comps, queue)
	}
	return comps
}
