package enumerate

import (
	"slices"

	"github.com/roach88/archgen/internal/graph"
)

// Component is a maximal set of concrete vertices joined by any edge.
type Component struct {
	Vertices []graph.VertexID
	// Params lists the parameter indices present, ascending.
	Params []int
}

// Group labels the connected components of the split graph, ignoring kind.
//
// Two parameters joined by a constraint always share a component, even when
// the constraint relates no value pair and so left no edge behind.
func Group(s *Split) []Component {
	comps := s.Graph.Components(nil)

	parent := make([]int, len(comps))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}

	owner := make(map[int]int, len(s.Params))
	for i, vs := range comps {
		for _, v := range vs {
			owner[s.Node(v).Param] = i
		}
	}
	for pp := range s.kinds {
		ca, okA := owner[pp.a]
		cb, okB := owner[pp.b]
		if !okA || !okB {
			continue
		}
		ra, rb := find(ca), find(cb)
		if ra != rb {
			parent[max(ra, rb)] = min(ra, rb)
		}
	}

	// Roots keep the order of their smallest member, which is the order
	// Components already returns.
	var roots []int
	merged := make(map[int][]graph.VertexID, len(comps))
	for i, vs := range comps {
		r := find(i)
		if _, ok := merged[r]; !ok {
			roots = append(roots, r)
		}
		merged[r] = append(merged[r], vs...)
	}

	out := make([]Component, len(roots))
	for i, r := range roots {
		vs := merged[r]
		slices.Sort(vs)
		seen := make(map[int]bool)
		var params []int
		for _, v := range vs {
			p := s.Node(v).Param
			if !seen[p] {
				seen[p] = true
				params = append(params, p)
			}
		}
		slices.Sort(params)
		out[i] = Component{Vertices: vs, Params: params}
	}
	return out
}
