package enumerate

import (
	"fmt"
	"slices"

	"github.com/roach88/archgen/internal/design"
	"github.com/roach88/archgen/internal/graph"
	"github.com/roach88/archgen/internal/ir"
)

// assignment picks one concrete vertex per parameter, keyed by parameter index.
type assignment map[int]graph.VertexID

// compatible reports whether two concrete values may appear in one
// configuration: siblings never may, an anti edge forbids the pair, and
// parameters joined by a direct constraint need a direct edge.
func (s *Split) compatible(u, w graph.VertexID) bool {
	pu, pw := s.Node(u).Param, s.Node(w).Param
	if pu == pw {
		return u == w
	}
	e, hasEdge := s.Graph.EdgeBetween(u, w)
	if hasEdge && e.Data.Kind == design.Anti {
		return false
	}
	if k, ok := s.Kind(pu, pw); ok && k == design.Direct {
		return hasEdge && e.Data.Kind == design.Direct
	}
	return true
}

func (s *Split) fits(a assignment, v graph.VertexID) bool {
	for _, u := range a {
		if !s.compatible(u, v) {
			return false
		}
	}
	return true
}

// directBlocks partitions a component's parameters by direct constraints.
// Parameters with no direct constraint form singleton blocks. Blocks are
// ordered by their smallest parameter.
func (s *Split) directBlocks(params []int) [][]int {
	parent := make(map[int]int, len(params))
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	for _, p := range params {
		parent[p] = p
	}
	for i, a := range params {
		for _, b := range params[i+1:] {
			if k, ok := s.Kind(a, b); ok && k == design.Direct {
				ra, rb := find(a), find(b)
				if ra != rb {
					parent[max(ra, rb)] = min(ra, rb)
				}
			}
		}
	}

	byRoot := make(map[int][]int)
	var roots []int
	for _, p := range params {
		r := find(p)
		if _, ok := byRoot[r]; !ok {
			roots = append(roots, r)
		}
		byRoot[r] = append(byRoot[r], p)
	}
	slices.Sort(roots)
	out := make([][]int, len(roots))
	for i, r := range roots {
		out[i] = byRoot[r]
	}
	return out
}

// blockOptions enumerates every assignment of a direct block. Each
// assignment lies inside one direct sub-group, so sub-groups are
// enumerated independently and concatenated in sub-group order. The quota
// is checked on every assignment, so an oversized block stops before it
// is built.
func (s *Split) blockOptions(block []int, subgroups [][]graph.VertexID, q *Quota) ([]assignment, error) {
	inBlock := make(map[int]bool, len(block))
	for _, p := range block {
		inBlock[p] = true
	}

	var out []assignment
	for _, sg := range subgroups {
		if !inBlock[s.Node(sg[0]).Param] {
			continue
		}
		candidates := make(map[int][]graph.VertexID, len(block))
		for _, v := range sg {
			p := s.Node(v).Param
			candidates[p] = append(candidates[p], v)
		}
		if len(candidates) != len(block) {
			continue // a parameter of the block has no value here
		}

		cur := make(assignment, len(block))
		var walk func(i int) error
		walk = func(i int) error {
			if i == len(block) {
				cp := make(assignment, len(cur))
				for k, v := range cur {
					cp[k] = v
				}
				out = append(out, cp)
				return q.Check(len(out))
			}
			p := block[i]
			for _, v := range candidates[p] {
				if !s.fits(cur, v) {
					continue
				}
				cur[p] = v
				if err := walk(i + 1); err != nil {
					return err
				}
				delete(cur, p)
			}
			return nil
		}
		if err := walk(0); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Collapse produces the fragments of one component: the mutually exclusive
// alternatives it contributes to a configuration. The quota bounds the
// number of alternatives explored.
func Collapse(s *Split, c Component, q *Quota) ([]ir.Fragment, error) {
	subgroups := s.Graph.ComponentsOf(c.Vertices, func(e graph.Edge[Link]) bool {
		return e.Data.Kind == design.Direct
	})

	combos := []assignment{{}}
	for _, block := range s.directBlocks(c.Params) {
		options, err := s.blockOptions(block, subgroups, q)
		if err != nil {
			return nil, err
		}
		var next []assignment
		for _, base := range combos {
			for _, opt := range options {
				if !s.fitsAll(base, opt) {
					continue
				}
				merged := make(assignment, len(base)+len(opt))
				for k, v := range base {
					merged[k] = v
				}
				for k, v := range opt {
					merged[k] = v
				}
				next = append(next, merged)
				if err := q.Check(len(next)); err != nil {
					return nil, err
				}
			}
		}
		combos = next
		if len(combos) == 0 {
			return nil, nil
		}
	}

	seen := make(map[string]bool, len(combos))
	out := make([]ir.Fragment, 0, len(combos))
	for _, a := range combos {
		f, err := s.fragment(c.Params, a)
		if err != nil {
			return nil, err
		}
		h, err := ir.FragmentHash(f)
		if err != nil {
			return nil, err
		}
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, f)
	}
	return out, nil
}

func (s *Split) fitsAll(a, b assignment) bool {
	for _, v := range b {
		if !s.fits(a, v) {
			return false
		}
	}
	return true
}

// fragment writes every chosen value into a fragment tree, in parameter order.
func (s *Split) fragment(params []int, a assignment) (ir.Fragment, error) {
	f := ir.NewFragment()
	for _, p := range params {
		v, ok := a[p]
		if !ok {
			return ir.Fragment{}, fmt.Errorf("parameter %s has no value", s.Params[p].Ref)
		}
		param := s.Params[p]
		if err := f.Set(param.Kind, param.Ref, s.Node(v).Value); err != nil {
			return ir.Fragment{}, err
		}
	}
	return f, nil
}
