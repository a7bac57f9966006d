package enumerate

import (
	"fmt"

	"github.com/roach88/archgen/internal/design"
	"github.com/roach88/archgen/internal/graph"
	"github.com/roach88/archgen/internal/ir"
)

// Node is a vertex of the split graph.
type Node struct {
	Param    int        // index into Split.Params
	Position int        // domain position; 0 for a fixed parameter
	Value    ir.IRValue // the bound value; nil on an unsplit sweep vertex
	Concrete bool
}

// Link is an edge of the split graph.
type Link struct {
	Kind       design.Kind
	Constraint int  // index into the session's constraints; -1 if implicit
	Implicit   bool // sibling exclusion inserted by the splitter
}

type paramPair struct{ a, b int }

func pairOf(a, b int) paramPair {
	if a > b {
		a, b = b, a
	}
	return paramPair{a: a, b: b}
}

// Split is the fully split constraint graph: every vertex is bound to one
// value and every edge joins two concrete values.
type Split struct {
	Graph  *graph.Graph[Node, Link]
	Params []design.Parameter

	kinds map[paramPair]design.Kind
}

// Kind returns the constraint kind joining two parameters, if any.
func (s *Split) Kind(a, b int) (design.Kind, bool) {
	k, ok := s.kinds[pairOf(a, b)]
	return k, ok
}

// Node returns the node bound to a vertex.
func (s *Split) Node(v graph.VertexID) Node {
	return s.Graph.MustVertex(v)
}

// SplitSession expands every sweep parameter of s into concrete vertices.
//
// The working graph starts as a copy of the session's constraint graph.
// Each sweep vertex then gets one child per domain value, every constraint
// edge is replaced by concrete edges for its resolved position pairs, and
// sibling children not already joined get an implicit anti edge. The
// original sweep vertices and their edges are removed last.
func SplitSession(s *design.Session) (*Split, error) {
	src := s.Graph()
	out := &Split{
		Graph: graph.New[Node, Link](),
		kinds: make(map[paramPair]design.Kind),
	}

	// copy: one vertex per parameter, one edge per constraint
	orig := make(map[graph.VertexID]graph.VertexID)
	for _, id := range src.Vertices() {
		p := src.MustVertex(id)
		idx := len(out.Params)
		out.Params = append(out.Params, p)
		node := Node{Param: idx, Concrete: !p.Sweep}
		if !p.Sweep {
			node.Value = p.Value
		}
		orig[id] = out.Graph.AddVertex(node)
	}

	type pending struct {
		from, to graph.VertexID
		c        design.Constraint
		index    int
	}
	var constraints []pending
	for i, e := range src.Edges() {
		from, to := orig[e.From], orig[e.To]
		if _, err := out.Graph.AddEdge(from, to, Link{Kind: e.Data.Kind, Constraint: i}); err != nil {
			return nil, fmt.Errorf("copy constraint %s -> %s: %w", e.Data.Source, e.Data.Target, err)
		}
		constraints = append(constraints, pending{from: from, to: to, c: e.Data, index: i})
		out.kinds[pairOf(out.Graph.MustVertex(from).Param, out.Graph.MustVertex(to).Param)] = e.Data.Kind
	}

	// materialize children of every sweep vertex
	children := make(map[graph.VertexID][]graph.VertexID)
	var sweeps []graph.VertexID
	for _, v := range out.Graph.Vertices() {
		n := out.Graph.MustVertex(v)
		if n.Concrete {
			continue
		}
		sweeps = append(sweeps, v)
		p := out.Params[n.Param]
		kids := make([]graph.VertexID, len(p.Domain))
		for i, val := range p.Domain {
			kids[i] = out.Graph.AddVertex(Node{Param: n.Param, Position: i, Value: val, Concrete: true})
		}
		children[v] = kids
	}

	// rewire each constraint onto its concrete value pairs
	for _, pc := range constraints {
		srcKids, trgKids := children[pc.from], children[pc.to]
		for _, pr := range pc.c.Pairs {
			if pr.Src >= len(srcKids) || pr.Trg >= len(trgKids) {
				return nil, fmt.Errorf("constraint %s -> %s: pair (%d,%d) outside domains", pc.c.Source, pc.c.Target, pr.Src, pr.Trg)
			}
			link := Link{Kind: pc.c.Kind, Constraint: pc.index}
			if _, err := out.Graph.AddEdge(srcKids[pr.Src], trgKids[pr.Trg], link); err != nil {
				return nil, fmt.Errorf("constraint %s -> %s: %w", pc.c.Source, pc.c.Target, err)
			}
		}
	}

	// siblings of one sweep exclude each other
	for _, v := range sweeps {
		kids := children[v]
		for i := 0; i < len(kids); i++ {
			for j := i + 1; j < len(kids); j++ {
				if _, ok := out.Graph.EdgeBetween(kids[i], kids[j]); ok {
					continue
				}
				if _, err := out.Graph.AddEdge(kids[i], kids[j], Link{Kind: design.Anti, Constraint: -1, Implicit: true}); err != nil {
					return nil, err
				}
			}
		}
	}

	for _, v := range sweeps {
		if err := out.Graph.RemoveVertex(v); err != nil {
			return nil, err
		}
	}
	return out, nil
}
