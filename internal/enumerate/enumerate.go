package enumerate

import (
	"context"
	"fmt"

	"github.com/roach88/archgen/internal/design"
	"github.com/roach88/archgen/internal/ir"
)

// Run enumerates every legal configuration of s.
//
// An infeasible design is not an error: the result has empty catalogs and
// no pairs, and "no configurations" is logged. Declaration problems were
// already rejected by the session; Run fails only on merge collisions,
// limit violations, or a cancelled context.
func Run(ctx context.Context, s *design.Session, opts ...Option) (*Result, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.logger.With("design", s.Name())

	split, err := SplitSession(s)
	if err != nil {
		return nil, fmt.Errorf("split: %w", err)
	}
	log.Debug("split complete",
		"parameters", len(split.Params),
		"vertices", split.Graph.VertexCount(),
		"edges", split.Graph.EdgeCount())

	comps := Group(split)
	log.Info("components grouped", "components", len(comps))

	fragQuota := NewQuota("fragments", cfg.maxFragments)
	groups := make([]Alternatives, 0, len(comps))
	for i, c := range comps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frags, err := Collapse(split, c, fragQuota)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		refs := make([]ir.FieldRef, len(c.Params))
		for j, p := range c.Params {
			refs[j] = split.Params[p].Ref
		}
		class := Classify(frags)
		log.Debug("component collapsed",
			"component", i,
			"parameters", len(refs),
			"fragments", len(frags),
			"class", class.String())
		groups = append(groups, Alternatives{Params: refs, Fragments: frags, Class: class})
	}

	pairQuota := NewQuota("configurations", cfg.maxConfigurations)
	res, err := Reduce(ctx, groups, fragQuota, pairQuota)
	if err != nil {
		return nil, fmt.Errorf("reduce: %w", err)
	}

	if res.Infeasible() {
		log.Warn("no configurations", "components", len(comps))
		return res, nil
	}
	log.Info("enumeration complete",
		"architectures", len(res.Architectures),
		"workloads", len(res.Workloads),
		"configurations", len(res.Pairs),
		"mixed", res.Mixed,
		"peak_fragments", fragQuota.Peak())
	return res, nil
}
