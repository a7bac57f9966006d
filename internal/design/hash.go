package design

import (
	"github.com/roach88/archgen/internal/ir"
)

// Describe renders the session's resolved declarations as one value.
// Constraint conditions appear through the position pairs they resolved to.
func (s *Session) Describe() ir.IRObject {
	params := make(ir.IRArray, 0, s.graph.VertexCount())
	for _, p := range s.Parameters() {
		entry := ir.IRObject{
			"owner": ir.IRString(p.Ref.Owner),
			"field": ir.IRString(p.Ref.Field),
			"kind":  ir.IRString(p.Kind.String()),
			"sweep": ir.IRBool(p.Sweep),
		}
		if p.Sweep {
			entry["domain"] = ir.IRArray(p.Domain)
		} else {
			entry["value"] = p.Value
		}
		params = append(params, entry)
	}

	constraints := make(ir.IRArray, 0, s.graph.EdgeCount())
	for _, c := range s.Constraints() {
		pairs := make(ir.IRArray, len(c.Pairs))
		for i, pr := range c.Pairs {
			pairs[i] = ir.IRArray{ir.IRInt(pr.Src), ir.IRInt(pr.Trg)}
		}
		constraints = append(constraints, ir.IRObject{
			"kind":   ir.IRString(c.Kind.String()),
			"source": ir.IRString(c.Source.String()),
			"target": ir.IRString(c.Target.String()),
			"pairs":  pairs,
		})
	}

	events := make(ir.IRArray, len(s.events))
	for i, e := range s.events {
		subs := make(ir.IRArray, len(e.Subevents))
		for j, sub := range e.Subevents {
			subs[j] = ir.IRString(sub)
		}
		events[i] = ir.IRObject{
			"name":        ir.IRString(e.Name),
			"subevent":    subs,
			"performance": ir.IRString(e.Performance),
		}
	}

	metrics := make(ir.IRArray, len(s.metrics))
	for i, m := range s.metrics {
		metrics[i] = ir.IRObject{
			"name":        ir.IRString(m.Name),
			"unit":        ir.IRString(m.Unit),
			"aggregation": ir.IRString(m.Aggregation),
		}
	}

	return ir.IRObject{
		"parameters":  params,
		"constraints": constraints,
		"events":      events,
		"metrics":     metrics,
	}
}

// Hash identifies the session's declarations. Two sessions built from the
// same declarations in the same order hash equal; the name is not part of it.
func (s *Session) Hash() (string, error) {
	return ir.ContentHash(ir.DomainDesign, s.Describe())
}
