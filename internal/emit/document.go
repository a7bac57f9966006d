package emit

import (
	"bytes"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/roach88/archgen/internal/design"
	"github.com/roach88/archgen/internal/ir"
)

// ArchitectureDocument wraps an architecture tree in its document root.
// The attribute and module sections are always present.
func ArchitectureDocument(tree ir.IRObject) ir.IRObject {
	body := tree.Clone()
	if _, ok := body["attribute"]; !ok {
		body["attribute"] = ir.IRObject{}
	}
	if _, ok := body["module"]; !ok {
		body["module"] = ir.IRObject{}
	}
	return ir.IRObject{"architecture": body}
}

// WorkloadDocument wraps a workload tree in its document root.
func WorkloadDocument(tree ir.IRObject) ir.IRObject {
	return ir.IRObject{"workload": tree.Clone()}
}

// EventDocument renders the pass-through event declarations.
func EventDocument(events []design.Event) ir.IRObject {
	body := make(ir.IRObject, len(events))
	for _, e := range events {
		subs := make(ir.IRArray, len(e.Subevents))
		for i, s := range e.Subevents {
			subs[i] = ir.IRString(s)
		}
		entry := ir.IRObject{"subevent": subs}
		if e.Performance != "" {
			entry["performance"] = ir.IRString(e.Performance)
		}
		body[e.Name] = entry
	}
	return ir.IRObject{"event": body}
}

// MetricDocument renders the pass-through metric declarations.
func MetricDocument(metrics []design.Metric) ir.IRObject {
	body := make(ir.IRObject, len(metrics))
	for _, m := range metrics {
		body[m.Name] = ir.IRObject{
			"unit":        ir.IRString(m.Unit),
			"aggregation": ir.IRString(m.Aggregation),
		}
	}
	return ir.IRObject{"metric": body}
}

// MarshalYAML encodes v as a YAML document with two-space indentation.
// Mapping keys are written in canonical order and floats keep a decimal
// point, so the bytes depend only on the value.
func MarshalYAML(v ir.IRValue) ([]byte, error) {
	node, err := toNode(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func toNode(v ir.IRValue) (*yaml.Node, error) {
	switch val := v.(type) {
	case ir.IRString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(val)}, nil
	case ir.IRInt:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(val), 10)}, nil
	case ir.IRFloat:
		b, err := ir.MarshalIRValue(val)
		if err != nil {
			return nil, err
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: string(b)}, nil
	case ir.IRBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(bool(val))}, nil
	case ir.IRArray:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, elem := range val {
			child, err := toNode(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	case ir.IRObject:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range val.SortedKeys() {
			child, err := toNode(val[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				child)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unsupported value %T", v)
	}
}

// UnmarshalYAML decodes a document written by MarshalYAML.
func UnmarshalYAML(data []byte) (ir.IRValue, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return ir.FromGo(raw)
}
