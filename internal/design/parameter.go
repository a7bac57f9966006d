package design

import (
	"fmt"

	"github.com/roach88/archgen/internal/ir"
)

// Value is a field's declared content: either one value or a sweep domain.
type Value struct {
	single ir.IRValue
	domain []ir.IRValue
	sweep  bool
}

// Fixed declares a single value. A list passed here is one value, not a sweep.
func Fixed(v ir.IRValue) Value {
	return Value{single: v}
}

// Sweep declares an ordered domain of candidate values.
func Sweep(values ...ir.IRValue) Value {
	return Value{domain: values, sweep: true}
}

// SweepOf declares a sweep from plain Go values.
func SweepOf(values ...any) (Value, error) {
	domain := make([]ir.IRValue, len(values))
	for i, v := range values {
		iv, err := ir.FromGo(v)
		if err != nil {
			return Value{}, fmt.Errorf("sweep[%d]: %w", i, err)
		}
		domain[i] = iv
	}
	return Sweep(domain...), nil
}

// IsSweep reports whether the value is a sweep domain.
func (v Value) IsSweep() bool { return v.sweep }

// Candidates returns the sweep domain, or a one-element list for a fixed value.
func (v Value) Candidates() []ir.IRValue {
	if v.sweep {
		return v.domain
	}
	return []ir.IRValue{v.single}
}

// Parameter is one declared field. Read-only after construction.
type Parameter struct {
	Ref    ir.FieldRef
	Kind   ir.FieldKind
	Value  ir.IRValue   // set when Sweep is false
	Domain []ir.IRValue // set when Sweep is true
	Sweep  bool
}

// DocDomain returns the document the parameter is written to.
func (p Parameter) DocDomain() ir.Domain { return p.Kind.Domain() }

// Candidates returns the values the parameter may take.
func (p Parameter) Candidates() []ir.IRValue {
	if p.Sweep {
		return p.Domain
	}
	return []ir.IRValue{p.Value}
}

// Size returns the number of candidate values.
func (p Parameter) Size() int {
	if p.Sweep {
		return len(p.Domain)
	}
	return 1
}

func newParameter(ref ir.FieldRef, kind ir.FieldKind, v Value) (Parameter, error) {
	p := Parameter{Ref: ref, Kind: kind, Sweep: v.sweep}
	if !v.sweep {
		if v.single == nil {
			return Parameter{}, schemaErr(ErrCodeEmptyDomain, ref, "field has no value")
		}
		p.Value = ir.Clone(v.single)
		return p, nil
	}
	if len(v.domain) == 0 {
		return Parameter{}, schemaErr(ErrCodeEmptyDomain, ref, "sweep has no candidate values")
	}
	p.Domain = make([]ir.IRValue, len(v.domain))
	for i, c := range v.domain {
		if c == nil {
			return Parameter{}, schemaErr(ErrCodeEmptyDomain, ref, "sweep candidate %d is null", i)
		}
		p.Domain[i] = ir.Clone(c)
	}
	return p, nil
}

// instanceValue applies the instance sweep rule: a fixed list whose first
// element is itself a list or mapping is a domain of instance shapes.
func instanceValue(v Value) Value {
	if v.sweep {
		return v
	}
	arr, ok := v.single.(ir.IRArray)
	if !ok || len(arr) == 0 || !ir.IsComposite(arr[0]) {
		return v
	}
	return Sweep(arr...)
}
