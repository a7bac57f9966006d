package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/archgen/internal/design"
	"github.com/roach88/archgen/internal/ir"
	"github.com/roach88/archgen/internal/sweep"
)

// resultLabel holds the evaluated expression inside the template struct.
const resultLabel = "result"

// expression is a CUE expression over a fixed set of variables. It is
// compiled once as the template
//
//	x: _
//	result: (<src>)
//
// and evaluated by unifying concrete values into the variables.
type expression struct {
	src  string
	vars []string
	ctx  *cue.Context
	tmpl cue.Value
}

func compileExpression(ctx *cue.Context, src string, vars ...string) (*expression, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("empty expression")
	}
	var b strings.Builder
	for _, v := range vars {
		fmt.Fprintf(&b, "%s: _\n", v)
	}
	fmt.Fprintf(&b, "%s: (%s)\n", resultLabel, src)

	tmpl := ctx.CompileString(b.String(), cue.Filename("expression"))
	if err := tmpl.Err(); err != nil {
		return nil, fmt.Errorf("expression %q: %w", src, err)
	}
	return &expression{src: src, vars: vars, ctx: ctx, tmpl: tmpl}, nil
}

// eval binds args to the expression variables in order.
func (e *expression) eval(args ...ir.IRValue) (ir.IRValue, error) {
	if len(args) != len(e.vars) {
		return nil, fmt.Errorf("expression %q: want %d arguments, got %d", e.src, len(e.vars), len(args))
	}
	v := e.tmpl
	for i, name := range e.vars {
		lit, err := ir.MarshalIRValue(args[i])
		if err != nil {
			return nil, fmt.Errorf("expression %q: binding %s: %w", e.src, name, err)
		}
		v = v.FillPath(cue.MakePath(cue.Str(name)), e.ctx.CompileBytes(lit))
	}

	out, err := valueToIR(v.LookupPath(cue.MakePath(cue.Str(resultLabel))))
	if err != nil {
		return nil, fmt.Errorf("expression %q: %w", e.src, err)
	}
	return out, nil
}

func (e *expression) evalBool(args ...ir.IRValue) (bool, error) {
	out, err := e.eval(args...)
	if err != nil {
		return false, err
	}
	b, ok := out.(ir.IRBool)
	if !ok {
		return false, fmt.Errorf("expression %q: want bool, got %s", e.src, ir.String(out))
	}
	return bool(b), nil
}

// indexPredicate compiles an expression over the position i.
func indexPredicate(ctx *cue.Context, src string) (design.IndexPredicate, error) {
	e, err := compileExpression(ctx, src, "i")
	if err != nil {
		return nil, err
	}
	return func(i int) (bool, error) {
		return e.evalBool(ir.IRInt(i))
	}, nil
}

// comparisonPredicate compiles an expression over the values src and trg.
func comparisonPredicate(ctx *cue.Context, src string) (design.ComparisonPredicate, error) {
	e, err := compileExpression(ctx, src, "src", "trg")
	if err != nil {
		return nil, err
	}
	return func(a, b ir.IRValue) (bool, error) {
		return e.evalBool(a, b)
	}, nil
}

// stepFunc compiles a sweep step over the current value x.
func stepFunc(ctx *cue.Context, src string) (sweep.Step, error) {
	e, err := compileExpression(ctx, src, "x")
	if err != nil {
		return nil, err
	}
	return func(x ir.IRValue) (ir.IRValue, error) {
		return e.eval(x)
	}, nil
}

// testFunc compiles a sweep continuation test over the value x.
func testFunc(ctx *cue.Context, src string) (sweep.Test, error) {
	e, err := compileExpression(ctx, src, "x")
	if err != nil {
		return nil, err
	}
	return func(x ir.IRValue) (bool, error) {
		return e.evalBool(x)
	}, nil
}

// valueToIR converts a concrete CUE value into an IRValue.
func valueToIR(v cue.Value) (ir.IRValue, error) {
	if err := v.Err(); err != nil {
		return nil, err
	}
	switch v.Kind() {
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, err
		}
		return ir.IRBool(b), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, err
		}
		return ir.IRInt(n), nil
	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return ir.IRFloat(f), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, err
		}
		return ir.IRString(s), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, err
		}
		arr := ir.IRArray{}
		for iter.Next() {
			elem, err := valueToIR(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", len(arr), err)
			}
			arr = append(arr, elem)
		}
		return arr, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, err
		}
		obj := ir.IRObject{}
		for iter.Next() {
			elem, err := valueToIR(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", iter.Label(), err)
			}
			obj[iter.Label()] = elem
		}
		return obj, nil
	case cue.NullKind:
		return nil, fmt.Errorf("null is not a valid field value")
	default:
		return nil, fmt.Errorf("value is not concrete (%v)", v.IncompleteKind())
	}
}
