package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/archgen/internal/design"
	"github.com/roach88/archgen/internal/ir"
	"github.com/roach88/archgen/internal/sweep"
)

// sweepLabel marks a field value as a sweep: {sweep: [...]} or
// {sweep: {start, step, while | count}} or {sweep: {zip: [...]}}.
const sweepLabel = "sweep"

// parseValue turns a design field into a fixed value or a sweep.
func parseValue(field string, v cue.Value) (design.Value, error) {
	if err := v.Err(); err != nil {
		return design.Value{}, formatCUEError(err)
	}
	if v.IncompleteKind() == cue.StructKind {
		if sv := v.LookupPath(cue.MakePath(cue.Str(sweepLabel))); sv.Exists() {
			return parseSweep(field, v, sv)
		}
	}

	out, err := valueToIR(v)
	if err != nil {
		return design.Value{}, fieldErr(field, v.Pos(), "%v", err)
	}
	return design.Fixed(out), nil
}

func parseSweep(field string, parent, sv cue.Value) (design.Value, error) {
	if n := countFields(parent); n != 1 {
		return design.Value{}, fieldErr(field, parent.Pos(), "a sweep struct holds only %q, found %d fields", sweepLabel, n)
	}
	gen, err := parseGenerator(field, sv)
	if err != nil {
		return design.Value{}, err
	}
	out, err := sweep.Domain(gen)
	if err != nil {
		return design.Value{}, fieldErr(field, sv.Pos(), "%v", err)
	}
	return out, nil
}

// parseGenerator reads a literal list or a generator struct.
func parseGenerator(field string, v cue.Value) (sweep.Generator, error) {
	switch v.IncompleteKind() {
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var values []ir.IRValue
		for iter.Next() {
			elem, err := valueToIR(iter.Value())
			if err != nil {
				return nil, fieldErr(field, iter.Value().Pos(), "%v", err)
			}
			values = append(values, elem)
		}
		return sweep.Literal(values...), nil

	case cue.StructKind:
		if zip := v.LookupPath(cue.ParsePath("zip")); zip.Exists() {
			return parseZip(field, zip)
		}
		return parseStepGenerator(field, v)

	default:
		return nil, fieldErr(field, v.Pos(), "sweep must be a list or a generator struct, got %v", v.IncompleteKind())
	}
}

func parseZip(field string, zip cue.Value) (sweep.Generator, error) {
	iter, err := zip.List()
	if err != nil {
		return nil, fieldErr(field, zip.Pos(), "zip must be a list of generators")
	}
	var gens []sweep.Generator
	for iter.Next() {
		g, err := parseGenerator(fmt.Sprintf("%s.zip[%d]", field, len(gens)), iter.Value())
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}
	if len(gens) == 0 {
		return nil, fieldErr(field, zip.Pos(), "zip needs at least one generator")
	}
	return sweep.Combinational(gens...), nil
}

// parseStepGenerator reads {start, step} plus an optional while or count:
// while selects Condition, count selects Iteration, neither selects Single.
func parseStepGenerator(field string, v cue.Value) (sweep.Generator, error) {
	startVal := v.LookupPath(cue.ParsePath("start"))
	if !startVal.Exists() {
		return nil, fieldErr(field, v.Pos(), "generator needs a start value")
	}
	start, err := valueToIR(startVal)
	if err != nil {
		return nil, fieldErr(field+".start", startVal.Pos(), "%v", err)
	}

	stepSrc, err := stringField(v, "step")
	if err != nil {
		return nil, fieldErr(field+".step", v.Pos(), "%v", err)
	}
	step, err := stepFunc(v.Context(), stepSrc)
	if err != nil {
		return nil, fieldErr(field+".step", v.Pos(), "%v", err)
	}

	whileVal := v.LookupPath(cue.ParsePath("while"))
	countVal := v.LookupPath(cue.ParsePath("count"))
	switch {
	case whileVal.Exists() && countVal.Exists():
		return nil, fieldErr(field, v.Pos(), "generator takes while or count, not both")

	case whileVal.Exists():
		src, err := whileVal.String()
		if err != nil {
			return nil, fieldErr(field+".while", whileVal.Pos(), "while must be an expression string")
		}
		test, err := testFunc(v.Context(), src)
		if err != nil {
			return nil, fieldErr(field+".while", whileVal.Pos(), "%v", err)
		}
		return sweep.Condition(start, step, test), nil

	case countVal.Exists():
		n, err := countVal.Int64()
		if err != nil {
			return nil, fieldErr(field+".count", countVal.Pos(), "count must be an integer")
		}
		return sweep.Iteration(start, int(n), step), nil

	default:
		return sweep.Single(start, step), nil
	}
}
