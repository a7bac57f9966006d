package sweep

import (
	"errors"
	"fmt"

	"github.com/roach88/archgen/internal/design"
	"github.com/roach88/archgen/internal/ir"
)

// DefaultMaxSteps bounds Condition generators whose predicate never fails.
const DefaultMaxSteps = 4096

// ErrUnequalLengths indicates Combinational generators of different lengths.
var ErrUnequalLengths = errors.New("sweep: generators produce different lengths")

// Step derives the next value from the current one.
type Step func(ir.IRValue) (ir.IRValue, error)

// Test decides whether a generated value is kept.
type Test func(ir.IRValue) (bool, error)

// Generator produces an ordered sweep domain.
type Generator interface {
	Generate() ([]ir.IRValue, error)
}

// StepsExceededError is returned when a Condition generator runs past its cap.
type StepsExceededError struct {
	Steps    int
	MaxSteps int
}

func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("sweep exceeded max steps (%d >= %d)", e.Steps, e.MaxSteps)
}

// Domain runs g and wraps the result as a sweep declaration.
func Domain(g Generator) (design.Value, error) {
	values, err := g.Generate()
	if err != nil {
		return design.Value{}, err
	}
	if len(values) == 0 {
		return design.Value{}, fmt.Errorf("sweep: generator produced no values")
	}
	return design.Sweep(values...), nil
}

type single struct {
	value ir.IRValue
	step  Step
}

// Single yields exactly one value: step(value).
func Single(value ir.IRValue, step Step) Generator {
	return single{value: value, step: step}
}

func (s single) Generate() ([]ir.IRValue, error) {
	v, err := s.step(s.value)
	if err != nil {
		return nil, fmt.Errorf("single: %w", err)
	}
	return []ir.IRValue{v}, nil
}

type condition struct {
	start    ir.IRValue
	step     Step
	while    Test
	maxSteps int
}

// ConditionOption configures a Condition generator.
type ConditionOption func(*condition)

// WithMaxSteps overrides DefaultMaxSteps.
func WithMaxSteps(n int) ConditionOption {
	return func(c *condition) {
		if n > 0 {
			c.maxSteps = n
		}
	}
}

// Condition yields start, then step(start), step(step(start)), and so on
// for as long as while holds for the new value. start is always included.
func Condition(start ir.IRValue, step Step, while Test, opts ...ConditionOption) Generator {
	c := condition{start: start, step: step, while: while, maxSteps: DefaultMaxSteps}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c condition) Generate() ([]ir.IRValue, error) {
	out := []ir.IRValue{c.start}
	cur := c.start
	for {
		next, err := c.step(cur)
		if err != nil {
			return nil, fmt.Errorf("condition step %d: %w", len(out), err)
		}
		ok, err := c.while(next)
		if err != nil {
			return nil, fmt.Errorf("condition test %d: %w", len(out), err)
		}
		if !ok {
			return out, nil
		}
		if len(out) >= c.maxSteps {
			return nil, &StepsExceededError{Steps: len(out), MaxSteps: c.maxSteps}
		}
		out = append(out, next)
		cur = next
	}
}

type iteration struct {
	start ir.IRValue
	count int
	step  Step
}

// Iteration yields count values starting at start. When start is a list
// the step applies to each element and every yielded value is a list.
func Iteration(start ir.IRValue, count int, step Step) Generator {
	return iteration{start: start, count: count, step: step}
}

func (it iteration) Generate() ([]ir.IRValue, error) {
	if it.count < 0 {
		return nil, fmt.Errorf("iteration: negative count %d", it.count)
	}
	row, isRow := it.start.(ir.IRArray)
	if !isRow {
		row = ir.IRArray{it.start}
	}
	cur := cloneRow(row)

	out := make([]ir.IRValue, 0, it.count)
	for n := 0; n < it.count; n++ {
		if isRow {
			out = append(out, cloneRow(cur))
		} else {
			out = append(out, cur[0])
		}
		next := make(ir.IRArray, len(cur))
		for i, v := range cur {
			nv, err := it.step(v)
			if err != nil {
				return nil, fmt.Errorf("iteration %d[%d]: %w", n, i, err)
			}
			next[i] = nv
		}
		cur = next
	}
	return out, nil
}

type combinational struct {
	gens []Generator
}

// Combinational zips equal-length generators. Step i of the result is the
// concatenation of step i of every generator, scalars counting as
// one-element rows.
func Combinational(gens ...Generator) Generator {
	return combinational{gens: gens}
}

func (c combinational) Generate() ([]ir.IRValue, error) {
	if len(c.gens) == 0 {
		return nil, nil
	}
	results := make([][]ir.IRValue, len(c.gens))
	for i, g := range c.gens {
		vs, err := g.Generate()
		if err != nil {
			return nil, fmt.Errorf("combinational[%d]: %w", i, err)
		}
		if i > 0 && len(vs) != len(results[0]) {
			return nil, fmt.Errorf("%w: %d and %d", ErrUnequalLengths, len(results[0]), len(vs))
		}
		results[i] = vs
	}

	out := make([]ir.IRValue, len(results[0]))
	for step := range out {
		var row ir.IRArray
		for _, vs := range results {
			if arr, ok := vs[step].(ir.IRArray); ok {
				row = append(row, arr...)
			} else {
				row = append(row, vs[step])
			}
		}
		out[step] = row
	}
	return out, nil
}

// Literal yields the given values unchanged.
func Literal(values ...ir.IRValue) Generator {
	return literal(values)
}

type literal []ir.IRValue

func (l literal) Generate() ([]ir.IRValue, error) {
	return append([]ir.IRValue(nil), l...), nil
}

func cloneRow(row ir.IRArray) ir.IRArray {
	return ir.Clone(row).(ir.IRArray)
}
