package design

import (
	"fmt"
	"slices"

	"github.com/roach88/archgen/internal/ir"
)

// Kind is the constraint type.
type Kind int

const (
	// Direct links values that must co-occur.
	Direct Kind = iota
	// Anti forbids values from co-occurring.
	Anti
	// Conditional is reserved and rejected by AddConstraint.
	Conditional
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Direct:
		return "direct"
	case Anti:
		return "anti"
	case Conditional:
		return "conditional"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "direct", "":
		return Direct, nil
	case "anti":
		return Anti, nil
	case "conditional":
		return Conditional, nil
	default:
		return 0, fmt.Errorf("unknown constraint kind %q", s)
	}
}

// Condition qualifies a constraint. It is one of NoCondition,
// IndexPredicate, or ComparisonPredicate.
type Condition interface {
	condition()
}

// NoCondition pairs positions i with i.
type NoCondition struct{}

func (NoCondition) condition() {}

// IndexPredicate is evaluated once per position of the zipped domains.
type IndexPredicate func(i int) (bool, error)

func (IndexPredicate) condition() {}

// ComparisonPredicate is evaluated over the cross product of both domains.
type ComparisonPredicate func(src, trg ir.IRValue) (bool, error)

func (ComparisonPredicate) condition() {}

// Index wraps an infallible position test.
func Index(f func(i int) bool) IndexPredicate {
	return func(i int) (bool, error) { return f(i), nil }
}

// Compare wraps an infallible value comparison.
func Compare(f func(src, trg ir.IRValue) bool) ComparisonPredicate {
	return func(src, trg ir.IRValue) (bool, error) { return f(src, trg), nil }
}

// Pair is a (source position, target position) pair over two sweep domains.
type Pair struct {
	Src int `json:"src"`
	Trg int `json:"trg"`
}

// Constraint is a resolved constraint edge.
//
// For Direct, Pairs lists the legal position pairs: a source value and a
// target value may co-occur only when their positions appear here. For
// Anti, Pairs lists the forbidden position pairs.
type Constraint struct {
	Kind      Kind
	Source    ir.FieldRef
	Target    ir.FieldRef
	Condition Condition
	Pairs     []Pair
}

// resolvePairs computes the pair relation for one constraint edge.
func resolvePairs(kind Kind, cond Condition, src, trg Parameter) ([]Pair, error) {
	fail := func(code ErrorCode, err error, format string, args ...any) error {
		return &ConstraintError{
			Code:    code,
			Kind:    kind,
			Source:  src.Ref,
			Target:  trg.Ref,
			Message: fmt.Sprintf(format, args...),
			Err:     err,
		}
	}

	if cond == nil {
		cond = NoCondition{}
	}

	n, m := len(src.Domain), len(trg.Domain)

	switch kind {
	case Direct:
		switch c := cond.(type) {
		case NoCondition:
			if n != m {
				return nil, fail(ErrCodeLengthMismatch, nil,
					"positional pairing needs equal domains, got %d and %d", n, m)
			}
			pairs := make([]Pair, n)
			for i := range pairs {
				pairs[i] = Pair{Src: i, Trg: i}
			}
			return pairs, nil

		case IndexPredicate:
			linked, err := evalIndex(c, max(n, m))
			if err != nil {
				return nil, fail(ErrCodePredicateFailed, err, "index predicate failed")
			}
			var pairs []Pair
			var freeSrc, freeTrg []int
			for i, ok := range linked {
				if ok {
					if i >= n || i >= m {
						return nil, fail(ErrCodeIndexOutOfRange, nil,
							"position %d is linked but domains have %d and %d values", i, n, m)
					}
					pairs = append(pairs, Pair{Src: i, Trg: i})
					continue
				}
				if i < n {
					freeSrc = append(freeSrc, i)
				}
				if i < m {
					freeTrg = append(freeTrg, i)
				}
			}
			for _, i := range freeSrc {
				for _, j := range freeTrg {
					pairs = append(pairs, Pair{Src: i, Trg: j})
				}
			}
			sortPairs(pairs)
			return pairs, nil

		case ComparisonPredicate:
			pairs, err := evalComparison(c, src.Domain, trg.Domain)
			if err != nil {
				return nil, fail(ErrCodePredicateFailed, err, "comparison predicate failed")
			}
			return pairs, nil
		}

	case Anti:
		switch c := cond.(type) {
		case NoCondition:
			return nil, fail(ErrCodeMissingCondition, nil, "anti constraints need an index or comparison condition")

		case IndexPredicate:
			linked, err := evalIndex(c, min(n, m))
			if err != nil {
				return nil, fail(ErrCodePredicateFailed, err, "index predicate failed")
			}
			var pairs []Pair
			for i, ok := range linked {
				if ok {
					pairs = append(pairs, Pair{Src: i, Trg: i})
				}
			}
			return pairs, nil

		case ComparisonPredicate:
			pairs, err := evalComparison(c, src.Domain, trg.Domain)
			if err != nil {
				return nil, fail(ErrCodePredicateFailed, err, "comparison predicate failed")
			}
			return pairs, nil
		}

	case Conditional:
		return nil, fail(ErrCodeUnsupportedKind, nil, "conditional constraints are not implemented")
	}

	return nil, fail(ErrCodeUnsupportedKind, nil, "unsupported condition %T", cond)
}

func evalIndex(f IndexPredicate, n int) ([]bool, error) {
	out := make([]bool, n)
	for i := range out {
		ok, err := f(i)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		out[i] = ok
	}
	return out, nil
}

func evalComparison(g ComparisonPredicate, src, trg []ir.IRValue) ([]Pair, error) {
	var pairs []Pair
	for i, a := range src {
		for j, b := range trg {
			ok, err := g(a, b)
			if err != nil {
				return nil, fmt.Errorf("(%s, %s): %w", ir.String(a), ir.String(b), err)
			}
			if ok {
				pairs = append(pairs, Pair{Src: i, Trg: j})
			}
		}
	}
	return pairs, nil
}

func sortPairs(pairs []Pair) {
	slices.SortFunc(pairs, func(a, b Pair) int {
		if a.Src != b.Src {
			return a.Src - b.Src
		}
		return a.Trg - b.Trg
	})
}
