package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/archgen/internal/enumerate"
	"github.com/roach88/archgen/internal/ir"
)

// EvaluateAssertions checks every assertion against res and returns one
// message per failure.
func EvaluateAssertions(res *enumerate.Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(res, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d] (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluateAssertion(res *enumerate.Result, a Assertion) error {
	switch a.Type {
	case AssertContains:
		n, err := countMatches(catalog(res, a.Catalog), a.Where)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("no %s matches %s", a.Catalog, describe(a.Where))
		}
	case AssertAbsent:
		n, err := countMatches(catalog(res, a.Catalog), a.Where)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%d %s(s) match %s", n, a.Catalog, describe(a.Where))
		}
	case AssertPaired:
		for _, p := range res.Pairs {
			okA, err := matches(res.Architectures[p.Architecture], a.Architecture)
			if err != nil {
				return err
			}
			okW, err := matches(res.Workloads[p.Workload], a.Workload)
			if err != nil {
				return err
			}
			if okA && okW {
				return nil
			}
		}
		return fmt.Errorf("no configuration pairs architecture %s with workload %s",
			describe(a.Architecture), describe(a.Workload))
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func catalog(res *enumerate.Result, name string) []ir.IRObject {
	if name == CatalogWorkload {
		return res.Workloads
	}
	return res.Architectures
}

func countMatches(trees []ir.IRObject, where map[string]any) (int, error) {
	n := 0
	for _, tree := range trees {
		ok, err := matches(tree, where)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// matches reports whether tree holds every value of where. An empty where
// matches any tree.
func matches(tree ir.IRObject, where map[string]any) (bool, error) {
	for path, raw := range where {
		want, err := ir.FromGo(raw)
		if err != nil {
			return false, fmt.Errorf("where %s: %w", path, err)
		}
		got, ok := lookup(tree, strings.Split(path, "."))
		if !ok || !ir.Equal(want, got) {
			return false, nil
		}
	}
	return true, nil
}

// lookup walks a dotted document path.
func lookup(tree ir.IRObject, path []string) (ir.IRValue, bool) {
	var cur ir.IRValue = tree
	for _, key := range path {
		obj, ok := cur.(ir.IRObject)
		if !ok {
			return nil, false
		}
		if cur, ok = obj[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// describe renders where with sorted paths.
func describe(where map[string]any) string {
	if len(where) == 0 {
		return "{}"
	}
	paths := make([]string, 0, len(where))
	for p := range where {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = fmt.Sprintf("%s=%v", p, where[p])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
