package enumerate

import (
	"context"
	"fmt"

	"github.com/roach88/archgen/internal/ir"
)

// Class says which documents a component's fragments touch.
type Class int

const (
	ArchitectureOnly Class = iota
	WorkloadOnly
	Mixed
)

// String returns the class name used in logs.
func (c Class) String() string {
	switch c {
	case ArchitectureOnly:
		return "architecture"
	case WorkloadOnly:
		return "workload"
	case Mixed:
		return "mixed"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// Classify returns Mixed if any fragment carries values in both documents.
func Classify(frags []ir.Fragment) Class {
	arch := false
	for _, f := range frags {
		if f.HasArchitecture() && f.HasWorkload() {
			return Mixed
		}
		if f.HasArchitecture() {
			arch = true
		}
	}
	if arch {
		return ArchitectureOnly
	}
	return WorkloadOnly
}

// Alternatives is the collapsed output of one component.
type Alternatives struct {
	Params    []ir.FieldRef
	Fragments []ir.Fragment
	Class     Class
}

// Pair is one configuration: indices into the two catalogs.
type Pair struct {
	Architecture int `json:"architecture"`
	Workload     int `json:"workload"`
}

// Result holds the unique catalogs and the configurations over them.
type Result struct {
	Architectures []ir.IRObject `json:"architectures"`
	Workloads     []ir.IRObject `json:"workloads"`
	Pairs         []Pair        `json:"pairs"`
	Mixed         bool          `json:"mixed"`
	Components    int           `json:"components"`
}

// Infeasible reports whether no legal configuration exists.
func (r *Result) Infeasible() bool { return len(r.Pairs) == 0 }

// catalog interns trees by canonical hash, assigning indices by first use.
type catalog struct {
	hash  func(ir.IRObject) (string, error)
	trees []ir.IRObject
	index map[string]int
}

func newCatalog(hash func(ir.IRObject) (string, error)) *catalog {
	return &catalog{hash: hash, index: make(map[string]int)}
}

func (c *catalog) intern(tree ir.IRObject) (int, error) {
	h, err := c.hash(tree)
	if err != nil {
		return 0, err
	}
	if i, ok := c.index[h]; ok {
		return i, nil
	}
	i := len(c.trees)
	c.trees = append(c.trees, tree)
	c.index[h] = i
	return i, nil
}

// product merges one fragment from each list in every combination,
// dropping structural duplicates. Merge collisions are fatal.
func product(ctx context.Context, lists [][]ir.Fragment, q *Quota) ([]ir.Fragment, error) {
	acc := []ir.Fragment{ir.NewFragment()}
	for _, list := range lists {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next := make([]ir.Fragment, 0, len(acc)*len(list))
		seen := make(map[string]bool, cap(next))
		for _, a := range acc {
			for _, b := range list {
				m, err := a.Merge(b)
				if err != nil {
					return nil, err
				}
				h, err := ir.FragmentHash(m)
				if err != nil {
					return nil, err
				}
				if seen[h] {
					continue
				}
				seen[h] = true
				next = append(next, m)
				if err := q.Check(len(next)); err != nil {
					return nil, err
				}
			}
		}
		acc = next
	}
	return acc, nil
}

// Reduce combines per-component alternatives into catalogs and pairs.
//
// Architecture-only and workload-only components are each combined by
// product. Mixed components are combined among themselves; each mixed
// combination is then extended by every architecture-only and
// workload-only combination and both halves are interned together, so an
// architecture entry is paired only with the workload entries it was
// produced alongside. Without mixed components the catalogs are paired by
// full product, architecture-major.
func Reduce(ctx context.Context, groups []Alternatives, fragQuota, pairQuota *Quota) (*Result, error) {
	res := &Result{Components: len(groups)}

	var archLists, workLists, mixedLists [][]ir.Fragment
	for _, g := range groups {
		if len(g.Fragments) == 0 {
			return res, nil
		}
		switch g.Class {
		case Mixed:
			mixedLists = append(mixedLists, g.Fragments)
		case ArchitectureOnly:
			archLists = append(archLists, g.Fragments)
		default:
			workLists = append(workLists, g.Fragments)
		}
	}
	res.Mixed = len(mixedLists) > 0

	arch, err := product(ctx, archLists, fragQuota)
	if err != nil {
		return nil, fmt.Errorf("architecture product: %w", err)
	}
	work, err := product(ctx, workLists, fragQuota)
	if err != nil {
		return nil, fmt.Errorf("workload product: %w", err)
	}

	archCat := newCatalog(ir.ArchitectureHash)
	workCat := newCatalog(ir.WorkloadHash)

	if !res.Mixed {
		for _, a := range arch {
			if _, err := archCat.intern(a.Architecture); err != nil {
				return nil, err
			}
		}
		for _, w := range work {
			if _, err := workCat.intern(w.Workload); err != nil {
				return nil, err
			}
		}
		if err := pairQuota.Check(len(archCat.trees) * len(workCat.trees)); err != nil {
			return nil, err
		}
		for i := range archCat.trees {
			for j := range workCat.trees {
				res.Pairs = append(res.Pairs, Pair{Architecture: i, Workload: j})
			}
		}
		res.Architectures, res.Workloads = archCat.trees, workCat.trees
		return res, nil
	}

	mixed, err := product(ctx, mixedLists, fragQuota)
	if err != nil {
		return nil, fmt.Errorf("mixed product: %w", err)
	}

	seen := make(map[Pair]bool)
	for _, m := range mixed {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, a := range arch {
			withArch, err := m.Merge(a)
			if err != nil {
				return nil, err
			}
			for _, w := range work {
				full, err := withArch.Merge(w)
				if err != nil {
					return nil, err
				}
				ai, err := archCat.intern(full.Architecture)
				if err != nil {
					return nil, err
				}
				wi, err := workCat.intern(full.Workload)
				if err != nil {
					return nil, err
				}
				p := Pair{Architecture: ai, Workload: wi}
				if seen[p] {
					continue
				}
				seen[p] = true
				res.Pairs = append(res.Pairs, p)
				if err := pairQuota.Check(len(res.Pairs)); err != nil {
					return nil, err
				}
			}
		}
	}
	res.Architectures, res.Workloads = archCat.trees, workCat.trees
	return res, nil
}

// Snapshot renders the result as one value for golden comparison:
// {"architectures": [...], "pairs": [[a, w], ...], "workloads": [...]}.
func (r *Result) Snapshot() ir.IRObject {
	archs := make(ir.IRArray, len(r.Architectures))
	for i, t := range r.Architectures {
		archs[i] = t
	}
	works := make(ir.IRArray, len(r.Workloads))
	for i, t := range r.Workloads {
		works[i] = t
	}
	pairs := make(ir.IRArray, len(r.Pairs))
	for i, p := range r.Pairs {
		pairs[i] = ir.IRArray{ir.IRInt(p.Architecture), ir.IRInt(p.Workload)}
	}
	return ir.IRObject{"architectures": archs, "pairs": pairs, "workloads": works}
}
