package ir

import (
	"errors"
	"fmt"
	"strings"
)

// Fragment is one resolved sub-assignment: the architecture fields and
// workload fields it fixes, each as a nested tree shaped like the body of
// the corresponding document.
type Fragment struct {
	Architecture IRObject `json:"architecture"`
	Workload     IRObject `json:"workload"`
}

// NewFragment returns an empty fragment.
func NewFragment() Fragment {
	return Fragment{Architecture: IRObject{}, Workload: IRObject{}}
}

// HasArchitecture reports whether the fragment fixes any architecture field.
func (f Fragment) HasArchitecture() bool { return len(f.Architecture) > 0 }

// HasWorkload reports whether the fragment fixes any workload field.
func (f Fragment) HasWorkload() bool { return len(f.Workload) > 0 }

// IsEmpty reports whether the fragment fixes nothing.
func (f Fragment) IsEmpty() bool { return !f.HasArchitecture() && !f.HasWorkload() }

// Clone returns a deep copy.
func (f Fragment) Clone() Fragment {
	return Fragment{Architecture: f.Architecture.Clone(), Workload: f.Workload.Clone()}
}

// Tree returns the sub-tree for domain d.
func (f Fragment) Tree(d Domain) IRObject {
	if d == Workload {
		return f.Workload
	}
	return f.Architecture
}

// Set writes value at the tree path for (kind, ref). Writing an equal value
// twice is a no-op; a different value is a MergeCollisionError.
func (f *Fragment) Set(kind FieldKind, ref FieldRef, value IRValue) error {
	d := kind.Domain()
	if d == Workload {
		if f.Workload == nil {
			f.Workload = IRObject{}
		}
	} else if f.Architecture == nil {
		f.Architecture = IRObject{}
	}
	path := TreePath(kind, ref)
	return setPath(f.Tree(d), d, path, value)
}

func setPath(tree IRObject, d Domain, path []string, value IRValue) error {
	node := tree
	for i, key := range path[:len(path)-1] {
		next, ok := node[key]
		if !ok {
			child := IRObject{}
			node[key] = child
			node = child
			continue
		}
		child, ok := next.(IRObject)
		if !ok {
			return &MergeCollisionError{
				Path:     qualify(d, path[:i+1]),
				Existing: next,
				Incoming: IRObject{},
			}
		}
		node = child
	}

	leaf := path[len(path)-1]
	if existing, ok := node[leaf]; ok {
		if Equal(existing, value) {
			return nil
		}
		return &MergeCollisionError{Path: qualify(d, path), Existing: existing, Incoming: value}
	}
	node[leaf] = Clone(value)
	return nil
}

// Merge returns the union of f and other. Neither input is modified.
// Two fragments assigning different values to the same key fail with a
// MergeCollisionError carrying the full key path.
func (f Fragment) Merge(other Fragment) (Fragment, error) {
	arch, err := mergeObjects(f.Architecture, other.Architecture, []string{Architecture.String()})
	if err != nil {
		return Fragment{}, err
	}
	work, err := mergeObjects(f.Workload, other.Workload, []string{Workload.String()})
	if err != nil {
		return Fragment{}, err
	}
	return Fragment{Architecture: arch, Workload: work}, nil
}

func mergeObjects(a, b IRObject, path []string) (IRObject, error) {
	out := a.Clone()
	for _, k := range b.SortedKeys() {
		incoming := b[k]
		existing, ok := out[k]
		if !ok {
			out[k] = Clone(incoming)
			continue
		}

		at := append(append([]string{}, path...), k)
		ea, aIsObj := existing.(IRObject)
		ib, bIsObj := incoming.(IRObject)
		if aIsObj && bIsObj {
			merged, err := mergeObjects(ea, ib, at)
			if err != nil {
				return nil, err
			}
			out[k] = merged
			continue
		}
		if !Equal(existing, incoming) {
			return nil, &MergeCollisionError{
				Path:     strings.Join(at, "."),
				Existing: existing,
				Incoming: incoming,
			}
		}
	}
	return out, nil
}

func qualify(d Domain, path []string) string {
	return d.String() + "." + strings.Join(path, ".")
}

// MergeCollisionError reports two fragments disagreeing on one key.
type MergeCollisionError struct {
	Path     string  // dotted path including the document root
	Existing IRValue // value already present
	Incoming IRValue // value that could not be merged
}

func (e *MergeCollisionError) Error() string {
	return fmt.Sprintf("merge collision at %s: %s vs %s", e.Path, String(e.Existing), String(e.Incoming))
}

// IsMergeCollision checks if err wraps a MergeCollisionError.
func IsMergeCollision(err error) bool {
	var mce *MergeCollisionError
	return errors.As(err, &mce)
}
