package ir

import "fmt"

// Domain says which emitted document a field belongs to.
type Domain int

const (
	Architecture Domain = iota // architecture document
	Workload                   // workload document
)

// String returns the document name.
func (d Domain) String() string {
	switch d {
	case Architecture:
		return "architecture"
	case Workload:
		return "workload"
	default:
		return fmt.Sprintf("Domain(%d)", int(d))
	}
}

// FieldKind is the role a field plays inside its owner.
type FieldKind int

const (
	KindAttribute     FieldKind = iota // architecture-wide attribute
	KindInstance                       // module instance shape
	KindTag                            // module tag list
	KindQuery                          // module query field
	KindConfiguration                  // workload configuration field
)

// String returns the kind name used in diagnostics and catalog rows.
func (k FieldKind) String() string {
	switch k {
	case KindAttribute:
		return "attribute"
	case KindInstance:
		return "instance"
	case KindTag:
		return "tag"
	case KindQuery:
		return "query"
	case KindConfiguration:
		return "configuration"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// Domain returns the document a field of this kind is written to.
func (k FieldKind) Domain() Domain {
	if k == KindConfiguration {
		return Workload
	}
	return Architecture
}

// AttributeOwner is the reserved owner name for architecture attributes.
const AttributeOwner = "attribute"

// FieldRef names one field of one owner.
type FieldRef struct {
	Owner string `json:"owner"`
	Field string `json:"field"`
}

// Ref is a shorthand for FieldRef.
func Ref(owner, field string) FieldRef {
	return FieldRef{Owner: owner, Field: field}
}

// String renders "owner.field".
func (r FieldRef) String() string {
	return r.Owner + "." + r.Field
}

// TreePath returns where a field lands inside its domain tree.
//
//	attribute      -> attribute.<field>
//	instance, tag  -> module.<owner>.<field>
//	query          -> module.<owner>.query.<field>
//	configuration  -> <owner>.configuration.<field>
func TreePath(kind FieldKind, ref FieldRef) []string {
	switch kind {
	case KindAttribute:
		return []string{"attribute", ref.Field}
	case KindInstance, KindTag:
		return []string{"module", ref.Owner, ref.Field}
	case KindQuery:
		return []string{"module", ref.Owner, "query", ref.Field}
	case KindConfiguration:
		return []string{ref.Owner, "configuration", ref.Field}
	default:
		return []string{ref.Owner, ref.Field}
	}
}
