// Package design holds the declarative model of one generation run.
//
// A Session collects parameter declarations (architecture attributes,
// modules, workload configurations) and the constraints between them.
// Every declaration is checked when it is made: duplicate names, empty
// sweeps, unknown constraint endpoints, and unequal positional domains
// fail immediately with a SchemaError or ConstraintError.
//
// Constraints resolve their position pairs at AddConstraint time, so the
// enumerator never evaluates a predicate.
package design
