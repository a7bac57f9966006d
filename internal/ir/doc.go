// Package ir provides the value and fragment types shared by every stage of
// configuration generation.
//
// This package imports nothing internal. Every other package builds on it.
//
// Key design constraints:
//   - Field values are a closed set: string, int, float, bool, array, object
//   - There is no null; an unset field is absent from its tree
//   - Structural identity is the canonical JSON encoding (MarshalCanonical)
//   - Fragment trees are shaped like the bodies of the emitted documents
package ir
