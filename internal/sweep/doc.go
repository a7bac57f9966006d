// Package sweep builds sweep domains from generators instead of literal
// lists: a single derived value, a value stepped until a predicate fails,
// a fixed number of steps, or several generators zipped into rows.
package sweep
