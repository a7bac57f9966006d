// Package graph provides an undirected arena graph addressed by stable
// integer handles.
//
// Vertices and edges live in slices owned by the Graph. Callers hold
// VertexID and EdgeID values, never pointers, so removing or replacing a
// vertex cannot leave a dangling reference. Removed slots are never reused.
//
// The graph rejects self-loops and parallel edges: at most one edge joins
// any unordered vertex pair.
package graph
