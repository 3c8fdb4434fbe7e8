// internal/modelpath/doc.go

/*
Package modelpath provides the immutable, hierarchical identifier used to
address every node in the model graph, based on the canonical format
`segment.segment.segment`.

A path is a dot-separated sequence of non-empty name segments. The root of
the graph is the empty path with zero segments. Paths are plain values:
derivation operations (Child, Parent) return new paths and never mutate the
receiver.

This package enforces the identifier schema and centralizes all formatting,
parsing, and ordering logic.
*/
package modelpath
