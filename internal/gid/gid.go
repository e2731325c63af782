// Package gid defines the content-addressed identifier types shared by
// the graph store, binding context, and query executor, kept in their
// own package so none of those three need to import one another just
// to name a UID.
package gid

// NodeUID is the content-addressed identity of a Node: the hex
// SHA-256 of (uid(type), uid(term or "")).
type NodeUID string

// EdgeUID is the content-addressed identity of an Edge, paired with
// its ordered endpoints in the graph store's edge index.
type EdgeUID string
