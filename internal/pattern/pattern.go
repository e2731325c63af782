// Package pattern composes type/term schemas with variable bindings,
// property predicates, and direction into the node/edge/path pattern
// algebra that the query executor joins against a live graph.
package pattern

import (
	"github.com/implica/implica/internal/ctxt"
	"github.com/implica/implica/internal/gid"
	"github.com/implica/implica/internal/graphstore"
	"github.com/implica/implica/internal/schema"
)

// PropPred is an exact-match property predicate: every key present
// must exist in the candidate's properties and compare equal by
// value.
type PropPred graphstore.PropMap

func (p PropPred) matches(props graphstore.PropMap) bool {
	for k, want := range p {
		got, ok := props[k]
		if !ok || !graphstore.EqualValue(want, got) {
			return false
		}
	}
	return true
}

// Direction orients an EdgePattern relative to the path's declared
// left-to-right node order.
type Direction int

const (
	// Forward ("->") means the path's left node is the edge's start
	// and the right node is the edge's end.
	Forward Direction = iota
	// Backward ("<-") swaps start/end relative to path order.
	Backward
)

// NodePattern constrains a single graph node: an optional binding
// variable, optional type/term schemas, and a property predicate.
type NodePattern struct {
	Var   *string
	Type  schema.TypeSchema
	Term  schema.TermSchema
	Props PropPred
}

// MatchNode reports whether n satisfies p, extending ctx with p.Var's
// binding (if named) on success. p.Var is bound only on overall
// success, but the type/term schemas may already have bound captures
// into ctx when a later check fails; MatchPath discards such a ctx by
// matching every candidate against its own clone.
func MatchNode(p NodePattern, n *graphstore.Node, ctx *ctxt.Context) bool {
	if p.Type != nil && !p.Type.Match(n.Type(), ctx) {
		return false
	}
	if p.Term != nil {
		t, ok := n.Term()
		if !ok || !p.Term.Match(t, ctx) {
			return false
		}
	}
	if !p.Props.matches(n.Properties()) {
		return false
	}
	if p.Var != nil {
		if err := ctx.TryBind(*p.Var, ctxt.NodeBinding(n.UID())); err != nil {
			return false
		}
	}
	return true
}

// EdgePattern constrains a single graph edge, plus the direction the
// pattern was written in relative to path order.
type EdgePattern struct {
	Var   *string
	Type  schema.TypeSchema
	Term  schema.TermSchema
	Props PropPred
	Dir   Direction
}

// orientedEndpoints returns (start, end) as the edge pattern's
// direction prescribes, given the path's (left, right) node UIDs.
func (p EdgePattern) orientedEndpoints(left, right gid.NodeUID) (start, end gid.NodeUID) {
	if p.Dir == Backward {
		return right, left
	}
	return left, right
}

// MatchEdge reports whether e satisfies p when oriented between left
// and right (the path's adjacent node UIDs), extending ctx with p.Var
// on success.
func MatchEdge(p EdgePattern, e *graphstore.Edge, left, right gid.NodeUID, ctx *ctxt.Context) bool {
	wantStart, wantEnd := p.orientedEndpoints(left, right)
	if e.Start() != wantStart || e.End() != wantEnd {
		return false
	}
	if p.Type != nil && !p.Type.Match(e.Type(), ctx) {
		return false
	}
	if p.Term != nil && !p.Term.Match(e.Term(), ctx) {
		return false
	}
	if !p.Props.matches(e.Properties()) {
		return false
	}
	if p.Var != nil {
		if err := ctx.TryBind(*p.Var, ctxt.EdgeBinding(e.UID())); err != nil {
			return false
		}
	}
	return true
}

// PathPattern is an alternating sequence of node and edge patterns:
// Nodes has one more entry than Edges, and Edges[i] sits between
// Nodes[i] and Nodes[i+1].
type PathPattern struct {
	Nodes []NodePattern
	Edges []EdgePattern
}

// NewPathPattern validates the alternating-length invariant.
func NewPathPattern(nodes []NodePattern, edges []EdgePattern) (PathPattern, error) {
	if len(nodes) == 0 {
		return PathPattern{}, ErrMalformedPath("a path must contain at least one node")
	}
	if len(edges) != len(nodes)-1 {
		return PathPattern{}, ErrMalformedPath("a path must alternate node, edge, node, ...")
	}
	return PathPattern{Nodes: nodes, Edges: edges}, nil
}
