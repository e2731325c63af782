package querybuilder

import (
	"context"

	"github.com/implica/implica/internal/ctxt"
	"github.com/implica/implica/internal/gid"
	"github.com/implica/implica/internal/graphstore"
	"github.com/implica/implica/internal/pattern"
	"github.com/implica/implica/internal/schema"
	"github.com/implica/implica/internal/term"
	"github.com/implica/implica/internal/typ"
)

// createClause elaborates path under every row (or, if the relation
// is empty, a single empty pass), inserting whatever nodes/edges
// aren't already bound and binding any newly named variables.
type createClause struct {
	path pattern.PathPattern
}

func (c createClause) apply(ctx context.Context, q *Query, rel Relation) (Relation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows := rel
	if len(rows) == 0 {
		rows = Relation{Row{}}
	}

	out := make(Relation, 0, len(rows))
	for _, row := range rows {
		newRow, err := q.createPath(c.path, row)
		if err != nil {
			return nil, err
		}
		out = append(out, newRow)
	}
	return out, nil
}

func (q *Query) createPath(p pattern.PathPattern, row Row) (Row, error) {
	result := make(Row, len(row))
	for k, v := range row {
		result[k] = v
	}

	// Edges resolve their term (and, from it, their type) before any
	// node is created: a term's type is fixed purely by its constant
	// schema, independent of the graph, but an untyped endpoint node
	// pattern (e.g. "()") needs that resolved arrow type to know what
	// to construct — see nodeType.
	edgeTerms := make([]term.Term, len(p.Edges))
	edgeTypes := make([]typ.Arrow, len(p.Edges))
	for i, ep := range p.Edges {
		tm, ty, err := resolveEdge(ep, q.reg)
		if err != nil {
			return nil, err
		}
		edgeTerms[i] = tm
		edgeTypes[i] = ty
	}

	nodeUIDs := make([]gid.NodeUID, len(p.Nodes))
	for i, np := range p.Nodes {
		uid, err := q.createOrReuseNode(np, result, p.Edges, edgeTypes, i)
		if err != nil {
			return nil, err
		}
		nodeUIDs[i] = uid
		if np.Var != nil {
			result[*np.Var] = ctxt.NodeBinding(uid)
		}
	}

	for i, ep := range p.Edges {
		left, right := nodeUIDs[i], nodeUIDs[i+1]
		start, end := left, right
		if ep.Dir == pattern.Backward {
			start, end = right, left
		}
		uid, err := q.createEdge(ep, edgeTypes[i], edgeTerms[i], start, end)
		if err != nil {
			return nil, err
		}
		if ep.Var != nil {
			result[*ep.Var] = ctxt.EdgeBinding(uid)
		}
	}

	return result, nil
}

// createOrReuseNode reuses the node already bound to np.Var in row, if
// any; otherwise it constructs and inserts a new one, which requires
// an exact type (explicit, or inferred from an adjacent resolved edge
// via nodeType) and, if present, an exact term schema.
func (q *Query) createOrReuseNode(np pattern.NodePattern, row Row, edges []pattern.EdgePattern, edgeTypes []typ.Arrow, idx int) (gid.NodeUID, error) {
	if np.Var != nil {
		if b, ok := row[*np.Var]; ok && b.IsNode() {
			return b.NodeRef, nil
		}
	}

	ty, err := nodeType(np.Type, edges, edgeTypes, idx)
	if err != nil {
		return "", err
	}

	var tm term.Term
	if np.Term != nil {
		tm, err = exactTerm(np.Term, q.reg)
		if err != nil {
			return "", err
		}
	}

	n, err := graphstore.NewNode(ty, tm, graphstore.PropMap(np.Props))
	if err != nil {
		return "", err
	}
	return q.g.AddNode(n), nil
}

// nodeType resolves a node's constructed type: an explicit type schema
// if the pattern wrote one, otherwise the arm type fixed by whichever
// adjacent edge already has a concrete Arrow type — "()" names no type
// at all, relying entirely on the edge it's attached to (e.g.
// "()-[::@edge(X,Y)]->()", where the endpoint types come from @edge's
// own instantiated Arrow(X,Y)). Prefers the left-hand edge when a node
// sits between two.
func nodeType(s schema.TypeSchema, edges []pattern.EdgePattern, edgeTypes []typ.Arrow, idx int) (typ.Type, error) {
	if s != nil {
		return exactType(s)
	}
	if idx > 0 {
		ep, arrow := edges[idx-1], edgeTypes[idx-1]
		if ep.Dir == pattern.Forward {
			return arrow.Right, nil
		}
		return arrow.Left, nil
	}
	if idx < len(edges) {
		ep, arrow := edges[idx], edgeTypes[idx]
		if ep.Dir == pattern.Forward {
			return arrow.Left, nil
		}
		return arrow.Right, nil
	}
	return nil, AmbiguousCreate("missing type schema; CREATE requires an exact type")
}

// resolveEdge computes an edge pattern's constructed term and Arrow
// type ahead of node creation: CREATE elaboration only defines reuse
// for nodes, and an edge's term is structurally required (graphstore.NewEdge
// has no "term absent" case), so a missing or non-exact edge term
// schema is AmbiguousCreate.
func resolveEdge(ep pattern.EdgePattern, reg constantInstantiator) (term.Term, typ.Arrow, error) {
	if ep.Term == nil {
		return nil, typ.Arrow{}, AmbiguousCreate("edge pattern has no term schema; a created edge requires a term")
	}
	tm, err := exactTerm(ep.Term, reg)
	if err != nil {
		return nil, typ.Arrow{}, err
	}

	ty, err := edgeType(ep.Type, tm)
	if err != nil {
		return nil, typ.Arrow{}, err
	}
	arrow, ok := typ.IsArrow(ty)
	if !ok {
		return nil, typ.Arrow{}, AmbiguousCreate("edge type is not an Arrow")
	}
	return tm, arrow, nil
}

// createEdge constructs and inserts the edge given its already-resolved
// type and term.
func (q *Query) createEdge(ep pattern.EdgePattern, ty typ.Arrow, tm term.Term, start, end gid.NodeUID) (gid.EdgeUID, error) {
	e, err := graphstore.NewEdge(ty, tm, start, end, graphstore.PropMap(ep.Props))
	if err != nil {
		return "", err
	}
	return q.g.AddEdge(e)
}

// edgeType resolves an edge's constructed type: an explicit type
// schema if the pattern wrote one, otherwise the type already fixed
// by its constructed term — "[::@worksAt()]" names no type schema at
// all (the declared constant's own arrow type is the edge's type),
// which is the literal, only syntax spec.md uses for a constant-based
// edge create.
func edgeType(s schema.TypeSchema, tm term.Term) (typ.Type, error) {
	if s == nil {
		return tm.Type(), nil
	}
	return exactType(s)
}

// exactType resolves a type schema to the one concrete type it names,
// succeeding for TsExact atoms and for TsArrow trees built entirely
// from them (typeSchema has no single literal for an Arrow type, so
// "A -> B" is how one is written) — anything containing a TsCapture or
// TsWildcard has no single resolution and fails AmbiguousCreate.
func exactType(s schema.TypeSchema) (typ.Type, error) {
	switch v := s.(type) {
	case nil:
		return nil, AmbiguousCreate("missing type schema; CREATE requires an exact type")
	case schema.TsExact:
		return v.Type, nil
	case schema.TsArrow:
		left, err := exactType(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := exactType(v.Right)
		if err != nil {
			return nil, err
		}
		return typ.Arrow{Left: left, Right: right}, nil
	default:
		return nil, AmbiguousCreate("type schema is not exact (contains a capture or wildcard)")
	}
}

// exactTerm converts a term schema into the one concrete term it
// names, succeeding only for an exact constant application: a bare
// TmInstantiated/TmExactConstant invocation, or TmApp chains built
// from them. TmWildcard and TmConstantDerived have no single
// resolution and fail AmbiguousCreate.
func exactTerm(s schema.TermSchema, reg constantInstantiator) (term.Term, error) {
	switch v := s.(type) {
	case schema.TmInstantiated:
		return reg.Instantiate(v.Name, v.TypeArgs)
	case schema.TmExactConstant:
		// A zero-argument invocation: valid to construct as long as the
		// declared constant itself takes no type parameters, which
		// Instantiate enforces (ArityMismatch otherwise).
		return reg.Instantiate(v.Name, nil)
	case schema.TmApp:
		fn, err := exactTerm(v.Fn, reg)
		if err != nil {
			return nil, err
		}
		arg, err := exactTerm(v.Arg, reg)
		if err != nil {
			return nil, err
		}
		return term.NewApp(fn, arg)
	default:
		return nil, AmbiguousCreate("term schema is not an exact constant application")
	}
}

// constantInstantiator is the slice of constant.Registry that CREATE
// elaboration needs, named narrowly so exactTerm doesn't import
// constant just to spell out its one method.
type constantInstantiator interface {
	Instantiate(name string, typeArgs []typ.Type) (term.Basic, error)
}
