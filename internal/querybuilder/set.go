package querybuilder

import (
	"context"

	"github.com/implica/implica/internal/ctxt"
	"github.com/implica/implica/internal/graphstore"
)

// setClause mutates the graph element bound to v in every row.
type setClause struct {
	v         string
	props     graphstore.PropMap
	overwrite bool
}

func (c setClause) apply(ctx context.Context, q *Query, rel Relation) (Relation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, row := range rel {
		b, ok := row[c.v]
		if !ok {
			return nil, ctxt.UnknownVariable(c.v)
		}
		switch {
		case b.IsNode():
			if err := q.g.SetNodeProperties(b.NodeRef, c.props, c.overwrite); err != nil {
				return nil, err
			}
		case b.IsEdge():
			if err := q.g.SetEdgeProperties(b.EdgeRef, c.props, c.overwrite); err != nil {
				return nil, err
			}
		default:
			return nil, UnsupportedTarget(c.v)
		}
	}
	return rel, nil
}
