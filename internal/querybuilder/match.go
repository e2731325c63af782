package querybuilder

import (
	"context"

	"github.com/implica/implica/internal/ctxt"
	"github.com/implica/implica/internal/pattern"
)

// matchClause extends every row of the relation by every way path can
// be matched against the graph, extending that row's bindings.
type matchClause struct {
	path pattern.PathPattern
}

func (c matchClause) apply(ctx context.Context, q *Query, rel Relation) (Relation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// An empty relation short-circuits MATCH (unlike CREATE).
	if len(rel) == 0 {
		return rel, nil
	}

	path, synthesized := elaboratePlaceholders(q, c.path)

	out := make(Relation, 0, len(rel))
	for _, row := range rel {
		base := ctxt.FromBindings(row)
		for _, resultCtx := range pattern.MatchPath(q.g, path, base) {
			newRow := Row(resultCtx.Rows())
			for _, ph := range synthesized {
				delete(newRow, ph)
			}
			out = append(out, newRow)
		}
	}
	return out, nil
}

// elaboratePlaceholders assigns a synthesized internal variable to any
// interior node of path (one sandwiched between two edges) that has no
// user-supplied variable, so the match walk has a name to carry that
// position's binding through — then the caller strips those names
// before the relation is returned to its caller, per the "placeholder
// variables" executor rule: they never leak into a projected relation.
func elaboratePlaceholders(q *Query, path pattern.PathPattern) (pattern.PathPattern, []string) {
	if len(path.Nodes) < 3 {
		return path, nil
	}
	nodes := append([]pattern.NodePattern(nil), path.Nodes...)
	var synthesized []string
	for i := 1; i < len(nodes)-1; i++ {
		if nodes[i].Var != nil {
			continue
		}
		name := q.nextPlaceholder()
		np := nodes[i]
		np.Var = &name
		nodes[i] = np
		synthesized = append(synthesized, name)
	}
	return pattern.PathPattern{Nodes: nodes, Edges: path.Edges}, synthesized
}
