package querybuilder

import (
	"context"
	"sort"
	"strings"

	"github.com/implica/implica/internal/ctxt"
)

// removeClause deletes the graph elements bound to vars from every
// row: node removal cascades to incident edges in the graph itself,
// and any other binding in the row that pointed at a now-deleted
// element is dropped too, since it no longer names anything live.
// Rows that become identical after removal are deduplicated.
type removeClause struct {
	vars []string
}

func (c removeClause) apply(ctx context.Context, q *Query, rel Relation) (Relation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(Relation, 0, len(rel))
	seen := make(map[string]struct{}, len(rel))

	for _, row := range rel {
		newRow := make(Row, len(row))
		for k, v := range row {
			newRow[k] = v
		}

		for _, v := range c.vars {
			b, ok := newRow[v]
			if !ok {
				return nil, ctxt.UnknownVariable(v)
			}
			switch {
			case b.IsNode():
				// A fan-out MATCH can bind the same node across
				// several rows (e.g. one person with two outgoing
				// edges); an earlier row in this clause may already
				// have removed it, which is not an error here.
				if q.g.ContainsNode(b.NodeRef) {
					if err := q.g.RemoveNode(b.NodeRef); err != nil {
						return nil, err
					}
				}
			case b.IsEdge():
				if _, ok := q.g.GetEdge(b.EdgeRef); ok {
					if err := q.g.RemoveEdge(b.EdgeRef); err != nil {
						return nil, err
					}
				}
			default:
				return nil, UnsupportedTarget(v)
			}
			delete(newRow, v)
		}

		dropDanglingRefs(q, newRow)

		key := rowKey(newRow)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, newRow)
	}
	return out, nil
}

// dropDanglingRefs removes any remaining binding whose node/edge no
// longer exists in the graph, which is how a node removal's cascade
// to incident edges becomes visible in rows that hadn't named the
// node directly.
func dropDanglingRefs(q *Query, row Row) {
	for k, b := range row {
		switch {
		case b.IsNode() && !q.g.ContainsNode(b.NodeRef):
			delete(row, k)
		case b.IsEdge():
			if _, ok := q.g.GetEdge(b.EdgeRef); !ok {
				delete(row, k)
			}
		}
	}
}

// rowKey returns a canonical string for row's contents, used only to
// detect rows that became duplicates after REMOVE dropped bindings.
func rowKey(row Row) string {
	names := make([]string, 0, len(row))
	for k := range row {
		names = append(names, k)
	}
	sort.Strings(names)
	var sb strings.Builder
	for _, k := range names {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(row[k].String())
		sb.WriteByte(';')
	}
	return sb.String()
}
