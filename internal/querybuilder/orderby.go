package querybuilder

import (
	"context"
	"sort"

	"github.com/implica/implica/internal/graphstore"
)

// orderByClause stably sorts the relation by a sequence of v.key
// property paths. A row missing a key (its variable isn't bound, its
// element has no such property, or the element has since been
// removed) sorts before rows that have it, for that key.
type orderByClause struct {
	keys      []OrderKey
	ascending bool
}

func (c orderByClause) apply(ctx context.Context, q *Query, rel Relation) (Relation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(c.keys) == 0 {
		return nil, InvalidQuery("order by requires at least one key")
	}

	out := make(Relation, len(rel))
	copy(out, rel)

	sort.SliceStable(out, func(i, j int) bool {
		return c.less(q, out[i], out[j])
	})
	return out, nil
}

func (c orderByClause) less(q *Query, a, b Row) bool {
	for _, key := range c.keys {
		va, pa := propertyValue(q, a, key)
		vb, pb := propertyValue(q, b, key)

		if pa != pb {
			// Missing sorts first regardless of direction.
			return !pa
		}
		if !pa {
			continue // both missing: tie on this key, try the next
		}
		switch cmp := compareValues(va, vb); {
		case cmp < 0:
			return c.ascending
		case cmp > 0:
			return !c.ascending
		default:
			continue
		}
	}
	return false
}

func propertyValue(q *Query, row Row, key OrderKey) (graphstore.Value, bool) {
	b, ok := row[key.Var]
	if !ok {
		return graphstore.Value{}, false
	}

	var props graphstore.PropMap
	switch {
	case b.IsNode():
		n, ok := q.g.GetNode(b.NodeRef)
		if !ok {
			return graphstore.Value{}, false
		}
		props = n.Properties()
	case b.IsEdge():
		e, ok := q.g.GetEdge(b.EdgeRef)
		if !ok {
			return graphstore.Value{}, false
		}
		props = e.Properties()
	default:
		return graphstore.Value{}, false
	}

	v, present := props[key.Key]
	return v, present
}

// kindRank totally orders Value kinds so cross-kind comparisons (which
// spec.md leaves undefined) are at least deterministic and stable.
var kindRank = map[graphstore.ValueKind]int{
	graphstore.NullVal:   0,
	graphstore.BoolVal:   1,
	graphstore.IntVal:    2,
	graphstore.FloatVal:  3,
	graphstore.StringVal: 4,
	graphstore.ListVal:   5,
	graphstore.MapVal:    6,
}

// compareValues returns -1/0/1. Values of different kinds compare by
// kindRank; same-kind values compare by their natural order, except
// List/Map, which only compare equal when graphstore.EqualValue says
// so and otherwise return -1 in either direction, leaving the relative
// order of two unequal lists (or maps) undefined.
func compareValues(a, b graphstore.Value) int {
	if a.Kind != b.Kind {
		if kindRank[a.Kind] < kindRank[b.Kind] {
			return -1
		}
		return 1
	}
	switch a.Kind {
	case graphstore.NullVal:
		return 0
	case graphstore.BoolVal:
		if a.Bool == b.Bool {
			return 0
		}
		if !a.Bool {
			return -1
		}
		return 1
	case graphstore.IntVal:
		switch {
		case a.Int < b.Int:
			return -1
		case a.Int > b.Int:
			return 1
		default:
			return 0
		}
	case graphstore.FloatVal:
		switch {
		case a.Flt < b.Flt:
			return -1
		case a.Flt > b.Flt:
			return 1
		default:
			return 0
		}
	case graphstore.StringVal:
		switch {
		case a.Str < b.Str:
			return -1
		case a.Str > b.Str:
			return 1
		default:
			return 0
		}
	default:
		if graphstore.EqualValue(a, b) {
			return 0
		}
		return -1
	}
}
