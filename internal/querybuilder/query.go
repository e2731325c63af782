// Package querybuilder implements the chainable MATCH/CREATE/SET/
// REMOVE/ORDER BY/RETURN query surface over a live graph: a Query
// accumulates clauses, then executes them in declaration order against
// a Relation (an ordered set of Rows, each row a var→binding mapping).
package querybuilder

import (
	"context"
	"strconv"

	"github.com/implica/implica/internal/constant"
	"github.com/implica/implica/internal/ctxt"
	"github.com/implica/implica/internal/graphstore"
	"github.com/implica/implica/internal/ident"
	"github.com/implica/implica/internal/pattern"
)

// Row is one binding assignment: variable name to whatever it's bound
// to (a node, an edge, a type, or a term).
type Row map[string]ctxt.Binding

// Relation is an ordered sequence of Rows, the unit every clause
// consumes and produces.
type Relation []Row

// clause is one MATCH/CREATE/SET/REMOVE/ORDER BY step: it consumes the
// relation built so far and returns the relation after its effect.
type clause interface {
	apply(ctx context.Context, q *Query, rel Relation) (Relation, error)
}

// Query accumulates clauses against a graph and a constant registry
// (needed by CREATE to instantiate constants), then runs them exactly
// once. Re-execution is rejected: a Query is single-use, mirroring the
// Empty → (clause…)* → Executable → Executed state machine.
type Query struct {
	g        *graphstore.Graph
	reg      *constant.Registry
	clauses  []clause
	phCount  int
	executed bool
}

// New returns an empty query over g, resolving CREATE term
// invocations against reg.
func New(g *graphstore.Graph, reg *constant.Registry) *Query {
	return &Query{g: g, reg: reg}
}

// Match appends a MATCH clause.
func (q *Query) Match(p pattern.PathPattern) *Query {
	q.clauses = append(q.clauses, matchClause{path: p})
	return q
}

// Create appends a CREATE clause.
func (q *Query) Create(p pattern.PathPattern) *Query {
	q.clauses = append(q.clauses, createClause{path: p})
	return q
}

// Set appends a SET clause: mutate v's graph element properties.
func (q *Query) Set(v string, props graphstore.PropMap, overwrite bool) *Query {
	q.clauses = append(q.clauses, setClause{v: v, props: props, overwrite: overwrite})
	return q
}

// Remove appends a REMOVE clause deleting the named elements.
func (q *Query) Remove(vars ...string) *Query {
	q.clauses = append(q.clauses, removeClause{vars: vars})
	return q
}

// OrderKey names one sort key: the property named Key on the element
// bound to Var.
type OrderKey struct {
	Var, Key string
}

// OrderBy appends an ORDER BY clause: a stable multi-key sort with
// rows missing a key sorting before rows that have it.
func (q *Query) OrderBy(keys []OrderKey, ascending bool) *Query {
	q.clauses = append(q.clauses, orderByClause{keys: keys, ascending: ascending})
	return q
}

// Execute runs the clause chain, discarding the resulting relation.
func (q *Query) Execute(ctx context.Context) error {
	_, err := q.run(ctx)
	return err
}

// Return runs the clause chain and projects the resulting relation
// onto vars, failing UnknownVariable if any row lacks one.
func (q *Query) Return(ctx context.Context, vars ...string) (Relation, error) {
	rel, err := q.run(ctx)
	if err != nil {
		return nil, err
	}
	projected := make(Relation, len(rel))
	for i, row := range rel {
		out := make(Row, len(vars))
		for _, v := range vars {
			b, ok := row[v]
			if !ok {
				return nil, ctxt.UnknownVariable(v)
			}
			out[v] = b
		}
		projected[i] = out
	}
	return projected, nil
}

func (q *Query) run(ctx context.Context) (Relation, error) {
	if q.executed {
		return nil, InvalidQuery("query has already been executed; a Query is single-use")
	}
	q.executed = true

	rel := Relation{Row{}}
	for _, c := range q.clauses {
		var err error
		rel, err = c.apply(ctx, q, rel)
		if err != nil {
			return nil, err
		}
	}
	return rel, nil
}

// nextPlaceholder synthesizes a fresh internal variable name for a
// path entry that has no user-supplied variable but whose position
// still needs a name to flow through a Row — drawn from a monotonic
// counter so synthesized names never repeat within one Query, and
// always carrying ident.PlaceholderPrefix so they can never collide
// with (or be spoofed by) a user-supplied name, which ValidateBindingName
// rejects at parse time.
func (q *Query) nextPlaceholder() string {
	q.phCount++
	return ident.PlaceholderPrefix + strconv.Itoa(q.phCount)
}
