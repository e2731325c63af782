// Package implica is an in-memory, typed property-graph engine: nodes
// and edges carry a type from a simply-typed lambda calculus, an
// optional term built from declared constants, and a property map.
// Graphs are queried and mutated through a chainable Cypher-like
// builder extended with type/term schemas.
package implica

import (
	"context"
	"io"

	"github.com/implica/implica/internal/constant"
	"github.com/implica/implica/internal/graphstore"
	"github.com/implica/implica/internal/pattern"
	"github.com/implica/implica/internal/querybuilder"
	"github.com/implica/implica/internal/serialize"
	"github.com/implica/implica/internal/syntax"
)

// Node and Edge are the element surface: uid(), type(), term(),
// properties(). Re-exported rather than wrapped, since graphstore
// already implements the full surface spec.md §6 describes.
type (
	Node = graphstore.Node
	Edge = graphstore.Edge
)

// Constant declares a named term generator with a possibly polymorphic
// type schema, filled positionally at `@name(...)` invocation sites.
type Constant = constant.Constant

// Relation is the builder's projected result: an ordered sequence of
// rows, each row a var→binding mapping.
type Relation = querybuilder.Relation

// OrderKey names one ORDER BY sort key.
type OrderKey = querybuilder.OrderKey

// Graph is the typed property-graph store together with the constant
// registry used to elaborate `@name(...)` term invocations in queries
// run against it.
type Graph struct {
	store *graphstore.Graph
	reg   *constant.Registry
}

// New constructs an empty graph with the given declared constants.
func New(constants []Constant) (*Graph, error) {
	reg, err := constant.NewRegistry(constants)
	if err != nil {
		return nil, err
	}
	return &Graph{store: graphstore.New(), reg: reg}, nil
}

// Load reads a graph's nodes and edges from JSON read from r. The
// returned graph has an empty constant registry — declare constants on
// it via Declare before running queries that invoke one.
func Load(r io.Reader) (*Graph, error) {
	store, err := serialize.ReadJSON(r)
	if err != nil {
		return nil, err
	}
	reg, err := constant.NewRegistry(nil)
	if err != nil {
		return nil, err
	}
	return &Graph{store: store, reg: reg}, nil
}

// LoadFile reads a graph from a JSON file at path.
func LoadFile(path string) (*Graph, error) {
	store, err := serialize.LoadJSON(path)
	if err != nil {
		return nil, err
	}
	reg, err := constant.NewRegistry(nil)
	if err != nil {
		return nil, err
	}
	return &Graph{store: store, reg: reg}, nil
}

// Save writes the graph's nodes and edges as JSON to w. Declared
// constants are not part of the serialized form — a loader must
// re-declare them.
func (g *Graph) Save(w io.Writer) error {
	return serialize.WriteJSON(g.store, w)
}

// SaveFile writes the graph to a JSON file at path.
func (g *Graph) SaveFile(path string) error {
	return serialize.SaveJSON(g.store, path)
}

// Declare adds a constant to the graph's registry after construction.
func (g *Graph) Declare(c Constant) error {
	return g.reg.Declare(c)
}

// Nodes returns every node currently stored in the graph.
func (g *Graph) Nodes() []*Node {
	return g.store.AllNodes()
}

// Edges returns every edge currently stored in the graph.
func (g *Graph) Edges() []*Edge {
	return g.store.AllEdges()
}

// SetNodeProperties mutates a node's property map in place, by UID.
func (g *Graph) SetNodeProperties(n *Node, props graphstore.PropMap, overwrite bool) error {
	return g.store.SetNodeProperties(n.UID(), props, overwrite)
}

// SetEdgeProperties mutates an edge's property map in place, by UID.
func (g *Graph) SetEdgeProperties(e *Edge, props graphstore.PropMap, overwrite bool) error {
	return g.store.SetEdgeProperties(e.UID(), props, overwrite)
}

// Query starts a new chainable query against the graph. A Query is
// single-use: exactly one call to Execute or Return runs it, and any
// later call to either fails.
func (g *Graph) Query() *Query {
	return &Query{inner: querybuilder.New(g.store, g.reg)}
}

// Query wraps querybuilder.Query, accepting the pattern surface's
// string syntax (e.g. "(p:Person)-[e:@worksAt()]->(c:Company)") at
// each clause instead of a pre-parsed pattern.PathPattern — parse
// errors are deferred to Execute/Return so the fluent chain never
// needs an early return.
type Query struct {
	inner *querybuilder.Query
	err   error
}

// Match appends a MATCH clause parsed from pat.
func (q *Query) Match(pat string) *Query {
	return q.appendPath(pat, q.inner.Match)
}

// Create appends a CREATE clause parsed from pat.
func (q *Query) Create(pat string) *Query {
	return q.appendPath(pat, q.inner.Create)
}

func (q *Query) appendPath(pat string, clause func(pattern.PathPattern) *querybuilder.Query) *Query {
	if q.err != nil {
		return q
	}
	p, err := syntax.ParsePath(pat)
	if err != nil {
		q.err = err
		return q
	}
	q.inner = clause(p)
	return q
}

// Set appends a SET clause: overwrite or merge v's properties.
func (q *Query) Set(v string, props graphstore.PropMap, overwrite bool) *Query {
	if q.err != nil {
		return q
	}
	q.inner = q.inner.Set(v, props, overwrite)
	return q
}

// Remove appends a REMOVE clause deleting the named elements.
func (q *Query) Remove(vars ...string) *Query {
	if q.err != nil {
		return q
	}
	q.inner = q.inner.Remove(vars...)
	return q
}

// OrderBy appends an ORDER BY clause.
func (q *Query) OrderBy(keys []OrderKey, ascending bool) *Query {
	if q.err != nil {
		return q
	}
	q.inner = q.inner.OrderBy(keys, ascending)
	return q
}

// Execute runs the clause chain, discarding the resulting relation.
func (q *Query) Execute(ctx context.Context) error {
	if q.err != nil {
		return q.err
	}
	return q.inner.Execute(ctx)
}

// Return runs the clause chain and projects the result onto vars.
func (q *Query) Return(ctx context.Context, vars ...string) (Relation, error) {
	if q.err != nil {
		return nil, q.err
	}
	return q.inner.Return(ctx, vars...)
}
