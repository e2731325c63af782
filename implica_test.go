package implica

import (
	"context"
	"testing"

	"github.com/implica/implica/internal/gid"
	"github.com/implica/implica/internal/graphstore"
	"github.com/implica/implica/internal/schema"
	"github.com/implica/implica/internal/typ"
)

// findNode looks a node up by the UID a MATCH/RETURN bound, since a
// Binding only carries the reference, not the element itself.
func findNode(t *testing.T, g *Graph, ref gid.NodeUID) *graphstore.Node {
	t.Helper()
	for _, n := range g.Nodes() {
		if n.UID() == ref {
			return n
		}
	}
	t.Fatalf("no node for ref %s", ref)
	return nil
}

// TestScenarioS1MinimalCreateAndMatch is spec scenario S1: create a
// bare node, match it back, and check its type and absent term.
func TestScenarioS1MinimalCreateAndMatch(t *testing.T) {
	g, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.Query().Create("(:A)").Execute(context.Background()); err != nil {
		t.Fatalf("Execute(create): %v", err)
	}

	rows, err := g.Query().Match("(n:A)").Return(context.Background(), "n")
	if err != nil {
		t.Fatalf("Return: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	n := findNode(t, g, rows[0]["n"].NodeRef)
	if !typ.Equal(n.Type(), typ.Variable{Name: "A"}) {
		t.Fatalf("expected type A, got %s", n.Type())
	}
	if _, ok := n.Term(); ok {
		t.Fatal("expected no term")
	}
}

// TestScenarioS2ArrowEdgeWithConstant is spec scenario S2: a declared
// constant instantiates an Arrow-typed edge via "[::@worksAt()]" — the
// exact syntax that needs pathParser's lookahead fix to parse at all.
func TestScenarioS2ArrowEdgeWithConstant(t *testing.T) {
	person := typ.Variable{Name: "Person"}
	company := typ.Variable{Name: "Company"}
	g, err := New([]Constant{
		{Name: "worksAt", Schema: schema.TsExact{Type: typ.Arrow{Left: person, Right: company}}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := g.Query().Create("(:Person)-[::@worksAt()]->(:Company)").Execute(context.Background()); err != nil {
		t.Fatalf("Execute(create): %v", err)
	}

	rows, err := g.Query().Match("(p:Person)-[e]->(c:Company)").Return(context.Background(), "p", "e", "c")
	if err != nil {
		t.Fatalf("Return: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	var e *graphstore.Edge
	for _, edge := range g.Edges() {
		if edge.UID() == rows[0]["e"].EdgeRef {
			e = edge
		}
	}
	if e == nil {
		t.Fatal("no edge for bound ref")
	}
	if !typ.Equal(e.Type(), typ.Arrow{Left: person, Right: company}) {
		t.Fatalf("expected Arrow(Person,Company), got %s", e.Type())
	}
}

// TestScenarioS3CapturePropagatesAcrossPath is spec scenario S3: a
// polymorphic constant's captures propagate through MATCH so the two
// endpoint node types come back bound to the same variables used to
// create them.
func TestScenarioS3CapturePropagatesAcrossPath(t *testing.T) {
	capX, err := schema.NewTsCapture("A", schema.TsWildcard{})
	if err != nil {
		t.Fatalf("NewTsCapture: %v", err)
	}
	capY, err := schema.NewTsCapture("B", schema.TsWildcard{})
	if err != nil {
		t.Fatalf("NewTsCapture: %v", err)
	}
	g, err := New([]Constant{
		{Name: "edge", Schema: schema.TsArrow{Left: capX, Right: capY}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := g.Query().Create("(:X)").Create("(:Y)").Execute(context.Background()); err != nil {
		t.Fatalf("Execute(create nodes): %v", err)
	}
	if err := g.Query().Create("()-[::@edge(X,Y)]->()").Execute(context.Background()); err != nil {
		t.Fatalf("Execute(create edge): %v", err)
	}

	rows, err := g.Query().
		Match("(a:(X:*))-[e:(X:*) -> (Y:*)]->(b:(Y:*))").
		Return(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("Return: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	a := findNode(t, g, rows[0]["a"].NodeRef)
	b := findNode(t, g, rows[0]["b"].NodeRef)
	if !typ.Equal(a.Type(), typ.Variable{Name: "X"}) {
		t.Fatalf("expected a.type == X, got %s", a.Type())
	}
	if !typ.Equal(b.Type(), typ.Variable{Name: "Y"}) {
		t.Fatalf("expected b.type == Y, got %s", b.Type())
	}
}

// TestScenarioS4Conjunction is spec scenario S4: two MATCH clauses
// sharing a variable intersect rather than union.
func TestScenarioS4Conjunction(t *testing.T) {
	g, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = g.Query().
		Create("(:Person { age: 30 })").
		Create("(:Person { age: 40 })").
		Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute(create): %v", err)
	}

	rows, err := g.Query().
		Match("(n:Person)").
		Match("(n { age: 30 })").
		Return(context.Background(), "n")
	if err != nil {
		t.Fatalf("Return: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly 1 row, got %d", len(rows))
	}
}

// TestScenarioS5SetMergeVsOverwrite is spec scenario S5: SET with
// overwrite=false merges into existing properties, overwrite=true
// replaces them entirely.
func TestScenarioS5SetMergeVsOverwrite(t *testing.T) {
	g, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := g.Query().Create("(p:Person { a: 1, b: 2 })").Execute(context.Background()); err != nil {
		t.Fatalf("Execute(create): %v", err)
	}

	merge := graphstore.PropMap{"b": graphstore.IntValue(5), "c": graphstore.IntValue(7)}
	rows, err := g.Query().Match("(p:Person)").Set("p", merge, false).Return(context.Background(), "p")
	if err != nil {
		t.Fatalf("Return(merge): %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	n := findNode(t, g, rows[0]["p"].NodeRef)
	props := n.Properties()
	want := graphstore.PropMap{
		"a": graphstore.IntValue(1),
		"b": graphstore.IntValue(5),
		"c": graphstore.IntValue(7),
	}
	for k, v := range want {
		if got := props[k]; !graphstore.EqualValue(got, v) {
			t.Fatalf("property %s: expected %v, got %v", k, v, got)
		}
	}

	overwrite := graphstore.PropMap{"x": graphstore.IntValue(1)}
	if err := g.Query().Match("(p:Person)").Set("p", overwrite, true).Execute(context.Background()); err != nil {
		t.Fatalf("Execute(overwrite): %v", err)
	}
	n = findNode(t, g, rows[0]["p"].NodeRef)
	props = n.Properties()
	if len(props) != 1 || !graphstore.EqualValue(props["x"], graphstore.IntValue(1)) {
		t.Fatalf("expected properties == {x: 1}, got %#v", props)
	}
}

// TestScenarioS6RemoveCascade is spec scenario S6: removing a node
// cascades to its incident edge. Its MATCH binds a single row; the
// fan-out REMOVE case is covered by TestRemoveFanOutSharedNodeIsNotAnError.
func TestScenarioS6RemoveCascade(t *testing.T) {
	person := typ.Variable{Name: "Person"}
	company := typ.Variable{Name: "Company"}
	g, err := New([]Constant{
		{Name: "worksAt", Schema: schema.TsExact{Type: typ.Arrow{Left: person, Right: company}}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := g.Query().Create("(:Person)-[::@worksAt()]->(:Company)").Execute(context.Background()); err != nil {
		t.Fatalf("Execute(create): %v", err)
	}
	if err := g.Query().Match("(p:Person)").Remove("p").Execute(context.Background()); err != nil {
		t.Fatalf("Execute(remove): %v", err)
	}

	rows, err := g.Query().Match("()-[]->()").Return(context.Background())
	if err != nil {
		t.Fatalf("Return: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no edges left, got %d rows", len(rows))
	}
}

// TestRemoveFanOutSharedNodeIsNotAnError covers the same fan-out
// REMOVE hazard as S6 directly: a node with two outgoing edges of the
// same schema produces two rows that both bind it, and a single
// REMOVE("n") clause must not fail when the second row's RemoveNode
// finds the node already gone. The two Company nodes carry distinct
// terms, since term-less (:Company) nodes would share one UID.
func TestRemoveFanOutSharedNodeIsNotAnError(t *testing.T) {
	person := typ.Variable{Name: "Person"}
	company := typ.Variable{Name: "Company"}
	g, err := New([]Constant{
		{Name: "worksAt", Schema: schema.TsExact{Type: typ.Arrow{Left: person, Right: company}}},
		{Name: "acme", Schema: schema.TsExact{Type: company}},
		{Name: "globex", Schema: schema.TsExact{Type: company}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = g.Query().
		Create("(n:Person)-[::@worksAt()]->(:Company:@acme())").
		Create("(n:Person)-[::@worksAt()]->(:Company:@globex())").
		Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute(create): %v", err)
	}

	if err := g.Query().Match("(n:Person)-[:@worksAt()]->(x)").Remove("n").Execute(context.Background()); err != nil {
		t.Fatalf("Execute(remove): %v", err)
	}
	if len(g.Nodes()) != 2 || len(g.Edges()) != 0 {
		t.Fatalf("expected the person and both edges removed, leaving 2 company nodes; got %d nodes / %d edges", len(g.Nodes()), len(g.Edges()))
	}
}
