package pattern

import (
	"testing"

	"github.com/implica/implica/internal/ctxt"
	"github.com/implica/implica/internal/graphstore"
	"github.com/implica/implica/internal/schema"
	"github.com/implica/implica/internal/term"
	"github.com/implica/implica/internal/typ"
)

func mustVar(t *testing.T, name string) typ.Type {
	t.Helper()
	v, err := typ.NewVariable(name)
	if err != nil {
		t.Fatalf("NewVariable(%q): %v", name, err)
	}
	return v
}

func strp(s string) *string { return &s }

func TestMatchNodeByExactType(t *testing.T) {
	person := mustVar(t, "Person")
	n, err := graphstore.NewNode(person, nil, graphstore.PropMap{"age": graphstore.IntValue(30)})
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}

	np := NodePattern{
		Var:   strp("p"),
		Type:  schema.TsExact{Type: person},
		Props: PropPred{"age": graphstore.IntValue(30)},
	}

	ctx := ctxt.New()
	if !MatchNode(np, n, ctx) {
		t.Fatal("expected node to match")
	}
	b, ok := ctx.Get("p")
	if !ok || !b.IsNode() || b.NodeRef != n.UID() {
		t.Fatal("expected p bound to the node's UID")
	}
}

func TestMatchNodePropertyMismatchFails(t *testing.T) {
	person := mustVar(t, "Person")
	n, _ := graphstore.NewNode(person, nil, graphstore.PropMap{"age": graphstore.IntValue(30)})

	np := NodePattern{Props: PropPred{"age": graphstore.IntValue(99)}}
	ctx := ctxt.New()
	if MatchNode(np, n, ctx) {
		t.Fatal("expected property mismatch to fail the match")
	}
}

func TestMatchPathAlongSingleEdge(t *testing.T) {
	g := graphstore.New()
	person := mustVar(t, "Person")
	company := mustVar(t, "Company")
	arrow := typ.Arrow{Left: person, Right: company}

	p, _ := graphstore.NewNode(person, nil, nil)
	c, _ := graphstore.NewNode(company, nil, nil)
	pUID := g.AddNode(p)
	cUID := g.AddNode(c)

	worksAt, err := term.NewBasic("worksAt", arrow)
	if err != nil {
		t.Fatalf("NewBasic: %v", err)
	}
	e, err := graphstore.NewEdge(arrow, worksAt, pUID, cUID, nil)
	if err != nil {
		t.Fatalf("NewEdge: %v", err)
	}
	if _, err := g.AddEdge(e); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	path, err := NewPathPattern(
		[]NodePattern{
			{Var: strp("p"), Type: schema.TsExact{Type: person}},
			{Var: strp("c"), Type: schema.TsExact{Type: company}},
		},
		[]EdgePattern{
			{Var: strp("e"), Dir: Forward},
		},
	)
	if err != nil {
		t.Fatalf("NewPathPattern: %v", err)
	}

	results := MatchPath(g, path, ctxt.New())
	if len(results) != 1 {
		t.Fatalf("expected 1 match, got %d", len(results))
	}

	row := results[0].Rows()
	if row["p"].NodeRef != pUID {
		t.Error("p should bind to the person node")
	}
	if row["c"].NodeRef != cUID {
		t.Error("c should bind to the company node")
	}
	if _, ok := row["e"]; !ok {
		t.Error("e should be bound")
	}
}

func TestMatchPathBackwardDirection(t *testing.T) {
	g := graphstore.New()
	person := mustVar(t, "Person")
	company := mustVar(t, "Company")
	arrow := typ.Arrow{Left: person, Right: company}

	p, _ := graphstore.NewNode(person, nil, nil)
	c, _ := graphstore.NewNode(company, nil, nil)
	pUID := g.AddNode(p)
	cUID := g.AddNode(c)

	worksAt, _ := term.NewBasic("worksAt", arrow)
	e, _ := graphstore.NewEdge(arrow, worksAt, pUID, cUID, nil)
	if _, err := g.AddEdge(e); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	// Path written right-to-left: (c)<-[e]-(p)
	path, err := NewPathPattern(
		[]NodePattern{
			{Var: strp("c"), Type: schema.TsExact{Type: company}},
			{Var: strp("p"), Type: schema.TsExact{Type: person}},
		},
		[]EdgePattern{
			{Var: strp("e"), Dir: Backward},
		},
	)
	if err != nil {
		t.Fatalf("NewPathPattern: %v", err)
	}

	results := MatchPath(g, path, ctxt.New())
	if len(results) != 1 {
		t.Fatalf("expected 1 match, got %d", len(results))
	}
	row := results[0].Rows()
	if row["p"].NodeRef != pUID || row["c"].NodeRef != cUID {
		t.Error("backward direction should still resolve p as start, c as end")
	}
}
