package querybuilder

import (
	"context"
	"testing"

	"github.com/implica/implica/internal/constant"
	"github.com/implica/implica/internal/graphstore"
	"github.com/implica/implica/internal/schema"
	"github.com/implica/implica/internal/syntax"
	"github.com/implica/implica/internal/typ"
)

func buildWorksAtRegistry(t *testing.T) *constant.Registry {
	t.Helper()
	person := typ.Variable{Name: "Person"}
	company := typ.Variable{Name: "Company"}
	reg, err := constant.NewRegistry([]constant.Constant{
		{Name: "worksAt", Schema: schema.TsExact{Type: typ.Arrow{Left: person, Right: company}}},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestCreateThenMatchEdge(t *testing.T) {
	g := graphstore.New()
	reg := buildWorksAtRegistry(t)

	createPath, err := syntax.ParsePath(`(:Person)-[:Person -> Company:@worksAt()]->(:Company)`)
	if err != nil {
		t.Fatalf("ParsePath(create): %v", err)
	}
	if err := New(g, reg).Create(createPath).Execute(context.Background()); err != nil {
		t.Fatalf("Execute(create): %v", err)
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Fatalf("expected 2 nodes and 1 edge, got %d/%d", g.NodeCount(), g.EdgeCount())
	}

	matchPath, err := syntax.ParsePath(`(p:Person)-[e:@worksAt()]->(c:Company)`)
	if err != nil {
		t.Fatalf("ParsePath(match): %v", err)
	}
	rows, err := New(g, reg).Match(matchPath).Return(context.Background(), "p", "e", "c")
	if err != nil {
		t.Fatalf("Return: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if !rows[0]["p"].IsNode() || !rows[0]["c"].IsNode() || !rows[0]["e"].IsEdge() {
		t.Fatal("expected p/c bound to nodes and e bound to an edge")
	}
}

func TestCreateReusesAlreadyBoundNode(t *testing.T) {
	g := graphstore.New()
	reg := buildWorksAtRegistry(t)

	// The two Company nodes carry distinct terms: term-less (:Company)
	// nodes would share one UID, and so would their edges.
	for _, name := range []string{"acme", "globex"} {
		if err := reg.Declare(constant.Constant{Name: name, Schema: schema.TsExact{Type: typ.Variable{Name: "Company"}}}); err != nil {
			t.Fatalf("Declare(%s): %v", name, err)
		}
	}

	// Two CREATE clauses sharing the same variable for the Person node
	// should attach both edges to the one created node, not two.
	first, err := syntax.ParsePath(`(p:Person)-[:Person -> Company:@worksAt()]->(:Company:@acme())`)
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	second, err := syntax.ParsePath(`(p:Person)-[:Person -> Company:@worksAt()]->(:Company:@globex())`)
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}

	// "p" is bound by the first CREATE and still in the relation when
	// the second CREATE runs, so it reuses that node instead of
	// minting a new one.
	q := New(g, reg).Create(first).Create(second)

	if err := q.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 2 {
		t.Fatalf("expected 3 nodes (1 person + 2 company) and 2 edges, got %d/%d", g.NodeCount(), g.EdgeCount())
	}
}

func TestCreateAmbiguousWithoutExactType(t *testing.T) {
	g := graphstore.New()
	reg := buildWorksAtRegistry(t)

	path, err := syntax.ParsePath(`(:*)`)
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	err = New(g, reg).Create(path).Execute(context.Background())
	if err == nil {
		t.Fatal("expected AmbiguousCreate for a wildcard type schema")
	}
	qerr, ok := err.(QueryError)
	if !ok || qerr.Kind != "AmbiguousCreate" {
		t.Fatalf("expected AmbiguousCreate, got %#v", err)
	}
}

func TestSetNodePropertiesThenReturn(t *testing.T) {
	g := graphstore.New()
	reg := buildWorksAtRegistry(t)

	createPath, err := syntax.ParsePath(`(:Person)`)
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	if err := New(g, reg).Create(createPath).Execute(context.Background()); err != nil {
		t.Fatalf("Execute(create): %v", err)
	}

	matchPath, err := syntax.ParsePath(`(p:Person)`)
	if err != nil {
		t.Fatalf("ParsePath(match): %v", err)
	}
	props := graphstore.PropMap{"active": graphstore.BoolValue(true)}
	rows, err := New(g, reg).Match(matchPath).Set("p", props, true).Return(context.Background(), "p")
	if err != nil {
		t.Fatalf("Return: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	n, ok := g.GetNode(rows[0]["p"].NodeRef)
	if !ok {
		t.Fatal("expected node to still exist")
	}
	if got := n.Properties()["active"]; !graphstore.EqualValue(got, graphstore.BoolValue(true)) {
		t.Fatalf("expected active=true, got %#v", got)
	}
}

func TestRemoveNodeCascadesAndDropsBindings(t *testing.T) {
	g := graphstore.New()
	reg := buildWorksAtRegistry(t)

	createPath, err := syntax.ParsePath(`(:Person)-[:Person -> Company:@worksAt()]->(:Company)`)
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	if err := New(g, reg).Create(createPath).Execute(context.Background()); err != nil {
		t.Fatalf("Execute(create): %v", err)
	}

	matchPath, err := syntax.ParsePath(`(p:Person)-[e:@worksAt()]->(c:Company)`)
	if err != nil {
		t.Fatalf("ParsePath(match): %v", err)
	}
	rows, err := New(g, reg).Match(matchPath).Remove("p").Return(context.Background(), "c")
	if err != nil {
		t.Fatalf("Return: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if g.NodeCount() != 1 || g.EdgeCount() != 0 {
		t.Fatalf("expected person and its edge gone, got %d nodes / %d edges", g.NodeCount(), g.EdgeCount())
	}
}

func TestReturnUnknownVariableFails(t *testing.T) {
	g := graphstore.New()
	reg := buildWorksAtRegistry(t)
	matchPath, err := syntax.ParsePath(`(p:Person)`)
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	_, err = New(g, reg).Match(matchPath).Return(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected UnknownVariable error")
	}
}

func TestQueryCannotBeReExecuted(t *testing.T) {
	g := graphstore.New()
	reg := buildWorksAtRegistry(t)
	q := New(g, reg)
	if err := q.Execute(context.Background()); err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if err := q.Execute(context.Background()); err == nil {
		t.Fatal("expected re-execution to fail")
	}
}
