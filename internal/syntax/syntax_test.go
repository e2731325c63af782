package syntax

import (
	"testing"

	"github.com/implica/implica/internal/constant"
	"github.com/implica/implica/internal/schema"
	"github.com/implica/implica/internal/typ"
)

func TestParseTypeVariable(t *testing.T) {
	ty, err := ParseType("Person")
	if err != nil {
		t.Fatalf("ParseType: %v", err)
	}
	v, ok := ty.(typ.Variable)
	if !ok || v.Name != "Person" {
		t.Fatalf("expected Variable(Person), got %#v", ty)
	}
}

func TestParseTypeArrowRightAssociative(t *testing.T) {
	ty, err := ParseType("A -> B -> C")
	if err != nil {
		t.Fatalf("ParseType: %v", err)
	}
	arrow, ok := ty.(typ.Arrow)
	if !ok {
		t.Fatalf("expected top-level Arrow, got %#v", ty)
	}
	if _, ok := arrow.Left.(typ.Variable); !ok {
		t.Fatal("left arm of A -> B -> C should be Variable(A)")
	}
	right, ok := arrow.Right.(typ.Arrow)
	if !ok {
		t.Fatal("A -> B -> C should nest as Arrow(A, Arrow(B, C))")
	}
	if rv, ok := right.Left.(typ.Variable); !ok || rv.Name != "B" {
		t.Fatal("right.Left should be Variable(B)")
	}
}

func TestParseTypeRoundTrip(t *testing.T) {
	ty, err := ParseType("Person -> Company")
	if err != nil {
		t.Fatalf("ParseType: %v", err)
	}
	reparsed, err := ParseType(ty.String())
	if err != nil {
		t.Fatalf("ParseType(print): %v", err)
	}
	if typ.UID(ty) != typ.UID(reparsed) {
		t.Fatal("UID should be invariant under print/parse")
	}
}

func TestParseTypeSchemaCapture(t *testing.T) {
	s, err := ParseTypeSchema("(X:*)")
	if err != nil {
		t.Fatalf("ParseTypeSchema: %v", err)
	}
	capture, ok := s.(schema.TsCapture)
	if !ok || capture.Name != "X" {
		t.Fatalf("expected TsCapture(X, ...), got %#v", s)
	}
	if _, ok := capture.Inner.(schema.TsWildcard); !ok {
		t.Fatal("expected wildcard inner schema")
	}
}

func TestParseTypeSchemaArrowOfCaptures(t *testing.T) {
	s, err := ParseTypeSchema("(X:*) -> (Y:*)")
	if err != nil {
		t.Fatalf("ParseTypeSchema: %v", err)
	}
	arrow, ok := s.(schema.TsArrow)
	if !ok {
		t.Fatalf("expected TsArrow, got %#v", s)
	}
	if _, ok := arrow.Left.(schema.TsCapture); !ok {
		t.Fatal("left arm should be a capture")
	}
}

func TestParseTermNullaryInvocation(t *testing.T) {
	person := typ.Variable{Name: "Person"}
	company := typ.Variable{Name: "Company"}
	reg, err := constant.NewRegistry([]constant.Constant{
		{Name: "worksAt", Schema: schema.TsExact{Type: typ.Arrow{Left: person, Right: company}}},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	tm, err := ParseTerm("@worksAt()", reg)
	if err != nil {
		t.Fatalf("ParseTerm: %v", err)
	}
	if tm.String() != "@worksAt()" {
		t.Fatalf("expected @worksAt(), got %s", tm.String())
	}
}

func TestParsePathSimpleEdge(t *testing.T) {
	path, err := ParsePath("(p:Person)-[e]->(c:Company)")
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	if len(path.Nodes) != 2 || len(path.Edges) != 1 {
		t.Fatalf("expected 2 nodes and 1 edge, got %d/%d", len(path.Nodes), len(path.Edges))
	}
	if path.Nodes[0].Var == nil || *path.Nodes[0].Var != "p" {
		t.Fatal("expected first node variable p")
	}
	if path.Edges[0].Var == nil || *path.Edges[0].Var != "e" {
		t.Fatal("expected edge variable e")
	}
}

func TestParsePathBackwardDirection(t *testing.T) {
	path, err := ParsePath("(c:Company)<-[e]-(p:Person)")
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	if len(path.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(path.Edges))
	}
}

func TestParsePathWithProperties(t *testing.T) {
	path, err := ParsePath(`(p:Person { age: 30, active: true })`)
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	if len(path.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(path.Nodes))
	}
	if path.Nodes[0].Props["age"].Int != 30 {
		t.Fatal("expected age property 30")
	}
}
