package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/implica/implica/internal/ctxt"
	"github.com/implica/implica/internal/term"
	"github.com/implica/implica/internal/typ"
)

func TestTsExactMatchesOnlyThatType(t *testing.T) {
	person := typ.Variable{Name: "Person"}
	company := typ.Variable{Name: "Company"}
	s := TsExact{Type: person}

	assert.True(t, s.Match(person, ctxt.New()))
	assert.False(t, s.Match(company, ctxt.New()))
}

func TestTsWildcardMatchesAnything(t *testing.T) {
	assert.True(t, TsWildcard{}.Match(typ.Variable{Name: "Anything"}, ctxt.New()))
}

func TestTsArrowMatchesArmwise(t *testing.T) {
	person := typ.Variable{Name: "Person"}
	company := typ.Variable{Name: "Company"}
	worksAt := typ.Arrow{Left: person, Right: company}

	s := TsArrow{Left: TsExact{Type: person}, Right: TsExact{Type: company}}
	assert.True(t, s.Match(worksAt, ctxt.New()))
	assert.False(t, s.Match(person, ctxt.New()), "a non-arrow type can't match an arrow schema")

	mismatched := TsArrow{Left: TsExact{Type: company}, Right: TsExact{Type: person}}
	assert.False(t, mismatched.Match(worksAt, ctxt.New()))
}

func TestTsCaptureBindsOnSuccess(t *testing.T) {
	person := typ.Variable{Name: "Person"}
	c, err := NewTsCapture("X", TsWildcard{})
	require.NoError(t, err)

	ctx := ctxt.New()
	require.True(t, c.Match(person, ctx))
	b, ok := ctx.Get("X")
	require.True(t, ok)
	assert.True(t, b.IsType())
	assert.True(t, typ.Equal(b.Type, person))
}

func TestNewTsCaptureRejectsReservedNames(t *testing.T) {
	_, err := NewTsCapture("_", TsWildcard{})
	assert.Error(t, err)
}

func TestTmConstantDerivedMatchesApplicationSpine(t *testing.T) {
	person := typ.Variable{Name: "Person"}
	company := typ.Variable{Name: "Company"}
	worksAt, _ := term.NewBasic("worksAt", typ.Arrow{Left: person, Right: company})
	ada, _ := term.NewBasic("ada", person)
	app, err := term.NewApp(worksAt, ada)
	require.NoError(t, err)

	s := TmConstantDerived{Name: "worksAt"}
	assert.True(t, s.Match(app, ctxt.New()))
	assert.True(t, s.Match(worksAt, ctxt.New()))
	assert.False(t, s.Match(ada, ctxt.New()))
}

func TestTmExactConstantRequiresBareBasic(t *testing.T) {
	person := typ.Variable{Name: "Person"}
	company := typ.Variable{Name: "Company"}
	worksAt, _ := term.NewBasic("worksAt", typ.Arrow{Left: person, Right: company})
	ada, _ := term.NewBasic("ada", person)
	app, err := term.NewApp(worksAt, ada)
	require.NoError(t, err)

	s := TmExactConstant{Name: "worksAt"}
	assert.True(t, s.Match(worksAt, ctxt.New()))
	assert.False(t, s.Match(app, ctxt.New()), "an applied term is not the bare constant")
}

func TestTmInstantiatedMatchesByNameIgnoringTypeArgs(t *testing.T) {
	person := typ.Variable{Name: "Person"}
	worksAt, _ := term.NewBasic("worksAt", person)

	s := TmInstantiated{Name: "worksAt", TypeArgs: []typ.Type{typ.Variable{Name: "Company"}}}
	assert.True(t, s.Match(worksAt, ctxt.New()))

	other, _ := term.NewBasic("livesAt", person)
	assert.False(t, s.Match(other, ctxt.New()))
}

func TestTmAppMatchesBothSides(t *testing.T) {
	person := typ.Variable{Name: "Person"}
	company := typ.Variable{Name: "Company"}
	worksAt, _ := term.NewBasic("worksAt", typ.Arrow{Left: person, Right: company})
	ada, _ := term.NewBasic("ada", person)
	app, err := term.NewApp(worksAt, ada)
	require.NoError(t, err)

	s := TmApp{Fn: TmExactConstant{Name: "worksAt"}, Arg: TmExactConstant{Name: "ada"}}
	assert.True(t, s.Match(app, ctxt.New()))

	mismatched := TmApp{Fn: TmExactConstant{Name: "worksAt"}, Arg: TmExactConstant{Name: "bo"}}
	assert.False(t, mismatched.Match(app, ctxt.New()))
}
