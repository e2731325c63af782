// Package syntax is the participle-based parser for the type, term,
// schema, and pattern surface syntax: the textual forms users write
// (e.g. "(p:Person)-[:@worksAt()]->(c:Company)") and the standalone
// type/term literals used to declare constants and round-trip print
// output.
package syntax

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var implicaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Arrow", Pattern: `->|<-`},
	{Name: "Keyword", Pattern: `(?i)\b(true|false|null)\b`},
	{Name: "Float", Pattern: `\d+\.\d+`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "String", Pattern: `"([^"\\]|\\.)*"`},
	{Name: "At", Pattern: `@`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[(){}\[\]:,\*\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// --- Type --------------------------------------------------------

// TypeAST is `atom ('->' type)?`, right-associative.
type TypeAST struct {
	Atom  *TypeAtomAST `parser:"@@"`
	Arrow *TypeAST     `parser:"( \"->\" @@ )?"`
}

// TypeAtomAST is `IDENT | '(' type ')'`.
type TypeAtomAST struct {
	Ident *string  `parser:"  @Ident"`
	Paren *TypeAST `parser:"| \"(\" @@ \")\""`
}

var typeParser = participle.MustBuild[TypeAST](
	participle.Lexer(implicaLexer),
	participle.Elide("Whitespace"),
)

// --- TypeSchema ----------------------------------------------------

// TypeSchemaAST is `atom ('->' typeSchema)?`, right-associative.
type TypeSchemaAST struct {
	Atom  *TypeSchemaAtomAST `parser:"@@"`
	Arrow *TypeSchemaAST     `parser:"( \"->\" @@ )?"`
}

// TypeSchemaAtomAST is `'*' | ident | '(' ident ':' typeSchema ')' | '(' typeSchema ')'`.
type TypeSchemaAtomAST struct {
	Wildcard bool                `parser:"(  @\"*\""`
	Ident    *string             `parser:" | @Ident"`
	Paren    *TypeSchemaParenAST `parser:" | @@ )"`
}

// TypeSchemaParenAST disambiguates the two parenthesized forms by
// lookahead: CaptureName is set only when the identifier immediately
// inside the parens is followed by ':'.
type TypeSchemaParenAST struct {
	CaptureName *string        `parser:"\"(\" ( @Ident \":\" )?"`
	Inner       *TypeSchemaAST `parser:"@@ \")\""`
}

var typeSchemaParser = participle.MustBuild[TypeSchemaAST](
	participle.Lexer(implicaLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// --- Term ----------------------------------------------------------

// TermAST is `app := atomT (atomT)*`, left-associative application of
// constant invocations and parenthesized subterms.
type TermAST struct {
	Head *TermAtomAST  `parser:"@@"`
	Rest []*TermAtomAST `parser:"@@*"`
}

// TermAtomAST is `'@' IDENT '(' args? ')' | '(' term ')'`.
type TermAtomAST struct {
	Invocation *InvocationAST `parser:"(  @@"`
	Paren      *TermAST       `parser:" | \"(\" @@ \")\" )"`
}

// InvocationAST is `'@' IDENT '(' (type (',' type)*)? ')'` — a
// constant invocation whose arguments instantiate the constant's
// declared type-schema captures, positionally.
type InvocationAST struct {
	Name string    `parser:"\"@\" @Ident \"(\""`
	Args []*TypeAST `parser:"( @@ ( \",\" @@ )* )? \")\""`
}

var termParser = participle.MustBuild[TermAST](
	participle.Lexer(implicaLexer),
	participle.Elide("Whitespace"),
)

// --- TermSchema ------------------------------------------------------

// TermSchemaAST is `'*' | ident | '@' ident '(' (type (',' type)*)?
// ')' | '(' termSchema ')' | termSchema termSchema` (juxtaposition = App).
type TermSchemaAST struct {
	Head *TermSchemaAtomAST   `parser:"@@"`
	Rest []*TermSchemaAtomAST `parser:"@@*"`
}

// TermSchemaAtomAST is a wildcard, a bare constant-derived reference,
// an exact constant invocation with positional type arguments (the
// same InvocationAST the raw term grammar uses — a term schema that
// names concrete type arguments fully resolves to one term, so it
// reuses the constructive grammar rather than a separate schema-only
// one), or a parenthesized sub-schema.
type TermSchemaAtomAST struct {
	Wildcard   bool           `parser:"(  @\"*\""`
	Ident      *string        `parser:" | @Ident"`
	Invocation *InvocationAST `parser:" | @@"`
	Paren      *TermSchemaAST `parser:" | \"(\" @@ \")\" )"`
}

var termSchemaParser = participle.MustBuild[TermSchemaAST](
	participle.Lexer(implicaLexer),
	participle.Elide("Whitespace"),
)

// --- Property literals -------------------------------------------------

// PropMapAST is `'{' (ident ':' propLit (',' ident ':' propLit)*)? '}'`.
type PropMapAST struct {
	Entries []*PropEntryAST `parser:"\"{\" ( @@ ( \",\" @@ )* )? \"}\""`
}

// PropEntryAST is `ident ':' propLit`.
type PropEntryAST struct {
	Key   string      `parser:"@Ident \":\""`
	Value *PropLitAST `parser:"@@"`
}

// PropLitAST is a typed property literal.
type PropLitAST struct {
	Str   *string      `parser:"(  @String"`
	Float *float64     `parser:" | @Float"`
	Int   *int64       `parser:" | @Int"`
	True  bool         `parser:" | @\"true\""`
	False bool         `parser:" | @\"false\""`
	Null  bool         `parser:" | @\"null\""`
	List  *PropListAST `parser:" | @@"`
	Map   *PropMapAST  `parser:" | @@ )"`
}

// PropListAST is `'[' propLit* ']'`.
type PropListAST struct {
	Items []*PropLitAST `parser:"\"[\" @@* \"]\""`
}

// --- Pattern path -----------------------------------------------------

// PathAST is `nodePat (edgePat nodePat)*`.
type PathAST struct {
	First *NodePatAST   `parser:"@@"`
	Rest  []*PathHopAST `parser:"@@*"`
}

// PathHopAST is one (edge, node) hop following the path's first node.
type PathHopAST struct {
	Edge *EdgePatAST `parser:"@@"`
	Node *NodePatAST `parser:"@@"`
}

// NodePatAST is `'(' ident? (':' typeSchema)? (':' termSchema)? propMap? ')'`.
type NodePatAST struct {
	Ident      *string        `parser:"\"(\" @Ident?"`
	TypeSchema *TypeSchemaAST `parser:"( \":\" @@ )?"`
	TermSchema *TermSchemaAST `parser:"( \":\" @@ )?"`
	Props      *PropMapAST    `parser:"@@? \")\""`
}

// EdgePatAST is `'-' '[' edgeBody ']' '->' | '<-' '[' edgeBody ']' '-'`.
type EdgePatAST struct {
	Forward  *EdgeBodyAST `parser:"(  \"-\" @@ \"->\""`
	Backward *EdgeBodyAST `parser:" | \"<-\" @@ \"-\" )"`
}

// EdgeBodyAST is the bracketed interior of an edge pattern.
type EdgeBodyAST struct {
	Ident      *string        `parser:"\"[\" @Ident?"`
	TypeSchema *TypeSchemaAST `parser:"( \":\" @@ )?"`
	TermSchema *TermSchemaAST `parser:"( \":\" @@ )?"`
	Props      *PropMapAST    `parser:"@@? \"]\""`
}

// UseLookahead(2) is required here for the same reason as
// typeSchemaParser above: NodePatAST and EdgeBodyAST each have two
// back-to-back optional groups `( ":" @@ )?` (type schema, then term
// schema) sharing the leading ":" token. Without lookahead,
// participle commits to the first group on seeing ":" and never
// backtracks into the second, so "[::@worksAt()]" (an edge with no
// type schema but a term schema) fails to parse.
var pathParser = participle.MustBuild[PathAST](
	participle.Lexer(implicaLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)
