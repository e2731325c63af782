package syntax

import (
	"github.com/implica/implica/internal/constant"
	"github.com/implica/implica/internal/pattern"
	"github.com/implica/implica/internal/schema"
	"github.com/implica/implica/internal/term"
	"github.com/implica/implica/internal/typ"
)

func enrichSyntaxError(input string, err error) error {
	return SyntaxError{Kind: "ParseError", Message: err.Error() + " (input: " + input + ")"}
}

// ParseType parses a standalone type literal, e.g. "Person" or
// "Person -> Company".
func ParseType(input string) (typ.Type, error) {
	ast, err := typeParser.ParseString("", input)
	if err != nil {
		return nil, enrichSyntaxError(input, err)
	}
	return convertType(ast)
}

// ParseTypeSchema parses a standalone type schema literal.
func ParseTypeSchema(input string) (schema.TypeSchema, error) {
	ast, err := typeSchemaParser.ParseString("", input)
	if err != nil {
		return nil, enrichSyntaxError(input, err)
	}
	return convertTypeSchema(ast)
}

// ParseTerm parses a standalone term literal, e.g. "@worksAt()",
// against a constant registry that resolves invocations.
func ParseTerm(input string, reg *constant.Registry) (term.Term, error) {
	ast, err := termParser.ParseString("", input)
	if err != nil {
		return nil, enrichSyntaxError(input, err)
	}
	return convertTerm(ast, reg)
}

// ParseTermSchema parses a standalone term schema literal.
func ParseTermSchema(input string) (schema.TermSchema, error) {
	ast, err := termSchemaParser.ParseString("", input)
	if err != nil {
		return nil, enrichSyntaxError(input, err)
	}
	return convertTermSchema(ast)
}

// ParsePath parses a node/edge path pattern, e.g.
// "(p:Person)-[:@worksAt()]->(c:Company)".
func ParsePath(input string) (pattern.PathPattern, error) {
	ast, err := pathParser.ParseString("", input)
	if err != nil {
		return pattern.PathPattern{}, enrichSyntaxError(input, err)
	}
	return convertPath(ast)
}
