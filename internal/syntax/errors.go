package syntax

import "fmt"

// SyntaxError is the taxonomy for parse and AST-conversion failures.
type SyntaxError struct {
	Kind    string
	Message string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("syntax error (%s): %s", e.Kind, e.Message)
}

func errInvalidSyntax(message string) error {
	return SyntaxError{Kind: "InvalidSyntax", Message: message}
}
