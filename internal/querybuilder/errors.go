package querybuilder

import "fmt"

// QueryError is the taxonomy for query-semantics failures: ones that
// only surface once a clause chain actually runs against a graph,
// as opposed to the parse/validation errors the syntax and schema
// packages raise at build time.
type QueryError struct {
	Kind    string
	Message string
}

func (e QueryError) Error() string {
	return fmt.Sprintf("query error (%s): %s", e.Kind, e.Message)
}

// AmbiguousCreate reports a CREATE path entry whose type or term
// schema is not exact enough to construct a concrete graph element.
func AmbiguousCreate(message string) error {
	return QueryError{Kind: "AmbiguousCreate", Message: message}
}

// UnsupportedTarget reports a SET/REMOVE naming a variable bound to a
// Type or Term rather than a graph element.
func UnsupportedTarget(name string) error {
	return QueryError{Kind: "UnsupportedTarget", Message: fmt.Sprintf("variable %q is not bound to a graph element", name)}
}

// InvalidQuery reports a malformed clause chain: an ORDER BY with no
// keys, or an attempt to execute a query twice.
func InvalidQuery(message string) error {
	return QueryError{Kind: "InvalidQuery", Message: message}
}
