package graphstore

import "fmt"

// GraphError is the taxonomy for graph-store failures.
type GraphError struct {
	Kind    string
	Message string
}

func (e GraphError) Error() string {
	return fmt.Sprintf("graph error (%s): %s", e.Kind, e.Message)
}

func ErrEndpointMissing(uid string) error {
	return GraphError{Kind: "EndpointMissing", Message: fmt.Sprintf("endpoint node %s does not exist", uid)}
}

func ErrEdgeAlreadyExists(start, end string) error {
	return GraphError{Kind: "EdgeAlreadyExists", Message: fmt.Sprintf("an edge from %s to %s already exists", start, end)}
}

func ErrElementNotFound(kind, uid string) error {
	return GraphError{Kind: "ElementNotFound", Message: fmt.Sprintf("%s %s does not exist", kind, uid)}
}

func ErrInternalLockFailure(message string) error {
	return GraphError{Kind: "InternalLockFailure", Message: message}
}

func errTypeMismatch(message string) error {
	return GraphError{Kind: "TypeMismatch", Message: message}
}
