package typ

import "fmt"

// TypeError is the taxonomy for all typing failures: building an
// ill-typed application, invoking a constant with the wrong number of
// type parameters, or referencing an undeclared constant.
type TypeError struct {
	Kind    string
	Message string
}

func (e TypeError) Error() string {
	return fmt.Sprintf("type error (%s): %s", e.Kind, e.Message)
}

func Mismatch(message string) error {
	return TypeError{Kind: "TypeMismatch", Message: message}
}

func ArityMismatch(message string) error {
	return TypeError{Kind: "TypeArityMismatch", Message: message}
}

func UnknownConstant(name string) error {
	return TypeError{Kind: "UnknownConstant", Message: fmt.Sprintf("constant %q is not declared", name)}
}
