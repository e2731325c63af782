// Package ident validates the identifier rules shared by type names,
// term constant names, pattern variables, and property keys.
package ident

import (
	"fmt"
	"regexp"
)

// Anonymous is the sentinel variable name that never binds.
const Anonymous = "_"

// PlaceholderPrefix is reserved for executor-synthesized join variables.
// A user-supplied variable name starting with this prefix is rejected.
const PlaceholderPrefix = "__ph_"

const maxLength = 255

var pattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IdentError reports an identifier that fails validation.
type IdentError struct {
	Kind    string
	Name    string
	Message string
}

func (e IdentError) Error() string {
	return fmt.Sprintf("ident error (%s): %s", e.Kind, e.Message)
}

// Validate checks name against the Ident grammar: it must start with a
// letter or underscore, contain only letters/digits/underscores, and be
// between 1 and 255 characters. kind is used only to annotate errors
// (e.g. "type", "constant", "variable", "property key").
func Validate(name, kind string) error {
	if name == "" {
		return IdentError{Kind: "EmptyName", Name: name, Message: fmt.Sprintf("%s name must not be empty", kind)}
	}
	if len(name) > maxLength {
		return IdentError{Kind: "InvalidIdentifier", Name: name, Message: fmt.Sprintf("%s name %q exceeds %d characters", kind, name, maxLength)}
	}
	if !pattern.MatchString(name) {
		return IdentError{Kind: "InvalidIdentifier", Name: name, Message: fmt.Sprintf("%s identifier %q must start with a letter or underscore and contain only letters, digits, and underscores", kind, name)}
	}
	return nil
}

// ValidateBindingName is like Validate but additionally rejects the
// anonymous sentinel and the reserved placeholder prefix as binding
// names (pattern variables, RETURN/SET/REMOVE targets).
func ValidateBindingName(name string) error {
	if name == Anonymous {
		return IdentError{Kind: "ReservedName", Name: name, Message: "\"_\" cannot be used as a binding name"}
	}
	if len(name) >= len(PlaceholderPrefix) && name[:len(PlaceholderPrefix)] == PlaceholderPrefix {
		return IdentError{Kind: "ReservedName", Name: name, Message: fmt.Sprintf("variable name %q uses the reserved placeholder prefix %q", name, PlaceholderPrefix)}
	}
	return Validate(name, "variable")
}

// IsAnonymous reports whether name is the "_" sentinel, which never binds.
func IsAnonymous(name string) bool {
	return name == Anonymous
}
