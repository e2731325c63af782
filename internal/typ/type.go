// Package typ implements the simply-typed algebra over user-declared
// base type names: Variable(name) and Arrow(left,right), with
// structural equality and content-addressed identity.
package typ

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/implica/implica/internal/ident"
)

// Type is either a Variable or an Arrow. Both are comparable Go values
// (no pointers), so structural equality and map-keying by value both
// work without help; UID is still the canonical identity used across
// the engine.
type Type interface {
	Type() Type // returns itself; narrows the `any` boundary for callers
	String() string
	canonical() string
}

// Variable is a base type named by a user-declared identifier.
type Variable struct {
	Name string
}

// Arrow is a function type from Left to Right. Right-associative in
// surface syntax, left-nested here: `A -> B -> C` is
// Arrow{A, Arrow{B, C}}.
type Arrow struct {
	Left, Right Type
}

func (v Variable) Type() Type { return v }
func (a Arrow) Type() Type    { return a }

func (v Variable) String() string { return v.Name }

func (a Arrow) String() string {
	left := a.Left.String()
	if _, nested := a.Left.(Arrow); nested {
		left = "(" + left + ")"
	}
	return left + " -> " + a.Right.String()
}

func (v Variable) canonical() string { return "V:" + v.Name }
func (a Arrow) canonical() string    { return "A:" + UID(a.Left) + ":" + UID(a.Right) }

// NewVariable validates name against the Ident grammar before
// constructing a Variable.
func NewVariable(name string) (Variable, error) {
	if err := ident.Validate(name, "type"); err != nil {
		return Variable{}, err
	}
	return Variable{Name: name}, nil
}

// Equal reports structural equality between two types.
func Equal(a, b Type) bool {
	switch av := a.(type) {
	case Variable:
		bv, ok := b.(Variable)
		return ok && av.Name == bv.Name
	case Arrow:
		bv, ok := b.(Arrow)
		return ok && Equal(av.Left, bv.Left) && Equal(av.Right, bv.Right)
	default:
		return false
	}
}

// UID returns the hex SHA-256 of the type's canonical serialization:
// "V:<name>" for variables, "A:<uid(left)>:<uid(right)>" for arrows.
func UID(t Type) string {
	sum := sha256.Sum256([]byte(t.canonical()))
	return hex.EncodeToString(sum[:])
}

// IsArrow reports whether t is an Arrow, returning its arms.
func IsArrow(t Type) (Arrow, bool) {
	a, ok := t.(Arrow)
	return a, ok
}
