// Package term implements the first-order term algebra: Basic
// constants and left-associative App(lication), with type synthesis
// and a well-typedness invariant enforced at construction time. There
// is no beta reduction; terms never reduce, they only type-check.
package term

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/implica/implica/internal/ident"
	"github.com/implica/implica/internal/typ"
)

// Term is either a Basic constant or an App(lication) of one term to
// another.
type Term interface {
	Type() typ.Type
	String() string
	canonical() string
}

// Basic is a named constant inhabiting a concrete type.
type Basic struct {
	Name string
	Typ  typ.Type
}

// App is a left-associative application of Fn to Arg. Well-typedness
// is enforced by NewApp; there is no exported way to build an
// ill-typed App.
type App struct {
	Fn, Arg Term
	result  typ.Type
}

func (b Basic) Type() typ.Type { return b.Typ }
func (a App) Type() typ.Type   { return a.result }

// String prints the invocation form "@name()", which is always valid
// atomT syntax. Basic does not retain the positional type arguments
// supplied at instantiation (only the resulting concrete type), so
// round-tripping a constant declared with captures through
// parse(print(T)) requires the caller to re-supply those arguments;
// printing alone cannot recover them.
func (b Basic) String() string { return "@" + b.Name + "()" }

func (a App) String() string {
	fn := a.Fn.String()
	arg := a.Arg.String()
	if _, nested := a.Arg.(App); nested {
		arg = "(" + arg + ")"
	}
	return fn + " " + arg
}

func (b Basic) canonical() string { return "T:" + b.Name + ":" + typ.UID(b.Typ) }
func (a App) canonical() string   { return "P:" + UID(a.Fn) + ":" + UID(a.Arg) }

// NewBasic validates name and constructs a constant of type t.
func NewBasic(name string, t typ.Type) (Basic, error) {
	if err := ident.Validate(name, "constant"); err != nil {
		return Basic{}, err
	}
	return Basic{Name: name, Typ: t}, nil
}

// NewApp builds App(fn,arg), enforcing: type(fn) = Arrow(type(arg), R),
// and the resulting term has type R. Returns TypeMismatch if fn is not
// an arrow type or its domain does not match arg's type.
func NewApp(fn, arg Term) (App, error) {
	arrow, ok := typ.IsArrow(fn.Type())
	if !ok {
		return App{}, typ.Mismatch(fmt.Sprintf("cannot apply non-function term %q of type %s", fn, fn.Type()))
	}
	if !typ.Equal(arrow.Left, arg.Type()) {
		return App{}, typ.Mismatch(fmt.Sprintf("argument %q has type %s, expected %s", arg, arg.Type(), arrow.Left))
	}
	return App{Fn: fn, Arg: arg, result: arrow.Right}, nil
}

// Equal reports structural equality between two terms.
func Equal(a, b Term) bool {
	switch av := a.(type) {
	case Basic:
		bv, ok := b.(Basic)
		return ok && av.Name == bv.Name && typ.Equal(av.Typ, bv.Typ)
	case App:
		bv, ok := b.(App)
		return ok && Equal(av.Fn, bv.Fn) && Equal(av.Arg, bv.Arg)
	default:
		return false
	}
}

// UID returns the hex SHA-256 of the term's canonical serialization:
// "T:<name>:<uid(type)>" for basics, "P:<uid(fn)>:<uid(arg)>" for
// applications.
func UID(t Term) string {
	sum := sha256.Sum256([]byte(t.canonical()))
	return hex.EncodeToString(sum[:])
}

// Head returns the leftmost Basic in t's application spine: for `f`,
// `(f a)`, `((f a) b)`, ... it is always `f`.
func Head(t Term) Basic {
	for {
		app, ok := t.(App)
		if !ok {
			return t.(Basic)
		}
		t = app.Fn
	}
}
