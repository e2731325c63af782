// Package schema implements the pattern language over types and terms:
// TypeSchema and TermSchema test whether a concrete Type/Term satisfies
// a pattern, extending a binding context with captures on success.
package schema

import (
	"strings"

	"github.com/implica/implica/internal/ctxt"
	"github.com/implica/implica/internal/ident"
	"github.com/implica/implica/internal/term"
	"github.com/implica/implica/internal/typ"
)

// TypeSchema is a pattern over Type.
type TypeSchema interface {
	// Match reports whether t satisfies the schema, binding any
	// captures into ctx. A false result may still have written
	// partial bindings; callers that need all-or-nothing rollback on
	// failure should snapshot ctx before calling Match and restore on
	// false.
	Match(t typ.Type, ctx *ctxt.Context) bool
	String() string
}

// TsExact matches only the exact type t.
type TsExact struct{ Type typ.Type }

// TsWildcard matches any type.
type TsWildcard struct{}

// TsArrow matches an Arrow whose arms satisfy Left and Right.
type TsArrow struct{ Left, Right TypeSchema }

// TsCapture runs Inner and, on success, binds the matched type to Name.
type TsCapture struct {
	Name  string
	Inner TypeSchema
}

func (s TsExact) Match(t typ.Type, _ *ctxt.Context) bool { return typ.Equal(s.Type, t) }
func (s TsExact) String() string                         { return s.Type.String() }

func (TsWildcard) Match(typ.Type, *ctxt.Context) bool { return true }
func (TsWildcard) String() string                    { return "*" }

func (s TsArrow) Match(t typ.Type, ctx *ctxt.Context) bool {
	arrow, ok := typ.IsArrow(t)
	if !ok {
		return false
	}
	return s.Left.Match(arrow.Left, ctx) && s.Right.Match(arrow.Right, ctx)
}
func (s TsArrow) String() string { return s.Left.String() + " -> " + s.Right.String() }

func (s TsCapture) Match(t typ.Type, ctx *ctxt.Context) bool {
	if !s.Inner.Match(t, ctx) {
		return false
	}
	return ctx.TryBind(s.Name, ctxt.TypeBinding(t)) == nil
}
func (s TsCapture) String() string { return "(" + s.Name + ":" + s.Inner.String() + ")" }

// NewTsCapture validates name before constructing a capture schema.
func NewTsCapture(name string, inner TypeSchema) (TsCapture, error) {
	if err := ident.ValidateBindingName(name); err != nil {
		return TsCapture{}, err
	}
	return TsCapture{Name: name, Inner: inner}, nil
}

// TermSchema is a pattern over Term.
type TermSchema interface {
	Match(t term.Term, ctx *ctxt.Context) bool
	String() string
}

// TmWildcard matches any term.
type TmWildcard struct{}

// TmConstantDerived matches any term whose leftmost application head is
// the constant named Name: `f`, `(f a)`, `((f a) b)`, ...
type TmConstantDerived struct{ Name string }

// TmExactConstant matches only the term exactly equal to Basic(Name,_).
type TmExactConstant struct{ Name string }

// TmInstantiated matches any Basic term named Name; TypeArgs are not
// compared when matching. Being fully resolved, it doubles as a recipe
// for constructing the constant Name instantiated with TypeArgs: see
// constant.Registry.Instantiate.
type TmInstantiated struct {
	Name     string
	TypeArgs []typ.Type
}

// TmApp matches App(u,v) where Fn matches u and Arg matches v.
type TmApp struct{ Fn, Arg TermSchema }

func (TmWildcard) Match(term.Term, *ctxt.Context) bool { return true }
func (TmWildcard) String() string                      { return "*" }

func (s TmConstantDerived) Match(t term.Term, _ *ctxt.Context) bool {
	return term.Head(t).Name == s.Name
}
func (s TmConstantDerived) String() string { return s.Name }

func (s TmExactConstant) Match(t term.Term, _ *ctxt.Context) bool {
	basic, ok := t.(term.Basic)
	return ok && basic.Name == s.Name
}
func (s TmExactConstant) String() string { return "@" + s.Name + "()" }

func (s TmInstantiated) Match(t term.Term, _ *ctxt.Context) bool {
	basic, ok := t.(term.Basic)
	if !ok || basic.Name != s.Name {
		return false
	}
	return true
}
func (s TmInstantiated) String() string {
	args := make([]string, len(s.TypeArgs))
	for i, a := range s.TypeArgs {
		args[i] = a.String()
	}
	return "@" + s.Name + "(" + strings.Join(args, ", ") + ")"
}

func (s TmApp) Match(t term.Term, ctx *ctxt.Context) bool {
	app, ok := t.(term.App)
	if !ok {
		return false
	}
	return s.Fn.Match(app.Fn, ctx) && s.Arg.Match(app.Arg, ctx)
}
func (s TmApp) String() string { return s.Fn.String() + " " + s.Arg.String() }
