// Package ctxt implements the binding context: a mutable keyed store
// of type-variable and term-variable (and graph-element-variable)
// bindings active during a single match attempt.
package ctxt

import (
	"fmt"
	"sync"

	"github.com/implica/implica/internal/gid"
	"github.com/implica/implica/internal/ident"
	"github.com/implica/implica/internal/term"
	"github.com/implica/implica/internal/typ"
)

// Binding is the sum type of values a context can hold: a reference to
// a graph node or edge, a concrete type, or a concrete term.
type Binding struct {
	NodeRef gid.NodeUID
	EdgeRef gid.EdgeUID
	Type    typ.Type
	Term    term.Term
	kind    bindingKind
}

type bindingKind int

const (
	kindNode bindingKind = iota
	kindEdge
	kindType
	kindTerm
)

func NodeBinding(id gid.NodeUID) Binding { return Binding{NodeRef: id, kind: kindNode} }
func EdgeBinding(id gid.EdgeUID) Binding { return Binding{EdgeRef: id, kind: kindEdge} }
func TypeBinding(t typ.Type) Binding     { return Binding{Type: t, kind: kindType} }
func TermBinding(t term.Term) Binding    { return Binding{Term: t, kind: kindTerm} }

// IsNode, IsEdge, IsType, IsTerm report the binding's dynamic kind.
func (b Binding) IsNode() bool { return b.kind == kindNode }
func (b Binding) IsEdge() bool { return b.kind == kindEdge }
func (b Binding) IsType() bool { return b.kind == kindType }
func (b Binding) IsTerm() bool { return b.kind == kindTerm }

// Equal reports whether two bindings hold the same value.
func (b Binding) Equal(other Binding) bool {
	if b.kind != other.kind {
		return false
	}
	switch b.kind {
	case kindNode:
		return b.NodeRef == other.NodeRef
	case kindEdge:
		return b.EdgeRef == other.EdgeRef
	case kindType:
		return typ.Equal(b.Type, other.Type)
	case kindTerm:
		return term.Equal(b.Term, other.Term)
	default:
		return false
	}
}

func (b Binding) String() string {
	switch b.kind {
	case kindNode:
		return fmt.Sprintf("Node(%s)", b.NodeRef)
	case kindEdge:
		return fmt.Sprintf("Edge(%s)", b.EdgeRef)
	case kindType:
		return b.Type.String()
	case kindTerm:
		return b.Term.String()
	default:
		return "<invalid binding>"
	}
}

// BindingError is the taxonomy for binding-context failures.
type BindingError struct {
	Kind    string
	Message string
}

func (e BindingError) Error() string {
	return fmt.Sprintf("binding error (%s): %s", e.Kind, e.Message)
}

// AlreadyBound reports a capture conflicting with an existing binding
// of a different value under the same name.
func AlreadyBound(name string) error {
	return BindingError{Kind: "AlreadyBound", Message: fmt.Sprintf("variable %q is already bound to a different value", name)}
}

// UnknownVariable reports a name referenced (in RETURN/SET/REMOVE) that
// is not bound in the current relation row.
func UnknownVariable(name string) error {
	return BindingError{Kind: "UnknownVariable", Message: fmt.Sprintf("variable %q is not bound", name)}
}

// Context is a keyed store of bindings active during one match attempt.
// It is safe for concurrent use: independent match attempts typically
// operate on independent contexts, but a single context may be shared
// across goroutines exploring disjoint branches of one candidate set.
type Context struct {
	mu   sync.Mutex
	vars map[string]Binding
}

// New returns an empty context.
func New() *Context {
	return &Context{vars: make(map[string]Binding)}
}

// FromBindings returns a context pre-seeded with vars, independent of
// the map passed in. Used to resume matching from a query executor's
// relation row.
func FromBindings(vars map[string]Binding) *Context {
	c := New()
	for k, v := range vars {
		c.vars[k] = v
	}
	return c
}

// Snapshot returns a copy of the context's current bindings. Used to
// roll back a failed match attempt that bound variables before failing
// further along the pattern.
func (c *Context) Snapshot() map[string]Binding {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := make(map[string]Binding, len(c.vars))
	for k, v := range c.vars {
		snap[k] = v
	}
	return snap
}

// Restore replaces the context's bindings with a previously taken
// snapshot.
func (c *Context) Restore(snap map[string]Binding) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vars = make(map[string]Binding, len(snap))
	for k, v := range snap {
		c.vars[k] = v
	}
}

// Clone returns an independent context holding the same bindings.
func (c *Context) Clone() *Context {
	return &Context{vars: c.Snapshot()}
}

// Get looks up a binding by name.
func (c *Context) Get(name string) (Binding, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.vars[name]
	return b, ok
}

// TryBind atomically inserts a binding for name. If name is already
// bound, TryBind succeeds only if the existing binding equals b
// (AlreadyBound otherwise). The anonymous sentinel "_" never binds and
// TryBind is a silent no-op for it.
func (c *Context) TryBind(name string, b Binding) error {
	if ident.IsAnonymous(name) {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	existing, ok := c.vars[name]
	if !ok {
		c.vars[name] = b
		return nil
	}
	if !existing.Equal(b) {
		return AlreadyBound(name)
	}
	return nil
}

// Rows materializes the context's bindings as a plain map, for
// handing off to the query executor's relation rows.
func (c *Context) Rows() map[string]Binding {
	return c.Snapshot()
}
