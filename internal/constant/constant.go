// Package constant implements the declared-constant registry used to
// elaborate `@f(τ1,...,τn)` term expressions into concrete, monomorphic
// Basic terms.
package constant

import (
	"fmt"
	"sync"

	"github.com/implica/implica/internal/ident"
	"github.com/implica/implica/internal/schema"
	"github.com/implica/implica/internal/term"
	"github.com/implica/implica/internal/typ"
)

// Constant is a named term generator with a possibly polymorphic
// declared type schema: top-level TsCapture nodes in Schema are the
// constant's type parameters, filled positionally at invocation.
type Constant struct {
	Name   string
	Schema schema.TypeSchema
}

// Registry is a concurrency-safe store of declared constants.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Constant
}

// NewRegistry builds a registry from a declaration list, validating
// each name and rejecting duplicates.
func NewRegistry(constants []Constant) (*Registry, error) {
	r := &Registry{byName: make(map[string]Constant, len(constants))}
	for _, c := range constants {
		if err := r.Declare(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Declare adds a new constant to the registry.
func (r *Registry) Declare(c Constant) error {
	if err := ident.Validate(c.Name, "constant"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[c.Name]; exists {
		return typ.TypeError{Kind: "DuplicateConstant", Message: fmt.Sprintf("constant %q already declared", c.Name)}
	}
	r.byName[c.Name] = c
	return nil
}

// Lookup returns the declared constant named name, if any.
func (r *Registry) Lookup(name string) (Constant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byName[name]
	return c, ok
}

// Instantiate elaborates `@name(typeArgs...)` into a concrete Basic
// term: typeArgs fill the constant's declared type-parameter captures
// in order of appearance, producing a monomorphic type. This is
// instantiation, not unification — no type is inferred, every capture
// must be supplied.
func (r *Registry) Instantiate(name string, typeArgs []typ.Type) (term.Basic, error) {
	c, ok := r.Lookup(name)
	if !ok {
		return term.Basic{}, typ.UnknownConstant(name)
	}

	idx := 0
	resolved, err := resolve(c.Schema, typeArgs, &idx)
	if err != nil {
		return term.Basic{}, err
	}
	if idx != len(typeArgs) {
		return term.Basic{}, typ.ArityMismatch(fmt.Sprintf(
			"constant %q expects %d type parameter(s), got %d", name, idx, len(typeArgs)))
	}

	return term.NewBasic(name, resolved)
}

// resolve walks a declared type schema, substituting each top-level
// capture with the next positional type argument, and returns the
// resulting concrete type. idx tracks how many arguments have been
// consumed so Instantiate can detect arity mismatches in either
// direction.
func resolve(s schema.TypeSchema, args []typ.Type, idx *int) (typ.Type, error) {
	switch v := s.(type) {
	case schema.TsExact:
		return v.Type, nil
	case schema.TsArrow:
		left, err := resolve(v.Left, args, idx)
		if err != nil {
			return nil, err
		}
		right, err := resolve(v.Right, args, idx)
		if err != nil {
			return nil, err
		}
		return typ.Arrow{Left: left, Right: right}, nil
	case schema.TsCapture:
		if *idx >= len(args) {
			return nil, typ.ArityMismatch(fmt.Sprintf("not enough type parameters supplied for capture %q", v.Name))
		}
		t := args[*idx]
		*idx++
		return t, nil
	case schema.TsWildcard:
		return nil, typ.Mismatch("constant type schema contains an unnamed wildcard, which cannot be instantiated")
	default:
		return nil, typ.Mismatch(fmt.Sprintf("unsupported type schema node %T in constant declaration", s))
	}
}
