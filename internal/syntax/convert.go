package syntax

import (
	"strconv"
	"strings"

	"github.com/implica/implica/internal/constant"
	"github.com/implica/implica/internal/graphstore"
	"github.com/implica/implica/internal/ident"
	"github.com/implica/implica/internal/pattern"
	"github.com/implica/implica/internal/schema"
	"github.com/implica/implica/internal/term"
	"github.com/implica/implica/internal/typ"
)

// --- Type ------------------------------------------------------------

func convertType(ast *TypeAST) (typ.Type, error) {
	left, err := convertTypeAtom(ast.Atom)
	if err != nil {
		return nil, err
	}
	if ast.Arrow == nil {
		return left, nil
	}
	right, err := convertType(ast.Arrow)
	if err != nil {
		return nil, err
	}
	return typ.Arrow{Left: left, Right: right}, nil
}

func convertTypeAtom(ast *TypeAtomAST) (typ.Type, error) {
	switch {
	case ast.Ident != nil:
		return typ.NewVariable(*ast.Ident)
	case ast.Paren != nil:
		return convertType(ast.Paren)
	default:
		return nil, errInvalidSyntax("empty type atom")
	}
}

// --- TypeSchema --------------------------------------------------------

func convertTypeSchema(ast *TypeSchemaAST) (schema.TypeSchema, error) {
	left, err := convertTypeSchemaAtom(ast.Atom)
	if err != nil {
		return nil, err
	}
	if ast.Arrow == nil {
		return left, nil
	}
	right, err := convertTypeSchema(ast.Arrow)
	if err != nil {
		return nil, err
	}
	return schema.TsArrow{Left: left, Right: right}, nil
}

func convertTypeSchemaAtom(ast *TypeSchemaAtomAST) (schema.TypeSchema, error) {
	switch {
	case ast.Wildcard:
		return schema.TsWildcard{}, nil
	case ast.Ident != nil:
		v, err := typ.NewVariable(*ast.Ident)
		if err != nil {
			return nil, err
		}
		return schema.TsExact{Type: v}, nil
	case ast.Paren != nil:
		inner, err := convertTypeSchema(ast.Paren.Inner)
		if err != nil {
			return nil, err
		}
		if ast.Paren.CaptureName != nil {
			return schema.NewTsCapture(*ast.Paren.CaptureName, inner)
		}
		return inner, nil
	default:
		return nil, errInvalidSyntax("empty type schema atom")
	}
}

// --- Term ------------------------------------------------------------

func convertTerm(ast *TermAST, reg *constant.Registry) (term.Term, error) {
	head, err := convertTermAtom(ast.Head, reg)
	if err != nil {
		return nil, err
	}
	for _, atomAST := range ast.Rest {
		arg, err := convertTermAtom(atomAST, reg)
		if err != nil {
			return nil, err
		}
		app, err := term.NewApp(head, arg)
		if err != nil {
			return nil, err
		}
		head = app
	}
	return head, nil
}

func convertTermAtom(ast *TermAtomAST, reg *constant.Registry) (term.Term, error) {
	switch {
	case ast.Invocation != nil:
		typeArgs := make([]typ.Type, len(ast.Invocation.Args))
		for i, a := range ast.Invocation.Args {
			t, err := convertType(a)
			if err != nil {
				return nil, err
			}
			typeArgs[i] = t
		}
		return reg.Instantiate(ast.Invocation.Name, typeArgs)
	case ast.Paren != nil:
		return convertTerm(ast.Paren, reg)
	default:
		return nil, errInvalidSyntax("empty term atom")
	}
}

// --- TermSchema ------------------------------------------------------

func convertTermSchema(ast *TermSchemaAST) (schema.TermSchema, error) {
	head, err := convertTermSchemaAtom(ast.Head)
	if err != nil {
		return nil, err
	}
	for _, atomAST := range ast.Rest {
		arg, err := convertTermSchemaAtom(atomAST)
		if err != nil {
			return nil, err
		}
		head = schema.TmApp{Fn: head, Arg: arg}
	}
	return head, nil
}

func convertTermSchemaAtom(ast *TermSchemaAtomAST) (schema.TermSchema, error) {
	switch {
	case ast.Wildcard:
		return schema.TmWildcard{}, nil
	case ast.Ident != nil:
		return schema.TmConstantDerived{Name: *ast.Ident}, nil
	case ast.Invocation != nil:
		if len(ast.Invocation.Args) == 0 {
			return schema.TmExactConstant{Name: ast.Invocation.Name}, nil
		}
		typeArgs := make([]typ.Type, len(ast.Invocation.Args))
		for i, a := range ast.Invocation.Args {
			t, err := convertType(a)
			if err != nil {
				return nil, err
			}
			typeArgs[i] = t
		}
		return schema.TmInstantiated{Name: ast.Invocation.Name, TypeArgs: typeArgs}, nil
	case ast.Paren != nil:
		return convertTermSchema(ast.Paren)
	default:
		return nil, errInvalidSyntax("empty term schema atom")
	}
}

// --- Property literals -------------------------------------------------

func convertPropMap(ast *PropMapAST) (graphstore.PropMap, error) {
	if ast == nil {
		return nil, nil
	}
	props := make(graphstore.PropMap, len(ast.Entries))
	for _, entry := range ast.Entries {
		v, err := convertPropLit(entry.Value)
		if err != nil {
			return nil, err
		}
		props[entry.Key] = v
	}
	return props, nil
}

func convertPropLit(ast *PropLitAST) (graphstore.Value, error) {
	switch {
	case ast.Str != nil:
		return graphstore.StringValue(unquote(*ast.Str)), nil
	case ast.Float != nil:
		return graphstore.FloatValue(*ast.Float), nil
	case ast.Int != nil:
		return graphstore.IntValue(*ast.Int), nil
	case ast.True:
		return graphstore.BoolValue(true), nil
	case ast.False:
		return graphstore.BoolValue(false), nil
	case ast.Null:
		return graphstore.NullValue(), nil
	case ast.List != nil:
		items := make([]graphstore.Value, len(ast.List.Items))
		for i, item := range ast.List.Items {
			v, err := convertPropLit(item)
			if err != nil {
				return graphstore.Value{}, err
			}
			items[i] = v
		}
		return graphstore.ListValue(items), nil
	case ast.Map != nil:
		m, err := convertPropMap(ast.Map)
		if err != nil {
			return graphstore.Value{}, err
		}
		return graphstore.MapValue(m), nil
	default:
		return graphstore.Value{}, errInvalidSyntax("empty property literal")
	}
}

func unquote(s string) string {
	trimmed := strings.TrimPrefix(strings.TrimSuffix(s, `"`), `"`)
	unescaped, err := strconv.Unquote(`"` + trimmed + `"`)
	if err != nil {
		return trimmed
	}
	return unescaped
}

// --- Pattern path -----------------------------------------------------

func convertPath(ast *PathAST) (pattern.PathPattern, error) {
	firstNode, err := convertNodePat(ast.First)
	if err != nil {
		return pattern.PathPattern{}, err
	}

	nodes := []pattern.NodePattern{firstNode}
	edges := make([]pattern.EdgePattern, 0, len(ast.Rest))

	for _, hop := range ast.Rest {
		ep, err := convertEdgePat(hop.Edge)
		if err != nil {
			return pattern.PathPattern{}, err
		}
		np, err := convertNodePat(hop.Node)
		if err != nil {
			return pattern.PathPattern{}, err
		}
		edges = append(edges, ep)
		nodes = append(nodes, np)
	}

	return pattern.NewPathPattern(nodes, edges)
}

func convertNodePat(ast *NodePatAST) (pattern.NodePattern, error) {
	var typeSchema schema.TypeSchema
	var termSchema schema.TermSchema
	var err error

	if ast.Ident != nil {
		if err := ident.ValidateBindingName(*ast.Ident); err != nil {
			return pattern.NodePattern{}, err
		}
	}
	if ast.TypeSchema != nil {
		typeSchema, err = convertTypeSchema(ast.TypeSchema)
		if err != nil {
			return pattern.NodePattern{}, err
		}
	}
	if ast.TermSchema != nil {
		termSchema, err = convertTermSchema(ast.TermSchema)
		if err != nil {
			return pattern.NodePattern{}, err
		}
	}
	props, err := convertPropMap(ast.Props)
	if err != nil {
		return pattern.NodePattern{}, err
	}

	return pattern.NodePattern{
		Var:   ast.Ident,
		Type:  typeSchema,
		Term:  termSchema,
		Props: pattern.PropPred(props),
	}, nil
}

func convertEdgePat(ast *EdgePatAST) (pattern.EdgePattern, error) {
	body := ast.Forward
	dir := pattern.Forward
	if ast.Backward != nil {
		body = ast.Backward
		dir = pattern.Backward
	}
	if body == nil {
		return pattern.EdgePattern{}, errInvalidSyntax("empty edge pattern")
	}
	if body.Ident != nil {
		if err := ident.ValidateBindingName(*body.Ident); err != nil {
			return pattern.EdgePattern{}, err
		}
	}

	var typeSchema schema.TypeSchema
	var termSchema schema.TermSchema
	var err error

	if body.TypeSchema != nil {
		typeSchema, err = convertTypeSchema(body.TypeSchema)
		if err != nil {
			return pattern.EdgePattern{}, err
		}
	}
	if body.TermSchema != nil {
		termSchema, err = convertTermSchema(body.TermSchema)
		if err != nil {
			return pattern.EdgePattern{}, err
		}
	}
	props, err := convertPropMap(body.Props)
	if err != nil {
		return pattern.EdgePattern{}, err
	}

	return pattern.EdgePattern{
		Var:   body.Ident,
		Type:  typeSchema,
		Term:  termSchema,
		Props: pattern.PropPred(props),
		Dir:   dir,
	}, nil
}
