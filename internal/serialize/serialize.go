// Package serialize provides JSON (de)serialization of a graph: every
// node's type, optional term, and properties; every edge's type, term,
// endpoints, and properties. Node identity is content-addressed, so a
// node reconstructed with the same (type, term) recomputes the same
// UID it was written with — edges reference endpoints by that UID.
package serialize

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/implica/implica/internal/gid"
	"github.com/implica/implica/internal/graphstore"
	"github.com/implica/implica/internal/term"
	"github.com/implica/implica/internal/typ"
)

type serializedValue struct {
	Kind  string `json:"kind"`
	Value any    `json:"value,omitempty"`
}

type serializedType struct {
	Kind  string          `json:"kind"` // "var" | "arrow"
	Name  string          `json:"name,omitempty"`
	Left  *serializedType `json:"left,omitempty"`
	Right *serializedType `json:"right,omitempty"`
}

type serializedTerm struct {
	Kind string          `json:"kind"` // "basic" | "app"
	Name string          `json:"name,omitempty"`
	Type *serializedType `json:"type,omitempty"` // basic only
	Fn   *serializedTerm `json:"fn,omitempty"`
	Arg  *serializedTerm `json:"arg,omitempty"`
}

type serializedNode struct {
	UID   string                     `json:"uid"`
	Type  serializedType             `json:"type"`
	Term  *serializedTerm            `json:"term,omitempty"`
	Props map[string]serializedValue `json:"props,omitempty"`
}

type serializedEdge struct {
	UID   string                     `json:"uid"`
	From  string                     `json:"from"`
	To    string                     `json:"to"`
	Type  serializedType             `json:"type"`
	Term  serializedTerm             `json:"term"`
	Props map[string]serializedValue `json:"props,omitempty"`
}

type serializedGraph struct {
	Nodes []serializedNode `json:"nodes"`
	Edges []serializedEdge `json:"edges"`
}

func marshalType(t typ.Type) serializedType {
	switch v := t.(type) {
	case typ.Variable:
		return serializedType{Kind: "var", Name: v.Name}
	case typ.Arrow:
		left := marshalType(v.Left)
		right := marshalType(v.Right)
		return serializedType{Kind: "arrow", Left: &left, Right: &right}
	default:
		return serializedType{Kind: "var", Name: t.String()}
	}
}

func unmarshalType(st serializedType) (typ.Type, error) {
	switch st.Kind {
	case "var":
		return typ.NewVariable(st.Name)
	case "arrow":
		if st.Left == nil || st.Right == nil {
			return nil, fmt.Errorf("arrow type missing left or right arm")
		}
		left, err := unmarshalType(*st.Left)
		if err != nil {
			return nil, fmt.Errorf("left arm: %w", err)
		}
		right, err := unmarshalType(*st.Right)
		if err != nil {
			return nil, fmt.Errorf("right arm: %w", err)
		}
		return typ.Arrow{Left: left, Right: right}, nil
	default:
		return nil, fmt.Errorf("unknown serialized type kind %q", st.Kind)
	}
}

func marshalTerm(t term.Term) serializedTerm {
	switch v := t.(type) {
	case term.Basic:
		ty := marshalType(v.Typ)
		return serializedTerm{Kind: "basic", Name: v.Name, Type: &ty}
	case term.App:
		fn := marshalTerm(v.Fn)
		arg := marshalTerm(v.Arg)
		return serializedTerm{Kind: "app", Fn: &fn, Arg: &arg}
	default:
		return serializedTerm{Kind: "basic", Name: t.String()}
	}
}

func unmarshalTerm(st serializedTerm) (term.Term, error) {
	switch st.Kind {
	case "basic":
		if st.Type == nil {
			return nil, fmt.Errorf("basic term %q missing a type", st.Name)
		}
		ty, err := unmarshalType(*st.Type)
		if err != nil {
			return nil, fmt.Errorf("term %q: %w", st.Name, err)
		}
		return term.NewBasic(st.Name, ty)
	case "app":
		if st.Fn == nil || st.Arg == nil {
			return nil, fmt.Errorf("app term missing fn or arg")
		}
		fn, err := unmarshalTerm(*st.Fn)
		if err != nil {
			return nil, fmt.Errorf("fn: %w", err)
		}
		arg, err := unmarshalTerm(*st.Arg)
		if err != nil {
			return nil, fmt.Errorf("arg: %w", err)
		}
		return term.NewApp(fn, arg)
	default:
		return nil, fmt.Errorf("unknown serialized term kind %q", st.Kind)
	}
}

func marshalValue(v graphstore.Value) serializedValue {
	switch v.Kind {
	case graphstore.NullVal:
		return serializedValue{Kind: "null"}
	case graphstore.StringVal:
		return serializedValue{Kind: "string", Value: v.Str}
	case graphstore.IntVal:
		return serializedValue{Kind: "int", Value: v.Int}
	case graphstore.FloatVal:
		return serializedValue{Kind: "float", Value: v.Flt}
	case graphstore.BoolVal:
		return serializedValue{Kind: "bool", Value: v.Bool}
	case graphstore.ListVal:
		items := make([]serializedValue, len(v.List))
		for i, item := range v.List {
			items[i] = marshalValue(item)
		}
		return serializedValue{Kind: "list", Value: items}
	case graphstore.MapVal:
		m := make(map[string]serializedValue, len(v.Map))
		for k, item := range v.Map {
			m[k] = marshalValue(item)
		}
		return serializedValue{Kind: "map", Value: m}
	default:
		return serializedValue{Kind: "null"}
	}
}

func unmarshalValue(sv serializedValue) (graphstore.Value, error) {
	switch sv.Kind {
	case "null":
		return graphstore.NullValue(), nil
	case "string":
		s, ok := sv.Value.(string)
		if !ok {
			return graphstore.Value{}, fmt.Errorf("expected string, got %T", sv.Value)
		}
		return graphstore.StringValue(s), nil
	case "int":
		f, ok := sv.Value.(float64)
		if !ok {
			return graphstore.Value{}, fmt.Errorf("expected number for int, got %T", sv.Value)
		}
		return graphstore.IntValue(int64(f)), nil
	case "float":
		f, ok := sv.Value.(float64)
		if !ok {
			return graphstore.Value{}, fmt.Errorf("expected number for float, got %T", sv.Value)
		}
		return graphstore.FloatValue(f), nil
	case "bool":
		b, ok := sv.Value.(bool)
		if !ok {
			return graphstore.Value{}, fmt.Errorf("expected bool, got %T", sv.Value)
		}
		return graphstore.BoolValue(b), nil
	case "list":
		raw, ok := sv.Value.([]any)
		if !ok {
			return graphstore.Value{}, fmt.Errorf("expected array for list, got %T", sv.Value)
		}
		items := make([]graphstore.Value, len(raw))
		for i, r := range raw {
			item, err := decodeValueAny(r)
			if err != nil {
				return graphstore.Value{}, fmt.Errorf("list[%d]: %w", i, err)
			}
			items[i] = item
		}
		return graphstore.ListValue(items), nil
	case "map":
		raw, ok := sv.Value.(map[string]any)
		if !ok {
			return graphstore.Value{}, fmt.Errorf("expected object for map, got %T", sv.Value)
		}
		m := make(map[string]graphstore.Value, len(raw))
		for k, r := range raw {
			v, err := decodeValueAny(r)
			if err != nil {
				return graphstore.Value{}, fmt.Errorf("map[%q]: %w", k, err)
			}
			m[k] = v
		}
		return graphstore.MapValue(m), nil
	default:
		return graphstore.Value{}, fmt.Errorf("unknown serialized value kind %q", sv.Kind)
	}
}

// decodeValueAny re-decodes a nested list/map element, which
// json.Unmarshal leaves as a raw map[string]any (kind/value) rather
// than our named serializedValue struct, since it was only typed as
// `any` in the parent's Value field.
func decodeValueAny(raw any) (graphstore.Value, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return graphstore.Value{}, err
	}
	var sv serializedValue
	if err := json.Unmarshal(b, &sv); err != nil {
		return graphstore.Value{}, err
	}
	return unmarshalValue(sv)
}

func marshalProps(props graphstore.PropMap) map[string]serializedValue {
	out := make(map[string]serializedValue, len(props))
	for k, v := range props {
		out[k] = marshalValue(v)
	}
	return out
}

func unmarshalProps(props map[string]serializedValue) (graphstore.PropMap, error) {
	out := make(graphstore.PropMap, len(props))
	for k, sv := range props {
		v, err := unmarshalValue(sv)
		if err != nil {
			return nil, fmt.Errorf("prop %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

func toSerializedGraph(g *graphstore.Graph) serializedGraph {
	nodes := g.AllNodes()
	edges := g.AllEdges()

	sNodes := make([]serializedNode, 0, len(nodes))
	for _, n := range nodes {
		sn := serializedNode{
			UID:   string(n.UID()),
			Type:  marshalType(n.Type()),
			Props: marshalProps(n.Properties()),
		}
		if t, ok := n.Term(); ok {
			st := marshalTerm(t)
			sn.Term = &st
		}
		sNodes = append(sNodes, sn)
	}

	sEdges := make([]serializedEdge, 0, len(edges))
	for _, e := range edges {
		sEdges = append(sEdges, serializedEdge{
			UID:   string(e.UID()),
			From:  string(e.Start()),
			To:    string(e.End()),
			Type:  marshalType(e.Type()),
			Term:  marshalTerm(e.Term()),
			Props: marshalProps(e.Properties()),
		})
	}

	return serializedGraph{Nodes: sNodes, Edges: sEdges}
}

func fromSerializedGraph(sg serializedGraph) (*graphstore.Graph, error) {
	g := graphstore.New()

	for _, sn := range sg.Nodes {
		ty, err := unmarshalType(sn.Type)
		if err != nil {
			return nil, fmt.Errorf("node %s type: %w", sn.UID, err)
		}
		var tm term.Term
		if sn.Term != nil {
			tm, err = unmarshalTerm(*sn.Term)
			if err != nil {
				return nil, fmt.Errorf("node %s term: %w", sn.UID, err)
			}
		}
		props, err := unmarshalProps(sn.Props)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", sn.UID, err)
		}
		n, err := graphstore.NewNode(ty, tm, props)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", sn.UID, err)
		}
		g.AddNode(n)
	}

	for _, se := range sg.Edges {
		ty, err := unmarshalType(se.Type)
		if err != nil {
			return nil, fmt.Errorf("edge %s type: %w", se.UID, err)
		}
		tm, err := unmarshalTerm(se.Term)
		if err != nil {
			return nil, fmt.Errorf("edge %s term: %w", se.UID, err)
		}
		props, err := unmarshalProps(se.Props)
		if err != nil {
			return nil, fmt.Errorf("edge %s: %w", se.UID, err)
		}
		e, err := graphstore.NewEdge(ty, tm, gid.NodeUID(se.From), gid.NodeUID(se.To), props)
		if err != nil {
			return nil, fmt.Errorf("edge %s: %w", se.UID, err)
		}
		if _, err := g.AddEdge(e); err != nil {
			return nil, fmt.Errorf("edge %s: %w", se.UID, err)
		}
	}

	return g, nil
}

// WriteJSON encodes a graph to JSON and writes it to w.
func WriteJSON(g *graphstore.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toSerializedGraph(g))
}

// ReadJSON decodes a graph from JSON read from r.
func ReadJSON(r io.Reader) (*graphstore.Graph, error) {
	var sg serializedGraph
	if err := json.NewDecoder(r).Decode(&sg); err != nil {
		return nil, fmt.Errorf("decoding graph JSON: %w", err)
	}
	return fromSerializedGraph(sg)
}

// SaveJSON writes a graph to a JSON file at path.
func SaveJSON(g *graphstore.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

// LoadJSON reads a graph from a JSON file at path.
func LoadJSON(path string) (*graphstore.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
