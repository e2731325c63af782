package graphstore

// ValueKind tags the dynamic shape of a property Value.
type ValueKind int

const (
	NullVal ValueKind = iota
	StringVal
	IntVal
	FloatVal
	BoolVal
	ListVal
	MapVal
)

// Value is a JSON-like property value: a scalar, a list of Values, or
// a nested string-keyed map of Values.
type Value struct {
	Kind ValueKind
	Str  string
	Int  int64
	Flt  float64
	Bool bool
	List []Value
	Map  map[string]Value
}

func NullValue() Value           { return Value{Kind: NullVal} }
func StringValue(s string) Value { return Value{Kind: StringVal, Str: s} }
func IntValue(i int64) Value     { return Value{Kind: IntVal, Int: i} }
func FloatValue(f float64) Value { return Value{Kind: FloatVal, Flt: f} }
func BoolValue(b bool) Value     { return Value{Kind: BoolVal, Bool: b} }
func ListValue(vs []Value) Value { return Value{Kind: ListVal, List: vs} }
func MapValue(m map[string]Value) Value {
	return Value{Kind: MapVal, Map: m}
}

// EqualValue reports deep structural equality between two property
// values.
func EqualValue(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case NullVal:
		return true
	case StringVal:
		return a.Str == b.Str
	case IntVal:
		return a.Int == b.Int
	case FloatVal:
		return a.Flt == b.Flt
	case BoolVal:
		return a.Bool == b.Bool
	case ListVal:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !EqualValue(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	case MapVal:
		if len(a.Map) != len(b.Map) {
			return false
		}
		for k, v := range a.Map {
			ov, ok := b.Map[k]
			if !ok || !EqualValue(v, ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// CloneValue deep-copies a value; lists and maps never alias the
// original's backing storage.
func CloneValue(v Value) Value {
	switch v.Kind {
	case ListVal:
		list := make([]Value, len(v.List))
		for i, item := range v.List {
			list[i] = CloneValue(item)
		}
		return Value{Kind: ListVal, List: list}
	case MapVal:
		m := make(map[string]Value, len(v.Map))
		for k, item := range v.Map {
			m[k] = CloneValue(item)
		}
		return Value{Kind: MapVal, Map: m}
	default:
		return v
	}
}

// PropMap is an unordered string-keyed map of property values.
type PropMap map[string]Value

// CloneProps deep-copies a property map.
func CloneProps(props PropMap) PropMap {
	if props == nil {
		return nil
	}
	clone := make(PropMap, len(props))
	for k, v := range props {
		clone[k] = CloneValue(v)
	}
	return clone
}

// MergeProps overlays overlay onto base, returning a new map; overlay
// entries win on key conflicts. Used by SET with overwrite=false.
func MergeProps(base, overlay PropMap) PropMap {
	merged := make(PropMap, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}
