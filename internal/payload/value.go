package payload

import (
	"maps"
	"slices"
)

// Value is one node of a payload tree. The concrete types are Map, List,
// Array, String, Number, and Bool; a nil Value is the null node. Payloads
// carry no schema, so consumers type-switch (or use the As* helpers) at
// every access.
type Value interface {
	isValue()
}

// Map is a string-keyed mapping node. Path traversal only descends through
// Map nodes.
type Map map[string]Value

// List is a heterogeneous sequence node.
type List []Value

// Array is a numeric sequence node: a time axis or a channel trace.
type Array []float64

// String is a text scalar.
type String string

// Number is a numeric scalar.
type Number float64

// Bool is a boolean scalar.
type Bool bool

func (Map) isValue()    {}
func (List) isValue()   {}
func (Array) isValue()  {}
func (String) isValue() {}
func (Number) isValue() {}
func (Bool) isValue()   {}

// TypeName names the concrete kind of v for error messages.
func TypeName(v Value) string {
	switch v.(type) {
	case nil:
		return "null"
	case Map:
		return "mapping"
	case List:
		return "list"
	case Array:
		return "array"
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// Clone returns a fully independent deep copy of v.
func Clone(v Value) Value {
	switch val := v.(type) {
	case Map:
		out := make(Map, len(val))
		for k, child := range val {
			out[k] = Clone(child)
		}
		return out
	case List:
		out := make(List, len(val))
		for i, child := range val {
			out[i] = Clone(child)
		}
		return out
	case Array:
		return slices.Clone(val)
	default:
		// Scalars and null are immutable.
		return v
	}
}

// Clone returns a deep copy of the map.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	return Clone(m).(Map)
}

// ShallowClone copies only the top-level map; nested containers are shared
// with the receiver.
func (m Map) ShallowClone() Map {
	return maps.Clone(m)
}

// SortedKeys returns the map's keys in sorted order. Go maps are unordered,
// so every place that folds over a payload mapping iterates in this order to
// stay deterministic.
func (m Map) SortedKeys() []string {
	return slices.Sorted(maps.Keys(m))
}

// AsMap returns v as a Map when it is one.
func AsMap(v Value) (Map, bool) {
	m, ok := v.(Map)
	return m, ok
}

// Numeric returns the numeric sequence held by v. Arrays convert directly;
// a List converts when every element is a Number. The second return is
// false for anything else.
func Numeric(v Value) (Array, bool) {
	switch val := v.(type) {
	case Array:
		return val, true
	case List:
		out := make(Array, len(val))
		for i, elem := range val {
			n, ok := elem.(Number)
			if !ok {
				return nil, false
			}
			out[i] = float64(n)
		}
		return out, true
	default:
		return nil, false
	}
}

// Equal reports deep structural equality of two values. Numeric comparison
// is exact; Array and all-Number List compare equal when their samples do.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if an, ok := Numeric(a); ok {
		bn, ok := Numeric(b)
		if !ok {
			return false
		}
		return slices.Equal(an, bn)
	}
	switch av := a.(type) {
	case Map:
		bv, ok := b.(Map)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, elem := range av {
			other, present := bv[k]
			if !present || !Equal(elem, other) {
				return false
			}
		}
		return true
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i, elem := range av {
			if !Equal(elem, bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// Strings converts a slice of plain strings into a List of String values.
func Strings(values []string) List {
	out := make(List, len(values))
	for i, v := range values {
		out[i] = String(v)
	}
	return out
}
