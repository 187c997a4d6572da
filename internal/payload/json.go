package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Encode renders v as indented JSON. Non-finite numbers have no JSON
// representation, so they serialize as the strings "Infinity", "-Infinity",
// and "NaN" (a detection result whose threshold is +Inf still round-trips
// through the catalog).
func Encode(v Value) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// Decode parses JSON into a payload value. Objects become Map, JSON arrays
// whose elements are all numbers become Array, any other array becomes
// List, and numbers become Number.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode payload json: %w", err)
	}
	return fromAny(raw)
}

func fromAny(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("parse number %q: %w", v.String(), err)
		}
		return Number(f), nil
	case []any:
		numeric := make(Array, 0, len(v))
		allNumbers := true
		for _, elem := range v {
			n, ok := elem.(json.Number)
			if !ok {
				allNumbers = false
				break
			}
			f, err := n.Float64()
			if err != nil {
				allNumbers = false
				break
			}
			numeric = append(numeric, f)
		}
		if allNumbers && len(v) > 0 {
			return numeric, nil
		}
		out := make(List, len(v))
		for i, elem := range v {
			converted, err := fromAny(elem)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	case map[string]any:
		out := make(Map, len(v))
		for key, elem := range v {
			converted, err := fromAny(elem)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported json value of type %T", raw)
	}
}

func appendFloat(dst []byte, f float64) []byte {
	switch {
	case math.IsInf(f, 1):
		return append(dst, `"Infinity"`...)
	case math.IsInf(f, -1):
		return append(dst, `"-Infinity"`...)
	case math.IsNaN(f):
		return append(dst, `"NaN"`...)
	default:
		return strconv.AppendFloat(dst, f, 'g', -1, 64)
	}
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	return appendFloat(nil, float64(n)), nil
}

// MarshalJSON implements json.Marshaler.
func (a Array) MarshalJSON() ([]byte, error) {
	out := make([]byte, 0, 2+len(a)*8)
	out = append(out, '[')
	for i, f := range a {
		if i > 0 {
			out = append(out, ',')
		}
		out = appendFloat(out, f)
	}
	return append(out, ']'), nil
}
