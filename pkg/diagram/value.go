package diagram

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"

	"gopkg.in/yaml.v3"
)

// Kind identifies the variant held by a [Value].
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Value is a property value. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []Value
	m    Properties
}

// Properties maps string keys to values.
type Properties map[string]Value

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// List returns a list value.
func List(vs ...Value) Value { return Value{kind: KindList, list: vs} }

// Map returns a nested map value.
func Map(p Properties) Value { return Value{kind: KindMap, m: p} }

// Null returns the null value.
func Null() Value { return Value{} }

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the number held by v.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsList returns the list held by v.
func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

// AsMap returns the nested map held by v.
func (v Value) AsMap() (Properties, bool) { return v.m, v.kind == KindMap }

// Equal reports whether v and o hold the same variant and contents.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindList:
		return slices.EqualFunc(v.list, o.list, Value.Equal)
	case KindMap:
		return v.m.Equal(o.m)
	}
	return true
}

// Interface converts v to plain Go values: nil, string, float64, bool,
// []any or map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Interface()
		}
		return out
	case KindMap:
		return v.m.Interface()
	}
	return nil
}

// FromInterface converts decoded JSON or YAML data into a Value.
func FromInterface(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("number %q: %w", t, err)
		}
		return Number(f), nil
	case []any:
		out := make([]Value, len(t))
		for i, e := range t {
			v, err := FromInterface(e)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = v
		}
		return List(out...), nil
	case map[string]any:
		p := make(Properties, len(t))
		for k, e := range t {
			v, err := FromInterface(e)
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			p[k] = v
		}
		return Map(p), nil
	}
	return Value{}, fmt.Errorf("unsupported value type %T", x)
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindNumber && (math.IsNaN(v.num) || math.IsInf(v.num, 0)) {
		return nil, fmt.Errorf("number %v is not representable in JSON", v.num)
	}
	return json.Marshal(v.Interface())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var x any
	if err := json.Unmarshal(data, &x); err != nil {
		return err
	}
	out, err := FromInterface(x)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(n *yaml.Node) error {
	var x any
	if err := n.Decode(&x); err != nil {
		return err
	}
	out, err := FromInterface(x)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// Interface converts p to a map of plain Go values.
func (p Properties) Interface() map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v.Interface()
	}
	return out
}

// Keys returns the keys of p in sorted order.
func (p Properties) Keys() []string {
	return slices.Sorted(maps.Keys(p))
}

// Equal reports whether p and o hold equal values for the same keys.
// A nil map equals an empty one.
func (p Properties) Equal(o Properties) bool {
	return maps.EqualFunc(p, o, Value.Equal)
}

// Clone returns a deep copy of p. Cloning nil yields nil.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v.clone()
	}
	return out
}

func (v Value) clone() Value {
	switch v.kind {
	case KindList:
		out := make([]Value, len(v.list))
		for i, e := range v.list {
			out[i] = e.clone()
		}
		v.list = out
	case KindMap:
		v.m = v.m.Clone()
	}
	return v
}
