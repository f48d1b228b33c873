// Package value carries loosely typed script values (configuration payloads,
// variables, call arguments) together with the type predicates and coercions
// the execution layer needs to interpret them.
package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Type classifies the underlying Go value.
type Type int

const (
	TypeNull Type = iota
	TypeString
	TypeNumber
	TypeBoolean
	TypeMap
	TypeList
	TypeOther
)

func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeBoolean:
		return "boolean"
	case TypeMap:
		return "map"
	case TypeList:
		return "list"
	default:
		return "other"
	}
}

// Value wraps an arbitrary Go value. The zero Value is null.
// Map values decoded from ordered sources remember their key order.
type Value struct {
	v     any
	order []string
}

// Null is the explicit null value.
var Null = Value{}

// New wraps v. Passing a Value returns it unchanged.
func New(v any) Value {
	switch val := v.(type) {
	case Value:
		return val
	case *Value:
		if val == nil {
			return Null
		}
		return *val
	}
	return Value{v: v}
}

// Ordered wraps a map and records the key order it was declared in.
// Keys missing from the map are dropped from the order.
func Ordered(m map[string]any, keys []string) Value {
	order := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := m[k]; ok {
			order = append(order, k)
		}
	}
	return Value{v: m, order: order}
}

// FromJSON parses a JSON document. Invalid JSON yields the raw string.
func FromJSON(data []byte) Value {
	if !gjson.ValidBytes(data) {
		return New(string(data))
	}
	return New(gjson.ParseBytes(data).Value())
}

// Raw returns the wrapped Go value.
func (v Value) Raw() any { return v.v }

// Plain returns the wrapped value with nested Values unwrapped into plain
// maps and slices.
func (v Value) Plain() any { return unwrap(v.v) }

// Type reports the kind of the wrapped value.
func (v Value) Type() Type {
	if v.v == nil {
		return TypeNull
	}
	switch v.v.(type) {
	case string:
		return TypeString
	case bool:
		return TypeBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return TypeNumber
	}
	rv := reflect.ValueOf(v.v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return TypeMap
		}
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() != reflect.Uint8 {
			return TypeList
		}
	case reflect.Ptr:
		if rv.IsNil() {
			return TypeNull
		}
	}
	return TypeOther
}

func (v Value) IsNull() bool { return v.Type() == TypeNull }

func (v Value) IsString() bool { return v.Type() == TypeString }

// IsMapLike reports whether the value is a string-keyed map.
func (v Value) IsMapLike() bool { return v.Type() == TypeMap }

func (v Value) IsList() bool { return v.Type() == TypeList }

// IsBooleanTrue is true only for a boolean true; strings are not coerced.
func (v Value) IsBooleanTrue() bool {
	b, ok := v.v.(bool)
	return ok && b
}

// AsString renders the value as a string. Null renders as "", maps and
// lists render as compact JSON.
func (v Value) AsString() string {
	return anyToString(v.v)
}

// AsMap returns the value as a map[string]any copy, or nil when the value is
// not map-like. JSON object strings are parsed.
func (v Value) AsMap() map[string]any {
	switch v.Type() {
	case TypeMap:
		rv := reflect.ValueOf(v.v)
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = unwrap(iter.Value().Interface())
		}
		return out
	case TypeString:
		r := gjson.Parse(v.v.(string))
		if r.IsObject() {
			if m, ok := r.Value().(map[string]any); ok {
				return m
			}
		}
	}
	return nil
}

// Field returns the entry name of a map value without flattening nested
// values, so nested key order survives. Non-maps yield Null.
func (v Value) Field(name string) Value {
	switch m := v.v.(type) {
	case map[string]any:
		return New(m[name])
	case map[string]Value:
		return m[name]
	}
	if v.IsMapLike() {
		return New(v.AsMap()[name])
	}
	return Null
}

// AsList returns the elements of a list value, or nil for other types.
func (v Value) AsList() []any {
	if !v.IsList() {
		return nil
	}
	rv := reflect.ValueOf(v.v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = unwrap(rv.Index(i).Interface())
	}
	return out
}

// Keys returns map keys in declaration order when known, sorted otherwise.
func (v Value) Keys() []string {
	if !v.IsMapLike() {
		return nil
	}
	if len(v.order) > 0 {
		return append([]string(nil), v.order...)
	}
	m := v.AsMap()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get reads a gjson path (e.g. "user.name", "items.0") from the value.
func (v Value) Get(path string) Value {
	if strings.TrimSpace(path) == "" {
		return v
	}
	data, err := json.Marshal(unwrap(v.v))
	if err != nil {
		return Null
	}
	r := gjson.GetBytes(data, path)
	if !r.Exists() {
		return Null
	}
	return New(r.Value())
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.IsNull() {
		return "null"
	}
	return v.AsString()
}

// MarshalJSON encodes the wrapped value.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(unwrap(v.v))
}

// MarshalYAML lets yaml.v3 emit the wrapped value.
func (v Value) MarshalYAML() (any, error) {
	return unwrap(v.v), nil
}

// Copy returns a deep copy of maps and slices; scalars and opaque values are
// shared.
func Copy(v Value) Value {
	out := Value{v: deepCopy(v.v)}
	if len(v.order) > 0 {
		out.order = append([]string(nil), v.order...)
	}
	return out
}

func deepCopy(x any) any {
	switch val := x.(type) {
	case nil:
		return nil
	case Value:
		return Copy(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = deepCopy(e)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, e := range val {
			out[k] = e
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = deepCopy(e)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	}
	return x
}

// unwrap replaces nested Values with their raw content so that encoders and
// callers see plain Go data.
func unwrap(x any) any {
	switch val := x.(type) {
	case Value:
		return unwrap(val.v)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = unwrap(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = unwrap(e)
		}
		return out
	}
	return x
}

func anyToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case Value:
		return anyToString(val.v)
	case fmt.Stringer:
		return val.String()
	case float64:
		// Avoid scientific notation for integers
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return anyToString(float64(val))
	case bool:
		return strconv.FormatBool(val)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case []byte:
		return string(val)
	default:
		b, err := json.Marshal(unwrap(val))
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		b = bytes.TrimSpace(b)
		if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
			return string(b[1 : len(b)-1])
		}
		return string(b)
	}
}
