package firedoc

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// ============================================================
// Encoder - plain to Value to tagged wire form
// ============================================================

// Encoder wraps plain values into tagged form. An Encoder holds only its
// options and is safe for concurrent use.
type Encoder struct {
	opts Options
}

// NewEncoder returns an Encoder configured by opts.
func NewEncoder(opts Options) *Encoder {
	return &Encoder{opts: opts}
}

var defaultEncoder = NewEncoder(DefaultOptions())

// Encode wraps a plain value using default options.
func Encode(v any) (map[string]any, error) {
	return defaultEncoder.Encode(v)
}

// EncodeFields wraps every member of a plain object using default options,
// producing a document fields mapping.
func EncodeFields(obj map[string]any) (map[string]any, error) {
	return defaultEncoder.EncodeFields(obj)
}

// Encode wraps a plain value into a tagged wrapper. On failure no partial
// tree is returned.
func (e *Encoder) Encode(v any) (map[string]any, error) {
	val, err := e.Value(v)
	if err != nil {
		return nil, err
	}
	return val.Tagged(), nil
}

// EncodeFields wraps every member of obj, producing a fields mapping.
func (e *Encoder) EncodeFields(obj map[string]any) (map[string]any, error) {
	val, err := e.fields(nil, 0, obj)
	if err != nil {
		return nil, err
	}
	return val.TaggedFields(), nil
}

// Value converts a plain value into a Value.
//
// Accepted inputs are bool, string, every integer and float type,
// json.Number, *Value, and slices, arrays and string-keyed maps of those.
// nil and every other kind fail with ErrUnsupportedValueKind.
func (e *Encoder) Value(v any) (*Value, error) {
	return e.from(nil, 1, v)
}

func (e *Encoder) from(path Path, depth int, v any) (*Value, error) {
	if depth > e.opts.maxDepth() {
		return nil, pathErrorf(path, ErrDepthExceeded, "limit %d", e.opts.maxDepth())
	}

	switch val := v.(type) {
	case nil:
		return nil, pathErrorf(path, ErrUnsupportedValueKind, "null has no tag")
	case *Value:
		if val == nil || val.kind == KindInvalid {
			return nil, pathErrorf(path, ErrUnsupportedValueKind, "invalid Value")
		}
		return val, nil
	case bool:
		return Boolean(val), nil
	case string:
		return String(val), nil
	case json.Number:
		if !isJSONNumber(string(val)) {
			return nil, pathErrorf(path, ErrMalformedInput, "%q is not a JSON number", string(val))
		}
		return e.number(val), nil
	case []any:
		if val == nil {
			return nil, pathErrorf(path, ErrUnsupportedValueKind, "nil %T", val)
		}
		items := make([]*Value, len(val))
		for i, elem := range val {
			item, err := e.from(path.Elem(i), depth+1, elem)
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return Array(items...), nil
	case map[string]any:
		if val == nil {
			return nil, pathErrorf(path, ErrUnsupportedValueKind, "nil %T", val)
		}
		return e.fields(path, depth, val)
	}

	if isFloat(v) {
		f := reflect.ValueOf(v).Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, pathErrorf(path, ErrUnsupportedValueKind, "non-finite number %v", f)
		}
	}
	if n, ok := toNumber(v); ok {
		return e.number(n), nil
	}
	return e.reflected(path, depth, reflect.ValueOf(v))
}

func (e *Encoder) fields(path Path, depth int, obj map[string]any) (*Value, error) {
	out := make([]Field, 0, len(obj))
	for _, name := range slices.Sorted(maps.Keys(obj)) {
		item, err := e.from(path.Field(name), depth+1, obj[name])
		if err != nil {
			return nil, err
		}
		out = append(out, Field{Name: name, Value: item})
	}
	return Map(out...), nil
}

// reflected handles typed slices and maps such as []string or
// map[string]int.
func (e *Encoder) reflected(path Path, depth int, rv reflect.Value) (*Value, error) {
	switch rv.Kind() {
	case reflect.Bool:
		return Boolean(rv.Bool()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return e.number(json.Number(strconv.FormatInt(rv.Int(), 10))), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return e.number(json.Number(strconv.FormatUint(rv.Uint(), 10))), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		n, ok := toNumber(f)
		if !ok {
			return nil, pathErrorf(path, ErrUnsupportedValueKind, "non-finite number %v", f)
		}
		return e.number(n), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, pathErrorf(path, ErrUnsupportedValueKind, "nil %s", rv.Type())
		}
		items := make([]*Value, rv.Len())
		for i := range items {
			item, err := e.from(path.Elem(i), depth+1, rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return Array(items...), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, pathErrorf(path, ErrUnsupportedValueKind, "map key type %s", rv.Type().Key())
		}
		if rv.IsNil() {
			return nil, pathErrorf(path, ErrUnsupportedValueKind, "nil %s", rv.Type())
		}
		obj := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			obj[iter.Key().String()] = iter.Value().Interface()
		}
		return e.fields(path, depth, obj)
	default:
		return nil, pathErrorf(path, ErrUnsupportedValueKind, "%T has no tag", rv.Interface())
	}
}

func (e *Encoder) number(n json.Number) *Value {
	if e.opts.NumberPolicy == FractionalAsDouble && strings.ContainsAny(string(n), ".eE") {
		return Double(n)
	}
	return Integer(n)
}

// ============================================================
// Tagged projection
// ============================================================

// Tagged returns the wire wrapper for v, e.g. {"stringValue": "x"}.
func (v *Value) Tagged() map[string]any {
	switch v.Kind() {
	case KindBoolean:
		return map[string]any{TagBoolean: v.boolVal}
	case KindInteger:
		if v.quoted {
			return map[string]any{TagInteger: string(v.numVal)}
		}
		return map[string]any{TagInteger: v.numVal}
	case KindDouble:
		return map[string]any{TagDouble: v.numVal}
	case KindString:
		return map[string]any{TagString: v.strVal}
	case KindTimestamp:
		return map[string]any{TagTimestamp: v.strVal}
	case KindMap:
		return map[string]any{TagMap: map[string]any{FieldsKey: v.TaggedFields()}}
	case KindArray:
		values := make([]any, len(v.arrVal))
		for i, elem := range v.arrVal {
			if elem == nil {
				continue
			}
			values[i] = elem.Tagged()
		}
		return map[string]any{TagArray: map[string]any{ValuesKey: values}}
	default:
		return nil
	}
}

// TaggedFields returns the fields mapping of a map value, or nil for any
// other kind.
func (v *Value) TaggedFields() map[string]any {
	if v.Kind() != KindMap {
		return nil
	}
	out := make(map[string]any, len(v.mapVal))
	for _, f := range v.mapVal {
		out[f.Name] = f.Value.Tagged()
	}
	return out
}

// ============================================================
// Numeric helpers
// ============================================================

// toNumber returns the JSON text of a Go numeric value. Non-finite floats
// are rejected.
func toNumber(v any) (json.Number, bool) {
	switch n := v.(type) {
	case json.Number:
		return n, isJSONNumber(string(n))
	case int:
		return json.Number(strconv.FormatInt(int64(n), 10)), true
	case int8:
		return json.Number(strconv.FormatInt(int64(n), 10)), true
	case int16:
		return json.Number(strconv.FormatInt(int64(n), 10)), true
	case int32:
		return json.Number(strconv.FormatInt(int64(n), 10)), true
	case int64:
		return json.Number(strconv.FormatInt(n, 10)), true
	case uint:
		return json.Number(strconv.FormatUint(uint64(n), 10)), true
	case uint8:
		return json.Number(strconv.FormatUint(uint64(n), 10)), true
	case uint16:
		return json.Number(strconv.FormatUint(uint64(n), 10)), true
	case uint32:
		return json.Number(strconv.FormatUint(uint64(n), 10)), true
	case uint64:
		return json.Number(strconv.FormatUint(n, 10)), true
	case float32, float64:
		// encoding/json formats floats the way JavaScript does, so 3.0
		// becomes "3" and 1e21 becomes "1e+21".
		b, err := json.Marshal(n)
		if err != nil {
			return "", false
		}
		return json.Number(b), true
	default:
		return "", false
	}
}

func isFloat(v any) bool {
	switch v.(type) {
	case float32, float64:
		return true
	default:
		return false
	}
}

// isJSONNumber reports whether s is a JSON number literal.
func isJSONNumber(s string) bool {
	if s == "" {
		return false
	}
	first, last := s[0], s[len(s)-1]
	if first != '-' && (first < '0' || first > '9') {
		return false
	}
	if last < '0' || last > '9' {
		return false
	}
	return json.Valid([]byte(s))
}

// String renders v in tagged wire form for diagnostics.
func (v *Value) String() string {
	if v.Kind() == KindInvalid {
		return "<invalid>"
	}
	b, err := json.Marshal(v.Tagged())
	if err != nil {
		return fmt.Sprintf("<%s: %v>", v.kind, err)
	}
	return string(b)
}
