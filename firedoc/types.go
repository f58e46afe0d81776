package firedoc

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind represents the variant held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBoolean
	KindInteger
	KindDouble
	KindString
	KindTimestamp
	KindMap
	KindArray
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindTimestamp:
		return "timestamp"
	case KindMap:
		return "map"
	case KindArray:
		return "array"
	default:
		return "invalid"
	}
}

// Value is one node of a typed document tree.
type Value struct {
	kind Kind

	// Scalar values (only one valid based on kind)
	boolVal bool
	numVal  json.Number
	strVal  string // string and timestamp

	// quoted records that an integer payload arrived as a JSON string.
	quoted bool

	// Container values
	mapVal []Field
	arrVal []*Value
}

// Field is a named entry of a map value.
type Field struct {
	Name  string
	Value *Value
}

// ============================================================
// Constructors
// ============================================================

// Boolean creates a boolean value.
func Boolean(v bool) *Value {
	return &Value{kind: KindBoolean, boolVal: v}
}

// Integer creates an integer value from its decimal text.
func Integer(n json.Number) *Value {
	return &Value{kind: KindInteger, numVal: n}
}

// QuotedInteger creates an integer value whose wire payload is a JSON
// string, as the REST surface emits for int64.
func QuotedInteger(n json.Number) *Value {
	return &Value{kind: KindInteger, numVal: n, quoted: true}
}

// Int creates an integer value.
func Int(v int64) *Value {
	return Integer(json.Number(strconv.FormatInt(v, 10)))
}

// Double creates a double value from its decimal text.
func Double(n json.Number) *Value {
	return &Value{kind: KindDouble, numVal: n}
}

// String creates a string value.
func String(v string) *Value {
	return &Value{kind: KindString, strVal: v}
}

// Timestamp creates a timestamp value. The text is carried unchanged.
func Timestamp(v string) *Value {
	return &Value{kind: KindTimestamp, strVal: v}
}

// Map creates a map value from fields. Field order is kept.
func Map(fields ...Field) *Value {
	if fields == nil {
		fields = []Field{}
	}
	return &Value{kind: KindMap, mapVal: fields}
}

// Array creates an array value.
func Array(values ...*Value) *Value {
	if values == nil {
		values = []*Value{}
	}
	return &Value{kind: KindArray, arrVal: values}
}

// F creates a Field for use in Map construction.
func F(name string, value *Value) Field {
	return Field{Name: name, Value: value}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the value kind.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindInvalid
	}
	return v.kind
}

// Quoted reports whether an integer value travels as a JSON string.
func (v *Value) Quoted() bool {
	return v != nil && v.kind == KindInteger && v.quoted
}

// AsBool returns the boolean value.
func (v *Value) AsBool() (bool, error) {
	if err := v.expect(KindBoolean); err != nil {
		return false, err
	}
	return v.boolVal, nil
}

// AsNumber returns the decimal text of an integer or double value.
func (v *Value) AsNumber() (json.Number, error) {
	if v == nil {
		return "", fmt.Errorf("firedoc: nil value")
	}
	if v.kind != KindInteger && v.kind != KindDouble {
		return "", fmt.Errorf("firedoc: expected integer or double, got %s", v.kind)
	}
	return v.numVal, nil
}

// AsInt returns an integer value as int64.
func (v *Value) AsInt() (int64, error) {
	if err := v.expect(KindInteger); err != nil {
		return 0, err
	}
	return v.numVal.Int64()
}

// AsString returns the string value.
func (v *Value) AsString() (string, error) {
	if err := v.expect(KindString); err != nil {
		return "", err
	}
	return v.strVal, nil
}

// AsTimestamp returns the timestamp text.
func (v *Value) AsTimestamp() (string, error) {
	if err := v.expect(KindTimestamp); err != nil {
		return "", err
	}
	return v.strVal, nil
}

// AsMap returns the map fields.
func (v *Value) AsMap() ([]Field, error) {
	if err := v.expect(KindMap); err != nil {
		return nil, err
	}
	return v.mapVal, nil
}

// AsArray returns the array elements.
func (v *Value) AsArray() ([]*Value, error) {
	if err := v.expect(KindArray); err != nil {
		return nil, err
	}
	return v.arrVal, nil
}

func (v *Value) expect(k Kind) error {
	if v == nil {
		return fmt.Errorf("firedoc: nil value")
	}
	if v.kind != k {
		return fmt.Errorf("firedoc: expected %s, got %s", k, v.kind)
	}
	return nil
}

// Len returns the length of a map or array.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindMap:
		return len(v.mapVal)
	case KindArray:
		return len(v.arrVal)
	default:
		return 0
	}
}

// Get returns a field value by name from a map, or nil.
func (v *Value) Get(name string) *Value {
	if v.Kind() != KindMap {
		return nil
	}
	for _, f := range v.mapVal {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

// Index returns the i-th element of an array. A dropped element is nil.
func (v *Value) Index(i int) (*Value, error) {
	if v.Kind() != KindArray {
		return nil, fmt.Errorf("firedoc: not an array")
	}
	if i < 0 || i >= len(v.arrVal) {
		return nil, fmt.Errorf("firedoc: index %d out of bounds (len=%d)", i, len(v.arrVal))
	}
	return v.arrVal[i], nil
}

// ============================================================
// Mutators
// ============================================================

// Set sets a field value on a map, replacing an existing field of the
// same name.
func (v *Value) Set(name string, val *Value) {
	if v.Kind() != KindMap {
		panic("firedoc: cannot set on non-map")
	}
	for i := range v.mapVal {
		if v.mapVal[i].Name == name {
			v.mapVal[i].Value = val
			return
		}
	}
	v.mapVal = append(v.mapVal, Field{Name: name, Value: val})
}

// Append adds a value to an array.
func (v *Value) Append(val *Value) {
	if v.Kind() != KindArray {
		panic("firedoc: cannot append to non-array")
	}
	v.arrVal = append(v.arrVal, val)
}

// Equal reports whether two trees are structurally equal. Map field order
// is ignored; array order is not.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBoolean:
		return v.boolVal == o.boolVal
	case KindInteger:
		return v.numVal == o.numVal && v.quoted == o.quoted
	case KindDouble:
		return v.numVal == o.numVal
	case KindString, KindTimestamp:
		return v.strVal == o.strVal
	case KindMap:
		if len(v.mapVal) != len(o.mapVal) {
			return false
		}
		for _, f := range v.mapVal {
			if !f.Value.Equal(o.Get(f.Name)) {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.arrVal) != len(o.arrVal) {
			return false
		}
		for i := range v.arrVal {
			if !v.arrVal[i].Equal(o.arrVal[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
