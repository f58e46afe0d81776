package firedoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
)

// ============================================================
// JSON Bridge
// ============================================================
//
// Byte-level entry points. Input is parsed with json.Decoder.UseNumber so
// integer payloads keep every digit; plain output therefore carries
// numbers as json.Number.

// UnwrapJSON converts a tagged fields mapping to plain JSON bytes using
// default options.
func UnwrapJSON(data []byte) ([]byte, error) {
	return defaultDecoder.UnwrapJSON(data)
}

// WrapJSON converts a plain JSON object to a tagged fields mapping using
// default options.
func WrapJSON(data []byte) ([]byte, error) {
	return defaultEncoder.WrapJSON(data)
}

// DecodeFieldsJSON unwraps a tagged fields mapping given as JSON bytes
// using default options.
func DecodeFieldsJSON(data []byte) (map[string]any, error) {
	return defaultDecoder.DecodeFieldsJSON(data)
}

// DecodeDocument unwraps a document resource ({"name": ..., "fields":
// {...}}) using default options.
func DecodeDocument(doc map[string]any) (map[string]any, error) {
	return defaultDecoder.DecodeDocument(doc)
}

// DecodeFieldsJSON unwraps a tagged fields mapping given as JSON bytes.
func (d *Decoder) DecodeFieldsJSON(data []byte) (map[string]any, error) {
	obj, err := unmarshalObject(data, "fields mapping")
	if err != nil {
		return nil, err
	}
	return d.DecodeFields(obj)
}

// DecodeDocument unwraps the fields member of a document resource.
func (d *Decoder) DecodeDocument(doc map[string]any) (map[string]any, error) {
	raw, ok := doc[FieldsKey]
	if !ok {
		return nil, pathErrorf(nil, ErrMalformedInput, "document has no %s", FieldsKey)
	}
	fields, ok := raw.(map[string]any)
	if !ok {
		return nil, pathErrorf(nil, ErrMalformedInput, "document %s is %s, want object", FieldsKey, jsonKind(raw))
	}
	return d.DecodeFields(fields)
}

// UnwrapJSON converts a tagged fields mapping to plain JSON bytes.
func (d *Decoder) UnwrapJSON(data []byte) ([]byte, error) {
	plain, err := d.DecodeFieldsJSON(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(plain)
}

// EncodeFieldsJSON wraps a plain JSON object given as bytes.
func (e *Encoder) EncodeFieldsJSON(data []byte) (map[string]any, error) {
	obj, err := unmarshalObject(data, "plain document")
	if err != nil {
		return nil, err
	}
	return e.EncodeFields(obj)
}

// WrapJSON converts a plain JSON object to a tagged fields mapping.
func (e *Encoder) WrapJSON(data []byte) ([]byte, error) {
	fields, err := e.EncodeFieldsJSON(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

// MarshalJSON emits v in tagged wire form.
func (v *Value) MarshalJSON() ([]byte, error) {
	if v.Kind() == KindInvalid {
		return nil, fmt.Errorf("firedoc: cannot marshal invalid Value")
	}
	return json.Marshal(v.Tagged())
}

// UnmarshalJSON parses a tagged wrapper with default options.
func (v *Value) UnmarshalJSON(data []byte) error {
	raw, err := unmarshalJSON(data)
	if err != nil {
		return err
	}
	parsed, err := defaultDecoder.Parse(raw)
	if err != nil {
		return err
	}
	if parsed == nil {
		return &PathError{Err: ErrUnrecognizedTag}
	}
	*v = *parsed
	return nil
}

func unmarshalJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, pathErrorf(nil, ErrMalformedInput, "JSON parse error: %v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, pathErrorf(nil, ErrMalformedInput, "trailing data after JSON value")
	}
	return v, nil
}

func unmarshalObject(data []byte, what string) (map[string]any, error) {
	raw, err := unmarshalJSON(data)
	if err != nil {
		return nil, err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, pathErrorf(nil, ErrMalformedInput, "%s is %s, want object", what, jsonKind(raw))
	}
	return obj, nil
}

// ============================================================
// JSON equality
// ============================================================

// JSONEqual checks if two JSON byte slices represent equal values.
// Numbers compare by value, so 1, 1.0 and 1e0 are equal.
func JSONEqual(a, b []byte) (bool, error) {
	va, err := unmarshalJSON(a)
	if err != nil {
		return false, fmt.Errorf("parse a: %w", err)
	}
	vb, err := unmarshalJSON(b)
	if err != nil {
		return false, fmt.Errorf("parse b: %w", err)
	}
	return PlainEqual(va, vb), nil
}

// PlainEqual reports whether two plain trees are equal. Numbers of any Go
// numeric type compare by value; object key order is irrelevant.
func PlainEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch va := a.(type) {
	case bool:
		vb, ok := b.(bool)
		return ok && va == vb
	case string:
		vb, ok := b.(string)
		return ok && va == vb
	case []any:
		vb, ok := b.([]any)
		if !ok || len(va) != len(vb) {
			return false
		}
		for i := range va {
			if !PlainEqual(va[i], vb[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		vb, ok := b.(map[string]any)
		if !ok || len(va) != len(vb) {
			return false
		}
		for k, valA := range va {
			valB, exists := vb[k]
			if !exists || !PlainEqual(valA, valB) {
				return false
			}
		}
		return true
	default:
		na, ok := toNumber(a)
		if !ok {
			return false
		}
		nb, ok := toNumber(b)
		if !ok {
			return false
		}
		return numberEqual(na, nb)
	}
}

func numberEqual(a, b json.Number) bool {
	if a == b {
		return true
	}
	ra, ok := new(big.Rat).SetString(string(a))
	if !ok {
		return false
	}
	rb, ok := new(big.Rat).SetString(string(b))
	if !ok {
		return false
	}
	return ra.Cmp(rb) == 0
}
