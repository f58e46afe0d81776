// Package firedoc converts between the tagged document-value format used by
// the document database wire protocol and plain JSON.
//
// Every value in a stored document travels as a single-key wrapper whose key
// names the value's type:
//
//	{"booleanValue": true}
//	{"integerValue": 42}            (or "42", as the REST surface emits int64)
//	{"stringValue": "x"}
//	{"timestampValue": "2024-01-02T03:04:05.678Z"}
//	{"mapValue": {"fields": {"a": {"stringValue": "x"}}}}
//	{"arrayValue": {"values": [{"integerValue": 1}]}}
//	{"doubleValue": 1.5}
//
// Consumers usually want the plain form:
//
//	{"a": "x"}
//
// # Data Model
//
// Both directions pass through Value, a closed union over Kind. Decoding
// parses the wire wrapper into a Value and then projects it to plain Go
// values (bool, json.Number, string, map[string]any, []any). Encoding does
// the reverse.
//
// # Tag Dispatch
//
// A wrapper that carries several recognized keys resolves to the first one
// in the fixed order booleanValue, integerValue, stringValue,
// timestampValue, mapValue, arrayValue, doubleValue.
//
// # Leniency
//
// A wrapper with no recognized key is dropped from its parent rather than
// failing the conversion. A dropped map field is omitted. A dropped array
// element becomes null so later elements keep their index. Drops are
// reported to Options.OnDrop, and Options.Strict turns them into a single
// aggregated error.
//
// # Numbers
//
// The default NumbersAsInteger policy tags every number as integerValue,
// matching what the trigger has always written. FractionalAsDouble tags
// numbers written with a decimal point or exponent as doubleValue.
//
// # Example
//
//	plain, err := firedoc.DecodeFieldsJSON([]byte(`{
//	  "n1": {"integerValue": "1"},
//	  "m1": {"mapValue": {"fields": {"s2": {"stringValue": "v2"}}}}
//	}`))
//	// plain == map[string]any{"n1": "1", "m1": map[string]any{"s2": "v2"}}
package firedoc
