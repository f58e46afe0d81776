package firedoc

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestUnwrapJSON(t *testing.T) {
	got, err := UnwrapJSON([]byte(`{
		"n1": {"integerValue": 1},
		"m1": {"mapValue": {"fields": {"s2": {"stringValue": "v2"}}}},
		"x": {"unknownTag": true}
	}`))
	if err != nil {
		t.Fatalf("UnwrapJSON() error: %v", err)
	}
	want := `{"m1":{"s2":"v2"},"n1":1}`
	if string(got) != want {
		t.Errorf("UnwrapJSON() = %s, want %s", got, want)
	}
}

func TestWrapJSON(t *testing.T) {
	got, err := WrapJSON([]byte(`{"a1": ["aa1", 2], "big": 12345678901234567890}`))
	if err != nil {
		t.Fatalf("WrapJSON() error: %v", err)
	}
	want := `{"a1":{"arrayValue":{"values":[{"stringValue":"aa1"},{"integerValue":2}]}},` +
		`"big":{"integerValue":12345678901234567890}}`
	if string(got) != want {
		t.Errorf("WrapJSON() = %s\nwant %s", got, want)
	}

	if _, err := WrapJSON([]byte(`{"a": null}`)); !errors.Is(err, ErrUnsupportedValueKind) {
		t.Errorf("WrapJSON(null member) error = %v, want ErrUnsupportedValueKind", err)
	}
}

func TestBridge_BadInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not_json", `{"a":`},
		{"array_root", `[1, 2]`},
		{"scalar_root", `"x"`},
		{"trailing", `{} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeFieldsJSON([]byte(tt.data)); !errors.Is(err, ErrMalformedInput) {
				t.Errorf("DecodeFieldsJSON() error = %v, want ErrMalformedInput", err)
			}
			if _, err := WrapJSON([]byte(tt.data)); !errors.Is(err, ErrMalformedInput) {
				t.Errorf("WrapJSON() error = %v, want ErrMalformedInput", err)
			}
		})
	}
}

func TestDecodeDocument_Malformed(t *testing.T) {
	if _, err := DecodeDocument(map[string]any{"name": "x"}); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("missing fields: error = %v, want ErrMalformedInput", err)
	}
	if _, err := DecodeDocument(map[string]any{"fields": []any{}}); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("fields array: error = %v, want ErrMalformedInput", err)
	}
}

func TestJSONEqual(t *testing.T) {
	tests := []struct {
		a, b  string
		equal bool
	}{
		{`{"a":1,"b":[1,2]}`, `{"b":[1,2],"a":1}`, true},
		{`[1,2]`, `[2,1]`, false},
		{`1`, `1.0`, true},
		{`1e2`, `100`, true},
		{`12345678901234567890`, `12345678901234567891`, false},
		{`"1"`, `1`, false},
		{`null`, `null`, true},
		{`{"a":null}`, `{"a":false}`, false},
		{`{"a":1}`, `{"a":1,"b":2}`, false},
	}

	for _, tt := range tests {
		got, err := JSONEqual([]byte(tt.a), []byte(tt.b))
		if err != nil {
			t.Fatalf("JSONEqual(%s, %s) error: %v", tt.a, tt.b, err)
		}
		if got != tt.equal {
			t.Errorf("JSONEqual(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.equal)
		}
	}

	if _, err := JSONEqual([]byte(`{`), []byte(`{}`)); err == nil {
		t.Error("JSONEqual with invalid input should fail")
	}
}

func TestPlainEqual_MixedNumericTypes(t *testing.T) {
	if !PlainEqual(map[string]any{"n": 3}, map[string]any{"n": json.Number("3")}) {
		t.Error("int 3 and json.Number 3 should be equal")
	}
	if !PlainEqual([]any{2.5}, []any{json.Number("2.50")}) {
		t.Error("2.5 and 2.50 should be equal")
	}
	if PlainEqual(true, json.Number("1")) {
		t.Error("true and 1 should differ")
	}
}

func TestPath_String(t *testing.T) {
	tests := []struct {
		path Path
		want string
	}{
		{nil, "$"},
		{Path(nil).Field("a"), "$.a"},
		{Path(nil).Field("a").Elem(2).Field("b_1"), "$.a[2].b_1"},
		{Path(nil).Field("odd key"), `$["odd key"]`},
		{Path(nil).Field("1st"), `$["1st"]`},
		{Path(nil).Field(""), `$[""]`},
	}
	for _, tt := range tests {
		if got := tt.path.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}

func TestPath_NoAliasing(t *testing.T) {
	base := make(Path, 0, 8).Field("root")
	a := base.Field("a")
	b := base.Field("b")
	if a.String() != "$.root.a" || b.String() != "$.root.b" {
		t.Errorf("sibling paths aliased: %s, %s", a, b)
	}
}

func TestPathError_Message(t *testing.T) {
	err := pathErrorf(Path(nil).Field("m"), ErrMalformedInput, "mapValue has no fields")
	want := "firedoc: $.m: malformed input: mapValue has no fields"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	bare := &PathError{Err: ErrUnrecognizedTag}
	if bare.Error() != "firedoc: $: unrecognized type tag" {
		t.Errorf("Error() = %q", bare.Error())
	}
}
