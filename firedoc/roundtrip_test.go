package firedoc

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ============================================================
// Round-trip properties
// ============================================================

func TestRoundTrip_PlainDocument(t *testing.T) {
	cases := []string{
		`{}`,
		`{"a": 1}`,
		`{"s": "v1", "n": -12, "f": 2.75, "b": false}`,
		`{"empty_map": {}, "empty_list": []}`,
		`{"list": [3, 1, 2], "mixed": ["a", 1, true, {"k": "v"}, [1, [2]]]}`,
		`{"big": 9223372036854775807, "exp": 1.5e300}`,
		`{"unicode": "héllo wörld ✓", "quote": "say \"hi\""}`,
	}

	for i, src := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			plain := mustObject(t, src)
			tagged, err := EncodeFields(plain)
			if err != nil {
				t.Fatalf("EncodeFields() error: %v", err)
			}
			back, err := DecodeFields(tagged)
			if err != nil {
				t.Fatalf("DecodeFields() error: %v", err)
			}
			if diff := cmp.Diff(plain, back); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoundTrip_TaggedDocument(t *testing.T) {
	tagged := mustObject(t, `{
		"n": {"integerValue": 5},
		"s": {"stringValue": "x"},
		"t": {"timestampValue": "2023-11-14T22:13:20Z"},
		"m": {"mapValue": {"fields": {"b": {"booleanValue": true}}}},
		"a": {"arrayValue": {"values": [{"integerValue": 1}, {"arrayValue": {"values": []}}]}}
	}`)

	plain, err := DecodeFields(tagged)
	if err != nil {
		t.Fatalf("DecodeFields() error: %v", err)
	}
	// Timestamps come back as strings, which encode as stringValue.
	want := mustObject(t, `{
		"n": {"integerValue": 5},
		"s": {"stringValue": "x"},
		"t": {"stringValue": "2023-11-14T22:13:20Z"},
		"m": {"mapValue": {"fields": {"b": {"booleanValue": true}}}},
		"a": {"arrayValue": {"values": [{"integerValue": 1}, {"arrayValue": {"values": []}}]}}
	}`)
	again, err := EncodeFields(plain)
	if err != nil {
		t.Fatalf("EncodeFields() error: %v", err)
	}
	if diff := cmp.Diff(want, again); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_ValueKeepsWireForm(t *testing.T) {
	// Through Value, every tag including quoted integers, timestamps and
	// doubles comes back exactly.
	tagged := mustObject(t, `{
		"q": {"integerValue": "9007199254740993"},
		"t": {"timestampValue": "2023-11-14T22:13:20.5Z"},
		"d": {"doubleValue": 0.1},
		"m": {"mapValue": {"fields": {"l": {"arrayValue": {"values": [{"stringValue": "z"}]}}}}}
	}`)

	v, err := NewDecoder(DefaultOptions()).ParseFields(tagged)
	if err != nil {
		t.Fatalf("ParseFields() error: %v", err)
	}
	if diff := cmp.Diff(tagged, v.TaggedFields()); diff != "" {
		t.Errorf("TaggedFields() mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_FiveLevelsDeep(t *testing.T) {
	plain := map[string]any{
		"l1": map[string]any{
			"l2": map[string]any{
				"l3": []any{
					map[string]any{
						"l5": []any{json.Number("1"), "two", true},
					},
					json.Number("4"),
				},
			},
			"side": "x",
		},
	}

	tagged, err := EncodeFields(plain)
	if err != nil {
		t.Fatalf("EncodeFields() error: %v", err)
	}
	back, err := DecodeFields(tagged)
	if err != nil {
		t.Fatalf("DecodeFields() error: %v", err)
	}
	if diff := cmp.Diff(plain, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_FractionalAsDouble(t *testing.T) {
	enc := NewEncoder(Options{NumberPolicy: FractionalAsDouble})
	plain := map[string]any{"i": json.Number("3"), "d": json.Number("3.25"), "l": []any{json.Number("1e-7")}}

	tagged, err := enc.EncodeFields(plain)
	if err != nil {
		t.Fatalf("EncodeFields() error: %v", err)
	}
	if _, ok := tagged["d"].(map[string]any)[TagDouble]; !ok {
		t.Errorf("d encoded as %v, want doubleValue", tagged["d"])
	}
	back, err := DecodeFields(tagged)
	if err != nil {
		t.Fatalf("DecodeFields() error: %v", err)
	}
	if diff := cmp.Diff(plain, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

// TestRoundTrip_Generated checks decode(encode(v)) == v over generated trees.
func TestRoundTrip_Generated(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := range 300 {
		plain := genObject(rng, 5)
		tagged, err := EncodeFields(plain)
		if err != nil {
			t.Fatalf("tree %d: EncodeFields() error: %v", i, err)
		}

		// Through the wire as bytes too, as a real caller would.
		data, err := json.Marshal(tagged)
		if err != nil {
			t.Fatalf("tree %d: marshal: %v", i, err)
		}
		back, err := DecodeFieldsJSON(data)
		if err != nil {
			t.Fatalf("tree %d: DecodeFieldsJSON() error: %v", i, err)
		}
		if diff := cmp.Diff(plain, back); diff != "" {
			t.Fatalf("tree %d: round trip mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func genObject(rng *rand.Rand, depth int) map[string]any {
	n := rng.IntN(5)
	obj := make(map[string]any, n)
	for i := range n {
		obj["k"+strconv.Itoa(i)] = genValue(rng, depth-1)
	}
	return obj
}

func genValue(rng *rand.Rand, depth int) any {
	kinds := 4
	if depth > 0 {
		kinds = 6
	}
	switch rng.IntN(kinds) {
	case 0:
		return rng.IntN(2) == 0
	case 1:
		return json.Number(strconv.FormatInt(rng.Int64N(1<<53)-(1<<52), 10))
	case 2:
		return json.Number(strconv.FormatFloat(rng.Float64()*1000, 'f', 3, 64))
	case 3:
		return fmt.Sprintf("s%d", rng.IntN(1000))
	case 4:
		n := rng.IntN(4)
		arr := make([]any, n)
		for i := range arr {
			arr[i] = genValue(rng, depth-1)
		}
		return arr
	default:
		return genObject(rng, depth)
	}
}

func BenchmarkDecodeFields(b *testing.B) {
	rng := rand.New(rand.NewPCG(3, 4))
	tagged, err := EncodeFields(genObject(rng, 6))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for range b.N {
		if _, err := DecodeFields(tagged); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncodeFields(b *testing.B) {
	rng := rand.New(rand.NewPCG(3, 4))
	plain := genObject(rng, 6)
	b.ResetTimer()
	for range b.N {
		if _, err := EncodeFields(plain); err != nil {
			b.Fatal(err)
		}
	}
}
