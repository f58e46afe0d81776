// Package codec writes plain documents as JSON, YAML or CBOR.
package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Format names an output encoding.
type Format string

// Supported formats.
const (
	JSON Format = "json"
	YAML Format = "yaml"
	CBOR Format = "cbor"
)

// Formats lists the supported formats.
var Formats = []Format{JSON, YAML, CBOR}

// ParseFormat validates a format name. The empty string selects JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return JSON, nil
	case JSON, YAML, CBOR:
		return f, nil
	default:
		return "", fmt.Errorf("codec: unknown format %q (want json, yaml or cbor)", s)
	}
}

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2), so the same
// document always produces identical bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Write encodes v to w in format f. JSON output is indented when pretty
// is set and always ends with a newline.
func Write(w io.Writer, f Format, v any, pretty bool) error {
	switch f {
	case JSON, "":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if pretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(v)
	case YAML:
		native, err := Native(v)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(native); err != nil {
			return err
		}
		return enc.Close()
	case CBOR:
		native, err := Native(v)
		if err != nil {
			return err
		}
		return encMode.NewEncoder(w).Encode(native)
	default:
		return fmt.Errorf("codec: unknown format %q", f)
	}
}

// UnmarshalCBOR decodes CBOR data into v. Maps decode as map[string]any.
func UnmarshalCBOR(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Native replaces every json.Number in a plain tree with an int64, a
// uint64 or a float64, in that order of preference, so encoders without
// arbitrary-precision numbers emit real numbers instead of strings.
func Native(v any) (any, error) {
	switch v := v.(type) {
	case json.Number:
		return nativeNumber(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			n, err := Native(e)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			n, err := Native(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	default:
		return v, nil
	}
}

func nativeNumber(n json.Number) (any, error) {
	s := n.String()
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return u, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return nil, fmt.Errorf("codec: number %s does not fit in a float64", s)
	}
	return f, nil
}
