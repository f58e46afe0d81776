package firedoc

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"

	"github.com/hashicorp/go-multierror"
)

// ============================================================
// Decoder - tagged wire form to Value to plain
// ============================================================

// Decoder unwraps tagged documents. A Decoder holds only its options and
// is safe for concurrent use.
type Decoder struct {
	opts Options
}

// NewDecoder returns a Decoder configured by opts.
func NewDecoder(opts Options) *Decoder {
	return &Decoder{opts: opts}
}

var defaultDecoder = NewDecoder(DefaultOptions())

// DecodeFields unwraps a document's fields mapping using default options.
func DecodeFields(fields map[string]any) (map[string]any, error) {
	return defaultDecoder.DecodeFields(fields)
}

// Decode unwraps a single tagged wrapper using default options.
func Decode(wrapper any) (any, error) {
	return defaultDecoder.Decode(wrapper)
}

// DecodeFields unwraps a document's fields mapping into a plain object.
// Fields whose wrapper carries no recognized tag are absent from the
// result. Array elements with no recognized tag decode to nil in place.
func (d *Decoder) DecodeFields(fields map[string]any) (map[string]any, error) {
	v, err := d.ParseFields(fields)
	if err != nil {
		return nil, err
	}
	return v.plainMap(), nil
}

// Decode unwraps a single tagged wrapper. An unrecognized wrapper yields
// nil without error unless the Decoder is strict.
func (d *Decoder) Decode(wrapper any) (any, error) {
	v, err := d.Parse(wrapper)
	if err != nil || v == nil {
		return nil, err
	}
	return v.Plain(), nil
}

// ParseFields parses a document's fields mapping into a map Value.
func (d *Decoder) ParseFields(fields map[string]any) (*Value, error) {
	p := &parser{opts: d.opts}
	v, err := p.fields(nil, 0, fields)
	if err != nil {
		return nil, err
	}
	if err := p.finish(); err != nil {
		return nil, err
	}
	return v, nil
}

// Parse parses a single tagged wrapper into a Value. It returns nil
// without error when the wrapper is dropped.
func (d *Decoder) Parse(wrapper any) (*Value, error) {
	p := &parser{opts: d.opts}
	v, _, err := p.wrapper(nil, 1, wrapper)
	if err != nil {
		return nil, err
	}
	if err := p.finish(); err != nil {
		return nil, err
	}
	return v, nil
}

type parser struct {
	opts    Options
	dropped *multierror.Error
}

func (p *parser) finish() error {
	return p.dropped.ErrorOrNil()
}

func (p *parser) drop(path Path, wrapper map[string]any) {
	keys := slices.Sorted(maps.Keys(wrapper))
	if p.opts.OnDrop != nil {
		p.opts.OnDrop(path, keys)
	}
	if p.opts.Strict {
		p.dropped = multierror.Append(p.dropped, pathErrorf(path, ErrUnrecognizedTag, "keys %q", keys))
	}
}

func (p *parser) fields(path Path, depth int, m map[string]any) (*Value, error) {
	out := make([]Field, 0, len(m))
	for _, name := range slices.Sorted(maps.Keys(m)) {
		v, ok, err := p.wrapper(path.Field(name), depth+1, m[name])
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, Field{Name: name, Value: v})
		}
	}
	return Map(out...), nil
}

// wrapper parses one tagged wrapper. ok is false when the wrapper was
// dropped.
func (p *parser) wrapper(path Path, depth int, raw any) (*Value, bool, error) {
	if depth > p.opts.maxDepth() {
		return nil, false, pathErrorf(path, ErrDepthExceeded, "limit %d", p.opts.maxDepth())
	}
	obj, isObj := raw.(map[string]any)
	if !isObj {
		return nil, false, pathErrorf(path, ErrMalformedInput, "wrapper is %s, want object", jsonKind(raw))
	}
	rule, payload, found := dispatch(obj)
	if !found {
		p.drop(path, obj)
		return nil, false, nil
	}

	switch rule.kind {
	case KindBoolean:
		b, isBool := payload.(bool)
		if !isBool {
			return nil, false, payloadError(path, rule, payload)
		}
		return Boolean(b), true, nil

	case KindInteger:
		if s, isStr := payload.(string); isStr {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				return nil, false, pathErrorf(path, ErrMalformedInput, "%s %q is not an int64", rule.tag, s)
			}
			return QuotedInteger(json.Number(s)), true, nil
		}
		n, isNum := toNumber(payload)
		if !isNum {
			return nil, false, payloadError(path, rule, payload)
		}
		return Integer(n), true, nil

	case KindDouble:
		n, isNum := toNumber(payload)
		if !isNum {
			return nil, false, payloadError(path, rule, payload)
		}
		return Double(n), true, nil

	case KindString:
		s, isStr := payload.(string)
		if !isStr {
			return nil, false, payloadError(path, rule, payload)
		}
		return String(s), true, nil

	case KindTimestamp:
		s, isStr := payload.(string)
		if !isStr {
			return nil, false, payloadError(path, rule, payload)
		}
		return Timestamp(s), true, nil

	case KindMap:
		fields, err := member[map[string]any](path, rule, payload, FieldsKey)
		if err != nil {
			return nil, false, err
		}
		v, err := p.fields(path, depth, fields)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil

	case KindArray:
		values, err := member[[]any](path, rule, payload, ValuesKey)
		if err != nil {
			return nil, false, err
		}
		items := make([]*Value, 0, len(values))
		for i, elem := range values {
			// A dropped element stays as a nil placeholder so indexes hold.
			item, _, err := p.wrapper(path.Elem(i), depth+1, elem)
			if err != nil {
				return nil, false, err
			}
			items = append(items, item)
		}
		return Array(items...), true, nil

	default:
		return nil, false, pathErrorf(path, ErrMalformedInput, "tag %s has no decoder", rule.tag)
	}
}

// member extracts the fields or values member of a composite payload.
func member[T any](path Path, rule tagRule, payload any, key string) (T, error) {
	var zero T
	body, ok := payload.(map[string]any)
	if !ok {
		return zero, pathErrorf(path, ErrMalformedInput, "%s is %s, want object", rule.tag, jsonKind(payload))
	}
	raw, ok := body[key]
	if !ok {
		return zero, pathErrorf(path, ErrMalformedInput, "%s has no %s", rule.tag, key)
	}
	out, ok := raw.(T)
	if !ok {
		return zero, pathErrorf(path, ErrMalformedInput, "%s.%s is %s", rule.tag, key, jsonKind(raw))
	}
	return out, nil
}

func payloadError(path Path, rule tagRule, payload any) error {
	return pathErrorf(path, ErrMalformedInput, "%s payload is %s, want %s", rule.tag, jsonKind(payload), rule.kind)
}

// ============================================================
// Plain projection
// ============================================================

// Plain projects v onto plain Go values: bool, json.Number, string,
// map[string]any and []any. Integers that arrived quoted stay strings.
func (v *Value) Plain() any {
	switch v.Kind() {
	case KindBoolean:
		return v.boolVal
	case KindInteger:
		if v.quoted {
			return string(v.numVal)
		}
		return v.numVal
	case KindDouble:
		return v.numVal
	case KindString, KindTimestamp:
		return v.strVal
	case KindMap:
		return v.plainMap()
	case KindArray:
		out := make([]any, len(v.arrVal))
		for i, elem := range v.arrVal {
			out[i] = elem.Plain()
		}
		return out
	default:
		return nil
	}
}

func (v *Value) plainMap() map[string]any {
	out := make(map[string]any, len(v.mapVal))
	for _, f := range v.mapVal {
		out[f.Name] = f.Value.Plain()
	}
	return out
}
