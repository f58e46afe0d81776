package firedoc

// Wire tags.
const (
	TagBoolean   = "booleanValue"
	TagInteger   = "integerValue"
	TagString    = "stringValue"
	TagTimestamp = "timestampValue"
	TagMap       = "mapValue"
	TagArray     = "arrayValue"
	TagDouble    = "doubleValue"
)

// Keys of the composite payload objects.
const (
	FieldsKey = "fields"
	ValuesKey = "values"
)

type tagRule struct {
	tag  string
	kind Kind
}

// grammar lists every recognized tag in dispatch priority order. Decoding
// and encoding both read it.
var grammar = [...]tagRule{
	{TagBoolean, KindBoolean},
	{TagInteger, KindInteger},
	{TagString, KindString},
	{TagTimestamp, KindTimestamp},
	{TagMap, KindMap},
	{TagArray, KindArray},
	{TagDouble, KindDouble},
}

// Tags returns the recognized tags in dispatch priority order.
func Tags() []string {
	tags := make([]string, len(grammar))
	for i, r := range grammar {
		tags[i] = r.tag
	}
	return tags
}

// Tag returns the wire tag for k, or "" for KindInvalid.
func (k Kind) Tag() string {
	for _, r := range grammar {
		if r.kind == k {
			return r.tag
		}
	}
	return ""
}

// dispatch returns the highest-priority tag present in wrapper and its
// payload.
func dispatch(wrapper map[string]any) (tagRule, any, bool) {
	for _, r := range grammar {
		if payload, ok := wrapper[r.tag]; ok {
			return r, payload, true
		}
	}
	return tagRule{}, nil, false
}
