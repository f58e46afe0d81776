package firedoc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnrecognizedTag is reported for a wrapper that carries none of the
	// known tags. Decoding only fails with it in strict mode.
	ErrUnrecognizedTag = errors.New("unrecognized type tag")

	// ErrUnsupportedValueKind is returned when encoding a plain value that
	// has no tag, such as null.
	ErrUnsupportedValueKind = errors.New("unsupported value kind")

	// ErrMalformedInput is returned for structural violations of the tag
	// grammar.
	ErrMalformedInput = errors.New("malformed input")

	// ErrDepthExceeded is returned when a tree nests deeper than
	// Options.MaxDepth.
	ErrDepthExceeded = errors.New("maximum nesting depth exceeded")
)

// PathError records where in a tree a conversion failed.
type PathError struct {
	Path   Path
	Err    error
	Detail string
}

func (e *PathError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("firedoc: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("firedoc: %s: %v: %s", e.Path, e.Err, e.Detail)
}

func (e *PathError) Unwrap() error { return e.Err }

func pathErrorf(path Path, err error, format string, args ...any) *PathError {
	return &PathError{Path: path, Err: err, Detail: fmt.Sprintf(format, args...)}
}

// PathElem is one step of a Path: a field name or an array index.
type PathElem struct {
	Name  string
	Index int
	IsIdx bool
}

// Path locates a node from the document root. The zero Path is the root.
type Path []PathElem

// Field returns p extended by a field name. p is never modified.
func (p Path) Field(name string) Path {
	return append(p[:len(p):len(p)], PathElem{Name: name})
}

// Elem returns p extended by an array index. p is never modified.
func (p Path) Elem(i int) Path {
	return append(p[:len(p):len(p)], PathElem{Index: i, IsIdx: true})
}

// String renders the path as $.a.b[2]["odd key"].
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteByte('$')
	for _, e := range p {
		switch {
		case e.IsIdx:
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(e.Index))
			sb.WriteByte(']')
		case isBareName(e.Name):
			sb.WriteByte('.')
			sb.WriteString(e.Name)
		default:
			sb.WriteByte('[')
			sb.WriteString(strconv.Quote(e.Name))
			sb.WriteByte(']')
		}
	}
	return sb.String()
}

func isBareName(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// jsonKind names the JSON kind of a decoded value for error messages.
func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		if _, ok := toNumber(v); ok {
			return "number"
		}
		return fmt.Sprintf("%T", v)
	}
}
