package trigger

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Neumenon/firedoc/store"
)

// ErrMalformedEvent is returned for payloads that lack the members a
// document-change event must carry.
var ErrMalformedEvent = errors.New("trigger: malformed event")

// Metadata describes the delivery of one event. It is supplied by the
// runtime, not read from the payload.
type Metadata struct {
	EventID   string
	EventType string
	Resource  string
	Timestamp time.Time
}

// Event is the part of a document-change payload the handler uses.
type Event struct {
	// Fields is the raw tagged fields mapping of the new document.
	Fields json.RawMessage
	// Name is the full resource name of the document.
	Name string
	// DryRun is set when the payload asks for no write.
	DryRun bool
}

// ParseEvent extracts value.fields, value.name and the optional DryRun
// flag from a payload. DryRun may be a JSON bool or a "true"/"false"
// string.
func ParseEvent(data []byte) (*Event, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedEvent)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: payload is not an object", ErrMalformedEvent)
	}

	fields := root.Get("value.fields")
	if !fields.IsObject() {
		return nil, fmt.Errorf("%w: value.fields is missing or not an object", ErrMalformedEvent)
	}
	name := root.Get("value.name")
	if name.Type != gjson.String {
		return nil, fmt.Errorf("%w: value.name is missing or not a string", ErrMalformedEvent)
	}

	ev := &Event{
		Fields: json.RawMessage(fields.Raw),
		Name:   name.Str,
	}

	switch dry := root.Get("DryRun"); dry.Type {
	case gjson.Null:
		// absent or null
	case gjson.True, gjson.False:
		ev.DryRun = dry.Bool()
	case gjson.String:
		b, err := strconv.ParseBool(strings.TrimSpace(dry.Str))
		if err != nil {
			return nil, fmt.Errorf("%w: DryRun %q is not a boolean", ErrMalformedEvent, dry.Str)
		}
		ev.DryRun = b
	default:
		return nil, fmt.Errorf("%w: DryRun is %s, want boolean", ErrMalformedEvent, dry.Type)
	}
	return ev, nil
}

// ParseResourceName picks the collection and record ids out of a
// slash-separated resource name such as
// projects/p/databases/(default)/documents/mycol/doc1, where they sit at
// positions 5 and 6.
func ParseResourceName(name string, collectionIndex, documentIndex int) (store.DocumentRef, error) {
	parts := strings.Split(name, "/")
	if n := max(collectionIndex, documentIndex); n >= len(parts) {
		return store.DocumentRef{}, fmt.Errorf("%w: resource name %q has %d segments, want more than %d",
			ErrMalformedEvent, name, len(parts), n)
	}
	ref := store.DocumentRef{
		Collection: parts[collectionIndex],
		Document:   parts[documentIndex],
	}
	if err := ref.Validate(); err != nil {
		return store.DocumentRef{}, fmt.Errorf("%w: resource name %q: %w", ErrMalformedEvent, name, err)
	}
	return ref, nil
}
