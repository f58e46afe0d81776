// Package store writes single fields on database records.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when the record to update does not exist.
var ErrNotFound = errors.New("store: record not found")

// DocumentRef names one record inside a collection.
type DocumentRef struct {
	Collection string
	Document   string
}

// String returns the ref as "collection/document".
func (r DocumentRef) String() string {
	return r.Collection + "/" + r.Document
}

// Validate rejects refs with an empty part.
func (r DocumentRef) Validate() error {
	if r.Collection == "" || r.Document == "" {
		return fmt.Errorf("store: incomplete document ref %q", r.String())
	}
	return nil
}

// Updater sets one field on an existing record and reports when the write
// was applied.
type Updater interface {
	UpdateField(ctx context.Context, ref DocumentRef, field string, value any) (time.Time, error)
}
