package store

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
)

// Memory is an in-process Updater. Records must be created with Put
// before they can be updated, matching the database's update semantics.
type Memory struct {
	clock clock.Clock

	mu      sync.Mutex
	records map[DocumentRef]map[string]any
	writes  int
}

// NewMemory returns an empty store. A nil clk uses the real clock.
func NewMemory(clk clock.Clock) *Memory {
	if clk == nil {
		clk = clock.NewClock()
	}
	return &Memory{
		clock:   clk,
		records: make(map[DocumentRef]map[string]any),
	}
}

// Put creates or replaces a record.
func (m *Memory) Put(ref DocumentRef, fields map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[ref] = maps.Clone(fields)
	if m.records[ref] == nil {
		m.records[ref] = make(map[string]any)
	}
}

// Get returns a copy of a record.
func (m *Memory) Get(ref DocumentRef) (map[string]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[ref]
	return maps.Clone(rec), ok
}

// Writes returns the number of successful UpdateField calls.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// UpdateField implements Updater.
func (m *Memory) UpdateField(ctx context.Context, ref DocumentRef, field string, value any) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	if err := ref.Validate(); err != nil {
		return time.Time{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[ref]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	rec[field] = value
	m.writes++
	return m.clock.Now().UTC(), nil
}
