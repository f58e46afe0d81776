package store

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Updater = (*Memory)(nil)
var _ Updater = (*Firestore)(nil)

func TestDocumentRef(t *testing.T) {
	ref := DocumentRef{Collection: "mycol", Document: "doc1"}
	assert.Equal(t, "mycol/doc1", ref.String())
	assert.NoError(t, ref.Validate())
	assert.Error(t, DocumentRef{Collection: "mycol"}.Validate())
	assert.Error(t, DocumentRef{Document: "doc1"}.Validate())
}

func TestMemory_UpdateField(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := fakeclock.NewFakeClock(now)
	m := NewMemory(clk)
	ref := DocumentRef{Collection: "mycol", Document: "doc1"}
	m.Put(ref, map[string]any{"name": "x"})

	ctx := context.Background()
	at, err := m.UpdateField(ctx, ref, "status", true)
	require.NoError(t, err)
	assert.Equal(t, now, at)

	clk.Increment(time.Second)
	at, err = m.UpdateField(ctx, ref, "status", false)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Second), at)

	rec, ok := m.Get(ref)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"name": "x", "status": false}, rec)
	assert.Equal(t, 2, m.Writes())
}

func TestMemory_Errors(t *testing.T) {
	m := NewMemory(nil)
	ctx := context.Background()

	_, err := m.UpdateField(ctx, DocumentRef{Collection: "c", Document: "missing"}, "status", true)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.UpdateField(ctx, DocumentRef{Collection: "c"}, "status", true)
	assert.Error(t, err)

	m.Put(DocumentRef{Collection: "c", Document: "d"}, nil)
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = m.UpdateField(cctx, DocumentRef{Collection: "c", Document: "d"}, "status", true)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, m.Writes())
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	m := NewMemory(nil)
	ref := DocumentRef{Collection: "c", Document: "d"}
	m.Put(ref, nil)

	rec, ok := m.Get(ref)
	require.True(t, ok)
	assert.Empty(t, rec)
	rec["status"] = true

	again, _ := m.Get(ref)
	assert.Empty(t, again)

	_, ok = m.Get(DocumentRef{Collection: "c", Document: "other"})
	assert.False(t, ok)
}

// TestFirestore_Emulator runs against a local emulator when one is
// configured.
func TestFirestore_Emulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	s, err := NewFirestore(ctx, "firedoc-test", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ref := DocumentRef{Collection: "mycol", Document: "doc-" + strconv.FormatInt(time.Now().UnixNano(), 36)}
	_, err = s.UpdateField(ctx, ref, "status", true)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.client.Collection(ref.Collection).Doc(ref.Document).Set(ctx, map[string]any{"name": "x"})
	require.NoError(t, err)
	at, err := s.UpdateField(ctx, ref, "status", true)
	require.NoError(t, err)
	assert.False(t, at.IsZero())

	snap, err := s.client.Collection(ref.Collection).Doc(ref.Document).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "x", "status": true}, snap.Data())
}
