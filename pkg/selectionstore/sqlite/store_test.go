package sqlite

import (
	"codeberg.org/miketth/picoclip/pkg/picoclip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T, filename string) *SelectionStore {
	t.Helper()
	s, err := NewSelectionStore(filename, zap.NewNop().Sugar())
	require.NoError(t, err)
	return s
}

func TestEmptyDatabase(t *testing.T) {
	s := newTestStore(t, filepath.Join(t.TempDir(), "selections.db"))
	t.Cleanup(func() { s.Close() })

	_, ok, err := s.LastSelection()
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.SelectedSlot("/media/A")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpsertAndReopen(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "selections.db")
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	s := newTestStore(t, filename)
	require.NoError(t, s.SetSelection(picoclip.Selection{DrivePath: "/media/A", Slot: "2", UpdatedAt: base}))
	require.NoError(t, s.SetSelection(picoclip.Selection{DrivePath: "/media/B", Slot: "4", UpdatedAt: base.Add(time.Second)}))
	require.NoError(t, s.SetSelection(picoclip.Selection{DrivePath: "/media/A", Slot: "5", UpdatedAt: base.Add(2 * time.Second)}))
	require.NoError(t, s.Close())

	// migrations are idempotent on an existing database
	reopened := newTestStore(t, filename)
	t.Cleanup(func() { reopened.Close() })

	last, ok, err := reopened.LastSelection()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/media/A", last.DrivePath)
	assert.Equal(t, "5", last.Slot)
	assert.True(t, base.Add(2*time.Second).Equal(last.UpdatedAt))

	slot, ok, err := reopened.SelectedSlot("/media/B")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "4", slot)
}
