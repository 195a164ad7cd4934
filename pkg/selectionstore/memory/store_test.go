package memory

import (
	"codeberg.org/miketth/picoclip/pkg/picoclip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestEmptyStore(t *testing.T) {
	s := NewSelectionStore()

	_, ok, err := s.LastSelection()
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.SelectedSlot("/media/CIRCUITPY")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetSelection(t *testing.T) {
	s := NewSelectionStore()

	require.NoError(t, s.SetSelection(picoclip.Selection{DrivePath: "/media/A", Slot: "2"}))
	require.NoError(t, s.SetSelection(picoclip.Selection{DrivePath: "/media/B", Slot: "4"}))

	last, ok, err := s.LastSelection()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/media/B", last.DrivePath)
	assert.Equal(t, "4", last.Slot)

	slot, ok, err := s.SelectedSlot("/media/A")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", slot)

	require.NoError(t, s.SetSelection(picoclip.Selection{DrivePath: "/media/A", Slot: "5"}))
	slot, _, err = s.SelectedSlot("/media/A")
	require.NoError(t, err)
	assert.Equal(t, "5", slot)

	last, _, err = s.LastSelection()
	require.NoError(t, err)
	assert.Equal(t, "/media/A", last.DrivePath)
}
