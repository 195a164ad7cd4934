package memory

import (
	"codeberg.org/miketth/picoclip/pkg/picoclip"
	"sync"
)

type SelectionStore struct {
	mu         sync.Mutex
	selections map[string]picoclip.Selection
	last       string
}

func NewSelectionStore() *SelectionStore {
	return &SelectionStore{
		selections: make(map[string]picoclip.Selection),
	}
}

func (s *SelectionStore) LastSelection() (picoclip.Selection, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, ok := s.selections[s.last]
	return sel, ok, nil
}

func (s *SelectionStore) SelectedSlot(drivePath string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, ok := s.selections[drivePath]
	if !ok {
		return "", false, nil
	}
	return sel.Slot, true, nil
}

func (s *SelectionStore) SetSelection(sel picoclip.Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selections[sel.DrivePath] = sel
	s.last = sel.DrivePath
	return nil
}
