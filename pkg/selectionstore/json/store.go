package json

import (
	"codeberg.org/miketth/picoclip/pkg/picoclip"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type state struct {
	Last       string                        `json:"last"`
	Selections map[string]picoclip.Selection `json:"selections"`
}

// SelectionStore keeps selections in memory and writes them back to its
// file on Flush and Close.
type SelectionStore struct {
	state state
	file  *os.File
	lock  sync.Mutex
	dirty bool
}

func NewSelectionStore(filename string) (*SelectionStore, error) {
	fileExists := true
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		fileExists = false
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	store := &SelectionStore{
		state: state{Selections: make(map[string]picoclip.Selection)},
		file:  file,
	}

	if fileExists && info.Size() > 0 {
		if err := store.load(); err != nil {
			file.Close()
			return nil, fmt.Errorf("load: %w", err)
		}
	}

	return store, nil
}

func (s *SelectionStore) Close() error {
	saveErr := s.Flush()
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	return saveErr
}

func (s *SelectionStore) load() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	_, err := s.file.Seek(0, 0)
	if err != nil {
		return fmt.Errorf("seek to start of file: %w", err)
	}

	dec := json.NewDecoder(s.file)
	if err := dec.Decode(&s.state); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	if s.state.Selections == nil {
		s.state.Selections = make(map[string]picoclip.Selection)
	}

	return nil
}

func (s *SelectionStore) Flush() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.dirty {
		return nil
	}

	_, err := s.file.Seek(0, 0)
	if err != nil {
		return fmt.Errorf("seek to start of file: %w", err)
	}

	err = s.file.Truncate(0)
	if err != nil {
		return fmt.Errorf("truncate file: %w", err)
	}

	enc := json.NewEncoder(s.file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.state); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	s.dirty = false

	return nil
}

func (s *SelectionStore) LastSelection() (picoclip.Selection, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	sel, ok := s.state.Selections[s.state.Last]
	return sel, ok, nil
}

func (s *SelectionStore) SelectedSlot(drivePath string) (string, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	sel, ok := s.state.Selections[drivePath]
	if !ok {
		return "", false, nil
	}
	return sel.Slot, true, nil
}

func (s *SelectionStore) SetSelection(sel picoclip.Selection) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.state.Selections[sel.DrivePath] = sel
	s.state.Last = sel.DrivePath
	s.dirty = true
	return nil
}
