// Package driveconfig reads and writes the settings document the device
// firmware loads from config.json on the drive.
//
// The file is the only copy of the settings: every call reads it again, and
// writes change one key while leaving the rest of the document alone.
package driveconfig

import (
	"bytes"
	"codeberg.org/miketth/picoclip/pkg/picoclip"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"os"
	"path/filepath"
	"sync"
)

const (
	FileName   = "config.json"
	backupName = FileName + ".bak"
)

var errNoDocument = errors.New("no config document")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type entry struct {
	key   string
	value Value
}

// defaults in the order they are written to a fresh document
func defaults() []entry {
	typingDelay, _ := FloatValue(picoclip.DefaultTypingDelay)
	return []entry{
		{picoclip.KeyStartupDelay, IntValue(picoclip.DefaultStartupDelay)},
		{picoclip.KeyTypingDelay, typingDelay},
		{picoclip.KeyAddFinalEnter, BoolValue(picoclip.DefaultAddFinalEnter)},
		{picoclip.KeyEnableModifierKeys, BoolValue(picoclip.DefaultEnableModifierKeys)},
		{picoclip.KeyJapaneseKeyboard, BoolValue(picoclip.DefaultJapaneseKeyboard)},
	}
}

type Store struct {
	log *zap.SugaredLogger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore(log *zap.SugaredLogger) *Store {
	return &Store{
		log:   log,
		locks: make(map[string]*sync.Mutex),
	}
}

func Path(drivePath string) string {
	return filepath.Join(drivePath, FileName)
}

// lock serialises read-modify-write cycles on one drive's config file.
func (s *Store) lock(drivePath string) func() {
	s.mu.Lock()
	l, ok := s.locks[drivePath]
	if !ok {
		l = &sync.Mutex{}
		s.locks[drivePath] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *Store) load(drivePath string) (*Document, error) {
	data, err := os.ReadFile(Path(drivePath))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, errNoDocument
	case err != nil:
		return nil, fmt.Errorf("read config: %w: %w", picoclip.ErrConfigIO, err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errNoDocument
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w: %w", picoclip.ErrConfigIO, err)
	}

	return doc, nil
}

func (s *Store) save(drivePath string, doc *Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("marshal config: %w: %w", picoclip.ErrConfigIO, err)
	}

	if err := writeAtomic(Path(drivePath), data); err != nil {
		return fmt.Errorf("write config: %w: %w", picoclip.ErrConfigIO, err)
	}

	return nil
}

// writeAtomic writes to a temp file next to path, then renames it over path.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func defaultDocument() *Document {
	doc := NewDocument()
	for _, e := range defaults() {
		doc.Set(e.key, e.value)
	}
	return doc
}

// EnsureDefaults makes sure all recognised keys are present on the drive.
// A missing file gets the full default document; an existing one only gets
// the missing keys and is left untouched when nothing is missing. A file
// that cannot be read or parsed is copied to config.json.bak and replaced
// by the defaults.
func (s *Store) EnsureDefaults(drivePath string) error {
	if drivePath == "" {
		return fmt.Errorf("ensure defaults: %w", picoclip.ErrInvalidDrive)
	}

	unlock := s.lock(drivePath)
	defer unlock()

	doc, err := s.load(drivePath)
	switch {
	case errors.Is(err, errNoDocument):
		s.log.Infow("writing default config", "drive", drivePath)
		return s.save(drivePath, defaultDocument())
	case err != nil:
		s.log.Warnw("config unusable, restoring defaults", "drive", drivePath, "error", err)
		if err := s.backup(drivePath); err != nil {
			s.log.Warnw("could not back up config", "drive", drivePath, "error", err)
		}
		return s.save(drivePath, defaultDocument())
	}

	var added []string
	for _, e := range defaults() {
		if !doc.Has(e.key) {
			doc.Set(e.key, e.value)
			added = append(added, e.key)
		}
	}
	if len(added) == 0 {
		return nil
	}

	s.log.Infow("adding missing config keys", "drive", drivePath, "keys", added)
	return s.save(drivePath, doc)
}

func (s *Store) backup(drivePath string) error {
	data, err := os.ReadFile(Path(drivePath))
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(drivePath, backupName), data, 0644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}

	return nil
}

func (s *Store) value(drivePath, key string) (Value, bool) {
	if drivePath == "" {
		return Value{}, false
	}

	unlock := s.lock(drivePath)
	defer unlock()

	doc, err := s.load(drivePath)
	if err != nil {
		if !errors.Is(err, errNoDocument) {
			s.log.Debugw("config read failed", "drive", drivePath, "key", key, "error", err)
		}
		return Value{}, false
	}

	return doc.Get(key)
}

func (s *Store) ReadInt(drivePath, key string, def int) int {
	v, ok := s.value(drivePath, key)
	if !ok {
		return def
	}
	i, ok := v.Int()
	if !ok {
		s.log.Debugw("config value is not an int", "key", key, "kind", v.Kind())
		return def
	}
	return i
}

func (s *Store) ReadFloat(drivePath, key string, def float64) float64 {
	v, ok := s.value(drivePath, key)
	if !ok {
		return def
	}
	f, ok := v.Float()
	if !ok {
		s.log.Debugw("config value is not a number", "key", key, "kind", v.Kind())
		return def
	}
	return f
}

func (s *Store) ReadBool(drivePath, key string, def bool) bool {
	v, ok := s.value(drivePath, key)
	if !ok {
		return def
	}
	b, ok := v.Bool()
	if !ok {
		s.log.Debugw("config value is not a bool", "key", key, "kind", v.Kind())
		return def
	}
	return b
}

// Settings reads every recognised key in one pass over the file.
func (s *Store) Settings(drivePath string) picoclip.Settings {
	out := picoclip.DefaultSettings()
	if drivePath == "" {
		return out
	}

	unlock := s.lock(drivePath)
	doc, err := s.load(drivePath)
	unlock()
	if err != nil {
		if !errors.Is(err, errNoDocument) {
			s.log.Debugw("config read failed", "drive", drivePath, "error", err)
		}
		return out
	}

	if v, ok := doc.Get(picoclip.KeyStartupDelay); ok {
		if i, ok := v.Int(); ok {
			out.StartupDelay = i
		}
	}
	if v, ok := doc.Get(picoclip.KeyTypingDelay); ok {
		if f, ok := v.Float(); ok {
			out.TypingDelay = f
		}
	}
	readBool := func(key string, dst *bool) {
		if v, ok := doc.Get(key); ok {
			if b, ok := v.Bool(); ok {
				*dst = b
			}
		}
	}
	readBool(picoclip.KeyAddFinalEnter, &out.AddFinalEnter)
	readBool(picoclip.KeyEnableModifierKeys, &out.EnableModifierKeys)
	readBool(picoclip.KeyJapaneseKeyboard, &out.JapaneseKeyboard)

	return out
}

func (s *Store) write(drivePath, key string, value Value) error {
	if drivePath == "" {
		return fmt.Errorf("write %s: %w", key, picoclip.ErrInvalidDrive)
	}

	unlock := s.lock(drivePath)
	defer unlock()

	doc, err := s.load(drivePath)
	switch {
	case errors.Is(err, errNoDocument):
		doc = NewDocument()
	case err != nil:
		// refuse to replace a document we could not read
		return fmt.Errorf("write %s: %w", key, err)
	}

	doc.Set(key, value)
	if err := s.save(drivePath, doc); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	s.log.Debugw("wrote config key", "drive", drivePath, "key", key, "value", value.Raw())
	return nil
}

func (s *Store) WriteInt(drivePath, key string, value int) error {
	return s.write(drivePath, key, IntValue(value))
}

func (s *Store) WriteFloat(drivePath, key string, value float64) error {
	v, err := FloatValue(value)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return s.write(drivePath, key, v)
}

func (s *Store) WriteBool(drivePath, key string, value bool) error {
	return s.write(drivePath, key, BoolValue(value))
}
