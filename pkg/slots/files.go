package slots

import (
	"bytes"
	"errors"
	"fmt"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"os"
	"path/filepath"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type ReadStatus int

const (
	Found ReadStatus = iota
	NotFound
	ReadFailed
)

// ReadResult keeps "no file yet" apart from a real I/O error.
type ReadResult struct {
	Status  ReadStatus
	Content string
	Err     error
}

type Files struct {
	log *zap.SugaredLogger
}

func NewFiles(log *zap.SugaredLogger) *Files {
	return &Files{log: log}
}

func FilePath(drivePath, id string) string {
	return filepath.Join(drivePath, "slot"+id+".txt")
}

func (f *Files) Read(drivePath, id string) ReadResult {
	if drivePath == "" || id == "" {
		return ReadResult{Status: ReadFailed, Err: errors.New("empty drive path or slot id")}
	}

	data, err := os.ReadFile(FilePath(drivePath, id))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return ReadResult{Status: NotFound}
	case err != nil:
		return ReadResult{Status: ReadFailed, Err: fmt.Errorf("read slot file: %w", err)}
	}

	return ReadResult{Status: Found, Content: string(bytes.TrimPrefix(data, utf8BOM))}
}

// Write replaces the whole slot file with content, UTF-8 without BOM.
func (f *Files) Write(drivePath, id, content string) error {
	if drivePath == "" || id == "" {
		return errors.New("empty drive path or slot id")
	}

	if err := os.WriteFile(FilePath(drivePath, id), []byte(content), 0644); err != nil {
		return fmt.Errorf("write slot file: %w", err)
	}

	return nil
}

// DeleteAll leaves a zero-length file for every id. A failing file does not
// stop the others; all failures are returned together.
func (f *Files) DeleteAll(drivePath string, ids []string) error {
	if drivePath == "" {
		return errors.New("empty drive path")
	}

	var errs error
	for _, id := range ids {
		path := FilePath(drivePath, id)
		if err := resetFile(path); err != nil {
			f.log.Warnw("could not reset slot file", "path", path, "error", err)
			errs = multierr.Append(errs, fmt.Errorf("slot %s: %w", id, err))
		}
	}

	return errs
}

func resetFile(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}

	return file.Close()
}
