// Package provision copies the device runtime (CircuitPython program, its
// settings, keymaps and HID library) onto a drive.
package provision

import (
	"errors"
	"fmt"
	"github.com/adrg/xdg"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// Files copied from the top of the payload.
var Files = []string{
	"code.py",
	"config.json",
	"jis_keymap.json",
	"function_keys.json",
}

// LibDir is copied recursively.
const LibDir = "lib"

// DefaultPayloadDir is where the payload is looked up when none is given.
func DefaultPayloadDir() string {
	return filepath.Join(xdg.DataHome, "picoclip", "payload")
}

type Provisioner struct {
	source fs.FS
	log    *zap.SugaredLogger
}

func New(source fs.FS, log *zap.SugaredLogger) *Provisioner {
	return &Provisioner{source: source, log: log}
}

func FromDir(dir string, log *zap.SugaredLogger) *Provisioner {
	return New(os.DirFS(dir), log)
}

// Provision overwrites the device files on the drive. Payload entries that
// do not exist are skipped; the bool reports whether anything was written.
func (p *Provisioner) Provision(drivePath string) (bool, error) {
	info, err := os.Stat(drivePath)
	if err != nil {
		return false, fmt.Errorf("stat drive: %w", err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("drive %s is not a directory", drivePath)
	}

	written := 0
	var errs error

	for _, name := range Files {
		err := p.copyFile(name, drivePath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			p.log.Warnw("payload file missing, skipping", "file", name)
		case err != nil:
			errs = multierr.Append(errs, fmt.Errorf("copy %s: %w", name, err))
		default:
			written++
		}
	}

	n, err := p.copyTree(LibDir, drivePath)
	written += n
	switch {
	case errors.Is(err, fs.ErrNotExist):
		p.log.Warnw("payload library missing, skipping", "dir", LibDir)
	case err != nil:
		errs = multierr.Append(errs, fmt.Errorf("copy %s: %w", LibDir, err))
	}

	p.log.Infow("provisioned drive", "drive", drivePath, "files", written)
	return written > 0, errs
}

func (p *Provisioner) copyFile(name, drivePath string) error {
	src, err := p.source.Open(name)
	if err != nil {
		return err
	}
	defer src.Close()

	dst := filepath.Join(drivePath, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("write file: %w", err)
	}

	return out.Close()
}

func (p *Provisioner) copyTree(root, drivePath string) (int, error) {
	if _, err := fs.Stat(p.source, root); err != nil {
		return 0, err
	}

	written := 0
	err := fs.WalkDir(p.source, root, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(filepath.Join(drivePath, filepath.FromSlash(name)), 0755)
		}
		if err := p.copyFile(path.Clean(name), drivePath); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		written++
		return nil
	})

	return written, err
}
