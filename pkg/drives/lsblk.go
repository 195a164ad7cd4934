// Package drives finds removable volumes the slot files can live on.
package drives

import (
	"bytes"
	"codeberg.org/miketth/picoclip/pkg/picoclip"
	"fmt"
	"go.uber.org/zap"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const NoLabel = "(no label)"

var lsblkColumns = []string{"NAME", "LABEL", "MOUNTPOINT", "TYPE", "RM", "HOTPLUG"}

// Locator lists removable, mounted and ready volumes using lsblk.
type Locator struct {
	// Path of the lsblk binary, looked up in $PATH when empty.
	Path string

	log   *zap.SugaredLogger
	ready func(mountPoint string) error
}

func NewLocator(log *zap.SugaredLogger) *Locator {
	return &Locator{log: log, ready: probeReady}
}

func (l *Locator) runCommand(args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	path := l.Path
	if path == "" {
		path = "lsblk"
	}

	cmd := exec.Command(path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("lsblk: %w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}

// List never fails: if enumeration breaks the result is simply empty.
func (l *Locator) List() []picoclip.Drive {
	out, err := l.runCommand("--json", "--list", "--output", strings.Join(lsblkColumns, ","))
	if err != nil {
		l.log.Warnw("could not enumerate drives", "error", err)
		return nil
	}

	devs, err := parseBlockDevices(out)
	if err != nil {
		l.log.Warnw("could not parse lsblk output", "error", err)
		return nil
	}

	drives := make([]picoclip.Drive, 0, len(devs))
	for _, d := range devs {
		if !d.removable() || d.MountPoint == "" {
			continue
		}
		if err := l.ready(d.MountPoint); err != nil {
			l.log.Debugw("skipping drive that is not ready", "device", d.Name, "mountpoint", d.MountPoint, "error", err)
			continue
		}
		drives = append(drives, d.ToDrive())
	}

	return drives
}

func (l *Locator) IsValid(d *picoclip.Drive) bool {
	return IsValid(d)
}

func IsValid(d *picoclip.Drive) bool {
	return picoclip.IsValidDrive(d)
}

// FromPath builds a drive for a mount point given by hand. It is valid when
// the path is an existing directory.
func FromPath(path string) picoclip.Drive {
	if path == "" {
		return picoclip.NoDrive()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return picoclip.NoDrive()
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return picoclip.NoDrive()
	}

	label := filepath.Base(abs)
	if label == string(filepath.Separator) || label == "." {
		label = NoLabel
	}

	return picoclip.Drive{Label: label, Path: abs, Valid: true}
}

// Find returns the drive with the given path from a listing.
func Find(drives []picoclip.Drive, path string) (picoclip.Drive, bool) {
	for _, d := range drives {
		if d.Path == path {
			return d, true
		}
	}
	return picoclip.Drive{}, false
}
