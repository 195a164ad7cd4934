//go:build unix

package drives

import (
	"fmt"
	"golang.org/x/sys/unix"
)

func probeReady(mountPoint string) error {
	var st unix.Statfs_t
	if err := unix.Statfs(mountPoint, &st); err != nil {
		return fmt.Errorf("statfs: %w", err)
	}
	if err := unix.Access(mountPoint, unix.W_OK); err != nil {
		return fmt.Errorf("not writable: %w", err)
	}
	return nil
}
