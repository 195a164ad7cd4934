//go:build !unix

package drives

import (
	"fmt"
	"os"
)

func probeReady(mountPoint string) error {
	info, err := os.Stat(mountPoint)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", mountPoint)
	}
	return nil
}
