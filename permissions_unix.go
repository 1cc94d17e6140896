//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris
// +build darwin dragonfly freebsd linux netbsd openbsd solaris

package lfs

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// fixPermissions normalizes the mode of the file at path to match the
// repository's core.sharedrepository setting, the same way the reference
// tool's FixPermissions does after a cache insert.
func fixPermissions(path string, sharedRepository string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: stat %s: %s", ErrCacheIO, path, err)
	}
	umask := unix.Umask(0)
	unix.Umask(umask)
	mode := sharedRepositoryMode(sharedRepository)
	if mode == 0 {
		mode = 0o777 &^ umask
	}
	if err := os.Chmod(path, os.FileMode(mode)); err != nil {
		return fmt.Errorf("%w: chmod %s: %s", ErrCacheIO, path, err)
	}
	return nil
}
