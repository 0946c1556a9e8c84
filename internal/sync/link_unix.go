//go:build !windows

package sync

import "os"

// newLinkBackend returns the POSIX backend: plain symlinks.
func newLinkBackend() func(target, linkPath string) bool {
	return func(target, linkPath string) bool {
		return os.Symlink(target, linkPath) == nil
	}
}
