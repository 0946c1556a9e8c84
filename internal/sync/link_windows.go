//go:build windows

package sync

import (
	"os"
	"os/exec"
	"path/filepath"
)

// newLinkBackend returns the Windows backend. Symlinks need elevation or
// developer mode, so a failed symlink falls back to a directory junction,
// which any user may create. Junctions require an absolute target.
func newLinkBackend() func(target, linkPath string) bool {
	return func(target, linkPath string) bool {
		if os.Symlink(target, linkPath) == nil {
			return true
		}

		abs := target
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(filepath.Dir(linkPath), target)
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			// Junctions only work for directories.
			return false
		}

		// #nosec G204 - both paths are under the scope root
		cmd := exec.Command("cmd", "/c", "mklink", "/J", linkPath, abs)
		return cmd.Run() == nil
	}
}
