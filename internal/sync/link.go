package sync

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/EntityProcess/allagents-sub002/internal/logging"
)

// createLink points linkPath at target using the backend selected at
// startup: symlinks on POSIX, symlinks with a junction fallback on
// Windows. Returns false when no link could be created; callers then
// fall back to a physical copy. Nothing outside this file branches on
// the platform.
var createLink = newLinkBackend()

// relativeLinkTarget computes the link target as a path relative to the
// link's real parent directory. The parent is symlink-resolved first so
// the relative hop count stays correct even when an ancestor directory
// is itself a link.
func relativeLinkTarget(canonical, linkPath string) (string, error) {
	parent := filepath.Dir(linkPath)
	realParent, err := filepath.EvalSymlinks(parent)
	if err != nil {
		realParent = parent
	}
	rel, err := filepath.Rel(realParent, canonical)
	if err != nil {
		return "", fmt.Errorf("failed to relativize %q against %q: %w", canonical, realParent, err)
	}
	return rel, nil
}

// linkResolvesTo reports whether linkPath is a link that already resolves
// to canonical. Used to leave correct links untouched across runs.
func linkResolvesTo(linkPath, canonical string) bool {
	info, err := os.Lstat(linkPath)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return false
	}

	resolved, err := filepath.EvalSymlinks(linkPath)
	if err != nil {
		return false
	}
	wantResolved, err := filepath.EvalSymlinks(canonical)
	if err != nil {
		return false
	}
	return resolved == wantResolved
}

// ensureLink makes linkPath a link resolving to canonical. An already
// correct link is left in place. A wrong link or a non-link occupant is
// removed and replaced. The bool result mirrors createLink: false means
// the caller must copy instead.
func ensureLink(canonical, linkPath string) (bool, error) {
	if linkResolvesTo(linkPath, canonical) {
		logging.Debug("link already correct", logging.Path(linkPath))
		return true, nil
	}

	if err := removeExisting(linkPath); err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(linkPath), 0o750); err != nil {
		return false, fmt.Errorf("failed to create parent of %q: %w", linkPath, err)
	}

	target, err := relativeLinkTarget(canonical, linkPath)
	if err != nil {
		return false, err
	}

	if !createLink(target, linkPath) {
		logging.Debug("link creation unavailable, caller should copy",
			logging.Path(linkPath),
		)
		return false, nil
	}
	return true, nil
}
