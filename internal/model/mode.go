package model

import (
	"fmt"
	"strings"
)

// SyncMode selects how content reaches client directories.
type SyncMode string

const (
	// ModeSymlink materializes one canonical copy per item and links each
	// non-universal client at it. This is the default.
	ModeSymlink SyncMode = "symlink"

	// ModeCopy gives every client an independent physical copy and uses no
	// canonical store.
	ModeCopy SyncMode = "copy"
)

// IsValid returns true if the mode is recognized.
func (m SyncMode) IsValid() bool {
	return m == ModeSymlink || m == ModeCopy
}

// String returns the string representation of the mode.
func (m SyncMode) String() string {
	return string(m)
}

// ParseSyncMode converts a string to a SyncMode.
// An empty string yields the default (symlink).
func ParseSyncMode(s string) (SyncMode, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == "" {
		return ModeSymlink, nil
	}
	m := SyncMode(normalized)
	if m.IsValid() {
		return m, nil
	}
	return "", fmt.Errorf("unknown sync mode %q (valid: symlink, copy)", s)
}
