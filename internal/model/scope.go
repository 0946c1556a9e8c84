package model

import (
	"fmt"
	"os"
	"strings"
)

// Scope represents where synced content lands: inside the workspace
// (project scope) or in the user's home directory (user scope).
type Scope string

const (
	// ScopeProject targets client directories under the workspace root.
	ScopeProject Scope = "project"

	// ScopeUser targets client directories under the user's home directory.
	ScopeUser Scope = "user"
)

// AllScopes returns all supported scopes.
func AllScopes() []Scope {
	return []Scope{ScopeProject, ScopeUser}
}

// IsValid returns true if the scope is recognized.
func (s Scope) IsValid() bool {
	return s == ScopeProject || s == ScopeUser
}

// String returns the string representation of the scope.
func (s Scope) String() string {
	return string(s)
}

// ParseScope converts a string to a Scope type.
// Returns an error if the scope is not recognized.
func ParseScope(s string) (Scope, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))

	scope := Scope(normalized)
	if scope.IsValid() {
		return scope, nil
	}

	switch normalized {
	case "repo", "repository", "local", "workspace":
		return ScopeProject, nil
	case "global", "home":
		return ScopeUser, nil
	default:
		return "", fmt.Errorf("unknown scope %q (valid: project, user)", s)
	}
}

// Root returns the absolute root directory for the scope. The workspace
// directory is the project root; user scope resolves to the home directory.
func (s Scope) Root(workspaceDir string) (string, error) {
	switch s {
	case ScopeProject:
		return workspaceDir, nil
	case ScopeUser:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return home, nil
	default:
		return "", fmt.Errorf("unknown scope %q", s)
	}
}
