package sync

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/EntityProcess/allagents-sub002/internal/logging"
	"github.com/EntityProcess/allagents-sub002/internal/model"
)

// StateVersion is the only state schema this engine reads or writes.
const StateVersion = 1

// stateFileName lives inside the canonical store directory of a scope.
const stateFileName = "sync-state.json"

// State is the persisted record of every path the engine created on its
// previous run. Paths missing from the record are never purged: omission
// means "not ours".
type State struct {
	Version  int       `json:"version"`
	LastSync time.Time `json:"lastSync"`

	// Files maps each client (plus the _canonical pseudo-client) to the
	// scope-relative paths created for it.
	Files map[model.ClientID][]string `json:"files"`

	// MCPServers tracks server names the engine merged into client MCP
	// configuration, per scope.
	MCPServers map[model.Scope][]string `json:"mcpServers,omitempty"`
}

// EmptyState returns a state with no tracked paths.
func EmptyState() *State {
	return &State{
		Version: StateVersion,
		Files:   make(map[model.ClientID][]string),
	}
}

// StatePath returns the state file location for a scope root.
func StatePath(scopeRoot string) string {
	return filepath.Join(scopeRoot, model.CanonicalDir, stateFileName)
}

// LoadState reads the previous run's state. Every failure mode — missing
// file, unreadable file, broken JSON, wrong schema version — yields an
// empty state: absence of valid state must never block a sync.
func LoadState(scopeRoot string) *State {
	path := StatePath(scopeRoot)
	// #nosec G304 - the state file lives under our own canonical store
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("unreadable sync state, starting fresh",
				logging.Path(path),
				logging.Err(err),
			)
		}
		return EmptyState()
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		logging.Warn("corrupt sync state, starting fresh",
			logging.Path(path),
			logging.Err(err),
		)
		return EmptyState()
	}
	if state.Version != StateVersion {
		logging.Warn("sync state schema mismatch, starting fresh",
			logging.Path(path),
			logging.Count(state.Version),
		)
		return EmptyState()
	}
	if state.Files == nil {
		state.Files = make(map[model.ClientID][]string)
	}
	return &state
}

// SaveState overwrites the state file with a complete new snapshot.
// State is a full replacement, never a merge.
func SaveState(scopeRoot string, files map[model.ClientID][]string, mcpServers map[model.Scope][]string) error {
	state := State{
		Version:    StateVersion,
		LastSync:   time.Now().UTC(),
		Files:      files,
		MCPServers: mcpServers,
	}
	for _, paths := range state.Files {
		sort.Strings(paths)
	}

	data, err := json.MarshalIndent(&state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sync state: %w", err)
	}

	path := StatePath(scopeRoot)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	// #nosec G306 - state file is plain metadata
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write sync state %q: %w", path, err)
	}

	logging.Debug("saved sync state",
		logging.Path(path),
		logging.Count(len(files)),
	)
	return nil
}
