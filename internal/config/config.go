// Package config loads and validates the allagents workspace file.
// Parsing never panics on malformed input: Parse returns a tagged result
// carrying either the workspace or the list of validation issues.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/EntityProcess/allagents-sub002/internal/model"
)

// DefaultFileName is the workspace file looked up in the project root.
const DefaultFileName = "allagents.yaml"

// EnvWorkspaceFile overrides the workspace file path when set.
const EnvWorkspaceFile = "ALLAGENTS_WORKSPACE"

// Workspace is the parsed workspace configuration.
type Workspace struct {
	// Repositories lists marketplace repositories consulted when resolving
	// owner/repo plugin specs.
	Repositories []string `yaml:"repositories,omitempty"`

	// Plugins lists the plugin sources to sync.
	Plugins []model.PluginSource `yaml:"plugins"`

	// Clients lists the target clients.
	Clients []model.ClientID `yaml:"clients"`

	// SyncMode is "symlink" (default) or "copy".
	SyncMode model.SyncMode `yaml:"syncMode,omitempty"`

	// DisabledSkills holds "pluginName:skillName" keys for items excluded
	// from planning without being removed from their plugin.
	DisabledSkills []string `yaml:"disabledSkills,omitempty"`

	// VSCode configures optional VSCode workspace file generation.
	VSCode VSCodeConfig `yaml:"vscode,omitempty"`
}

// VSCodeConfig configures .code-workspace generation.
type VSCodeConfig struct {
	// Output is the path of the generated workspace file, relative to the
	// project root. Empty disables generation.
	Output string `yaml:"output,omitempty"`
}

// Issue describes one validation problem found while parsing.
type Issue struct {
	// Field names the offending field in dotted form (e.g. "clients[1]").
	Field string
	// Message is a human-readable description of the problem.
	Message string
}

// String renders the issue as "field: message".
func (i Issue) String() string {
	if i.Field == "" {
		return i.Message
	}
	return i.Field + ": " + i.Message
}

// ParseResult is the outcome of parsing a workspace document. Exactly one
// of Workspace (when OK) or Issues (when not) is meaningful.
type ParseResult struct {
	OK        bool
	Workspace *Workspace
	Issues    []Issue
}

// DisabledSet returns the disabled-item keys as a set.
func (w *Workspace) DisabledSet() map[string]bool {
	set := make(map[string]bool, len(w.DisabledSkills))
	for _, key := range w.DisabledSkills {
		set[key] = true
	}
	return set
}

// Parse decodes and validates raw workspace YAML.
func Parse(data []byte) ParseResult {
	var raw struct {
		Repositories   []string     `yaml:"repositories"`
		Plugins        []string     `yaml:"plugins"`
		Clients        []string     `yaml:"clients"`
		SyncMode       string       `yaml:"syncMode"`
		DisabledSkills []string     `yaml:"disabledSkills"`
		VSCode         VSCodeConfig `yaml:"vscode"`
	}

	if err := yaml.Unmarshal(data, &raw); err != nil {
		return ParseResult{Issues: []Issue{{Message: fmt.Sprintf("invalid YAML: %v", err)}}}
	}

	var issues []Issue

	ws := &Workspace{
		Repositories:   raw.Repositories,
		DisabledSkills: raw.DisabledSkills,
		VSCode:         raw.VSCode,
	}

	for i, p := range raw.Plugins {
		if p == "" {
			issues = append(issues, Issue{
				Field:   fmt.Sprintf("plugins[%d]", i),
				Message: "plugin source must not be empty",
			})
			continue
		}
		ws.Plugins = append(ws.Plugins, model.PluginSource(p))
	}

	seen := make(map[model.ClientID]bool)
	for i, c := range raw.Clients {
		id, err := model.ParseClient(c)
		if err != nil {
			issues = append(issues, Issue{
				Field:   fmt.Sprintf("clients[%d]", i),
				Message: err.Error(),
			})
			continue
		}
		if seen[id] {
			issues = append(issues, Issue{
				Field:   fmt.Sprintf("clients[%d]", i),
				Message: fmt.Sprintf("duplicate client %q", id),
			})
			continue
		}
		seen[id] = true
		ws.Clients = append(ws.Clients, id)
	}

	mode, err := model.ParseSyncMode(raw.SyncMode)
	if err != nil {
		issues = append(issues, Issue{Field: "syncMode", Message: err.Error()})
	} else {
		ws.SyncMode = mode
	}

	if len(ws.Clients) == 0 && len(issues) == 0 {
		issues = append(issues, Issue{Field: "clients", Message: "at least one client is required"})
	}

	if len(issues) > 0 {
		return ParseResult{Issues: issues}
	}
	return ParseResult{OK: true, Workspace: ws}
}

// FilePath returns the workspace file path for a project directory,
// honoring the ALLAGENTS_WORKSPACE override.
func FilePath(projectDir string) string {
	if v := os.Getenv(EnvWorkspaceFile); v != "" {
		return v
	}
	return filepath.Join(projectDir, DefaultFileName)
}

// Load reads and parses the workspace file for a project directory.
// A missing file is an error here: syncing without a workspace is
// meaningless, unlike state files which default to empty.
func Load(projectDir string) (ParseResult, error) {
	path := FilePath(projectDir)
	// #nosec G304 - path comes from the user's own project directory
	data, err := os.ReadFile(path)
	if err != nil {
		return ParseResult{}, fmt.Errorf("failed to read workspace file %q: %w", path, err)
	}
	return Parse(data), nil
}
