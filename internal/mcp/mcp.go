// Package mcp merges MCP server definitions shipped by plugins into the
// configuration files of clients that consume them: Claude's .mcp.json
// and Codex's config.toml. Only servers the engine wrote on a previous
// run are ever removed; user-defined servers are left alone.
package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/EntityProcess/allagents-sub002/internal/logging"
	"github.com/EntityProcess/allagents-sub002/internal/model"
)

// FileName is the optional MCP manifest at a plugin root.
const FileName = ".mcp.json"

// ServerConfig describes one MCP server.
type ServerConfig struct {
	Command string            `json:"command" toml:"command"`
	Args    []string          `json:"args,omitempty" toml:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty" toml:"env,omitempty"`
}

// manifest mirrors the plugin-side .mcp.json schema.
type manifest struct {
	Servers map[string]ServerConfig `json:"mcpServers"`
}

// Collect gathers MCP servers from all resolved plugins. Later plugins
// win on name collisions; each shadowing is reported as a warning.
func Collect(plugins []model.ResolvedPlugin) (map[string]ServerConfig, []string) {
	servers := make(map[string]ServerConfig)
	var warnings []string

	for _, p := range plugins {
		path := filepath.Join(p.LocalPath, FileName)
		// #nosec G304 - path is inside a resolved plugin directory
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var m manifest
		if err := json.Unmarshal(data, &m); err != nil {
			warnings = append(warnings, fmt.Sprintf(
				"ignoring malformed %s in plugin %s: %v", FileName, p.Source, err))
			continue
		}
		for name, cfg := range m.Servers {
			if _, exists := servers[name]; exists {
				warnings = append(warnings, fmt.Sprintf(
					"MCP server %q redefined by plugin %s", name, p.Source))
			}
			servers[name] = cfg
		}
	}
	return servers, warnings
}

// ApplyResult reports what Apply wrote.
type ApplyResult struct {
	// WrittenPaths are the config files touched, relative to the scope root.
	WrittenPaths []string
	// ServerNames are the engine-managed server names now present.
	ServerNames []string
}

// Apply merges the collected servers into each consuming client's config
// under scopeRoot. previous lists the server names the engine managed on
// the last run; names no longer collected are pruned from the configs.
func Apply(scopeRoot string, clients []model.ClientID, servers map[string]ServerConfig, previous []string) (ApplyResult, error) {
	var result ApplyResult

	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)
	result.ServerNames = names

	stale := staleNames(previous, servers)
	if len(servers) == 0 && len(stale) == 0 {
		return result, nil
	}

	for _, client := range clients {
		switch client {
		case model.ClientClaude:
			rel := ".mcp.json"
			if err := mergeClaude(filepath.Join(scopeRoot, rel), servers, stale); err != nil {
				return result, err
			}
			result.WrittenPaths = append(result.WrittenPaths, rel)
		case model.ClientCodex:
			rel := filepath.Join(".codex", "config.toml")
			if err := mergeCodex(filepath.Join(scopeRoot, rel), servers, stale); err != nil {
				return result, err
			}
			result.WrittenPaths = append(result.WrittenPaths, rel)
		}
	}

	logging.Debug("merged MCP servers",
		logging.Count(len(servers)),
		logging.Path(scopeRoot),
	)
	return result, nil
}

// staleNames returns previously managed names absent from the new set.
func staleNames(previous []string, servers map[string]ServerConfig) []string {
	var stale []string
	for _, name := range previous {
		if _, ok := servers[name]; !ok {
			stale = append(stale, name)
		}
	}
	return stale
}

// mergeClaude updates the mcpServers block of a Claude .mcp.json,
// preserving every other key in the document.
func mergeClaude(path string, servers map[string]ServerConfig, stale []string) error {
	doc := make(map[string]any)
	// #nosec G304 - path is under the scope root
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("existing %q is not valid JSON: %w", path, err)
		}
	}

	block, _ := doc["mcpServers"].(map[string]any)
	if block == nil {
		block = make(map[string]any)
	}
	for _, name := range stale {
		delete(block, name)
	}
	for name, cfg := range servers {
		block[name] = cfg
	}
	doc["mcpServers"] = block

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create parent of %q: %w", path, err)
	}
	// #nosec G306 - client config must stay readable
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}

// mergeCodex updates the [mcp_servers.*] tables of a Codex config.toml,
// preserving unrelated tables.
func mergeCodex(path string, servers map[string]ServerConfig, stale []string) error {
	doc := make(map[string]any)
	if data, err := os.ReadFile(path); err == nil { // #nosec G304 - path is under the scope root
		if err := toml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("existing %q is not valid TOML: %w", path, err)
		}
	}

	block, _ := doc["mcp_servers"].(map[string]any)
	if block == nil {
		block = make(map[string]any)
	}
	for _, name := range stale {
		delete(block, name)
	}
	for name, cfg := range servers {
		block[name] = cfg
	}
	doc["mcp_servers"] = block

	buf, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create parent of %q: %w", path, err)
	}
	// #nosec G306 - client config must stay readable
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}
