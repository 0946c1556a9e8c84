package model

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ClientID identifies a supported AI-assistant client.
type ClientID string

const (
	ClientClaude   ClientID = "claude"
	ClientCopilot  ClientID = "copilot"
	ClientCursor   ClientID = "cursor"
	ClientCodex    ClientID = "codex"
	ClientGemini   ClientID = "gemini"
	ClientWindsurf ClientID = "windsurf"
	ClientOpenCode ClientID = "opencode"
	ClientCline    ClientID = "cline"
)

// ClientCanonical is the reserved pseudo-client under which the engine
// tracks the canonical store's own paths in sync state. It is never a
// valid entry in a workspace's client list.
const ClientCanonical ClientID = "_canonical"

// CanonicalDir is the directory name of the shared canonical store,
// relative to a scope root.
const CanonicalDir = ".agents"

// ClientMapping describes where one client expects each content category,
// relative to a scope root. Empty category paths mean the client has no
// layout for that category and it is skipped. Universal clients read the
// canonical store directly and receive no links in symlink mode.
type ClientMapping struct {
	Client       ClientID
	Scope        Scope
	SkillsPath   string
	CommandsPath string
	HooksPath    string
	AgentsPath   string
	Universal    bool
}

// CategoryPath returns the client-relative directory for the category and
// whether the client supports it at all.
func (m ClientMapping) CategoryPath(c Category) (string, bool) {
	var p string
	switch c {
	case CategorySkill:
		p = m.SkillsPath
	case CategoryCommand:
		p = m.CommandsPath
	case CategoryHook:
		p = m.HooksPath
	case CategoryAgent:
		p = m.AgentsPath
	}
	return p, p != ""
}

// mappings holds one row per (client, scope) pair. The table is static;
// user-scope rows are relative to the home directory, project-scope rows
// to the workspace root.
var mappings = map[Scope]map[ClientID]ClientMapping{
	ScopeProject: {
		ClientClaude: {
			Client: ClientClaude, Scope: ScopeProject,
			SkillsPath:   ".claude/skills",
			CommandsPath: ".claude/commands",
			HooksPath:    ".claude/hooks",
			AgentsPath:   ".claude/agents",
		},
		ClientCopilot: {
			Client: ClientCopilot, Scope: ScopeProject,
			SkillsPath:   ".github/skills",
			CommandsPath: ".github/prompts",
			Universal:    true,
		},
		ClientCursor: {
			Client: ClientCursor, Scope: ScopeProject,
			SkillsPath:   ".cursor/skills",
			CommandsPath: ".cursor/commands",
		},
		ClientCodex: {
			Client: ClientCodex, Scope: ScopeProject,
			SkillsPath:   ".codex/skills",
			CommandsPath: ".codex/prompts",
		},
		ClientGemini: {
			Client: ClientGemini, Scope: ScopeProject,
			SkillsPath:   ".gemini/skills",
			CommandsPath: ".gemini/commands",
		},
		ClientWindsurf: {
			Client: ClientWindsurf, Scope: ScopeProject,
			SkillsPath:   ".windsurf/skills",
			CommandsPath: ".windsurf/workflows",
		},
		ClientOpenCode: {
			Client: ClientOpenCode, Scope: ScopeProject,
			SkillsPath:   ".opencode/skills",
			CommandsPath: ".opencode/command",
			AgentsPath:   ".opencode/agent",
		},
		ClientCline: {
			Client: ClientCline, Scope: ScopeProject,
			SkillsPath: ".cline/skills",
		},
	},
	ScopeUser: {
		ClientClaude: {
			Client: ClientClaude, Scope: ScopeUser,
			SkillsPath:   ".claude/skills",
			CommandsPath: ".claude/commands",
			HooksPath:    ".claude/hooks",
			AgentsPath:   ".claude/agents",
		},
		ClientCopilot: {
			Client: ClientCopilot, Scope: ScopeUser,
			SkillsPath:   ".copilot/skills",
			CommandsPath: ".copilot/prompts",
			Universal:    true,
		},
		ClientCursor: {
			Client: ClientCursor, Scope: ScopeUser,
			SkillsPath:   ".cursor/skills",
			CommandsPath: ".cursor/commands",
		},
		ClientCodex: {
			Client: ClientCodex, Scope: ScopeUser,
			SkillsPath:   ".codex/skills",
			CommandsPath: ".codex/prompts",
		},
		ClientGemini: {
			Client: ClientGemini, Scope: ScopeUser,
			SkillsPath:   ".gemini/skills",
			CommandsPath: ".gemini/commands",
		},
		ClientWindsurf: {
			Client: ClientWindsurf, Scope: ScopeUser,
			SkillsPath:   ".windsurf/skills",
			CommandsPath: ".windsurf/workflows",
		},
		ClientOpenCode: {
			Client: ClientOpenCode, Scope: ScopeUser,
			SkillsPath:   ".opencode/skills",
			CommandsPath: ".opencode/command",
			AgentsPath:   ".opencode/agent",
		},
		ClientCline: {
			Client: ClientCline, Scope: ScopeUser,
			SkillsPath: ".cline/skills",
		},
	},
}

// AllClients returns all supported client identifiers in sorted order.
func AllClients() []ClientID {
	clients := make([]ClientID, 0, len(mappings[ScopeProject]))
	for id := range mappings[ScopeProject] {
		clients = append(clients, id)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i] < clients[j] })
	return clients
}

// IsValid returns true if the client is recognized.
func (c ClientID) IsValid() bool {
	_, ok := mappings[ScopeProject][c]
	return ok
}

// String returns the string representation of the client id.
func (c ClientID) String() string {
	return string(c)
}

// ParseClient converts a string to a ClientID.
// Returns an error if the client is not recognized.
func ParseClient(s string) (ClientID, error) {
	id := ClientID(strings.ToLower(strings.TrimSpace(s)))
	if id.IsValid() {
		return id, nil
	}
	return "", fmt.Errorf("unsupported client %q", s)
}

// MappingFor returns the mapping row for the given client and scope.
func MappingFor(client ClientID, scope Scope) (ClientMapping, bool) {
	m, ok := mappings[scope][client]
	return m, ok
}

// CanonicalCategoryDir returns the canonical store directory for a
// category, relative to a scope root.
func CanonicalCategoryDir(c Category) string {
	return filepath.Join(CanonicalDir, c.DirName())
}
