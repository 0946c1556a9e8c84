package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/EntityProcess/allagents-sub002/internal/model"
)

func TestParse_Valid(t *testing.T) {
	doc := `
plugins:
  - ./plugins/local-tools
  - acme/shared-skills
clients:
  - claude
  - copilot
syncMode: copy
disabledSkills:
  - local-tools:scratch
vscode:
  output: tools.code-workspace
`
	result := Parse([]byte(doc))
	if !result.OK {
		t.Fatalf("Parse() not OK, issues: %v", result.Issues)
	}

	ws := result.Workspace
	if len(ws.Plugins) != 2 {
		t.Errorf("plugins = %d, want 2", len(ws.Plugins))
	}
	if ws.Plugins[1] != model.PluginSource("acme/shared-skills") {
		t.Errorf("plugins[1] = %q", ws.Plugins[1])
	}
	if len(ws.Clients) != 2 || ws.Clients[0] != model.ClientClaude {
		t.Errorf("clients = %v", ws.Clients)
	}
	if ws.SyncMode != model.ModeCopy {
		t.Errorf("syncMode = %q, want copy", ws.SyncMode)
	}
	if !ws.DisabledSet()["local-tools:scratch"] {
		t.Error("disabled set missing local-tools:scratch")
	}
	if ws.VSCode.Output != "tools.code-workspace" {
		t.Errorf("vscode.output = %q", ws.VSCode.Output)
	}
}

func TestParse_DefaultSyncMode(t *testing.T) {
	result := Parse([]byte("clients: [claude]\nplugins: [./p]\n"))
	if !result.OK {
		t.Fatalf("Parse() not OK, issues: %v", result.Issues)
	}
	if result.Workspace.SyncMode != model.ModeSymlink {
		t.Errorf("default syncMode = %q, want symlink", result.Workspace.SyncMode)
	}
}

func TestParse_Issues(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"unknown client", "clients: [emacs]\n", "clients[0]"},
		{"duplicate client", "clients: [claude, claude]\n", "clients[1]"},
		{"bad sync mode", "clients: [claude]\nsyncMode: hardlink\n", "syncMode"},
		{"empty plugin", "clients: [claude]\nplugins: ['']\n", "plugins[0]"},
		{"no clients", "plugins: [./p]\n", "clients"},
		{"broken yaml", "clients: [claude", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse([]byte(tt.doc))
			if result.OK {
				t.Fatal("Parse() OK, want issues")
			}
			if len(result.Issues) == 0 {
				t.Fatal("no issues reported")
			}
			if result.Issues[0].Field != tt.field {
				t.Errorf("issue field = %q, want %q", result.Issues[0].Field, tt.field)
			}
		})
	}
}

func TestIssue_String(t *testing.T) {
	i := Issue{Field: "syncMode", Message: "bad"}
	if got := i.String(); got != "syncMode: bad" {
		t.Errorf("String() = %q", got)
	}
	if got := (Issue{Message: "bad"}).String(); got != "bad" {
		t.Errorf("String() = %q", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	if err := os.WriteFile(path, []byte("clients: [cursor]\nplugins: [./p]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !result.OK {
		t.Fatalf("Load() issues: %v", result.Issues)
	}
	if result.Workspace.Clients[0] != model.ClientCursor {
		t.Errorf("clients = %v", result.Workspace.Clients)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing workspace file")
	}
	if !strings.Contains(err.Error(), DefaultFileName) {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestFilePath_EnvOverride(t *testing.T) {
	t.Setenv(EnvWorkspaceFile, "/tmp/other.yaml")
	if got := FilePath("/proj"); got != "/tmp/other.yaml" {
		t.Errorf("FilePath() = %q", got)
	}
}
