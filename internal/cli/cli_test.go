package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/EntityProcess/allagents-sub002/internal/logging"
)

func TestVersionVariables(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if Commit == "" {
		t.Error("Commit should not be empty")
	}
	if BuildDate == "" {
		t.Error("BuildDate should not be empty")
	}
}

// runCapture runs the CLI with stdout and stderr captured.
func runCapture(t *testing.T, args []string) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w
	os.Stderr = w

	logging.SetDefault(logging.New(logging.DefaultOptions()))

	runErr := Run(context.Background(), args)

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close pipe writer: %v", err)
	}
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read captured output: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("failed to close pipe reader: %v", err)
	}

	return buf.String(), runErr
}

func TestConfigureLogging(t *testing.T) {
	tests := map[string]struct {
		args      []string
		wantDebug bool
	}{
		"no flags uses default level": {
			args:      []string{"allagents", "version"},
			wantDebug: false,
		},
		"verbose flag keeps debug disabled": {
			args:      []string{"allagents", "--verbose", "version"},
			wantDebug: false,
		},
		"debug flag enables debug level": {
			args:      []string{"allagents", "--debug", "version"},
			wantDebug: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := runCapture(t, tt.args); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			logger := slog.Default()
			got := logger.Enabled(context.Background(), slog.LevelDebug)
			if got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCapture(t, []string{"allagents", "version"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out, "allagents version") {
		t.Errorf("output missing version line: %q", out)
	}
	if !strings.Contains(out, "go: go") {
		t.Errorf("output missing go runtime version: %q", out)
	}
}

func TestClientsCommand(t *testing.T) {
	out, err := runCapture(t, []string{"allagents", "--no-color", "clients"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, want := range []string{"Claude", "Copilot", "Cursor", ".claude/skills", "canonical store"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if _, err := runCapture(t, []string{"allagents", "clients", "--scope", "bogus"}); err == nil {
		t.Error("expected error for invalid scope")
	}
}

func writeWorkspace(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "allagents.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write workspace file: %v", err)
	}
}

func TestValidateCommand(t *testing.T) {
	t.Run("valid workspace", func(t *testing.T) {
		dir := t.TempDir()
		writeWorkspace(t, dir, "plugins:\n  - ./tools\nclients:\n  - claude\n")

		out, err := runCapture(t, []string{"allagents", "--no-color", "validate", "--dir", dir})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !strings.Contains(out, "is valid") {
			t.Errorf("output missing validity confirmation: %q", out)
		}
	})

	t.Run("invalid workspace", func(t *testing.T) {
		dir := t.TempDir()
		writeWorkspace(t, dir, "plugins:\n  - ./tools\nclients:\n  - notaclient\n")

		out, err := runCapture(t, []string{"allagents", "--no-color", "validate", "--dir", dir})
		if err == nil {
			t.Fatal("expected error for invalid workspace")
		}
		if !strings.Contains(out, "clients[0]") {
			t.Errorf("output missing issue field: %q", out)
		}
	})

	t.Run("missing workspace file", func(t *testing.T) {
		dir := t.TempDir()
		if _, err := runCapture(t, []string{"allagents", "validate", "--dir", dir}); err == nil {
			t.Fatal("expected error for missing workspace file")
		}
	})
}

func TestSyncCommand(t *testing.T) {
	setup := func(t *testing.T) string {
		t.Helper()
		dir := t.TempDir()
		skillDir := filepath.Join(dir, "tools", "skills", "review")
		if err := os.MkdirAll(skillDir, 0o755); err != nil {
			t.Fatalf("failed to create skill dir: %v", err)
		}
		meta := "---\nname: review\ndescription: Reviews code\n---\n\nInstructions.\n"
		if err := os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(meta), 0o644); err != nil {
			t.Fatalf("failed to write SKILL.md: %v", err)
		}
		writeWorkspace(t, dir, "plugins:\n  - ./tools\nclients:\n  - claude\n")
		return dir
	}

	t.Run("dry run makes no changes", func(t *testing.T) {
		dir := setup(t)

		out, err := runCapture(t, []string{"allagents", "--no-color", "sync", "--dir", dir, "--dry-run"})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !strings.Contains(out, "Dry run - no changes made") {
			t.Errorf("output missing dry-run banner: %q", out)
		}
		if _, err := os.Lstat(filepath.Join(dir, ".claude")); !os.IsNotExist(err) {
			t.Error("dry run should not create client directories")
		}
	})

	t.Run("sync places content", func(t *testing.T) {
		dir := setup(t)

		out, err := runCapture(t, []string{"allagents", "--no-color", "sync", "--dir", dir})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !strings.Contains(out, "sync complete") {
			t.Errorf("output missing completion line: %q", out)
		}
		if _, err := os.Lstat(filepath.Join(dir, ".claude", "skills", "review")); err != nil {
			t.Errorf("expected claude skill placement: %v", err)
		}
	})

	t.Run("all plugins failing exits with error", func(t *testing.T) {
		dir := t.TempDir()
		writeWorkspace(t, dir, "plugins:\n  - ./does-not-exist\nclients:\n  - claude\n")

		if _, err := runCapture(t, []string{"allagents", "sync", "--dir", dir}); err == nil {
			t.Fatal("expected error when no plugin resolves")
		}
	})

	t.Run("invalid mode flag", func(t *testing.T) {
		dir := setup(t)
		if _, err := runCapture(t, []string{"allagents", "sync", "--dir", dir, "--mode", "hardlink"}); err == nil {
			t.Fatal("expected error for invalid mode")
		}
	})
}

func TestStatusCommand(t *testing.T) {
	t.Run("no recorded sync", func(t *testing.T) {
		dir := t.TempDir()
		out, err := runCapture(t, []string{"allagents", "status", "--dir", dir})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !strings.Contains(out, "No sync recorded") {
			t.Errorf("output missing empty-state line: %q", out)
		}
	})

	t.Run("after a sync", func(t *testing.T) {
		dir := t.TempDir()
		skillDir := filepath.Join(dir, "tools", "skills", "review")
		if err := os.MkdirAll(skillDir, 0o755); err != nil {
			t.Fatalf("failed to create skill dir: %v", err)
		}
		meta := "---\nname: review\ndescription: Reviews code\n---\n"
		if err := os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(meta), 0o644); err != nil {
			t.Fatalf("failed to write SKILL.md: %v", err)
		}
		writeWorkspace(t, dir, "plugins:\n  - ./tools\nclients:\n  - claude\n")

		if _, err := runCapture(t, []string{"allagents", "sync", "--dir", dir}); err != nil {
			t.Fatalf("sync failed: %v", err)
		}

		out, err := runCapture(t, []string{"allagents", "--no-color", "status", "--dir", dir})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !strings.Contains(out, "Last sync:") {
			t.Errorf("output missing last-sync line: %q", out)
		}
		if !strings.Contains(out, "claude") {
			t.Errorf("output missing client section: %q", out)
		}
		if !strings.Contains(out, "tracked path(s)") {
			t.Errorf("output missing totals line: %q", out)
		}
	})
}
