package plugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/EntityProcess/allagents-sub002/internal/model"
)

func TestIsLocalSource(t *testing.T) {
	tests := []struct {
		spec  string
		local bool
	}{
		{"./plugins/tools", true},
		{"../shared", true},
		{"/abs/path", true},
		{"~/plugins/tools", true},
		{"plain-dir", true},
		{"acme/shared-skills", false},
		{"https://github.com/acme/shared-skills", false},
		{"git@github.com:acme/shared-skills.git", false},
		{"ssh://git@host/acme/repo", false},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			if got := isLocalSource(tt.spec); got != tt.local {
				t.Errorf("isLocalSource(%q) = %v, want %v", tt.spec, got, tt.local)
			}
		})
	}
}

func TestCloneDirName(t *testing.T) {
	tests := []struct {
		spec string
		want string
	}{
		{"acme/shared-skills", "acme-shared-skills"},
		{"https://github.com/acme/shared-skills", "acme-shared-skills"},
		{"https://github.com/acme/shared-skills.git", "acme-shared-skills"},
		{"git@github.com:acme/shared-skills.git", "acme-shared-skills"},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			if got := cloneDirName(tt.spec); got != tt.want {
				t.Errorf("cloneDirName(%q) = %q, want %q", tt.spec, got, tt.want)
			}
		})
	}
}

func TestResolve_LocalWithManifest(t *testing.T) {
	dir := t.TempDir()
	pluginDir := filepath.Join(dir, "my-tools")
	if err := os.MkdirAll(pluginDir, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := `{"name": "acme-tools", "version": "1.2.0"}`
	if err := os.WriteFile(filepath.Join(pluginDir, ManifestFileName), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	r := &GitResolver{BaseDir: dir}
	res := r.Resolve(context.Background(), model.PluginSource("./my-tools"), Options{})
	if res.Err != nil {
		t.Fatalf("Resolve() error = %v", res.Err)
	}
	if res.Plugin.PluginName != "acme-tools" {
		t.Errorf("PluginName = %q, want acme-tools", res.Plugin.PluginName)
	}
	if res.Plugin.Version != "1.2.0" {
		t.Errorf("Version = %q, want 1.2.0", res.Plugin.Version)
	}
	if !filepath.IsAbs(res.Plugin.LocalPath) {
		t.Errorf("LocalPath %q should be absolute", res.Plugin.LocalPath)
	}
}

func TestResolve_LocalWithoutManifest(t *testing.T) {
	dir := t.TempDir()
	pluginDir := filepath.Join(dir, "bare-plugin")
	if err := os.MkdirAll(pluginDir, 0o755); err != nil {
		t.Fatal(err)
	}

	r := &GitResolver{BaseDir: dir}
	res := r.Resolve(context.Background(), model.PluginSource("bare-plugin"), Options{})
	if res.Err != nil {
		t.Fatalf("Resolve() error = %v", res.Err)
	}
	if res.Plugin.PluginName != "bare-plugin" {
		t.Errorf("PluginName = %q, want directory basename", res.Plugin.PluginName)
	}
}

func TestResolve_MalformedManifestFallsBack(t *testing.T) {
	dir := t.TempDir()
	pluginDir := filepath.Join(dir, "broken")
	if err := os.MkdirAll(pluginDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, ManifestFileName), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := &GitResolver{BaseDir: dir}
	res := r.Resolve(context.Background(), model.PluginSource("./broken"), Options{})
	if res.Err != nil {
		t.Fatalf("Resolve() error = %v", res.Err)
	}
	if res.Plugin.PluginName != "broken" {
		t.Errorf("PluginName = %q, want directory basename", res.Plugin.PluginName)
	}
}

func TestResolve_MissingLocalPath(t *testing.T) {
	r := &GitResolver{BaseDir: t.TempDir()}
	res := r.Resolve(context.Background(), model.PluginSource("./does-not-exist"), Options{})
	if res.Err == nil {
		t.Fatal("expected resolution failure")
	}
	if res.Source != model.PluginSource("./does-not-exist") {
		t.Errorf("failure should carry the source, got %q", res.Source)
	}
}

func TestResolve_OfflineUncachedRemote(t *testing.T) {
	r := &GitResolver{BaseDir: t.TempDir(), CacheDir: t.TempDir()}
	res := r.Resolve(context.Background(), model.PluginSource("acme/never-fetched"), Options{Offline: true})
	if res.Err == nil {
		t.Fatal("expected failure for uncached remote in offline mode")
	}
}

func TestResolve_OfflineCachedRemote(t *testing.T) {
	cache := t.TempDir()
	clone := filepath.Join(cache, "acme-cached")
	if err := os.MkdirAll(filepath.Join(clone, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	r := &GitResolver{BaseDir: t.TempDir(), CacheDir: cache}
	res := r.Resolve(context.Background(), model.PluginSource("acme/cached"), Options{Offline: true})
	if res.Err != nil {
		t.Fatalf("Resolve() error = %v", res.Err)
	}
	if res.Plugin.LocalPath != clone {
		t.Errorf("LocalPath = %q, want %q", res.Plugin.LocalPath, clone)
	}
}

func TestResolve_Empty(t *testing.T) {
	r := NewGitResolver(t.TempDir())
	res := r.Resolve(context.Background(), model.PluginSource("  "), Options{})
	if res.Err == nil {
		t.Fatal("expected failure for empty source")
	}
}
