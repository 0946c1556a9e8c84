// Package plugin resolves workspace plugin sources to local directories.
// Local paths are used in place; git URLs and owner/repo marketplace specs
// are cloned into a per-user cache and refreshed on each online sync.
package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/EntityProcess/allagents-sub002/internal/logging"
	"github.com/EntityProcess/allagents-sub002/internal/model"
)

// ManifestFileName is the optional plugin manifest at the plugin root.
const ManifestFileName = "plugin.json"

// Manifest represents a plugin's plugin.json file.
type Manifest struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// Options configures a single resolution.
type Options struct {
	// Offline skips network fetches; cached clones are used as-is and
	// uncached remote sources fail resolution.
	Offline bool
}

// Resolution is the structured outcome of resolving one source. Err is
// nil on success. Resolution failures are per-plugin data, not control
// flow: the engine records them and keeps going.
type Resolution struct {
	Source model.PluginSource
	Plugin model.ResolvedPlugin
	Err    error
}

// Resolver turns a plugin source reference into a local directory.
type Resolver interface {
	Resolve(ctx context.Context, source model.PluginSource, opts Options) Resolution
}

// GitResolver is the default Resolver. It resolves filesystem paths
// directly and shells out to git for remote sources.
type GitResolver struct {
	// CacheDir holds clones of remote sources. Defaults to
	// os.UserConfigDir()/allagents/plugins.
	CacheDir string

	// BaseDir anchors relative local sources. Defaults to the current
	// working directory.
	BaseDir string
}

// NewGitResolver creates a resolver caching clones under the user config
// directory.
func NewGitResolver(baseDir string) *GitResolver {
	cache := ""
	if cfg, err := os.UserConfigDir(); err == nil {
		cache = filepath.Join(cfg, "allagents", "plugins")
	}
	return &GitResolver{CacheDir: cache, BaseDir: baseDir}
}

// Resolve implements Resolver.
func (r *GitResolver) Resolve(ctx context.Context, source model.PluginSource, opts Options) Resolution {
	spec := strings.TrimSpace(source.String())
	if spec == "" {
		return failure(source, fmt.Errorf("empty plugin source"))
	}

	var (
		localPath string
		err       error
	)
	switch {
	case isLocalSource(spec):
		localPath, err = r.resolveLocal(spec)
	default:
		localPath, err = r.resolveRemote(ctx, spec, opts)
	}
	if err != nil {
		logging.Debug("plugin resolution failed",
			logging.Plugin(spec),
			logging.Err(err),
		)
		return failure(source, err)
	}

	name, version := readManifest(localPath)
	if name == "" {
		name = filepath.Base(localPath)
	}

	logging.Debug("resolved plugin",
		logging.Plugin(spec),
		logging.Path(localPath),
		logging.Item(name),
	)

	return Resolution{
		Source: source,
		Plugin: model.ResolvedPlugin{
			Source:     source,
			LocalPath:  localPath,
			PluginName: name,
			Version:    version,
		},
	}
}

func failure(source model.PluginSource, err error) Resolution {
	return Resolution{Source: source, Err: err}
}

// isLocalSource reports whether a source reference addresses the local
// filesystem. Anything that is not a URL, SSH remote, or bare owner/repo
// shorthand is treated as a path.
func isLocalSource(spec string) bool {
	if strings.HasPrefix(spec, "http://") || strings.HasPrefix(spec, "https://") ||
		strings.HasPrefix(spec, "git@") || strings.HasPrefix(spec, "ssh://") {
		return false
	}
	if strings.HasPrefix(spec, ".") || strings.HasPrefix(spec, "/") ||
		strings.HasPrefix(spec, "~") || filepath.IsAbs(spec) {
		return true
	}
	// owner/repo marketplace shorthand: exactly one slash, no path markers
	if strings.Count(spec, "/") == 1 {
		return false
	}
	return true
}

func (r *GitResolver) resolveLocal(spec string) (string, error) {
	path := spec
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand %q: %w", spec, err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.BaseDir, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("plugin path %q not found: %w", spec, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("plugin path %q is not a directory", spec)
	}
	return filepath.Abs(path)
}

func (r *GitResolver) resolveRemote(ctx context.Context, spec string, opts Options) (string, error) {
	if r.CacheDir == "" {
		return "", fmt.Errorf("no cache directory available for remote source %q", spec)
	}

	url := spec
	// owner/repo shorthand defaults to GitHub
	if !strings.Contains(spec, "://") && !strings.HasPrefix(spec, "git@") {
		url = "https://github.com/" + spec
	}

	clonePath := filepath.Join(r.CacheDir, cloneDirName(spec))
	gitDir := filepath.Join(clonePath, ".git")

	if _, err := os.Stat(gitDir); err == nil {
		if opts.Offline {
			return clonePath, nil
		}
		// Refresh; a failed pull still leaves a usable clone.
		if err := gitPull(ctx, clonePath); err != nil {
			logging.Debug("git pull failed, using existing clone",
				logging.Plugin(spec),
				logging.Path(clonePath),
				logging.Err(err),
			)
		}
		return clonePath, nil
	}

	if opts.Offline {
		return "", fmt.Errorf("plugin %q is not cached and offline mode is enabled", spec)
	}

	if err := os.MkdirAll(r.CacheDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create plugin cache directory: %w", err)
	}
	if err := gitClone(ctx, url, clonePath); err != nil {
		return "", fmt.Errorf("failed to clone %q: %w", spec, err)
	}
	return clonePath, nil
}

func gitClone(ctx context.Context, url, dest string) error {
	// #nosec G204 - url and dest come from the user's own workspace file
	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", url, dest)
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func gitPull(ctx context.Context, repoPath string) error {
	// #nosec G204 - repoPath is inside our own cache directory
	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "pull", "--ff-only")
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// cloneDirName flattens a remote spec into a stable cache directory name.
func cloneDirName(spec string) string {
	name := spec
	if strings.HasPrefix(name, "git@") {
		if _, after, ok := strings.Cut(name, ":"); ok {
			name = after
		}
	}
	if i := strings.Index(name, "://"); i >= 0 {
		name = name[i+3:]
		if _, after, ok := strings.Cut(name, "/"); ok {
			name = after
		}
	}
	name = strings.TrimSuffix(name, ".git")
	name = strings.ReplaceAll(name, "/", "-")
	if name == "" {
		return "unknown"
	}
	return name
}

// readManifest reads plugin.json at the plugin root. Missing or malformed
// manifests fall back to empty values; the directory basename takes over.
func readManifest(pluginDir string) (name, version string) {
	// #nosec G304 - path is inside a resolved plugin directory
	data, err := os.ReadFile(filepath.Join(pluginDir, ManifestFileName))
	if err != nil {
		return "", ""
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		logging.Warn("ignoring malformed plugin manifest",
			logging.Path(filepath.Join(pluginDir, ManifestFileName)),
			logging.Err(err),
		)
		return "", ""
	}
	return strings.TrimSpace(m.Name), strings.TrimSpace(m.Version)
}
