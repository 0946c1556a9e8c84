// Package sync implements the plugin sync engine: it resolves workspace
// plugins, scans their content, resolves naming collisions, plans
// filesystem targets per client, materializes them, and purges entries
// it created on previous runs that are no longer wanted.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	gosync "sync"

	"github.com/EntityProcess/allagents-sub002/internal/config"
	"github.com/EntityProcess/allagents-sub002/internal/logging"
	"github.com/EntityProcess/allagents-sub002/internal/mcp"
	"github.com/EntityProcess/allagents-sub002/internal/model"
	"github.com/EntityProcess/allagents-sub002/internal/plugin"
	"github.com/EntityProcess/allagents-sub002/internal/scan"
	"github.com/EntityProcess/allagents-sub002/internal/vscode"
)

// Options configures a single sync run.
type Options struct {
	// WorkspaceDir is the project root holding the workspace file.
	WorkspaceDir string

	// Scope selects project or user targets. Defaults to project.
	Scope model.Scope

	// Mode overrides the workspace's sync mode when set.
	Mode model.SyncMode

	// Clients overrides the workspace's client list when non-empty.
	Clients []model.ClientID

	// DryRun plans and reports without touching the filesystem.
	DryRun bool

	// Offline forbids network fetches during plugin resolution.
	Offline bool
}

// Engine runs syncs against a plugin resolver.
type Engine struct {
	resolver plugin.Resolver
}

// New creates an Engine using the given resolver.
func New(resolver plugin.Resolver) *Engine {
	return &Engine{resolver: resolver}
}

// NewDefault creates an Engine with the standard git-backed resolver
// anchored at the workspace directory.
func NewDefault(workspaceDir string) *Engine {
	return New(plugin.NewGitResolver(workspaceDir))
}

// pluginOutcome is the per-plugin result of the resolve+scan phase.
type pluginOutcome struct {
	source   model.PluginSource
	plugin   model.ResolvedPlugin
	items    []model.ContentItem
	warnings []string
	err      error
}

// Sync performs one full sync run. The returned error covers only
// environmental failures (unresolvable scope root, state write errors);
// per-plugin problems surface inside the Result as warnings.
func (e *Engine) Sync(ctx context.Context, ws *config.Workspace, opts Options) (*Result, error) {
	scope := opts.Scope
	if scope == "" {
		scope = model.ScopeProject
	}
	mode := opts.Mode
	if mode == "" {
		mode = ws.SyncMode
	}
	if mode == "" {
		mode = model.ModeSymlink
	}
	clients := opts.Clients
	if len(clients) == 0 {
		clients = ws.Clients
	}

	scopeRoot, err := scope.Root(opts.WorkspaceDir)
	if err != nil {
		return nil, err
	}

	logging.Debug("starting sync",
		logging.Scope(scope.String()),
		slog.String(logging.KeyMode, mode.String()),
		logging.Path(scopeRoot),
		logging.Count(len(ws.Plugins)),
		slog.Bool("dry_run", opts.DryRun),
	)

	result := &Result{Scope: scope, Mode: mode, DryRun: opts.DryRun}

	// Resolve and scan every plugin concurrently; each touches a disjoint
	// subtree. The WaitGroup is the barrier conflict resolution needs: a
	// late or failed plugin changes collision decisions for everyone.
	outcomes := make([]pluginOutcome, len(ws.Plugins))
	disabled := ws.DisabledSet()
	var wg gosync.WaitGroup
	for i, src := range ws.Plugins {
		wg.Add(1)
		go func(i int, src model.PluginSource) {
			defer wg.Done()
			outcomes[i] = e.resolveAndScan(ctx, src, disabled, opts.Offline)
		}(i, src)
	}
	wg.Wait()

	prIndex := make(map[model.PluginSource]int)
	var resolvedPlugins []model.ResolvedPlugin
	var allItems []model.ContentItem
	for _, out := range outcomes {
		result.Warnings = append(result.Warnings, out.warnings...)
		if out.err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("plugin %s: %v", out.source, out.err))
			continue
		}
		prIndex[out.source] = len(result.PluginResults)
		result.PluginResults = append(result.PluginResults, PluginResult{
			Plugin:     out.source,
			PluginName: out.plugin.PluginName,
			Success:    true,
		})
		resolvedPlugins = append(resolvedPlugins, out.plugin)
		allItems = append(allItems, out.items...)
	}

	// Conflict resolution is scoped per category.
	var resolved []model.ResolvedItem
	for _, category := range model.AllCategories() {
		var items []model.ContentItem
		for _, item := range allItems {
			if item.Category == category {
				items = append(items, item)
			}
		}
		resolved = append(resolved, ResolveNames(items)...)
	}

	// When every configured plugin failed there is nothing trustworthy to
	// reconcile against: purging or saving state here would tear down the
	// previous run's output over what may be a transient failure. Report
	// and leave everything in place.
	if len(ws.Plugins) > 0 && len(result.PluginResults) == 0 {
		logging.Warn("every plugin failed to resolve; keeping previous sync output",
			logging.Scope(scope.String()),
			logging.Count(len(ws.Plugins)),
		)
		return result, nil
	}

	plan := BuildPlan(resolved, clients, scope, mode)
	result.TotalSkipped = plan.Skipped

	newFiles := make(map[model.ClientID][]string)
	e.execute(&plan, scopeRoot, opts.DryRun, result, prIndex, newFiles)

	prev := LoadState(scopeRoot)

	mcpState := e.syncMCP(scopeRoot, scope, clients, resolvedPlugins, prev, result, opts.DryRun)

	if scope == model.ScopeProject && ws.VSCode.Output != "" && !opts.DryRun {
		if _, err := vscode.Generate(ws.VSCode.Output, opts.WorkspaceDir, resolvedPlugins); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("vscode workspace generation failed: %v", err))
		} else {
			result.TotalGenerated++
		}
	}

	if !opts.DryRun {
		e.purge(prev, newFiles, scopeRoot, result)
		if err := SaveState(scopeRoot, newFiles, mcpState); err != nil {
			return result, err
		}
	}

	result.Success = len(ws.Plugins) == 0 || len(result.PluginResults) > 0

	logging.Debug("sync completed",
		logging.Scope(scope.String()),
		logging.Count(result.TotalCopied+result.TotalGenerated),
		slog.Int("failed", result.TotalFailed),
		slog.Int("purged", len(result.PurgedPaths)),
	)

	return result, nil
}

// resolveAndScan handles one plugin in isolation. Every failure is
// captured in the outcome; nothing here aborts the workspace.
func (e *Engine) resolveAndScan(ctx context.Context, src model.PluginSource, disabled map[string]bool, offline bool) pluginOutcome {
	res := e.resolver.Resolve(ctx, src, plugin.Options{Offline: offline})
	if res.Err != nil {
		return pluginOutcome{source: src, err: res.Err}
	}

	scanned, err := scan.Plugin(res.Plugin, disabled)
	if err != nil {
		return pluginOutcome{source: src, err: err}
	}
	return pluginOutcome{
		source:   src,
		plugin:   res.Plugin,
		items:    scanned.Items,
		warnings: scanned.Warnings,
	}
}

// execute materializes a plan: canonical copies first, then client
// targets, so links never point at missing content. Canonical writes are
// naturally serialized by running them on this goroutine.
func (e *Engine) execute(plan *Plan, scopeRoot string, dryRun bool, result *Result, prIndex map[model.PluginSource]int, newFiles map[model.ClientID][]string) {
	record := func(target Target, cr CopyResult) {
		result.addCopy(cr)
		if i, ok := prIndex[target.Item.PluginSource]; ok {
			result.PluginResults[i].CopyResults = append(result.PluginResults[i].CopyResults, cr)
		}
	}

	for _, target := range plan.Canonical {
		cr := CopyResult{Path: target.RelPath, Action: ActionCopied}
		if !dryRun {
			if err := materialize(target.Item.SourcePath, filepath.Join(scopeRoot, target.RelPath)); err != nil {
				cr = CopyResult{Path: target.RelPath, Action: ActionFailed, Err: err}
				logging.Error("canonical copy failed",
					logging.Path(target.RelPath),
					logging.Err(err),
				)
			}
		}
		record(target, cr)
		if cr.Action != ActionFailed {
			newFiles[model.ClientCanonical] = append(newFiles[model.ClientCanonical], target.RelPath)
		}
	}

	for _, target := range plan.Clients {
		switch target.Kind {
		case KindReuse:
			// The canonical copy doubles as the client's target; nothing to
			// create, but the target still shows up in per-plugin results.
			record(target, CopyResult{Path: target.RelPath, Action: ActionGenerated})
			newFiles[target.Client] = append(newFiles[target.Client], target.RelPath)

		case KindCopy:
			cr := CopyResult{Path: target.RelPath, Action: ActionCopied}
			if !dryRun {
				if err := materialize(target.Item.SourcePath, filepath.Join(scopeRoot, target.RelPath)); err != nil {
					cr = CopyResult{Path: target.RelPath, Action: ActionFailed, Err: err}
				}
			}
			record(target, cr)
			if cr.Action != ActionFailed {
				newFiles[target.Client] = append(newFiles[target.Client], target.RelPath)
			}

		case KindLink:
			cr := e.materializeLink(target, scopeRoot, dryRun)
			record(target, cr)
			if cr.Action != ActionFailed {
				newFiles[target.Client] = append(newFiles[target.Client], target.RelPath)
			}
		}
	}
}

// materializeLink creates or repairs one client link, falling back to a
// physical copy when the platform refuses to link.
func (e *Engine) materializeLink(target Target, scopeRoot string, dryRun bool) CopyResult {
	if dryRun {
		return CopyResult{Path: target.RelPath, Action: ActionGenerated}
	}

	canonical := filepath.Join(scopeRoot, target.CanonicalRel)
	linkPath := filepath.Join(scopeRoot, target.RelPath)

	linked, err := ensureLink(canonical, linkPath)
	if err == nil && linked {
		return CopyResult{Path: target.RelPath, Action: ActionGenerated}
	}
	if err != nil {
		logging.Warn("link creation errored, copying instead",
			logging.Client(target.Client.String()),
			logging.Path(target.RelPath),
			logging.Err(err),
		)
	}

	// Link-specific failure: degrade this one target to a copy.
	if copyErr := materialize(target.Item.SourcePath, linkPath); copyErr != nil {
		return CopyResult{Path: target.RelPath, Action: ActionFailed, Err: copyErr}
	}
	return CopyResult{Path: target.RelPath, Action: ActionCopied}
}

// syncMCP collects plugin MCP servers and merges them into consuming
// clients' configs, pruning names the engine managed before.
func (e *Engine) syncMCP(scopeRoot string, scope model.Scope, clients []model.ClientID, plugins []model.ResolvedPlugin, prev *State, result *Result, dryRun bool) map[model.Scope][]string {
	servers, warnings := mcp.Collect(plugins)
	result.Warnings = append(result.Warnings, warnings...)

	if dryRun {
		return prev.MCPServers
	}

	applied, err := mcp.Apply(scopeRoot, clients, servers, prev.MCPServers[scope])
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("MCP merge failed: %v", err))
		return prev.MCPServers
	}
	result.TotalGenerated += len(applied.WrittenPaths)

	if len(applied.ServerNames) == 0 {
		return nil
	}
	return map[model.Scope][]string{scope: applied.ServerNames}
}

// purge removes previously tracked paths absent from the new snapshot.
// Paths still referenced by any client this run survive, and paths the
// state never tracked are never touched.
func (e *Engine) purge(prev *State, newFiles map[model.ClientID][]string, scopeRoot string, result *Result) {
	referenced := make(map[string]bool)
	for _, paths := range newFiles {
		for _, p := range paths {
			referenced[p] = true
		}
	}

	purged := make(map[string]bool)
	for client, paths := range prev.Files {
		for _, rel := range paths {
			if referenced[rel] || purged[rel] {
				continue
			}
			abs := filepath.Join(scopeRoot, rel)
			if _, err := os.Lstat(abs); os.IsNotExist(err) {
				// Tracked but already gone; nothing to report.
				continue
			}
			if err := removeExisting(abs); err != nil {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("failed to purge %s: %v", rel, err))
				continue
			}
			purged[rel] = true
			logging.Debug("purged stale entry",
				logging.Client(client.String()),
				logging.Path(rel),
			)
		}
	}

	for rel := range purged {
		result.PurgedPaths = append(result.PurgedPaths, rel)
	}
	sort.Strings(result.PurgedPaths)
}
