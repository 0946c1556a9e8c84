package sync

import (
	"fmt"
	"strings"

	"github.com/EntityProcess/allagents-sub002/internal/model"
)

// Action represents the outcome of one planned filesystem target.
type Action string

const (
	// ActionCopied indicates physical content was written.
	ActionCopied Action = "copied"

	// ActionGenerated indicates a derived entry was produced: a link, a
	// merged MCP config, or a generated workspace file.
	ActionGenerated Action = "generated"

	// ActionFailed indicates the operation for this target failed.
	ActionFailed Action = "failed"
)

// CopyResult records one target path and what happened to it.
type CopyResult struct {
	// Path is relative to the scope root.
	Path string

	// Action is the outcome for this path.
	Action Action

	// Err holds the failure when Action is ActionFailed.
	Err error
}

// PluginResult is the outcome of syncing a single plugin.
type PluginResult struct {
	// Plugin is the literal source reference from the workspace file.
	Plugin model.PluginSource

	// PluginName is the resolved name; empty when resolution failed.
	PluginName string

	// Success is false when the plugin could not be resolved or scanned.
	// Individual failed file operations do not clear it.
	Success bool

	// Error describes a resolution or scan failure.
	Error string

	// CopyResults holds one entry per materialized target.
	CopyResults []CopyResult
}

// Result is the aggregated outcome of one sync run.
type Result struct {
	// Success is true when at least one configured plugin synced.
	Success bool

	// Scope is the scope this run targeted.
	Scope model.Scope

	// Mode is the sync mode used.
	Mode model.SyncMode

	// DryRun indicates no filesystem changes were made.
	DryRun bool

	TotalCopied    int
	TotalGenerated int
	TotalFailed    int
	TotalSkipped   int

	// PluginResults holds one entry per successfully resolved plugin.
	PluginResults []PluginResult

	// PurgedPaths lists previously tracked paths removed this run.
	PurgedPaths []string

	// Warnings carries plugin failures and metadata exclusions. Failed
	// plugins appear here with their literal source string.
	Warnings []string
}

// addCopy folds one copy result into the totals.
func (r *Result) addCopy(cr CopyResult) {
	switch cr.Action {
	case ActionCopied:
		r.TotalCopied++
	case ActionGenerated:
		r.TotalGenerated++
	case ActionFailed:
		r.TotalFailed++
	}
}

// Summary returns a human-readable summary of the sync result.
func (r *Result) Summary() string {
	var sb strings.Builder

	if r.DryRun {
		sb.WriteString("Dry run - no changes made\n")
	}

	sb.WriteString(fmt.Sprintf("Synced %d plugin(s) to %s scope in %s mode\n",
		len(r.PluginResults), r.Scope, r.Mode))
	sb.WriteString(fmt.Sprintf("  Copied:    %d\n", r.TotalCopied))
	sb.WriteString(fmt.Sprintf("  Generated: %d\n", r.TotalGenerated))
	sb.WriteString(fmt.Sprintf("  Skipped:   %d\n", r.TotalSkipped))
	sb.WriteString(fmt.Sprintf("  Failed:    %d\n", r.TotalFailed))
	if len(r.PurgedPaths) > 0 {
		sb.WriteString(fmt.Sprintf("  Purged:    %d\n", len(r.PurgedPaths)))
	}

	if len(r.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, w := range r.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", w))
		}
	}

	return sb.String()
}
