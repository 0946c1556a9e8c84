package model

// PluginSource is the opaque reference a workspace uses to identify a
// plugin: a local path, a git URL, or an owner/repo marketplace spec.
type PluginSource string

// String returns the literal source reference.
func (s PluginSource) String() string {
	return string(s)
}

// ResolvedPlugin is a plugin source that has been fetched to a local
// directory. PluginName comes from the plugin.json manifest when present,
// otherwise from the root directory's basename. Resolved plugins are
// recomputed every run and never persisted.
type ResolvedPlugin struct {
	Source     PluginSource
	LocalPath  string
	PluginName string
	Version    string
}

// ContentItem is a single piece of plugin content discovered by the
// scanner: one skill directory, command file, hook, or agent definition.
type ContentItem struct {
	Category     Category
	RawName      string
	PluginName   string
	PluginSource PluginSource
	SourcePath   string
	// IsDir is true when the item is a directory (always true for skills).
	IsDir bool
	// Disabled marks items suppressed via the workspace's disabled set.
	// Disabled items still participate in conflict resolution grouping
	// but are skipped at planning time.
	Disabled bool
	// Description is populated for skills from SKILL.md front-matter.
	Description string
}

// DisableKey returns the "pluginName:rawName" key used by workspace
// configuration to disable individual items.
func (i ContentItem) DisableKey() string {
	return i.PluginName + ":" + i.RawName
}

// ResolvedItem is a ContentItem plus its collision-free final name within
// its category and scope.
type ResolvedItem struct {
	ContentItem
	FinalName string
}

// Renamed returns true if conflict resolution changed the item's name.
func (i ResolvedItem) Renamed() bool {
	return i.FinalName != i.RawName
}
