// Package scan enumerates the content a resolved plugin ships, one
// ContentItem per skill directory, command, hook, or agent definition.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/EntityProcess/allagents-sub002/internal/logging"
	"github.com/EntityProcess/allagents-sub002/internal/model"
)

// SkillFileName is the required descriptor inside each skill directory.
const SkillFileName = "SKILL.md"

// Result holds one plugin's scanned content plus the non-fatal warnings
// produced along the way (skills with missing or broken metadata).
type Result struct {
	Items    []model.ContentItem
	Warnings []string
}

// Plugin scans all category directories of a resolved plugin. Missing
// category directories yield no items. Only unreadable directories that
// do exist produce an error.
func Plugin(p model.ResolvedPlugin, disabled map[string]bool) (Result, error) {
	var res Result

	for _, category := range model.AllCategories() {
		dir := filepath.Join(p.LocalPath, category.DirName())
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Result{}, fmt.Errorf("failed to read %s directory of plugin %q: %w",
				category.DirName(), p.PluginName, err)
		}

		var items []model.ContentItem
		for _, entry := range entries {
			if strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			item, warning, ok := buildItem(p, category, dir, entry)
			if warning != "" {
				res.Warnings = append(res.Warnings, warning)
			}
			if !ok {
				continue
			}
			items = append(items, item)
		}

		items, warnings := splitFoldedNames(items, p)
		res.Warnings = append(res.Warnings, warnings...)

		for _, item := range items {
			item.Disabled = disabled[item.DisableKey()]
			res.Items = append(res.Items, item)
		}
	}

	// ReadDir already sorts per directory; sort the whole set so output
	// ordering does not depend on category interleaving.
	sort.Slice(res.Items, func(i, j int) bool {
		a, b := res.Items[i], res.Items[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.RawName < b.RawName
	})

	logging.Debug("scanned plugin",
		logging.Plugin(p.Source.String()),
		logging.Count(len(res.Items)),
	)

	return res, nil
}

// buildItem converts one directory entry into a ContentItem. The bool
// result is false when the entry is excluded (invalid skill metadata or
// a non-directory in skills/).
func buildItem(p model.ResolvedPlugin, category model.Category, dir string, entry os.DirEntry) (model.ContentItem, string, bool) {
	sourcePath := filepath.Join(dir, entry.Name())

	item := model.ContentItem{
		Category:     category,
		PluginName:   p.PluginName,
		PluginSource: p.Source,
		SourcePath:   sourcePath,
		IsDir:        entry.IsDir(),
	}

	if category == model.CategorySkill {
		if !entry.IsDir() {
			return item, "", false
		}
		meta, err := readSkillMeta(sourcePath)
		if err != nil {
			warning := fmt.Sprintf("skipping skill %q from plugin %s: %v",
				entry.Name(), p.Source, err)
			logging.Warn("excluding skill with invalid metadata",
				logging.Plugin(p.Source.String()),
				logging.Item(entry.Name()),
				logging.Err(err),
			)
			return item, warning, false
		}
		item.RawName = entry.Name()
		item.Description = meta.Description
		return item, "", true
	}

	// Commands, hooks, and agents may be single files or directories.
	// File items are addressed by their base name without extension.
	name := entry.Name()
	if !entry.IsDir() {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	if name == "" {
		return item, "", false
	}
	item.RawName = name
	return item, "", true
}

// splitFoldedNames keeps raw names unique within one plugin category.
// Extension trimming can fold distinct files onto the same raw name
// (commands/foo.md and commands/foo.sh both become "foo"); colliding
// file items fall back to their full file name. Anything still
// colliding after that is excluded with a warning rather than silently
// overwriting a sibling.
func splitFoldedNames(items []model.ContentItem, p model.ResolvedPlugin) ([]model.ContentItem, []string) {
	counts := make(map[string]int, len(items))
	for _, item := range items {
		counts[item.RawName]++
	}

	var warnings []string
	kept := items[:0]
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if counts[item.RawName] > 1 && !item.IsDir {
			full := filepath.Base(item.SourcePath)
			logging.Debug("keeping extension on colliding item name",
				logging.Plugin(p.Source.String()),
				logging.Item(full),
			)
			item.RawName = full
		}
		if seen[item.RawName] {
			warnings = append(warnings, fmt.Sprintf("skipping duplicate %s %q from plugin %s",
				item.Category, item.RawName, p.Source))
			continue
		}
		seen[item.RawName] = true
		kept = append(kept, item)
	}
	return kept, warnings
}

// readSkillMeta loads and validates the SKILL.md descriptor.
func readSkillMeta(skillDir string) (SkillMeta, error) {
	path := filepath.Join(skillDir, SkillFileName)
	// #nosec G304 - path is inside a resolved plugin directory
	data, err := os.ReadFile(path)
	if err != nil {
		return SkillMeta{}, fmt.Errorf("missing %s: %w", SkillFileName, err)
	}
	return parseSkillMeta(data)
}
