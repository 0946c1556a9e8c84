package sync

import (
	"github.com/EntityProcess/allagents-sub002/internal/logging"
	"github.com/EntityProcess/allagents-sub002/internal/model"
)

// ResolveNames assigns each item of one category a final name that is
// unique within the category and scope.
//
// Resolution is a pure function of the current item set and is recomputed
// from scratch every run: when a collision disappears because a plugin
// was removed, surviving items revert to their plain raw name with no
// undo bookkeeping. The algorithm is symmetric over group members, so
// input order never affects the outcome.
//
// Rules per raw-name group:
//   - single item: finalName = rawName
//   - colliding items with a unique pluginName: "{pluginName}_{rawName}"
//   - items that also share the pluginName (the same logical plugin
//     resolved from different sources): "{shortID(source)}_{pluginName}_{rawName}"
func ResolveNames(items []model.ContentItem) []model.ResolvedItem {
	groups := make(map[string][]int)
	for i, item := range items {
		groups[item.RawName] = append(groups[item.RawName], i)
	}

	resolved := make([]model.ResolvedItem, len(items))
	for raw, indices := range groups {
		if len(indices) == 1 {
			i := indices[0]
			resolved[i] = model.ResolvedItem{ContentItem: items[i], FinalName: raw}
			continue
		}

		perPlugin := make(map[string]int)
		for _, i := range indices {
			perPlugin[items[i].PluginName]++
		}

		for _, i := range indices {
			item := items[i]
			var final string
			if perPlugin[item.PluginName] == 1 {
				final = item.PluginName + "_" + raw
			} else {
				final = ShortID(item.PluginSource) + "_" + item.PluginName + "_" + raw
			}
			resolved[i] = model.ResolvedItem{ContentItem: item, FinalName: final}

			logging.Debug("renamed colliding item",
				logging.Category(item.Category.String()),
				logging.Item(raw),
				logging.Plugin(item.PluginSource.String()),
			)
		}
	}

	return resolved
}
