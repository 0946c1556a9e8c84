package sync

import (
	"path/filepath"

	"github.com/EntityProcess/allagents-sub002/internal/model"
)

// TargetKind classifies what a planned target materializes as.
type TargetKind int

const (
	// KindCanonical is a physical copy into the canonical store.
	KindCanonical TargetKind = iota

	// KindCopy is an independent physical copy into a client directory.
	KindCopy

	// KindLink is a client link pointing at the canonical copy. The
	// executor falls back to a copy when link creation fails.
	KindLink

	// KindReuse is a universal client reading the canonical path in
	// place: nothing to create, only a state entry to record.
	KindReuse
)

// String returns a human-readable name for the kind.
func (k TargetKind) String() string {
	switch k {
	case KindCanonical:
		return "canonical"
	case KindCopy:
		return "copy"
	case KindLink:
		return "link"
	case KindReuse:
		return "reuse"
	default:
		return "unknown"
	}
}

// Target is one planned filesystem entry.
type Target struct {
	// Client owns the target in sync state. Canonical entries belong to
	// the reserved _canonical pseudo-client.
	Client model.ClientID

	// Item is the resolved item this target materializes.
	Item model.ResolvedItem

	// Kind selects the executor behavior.
	Kind TargetKind

	// RelPath is the target location relative to the scope root.
	RelPath string

	// CanonicalRel is the canonical copy's scope-relative path, set for
	// KindLink and KindReuse targets.
	CanonicalRel string
}

// Plan is the complete set of filesystem targets for one run. Canonical
// entries are materialized before client targets so links never point at
// missing content.
type Plan struct {
	Mode      model.SyncMode
	Scope     model.Scope
	Canonical []Target
	Clients   []Target
	Skipped   int
}

// BuildPlan turns resolved items into concrete targets for the configured
// clients. Disabled items are counted and dropped. Clients lacking a
// layout for an item's category contribute no target for it.
func BuildPlan(items []model.ResolvedItem, clients []model.ClientID, scope model.Scope, mode model.SyncMode) Plan {
	plan := Plan{Mode: mode, Scope: scope}

	seenCanonical := make(map[string]bool)

	for _, item := range items {
		if item.Disabled {
			plan.Skipped++
			continue
		}

		canonicalRel := filepath.Join(model.CanonicalCategoryDir(item.Category), item.FinalName)

		if mode == model.ModeSymlink && !seenCanonical[canonicalRel] {
			seenCanonical[canonicalRel] = true
			plan.Canonical = append(plan.Canonical, Target{
				Client:  model.ClientCanonical,
				Item:    item,
				Kind:    KindCanonical,
				RelPath: canonicalRel,
			})
		}

		for _, client := range clients {
			mapping, ok := model.MappingFor(client, scope)
			if !ok {
				continue
			}
			categoryPath, ok := mapping.CategoryPath(item.Category)
			if !ok {
				continue
			}
			clientRel := filepath.Join(categoryPath, item.FinalName)

			switch {
			case mode == model.ModeCopy:
				plan.Clients = append(plan.Clients, Target{
					Client:  client,
					Item:    item,
					Kind:    KindCopy,
					RelPath: clientRel,
				})
			case mapping.Universal:
				plan.Clients = append(plan.Clients, Target{
					Client:       client,
					Item:         item,
					Kind:         KindReuse,
					RelPath:      canonicalRel,
					CanonicalRel: canonicalRel,
				})
			default:
				plan.Clients = append(plan.Clients, Target{
					Client:       client,
					Item:         item,
					Kind:         KindLink,
					RelPath:      clientRel,
					CanonicalRel: canonicalRel,
				})
			}
		}
	}

	return plan
}
