package sync

import (
	"testing"

	"github.com/EntityProcess/allagents-sub002/internal/model"
)

func skillItem(raw, pluginName, source string) model.ContentItem {
	return model.ContentItem{
		Category:     model.CategorySkill,
		RawName:      raw,
		PluginName:   pluginName,
		PluginSource: model.PluginSource(source),
	}
}

func finalNames(items []model.ResolvedItem) map[string]string {
	// keyed by "source/raw" for lookup in assertions
	m := make(map[string]string, len(items))
	for _, item := range items {
		m[string(item.PluginSource)+"/"+item.RawName] = item.FinalName
	}
	return m
}

func TestResolveNames_NoCollisions(t *testing.T) {
	items := []model.ContentItem{
		skillItem("review", "alpha", "./alpha"),
		skillItem("deploy", "alpha", "./alpha"),
		skillItem("triage", "beta", "./beta"),
	}

	for _, r := range ResolveNames(items) {
		if r.FinalName != r.RawName {
			t.Errorf("unique raw name %q renamed to %q", r.RawName, r.FinalName)
		}
		if r.Renamed() {
			t.Errorf("Renamed() = true for %q", r.RawName)
		}
	}
}

func TestResolveNames_CrossPluginCollision(t *testing.T) {
	items := []model.ContentItem{
		skillItem("common", "alpha", "./alpha"),
		skillItem("common", "beta", "./beta"),
	}

	names := finalNames(ResolveNames(items))
	if names["./alpha/common"] != "alpha_common" {
		t.Errorf("alpha item = %q, want alpha_common", names["./alpha/common"])
	}
	if names["./beta/common"] != "beta_common" {
		t.Errorf("beta item = %q, want beta_common", names["./beta/common"])
	}
}

func TestResolveNames_UniqueNamesUntouchedNextToCollisions(t *testing.T) {
	items := []model.ContentItem{
		skillItem("unique-a", "alpha", "./alpha"),
		skillItem("shared", "alpha", "./alpha"),
		skillItem("shared", "beta", "./beta"),
		skillItem("unique-b", "beta", "./beta"),
	}

	names := finalNames(ResolveNames(items))
	if names["./alpha/unique-a"] != "unique-a" {
		t.Errorf("unique-a renamed to %q", names["./alpha/unique-a"])
	}
	if names["./beta/unique-b"] != "unique-b" {
		t.Errorf("unique-b renamed to %q", names["./beta/unique-b"])
	}
	if names["./alpha/shared"] != "alpha_shared" || names["./beta/shared"] != "beta_shared" {
		t.Errorf("shared items = %q, %q", names["./alpha/shared"], names["./beta/shared"])
	}
}

func TestResolveNames_SamePluginIdentity(t *testing.T) {
	items := []model.ContentItem{
		skillItem("build", "my-plugin", "/checkouts/a"),
		skillItem("build", "my-plugin", "/checkouts/b"),
	}

	names := finalNames(ResolveNames(items))
	wantA := ShortID("/checkouts/a") + "_my-plugin_build"
	wantB := ShortID("/checkouts/b") + "_my-plugin_build"
	if names["/checkouts/a/build"] != wantA {
		t.Errorf("item a = %q, want %q", names["/checkouts/a/build"], wantA)
	}
	if names["/checkouts/b/build"] != wantB {
		t.Errorf("item b = %q, want %q", names["/checkouts/b/build"], wantB)
	}
	if names["/checkouts/a/build"] == names["/checkouts/b/build"] {
		t.Error("same-identity items must diverge via short id")
	}
}

func TestResolveNames_MixedGroup(t *testing.T) {
	// Two checkouts of my-plugin plus an unrelated plugin, all shipping "build".
	items := []model.ContentItem{
		skillItem("build", "my-plugin", "/checkouts/a"),
		skillItem("build", "my-plugin", "/checkouts/b"),
		skillItem("build", "other", "./other"),
	}

	names := finalNames(ResolveNames(items))
	if names["./other/build"] != "other_build" {
		t.Errorf("other = %q, want other_build", names["./other/build"])
	}
	if names["/checkouts/a/build"] != ShortID("/checkouts/a")+"_my-plugin_build" {
		t.Errorf("checkout a = %q", names["/checkouts/a/build"])
	}
}

func TestResolveNames_OrderIndependent(t *testing.T) {
	forward := []model.ContentItem{
		skillItem("shared", "alpha", "./alpha"),
		skillItem("shared", "beta", "./beta"),
		skillItem("solo", "alpha", "./alpha"),
	}
	backward := []model.ContentItem{forward[2], forward[1], forward[0]}

	a := finalNames(ResolveNames(forward))
	b := finalNames(ResolveNames(backward))
	for key, name := range a {
		if b[key] != name {
			t.Errorf("order changed outcome for %s: %q vs %q", key, name, b[key])
		}
	}
}

func TestResolveNames_ReversionAfterRemoval(t *testing.T) {
	both := []model.ContentItem{
		skillItem("coding", "plugin-a", "./plugin-a"),
		skillItem("coding", "plugin-b", "./plugin-b"),
	}
	names := finalNames(ResolveNames(both))
	if names["./plugin-a/coding"] != "plugin-a_coding" {
		t.Fatalf("colliding run = %q", names["./plugin-a/coding"])
	}

	// plugin-b removed from the workspace: next run sees only plugin-a.
	remaining := []model.ContentItem{both[0]}
	names = finalNames(ResolveNames(remaining))
	if names["./plugin-a/coding"] != "coding" {
		t.Errorf("after removal = %q, want plain coding", names["./plugin-a/coding"])
	}
}

func TestShortID_Deterministic(t *testing.T) {
	a := ShortID("git@github.com:acme/tools.git")
	b := ShortID("git@github.com:acme/tools.git")
	if a != b {
		t.Errorf("ShortID not deterministic: %q vs %q", a, b)
	}
	if len(a) != shortIDLen {
		t.Errorf("ShortID length = %d, want %d", len(a), shortIDLen)
	}
	if a == ShortID("git@github.com:acme/other.git") {
		t.Error("different sources should not share a short id")
	}
}
