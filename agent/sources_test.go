package agent

import (
	"reflect"
	"testing"
)

func TestEnabledToolsFiltersByPrefix(t *testing.T) {
	dir := newFakeDirectory("wikipedia-search", "snl-search", "riksantikvaren-collections", "arcgis-nearby")

	tools := EnabledTools(dir, []string{"wikipedia"})
	if len(tools) != 1 || tools[0].Function.Name != "wikipedia-search" {
		t.Fatalf("unexpected tools: %+v", tools)
	}

	tools = EnabledTools(dir, []string{"riksantikvaren"})
	if len(tools) != 2 {
		t.Fatalf("riksantikvaren should cover OGC and ArcGIS tools, got %d", len(tools))
	}
}

func TestEnabledToolsEmptySelectionEnablesAll(t *testing.T) {
	dir := newFakeDirectory("wikipedia-search", "snl-search", "arcgis-nearby")

	for _, sources := range [][]string{nil, {}} {
		tools := EnabledTools(dir, sources)
		if len(tools) != 3 {
			t.Errorf("sources %v: expected all 3 tools, got %d", sources, len(tools))
		}
	}
}

func TestEnabledToolsUnknownSelectionEnablesNothing(t *testing.T) {
	dir := newFakeDirectory("wikipedia-search", "snl-search", "arcgis-nearby")

	for _, sources := range [][]string{{"ukjent"}, {"ukjent", "enda-en"}} {
		if tools := EnabledTools(dir, sources); len(tools) != 0 {
			t.Errorf("sources %v: expected no tools, got %d", sources, len(tools))
		}
	}

	// A valid name among unknown ones still counts
	tools := EnabledTools(dir, []string{"ukjent", "snl"})
	if len(tools) != 1 || tools[0].Function.Name != "snl-search" {
		t.Errorf("mixed selection: %+v", tools)
	}
}

func TestEnabledToolsCarriesSchema(t *testing.T) {
	dir := newFakeDirectory("snl-search")
	tools := EnabledTools(dir, []string{"snl"})
	if len(tools) != 1 {
		t.Fatal("expected one tool")
	}
	if tools[0].Function.Parameters == nil {
		t.Error("tool schema missing")
	}
	if tools[0].Function.Description == "" {
		t.Error("tool description missing")
	}
}

func TestProvidersFor(t *testing.T) {
	got := providersFor([]string{"wikipedia-search", "arcgis-nearby", "riksantikvaren-features", "wikipedia-summary"})
	want := []string{"riksantikvaren", "wikipedia"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("providersFor = %v, want %v", got, want)
	}
}

func TestProviderForTool(t *testing.T) {
	tests := map[string]string{
		"wikipedia-geosearch":     "wikipedia",
		"snl-article":             "snl",
		"riksantikvaren-nearby": "riksantikvaren",
		"arcgis-query":          "riksantikvaren",
	}
	for tool, want := range tests {
		if got := providerForTool(tool); got != want {
			t.Errorf("providerForTool(%q) = %q, want %q", tool, got, want)
		}
	}
}
