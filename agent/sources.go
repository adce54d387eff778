package agent

import (
	"encoding/json"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// sourceToolMap maps source names to the tool name prefixes they cover. The
// riksantikvaren source spans both the OGC API tools and the ArcGIS tools.
var sourceToolMap = map[string][]string{
	"wikipedia":      {"wikipedia-"},
	"snl":            {"snl-"},
	"riksantikvaren": {"riksantikvaren-", "arcgis-"},
}

// KnownSources returns the valid source names, sorted.
func KnownSources() []string {
	names := make([]string, 0, len(sourceToolMap))
	for name := range sourceToolMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// enabledPrefixes resolves source names to tool prefixes. An empty selection
// enables everything; a selection of only unknown names enables nothing, so
// the request fails fast instead of silently searching every source.
func enabledPrefixes(sources []string) []string {
	if len(sources) == 0 {
		var prefixes []string
		for _, p := range sourceToolMap {
			prefixes = append(prefixes, p...)
		}
		return prefixes
	}

	var prefixes []string
	for _, source := range sources {
		if p, ok := sourceToolMap[strings.ToLower(source)]; ok {
			prefixes = append(prefixes, p...)
		}
	}
	return prefixes
}

// EnabledTools converts the registry tools matching the selected sources into
// model function definitions.
func EnabledTools(directory ToolDirectory, sources []string) []openai.Tool {
	prefixes := enabledPrefixes(sources)

	var tools []openai.Tool
	for _, def := range directory.List() {
		matched := false
		for _, prefix := range prefixes {
			if strings.HasPrefix(def.Name, prefix) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		params := []byte(def.RawInputSchema)
		if len(params) == 0 {
			var err error
			params, err = json.Marshal(def.InputSchema)
			if err != nil {
				continue
			}
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  json.RawMessage(params),
			},
		})
	}
	return tools
}

// providersFor maps the tools that were called back to their source names.
func providersFor(toolsUsed []string) []string {
	seen := make(map[string]bool)
	for _, tool := range toolsUsed {
		for source, prefixes := range sourceToolMap {
			for _, prefix := range prefixes {
				if strings.HasPrefix(tool, prefix) {
					seen[source] = true
				}
			}
		}
	}
	providers := make([]string, 0, len(seen))
	for source := range seen {
		providers = append(providers, source)
	}
	sort.Strings(providers)
	return providers
}

// providerForTool maps a single tool name to its citation provider.
func providerForTool(tool string) string {
	switch {
	case strings.HasPrefix(tool, "wikipedia-"):
		return "wikipedia"
	case strings.HasPrefix(tool, "snl-"):
		return "snl"
	default:
		return "riksantikvaren"
	}
}
