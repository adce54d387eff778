// citations.go
//
// Heuristic citation extraction. Tool outputs are scanned for URLs, which
// become source references with provider-specific titles. The iterative
// orchestrator additionally requires evidence that a tool's content was
// actually used in the answer before citing it.

package agent

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	maxURLsPerTool = 3
	maxSources     = 10
)

var (
	urlPattern       = regexp.MustCompile(`https?://[^\s<>"{}|\\^` + "`" + `\[\])]+[^\s<>"{}|\\^` + "`" + `\[\].,)]`)
	snlArticleRe     = regexp.MustCompile(`snl\.no/([^?#]+)`)
	wikiArticleRe    = regexp.MustCompile(`wikipedia\.org/wiki/([^?#]+)`)
	wikiCuridRe      = regexp.MustCompile(`curid=(\d+)`)
	kulturminneIDRe  = regexp.MustCompile(`[?&]id=([a-f0-9-]+)`)
	boldTermRe       = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	yearRe           = regexp.MustCompile(`\b(1[0-9]{3}|20[0-2][0-9])\b`)
	kommuneRe        = regexp.MustCompile(`Kommune:\s*(\w+)`)
	kategoriRe       = regexp.MustCompile(`Kategori:\s*([^\n]+)`)
	significantWords = regexp.MustCompile(`[a-zA-ZæøåÆØÅ]{6,}`)
)

// stopWords are too generic to count as evidence of use.
var stopWords = map[string]bool{
	"kulturminner":   true,
	"kulturminne":    true,
	"riksantikvaren": true,
	"norway":         true,
	"norwegian":      true,
	"wikipedia":      true,
	"artikkel":       true,
	"source":         true,
	"kilder":         true,
	"beskrivelse":    true,
}

// ExtractSources builds source references from tool results. URLs are capped
// per tool and across the whole response, deduplicated in encounter order.
// When requireEvidence is set, a tool's URLs are only cited if its content
// appears to be used in the response text.
func ExtractSources(results []ToolResult, responseText string, requireEvidence bool) []SourceReference {
	sources := []SourceReference{}
	seen := make(map[string]bool)

	for _, result := range results {
		if requireEvidence && !sourceUsedInResponse(result.Output, responseText) {
			continue
		}

		urls := urlPattern.FindAllString(result.Output, -1)
		if len(urls) > maxURLsPerTool {
			urls = urls[:maxURLsPerTool]
		}

		for _, u := range urls {
			u = strings.TrimRight(u, ".,;:)")
			if seen[u] {
				continue
			}
			seen[u] = true

			title, provider := titleForURL(u, result)
			sources = append(sources, SourceReference{
				Title:    title,
				URL:      u,
				Provider: provider,
			})
		}
	}

	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}
	return sources
}

// titleForURL derives a human-readable title and provider from a URL, falling
// back to the tool's query argument.
func titleForURL(u string, result ToolResult) (title, provider string) {
	switch {
	case strings.Contains(u, "kulturminnesok.no"):
		// Try to find the site name preceding this URL in the output
		nameRe, err := regexp.Compile(`(?s)\*\*([^*]+)\*\*[^*]*?` + regexp.QuoteMeta(u))
		if err == nil {
			if m := nameRe.FindStringSubmatch(result.Output); m != nil {
				return strings.TrimSpace(m[1]) + " – Kulturminnesøk", "riksantikvaren"
			}
		}
		if kulturminneIDRe.MatchString(u) {
			return "Kulturminne – Kulturminnesøk", "riksantikvaren"
		}
		return "Kulturminnesøk", "riksantikvaren"

	case strings.Contains(u, "snl.no"):
		if m := snlArticleRe.FindStringSubmatch(u); m != nil {
			return articleTitle(m[1]) + " – Store norske leksikon", "snl"
		}
		return queryArgument(result, "Artikkel") + " – Store norske leksikon", "snl"

	case strings.Contains(u, "wikipedia.org"):
		if m := wikiArticleRe.FindStringSubmatch(u); m != nil {
			return articleTitle(m[1]) + " – Wikipedia", "wikipedia"
		}
		if m := wikiCuridRe.FindStringSubmatch(u); m != nil {
			return fmt.Sprintf("Wikipedia artikkel #%s", m[1]), "wikipedia"
		}
		return queryArgument(result, "Artikkel") + " – Wikipedia", "wikipedia"

	default:
		return queryArgument(result, "Kilde"), providerForTool(result.Tool)
	}
}

// articleTitle converts a URL slug into a readable article name.
func articleTitle(slug string) string {
	if decoded, err := url.PathUnescape(slug); err == nil {
		slug = decoded
	}
	return strings.ReplaceAll(slug, "_", " ")
}

// queryArgument returns the tool's query (or identifier) argument.
func queryArgument(result ToolResult, fallback string) string {
	if q, ok := result.Arguments["query"].(string); ok && q != "" {
		return q
	}
	if id, ok := result.Arguments["identifier"].(string); ok && id != "" {
		return id
	}
	return fallback
}

// sourceUsedInResponse checks whether content from a tool output appears to
// be reflected in the answer. Several heuristics are tried in turn: bold
// names, year facts, kommune and kategori fields, then significant word
// overlap.
func sourceUsedInResponse(toolOutput, responseText string) bool {
	responseLower := strings.ToLower(responseText)

	for _, m := range boldTermRe.FindAllStringSubmatch(toolOutput, -1) {
		term := strings.ToLower(strings.TrimSpace(m[1]))
		if len([]rune(term)) >= 3 && strings.Contains(responseLower, term) {
			return true
		}
	}

	for _, m := range yearRe.FindAllStringSubmatch(toolOutput, -1) {
		if strings.Contains(responseText, m[1]) {
			return true
		}
	}

	if m := kommuneRe.FindStringSubmatch(toolOutput); m != nil {
		if strings.Contains(responseLower, strings.ToLower(m[1])) {
			return true
		}
	}

	if m := kategoriRe.FindStringSubmatch(toolOutput); m != nil {
		kategori := strings.ToLower(strings.TrimSpace(m[1]))
		if len([]rune(kategori)) >= 4 && strings.Contains(responseLower, kategori) {
			return true
		}
	}

	overlap := 0
	responseWords := wordSet(responseLower)
	for word := range wordSet(strings.ToLower(toolOutput)) {
		if stopWords[word] {
			continue
		}
		if responseWords[word] {
			overlap++
			if overlap >= 2 {
				return true
			}
		}
	}

	return false
}

func wordSet(s string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range significantWords.FindAllString(s, -1) {
		words[w] = true
	}
	return words
}
