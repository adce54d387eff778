// cleaner.go
//
// Response post-processing. Models sometimes append their own source list or
// related-question section despite instructions; those sections are lifted
// into structured fields and stripped from the answer text.

package agent

import (
	"regexp"
	"strings"
)

const maxRelatedQueries = 5

// Sections removed from the answer text, Norwegian and English variants.
var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\n+##\s*Kilder\s*\n[\s\S]*$`),
	regexp.MustCompile(`(?i)\n+##\s*Sources\s*\n[\s\S]*$`),
	regexp.MustCompile(`(?i)\n+##\s*Referanser\s*\n[\s\S]*$`),
}

var relatedRemovalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\n+---\s*\n+\*\*Relaterte spørsmål[:*]*\*\*\s*\n[\s\S]*$`),
	regexp.MustCompile(`(?i)\n+---\s*\n+\*\*Related questions[:*]*\*\*\s*\n[\s\S]*$`),
	regexp.MustCompile(`(?i)\n+\*\*Relaterte spørsmål[:*]*\*\*\s*\n(?:[-*]\s*.+\n?)+`),
	regexp.MustCompile(`(?i)\n+\*\*Related questions[:*]*\*\*\s*\n(?:[-*]\s*.+\n?)+`),
	regexp.MustCompile(`(?i)\n+##\s*Relaterte spørsmål\s*\n[\s\S]*$`),
	regexp.MustCompile(`(?i)\n+##\s*Related questions\s*\n[\s\S]*$`),
}

var trailingRuleRe = regexp.MustCompile(`\n+---\s*$`)

// Related-question section headers followed by their list items.
var relatedExtractionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\*\*Relaterte spørsmål:\*\*\s*\n((?:[-*]\s*.+\n?)+)`),
	regexp.MustCompile(`(?i)\*\*Related questions:\*\*\s*\n((?:[-*]\s*.+\n?)+)`),
	regexp.MustCompile(`(?i)##\s*Relaterte spørsmål\s*\n((?:[-*]\s*.+\n?)+)`),
}

var relatedItemRe = regexp.MustCompile(`[-*]\s*(.+?)(?:\?|\n|$)`)

// CleanResponse strips source and related-question sections from the answer
// text. Those are returned to the client as structured fields instead.
func CleanResponse(text string) string {
	cleaned := text
	for _, p := range sectionPatterns {
		cleaned = p.ReplaceAllString(cleaned, "")
	}
	for _, p := range relatedRemovalPatterns {
		cleaned = p.ReplaceAllString(cleaned, "")
	}
	cleaned = trailingRuleRe.ReplaceAllString(cleaned, "")
	return strings.TrimRight(cleaned, " \t\n")
}

// ExtractRelatedQueries pulls follow-up questions out of the answer text.
// Each query ends with a question mark; at most five are returned.
func ExtractRelatedQueries(text string) []string {
	queries := []string{}

	for _, p := range relatedExtractionPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		for _, item := range relatedItemRe.FindAllStringSubmatch(m[1], -1) {
			q := strings.TrimSpace(item[1])
			if q == "" {
				continue
			}
			if !strings.HasSuffix(q, "?") {
				q += "?"
			}
			queries = append(queries, q)
		}
		break
	}

	if len(queries) > maxRelatedQueries {
		queries = queries[:maxRelatedQueries]
	}
	return queries
}
