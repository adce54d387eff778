package snl

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"kulturarv/registry"
	"kulturarv/tools/params"
)

const maxBodyLength = 3000

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	boldCleaner  = strings.NewReplacer("<b>", "", "</b>", "")
	entityFixups = strings.NewReplacer("&nbsp;", " ", "&amp;", "&")
)

const searchSchema = `{
  "type": "object",
  "properties": {
    "query": {"type": "string", "description": "Search term in Norwegian"},
    "limit": {"type": "integer", "description": "Maximum number of results", "default": 10}
  },
  "required": ["query"]
}`

const articleSchema = `{
  "type": "object",
  "properties": {
    "identifier": {"type": "string", "description": "Article ID (numeric) or URL slug (e.g., 'Oslo' or 'Edvard_Munch')"}
  },
  "required": ["identifier"]
}`

// Register adds the Store norske leksikon tools to the registry.
func Register(reg *registry.Registry, c *Client) error {
	if err := reg.Register(
		"snl-search",
		"Search Store norske leksikon (Norwegian encyclopedia) for articles. Returns titles and previews.",
		json.RawMessage(searchSchema),
		c.handleSearch,
	); err != nil {
		return err
	}

	return reg.Register(
		"snl-article",
		"Get a full article from Store norske leksikon by ID or URL slug. Provides authoritative Norwegian-language content.",
		json.RawMessage(articleSchema),
		c.handleArticle,
	)
}

func (c *Client) handleSearch(ctx context.Context, args map[string]any) (string, error) {
	query := params.String(args, "query", "")
	if query == "" {
		return "", fmt.Errorf("'query' argument is required")
	}
	limit := params.Int(args, "limit", 10)

	results, err := c.Search(ctx, query, limit, 0)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return fmt.Sprintf("No SNL articles found for: %s", query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d articles in Store norske leksikon for '%s':\n\n", len(results), query)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, r.DisplayTitle())
		if snippet := boldCleaner.Replace(r.DisplaySnippet()); snippet != "" {
			fmt.Fprintf(&b, "   %s\n", snippet)
		}
		if u := r.DisplayURL(); u != "" {
			fmt.Fprintf(&b, "   %s\n", u)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Client) handleArticle(ctx context.Context, args map[string]any) (string, error) {
	identifier := params.String(args, "identifier", "")
	if identifier == "" {
		return "", fmt.Errorf("'identifier' argument is required (article ID or slug)")
	}

	article, err := c.Article(ctx, identifier)
	if err != nil {
		return "", err
	}

	title := article.Headword
	if title == "" {
		title = identifier
	}

	body := article.PlainTextBody
	if body == "" {
		body = article.XHTMLBody
	}
	if body == "" {
		body = "No content available"
	}
	if strings.Contains(body, "<") {
		body = entityFixups.Replace(htmlTagRe.ReplaceAllString(body, ""))
	}
	if runes := []rune(body); len(runes) > maxBodyLength {
		body = string(runes[:maxBodyLength]) + "... [truncated]"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	b.WriteString(body)
	b.WriteString("\n\n")

	var authorNames []string
	for _, a := range article.Authors {
		if a.FullName != "" {
			authorNames = append(authorNames, a.FullName)
		}
	}
	if len(authorNames) > 0 {
		fmt.Fprintf(&b, "**Forfatter(e):** %s\n", strings.Join(authorNames, ", "))
	}
	if article.ChangedAt != "" {
		changed := article.ChangedAt
		if len(changed) > 10 {
			changed = changed[:10]
		}
		fmt.Fprintf(&b, "**Sist oppdatert:** %s\n", changed)
	}
	if article.LicenseName != "" {
		fmt.Fprintf(&b, "**Lisens:** %s\n", article.LicenseName)
	}
	if u := firstNonEmpty(article.ArticleURL, article.Permalink); u != "" {
		fmt.Fprintf(&b, "**Kilde:** %s\n", u)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
