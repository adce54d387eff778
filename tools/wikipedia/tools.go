package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"kulturarv/registry"
	"kulturarv/tools/params"
)

const defaultLanguage = "no"

var snippetCleaner = strings.NewReplacer(`<span class="searchmatch">`, "", "</span>", "")

const searchSchema = `{
  "type": "object",
  "properties": {
    "query": {"type": "string", "description": "Search query"},
    "language": {"type": "string", "description": "Wikipedia language code (e.g., 'no' for Norwegian, 'en' for English)", "default": "no"},
    "limit": {"type": "integer", "description": "Maximum number of results", "default": 10}
  },
  "required": ["query"]
}`

const summarySchema = `{
  "type": "object",
  "properties": {
    "title": {"type": "string", "description": "Article title (exact match)"},
    "language": {"type": "string", "description": "Wikipedia language code", "default": "no"}
  },
  "required": ["title"]
}`

const geosearchSchema = `{
  "type": "object",
  "properties": {
    "latitude": {"type": "number", "description": "Latitude in decimal degrees"},
    "longitude": {"type": "number", "description": "Longitude in decimal degrees"},
    "radius": {"type": "integer", "description": "Search radius in meters (max 10000)", "default": 1000},
    "language": {"type": "string", "description": "Wikipedia language code", "default": "no"},
    "limit": {"type": "integer", "description": "Maximum number of results", "default": 10}
  },
  "required": ["latitude", "longitude"]
}`

// Register adds the Wikipedia tools to the registry.
func Register(reg *registry.Registry, c *Client) error {
	if err := reg.Register(
		"wikipedia-search",
		"Search Wikipedia for articles matching a query. Returns article titles and snippets.",
		json.RawMessage(searchSchema),
		c.handleSearch,
	); err != nil {
		return err
	}

	if err := reg.Register(
		"wikipedia-summary",
		"Get a summary/extract of a Wikipedia article by title.",
		json.RawMessage(summarySchema),
		c.handleSummary,
	); err != nil {
		return err
	}

	return reg.Register(
		"wikipedia-geosearch",
		"Find Wikipedia articles near geographic coordinates. Useful for finding information about landmarks and places.",
		json.RawMessage(geosearchSchema),
		c.handleGeoSearch,
	)
}

func (c *Client) handleSearch(ctx context.Context, args map[string]any) (string, error) {
	query := params.String(args, "query", "")
	if query == "" {
		return "", fmt.Errorf("'query' argument is required")
	}
	language := params.String(args, "language", defaultLanguage)
	limit := params.Int(args, "limit", 10)

	results, err := c.Search(ctx, language, query, limit, 0)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return fmt.Sprintf("No Wikipedia articles found for: %s", query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d Wikipedia articles for '%s':\n\n", len(results), query)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, r.Title)
		if snippet := snippetCleaner.Replace(r.Snippet); snippet != "" {
			fmt.Fprintf(&b, "   %s...\n", snippet)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Client) handleSummary(ctx context.Context, args map[string]any) (string, error) {
	title := params.String(args, "title", "")
	if title == "" {
		return "", fmt.Errorf("'title' argument is required")
	}
	language := params.String(args, "language", defaultLanguage)

	s, err := c.Summary(ctx, language, title)
	if err != nil {
		return "", err
	}
	if s == nil {
		return fmt.Sprintf("Article not found: %s", title), nil
	}

	articleTitle := s.Title
	if articleTitle == "" {
		articleTitle = title
	}
	extract := s.Extract
	if extract == "" {
		extract = "No content available"
	}
	pageURL := s.FullURL
	if pageURL == "" {
		pageURL = fmt.Sprintf("https://%s.wikipedia.org/wiki/%s", language, strings.ReplaceAll(title, " ", "_"))
	}

	return fmt.Sprintf("# %s\n\n%s\n\n**Source:** %s", articleTitle, extract, pageURL), nil
}

func (c *Client) handleGeoSearch(ctx context.Context, args map[string]any) (string, error) {
	lat, okLat := params.Float(args, "latitude")
	lon, okLon := params.Float(args, "longitude")
	if !okLat || !okLon {
		return "", fmt.Errorf("'latitude' and 'longitude' arguments are required")
	}
	language := params.String(args, "language", defaultLanguage)
	radius := params.Int(args, "radius", 1000)
	limit := params.Int(args, "limit", 10)

	results, err := c.GeoSearch(ctx, language, lat, lon, radius, limit)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return fmt.Sprintf("No Wikipedia articles found within %dm of (%v, %v)", radius, lat, lon), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d Wikipedia articles near (%v, %v):\n\n", len(results), lat, lon)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. **%s** (%.0fm away)\n", i+1, r.Title, r.Dist)
		fmt.Fprintf(&b, "   https://%s.wikipedia.org/?curid=%d\n\n", language, r.PageID)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
