// Package wikipedia talks to the MediaWiki API for article search, summaries
// and geographic lookups.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	maxSearchLimit = 500
	maxGeoRadius   = 10000
)

// Client queries a Wikipedia instance. The language is chosen per call since
// each language edition lives on its own host.
type Client struct {
	http *http.Client

	// BaseURL overrides the per-language endpoint when set. Tests point it
	// at a local server.
	BaseURL string
}

func New(timeout time.Duration) *Client {
	return &Client{http: &http.Client{Timeout: timeout}}
}

func (c *Client) endpoint(language string) string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if language == "" {
		language = "no"
	}
	return fmt.Sprintf("https://%s.wikipedia.org/w/api.php", language)
}

func (c *Client) get(ctx context.Context, language string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(language)+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("wikipedia request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wikipedia returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("wikipedia response decode failed: %w", err)
	}
	return nil
}

// SearchResult is one hit from a full-text search.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	PageID  int    `json:"pageid"`
}

// Search runs a full-text search against the given language edition.
func (c *Client) Search(ctx context.Context, language, query string, limit, offset int) ([]SearchResult, error) {
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", strconv.Itoa(limit))
	params.Set("sroffset", strconv.Itoa(offset))
	params.Set("format", "json")

	var out struct {
		Query struct {
			Search []SearchResult `json:"search"`
		} `json:"query"`
	}
	if err := c.get(ctx, language, params, &out); err != nil {
		return nil, err
	}
	return out.Query.Search, nil
}

// Summary is the intro extract of an article.
type Summary struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	FullURL string `json:"fullurl"`
}

// Summary fetches the plain-text intro of an article by exact title. Returns
// nil when no article matches.
func (c *Client) Summary(ctx context.Context, language, title string) (*Summary, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts|info|pageimages")
	params.Set("exintro", "true")
	params.Set("explaintext", "true")
	params.Set("titles", title)
	params.Set("inprop", "url")
	params.Set("pithumbsize", "300")
	params.Set("format", "json")

	var out struct {
		Query struct {
			Pages map[string]Summary `json:"pages"`
		} `json:"query"`
	}
	if err := c.get(ctx, language, params, &out); err != nil {
		return nil, err
	}

	// The pages map is keyed by page ID, "-1" means no match.
	for id, page := range out.Query.Pages {
		if id == "-1" {
			return nil, nil
		}
		return &page, nil
	}
	return nil, nil
}

// GeoResult is an article found near a coordinate.
type GeoResult struct {
	Title  string  `json:"title"`
	Dist   float64 `json:"dist"`
	PageID int     `json:"pageid"`
}

// GeoSearch finds articles within radius meters of a coordinate.
func (c *Client) GeoSearch(ctx context.Context, language string, lat, lon float64, radius, limit int) ([]GeoResult, error) {
	if radius > maxGeoRadius {
		radius = maxGeoRadius
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "geosearch")
	params.Set("gscoord", fmt.Sprintf("%v|%v", lat, lon))
	params.Set("gsradius", strconv.Itoa(radius))
	params.Set("gslimit", strconv.Itoa(limit))
	params.Set("format", "json")

	var out struct {
		Query struct {
			GeoSearch []GeoResult `json:"geosearch"`
		} `json:"query"`
	}
	if err := c.get(ctx, language, params, &out); err != nil {
		return nil, err
	}
	return out.Query.GeoSearch, nil
}
