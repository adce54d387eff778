// Package snl talks to the Store norske leksikon public API.
package snl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://snl.no"

type Client struct {
	http    *http.Client
	BaseURL string
}

func New(timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		BaseURL: defaultBaseURL,
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("snl request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("snl returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("snl response decode failed: %w", err)
	}
	return nil
}

// SearchResult is one encyclopedia search hit. The API has shipped two field
// generations, so both spellings are kept.
type SearchResult struct {
	Headword          string `json:"headword"`
	Title             string `json:"title"`
	Snippet           string `json:"snippet"`
	FirstTwoSentences string `json:"first_two_sentences"`
	ArticleURL        string `json:"article_url"`
	Permalink         string `json:"permalink"`
}

// DisplayTitle picks the best available title field.
func (r SearchResult) DisplayTitle() string {
	if r.Headword != "" {
		return r.Headword
	}
	if r.Title != "" {
		return r.Title
	}
	return "Unknown"
}

// DisplaySnippet picks the best available preview field.
func (r SearchResult) DisplaySnippet() string {
	if r.Snippet != "" {
		return r.Snippet
	}
	return r.FirstTwoSentences
}

// DisplayURL picks the best available article link.
func (r SearchResult) DisplayURL() string {
	if r.ArticleURL != "" {
		return r.ArticleURL
	}
	return r.Permalink
}

// Search queries the encyclopedia.
func (c *Client) Search(ctx context.Context, query string, limit, offset int) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var results []SearchResult
	if err := c.get(ctx, "/api/v1/search", params, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Author of an encyclopedia article.
type Author struct {
	FullName string `json:"full_name"`
}

// Article is a full encyclopedia entry.
type Article struct {
	Headword      string   `json:"headword"`
	PlainTextBody string   `json:"plain_text_body"`
	XHTMLBody     string   `json:"xhtml_body"`
	ArticleURL    string   `json:"article_url"`
	Permalink     string   `json:"permalink"`
	Authors       []Author `json:"authors"`
	LicenseName   string   `json:"license_name"`
	ChangedAt     string   `json:"changed_at"`
}

// Article fetches a full entry by numeric ID or URL slug.
func (c *Client) Article(ctx context.Context, identifier string) (*Article, error) {
	var path string
	if isNumeric(identifier) {
		path = "/api/v1/article/" + identifier
	} else {
		path = "/" + url.PathEscape(identifier) + ".json"
	}

	var article Article
	if err := c.get(ctx, path, nil, &article); err != nil {
		return nil, err
	}
	return &article, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
