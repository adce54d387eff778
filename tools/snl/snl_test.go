package snl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New(5 * time.Second)
	c.BaseURL = srv.URL
	return c, srv
}

func TestSearchFormatsResults(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("query") != "stavkirke" {
			t.Errorf("query = %q", r.URL.Query().Get("query"))
		}
		w.Write([]byte(`[
			{"headword":"stavkirke","first_two_sentences":"En <b>stavkirke</b> er en trekirke.","article_url":"https://snl.no/stavkirke"},
			{"headword":"Urnes stavkirke","first_two_sentences":"Norges eldste stavkirke.","article_url":"https://snl.no/Urnes_stavkirke"}
		]`))
	})
	defer srv.Close()

	out, err := c.handleSearch(context.Background(), map[string]any{"query": "stavkirke"})
	if err != nil {
		t.Fatalf("handleSearch: %v", err)
	}
	if !strings.Contains(out, "Found 2 articles in Store norske leksikon for 'stavkirke'") {
		t.Errorf("missing header: %q", out)
	}
	if !strings.Contains(out, "1. **stavkirke**") || !strings.Contains(out, "https://snl.no/Urnes_stavkirke") {
		t.Errorf("missing entries: %q", out)
	}
	if strings.Contains(out, "<b>") {
		t.Errorf("bold tags not stripped: %q", out)
	}
}

func TestSearchNoResults(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	defer srv.Close()

	out, err := c.handleSearch(context.Background(), map[string]any{"query": "xyzzy"})
	if err != nil {
		t.Fatalf("handleSearch: %v", err)
	}
	if out != "No SNL articles found for: xyzzy" {
		t.Errorf("out = %q", out)
	}
}

func TestArticleBySlug(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Urnes_stavkirke.json" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"headword":"Urnes stavkirke",
			"xhtml_body":"<p>Urnes stavkirke er Norges&nbsp;eldste stavkirke.</p>",
			"article_url":"https://snl.no/Urnes_stavkirke",
			"authors":[{"full_name":"Ola Nordmann"}],
			"license_name":"fri gjenbruk",
			"changed_at":"2024-03-15T10:22:00Z"
		}`))
	})
	defer srv.Close()

	out, err := c.handleArticle(context.Background(), map[string]any{"identifier": "Urnes_stavkirke"})
	if err != nil {
		t.Fatalf("handleArticle: %v", err)
	}
	for _, want := range []string{
		"# Urnes stavkirke",
		"Urnes stavkirke er Norges eldste stavkirke.",
		"**Forfatter(e):** Ola Nordmann",
		"**Sist oppdatert:** 2024-03-15",
		"**Lisens:** fri gjenbruk",
		"**Kilde:** https://snl.no/Urnes_stavkirke",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
	if strings.Contains(out, "<p>") {
		t.Errorf("HTML not stripped: %q", out)
	}
}

func TestArticleByNumericID(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/article/12345" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"headword":"Oslo","plain_text_body":"Oslo er Norges hovedstad."}`))
	})
	defer srv.Close()

	out, err := c.handleArticle(context.Background(), map[string]any{"identifier": "12345"})
	if err != nil {
		t.Fatalf("handleArticle: %v", err)
	}
	if !strings.Contains(out, "Oslo er Norges hovedstad.") {
		t.Errorf("out = %q", out)
	}
}

func TestArticleTruncatesLongBody(t *testing.T) {
	long := strings.Repeat("a", maxBodyLength+500)
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"headword":"Lang","plain_text_body":"` + long + `"}`))
	})
	defer srv.Close()

	out, err := c.handleArticle(context.Background(), map[string]any{"identifier": "Lang"})
	if err != nil {
		t.Fatalf("handleArticle: %v", err)
	}
	if !strings.Contains(out, "... [truncated]") {
		t.Error("long body not truncated")
	}
}

func TestArticleRequiresIdentifier(t *testing.T) {
	c := New(time.Second)
	if _, err := c.handleArticle(context.Background(), map[string]any{}); err == nil {
		t.Error("missing identifier should error")
	}
}

func TestIsNumeric(t *testing.T) {
	if !isNumeric("12345") || isNumeric("Oslo") || isNumeric("") || isNumeric("12a") {
		t.Error("isNumeric misclassifies")
	}
}
