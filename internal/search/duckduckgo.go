package search

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DuckDuckGoEngine scrapes the keyless DuckDuckGo HTML endpoint.
type DuckDuckGoEngine struct {
	baseEngine
	client *http.Client
}

func NewDuckDuckGoEngine(config EngineConfig) (Engine, error) {
	return &DuckDuckGoEngine{
		baseEngine: newBaseEngine(config, "https://html.duckduckgo.com/html/"),
		client:     defaultClient,
	}, nil
}

func (e *DuckDuckGoEngine) Type() string {
	return "duckduckgo"
}

func (e *DuckDuckGoEngine) Search(ctx context.Context, query string, limit int) (*Response, error) {
	start := time.Now()

	req, err := http.NewRequest(http.MethodGet, e.baseURL+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")

	body, err := doRequest(ctx, e.client, req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: parse html: %w", err)
	}

	var hits []Hit
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if limit > 0 && len(hits) >= limit {
			return false
		}
		if s.HasClass("result--ad") {
			return true
		}
		a := s.Find("a.result__a").First()
		href, _ := a.Attr("href")
		hits = append(hits, Hit{
			Link:    resolveDDGLink(href),
			Title:   strings.TrimSpace(a.Text()),
			Snippet: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
		})
		return true
	})

	return &Response{
		Query:          query,
		Engine:         e.name,
		OrganicResults: hits,
		Duration:       time.Since(start),
	}, nil
}

// resolveDDGLink unwraps the /l/?uddg= redirect DuckDuckGo puts around result links.
func resolveDDGLink(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" && strings.HasPrefix(u.Path, "/l/") {
		return target
	}
	return href
}
