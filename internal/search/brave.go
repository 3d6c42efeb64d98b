package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// BraveEngine queries the Brave web search API.
type BraveEngine struct {
	baseEngine
	client *http.Client
}

func NewBraveEngine(config EngineConfig) (Engine, error) {
	if config.APIKey == "" {
		return nil, errors.New("brave: api key is required")
	}
	return &BraveEngine{
		baseEngine: newBaseEngine(config, "https://api.search.brave.com/res/v1/web/search"),
		client:     defaultClient,
	}, nil
}

func (e *BraveEngine) Type() string {
	return "brave"
}

func (e *BraveEngine) Search(ctx context.Context, query string, limit int) (*Response, error) {
	start := time.Now()

	u, err := url.Parse(e.baseURL)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 20 {
		limit = 10
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("count", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", e.apiKey)

	body, err := doRequest(ctx, e.client, req)
	if err != nil {
		return nil, fmt.Errorf("brave: %w", err)
	}

	var apiResponse struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, fmt.Errorf("brave: failed to parse response: %w", err)
	}

	hits := make([]Hit, 0, len(apiResponse.Web.Results))
	for _, r := range apiResponse.Web.Results {
		hits = append(hits, Hit{
			Link:    r.URL,
			Title:   strings.TrimSpace(r.Title),
			Snippet: stripTags(r.Description),
		})
	}

	return &Response{
		Query:          query,
		Engine:         e.name,
		OrganicResults: hits,
		Duration:       time.Since(start),
	}, nil
}

// stripTags removes the <strong> highlighting Brave puts in descriptions.
func stripTags(s string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>' && inTag:
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}
