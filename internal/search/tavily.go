package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

type TavilyEngine struct {
	baseEngine
	client *http.Client
}

func NewTavilyEngine(config EngineConfig) (Engine, error) {
	if config.APIKey == "" {
		return nil, errors.New("tavily: api key is required")
	}
	return &TavilyEngine{
		baseEngine: newBaseEngine(config, "https://api.tavily.com"),
		client:     defaultClient,
	}, nil
}

func (e *TavilyEngine) Type() string {
	return "tavily"
}

func (e *TavilyEngine) Search(ctx context.Context, query string, limit int) (*Response, error) {
	startTime := time.Now()

	requestBody := map[string]interface{}{
		"api_key":        e.apiKey,
		"query":          query,
		"search_depth":   "basic",
		"include_answer": false,
		"include_images": false,
		"max_results":    limit,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, e.baseURL+"/search", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := doRequest(ctx, e.client, req)
	if err != nil {
		return nil, fmt.Errorf("tavily: %w", err)
	}

	var apiResponse struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}

	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, fmt.Errorf("tavily: failed to parse response: %w", err)
	}

	hits := make([]Hit, 0, len(apiResponse.Results))
	for _, r := range apiResponse.Results {
		hits = append(hits, Hit{
			Link:    r.URL,
			Title:   r.Title,
			Snippet: r.Content,
		})
	}

	return &Response{
		Query:          query,
		Engine:         e.name,
		OrganicResults: hits,
		Duration:       time.Since(startTime),
	}, nil
}
