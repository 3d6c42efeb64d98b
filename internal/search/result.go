package search

import "time"

// Hit is one organic search result. Missing fields are empty strings.
type Hit struct {
	Link    string `json:"link"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

type Response struct {
	Query          string        `json:"query"`
	Engine         string        `json:"engine"`
	OrganicResults []Hit         `json:"organic_results"`
	Duration       time.Duration `json:"duration"`
}
