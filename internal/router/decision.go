package router

import "fmt"

// Method records which stage produced a Decision.
type Method string

const (
	MethodRules    Method = "rules"
	MethodLLM      Method = "llm"
	MethodFallback Method = "fallback"
)

// Decision is the routing outcome for one utterance. Reasoning is diagnostic only.
type Decision struct {
	Tool            Tool    `json:"tool"`
	Query           *string `json:"query"`
	Confidence      float64 `json:"confidence"`
	Reasoning       string  `json:"reasoning"`
	UseContext      bool    `json:"use_context"`
	PreviousResults *string `json:"previous_results,omitempty"`
	Method          Method  `json:"method"`
}

// QueryOr returns the query, or fallback when there is none.
func (d Decision) QueryOr(fallback string) string {
	if d.Query == nil {
		return fallback
	}
	return *d.Query
}

// PreviousOr returns the attached context, or fallback when there is none.
func (d Decision) PreviousOr(fallback string) string {
	if d.PreviousResults == nil {
		return fallback
	}
	return *d.PreviousResults
}

func (d Decision) String() string {
	return fmt.Sprintf("%s (confidence %.2f, %s)", d.Tool, d.Confidence, d.Method)
}

func strPtr(s string) *string {
	return &s
}
