// Package tools exposes routing, research and page reading as MCP tools.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kayz/dobby/internal/ai"
	"github.com/kayz/dobby/internal/router"
)

// Classifier routes an utterance.
type Classifier interface {
	Classify(ctx context.Context, utterance string, history []ai.Message) router.Decision
}

// Researcher runs the web research pipeline.
type Researcher interface {
	Run(ctx context.Context, userQuery, searchQuery, previousContext string) string
}

// PageReader summarizes one URL.
type PageReader interface {
	Summarize(ctx context.Context, rawURL string) (string, error)
}

// Handlers backs the MCP tools.
type Handlers struct {
	Router   Classifier
	Research Researcher
	Reader   PageReader
}

// RouteIntent classifies an utterance and returns the decision as JSON.
func (h *Handlers) RouteIntent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	utterance, ok := req.Params.Arguments["utterance"].(string)
	if !ok || strings.TrimSpace(utterance) == "" {
		return mcp.NewToolResultError("utterance is required"), nil
	}

	var history []ai.Message
	if raw, ok := req.Params.Arguments["context"].(string); ok && raw != "" {
		history = append(history, ai.Assistant(raw))
	}
	history = append(history, ai.User(utterance))

	d := h.Router.Classify(ctx, utterance, history)
	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode decision: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// WebResearch runs the full plan, search and synthesis pipeline.
func (h *Handlers) WebResearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, ok := req.Params.Arguments["question"].(string)
	if !ok || strings.TrimSpace(question) == "" {
		return mcp.NewToolResultError("question is required"), nil
	}
	query, _ := req.Params.Arguments["query"].(string)
	previous, _ := req.Params.Arguments["previous_context"].(string)

	return mcp.NewToolResultText(h.Research.Run(ctx, question, query, previous)), nil
}

// ReadURL fetches and summarizes a web page.
func (h *Handlers) ReadURL(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	urlStr, ok := req.Params.Arguments["url"].(string)
	if !ok || strings.TrimSpace(urlStr) == "" {
		return mcp.NewToolResultError("url is required"), nil
	}

	summary, err := h.Reader.Summarize(ctx, urlStr)
	if err != nil {
		return mcp.NewToolResultError(summary), nil
	}
	return mcp.NewToolResultText(summary), nil
}

// NewServer registers every tool on a fresh MCP server.
func NewServer(version string, h *Handlers) *server.MCPServer {
	s := server.NewMCPServer("dobby", version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("route_intent",
		mcp.WithDescription("Decide which capability (web_search, context_answer, code_generator, readle, memory_recall, address_analyzer, general_chat) should handle an utterance."),
		mcp.WithString("utterance", mcp.Required(), mcp.Description("The user's message")),
		mcp.WithString("context", mcp.Description("Previous assistant answer the message may follow up on")),
	), h.RouteIntent)

	s.AddTool(mcp.NewTool("web_research",
		mcp.WithDescription("Research a question on the web: plan several queries, search them in parallel, score sources and write a cited report."),
		mcp.WithString("question", mcp.Required(), mcp.Description("The question to answer")),
		mcp.WithString("query", mcp.Description("Search query to use instead of the question")),
		mcp.WithString("previous_context", mcp.Description("Earlier report a follow-up question may be answerable from")),
	), h.WebResearch)

	s.AddTool(mcp.NewTool("read_url",
		mcp.WithDescription("Fetch a public web page and return an analytical summary."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL to read")),
	), h.ReadURL)

	return s
}
