package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kayz/dobby/internal/ai"
	"github.com/kayz/dobby/internal/router"
)

type stubRouter struct{ history []ai.Message }

func (s *stubRouter) Classify(_ context.Context, utterance string, history []ai.Message) router.Decision {
	s.history = history
	return router.Decision{Tool: router.ToolWebSearch, Query: &utterance, Confidence: 0.9, Method: router.MethodLLM}
}

type stubResearch struct{ got [3]string }

func (s *stubResearch) Run(_ context.Context, q, sq, prev string) string {
	s.got = [3]string{q, sq, prev}
	return "# Key Points\nreport"
}

type stubReader struct{ err error }

func (s stubReader) Summarize(_ context.Context, u string) (string, error) {
	if s.err != nil {
		return "Sorry, I could not fetch data from that URL.", s.err
	}
	return "### Web Page Summary\n" + u, nil
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return tc.Text
}

func TestRouteIntent(t *testing.T) {
	r := &stubRouter{}
	h := &Handlers{Router: r}

	res, err := h.RouteIntent(context.Background(), call(map[string]any{"utterance": "latest btc price", "context": "Source: x"}))
	if err != nil || res.IsError {
		t.Fatalf("RouteIntent: err=%v result=%+v", err, res)
	}

	var d router.Decision
	if err := json.Unmarshal([]byte(text(t, res)), &d); err != nil {
		t.Fatalf("decision is not JSON: %v", err)
	}
	if d.Tool != router.ToolWebSearch || d.QueryOr("") != "latest btc price" {
		t.Fatalf("unexpected decision %+v", d)
	}
	if len(r.history) != 2 || r.history[0].Role != ai.RoleAssistant {
		t.Fatalf("expected context then utterance in history, got %+v", r.history)
	}
}

func TestToolsRejectMissingArguments(t *testing.T) {
	h := &Handlers{Router: &stubRouter{}, Research: &stubResearch{}, Reader: stubReader{}}
	for name, fn := range map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"route_intent": h.RouteIntent,
		"web_research": h.WebResearch,
		"read_url":     h.ReadURL,
	} {
		res, err := fn(context.Background(), call(map[string]any{}))
		if err != nil {
			t.Fatalf("%s returned error: %v", name, err)
		}
		if !res.IsError {
			t.Fatalf("%s accepted empty arguments", name)
		}
	}
}

func TestWebResearchPassesArguments(t *testing.T) {
	rs := &stubResearch{}
	h := &Handlers{Research: rs}

	res, err := h.WebResearch(context.Background(), call(map[string]any{
		"question":         "who funds acme?",
		"query":            "acme investors",
		"previous_context": "earlier",
	}))
	if err != nil || res.IsError {
		t.Fatalf("WebResearch: err=%v", err)
	}
	if rs.got != [3]string{"who funds acme?", "acme investors", "earlier"} {
		t.Fatalf("unexpected args %v", rs.got)
	}
	if text(t, res) != "# Key Points\nreport" {
		t.Fatalf("unexpected text %q", text(t, res))
	}
}

func TestReadURLReportsFailure(t *testing.T) {
	h := &Handlers{Reader: stubReader{err: errors.New("blocked")}}

	res, err := h.ReadURL(context.Background(), call(map[string]any{"url": "http://127.0.0.1"}))
	if err != nil {
		t.Fatalf("ReadURL returned unexpected error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected failed fetch to return tool error")
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	s := NewServer("test", &Handlers{})
	if s == nil {
		t.Fatal("nil server")
	}
}
