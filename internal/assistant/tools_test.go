package assistant

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kayz/dobby/internal/ai"
	"github.com/kayz/dobby/internal/ai/aitest"
	"github.com/kayz/dobby/internal/memory"
	"github.com/kayz/dobby/internal/persist"
	"github.com/kayz/dobby/internal/router"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"print(1)", "print(1)"},
		{"```python\nprint(1)\n```", "print(1)"},
		{"```\nfmt.Println()\n```\n", "fmt.Println()"},
		{"  x = 1\n```", "x = 1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripFences(tt.in, "python"), tt.in)
	}
}

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, "go", normalizeLanguage(" Go.\n"))
	assert.Equal(t, "python", normalizeLanguage("``"))
	assert.Equal(t, "c", normalizeLanguage("C++"))
}

func TestGenerateCodeReturnsFencedBlock(t *testing.T) {
	llm := &aitest.Fake{Func: func(_ context.Context, req ai.Request) (string, error) {
		if strings.Contains(req.Messages[0].Content, "identify the programming language") {
			return "Go", nil
		}
		return "```go\npackage main\n```", nil
	}}
	h := newHarness(t, llm, route(router.ToolCodeGenerator, ""))

	reply := h.agent.Respond(context.Background(), "write a go hello world")

	require.NoError(t, reply.Err)
	assert.Equal(t, "Sure, here's the `go` code you requested:\n```go\npackage main\n```", reply.Text)
	assert.Equal(t, reply.Text, h.agent.ActiveContext())

	reqs := llm.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, 0.0, reqs[0].Temperature)
	assert.Contains(t, reqs[1].Messages[0].Content, "Programming Language: go")
}

func TestGenerateCodeFailure(t *testing.T) {
	h := newHarness(t, aitest.Failing(errors.New("down")), route(router.ToolCodeGenerator, ""))

	reply := h.agent.Respond(context.Background(), "write code")
	require.Error(t, reply.Err)
	assert.Equal(t, "Sorry, I failed to generate the code.", reply.Text)
}

func TestFamilyAnalyzer(t *testing.T) {
	tests := []struct {
		addr, family string
	}{
		{"0x" + strings.Repeat("1f", 20), "EVM"},
		{"bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", "Bitcoin (bech32)"},
		{"1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", "Bitcoin (base58)"},
		{"9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", "Solana-style (base58)"},
	}
	for _, tt := range tests {
		report, err := FamilyAnalyzer{}.Analyze(context.Background(), tt.addr)
		require.NoError(t, err, tt.addr)
		assert.Contains(t, report, "**Format:** "+tt.family, tt.addr)
	}

	_, err := FamilyAnalyzer{}.Analyze(context.Background(), "not-an-address")
	require.Error(t, err)
}

func TestMemoryRecallUsesLongTermMemory(t *testing.T) {
	mem := &fakeMemory{items: []memory.Item{{Content: "User: solana?\nDobby (web_search): Solana is fast."}}}
	llm := aitest.New("You asked about Solana; it is fast.")
	a, err := New(Config{
		LLM:      llm,
		Router:   &fixedRouter{decisions: []router.Decision{route(router.ToolMemoryRecall, "solana")}},
		Research: &fakeResearch{},
		Memory:   mem,
	})
	require.NoError(t, err)

	reply := a.Respond(context.Background(), "what did we say about solana?")

	require.NoError(t, reply.Err)
	assert.Equal(t, "You asked about Solana; it is fast.", reply.Text)
	assert.Contains(t, llm.Requests()[0].Messages[1].Content, "Solana is fast.")
	assert.Equal(t, reply.Text, a.ActiveContext())
}

func TestMemoryRecallFallsBackToKeywordSearch(t *testing.T) {
	store, err := persist.NewStore(filepath.Join(t.TempDir(), "s.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	sess, _ := store.GetOrCreateSession("old")
	require.NoError(t, store.AddMessage(sess.ID, persist.Message{Role: "assistant", Content: "Nillion raised $50M"}))

	llm := aitest.New("Nillion raised $50M, as we discussed.")
	a, err := New(Config{
		LLM:      llm,
		Router:   &fixedRouter{decisions: []router.Decision{route(router.ToolMemoryRecall, "remember nillion")}},
		Research: &fakeResearch{},
		Store:    store,
	})
	require.NoError(t, err)

	reply := a.Respond(context.Background(), "remember nillion?")
	require.NoError(t, reply.Err)
	assert.Contains(t, llm.Requests()[0].Messages[1].Content, "assistant: Nillion raised $50M")
}

func TestMemoryRecallWithNothingFound(t *testing.T) {
	llm := aitest.New("unused")
	a, err := New(Config{
		LLM:      llm,
		Router:   &fixedRouter{decisions: []router.Decision{route(router.ToolMemoryRecall, "")}},
		Research: &fakeResearch{},
		Memory:   &fakeMemory{},
	})
	require.NoError(t, err)

	reply := a.Respond(context.Background(), "remember the thing?")
	assert.Equal(t, noMemoriesMessage, reply.Text)
	assert.Equal(t, 0, llm.Calls())
}

func TestKeywords(t *testing.T) {
	assert.Equal(t, []string{"solana", "price"}, keywords("What did we say about Solana price?"))
	assert.Empty(t, keywords("remember me?"))
}
