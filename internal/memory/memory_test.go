package memory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordEmbedder maps texts onto a tiny fixed vocabulary so similarity is predictable.
type keywordEmbedder struct {
	vocab []string
	err   error
}

func (e keywordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, len(e.vocab)+1)
		lower := strings.ToLower(t)
		for j, w := range e.vocab {
			if strings.Contains(lower, w) {
				v[j] = 1
			}
		}
		v[len(e.vocab)] = 0.01
		out[i] = v
	}
	return out, nil
}

func newTestMemory(t *testing.T) *LongTermMemory {
	t.Helper()
	m, err := Open(t.TempDir(), keywordEmbedder{vocab: []string{"solana", "bitcoin", "pasta"}})
	require.NoError(t, err)
	return m
}

func TestSearchReturnsClosestItem(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	_, err := m.Add(ctx, "User: what is solana?\nDobby (web_search): Solana is a chain.", "web_search")
	require.NoError(t, err)
	_, err = m.Add(ctx, "User: cook pasta\nDobby (general_chat): Boil water.", "general_chat")
	require.NoError(t, err)

	items, err := m.Search(ctx, "remind me about solana", 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Contains(t, items[0].Content, "Solana is a chain")
	assert.Equal(t, "web_search", items[0].Tool)
	assert.False(t, items[0].CreatedAt.IsZero())
}

func TestSearchClampsLimitToCollectionSize(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	items, err := m.Search(ctx, "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = m.Add(ctx, "bitcoin notes", "memory_recall")
	require.NoError(t, err)

	items, err = m.Search(ctx, "bitcoin", 5)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestDeleteRemovesAllChunks(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	long := strings.Repeat("solana paragraph text. ", 60) + "\n\n" + strings.Repeat("more solana. ", 40)
	id, err := m.Add(ctx, long, "web_search")
	require.NoError(t, err)
	require.Greater(t, m.Count(), 1)

	require.NoError(t, m.Delete(ctx, id))
	assert.Equal(t, 0, m.Count())
}

func TestAddPropagatesEmbedderError(t *testing.T) {
	m, err := Open("", keywordEmbedder{err: errors.New("quota")})
	require.NoError(t, err)

	_, err = m.Add(context.Background(), "hello", "general_chat")
	require.ErrorContains(t, err, "quota")
}

func TestSplitIntoChunks(t *testing.T) {
	assert.Nil(t, splitIntoChunks("   "))
	assert.Equal(t, []string{"a\n\nb"}, splitIntoChunks("a\n\n\n\nb"))

	for _, c := range splitIntoChunks(strings.Repeat("x", 2500)) {
		assert.LessOrEqual(t, len(c), maxChunkSize)
	}
}

func TestSplitIntoChunksKeepsRunesWhole(t *testing.T) {
	// an odd prefix puts every 1000-byte cut inside a three-byte rune
	text := "a" + strings.Repeat("価格", 700)
	chunks := splitIntoChunks(text)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c), "chunk split a rune")
		assert.LessOrEqual(t, len(c), maxChunkSize)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}
