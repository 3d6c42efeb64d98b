// Package memory is the optional long-term store behind memory recall. Items
// are chunked, embedded and kept in a persistent chromem-go collection.
package memory

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"github.com/kayz/dobby/internal/logger"
)

const (
	collectionName = "dobby-memory"
	maxChunkSize   = 1000
	maxChunks      = 64
	defaultLimit   = 5
)

// Item is one remembered exchange.
type Item struct {
	ID        string
	Content   string
	Tool      string
	CreatedAt time.Time
	Score     float32
}

// LongTermMemory provides semantic recall over past exchanges.
type LongTermMemory struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   Embedder
	now        func() time.Time
}

// Open opens (or creates) a persistent store under dir. An empty dir keeps
// everything in memory.
func Open(dir string, embedder Embedder) (*LongTermMemory, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}

	var (
		db  *chromem.DB
		err error
	)
	if dir == "" {
		db = chromem.NewDB()
	} else {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		db, err = chromem.NewPersistentDB(dir, false)
		if err != nil {
			return nil, fmt.Errorf("failed to create chromem DB: %w", err)
		}
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get/create collection: %w", err)
	}

	return &LongTermMemory{
		db:         db,
		collection: collection,
		embedder:   embedder,
		now:        time.Now,
	}, nil
}

// Add stores content produced by tool and returns the new item's id.
func (m *LongTermMemory) Add(ctx context.Context, content, tool string) (string, error) {
	chunks := splitIntoChunks(content)
	if len(chunks) == 0 {
		return "", nil
	}

	embeddings, err := m.embedder.Embed(ctx, chunks)
	if err != nil {
		return "", fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return "", fmt.Errorf("got %d embeddings for %d chunks", len(embeddings), len(chunks))
	}

	id := uuid.NewString()
	created := m.now().UTC().Format(time.RFC3339)

	docs := make([]chromem.Document, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, chromem.Document{
			ID:        fmt.Sprintf("%s-%d", id, i),
			Embedding: embeddings[i],
			Content:   chunk,
			Metadata: map[string]string{
				"id":         id,
				"tool":       tool,
				"created_at": created,
				"chunk_idx":  strconv.Itoa(i),
			},
		})
	}

	if err := m.collection.AddDocuments(ctx, docs, 1); err != nil {
		return "", fmt.Errorf("failed to add documents: %w", err)
	}

	logger.Debug("[Memory] Added %s (%d chunks)", id, len(chunks))
	return id, nil
}

// Search returns up to limit chunks most similar to query.
func (m *LongTermMemory) Search(ctx context.Context, query string, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	// chromem rejects nResults larger than the collection
	if n := m.collection.Count(); n < limit {
		limit = n
	}
	if limit == 0 || strings.TrimSpace(query) == "" {
		return nil, nil
	}

	emb, err := m.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to create query embedding: %w", err)
	}
	if len(emb) == 0 {
		return nil, fmt.Errorf("no query embedding returned")
	}

	results, err := m.collection.QueryEmbedding(ctx, emb[0], limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	items := make([]Item, 0, len(results))
	for _, res := range results {
		items = append(items, toItem(res))
	}

	logger.Debug("[Memory] Found %d items for query: %s", len(items), query)
	return items, nil
}

// Delete removes every chunk of the item with the given id.
func (m *LongTermMemory) Delete(ctx context.Context, id string) error {
	if err := m.collection.Delete(ctx, map[string]string{"id": id}, nil); err != nil {
		return fmt.Errorf("failed to delete memory: %w", err)
	}
	return nil
}

// Count returns the number of stored chunks.
func (m *LongTermMemory) Count() int {
	return m.collection.Count()
}

func toItem(res chromem.Result) Item {
	item := Item{
		ID:      res.Metadata["id"],
		Content: res.Content,
		Tool:    res.Metadata["tool"],
		Score:   res.Similarity,
	}
	if t, err := time.Parse(time.RFC3339, res.Metadata["created_at"]); err == nil {
		item.CreatedAt = t
	}
	return item
}

// splitIntoChunks splits on paragraphs, then on sentences for oversized paragraphs.
func splitIntoChunks(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	current := ""

	flush := func() {
		if current != "" {
			chunks = append(chunks, current)
			current = ""
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if len(current)+len(para)+2 <= maxChunkSize {
			if current != "" {
				current += "\n\n"
			}
			current += para
			continue
		}

		flush()
		if len(para) <= maxChunkSize {
			current = para
			continue
		}

		for _, sent := range strings.SplitAfter(para, ". ") {
			if len(current)+len(sent) > maxChunkSize {
				flush()
			}
			for len(sent) > maxChunkSize {
				cut := runeBoundary(sent, maxChunkSize)
				chunks = append(chunks, sent[:cut])
				sent = sent[cut:]
			}
			current += sent
		}
		flush()
	}
	flush()

	if len(chunks) > maxChunks {
		chunks = chunks[:maxChunks]
	}
	return chunks
}

// runeBoundary backs n off to the start of the rune it falls in.
func runeBoundary(s string, n int) int {
	if n >= len(s) {
		return len(s)
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}
