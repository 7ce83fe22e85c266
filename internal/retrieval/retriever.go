package retrieval

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dev.cogito.requiem/internal/vectordb/chroma"
)

// promptChunkLimit bounds how much of each hit is injected into a prompt.
const promptChunkLimit = 600

// Config tunes the knowledge retriever.
type Config struct {
	Collection string `yaml:"collection" json:"collection"`
	TopK       int    `yaml:"top_k" json:"top_k"`
}

// DefaultConfig returns the retriever defaults.
func DefaultConfig() Config {
	return Config{
		Collection: "cogito_knowledge_base",
		TopK:       3,
	}
}

// Retriever answers free-text queries with ranked evidence snippets and
// records every hit in a turn-scoped evidence store. The backing index
// initializes lazily on first use: a reachable ChromaDB server wins, and an
// in-memory index seeded with the default knowledge set covers everything
// else, so a search never fails for lack of a corpus. The index is shared;
// evidence stores are owned by the calling debate, keeping concurrent
// debates' citations apart.
type Retriever struct {
	client *chroma.Client
	config Config
	logger *logrus.Logger

	mu    sync.Mutex
	index Index
}

// NewRetriever creates a retriever over an optional ChromaDB client. A nil
// client selects the in-memory fallback outright.
func NewRetriever(client *chroma.Client, config Config, logger *logrus.Logger) *Retriever {
	if logger == nil {
		logger = logrus.New()
	}
	if config.Collection == "" {
		config.Collection = DefaultConfig().Collection
	}
	if config.TopK <= 0 {
		config.TopK = DefaultConfig().TopK
	}
	return &Retriever{
		client: client,
		config: config,
		logger: logger,
	}
}

// Search returns up to topK ranked snippets for the query and appends one
// evidence citation draft per hit to store (when non-nil). topK <= 0
// selects the configured default.
func (r *Retriever) Search(ctx context.Context, query string, topK int, store *EvidenceStore) ([]SearchHit, error) {
	if topK <= 0 {
		topK = r.config.TopK
	}

	index, err := r.ensureIndex(ctx)
	if err != nil {
		return nil, err
	}

	hits, err := index.Query(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("knowledge search failed: %w", err)
	}

	if store != nil {
		for _, hit := range hits {
			store.Append(query, hit)
		}
	}

	r.logger.WithFields(logrus.Fields{
		"query":   truncateForLog(query, 50),
		"results": len(hits),
	}).Debug("Knowledge search completed")

	return hits, nil
}

// Ingest adds external documents to the knowledge index, chunking each one
// for better retrieval granularity.
func (r *Retriever) Ingest(ctx context.Context, docs []Document) (int, error) {
	index, err := r.ensureIndex(ctx)
	if err != nil {
		return 0, err
	}

	var chunked []Document
	for _, doc := range docs {
		source := doc.Source
		if source == "" {
			source = doc.ID
		}
		for i, chunk := range SplitChunks(doc.Content, 500) {
			if len(strings.TrimSpace(chunk)) <= 50 {
				continue
			}
			chunked = append(chunked, Document{
				ID:      fmt.Sprintf("%s_%d_%s", doc.ID, i, uuid.NewString()[:8]),
				Content: chunk,
				Source:  source,
			})
		}
	}

	if len(chunked) == 0 {
		return 0, nil
	}
	if err := index.Add(ctx, chunked); err != nil {
		return 0, fmt.Errorf("failed to index documents: %w", err)
	}

	r.logger.WithField("chunks", len(chunked)).Info("Documents ingested into knowledge base")
	return len(chunked), nil
}

// ensureIndex lazily selects and seeds the backing index.
func (r *Retriever) ensureIndex(ctx context.Context) (Index, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.index != nil {
		return r.index, nil
	}

	if r.client != nil {
		index, err := r.initChroma(ctx)
		if err == nil {
			r.index = index
			return r.index, nil
		}
		r.logger.WithError(err).Warn("ChromaDB unavailable, falling back to in-memory knowledge index")
	}

	memory := NewMemoryIndex()
	if err := memory.Add(ctx, DefaultKnowledge()); err != nil {
		return nil, err
	}
	r.logger.WithField("documents", len(DefaultKnowledge())).Info("Seeded in-memory knowledge index with default documents")
	r.index = memory
	return r.index, nil
}

func (r *Retriever) initChroma(ctx context.Context) (Index, error) {
	if err := r.client.Connect(ctx); err != nil {
		return nil, err
	}

	coll, err := r.client.GetOrCreateCollection(ctx, r.config.Collection, map[string]interface{}{
		"description": "Software Engineering Best Practices",
	})
	if err != nil {
		return nil, err
	}

	index := &chromaIndex{client: r.client, collectionID: coll.ID}

	count, err := index.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		if err := index.Add(ctx, DefaultKnowledge()); err != nil {
			return nil, err
		}
		r.logger.WithField("documents", len(DefaultKnowledge())).Info("Seeded empty ChromaDB collection with default knowledge")
	}

	return index, nil
}

// FormatHits renders hits as the evidence block injected into agent
// prompts, clipping each chunk.
func FormatHits(query string, hits []SearchHit) string {
	if len(hits) == 0 {
		return fmt.Sprintf("No relevant evidence found for: %q", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d relevant sources for %q:\n", len(hits), query)
	for i, hit := range hits {
		content := hit.Content
		clipped := false
		if len(content) > promptChunkLimit {
			content = content[:promptChunkLimit]
			clipped = true
		}
		fmt.Fprintf(&sb, "\nEVIDENCE %d (Source: %s, Relevance: %.2f):\n%s", i+1, hit.Source, hit.Relevance, content)
		if clipped {
			sb.WriteString("...[truncated]")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// SplitChunks splits text into paragraph-aligned chunks of roughly
// chunkSize characters.
func SplitChunks(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = 500
	}

	var chunks []string
	var current strings.Builder

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if current.Len()+len(para) < chunkSize {
			current.WriteString(para)
			current.WriteString("\n\n")
			continue
		}
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(para)
		current.WriteString("\n\n")
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}
	return chunks
}

// chromaIndex adapts the ChromaDB client to the Index interface.
type chromaIndex struct {
	client       *chroma.Client
	collectionID string
}

func (c *chromaIndex) Add(ctx context.Context, docs []Document) error {
	req := &chroma.AddRequest{
		IDs:       make([]string, 0, len(docs)),
		Documents: make([]string, 0, len(docs)),
		Metadatas: make([]map[string]interface{}, 0, len(docs)),
	}
	for _, doc := range docs {
		req.IDs = append(req.IDs, doc.ID)
		req.Documents = append(req.Documents, doc.Content)
		req.Metadatas = append(req.Metadatas, map[string]interface{}{"source": doc.Source})
	}
	return c.client.Add(ctx, c.collectionID, req)
}

func (c *chromaIndex) Count(ctx context.Context) (int, error) {
	return c.client.Count(ctx, c.collectionID)
}

func (c *chromaIndex) Query(ctx context.Context, query string, topK int) ([]SearchHit, error) {
	result, err := c.client.Query(ctx, c.collectionID, query, topK)
	if err != nil {
		return nil, err
	}
	if len(result.Documents) == 0 {
		return nil, nil
	}

	hits := make([]SearchHit, 0, len(result.Documents[0]))
	for i, doc := range result.Documents[0] {
		source := "Unknown"
		if len(result.Metadatas) > 0 && i < len(result.Metadatas[0]) {
			if s, ok := result.Metadatas[0][i]["source"].(string); ok {
				source = s
			}
		}
		relevance := 0.0
		if len(result.Distances) > 0 && i < len(result.Distances[0]) {
			relevance = 1 - result.Distances[0][i]
			if relevance < 0 {
				relevance = 0
			}
			if relevance > 1 {
				relevance = 1
			}
		}
		hits = append(hits, SearchHit{Content: doc, Source: source, Relevance: relevance})
	}
	return hits, nil
}

func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
