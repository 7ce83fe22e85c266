package retrieval

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryIndex is the in-process fallback knowledge index used when no
// ChromaDB server is reachable. Scoring is plain term overlap, enough to
// keep retrieval deterministic and non-empty without the vector backend.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs []Document
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// Add indexes documents.
func (m *MemoryIndex) Add(_ context.Context, docs []Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, docs...)
	return nil
}

// Count returns the number of indexed documents.
func (m *MemoryIndex) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs), nil
}

// Query ranks documents by the fraction of query terms they contain.
// With all-zero overlap the first topK documents are still returned, so a
// populated index never yields an empty result set.
func (m *MemoryIndex) Query(_ context.Context, query string, topK int) ([]SearchHit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if topK <= 0 {
		topK = 5
	}

	terms := tokenize(query)
	type scored struct {
		idx   int
		score float64
	}

	ranked := make([]scored, 0, len(m.docs))
	for i, doc := range m.docs {
		ranked = append(ranked, scored{idx: i, score: overlap(terms, tokenize(doc.Content))})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	hits := make([]SearchHit, 0, len(ranked))
	for _, r := range ranked {
		doc := m.docs[r.idx]
		hits = append(hits, SearchHit{
			Content:   doc.Content,
			Source:    doc.Source,
			Relevance: r.score,
		})
	}
	return hits, nil
}

func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, field := range strings.Fields(strings.ToLower(text)) {
		token := strings.Trim(field, ".,:;!?()[]{}\"'`-")
		if len(token) > 2 {
			tokens[token] = struct{}{}
		}
	}
	return tokens
}

// overlap returns the fraction of query terms present in the document,
// always within [0,1].
func overlap(query, doc map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	matched := 0
	for term := range query {
		if _, ok := doc[term]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(query))
}
