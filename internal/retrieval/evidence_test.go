package retrieval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvidenceStore_AppendAndDrain(t *testing.T) {
	store := NewEvidenceStore()
	store.Append("query one", SearchHit{Content: "chunk", Source: "doc", Relevance: 0.9})
	store.Append("query two", SearchHit{Content: "other", Source: "doc2", Relevance: 0.4})

	assert.Equal(t, 2, store.Len())

	citations := store.Drain()
	require.Len(t, citations, 2)
	assert.Equal(t, "query one", citations[0].SearchQuery)
	assert.Equal(t, "doc", citations[0].SourceDocument)
	assert.Equal(t, 0.9, citations[0].RelevanceScore)
	assert.NotEmpty(t, citations[0].ID)
	assert.Empty(t, citations[0].LogID)
	assert.False(t, citations[0].RetrievedAt.IsZero())

	// Drained, nothing left.
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.Drain())
}

func TestEvidenceStore_TruncatesChunk(t *testing.T) {
	store := NewEvidenceStore()
	store.Append("q", SearchHit{Content: strings.Repeat("a", 800), Source: "s"})

	citations := store.Drain()
	require.Len(t, citations, 1)
	assert.Len(t, citations[0].ContentChunk, 500)
}

func TestEvidenceStore_ClearIdempotent(t *testing.T) {
	store := NewEvidenceStore()
	store.Append("q", SearchHit{Content: "c", Source: "s"})

	store.Clear()
	assert.Equal(t, 0, store.Len())

	// Clearing an already-empty store is a no-op.
	store.Clear()
	store.Clear()
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.Drain())
}
