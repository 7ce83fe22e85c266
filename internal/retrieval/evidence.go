package retrieval

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"dev.cogito.requiem/internal/models"
)

// draftChunkLimit bounds the stored text of one evidence citation draft.
const draftChunkLimit = 500

// EvidenceStore buffers the citations retrieved during a single agent turn.
// The orchestrator clears it before each turn and drains it after, so its
// contents are always scoped to exactly one turn.
type EvidenceStore struct {
	mu      sync.Mutex
	entries []models.EvidenceCitation
}

// NewEvidenceStore creates an empty evidence buffer.
func NewEvidenceStore() *EvidenceStore {
	return &EvidenceStore{}
}

// Append records one retrieval hit as a citation draft. The chunk is
// truncated; LogID stays empty until the owning log entry is persisted.
func (s *EvidenceStore) Append(query string, hit SearchHit) {
	content := hit.Content
	if len(content) > draftChunkLimit {
		content = content[:draftChunkLimit]
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, models.EvidenceCitation{
		ID:             uuid.NewString(),
		SourceDocument: hit.Source,
		ContentChunk:   content,
		SearchQuery:    query,
		RelevanceScore: hit.Relevance,
		RetrievedAt:    time.Now().UTC(),
	})
}

// Drain returns the buffered citations and empties the store.
func (s *EvidenceStore) Drain() []models.EvidenceCitation {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.entries
	s.entries = nil
	return entries
}

// Clear discards any buffered citations.
func (s *EvidenceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// Len returns the number of buffered citations.
func (s *EvidenceStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
