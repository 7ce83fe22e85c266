// Package retrieval wraps the semantic-search collaborator behind the
// knowledge retriever used by debate agents, and tracks the evidence each
// turn pulls from it.
package retrieval

import "context"

// SearchHit is one ranked knowledge snippet. Relevance is similarity in
// [0,1], where 1 means an identical embedding.
type SearchHit struct {
	Content   string  `json:"content"`
	Source    string  `json:"source"`
	Relevance float64 `json:"relevance"`
}

// Document is a knowledge-base entry to index.
type Document struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

// Index is the minimal surface the retriever needs from a knowledge index.
// The ChromaDB-backed index and the in-memory fallback both satisfy it.
type Index interface {
	Add(ctx context.Context, docs []Document) error
	Query(ctx context.Context, query string, topK int) ([]SearchHit, error)
	Count(ctx context.Context) (int, error)
}
