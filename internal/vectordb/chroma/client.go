// Package chroma provides a thin HTTP client for the ChromaDB vector
// database. Ranking and embedding are the server's concern; the client only
// moves documents and queries across the wire.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"
)

// Client talks to a ChromaDB server over its REST API.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *logrus.Logger
	mu         sync.RWMutex
	connected  bool
}

// NewClient creates a new ChromaDB client.
func NewClient(config *Config, logger *logrus.Logger) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}, nil
}

// Connect verifies connectivity to ChromaDB.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.heartbeatLocked(ctx); err != nil {
		return fmt.Errorf("failed to connect to ChromaDB: %w", err)
	}

	c.connected = true
	c.logger.Info("Connected to ChromaDB")
	return nil
}

// IsConnected returns whether the client has verified connectivity.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// HealthCheck checks the health of ChromaDB.
func (c *Client) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.heartbeatLocked(ctx)
}

func (c *Client) heartbeatLocked(ctx context.Context) error {
	url := c.config.GetHTTPURL() + "/api/v1/heartbeat"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.config.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.AuthToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy status: %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	url := fmt.Sprintf("%s%s", c.config.GetHTTPURL(), path)

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.config.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.AuthToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// Collection identifies a ChromaDB collection by server-assigned id.
type Collection struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// GetOrCreateCollection returns the named collection, creating it if needed.
func (c *Client) GetOrCreateCollection(ctx context.Context, name string, metadata map[string]interface{}) (*Collection, error) {
	body := map[string]interface{}{
		"name":          name,
		"get_or_create": true,
	}
	if metadata != nil {
		body["metadata"] = metadata
	}

	respBody, err := c.doRequest(ctx, http.MethodPost, "/api/v1/collections", body)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection %s: %w", name, err)
	}

	var coll Collection
	if err := json.Unmarshal(respBody, &coll); err != nil {
		return nil, fmt.Errorf("failed to parse collection response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"collection": coll.Name,
		"id":         coll.ID,
	}).Debug("Collection ready")

	return &coll, nil
}

// AddRequest carries documents to index into a collection. The server
// computes embeddings with the collection's embedding function.
type AddRequest struct {
	IDs       []string                 `json:"ids"`
	Documents []string                 `json:"documents"`
	Metadatas []map[string]interface{} `json:"metadatas,omitempty"`
}

// Add indexes documents into the collection.
func (c *Client) Add(ctx context.Context, collectionID string, req *AddRequest) error {
	path := fmt.Sprintf("/api/v1/collections/%s/add", collectionID)
	if _, err := c.doRequest(ctx, http.MethodPost, path, req); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"collection": collectionID,
		"documents":  len(req.Documents),
	}).Debug("Documents added")

	return nil
}

// Count returns the number of indexed documents in the collection.
func (c *Client) Count(ctx context.Context, collectionID string) (int, error) {
	path := fmt.Sprintf("/api/v1/collections/%s/count", collectionID)
	respBody, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}

	var count int
	if err := json.Unmarshal(respBody, &count); err != nil {
		return 0, fmt.Errorf("failed to parse count response: %w", err)
	}
	return count, nil
}

// QueryResult holds one ranked query's hits. ChromaDB returns parallel
// slices per query text; distances convert to relevance as 1 - distance.
type QueryResult struct {
	Documents [][]string                 `json:"documents"`
	Metadatas [][]map[string]interface{} `json:"metadatas"`
	Distances [][]float64                `json:"distances"`
}

// Query runs a semantic search over the collection for a single query text.
func (c *Client) Query(ctx context.Context, collectionID, queryText string, topK int) (*QueryResult, error) {
	body := map[string]interface{}{
		"query_texts": []string{queryText},
		"n_results":   topK,
		"include":     []string{"documents", "metadatas", "distances"},
	}

	path := fmt.Sprintf("/api/v1/collections/%s/query", collectionID)
	respBody, err := c.doRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	var result QueryResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse query response: %w", err)
	}

	hits := 0
	if len(result.Documents) > 0 {
		hits = len(result.Documents[0])
	}
	c.logger.WithFields(logrus.Fields{
		"collection": collectionID,
		"results":    hits,
	}).Debug("Query completed")

	return &result, nil
}
