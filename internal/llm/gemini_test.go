package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBaseURL turns an httptest server URL into the provider's format
// string; the model name lands in the path like the real endpoint.
func testBaseURL(server *httptest.Server) string {
	return server.URL + "/v1beta/models/%s:generateContent"
}

func geminiOK(text string, tokens int) geminiResponse {
	return geminiResponse{
		Candidates: []geminiCandidate{
			{Content: geminiContent{Parts: []geminiPart{{Text: text}}}, FinishReason: "STOP"},
		},
		UsageMetadata: &geminiUsageMetadata{TotalTokenCount: tokens},
	}
}

func TestGeminiProvider_Complete(t *testing.T) {
	var gotReq geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(geminiOK("generated argument", 42))
	}))
	defer server.Close()

	p := NewGeminiProvider("test-key", testBaseURL(server), "")
	resp, err := p.Complete(context.Background(), &CompletionRequest{
		System:      "You argue in favor.",
		Prompt:      "adopt microservices",
		Temperature: 0.7,
		MaxTokens:   512,
	})

	require.NoError(t, err)
	assert.Equal(t, "generated argument", resp.Content)
	assert.Equal(t, 42, resp.TokensUsed)
	assert.Equal(t, "STOP", resp.FinishReason)

	require.Len(t, gotReq.Contents, 1)
	assert.Equal(t, "adopt microservices", gotReq.Contents[0].Parts[0].Text)
	require.NotNil(t, gotReq.SystemInstruction)
	assert.Equal(t, "You argue in favor.", gotReq.SystemInstruction.Parts[0].Text)
	require.NotNil(t, gotReq.GenerationConfig)
	assert.Equal(t, 512, gotReq.GenerationConfig.MaxOutputTokens)
}

func TestGeminiProvider_Complete_ConcatenatesParts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(geminiResponse{
			Candidates: []geminiCandidate{
				{Content: geminiContent{Parts: []geminiPart{{Text: "first "}, {Text: "second"}}}},
			},
		})
	}))
	defer server.Close()

	p := NewGeminiProvider("k", testBaseURL(server), "")
	resp, err := p.Complete(context.Background(), &CompletionRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "first second", resp.Content)
}

func TestGeminiProvider_Complete_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(geminiResponse{})
	}))
	defer server.Close()

	p := NewGeminiProvider("k", testBaseURL(server), "")
	_, err := p.Complete(context.Background(), &CompletionRequest{Prompt: "x"})
	assert.ErrorContains(t, err, "no candidates")
}

func TestGeminiProvider_RetriesOn429(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(geminiOK("after retry", 1))
	}))
	defer server.Close()

	p := NewGeminiProviderWithRetry("k", testBaseURL(server), "", RetryConfig{
		MaxRetries:   2,
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     20 * time.Millisecond,
		Multiplier:   2.0,
	})

	resp, err := p.Complete(context.Background(), &CompletionRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "after retry", resp.Content)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGeminiProvider_NonRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error": "bad request"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	p := NewGeminiProviderWithRetry("k", testBaseURL(server), "", RetryConfig{
		MaxRetries:   3,
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     20 * time.Millisecond,
		Multiplier:   2.0,
	})

	_, err := p.Complete(context.Background(), &CompletionRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestIsRetryableStatus(t *testing.T) {
	assert.True(t, isRetryableStatus(http.StatusTooManyRequests))
	assert.True(t, isRetryableStatus(http.StatusInternalServerError))
	assert.True(t, isRetryableStatus(http.StatusBadGateway))
	assert.False(t, isRetryableStatus(http.StatusBadRequest))
	assert.False(t, isRetryableStatus(http.StatusOK))
}

func TestNextDelay_CapsAtMax(t *testing.T) {
	p := NewGeminiProviderWithRetry("k", "", "", RetryConfig{
		InitialDelay: time.Second,
		MaxDelay:     3 * time.Second,
		Multiplier:   2.0,
	})

	assert.Equal(t, 2*time.Second, p.nextDelay(time.Second))
	assert.Equal(t, 3*time.Second, p.nextDelay(2*time.Second))
	assert.Equal(t, 3*time.Second, p.nextDelay(10*time.Second))
}

func TestRateLimitedProvider_DelegatesUnderLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(geminiOK("ok", 1))
	}))
	defer server.Close()

	inner := NewGeminiProvider("k", testBaseURL(server), "")
	limited := NewRateLimitedProvider(inner, 10)

	resp, err := limited.Complete(context.Background(), &CompletionRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, "gemini", limited.Name())
}

func TestRateLimitedProvider_BlocksAtCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(geminiOK("ok", 1))
	}))
	defer server.Close()

	inner := NewGeminiProvider("k", testBaseURL(server), "")
	limited := NewRateLimitedProvider(inner, 1)

	_, err := limited.Complete(context.Background(), &CompletionRequest{Prompt: "x"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = limited.Complete(ctx, &CompletionRequest{Prompt: "x"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
