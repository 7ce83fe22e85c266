package agents

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"dev.cogito.requiem/internal/llm"
	"dev.cogito.requiem/internal/models"
	"dev.cogito.requiem/internal/retrieval"
)

// Executor runs one agent turn: at most one retrieval, then a bounded
// number of model calls under the role's rate cap. A turn never fails on
// budget exhaustion; it returns whatever partial text was produced and
// leaves malformed output to downstream stages.
type Executor struct {
	providers map[models.AgentName]llm.Provider
	retriever *retrieval.Retriever
	logger    *logrus.Logger
}

// NewExecutor wraps the provider with each role's rate cap.
func NewExecutor(provider llm.Provider, retriever *retrieval.Retriever, roles []RoleConfig, logger *logrus.Logger) *Executor {
	if logger == nil {
		logger = logrus.New()
	}

	providers := make(map[models.AgentName]llm.Provider, len(roles))
	for _, role := range roles {
		if role.RequestsPerMinute > 0 {
			providers[role.Name] = llm.NewRateLimitedProvider(provider, role.RequestsPerMinute)
		} else {
			providers[role.Name] = provider
		}
	}

	return &Executor{
		providers: providers,
		retriever: retriever,
		logger:    logger,
	}
}

// RunTurn executes one role's turn over the given context and returns the
// raw text output. Evidence retrieved during the turn lands in store.
// Retrieval misses are non-fatal: the turn proceeds with a "no evidence
// found" block.
func (e *Executor) RunTurn(ctx context.Context, role RoleConfig, tc TurnContext, store *retrieval.EvidenceStore) (string, error) {
	if role.AllowRetrieval && e.retriever != nil {
		query := role.RetrievalQuery(tc.Topic)
		hits, err := e.retriever.Search(ctx, query, 0, store)
		if err != nil {
			e.logger.WithError(err).WithField("agent", role.Name).Warn("Retrieval failed, continuing without evidence")
			tc.Evidence = retrieval.FormatHits(query, nil)
		} else {
			tc.Evidence = retrieval.FormatHits(query, hits)
		}
	}

	provider, ok := e.providers[role.Name]
	if !ok {
		provider = e.providers[models.AgentProponent]
	}

	req := &llm.CompletionRequest{
		System:      role.SystemPrompt,
		Prompt:      role.BuildPrompt(tc),
		Temperature: role.Temperature,
		MaxTokens:   role.MaxTokens,
	}

	maxIterations := role.MaxIterations
	if maxIterations <= 0 {
		maxIterations = 1
	}

	var partial string
	for attempt := 1; attempt <= maxIterations; attempt++ {
		if err := ctx.Err(); err != nil {
			return partial, err
		}

		resp, err := provider.Complete(ctx, req)
		if err != nil {
			e.logger.WithError(err).WithFields(logrus.Fields{
				"agent":   role.Name,
				"attempt": attempt,
			}).Warn("Model call failed")
			continue
		}

		text := strings.TrimSpace(resp.Content)
		if text != "" {
			e.logger.WithFields(logrus.Fields{
				"agent":  role.Name,
				"round":  tc.Round,
				"tokens": resp.TokensUsed,
			}).Debug("Turn completed")
			return text, nil
		}
		partial = text
	}

	// Budget exhausted: hand back the partial text, not an error.
	e.logger.WithField("agent", role.Name).Warn("Turn budget exhausted, returning partial output")
	return partial, nil
}
