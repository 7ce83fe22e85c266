package database

import (
	"context"
	"fmt"
)

// replayChunkLimit bounds evidence text in the replay payload.
const replayChunkLimit = 200

// DebateReplay is a full debate reconstructed for transparency: every
// persisted turn with the evidence it retrieved.
type DebateReplay struct {
	ReportID       string        `json:"report_id"`
	Topic          string        `json:"topic"`
	DecisionMatrix *string       `json:"decision_matrix,omitempty"`
	Rounds         []ReplayEntry `json:"rounds"`
}

// ReplayEntry is one agent turn with its citations.
type ReplayEntry struct {
	Agent    string           `json:"agent"`
	Role     string           `json:"role"`
	Round    int              `json:"round"`
	Argument string           `json:"argument"`
	Evidence []ReplayEvidence `json:"evidence"`
}

// ReplayEvidence is one citation, clipped for the payload.
type ReplayEvidence struct {
	Source    string  `json:"source"`
	Content   string  `json:"content"`
	Query     string  `json:"query"`
	Relevance float64 `json:"relevance"`
}

// GetDebateWithEvidence reconstructs one debate from its report id. Returns
// nil when the report does not exist.
func (s *Store) GetDebateWithEvidence(ctx context.Context, reportID string) (*DebateReplay, error) {
	report, err := s.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, nil
	}

	request, err := s.GetRequest(ctx, report.RequestID)
	if err != nil {
		return nil, err
	}

	replay := &DebateReplay{
		ReportID:       report.ID,
		DecisionMatrix: report.FinalDecisionMatrix,
		Rounds:         []ReplayEntry{},
	}
	if request != nil {
		replay.Topic = request.Topic
	}

	logs, err := s.ListLogs(ctx, report.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}

	for _, log := range logs {
		entry := ReplayEntry{
			Agent:    string(log.AgentName),
			Role:     string(log.AgentRole),
			Round:    log.RoundNumber,
			Argument: log.ArgumentText,
			Evidence: []ReplayEvidence{},
		}

		citations, err := s.ListEvidence(ctx, log.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load evidence: %w", err)
		}
		for _, c := range citations {
			entry.Evidence = append(entry.Evidence, ReplayEvidence{
				Source:    c.SourceDocument,
				Content:   clipChunk(c.ContentChunk),
				Query:     c.SearchQuery,
				Relevance: c.RelevanceScore,
			})
		}

		replay.Rounds = append(replay.Rounds, entry)
	}

	return replay, nil
}

func clipChunk(chunk string) string {
	if len(chunk) > replayChunkLimit {
		return chunk[:replayChunkLimit] + "..."
	}
	return chunk
}
