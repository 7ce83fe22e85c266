// Package models defines the persisted debate entities and the decision
// matrix value object returned to API callers.
package models

import "time"

// AgentName identifies a scripted debate role.
type AgentName string

const (
	AgentProponent   AgentName = "Proponent"
	AgentSkeptic     AgentName = "Skeptic"
	AgentSynthesizer AgentName = "Synthesizer"
)

// AgentRole is the stance a role takes in the debate.
type AgentRole string

const (
	RolePro     AgentRole = "Pro"
	RoleCon     AgentRole = "Con"
	RoleManager AgentRole = "Manager"
)

// SynthesisRound is the round number recorded for the synthesizer's entry.
const SynthesisRound = 3

// DecisionRequest stores the topic a caller asked to debate. Immutable
// after creation; owns exactly one DebateReport.
type DecisionRequest struct {
	ID        string    `json:"id" db:"id"`
	Topic     string    `json:"topic" db:"topic"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DebateReport holds the final decision matrix for one request. The matrix
// is nil until synthesis completes; a crash mid-debate leaves it that way.
type DebateReport struct {
	ID                  string    `json:"id" db:"id"`
	RequestID           string    `json:"request_id" db:"request_id"`
	FinalDecisionMatrix *string   `json:"final_decision_matrix,omitempty" db:"final_decision_matrix"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

// DebateLogEntry records one agent turn. Entries are append-only; ordering
// by (round_number, created_at) reconstructs the transcript.
type DebateLogEntry struct {
	ID           string    `json:"id" db:"id"`
	ReportID     string    `json:"report_id" db:"report_id"`
	AgentName    AgentName `json:"agent_name" db:"agent_name"`
	AgentRole    AgentRole `json:"agent_role" db:"agent_role"`
	RoundNumber  int       `json:"round_number" db:"round_number"`
	ArgumentText string    `json:"argument_text" db:"argument_text"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// EvidenceCitation links a retrieved knowledge chunk to the turn that
// fetched it. LogID is empty while the citation sits in the turn buffer and
// is set once the owning log entry is persisted.
type EvidenceCitation struct {
	ID             string    `json:"id" db:"id"`
	LogID          string    `json:"log_id,omitempty" db:"log_id"`
	SourceDocument string    `json:"source_document" db:"source_document"`
	ContentChunk   string    `json:"content_chunk" db:"content_chunk"`
	SearchQuery    string    `json:"search_query" db:"search_query"`
	RelevanceScore float64   `json:"relevance_score" db:"relevance_score"`
	RetrievedAt    time.Time `json:"retrieved_at" db:"retrieved_at"`
}
