// Package orchestrator drives the fixed-round debate state machine:
// INIT -> ROUND(1) -> ROUND(2) -> SYNTHESIS -> DONE, with CANCELLED and
// ERRORED reachable from any state.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"dev.cogito.requiem/internal/database"
	"dev.cogito.requiem/internal/debate"
	"dev.cogito.requiem/internal/debate/agents"
	"dev.cogito.requiem/internal/models"
	"dev.cogito.requiem/internal/retrieval"
)

// ErrCancelled reports that a debate was cancelled at a round boundary.
// Persisted rounds are retained, not rolled back.
var ErrCancelled = errors.New("debate cancelled")

// State is the orchestration state machine's position.
type State string

const (
	StateInit      State = "init"
	StateRound     State = "round"
	StateSynthesis State = "synthesis"
	StateDone      State = "done"
	StateCancelled State = "cancelled"
	StateErrored   State = "errored"
)

// Config tunes the debate shape.
type Config struct {
	// Rounds is the number of argument rounds before synthesis.
	Rounds int `yaml:"rounds" json:"rounds"`
}

// DefaultConfig returns the scripted two-round debate.
func DefaultConfig() Config {
	return Config{Rounds: 2}
}

// Result is the outcome of one completed debate run.
type Result struct {
	RequestID    string
	ReportID     string
	RawSynthesis string
	ProEvidence  int
	ConEvidence  int
	State        State
}

// Orchestrator runs debates as strictly sequential chains of agent turns.
// It has no retries: a failed round propagates as an error and the debate
// is never resumed.
type Orchestrator struct {
	store    *database.Store
	executor *agents.Executor
	registry *debate.Registry
	roles    []agents.RoleConfig
	config   Config
	logger   *logrus.Logger
}

// New creates an orchestrator over the given collaborators.
func New(store *database.Store, executor *agents.Executor, registry *debate.Registry, roles []agents.RoleConfig, config Config, logger *logrus.Logger) *Orchestrator {
	if logger == nil {
		logger = logrus.New()
	}
	if config.Rounds <= 0 {
		config = DefaultConfig()
	}
	if len(roles) == 0 {
		roles = agents.DefaultRoles()
	}
	return &Orchestrator{
		store:    store,
		executor: executor,
		registry: registry,
		roles:    roles,
		config:   config,
		logger:   logger,
	}
}

// Run executes one full debate on the topic. debateID is the gateway's
// registration key; cancellation is checked before every round and before
// synthesis, never mid-turn.
func (o *Orchestrator) Run(ctx context.Context, debateID, topic string) (*Result, error) {
	if err := o.checkCancelled(ctx, debateID); err != nil {
		return &Result{State: StateCancelled}, err
	}

	req, err := o.store.CreateRequest(ctx, topic)
	if err != nil {
		return &Result{State: StateErrored}, fmt.Errorf("init failed: %w", err)
	}
	report, err := o.store.CreateReport(ctx, req.ID)
	if err != nil {
		return &Result{State: StateErrored}, fmt.Errorf("init failed: %w", err)
	}

	o.logger.WithFields(logrus.Fields{
		"debate_id": debateID,
		"report_id": report.ID,
		"topic":     topic,
	}).Info("Debate started")

	result := &Result{RequestID: req.ID, ReportID: report.ID}
	evidence := retrieval.NewEvidenceStore()

	var transcript string
	debaters := o.debaterRoles()

	for round := 1; round <= o.config.Rounds; round++ {
		if err := o.checkCancelled(ctx, debateID); err != nil {
			result.State = StateCancelled
			return result, err
		}

		var lastArgument string
		for _, role := range debaters {
			tc := agents.TurnContext{
				Topic:      topic,
				Round:      round,
				TotalRound: o.config.Rounds,
				Transcript: transcript,
				Rebuttal:   lastArgument,
			}

			text, evidenceCount, err := o.runPersistedTurn(ctx, report.ID, role, round, tc, evidence)
			if err != nil {
				result.State = StateErrored
				return result, fmt.Errorf("round %d %s turn failed: %w", round, role.Name, err)
			}

			switch role.Role {
			case models.RolePro:
				result.ProEvidence += evidenceCount
			case models.RoleCon:
				result.ConEvidence += evidenceCount
			}

			transcript += fmt.Sprintf("\n[Round %d - %s]: %s\n", round, role.Name, text)
			lastArgument = text
		}
	}

	if err := o.checkCancelled(ctx, debateID); err != nil {
		result.State = StateCancelled
		return result, err
	}

	synthesizer, ok := agents.RoleByName(o.roles, models.AgentSynthesizer)
	if !ok {
		result.State = StateErrored
		return result, errors.New("no synthesizer role configured")
	}

	tc := agents.TurnContext{
		Topic:       topic,
		Round:       models.SynthesisRound,
		TotalRound:  o.config.Rounds,
		Transcript:  transcript,
		ProEvidence: result.ProEvidence,
		ConEvidence: result.ConEvidence,
	}
	raw, _, err := o.runPersistedTurn(ctx, report.ID, synthesizer, models.SynthesisRound, tc, evidence)
	if err != nil {
		result.State = StateErrored
		return result, fmt.Errorf("synthesis turn failed: %w", err)
	}

	if err := o.store.SetFinalMatrix(ctx, report.ID, raw); err != nil {
		result.State = StateErrored
		return result, fmt.Errorf("failed to persist decision matrix: %w", err)
	}

	result.RawSynthesis = raw
	result.State = StateDone

	o.logger.WithFields(logrus.Fields{
		"debate_id":    debateID,
		"report_id":    report.ID,
		"pro_evidence": result.ProEvidence,
		"con_evidence": result.ConEvidence,
	}).Info("Debate complete")

	return result, nil
}

// runPersistedTurn runs one turn with a fresh evidence buffer, persists the
// log entry, and attaches the drained citations. Returns the turn text and
// how many citations it captured.
func (o *Orchestrator) runPersistedTurn(ctx context.Context, reportID string, role agents.RoleConfig, round int, tc agents.TurnContext, evidence *retrieval.EvidenceStore) (string, int, error) {
	evidence.Clear()

	text, err := o.executor.RunTurn(ctx, role, tc, evidence)
	if err != nil {
		return "", 0, err
	}

	entry := &models.DebateLogEntry{
		ReportID:     reportID,
		AgentName:    role.Name,
		AgentRole:    role.Role,
		RoundNumber:  round,
		ArgumentText: text,
	}
	if err := o.store.AppendLog(ctx, entry); err != nil {
		return "", 0, err
	}

	citations := evidence.Drain()
	if err := o.store.AttachEvidence(ctx, entry.ID, citations); err != nil {
		return "", 0, err
	}

	return text, len(citations), nil
}

// debaterRoles returns the retrieval-capable argument roles in their
// configured order.
func (o *Orchestrator) debaterRoles() []agents.RoleConfig {
	var debaters []agents.RoleConfig
	for _, role := range o.roles {
		if role.Name != models.AgentSynthesizer {
			debaters = append(debaters, role)
		}
	}
	return debaters
}

// checkCancelled enforces the transition guard: a cancelled context or a
// deregistered debate id moves the machine straight to CANCELLED.
func (o *Orchestrator) checkCancelled(ctx context.Context, debateID string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	if o.registry != nil && !o.registry.IsActive(debateID) {
		return ErrCancelled
	}
	return nil
}
