package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dev.cogito.requiem/internal/models"
)

// persistChunkLimit bounds how much retrieved text one citation row keeps.
const persistChunkLimit = 1000

// Store provides the persistence operations the orchestrator and the API
// need across the four debate entities.
type Store struct {
	db     *DB
	logger *logrus.Logger
}

// NewStore creates a store over an open database.
func NewStore(db *DB, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{db: db, logger: logger}
}

// CreateRequest records the caller's topic and returns the new request.
func (s *Store) CreateRequest(ctx context.Context, topic string) (*models.DecisionRequest, error) {
	req := &models.DecisionRequest{
		ID:        uuid.NewString(),
		Topic:     topic,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO decision_requests (id, topic, created_at) VALUES (?, ?, ?)`,
		req.ID, req.Topic, req.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert decision request: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": req.ID,
		"topic":      req.Topic,
	}).Debug("Decision request created")

	return req, nil
}

// CreateReport creates the empty report owned by a request. The final
// matrix stays null until synthesis completes.
func (s *Store) CreateReport(ctx context.Context, requestID string) (*models.DebateReport, error) {
	report := &models.DebateReport{
		ID:        uuid.NewString(),
		RequestID: requestID,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO debate_reports (id, request_id, created_at) VALUES (?, ?, ?)`,
		report.ID, report.RequestID, report.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert debate report: %w", err)
	}
	return report, nil
}

// SetFinalMatrix writes the serialized decision matrix onto the report.
func (s *Store) SetFinalMatrix(ctx context.Context, reportID, matrix string) error {
	res, err := s.db.Conn().ExecContext(ctx,
		`UPDATE debate_reports SET final_decision_matrix = ? WHERE id = ?`,
		matrix, reportID,
	)
	if err != nil {
		return fmt.Errorf("failed to set final decision matrix: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("debate report not found: %s", reportID)
	}
	return nil
}

// AppendLog persists one agent turn.
func (s *Store) AppendLog(ctx context.Context, entry *models.DebateLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Conn().ExecContext(ctx,
		`INSERT INTO debate_logs (id, report_id, agent_name, agent_role, round_number, argument_text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.ReportID, entry.AgentName, entry.AgentRole, entry.RoundNumber, entry.ArgumentText, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert debate log: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"report_id": entry.ReportID,
		"agent":     entry.AgentName,
		"round":     entry.RoundNumber,
	}).Debug("Debate log entry inserted")

	return nil
}

// AttachEvidence persists citation drafts under their owning log entry,
// truncating chunks to the storage limit.
func (s *Store) AttachEvidence(ctx context.Context, logID string, citations []models.EvidenceCitation) error {
	if len(citations) == 0 {
		return nil
	}

	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range citations {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		chunk := c.ContentChunk
		if len(chunk) > persistChunkLimit {
			chunk = chunk[:persistChunkLimit]
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO evidence_citations (id, log_id, source_document, content_chunk, search_query, relevance_score, retrieved_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, logID, c.SourceDocument, chunk, c.SearchQuery, c.RelevanceScore, c.RetrievedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert evidence citation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit evidence: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"log_id":    logID,
		"citations": len(citations),
	}).Debug("Evidence citations attached")

	return nil
}

// ListLogs returns the transcript of one report in round order.
func (s *Store) ListLogs(ctx context.Context, reportID string) ([]models.DebateLogEntry, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT id, report_id, agent_name, agent_role, round_number, argument_text, created_at
		 FROM debate_logs WHERE report_id = ? ORDER BY round_number, created_at, id`,
		reportID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query debate logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []models.DebateLogEntry
	for rows.Next() {
		var e models.DebateLogEntry
		if err := rows.Scan(&e.ID, &e.ReportID, &e.AgentName, &e.AgentRole, &e.RoundNumber, &e.ArgumentText, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan debate log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListEvidence returns the citations attached to one log entry.
func (s *Store) ListEvidence(ctx context.Context, logID string) ([]models.EvidenceCitation, error) {
	rows, err := s.db.Conn().QueryContext(ctx,
		`SELECT id, log_id, source_document, content_chunk, search_query, relevance_score, retrieved_at
		 FROM evidence_citations WHERE log_id = ? ORDER BY retrieved_at, id`,
		logID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query evidence: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var citations []models.EvidenceCitation
	for rows.Next() {
		var c models.EvidenceCitation
		var logRef sql.NullString
		if err := rows.Scan(&c.ID, &logRef, &c.SourceDocument, &c.ContentChunk, &c.SearchQuery, &c.RelevanceScore, &c.RetrievedAt); err != nil {
			return nil, fmt.Errorf("failed to scan evidence: %w", err)
		}
		c.LogID = logRef.String
		citations = append(citations, c)
	}
	return citations, rows.Err()
}

// GetReport returns one report by id, or nil when absent.
func (s *Store) GetReport(ctx context.Context, reportID string) (*models.DebateReport, error) {
	var report models.DebateReport
	var matrix sql.NullString
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT id, request_id, final_decision_matrix, created_at FROM debate_reports WHERE id = ?`,
		reportID,
	).Scan(&report.ID, &report.RequestID, &matrix, &report.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query debate report: %w", err)
	}
	if matrix.Valid {
		report.FinalDecisionMatrix = &matrix.String
	}
	return &report, nil
}

// GetRequest returns one decision request by id, or nil when absent.
func (s *Store) GetRequest(ctx context.Context, requestID string) (*models.DecisionRequest, error) {
	var req models.DecisionRequest
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT id, topic, created_at FROM decision_requests WHERE id = ?`,
		requestID,
	).Scan(&req.ID, &req.Topic, &req.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query decision request: %w", err)
	}
	return &req, nil
}

// Reset deletes all persisted debate data.
func (s *Store) Reset(ctx context.Context) error {
	stmts := []string{
		`DELETE FROM evidence_citations`,
		`DELETE FROM debate_logs`,
		`DELETE FROM debate_reports`,
		`DELETE FROM decision_requests`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Conn().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to reset database: %w", err)
		}
	}
	s.logger.Info("All debate data cleared")
	return nil
}
