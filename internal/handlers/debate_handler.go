// Package handlers implements the HTTP gateway. Every debate outcome,
// including failures, is answered with HTTP 200 and a decision matrix
// envelope; errors travel in-band.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dev.cogito.requiem/internal/concurrency"
	"dev.cogito.requiem/internal/database"
	"dev.cogito.requiem/internal/debate"
	"dev.cogito.requiem/internal/debate/orchestrator"
	"dev.cogito.requiem/internal/metrics"
	"dev.cogito.requiem/internal/models"
	"dev.cogito.requiem/internal/structured"
)

// DebateRunner runs one full debate. Satisfied by orchestrator.Orchestrator.
type DebateRunner interface {
	Run(ctx context.Context, debateID, topic string) (*orchestrator.Result, error)
}

// DebateRequest is the body of POST /api/debate.
type DebateRequest struct {
	Topic string `json:"topic" binding:"required"`
}

// DebateResponse is the decision matrix envelope with the report id
// alongside, so callers can fetch the replay later.
type DebateResponse struct {
	ReportID string `json:"report_id,omitempty"`
	models.DecisionMatrix
}

// DebateHandler owns the request lifecycle around the orchestrator.
type DebateHandler struct {
	runner    DebateRunner
	registry  *debate.Registry
	semaphore *concurrency.Semaphore
	timeout   time.Duration
	logger    *logrus.Logger
}

// NewDebateHandler creates the gateway handler. maxConcurrent bounds how
// many debates run at once; timeout is the per-debate wall clock bound.
func NewDebateHandler(runner DebateRunner, registry *debate.Registry, maxConcurrent int, timeout time.Duration, logger *logrus.Logger) *DebateHandler {
	if logger == nil {
		logger = logrus.New()
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &DebateHandler{
		runner:    runner,
		registry:  registry,
		semaphore: concurrency.NewSemaphore(maxConcurrent),
		timeout:   timeout,
		logger:    logger,
	}
}

// RunDebate handles POST /api/debate.
func (h *DebateHandler) RunDebate(c *gin.Context) {
	var req DebateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, DebateResponse{DecisionMatrix: *models.ErrorMatrix(err)})
		return
	}

	debateID := uuid.NewString()
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	h.registry.Register(debateID, cancel)
	defer func() {
		h.registry.Deregister(debateID)
		metrics.SetActiveDebates(h.registry.Count())
	}()
	metrics.SetActiveDebates(h.registry.Count())

	if err := h.semaphore.Acquire(ctx); err != nil {
		c.JSON(http.StatusOK, h.timeoutResponse(debateID, time.Time{}))
		return
	}
	defer h.semaphore.Release()

	// Cancelled while queued: short-circuit without running the debate.
	if !h.registry.IsActive(debateID) {
		metrics.RecordDebate(metrics.OutcomeCancelled, 0)
		c.JSON(http.StatusOK, DebateResponse{DecisionMatrix: *models.CancelledMatrix()})
		return
	}

	started := time.Now()

	type runOutcome struct {
		result *orchestrator.Result
		err    error
	}
	done := make(chan runOutcome, 1)
	go func() {
		result, err := h.runner.Run(ctx, debateID, req.Topic)
		done <- runOutcome{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			c.JSON(http.StatusOK, h.timeoutResponse(debateID, started))
			return
		}
		metrics.RecordDebate(metrics.OutcomeCancelled, time.Since(started))
		c.JSON(http.StatusOK, DebateResponse{DecisionMatrix: *models.CancelledMatrix()})
		return
	case outcome := <-done:
		c.JSON(http.StatusOK, h.buildResponse(debateID, started, outcome.result, outcome.err))
		return
	}
}

// buildResponse maps a finished run onto the uniform envelope.
func (h *DebateHandler) buildResponse(debateID string, started time.Time, result *orchestrator.Result, err error) DebateResponse {
	elapsed := time.Since(started)
	reportID := ""
	if result != nil {
		reportID = result.ReportID
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return h.timeoutResponse(debateID, started)
		}
		if errorsIsCancelled(err) {
			h.logger.WithField("debate_id", debateID).Info("Debate cancelled")
			metrics.RecordDebate(metrics.OutcomeCancelled, elapsed)
			return DebateResponse{ReportID: reportID, DecisionMatrix: *models.CancelledMatrix()}
		}
		h.logger.WithFields(logrus.Fields{
			"debate_id": debateID,
			"error":     err.Error(),
		}).Error("Debate failed")
		metrics.RecordDebate(metrics.OutcomeErrored, elapsed)
		return DebateResponse{ReportID: reportID, DecisionMatrix: *models.ErrorMatrix(err)}
	}

	metrics.RecordDebate(metrics.OutcomeCompleted, elapsed)
	metrics.RecordEvidence(result.ProEvidence + result.ConEvidence)

	matrix, ok := structured.Decode(result.RawSynthesis)
	if !ok {
		h.logger.WithField("debate_id", debateID).Warn("Synthesis output unparseable, substituting review envelope")
		return DebateResponse{ReportID: reportID, DecisionMatrix: *models.ReviewOutputMatrix(result.RawSynthesis)}
	}
	return DebateResponse{ReportID: reportID, DecisionMatrix: *matrix}
}

// errorsIsCancelled reports whether the run ended at a cancellation
// boundary rather than a genuine fault.
func errorsIsCancelled(err error) bool {
	return errors.Is(err, orchestrator.ErrCancelled) || errors.Is(err, context.Canceled)
}

func (h *DebateHandler) timeoutResponse(debateID string, started time.Time) DebateResponse {
	elapsed := time.Duration(0)
	if !started.IsZero() {
		elapsed = time.Since(started)
	}
	h.logger.WithField("debate_id", debateID).Warn("Debate timed out")
	metrics.RecordDebate(metrics.OutcomeTimedOut, elapsed)
	return DebateResponse{DecisionMatrix: *models.TimeoutMatrix(int(h.timeout.Seconds()))}
}

// CancelAll handles POST /api/cancel.
func (h *DebateHandler) CancelAll(c *gin.Context) {
	cleared := h.registry.Clear()
	metrics.SetActiveDebates(h.registry.Count())
	h.logger.WithField("cleared", cleared).Info("All debates cancelled")
	c.JSON(http.StatusOK, gin.H{
		"status":  "cancelled",
		"cleared": cleared,
	})
}

// Health handles GET /api/health.
func (h *DebateHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"active_debates": h.registry.Count(),
	})
}

// AdminHandler exposes replay and maintenance endpoints over the store.
type AdminHandler struct {
	store  *database.Store
	logger *logrus.Logger
}

// NewAdminHandler creates the replay/reset handler.
func NewAdminHandler(store *database.Store, logger *logrus.Logger) *AdminHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &AdminHandler{store: store, logger: logger}
}

// GetDebate handles GET /api/debate/:report_id.
func (h *AdminHandler) GetDebate(c *gin.Context) {
	reportID := c.Param("report_id")

	replay, err := h.store.GetDebateWithEvidence(c.Request.Context(), reportID)
	if err != nil {
		h.logger.WithField("report_id", reportID).WithError(err).Error("Replay lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load debate"})
		return
	}
	if replay == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "debate not found: " + reportID})
		return
	}
	c.JSON(http.StatusOK, replay)
}

// Reset handles POST /api/reset.
func (h *AdminHandler) Reset(c *gin.Context) {
	if err := h.store.Reset(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("Database reset failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reset failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
