package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.cogito.requiem/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := Open(Config{Path: filepath.Join(t.TempDir(), "test.db"), BusyTimeout: 1000}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.CreateSchema(context.Background()))
	return NewStore(db, nil)
}

func seedDebate(t *testing.T, store *Store) (*models.DecisionRequest, *models.DebateReport) {
	t.Helper()
	ctx := context.Background()

	req, err := store.CreateRequest(ctx, "Should we adopt microservices?")
	require.NoError(t, err)
	report, err := store.CreateReport(ctx, req.ID)
	require.NoError(t, err)
	return req, report
}

func TestStore_CreateRequestAndReport(t *testing.T) {
	store := newTestStore(t)
	req, report := seedDebate(t, store)

	got, err := store.GetRequest(context.Background(), req.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Should we adopt microservices?", got.Topic)

	gotReport, err := store.GetReport(context.Background(), report.ID)
	require.NoError(t, err)
	require.NotNil(t, gotReport)
	assert.Equal(t, req.ID, gotReport.RequestID)
	assert.Nil(t, gotReport.FinalDecisionMatrix)
}

func TestStore_GetReport_Missing(t *testing.T) {
	store := newTestStore(t)

	report, err := store.GetReport(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestStore_SetFinalMatrix(t *testing.T) {
	store := newTestStore(t)
	_, report := seedDebate(t, store)

	matrix := `{"synthesis": {"recommendation": "Adopt", "confidence": 70}}`
	require.NoError(t, store.SetFinalMatrix(context.Background(), report.ID, matrix))

	got, err := store.GetReport(context.Background(), report.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FinalDecisionMatrix)
	assert.Equal(t, matrix, *got.FinalDecisionMatrix)
}

func TestStore_SetFinalMatrix_MissingReport(t *testing.T) {
	store := newTestStore(t)

	err := store.SetFinalMatrix(context.Background(), "no-such-id", "{}")
	assert.Error(t, err)
}

func TestStore_AppendLog_OrderedListing(t *testing.T) {
	store := newTestStore(t)
	_, report := seedDebate(t, store)
	ctx := context.Background()

	turns := []struct {
		agent models.AgentName
		role  models.AgentRole
		round int
	}{
		{models.AgentProponent, models.RolePro, 1},
		{models.AgentSkeptic, models.RoleCon, 1},
		{models.AgentProponent, models.RolePro, 2},
		{models.AgentSkeptic, models.RoleCon, 2},
		{models.AgentSynthesizer, models.RoleManager, models.SynthesisRound},
	}
	for i, turn := range turns {
		entry := &models.DebateLogEntry{
			ReportID:     report.ID,
			AgentName:    turn.agent,
			AgentRole:    turn.role,
			RoundNumber:  turn.round,
			ArgumentText: "argument",
			CreatedAt:    time.Now().UTC().Add(time.Duration(i) * time.Millisecond),
		}
		require.NoError(t, store.AppendLog(ctx, entry))
		assert.NotEmpty(t, entry.ID)
	}

	logs, err := store.ListLogs(ctx, report.ID)
	require.NoError(t, err)
	require.Len(t, logs, 5)

	for i, turn := range turns {
		assert.Equal(t, turn.agent, logs[i].AgentName)
		assert.Equal(t, turn.round, logs[i].RoundNumber)
	}
}

func TestStore_AttachEvidence_TruncatesChunk(t *testing.T) {
	store := newTestStore(t)
	_, report := seedDebate(t, store)
	ctx := context.Background()

	entry := &models.DebateLogEntry{
		ReportID:     report.ID,
		AgentName:    models.AgentProponent,
		AgentRole:    models.RolePro,
		RoundNumber:  1,
		ArgumentText: "argument",
	}
	require.NoError(t, store.AppendLog(ctx, entry))

	citations := []models.EvidenceCitation{
		{
			SourceDocument: "default_knowledge",
			ContentChunk:   strings.Repeat("z", 1500),
			SearchQuery:    "microservices benefits",
			RelevanceScore: 0.91,
			RetrievedAt:    time.Now().UTC(),
		},
	}
	require.NoError(t, store.AttachEvidence(ctx, entry.ID, citations))

	stored, err := store.ListEvidence(ctx, entry.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Len(t, stored[0].ContentChunk, 1000)
	assert.Equal(t, entry.ID, stored[0].LogID)
}

func TestStore_AttachEvidence_EmptyIsNoop(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.AttachEvidence(context.Background(), "whatever", nil))
}

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t)
	req, report := seedDebate(t, store)
	ctx := context.Background()

	require.NoError(t, store.Reset(ctx))

	gotReq, err := store.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Nil(t, gotReq)

	gotReport, err := store.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Nil(t, gotReport)
}

func TestStore_CascadeDelete(t *testing.T) {
	store := newTestStore(t)
	req, report := seedDebate(t, store)
	ctx := context.Background()

	entry := &models.DebateLogEntry{
		ReportID:     report.ID,
		AgentName:    models.AgentSkeptic,
		AgentRole:    models.RoleCon,
		RoundNumber:  1,
		ArgumentText: "counterpoint",
	}
	require.NoError(t, store.AppendLog(ctx, entry))
	require.NoError(t, store.AttachEvidence(ctx, entry.ID, []models.EvidenceCitation{
		{SourceDocument: "s", ContentChunk: "c", RetrievedAt: time.Now().UTC()},
	}))

	_, err := store.db.Conn().ExecContext(ctx, `DELETE FROM decision_requests WHERE id = ?`, req.ID)
	require.NoError(t, err)

	logs, err := store.ListLogs(ctx, report.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)

	citations, err := store.ListEvidence(ctx, entry.ID)
	require.NoError(t, err)
	assert.Empty(t, citations)
}

func TestStore_GetDebateWithEvidence(t *testing.T) {
	store := newTestStore(t)
	_, report := seedDebate(t, store)
	ctx := context.Background()

	entry := &models.DebateLogEntry{
		ReportID:     report.ID,
		AgentName:    models.AgentProponent,
		AgentRole:    models.RolePro,
		RoundNumber:  1,
		ArgumentText: "opening thesis",
	}
	require.NoError(t, store.AppendLog(ctx, entry))
	require.NoError(t, store.AttachEvidence(ctx, entry.ID, []models.EvidenceCitation{
		{
			SourceDocument: "default_knowledge",
			ContentChunk:   strings.Repeat("e", 350),
			SearchQuery:    "q",
			RelevanceScore: 0.8,
			RetrievedAt:    time.Now().UTC(),
		},
	}))
	require.NoError(t, store.SetFinalMatrix(ctx, report.ID, `{"synthesis": {}}`))

	replay, err := store.GetDebateWithEvidence(ctx, report.ID)
	require.NoError(t, err)
	require.NotNil(t, replay)
	assert.Equal(t, report.ID, replay.ReportID)
	assert.Equal(t, "Should we adopt microservices?", replay.Topic)
	require.NotNil(t, replay.DecisionMatrix)
	require.Len(t, replay.Rounds, 1)
	assert.Equal(t, "Proponent", replay.Rounds[0].Agent)
	require.Len(t, replay.Rounds[0].Evidence, 1)
	// Replay payload clips evidence to 200 chars plus ellipsis.
	assert.Len(t, replay.Rounds[0].Evidence[0].Content, 203)
}

func TestStore_GetDebateWithEvidence_Missing(t *testing.T) {
	store := newTestStore(t)

	replay, err := store.GetDebateWithEvidence(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, replay)
}
