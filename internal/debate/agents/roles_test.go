package agents

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.cogito.requiem/internal/models"
)

func TestDefaultRoles(t *testing.T) {
	roles := DefaultRoles()
	require.Len(t, roles, 3)

	pro, ok := RoleByName(roles, models.AgentProponent)
	require.True(t, ok)
	assert.Equal(t, models.RolePro, pro.Role)
	assert.True(t, pro.AllowRetrieval)
	assert.Equal(t, 5, pro.MaxIterations)

	synth, ok := RoleByName(roles, models.AgentSynthesizer)
	require.True(t, ok)
	assert.Equal(t, models.RoleManager, synth.Role)
	assert.False(t, synth.AllowRetrieval)
	assert.Equal(t, 3, synth.MaxIterations)
	assert.Less(t, synth.Temperature, pro.Temperature)
}

func TestRoleByName_Missing(t *testing.T) {
	_, ok := RoleByName(DefaultRoles(), "Moderator")
	assert.False(t, ok)
}

func TestRetrievalQuery(t *testing.T) {
	roles := DefaultRoles()

	pro, _ := RoleByName(roles, models.AgentProponent)
	assert.Equal(t, "adopt kafka benefits advantages", pro.RetrievalQuery("adopt kafka"))

	con, _ := RoleByName(roles, models.AgentSkeptic)
	assert.Equal(t, "adopt kafka risks challenges drawbacks", con.RetrievalQuery("adopt kafka"))
}

func TestBuildPrompt_Proponent(t *testing.T) {
	pro, _ := RoleByName(DefaultRoles(), models.AgentProponent)

	prompt := pro.BuildPrompt(TurnContext{
		Topic:      "adopt microservices",
		Round:      1,
		TotalRound: 2,
		Evidence:   "EVIDENCE 1 (Source: default_knowledge, Relevance: 0.90):\nsome chunk",
	})

	assert.Contains(t, prompt, `DEBATE TOPIC: "adopt microservices"`)
	assert.Contains(t, prompt, "ROUND: 1 of 2")
	assert.Contains(t, prompt, "This is the opening round.")
	assert.Contains(t, prompt, "EVIDENCE FROM THE KNOWLEDGE BASE:")
	assert.Contains(t, prompt, "Argue IN FAVOR")
}

func TestBuildPrompt_Proponent_TranscriptWindow(t *testing.T) {
	pro, _ := RoleByName(DefaultRoles(), models.AgentProponent)

	transcript := strings.Repeat("a", 2000) + "RECENT TAIL"
	prompt := pro.BuildPrompt(TurnContext{Topic: "t", Round: 2, TotalRound: 2, Transcript: transcript})

	assert.Contains(t, prompt, "RECENT TAIL")
	assert.NotContains(t, prompt, strings.Repeat("a", 1500))
}

func TestBuildPrompt_Skeptic(t *testing.T) {
	con, _ := RoleByName(DefaultRoles(), models.AgentSkeptic)

	prompt := con.BuildPrompt(TurnContext{
		Topic:    "adopt microservices",
		Round:    1,
		Rebuttal: "microservices scale independently",
	})

	assert.Contains(t, prompt, "Argue AGAINST")
	assert.Contains(t, prompt, "THESIS ARGUMENT TO COUNTER:")
	assert.Contains(t, prompt, "microservices scale independently")
}

func TestBuildPrompt_Synthesizer(t *testing.T) {
	synth, _ := RoleByName(DefaultRoles(), models.AgentSynthesizer)

	prompt := synth.BuildPrompt(TurnContext{
		Topic:       "adopt microservices",
		Transcript:  "[Round 1 - Proponent]: yes\n[Round 1 - Skeptic]: no\n",
		ProEvidence: 6,
		ConEvidence: 6,
	})

	assert.Contains(t, prompt, "DECISION MATRIX")
	assert.Contains(t, prompt, "Thesis (Pro) citations found: 6")
	assert.Contains(t, prompt, "Antithesis (Con) citations found: 6")
	assert.Contains(t, prompt, "Total evidence pieces: 12")
	assert.Contains(t, prompt, "Start at 50 (neutral baseline)")
	assert.Contains(t, prompt, "Final score must be between 0-100.")
	assert.Contains(t, prompt, "Return ONLY valid JSON")
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail("short", 100))
	assert.Equal(t, "cdef", tail("abcdef", 4))
}
