// Package agents defines the scripted debate roles and executes their
// turns against the text-generation and retrieval collaborators.
package agents

import (
	"fmt"
	"strings"

	"dev.cogito.requiem/internal/models"
)

const (
	// transcriptWindow is how much prior transcript a debater sees.
	transcriptWindow = 1000
	// rebuttalWindow is how much of the opposing argument the skeptic sees.
	rebuttalWindow = 500
)

// RoleConfig describes one scripted role as data. The orchestrator drives
// an ordered list of these instead of hardcoding per-role call sites.
type RoleConfig struct {
	Name              models.AgentName `yaml:"name" json:"name"`
	Role              models.AgentRole `yaml:"role" json:"role"`
	AllowRetrieval    bool             `yaml:"allow_retrieval" json:"allow_retrieval"`
	MaxIterations     int              `yaml:"max_iterations" json:"max_iterations"`
	RequestsPerMinute int              `yaml:"requests_per_minute" json:"requests_per_minute"`
	Temperature       float64          `yaml:"temperature" json:"temperature"`
	MaxTokens         int              `yaml:"max_tokens" json:"max_tokens"`
	SystemPrompt      string           `yaml:"system_prompt" json:"system_prompt"`
}

// DefaultRoles returns the three scripted roles with their instruction
// contracts and budgets.
func DefaultRoles() []RoleConfig {
	return []RoleConfig{
		{
			Name:              models.AgentProponent,
			Role:              models.RolePro,
			AllowRetrieval:    true,
			MaxIterations:     5,
			RequestsPerMinute: 10,
			Temperature:       0.7,
			MaxTokens:         512,
			SystemPrompt: `You are a Proponent Architect who argues IN FAVOR of the topic.
RULES:
- Write exactly 3 concise sentences
- Include specific facts or citations from the evidence provided
- If the evidence is imperfect, make your argument anyway`,
		},
		{
			Name:              models.AgentSkeptic,
			Role:              models.RoleCon,
			AllowRetrieval:    true,
			MaxIterations:     5,
			RequestsPerMinute: 10,
			Temperature:       0.7,
			MaxTokens:         512,
			SystemPrompt: `You are a Skeptical Architect who argues AGAINST the topic and finds risks.
RULES:
- Write exactly 3 concise sentences about risks and flaws
- Be specific about drawbacks, citing the evidence provided
- If the evidence is imperfect, make your argument anyway`,
		},
		{
			Name:              models.AgentSynthesizer,
			Role:              models.RoleManager,
			AllowRetrieval:    false,
			MaxIterations:     3,
			RequestsPerMinute: 10,
			Temperature:       0.3,
			MaxTokens:         2048,
			SystemPrompt: `You are a CTO who synthesizes arguments into decisions.
You DO NOT search for information - you only analyze what is given to you.
Always respond with valid JSON only.`,
		},
	}
}

// RoleByName returns the role config with the given name.
func RoleByName(roles []RoleConfig, name models.AgentName) (RoleConfig, bool) {
	for _, r := range roles {
		if r.Name == name {
			return r, true
		}
	}
	return RoleConfig{}, false
}

// TurnContext carries everything a role needs to produce its argument.
type TurnContext struct {
	Topic      string
	Round      int
	TotalRound int
	// Transcript is the accumulated debate history; debaters see its tail.
	Transcript string
	// Rebuttal is the opposing argument a skeptic counters.
	Rebuttal string
	// Evidence is the formatted retrieval block, empty when nothing was
	// retrieved or the role has no retrieval capability.
	Evidence string
	// ProEvidence / ConEvidence are running citation totals handed to the
	// synthesizer for its confidence calculation.
	ProEvidence int
	ConEvidence int
}

// BuildPrompt renders the role's instruction template over the turn
// context.
func (r RoleConfig) BuildPrompt(tc TurnContext) string {
	switch r.Name {
	case models.AgentSkeptic:
		return buildSkepticPrompt(tc)
	case models.AgentSynthesizer:
		return buildSynthesizerPrompt(tc)
	default:
		return buildProponentPrompt(tc)
	}
}

// RetrievalQuery derives the single search query a retrieval-capable role
// issues for its turn.
func (r RoleConfig) RetrievalQuery(topic string) string {
	switch r.Role {
	case models.RoleCon:
		return topic + " risks challenges drawbacks"
	default:
		return topic + " benefits advantages"
	}
}

func buildProponentPrompt(tc TurnContext) string {
	history := "This is the opening round."
	if tc.Transcript != "" {
		history = tail(tc.Transcript, transcriptWindow)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "DEBATE TOPIC: %q\n", tc.Topic)
	fmt.Fprintf(&sb, "ROUND: %d of %d\n", tc.Round, tc.TotalRound)
	sb.WriteString("YOUR ROLE: Argue IN FAVOR of this topic\n\n")
	fmt.Fprintf(&sb, "PREVIOUS ARGUMENTS:\n%s\n\n", history)
	if tc.Evidence != "" {
		fmt.Fprintf(&sb, "EVIDENCE FROM THE KNOWLEDGE BASE:\n%s\n\n", tc.Evidence)
	}
	sb.WriteString(`YOUR TASK:
Write exactly 3 sentences supporting this topic.
Include specific facts or citations from the evidence.

CONSTRAINTS:
- Maximum 3 sentences
- Focus on benefits, advantages, and success cases`)
	return sb.String()
}

func buildSkepticPrompt(tc TurnContext) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "DEBATE TOPIC: %q\n", tc.Topic)
	fmt.Fprintf(&sb, "ROUND: %d of %d\n", tc.Round, tc.TotalRound)
	sb.WriteString("YOUR ROLE: Argue AGAINST and find RISKS\n\n")
	fmt.Fprintf(&sb, "THESIS ARGUMENT TO COUNTER:\n%q\n\n", tail(tc.Rebuttal, rebuttalWindow))
	if tc.Evidence != "" {
		fmt.Fprintf(&sb, "COUNTER-EVIDENCE FROM THE KNOWLEDGE BASE:\n%s\n\n", tc.Evidence)
	}
	sb.WriteString(`YOUR TASK:
Write exactly 3 sentences criticizing the thesis.
Focus on risks, challenges, and failure cases.

CONSTRAINTS:
- Maximum 3 sentences
- Be specific about risks and drawbacks`)
	return sb.String()
}

func buildSynthesizerPrompt(tc TurnContext) string {
	var sb strings.Builder
	sb.WriteString("Analyze this complete debate and create a DECISION MATRIX.\n\n")
	fmt.Fprintf(&sb, "TOPIC: %s\n\n", tc.Topic)
	fmt.Fprintf(&sb, "FULL DEBATE TRANSCRIPT:\n%s\n\n", tc.Transcript)
	fmt.Fprintf(&sb, `EVIDENCE STATISTICS:
- Thesis (Pro) citations found: %d
- Antithesis (Con) citations found: %d
- Total evidence pieces: %d

`, tc.ProEvidence, tc.ConEvidence, tc.ProEvidence+tc.ConEvidence)
	sb.WriteString(`Create a JSON response with this EXACT structure:
{
    "thesis": { "title": "Arguments For", "points": ["point 1", "point 2", "point 3"] },
    "antithesis": { "title": "Arguments Against", "points": ["point 1", "point 2", "point 3"] },
    "synthesis": { "recommendation": "Your verdict (5 words max)", "summary": "One sentence explaining the best path forward.", "confidence": <CALCULATE_USING_RULES_BELOW> },
    "risks": [
        { "severity": "high", "title": "Risk Title", "desc": "Description" },
        { "severity": "medium", "title": "Risk Title", "desc": "Description" }
    ]
}

===== CONFIDENCE CALCULATION RULES =====
You MUST calculate confidence using this formula:

1. Start at 50 (neutral baseline)

2. EVIDENCE QUALITY (add points):
   - If thesis has 3+ evidence citations: +10
   - If antithesis has 3+ evidence citations: +10
   - If both sides have equal evidence (balanced debate): +5

3. ARGUMENT STRENGTH (add points):
   - If arguments are specific with facts: +10
   - If arguments directly address the topic: +5

4. RISK PENALTY (subtract points):
   - For each HIGH severity risk you identify: -10
   - For each MEDIUM severity risk you identify: -5

5. CLARITY BONUS (add points):
   - If there's a clear winner/recommendation: +10
   - If the decision is nuanced/context-dependent: +5

Final score must be between 0-100.
The confidence should reflect how RELIABLE your recommendation is,
NOT how good the winning option is.
=========================================

RULES:
- Return ONLY valid JSON, no other text
- No markdown code blocks
- severity must be "high", "medium", or "low"
- Base your synthesis on the actual debate arguments`)
	return sb.String()
}

// tail returns the last max bytes of s.
func tail(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[len(s)-max:]
}
