package models

import "fmt"

// Severity classifies a risk in the decision matrix.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// ValidSeverity reports whether s is one of the three allowed values.
func ValidSeverity(s Severity) bool {
	return s == SeverityHigh || s == SeverityMedium || s == SeverityLow
}

// MatrixSide holds one side of the debate as three condensed points.
type MatrixSide struct {
	Title  string   `json:"title"`
	Points []string `json:"points"`
}

// Synthesis is the synthesizer's verdict over the full debate.
type Synthesis struct {
	Recommendation string `json:"recommendation"`
	Summary        string `json:"summary"`
	Confidence     int    `json:"confidence"`
}

// Risk is one identified risk with its severity.
type Risk struct {
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Desc     string   `json:"desc"`
}

// DecisionMatrix is the uniform response envelope returned by the API for
// every debate outcome: success, timeout, cancellation, and error.
type DecisionMatrix struct {
	Thesis     MatrixSide `json:"thesis"`
	Antithesis MatrixSide `json:"antithesis"`
	Synthesis  Synthesis  `json:"synthesis"`
	Risks      []Risk     `json:"risks"`
}

// ClampConfidence bounds a raw confidence score to [0, 100].
func ClampConfidence(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Normalize clamps the confidence score and coerces unknown severities to
// low so a matrix decoded from model output always satisfies the envelope
// invariants.
func (m *DecisionMatrix) Normalize() {
	m.Synthesis.Confidence = ClampConfidence(m.Synthesis.Confidence)
	if m.Risks == nil {
		m.Risks = []Risk{}
	}
	for i := range m.Risks {
		if !ValidSeverity(m.Risks[i].Severity) {
			m.Risks[i].Severity = SeverityLow
		}
	}
}

// truncate shortens s to max runes for envelope summaries.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// TimeoutMatrix is the envelope returned when a debate exceeds the
// configured wall-clock bound.
func TimeoutMatrix(timeoutSeconds int) *DecisionMatrix {
	return &DecisionMatrix{
		Thesis:     MatrixSide{Title: "Timeout", Points: []string{"The debate agents took too long to respond."}},
		Antithesis: MatrixSide{Title: "Timeout", Points: []string{"Consider simplifying the topic or trying again."}},
		Synthesis: Synthesis{
			Recommendation: "Timed Out",
			Summary:        fmt.Sprintf("The debate exceeded the %d second limit. Try rephrasing the topic.", timeoutSeconds),
			Confidence:     0,
		},
		Risks: []Risk{{Severity: SeverityMedium, Title: "Processing Limit", Desc: "Agents may loop on complex topics."}},
	}
}

// CancelledMatrix is the envelope returned for a user-cancelled debate.
func CancelledMatrix() *DecisionMatrix {
	return &DecisionMatrix{
		Thesis:     MatrixSide{Title: "Cancelled", Points: []string{"Debate was cancelled by the user."}},
		Antithesis: MatrixSide{Title: "Cancelled", Points: []string{"No arguments generated."}},
		Synthesis: Synthesis{
			Recommendation: "Cancelled",
			Summary:        "The debate was stopped before completion.",
			Confidence:     0,
		},
		Risks: []Risk{},
	}
}

// ErrorMatrix is the envelope returned when the debate fails internally.
// The message is truncated so raw faults never leak verbatim to callers.
func ErrorMatrix(err error) *DecisionMatrix {
	msg := "unknown error"
	if err != nil {
		msg = truncate(err.Error(), 200)
	}
	return &DecisionMatrix{
		Thesis:     MatrixSide{Title: "Error", Points: []string{"An error occurred during the debate."}},
		Antithesis: MatrixSide{Title: "Error", Points: []string{msg}},
		Synthesis: Synthesis{
			Recommendation: "Failed",
			Summary:        "Check the server logs for error details.",
			Confidence:     0,
		},
		Risks: []Risk{{Severity: SeverityHigh, Title: "System Error", Desc: msg}},
	}
}

// ReviewOutputMatrix is the envelope returned when the synthesizer's output
// could not be parsed into a decision matrix. The truncated raw text rides
// in the summary so callers still receive structured data.
func ReviewOutputMatrix(raw string) *DecisionMatrix {
	return &DecisionMatrix{
		Thesis:     MatrixSide{Title: "Arguments For", Points: []string{"See raw output below"}},
		Antithesis: MatrixSide{Title: "Arguments Against", Points: []string{"See raw output below"}},
		Synthesis: Synthesis{
			Recommendation: "Review Output",
			Summary:        truncate(raw, 500),
			Confidence:     50,
		},
		Risks: []Risk{{Severity: SeverityLow, Title: "Parse Issue", Desc: "Could not parse structured output, showing raw text."}},
	}
}
