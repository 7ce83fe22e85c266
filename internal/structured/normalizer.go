// Package structured turns unreliable free-text model output into typed
// decision matrices. Extraction is a total function: any input yields
// either a parsed object or the nil sentinel, never a panic.
package structured

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"dev.cogito.requiem/internal/models"
)

var (
	fenceOpenRe  = regexp.MustCompile("```json\\s*")
	fenceCloseRe = regexp.MustCompile("```\\s*")
	thesisRe     = regexp.MustCompile(`\{\s*"thesis"\s*:`)
)

// StripFences removes markdown code-fence markers from model output.
func StripFences(raw string) string {
	clean := fenceOpenRe.ReplaceAllString(raw, "")
	return fenceCloseRe.ReplaceAllString(clean, "")
}

// Extract locates and parses a decision-matrix JSON object inside raw model
// output. Fallback chain, in priority order:
//  1. strip markdown fences
//  2. object whose first key is "thesis", braces balanced from that position
//  3. any brace-balanced candidate, longest first, that parses and carries a
//     "thesis" or "synthesis" key
//  4. the entire cleaned string
//
// Returns nil when nothing parses. Callers must treat nil as a recoverable
// outcome, not a failure.
func Extract(raw string) map[string]interface{} {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	clean := StripFences(raw)

	if loc := thesisRe.FindStringIndex(clean); loc != nil {
		if span, ok := balancedSpan(clean, loc[0]); ok {
			if obj := parseObject(span); obj != nil {
				return obj
			}
		}
	}

	candidates := balancedCandidates(clean)
	sort.Slice(candidates, func(i, j int) bool {
		return len(candidates[i]) > len(candidates[j])
	})
	for _, cand := range candidates {
		obj := parseObject(cand)
		if obj == nil {
			continue
		}
		if _, ok := obj["thesis"]; ok {
			return obj
		}
		if _, ok := obj["synthesis"]; ok {
			return obj
		}
	}

	return parseObject(strings.TrimSpace(clean))
}

// Decode extracts a matrix from raw output and maps it onto the strict
// envelope type, clamping confidence and normalizing severities. The bool
// is false when no structured result could be recovered.
func Decode(raw string) (*models.DecisionMatrix, bool) {
	obj := Extract(raw)
	if obj == nil {
		return nil, false
	}

	// Round-trip through JSON to apply the strict schema.
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, false
	}
	var matrix models.DecisionMatrix
	if err := json.Unmarshal(data, &matrix); err != nil {
		return nil, false
	}
	matrix.Normalize()
	return &matrix, true
}

func parseObject(s string) map[string]interface{} {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil
	}
	return obj
}

// balancedSpan returns the substring of s starting at start whose braces
// balance, skipping braces inside JSON string literals.
func balancedSpan(s string, start int) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// balancedCandidates collects the brace-balanced substring starting at
// every opening brace. Nested objects are included on purpose: a malformed
// outer object must not hide a well-formed inner one.
func balancedCandidates(s string) []string {
	var spans []string
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		if span, ok := balancedSpan(s, i); ok {
			spans = append(spans, span)
		}
	}
	return spans
}
