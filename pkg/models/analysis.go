// Package models contains domain models for focusforge.
package models

import "strings"

// ConfidenceLabel is the analyzer's self-reported confidence.
type ConfidenceLabel string

const (
	ConfidenceHigh   ConfidenceLabel = "high"
	ConfidenceMedium ConfidenceLabel = "medium"
	ConfidenceLow    ConfidenceLabel = "low"
)

// ParseConfidenceLabel normalizes a raw label. Unknown labels yield "".
func ParseConfidenceLabel(raw string) ConfidenceLabel {
	switch l := ConfidenceLabel(strings.ToLower(strings.TrimSpace(raw))); l {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return l
	}
	return ""
}

// AnalysisResult is the narrative payload produced by the external analyzer.
// It is untrusted: two generations of the analyzer used different field
// names, so both spellings are accepted.
type AnalysisResult struct {
	ResumeSummary     string   `json:"resumeSummary,omitempty"`
	AIRecap           string   `json:"aiRecap,omitempty"`
	GoalInferred      string   `json:"goalInferred,omitempty"`
	AIConfidenceLabel string   `json:"aiConfidenceLabel,omitempty"`
	NextActions       []string `json:"nextActions,omitempty"`
	AIActions         []string `json:"aiActions,omitempty"`
	PendingDecisions  []string `json:"pendingDecisions,omitempty"`
}

// NarrativeSource records where the narrative fields came from.
type NarrativeSource string

const (
	NarrativeFromAnalyzer NarrativeSource = "analyzer"
	NarrativeFallback     NarrativeSource = "fallback"
	NarrativeSuppressed   NarrativeSource = "suppressed"
)

// Narrative holds the human-readable recap and suggested next steps.
type Narrative struct {
	Recap            string          `json:"recap"`
	Confidence       ConfidenceLabel `json:"confidence,omitempty"`
	Source           NarrativeSource `json:"source"`
	NextActions      []string        `json:"nextActions"`
	PendingDecisions []string        `json:"pendingDecisions"`
}
