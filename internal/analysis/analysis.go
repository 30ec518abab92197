// Package analysis decodes and sanitizes the narrative payload produced by the
// external session analyzer before the summary composer reads it.
package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/thebtf/focusforge/pkg/models"
)

const (
	// MaxNextActions caps the suggested next actions.
	MaxNextActions = 5
	// MaxPendingDecisions caps the open decisions.
	MaxPendingDecisions = 3
)

// ErrEmptyPayload is returned by Decode when there is nothing to decode.
var ErrEmptyPayload = errors.New("empty analysis payload")

// Decode parses an analyzer response. Markdown code fences around the JSON
// document are tolerated.
func Decode(data []byte) (*models.AnalysisResult, error) {
	text := stripFences(string(data))
	if text == "" {
		return nil, ErrEmptyPayload
	}

	var res models.AnalysisResult
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &res, nil
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "```json"):
		text = text[len("```json"):]
	case strings.HasPrefix(text, "```"):
		text = text[len("```"):]
	}
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// Sanitize turns an untrusted payload into a Narrative. Items citing a URL
// that does not appear in knownURLs are dropped. The boolean is false when
// nothing usable remains.
func Sanitize(res *models.AnalysisResult, knownURLs []string) (*models.Narrative, bool) {
	if res == nil {
		return nil, false
	}

	known := make(map[string]struct{}, len(knownURLs))
	for _, u := range knownURLs {
		known[u] = struct{}{}
	}
	s := sanitizer{known: known}

	recap := res.ResumeSummary
	if strings.TrimSpace(recap) == "" {
		recap = res.AIRecap
	}
	actions := res.NextActions
	if len(actions) == 0 {
		actions = res.AIActions
	}

	n := &models.Narrative{
		Recap:            s.text(recap),
		Confidence:       models.ParseConfidenceLabel(res.AIConfidenceLabel),
		Source:           models.NarrativeFromAnalyzer,
		NextActions:      s.list(actions, MaxNextActions),
		PendingDecisions: s.list(res.PendingDecisions, MaxPendingDecisions),
	}
	if n.Recap == "" && len(n.NextActions) == 0 && len(n.PendingDecisions) == 0 {
		return nil, false
	}
	return n, true
}

type sanitizer struct {
	known map[string]struct{}
}

// text cleans one item and returns "" when it is empty or cites an unknown URL.
func (s sanitizer) text(raw string) string {
	cleaned := Clean(raw)
	for _, u := range CitedURLs(cleaned) {
		if _, ok := s.known[u]; !ok {
			return ""
		}
	}
	return cleaned
}

// list cleans, deduplicates and caps items, preserving order.
func (s sanitizer) list(items []string, limit int) []string {
	out := make([]string, 0, min(len(items), limit))
	seen := make(map[string]struct{}, len(items))
	for _, raw := range items {
		item := s.text(raw)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out
}
