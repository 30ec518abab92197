// Package sdk builds the prompt handed to the external session analyzer.
package sdk

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/thebtf/focusforge/pkg/models"
)

const (
	// MaxPromptWorkspaces caps the workspaces listed in the analyzer input.
	MaxPromptWorkspaces = 5

	// MaxPromptEvents caps the events listed; the most recent ones are kept.
	MaxPromptEvents = 200

	maxTitleLen = 200
)

// analysisInstructions describes the JSON the analyzer must return. The
// field names match models.AnalysisResult.
const analysisInstructions = `You are FocusForge, an assistant that analyzes browser activity from a single focus session. Return ONLY valid JSON that matches the schema below. No backticks. No explanations.

Constraints:
- nextActions: at most 5, each starts with a verb.
- pendingDecisions: at most 3.
- resumeSummary: 1 to 2 sentences.
- aiConfidenceLabel: one of "high", "medium", "low".
- Do not invent websites, events, or facts not in the input. Any URL you mention must appear in the input events.
- Labels should be short and human-friendly.

Schema:
{"goalInferred":"string","resumeSummary":"string","nextActions":["string"],"pendingDecisions":["string"],"aiConfidenceLabel":"string"}`

// PromptEvent is one visited page as shown to the analyzer.
type PromptEvent struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	DurationSec int    `json:"durationSec"`
}

// PromptWorkspace is one aggregated domain as shown to the analyzer.
type PromptWorkspace struct {
	Label   string   `json:"label"`
	TopURLs []string `json:"topUrls"`
	TimeSec int      `json:"timeSec"`
}

// PromptLastStop is the page the user was on last.
type PromptLastStop struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// PromptInput is the structured session digest embedded in the prompt.
type PromptInput struct {
	LastStop   *PromptLastStop   `json:"lastStop"`
	Goal       string            `json:"goal"`
	Events     []PromptEvent     `json:"events"`
	Workspaces []PromptWorkspace `json:"workspaces"`
}

// NewPromptInput digests a computed summary. Only active-tab events are
// listed; ignored (background) domains never appear as workspaces.
func NewPromptInput(sum *models.ComputedSummary) PromptInput {
	in := PromptInput{
		Goal:       sum.GoalInferred,
		Events:     []PromptEvent{},
		Workspaces: []PromptWorkspace{},
	}

	for _, ev := range sum.Timeline {
		if ev.Type != models.EventTabActive || ev.URL == "" {
			continue
		}
		in.Events = append(in.Events, PromptEvent{
			URL:         ev.URL,
			Title:       truncate(ev.Title, maxTitleLen),
			DurationSec: ev.Duration(),
		})
	}
	if len(in.Events) > MaxPromptEvents {
		in.Events = in.Events[len(in.Events)-MaxPromptEvents:]
	}

	for i, d := range sum.Domains {
		if i == MaxPromptWorkspaces {
			break
		}
		in.Workspaces = append(in.Workspaces, PromptWorkspace{
			Label:   d.Label,
			TopURLs: d.TopURLs,
			TimeSec: d.TimeSec,
		})
	}

	if sum.LastStop != nil {
		in.LastStop = &PromptLastStop{
			Label: sum.LastStop.WorkspaceLabel,
			URL:   sum.LastStop.URL,
		}
	}
	return in
}

// BuildAnalysisPrompt renders the full analyzer prompt for a summary.
func BuildAnalysisPrompt(sum *models.ComputedSummary) (string, error) {
	if sum == nil {
		return "", fmt.Errorf("build analysis prompt: nil summary")
	}
	input, err := json.MarshalIndent(NewPromptInput(sum), "", "  ")
	if err != nil {
		return "", fmt.Errorf("build analysis prompt: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(analysisInstructions)
	sb.WriteString("\n\nInput:\n")
	sb.Write(input)
	return sb.String(), nil
}

// truncate shortens s to maxLen runes.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
