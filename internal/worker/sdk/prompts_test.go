package sdk

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thebtf/focusforge/pkg/models"
)

func dur(sec int) *int { return &sec }

func sampleSummary() *models.ComputedSummary {
	return &models.ComputedSummary{
		SessionID:    "s1",
		GoalInferred: "Interview prep",
		Timeline: []models.TimelineEvent{
			{Event: models.Event{Type: models.EventTabActive, URL: "https://leetcode.com/problems/two-sum", Title: "Two Sum", TS: 1000}, DurationSec: dur(300), Domain: "leetcode.com"},
			{Event: models.Event{Type: models.EventPause, TS: 301000}},
			{Event: models.Event{Type: models.EventBreak, TS: 302000}, DurationSec: dur(60)},
			{Event: models.Event{Type: models.EventTabActive, URL: "https://github.com/me/repo", Title: "repo", TS: 362000}, DurationSec: dur(120), Domain: "github.com"},
		},
		Domains: []models.DomainSummary{
			{Domain: "leetcode.com", Label: "LeetCode", TimeSec: 300, TopURLs: []string{"https://leetcode.com/problems/two-sum"}},
			{Domain: "github.com", Label: "GitHub", TimeSec: 120, TopURLs: []string{"https://github.com/me/repo"}},
		},
		LastStop: &models.LastStop{URL: "https://github.com/me/repo", Domain: "github.com", WorkspaceLabel: "GitHub"},
	}
}

func TestNewPromptInput(t *testing.T) {
	in := NewPromptInput(sampleSummary())

	assert.Equal(t, "Interview prep", in.Goal)
	require.Len(t, in.Events, 2)
	assert.Equal(t, "https://leetcode.com/problems/two-sum", in.Events[0].URL)
	assert.Equal(t, 300, in.Events[0].DurationSec)
	require.Len(t, in.Workspaces, 2)
	assert.Equal(t, "LeetCode", in.Workspaces[0].Label)
	require.NotNil(t, in.LastStop)
	assert.Equal(t, "GitHub", in.LastStop.Label)
}

func TestNewPromptInputCaps(t *testing.T) {
	sum := &models.ComputedSummary{}
	for i := 0; i < MaxPromptEvents+10; i++ {
		sum.Timeline = append(sum.Timeline, models.TimelineEvent{
			Event:       models.Event{Type: models.EventTabActive, URL: "https://example.com/" + strings.Repeat("a", i%3), Title: strings.Repeat("t", 300), TS: int64(i + 1)},
			DurationSec: dur(i),
		})
	}
	for i := 0; i < MaxPromptWorkspaces+3; i++ {
		sum.Domains = append(sum.Domains, models.DomainSummary{Label: "d"})
	}

	in := NewPromptInput(sum)
	require.Len(t, in.Events, MaxPromptEvents)
	assert.Equal(t, MaxPromptEvents+9, in.Events[len(in.Events)-1].DurationSec)
	assert.Equal(t, 10, in.Events[0].DurationSec)
	assert.Equal(t, maxTitleLen+3, len([]rune(in.Events[0].Title)))
	assert.Len(t, in.Workspaces, MaxPromptWorkspaces)
	assert.Nil(t, in.LastStop)
}

func TestBuildAnalysisPrompt(t *testing.T) {
	prompt, err := BuildAnalysisPrompt(sampleSummary())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "You are FocusForge"))
	assert.Contains(t, prompt, `"resumeSummary"`)

	idx := strings.Index(prompt, "Input:\n")
	require.GreaterOrEqual(t, idx, 0)

	var decoded PromptInput
	require.NoError(t, json.Unmarshal([]byte(prompt[idx+len("Input:\n"):]), &decoded))
	assert.Equal(t, "Interview prep", decoded.Goal)
	assert.Len(t, decoded.Events, 2)
}

func TestBuildAnalysisPromptNil(t *testing.T) {
	_, err := BuildAnalysisPrompt(nil)
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"long", "abcdef", 3, "abc..."},
		{"multibyte", "żółwik", 3, "żół..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.input, tt.maxLen))
		})
	}
}
