package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thebtf/focusforge/internal/summary"
	"github.com/thebtf/focusforge/pkg/models"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		sec  int
		want string
	}{
		{-5, "0s"},
		{0, "0s"},
		{45, "45s"},
		{60, "1m"},
		{150, "2m 30s"},
		{3600, "1h 0m"},
		{3905, "1h 5m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.sec))
	}
}

func TestRenderNil(t *testing.T) {
	assert.Equal(t, "", Render(nil))
}

func TestRenderFullSummary(t *testing.T) {
	ended := int64(180000)
	session := models.Session{
		ID:         "s1",
		Status:     models.SessionStatusEnded,
		EndedAt:    &ended,
		IntentTags: []string{"leetcode practice"},
	}
	events := []models.Event{
		{TS: 1, Type: models.EventTabActive, URL: "https://leetcode.com/problems/two-sum", Title: "Two Sum [Easy]"},
		{TS: 120001, Type: models.EventTabActive, URL: "https://youtube.com/watch?v=x", Title: "Funny cat video"},
	}
	res := &models.AnalysisResult{
		ResumeSummary:    "Solved Two Sum, then drifted.",
		NextActions:      []string{"Try Three Sum"},
		PendingDecisions: []string{"Python or Go?"},
	}

	md := Render(summary.NewEngine(nil, summary.DefaultOptions()).Compute(session, events, res))

	assert.Contains(t, md, "# Session summary")
	assert.Contains(t, md, "**Goal:** leetcode practice")
	assert.Contains(t, md, "**Status:** ended")
	assert.Contains(t, md, NoScoreText)
	assert.Contains(t, md, "- Aligned: 2m\n")
	assert.Contains(t, md, "- Drifted to: YouTube (1m)")
	assert.Contains(t, md, "Solved Two Sum, then drifted.")
	assert.Contains(t, md, "| LeetCode | primary | 2m |")
	assert.Contains(t, md, "| YouTube | drift | 1m |")
	assert.Contains(t, md, "[Funny cat video](https://youtube.com/watch?v=x) on YouTube")
	assert.Contains(t, md, "- [https://youtube.com/watch?v=x](https://youtube.com/watch?v=x)")
	assert.Contains(t, md, `- [Two Sum \[Easy\]](https://leetcode.com/problems/two-sum) (leetcode.com)`)
	assert.Contains(t, md, "## Next actions\n\n- Try Three Sum\n")
	assert.Contains(t, md, "## Pending decisions\n\n- Python or Go?\n")
}

func TestRenderScoreAndBackground(t *testing.T) {
	pct := 80
	sum := &models.ComputedSummary{
		GoalInferred: "Ship the release",
		Focus: models.FocusSummary{
			DisplayFocusPct: &pct,
			AlignedTimeSec:  800,
			BreakTimeSec:    300,
		},
		Narrative: models.Narrative{Recap: "Shipped."},
		TimeBreakdown: []models.TimeBreakdownEntry{
			{Label: "A | B", Domain: "ab.example", Type: models.WorkspaceSupport, TimeSec: 800},
			{Label: "Background", TimeSec: 200, Background: true},
		},
	}

	md := Render(sum)
	assert.Contains(t, md, "Focus score: **80%**")
	assert.Contains(t, md, "- Breaks: 5m\n")
	assert.Contains(t, md, `| A \| B | support | 13m 20s |`)
	assert.Contains(t, md, "| Background | ignored | 3m 20s |")
	assert.NotContains(t, md, "**Status:**")
	assert.NotContains(t, md, "## Last stop")
	assert.NotContains(t, md, "## Next actions")
}
