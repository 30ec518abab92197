// Package journal renders a computed session summary as a markdown journal entry.
package journal

import (
	"fmt"
	"strings"

	"github.com/thebtf/focusforge/pkg/models"
)

// NoScoreText replaces the focus score when it is not shown.
const NoScoreText = "Not enough signal to score focus."

var (
	linkEscaper  = strings.NewReplacer("[", `\[`, "]", `\]`)
	tableEscaper = strings.NewReplacer("|", `\|`, "\n", " ")
)

// Render returns the markdown journal entry for sum.
func Render(sum *models.ComputedSummary) string {
	if sum == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("# Session summary\n\n")
	fmt.Fprintf(&b, "**Goal:** %s\n", sum.GoalInferred)
	if sum.Status != "" {
		fmt.Fprintf(&b, "**Status:** %s\n", sum.Status)
	}

	b.WriteString("\n## Focus\n\n")
	writeFocus(&b, sum.Focus)

	b.WriteString("\n## Recap\n\n")
	b.WriteString(sum.Narrative.Recap)
	b.WriteString("\n")

	if len(sum.TimeBreakdown) > 0 {
		b.WriteString("\n## Time breakdown\n\n")
		b.WriteString("| Workspace | Type | Time |\n|---|---|---|\n")
		for _, row := range sum.TimeBreakdown {
			typ := string(row.Type)
			if row.Background {
				typ = "ignored"
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n", tableEscaper.Replace(row.Label), typ, FormatDuration(row.TimeSec))
		}
	}

	if sum.LastStop != nil {
		b.WriteString("\n## Last stop\n\n")
		fmt.Fprintf(&b, "%s on %s\n", link(sum.LastStop.Title, sum.LastStop.URL), sum.LastStop.WorkspaceLabel)
	}

	writeList(&b, "Resume", sum.ResumeURLs, func(u string) string { return link("", u) })

	if len(sum.TopPages) > 0 {
		b.WriteString("\n## Top pages\n\n")
		for _, p := range sum.TopPages {
			fmt.Fprintf(&b, "- %s (%s)\n", link(p.Title, p.URL), p.Domain)
		}
	}

	writeList(&b, "Next actions", sum.Narrative.NextActions, nil)
	writeList(&b, "Pending decisions", sum.Narrative.PendingDecisions, nil)
	return b.String()
}

func writeFocus(b *strings.Builder, f models.FocusSummary) {
	if f.DisplayFocusPct == nil {
		b.WriteString(NoScoreText + "\n")
	} else {
		fmt.Fprintf(b, "Focus score: **%d%%**\n", *f.DisplayFocusPct)
	}
	fmt.Fprintf(b, "\n- Aligned: %s\n- Neutral: %s\n- Off-intent: %s\n- Unknown: %s\n",
		FormatDuration(f.AlignedTimeSec),
		FormatDuration(f.NeutralTimeSec),
		FormatDuration(f.OffIntentTimeSec),
		FormatDuration(f.UnknownTimeSec),
	)
	if f.BreakTimeSec > 0 {
		fmt.Fprintf(b, "- Breaks: %s\n", FormatDuration(f.BreakTimeSec))
	}
	if len(f.TopDriftSources) > 0 {
		names := make([]string, len(f.TopDriftSources))
		for i, d := range f.TopDriftSources {
			names[i] = fmt.Sprintf("%s (%s)", d.Label, FormatDuration(d.TimeSec))
		}
		fmt.Fprintf(b, "- Drifted to: %s\n", strings.Join(names, ", "))
	}
}

func writeList(b *strings.Builder, title string, items []string, format func(string) string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", title)
	for _, item := range items {
		if format != nil {
			item = format(item)
		}
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func link(text, url string) string {
	if text == "" {
		text = url
	}
	return fmt.Sprintf("[%s](%s)", linkEscaper.Replace(text), url)
}

// FormatDuration renders seconds as a compact "1h 5m", "2m 30s" or "45s".
func FormatDuration(sec int) string {
	if sec < 0 {
		sec = 0
	}
	h, m, s := sec/3600, (sec%3600)/60, sec%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0 && s > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}
