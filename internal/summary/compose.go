package summary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/thebtf/focusforge/internal/aggregate"
	"github.com/thebtf/focusforge/internal/analysis"
	"github.com/thebtf/focusforge/pkg/models"
)

const (
	// BackgroundLabel names ignored time in tables and the last-stop label.
	BackgroundLabel = "Background"

	// MaxTimeBreakdown caps the rows of the time table.
	MaxTimeBreakdown = 4

	// MaxResumeSiblings is how many extra URLs of the last-stop domain are offered.
	MaxResumeSiblings = 2

	NoActivityRecap   = "No browser activity was recorded in this session."
	LowConfidenceText = "Not enough signal to summarize this session confidently."
	NoActivityGoal    = "No activity detected"
)

// lastStop returns the most recent TAB_ACTIVE visit, ignored or not.
func (e *Engine) lastStop(tl []models.TimelineEvent, domains []models.DomainSummary) *models.LastStop {
	for i := len(tl) - 1; i >= 0; i-- {
		ev := tl[i]
		if ev.Type != models.EventTabActive {
			continue
		}

		label := ev.Domain
		if ds := findDomain(domains, ev.Domain); ds != nil {
			label = ds.Label
		} else if e.classifier.Classify(ev.URL, ev.Title, ev.Domain).Ignore {
			label = BackgroundLabel
		}
		return &models.LastStop{
			URL:            ev.URL,
			Title:          ev.Title,
			Domain:         ev.Domain,
			WorkspaceLabel: label,
			TS:             ev.TS,
		}
	}
	return nil
}

func findDomain(domains []models.DomainSummary, name string) *models.DomainSummary {
	for i := range domains {
		if domains[i].Domain == name {
			return &domains[i]
		}
	}
	return nil
}

// resumeURLs lists the last-stop URL followed by a few recent siblings from
// the same domain.
func resumeURLs(last *models.LastStop, domains []models.DomainSummary) []string {
	out := []string{}
	if last == nil {
		return out
	}
	out = append(out, last.URL)

	ds := findDomain(domains, last.Domain)
	if ds == nil {
		return out
	}
	added := 0
	for _, u := range ds.TopURLs {
		if added == MaxResumeSiblings {
			break
		}
		if u == last.URL {
			continue
		}
		out = append(out, u)
		added++
	}
	return out
}

// topPages returns the most recently visited distinct non-ignored pages,
// newest first.
func (e *Engine) topPages(tl []models.TimelineEvent) []models.TopPage {
	out := []models.TopPage{}
	seen := make(map[string]struct{})
	for i := len(tl) - 1; i >= 0 && len(out) < e.opts.TopPages; i-- {
		ev := tl[i]
		if ev.Type != models.EventTabActive || ev.URL == "" {
			continue
		}
		if _, dup := seen[ev.URL]; dup {
			continue
		}
		if e.classifier.Classify(ev.URL, ev.Title, ev.Domain).Ignore {
			continue
		}
		seen[ev.URL] = struct{}{}
		out = append(out, models.TopPage{
			URL:    ev.URL,
			Title:  ev.Title,
			Domain: ev.Domain,
			TS:     ev.TS,
		})
	}
	return out
}

// timeBreakdown merges domains and the background bucket into one table.
func timeBreakdown(agg aggregate.Result) []models.TimeBreakdownEntry {
	out := make([]models.TimeBreakdownEntry, 0, len(agg.Domains)+1)
	for _, ds := range agg.Domains {
		out = append(out, models.TimeBreakdownEntry{
			Label:   ds.Label,
			Domain:  ds.Domain,
			Type:    ds.Type,
			TimeSec: ds.TimeSec,
		})
	}
	if agg.Background != nil {
		out = append(out, models.TimeBreakdownEntry{
			Label:      BackgroundLabel,
			TimeSec:    agg.Background.TimeSec,
			Background: true,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimeSec > out[j].TimeSec
	})
	if len(out) > MaxTimeBreakdown {
		out = out[:MaxTimeBreakdown]
	}
	return out
}

// narrative prefers the sanitized analyzer payload and falls back to a
// deterministic recap. A low-confidence analyzer verdict suppresses both,
// even when nothing in the payload survives sanitizing. A session without
// activity always gets the no-activity recap.
func (e *Engine) narrative(last *models.LastStop, agg aggregate.Result, known []string, res *models.AnalysisResult) models.Narrative {
	if last == nil {
		return models.Narrative{
			Recap:            NoActivityRecap,
			Source:           models.NarrativeFallback,
			NextActions:      []string{},
			PendingDecisions: []string{},
		}
	}

	top := BackgroundLabel
	if len(agg.Domains) > 0 {
		top = agg.Domains[0].Label
	}
	fallbackRecap := fmt.Sprintf("You spent most time on %s and last stopped at %s.", top, last.WorkspaceLabel)

	if res != nil && models.ParseConfidenceLabel(res.AIConfidenceLabel) == models.ConfidenceLow {
		return models.Narrative{
			Recap:            LowConfidenceText,
			Confidence:       models.ConfidenceLow,
			Source:           models.NarrativeSuppressed,
			NextActions:      []string{},
			PendingDecisions: []string{},
		}
	}

	n, ok := analysis.Sanitize(res, known)
	if !ok {
		return models.Narrative{
			Recap:            fallbackRecap,
			Source:           models.NarrativeFallback,
			NextActions:      fallbackActions(top),
			PendingDecisions: []string{},
		}
	}

	if n.Recap == "" {
		n.Recap = fallbackRecap
	}
	return *n
}

func fallbackActions(top string) []string {
	return []string{
		"Continue work on " + top,
		"Review progress and plan next steps",
	}
}

// goalInferred picks the first available of: the raw intent, the intent
// tags, the analyzer's guess, and the top domain.
func goalInferred(session models.Session, res *models.AnalysisResult, domains []models.DomainSummary) string {
	if raw := strings.TrimSpace(session.IntentRaw); raw != "" {
		return raw
	}
	if tags := models.CleanTags(session.IntentTags); len(tags) > 0 {
		return strings.Join(tags, ", ")
	}
	if res != nil {
		if g := analysis.Clean(res.GoalInferred); g != "" {
			return g
		}
	}
	if len(domains) > 0 {
		return "Working on " + domains[0].Label
	}
	return NoActivityGoal
}
