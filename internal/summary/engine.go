// Package summary runs the full pipeline that turns a session's raw event log
// into a ComputedSummary.
package summary

import (
	"github.com/thebtf/focusforge/internal/aggregate"
	"github.com/thebtf/focusforge/internal/intent"
	"github.com/thebtf/focusforge/internal/taxonomy"
	"github.com/thebtf/focusforge/internal/timeline"
	"github.com/thebtf/focusforge/internal/workspace"
	"github.com/thebtf/focusforge/pkg/models"
)

// DefaultTopPages is the number of recent pages listed when Options.TopPages is unset.
const DefaultTopPages = 5

// Options tunes the engine.
type Options struct {
	Timeline timeline.Options
	TopPages int
}

// DefaultOptions returns the standard engine options.
func DefaultOptions() Options {
	return Options{
		Timeline: timeline.DefaultOptions(),
		TopPages: DefaultTopPages,
	}
}

// Engine computes session summaries. It is immutable and safe for
// concurrent use.
type Engine struct {
	tax        *taxonomy.Taxonomy
	classifier *workspace.Classifier
	scorer     *intent.Scorer
	opts       Options
}

// NewEngine creates an engine. A nil taxonomy selects the embedded default;
// zero-valued options fall back to DefaultOptions.
func NewEngine(tax *taxonomy.Taxonomy, opts Options) *Engine {
	if tax == nil {
		tax = taxonomy.Default()
	}
	if opts.Timeline == (timeline.Options{}) {
		opts.Timeline = timeline.DefaultOptions()
	}
	if opts.TopPages <= 0 {
		opts.TopPages = DefaultTopPages
	}
	return &Engine{
		tax:        tax,
		classifier: workspace.NewClassifier(tax),
		scorer:     intent.NewScorer(tax),
		opts:       opts,
	}
}

// Taxonomy returns the tables the engine was built with.
func (e *Engine) Taxonomy() *taxonomy.Taxonomy {
	return e.tax
}

// Options returns the effective engine options.
func (e *Engine) Options() Options {
	return e.opts
}

// Compute builds the summary for one session. events may be in any order;
// res is the optional analyzer payload and is sanitized before use.
func (e *Engine) Compute(session models.Session, events []models.Event, res *models.AnalysisResult) *models.ComputedSummary {
	tl := timeline.Synthesize(session, timeline.Order(events), e.opts.Timeline)
	agg := aggregate.ByDomain(tl, e.classifier, e.tax)

	last := e.lastStop(tl, agg.Domains)
	domains := agg.Domains
	if domains == nil {
		domains = []models.DomainSummary{}
	}

	return &models.ComputedSummary{
		SessionID:     session.ID,
		Status:        session.Status,
		GoalInferred:  goalInferred(session, res, agg.Domains),
		Timeline:      tl,
		Domains:       domains,
		Background:    agg.Background,
		TimeBreakdown: timeBreakdown(agg),
		TopPages:      e.topPages(tl),
		LastStop:      last,
		ResumeURLs:    resumeURLs(last, agg.Domains),
		Narrative:     e.narrative(last, agg, knownURLs(events), res),
		Focus:         e.scorer.BuildFocusSummary(agg.Domains, session.IntentTags, agg.BreakTimeSec),
	}
}

func knownURLs(events []models.Event) []string {
	urls := make([]string, 0, len(events))
	for _, ev := range events {
		if ev.URL != "" {
			urls = append(urls, ev.URL)
		}
	}
	return urls
}
