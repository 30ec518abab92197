package intent

import (
	"math"
	"sort"
	"strings"

	"github.com/thebtf/focusforge/internal/taxonomy"
	"github.com/thebtf/focusforge/pkg/models"
)

const (
	// MinScoredTimeSec is the active time below which a focus percentage is not shown.
	MinScoredTimeSec = 300
	// MaxDriftSources is the number of off-intent domains surfaced.
	MaxDriftSources = 3
)

// Scorer decides per-domain alignment and builds focus metrics.
type Scorer struct {
	mapper *Mapper
	tax    *taxonomy.Taxonomy
}

// NewScorer creates a scorer backed by tax.
func NewScorer(tax *taxonomy.Taxonomy) *Scorer {
	return &Scorer{mapper: NewMapper(tax), tax: tax}
}

// Mapper returns the category mapper used by the scorer.
func (s *Scorer) Mapper() *Mapper {
	return s.mapper
}

// AlignmentForDomain classifies a domain against the intent tags.
// Precedence: literal mention > category match > neutral utility >
// unclassifiable > off-intent.
func (s *Scorer) AlignmentForDomain(tags []string, ds models.DomainSummary) models.Alignment {
	a, _ := s.alignment(tags, IntentText(tags), nil, ds)
	return a
}

// alignment is AlignmentForDomain with the intent text and category set
// precomputed. A nil intentSet is computed on demand.
func (s *Scorer) alignment(tags []string, text string, intentSet CategorySet, ds models.DomainSummary) (models.Alignment, taxonomy.Category) {
	if text == "" {
		return models.AlignmentUnknown, ""
	}

	if mentions(text, ds.Domain) || mentions(text, strings.ToLower(ds.Label)) {
		cat, _ := s.mapper.DomainCategory(ds)
		return models.AlignmentAligned, cat
	}

	if intentSet == nil {
		intentSet = s.mapper.IntentCategories(tags)
	}
	if len(intentSet) == 0 {
		return models.AlignmentUnknown, ""
	}

	cat, ok := s.mapper.DomainCategory(ds)
	switch {
	case ok && intentSet.Has(cat):
		return models.AlignmentAligned, cat
	case ok && s.tax.IsNeutral(cat):
		return models.AlignmentNeutral, cat
	case !ok:
		return models.AlignmentUnknown, ""
	}
	return models.AlignmentOffIntent, cat
}

func mentions(text, name string) bool {
	return name != "" && strings.Contains(text, name)
}

// BuildFocusSummary partitions the domains' time into alignment buckets and
// derives the focus score. DisplayFocusPct stays nil when the session is too
// short or has no intent, so the UI never shows a misleading number.
func (s *Scorer) BuildFocusSummary(domains []models.DomainSummary, tags []string, breakTimeSec int) models.FocusSummary {
	fs := models.FocusSummary{
		BreakTimeSec:    breakTimeSec,
		IntentMissing:   len(models.CleanTags(tags)) == 0,
		TopDriftSources: []models.DriftSource{},
		Domains:         make([]models.DomainAlignment, 0, len(domains)),
	}

	text := IntentText(tags)
	intentSet := s.mapper.IntentCategories(tags)

	var drift []models.DriftSource
	for _, ds := range domains {
		fs.TotalTimeSec += ds.TimeSec

		a, cat := s.alignment(tags, text, intentSet, ds)
		switch a {
		case models.AlignmentAligned:
			fs.AlignedTimeSec += ds.TimeSec
		case models.AlignmentNeutral:
			fs.NeutralTimeSec += ds.TimeSec
		case models.AlignmentOffIntent:
			fs.OffIntentTimeSec += ds.TimeSec
			drift = append(drift, models.DriftSource{Domain: ds.Domain, Label: ds.Label, TimeSec: ds.TimeSec})
		default:
			fs.UnknownTimeSec += ds.TimeSec
		}
		fs.Domains = append(fs.Domains, models.DomainAlignment{
			Domain:    ds.Domain,
			Label:     ds.Label,
			Category:  string(cat),
			Alignment: a,
			TimeSec:   ds.TimeSec,
		})
	}

	if fs.TotalTimeSec > 0 {
		fs.FocusScorePct = int(math.Round(float64(fs.AlignedTimeSec) / float64(fs.TotalTimeSec) * 100))
	}
	fs.TooShort = fs.TotalTimeSec < MinScoredTimeSec
	if !fs.TooShort && !fs.IntentMissing {
		pct := fs.FocusScorePct
		fs.DisplayFocusPct = &pct
	}

	sort.SliceStable(drift, func(i, j int) bool {
		return drift[i].TimeSec > drift[j].TimeSec
	})
	if len(drift) > MaxDriftSources {
		drift = drift[:MaxDriftSources]
	}
	fs.TopDriftSources = append(fs.TopDriftSources, drift...)
	return fs
}
