// Package aggregate groups a duration-annotated timeline into per-domain totals.
package aggregate

import (
	"sort"

	"github.com/thebtf/focusforge/internal/workspace"
	"github.com/thebtf/focusforge/pkg/models"
)

// MaxRecent is the number of recent URLs and titles kept per domain.
const MaxRecent = 5

// Labeler resolves a display label for a domain.
type Labeler interface {
	Label(domain string) string
}

// Result is the output of ByDomain.
type Result struct {
	Domains       []models.DomainSummary
	Background    *models.BackgroundSummary // nil unless background time > 0
	ActiveTimeSec int                       // every TAB_ACTIVE second, ignored or not
	BreakTimeSec  int
}

// ByDomain walks the timeline and accumulates TAB_ACTIVE time per domain.
// Ignored visits go to the background bucket; BREAK time is only counted
// in BreakTimeSec. Domains are sorted by time descending, ties in first-seen order.
func ByDomain(tl []models.TimelineEvent, classifier *workspace.Classifier, labeler Labeler) Result {
	var (
		res     Result
		order   []string
		byName  = make(map[string]*models.DomainSummary)
		bg      models.BackgroundSummary
		bgNames = make(map[string]struct{})
	)

	for _, ev := range tl {
		switch ev.Type {
		case models.EventBreak:
			res.BreakTimeSec += ev.Duration()
			continue
		case models.EventTabActive:
		default:
			continue
		}

		d := ev.Duration()
		res.ActiveTimeSec += d

		cls := classifier.Classify(ev.URL, ev.Title, ev.Domain)
		if cls.Ignore {
			bg.TimeSec += d
			bg.TopURLs = pushRecent(bg.TopURLs, ev.URL)
			bgNames[ev.Domain] = struct{}{}
			continue
		}

		ds, ok := byName[ev.Domain]
		if !ok {
			ds = &models.DomainSummary{
				Domain:    ev.Domain,
				Label:     labeler.Label(ev.Domain),
				Type:      cls.Type,
				TopURLs:   []string{},
				TopTitles: []string{},
			}
			byName[ev.Domain] = ds
			order = append(order, ev.Domain)
		}
		ds.TimeSec += d
		ds.TopURLs = pushRecent(ds.TopURLs, ev.URL)
		ds.TopTitles = pushRecent(ds.TopTitles, ev.Title)
	}

	res.Domains = make([]models.DomainSummary, 0, len(order))
	for _, name := range order {
		res.Domains = append(res.Domains, *byName[name])
	}
	sort.SliceStable(res.Domains, func(i, j int) bool {
		return res.Domains[i].TimeSec > res.Domains[j].TimeSec
	})

	if bg.TimeSec > 0 {
		bg.Domains = make([]string, 0, len(bgNames))
		for name := range bgNames {
			bg.Domains = append(bg.Domains, name)
		}
		sort.Strings(bg.Domains)
		if bg.TopURLs == nil {
			bg.TopURLs = []string{}
		}
		res.Background = &bg
	}
	return res
}

// pushRecent moves v to the front of list, dropping duplicates and capping
// the list at MaxRecent. Empty values are ignored.
func pushRecent(list []string, v string) []string {
	if v == "" {
		return list
	}
	out := make([]string, 0, MaxRecent)
	out = append(out, v)
	for _, existing := range list {
		if existing == v {
			continue
		}
		if len(out) == MaxRecent {
			break
		}
		out = append(out, existing)
	}
	return out
}
