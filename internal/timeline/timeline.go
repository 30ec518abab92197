// Package timeline orders raw session events and derives per-event durations.
package timeline

import (
	"math"
	"net/url"
	"sort"
	"strings"

	"github.com/thebtf/focusforge/pkg/models"
)

// UnknownDomain is the sentinel domain for URLs that cannot be parsed.
const UnknownDomain = "unknown"

// Options holds the tail-duration heuristics.
type Options struct {
	OpenTailSec int // Tail for the last event of a session that is still open
	MinTailSec  int // Lower clamp for the tail of a closed session
	MaxTailSec  int // Upper clamp for the tail of a closed session
}

// DefaultOptions returns the standard tail heuristics: 30s open tail, 10-60s clamp.
func DefaultOptions() Options {
	return Options{
		OpenTailSec: 30,
		MinTailSec:  10,
		MaxTailSec:  60,
	}
}

// Order returns a copy of events sorted ascending by timestamp.
// Events with equal timestamps keep their original relative order.
func Order(events []models.Event) []models.Event {
	ordered := make([]models.Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].TS < ordered[j].TS
	})
	return ordered
}

// Synthesize annotates ordered events with durations and domains.
// Only TAB_ACTIVE and BREAK events get a duration; the last such event
// of the list gets a tail duration derived from the session state.
func Synthesize(session models.Session, ordered []models.Event, opts Options) []models.TimelineEvent {
	out := make([]models.TimelineEvent, len(ordered))
	for i, ev := range ordered {
		te := models.TimelineEvent{Event: ev}
		if ev.Type.HasDuration() {
			var ms int64
			if i+1 < len(ordered) {
				ms = ordered[i+1].TS - ev.TS
			} else {
				ms = tailMillis(session, ev, opts)
			}
			d := roundSeconds(ms)
			te.DurationSec = &d
		}
		if ev.Type == models.EventTabActive {
			te.Domain = ExtractDomain(ev.URL)
		}
		out[i] = te
	}
	return out
}

// tailMillis estimates how long the final event lasted.
func tailMillis(session models.Session, ev models.Event, opts Options) int64 {
	if session.Status.Closed() && session.EndedAt != nil {
		ms := *session.EndedAt - ev.TS
		lo := int64(opts.MinTailSec) * 1000
		hi := int64(opts.MaxTailSec) * 1000
		if ms < lo {
			return lo
		}
		if ms > hi {
			return hi
		}
		return ms
	}
	return int64(opts.OpenTailSec) * 1000
}

func roundSeconds(ms int64) int {
	d := int(math.Round(float64(ms) / 1000))
	if d < 0 {
		return 0
	}
	return d
}

// ExtractDomain returns the lower-cased hostname of rawURL without port or
// leading "www.". Anything without a parseable host yields UnknownDomain.
func ExtractDomain(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return UnknownDomain
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return UnknownDomain
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return UnknownDomain
	}
	return host
}
