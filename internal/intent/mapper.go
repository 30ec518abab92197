// Package intent maps free-text intents and visited domains into one shared
// category space and scores how well session time aligns with the intent.
package intent

import (
	"strings"

	"github.com/thebtf/focusforge/internal/taxonomy"
	"github.com/thebtf/focusforge/pkg/models"
)

// CategorySet is an unordered set of categories.
type CategorySet map[taxonomy.Category]struct{}

// Has reports whether c is in the set.
func (s CategorySet) Has(c taxonomy.Category) bool {
	_, ok := s[c]
	return ok
}

// Slice returns the members in the order given by rules.
func (s CategorySet) Slice(rules []taxonomy.CategoryRule) []taxonomy.Category {
	out := make([]taxonomy.Category, 0, len(s))
	for _, r := range rules {
		if s.Has(r.Name) {
			out = append(out, r.Name)
		}
	}
	return out
}

// Mapper maps intents and domains to categories.
type Mapper struct {
	tax *taxonomy.Taxonomy
}

// NewMapper creates a mapper backed by tax.
func NewMapper(tax *taxonomy.Taxonomy) *Mapper {
	return &Mapper{tax: tax}
}

// IntentText lower-cases and joins the non-blank intent tags.
func IntentText(tags []string) string {
	return strings.ToLower(strings.Join(models.CleanTags(tags), " "))
}

// IntentCategories returns every category with at least one keyword that
// occurs in the joined intent, plus the categories those imply.
func (m *Mapper) IntentCategories(tags []string) CategorySet {
	set := make(CategorySet)
	text := IntentText(tags)
	if text == "" {
		return set
	}

	var direct []taxonomy.CategoryRule
	for _, r := range m.tax.Rules() {
		for _, kw := range r.IntentKeywords {
			if strings.Contains(text, kw) {
				direct = append(direct, r)
				break
			}
		}
	}
	// Implications are one level deep: implied categories do not chain.
	for _, r := range direct {
		set[r.Name] = struct{}{}
		for _, implied := range r.Implies {
			set[implied] = struct{}{}
		}
	}
	return set
}

// DomainCategory returns the category of an aggregated domain, trying an
// exact table hit, then a parent-domain hit, then content keywords found
// in the label, titles and URLs.
func (m *Mapper) DomainCategory(ds models.DomainSummary) (taxonomy.Category, bool) {
	domain := taxonomy.NormalizeDomain(ds.Domain)
	if c, ok := m.tax.DomainCategory(domain); ok {
		return c, true
	}
	for parent := parentDomain(domain); parent != ""; parent = parentDomain(parent) {
		if c, ok := m.tax.DomainCategory(parent); ok {
			return c, true
		}
	}

	parts := make([]string, 0, 1+len(ds.TopTitles)+len(ds.TopURLs))
	parts = append(parts, ds.Label)
	parts = append(parts, ds.TopTitles...)
	parts = append(parts, ds.TopURLs...)
	return m.tax.MatchContent(strings.ToLower(strings.Join(parts, " ")))
}

// parentDomain strips the left-most label: "a.b.com" -> "b.com".
// Single-label domains have no parent.
func parentDomain(domain string) string {
	i := strings.IndexByte(domain, '.')
	if i < 0 {
		return ""
	}
	rest := domain[i+1:]
	if !strings.Contains(rest, ".") {
		return ""
	}
	return rest
}
