// Package taxonomy manages the YAML-based domain and intent classification tables.
package taxonomy

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Category is a semantic activity category shared by intents and domains.
type Category string

const (
	CategoryInterviewPrep   Category = "interview_prep"
	CategoryJobSearch       Category = "job_search"
	CategoryLearning        Category = "learning"
	CategoryContentCreation Category = "content_creation"
	CategoryCreativity      Category = "creativity"
	CategoryDocsWriting     Category = "docs_writing"
	CategoryEntertainment   Category = "entertainment"
	CategoryCoding          Category = "coding"
	CategoryDevTools        Category = "dev_tools"
	CategoryMockTest        Category = "mock_test"
	CategoryVideoEditing    Category = "video_editing"
	CategoryComms           Category = "comms"
)

// CategoryRule describes how one category is recognized.
type CategoryRule struct {
	Name            Category   `yaml:"name"`
	IntentKeywords  []string   `yaml:"intent_keywords"`
	ContentPatterns []string   `yaml:"content_patterns,omitempty"`
	Implies         []Category `yaml:"implies,omitempty"`
}

// Config is the top-level YAML structure.
type Config struct {
	InternalDomains      []string            `yaml:"internal_domains"`
	BlockedURLSubstrings []string            `yaml:"blocked_url_substrings"`
	PrimaryDomains       []string            `yaml:"primary_domains"`
	SupportDomains       []string            `yaml:"support_domains"`
	DriftDomains         []string            `yaml:"drift_domains"`
	LearningDomains      []string            `yaml:"learning_domains"`
	LearningHints        []string            `yaml:"learning_hints"`
	Labels               map[string]string   `yaml:"labels"`
	DomainCategories     map[string]Category `yaml:"domain_categories"`
	NeutralCategories    []Category          `yaml:"neutral_categories"`
	Categories           []CategoryRule      `yaml:"categories"`
}

type compiledRule struct {
	CategoryRule
	patterns []*regexp.Regexp
}

// Taxonomy is an immutable, query-ready view of a Config.
type Taxonomy struct {
	cfg        Config
	internal   []string
	blocked    []string
	primary    map[string]struct{}
	support    map[string]struct{}
	drift      map[string]struct{}
	learning   map[string]struct{}
	hints      []string
	labels     map[string]string
	categories map[string]Category
	neutral    map[Category]struct{}
	rules      []compiledRule
}

var (
	defaultOnce sync.Once
	defaultTax  *Taxonomy
)

// Default returns the embedded default taxonomy.
func Default() *Taxonomy {
	defaultOnce.Do(func() {
		t, err := Parse(defaultYAML)
		if err != nil {
			panic("invalid embedded taxonomy: " + err.Error())
		}
		defaultTax = t
	})
	return defaultTax
}

// Load reads the YAML file at path and returns a Taxonomy.
// An empty path or a missing file yields the default taxonomy (not an error).
func Load(path string) (*Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return Parse(data)
}

// Parse builds a Taxonomy from YAML.
func Parse(data []byte) (*Taxonomy, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	return New(cfg)
}

// New builds a Taxonomy from an in-memory Config, compiling content patterns.
func New(cfg Config) (*Taxonomy, error) {
	t := &Taxonomy{
		cfg:        cfg,
		internal:   normalizeAll(cfg.InternalDomains),
		blocked:    lowerAll(cfg.BlockedURLSubstrings),
		primary:    toSet(cfg.PrimaryDomains),
		support:    toSet(cfg.SupportDomains),
		drift:      toSet(cfg.DriftDomains),
		learning:   toSet(cfg.LearningDomains),
		hints:      lowerAll(cfg.LearningHints),
		labels:     make(map[string]string, len(cfg.Labels)),
		categories: make(map[string]Category, len(cfg.DomainCategories)),
		neutral:    make(map[Category]struct{}, len(cfg.NeutralCategories)),
	}
	for d, l := range cfg.Labels {
		t.labels[NormalizeDomain(d)] = l
	}
	for d, c := range cfg.DomainCategories {
		t.categories[NormalizeDomain(d)] = c
	}
	for _, c := range cfg.NeutralCategories {
		t.neutral[c] = struct{}{}
	}

	seen := make(map[Category]bool, len(cfg.Categories))
	for _, rule := range cfg.Categories {
		if rule.Name == "" {
			return nil, fmt.Errorf("category rule without name")
		}
		if seen[rule.Name] {
			return nil, fmt.Errorf("duplicate category %q", rule.Name)
		}
		seen[rule.Name] = true

		cr := compiledRule{CategoryRule: rule}
		cr.IntentKeywords = lowerAll(rule.IntentKeywords)
		for _, p := range rule.ContentPatterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("category %s: compile %q: %w", rule.Name, p, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		t.rules = append(t.rules, cr)
	}
	return t, nil
}

// WithInternalDomains returns a copy of t whose internal allow-list also
// contains the given domains. Blank entries are skipped.
func (t *Taxonomy) WithInternalDomains(domains ...string) *Taxonomy {
	extra := normalizeAll(domains)
	if len(extra) == 0 {
		return t
	}
	cp := *t
	cp.internal = append(append([]string{}, t.internal...), extra...)
	cp.cfg.InternalDomains = append(append([]string{}, t.cfg.InternalDomains...), extra...)
	return &cp
}

// IsInternal reports whether domain is, or is a subdomain of, an internal domain.
func (t *Taxonomy) IsInternal(domain string) bool {
	domain = NormalizeDomain(domain)
	for _, d := range t.internal {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}

// IsBlockedURL reports whether the URL contains any auth/browser-internal marker.
func (t *Taxonomy) IsBlockedURL(url string) bool {
	lower := strings.ToLower(url)
	for _, s := range t.blocked {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// IsPrimary reports membership in the primary-domain set.
func (t *Taxonomy) IsPrimary(domain string) bool { return has(t.primary, domain) }

// IsSupport reports membership in the support-domain set.
func (t *Taxonomy) IsSupport(domain string) bool { return has(t.support, domain) }

// IsDrift reports membership in the drift-domain set.
func (t *Taxonomy) IsDrift(domain string) bool { return has(t.drift, domain) }

// IsLearningDomain reports whether the drift domain may host learning content.
func (t *Taxonomy) IsLearningDomain(domain string) bool { return has(t.learning, domain) }

// HasLearningHint reports whether a page title looks like learning material.
func (t *Taxonomy) HasLearningHint(title string) bool {
	lower := strings.ToLower(title)
	for _, h := range t.hints {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

// Label returns the display label for a domain, falling back to the domain itself.
func (t *Taxonomy) Label(domain string) string {
	if l, ok := t.labels[NormalizeDomain(domain)]; ok && l != "" {
		return l
	}
	return domain
}

// DomainCategory returns the category listed for exactly this domain.
func (t *Taxonomy) DomainCategory(domain string) (Category, bool) {
	c, ok := t.categories[NormalizeDomain(domain)]
	return c, ok
}

// Rules returns the category rules in definition order.
func (t *Taxonomy) Rules() []CategoryRule {
	out := make([]CategoryRule, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.CategoryRule
	}
	return out
}

// MatchContent returns the first category, in definition order, whose
// content pattern matches text. text is expected to be lower-cased.
func (t *Taxonomy) MatchContent(text string) (Category, bool) {
	for _, r := range t.rules {
		for _, re := range r.patterns {
			if re.MatchString(text) {
				return r.Name, true
			}
		}
	}
	return "", false
}

// IsNeutral reports whether the category is an always-neutral utility.
func (t *Taxonomy) IsNeutral(c Category) bool {
	_, ok := t.neutral[c]
	return ok
}

// Marshal renders the effective configuration as YAML.
func (t *Taxonomy) Marshal() ([]byte, error) {
	return yaml.Marshal(t.cfg)
}

// NormalizeDomain lower-cases a domain and strips a leading "www.".
func NormalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	return strings.TrimPrefix(domain, "www.")
}

func has(set map[string]struct{}, domain string) bool {
	_, ok := set[NormalizeDomain(domain)]
	return ok
}

func toSet(domains []string) map[string]struct{} {
	set := make(map[string]struct{}, len(domains))
	for _, d := range normalizeAll(domains) {
		set[d] = struct{}{}
	}
	return set
}

func normalizeAll(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		if d = NormalizeDomain(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
