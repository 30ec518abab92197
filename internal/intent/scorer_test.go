package intent

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/thebtf/focusforge/internal/taxonomy"
	"github.com/thebtf/focusforge/pkg/models"
)

// ScorerSuite is a test suite for alignment scoring.
type ScorerSuite struct {
	suite.Suite
	scorer *Scorer
}

func (s *ScorerSuite) SetupTest() {
	s.scorer = NewScorer(taxonomy.Default())
}

func TestScorerSuite(t *testing.T) {
	suite.Run(t, new(ScorerSuite))
}

func domain(name, label string, timeSec int) models.DomainSummary {
	return models.DomainSummary{
		Domain:    name,
		Label:     label,
		TimeSec:   timeSec,
		TopURLs:   []string{"https://" + name + "/"},
		TopTitles: []string{},
	}
}

// TestAlignmentForDomain tests each precedence step in isolation.
func (s *ScorerSuite) TestAlignmentForDomain() {
	tests := []struct {
		name string
		tags []string
		ds   models.DomainSummary
		want models.Alignment
	}{
		{"no tags", nil, domain("leetcode.com", "LeetCode", 10), models.AlignmentUnknown},
		{"blank tags", []string{"  "}, domain("leetcode.com", "LeetCode", 10), models.AlignmentUnknown},
		{"label mentioned", []string{"leetcode practice"}, domain("leetcode.com", "LeetCode", 10), models.AlignmentAligned},
		{"domain mentioned", []string{"finish figma.com mockups"}, domain("figma.com", "Figma", 10), models.AlignmentAligned},
		{"mention beats empty category set", []string{"youtube"}, domain("youtube.com", "YouTube", 10), models.AlignmentAligned},
		{"no intent categories", []string{"qwzx"}, domain("youtube.com", "YouTube", 10), models.AlignmentUnknown},
		{"category match", []string{"interview prep"}, domain("neetcode.io", "NeetCode", 10), models.AlignmentAligned},
		{"neutral utility", []string{"interview prep"}, domain("slack.com", "Slack", 10), models.AlignmentNeutral},
		{"unclassifiable domain", []string{"interview prep"}, domain("example.org", "example.org", 10), models.AlignmentUnknown},
		{"off intent", []string{"interview prep"}, domain("youtube.com", "YouTube", 10), models.AlignmentOffIntent},
		{"implied category aligns", []string{"debug code"}, domain("vercel.com", "Vercel", 10), models.AlignmentAligned},
		{"relax aligns entertainment", []string{"relax"}, domain("netflix.com", "Netflix", 10), models.AlignmentAligned},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, s.scorer.AlignmentForDomain(tt.tags, tt.ds))
		})
	}
}

// TestBuildFocusSummaryShortSession tests a short interview session with drift.
func (s *ScorerSuite) TestBuildFocusSummaryShortSession() {
	domains := []models.DomainSummary{
		domain("leetcode.com", "LeetCode", 120),
		domain("youtube.com", "YouTube", 60),
	}

	fs := s.scorer.BuildFocusSummary(domains, []string{"leetcode practice"}, 0)
	s.Equal(180, fs.TotalTimeSec)
	s.Equal(120, fs.AlignedTimeSec)
	s.Equal(60, fs.OffIntentTimeSec)
	s.Equal(67, fs.FocusScorePct)
	s.True(fs.TooShort)
	s.False(fs.IntentMissing)
	s.Nil(fs.DisplayFocusPct)

	s.Require().Len(fs.TopDriftSources, 1)
	s.Equal(models.DriftSource{Domain: "youtube.com", Label: "YouTube", TimeSec: 60}, fs.TopDriftSources[0])

	s.Require().Len(fs.Domains, 2)
	s.Equal(models.DomainAlignment{
		Domain:    "leetcode.com",
		Label:     "LeetCode",
		Category:  string(taxonomy.CategoryInterviewPrep),
		Alignment: models.AlignmentAligned,
		TimeSec:   120,
	}, fs.Domains[0])
	s.Equal(string(taxonomy.CategoryEntertainment), fs.Domains[1].Category)
}

// TestBuildFocusSummaryDisplay tests that a long session with intent shows its score.
func (s *ScorerSuite) TestBuildFocusSummaryDisplay() {
	domains := []models.DomainSummary{
		domain("youtube.com", "YouTube", 400),
		domain("slack.com", "Slack", 200),
	}

	fs := s.scorer.BuildFocusSummary(domains, []string{"relax"}, 90)
	s.Equal(600, fs.TotalTimeSec)
	s.Equal(400, fs.AlignedTimeSec)
	s.Equal(200, fs.NeutralTimeSec)
	s.Equal(90, fs.BreakTimeSec)
	s.Equal(67, fs.FocusScorePct)
	s.False(fs.TooShort)
	s.Require().NotNil(fs.DisplayFocusPct)
	s.Equal(67, *fs.DisplayFocusPct)
	s.Empty(fs.TopDriftSources)
}

// TestBuildFocusSummaryNoIntent tests that every second is unknown without tags.
func (s *ScorerSuite) TestBuildFocusSummaryNoIntent() {
	domains := []models.DomainSummary{
		domain("leetcode.com", "LeetCode", 500),
		domain("youtube.com", "YouTube", 100),
	}

	fs := s.scorer.BuildFocusSummary(domains, nil, 0)
	s.True(fs.IntentMissing)
	s.False(fs.TooShort)
	s.Nil(fs.DisplayFocusPct)
	s.Equal(600, fs.UnknownTimeSec)
	s.Equal(0, fs.FocusScorePct)
	for _, da := range fs.Domains {
		s.Equal(models.AlignmentUnknown, da.Alignment)
		s.Empty(da.Category)
	}
}

// TestBuildFocusSummaryEmpty tests the zero-time case.
func (s *ScorerSuite) TestBuildFocusSummaryEmpty() {
	fs := s.scorer.BuildFocusSummary(nil, []string{"leetcode"}, 0)
	s.Equal(0, fs.TotalTimeSec)
	s.Equal(0, fs.FocusScorePct)
	s.True(fs.TooShort)
	s.Nil(fs.DisplayFocusPct)
	s.NotNil(fs.TopDriftSources)
	s.NotNil(fs.Domains)
}

// TestBuildFocusSummaryPartition tests that the buckets always add up.
func (s *ScorerSuite) TestBuildFocusSummaryPartition() {
	domains := []models.DomainSummary{
		domain("leetcode.com", "LeetCode", 311),
		domain("slack.com", "Slack", 47),
		domain("example.org", "example.org", 29),
		domain("youtube.com", "YouTube", 101),
		domain("reddit.com", "Reddit", 13),
	}

	for _, tags := range [][]string{nil, {"qwzx"}, {"interview prep"}, {"relax"}} {
		fs := s.scorer.BuildFocusSummary(domains, tags, 0)
		s.Equal(fs.TotalTimeSec, fs.AlignedTimeSec+fs.NeutralTimeSec+fs.OffIntentTimeSec+fs.UnknownTimeSec, "tags %v", tags)
		s.Len(fs.Domains, len(domains))
	}
}

// TestTopDriftSources tests ordering and the cap on drift sources.
func (s *ScorerSuite) TestTopDriftSources() {
	domains := []models.DomainSummary{
		domain("reddit.com", "Reddit", 50),
		domain("youtube.com", "YouTube", 200),
		domain("x.com", "X (Twitter)", 120),
		domain("netflix.com", "Netflix", 120),
		domain("leetcode.com", "LeetCode", 30),
	}

	fs := s.scorer.BuildFocusSummary(domains, []string{"system design"}, 0)
	s.Require().Len(fs.TopDriftSources, MaxDriftSources)
	s.Equal("youtube.com", fs.TopDriftSources[0].Domain)
	s.Equal("x.com", fs.TopDriftSources[1].Domain)
	s.Equal("netflix.com", fs.TopDriftSources[2].Domain)
}
