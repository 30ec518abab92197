// Package models contains domain models for focusforge.
package models

// WorkspaceType is the coarse classification of a visited domain.
type WorkspaceType string

const (
	WorkspacePrimary WorkspaceType = "primary"
	WorkspaceSupport WorkspaceType = "support"
	WorkspaceDrift   WorkspaceType = "drift"
)

// Alignment classifies time on a domain relative to the stated intent.
type Alignment string

const (
	AlignmentAligned   Alignment = "aligned"
	AlignmentNeutral   Alignment = "neutral"
	AlignmentOffIntent Alignment = "off-intent"
	AlignmentUnknown   Alignment = "unknown"
)

// DomainSummary aggregates all non-ignored TAB_ACTIVE time on one domain.
type DomainSummary struct {
	Domain    string        `json:"domain"`
	Label     string        `json:"label"`
	Type      WorkspaceType `json:"type"`
	TopURLs   []string      `json:"topUrls"`
	TopTitles []string      `json:"topTitles"`
	TimeSec   int           `json:"timeSec"`
}

// BackgroundSummary aggregates ignored (auth, internal) time.
type BackgroundSummary struct {
	TopURLs []string `json:"topUrls"`
	Domains []string `json:"domains"`
	TimeSec int      `json:"timeSec"`
}

// DomainAlignment records how a single domain was scored.
type DomainAlignment struct {
	Domain    string    `json:"domain"`
	Label     string    `json:"label"`
	Category  string    `json:"category,omitempty"`
	Alignment Alignment `json:"alignment"`
	TimeSec   int       `json:"timeSec"`
}

// DriftSource is an off-intent domain surfaced to the user.
type DriftSource struct {
	Domain  string `json:"domain"`
	Label   string `json:"label"`
	TimeSec int    `json:"timeSec"`
}

// FocusSummary holds the alignment partition and derived focus metrics.
// DisplayFocusPct is nil whenever the signal is too weak to show a number.
type FocusSummary struct {
	DisplayFocusPct  *int              `json:"displayFocusPct"`
	TopDriftSources  []DriftSource     `json:"topDriftSources"`
	Domains          []DomainAlignment `json:"domains"`
	TotalTimeSec     int               `json:"totalTimeSec"`
	AlignedTimeSec   int               `json:"alignedTimeSec"`
	NeutralTimeSec   int               `json:"neutralTimeSec"`
	OffIntentTimeSec int               `json:"offIntentTimeSec"`
	UnknownTimeSec   int               `json:"unknownTimeSec"`
	BreakTimeSec     int               `json:"breakTimeSec"`
	FocusScorePct    int               `json:"focusScorePct"`
	TooShort         bool              `json:"tooShort"`
	IntentMissing    bool              `json:"intentMissing"`
}

// TimeBreakdownEntry is one row of the display time table.
type TimeBreakdownEntry struct {
	Label      string        `json:"label"`
	Domain     string        `json:"domain,omitempty"`
	Type       WorkspaceType `json:"type,omitempty"`
	TimeSec    int           `json:"timeSec"`
	Background bool          `json:"background,omitempty"`
}

// TopPage is a recently visited, non-ignored page.
type TopPage struct {
	URL    string `json:"url"`
	Title  string `json:"title,omitempty"`
	Domain string `json:"domain"`
	TS     int64  `json:"ts"`
}

// LastStop points at the most recent active tab of the session.
type LastStop struct {
	URL            string `json:"url"`
	Title          string `json:"title,omitempty"`
	Domain         string `json:"domain"`
	WorkspaceLabel string `json:"workspaceLabel"`
	TS             int64  `json:"ts"`
}

// ComputedSummary is the terminal output of the summary engine.
type ComputedSummary struct {
	Background    *BackgroundSummary   `json:"background,omitempty"`
	LastStop      *LastStop            `json:"lastStop"`
	SessionID     string               `json:"sessionId"`
	Status        SessionStatus        `json:"status"`
	GoalInferred  string               `json:"goalInferred"`
	Timeline      []TimelineEvent      `json:"timeline"`
	Domains       []DomainSummary      `json:"domains"`
	TimeBreakdown []TimeBreakdownEntry `json:"timeBreakdown"`
	TopPages      []TopPage            `json:"topPages"`
	ResumeURLs    []string             `json:"resumeUrls"`
	Narrative     Narrative            `json:"narrative"`
	Focus         FocusSummary         `json:"focus"`
}
