// Package gorm provides GORM-based database operations for focusforge.
package gorm

import (
	"database/sql"
	"time"

	"gorm.io/gorm"

	"github.com/thebtf/focusforge/pkg/models"
)

// GORM Models

// Note: JSONStringArray is imported from pkg/models and already implements
// sql.Scanner and driver.Valuer.

// Session represents a tracked focus session.
type Session struct {
	ID             string                 `gorm:"primaryKey;type:varchar(36)"`
	Status         string                 `gorm:"type:text;check:status IN ('running', 'paused', 'ended', 'auto_ended', 'analyzed');default:'running';index"`
	IntentRaw      sql.NullString         `gorm:"type:text"`
	IntentTags     models.JSONStringArray `gorm:"type:text"` // JSON array
	StartedAtEpoch int64                  `gorm:"index:idx_sessions_started,sort:desc;not null"`
	EndedAtEpoch   sql.NullInt64
	CreatedAt      string `gorm:"not null"`
}

func (Session) TableName() string { return "sessions" }

// BeforeCreate hook to ensure timestamps are set.
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if s.StartedAtEpoch == 0 {
		s.StartedAtEpoch = now.UnixMilli()
	}
	if s.CreatedAt == "" {
		s.CreatedAt = now.Format(time.RFC3339)
	}
	return nil
}

func (s *Session) toModel() *models.Session {
	out := &models.Session{
		ID:         s.ID,
		Status:     models.SessionStatus(s.Status),
		IntentRaw:  s.IntentRaw.String,
		IntentTags: []string(s.IntentTags),
		StartedAt:  s.StartedAtEpoch,
	}
	if s.EndedAtEpoch.Valid {
		ended := s.EndedAtEpoch.Int64
		out.EndedAt = &ended
	}
	return out
}

// Event represents one raw browser-activity event. Rows are append-only.
type Event struct {
	ID        int64    `gorm:"primaryKey;autoIncrement"`
	SessionID string   `gorm:"type:varchar(36);index:idx_events_session,priority:1;not null"`
	TS        int64    `gorm:"column:ts;not null"`
	Type      string   `gorm:"type:text;check:type IN ('TAB_ACTIVE', 'PAUSE', 'RESUME', 'STOP', 'BREAK');not null"`
	URL       string   `gorm:"column:url;type:text"`
	Title     string   `gorm:"type:text"`
	Session   *Session `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

func (Event) TableName() string { return "events" }

func (e *Event) toModel() models.Event {
	return models.Event{
		SessionID: e.SessionID,
		URL:       e.URL,
		Title:     e.Title,
		Type:      models.EventType(e.Type),
		TS:        e.TS,
	}
}

// Analysis stores the latest analyzer payload for a session.
type Analysis struct {
	SessionID        string                 `gorm:"primaryKey;type:varchar(36)"`
	ResumeSummary    sql.NullString         `gorm:"type:text"`
	AIRecap          sql.NullString         `gorm:"column:ai_recap;type:text"`
	GoalInferred     sql.NullString         `gorm:"type:text"`
	ConfidenceLabel  sql.NullString         `gorm:"type:text"`
	NextActions      models.JSONStringArray `gorm:"type:text"` // JSON array
	AIActions        models.JSONStringArray `gorm:"column:ai_actions;type:text"`
	PendingDecisions models.JSONStringArray `gorm:"type:text"` // JSON array
	UpdatedAtEpoch   int64                  `gorm:"not null"`
	Session          *Session               `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

func (Analysis) TableName() string { return "analyses" }

func newAnalysis(sessionID string, res *models.AnalysisResult) *Analysis {
	return &Analysis{
		SessionID:        sessionID,
		ResumeSummary:    nullString(res.ResumeSummary),
		AIRecap:          nullString(res.AIRecap),
		GoalInferred:     nullString(res.GoalInferred),
		ConfidenceLabel:  nullString(res.AIConfidenceLabel),
		NextActions:      models.JSONStringArray(res.NextActions),
		AIActions:        models.JSONStringArray(res.AIActions),
		PendingDecisions: models.JSONStringArray(res.PendingDecisions),
		UpdatedAtEpoch:   time.Now().UnixMilli(),
	}
}

func (a *Analysis) toModel() *models.AnalysisResult {
	return &models.AnalysisResult{
		ResumeSummary:     a.ResumeSummary.String,
		AIRecap:           a.AIRecap.String,
		GoalInferred:      a.GoalInferred.String,
		AIConfidenceLabel: a.ConfidenceLabel.String,
		NextActions:       []string(a.NextActions),
		AIActions:         []string(a.AIActions),
		PendingDecisions:  []string(a.PendingDecisions),
	}
}
