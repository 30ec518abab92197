// Package models contains domain models for focusforge.
package models

import "strings"

// SessionStatus represents the lifecycle state of a focus session.
type SessionStatus string

const (
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusPaused    SessionStatus = "paused"
	SessionStatusEnded     SessionStatus = "ended"
	SessionStatusAutoEnded SessionStatus = "auto_ended"
	SessionStatusAnalyzed  SessionStatus = "analyzed"
)

// Valid reports whether s is a known session status.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusRunning, SessionStatusPaused, SessionStatusEnded,
		SessionStatusAutoEnded, SessionStatusAnalyzed:
		return true
	}
	return false
}

// Closed reports whether the session has stopped recording activity.
func (s SessionStatus) Closed() bool {
	switch s {
	case SessionStatusEnded, SessionStatusAutoEnded, SessionStatusAnalyzed:
		return true
	}
	return false
}

// Session is a tracked focus session as supplied by the store.
type Session struct {
	EndedAt    *int64        `json:"ended_at,omitempty"`
	ID         string        `json:"id"`
	Status     SessionStatus `json:"status"`
	IntentRaw  string        `json:"intent_raw,omitempty"`
	IntentTags []string      `json:"intent_tags,omitempty"`
	StartedAt  int64         `json:"started_at"`
}

// HasIntent reports whether at least one non-blank intent tag is set.
func (s Session) HasIntent() bool {
	return len(CleanTags(s.IntentTags)) > 0
}

// CleanTags trims tags and drops blank ones.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
