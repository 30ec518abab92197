// Package models contains domain models for focusforge.
package models

import "fmt"

// EventType identifies what a captured browser event represents.
type EventType string

const (
	EventTabActive EventType = "TAB_ACTIVE"
	EventPause     EventType = "PAUSE"
	EventResume    EventType = "RESUME"
	EventStop      EventType = "STOP"
	EventBreak     EventType = "BREAK"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventTabActive, EventPause, EventResume, EventStop, EventBreak:
		return true
	}
	return false
}

// HasDuration reports whether events of this type carry a duration.
// PAUSE, RESUME and STOP are markers only.
func (t EventType) HasDuration() bool {
	return t == EventTabActive || t == EventBreak
}

// Event is a single raw activity event produced by the browser extension.
// Events arrive in no particular order.
type Event struct {
	SessionID string    `json:"sessionId"`
	URL       string    `json:"url,omitempty"`
	Title     string    `json:"title,omitempty"`
	Type      EventType `json:"type"`
	TS        int64     `json:"ts"`
}

// Validate checks the fields the capture side is contractually required to set.
func (e Event) Validate() error {
	if !e.Type.Valid() {
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.TS < 0 {
		return fmt.Errorf("event timestamp must not be negative, got %d", e.TS)
	}
	return nil
}

// TimelineEvent is an Event annotated with derived timing and domain.
// DurationSec is nil for marker events; Domain is only set for TAB_ACTIVE.
type TimelineEvent struct {
	DurationSec *int   `json:"durationSec,omitempty"`
	Domain      string `json:"domain,omitempty"`
	Event
}

// Duration returns the event duration in seconds, or 0 for marker events.
func (e TimelineEvent) Duration() int {
	if e.DurationSec == nil {
		return 0
	}
	return *e.DurationSec
}
