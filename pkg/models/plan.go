// Package models contains domain models for focusforge.
package models

// TaskPriority ranks a planned task.
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// TaskUrgency says how soon a planned task should start.
type TaskUrgency string

const (
	UrgencyUrgent TaskUrgency = "urgent"
	UrgencySoon   TaskUrgency = "soon"
	UrgencyLater  TaskUrgency = "later"
)

// Task is one actionable item derived from a session narrative.
type Task struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Priority      TaskPriority `json:"priority"`
	Urgency       TaskUrgency  `json:"urgency"`
	EstimatedTime string       `json:"estimatedTime"`
	Description   string       `json:"description"`
	Reason        string       `json:"reason"`
	Context       string       `json:"context"`
	Dependencies  []string     `json:"dependencies"`
}

// TaskPlan is an ordered set of tasks with general guidance.
type TaskPlan struct {
	PrioritizedTasks []Task   `json:"prioritizedTasks"`
	TaskOrder        []string `json:"taskOrder"`
	Suggestions      []string `json:"suggestions"`
	Insights         []string `json:"insights"`
}
