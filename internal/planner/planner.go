// Package planner turns a session narrative into a prioritized task plan.
package planner

import (
	"strconv"
	"strings"

	"github.com/thebtf/focusforge/pkg/models"
)

const (
	MaxTasks       = 10
	MaxTaskOrder   = 10
	MaxSuggestions = 5
	MaxInsights    = 5

	maxActionTasks   = 5
	maxDecisionTasks = 3

	decisionPrefix = "Decide: "
)

var (
	basicSuggestions = []string{
		"Review your session summary to understand what you accomplished",
		"Prioritize tasks based on deadlines and importance",
	}
	basicInsights = []string{
		"Tasks generated from session analysis",
		"Consider using calendar to schedule time for these tasks",
	}
)

// BasicPlan builds a deterministic plan: up to five next actions as medium
// priority tasks, then up to three pending decisions as high priority ones.
// A nil narrative yields a plan with no tasks.
func BasicPlan(n *models.Narrative) *models.TaskPlan {
	plan := &models.TaskPlan{
		Suggestions: append([]string(nil), basicSuggestions...),
		Insights:    append([]string(nil), basicInsights...),
	}
	if n != nil {
		for i, action := range head(n.NextActions, maxActionTasks) {
			plan.PrioritizedTasks = append(plan.PrioritizedTasks, models.Task{
				ID:            taskID("task", i),
				Title:         action,
				Priority:      models.PriorityMedium,
				Urgency:       models.UrgencySoon,
				EstimatedTime: "30 minutes",
				Description:   Describe(action),
				Reason:        "Suggested from session analysis",
			})
		}
		for i, decision := range head(n.PendingDecisions, maxDecisionTasks) {
			title := decisionPrefix + decision
			plan.PrioritizedTasks = append(plan.PrioritizedTasks, models.Task{
				ID:            taskID("decision", i),
				Title:         title,
				Priority:      models.PriorityHigh,
				Urgency:       models.UrgencySoon,
				EstimatedTime: "15 minutes",
				Description:   Describe(title),
				Reason:        "Pending decision from session",
			})
		}
	}
	for _, t := range plan.PrioritizedTasks {
		plan.TaskOrder = append(plan.TaskOrder, t.ID)
	}
	return Normalize(plan)
}

// Normalize fills defaults and enforces the plan caps. Tasks without an id
// or title are dropped; unknown priorities and urgencies fall back to
// medium and soon. It accepts plans from an external planner as well.
func Normalize(plan *models.TaskPlan) *models.TaskPlan {
	out := &models.TaskPlan{
		PrioritizedTasks: []models.Task{},
		TaskOrder:        []string{},
		Suggestions:      []string{},
		Insights:         []string{},
	}
	if plan == nil {
		return out
	}

	for _, t := range plan.PrioritizedTasks {
		t.ID = strings.TrimSpace(t.ID)
		t.Title = strings.TrimSpace(t.Title)
		if t.ID == "" || t.Title == "" {
			continue
		}
		switch t.Priority {
		case models.PriorityHigh, models.PriorityMedium, models.PriorityLow:
		default:
			t.Priority = models.PriorityMedium
		}
		switch t.Urgency {
		case models.UrgencyUrgent, models.UrgencySoon, models.UrgencyLater:
		default:
			t.Urgency = models.UrgencySoon
		}
		if strings.TrimSpace(t.EstimatedTime) == "" {
			t.EstimatedTime = "30 minutes"
		}
		if t.Description == "" {
			t.Description = Describe(t.Title)
		}
		if t.Dependencies == nil {
			t.Dependencies = []string{}
		}
		out.PrioritizedTasks = append(out.PrioritizedTasks, t)
	}

	out.PrioritizedTasks = head(out.PrioritizedTasks, MaxTasks)
	out.TaskOrder = append(out.TaskOrder, head(plan.TaskOrder, MaxTaskOrder)...)
	out.Suggestions = append(out.Suggestions, head(plan.Suggestions, MaxSuggestions)...)
	out.Insights = append(out.Insights, head(plan.Insights, MaxInsights)...)
	return out
}

// Describe explains how to act on a task, keyed off words in its title.
func Describe(title string) string {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "resume") || strings.Contains(t, "open last stop"):
		return `Press the "Resume Session" button to reopen the tab or workspace where you left off and continue your work seamlessly.`
	case strings.Contains(t, "continue in") || strings.Contains(t, "workspace"):
		return `Press the "Resume Session" button or use "Continue where you left off" to return to the workspace you were actively using.`
	case strings.Contains(t, "review") && strings.Contains(t, "pages"):
		return "Review the most visited pages from your session to identify key resources and information you were working with."
	case strings.Contains(t, "review") && strings.Contains(t, "tabs"):
		return "Go through your recent tabs to see what you were working on and identify any unfinished tasks."
	case strings.Contains(t, "decide:"):
		return "Make a decision on this item based on the context from your session and your current priorities."
	case strings.Contains(t, "complete") || strings.Contains(t, "finish"):
		return "Complete this task that was started during your session to maintain momentum and avoid losing context."
	}
	return "Work on this task based on your session activity and current priorities."
}

func taskID(prefix string, i int) string {
	return prefix + "_" + strconv.Itoa(i+1)
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
