package heuristic

import (
	"fmt"
	"strings"

	"taskpilot/internal/task"
)

const (
	ProviderName  = "heuristic"
	ProviderLabel = "Heuristic"

	defaultTitleSuggestion = "General follow-up"
	titleWordLimit         = 8

	noCompletedTasks  = "- No completed tasks in this period."
	noInProgressTasks = "- No active tasks in progress."
)

// Organize segments and classifies raw notes. The result is never an error;
// it may hold zero tasks.
func Organize(raw string, groupByCategory bool) task.Organization {
	candidates := Segment(raw)
	tasks := make([]task.Task, 0, len(candidates))
	for _, c := range candidates {
		tasks = append(tasks, Classify(c))
	}
	return task.Organization{
		Tasks:         tasks,
		Grouped:       groupByCategory,
		Provider:      ProviderName,
		ProviderLabel: ProviderLabel,
	}
}

// SuggestTitle builds a short title from the details followed by the
// current title, keeping the first eight words.
func SuggestTitle(title, details string) string {
	words := strings.Fields(details + " " + title)
	if len(words) == 0 {
		return defaultTitleSuggestion
	}
	if len(words) > titleWordLimit {
		words = words[:titleWordLimit]
	}
	return strings.Join(words, " ")
}

// StatusReport renders both report sections as bullet lists.
func StatusReport(completed, inProgress []task.ReportItem) (string, string) {
	done := noCompletedTasks
	if len(completed) > 0 {
		done = summarize(completed)
	}
	active := noInProgressTasks
	if len(inProgress) > 0 {
		active = summarize(inProgress)
	}
	return done, active
}

func summarize(items []task.ReportItem) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		line := "- " + it.Title
		if it.Details != "" {
			line += " - " + it.Details
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// TaskStatuses renders one numbered line per task.
func TaskStatuses(items []task.StatusItem) []string {
	lines := make([]string, 0, len(items))
	for i, it := range items {
		line := fmt.Sprintf("%d. %s", i+1, it.Title)
		if it.Description != "" {
			line += " — " + it.Description
		}
		if it.HoursSpent != "" {
			line += fmt.Sprintf(" (Time spent: %s)", it.HoursSpent)
		}
		lines = append(lines, strings.TrimSpace(line))
	}
	return lines
}
