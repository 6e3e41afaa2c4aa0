package llm

import (
	"fmt"
	"strings"

	"taskpilot/internal/task"
)

const (
	organizeTemperature = 0.2
	titleTemperature    = 0.2
	statusTemperature   = 0.3
)

const organizeSystemPrompt = `You are an expert operations assistant that restructures raw task notes into actionable to-do items. Always answer with strict JSON using the following schema:
{
  "tasks": [
    {
      "title": string,
      "priority": "High" | "Medium" | "Low",
      "category": string,
      "notes": string[],
      "status": "To Do" | "In Progress" | "Completed"
    }
  ]
}
Rules:
- Title should be concise and actionable.
- Always include a priority, one of High, Medium, Low.
- Provide a category label (e.g. Work, Admin, Meetings, Follow-up); invent one if needed.
- Notes should contain short bullet phrases about extra context (or be an empty array).
- Status defaults to "To Do" unless explicitly stated.
- Respond with JSON only, no additional text.`

const titleSystemPrompt = `You generate short task names. Return JSON: { "title": string }.`

const statusSystemPrompt = `You create concise status updates for managers. Respond with JSON:
{
  "completed": [string],
  "inProgress": [string]
}`

const taskStatusSystemPrompt = `You craft professional status updates for each task. Respond with JSON:
{
  "updates": [string]
}
Rules:
- Each entry must begin with its number followed by a period (e.g. "1. Completed the deployment update.").
- Reference the task title and description.
- Mention hours spent when provided.
- Keep each update concise and professional.`

func buildOrganizePrompt(notes string, groupByCategory bool) string {
	preference := "Return a flat list but keep category metadata."
	if groupByCategory {
		preference = "Group similar tasks together"
	}
	return fmt.Sprintf("Raw task notes:\n%s\n\nGroup tasks by category preference: %s", notes, preference)
}

func buildTitlePrompt(title, details string) string {
	if title == "" {
		title = "(none)"
	}
	if details == "" {
		details = "(not provided)"
	}
	return fmt.Sprintf("Existing title: %s\nTask details: %s\nReturn a short (<=8 words) action-oriented title.", title, details)
}

func buildStatusPrompt(completed, inProgress string) string {
	return fmt.Sprintf("Completed tasks:\n%s\n\nIn progress tasks:\n%s", completed, inProgress)
}

func buildTaskStatusPrompt(items []task.StatusItem) string {
	blocks := make([]string, 0, len(items))
	for i, it := range items {
		description := it.Description
		if description == "" {
			description = "No description provided."
		}
		hours := it.HoursSpent
		if hours == "" {
			hours = "Not provided"
		}
		blocks = append(blocks, fmt.Sprintf("Task %d:\nTitle: %s\nDescription: %s\nHours spent: %s", i+1, it.Title, description, hours))
	}
	return "Provide numbered status updates for the following tasks:\n\n" + strings.Join(blocks, "\n\n")
}

// ReportLines renders report items as the newline-separated block sent to a
// provider: "title - details (comments)".
func ReportLines(items []task.ReportItem) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		line := it.Title
		if it.Details != "" {
			line += " - " + it.Details
		}
		if it.Comments != "" {
			line += " (" + it.Comments + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
