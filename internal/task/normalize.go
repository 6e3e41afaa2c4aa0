package task

import (
	"fmt"
	"strings"

	"taskpilot/internal/apperror"
)

var statusAliases = map[string]Status{
	"todo":        StatusToDo,
	"to do":       StatusToDo,
	"to-do":       StatusToDo,
	"not started": StatusToDo,
	"in progress": StatusInProgress,
	"progress":    StatusInProgress,
	"doing":       StatusInProgress,
	"completed":   StatusCompleted,
	"done":        StatusCompleted,
	"finished":    StatusCompleted,
}

// dbStatus is the storage spelling of each canonical status.
var dbStatus = map[Status]string{
	StatusToDo:       "ToDo",
	StatusInProgress: "InProgress",
	StatusCompleted:  "Completed",
}

// NormalizePriority maps any spelling of high/low to its canonical value.
// Everything else is Medium.
func NormalizePriority(value string) Priority {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// NormalizeStatus maps status aliases to the three canonical values.
// Unknown and empty values are To Do.
func NormalizeStatus(value string) Status {
	key := strings.ToLower(strings.TrimSpace(value))
	if s, ok := statusAliases[key]; ok {
		return s
	}
	return StatusToDo
}

// StatusToDB returns the storage spelling of a (possibly non-canonical) status.
func StatusToDB(value Status) string {
	return dbStatus[NormalizeStatus(string(value))]
}

// StatusFromDB maps a storage spelling back to the canonical status.
func StatusFromDB(value string) Status {
	for status, stored := range dbStatus {
		if stored == value {
			return status
		}
	}
	return StatusToDo
}

// SanitizeTitle trims the title; blank becomes DefaultTitle.
func SanitizeTitle(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return DefaultTitle
	}
	return trimmed
}

// SanitizeCategory trims the category; blank becomes DefaultCategory.
func SanitizeCategory(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return DefaultCategory
	}
	return trimmed
}

// SanitizeText trims free-text fields.
func SanitizeText(value string) string {
	return strings.TrimSpace(value)
}

// SanitizeNotes trims every note and drops empty ones. Order is kept.
func SanitizeNotes(notes []string) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		if trimmed := strings.TrimSpace(n); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Sanitize returns t with every field in canonical form. ID and timestamps
// pass through untouched.
func Sanitize(t Task) Task {
	t.Title = SanitizeTitle(t.Title)
	t.Priority = NormalizePriority(string(t.Priority))
	t.Category = SanitizeCategory(t.Category)
	t.Status = NormalizeStatus(string(t.Status))
	t.Notes = SanitizeNotes(t.Notes)
	t.Details = SanitizeText(t.Details)
	t.TimeLog = SanitizeText(t.TimeLog)
	t.HoursSpent = SanitizeText(t.HoursSpent)
	t.StatusSummary = SanitizeText(t.StatusSummary)
	return t
}

// SanitizeAll sanitizes up to MaxTasks tasks.
func SanitizeAll(tasks []Task) []Task {
	if len(tasks) > MaxTasks {
		tasks = tasks[:MaxTasks]
	}
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, Sanitize(t))
	}
	return out
}

// SanitizePatch normalizes every field the patch sets. A patch that sets
// nothing is a validation error.
func SanitizePatch(p Patch) (Patch, error) {
	if p.IsEmpty() {
		return Patch{}, apperror.Validation("update", "No valid fields supplied for update.")
	}
	out := Patch{}
	if p.Title != nil {
		v := SanitizeTitle(*p.Title)
		out.Title = &v
	}
	if p.Details != nil {
		v := SanitizeText(*p.Details)
		out.Details = &v
	}
	if p.Category != nil {
		v := SanitizeCategory(*p.Category)
		out.Category = &v
	}
	if p.Priority != nil {
		v := string(NormalizePriority(*p.Priority))
		out.Priority = &v
	}
	if p.Status != nil {
		v := string(NormalizeStatus(*p.Status))
		out.Status = &v
	}
	if p.Notes != nil {
		v := SanitizeNotes(*p.Notes)
		out.Notes = &v
	}
	if p.TimeLog != nil {
		v := SanitizeText(*p.TimeLog)
		out.TimeLog = &v
	}
	if p.HoursSpent != nil {
		v := SanitizeText(*p.HoursSpent)
		out.HoursSpent = &v
	}
	if p.StatusSummary != nil {
		v := SanitizeText(*p.StatusSummary)
		out.StatusSummary = &v
	}
	return out, nil
}

// FromFields converts a loosely typed record, as decoded from a model reply,
// into a Task. Non-string titles are stringified; non-string notes are dropped.
// The result still needs Sanitize.
func FromFields(fields map[string]any) Task {
	t := Task{
		Priority:      Priority(stringField(fields["priority"])),
		Category:      stringField(fields["category"]),
		Status:        Status(stringField(fields["status"])),
		Details:       stringField(fields["details"]),
		TimeLog:       stringField(fields["timeLog"]),
		HoursSpent:    stringField(fields["hoursSpent"]),
		StatusSummary: stringField(fields["statusSummary"]),
	}

	switch title := fields["title"].(type) {
	case nil:
	case string:
		t.Title = title
	default:
		t.Title = fmt.Sprint(title)
	}

	if raw, ok := fields["notes"].([]any); ok {
		for _, n := range raw {
			if s, ok := n.(string); ok {
				t.Notes = append(t.Notes, s)
			}
		}
	}
	return t
}

func stringField(v any) string {
	s, _ := v.(string)
	return s
}
