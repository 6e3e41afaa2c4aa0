// Package task holds the task record, its canonical enumerations and the
// normalization rules every task passes through before it is stored or
// returned.
package task

import "time"

// Priority is one of High, Medium, Low.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Status is one of To Do, In Progress, Completed.
type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

const (
	DefaultTitle    = "Untitled task"
	DefaultCategory = "Work"

	// MaxTasks caps how many tasks a single organization may produce.
	MaxTasks = 100
)

// Task is the central record.
type Task struct {
	ID            string    `json:"id,omitempty"`
	Title         string    `json:"title"`
	Priority      Priority  `json:"priority"`
	Category      string    `json:"category"`
	Status        Status    `json:"status"`
	Notes         []string  `json:"notes"`
	Details       string    `json:"details"`
	TimeLog       string    `json:"timeLog"`
	HoursSpent    string    `json:"hoursSpent"`
	StatusSummary string    `json:"statusSummary"`
	CreatedAt     time.Time `json:"createdAt,omitzero"`
	UpdatedAt     time.Time `json:"updatedAt,omitzero"`
}

// Organization is the transient result of turning notes into tasks.
type Organization struct {
	Tasks         []Task `json:"tasks"`
	Grouped       bool   `json:"grouped"`
	Provider      string `json:"provider"`
	ProviderLabel string `json:"providerLabel"`
	Model         string `json:"model,omitempty"`
	Warning       string `json:"warning,omitempty"`
}

// Patch is a partial manual edit. Nil fields are left untouched.
type Patch struct {
	Title         *string   `json:"title,omitempty"`
	Details       *string   `json:"details,omitempty"`
	Category      *string   `json:"category,omitempty"`
	Priority      *string   `json:"priority,omitempty"`
	Status        *string   `json:"status,omitempty"`
	Notes         *[]string `json:"notes,omitempty"`
	TimeLog       *string   `json:"timeLog,omitempty"`
	HoursSpent    *string   `json:"hoursSpent,omitempty"`
	StatusSummary *string   `json:"statusSummary,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Details == nil && p.Category == nil &&
		p.Priority == nil && p.Status == nil && p.Notes == nil &&
		p.TimeLog == nil && p.HoursSpent == nil && p.StatusSummary == nil
}

// Apply returns t with the patch's fields written over it.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Details != nil {
		t.Details = *p.Details
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Priority != nil {
		t.Priority = Priority(*p.Priority)
	}
	if p.Status != nil {
		t.Status = Status(*p.Status)
	}
	if p.Notes != nil {
		t.Notes = append([]string(nil), (*p.Notes)...)
	}
	if p.TimeLog != nil {
		t.TimeLog = *p.TimeLog
	}
	if p.HoursSpent != nil {
		t.HoursSpent = *p.HoursSpent
	}
	if p.StatusSummary != nil {
		t.StatusSummary = *p.StatusSummary
	}
	return t
}
