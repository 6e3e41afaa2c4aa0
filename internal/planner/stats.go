package planner

import (
	"math"

	"taskpilot/internal/task"
)

// Stats counts tasks per status.
type Stats struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	// Completion is the rounded completed percentage, 0 for an empty list.
	Completion int `json:"completion"`
}

// BuildStats counts tasks in one pass. Unknown statuses count as To Do.
func BuildStats(tasks []task.Task) Stats {
	var s Stats
	for _, t := range tasks {
		s.Total++
		switch t.Status {
		case task.StatusCompleted:
			s.Completed++
		case task.StatusInProgress:
			s.InProgress++
		default:
			s.Todo++
		}
	}
	if s.Total > 0 {
		s.Completion = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}
	return s
}
