// Package planner derives the day plan and completion statistics from a task
// list. Both are pure functions of their input.
package planner

import (
	"strings"

	"taskpilot/internal/task"
)

// Slot is a bucket of the day plan.
type Slot string

const (
	SlotMorning   Slot = "morning"
	SlotAfternoon Slot = "afternoon"
	SlotAnytime   Slot = "anytime"
)

var (
	morningCategories   = map[string]bool{"Development": true, "Planning": true, "Admin": true}
	afternoonCategories = map[string]bool{"Meetings": true, "Follow-up": true}
)

// Schedule partitions the open tasks into three day slots.
type Schedule struct {
	Morning   []task.Task `json:"morning"`
	Afternoon []task.Task `json:"afternoon"`
	Anytime   []task.Task `json:"anytime"`
}

// Len is the number of scheduled tasks.
func (s Schedule) Len() int {
	return len(s.Morning) + len(s.Afternoon) + len(s.Anytime)
}

// PickSlot assigns a task to a slot. The first matching rule wins.
func PickSlot(t task.Task) Slot {
	notes := strings.ToLower(strings.Join(t.Notes, " "))
	title := strings.ToLower(t.Title)

	switch {
	case t.Priority == task.PriorityHigh || strings.Contains(notes, "time-sensitive"):
		return SlotMorning
	case morningCategories[t.Category]:
		return SlotMorning
	case afternoonCategories[t.Category]:
		return SlotAfternoon
	case t.Priority == task.PriorityLow || strings.Contains(notes, "optional") || strings.Contains(notes, "research"):
		return SlotAnytime
	case strings.Contains(title, "review") || strings.Contains(title, "reply"):
		return SlotAfternoon
	case t.Priority == task.PriorityMedium:
		return SlotAfternoon
	default:
		return SlotAnytime
	}
}

// BuildSchedule slots every task that is not Completed and orders each
// bucket by priority then title.
func BuildSchedule(tasks []task.Task) Schedule {
	s := Schedule{
		Morning:   []task.Task{},
		Afternoon: []task.Task{},
		Anytime:   []task.Task{},
	}
	for _, t := range tasks {
		if t.Status == task.StatusCompleted {
			continue
		}
		switch PickSlot(t) {
		case SlotMorning:
			s.Morning = append(s.Morning, t)
		case SlotAfternoon:
			s.Afternoon = append(s.Afternoon, t)
		default:
			s.Anytime = append(s.Anytime, t)
		}
	}
	s.Morning = task.SortByPriority(s.Morning)
	s.Afternoon = task.SortByPriority(s.Afternoon)
	s.Anytime = task.SortByPriority(s.Anytime)
	return s
}
