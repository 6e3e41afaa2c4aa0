package planner

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"taskpilot/internal/task"
)

func TestPickSlot(t *testing.T) {
	tests := []struct {
		name string
		task task.Task
		want Slot
	}{
		{"high priority", task.Task{Priority: task.PriorityHigh, Category: "Meetings"}, SlotMorning},
		{"time-sensitive note", task.Task{Priority: task.PriorityLow, Notes: []string{"Time-sensitive"}}, SlotMorning},
		{"morning category", task.Task{Priority: task.PriorityLow, Category: "Admin"}, SlotMorning},
		{"afternoon category", task.Task{Priority: task.PriorityLow, Category: "Follow-up"}, SlotAfternoon},
		{"low priority", task.Task{Priority: task.PriorityLow, Category: "Work", Title: "Review notes"}, SlotAnytime},
		{"research note", task.Task{Priority: task.PriorityMedium, Notes: []string{"Research first"}}, SlotAnytime},
		{"review title", task.Task{Priority: "", Title: "Review PR"}, SlotAfternoon},
		{"medium", task.Task{Priority: task.PriorityMedium, Category: "Work"}, SlotAfternoon},
		{"unknown priority", task.Task{Priority: "Whenever", Category: "Work"}, SlotAnytime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PickSlot(tt.task))
		})
	}
}

func TestBuildSchedule_ExcludesCompleted(t *testing.T) {
	s := BuildSchedule([]task.Task{
		{Title: "Ship", Priority: task.PriorityHigh, Status: task.StatusCompleted},
	})
	assert.Equal(t, 0, s.Len())
	assert.NotNil(t, s.Morning)
	assert.NotNil(t, s.Afternoon)
	assert.NotNil(t, s.Anytime)
}

func TestBuildSchedule_Partition(t *testing.T) {
	priorities := []task.Priority{task.PriorityHigh, task.PriorityMedium, task.PriorityLow, "odd"}
	statuses := []task.Status{task.StatusToDo, task.StatusInProgress, task.StatusCompleted}
	categories := []string{"Development", "Meetings", "Work", "Personal"}

	var tasks []task.Task
	open := 0
	for i, p := range priorities {
		for j, st := range statuses {
			for k, c := range categories {
				tasks = append(tasks, task.Task{
					ID:       fmt.Sprintf("%d-%d-%d", i, j, k),
					Title:    fmt.Sprintf("task %d%d%d", i, j, k),
					Priority: p,
					Status:   st,
					Category: c,
				})
				if st != task.StatusCompleted {
					open++
				}
			}
		}
	}

	s := BuildSchedule(tasks)
	assert.Equal(t, open, s.Len())

	seen := map[string]int{}
	for _, bucket := range [][]task.Task{s.Morning, s.Afternoon, s.Anytime} {
		for _, tk := range bucket {
			seen[tk.ID]++
			assert.NotEqual(t, task.StatusCompleted, tk.Status)
		}
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "task %s scheduled %d times", id, n)
	}
}

func TestBuildSchedule_BucketOrdering(t *testing.T) {
	s := BuildSchedule([]task.Task{
		{Title: "b dev", Priority: task.PriorityMedium, Category: "Development"},
		{Title: "z urgent", Priority: task.PriorityHigh},
		{Title: "a dev", Priority: task.PriorityLow, Category: "Development"},
		{Title: "a urgent", Priority: task.PriorityHigh},
	})

	var titles []string
	for _, tk := range s.Morning {
		titles = append(titles, tk.Title)
	}
	if diff := cmp.Diff([]string{"a urgent", "z urgent", "b dev", "a dev"}, titles); diff != "" {
		t.Errorf("morning order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildStats(t *testing.T) {
	tests := []struct {
		name  string
		tasks []task.Task
		want  Stats
	}{
		{"empty", nil, Stats{}},
		{
			"mixed",
			[]task.Task{
				{Status: task.StatusCompleted},
				{Status: task.StatusInProgress},
				{Status: task.StatusToDo},
				{Status: "Blocked"},
			},
			Stats{Total: 4, Todo: 2, InProgress: 1, Completed: 1, Completion: 25},
		},
		{
			"rounding",
			[]task.Task{{Status: task.StatusCompleted}, {Status: task.StatusCompleted}, {Status: task.StatusToDo}},
			Stats{Total: 3, Todo: 1, Completed: 2, Completion: 67},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildStats(tt.tasks)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("BuildStats mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, got.Total, got.Todo+got.InProgress+got.Completed)
		})
	}
}
