package task

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// PriorityRank orders priorities for display: High 0, Medium 1, Low 2.
// Unrecognized values rank as Medium.
func PriorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

// SortByPriority returns a copy of tasks ordered by priority rank, ties broken
// by locale-aware title comparison. The sort is stable.
func SortByPriority(tasks []Task) []Task {
	out := append([]Task(nil), tasks...)
	// Collators keep internal buffers; one per call.
	c := collate.New(language.English)
	sort.SliceStable(out, func(i, j int) bool {
		left, right := PriorityRank(out[i].Priority), PriorityRank(out[j].Priority)
		if left != right {
			return left < right
		}
		return c.CompareString(out[i].Title, out[j].Title) < 0
	})
	return out
}
